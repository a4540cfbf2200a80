package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:           "dispo",
	Short:         "Agente de disponibilidad de servicios TI",
	Long:          "dispo responde preguntas en lenguaje natural sobre la disponibilidad de servicios TI,\nconsultando servicios, promesas de servicio y afectaciones en la base de datos.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
