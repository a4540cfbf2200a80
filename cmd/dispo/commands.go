package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cardenasjm/dispo/internal/agent"
	"github.com/cardenasjm/dispo/internal/config"
	"github.com/cardenasjm/dispo/internal/llm"
	"github.com/cardenasjm/dispo/internal/store"
	"github.com/cardenasjm/dispo/internal/tools"
)

// openStore connects to the warehouse described by the loaded config.
func openStore(cfg config.Config) (*store.Store, error) {
	st, err := store.Open(store.Options{
		Database:          cfg.DB.Name,
		Driver:            cfg.DB.Driver,
		Server:            cfg.DB.Server,
		TrustedConnection: cfg.DB.TrustedConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("opening warehouse: %w", err)
	}
	return st, nil
}

// buildAgent wires the loaded config, store, operation catalog and model
// client into one agent. The caller owns the returned store and must close it.
func buildAgent(cfg config.Config) (*agent.Agent, *store.Store, error) {
	if err := cfg.RequireModelKey(); err != nil {
		return nil, nil, err
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	registry := tools.NewRegistry(st)
	client := llm.NewClientWithBaseURL(cfg.Model.APIKey, cfg.Model.BaseURL)
	ag := agent.New(client, cfg.Model.Name, registry, agent.WithMaxRounds(cfg.Agent.MaxRounds))
	return ag, st, nil
}

// --- ask ---

var askCmd = &cobra.Command{
	Use:   "ask <pregunta>",
	Short: "Ask a natural-language question about service availability",
	Long: `Ask a natural-language question about service availability.

Examples:
  dispo ask "¿Qué servicios tenemos disponibles?"
  dispo ask --verbose "¿Cuál es la disponibilidad del servicio ASP hoy?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")
		verbose, _ := cmd.Flags().GetBool("verbose")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		ag, st, err := buildAgent(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		var trace io.Writer
		if verbose {
			trace = os.Stderr
		}

		answer := ag.Ask(cmd.Context(), question, trace)
		fmt.Println(answer)
		return nil
	},
}

func init() {
	askCmd.Flags().BoolP("verbose", "v", false, "show each orchestration round on stderr")
}

// --- demo ---

var demoQuestions = []string{
	"¿Qué servicios tenemos disponibles?",
	"¿Cuál es la disponibilidad del servicio ASP hoy?",
	"Muéstrame las afectaciones del servicio App Bancolombia en los últimos 7 días",
	"Calcula el porcentaje de disponibilidad para Cajeros automáticos",
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the canned example questions one after another",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		ag, st, err := buildAgent(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		for _, question := range demoQuestions {
			fmt.Printf("\n%s\n", strings.Repeat("=", 60))
			fmt.Printf("👤 Usuario: %s\n", question)
			fmt.Println(strings.Repeat("=", 60))

			answer := ag.Ask(cmd.Context(), question, nil)
			fmt.Printf("🤖 Agente: %s\n", answer)
		}
		return nil
	},
}

// --- ping ---

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Run the database connectivity smoke test",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		serverLabel := cfg.DB.Server
		if serverLabel == "" {
			serverLabel = "(local con autenticación integrada)"
		}
		printStep("Probando conexión a %s", cfg.DB.Name)
		printStatus("Driver", "%s", cfg.DB.Driver)
		printStatus("Servidor", "%s", serverLabel)

		st, err := openStore(cfg)
		if err != nil {
			printConnectionHints(err)
			return err
		}
		defer st.Close()

		report, err := st.Probe(cmd.Context())
		if err != nil {
			printConnectionHints(err)
			return err
		}

		printSuccess("Conexión exitosa")
		printStatus("Versión", "%s", firstLine(report.Version))
		printStatus("Servicios", "%d", report.Services)
		for i, svc := range report.Sample {
			printNumbered(i+1, "%s (SLA: %g%%)", svc.Name, svc.SLA)
		}
		printStatus("Registros de promesa", "%d (%s a %s)", report.PromiseRows, report.PromiseFrom, report.PromiseTo)
		printStatus("Registros de afectaciones", "%d (%s a %s)", report.OutageRows, report.OutageFrom, report.OutageTo)
		printSuccess("Todas las pruebas exitosas — el agente debería funcionar correctamente")
		return nil
	},
}

func printConnectionHints(err error) {
	printError("ERROR: %v", err)
	printWarning("Soluciones posibles:")
	hints := []string{
		"Verifica que el servidor de base de datos esté corriendo",
		"Verifica el nombre de la base de datos (DB_NAME)",
		"Verifica que tengas permisos en la base de datos",
		"Si usas autenticación integrada, verifica DB_TRUSTED_CONNECTION=yes",
		"Verifica que el driver configurado (DB_DRIVER) sea sqlserver o sqlite",
	}
	for i, h := range hints {
		printNumbered(i+1, "%s", h)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
