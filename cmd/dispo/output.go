package main

import (
	"fmt"
	"os"
)

// Feedback helpers write to stderr so stdout stays clean for the data a
// command produces (answers, config values), which keeps piping usable.

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

func printSuccess(format string, args ...any) {
	fmt.Fprintln(os.Stderr, colorize(colorGreen, "✓ "+fmt.Sprintf(format, args...)))
}

func printError(format string, args ...any) {
	fmt.Fprintln(os.Stderr, colorize(colorRed, "✗ "+fmt.Sprintf(format, args...)))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(os.Stderr, colorize(colorYellow, "⚠ "+fmt.Sprintf(format, args...)))
}

func printStep(format string, args ...any) {
	fmt.Fprintln(os.Stderr, colorize(colorCyan, "→ "+fmt.Sprintf(format, args...)))
}

// printStatus renders one "label: value" line of a report (ping, config).
func printStatus(label string, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "  %s %s\n", colorize(colorBold, label+":"), fmt.Sprintf(format, args...))
}

// printNumbered renders one entry of a numbered list indented under the
// preceding status or warning line: sample services, connection hints.
func printNumbered(n int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "     %s %s\n", colorize(colorBold, fmt.Sprintf("%d.", n)), fmt.Sprintf(format, args...))
}
