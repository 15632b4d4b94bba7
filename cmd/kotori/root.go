package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kotori",
	Short: "Childcare consultation routing engine",
	Long: `Kotori routes free-text childcare consultations to specialist
responders backed by Claude.

Each message is scored against a responder catalog with keyword and
semantic heuristics, dispatched with retry and fallback, and optionally
fanned out to several specialists in parallel with a synthesized
composite answer.

Core capabilities:
- Routes messages to nutrition, sleep, development, play, behavior and
  health specialists
- Escalates emergency wording straight to the health responder
- Validates answers against each specialist's domain before surfacing
- Fans a question out to a responder team and merges the answers`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(parallelCmd)
	rootCmd.AddCommand(respondersCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
