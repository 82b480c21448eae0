package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/config"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "shower-planner",
	Short: "Shower Planner API server",
	Long: `Shower Planner serves the baby-shower planning API: events, guests,
checklists, budgets and registries, Stripe billing and the AI assistant.
Running without a subcommand starts the HTTP server.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(purgeLogsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig sets up logging and returns validated configuration.
func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
