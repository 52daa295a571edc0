package main

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"surfaceflow/cmd/surfaceflow/commands"
)

// @title SurfaceFlow API
// @version 1.0.0
// @description Mock automation, hotel booking and lead enrichment workflows.
// @BasePath /api/v1

var rootCmd = &cobra.Command{
	Use:   "surfaceflow",
	Short: "SurfaceFlow demo backend",
	Long: `SurfaceFlow demo backend: automation jobs, BuilderTrend hotel booking and
Salesforce lead enrichment, all served from mock data.

Examples:
  surfaceflow serve                          # API on :8000, CSV ledgers under ./data
  surfaceflow serve --config surfaceflow.yaml
  surfaceflow ledger show booking_approvals  # print an audit ledger
  surfaceflow version`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (toml, yaml or json)")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.LedgerCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
