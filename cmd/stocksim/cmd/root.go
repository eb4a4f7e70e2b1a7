package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the stocksim command tree
func NewRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "stocksim",
		Short: "An offline stock trading simulator",
		Long: `Stocksim is a single-user stock trading simulator.

It provides:
  - A synthetic market whose prices move randomly on request
  - A cash and holdings ledger with a full transaction history
  - Durable portfolio state in a JSON file or a SQLite database

Start trading with:
  stocksim play`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file (defaults are used when empty)")

	rootCmd.AddCommand(
		newPlayCmd(&configPath),
		newMarketCmd(&configPath),
		newPortfolioCmd(&configPath),
		newHistoryCmd(&configPath),
		newConfigCmd(&configPath),
	)

	return rootCmd
}
