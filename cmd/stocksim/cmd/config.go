package cmd

import (
	"errors"
	"fmt"

	"github.com/simaogato/stocksim/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(configPath *string) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Generate or validate configuration files",
		Long: `Manage configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  stocksim config init --output stocksim.yaml
  stocksim config validate --config stocksim.yaml`,
	}

	var output string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if err := cfg.SaveToFile(output); err != nil {
				return fmt.Errorf("save config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created default configuration: %s\n", output)
			fmt.Fprintln(out, "\nEdit the file and run with:")
			fmt.Fprintf(out, "  stocksim play --config %s\n", output)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "o", "stocksim.yaml", "output config file path")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if *configPath == "" {
				return errors.New("--config is required")
			}

			cfg, err := config.LoadFromFile(*configPath)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			instruments, err := cfg.SeedInstruments()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration valid: %s\n", *configPath)
			fmt.Fprintf(out, "  Portfolio: %s %s (recovery: %s)\n", cfg.Portfolio.StartingCash, cfg.Portfolio.Currency, cfg.Portfolio.Recovery)
			fmt.Fprintf(out, "  Market: %d instruments, floor %s, max change %s\n", len(instruments), cfg.Market.PriceFloor, cfg.Market.MaxChange)
			fmt.Fprintf(out, "  Storage: %s at %s\n", cfg.Storage.Backend, cfg.Storage.Path)
			return nil
		},
	}

	configCmd.AddCommand(initCmd, validateCmd)
	return configCmd
}
