package cmd

import (
	"github.com/simaogato/stocksim/internal/adapter/cli"
	"github.com/spf13/cobra"
)

func newPlayCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Start an interactive trading session",
		Long: `Play restores the saved portfolio (or starts a fresh one) and opens the menu.

Choose "Save & exit" to persist the portfolio and end the session. Closing the
input (Ctrl-D) or interrupting (Ctrl-C) saves and exits as well.

Example:
  stocksim play --config stocksim.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			recovery, err := a.cfg.RecoveryPolicy()
			if err != nil {
				return err
			}

			s, err := a.openSession(cmd.Context(), recovery)
			if err != nil {
				return err
			}

			shell := cli.NewShell(s, a.printer, cmd.InOrStdin(), cmd.OutOrStdout())
			return shell.Run(cmd.Context())
		},
	}
}
