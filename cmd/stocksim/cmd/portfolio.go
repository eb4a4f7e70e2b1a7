package cmd

import (
	"fmt"

	"github.com/simaogato/stocksim/internal/usecase/session"
	"github.com/spf13/cobra"
)

// Read-only views open the session with RecoveryFail and never save, so a
// corrupt file is reported instead of being replaced.

func newPortfolioCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "portfolio",
		Short: "Show the saved portfolio valued at the starting market prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			s, err := a.openSession(cmd.Context(), session.RecoveryFail)
			if err != nil {
				return err
			}
			if s.Origin() == session.OriginFresh {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved portfolio; showing a fresh one.")
			}

			v, err := s.ViewPortfolio(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer.Valuation(cmd.OutOrStdout(), v)
		},
	}
}

func newHistoryCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the saved transaction history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			s, err := a.openSession(cmd.Context(), session.RecoveryFail)
			if err != nil {
				return err
			}

			txs, err := s.ViewHistory(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer.History(cmd.OutOrStdout(), txs)
		},
	}
}
