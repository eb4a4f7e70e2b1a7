package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMarketCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "market",
		Short: "Print the instruments a session starts with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			catalog, err := a.catalog()
			if err != nil {
				return err
			}

			if err := a.printer.Quotes(cmd.OutOrStdout(), catalog.List()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d instruments\n", catalog.Len())
			return nil
		},
	}
}
