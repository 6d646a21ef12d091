package main

import (
	"fmt"

	"github.com/KOMKZ/yogan-hiera/application"
	"github.com/KOMKZ/yogan-hiera/flagx"
	"github.com/spf13/cobra"
)

func newWarmCmd(app *application.CLIApplication) *cobra.Command {
	var q queryFlags

	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Load the data files of a scope into the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flagx.ParseFlags(cmd.Flags(), &q); err != nil {
				return err
			}
			scope, err := q.scope()
			if err != nil {
				return err
			}

			n, err := app.MustGetBackend().Warm(cmd.Context(), scope, q.Override)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "warmed %d data files\n", n)
			return nil
		},
	}

	mustBind(cmd, &q)
	return cmd
}
