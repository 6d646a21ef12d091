package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/KOMKZ/yogan-hiera/application"
	"github.com/KOMKZ/yogan-hiera/flagx"
	"github.com/spf13/cobra"
)

func newSourcesCmd(app *application.CLIApplication) *cobra.Command {
	var q queryFlags

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List the data sources consulted for a scope, highest priority first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flagx.ParseFlags(cmd.Flags(), &q); err != nil {
				return err
			}
			scope, err := q.scope()
			if err != nil {
				return err
			}

			sources, err := app.MustGetBackend().Sources(scope, q.Override)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, src := range sources {
				status := ""
				if info, err := os.Stat(src.Path); err != nil || info.IsDir() {
					status = "(missing)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", src.Name, src.Path, status)
			}
			return w.Flush()
		},
	}

	mustBind(cmd, &q)
	return cmd
}
