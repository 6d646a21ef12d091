package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/KOMKZ/yogan-hiera/application"
	"github.com/KOMKZ/yogan-hiera/flagx"
	"github.com/KOMKZ/yogan-hiera/health"
	"github.com/spf13/cobra"
)

type checkFlags struct {
	Timeout time.Duration `flag:"timeout" usage:"检查超时" default:"5s"`
}

func newCheckCmd(app *application.CLIApplication) *cobra.Command {
	var (
		q  queryFlags
		cf checkFlags
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that the datadir, the data files of a scope and the cache are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flagx.ParseFlags(cmd.Flags(), &q); err != nil {
				return err
			}
			if err := flagx.ParseFlags(cmd.Flags(), &cf); err != nil {
				return err
			}
			scope, err := q.scope()
			if err != nil {
				return err
			}

			agg := health.NewAggregator(cf.Timeout)
			agg.SetMetadata("datadir", app.Options().Datadir)
			if v := app.GetVersion(); v != "" {
				agg.SetMetadata("version", v)
			}
			agg.Register(app.MustGetBackend().HealthCheckers(scope, q.Override)...)

			resp := agg.Check(cmd.Context())

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return err
			}
			if resp.Status == health.StatusUnhealthy {
				return fmt.Errorf("status %s", resp.Status)
			}
			return nil
		},
	}

	mustBind(cmd, &q, &cf)
	return cmd
}
