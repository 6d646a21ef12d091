package main

import (
	"context"
	"fmt"

	"github.com/KOMKZ/yogan-hiera/application"
	"github.com/KOMKZ/yogan-hiera/flagx"
	"github.com/KOMKZ/yogan-hiera/interpolate"
	"github.com/KOMKZ/yogan-hiera/loader"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWatchCmd(app *application.CLIApplication) *cobra.Command {
	var (
		q  queryFlags
		lf lookupFlags
	)

	cmd := &cobra.Command{
		Use:   "watch [KEY]",
		Short: "Invalidate cached data files as they change, re-running the lookup of KEY",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flagx.ParseFlags(cmd.Flags(), &q); err != nil {
				return err
			}
			scope, err := q.scope()
			if err != nil {
				return err
			}

			opts := app.Options()
			root, err := interpolate.String(opts.Datadir, scope)
			if err != nil {
				return err
			}

			bk := app.MustGetBackend()
			log := app.MustGetLogger()
			out := cmd.OutOrStdout()

			relookup := func(ctx context.Context) {
				if len(args) == 0 {
					return
				}
				if err := printLookup(ctx, out, bk, args[0], scope, q.Override, lf.Mode); err != nil {
					fmt.Fprintf(out, "# %v\n", err)
				}
			}

			w := loader.NewWatcher(root, opts.Extension, func(ctx context.Context, paths []string) {
				if err := bk.Invalidate(ctx, paths...); err != nil {
					log.WarnCtx(ctx, "缓存失效失败", zap.Strings("paths", paths), zap.Error(err))
				}
				for _, p := range paths {
					fmt.Fprintf(out, "# changed %s\n", p)
				}
				relookup(ctx)
			}, log)

			go app.WaitShutdown()

			relookup(cmd.Context())
			return w.Run(cmd.Context())
		},
	}

	mustBind(cmd, &q, &lf)
	return cmd
}
