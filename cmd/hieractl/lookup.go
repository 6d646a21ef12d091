package main

import (
	"context"
	"fmt"
	"io"

	"github.com/KOMKZ/yogan-hiera/application"
	"github.com/KOMKZ/yogan-hiera/backend"
	"github.com/KOMKZ/yogan-hiera/document"
	"github.com/KOMKZ/yogan-hiera/flagx"
	"github.com/KOMKZ/yogan-hiera/interpolate"
	"github.com/spf13/cobra"
)

type lookupFlags struct {
	Mode backend.Mode `flag:"mode,m" usage:"合并模式 priority|array|hash" default:"priority"`
}

func newLookupCmd(app *application.CLIApplication) *cobra.Command {
	var (
		q  queryFlags
		lf lookupFlags
	)

	cmd := &cobra.Command{
		Use:   "lookup KEY",
		Short: "Look up a key and print its value as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flagx.ParseFlags(cmd.Flags(), &q); err != nil {
				return err
			}
			scope, err := q.scope()
			if err != nil {
				return err
			}
			return printLookup(cmd.Context(), cmd.OutOrStdout(), app.MustGetBackend(), args[0], scope, q.Override, lf.Mode)
		},
	}

	mustBind(cmd, &q, &lf)
	return cmd
}

// printLookup 查询并输出 YAML，未找到返回错误
func printLookup(ctx context.Context, out io.Writer, bk *backend.Backend, key string, scope interpolate.Scope, override string, mode backend.Mode) error {
	answer, found, err := bk.Lookup(ctx, key, scope, override, mode)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("key %q not found", key)
	}

	data, err := document.Marshal(answer)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func mustBind(cmd *cobra.Command, targets ...interface{}) {
	for _, target := range targets {
		if err := flagx.BindFlags(cmd.Flags(), target); err != nil {
			panic(err)
		}
	}
}
