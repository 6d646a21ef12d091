package backend

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/KOMKZ/yogan-hiera/health"
	"github.com/KOMKZ/yogan-hiera/interpolate"
)

// HealthCheckers returns the checks for lookups in scope:
//
//   - datadir: the data directory exists.
//   - datafiles: every existing data file parses and its imports resolve.
//   - cache: the cache store answers. Lookups fall back to reading files, so
//     a failure only degrades.
func (b *Backend) HealthCheckers(scope interpolate.Scope, override string) []health.Checker {
	checkers := []health.Checker{
		health.CheckFunc("datadir", func(ctx context.Context) error {
			return b.checkDatadir(scope)
		}),
		health.CheckFunc("datafiles", func(ctx context.Context) error {
			return b.checkDatafiles(ctx, scope, override)
		}),
	}

	if p, ok := b.loader.(interface{ Ping(ctx context.Context) error }); ok {
		checkers = append(checkers, health.Degraded(health.CheckFunc("cache", p.Ping)))
	}
	return checkers
}

func (b *Backend) checkDatadir(scope interpolate.Scope) error {
	d, ok := b.catalog.(interface {
		Datadir(scope interpolate.Scope) (string, error)
	})
	if !ok {
		return nil
	}

	dir, err := d.Datadir(scope)
	if err != nil {
		return err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

func (b *Backend) checkDatafiles(ctx context.Context, scope interpolate.Scope, override string) error {
	sources, err := b.catalog.Sources(scope, override)
	if err != nil {
		return err
	}

	var errs []error
	for _, src := range sources {
		if _, _, err := b.source(ctx, src, scope); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", src.Name, err))
		}
	}
	return errors.Join(errs...)
}
