package backend

import (
	"context"

	"github.com/KOMKZ/yogan-hiera/cache"
	"github.com/KOMKZ/yogan-hiera/catalog"
	"github.com/KOMKZ/yogan-hiera/config"
	"github.com/KOMKZ/yogan-hiera/imports"
	"github.com/KOMKZ/yogan-hiera/loader"
	"github.com/KOMKZ/yogan-hiera/logger"
	"github.com/KOMKZ/yogan-hiera/validator"
)

// NewFromOptions wires a backend from configuration: the logger manager, the
// cache store (when cacheable), the loader, the hierarchy and the import
// resolver. opts are applied after the configured ones.
func NewFromOptions(ctx context.Context, cfg config.Options, opts ...Option) (*Backend, error) {
	cfg.ApplyDefaults()
	if err := validator.Validate(cfg, config.ErrConfigInvalid); err != nil {
		return nil, err
	}

	logs := logger.NewManager(cfg.Logger)

	var store cache.Store
	if cfg.Cacheable {
		s, err := cache.NewStore(ctx, cfg.Cache)
		if err != nil {
			logs.CloseAll()
			return nil, err
		}
		store = s
	}

	l := loader.New(cfg.Cacheable, store,
		loader.WithTTL(cfg.Cache.TTL),
		loader.WithLogger(logs.GetLogger("loader")),
	)
	h := catalog.NewHierarchy(cfg.Datadir, cfg.Hierarchy, cfg.Extension, logs.GetLogger("catalog"))
	r := imports.New(l, h, cfg.ImportsKey, logs.GetLogger("imports"))

	base := []Option{
		WithParametersKey(cfg.ParametersKey),
		WithLogger(logs.GetLogger("backend")),
	}
	b := New(h, l, r, append(base, opts...)...)
	b.logs = logs
	return b, nil
}
