// Package backend answers key lookups against a hierarchy of YAML data
// sources.
//
// A lookup walks the sources of the catalog in priority order. Every source
// document has its imports folded in, then the value under the key is
// interpolated and combined according to the Mode:
//
//   - FirstMatch returns the first value found and reads no further source.
//   - Concatenate collects scalars and flattens sequences into one list.
//   - DeepMerge merges mappings, higher priority sources winning.
package backend

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/KOMKZ/yogan-hiera/catalog"
	"github.com/KOMKZ/yogan-hiera/document"
	"github.com/KOMKZ/yogan-hiera/imports"
	"github.com/KOMKZ/yogan-hiera/interpolate"
	"github.com/KOMKZ/yogan-hiera/loader"
	"github.com/KOMKZ/yogan-hiera/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	tracerName = "github.com/KOMKZ/yogan-hiera/backend"

	// DefaultParametersKey is the variable table key used when none is configured
	DefaultParametersKey = "__parameters__"
)

// Backend resolves keys. It holds no per-lookup state and is safe for
// concurrent use.
type Backend struct {
	catalog   catalog.Catalog
	loader    loader.Loader
	imports   *imports.Resolver
	paramsKey string
	interp    interpolate.Interpolator
	log       *logger.CtxZapLogger
	tracer    trace.Tracer

	// 由 NewFromOptions 创建，Close 时释放
	logs      *logger.Manager
	closeOnce sync.Once
	closeErr  error
}

// Option configures a Backend
type Option func(*Backend)

// WithLogger sets the logger
func WithLogger(log *logger.CtxZapLogger) Option {
	return func(b *Backend) {
		b.log = log
	}
}

// WithParametersKey sets the variable table key
func WithParametersKey(key string) Option {
	return func(b *Backend) {
		if key != "" {
			b.paramsKey = key
		}
	}
}

// WithInterpolator replaces the variable substitution
func WithInterpolator(i interpolate.Interpolator) Option {
	return func(b *Backend) {
		if i != nil {
			b.interp = i
		}
	}
}

// WithTracerProvider sets the provider of the lookup spans
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(b *Backend) {
		if tp != nil {
			b.tracer = tp.Tracer(tracerName)
		}
	}
}

// New creates a backend over its collaborators
func New(cat catalog.Catalog, l loader.Loader, resolver *imports.Resolver, opts ...Option) *Backend {
	b := &Backend{
		catalog:   cat,
		loader:    l,
		imports:   resolver,
		paramsKey: DefaultParametersKey,
		interp:    interpolate.Default,
	}
	for _, opt := range opts {
		opt(b)
	}

	b.log = logger.OrNop(b.log, "backend")
	if b.tracer == nil {
		b.tracer = otel.GetTracerProvider().Tracer(tracerName)
	}
	return b
}

// Lookup resolves key for scope. override, when not empty, is consulted
// before the configured hierarchy.
//
// found is false when no source defines key; a key defined as null is found.
func (b *Backend) Lookup(ctx context.Context, key string, scope interpolate.Scope, override string, mode Mode) (document.Document, bool, error) {
	ctx, span := b.tracer.Start(ctx, "hiera.lookup", trace.WithAttributes(
		attribute.String("hiera.key", key),
		attribute.String("hiera.mode", mode.String()),
	))
	defer span.End()

	answer, found, err := b.lookup(ctx, key, scope, override, mode, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return document.Null(), false, err
	}

	span.SetAttributes(attribute.Bool("hiera.found", found))
	span.SetStatus(codes.Ok, "")
	return answer, found, nil
}

func (b *Backend) lookup(ctx context.Context, key string, scope interpolate.Scope, override string, mode Mode, span trace.Span) (document.Document, bool, error) {
	if !mode.valid() {
		return document.Document{}, false, ErrUnknownMode.WithMsgf("未知的查找模式: %d", int(mode))
	}

	b.log.DebugCtx(ctx, "looking up key", zap.String("key", key), zap.Stringer("mode", mode))

	sources, err := b.catalog.Sources(scope, override)
	if err != nil {
		return document.Document{}, false, err
	}

	var (
		answer document.Document
		items  []document.Document
		found  bool
		read   int
	)
	defer func() {
		span.SetAttributes(attribute.Int("hiera.sources_read", read))
	}()

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return document.Document{}, false, err
		}

		doc, ok, err := b.source(ctx, src, scope)
		if err != nil {
			return document.Document{}, false, err
		}
		if !ok {
			continue
		}
		read++
		if doc.IsEmpty() {
			continue
		}

		raw, ok := doc.Get(key)
		if !ok {
			continue
		}
		b.log.DebugCtx(ctx, "found key in source", zap.String("key", key), zap.String("source", src.Name))

		value, err := b.interp.Interpolate(raw, interpolate.Chain{scope, interpolate.Parameters(doc, b.paramsKey)})
		if err != nil {
			return document.Document{}, false, err
		}

		switch mode {
		case FirstMatch:
			return value, true, nil
		case Concatenate:
			switch value.Kind() {
			case document.KindSequence:
				items = append(items, value.Items()...)
			case document.KindScalar:
				items = append(items, value)
			default:
				return document.Document{}, false, typeMismatch(key, src, "Sequence", value)
			}
		case DeepMerge:
			if !value.IsMapping() {
				return document.Document{}, false, typeMismatch(key, src, "Mapping", value)
			}
			answer = document.Merge(answer, value)
		}
		found = true
	}

	if !found {
		return document.Null(), false, nil
	}
	if mode == Concatenate {
		return document.Sequence(items...), true, nil
	}
	return answer, true, nil
}

// source loads the document behind src with its imports resolved; false when
// src has no data file
func (b *Backend) source(ctx context.Context, src catalog.Source, scope interpolate.Scope) (document.Document, bool, error) {
	path, ok := b.catalog.Datafile(ctx, src)
	if !ok {
		return document.Document{}, false, nil
	}

	doc, err := b.loader.Load(ctx, path)
	if err != nil {
		// 文件在 Datafile 之后被删除
		if errors.Is(err, loader.ErrNotFound) {
			b.log.DebugCtx(ctx, "datafile disappeared, skipping", zap.String("path", path))
			return document.Document{}, false, nil
		}
		return document.Document{}, false, err
	}

	doc, err = b.imports.Resolve(ctx, doc, scope)
	if err != nil {
		return document.Document{}, false, err
	}
	return doc, true, nil
}

func typeMismatch(key string, src catalog.Source, want string, got document.Document) error {
	return ErrTypeMismatch.
		WithMsgf("type mismatch: expected %s and got %s", want, got.ShapeName()).
		WithData("key", key).
		WithData("source", src.Name)
}

// Sources returns the sources a lookup for scope would consult, in order
func (b *Backend) Sources(scope interpolate.Scope, override string) ([]catalog.Source, error) {
	return b.catalog.Sources(scope, override)
}

// Datafiles returns the existing data files of the sources for scope
func (b *Backend) Datafiles(ctx context.Context, scope interpolate.Scope, override string) ([]string, error) {
	sources, err := b.catalog.Sources(scope, override)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(sources))
	for _, src := range sources {
		if path, ok := b.catalog.Datafile(ctx, src); ok {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// Invalidate drops cached data files. A no-op for uncached loaders.
func (b *Backend) Invalidate(ctx context.Context, paths ...string) error {
	inv, ok := b.loader.(interface {
		Invalidate(ctx context.Context, path string) error
	})
	if !ok {
		return nil
	}

	var errs []error
	for _, path := range paths {
		if err := inv.Invalidate(ctx, path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Warm preloads the data files of the sources for scope into the cache and
// returns how many were loaded. A no-op for uncached loaders.
func (b *Backend) Warm(ctx context.Context, scope interpolate.Scope, override string) (int, error) {
	w, ok := b.loader.(interface {
		Warm(ctx context.Context, paths []string) (int, error)
	})
	if !ok {
		return 0, nil
	}

	paths, err := b.Datafiles(ctx, scope, override)
	if err != nil {
		return 0, err
	}
	return w.Warm(ctx, paths)
}

// Close releases the cache store and the log files. Calls after the first
// return the first result.
func (b *Backend) Close() error {
	b.closeOnce.Do(func() {
		if c, ok := b.loader.(io.Closer); ok {
			b.closeErr = c.Close()
		}
		if b.logs != nil {
			b.logs.CloseAll()
		}
	})
	return b.closeErr
}

// Shutdown implements do.ShutdownerWithError
func (b *Backend) Shutdown() error {
	return b.Close()
}
