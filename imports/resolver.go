// Package imports folds the documents named by an import directive underneath
// the document that lists them.
package imports

import (
	"context"
	"errors"
	"strings"

	"github.com/KOMKZ/yogan-hiera/document"
	"github.com/KOMKZ/yogan-hiera/interpolate"
	"github.com/KOMKZ/yogan-hiera/loader"
	"github.com/KOMKZ/yogan-hiera/logger"
	"go.uber.org/zap"
)

// DefaultKey is the directive key used when none is configured
const DefaultKey = "__imports__"

// Locator maps an import name to a file path
type Locator interface {
	Resolve(scope interpolate.Scope, name string) (string, error)
}

// Resolver expands import directives
type Resolver struct {
	loader  loader.Loader
	locator Locator
	key     string
	log     *logger.CtxZapLogger
}

// New creates a resolver. An empty key selects DefaultKey.
func New(l loader.Loader, locator Locator, key string, log *logger.CtxZapLogger) *Resolver {
	if key == "" {
		key = DefaultKey
	}
	return &Resolver{
		loader:  l,
		locator: locator,
		key:     key,
		log:     logger.OrNop(log, "imports"),
	}
}

// Key returns the directive key
func (r *Resolver) Key() string {
	return r.key
}

// Resolve returns doc with its imports merged underneath it and the
// directive removed. Each import is merged over the ones before it, so a
// later import wins over an earlier one; doc takes precedence over all of
// them. Imports are resolved recursively; missing files contribute nothing.
func (r *Resolver) Resolve(ctx context.Context, doc document.Document, scope interpolate.Scope) (document.Document, error) {
	return r.resolve(ctx, doc, scope, nil)
}

func (r *Resolver) resolve(ctx context.Context, doc document.Document, scope interpolate.Scope, chain []string) (document.Document, error) {
	if !doc.IsMapping() {
		return doc, nil
	}
	directive, ok := doc.Get(r.key)
	if !ok {
		return doc, nil
	}

	names, err := r.names(directive)
	if err != nil {
		return document.Document{}, err
	}

	acc := document.EmptyMapping()
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return document.Document{}, err
		}

		path, err := r.locator.Resolve(scope, name)
		if err != nil {
			return document.Document{}, err
		}
		for _, seen := range chain {
			if seen == path {
				return document.Document{}, ErrImportCycle.
					WithMsgf("导入循环: %s -> %s", strings.Join(chain, " -> "), path).
					WithData("path", path)
			}
		}

		r.log.DebugCtx(ctx, "load import", zap.String("import", name), zap.String("path", path))
		loaded, err := r.loader.Load(ctx, path)
		if err != nil {
			if errors.Is(err, loader.ErrNotFound) {
				r.log.WarnCtx(ctx, "cannot find import, skipping", zap.String("import", name), zap.String("path", path))
				continue
			}
			return document.Document{}, err
		}

		loaded, err = r.resolve(ctx, loaded, scope, append(chain[:len(chain):len(chain)], path))
		if err != nil {
			return document.Document{}, err
		}
		acc = document.Merge(loaded, acc)
	}

	return document.Merge(doc, acc).Without(r.key), nil
}

// names validates the directive: a sequence of scalars, or null for none
func (r *Resolver) names(directive document.Document) ([]string, error) {
	switch directive.Kind() {
	case document.KindNull:
		return nil, nil
	case document.KindSequence:
	default:
		return nil, ErrImportDirective.
			WithMsgf("%s must be a list of file names, got %s", r.key, directive.ShapeName())
	}

	items := directive.Items()
	names := make([]string, 0, len(items))
	for i, item := range items {
		if !item.IsScalar() {
			return nil, ErrImportDirective.
				WithMsgf("%s[%d] must be a file name, got %s", r.key, i, item.ShapeName())
		}
		names = append(names, item.String())
	}
	return names, nil
}
