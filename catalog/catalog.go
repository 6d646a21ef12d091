// Package catalog turns a hierarchy of source templates into the ordered
// data files consulted by a lookup.
package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/KOMKZ/yogan-hiera/interpolate"
	"github.com/KOMKZ/yogan-hiera/logger"
	"go.uber.org/zap"
)

// Source is one level of the hierarchy after interpolation
type Source struct {
	Name string // e.g. "nodes/web01"
	Path string // datadir/Name.extension
}

// Catalog enumerates sources and maps names to files
type Catalog interface {
	// Sources returns the sources for scope, highest priority first.
	// A non-empty override is consulted before the hierarchy.
	Sources(scope interpolate.Scope, override string) ([]Source, error)

	// Datafile returns the backing file of src, false when there is none
	Datafile(ctx context.Context, src Source) (string, bool)

	// Resolve maps an import name to a path under the datadir
	Resolve(scope interpolate.Scope, name string) (string, error)
}

// Hierarchy is the file based Catalog
type Hierarchy struct {
	datadir   string
	levels    []string
	extension string
	log       *logger.CtxZapLogger
}

// NewHierarchy creates a catalog. datadir and levels may contain %{var}
// tokens resolved against the lookup scope.
func NewHierarchy(datadir string, levels []string, extension string, log *logger.CtxZapLogger) *Hierarchy {
	return &Hierarchy{
		datadir:   datadir,
		levels:    append([]string(nil), levels...),
		extension: strings.TrimPrefix(extension, "."),
		log:       logger.OrNop(log, "catalog"),
	}
}

// Datadir returns the data directory for scope
func (h *Hierarchy) Datadir(scope interpolate.Scope) (string, error) {
	return interpolate.String(h.datadir, scope)
}

// Levels returns the configured templates
func (h *Hierarchy) Levels() []string {
	return append([]string(nil), h.levels...)
}

func (h *Hierarchy) Sources(scope interpolate.Scope, override string) ([]Source, error) {
	datadir, err := h.Datadir(scope)
	if err != nil {
		return nil, err
	}

	templates := h.levels
	if override != "" {
		templates = append([]string{override}, h.levels...)
	}

	sources := make([]Source, 0, len(templates))
	for _, tpl := range templates {
		name, err := interpolate.String(tpl, scope)
		if err != nil {
			return nil, err
		}
		if !usable(name) {
			continue
		}
		sources = append(sources, Source{
			Name: name,
			Path: filepath.Join(datadir, name+"."+h.extension),
		})
	}
	return sources, nil
}

// usable rejects levels whose variables did not resolve, e.g. "nodes/" or "/web"
func usable(name string) bool {
	return name != "" &&
		!strings.HasPrefix(name, "/") &&
		!strings.HasSuffix(name, "/") &&
		!strings.Contains(name, "//")
}

func (h *Hierarchy) Datafile(ctx context.Context, src Source) (string, bool) {
	info, err := os.Stat(src.Path)
	if err != nil || info.IsDir() {
		h.log.DebugCtx(ctx, "cannot find datafile, skipping", zap.String("path", src.Path))
		return "", false
	}
	return src.Path, true
}

func (h *Hierarchy) Resolve(scope interpolate.Scope, name string) (string, error) {
	datadir, err := h.Datadir(scope)
	if err != nil {
		return "", err
	}
	return filepath.Join(datadir, name), nil
}
