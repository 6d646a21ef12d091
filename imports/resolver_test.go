package imports

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/KOMKZ/yogan-hiera/catalog"
	"github.com/KOMKZ/yogan-hiera/document"
	"github.com/KOMKZ/yogan-hiera/interpolate"
	"github.com/KOMKZ/yogan-hiera/loader"
	"github.com/KOMKZ/yogan-hiera/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// memLoader serves documents from memory and records every read
type memLoader struct {
	mu    sync.Mutex
	docs  map[string]document.Document
	reads []string
}

func newMemLoader(docs map[string]any) *memLoader {
	l := &memLoader{docs: make(map[string]document.Document)}
	for path, v := range docs {
		l.docs[path] = document.MustFrom(v)
	}
	return l
}

func (l *memLoader) Load(_ context.Context, path string) (document.Document, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reads = append(l.reads, path)
	d, ok := l.docs[path]
	if !ok {
		return document.Document{}, loader.ErrNotFound.WithMsgf("数据文件不存在: %s", path)
	}
	return d, nil
}

// rootLocator resolves names to "/" + name
type rootLocator struct{}

func (rootLocator) Resolve(_ interpolate.Scope, name string) (string, error) {
	return "/" + name, nil
}

func TestResolver_ImportFoldingPrecedence(t *testing.T) {
	l := newMemLoader(map[string]any{
		"/A": map[string]any{"k": 2},
		"/B": map[string]any{"k": 3, "m": 4},
	})
	r := New(l, rootLocator{}, "", nil)

	doc := document.MustFrom(map[string]any{"__imports__": []any{"A", "B"}, "k": 1})
	got, err := r.Resolve(context.Background(), doc, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k": int64(1), "m": int64(4)}, got.Native())
}

func TestResolver_LaterImportWins(t *testing.T) {
	l := newMemLoader(map[string]any{
		"/A": map[string]any{"k": "a", "only_a": true, "list": []any{"a"}},
		"/B": map[string]any{"k": "b", "only_b": true, "list": []any{"b"}},
	})
	r := New(l, rootLocator{}, "", nil)

	doc := document.MustFrom(map[string]any{"__imports__": []any{"A", "B"}})
	got, err := r.Resolve(context.Background(), doc, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"k":      "b",
		"only_a": true,
		"only_b": true,
		"list":   []any{"b", "a"},
	}, got.Native())

	// 三个导入依次叠加：最后一个的列表元素排在最前
	l = newMemLoader(map[string]any{
		"/A": map[string]any{"list": []any{"a"}},
		"/B": map[string]any{"list": []any{"b"}},
		"/C": map[string]any{"list": []any{"c", "a"}},
	})
	r = New(l, rootLocator{}, "", nil)
	got, err = r.Resolve(context.Background(), document.MustFrom(map[string]any{"__imports__": []any{"A", "B", "C"}}), nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"list": []any{"c", "a", "b"}}, got.Native())
}

func TestResolver_MissingImportIsSkipped(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	l := newMemLoader(map[string]any{"/A": map[string]any{"a": 1}})
	r := New(l, rootLocator{}, "", logger.NewCtxZapLogger(zap.New(core), "imports"))
	ctx := context.Background()

	with, err := r.Resolve(ctx, document.MustFrom(map[string]any{
		"__imports__": []any{"nonexisting.yaml", "A"},
		"classes":     []any{"nonexisting"},
	}), nil)
	require.NoError(t, err)

	without, err := r.Resolve(ctx, document.MustFrom(map[string]any{
		"__imports__": []any{"A"},
		"classes":     []any{"nonexisting"},
	}), nil)
	require.NoError(t, err)

	assert.True(t, document.Equal(with, without))
	require.Equal(t, 1, logs.FilterMessage("cannot find import, skipping").Len())
	assert.Equal(t, "nonexisting.yaml", logs.All()[0].ContextMap()["import"])
}

func TestResolver_Recursive(t *testing.T) {
	l := newMemLoader(map[string]any{
		"/role":  map[string]any{"__imports__": []any{"base"}, "role": "web", "shared": "role"},
		"/base":  map[string]any{"__imports__": []any{"empty"}, "base": true, "shared": "base"},
		"/empty": map[string]any{},
	})
	r := New(l, rootLocator{}, "", nil)

	got, err := r.Resolve(context.Background(), document.MustFrom(map[string]any{
		"__imports__": []any{"role"},
	}), nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"role": "web", "shared": "role", "base": true}, got.Native())
}

func TestResolver_Diamond(t *testing.T) {
	l := newMemLoader(map[string]any{
		"/left":   map[string]any{"__imports__": []any{"common"}, "left": 1},
		"/right":  map[string]any{"__imports__": []any{"common"}, "right": 1},
		"/common": map[string]any{"common": 1},
	})
	r := New(l, rootLocator{}, "", nil)

	got, err := r.Resolve(context.Background(), document.MustFrom(map[string]any{
		"__imports__": []any{"left", "right"},
	}), nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"left": int64(1), "right": int64(1), "common": int64(1)}, got.Native())
}

func TestResolver_Cycle(t *testing.T) {
	l := newMemLoader(map[string]any{
		"/a": map[string]any{"__imports__": []any{"b"}},
		"/b": map[string]any{"__imports__": []any{"a"}},
	})
	r := New(l, rootLocator{}, "", nil)

	_, err := r.Resolve(context.Background(), document.MustFrom(map[string]any{
		"__imports__": []any{"a"},
	}), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrImportCycle))
	assert.Contains(t, err.Error(), "/a -> /b -> /a")
}

func TestResolver_InvalidDirective(t *testing.T) {
	r := New(newMemLoader(nil), rootLocator{}, "", nil)
	ctx := context.Background()

	for name, directive := range map[string]any{
		"scalar":  "A",
		"mapping": map[string]any{"a": "A"},
		"nested":  []any{[]any{"A"}},
	} {
		_, err := r.Resolve(ctx, document.MustFrom(map[string]any{"__imports__": directive}), nil)
		assert.True(t, errors.Is(err, ErrImportDirective), name)
	}

	got, err := r.Resolve(ctx, document.MustFrom(map[string]any{"__imports__": nil, "a": 1}), nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": int64(1)}, got.Native())
}

func TestResolver_Passthrough(t *testing.T) {
	l := newMemLoader(nil)
	r := New(l, rootLocator{}, "", nil)
	ctx := context.Background()

	seq := document.MustFrom([]any{"__imports__"})
	got, err := r.Resolve(ctx, seq, nil)
	require.NoError(t, err)
	assert.True(t, document.Equal(seq, got))

	plain := document.MustFrom(map[string]any{"a": 1})
	got, err = r.Resolve(ctx, plain, nil)
	require.NoError(t, err)
	assert.True(t, document.Equal(plain, got))
	assert.Empty(t, l.reads)
}

func TestResolver_CustomKey(t *testing.T) {
	l := newMemLoader(map[string]any{"/A": map[string]any{"a": 1}})
	r := New(l, rootLocator{}, "imports", nil)
	assert.Equal(t, "imports", r.Key())

	got, err := r.Resolve(context.Background(), document.MustFrom(map[string]any{
		"imports":     []any{"A"},
		"__imports__": []any{"ignored"},
	}), nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": int64(1), "__imports__": []any{"ignored"}}, got.Native())
}

func TestResolver_LoaderErrorsPropagate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "list.yaml"), []byte("- a\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("a: [\n"), 0o644))

	r := New(loader.NewFileLoader(nil), catalog.NewHierarchy(dir, nil, "yaml", nil), "", nil)
	ctx := context.Background()

	_, err := r.Resolve(ctx, document.MustFrom(map[string]any{"__imports__": []any{"list.yaml"}}), nil)
	assert.True(t, errors.Is(err, loader.ErrShapeMismatch))

	_, err = r.Resolve(ctx, document.MustFrom(map[string]any{"__imports__": []any{"broken.yaml"}}), nil)
	assert.True(t, errors.Is(err, loader.ErrParse))
}

func TestResolver_CancelledContext(t *testing.T) {
	r := New(newMemLoader(map[string]any{"/A": map[string]any{}}), rootLocator{}, "", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Resolve(ctx, document.MustFrom(map[string]any{"__imports__": []any{"A"}}), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
