package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KOMKZ/yogan-hiera/cache"
	"github.com/KOMKZ/yogan-hiera/document"
	"github.com/KOMKZ/yogan-hiera/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileLoader_Load(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	l := NewFileLoader(nil)

	t.Run("mapping", func(t *testing.T) {
		path := writeFile(t, dir, "role1.yaml", "classes:\n  - class1\n  - class2\nclass1::val1: Value 1\n")
		doc, err := l.Load(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"classes":      []any{"class1", "class2"},
			"class1::val1": "Value 1",
		}, doc.Native())
	})

	t.Run("empty file is an empty mapping", func(t *testing.T) {
		path := writeFile(t, dir, "empty.yaml", "")
		doc, err := l.Load(ctx, path)
		require.NoError(t, err)
		assert.True(t, doc.IsMapping())
		assert.Equal(t, 0, doc.Len())
	})

	t.Run("comment only file is an empty mapping", func(t *testing.T) {
		path := writeFile(t, dir, "comment.yaml", "# nothing here\n")
		doc, err := l.Load(ctx, path)
		require.NoError(t, err)
		assert.True(t, doc.IsMapping())
	})

	t.Run("alias bomb is a parse error", func(t *testing.T) {
		content := "a: &a [x, x, x, x, x, x, x, x, x, x]\n"
		for _, name := range []string{"b", "c", "d", "e", "f", "g", "h"} {
			prev := string(rune(name[0] - 1))
			content += name + ": &" + name + " [" + strings.Repeat("*"+prev+", ", 9) + "*" + prev + "]\n"
		}
		path := writeFile(t, dir, "bomb.yaml", content)
		_, err := l.Load(ctx, path)
		assert.True(t, errors.Is(err, ErrParse))
		assert.True(t, errors.Is(err, document.ErrExcessiveAliasing))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := l.Load(ctx, filepath.Join(dir, "nonexisting.yaml"))
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("directory", func(t *testing.T) {
		_, err := l.Load(ctx, dir)
		assert.True(t, errors.Is(err, ErrRead))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeFile(t, dir, "broken.yaml", "key: [unclosed\n")
		_, err := l.Load(ctx, path)
		assert.True(t, errors.Is(err, ErrParse))
		assert.Contains(t, err.Error(), "broken.yaml")
	})

	t.Run("sequence at top level", func(t *testing.T) {
		path := writeFile(t, dir, "list.yaml", "- a\n- b\n")
		_, err := l.Load(ctx, path)
		assert.True(t, errors.Is(err, ErrShapeMismatch))
		assert.Contains(t, err.Error(), "is Sequence not Mapping")
	})

	t.Run("scalar at top level", func(t *testing.T) {
		path := writeFile(t, dir, "scalar.yaml", "just a string\n")
		_, err := l.Load(ctx, path)
		assert.True(t, errors.Is(err, ErrShapeMismatch))
		assert.Contains(t, err.Error(), "is String not Mapping")
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := l.Load(cctx, filepath.Join(dir, "role1.yaml"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFileLoader_LogsReads(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFileLoader(logger.NewCtxZapLogger(zap.New(core), "loader"))

	path := writeFile(t, t.TempDir(), "common.yaml", "a: 1\n")
	_, err := l.Load(context.Background(), path)
	require.NoError(t, err)

	entries := logs.FilterMessage("loaded datafile").All()
	require.Len(t, entries, 1)
	assert.Equal(t, path, entries[0].ContextMap()["path"])
}

func TestNew(t *testing.T) {
	store := cache.NewMemoryStore("test", 10)
	defer store.Close()

	_, ok := New(true, store).(*CachedLoader)
	assert.True(t, ok, "cacheable with a store")

	_, ok = New(false, store).(*FileLoader)
	assert.True(t, ok, "not cacheable")

	_, ok = New(true, nil).(*FileLoader)
	assert.True(t, ok, "cacheable without a store")
}
