package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/KOMKZ/yogan-hiera/document"
	"github.com/KOMKZ/yogan-hiera/interpolate"
	"github.com/KOMKZ/yogan-hiera/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestHierarchy_Sources(t *testing.T) {
	h := NewHierarchy("/data/%{environment}", []string{
		"nodes/%{fqdn}",
		"roles/%{role}",
		"%{missing}",
		"common",
	}, ".yaml", nil)

	scope := interpolate.Vars{
		"environment": document.String("prod"),
		"fqdn":        document.String("web01"),
	}

	sources, err := h.Sources(scope, "")
	require.NoError(t, err)
	assert.Equal(t, []Source{
		{Name: "nodes/web01", Path: "/data/prod/nodes/web01.yaml"},
		{Name: "common", Path: "/data/prod/common.yaml"},
	}, sources)
}

func TestHierarchy_SourcesOverrideFirst(t *testing.T) {
	h := NewHierarchy("/data", []string{"common"}, "yaml", nil)

	sources, err := h.Sources(nil, "special")
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "special", sources[0].Name)
	assert.Equal(t, "common", sources[1].Name)

	// the configured hierarchy is not modified by the override
	assert.Equal(t, []string{"common"}, h.Levels())
}

func TestUsable(t *testing.T) {
	for name, want := range map[string]bool{
		"common":      true,
		"nodes/web01": true,
		"":            false,
		"nodes/":      false,
		"/web01":      false,
		"a//b":        false,
	} {
		assert.Equal(t, want, usable(name), name)
	}
}

func TestHierarchy_Datafile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "common.yaml"), []byte("a: 1\n"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.yaml"), 0o755))

	core, logs := observer.New(zapcore.DebugLevel)
	h := NewHierarchy(dir, []string{"missing", "dir", "common"}, "yaml",
		logger.NewCtxZapLogger(zap.New(core), "catalog"))
	ctx := context.Background()

	sources, err := h.Sources(nil, "")
	require.NoError(t, err)
	require.Len(t, sources, 3)

	_, ok := h.Datafile(ctx, sources[0])
	assert.False(t, ok)
	_, ok = h.Datafile(ctx, sources[1])
	assert.False(t, ok, "directories are not datafiles")
	path, ok := h.Datafile(ctx, sources[2])
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "common.yaml"), path)

	assert.Equal(t, 2, logs.FilterMessage("cannot find datafile, skipping").Len())
}

func TestHierarchy_Resolve(t *testing.T) {
	h := NewHierarchy("/etc/hiera/%{env}", nil, "yaml", nil)

	path, err := h.Resolve(interpolate.Vars{"env": document.String("dev")}, "roles/role1.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/etc/hiera/dev/roles/role1.yaml", path)
}

func TestHierarchy_InterpolationCycle(t *testing.T) {
	h := NewHierarchy("/data/%{a}", []string{"common"}, "yaml", nil)
	scope := interpolate.Vars{"a": document.String("%{a}")}

	_, err := h.Sources(scope, "")
	assert.ErrorIs(t, err, interpolate.ErrInterpolationCycle)

	_, err = h.Resolve(scope, "x.yaml")
	assert.ErrorIs(t, err, interpolate.ErrInterpolationCycle)
}
