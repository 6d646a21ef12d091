package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestManagerConfig_ApplyDefaults(t *testing.T) {
	cfg := ManagerConfig{Level: "debug"}
	cfg.ApplyDefaults()

	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "logs", cfg.BaseLogDir)
	assert.Equal(t, "console", cfg.Encoding)
	assert.Equal(t, 100, cfg.MaxSize)
	assert.NoError(t, cfg.Validate())
}

func TestManagerConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ManagerConfig)
	}{
		{"bad level", func(c *ManagerConfig) { c.Level = "verbose" }},
		{"bad encoding", func(c *ManagerConfig) { c.Encoding = "xml" }},
		{"max size", func(c *ManagerConfig) { c.MaxSize = 0 }},
		{"max age", func(c *ManagerConfig) { c.MaxAge = -1 }},
		{"date format", func(c *ManagerConfig) { c.EnableDateInFilename = true; c.DateFormat = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultManagerConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("unknown"))
}

func TestManager_GetLogger_Cached(t *testing.T) {
	m := NewManager(ManagerConfig{EnableConsole: false})
	defer m.CloseAll()

	a := m.GetLogger("loader")
	b := m.GetLogger("loader")
	assert.Same(t, a, b)
	assert.Equal(t, "loader", a.Module())
}

func TestManager_FileOutput(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(ManagerConfig{
		BaseLogDir:            dir,
		Level:                 "debug",
		Encoding:              "json",
		EnableFile:            true,
		EnableLevelInFilename: true,
	})

	l := m.GetLogger("imports")
	l.WarnCtx(context.Background(), "cannot find import, skipping", zap.String("import", "a.yaml"))
	l.ErrorCtx(context.Background(), "boom")
	m.CloseAll()

	info, err := os.ReadFile(filepath.Join(dir, "imports", "imports-info.log"))
	require.NoError(t, err)
	assert.Contains(t, string(info), "cannot find import, skipping")
	assert.Contains(t, string(info), `"module":"imports"`)
	assert.NotContains(t, string(info), "boom")

	errs, err := os.ReadFile(filepath.Join(dir, "imports", "imports-error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(errs), "boom")
}

func TestCtxZapLogger_TraceID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := DefaultManagerConfig()
	l := &CtxZapLogger{base: zap.New(core), module: "backend", config: &cfg}

	ctx := context.WithValue(context.Background(), "trace_id", "abc")
	l.DebugCtx(ctx, "looking up key")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "abc", fields["trace_id"])
	assert.Equal(t, "hiera", fields["app_name"])
}

func TestCtxZapLogger_OtelSpan(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := DefaultManagerConfig()
	l := &CtxZapLogger{base: zap.New(core), module: "backend", config: &cfg}

	traceID := trace.TraceID{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: trace.SpanID{1}})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	l.InfoCtx(ctx, "found key")
	assert.Equal(t, traceID.String(), logs.All()[0].ContextMap()["trace_id"])
}

func TestNewCtxZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewCtxZapLogger(zap.New(core), "catalog").With(zap.String("source", "common"))

	l.Warn("cannot find datafile")
	entry := logs.All()[0]
	assert.Equal(t, "catalog", entry.ContextMap()["module"])
	assert.Equal(t, "common", entry.ContextMap()["source"])
	assert.NotContains(t, entry.ContextMap(), "app_name")
}

func TestOrNop(t *testing.T) {
	core, _ := observer.New(zapcore.DebugLevel)
	l := NewCtxZapLogger(zap.New(core), "loader")
	assert.Same(t, l, OrNop(l, "loader"))

	nop := OrNop(nil, "loader")
	require.NotNil(t, nop)
	assert.Equal(t, "loader", nop.Module())
	nop.DebugCtx(context.Background(), "discarded")
}

func TestManagerConfig_ValidateNamesField(t *testing.T) {
	cfg := DefaultManagerConfig()
	cfg.Level = "verbose"
	assert.ErrorContains(t, cfg.Validate(), "level")

	cfg = DefaultManagerConfig()
	cfg.EnableDateInFilename = false
	cfg.DateFormat = ""
	assert.NoError(t, cfg.Validate(), "date format only matters with dated file names")
}
