package config

import (
	"os"
	"testing"
	"time"

	"github.com/KOMKZ/yogan-hiera/cache"
	"github.com/KOMKZ/yogan-hiera/errcode"
	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir 切换到空目录，避免读取到工作目录下的 hiera.yaml
func chdir(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, "/etc/hiera/data", opts.Datadir)
	assert.Equal(t, "yaml", opts.Extension)
	assert.Equal(t, []string{"common"}, opts.Hierarchy)
	assert.Equal(t, "__imports__", opts.ImportsKey)
	assert.Equal(t, "__parameters__", opts.ParametersKey)
	assert.True(t, opts.Cacheable)
	assert.Equal(t, cache.DefaultConfig(), opts.Cache)
	assert.NoError(t, opts.Validate())
}

func TestOptions_ApplyDefaultsTrimsExtension(t *testing.T) {
	opts := Options{Extension: ".yml"}
	opts.ApplyDefaults()
	assert.Equal(t, "yml", opts.Extension)
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *Options)
		field  string
	}{
		{"empty datadir", func(o *Options) { o.Datadir = "" }, "datadir"},
		{"extension with slash", func(o *Options) { o.Extension = "a/b" }, "extension"},
		{"empty hierarchy", func(o *Options) { o.Hierarchy = nil }, "hierarchy"},
		{"blank level", func(o *Options) { o.Hierarchy = []string{"common", ""} }, "hierarchy"},
		{"same reserved keys", func(o *Options) { o.ParametersKey = o.ImportsKey }, "parameters_key"},
		{"redis store without address", func(o *Options) { o.Cache.Store = cache.StoreRedis }, "cache"},
		{"bad log level", func(o *Options) { o.Logger.Level = "loud" }, "logger"},
		{"unknown trace exporter", func(o *Options) {
			o.Telemetry.Enabled = true
			o.Telemetry.Exporter.Type = "jaeger"
		}, "telemetry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)

			err := opts.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)

	opts, err := Load(LoadParams{})
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), opts)
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	chdir(t)
	path := writeConfig(t, "hiera.yaml", `
datadir: /srv/hiera/%{::environment}
extension: yml
hierarchy:
  - "nodes/%{::hostname}"
  - common
imports_key: __include__
cacheable: false
cache:
  ttl: 30s
  max_size: 50
logger:
  level: debug
`)
	t.Setenv("HIERA_CACHE_KEY_PREFIX", "test:")
	t.Setenv("HIERA_EXTENSION", "yaml")

	flags := &struct {
		Datadir string `config:"datadir"`
	}{Datadir: "/flag/data"}

	opts, err := Load(LoadParams{ConfigFile: path, Flags: flags})
	require.NoError(t, err)

	assert.Equal(t, "/flag/data", opts.Datadir, "flags override the file")
	assert.Equal(t, "yaml", opts.Extension, "env overrides the file")
	assert.Equal(t, []string{"nodes/%{::hostname}", "common"}, opts.Hierarchy)
	assert.Equal(t, "__include__", opts.ImportsKey)
	assert.Equal(t, "__parameters__", opts.ParametersKey)
	assert.False(t, opts.Cacheable)
	assert.Equal(t, 30*time.Second, opts.Cache.TTL)
	assert.Equal(t, 50, opts.Cache.MaxSize)
	assert.Equal(t, "test:", opts.Cache.KeyPrefix)
	assert.Equal(t, cache.StoreMemory, opts.Cache.Store)
	assert.Equal(t, "debug", opts.Logger.Level)
	assert.True(t, opts.Logger.EnableConsole, "unset logger fields keep their defaults")
}

func TestLoad_EnvHierarchyList(t *testing.T) {
	chdir(t)
	t.Setenv("HIERA_HIERARCHY", "nodes/%{::hostname},common")
	t.Setenv("HIERA_CACHEABLE", "false")

	opts, err := Load(LoadParams{})
	require.NoError(t, err)
	assert.Equal(t, []string{"nodes/%{::hostname}", "common"}, opts.Hierarchy)
	assert.False(t, opts.Cacheable)
}

func TestLoad_TelemetryFromEnv(t *testing.T) {
	chdir(t)
	t.Setenv("HIERA_TELEMETRY_ENABLED", "true")
	t.Setenv("HIERA_TELEMETRY_EXPORTER_TYPE", "otlp")

	opts, err := Load(LoadParams{})
	require.NoError(t, err)
	assert.True(t, opts.Telemetry.Enabled)
	assert.Equal(t, "otlp", opts.Telemetry.Exporter.Type)
	assert.Equal(t, "localhost:4317", opts.Telemetry.Exporter.Endpoint)
	assert.Equal(t, "hieractl", opts.Telemetry.ServiceName)
}

func TestLoad_CustomEnvPrefix(t *testing.T) {
	chdir(t)
	t.Setenv("MYAPP_DATADIR", "/custom")

	opts, err := Load(LoadParams{EnvPrefix: "MYAPP"})
	require.NoError(t, err)
	assert.Equal(t, "/custom", opts.Datadir)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	chdir(t)

	_, err := Load(LoadParams{ConfigFile: "does-not-exist.yaml"})
	assert.ErrorIs(t, err, ErrConfigRead)
}

func TestLoad_Invalid(t *testing.T) {
	chdir(t)
	path := writeConfig(t, "hiera.yaml", "cache:\n  store: memcached\n")

	_, err := Load(LoadParams{ConfigFile: path})
	require.ErrorIs(t, err, ErrConfigInvalid)

	var le *errcode.LayeredError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Data()["fields"], "cache")
}

func TestLoad_PicksUpWorkingDirectoryFile(t *testing.T) {
	chdir(t)
	require.NoError(t, os.WriteFile(DefaultConfigFile, []byte("datadir: /from/cwd\n"), 0o644))

	opts, err := Load(LoadParams{})
	require.NoError(t, err)
	assert.Equal(t, "/from/cwd", opts.Datadir)
}

func TestProvideOptions(t *testing.T) {
	chdir(t)
	path := writeConfig(t, "hiera.yaml", "extension: json\n")

	injector := do.New()
	do.Provide(injector, ProvideOptions(LoadParams{ConfigFile: path}))

	opts, err := do.Invoke[Options](injector)
	require.NoError(t, err)
	assert.Equal(t, "json", opts.Extension)
}

func TestProvideOptionsValue(t *testing.T) {
	injector := do.New()
	do.Provide(injector, ProvideOptionsValue(Options{Datadir: "/given"}))

	opts := do.MustInvoke[Options](injector)
	assert.Equal(t, "/given", opts.Datadir)
	assert.Equal(t, DefaultHierarchy, opts.Hierarchy)
}
