package config

import (
	"regexp"
	"strings"

	"github.com/KOMKZ/yogan-hiera/cache"
	"github.com/KOMKZ/yogan-hiera/logger"
	"github.com/KOMKZ/yogan-hiera/telemetry"
	"github.com/KOMKZ/yogan-hiera/validator"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// 默认值
const (
	DefaultDatadir       = "/etc/hiera/data"
	DefaultExtension     = "yaml"
	DefaultImportsKey    = "__imports__"
	DefaultParametersKey = "__parameters__"
	DefaultEnvPrefix     = "HIERA"
)

// DefaultHierarchy 默认层级
var DefaultHierarchy = []string{"common"}

var extensionPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Options 后端配置
type Options struct {
	// Datadir 数据目录，可包含 %{var}
	Datadir string `mapstructure:"datadir" json:"datadir"`

	// Extension 数据文件扩展名（不带点）
	Extension string `mapstructure:"extension" json:"extension"`

	// Hierarchy 层级模板，优先级从高到低
	Hierarchy []string `mapstructure:"hierarchy" json:"hierarchy"`

	// ImportsKey 导入指令的保留 key
	ImportsKey string `mapstructure:"imports_key" json:"imports_key"`

	// ParametersKey 变量表的保留 key
	ParametersKey string `mapstructure:"parameters_key" json:"parameters_key"`

	// Cacheable 是否缓存解析后的数据文件
	Cacheable bool `mapstructure:"cacheable" json:"cacheable"`

	Cache     cache.Config         `mapstructure:"cache" json:"cache"`
	Logger    logger.ManagerConfig `mapstructure:"logger" json:"logger"`
	Telemetry telemetry.Config     `mapstructure:"telemetry" json:"telemetry"`
}

// DefaultOptions 默认配置
func DefaultOptions() Options {
	o := Options{
		Cacheable: true,
		Logger:    logger.DefaultManagerConfig(),
	}
	o.ApplyDefaults()
	return o
}

// ApplyDefaults 填充零值字段
func (o *Options) ApplyDefaults() {
	if o.Datadir == "" {
		o.Datadir = DefaultDatadir
	}
	o.Extension = strings.TrimPrefix(o.Extension, ".")
	if o.Extension == "" {
		o.Extension = DefaultExtension
	}
	if len(o.Hierarchy) == 0 {
		o.Hierarchy = append([]string(nil), DefaultHierarchy...)
	}
	if o.ImportsKey == "" {
		o.ImportsKey = DefaultImportsKey
	}
	if o.ParametersKey == "" {
		o.ParametersKey = DefaultParametersKey
	}
	o.Cache.ApplyDefaults()
	o.Logger.ApplyDefaults()
	o.Telemetry.ApplyDefaults()
}

// Validate 校验配置，cache 和 logger 子配置一并校验
func (o Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Datadir, validation.Required),
		validation.Field(&o.Extension, validation.Required, validation.Match(extensionPattern)),
		validation.Field(&o.Hierarchy, validation.Required, validation.Each(validation.Required)),
		validation.Field(&o.ImportsKey, validation.Required),
		validation.Field(&o.ParametersKey,
			validation.Required,
			validation.NotIn(o.ImportsKey).Error("must differ from imports_key"),
		),
		validation.Field(&o.Cache),
		validation.Field(&o.Logger),
		validation.Field(&o.Telemetry),
	)
}

// EnvKeys 可通过环境变量覆盖的 key，如 HIERA_CACHE_REDIS_ADDR
var EnvKeys = []string{
	"datadir",
	"extension",
	"hierarchy", // 逗号分隔
	"imports_key",
	"parameters_key",
	"cacheable",
	"cache.store",
	"cache.ttl",
	"cache.max_size",
	"cache.redis_addr",
	"cache.key_prefix",
	"cache.dir",
	"logger.level",
	"logger.encoding",
	"logger.enable_file",
	"logger.base_log_dir",
	"telemetry.enabled",
	"telemetry.exporter.type",
	"telemetry.exporter.endpoint",
	"telemetry.metrics.enabled",
}

// LoadParams 配置加载参数
type LoadParams struct {
	ConfigFile string      // 配置文件路径，为空时尝试 ./hiera.yaml
	EnvPrefix  string      // 环境变量前缀，默认 HIERA
	Flags      interface{} // 带 `config` tag 的命令行参数结构体
}

// Load 按 默认值 < 配置文件 < 环境变量 < 命令行参数 加载 Options 并校验
func Load(p LoadParams) (Options, error) {
	if p.EnvPrefix == "" {
		p.EnvPrefix = DefaultEnvPrefix
	}

	loader, err := NewLoaderBuilder().
		WithDefaults(map[string]interface{}{"cacheable": true}).
		WithConfigFile(p.ConfigFile).
		WithEnvPrefix(p.EnvPrefix, EnvKeys...).
		WithFlags(p.Flags).
		Build()
	if err != nil {
		return Options{}, err
	}

	return FromLoader(loader)
}

// FromLoader 从已加载的 Loader 解析 Options
func FromLoader(loader *Loader) (Options, error) {
	opts := Options{Logger: logger.DefaultManagerConfig()}
	if err := loader.Unmarshal(&opts); err != nil {
		return Options{}, err
	}

	opts.ApplyDefaults()
	if err := validator.Validate(opts, ErrConfigInvalid); err != nil {
		return Options{}, err
	}
	return opts, nil
}
