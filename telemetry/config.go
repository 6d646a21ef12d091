package telemetry

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// 导出器类型
const (
	ExporterOTLP   = "otlp"
	ExporterStdout = "stdout" // 写到 stderr，不干扰命令输出
	ExporterNoop   = "noop"
)

// 采样类型
const (
	SamplerAlwaysOn      = "always_on"
	SamplerAlwaysOff     = "always_off"
	SamplerTraceIDRatio  = "trace_id_ratio"
	SamplerParentBasedOn = "parent_based_always_on"
)

// Config OpenTelemetry 配置
type Config struct {
	Enabled        bool                   `mapstructure:"enabled" json:"enabled"`
	ServiceName    string                 `mapstructure:"service_name" json:"service_name"`
	ServiceVersion string                 `mapstructure:"service_version" json:"service_version"`
	Exporter       ExporterConfig         `mapstructure:"exporter" json:"exporter"`
	Sampler        SamplerConfig          `mapstructure:"sampler" json:"sampler"`
	ResourceAttrs  map[string]interface{} `mapstructure:"resource_attributes" json:"resource_attributes"` // 支持嵌套
	Batch          BatchConfig            `mapstructure:"batch" json:"batch"`
	Metrics        MetricsConfig          `mapstructure:"metrics" json:"metrics"`
}

// ExporterConfig 导出器配置
type ExporterConfig struct {
	Type     string            `mapstructure:"type" json:"type"` // otlp, stdout, noop
	Endpoint string            `mapstructure:"endpoint" json:"endpoint"`
	Insecure bool              `mapstructure:"insecure" json:"insecure"`
	Timeout  time.Duration     `mapstructure:"timeout" json:"timeout"`
	Headers  map[string]string `mapstructure:"headers" json:"headers"` // 认证等自定义 Header
}

// SamplerConfig 采样配置
type SamplerConfig struct {
	Type  string  `mapstructure:"type" json:"type"`
	Ratio float64 `mapstructure:"ratio" json:"ratio"` // 仅 trace_id_ratio 生效
}

// BatchConfig 批处理配置，关闭时同步导出
type BatchConfig struct {
	Enabled       bool          `mapstructure:"enabled" json:"enabled"`
	MaxQueueSize  int           `mapstructure:"max_queue_size" json:"max_queue_size"`
	ScheduleDelay time.Duration `mapstructure:"schedule_delay" json:"schedule_delay"`
}

// MetricsConfig 指标配置（缓存命中率、加载耗时等）
type MetricsConfig struct {
	Enabled        bool          `mapstructure:"enabled" json:"enabled"`
	ExportInterval time.Duration `mapstructure:"export_interval" json:"export_interval"`
}

// DefaultConfig 默认配置：关闭，开启后输出到 stderr
func DefaultConfig() Config {
	c := Config{}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults 填充默认值
func (c *Config) ApplyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "hieractl"
	}
	if c.Exporter.Type == "" {
		c.Exporter.Type = ExporterStdout
	}
	if c.Exporter.Type == ExporterOTLP && c.Exporter.Endpoint == "" {
		c.Exporter.Endpoint = "localhost:4317"
	}
	if c.Exporter.Timeout <= 0 {
		c.Exporter.Timeout = 10 * time.Second
	}
	if c.Sampler.Type == "" {
		c.Sampler.Type = SamplerParentBasedOn
	}
	if c.Sampler.Type == SamplerTraceIDRatio && c.Sampler.Ratio == 0 {
		c.Sampler.Ratio = 1.0
	}
	if c.Batch.MaxQueueSize <= 0 {
		c.Batch.MaxQueueSize = 2048
	}
	if c.Batch.ScheduleDelay <= 0 {
		c.Batch.ScheduleDelay = 5 * time.Second
	}
	if c.Metrics.ExportInterval <= 0 {
		c.Metrics.ExportInterval = 10 * time.Second
	}
}

// Validate 未启用时不校验
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.ServiceName, validation.Required),
		validation.Field(&c.Exporter),
		validation.Field(&c.Sampler),
	)
}

// Validate 导出器配置
func (e ExporterConfig) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Type, validation.Required, validation.In(ExporterOTLP, ExporterStdout, ExporterNoop)),
		validation.Field(&e.Endpoint, validation.When(e.Type == ExporterOTLP, validation.Required)),
	)
}

// Validate 采样配置
func (s SamplerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Type, validation.Required,
			validation.In(SamplerAlwaysOn, SamplerAlwaysOff, SamplerTraceIDRatio, SamplerParentBasedOn)),
		validation.Field(&s.Ratio, validation.Min(0.0), validation.Max(1.0)),
	)
}
