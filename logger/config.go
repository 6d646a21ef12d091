package logger

import (
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap/zapcore"
)

// ManagerConfig global manager configuration (shared by all modules)
type ManagerConfig struct {
	BaseLogDir            string `mapstructure:"base_log_dir" json:"base_log_dir"` // root directory of log files (default logs/)
	Level                 string `mapstructure:"level" json:"level"`
	AppName               string `mapstructure:"app_name" json:"app_name"` // injected into every entry, even when empty
	Encoding              string `mapstructure:"encoding" json:"encoding"` // json or console
	EnableConsole         bool   `mapstructure:"enable_console" json:"enable_console"`
	EnableFile            bool   `mapstructure:"enable_file" json:"enable_file"`
	EnableLevelInFilename bool   `mapstructure:"enable_level_in_filename" json:"enable_level_in_filename"`
	EnableDateInFilename  bool   `mapstructure:"enable_date_in_filename" json:"enable_date_in_filename"`
	DateFormat            string `mapstructure:"date_format" json:"date_format"`
	MaxSize               int    `mapstructure:"max_size" json:"max_size"` // MB
	MaxBackups            int    `mapstructure:"max_backups" json:"max_backups"`
	MaxAge                int    `mapstructure:"max_age" json:"max_age"` // days
	Compress              bool   `mapstructure:"compress" json:"compress"`
	EnableCaller          bool   `mapstructure:"enable_caller" json:"enable_caller"`

	// Trace ID configuration
	EnableTraceID    bool   `mapstructure:"enable_trace_id" json:"enable_trace_id"`
	TraceIDKey       string `mapstructure:"trace_id_key" json:"trace_id_key"`        // context key (default "trace_id")
	TraceIDFieldName string `mapstructure:"trace_id_field_name" json:"trace_id_field_name"` // log field name (default "trace_id")
}

// DefaultManagerConfig returns the default manager configuration.
// Console goes to stderr so that CLI answers on stdout stay clean.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		BaseLogDir:            "logs",
		Level:                 "warn",
		AppName:               "hiera",
		Encoding:              "console",
		EnableConsole:         true,
		EnableFile:            false,
		EnableLevelInFilename: true,
		EnableDateInFilename:  true,
		DateFormat:            "2006-01-02",
		MaxSize:               100,
		MaxBackups:            3,
		MaxAge:                28,
		Compress:              true,
		EnableCaller:          false,
		EnableTraceID:         true,
		TraceIDKey:            "trace_id",
		TraceIDFieldName:      "trace_id",
	}
}

// ApplyDefaults fills zero-valued fields with default values (in-place modification)
func (c *ManagerConfig) ApplyDefaults() {
	defaults := DefaultManagerConfig()

	if c.BaseLogDir == "" {
		c.BaseLogDir = defaults.BaseLogDir
	}
	if c.Level == "" {
		c.Level = defaults.Level
	}
	if c.Encoding == "" {
		c.Encoding = defaults.Encoding
	}
	if c.DateFormat == "" {
		c.DateFormat = defaults.DateFormat
	}
	if c.TraceIDKey == "" {
		c.TraceIDKey = defaults.TraceIDKey
	}
	if c.TraceIDFieldName == "" {
		c.TraceIDFieldName = defaults.TraceIDFieldName
	}
	if c.MaxSize == 0 {
		c.MaxSize = defaults.MaxSize
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = defaults.MaxBackups
	}
	if c.MaxAge == 0 {
		c.MaxAge = defaults.MaxAge
	}

	// Booleans cannot be told apart from "unset", keep them as given
}

var (
	levels    = []interface{}{"debug", "info", "warn", "error", "fatal"}
	encodings = []interface{}{"json", "console"}
)

// Validate ManagerConfig configuration
func (c ManagerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.Required, validation.In(levels...)),
		validation.Field(&c.Encoding, validation.Required, validation.In(encodings...)),
		validation.Field(&c.MaxSize, validation.Min(1), validation.Max(10000)),
		validation.Field(&c.MaxBackups, validation.Min(0), validation.Max(1000)),
		validation.Field(&c.MaxAge, validation.Min(0), validation.Max(3650)),
		validation.Field(&c.DateFormat, validation.When(c.EnableDateInFilename, validation.Required)),
	)
}

// ParseLevel unknown levels fall back to info
func ParseLevel(level string) zapcore.Level {
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// filePath builds the log file path of a module
// Formats:
// - logs/loader/loader.log
// - logs/loader/loader-error.log
// - logs/loader/loader-info-2024-12-19.log
func (c ManagerConfig) filePath(module, level string) string {
	parts := []string{module}
	if c.EnableLevelInFilename {
		parts = append(parts, level)
	}
	if c.EnableDateInFilename {
		parts = append(parts, time.Now().Format(c.DateFormat))
	}
	return filepath.Join(c.BaseLogDir, module, strings.Join(parts, "-")+".log")
}
