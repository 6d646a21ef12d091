// Package telemetry 配置 OpenTelemetry 的 TracerProvider 与 MeterProvider
//
// 查找后端的 span（hiera.lookup）和数据文件缓存指标都通过全局 Provider 获取，
// Manager.Start 之后即开始导出。
package telemetry

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/KOMKZ/yogan-hiera/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// Manager 管理 TracerProvider 和 MeterProvider
type Manager struct {
	config Config
	logger *logger.CtxZapLogger
	writer io.Writer

	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	mu             sync.Mutex
}

// Option Manager 选项
type Option func(*Manager)

// WithWriter stdout 导出器的输出位置，默认 os.Stderr
func WithWriter(w io.Writer) Option {
	return func(m *Manager) {
		m.writer = w
	}
}

// NewManager 创建 Manager
func NewManager(cfg Config, log *logger.CtxZapLogger, opts ...Option) *Manager {
	cfg.ApplyDefaults()
	m := &Manager{
		config: cfg,
		logger: logger.OrNop(log, "telemetry"),
		writer: os.Stderr,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start 创建 Provider 并设置为全局 Provider。未启用时什么也不做
func (m *Manager) Start(ctx context.Context) error {
	if !m.config.Enabled {
		m.logger.DebugCtx(ctx, "Telemetry disabled, skipping initialization")
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	res, err := m.createResource(ctx)
	if err != nil {
		return ErrStart.Wrapf(err, "create resource failed")
	}

	tp, err := m.createTracerProvider(ctx, res)
	if err != nil {
		return ErrStart.Wrapf(err, "create tracer provider failed")
	}
	m.tracerProvider = tp
	otel.SetTracerProvider(tp)

	if m.config.Metrics.Enabled {
		mp, err := m.createMeterProvider(ctx, res)
		if err != nil {
			_ = tp.Shutdown(ctx)
			m.tracerProvider = nil
			return ErrStart.Wrapf(err, "create meter provider failed")
		}
		m.meterProvider = mp
		otel.SetMeterProvider(mp)
	}

	m.logger.DebugCtx(ctx, "✅ Telemetry started",
		zap.String("service_name", m.config.ServiceName),
		zap.String("exporter", m.config.Exporter.Type),
		zap.Bool("metrics", m.config.Metrics.Enabled))
	return nil
}

// Shutdown 刷新并关闭 Provider，可重复调用
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	if m.tracerProvider != nil {
		if err := m.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
		m.tracerProvider = nil
	}
	if m.meterProvider != nil {
		if err := m.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
		m.meterProvider = nil
	}
	if err := errors.Join(errs...); err != nil {
		return ErrShutdown.Wrap(err)
	}
	return nil
}

// TracerProvider 未启动时返回 noop
func (m *Manager) TracerProvider() trace.TracerProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tracerProvider == nil {
		return tracenoop.NewTracerProvider()
	}
	return m.tracerProvider
}

// MeterProvider 未启用指标时返回 noop
func (m *Manager) MeterProvider() metric.MeterProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.meterProvider == nil {
		return metricnoop.NewMeterProvider()
	}
	return m.meterProvider
}

// IsEnabled 是否启用
func (m *Manager) IsEnabled() bool {
	return m.config.Enabled
}

// GetConfig 获取配置（已填充默认值）
func (m *Manager) GetConfig() Config {
	return m.config
}
