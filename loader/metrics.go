package loader

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// cacheMetrics 数据文件缓存指标
type cacheMetrics struct {
	hits         metric.Int64Counter     // 命中次数
	misses       metric.Int64Counter     // 未命中次数
	decodeErrors metric.Int64Counter     // 缓存条目解码失败次数
	loadDuration metric.Float64Histogram // 未命中时读盘耗时
}

func newCacheMetrics(meter metric.Meter) (*cacheMetrics, error) {
	hits, err := meter.Int64Counter(
		"hiera_datafile_cache_hits_total",
		metric.WithDescription("数据文件缓存命中次数"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	misses, err := meter.Int64Counter(
		"hiera_datafile_cache_misses_total",
		metric.WithDescription("数据文件缓存未命中次数"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	decodeErrors, err := meter.Int64Counter(
		"hiera_datafile_cache_decode_errors_total",
		metric.WithDescription("缓存条目解码失败次数"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	loadDuration, err := meter.Float64Histogram(
		"hiera_datafile_load_duration_seconds",
		metric.WithDescription("数据文件读取解析耗时"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &cacheMetrics{
		hits:         hits,
		misses:       misses,
		decodeErrors: decodeErrors,
		loadDuration: loadDuration,
	}, nil
}

func (m *cacheMetrics) recordHit(ctx context.Context, store string) {
	m.hits.Add(ctx, 1, metric.WithAttributes(attribute.String("store", store)))
}

func (m *cacheMetrics) recordMiss(ctx context.Context, store string) {
	m.misses.Add(ctx, 1, metric.WithAttributes(attribute.String("store", store)))
}

func (m *cacheMetrics) recordDecodeError(ctx context.Context, store string) {
	m.decodeErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("store", store)))
}

func (m *cacheMetrics) recordLoad(ctx context.Context, seconds float64, err error) {
	m.loadDuration.Record(ctx, seconds, metric.WithAttributes(attribute.Bool("error", err != nil)))
}
