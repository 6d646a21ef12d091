package telemetry

import (
	"context"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// createMeterProvider 周期导出的 MeterProvider，关闭时会再导出一次
func (m *Manager) createMeterProvider(ctx context.Context, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	exporter, err := m.createMetricExporter(ctx)
	if err != nil {
		return nil, err
	}
	if exporter != nil {
		opts = append(opts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter,
				sdkmetric.WithInterval(m.config.Metrics.ExportInterval),
				sdkmetric.WithTimeout(m.config.Exporter.Timeout),
			),
		))
	}

	return sdkmetric.NewMeterProvider(opts...), nil
}
