package telemetry

import (
	"context"
	"fmt"
	"os"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

func (m *Manager) createResource(ctx context.Context) (*resource.Resource, error) {
	attrs := append([]attribute.KeyValue{
		semconv.ServiceName(m.config.ServiceName),
		semconv.ServiceVersion(m.config.ServiceVersion),
	}, resourceAttributes(m.config.ResourceAttrs)...)

	return resource.New(ctx,
		resource.WithAttributes(attrs...),
		resource.WithHost(),
		resource.WithProcess(),
		resource.WithTelemetrySDK(),
	)
}

// resourceAttributes 嵌套配置展开为点号 key，按 key 排序
// 字符串值支持 ${ENV} 替换，布尔和数字保持原类型
func resourceAttributes(m map[string]interface{}) []attribute.KeyValue {
	var out []attribute.KeyValue
	var walk func(prefix string, m map[string]interface{})
	walk = func(prefix string, m map[string]interface{}) {
		for key, value := range m {
			if prefix != "" {
				key = prefix + "." + key
			}
			switch v := value.(type) {
			case map[string]interface{}:
				walk(key, v)
			case string:
				out = append(out, attribute.String(key, os.ExpandEnv(v)))
			case bool:
				out = append(out, attribute.Bool(key, v))
			case int:
				out = append(out, attribute.Int(key, v))
			case int64:
				out = append(out, attribute.Int64(key, v))
			case float64:
				out = append(out, attribute.Float64(key, v))
			default:
				out = append(out, attribute.String(key, fmt.Sprint(v)))
			}
		}
	}
	walk("", m)

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
