package loader

import (
	"time"

	"github.com/KOMKZ/yogan-hiera/cache"
	"github.com/KOMKZ/yogan-hiera/logger"
	"go.opentelemetry.io/otel/metric"
)

// Option configures a CachedLoader
type Option func(*CachedLoader)

// WithTTL sets how long a parsed file stays in the store
func WithTTL(ttl time.Duration) Option {
	return func(l *CachedLoader) {
		l.ttl = ttl
	}
}

// WithSerializer replaces the YAML entry encoding
func WithSerializer(s cache.Serializer) Option {
	return func(l *CachedLoader) {
		l.serializer = s
	}
}

// WithKeyPrefix namespaces cache keys inside the store
func WithKeyPrefix(prefix string) Option {
	return func(l *CachedLoader) {
		l.keyPrefix = prefix
	}
}

// WithLogger sets the logger
func WithLogger(log *logger.CtxZapLogger) Option {
	return func(l *CachedLoader) {
		l.log = log
	}
}

// WithMeter sets the meter used for hit/miss counters
func WithMeter(meter metric.Meter) Option {
	return func(l *CachedLoader) {
		l.meter = meter
	}
}

// WithWarmPoolSize bounds the goroutines used by Warm
func WithWarmPoolSize(size int) Option {
	return func(l *CachedLoader) {
		l.warmPoolSize = size
	}
}
