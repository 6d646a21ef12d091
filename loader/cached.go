package loader

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KOMKZ/yogan-hiera/cache"
	"github.com/KOMKZ/yogan-hiera/document"
	"github.com/KOMKZ/yogan-hiera/logger"
	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	defaultKeyPrefix    = "datafile:"
	defaultWarmPoolSize = 8
	meterName           = "github.com/KOMKZ/yogan-hiera/loader"
)

// cacheEntry is what the store holds for one data file
type cacheEntry struct {
	Stamp string            `yaml:"stamp"`
	Doc   document.Document `yaml:"doc"`
}

// Stats 缓存统计
type Stats struct {
	Hits         int64 `json:"hits"`
	Misses       int64 `json:"misses"`
	DecodeErrors int64 `json:"decode_errors"`
}

// CachedLoader keeps parsed data files in a cache.Store.
//
// An entry is keyed by path and stamped with the file's modification time and
// size; a stamp mismatch is a miss. Concurrent misses for the same file
// version share one read. The raw parsed file is cached: imports and
// interpolation are applied per lookup since they depend on the caller scope.
type CachedLoader struct {
	files        *FileLoader
	store        cache.Store
	serializer   cache.Serializer
	ttl          time.Duration
	keyPrefix    string
	warmPoolSize int
	log          *logger.CtxZapLogger
	meter        metric.Meter
	metrics      *cacheMetrics

	group        singleflight.Group
	hits         atomic.Int64
	misses       atomic.Int64
	decodeErrors atomic.Int64
}

// NewCachedLoader creates a loader backed by store. The loader owns store
// and closes it in Close.
func NewCachedLoader(store cache.Store, opts ...Option) *CachedLoader {
	l := &CachedLoader{
		store:        store,
		serializer:   cache.NewYAMLSerializer(),
		ttl:          cache.DefaultTTL,
		keyPrefix:    defaultKeyPrefix,
		warmPoolSize: defaultWarmPoolSize,
	}
	for _, opt := range opts {
		opt(l)
	}

	l.log = logger.OrNop(l.log, "loader")
	l.files = NewFileLoader(l.log)
	if l.meter == nil {
		l.meter = otel.Meter(meterName)
	}

	m, err := newCacheMetrics(l.meter)
	if err != nil {
		l.log.Warn("创建缓存指标失败，指标已禁用", zap.Error(err))
		m, _ = newCacheMetrics(noop.NewMeterProvider().Meter(meterName))
	}
	l.metrics = m

	return l
}

// Load returns the parsed file at path, from the store when it is current
func (l *CachedLoader) Load(ctx context.Context, path string) (document.Document, error) {
	if err := ctx.Err(); err != nil {
		return document.Document{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			_ = l.store.Delete(ctx, l.key(path))
		}
		return document.Document{}, readError(path, err)
	}
	stamp := stampOf(info)

	if doc, ok := l.cached(ctx, path, stamp); ok {
		l.hits.Add(1)
		l.metrics.recordHit(ctx, l.store.Name())
		return doc, nil
	}

	l.misses.Add(1)
	l.metrics.recordMiss(ctx, l.store.Name())

	v, err, _ := l.group.Do(path+"@"+stamp, func() (any, error) {
		start := time.Now()
		doc, err := l.files.Load(ctx, path)
		l.metrics.recordLoad(ctx, time.Since(start).Seconds(), err)
		if err != nil {
			return nil, err
		}
		l.save(ctx, path, stamp, doc)
		return doc, nil
	})
	if err != nil {
		return document.Document{}, err
	}
	return v.(document.Document), nil
}

// Ping checks that the underlying store answers
func (l *CachedLoader) Ping(ctx context.Context) error {
	return l.store.Ping(ctx)
}

// cached returns the stored document when its stamp matches
func (l *CachedLoader) cached(ctx context.Context, path, stamp string) (document.Document, bool) {
	data, err := l.store.Get(ctx, l.key(path))
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			l.log.WarnCtx(ctx, "读取缓存失败，回源加载", zap.String("path", path), zap.Error(err))
		}
		return document.Document{}, false
	}

	var entry cacheEntry
	if err := l.serializer.Deserialize(data, &entry); err != nil {
		l.decodeErrors.Add(1)
		l.metrics.recordDecodeError(ctx, l.store.Name())
		l.log.WarnCtx(ctx, "缓存条目解码失败，回源加载",
			zap.String("path", path), zap.Error(ErrCacheDecode.Wrap(err)))
		return document.Document{}, false
	}
	if entry.Stamp != stamp || !entry.Doc.IsMapping() {
		return document.Document{}, false
	}
	return entry.Doc, true
}

func (l *CachedLoader) save(ctx context.Context, path, stamp string, doc document.Document) {
	data, err := l.serializer.Serialize(cacheEntry{Stamp: stamp, Doc: doc})
	if err != nil {
		l.log.WarnCtx(ctx, "缓存条目编码失败", zap.String("path", path), zap.Error(err))
		return
	}
	if err := l.store.Set(ctx, l.key(path), data, l.ttl); err != nil {
		l.log.WarnCtx(ctx, "写入缓存失败", zap.String("path", path), zap.Error(err))
	}
}

// Invalidate drops the cached copy of path
func (l *CachedLoader) Invalidate(ctx context.Context, path string) error {
	return l.store.Delete(ctx, l.key(path))
}

// InvalidateAll drops every cached data file and returns how many were dropped
func (l *CachedLoader) InvalidateAll(ctx context.Context) (int, error) {
	n, err := l.store.Purge(ctx, l.keyPrefix)
	l.log.DebugCtx(ctx, "清空数据文件缓存", zap.Int("removed", n), zap.Error(err))
	return n, err
}

// Warm loads paths in parallel so that the first lookups hit the store.
// Missing files are skipped. Returns the number of files loaded.
func (l *CachedLoader) Warm(ctx context.Context, paths []string) (int, error) {
	if len(paths) == 0 {
		return 0, nil
	}

	pool, err := ants.NewPool(l.warmPoolSize)
	if err != nil {
		return 0, err
	}
	defer pool.Release()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		errs   []error
		loaded atomic.Int64
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	for _, path := range paths {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if _, err := l.Load(ctx, path); err != nil {
				if !errors.Is(err, ErrNotFound) {
					fail(err)
				}
				return
			}
			loaded.Add(1)
		})
		if err != nil {
			wg.Done()
			fail(err)
		}
	}
	wg.Wait()

	l.log.DebugCtx(ctx, "预热数据文件缓存", zap.Int("requested", len(paths)), zap.Int64("loaded", loaded.Load()))
	return int(loaded.Load()), errors.Join(errs...)
}

// Stats returns hit/miss counters since creation
func (l *CachedLoader) Stats() Stats {
	return Stats{
		Hits:         l.hits.Load(),
		Misses:       l.misses.Load(),
		DecodeErrors: l.decodeErrors.Load(),
	}
}

// Close closes the underlying store
func (l *CachedLoader) Close() error {
	return l.store.Close()
}

func (l *CachedLoader) key(path string) string {
	return l.keyPrefix + path
}

func stampOf(info fs.FileInfo) string {
	return strconv.FormatInt(info.ModTime().UnixNano(), 10) + ":" + strconv.FormatInt(info.Size(), 10)
}
