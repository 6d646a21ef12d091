// Package cache holds encoded data files between lookups.
//
// A Store maps a key (normally a data file path under a prefix) to an opaque
// byte value. Stores are safe for concurrent use and report a miss as
// ErrCacheMiss; any other error means the backend itself failed.
package cache

import (
	"context"
	"time"
)

// Store 数据文件缓存存储
type Store interface {
	// Name 存储名称，用于日志和指标标签
	Name() string

	// Get 读取 key，未命中返回 ErrCacheMiss
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入 key，ttl <= 0 表示不过期
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete 删除若干 key，不存在的 key 忽略
	Delete(ctx context.Context, keys ...string) error

	// Purge 删除所有以 prefix 开头的 key，返回删除数量
	Purge(ctx context.Context, prefix string) (int, error)

	// Ping 检查存储是否可用
	Ping(ctx context.Context) error

	Close() error
}
