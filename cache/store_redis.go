package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const purgeBatch = 100

// RedisStore 共享 Redis 存储
// 多个解析进程读同一份数据目录时，解析结果只需生成一次
type RedisStore struct {
	name       string
	client     *redis.Client
	prefix     string
	ownsClient bool
}

// NewRedisStore wraps client; the caller keeps ownership of it
func NewRedisStore(name string, client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{name: name, client: client, prefix: prefix}
}

// DialRedisStore 连接 addr 并检查可用性，Close 时一并关闭客户端
func DialRedisStore(ctx context.Context, name, addr, prefix string) (*RedisStore, error) {
	s := NewRedisStore(name, redis.NewClient(&redis.Options{Addr: addr}), prefix)
	s.ownsClient = true
	if err := s.Ping(ctx); err != nil {
		_ = s.client.Close()
		return nil, err
	}
	return s, nil
}

func (s *RedisStore) Name() string {
	return s.name
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, ErrCacheMiss
	case err != nil:
		return nil, ErrBackend.Wrapf(err, "redis GET %s", key)
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.prefix+key, value, ttl).Err(); err != nil {
		return ErrBackend.Wrapf(err, "redis SET %s", key)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	if err := s.client.Unlink(ctx, full...).Err(); err != nil {
		return ErrBackend.Wrapf(err, "redis UNLINK")
	}
	return nil
}

// Purge 用 SCAN 遍历匹配的 key，按批 UNLINK
func (s *RedisStore) Purge(ctx context.Context, prefix string) (int, error) {
	iter := s.client.Scan(ctx, 0, s.prefix+prefix+"*", purgeBatch).Iterator()

	removed := 0
	batch := make([]string, 0, purgeBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := s.client.Unlink(ctx, batch...).Result()
		if err != nil {
			return ErrBackend.Wrapf(err, "redis UNLINK")
		}
		removed += int(n)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == purgeBatch {
			if err := flush(); err != nil {
				return removed, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, ErrBackend.Wrapf(err, "redis SCAN %s*", prefix)
	}
	return removed, flush()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return ErrBackend.Wrapf(err, "redis %s 不可用", s.client.Options().Addr)
	}
	return nil
}

// Close 只关闭由 DialRedisStore 创建的客户端
func (s *RedisStore) Close() error {
	if !s.ownsClient {
		return nil
	}
	return s.client.Close()
}
