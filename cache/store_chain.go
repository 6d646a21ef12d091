package cache

import (
	"context"
	"errors"
	"time"
)

// ChainStore 多级存储：按顺序查找，命中下层时回填上层
// 典型组合是进程内 MemoryStore 在前、共享 RedisStore 在后
type ChainStore struct {
	name        string
	tiers       []Store
	backfillTTL time.Duration
}

// NewChainStore 创建多级存储，tiers 从快到慢排列
func NewChainStore(name string, tiers ...Store) *ChainStore {
	return &ChainStore{name: name, tiers: tiers, backfillTTL: time.Minute}
}

// WithBackfillTTL 回填上层时使用的 TTL
func (s *ChainStore) WithBackfillTTL(ttl time.Duration) *ChainStore {
	s.backfillTTL = ttl
	return s
}

func (s *ChainStore) Name() string {
	return s.name
}

// Get 某一层出错时继续查下一层。有任意一层正常应答则按未命中处理，
// 所有层都出错时返回最后一个错误
func (s *ChainStore) Get(ctx context.Context, key string) ([]byte, error) {
	var lastErr error
	answered := false
	for i, tier := range s.tiers {
		val, err := tier.Get(ctx, key)
		if err != nil {
			if errors.Is(err, ErrCacheMiss) {
				answered = true
			} else {
				lastErr = err
			}
			continue
		}
		for _, upper := range s.tiers[:i] {
			_ = upper.Set(ctx, key, val, s.backfillTTL)
		}
		return val, nil
	}
	if !answered && lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrCacheMiss
}

func (s *ChainStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.each(func(tier Store) error {
		return tier.Set(ctx, key, value, ttl)
	})
}

func (s *ChainStore) Delete(ctx context.Context, keys ...string) error {
	return s.each(func(tier Store) error {
		return tier.Delete(ctx, keys...)
	})
}

// Purge 返回各层中删除数量最多的一层的数量
func (s *ChainStore) Purge(ctx context.Context, prefix string) (int, error) {
	most := 0
	err := s.each(func(tier Store) error {
		n, err := tier.Purge(ctx, prefix)
		if n > most {
			most = n
		}
		return err
	})
	return most, err
}

func (s *ChainStore) Ping(ctx context.Context) error {
	return s.each(func(tier Store) error {
		return tier.Ping(ctx)
	})
}

func (s *ChainStore) Close() error {
	return s.each(Store.Close)
}

// each 对每一层执行 fn，汇总所有错误
func (s *ChainStore) each(fn func(Store) error) error {
	var errs []error
	for _, tier := range s.tiers {
		if err := fn(tier); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
