package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// DiskStore 基于 badger 的本地持久化存储
// hieractl 每次都是新进程，内存缓存无法跨次复用，落盘后 warm 的结果下次仍可命中
type DiskStore struct {
	name string
	db   *badger.DB
	once sync.Once
}

// OpenDiskStore 打开（或创建）dir 下的 badger 数据库
// dir 为空时使用纯内存模式，仅用于测试
func OpenDiskStore(name, dir string) (*DiskStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, ErrBackend.Wrapf(err, "打开 badger 目录 %s", dir)
	}
	return &DiskStore{name: name, db: db}, nil
}

func (s *DiskStore) Name() string {
	return s.name
}

func (s *DiskStore) Get(_ context.Context, key string) ([]byte, error) {
	if s.db.IsClosed() {
		return nil, ErrClosed
	}

	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil, ErrCacheMiss
	case err != nil:
		return nil, ErrBackend.Wrapf(err, "badger GET %s", key)
	}
	return val, nil
}

// Set ttl <= 0 表示永不过期
func (s *DiskStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if s.db.IsClosed() {
		return ErrClosed
	}

	e := badger.NewEntry([]byte(key), value)
	if ttl > 0 {
		e = e.WithTTL(ttl)
	}
	if err := s.db.Update(func(txn *badger.Txn) error { return txn.SetEntry(e) }); err != nil {
		return ErrBackend.Wrapf(err, "badger SET %s", key)
	}
	return nil
}

func (s *DiskStore) Delete(_ context.Context, keys ...string) error {
	if s.db.IsClosed() {
		return ErrClosed
	}
	if len(keys) == 0 {
		return nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete([]byte(k)); err != nil {
			return ErrBackend.Wrapf(err, "badger DELETE %s", k)
		}
	}
	if err := wb.Flush(); err != nil {
		return ErrBackend.Wrapf(err, "badger DELETE")
	}
	return nil
}

// Purge 先只读遍历收集 key，再批量删除；已过期的条目不计数
func (s *DiskStore) Purge(_ context.Context, prefix string) (int, error) {
	if s.db.IsClosed() {
		return 0, ErrClosed
	}

	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, ErrBackend.Wrapf(err, "badger SCAN %s*", prefix)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return 0, ErrBackend.Wrapf(err, "badger DELETE %s", k)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, ErrBackend.Wrapf(err, "badger DELETE %s*", prefix)
	}
	return len(keys), nil
}

func (s *DiskStore) Ping(context.Context) error {
	if s.db.IsClosed() {
		return ErrClosed
	}
	return nil
}

// Close 可重复调用
func (s *DiskStore) Close() error {
	var err error
	s.once.Do(func() {
		if cerr := s.db.Close(); cerr != nil {
			err = ErrBackend.Wrapf(cerr, "关闭 badger")
		}
	})
	return err
}
