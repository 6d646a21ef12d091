package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore 进程内 LRU 存储
// 容量满时淘汰最久未访问的数据文件；过期条目在访问时惰性删除
type MemoryStore struct {
	name     string
	capacity int
	now      func() time.Time

	mu     sync.Mutex
	items  map[string]*list.Element
	order  *list.List // 头部为最近访问
	closed bool
}

type memoryEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// NewMemoryStore 创建内存存储，capacity <= 0 时使用 DefaultMaxSize
func NewMemoryStore(name string, capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMaxSize
	}
	return &MemoryStore{
		name:     name,
		capacity: capacity,
		now:      time.Now,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

func (s *MemoryStore) Name() string {
	return s.name
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	el, ok := s.items[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	e := el.Value.(*memoryEntry)
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		s.remove(el)
		return nil, ErrCacheMiss
	}
	s.order.MoveToFront(el)
	return e.value, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = s.now().Add(ttl)
	}

	if el, ok := s.items[key]; ok {
		e := el.Value.(*memoryEntry)
		e.value, e.expiresAt = value, expiresAt
		s.order.MoveToFront(el)
		return nil
	}

	for s.order.Len() >= s.capacity {
		s.remove(s.order.Back())
	}
	s.items[key] = s.order.PushFront(&memoryEntry{key: key, value: value, expiresAt: expiresAt})
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	for _, key := range keys {
		if el, ok := s.items[key]; ok {
			s.remove(el)
		}
	}
	return nil
}

func (s *MemoryStore) Purge(_ context.Context, prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}
	n := 0
	for key, el := range s.items {
		if strings.HasPrefix(key, prefix) {
			s.remove(el)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close 清空数据，之后的操作返回 ErrClosed。可重复调用
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.items = make(map[string]*list.Element)
	s.order.Init()
	return nil
}

// Len 当前条目数（含尚未清理的过期条目）
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

func (s *MemoryStore) remove(el *list.Element) {
	s.order.Remove(el)
	delete(s.items, el.Value.(*memoryEntry).key)
}
