package xtier

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemStore 是内存实现的持久层，仅用于测试与无盘部署。
// 进程退出后数据丢失，不受配额限制。
type MemStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	closed  bool
}

// NewMemStore 创建内存存储。
func NewMemStore() *MemStore {
	return &MemStore{entries: make(map[string]Entry)}
}

// Get 获取条目。过期条目视为未命中并被删除。
func (m *MemStore) Get(_ context.Context, key string) (Entry, bool) {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return Entry{}, false
	}
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return Entry{}, false
	}
	if e.Expired(time.Now()) {
		m.mu.Lock()
		// 双重检查：期间可能已被覆盖写入
		if cur, ok := m.entries[key]; ok && cur.Timestamp == e.Timestamp {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return Entry{}, false
	}
	return e, true
}

// Set 写入条目。内存存储没有配额，不会触发清理重试。
func (m *MemStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.entries[key] = NewEntry(value, ttl)
	return nil
}

// Delete 删除条目。
func (m *MemStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.entries, key)
	return nil
}

// Clear 清空所有条目。
func (m *MemStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.entries = make(map[string]Entry)
	return nil
}

// Sweep 删除所有过期条目。
func (m *MemStore) Sweep(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}
	now := time.Now()
	removed := 0
	for k, e := range m.entries {
		if e.Expired(now) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed, nil
}

// Len 返回当前条目数。
func (m *MemStore) Len(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, ErrClosed
	}
	return len(m.entries), nil
}

// Keys 返回所有以 prefix 开头的键。
func (m *MemStore) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		if prefix == "" || strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// Close 关闭存储并释放条目。
func (m *MemStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.entries = nil
	return nil
}

// 编译期接口检查。
var _ Store = (*MemStore)(nil)
