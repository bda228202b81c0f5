package xkeylock

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// Unlock 释放已获取的 key 锁。
// 幂等：第一次调用返回 nil，后续调用返回 [ErrNotHeld]。
type Unlock func() error

// Locker 提供基于 key 的进程内互斥锁。
// 必须通过 [New] 创建，所有方法并发安全。
type Locker struct {
	shards []shard
	mask   uint64
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

// lockEntry 表示一个 key 的锁条目。
// ch 是 size=1 的 channel，用作互斥量：发送成功即持有锁，接收即释放。
// refcnt 跟踪引用此条目的 goroutine 数量（持有者 + 等待者），归零时条目回收。
type lockEntry struct {
	ch     chan struct{}
	refcnt atomic.Int32
}

// New 创建 Locker 实例。
// 分片数不是 2 的幂时返回 [ErrInvalidShardCount]。
func New(opts ...Option) (*Locker, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	shards := make([]shard, o.shardCount)
	for i := range shards {
		shards[i].entries = make(map[string]*lockEntry)
	}
	return &Locker{
		shards: shards,
		mask:   uint64(o.shardCount - 1),
	}, nil
}

// Acquire 阻塞式获取 key 锁。
// ctx 取消时返回 ctx.Err()。key 为空时返回 [ErrEmptyKey]。
// 成功时返回解锁函数，调用方必须保证调用（建议 defer）。
func (l *Locker) Acquire(ctx context.Context, key string) (Unlock, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entry := l.getOrCreate(key)
	select {
	case entry.ch <- struct{}{}:
		return l.unlockFunc(key, entry), nil
	case <-ctx.Done():
		l.releaseRef(key, entry)
		return nil, ctx.Err()
	}
}

// TryAcquire 非阻塞获取 key 锁。
// 锁被占用时返回 (nil, false)。key 为空时视为获取失败。
func (l *Locker) TryAcquire(key string) (Unlock, bool) {
	if key == "" {
		return nil, false
	}

	entry := l.getOrCreate(key)
	select {
	case entry.ch <- struct{}{}:
		return l.unlockFunc(key, entry), true
	default:
		l.releaseRef(key, entry)
		return nil, false
	}
}

// Len 返回当前活跃的 key 数量（持有者 + 等待者），用于监控和调试。
func (l *Locker) Len() int {
	n := 0
	for i := range l.shards {
		s := &l.shards[i]
		s.mu.Lock()
		n += len(s.entries)
		s.mu.Unlock()
	}
	return n
}

func (l *Locker) getShard(key string) *shard {
	h := xxhash.Sum64String(key)
	return &l.shards[h&l.mask]
}

// getOrCreate 获取或创建 lockEntry，并增加引用计数。
func (l *Locker) getOrCreate(key string) *lockEntry {
	s := l.getShard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = &lockEntry{ch: make(chan struct{}, 1)}
		s.entries[key] = e
	}
	e.refcnt.Add(1)
	return e
}

// releaseRef 减少引用计数，归零时从 map 删除。
func (l *Locker) releaseRef(key string, entry *lockEntry) {
	s := l.getShard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.refcnt.Add(-1) == 0 {
		delete(s.entries, key)
	}
}

// unlockFunc 构造幂等的解锁函数。
func (l *Locker) unlockFunc(key string, entry *lockEntry) Unlock {
	var done atomic.Bool
	return func() error {
		if !done.CompareAndSwap(false, true) {
			return ErrNotHeld
		}
		<-entry.ch
		l.releaseRef(key, entry)
		return nil
	}
}
