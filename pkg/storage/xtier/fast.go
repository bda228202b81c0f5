package xtier

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// DefaultFastCapacity 是快速层的默认容量（条目数）。
const DefaultFastCapacity = 100

// FastTier 定义进程内快速缓存层的契约。
// 所有实现必须并发安全；Get/Set 均将条目标记为最近使用。
type FastTier interface {
	// Get 获取缓存值。
	// 缺失或已过期返回 (nil, false)；过期条目作为 miss 的副作用被删除。
	Get(key string) ([]byte, bool)

	// Set 写入/覆盖缓存值，ttl 为条目生存时间。
	// 容量已满且 key 为新 key 时按实现策略淘汰，淘汰不阻塞。
	Set(key string, value []byte, ttl time.Duration)

	// Delete 删除条目，幂等。
	Delete(key string)

	// Clear 清空所有条目。
	Clear()
}

// fastEntry 是快速层的内部条目。
type fastEntry struct {
	value    []byte
	storedAt time.Time
	ttl      time.Duration
}

// expired 判定条目在 now 时刻是否已过期，语义与 [Entry.Expired] 一致。
func (e fastEntry) expired(now time.Time) bool {
	return now.Sub(e.storedAt) > e.ttl
}

// FastLRUOption 定义 FastLRU 的可选配置。
type FastLRUOption func(*fastLRUOptions)

type fastLRUOptions struct {
	onEvicted func(key string, value []byte)
}

// WithOnEvicted 设置条目因容量淘汰或删除时的回调。
// 回调在内部互斥锁内同步执行：严禁在回调中调用缓存自身方法（会死锁），
// 也应避免耗时操作。
func WithOnEvicted(fn func(key string, value []byte)) FastLRUOption {
	return func(o *fastLRUOptions) {
		o.onEvicted = fn
	}
}

// FastLRU 是严格 LRU 语义的快速层实现：
// 条目级 TTL + 精确的单条目 LRU 淘汰，所有操作摊还 O(1)。
// 必须通过 [NewFastLRU] 创建。
type FastLRU struct {
	mu  sync.Mutex
	lru *simplelru.LRU[string, fastEntry]
}

// NewFastLRU 创建严格 LRU 快速层。
// capacity == 0 使用 [DefaultFastCapacity]；capacity < 0 返回 [ErrInvalidCapacity]。
//
// 设计决策: 基于 hashicorp/golang-lru/v2/simplelru 而非 expirable.LRU，
// 因为 expirable 只支持缓存级统一 TTL，而本层需要条目级 TTL。
// simplelru 非并发安全，由本层的互斥锁统一保护。
func NewFastLRU(capacity int, opts ...FastLRUOption) (*FastLRU, error) {
	if capacity < 0 {
		return nil, ErrInvalidCapacity
	}
	if capacity == 0 {
		capacity = DefaultFastCapacity
	}

	o := &fastLRUOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	var onEvict func(key string, e fastEntry)
	if o.onEvicted != nil {
		fn := o.onEvicted
		onEvict = func(key string, e fastEntry) {
			fn(key, e.value)
		}
	}

	lru, err := simplelru.NewLRU(capacity, onEvict)
	if err != nil {
		return nil, err
	}
	return &FastLRU{lru: lru}, nil
}

// Get 获取缓存值并将条目标记为最近使用。
// 过期条目被删除并返回 miss。
func (f *FastLRU) Get(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.lru.Get(key)
	if !ok {
		return nil, false
	}
	if e.expired(time.Now()) {
		f.lru.Remove(key)
		return nil, false
	}
	return e.value, true
}

// Set 写入缓存值。
// key 已存在时整体覆盖并刷新 TTL 与访问序；
// key 为新 key 且容量已满时，精确淘汰最久未访问的一个条目。
func (f *FastLRU) Set(key string, value []byte, ttl time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lru.Add(key, fastEntry{
		value:    value,
		storedAt: time.Now(),
		ttl:      ttl,
	})
}

// Delete 删除条目，幂等。
func (f *FastLRU) Delete(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lru.Remove(key)
}

// Clear 清空所有条目。
func (f *FastLRU) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lru.Purge()
}

// Len 返回当前条目数（可能包含尚未被惰性删除的过期条目）。
func (f *FastLRU) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lru.Len()
}

// 编译期接口检查。
var _ FastTier = (*FastLRU)(nil)
