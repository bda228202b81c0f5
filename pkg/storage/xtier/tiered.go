package xtier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/wya0/DecoTV/pkg/util/xkeylock"
)

// CacheOption 定义配置分层缓存的函数类型。
type CacheOption func(*cacheOptions)

type cacheOptions struct {
	fast           FastTier
	store          Store
	fastEnabled    bool
	durableEnabled bool
	locker         *xkeylock.Locker
	logger         *slog.Logger
}

// WithFastTier 设置快速层实现。默认为容量 [DefaultFastCapacity] 的 [FastLRU]。
func WithFastTier(fast FastTier) CacheOption {
	return func(o *cacheOptions) {
		if fast != nil {
			o.fast = fast
		}
	}
}

// WithStore 设置持久层实现。默认为 [MemStore]。
func WithStore(store Store) CacheOption {
	return func(o *cacheOptions) {
		if store != nil {
			o.store = store
		}
	}
}

// WithFastEnabled 控制快速层开关。默认开启。
func WithFastEnabled(enabled bool) CacheOption {
	return func(o *cacheOptions) {
		o.fastEnabled = enabled
	}
}

// WithDurableEnabled 控制持久层开关。默认开启。
func WithDurableEnabled(enabled bool) CacheOption {
	return func(o *cacheOptions) {
		o.durableEnabled = enabled
	}
}

// WithKeyLock 设置回填用的键级锁。多个缓存实例共享同一底层存储时，
// 应传入同一把锁。
func WithKeyLock(locker *xkeylock.Locker) CacheOption {
	return func(o *cacheOptions) {
		if locker != nil {
			o.locker = locker
		}
	}
}

// WithCacheLogger 设置缓存的日志记录器。nil 时忽略。
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(o *cacheOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Cache 把快速层与持久层组合为单一的 get/set/delete/clear 门面。
//
// 读取顺序：快速层 → 持久层；持久层命中后以原 TTL 回填快速层。
// 写入同时落两层。两层都可独立关闭，全部关闭时退化为纯透传
// （所有读取都未命中）。
//
// 设计决策: 回填是典型的 read-modify-write 序列，并发读同一 key 时
// 用 [xkeylock.Locker] 串行化，避免多个 goroutine 重复解码回填。
// 持久层的写入失败只降级不上抛：缓存层故障的代价是变慢，不是出错。
type Cache struct {
	fast           FastTier
	store          Store
	fastEnabled    bool
	durableEnabled bool
	locker         *xkeylock.Locker
	logger         *slog.Logger
	closed         atomic.Bool
}

// New 创建分层缓存。
func New(opts ...CacheOption) (*Cache, error) {
	o := &cacheOptions{fastEnabled: true, durableEnabled: true}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.fast == nil {
		fast, err := NewFastLRU(DefaultFastCapacity)
		if err != nil {
			return nil, err
		}
		o.fast = fast
	}
	if o.store == nil {
		o.store = NewMemStore()
	}
	if o.locker == nil {
		locker, err := xkeylock.New()
		if err != nil {
			return nil, err
		}
		o.locker = locker
	}
	return &Cache{
		fast:           o.fast,
		store:          o.store,
		fastEnabled:    o.fastEnabled,
		durableEnabled: o.durableEnabled,
		locker:         o.locker,
		logger:         o.logger,
	}, nil
}

// Get 获取缓存值。快速层未命中时查持久层，命中则回填快速层。
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c.closed.Load() || key == "" {
		return nil, false
	}
	if c.fastEnabled {
		if v, ok := c.fast.Get(key); ok {
			return v, true
		}
	}
	if !c.durableEnabled {
		return nil, false
	}

	unlock, err := c.locker.Acquire(ctx, key)
	if err != nil {
		return nil, false
	}
	defer func() {
		if uerr := unlock(); uerr != nil {
			c.logWarn("release backfill lock failed", slog.Any("error", uerr))
		}
	}()

	// 双重检查：等锁期间可能已有其它 goroutine 完成回填
	if c.fastEnabled {
		if v, ok := c.fast.Get(key); ok {
			return v, true
		}
	}

	e, ok := c.store.Get(ctx, key)
	if !ok {
		return nil, false
	}
	if c.fastEnabled {
		c.fast.Set(key, e.Data, e.TTLDuration())
	}
	return e.Data, true
}

// Set 向所有开启的层写入。持久层写入失败只记日志，不影响返回值。
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if key == "" {
		return ErrEmptyKey
	}
	if c.fastEnabled {
		c.fast.Set(key, value, ttl)
	}
	if c.durableEnabled {
		if err := c.store.Set(ctx, key, value, ttl); err != nil {
			c.logWarn("durable set dropped",
				slog.String("key", key), slog.Any("error", err))
		}
	}
	return nil
}

// Delete 从所有开启的层删除。
func (c *Cache) Delete(ctx context.Context, key string) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if key == "" {
		return ErrEmptyKey
	}
	if c.fastEnabled {
		c.fast.Delete(key)
	}
	if c.durableEnabled {
		if err := c.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("xtier: durable delete: %w", err)
		}
	}
	return nil
}

// Clear 清空所有开启的层。
func (c *Cache) Clear(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if c.fastEnabled {
		c.fast.Clear()
	}
	if c.durableEnabled {
		if err := c.store.Clear(ctx); err != nil {
			return fmt.Errorf("xtier: durable clear: %w", err)
		}
	}
	return nil
}

// Sweep 清理持久层的过期条目，返回删除数量。
// 快速层的过期条目在读取与淘汰时惰性清理，无需扫描。
func (c *Cache) Sweep(ctx context.Context) (int, error) {
	if c.closed.Load() {
		return 0, ErrClosed
	}
	if !c.durableEnabled {
		return 0, nil
	}
	return c.store.Sweep(ctx)
}

// Store 返回持久层实现，供管理工具直接操作。
func (c *Cache) Store() Store {
	return c.store
}

// Close 关闭两层并释放资源。重复调用无害。
func (c *Cache) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	var errs []error
	if closer, ok := c.fast.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("xtier: close fast tier: %w", err))
		}
	}
	if err := c.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("xtier: close store: %w", err))
	}
	return errors.Join(errs...)
}

func (c *Cache) logWarn(msg string, attrs ...slog.Attr) {
	if c.logger == nil {
		return
	}
	c.logger.LogAttrs(context.Background(), slog.LevelWarn, msg, attrs...)
}
