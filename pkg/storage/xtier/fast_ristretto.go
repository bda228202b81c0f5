package xtier

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// MinRistrettoMaxCost 是 ristretto 快速层的最小容量（1MB）。
// 过小的容量会导致频繁淘汰，影响命中率。
const MinRistrettoMaxCost = 1 * 1024 * 1024

// RistrettoOptions 定义 ristretto 快速层的配置选项。
type RistrettoOptions struct {
	// NumCounters 用于跟踪访问频率的计数器数量。
	// 建议设置为预期 key 数量的 10 倍。默认为 1e6。
	NumCounters int64

	// MaxCost 缓存最大容量（字节）。默认为 64MB。
	MaxCost int64

	// BufferItems 写入缓冲区大小。默认为 64。
	BufferItems int64
}

// RistrettoOption 定义配置 ristretto 快速层的函数类型。
type RistrettoOption func(*RistrettoOptions)

func defaultRistrettoOptions() *RistrettoOptions {
	return &RistrettoOptions{
		NumCounters: 1e6,
		MaxCost:     64 * 1024 * 1024,
		BufferItems: 64,
	}
}

// WithRistrettoNumCounters 设置频率计数器数量。n <= 0 时忽略。
func WithRistrettoNumCounters(n int64) RistrettoOption {
	return func(o *RistrettoOptions) {
		if n > 0 {
			o.NumCounters = n
		}
	}
}

// WithRistrettoMaxCost 设置最大容量（字节）。
// cost <= 0 时忽略；小于 [MinRistrettoMaxCost] 时提升为该值。
func WithRistrettoMaxCost(cost int64) RistrettoOption {
	return func(o *RistrettoOptions) {
		if cost > 0 {
			if cost < MinRistrettoMaxCost {
				cost = MinRistrettoMaxCost
			}
			o.MaxCost = cost
		}
	}
}

// WithRistrettoBufferItems 设置写入缓冲区大小。n <= 0 时忽略。
func WithRistrettoBufferItems(n int64) RistrettoOption {
	return func(o *RistrettoOptions) {
		if n > 0 {
			o.BufferItems = n
		}
	}
}

// FastRistretto 是 ristretto 支撑的快速层替代实现。
//
// 与 [FastLRU] 的差异：
//   - 淘汰策略是 TinyLFU 准入 + 采样淘汰，非严格 LRU，
//     「恰好淘汰最久未访问条目」的保证不适用于本实现
//   - 容量按字节（cost）而非条目数计
//   - 写入是异步的：Set 后立即 Get 可能 miss，测试场景需调用 [FastRistretto.Wait]
//
// 适合条目数大、允许近似淘汰、追求吞吐的部署；默认部署使用 FastLRU。
type FastRistretto struct {
	cache *ristretto.Cache[string, []byte]
}

// NewFastRistretto 创建 ristretto 快速层。
func NewFastRistretto(opts ...RistrettoOption) (*FastRistretto, error) {
	o := defaultRistrettoOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: o.NumCounters,
		MaxCost:     o.MaxCost,
		BufferItems: o.BufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("xtier: create ristretto cache: %w", err)
	}
	return &FastRistretto{cache: cache}, nil
}

// Get 获取缓存值。TTL 过期由 ristretto 原生处理。
func (f *FastRistretto) Get(key string) ([]byte, bool) {
	return f.cache.Get(key)
}

// Set 写入缓存值，cost 取负载字节数。
// 写入是异步的，且可能被 TinyLFU 准入策略拒绝。
func (f *FastRistretto) Set(key string, value []byte, ttl time.Duration) {
	f.cache.SetWithTTL(key, value, int64(len(value)), ttl)
}

// Delete 删除条目。
func (f *FastRistretto) Delete(key string) {
	f.cache.Del(key)
}

// Clear 清空所有条目。
func (f *FastRistretto) Clear() {
	f.cache.Clear()
}

// Wait 等待所有缓冲的写入完成。
// 需要写后读一致性的场景（如测试）必须调用。
func (f *FastRistretto) Wait() {
	f.cache.Wait()
}

// Close 关闭缓存，释放内部 goroutine。
func (f *FastRistretto) Close() error {
	f.cache.Close()
	return nil
}

// 编译期接口检查。
var _ FastTier = (*FastRistretto)(nil)
