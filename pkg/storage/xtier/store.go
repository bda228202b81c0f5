package xtier

import (
	"context"
	"time"
)

// Store 定义持久缓存层的契约。
//
// 与 [FastTier] 的差异：持久层的写入可能失败（配额、磁盘等），
// 读取按 [Entry] 封装格式解码；过期与损坏条目在读取时惰性清理。
//
// 所有实现必须并发安全。
type Store interface {
	// Get 获取条目。过期或无法解码的条目视为未命中，并被顺手删除。
	// found 为 false 时返回零值 Entry。
	Get(ctx context.Context, key string) (entry Entry, found bool)

	// Set 以 ttl 封装 value 并写入。value 必须是合法 JSON
	// （持久化格式的 data 字段按原样内嵌）。写入失败时先清理
	// 过期条目再重试一次，仍失败则返回错误。
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete 删除条目。key 不存在不是错误。
	Delete(ctx context.Context, key string) error

	// Clear 清空本存储命名空间下的所有条目。
	Clear(ctx context.Context) error

	// Sweep 删除所有已过期条目，返回删除数量。
	Sweep(ctx context.Context) (removed int, err error)

	// Len 返回当前条目数（含尚未清理的过期条目）。
	Len(ctx context.Context) (int, error)

	// Keys 返回所有以 prefix 开头的缓存键。prefix 为空返回全部。
	// 返回的键不含 [StoreKeyPrefix] 命名空间前缀。
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close 释放底层资源。关闭后所有操作返回 [ErrClosed]。
	Close() error
}
