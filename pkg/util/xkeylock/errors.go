package xkeylock

import "errors"

var (
	// ErrNotHeld 表示锁已被释放。
	// 解锁函数第二次及后续调用时返回此错误。
	ErrNotHeld = errors.New("xkeylock: lock not held")

	// ErrInvalidShardCount 表示分片数配置无效。
	ErrInvalidShardCount = errors.New("xkeylock: invalid shard count")

	// ErrEmptyKey 表示传入的 key 为空字符串。
	ErrEmptyKey = errors.New("xkeylock: empty key")
)
