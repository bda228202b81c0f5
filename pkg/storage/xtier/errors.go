package xtier

import "errors"

// =============================================================================
// 通用错误
// =============================================================================

var (
	// ErrClosed 表示缓存或存储已关闭。
	ErrClosed = errors.New("xtier: closed")

	// ErrEmptyKey 表示传入的 key 为空字符串。
	ErrEmptyKey = errors.New("xtier: empty key")
)

// =============================================================================
// FastTier 相关错误
// =============================================================================

var (
	// ErrInvalidCapacity 表示快速层容量配置无效（负数）。
	ErrInvalidCapacity = errors.New("xtier: capacity must not be negative")
)

// =============================================================================
// Store 相关错误
// =============================================================================

var (
	// ErrQuotaExceeded 表示持久层写入超过配额。
	// 触发一次过期清扫加单次重试后仍超额时，写入被静默丢弃，
	// 此错误只在存储实现内部流转，不会传播给调用方。
	ErrQuotaExceeded = errors.New("xtier: storage quota exceeded")

	// ErrNilDB 表示传入的数据库句柄为 nil。
	ErrNilDB = errors.New("xtier: nil db")

	// ErrEmptyPath 表示存储路径为空。
	ErrEmptyPath = errors.New("xtier: empty path")
)

// =============================================================================
// Sweeper 相关错误
// =============================================================================

var (
	// ErrNilStore 表示传入的 Store 为 nil。
	ErrNilStore = errors.New("xtier: nil store")

	// ErrInvalidSchedule 表示清扫调度表达式无效。
	ErrInvalidSchedule = errors.New("xtier: invalid sweep schedule")
)
