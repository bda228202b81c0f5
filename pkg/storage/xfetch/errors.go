package xfetch

import "errors"

// =============================================================================
// 生命周期相关错误
// =============================================================================

var (
	// ErrClosed 表示协调器已关闭。
	ErrClosed = errors.New("xfetch: coordinator closed")

	// ErrNilCache 表示未提供缓存实例。
	ErrNilCache = errors.New("xfetch: nil cache")

	// ErrNilProducer 表示未提供生产函数。
	ErrNilProducer = errors.New("xfetch: nil producer")

	// ErrEmptyPrefix 表示缓存键前缀为空。
	ErrEmptyPrefix = errors.New("xfetch: empty key prefix")

	// ErrNotObserved 表示尚未通过 Observe 提供过依赖，
	// 协调器还没有可操作的缓存键。
	ErrNotObserved = errors.New("xfetch: no dependencies observed yet")
)

// =============================================================================
// 取数相关错误
// =============================================================================

var (
	// ErrProducerPanic 表示生产函数发生 panic。
	// panic 被转换为错误结果，不会让协调器或其调用方崩溃。
	ErrProducerPanic = errors.New("xfetch: producer panicked")

	// ErrGroupPayloadType 表示共享 singleflight 组返回了类型不符的负载。
	// 共享同一组的协调器必须使用相同的负载类型。
	ErrGroupPayloadType = errors.New("xfetch: shared group returned unexpected payload type")
)
