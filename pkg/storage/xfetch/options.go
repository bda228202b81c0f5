package xfetch

import (
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	// DefaultTTL 是缓存写入的默认生存时间。
	DefaultTTL = 7200 * time.Second

	// DefaultDebounce 是依赖变化的默认防抖间隔。
	DefaultDebounce = 100 * time.Millisecond
)

// Option 定义配置协调器的函数类型。
type Option[T any] func(*options[T])

type options[T any] struct {
	ttl             time.Duration
	debounce        time.Duration
	cacheEnabled    bool
	fetchOnCreate   bool
	useSingleflight bool
	group           *singleflight.Group
	logger          *slog.Logger
	onChange        func(Result[T])
}

func defaultOptions[T any]() *options[T] {
	return &options[T]{
		ttl:             DefaultTTL,
		debounce:        DefaultDebounce,
		cacheEnabled:    true,
		fetchOnCreate:   true,
		useSingleflight: true,
	}
}

// WithTTL 设置缓存写入的生存时间。d <= 0 时忽略。
func WithTTL[T any](d time.Duration) Option[T] {
	return func(o *options[T]) {
		if d > 0 {
			o.ttl = d
		}
	}
}

// WithDebounce 设置依赖变化的防抖间隔。
// d == 0 表示不防抖（依赖变化立即进入取数流程）；d < 0 时忽略。
func WithDebounce[T any](d time.Duration) Option[T] {
	return func(o *options[T]) {
		if d >= 0 {
			o.debounce = d
		}
	}
}

// WithCacheEnabled 控制是否读写缓存。
// 关闭后每次取数都调用生产函数，结果也不落缓存。默认开启。
func WithCacheEnabled[T any](enabled bool) Option[T] {
	return func(o *options[T]) {
		o.cacheEnabled = enabled
	}
}

// WithFetchOnCreate 控制首次 Observe 是否触发取数。
// 关闭后首次 Observe 只记录依赖快照，后续变化才触发。默认开启。
func WithFetchOnCreate[T any](enabled bool) Option[T] {
	return func(o *options[T]) {
		o.fetchOnCreate = enabled
	}
}

// WithSingleflight 控制是否按缓存键去重并发的生产函数调用。默认开启。
func WithSingleflight[T any](enabled bool) Option[T] {
	return func(o *options[T]) {
		o.useSingleflight = enabled
	}
}

// WithGroup 设置共享的 singleflight 组，使观察相同键的多个协调器
// 共享同一次生产函数调用。共享组的所有协调器必须使用相同的负载类型 T。
// nil 时忽略。
func WithGroup[T any](g *singleflight.Group) Option[T] {
	return func(o *options[T]) {
		if g != nil {
			o.group = g
			o.useSingleflight = true
		}
	}
}

// WithLogger 设置日志记录器。nil 时忽略。
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(o *options[T]) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithOnChange 设置结果变化回调，每次发布（进入加载、成功、失败）
// 时同步调用。回调在协调器内部锁内执行：严禁在回调中调用协调器
// 自身方法（会死锁），也应避免耗时操作。
func WithOnChange[T any](fn func(Result[T])) Option[T] {
	return func(o *options[T]) {
		o.onChange = fn
	}
}
