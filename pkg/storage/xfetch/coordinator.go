package xfetch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/wya0/DecoTV/pkg/storage/xtier"
	"github.com/wya0/DecoTV/pkg/util/xkey"
)

// Producer 是取数函数：产出一个类型化的值或错误。
// ctx 在协调器关闭时取消，作为协作式停止信号；协调器不会强行中断
// 执行中的 Producer，只会过滤其过期结果。
type Producer[T any] func(ctx context.Context) (T, error)

// Result 是协调器对外发布的结果快照。
type Result[T any] struct {
	// Data 是最近一次成功取数的值。取数失败时保留上一个好值。
	Data T

	// Loading 表示当前处于防抖或取数过程中。
	Loading bool

	// Err 是最近一次取数的错误，成功时为 nil。
	Err error

	// FromCache 表示 Data 来自缓存命中而非生产函数。
	FromCache bool
}

// Coordinator 为单个逻辑查询协调取数、防抖与缓存。
//
// 调用方通过 Observe 提交最新的依赖参数；协调器计算缓存键，
// 先查 [xtier.Cache]，未命中则在防抖间隔后调用生产函数，
// 并保证发布的结果永远与最新一次提交的依赖一致。
//
// 设计决策: 陈旧结果的过滤依赖「纪元 + 快照」双重校验。任何依赖
// 变化都会递增纪元；生产函数完成时若纪元或依赖快照已不匹配派发
// 时刻的值，结果被静默丢弃。不取消在途调用、只过滤其结果，换来
// 生产函数完全无需感知取消语义。
//
// 所有方法并发安全。
type Coordinator[T any] struct {
	cache    *xtier.Cache
	prefix   string
	producer Producer[T]

	ttl           time.Duration
	debounce      time.Duration
	cacheEnabled  bool
	fetchOnCreate bool
	sf            *singleflight.Group
	logger        *slog.Logger
	onChange      func(Result[T])

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu       sync.Mutex
	epoch    uint64
	snapshot string
	key      string
	state    State
	result   Result[T]
	timer    *time.Timer
	observed bool
	closed   bool
}

// New 创建协调器。cache、producer 不可为 nil，prefix 不可为空。
func New[T any](cache *xtier.Cache, prefix string, producer Producer[T], opts ...Option[T]) (*Coordinator[T], error) {
	if cache == nil {
		return nil, ErrNilCache
	}
	if producer == nil {
		return nil, ErrNilProducer
	}
	if prefix == "" {
		return nil, ErrEmptyPrefix
	}

	o := defaultOptions[T]()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	var sf *singleflight.Group
	if o.useSingleflight {
		sf = o.group
		if sf == nil {
			sf = &singleflight.Group{}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator[T]{
		cache:         cache,
		prefix:        prefix,
		producer:      producer,
		ttl:           o.ttl,
		debounce:      o.debounce,
		cacheEnabled:  o.cacheEnabled,
		fetchOnCreate: o.fetchOnCreate,
		sf:            sf,
		logger:        o.logger,
		onChange:      o.onChange,
		baseCtx:       ctx,
		cancel:        cancel,
	}, nil
}

// Observe 提交最新的依赖参数。
//
// 依赖与上次提交相同（规范化后集合相等）时是无操作。
// 依赖变化时：取消未触发的防抖计时器、递增纪元（使尚未落地的在途
// 结果全部失效）、重新开始一个防抖窗口。窗口内再次变化只保留最后
// 一次，前面的变化被完整取代、绝不会部分执行。
func (c *Coordinator[T]) Observe(ctx context.Context, params xkey.Params) error {
	snap := xkey.Snapshot(params)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.observed && snap == c.snapshot {
		return nil
	}

	first := !c.observed
	c.observed = true
	c.snapshot = snap
	c.key = xkey.Build(c.prefix, params)
	c.epoch++
	c.stopTimerLocked()

	if first && !c.fetchOnCreate {
		return nil
	}

	c.state = StateDebouncing
	c.result.Loading = true
	c.notifyLocked()

	epoch := c.epoch
	c.timer = time.AfterFunc(c.debounce, func() {
		c.onDebounceFired(epoch)
	})
	return nil
}

// Refresh 立即重新取数：递增纪元、跳过防抖与缓存读取，
// 直接调用生产函数。结果仍会写入缓存。
func (c *Coordinator[T]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if !c.observed {
		return ErrNotObserved
	}
	c.stopTimerLocked()
	c.epoch++
	c.dispatchLocked(c.epoch)
	return nil
}

// InvalidateCache 删除当前键的缓存条目。
// 已发布的结果与在途取数不受影响。
func (c *Coordinator[T]) InvalidateCache(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if !c.observed {
		c.mu.Unlock()
		return ErrNotObserved
	}
	key := c.key
	c.mu.Unlock()

	return c.cache.Delete(ctx, key)
}

// Current 返回当前结果快照。
func (c *Coordinator[T]) Current() Result[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// State 返回当前状态。
func (c *Coordinator[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Key 返回当前依赖对应的缓存键。尚未 Observe 时为空串。
func (c *Coordinator[T]) Key() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.key
}

// Close 关闭协调器：取消未触发的计时器、最后一次递增纪元保证所有
// 在途结果被丢弃、取消传给生产函数的上下文，并等待在途生产函数
// goroutine 返回。幂等。
func (c *Coordinator[T]) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.stopTimerLocked()
	c.epoch++
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
	return nil
}

// onDebounceFired 在防抖计时器触发时执行。
// epoch 是调度该计时器时的纪元，落后于当前纪元说明已被更新的依赖
// 变化取代，直接放弃。
func (c *Coordinator[T]) onDebounceFired(epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || epoch != c.epoch {
		return
	}

	if c.cacheEnabled {
		if raw, ok := c.cache.Get(c.baseCtx, c.key); ok {
			var v T
			if err := json.Unmarshal(raw, &v); err == nil {
				c.result = Result[T]{Data: v, FromCache: true}
				c.state = StateResolved
				c.notifyLocked()
				return
			} else {
				// 缓存负载无法还原为 T：按损坏条目处理，删除并落到取数路径
				c.logWarn("drop undecodable cached value",
					slog.String("key", c.key), slog.Any("error", err))
				if derr := c.cache.Delete(c.baseCtx, c.key); derr != nil {
					c.logWarn("delete undecodable cached value failed",
						slog.String("key", c.key), slog.Any("error", derr))
				}
			}
		}
	}

	c.dispatchLocked(epoch)
}

// dispatchLocked 以给定纪元派发一次生产函数调用。调用方持有 c.mu。
func (c *Coordinator[T]) dispatchLocked(epoch uint64) {
	c.state = StateFetching
	c.result.Loading = true
	c.notifyLocked()

	snapshot := c.snapshot
	key := c.key
	c.wg.Add(1)
	go c.fetch(epoch, snapshot, key)
}

// fetch 执行生产函数并在结果仍然新鲜时发布。
func (c *Coordinator[T]) fetch(epoch uint64, snapshot, key string) {
	defer c.wg.Done()

	value, err := c.invokeProducer(key)

	c.mu.Lock()
	// 陈旧结果守卫：纪元、快照、关闭状态三者任一不匹配都静默丢弃
	if c.closed || epoch != c.epoch || snapshot != c.snapshot {
		c.mu.Unlock()
		c.logDebug("discard stale producer result", slog.String("key", key))
		return
	}

	if err != nil {
		c.result.Loading = false
		c.result.FromCache = false
		c.result.Err = err
		c.state = StateFailed
		c.notifyLocked()
		c.mu.Unlock()
		return
	}

	c.result = Result[T]{Data: value}
	c.state = StateResolved
	c.notifyLocked()
	cacheEnabled := c.cacheEnabled
	ttl := c.ttl
	c.mu.Unlock()

	if !cacheEnabled {
		return
	}
	raw, merr := json.Marshal(value)
	if merr != nil {
		c.logWarn("skip cache write, marshal failed",
			slog.String("key", key), slog.Any("error", merr))
		return
	}
	if serr := c.cache.Set(context.WithoutCancel(c.baseCtx), key, raw, ttl); serr != nil {
		c.logWarn("cache write dropped",
			slog.String("key", key), slog.Any("error", serr))
	}
}

// invokeProducer 调用生产函数，按需经过 singleflight 去重。
// 生产函数的 panic 被捕获并转换为 [ErrProducerPanic]。
func (c *Coordinator[T]) invokeProducer(key string) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrProducerPanic, r)
		}
	}()

	if c.sf == nil {
		return c.producer(c.baseCtx)
	}
	res, err, _ := c.sf.Do(key, func() (any, error) {
		return c.producer(c.baseCtx)
	})
	if err != nil {
		return value, err
	}
	typed, ok := res.(T)
	if !ok {
		return value, fmt.Errorf("%w: %T", ErrGroupPayloadType, res)
	}
	return typed, nil
}

func (c *Coordinator[T]) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Coordinator[T]) notifyLocked() {
	if c.onChange != nil {
		c.onChange(c.result)
	}
}

func (c *Coordinator[T]) logWarn(msg string, attrs ...slog.Attr) {
	if c.logger == nil {
		return
	}
	c.logger.LogAttrs(context.Background(), slog.LevelWarn, msg, attrs...)
}

func (c *Coordinator[T]) logDebug(msg string, attrs ...slog.Attr) {
	if c.logger == nil {
		return
	}
	c.logger.LogAttrs(context.Background(), slog.LevelDebug, msg, attrs...)
}
