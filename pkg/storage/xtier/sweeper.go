package xtier

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSweepSchedule 是后台清扫的默认调度表达式。
const DefaultSweepSchedule = "@every 10m"

// SweeperOption 定义配置清扫器的函数类型。
type SweeperOption func(*sweeperOptions)

type sweeperOptions struct {
	schedule string
	timeout  time.Duration
	logger   *slog.Logger
}

// WithSweepSchedule 设置调度表达式（robfig/cron 语法，
// 支持 @every 与标准五字段表达式）。空串时忽略。
func WithSweepSchedule(schedule string) SweeperOption {
	return func(o *sweeperOptions) {
		if schedule != "" {
			o.schedule = schedule
		}
	}
}

// WithSweepTimeout 设置单次清扫的超时。d <= 0 时忽略。
func WithSweepTimeout(d time.Duration) SweeperOption {
	return func(o *sweeperOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithSweeperLogger 设置清扫器的日志记录器。nil 时忽略。
func WithSweeperLogger(logger *slog.Logger) SweeperOption {
	return func(o *sweeperOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Sweeper 按计划清理持久层的过期条目。
//
// 过期条目平时靠读取路径惰性清理，但不再被读到的条目会一直占用
// 配额，后台清扫负责兜底回收。
type Sweeper struct {
	store    Store
	schedule string
	timeout  time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	started bool
}

// NewSweeper 创建清扫器。store 不可为 nil。
func NewSweeper(store Store, opts ...SweeperOption) (*Sweeper, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	o := &sweeperOptions{
		schedule: DefaultSweepSchedule,
		timeout:  time.Minute,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return &Sweeper{
		store:    store,
		schedule: o.schedule,
		timeout:  o.timeout,
		logger:   o.logger,
	}, nil
}

// Start 启动后台调度。重复调用无害。
func (s *Sweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(s.schedule, s.sweepOnce); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidSchedule, s.schedule, err)
	}
	c.Start()
	s.cron = c
	s.started = true
	return nil
}

// Stop 停止调度并等待进行中的清扫完成。重复调用无害。
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
	s.started = false
}

// SweepNow 立即执行一次清扫，返回删除数量。不依赖调度是否启动。
func (s *Sweeper) SweepNow(ctx context.Context) (int, error) {
	return s.store.Sweep(ctx)
}

func (s *Sweeper) sweepOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	removed, err := s.store.Sweep(ctx)
	if err != nil {
		s.logWarn("scheduled sweep failed", slog.Any("error", err))
		return
	}
	if removed > 0 {
		s.logInfo("scheduled sweep done",
			slog.Int("removed", removed),
			slog.Duration("elapsed", time.Since(start)))
	}
}

func (s *Sweeper) logWarn(msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(context.Background(), slog.LevelWarn, msg, attrs...)
}

func (s *Sweeper) logInfo(msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(context.Background(), slog.LevelInfo, msg, attrs...)
}
