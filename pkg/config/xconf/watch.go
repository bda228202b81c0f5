package xconf

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchCallback 在配置文件变更并重载后调用，err 表示重载是否成功。
type WatchCallback func(f *File, err error)

// WatchOption 定义监视器配置选项。
type WatchOption func(*watchOptions)

type watchOptions struct {
	debounce time.Duration
}

// WithWatchDebounce 设置变更事件的防抖时间：窗口内的多次变更
// 只触发一次重载。默认 100ms。d <= 0 时忽略。
func WithWatchDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// Watcher 监视配置文件变更并自动重载。
//
// 设计决策: 监视的是配置文件所在目录而非文件本身。编辑器保存文件
// 常常是「写临时文件 + 重命名」，直接监视文件会在重命名后丢失事件。
type Watcher struct {
	file     *File
	fsw      *fsnotify.Watcher
	callback WatchCallback
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	running bool
	done    chan struct{}
}

// Watch 创建配置文件监视器。
// 只能监视从文件创建的配置；从字节数据创建的返回 [ErrNotReloadable]。
// 返回的 Watcher 需调用 Start 开始监视，Stop 停止。
func Watch(f *File, callback WatchCallback, opts ...WatchOption) (*Watcher, error) {
	if f.Path() == "" {
		return nil, ErrNotReloadable
	}

	o := &watchOptions{debounce: 100 * time.Millisecond}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("xconf: create watcher: %w", err)
	}
	dir := filepath.Dir(f.Path())
	if err := fsw.Add(dir); err != nil {
		closeErr := fsw.Close()
		return nil, errors.Join(
			fmt.Errorf("xconf: watch directory %s: %w", dir, err),
			closeErr,
		)
	}

	return &Watcher{
		file:     f,
		fsw:      fsw,
		callback: callback,
		debounce: o.debounce,
	}, nil
}

// Start 开始监视。重复调用无害。
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true
	w.done = make(chan struct{})
	go w.loop(w.done)
}

// Stop 停止监视并释放资源。重复调用无害。
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	done := w.done
	w.mu.Unlock()

	err := w.fsw.Close()
	<-done
	return err
}

func (w *Watcher) loop(done chan struct{}) {
	defer close(done)
	target := filepath.Clean(w.file.Path())

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

// scheduleReload 重置防抖计时器，窗口结束后执行一次重载。
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		err := w.file.Reload()
		if w.callback != nil {
			w.callback(w.file, err)
		}
	})
}
