package xtier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	retry "github.com/avast/retry-go/v5"
	"github.com/goccy/go-json"
)

// DefaultFileQuotaBytes 是文件存储的默认配额（5MB），
// 对应浏览器 localStorage 的常见上限。
const DefaultFileQuotaBytes = 5 * 1024 * 1024

// FileStoreOption 定义配置文件存储的函数类型。
type FileStoreOption func(*fileStoreOptions)

type fileStoreOptions struct {
	quotaBytes int64
	logger     *slog.Logger
}

// WithQuotaBytes 设置文件存储配额（字节）。n <= 0 时忽略。
func WithQuotaBytes(n int64) FileStoreOption {
	return func(o *fileStoreOptions) {
		if n > 0 {
			o.quotaBytes = n
		}
	}
}

// WithFileStoreLogger 设置文件存储的日志记录器。nil 时忽略。
func WithFileStoreLogger(logger *slog.Logger) FileStoreOption {
	return func(o *fileStoreOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// FileStore 是单 JSON 文件支撑的持久层。
//
// 文件内容是命名空间键到 [Entry] 的映射，整体读入内存，
// 每次变更全量序列化后以临时文件 + 原子重命名落盘。
//
// 设计决策: 条目在映射中保持 json.RawMessage 形态，读取时才解码。
// 这样单个条目损坏只影响自身（删除并按未命中处理），不会拖垮整个文件；
// 配额检查也可以直接用序列化后的字节数，与落盘大小一致。
//
// 写入超出配额时自动清理过期条目并重试一次，仍超出则放弃本次写入
// 并返回 [ErrQuotaExceeded]。
type FileStore struct {
	path   string
	quota  int64
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]json.RawMessage
	closed  bool
}

// NewFileStore 创建文件存储并加载已有数据。
// 文件不存在时从空映射开始；文件损坏时同样从空映射开始并记录警告。
func NewFileStore(path string, opts ...FileStoreOption) (*FileStore, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	o := &fileStoreOptions{quotaBytes: DefaultFileQuotaBytes}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("xtier: create store dir: %w", err)
	}

	fs := &FileStore{
		path:    path,
		quota:   o.quotaBytes,
		logger:  o.logger,
		entries: make(map[string]json.RawMessage),
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// 首次启动
	case err != nil:
		return nil, fmt.Errorf("xtier: read store file: %w", err)
	default:
		if uerr := json.Unmarshal(data, &fs.entries); uerr != nil {
			fs.logWarn("store file corrupted, starting empty",
				slog.String("path", path), slog.Any("error", uerr))
			fs.entries = make(map[string]json.RawMessage)
		}
	}
	return fs, nil
}

// Get 获取条目。过期或损坏的条目视为未命中并被删除。
func (f *FileStore) Get(ctx context.Context, key string) (Entry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return Entry{}, false
	}
	nsKey := StoreKeyPrefix + key
	raw, ok := f.entries[nsKey]
	if !ok {
		return Entry{}, false
	}
	e, err := decodeEntry(raw)
	if err != nil {
		f.logWarn("drop corrupted cache entry",
			slog.String("key", key), slog.Any("error", err))
		f.removeLocked(ctx, nsKey)
		return Entry{}, false
	}
	if e.Expired(time.Now()) {
		f.removeLocked(ctx, nsKey)
		return Entry{}, false
	}
	return e, true
}

// Set 写入条目。超出配额时清理过期条目后重试一次。
func (f *FileStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}

	raw, err := encodeEntry(NewEntry(value, ttl))
	if err != nil {
		return fmt.Errorf("xtier: encode entry: %w", err)
	}

	nsKey := StoreKeyPrefix + key
	prev, hadPrev := f.entries[nsKey]
	f.entries[nsKey] = raw

	err = retry.New(
		retry.Context(ctx),
		retry.Attempts(2),
		retry.LastErrorOnly(true),
		retry.DelayType(retry.FixedDelay),
		retry.Delay(0),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, ErrQuotaExceeded)
		}),
		retry.OnRetry(func(_ uint, _ error) {
			removed := f.sweepLocked()
			f.logWarn("quota exceeded, swept expired entries",
				slog.String("key", key), slog.Int("removed", removed))
		}),
	).Do(func() error {
		return f.persistLocked()
	})
	if err != nil {
		// 回滚映射，保持内存镜像与磁盘一致
		if hadPrev {
			f.entries[nsKey] = prev
		} else {
			delete(f.entries, nsKey)
		}
		return err
	}
	return nil
}

// Delete 删除条目。
func (f *FileStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	nsKey := StoreKeyPrefix + key
	if _, ok := f.entries[nsKey]; !ok {
		return nil
	}
	delete(f.entries, nsKey)
	return f.persistLocked()
}

// Clear 清空本命名空间下的所有条目，其它键原样保留。
func (f *FileStore) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	changed := false
	for k := range f.entries {
		if strings.HasPrefix(k, StoreKeyPrefix) {
			delete(f.entries, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return f.persistLocked()
}

// Sweep 删除所有过期条目。
func (f *FileStore) Sweep(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, ErrClosed
	}
	removed := f.sweepLocked()
	if removed == 0 {
		return 0, nil
	}
	return removed, f.persistLocked()
}

// Len 返回当前条目数。
func (f *FileStore) Len(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, ErrClosed
	}
	n := 0
	for k := range f.entries {
		if strings.HasPrefix(k, StoreKeyPrefix) {
			n++
		}
	}
	return n, nil
}

// Keys 返回所有以 prefix 开头的缓存键（不含命名空间前缀）。
func (f *FileStore) Keys(_ context.Context, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, ErrClosed
	}
	keys := make([]string, 0, len(f.entries))
	for k := range f.entries {
		bare, ok := strings.CutPrefix(k, StoreKeyPrefix)
		if !ok {
			continue
		}
		if prefix == "" || strings.HasPrefix(bare, prefix) {
			keys = append(keys, bare)
		}
	}
	return keys, nil
}

// Close 关闭存储。内存镜像在每次变更后已落盘，这里只释放资源。
func (f *FileStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	f.entries = nil
	return nil
}

// sweepLocked 删除过期条目与损坏条目，返回删除数量。调用方持有 f.mu。
func (f *FileStore) sweepLocked() int {
	now := time.Now()
	removed := 0
	for k, raw := range f.entries {
		if !strings.HasPrefix(k, StoreKeyPrefix) {
			continue
		}
		e, err := decodeEntry(raw)
		if err != nil || e.Expired(now) {
			delete(f.entries, k)
			removed++
		}
	}
	return removed
}

// removeLocked 删除条目并尽力落盘。读路径的顺手清理失败只记日志。
func (f *FileStore) removeLocked(_ context.Context, nsKey string) {
	delete(f.entries, nsKey)
	if err := f.persistLocked(); err != nil {
		f.logWarn("persist after lazy removal failed", slog.Any("error", err))
	}
}

// persistLocked 全量序列化并原子落盘。调用方持有 f.mu。
func (f *FileStore) persistLocked() error {
	data, err := json.Marshal(f.entries)
	if err != nil {
		return fmt.Errorf("xtier: encode store file: %w", err)
	}
	if int64(len(data)) > f.quota {
		return fmt.Errorf("%w: %d > %d bytes", ErrQuotaExceeded, len(data), f.quota)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("xtier: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("xtier: write store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("xtier: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("xtier: replace store file: %w", err)
	}
	return nil
}

func (f *FileStore) logWarn(msg string, attrs ...slog.Attr) {
	if f.logger == nil {
		return
	}
	f.logger.LogAttrs(context.Background(), slog.LevelWarn, msg, attrs...)
}

// 编译期接口检查。
var _ Store = (*FileStore)(nil)
