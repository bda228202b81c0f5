package xtier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStoreOption 定义配置 badger 存储的函数类型。
type BadgerStoreOption func(*badgerStoreOptions)

type badgerStoreOptions struct {
	inMemory bool
	logger   *slog.Logger
}

// WithBadgerInMemory 使用纯内存模式打开 badger，仅用于测试。
// 只对 [OpenBadgerStore] 生效。
func WithBadgerInMemory() BadgerStoreOption {
	return func(o *badgerStoreOptions) {
		o.inMemory = true
	}
}

// WithBadgerLogger 设置 badger 存储的日志记录器。nil 时忽略。
func WithBadgerLogger(logger *slog.Logger) BadgerStoreOption {
	return func(o *badgerStoreOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// BadgerStore 是 badger 支撑的持久层，面向条目数大、
// 单文件 JSON 存储写放大无法接受的部署。
//
// 设计决策: 条目仍按 [Entry] 封装写入，同时叠加 badger 原生 TTL
// 作为兜底。双层 TTL 看似冗余，但 Entry 封装保证三种存储格式一致、
// 可互相迁移，badger TTL 则让漏扫的过期数据最终被引擎自行回收。
type BadgerStore struct {
	db     *badger.DB
	ownsDB bool
	logger *slog.Logger
}

// NewBadgerStore 以外部管理的 db 创建存储。Close 不会关闭该 db。
func NewBadgerStore(db *badger.DB, opts ...BadgerStoreOption) (*BadgerStore, error) {
	if db == nil {
		return nil, ErrNilDB
	}
	o := applyBadgerOptions(opts)
	return &BadgerStore{db: db, logger: o.logger}, nil
}

// OpenBadgerStore 在 dir 打开自有的 badger 实例并创建存储。
// Close 会一并关闭该实例。
func OpenBadgerStore(dir string, opts ...BadgerStoreOption) (*BadgerStore, error) {
	o := applyBadgerOptions(opts)
	var bopts badger.Options
	if o.inMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	} else {
		if dir == "" {
			return nil, ErrEmptyPath
		}
		bopts = badger.DefaultOptions(dir).WithLogger(nil)
	}
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("xtier: open badger: %w", err)
	}
	return &BadgerStore{db: db, ownsDB: true, logger: o.logger}, nil
}

func applyBadgerOptions(opts []BadgerStoreOption) *badgerStoreOptions {
	o := &badgerStoreOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// Get 获取条目。过期或损坏的条目视为未命中并被删除。
func (b *BadgerStore) Get(ctx context.Context, key string) (Entry, bool) {
	if b.db.IsClosed() {
		return Entry{}, false
	}
	nsKey := []byte(StoreKeyPrefix + key)

	var raw []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(nsKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			raw = append([]byte(nil), val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Entry{}, false
	}
	if err != nil {
		b.logWarn("badger read failed", slog.String("key", key), slog.Any("error", err))
		return Entry{}, false
	}

	e, derr := decodeEntry(raw)
	if derr != nil {
		b.logWarn("drop corrupted cache entry", slog.String("key", key), slog.Any("error", derr))
		b.remove(nsKey)
		return Entry{}, false
	}
	if e.Expired(time.Now()) {
		b.remove(nsKey)
		return Entry{}, false
	}
	return e, true
}

// Set 写入条目。badger 自身不设配额，写入失败直接返回错误。
func (b *BadgerStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	if b.db.IsClosed() {
		return ErrClosed
	}
	raw, err := encodeEntry(NewEntry(value, ttl))
	if err != nil {
		return fmt.Errorf("xtier: encode entry: %w", err)
	}
	nsKey := []byte(StoreKeyPrefix + key)
	err = b.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(nsKey, raw)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("xtier: badger set: %w", err)
	}
	return nil
}

// Delete 删除条目。
func (b *BadgerStore) Delete(ctx context.Context, key string) error {
	if b.db.IsClosed() {
		return ErrClosed
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(StoreKeyPrefix + key))
	})
	if err != nil {
		return fmt.Errorf("xtier: badger delete: %w", err)
	}
	return nil
}

// Clear 清空本命名空间下的所有条目。
func (b *BadgerStore) Clear(ctx context.Context) error {
	if b.db.IsClosed() {
		return ErrClosed
	}
	if err := b.db.DropPrefix([]byte(StoreKeyPrefix)); err != nil {
		return fmt.Errorf("xtier: badger drop prefix: %w", err)
	}
	return nil
}

// Sweep 删除所有按 [Entry] 时间戳判定过期的条目。
func (b *BadgerStore) Sweep(ctx context.Context) (int, error) {
	if b.db.IsClosed() {
		return 0, ErrClosed
	}
	now := time.Now()
	var expired [][]byte

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(StoreKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			var raw []byte
			if err := item.Value(func(val []byte) error {
				raw = append([]byte(nil), val...)
				return nil
			}); err != nil {
				continue
			}
			e, derr := decodeEntry(raw)
			if derr != nil || e.Expired(now) {
				expired = append(expired, item.KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("xtier: badger sweep scan: %w", err)
	}

	removed := 0
	for _, k := range expired {
		if err := b.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(k)
		}); err != nil {
			b.logWarn("sweep delete failed", slog.String("key", string(k)), slog.Any("error", err))
			continue
		}
		removed++
	}
	return removed, nil
}

// Len 返回当前条目数（含尚未清理的过期条目）。
func (b *BadgerStore) Len(ctx context.Context) (int, error) {
	if b.db.IsClosed() {
		return 0, ErrClosed
	}
	n := 0
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(StoreKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("xtier: badger count: %w", err)
	}
	return n, nil
}

// Keys 返回所有以 prefix 开头的缓存键（不含命名空间前缀）。
func (b *BadgerStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	if b.db.IsClosed() {
		return nil, ErrClosed
	}
	var keys []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		nsPrefix := []byte(StoreKeyPrefix + prefix)
		for it.Seek(nsPrefix); it.ValidForPrefix(nsPrefix); it.Next() {
			bare := strings.TrimPrefix(string(it.Item().Key()), StoreKeyPrefix)
			keys = append(keys, bare)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("xtier: badger list keys: %w", err)
	}
	return keys, nil
}

// Close 释放底层资源。仅当 db 由本存储打开时才关闭它。
func (b *BadgerStore) Close() error {
	if !b.ownsDB {
		return nil
	}
	if b.db.IsClosed() {
		return nil
	}
	return b.db.Close()
}

// remove 是读路径的顺手清理，失败只记日志。
func (b *BadgerStore) remove(nsKey []byte) {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(nsKey)
	})
	if err != nil {
		b.logWarn("lazy removal failed", slog.String("key", string(nsKey)), slog.Any("error", err))
	}
}

func (b *BadgerStore) logWarn(msg string, attrs ...slog.Attr) {
	if b.logger == nil {
		return
	}
	b.logger.LogAttrs(context.Background(), slog.LevelWarn, msg, attrs...)
}

// 编译期接口检查。
var _ Store = (*BadgerStore)(nil)
