package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wya0/DecoTV/pkg/config/xconf"
	"github.com/wya0/DecoTV/pkg/storage/xtier"
)

// exitError 表示需要非零退出码但已完成输出的场景。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return "" }

// usageError 表示参数错误，run() 映射为退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// createCommands 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "stats",
			Usage: "查看条目统计",
			Action: withStore(func(ctx context.Context, store xtier.Store, cmd *cli.Command) error {
				return cmdStats(ctx, store, os.Stdout)
			}),
		},
		{
			Name:      "list",
			Usage:     "列出缓存键，可按前缀过滤",
			ArgsUsage: "[prefix]",
			Action: withStore(func(ctx context.Context, store xtier.Store, cmd *cli.Command) error {
				return cmdList(ctx, store, cmd.Args().First(), os.Stdout)
			}),
		},
		{
			Name:      "get",
			Usage:     "查看条目内容",
			ArgsUsage: "<key>",
			Action: withStore(func(ctx context.Context, store xtier.Store, cmd *cli.Command) error {
				key := cmd.Args().First()
				if key == "" {
					return &usageError{msg: "get 需要一个 key 参数"}
				}
				return cmdGet(ctx, store, key, os.Stdout, os.Stderr)
			}),
		},
		{
			Name:      "del",
			Usage:     "删除条目",
			ArgsUsage: "<key>",
			Action: withStore(func(ctx context.Context, store xtier.Store, cmd *cli.Command) error {
				key := cmd.Args().First()
				if key == "" {
					return &usageError{msg: "del 需要一个 key 参数"}
				}
				return cmdDel(ctx, store, key, os.Stdout)
			}),
		},
		{
			Name:  "sweep",
			Usage: "清理过期条目",
			Action: withStore(func(ctx context.Context, store xtier.Store, cmd *cli.Command) error {
				return cmdSweep(ctx, store, os.Stdout)
			}),
		},
		{
			Name:  "clear",
			Usage: "清空缓存",
			Action: withStore(func(ctx context.Context, store xtier.Store, cmd *cli.Command) error {
				return cmdClear(ctx, store, os.Stdout)
			}),
		},
	}
}

// withStore 打开持久层、执行命令、确保关闭。
func withStore(fn func(ctx context.Context, store xtier.Store, cmd *cli.Command) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()
		return fn(ctx, store, cmd)
	}
}

// openStore 按配置文件与命令行旗标打开持久层。
// 旗标优先于配置文件。
func openStore(cmd *cli.Command) (xtier.Store, error) {
	cfg := xconf.Default()
	if path := cmd.String("config"); path != "" {
		loaded, err := xconf.Load(path)
		if err != nil {
			return nil, fmt.Errorf("加载配置失败: %w", err)
		}
		cfg = loaded
	}
	if backend := cmd.String("backend"); backend != "" {
		cfg.Durable.Backend = backend
	}
	if dir := cmd.String("dir"); dir != "" {
		cfg.Durable.Dir = dir
	}
	if quota := cmd.Int("quota"); quota > 0 {
		cfg.Durable.QuotaBytes = int64(quota)
	}

	switch cfg.Durable.Backend {
	case xconf.BackendBadger:
		if cfg.Durable.Dir == "" {
			return nil, &usageError{msg: "badger 后端需要 --dir 或配置文件中的 durable.dir"}
		}
		return xtier.OpenBadgerStore(cfg.Durable.Dir)
	case xconf.BackendFile:
		if cfg.Durable.Dir == "" {
			return nil, &usageError{msg: "file 后端需要 --dir 或配置文件中的 durable.dir"}
		}
		return xtier.NewFileStore(
			filepath.Join(cfg.Durable.Dir, "cache.json"),
			xtier.WithQuotaBytes(cfg.Durable.QuotaBytes),
		)
	default:
		return nil, &usageError{msg: fmt.Sprintf("不支持的后端 %q（可选: badger, file）", cfg.Durable.Backend)}
	}
}

func cmdStats(ctx context.Context, store xtier.Store, out io.Writer) error {
	total, err := store.Len(ctx)
	if err != nil {
		return err
	}
	keys, err := store.Keys(ctx, "")
	if err != nil {
		return err
	}

	// Get 对过期条目返回未命中并顺手删除，统计同时完成一次清理
	live := 0
	for _, key := range keys {
		if _, ok := store.Get(ctx, key); ok {
			live++
		}
	}

	fmt.Fprintf(out, "条目总数: %d\n", total)
	fmt.Fprintf(out, "存活条目: %d\n", live)
	fmt.Fprintf(out, "已过期:   %d\n", total-live)
	return nil
}

func cmdList(ctx context.Context, store xtier.Store, prefix string, out io.Writer) error {
	keys, err := store.Keys(ctx, prefix)
	if err != nil {
		return err
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintln(out, key)
	}
	return nil
}

func cmdGet(ctx context.Context, store xtier.Store, key string, out, errOut io.Writer) error {
	e, ok := store.Get(ctx, key)
	if !ok {
		fmt.Fprintf(errOut, "key 不存在或已过期: %s\n", key)
		return &exitError{code: 1}
	}
	fmt.Fprintf(out, "key:       %s\n", key)
	fmt.Fprintf(out, "stored_at: %s\n", e.StoredAt().Format(time.RFC3339))
	fmt.Fprintf(out, "ttl:       %s\n", e.TTLDuration())
	fmt.Fprintf(out, "data:      %s\n", e.Data)
	return nil
}

func cmdDel(ctx context.Context, store xtier.Store, key string, out io.Writer) error {
	if err := store.Delete(ctx, key); err != nil {
		return err
	}
	fmt.Fprintf(out, "已删除: %s\n", key)
	return nil
}

func cmdSweep(ctx context.Context, store xtier.Store, out io.Writer) error {
	removed, err := store.Sweep(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "清理过期条目: %d\n", removed)
	return nil
}

func cmdClear(ctx context.Context, store xtier.Store, out io.Writer) error {
	if err := store.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "缓存已清空")
	return nil
}
