// decocachectl 是持久缓存层的命令行管理工具。
//
// 用法:
//
//	decocachectl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config   配置文件路径 (yaml/json)
//	-b, --backend  持久层后端: badger | file (默认: badger)
//	-d, --dir      数据目录
//	--quota        file 后端配额（字节）
//
// 命令:
//
//	stats            查看条目统计
//	list [prefix]    列出缓存键
//	get <key>        查看条目内容
//	del <key>        删除条目
//	sweep            清理过期条目
//	clear            清空缓存
//
// 退出码:
//
//	0: 命令执行成功
//	1: 命令执行失败（存储打开失败、key 不存在等）
//	2: 参数错误（未知后端、缺少必需参数、未知命令等）
//
// 示例:
//
//	decocachectl -d /var/lib/decotv stats
//	decocachectl -d /var/lib/decotv list douban-
//	decocachectl -b file -d /var/lib/decotv get "douban-type=movie"
//	decocachectl -c /etc/decotv/cache.yaml sweep
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags 注入）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run())
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "decocachectl",
		Usage:   "持久缓存层命令行管理工具",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径 (yaml/json)",
			},
			&cli.StringFlag{
				Name:    "backend",
				Aliases: []string{"b"},
				Usage:   "持久层后端: badger | file",
			},
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "数据目录",
			},
			&cli.IntFlag{
				Name:  "quota",
				Usage: "file 后端配额（字节）",
			},
		},
		Commands:       createCommands(),
		DefaultCommand: "help",
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，
		// 由 run() 统一处理退出码映射，确保与文档退出码契约一致。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run() int {
	app := createApp()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Run(ctx, os.Args); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr.msg)
			return 2
		}
		if _, ok := err.(cli.ExitCoder); ok {
			// ExitErrHandler 已输出错误详情
			return 2
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}
	return 0
}
