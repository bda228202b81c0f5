// Package xfetch 提供竞态安全的取数协调器。
//
// 协调器把「依赖变化 → 防抖 → 查缓存 → 调生产函数 → 发布」组织为
// 显式状态机（[State]），并保证发布的结果永远对应最新一次提交的
// 依赖：生产函数的在途结果在落地前经过纪元与依赖快照双重校验，
// 过期即静默丢弃。被取代的取数不会被取消，只是结果作废。
//
// 基本用法：
//
//	cache, _ := xtier.New()
//	coord, _ := xfetch.New(cache, "douban", func(ctx context.Context) (MovieList, error) {
//	    return fetchMovies(ctx)
//	})
//	defer coord.Close()
//
//	coord.Observe(ctx, xkey.Params{"type": "movie", "tag": "hot"})
//	// ... 防抖间隔后 coord.Current() 持有结果
//
// 依赖再次变化时重新 Observe 即可；相同依赖是无操作。
// [Coordinator.Refresh] 跳过缓存读取强制重新取数，
// [Coordinator.InvalidateCache] 删除当前键的缓存条目。
//
// 多个协调器可共享同一个 [xtier.Cache]，对相同键的并发生产函数
// 调用可通过 singleflight 去重（WithGroup 跨协调器共享）。
package xfetch
