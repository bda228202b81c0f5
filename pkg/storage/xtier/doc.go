// Package xtier 提供 DecoTV 数据加载层的两级缓存：
// 进程内快速层（FastTier）+ 持久层（Store），由统一的 [Cache] 门面组合。
//
// # 设计理念
//
// xtier 不关心缓存的是什么数据，只负责「怎么缓存」：
//   - 任意 []byte 负载，序列化由调用方（通常是 xfetch）完成
//   - 条目级 TTL，过期在读取时惰性判定
//   - 快速层未命中时查持久层，命中后回填快速层（原始 TTL）
//   - 持久层 best-effort：写失败触发一次过期清扫后重试一次，仍失败则静默丢弃
//
// # 核心组件
//
//   - [FastTier]：进程内缓存契约；[NewFastLRU] 严格 LRU（默认），
//     [NewFastRistretto] 近似淘汰的高吞吐替代实现
//   - [Store]：持久层契约；[NewMemStore]（测试/禁用持久化）、
//     [NewFileStore]（单文件 + 字节配额）、[NewBadgerStore]（嵌入式 KV）
//   - [Cache]：门面，按层开关组合两层，回填路径由 key 锁保护
//   - [Sweeper]：cron 调度的持久层周期清扫
//
// # 共享语义
//
// FastTier 与 Store 是进程级共享资源：任意多个 xfetch 协调器可以
// 读写同一 key，实现跨组件的缓存共享。这要求所有实现并发安全，
// 门面的「未命中回填」读-改-写序列由 xkeylock 按 key 互斥。
//
// # 持久化格式
//
// 持久层条目以 JSON 存储：{"data": <负载>, "timestamp": <毫秒时间戳>, "ttl": <秒>}，
// key 统一带 "decotv-cache:" 前缀，便于批量枚举和清扫而不触碰无关数据。
//
// # 错误语义
//
// Get 永不报错：缺失、过期、损坏一律表现为 miss（损坏条目同时被删除）。
// 持久层写入失败不向上传播——最坏情况是降级为「更慢但正确」。
package xtier
