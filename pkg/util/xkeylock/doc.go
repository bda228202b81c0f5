// Package xkeylock 提供基于 key 的进程内互斥锁。
//
// 分层缓存的「未命中回填」是跨层的读-改-写序列（读持久层 → 写内存层），
// 多个 goroutine 并发读取同一 key 时需要按 key 互斥，避免重复回填。
// xkeylock 为此提供轻量的分片 key 锁：不同 key 的锁操作互不阻塞，
// 同一 key 的临界区串行执行。
//
// # 实现要点
//
//   - 按 xxhash(key) 分片，分片数为 2 的幂，默认 32
//   - 锁条目按需创建，引用计数归零后立即回收，空闲 key 不占内存
//   - Acquire 支持 context 取消/超时
//   - 解锁函数幂等：重复调用返回 [ErrNotHeld]
//
// # 设计决策
//
// 锁是非可重入的，与 sync.Mutex 一致。不提供死锁检测，
// 由调用方负责避免同一 goroutine 对同一 key 重复 Acquire。
// 临界区应保持短小（缓存回填为纯内存操作），不建议在持锁期间做网络 I/O。
package xkeylock
