// Package xkey 提供确定性的缓存 key 构造与依赖快照序列化。
//
// DecoTV 的数据加载层（分类浏览、搜索、片源列表）以「前缀 + 参数集」
// 描述一次逻辑查询。xkey 负责把这样的参数集规范化为唯一的缓存 key：
// 相同语义的参数集，无论插入顺序如何、是否显式携带空值，
// 都必须产出完全相同的 key。
//
// # 核心功能
//
//   - [Build]: 由前缀和字符串参数集构造缓存 key
//   - [BuildAny]: 由前缀和任意标量参数集构造缓存 key（nil/空值自动跳过）
//   - [Snapshot]: 依赖元组的规范化序列化，用于跨时间点的深度相等比较
//
// # Key 格式
//
// "<prefix>-<k1>=<v1>&<k2>=<v2>..."，参数按 key 字节序升序排列，
// 空值参数被丢弃。无参数时结果为 "<prefix>-"。
//
// 注意：xkey 不做任何命名空间隔离，不同逻辑查询必须使用不同前缀，
// 由调用方保证前缀不冲突。
//
// # 设计决策
//
// Snapshot 基于 JSON 序列化而非 reflect.DeepEqual：比较双方往往
// 分处不同时间点（快照捕获时 vs 结果落地时），字符串快照既可直接
// 比较又可写入日志，map 的 key 排序由 JSON 编码器保证确定性。
package xkey
