// Package storage 提供缓存存储与取数协调相关的子包。
//
// 子包列表：
//   - xtier: 分层缓存，内存快层（LRU + TTL）叠加持久慢层（BadgerDB / 单文件 JSON）
//   - xfetch: 取数协调器，防抖合并请求、世代守卫丢弃过期响应、按需回源并回填缓存
//
// 设计原则：
//   - 读路径优先命中快层，慢层命中后按原始 TTL 回填快层
//   - 持久层写入失败不阻断读路径，超配额时清理过期条目后重试一次
//   - 凡阻塞操作均接受 context，支持取消与超时
package storage
