// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xkey: 缓存键构造，参数按字典序排序保证同参同键，支持参数快照比对
//   - xkeylock: 基于 key 的进程内互斥锁，支持 context 超时和非阻塞获取
//
// 设计原则：
//   - 无副作用的纯函数优先，状态对象保证并发安全
//   - 跨平台兼容
package util
