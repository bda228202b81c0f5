package xkey

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Snapshot 将依赖元组规范化序列化为字符串快照。
//
// 快照用于深度相等比较：两个时间点各自捕获的快照相等，
// 当且仅当依赖元组在语义上相等（与 map 遍历顺序、指针身份无关）。
//
// 序列化使用 JSON，map 的 key 由编码器按字典序输出，保证确定性。
// 不可序列化的值（chan、func 等）退化为 "%#v" 渲染，
// 仍保持同值同快照的性质，不会导致比较失败或 panic。
func Snapshot(deps ...any) string {
	if len(deps) == 0 {
		return "[]"
	}

	data, err := json.Marshal(deps)
	if err != nil {
		// 退化路径：逐个渲染，保证快照仍然可比较
		return fmt.Sprintf("%#v", deps)
	}
	return string(data)
}
