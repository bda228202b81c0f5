package xkey

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Params 定义一次逻辑查询的参数集。
// 空字符串值视为「未提供」，构造 key 时被丢弃。
type Params map[string]string

// Build 由前缀和参数集构造确定性的缓存 key。
//
// 规则：
//   - 丢弃值为空字符串的参数
//   - 剩余参数按 key 字节序升序排列
//   - 以 "k=v" 形式用 "&" 连接，结果为 "<prefix>-<joined>"
//
// 相同语义的参数集（任意插入顺序、任意空值子集）产出相同的 key。
// 无参数时返回 "<prefix>-"。
func Build(prefix string, params Params) string {
	if len(params) == 0 {
		return prefix + "-"
	}

	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteByte('-')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(params[k])
	}
	return sb.String()
}

// BuildAny 由前缀和任意标量参数集构造缓存 key。
//
// 值渲染规则：
//   - nil 与空字符串：跳过该参数
//   - string：原样使用
//   - bool、整数、浮点数：按 Go 默认格式渲染
//   - 其他类型：fmt.Sprint 渲染（调用方应优先使用标量）
//
// 渲染后的参数集交由 [Build] 处理，确定性保证一致。
func BuildAny(prefix string, params map[string]any) string {
	if len(params) == 0 {
		return prefix + "-"
	}

	rendered := make(Params, len(params))
	for k, v := range params {
		if v == nil {
			continue
		}
		rendered[k] = renderScalar(v)
	}
	return Build(prefix, rendered)
}

// renderScalar 将标量值渲染为字符串。
func renderScalar(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int8:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
