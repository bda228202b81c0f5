package xfetch

// State 表示协调器的取数状态。
//
// 状态机：Idle → Debouncing → Fetching → Resolved | Failed；
// Resolved 与 Failed 在依赖变化时重新进入 Debouncing。
type State int32

const (
	// StateIdle 尚未观察到任何依赖。
	StateIdle State = iota

	// StateDebouncing 依赖已变化，防抖计时器等待触发。
	StateDebouncing

	// StateFetching 生产函数执行中。
	StateFetching

	// StateResolved 最近一次取数成功（含缓存命中）。
	StateResolved

	// StateFailed 最近一次取数失败。
	StateFailed
)

// String 返回状态的可读名称，用于日志。
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDebouncing:
		return "debouncing"
	case StateFetching:
		return "fetching"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
