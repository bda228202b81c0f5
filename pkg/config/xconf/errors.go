package xconf

import "errors"

// 配置加载与解析相关错误。
var (
	// ErrEmptyPath 表示配置文件路径为空。
	ErrEmptyPath = errors.New("xconf: empty config path")

	// ErrUnsupportedFormat 表示不支持的配置格式。
	ErrUnsupportedFormat = errors.New("xconf: unsupported config format")

	// ErrLoadFailed 表示配置读取失败。
	ErrLoadFailed = errors.New("xconf: failed to load config")

	// ErrParseFailed 表示配置解析失败。
	ErrParseFailed = errors.New("xconf: failed to parse config")

	// ErrUnmarshalFailed 表示配置反序列化失败。
	ErrUnmarshalFailed = errors.New("xconf: failed to unmarshal config")

	// ErrNotReloadable 表示配置并非从文件创建，无法重载或监视。
	ErrNotReloadable = errors.New("xconf: config not backed by a file")
)

// 缓存配置校验相关错误。
var (
	// ErrInvalidCapacity 表示快速层容量为负数。
	ErrInvalidCapacity = errors.New("xconf: fast tier capacity must not be negative")

	// ErrInvalidBackend 表示持久层后端名不认识。
	ErrInvalidBackend = errors.New("xconf: unknown durable backend")

	// ErrMissingDir 表示所选持久层后端需要目录但未配置。
	ErrMissingDir = errors.New("xconf: durable backend requires a dir")

	// ErrInvalidTTL 表示取数 TTL 非法。
	ErrInvalidTTL = errors.New("xconf: fetch ttl must be positive")

	// ErrInvalidDebounce 表示防抖间隔非法。
	ErrInvalidDebounce = errors.New("xconf: fetch debounce must not be negative")
)
