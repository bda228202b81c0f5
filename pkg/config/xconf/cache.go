package xconf

import (
	"fmt"
	"time"
)

// 持久层后端名。
const (
	BackendBadger = "badger"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// FastCfg 是快速层配置。
type FastCfg struct {
	// Enabled 控制快速层开关。
	Enabled bool `koanf:"enabled"`

	// Capacity 是快速层条目数上限，0 表示默认容量。
	Capacity int `koanf:"capacity"`
}

// DurableCfg 是持久层配置。
type DurableCfg struct {
	// Enabled 控制持久层开关。
	Enabled bool `koanf:"enabled"`

	// Backend 选择持久层实现：badger、file 或 memory。
	Backend string `koanf:"backend"`

	// Dir 是 badger 的数据目录或 file 后端的存储文件所在目录。
	// memory 后端忽略。
	Dir string `koanf:"dir"`

	// QuotaBytes 是 file 后端的配额（字节），0 表示默认值。
	QuotaBytes int64 `koanf:"quota_bytes"`

	// Sweep 是后台清扫调度表达式，空串表示默认调度。
	Sweep string `koanf:"sweep"`
}

// FetchCfg 是取数协调配置。
type FetchCfg struct {
	// TTLSeconds 是缓存写入的生存时间（秒）。
	TTLSeconds int `koanf:"ttl_seconds"`

	// DebounceMs 是依赖变化的防抖间隔（毫秒）。
	DebounceMs int `koanf:"debounce_ms"`

	// CacheEnabled 控制取数是否读写缓存。
	CacheEnabled bool `koanf:"cache_enabled"`

	// FetchOnCreate 控制首次依赖提交是否触发取数。
	FetchOnCreate bool `koanf:"fetch_on_create"`
}

// Config 是缓存核心的全量配置。
type Config struct {
	Fast    FastCfg    `koanf:"fast"`
	Durable DurableCfg `koanf:"durable"`
	Fetch   FetchCfg   `koanf:"fetch"`
}

// Default 返回带默认值的配置。
func Default() Config {
	return Config{
		Fast: FastCfg{
			Enabled:  true,
			Capacity: 100,
		},
		Durable: DurableCfg{
			Enabled:    true,
			Backend:    BackendBadger,
			QuotaBytes: 5 * 1024 * 1024,
			Sweep:      "@every 10m",
		},
		Fetch: FetchCfg{
			TTLSeconds:    7200,
			DebounceMs:    100,
			CacheEnabled:  true,
			FetchOnCreate: true,
		},
	}
}

// Load 从配置文件加载缓存配置，文件中缺失的字段保持默认值。
func Load(path string, opts ...Option) (Config, error) {
	f, err := New(path, opts...)
	if err != nil {
		return Config{}, err
	}
	return LoadFrom(f)
}

// LoadBytes 从内存中的配置内容加载缓存配置，format 指定解析格式。
func LoadBytes(data []byte, format Format, opts ...Option) (Config, error) {
	f, err := NewFromBytes(data, format, opts...)
	if err != nil {
		return Config{}, err
	}
	return LoadFrom(f)
}

// LoadFrom 从已加载的配置文件提取缓存配置并校验。
func LoadFrom(f *File) (Config, error) {
	cfg := Default()
	if err := f.Unmarshal("", &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 校验配置，返回第一个发现的问题。
func (c Config) Validate() error {
	if c.Fast.Capacity < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, c.Fast.Capacity)
	}
	switch c.Durable.Backend {
	case BackendBadger, BackendFile:
		if c.Durable.Enabled && c.Durable.Dir == "" {
			return fmt.Errorf("%w: backend %q", ErrMissingDir, c.Durable.Backend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.Durable.Backend)
	}
	if c.Fetch.TTLSeconds <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTTL, c.Fetch.TTLSeconds)
	}
	if c.Fetch.DebounceMs < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDebounce, c.Fetch.DebounceMs)
	}
	return nil
}

// TTL 返回取数 TTL 的 time.Duration 表示。
func (c FetchCfg) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Debounce 返回防抖间隔的 time.Duration 表示。
func (c FetchCfg) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}
