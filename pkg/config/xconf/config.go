package xconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Format 定义配置文件格式。
type Format string

// 支持的配置格式。
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// File 是一份已加载的配置文件。
// 基础读取操作请直接使用 [File.Koanf] 返回的 koanf 实例。
type File struct {
	path   string
	format Format
	opts   *Options

	mu sync.RWMutex
	k  *koanf.Koanf
}

// New 从文件路径加载配置。
// 根据扩展名检测格式（.yaml/.yml 或 .json）。
func New(path string, opts ...Option) (*File, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	k := koanf.New(options.Delim)
	if err := loadData(k, data, format); err != nil {
		return nil, err
	}
	return &File{k: k, path: path, format: format, opts: options}, nil
}

// NewFromBytes 从字节数据加载配置，需显式指定格式。
// 空数据得到空配置，Unmarshal 返回目标结构体的零值。
func NewFromBytes(data []byte, format Format, opts ...Option) (*File, error) {
	if !isValidFormat(format) {
		return nil, ErrUnsupportedFormat
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	k := koanf.New(options.Delim)
	if len(data) > 0 {
		if err := loadData(k, data, format); err != nil {
			return nil, err
		}
	}
	return &File{k: k, format: format, opts: options}, nil
}

// Koanf 返回底层的 koanf 实例。
func (f *File) Koanf() *koanf.Koanf {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.k
}

// Unmarshal 将指定路径的配置反序列化到目标结构体。
// path 为空串时反序列化整个配置。
func (f *File) Unmarshal(path string, target any) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if err := f.k.UnmarshalWithConf(path, target, koanf.UnmarshalConf{
		Tag: f.opts.Tag,
	}); err != nil {
		return fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	return nil
}

// Reload 重新读取并解析配置文件，并发安全。
// 解析失败时保留旧配置。从字节数据创建的配置无文件可读，
// 返回 [ErrNotReloadable]。
func (f *File) Reload() error {
	if f.path == "" {
		return ErrNotReloadable
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	newK := koanf.New(f.opts.Delim)
	if err := loadData(newK, data, f.format); err != nil {
		return err
	}

	f.mu.Lock()
	f.k = newK
	f.mu.Unlock()
	return nil
}

// Path 返回配置文件路径。从字节数据创建时为空串。
func (f *File) Path() string {
	return f.path
}

// Format 返回配置格式。
func (f *File) Format() Format {
	return f.format
}

func detectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func isValidFormat(format Format) bool {
	return format == FormatYAML || format == FormatJSON
}

func loadData(k *koanf.Koanf, data []byte, format Format) error {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return ErrUnsupportedFormat
	}
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return nil
}
