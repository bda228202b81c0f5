package xconf

import (
	"testing"
)

// FuzzNewFromBytes 验证任意输入都不会使解析崩溃。
func FuzzNewFromBytes(f *testing.F) {
	f.Add([]byte(`{"fast":{"capacity":100}}`), "json")
	f.Add([]byte("fast:\n  capacity: 100\n"), "yaml")
	f.Add([]byte("{broken"), "json")
	f.Add([]byte(""), "yaml")

	f.Fuzz(func(t *testing.T, data []byte, format string) {
		cfg, err := NewFromBytes(data, Format(format))
		if err != nil {
			return
		}
		var c Config
		_ = cfg.Unmarshal("", &c)
	})
}
