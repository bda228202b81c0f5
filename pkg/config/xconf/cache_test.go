package xconf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_PassesValidation(t *testing.T) {
	cfg := Default()
	// 默认后端是 badger，需要目录才能通过校验
	cfg.Durable.Dir = "/var/lib/decotv"
	assert.NoError(t, cfg.Validate())

	assert.True(t, cfg.Fast.Enabled)
	assert.Equal(t, 100, cfg.Fast.Capacity)
	assert.Equal(t, BackendBadger, cfg.Durable.Backend)
	assert.Equal(t, int64(5*1024*1024), cfg.Durable.QuotaBytes)
	assert.Equal(t, 2*time.Hour, cfg.Fetch.TTL())
	assert.Equal(t, 100*time.Millisecond, cfg.Fetch.Debounce())
	assert.True(t, cfg.Fetch.FetchOnCreate)
}

func TestLoad_MissingFieldsKeepDefaults(t *testing.T) {
	path := writeConfig(t, "cache.yaml", `
durable:
  backend: memory
fetch:
  ttl_seconds: 600
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Durable.Backend)
	assert.Equal(t, 600, cfg.Fetch.TTLSeconds)
	// 未出现在文件中的字段保持默认
	assert.Equal(t, 100, cfg.Fast.Capacity)
	assert.Equal(t, 100, cfg.Fetch.DebounceMs)
	assert.True(t, cfg.Fetch.CacheEnabled)
}

func TestLoad_WithInvalidConfig_ReturnsValidationError(t *testing.T) {
	path := writeConfig(t, "cache.yaml", "durable:\n  backend: redis\n")

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidBackend)
}

func TestConfig_Validate_CoversEachRule(t *testing.T) {
	base := Default()
	base.Durable.Backend = BackendMemory

	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"negative capacity", func(c *Config) { c.Fast.Capacity = -1 }, ErrInvalidCapacity},
		{"unknown backend", func(c *Config) { c.Durable.Backend = "redis" }, ErrInvalidBackend},
		{"badger without dir", func(c *Config) { c.Durable.Backend = BackendBadger; c.Durable.Dir = "" }, ErrMissingDir},
		{"file without dir", func(c *Config) { c.Durable.Backend = BackendFile; c.Durable.Dir = "" }, ErrMissingDir},
		{"zero ttl", func(c *Config) { c.Fetch.TTLSeconds = 0 }, ErrInvalidTTL},
		{"negative debounce", func(c *Config) { c.Fetch.DebounceMs = -1 }, ErrInvalidDebounce},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tc.want)
		})
	}
}

func TestConfig_Validate_DisabledDurableSkipsDirCheck(t *testing.T) {
	cfg := Default()
	cfg.Durable.Enabled = false
	cfg.Durable.Dir = ""
	assert.NoError(t, cfg.Validate())
}

func TestLoadBytes_JSONOverridesDefaults(t *testing.T) {
	raw := []byte(`{"fetch": {"ttl_seconds": 60, "debounce_ms": 0}}`)

	cfg, err := LoadBytes(raw, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, int64(60), cfg.Fetch.TTLSeconds)
	assert.Equal(t, int64(0), cfg.Fetch.DebounceMs)
	assert.True(t, cfg.Fast.Enabled)
}
