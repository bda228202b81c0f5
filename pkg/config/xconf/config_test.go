package xconf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNew_WithEmptyPath_ReturnsError(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestNew_WithUnknownExtension_ReturnsError(t *testing.T) {
	_, err := New("/etc/decotv/cache.toml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestNew_WithMissingFile_ReturnsError(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrLoadFailed)
}

func TestNew_WithYAML_LoadsValues(t *testing.T) {
	path := writeConfig(t, "cache.yaml", "durable:\n  backend: file\n  dir: /tmp/decotv\n")

	f, err := New(path)
	require.NoError(t, err)

	assert.Equal(t, FormatYAML, f.Format())
	assert.Equal(t, path, f.Path())
	assert.Equal(t, "file", f.Koanf().String("durable.backend"))
}

func TestNew_WithJSON_LoadsValues(t *testing.T) {
	path := writeConfig(t, "cache.json", `{"fast":{"capacity":42}}`)

	f, err := New(path)
	require.NoError(t, err)

	assert.Equal(t, FormatJSON, f.Format())
	assert.Equal(t, 42, f.Koanf().Int("fast.capacity"))
}

func TestNew_WithMalformedYAML_ReturnsParseError(t *testing.T) {
	path := writeConfig(t, "cache.yaml", "fast: [unterminated")

	_, err := New(path)
	assert.ErrorIs(t, err, ErrParseFailed)
}

func TestNewFromBytes_WithExplicitFormat_Loads(t *testing.T) {
	f, err := NewFromBytes([]byte(`{"fetch":{"ttl_seconds":60}}`), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, 60, f.Koanf().Int("fetch.ttl_seconds"))
	assert.Empty(t, f.Path())
}

func TestNewFromBytes_WithEmptyData_CreatesEmptyConfig(t *testing.T) {
	f, err := NewFromBytes(nil, FormatYAML)
	require.NoError(t, err)

	var cfg Config
	require.NoError(t, f.Unmarshal("", &cfg))
	assert.Zero(t, cfg)
}

func TestNewFromBytes_WithBadFormat_ReturnsError(t *testing.T) {
	_, err := NewFromBytes([]byte("{}"), Format("toml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFile_Unmarshal_WithSubPath_FillsStruct(t *testing.T) {
	f, err := NewFromBytes([]byte(`{"fetch":{"ttl_seconds":300,"debounce_ms":50}}`), FormatJSON)
	require.NoError(t, err)

	var fetch FetchCfg
	require.NoError(t, f.Unmarshal("fetch", &fetch))
	assert.Equal(t, 300, fetch.TTLSeconds)
	assert.Equal(t, 50, fetch.DebounceMs)
}

func TestFile_Reload_PicksUpChanges(t *testing.T) {
	path := writeConfig(t, "cache.yaml", "fast:\n  capacity: 10\n")
	f, err := New(path)
	require.NoError(t, err)
	require.Equal(t, 10, f.Koanf().Int("fast.capacity"))

	require.NoError(t, os.WriteFile(path, []byte("fast:\n  capacity: 20\n"), 0o644))
	require.NoError(t, f.Reload())
	assert.Equal(t, 20, f.Koanf().Int("fast.capacity"))
}

func TestFile_Reload_OnParseError_KeepsOldConfig(t *testing.T) {
	path := writeConfig(t, "cache.yaml", "fast:\n  capacity: 10\n")
	f, err := New(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("fast: [broken"), 0o644))
	assert.ErrorIs(t, f.Reload(), ErrParseFailed)
	assert.Equal(t, 10, f.Koanf().Int("fast.capacity"), "failed reload must keep the old values")
}

func TestFile_Reload_FromBytes_ReturnsError(t *testing.T) {
	f, err := NewFromBytes([]byte("{}"), FormatJSON)
	require.NoError(t, err)

	assert.ErrorIs(t, f.Reload(), ErrNotReloadable)
}
