package xconf

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_OnFromBytesConfig_ReturnsError(t *testing.T) {
	f, err := NewFromBytes([]byte("{}"), FormatJSON)
	require.NoError(t, err)

	_, err = Watch(f, nil)
	assert.ErrorIs(t, err, ErrNotReloadable)
}

func TestWatcher_ReloadsOnFileChange(t *testing.T) {
	path := writeConfig(t, "cache.yaml", "fast:\n  capacity: 10\n")
	f, err := New(path)
	require.NoError(t, err)

	var reloads atomic.Int32
	w, err := Watch(f, func(f *File, err error) {
		assert.NoError(t, err)
		reloads.Add(1)
	}, WithWatchDebounce(20*time.Millisecond))
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("fast:\n  capacity: 99\n"), 0o644))

	require.Eventually(t, func() bool {
		return reloads.Load() > 0
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, 99, f.Koanf().Int("fast.capacity"))
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	path := writeConfig(t, "cache.yaml", "fast:\n  capacity: 10\n")
	f, err := New(path)
	require.NoError(t, err)

	var reloads atomic.Int32
	w, err := Watch(f, func(*File, error) {
		reloads.Add(1)
	}, WithWatchDebounce(10*time.Millisecond))
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	// 同目录下的无关文件变更不应触发重载
	sibling := filepath.Join(filepath.Dir(path), "other.yaml")
	require.NoError(t, os.WriteFile(sibling, []byte("x: 1\n"), 0o644))

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(0), reloads.Load())
}

func TestWatcher_StartAndStop_AreIdempotent(t *testing.T) {
	path := writeConfig(t, "cache.yaml", "fast:\n  capacity: 10\n")
	f, err := New(path)
	require.NoError(t, err)

	w, err := Watch(f, nil)
	require.NoError(t, err)

	w.Start()
	w.Start()
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
