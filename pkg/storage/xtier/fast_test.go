package xtier

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFastLRU_WithNegativeCapacity_ReturnsError(t *testing.T) {
	_, err := NewFastLRU(-1)
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestNewFastLRU_WithZeroCapacity_UsesDefault(t *testing.T) {
	f, err := NewFastLRU(0)
	require.NoError(t, err)

	for i := 0; i < DefaultFastCapacity+10; i++ {
		f.Set(fmt.Sprintf("k%d", i), []byte("v"), time.Minute)
	}
	assert.Equal(t, DefaultFastCapacity, f.Len())
}

func TestFastLRU_SetAndGet_RoundTrips(t *testing.T) {
	f, err := NewFastLRU(10)
	require.NoError(t, err)

	f.Set("k1", []byte(`"hello"`), time.Minute)

	v, ok := f.Get("k1")
	require.True(t, ok)
	assert.Equal(t, []byte(`"hello"`), v)
}

func TestFastLRU_Get_OnMissingKey_ReturnsMiss(t *testing.T) {
	f, err := NewFastLRU(10)
	require.NoError(t, err)

	_, ok := f.Get("nope")
	assert.False(t, ok)
}

func TestFastLRU_AtCapacity_EvictsExactlyLeastRecentlyUsed(t *testing.T) {
	f, err := NewFastLRU(3)
	require.NoError(t, err)

	f.Set("a", []byte("1"), time.Minute)
	f.Set("b", []byte("2"), time.Minute)
	f.Set("c", []byte("3"), time.Minute)

	// 访问 a 使其成为最近使用，b 成为最久未访问
	_, ok := f.Get("a")
	require.True(t, ok)

	f.Set("d", []byte("4"), time.Minute)

	_, ok = f.Get("b")
	assert.False(t, ok, "b should have been evicted")
	for _, k := range []string{"a", "c", "d"} {
		_, ok := f.Get(k)
		assert.True(t, ok, "key %s should survive", k)
	}
	assert.Equal(t, 3, f.Len())
}

func TestFastLRU_Set_OnExistingKey_DoesNotEvict(t *testing.T) {
	f, err := NewFastLRU(2)
	require.NoError(t, err)

	f.Set("a", []byte("1"), time.Minute)
	f.Set("b", []byte("2"), time.Minute)
	f.Set("a", []byte("updated"), time.Minute)

	v, ok := f.Get("a")
	require.True(t, ok)
	assert.Equal(t, []byte("updated"), v)
	_, ok = f.Get("b")
	assert.True(t, ok)
}

func TestFastLRU_Get_AfterTTL_ReturnsMissAndRemoves(t *testing.T) {
	f, err := NewFastLRU(10)
	require.NoError(t, err)

	f.Set("short", []byte("v"), 20*time.Millisecond)
	time.Sleep(60 * time.Millisecond)

	_, ok := f.Get("short")
	assert.False(t, ok)
	assert.Equal(t, 0, f.Len(), "expired entry should be removed on read")
}

func TestFastLRU_Set_OnExistingKey_RefreshesTTL(t *testing.T) {
	f, err := NewFastLRU(10)
	require.NoError(t, err)

	f.Set("k", []byte("old"), 20*time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	f.Set("k", []byte("new"), time.Minute)
	time.Sleep(30 * time.Millisecond)

	v, ok := f.Get("k")
	require.True(t, ok, "overwrite should restart the clock")
	assert.Equal(t, []byte("new"), v)
}

func TestFastLRU_Delete_IsIdempotent(t *testing.T) {
	f, err := NewFastLRU(10)
	require.NoError(t, err)

	f.Set("k", []byte("v"), time.Minute)
	f.Delete("k")
	f.Delete("k")

	_, ok := f.Get("k")
	assert.False(t, ok)
}

func TestFastLRU_Clear_RemovesEverything(t *testing.T) {
	f, err := NewFastLRU(10)
	require.NoError(t, err)

	f.Set("a", []byte("1"), time.Minute)
	f.Set("b", []byte("2"), time.Minute)
	f.Clear()

	assert.Equal(t, 0, f.Len())
	_, ok := f.Get("a")
	assert.False(t, ok)
}

func TestFastLRU_WithOnEvicted_FiresOnCapacityEviction(t *testing.T) {
	var evicted []string
	f, err := NewFastLRU(2, WithOnEvicted(func(key string, _ []byte) {
		evicted = append(evicted, key)
	}))
	require.NoError(t, err)

	f.Set("a", []byte("1"), time.Minute)
	f.Set("b", []byte("2"), time.Minute)
	f.Set("c", []byte("3"), time.Minute)

	assert.Equal(t, []string{"a"}, evicted)
}

func TestFastLRU_ConcurrentAccess_IsSafe(t *testing.T) {
	f, err := NewFastLRU(50)
	require.NoError(t, err)

	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", i%20)
				f.Set(key, []byte("v"), time.Minute)
				f.Get(key)
				if i%50 == 0 {
					f.Delete(key)
				}
			}
		}(g)
	}
	for g := 0; g < 8; g++ {
		<-done
	}
}

func TestFastRistretto_SetAndGet_RoundTrips(t *testing.T) {
	f, err := NewFastRistretto()
	require.NoError(t, err)
	defer f.Close()

	f.Set("k1", []byte(`"hello"`), time.Minute)
	f.Wait()

	v, ok := f.Get("k1")
	require.True(t, ok)
	assert.Equal(t, []byte(`"hello"`), v)
}

func TestFastRistretto_Get_AfterTTL_ReturnsMiss(t *testing.T) {
	f, err := NewFastRistretto()
	require.NoError(t, err)
	defer f.Close()

	f.Set("short", []byte("v"), 20*time.Millisecond)
	f.Wait()
	time.Sleep(60 * time.Millisecond)

	_, ok := f.Get("short")
	assert.False(t, ok)
}

func TestFastRistretto_DeleteAndClear_RemoveEntries(t *testing.T) {
	f, err := NewFastRistretto()
	require.NoError(t, err)
	defer f.Close()

	f.Set("a", []byte("1"), time.Minute)
	f.Set("b", []byte("2"), time.Minute)
	f.Wait()

	f.Delete("a")
	_, ok := f.Get("a")
	assert.False(t, ok)

	f.Clear()
	_, ok = f.Get("b")
	assert.False(t, ok)
}
