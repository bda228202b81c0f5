package xtier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEntry_Expired_UsesStrictComparison(t *testing.T) {
	e := Entry{Timestamp: 1_700_000_000_000, TTL: 10}

	exactly := time.UnixMilli(e.Timestamp + 10_000)
	assert.False(t, e.Expired(exactly), "entry at exactly storedAt+ttl is still live")
	assert.True(t, e.Expired(exactly.Add(time.Millisecond)))
	assert.False(t, e.Expired(time.UnixMilli(e.Timestamp)))
}

func TestEntry_WithZeroTTL_IsImmediatelyExpired(t *testing.T) {
	e := NewEntry([]byte(`"v"`), 0)
	assert.True(t, e.Expired(time.Now().Add(time.Millisecond)))
}

func TestNewEntry_TruncatesTTLToSeconds(t *testing.T) {
	e := NewEntry([]byte(`"v"`), 2500*time.Millisecond)
	assert.Equal(t, int64(2), e.TTL)
	assert.Equal(t, 2*time.Second, e.TTLDuration())
}
