package xtier

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSweeper_WithNilStore_ReturnsError(t *testing.T) {
	_, err := NewSweeper(nil)
	assert.ErrorIs(t, err, ErrNilStore)
}

func TestSweeper_Start_WithInvalidSchedule_ReturnsError(t *testing.T) {
	s, err := NewSweeper(NewMemStore(), WithSweepSchedule("not a schedule"))
	require.NoError(t, err)

	err = s.Start()
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestSweeper_StartAndStop_AreIdempotent(t *testing.T) {
	s, err := NewSweeper(NewMemStore(), WithSweepSchedule("@every 1h"))
	require.NoError(t, err)

	require.NoError(t, s.Start())
	require.NoError(t, s.Start())
	s.Stop()
	s.Stop()
}

func TestSweeper_SweepNow_RemovesExpiredEntries(t *testing.T) {
	store := NewMemStore()
	s, err := NewSweeper(store)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "live", []byte(`"v"`), time.Hour))
	injectStale(t, store, "dead", []byte(`"x"`))

	removed, err := s.SweepNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestSweeper_ScheduledSweep_Fires(t *testing.T) {
	store := NewMemStore()
	injectStale(t, store, "dead", []byte(`"x"`))

	s, err := NewSweeper(store, WithSweepSchedule("@every 100ms"))
	require.NoError(t, err)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		n, err := store.Len(context.Background())
		return err == nil && n == 0
	}, 2*time.Second, 20*time.Millisecond, "scheduled sweep should remove the expired entry")
}
