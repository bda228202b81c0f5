package xfetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_String_CoversAllStates(t *testing.T) {
	cases := map[State]string{
		StateIdle:       "idle",
		StateDebouncing: "debouncing",
		StateFetching:   "fetching",
		StateResolved:   "resolved",
		StateFailed:     "failed",
		State(99):       "unknown",
	}
	for state, want := range cases {
		assert.Equal(t, want, state.String())
	}
}
