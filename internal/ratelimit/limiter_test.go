package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_DeniesPastLimit(t *testing.T) {
	l := New(time.Hour)
	defer l.Stop()

	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("join-content-room", 10), "call %d", i+1)
	}
	assert.False(t, l.Allow("join-content-room", 10), "11th call must be dropped")
	assert.Equal(t, 10, l.Count("join-content-room"))

	assert.True(t, l.Allow("leave-content-room", 10), "counters are per event name")
}

func TestLimiter_WindowResets(t *testing.T) {
	l := New(50 * time.Millisecond)
	defer l.Stop()

	for i := 0; i < 5; i++ {
		l.Allow("join-user-room", 5)
	}
	assert.False(t, l.Allow("join-user-room", 5))

	assert.Eventually(t, func() bool {
		return l.Count("join-user-room") == 0
	}, time.Second, 10*time.Millisecond)
	assert.True(t, l.Allow("join-user-room", 5))
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	l := New(time.Hour)
	l.Allow("x", 1)
	l.Stop()
	l.Stop()
	assert.Zero(t, l.Count("x"))
}
