package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowUnderBudget(t *testing.T) {
	l := NewLimiter()
	l.Init("conn-1")

	for i := 0; i < maxMessagesPerWindow; i++ {
		require.True(t, l.Allow("conn-1"), "message %d should be allowed", i+1)
	}

	assert.False(t, l.Allow("conn-1"), "11th message in the window must be rejected")
	assert.False(t, l.Allow("conn-1"), "rejections must not consume budget")
}

func TestRejectionDoesNotDoubleCount(t *testing.T) {
	l := NewLimiter()
	l.Init("conn-1")

	for i := 0; i < maxMessagesPerWindow; i++ {
		l.Allow("conn-1")
	}
	l.Allow("conn-1")

	l.mu.Lock()
	count := l.states["conn-1"].count
	l.mu.Unlock()

	assert.Equal(t, maxMessagesPerWindow, count)
}

func TestWindowReset(t *testing.T) {
	current := time.Now()
	l := NewLimiter()
	l.now = func() time.Time { return current }
	l.Init("conn-1")

	for i := 0; i < maxMessagesPerWindow; i++ {
		l.Allow("conn-1")
	}
	require.False(t, l.Allow("conn-1"))

	// Jump past the window boundary
	current = current.Add(windowLength + time.Second)

	assert.True(t, l.Allow("conn-1"), "budget must reset after the window elapses")
}

func TestAllowWithoutInit(t *testing.T) {
	l := NewLimiter()

	assert.False(t, l.Allow("never-joined"))
}

func TestRemove(t *testing.T) {
	l := NewLimiter()
	l.Init("conn-1")
	require.True(t, l.Allow("conn-1"))

	l.Remove("conn-1")

	assert.False(t, l.Allow("conn-1"))

	// Removing twice is harmless
	l.Remove("conn-1")
}
