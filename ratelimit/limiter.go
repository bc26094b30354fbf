package ratelimit

import (
	"sync"
	"time"
)

// Default messages per time window the server expects from a frontend user
// Configure based on your needs
const (
	maxMessagesPerWindow = 10
	windowLength         = 60 * time.Second
)

// state tracks one connection's message count within the current window
type state struct {
	count           int
	resetTime       time.Time
	lastMessageTime time.Time
}

// Limiter is a fixed-window per-connection message limiter.
// Fixed window rather than a sliding log: O(1) per check and bounded memory,
// at the cost of bursts straddling a window boundary.
type Limiter struct {
	mu     sync.Mutex
	states map[string]*state
	now    func() time.Time
}

func NewLimiter() *Limiter {
	return &Limiter{
		states: make(map[string]*state),
		now:    time.Now,
	}
}

// Init creates tracking state for a connection. Called when it joins a room.
func (l *Limiter) Init(connID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.states[connID] = &state{resetTime: l.now().Add(windowLength)}
}

// Remove drops tracking state for a connection. Called on deregistration.
func (l *Limiter) Remove(connID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.states, connID)
}

// Allow returns if the connection is under the rate limit and allowed to send
// messages to its room. A conforming message is counted against the window.
func (l *Limiter) Allow(connID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, exists := l.states[connID]
	if !exists {
		// Never initialized means the connection never joined a room
		return false
	}

	now := l.now()

	// Reset rate limiter every windowLength
	if now.After(st.resetTime) {
		st.count = 0
		st.resetTime = now.Add(windowLength)
	}

	if st.count >= maxMessagesPerWindow {
		return false
	}

	// Connection did not go over rate limit
	st.count++
	st.lastMessageTime = now
	return true
}
