package janitor

import (
	"time"

	"github.com/rs/zerolog"

	"vidwatch/anon-chat/rooms"
)

// Room lifetime bounds in the reference deployment
const (
	DefaultInterval = time.Hour
	DefaultMaxAge   = 24 * time.Hour
)

// Janitor periodically deletes empty and expired rooms. It is the only path
// that reclaims rooms left behind without a clean detach, and it bounds every
// room's lifetime at maxAge no matter how active it still is.
type Janitor struct {
	rooms    *rooms.Manager
	interval time.Duration
	maxAge   time.Duration
	logger   zerolog.Logger
	done     chan struct{}
}

func New(roomManager *rooms.Manager, interval, maxAge time.Duration, logger zerolog.Logger) *Janitor {
	return &Janitor{
		rooms:    roomManager,
		interval: interval,
		maxAge:   maxAge,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Run starts the sweep loop. Call in a goroutine.
func (j *Janitor) Run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := j.rooms.SweepStale(j.maxAge); removed > 0 {
				j.logger.Info().Int("removed", removed).Msg("swept stale rooms")
			}
		case <-j.done:
			return
		}
	}
}

// Stop halts the sweep loop.
func (j *Janitor) Stop() {
	close(j.done)
}
