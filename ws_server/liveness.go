package wsserver

import (
	"time"

	"github.com/rs/zerolog"

	"vidwatch/anon-chat/registry"
)

const (
	// DefaultProbeInterval is how often the monitor checks every connection
	DefaultProbeInterval = 30 * time.Second

	// Deadline for writing a single ping control frame
	pingWriteWait = 10 * time.Second
)

// Monitor prunes connections that stopped answering liveness probes, which is
// how half-open transports that never send a close frame get detected. A
// connection that missed the previous probe is closed; closing unblocks its
// read loop, so teardown happens on the normal disconnect path.
type Monitor struct {
	reg      *registry.Registry
	interval time.Duration
	logger   zerolog.Logger
	done     chan struct{}
}

func NewMonitor(reg *registry.Registry, interval time.Duration, logger zerolog.Logger) *Monitor {
	return &Monitor{
		reg:      reg,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Run starts the probe loop. Call in a goroutine.
func (m *Monitor) Run() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.done:
			return
		}
	}
}

// Stop halts the probe loop.
func (m *Monitor) Stop() {
	close(m.done)
}

func (m *Monitor) sweep() {
	stale, probed := m.reg.SweepPending()

	for _, peer := range stale {
		m.logger.Info().Str("conn_id", peer.ID()).Msg("liveness probe unanswered, closing")
		peer.Close()
	}

	for _, peer := range probed {
		if err := peer.Ping(time.Now().Add(pingWriteWait)); err != nil {
			m.logger.Debug().Err(err).Str("conn_id", peer.ID()).Msg("ping failed")
		}
	}
}
