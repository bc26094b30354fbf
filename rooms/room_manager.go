package rooms

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// room groups the connections watching one video
type room struct {
	members      map[string]bool
	messageCount int
	createdAt    time.Time
}

// Manager maps video ids to rooms. It stores connection ids only; transports
// stay with the connection registry.
// Usage: var roomManager *rooms.Manager = rooms.NewManager(logger).
type Manager struct {
	mu     sync.Mutex
	rooms  map[string]*room
	now    func() time.Time
	logger zerolog.Logger
}

func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{
		rooms:  make(map[string]*room),
		now:    time.Now,
		logger: logger,
	}
}

// Attach adds a connection to a room.
// Creates the room on first join to an unseen video id.
// Returns the member count after the join.
func (m *Manager) Attach(videoID, connID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	rm, exists := m.rooms[videoID]
	if !exists {
		rm = &room{
			members:   make(map[string]bool),
			createdAt: m.now(),
		}
		m.rooms[videoID] = rm
		m.logger.Info().Str("room", videoID).Msg("room created")
	}

	rm.members[connID] = true
	return len(rm.members)
}

// Detach removes a connection from a room.
// If there are no more users left in the room, it deletes the map entry
// immediately rather than waiting for the janitor sweep.
// Returns the remaining member count and whether the connection was a member.
func (m *Manager) Detach(videoID, connID string) (remaining int, existed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rm, exists := m.rooms[videoID]
	if !exists {
		return 0, false
	}

	if _, member := rm.members[connID]; member {
		delete(rm.members, connID)
		existed = true
	}

	if len(rm.members) == 0 {
		delete(m.rooms, videoID)
		m.logger.Info().Str("room", videoID).Msg("room empty, closing")
		return 0, existed
	}

	return len(rm.members), existed
}

// Members returns a snapshot of the room's connection ids, so callers never
// hold the room lock across a transport send.
func (m *Manager) Members(videoID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	rm, exists := m.rooms[videoID]
	if !exists {
		return nil
	}

	ids := make([]string, 0, len(rm.members))
	for id := range rm.members {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the room's member count, zero when the room does not exist.
func (m *Manager) Count(videoID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rm, exists := m.rooms[videoID]; exists {
		return len(rm.members)
	}
	return 0
}

// Exists reports whether the room is currently live.
func (m *Manager) Exists(videoID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, exists := m.rooms[videoID]
	return exists
}

// RecordMessage bumps the room's message counter. Observability only.
func (m *Manager) RecordMessage(videoID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rm, exists := m.rooms[videoID]; exists {
		rm.messageCount++
	}
}

// SweepStale deletes rooms that are empty or older than maxAge, regardless of
// activity. A blunt TTL, not an LRU: rooms with members younger than maxAge
// are never touched. Returns the number of rooms removed.
func (m *Manager) SweepStale(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0

	for videoID, rm := range m.rooms {
		age := now.Sub(rm.createdAt)
		if len(rm.members) > 0 && age <= maxAge {
			continue
		}

		delete(m.rooms, videoID)
		m.logger.Info().
			Str("room", videoID).
			Dur("age", age).
			Int("members", len(rm.members)).
			Msg("room swept")
		removed++
	}

	return removed
}
