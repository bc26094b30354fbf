package registry

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidJoin  = errors.New("invalid join: room and nickname must be non-empty")
	ErrNotConnected = errors.New("connection not registered")
)

// entry is the registry's record of one live transport session
type entry struct {
	room         string
	nickname     string
	joinTime     time.Time
	messageCount int
	alive        bool
	peer         *Peer
}

// Registry tracks every live connection. It is the sole owner of connection
// records; the room manager holds connection ids only, never transports.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
	}
}

// Register allocates an id for a freshly accepted transport and stores an
// entry with no room or nickname yet.
func (r *Registry) Register(conn Transport) string {
	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[id] = &entry{
		joinTime: time.Now(),
		alive:    true,
		peer:     &Peer{id: id, conn: conn},
	}

	return id
}

// Join records the room and nickname for a connection. It returns the room
// the connection previously belonged to so the caller can detach it first;
// a connection is in at most one room at a time.
func (r *Registry) Join(id, room, nickname string) (prevRoom string, err error) {
	if room == "" || nickname == "" {
		return "", ErrInvalidJoin
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.entries[id]
	if !exists {
		return "", ErrNotConnected
	}

	prevRoom = e.room
	e.room = room
	e.nickname = nickname
	return prevRoom, nil
}

// Deregister removes the entry. Deregistering an unknown id is a no-op.
func (r *Registry) Deregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[id]; !exists {
		return false
	}

	delete(r.entries, id)
	return true
}

// Info returns the room and nickname currently held by a connection.
func (r *Registry) Info(id string) (room, nickname string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.entries[id]
	if !exists {
		return "", "", false
	}
	return e.room, e.nickname, true
}

// Peer returns the write handle for a connection.
func (r *Registry) Peer(id string) (*Peer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.entries[id]
	if !exists {
		return nil, false
	}
	return e.peer, true
}

// Touch marks the connection as having answered the latest liveness probe.
func (r *Registry) Touch(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, exists := r.entries[id]; exists {
		e.alive = true
	}
}

// CountMessage bumps the connection's message counter.
func (r *Registry) CountMessage(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, exists := r.entries[id]; exists {
		e.messageCount++
	}
}

// MessageCount returns how many messages the connection has sent.
func (r *Registry) MessageCount(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, exists := r.entries[id]; exists {
		return e.messageCount
	}
	return 0
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}

// SweepPending splits connections into those that missed the previous
// liveness probe and those due for a new one. Connections in the second
// group are flipped back to pending until their next pong arrives.
func (r *Registry) SweepPending() (stale, probed []*Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if !e.alive {
			stale = append(stale, e.peer)
			continue
		}
		e.alive = false
		probed = append(probed, e.peer)
	}
	return stale, probed
}
