package registry

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Transport is the subset of *websocket.Conn the relay writes to.
// An interface so tests can stand in a fake connection.
type Transport interface {
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// Peer is the single owner of writes to one connection's transport.
// Every send goes through it so no two goroutines interleave frames.
type Peer struct {
	id   string
	mu   sync.Mutex
	conn Transport
}

func (p *Peer) ID() string {
	return p.id
}

// Send writes one text frame to the transport.
func (p *Peer) Send(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.conn.WriteMessage(websocket.TextMessage, data)
}

// Ping issues a liveness probe control frame.
func (p *Peer) Ping(deadline time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.conn.WriteControl(websocket.PingMessage, nil, deadline)
}

// Close tears the transport down. The connection's read loop unblocks with an
// error and runs the normal disconnect path.
func (p *Peer) Close() error {
	return p.conn.Close()
}
