package wsserver

import (
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"vidwatch/anon-chat/dispatch"
	"vidwatch/anon-chat/moderation"
	"vidwatch/anon-chat/ratelimit"
	"vidwatch/anon-chat/registry"
	"vidwatch/anon-chat/rooms"
	"vidwatch/anon-chat/types"
)

// Notice sent to a sender that went over its message budget
const rateLimitNotice = "You are sending messages too quickly. Please wait a moment."

// Server handles WebSocket sessions end to end: registration, room join,
// rate-limited message relay, and disconnect teardown.
type Server struct {
	reg     *registry.Registry
	rooms   *rooms.Manager
	disp    *dispatch.Dispatcher
	limiter *ratelimit.Limiter
	logger  zerolog.Logger

	// Returns true as a middleware is already used to check for the origin
	upgrader websocket.Upgrader
}

func New(reg *registry.Registry, roomManager *rooms.Manager, disp *dispatch.Dispatcher, limiter *ratelimit.Limiter, logger zerolog.Logger) *Server {
	return &Server{
		reg:     reg,
		rooms:   roomManager,
		disp:    disp,
		limiter: limiter,
		logger:  logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWebSocket upgrades the HTTP connection and starts the session loop.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, connErr := s.upgrader.Upgrade(w, r, nil)

	if connErr != nil {
		s.logger.Error().Err(connErr).Msg("error upgrading connection")
		return
	}

	go s.handleConnection(conn)
}

// Handles a WebSocket connection instance
func (s *Server) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	connID := s.reg.Register(conn)

	// Pong replies feed the liveness monitor
	conn.SetPongHandler(func(string) error {
		s.reg.Touch(connID)
		return nil
	})

	s.logger.Info().Str("conn_id", connID).Msg("connection established")

	for {
		_, raw, err := conn.ReadMessage()

		if err != nil {
			// Handle user closing browser and terminating WebSocket connection
			if !websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Debug().Err(err).Str("conn_id", connID).Msg("read error")
			}
			break
		}

		msg, parseErr := types.ParseClientMessage(raw)
		if parseErr != nil {
			// Malformed or unknown frames are dropped, never fatal
			s.logger.Warn().Err(parseErr).Str("conn_id", connID).Msg("dropping frame")
			continue
		}

		switch msg.Type {
		case types.WsJoin:
			s.handleJoin(connID, msg)
		case types.WsMessage:
			s.handleChat(connID, msg)
		}
	}

	s.teardown(connID)
	s.logger.Info().
		Str("conn_id", connID).
		Msg("end of WebSocket session")
}

func (s *Server) handleJoin(connID string, msg types.Message) {
	// Capture the prior identity before the join overwrites it
	_, prevNickname, _ := s.reg.Info(connID)

	prevRoom, err := s.reg.Join(connID, msg.VideoID, msg.Nickname)
	if err != nil {
		// The request is dropped and logged, not fatal
		s.logger.Warn().Err(err).Str("conn_id", connID).Msg("join rejected")
		return
	}

	// A connection belongs to at most one room; joining leaves the prior one
	if prevRoom != "" && prevRoom != msg.VideoID {
		s.leaveRoom(connID, prevRoom, prevNickname)
	}

	s.limiter.Init(connID)
	members := s.rooms.Attach(msg.VideoID, connID)

	s.logger.Info().
		Str("conn_id", connID).
		Str("nickname", msg.Nickname).
		Str("room", msg.VideoID).
		Int("members", members).
		Msg("user joined")

	s.disp.Broadcast(msg.VideoID, types.Message{
		Type:     types.WsUserJoined,
		Nickname: msg.Nickname,
	}, connID)

	// Let the user know how many people are in the room
	s.disp.Unicast(connID, types.Message{
		Type:    types.WsSystem,
		Message: watchingNotice(members),
	})
}

func (s *Server) handleChat(connID string, msg types.Message) {
	room, nickname, ok := s.reg.Info(connID)
	if !ok || room == "" {
		s.logger.Warn().Str("conn_id", connID).Msg("message before join")
		return
	}

	if !s.limiter.Allow(connID) {
		s.disp.Unicast(connID, types.Message{
			Type:    types.WsSystem,
			Message: rateLimitNotice,
		})
		return
	}

	if msg.Message == "" {
		return
	}

	cleaned := moderation.Clean(msg.Message)

	s.reg.CountMessage(connID)
	s.rooms.RecordMessage(room)

	s.disp.Broadcast(room, types.Message{
		Type:     types.WsMessage,
		Nickname: nickname,
		Message:  cleaned,
	}, "")
}

// teardown runs the normal disconnect path: detach from the room, tell the
// remaining members, then drop the registry entry and rate limit state.
func (s *Server) teardown(connID string) {
	room, nickname, ok := s.reg.Info(connID)
	if !ok {
		return
	}

	if room != "" {
		s.leaveRoom(connID, room, nickname)
	}

	s.reg.Deregister(connID)
	s.limiter.Remove(connID)
}

// leaveRoom detaches the connection and notifies whoever is left.
func (s *Server) leaveRoom(connID, room, nickname string) {
	remaining, existed := s.rooms.Detach(room, connID)
	if !existed || remaining == 0 {
		return
	}

	s.disp.Broadcast(room, types.Message{
		Type:     types.WsUserLeft,
		Nickname: nickname,
	}, "")
}

func watchingNotice(members int) string {
	if members == 1 {
		return "1 person is watching this video"
	}
	return fmt.Sprintf("%d people are watching this video", members)
}
