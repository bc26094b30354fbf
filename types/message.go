package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Type of WebSocket relay messages.
// WsJoin: user joins the room for a video
// WsMessage: chat text, client to room
// WsUserJoined: someone else joined the room
// WsUserLeft: someone else left the room
// WsSystem: private server notice to a single connection
const (
	WsJoin       = "join"
	WsMessage    = "message"
	WsUserJoined = "user-joined"
	WsUserLeft   = "user-left"
	WsSystem     = "system"
)

// Message type used for (un)marshalling WebSocket messages
type Message struct {
	Type     string `json:"type"`
	VideoID  string `json:"videoId,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	Message  string `json:"message,omitempty"`
}

var (
	ErrMalformedPayload = errors.New("malformed payload")
	ErrUnknownType      = errors.New("unknown message type")
)

// ParseClientMessage validates an inbound frame against the closed set of
// client message kinds. Frames outside the set are rejected at the boundary
// instead of falling through a dispatch switch.
func ParseClientMessage(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	switch msg.Type {
	case WsJoin, WsMessage:
		return msg, nil
	default:
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownType, msg.Type)
	}
}
