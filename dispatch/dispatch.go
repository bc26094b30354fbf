package dispatch

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"vidwatch/anon-chat/registry"
	"vidwatch/anon-chat/rooms"
	"vidwatch/anon-chat/types"
)

// Dispatcher fans messages out to a room's members. It resolves member ids to
// write handles through the connection registry, and never sends while any
// shared lock is held: the member list is a snapshot.
type Dispatcher struct {
	rooms  *rooms.Manager
	reg    *registry.Registry
	logger zerolog.Logger
}

func New(roomManager *rooms.Manager, reg *registry.Registry, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		rooms:  roomManager,
		reg:    reg,
		logger: logger,
	}
}

// Broadcast sends a message to every member of the room except excludeID
// (pass "" to include everyone). Delivery is fault-isolated per recipient: a
// dead transport is logged and the rest of the room still gets the message.
func (d *Dispatcher) Broadcast(videoID string, msg types.Message, excludeID string) {
	members := d.rooms.Members(videoID)
	if members == nil {
		d.logger.Debug().Str("room", videoID).Msg("broadcast to non-existent room")
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		d.logger.Error().Err(err).Msg("error marshalling broadcast")
		return
	}

	for _, connID := range members {
		if connID == excludeID {
			continue
		}

		peer, exists := d.reg.Peer(connID)
		if !exists {
			continue
		}

		if sendErr := peer.Send(data); sendErr != nil {
			d.logger.Warn().
				Err(sendErr).
				Str("conn_id", connID).
				Str("room", videoID).
				Msg("send failed")
		}
	}
}

// Unicast sends a message to a single connection. Used for private system
// notices such as the join member count and rate limit warnings.
func (d *Dispatcher) Unicast(connID string, msg types.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		d.logger.Error().Err(err).Msg("error marshalling unicast")
		return
	}

	peer, exists := d.reg.Peer(connID)
	if !exists {
		d.logger.Debug().Str("conn_id", connID).Msg("unicast to unknown connection")
		return
	}

	if sendErr := peer.Send(data); sendErr != nil {
		d.logger.Warn().Err(sendErr).Str("conn_id", connID).Msg("send failed")
	}
}
