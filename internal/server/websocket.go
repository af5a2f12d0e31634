package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/colortrap-backend/internal"
)

// =============================================================================
// WEBSOCKET CONNECTION HANDLING
// =============================================================================

// GameWebSocketHandler seats the connection in a room for as long as the
// socket stays open.
func (s *Server) GameWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("[GameWebSocket] upgrade failed")
		return
	}

	client := s.hub.register(conn)
	defer s.hub.unregister(client)

	res, err := s.registry.Join(client.id)
	if err != nil {
		log.Error().Err(err).Str("conn", client.id).Msg("[GameWebSocket] join failed")
		return
	}
	defer s.registry.Leave(client.id)

	log.Info().Str("conn", client.id).Str("room", res.RoomID).Int("player", res.Player).
		Msg("[GameWebSocket] connected")

	client.readPump(func(raw []byte) {
		s.dispatchGameMessage(client.id, raw)
	})

	log.Info().Str("conn", client.id).Str("room", res.RoomID).Msg("[GameWebSocket] disconnected")
}

// dispatchGameMessage routes one inbound frame. The acting player and room
// always come from the connection's session, never from the frame.
func (s *Server) dispatchGameMessage(connID string, raw []byte) {
	var baseMsg internal.Message[json.RawMessage]
	if err := json.Unmarshal(raw, &baseMsg); err != nil {
		log.Debug().Err(err).Str("conn", connID).Msg("[dispatch] failed to parse base message")
		return
	}

	sess, ok := s.registry.Session(connID)
	if !ok {
		return
	}

	switch baseMsg.Type {
	case internal.MsgRollDice:
		s.registry.RequestRoll(sess.RoomId, sess.Slot)
	case internal.MsgSelectTile:
		var data internal.SelectTileData
		if err := json.Unmarshal(baseMsg.Data, &data); err != nil {
			log.Debug().Err(err).Str("conn", connID).Msg("[dispatch] bad select_tile payload")
			return
		}
		s.registry.RequestSelect(sess.RoomId, sess.Slot, data.Index)
	case internal.MsgStartGame:
		s.registry.RequestStart(sess.RoomId)
	case internal.MsgRequestElapsed:
		s.registry.ElapsedTime(connID)
	default:
		log.Debug().Str("conn", connID).Str("type", baseMsg.Type).Msg("[dispatch] unknown message type")
	}
}

// ChatWebSocketHandler relays chat lines between the sockets of one room.
func (s *Server) ChatWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	if roomID == "" {
		http.Error(w, "room id required", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("[ChatWebSocket] upgrade failed")
		return
	}

	client := s.chatHub.register(conn)
	defer s.chatHub.unregister(client)

	s.chat.Join(roomID, client.id)
	defer s.chat.Leave(roomID, client.id)

	client.readPump(func(raw []byte) {
		var baseMsg internal.Message[string]
		if err := json.Unmarshal(raw, &baseMsg); err != nil || baseMsg.Type != internal.MsgSendChat {
			return
		}
		s.chat.Relay(roomID, client.id, baseMsg.Data)
	})
}
