package server

import (
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/colortrap-backend/internal"
)

// ChatRelay forwards chat lines to every other chat socket in the same
// room. It keeps no history.
type ChatRelay struct {
	hub   *Hub
	mu    sync.RWMutex
	rooms map[string]map[string]struct{}
}

func NewChatRelay(hub *Hub) *ChatRelay {
	return &ChatRelay{hub: hub, rooms: make(map[string]map[string]struct{})}
}

func (c *ChatRelay) Join(roomID, connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	members, ok := c.rooms[roomID]
	if !ok {
		members = make(map[string]struct{})
		c.rooms[roomID] = members
	}
	members[connID] = struct{}{}
}

func (c *ChatRelay) Leave(roomID, connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	members, ok := c.rooms[roomID]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(c.rooms, roomID)
	}
}

func (c *ChatRelay) Members(roomID string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rooms[roomID])
}

// Relay sends message to everyone in roomID except the sender.
func (c *ChatRelay) Relay(roomID, fromConnID, message string) int {
	c.mu.RLock()
	recipients := make([]string, 0, len(c.rooms[roomID]))
	for id := range c.rooms[roomID] {
		if id != fromConnID {
			recipients = append(recipients, id)
		}
	}
	c.mu.RUnlock()

	msg := internal.Message[any]{
		Type: internal.MsgChat,
		Data: internal.ChatMessageData{RoomID: roomID, Message: message},
	}
	c.hub.Broadcast(recipients, msg)

	log.Debug().Str("room", roomID).Int("recipients", len(recipients)).Msg("[ChatRelay] message relayed")
	return len(recipients)
}
