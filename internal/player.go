package internal

import "time"

// Seat is a player seated in a room. Slot is the player's identity inside
// the room; ConnId only routes messages to the player's connection.
type Seat struct {
	Slot     int       `json:"slot"`
	ConnId   string    `json:"-"`
	JoinedAt time.Time `json:"joined_at"`
}

type PlayerSession struct {
	ConnId string `json:"-"`
	RoomId string `json:"room_id"`
	Slot   int    `json:"slot"`
}
