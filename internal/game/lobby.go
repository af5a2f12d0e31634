package game

import (
	"github.com/rs/zerolog/log"
	"github.com/scythe504/colortrap-backend/internal"
)

// =============================================================================
// LOBBY & GAME START
// =============================================================================

// RequestStart starts the room early once at least two players are seated.
// The room stops accepting joins either way; a repeated start is a no-op.
func (r *Registry) RequestStart(roomID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		log.Debug().Str("room", roomID).Msg("[RequestStart] unknown room, ignoring")
		return false
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if !room.CanStartGame() {
		log.Debug().Str("room", roomID).Int("players", room.GetPlayerCount()).
			Msg("[RequestStart] not enough players")
		return false
	}

	r.retireLocked(room)
	return r.startLocked(room)
}

// startLocked flips the room to started exactly once and arms the first
// turn timer. Caller holds r.mu and room.Mu.
func (r *Registry) startLocked(room *internal.Room) bool {
	if room.TurnState() == internal.TurnGameOver {
		log.Debug().Str("room", room.Id).Msg("[startGame] game already over")
		return false
	}
	if room.State.HasGameStarted {
		log.Debug().Str("room", room.Id).Msg("[startGame] already started")
		return false
	}
	room.State.HasGameStarted = true

	log.Info().Str("room", room.Id).Ints("players", room.PlayerSlots()).
		Int("current_player", room.CurrentPlayer()).Msg("[startGame] game started")

	r.broadcastLocked(room, internal.Message[any]{
		Type: internal.MsgGameStarted,
		Data: internal.GameStartedData{
			CurrentPlayer: room.CurrentPlayer(),
			Players:       room.PlayerSlots(),
			Started:       true,
		},
	})

	r.armTurnTimerLocked(room)
	return true
}
