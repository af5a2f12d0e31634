package game

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/colortrap-backend/internal"
)

// =============================================================================
// TIMER MANAGEMENT
// =============================================================================

// Clock schedules turn timers. Tests swap in a fake to drive expiry by hand.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) internal.Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) internal.Timer {
	return time.AfterFunc(d, f)
}

// armTurnTimerLocked cancels whatever is pending for the room and schedules
// a force-advance for the player now holding the turn. When the game is
// over it only tells the room there are no further turns.
// Caller holds room.Mu.
func (r *Registry) armTurnTimerLocked(room *internal.Room) {
	r.cancelTurnTimerLocked(room)

	if room.TurnState() == internal.TurnGameOver || len(room.Seats) == 0 {
		log.Debug().Str("room", room.Id).Msg("[armTurnTimer] no further turns")
		r.broadcastLocked(room, internal.Message[any]{
			Type: internal.MsgTurnTimer,
			Data: internal.TurnTimerData{Player: internal.NoPlayer},
		})
		return
	}

	gen := room.TurnGen
	player := room.CurrentPlayer()
	room.TurnTimer = r.clock.AfterFunc(r.turnTimeout, func() {
		r.onTurnTimeout(room, gen)
	})

	log.Debug().Str("room", room.Id).Int("player", player).
		Dur("timeout", r.turnTimeout).Msg("[armTurnTimer] turn timer armed")

	r.broadcastLocked(room, internal.Message[any]{
		Type: internal.MsgTurnTimer,
		Data: internal.TurnTimerData{
			Player:    player,
			TimeoutMs: r.turnTimeout.Milliseconds(),
		},
	})
}

// cancelTurnTimerLocked stops the pending timer. Bumping TurnGen also
// defuses a callback that already fired and is waiting on room.Mu.
// Caller holds room.Mu.
func (r *Registry) cancelTurnTimerLocked(room *internal.Room) {
	room.TurnGen++
	if room.TurnTimer == nil {
		return
	}
	room.TurnTimer.Stop()
	room.TurnTimer = nil
}

// onTurnTimeout force-advances a stalled turn as if the player had picked
// a non-matching tile, then re-arms for the next player.
func (r *Registry) onTurnTimeout(room *internal.Room, gen uint64) {
	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Closed || room.TurnGen != gen {
		log.Debug().Str("room", room.Id).Msg("[onTurnTimeout] stale timer, ignoring")
		return
	}
	room.TurnTimer = nil

	if room.TurnState() == internal.TurnGameOver || len(room.Seats) == 0 {
		r.broadcastLocked(room, internal.Message[any]{
			Type: internal.MsgTurnTimer,
			Data: internal.TurnTimerData{Player: internal.NoPlayer},
		})
		return
	}

	gs := room.State
	player := room.CurrentPlayer()
	gs.SelectionAllowed = false
	next := r.advanceTurnLocked(room)

	log.Info().Str("room", room.Id).Int("player", player).Int("next_player", next).
		Msg("[onTurnTimeout] player ran out of time, turn passed")

	r.broadcastLocked(room, internal.Message[any]{
		Type: internal.MsgTurnChanged,
		Data: internal.SelectionResultData{
			Matched:          false,
			Tiles:            CopyTiles(gs.Tiles),
			Score:            gs.Scores[player],
			Player:           player,
			NextPlayer:       next,
			SelectionAllowed: false,
			Winner:           copyWinner(gs.Winner),
		},
	})

	r.armTurnTimerLocked(room)
}
