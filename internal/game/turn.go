package game

import (
	"github.com/rs/zerolog/log"
	"github.com/scythe504/colortrap-backend/internal"
)

// =============================================================================
// TURN STATE MACHINE
// =============================================================================

// RequestRoll moves the current player from AwaitingRoll to
// AwaitingSelection. Anything else (wrong player, selection already open,
// game over, unknown room) is ignored and reported as false.
func (r *Registry) RequestRoll(roomID string, player int) bool {
	room := r.lookup(roomID)
	if room == nil {
		log.Debug().Str("room", roomID).Msg("[RequestRoll] unknown room, ignoring")
		return false
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Closed || room.TurnState() != internal.TurnAwaitingRoll {
		log.Debug().Str("room", roomID).Int("player", player).
			Str("turn_state", string(room.TurnState())).Msg("[RequestRoll] roll not allowed now")
		return false
	}
	if room.CurrentPlayer() != player {
		log.Debug().Str("room", roomID).Int("player", player).
			Int("current_player", room.CurrentPlayer()).Msg("[RequestRoll] out of turn")
		return false
	}

	color := RecordRoll(room.State, r.board.Palette, r.rng, r.clock.Now())

	log.Info().Str("room", roomID).Int("player", player).Str("color", string(color)).
		Msg("[RequestRoll] dice rolled")

	r.broadcastLocked(room, internal.Message[any]{
		Type: internal.MsgRollResult,
		Data: internal.RollResultData{
			TargetColor:      color,
			Player:           player,
			SelectionAllowed: room.State.SelectionAllowed,
		},
	})

	r.armTurnTimerLocked(room)
	return true
}

// RequestSelect closes the current player's turn with a tile pick. A
// non-matching pick still consumes the turn. Picks that cannot be taken at
// all (out of turn, no open selection, bad index, tile already matched)
// change nothing and return false.
func (r *Registry) RequestSelect(roomID string, player int, index int) bool {
	room := r.lookup(roomID)
	if room == nil {
		log.Debug().Str("room", roomID).Msg("[RequestSelect] unknown room, ignoring")
		return false
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Closed || room.TurnState() != internal.TurnAwaitingSelection {
		log.Debug().Str("room", roomID).Int("player", player).
			Str("turn_state", string(room.TurnState())).Msg("[RequestSelect] selection not allowed now")
		return false
	}
	if room.CurrentPlayer() != player {
		log.Debug().Str("room", roomID).Int("player", player).
			Int("current_player", room.CurrentPlayer()).Msg("[RequestSelect] out of turn")
		return false
	}

	gs := room.State
	matched, ok := RecordSelection(gs, player, index)
	if !ok {
		log.Debug().Str("room", roomID).Int("player", player).Int("index", index).
			Msg("[RequestSelect] tile cannot be picked")
		return false
	}

	r.cancelTurnTimerLocked(room)
	gs.SelectionAllowed = false

	if gs.TilesLeft == 0 {
		r.finishGameLocked(room)
	}

	next := r.advanceTurnLocked(room)

	log.Info().Str("room", roomID).Int("player", player).Int("index", index).
		Bool("matched", matched).Int("tiles_left", gs.TilesLeft).Int("next_player", next).
		Msg("[RequestSelect] tile selected")

	r.broadcastLocked(room, internal.Message[any]{
		Type: internal.MsgSelectionResult,
		Data: internal.SelectionResultData{
			Matched:          matched,
			Tiles:            CopyTiles(gs.Tiles),
			Score:            gs.Scores[player],
			Player:           player,
			NextPlayer:       next,
			SelectionAllowed: gs.SelectionAllowed,
			Winner:           copyWinner(gs.Winner),
		},
	})

	r.armTurnTimerLocked(room)
	return true
}

// advanceTurnLocked moves the turn pointer to (p+1) mod N and returns the
// slot now holding the turn.
func (r *Registry) advanceTurnLocked(room *internal.Room) int {
	next := room.GetNextTurnIndex()
	if next < 0 {
		return internal.NoPlayer
	}
	room.CurrentIndex = next
	return room.CurrentPlayer()
}

func copyWinner(w *int) *int {
	if w == nil {
		return nil
	}
	v := *w
	return &v
}
