package game

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/colortrap-backend/internal"
)

const recordTimeout = 5 * time.Second

// DetermineWinner scans players in join order and keeps the first one to
// reach the highest score; a later equal score does not take the lead.
func DetermineWinner(order []int, scores map[int]int) int {
	winner := internal.NoPlayer
	highest := -1
	for _, player := range order {
		if score := scores[player]; score > highest {
			highest = score
			winner = player
		}
	}
	return winner
}

// finishGameLocked freezes the room once the board is cleared: the winner is
// fixed, selection is closed for good and the elapsed clock stops.
// Caller holds room.Mu.
func (r *Registry) finishGameLocked(room *internal.Room) {
	gs := room.State
	if gs.Stopped {
		return
	}

	players := room.PlayerSlots()
	winner := DetermineWinner(players, gs.Scores)
	now := r.clock.Now()

	gs.Winner = &winner
	gs.Stopped = true
	gs.StoppedAt = now
	gs.SelectionAllowed = false
	r.cancelTurnTimerLocked(room)

	result := internal.MatchResult{
		RoomId:         room.Id,
		Winner:         winner,
		Scores:         seatedScores(players, gs.Scores),
		Players:        players,
		ElapsedSeconds: ElapsedSeconds(gs, now),
		FinishedAt:     now,
	}

	log.Info().Str("room", room.Id).Int("winner", winner).
		Interface("scores", result.Scores).Int("elapsed_seconds", result.ElapsedSeconds).
		Msg("[finishGame] board cleared")

	r.recordMatch(result)
}

// seatedScores keeps only the players still at the table, the same set the
// winner was chosen from.
func seatedScores(players []int, scores map[int]int) map[int]int {
	out := make(map[int]int, len(players))
	for _, p := range players {
		out[p] = scores[p]
	}
	return out
}

// recordMatch archives a finished game without holding up the room.
func (r *Registry) recordMatch(result internal.MatchResult) {
	if r.recorder == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()

		if err := r.recorder.RecordMatch(ctx, result); err != nil {
			log.Error().Err(err).Str("room", result.RoomId).Msg("[recordMatch] failed to archive match")
		}
	}()
}
