package game

import (
	"maps"
	"time"

	"github.com/scythe504/colortrap-backend/internal"
)

// =============================================================================
// GAME STATE
// =============================================================================

// NewGameState returns a fresh state over a freshly shuffled board with
// every turn flag at its initial value.
func NewGameState(board Board, rng Rand) *internal.GameState {
	return &internal.GameState{
		Tiles:     Shuffle(board.Tiles, rng),
		Scores:    make(map[int]int),
		TilesLeft: len(board.Tiles),
	}
}

// RecordRoll sets a new target color and opens selection. The caller has
// already checked that the roll is legal. The first roll starts the
// elapsed-time clock.
func RecordRoll(gs *internal.GameState, palette []internal.Color, rng Rand, now time.Time) internal.Color {
	color := RollTargetColor(palette, rng)
	gs.TargetColor = &color
	gs.SelectionAllowed = true
	if gs.FirstRollAt.IsZero() {
		gs.FirstRollAt = now
	}
	return color
}

// RecordSelection applies a tile pick by player. ok is false when the pick
// cannot be taken at all: index out of range, tile already matched, or no
// selection open. On a color match the tile is marked, the player scores
// and the remaining-tile count drops by one. Turn flags are left for the
// turn machine.
func RecordSelection(gs *internal.GameState, player int, index int) (matched bool, ok bool) {
	if !gs.SelectionAllowed || index < 0 || index >= len(gs.Tiles) {
		return false, false
	}
	tile := &gs.Tiles[index]
	if tile.Matched {
		return false, false
	}

	if gs.TargetColor == nil || tile.Color != *gs.TargetColor {
		return false, true
	}

	tile.Matched = true
	gs.Scores[player]++
	gs.TilesLeft--
	return true, true
}

// ElapsedSeconds counts whole seconds since the first roll, frozen once the
// game stops.
func ElapsedSeconds(gs *internal.GameState, now time.Time) int {
	if gs.FirstRollAt.IsZero() {
		return 0
	}
	end := now
	if gs.Stopped && !gs.StoppedAt.IsZero() {
		end = gs.StoppedAt
	}
	if end.Before(gs.FirstRollAt) {
		return 0
	}
	return int(end.Sub(gs.FirstRollAt) / time.Second)
}

// SnapshotState deep-copies gs so it can be serialized after the room lock
// is released.
func SnapshotState(gs *internal.GameState) internal.GameState {
	snap := *gs
	snap.Tiles = CopyTiles(gs.Tiles)
	snap.Scores = maps.Clone(gs.Scores)
	if gs.TargetColor != nil {
		c := *gs.TargetColor
		snap.TargetColor = &c
	}
	if gs.Winner != nil {
		w := *gs.Winner
		snap.Winner = &w
	}
	return snap
}

func CopyTiles(tiles []internal.Tile) []internal.Tile {
	out := make([]internal.Tile, len(tiles))
	copy(out, tiles)
	return out
}
