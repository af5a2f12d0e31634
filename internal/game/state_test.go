package game

import (
	"testing"
	"time"

	"github.com/scythe504/colortrap-backend/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState(t *testing.T) *internal.GameState {
	t.Helper()
	gs := NewGameState(DefaultBoard(), firstRand{})
	gs.Scores[0] = 0
	gs.Scores[1] = 0
	return gs
}

func indexOf(gs *internal.GameState, c internal.Color, want bool) int {
	for i, tile := range gs.Tiles {
		if !tile.Matched && (tile.Color == c) == want {
			return i
		}
	}
	return -1
}

func TestNewGameState(t *testing.T) {
	gs := newTestState(t)

	assert.Len(t, gs.Tiles, 25)
	assert.Equal(t, 25, gs.TilesLeft)
	assert.Nil(t, gs.TargetColor)
	assert.Nil(t, gs.Winner)
	assert.False(t, gs.SelectionAllowed)
	assert.False(t, gs.HasGameStarted)
	assert.False(t, gs.Stopped)
}

func TestRecordRoll(t *testing.T) {
	gs := newTestState(t)
	now := time.Now()

	color := RecordRoll(gs, internal.DefaultPalette, firstRand{}, now)

	assert.Equal(t, internal.DefaultPalette[0], color)
	require.NotNil(t, gs.TargetColor)
	assert.Equal(t, color, *gs.TargetColor)
	assert.True(t, gs.SelectionAllowed)
	assert.Equal(t, now, gs.FirstRollAt)

	RecordRoll(gs, internal.DefaultPalette, firstRand{}, now.Add(time.Minute))
	assert.Equal(t, now, gs.FirstRollAt, "only the first roll starts the clock")
}

func TestRecordSelection_Match(t *testing.T) {
	gs := newTestState(t)
	color := RecordRoll(gs, internal.DefaultPalette, firstRand{}, time.Now())
	idx := indexOf(gs, color, true)

	matched, ok := RecordSelection(gs, 0, idx)

	assert.True(t, ok)
	assert.True(t, matched)
	assert.True(t, gs.Tiles[idx].Matched)
	assert.Equal(t, 1, gs.Scores[0])
	assert.Equal(t, 24, gs.TilesLeft)
}

func TestRecordSelection_Miss(t *testing.T) {
	gs := newTestState(t)
	color := RecordRoll(gs, internal.DefaultPalette, firstRand{}, time.Now())
	idx := indexOf(gs, color, false)

	matched, ok := RecordSelection(gs, 0, idx)

	assert.True(t, ok)
	assert.False(t, matched)
	assert.False(t, gs.Tiles[idx].Matched)
	assert.Equal(t, 0, gs.Scores[0])
	assert.Equal(t, 25, gs.TilesLeft)
}

func TestRecordSelection_Rejected(t *testing.T) {
	t.Run("selection not allowed", func(t *testing.T) {
		gs := newTestState(t)
		_, ok := RecordSelection(gs, 0, 0)
		assert.False(t, ok)
	})

	t.Run("index out of range", func(t *testing.T) {
		gs := newTestState(t)
		RecordRoll(gs, internal.DefaultPalette, firstRand{}, time.Now())
		for _, idx := range []int{-1, 25, 100} {
			_, ok := RecordSelection(gs, 0, idx)
			assert.False(t, ok, "index %d", idx)
		}
		assert.True(t, gs.SelectionAllowed)
	})

	t.Run("tile already matched", func(t *testing.T) {
		gs := newTestState(t)
		color := RecordRoll(gs, internal.DefaultPalette, firstRand{}, time.Now())
		idx := indexOf(gs, color, true)
		gs.Tiles[idx].Matched = true
		gs.TilesLeft--

		matched, ok := RecordSelection(gs, 1, idx)

		assert.False(t, ok)
		assert.False(t, matched)
		assert.Equal(t, 0, gs.Scores[1])
		assert.Equal(t, 24, gs.TilesLeft)
		assert.True(t, gs.SelectionAllowed, "a rejected pick leaves selection open")
		assert.True(t, gs.Tiles[idx].Matched)
	})
}

func TestElapsedSeconds(t *testing.T) {
	gs := newTestState(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, ElapsedSeconds(gs, start.Add(time.Hour)), "clock starts on first roll")

	RecordRoll(gs, internal.DefaultPalette, firstRand{}, start)
	assert.Equal(t, 0, ElapsedSeconds(gs, start.Add(999*time.Millisecond)))
	assert.Equal(t, 61, ElapsedSeconds(gs, start.Add(61500*time.Millisecond)))

	gs.Stopped = true
	gs.StoppedAt = start.Add(90 * time.Second)
	assert.Equal(t, 90, ElapsedSeconds(gs, start.Add(10*time.Minute)), "frozen once stopped")
}

func TestSnapshotState_IsDeepCopy(t *testing.T) {
	gs := newTestState(t)
	RecordRoll(gs, internal.DefaultPalette, firstRand{}, time.Now())

	snap := SnapshotState(gs)
	gs.Tiles[0].Matched = true
	gs.Scores[0] = 9
	*gs.TargetColor = internal.ColorPurple

	assert.False(t, snap.Tiles[0].Matched)
	assert.Equal(t, 0, snap.Scores[0])
	assert.Equal(t, internal.DefaultPalette[0], *snap.TargetColor)
}
