package game

import (
	"math/rand"

	"github.com/scythe504/colortrap-backend/internal"
)

// =============================================================================
// TILE SET GENERATION
// =============================================================================

const DefaultTilesPerColor = 5

// Rand yields uniform indices in [0, n). The default implementation uses the
// package-level math/rand source, which is safe for concurrent use.
type Rand interface {
	Intn(n int) int
}

type globalRand struct{}

func (globalRand) Intn(n int) int { return rand.Intn(n) }

// Board is the canonical tile layout and the palette the dice rolls from.
// It is never mutated; every room shuffles its own copy.
type Board struct {
	Tiles   []internal.Tile
	Palette []internal.Color
}

// DefaultBoard returns 25 tiles, five of each palette color.
func DefaultBoard() Board {
	counts := make([]internal.ColorCount, 0, len(internal.DefaultPalette))
	for _, c := range internal.DefaultPalette {
		counts = append(counts, internal.ColorCount{Color: c, Count: DefaultTilesPerColor})
	}
	return BuildBoard(counts)
}

// BuildBoard lays tiles out in row order and derives the palette from the
// colors that appear at least once.
func BuildBoard(counts []internal.ColorCount) Board {
	board := Board{}
	for _, cc := range counts {
		if cc.Count <= 0 {
			continue
		}
		board.Palette = append(board.Palette, cc.Color)
		for range cc.Count {
			board.Tiles = append(board.Tiles, internal.Tile{
				Id:    len(board.Tiles),
				Color: cc.Color,
			})
		}
	}
	return board
}

// Shuffle returns a Fisher-Yates permutation of a copy of tiles. The input
// is left untouched so rooms never share tile-order state.
func Shuffle(tiles []internal.Tile, rng Rand) []internal.Tile {
	shuffled := make([]internal.Tile, len(tiles))
	copy(shuffled, tiles)

	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}

// RollTargetColor picks a palette color uniformly. Board state is ignored,
// so a roll may land on a color with no tiles left or repeat the last one.
func RollTargetColor(palette []internal.Color, rng Rand) internal.Color {
	return palette[rng.Intn(len(palette))]
}
