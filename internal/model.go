package internal

import (
	"sync"
	"time"
)

const (
	MaxPlayersPerRoom  = 4
	MinPlayersToStart  = 2
	DefaultTurnTimeout = 10500 * time.Millisecond

	// NoPlayer is sent in place of a player slot when nobody holds the turn
	// anymore (the board is cleared or the room is stopping).
	NoPlayer = -1
)

type Color string

const (
	ColorRed    Color = "#e53935"
	ColorBlue   Color = "#1e88e5"
	ColorGreen  Color = "#43a047"
	ColorYellow Color = "#fdd835"
	ColorPurple Color = "#8e24aa"
)

// DefaultPalette is the set of colors the dice can land on.
var DefaultPalette = []Color{ColorRed, ColorBlue, ColorGreen, ColorYellow, ColorPurple}

// ColorCount is one row of a board definition.
type ColorCount struct {
	Color Color
	Count int
}

type Tile struct {
	Id      int   `json:"id"`
	Color   Color `json:"color"`
	Matched bool  `json:"matched"`
}

type TurnState string

const (
	TurnAwaitingRoll      TurnState = "awaiting_roll"
	TurnAwaitingSelection TurnState = "awaiting_selection"
	TurnGameOver          TurnState = "game_over"
)

// GameState is the authoritative per-room record. It is owned by exactly
// one Room and only mutated while that room's lock is held.
type GameState struct {
	Tiles            []Tile      `json:"tiles"`
	TargetColor      *Color      `json:"target_color"`
	Scores           map[int]int `json:"scores"`
	TilesLeft        int         `json:"tiles_left"`
	SelectionAllowed bool        `json:"selection_allowed"`
	HasGameStarted   bool        `json:"has_game_started"`
	Stopped          bool        `json:"stopped"`
	Winner           *int        `json:"winner"`

	// Elapsed time runs from the first roll until Stopped is set.
	FirstRollAt time.Time `json:"-"`
	StoppedAt   time.Time `json:"-"`
}

// Timer is a pending single-shot callback that can be canceled.
type Timer interface {
	Stop() bool
}

type Room struct {
	Id    string
	Seats []*Seat

	// CurrentIndex points into Seats and wraps modulo len(Seats).
	CurrentIndex int
	State        *GameState

	// NextSlot hands out stable per-room player identities.
	NextSlot int

	TurnTimer Timer
	// TurnGen increments on every arm so that a timer which already fired
	// while being canceled can tell it is stale.
	TurnGen uint64

	Closed bool

	Mu sync.Mutex `json:"-"`
}

type MatchResult struct {
	RoomId         string      `json:"room_id"`
	Winner         int         `json:"winner"`
	Scores         map[int]int `json:"scores"`
	Players        []int       `json:"players"`
	ElapsedSeconds int         `json:"elapsed_seconds"`
	FinishedAt     time.Time   `json:"finished_at"`
}

type Response struct {
	StatusCode    int   `json:"status_code"`
	RespStartTime int64 `json:"resp_time_start_ms"`
	RespEndTime   int64 `json:"resp_time_end_ms"`
	NetRespTime   int64 `json:"net_resp_time_ms"`
	Data          any   `json:"data"`
}
