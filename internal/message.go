package internal

type Message[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

// Outbound message types.
const (
	MsgStateLoaded     = "state_loaded"
	MsgRosterChanged   = "roster_changed"
	MsgRollResult      = "roll_result"
	MsgSelectionResult = "selection_result"
	MsgTurnChanged     = "turn_changed"
	MsgTurnTimer       = "turn_timer"
	MsgGameStarted     = "game_started"
	MsgElapsedTime     = "elapsed_time"
	MsgChat            = "receive_message"
)

// Inbound message types.
const (
	MsgRollDice       = "roll_dice"
	MsgSelectTile     = "select_tile"
	MsgStartGame      = "start_game"
	MsgRequestElapsed = "request_elapsed"
	MsgSendChat       = "send_message"
)

type StateLoadedData struct {
	RoomID         string    `json:"room_id"`
	Player         int       `json:"player"`
	CurrentPlayer  int       `json:"current_player"`
	GameState      GameState `json:"game_state"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
	Minutes        string    `json:"minutes"`
	Seconds        string    `json:"seconds"`
}

type RosterChangedData struct {
	Players       []int `json:"players"`
	CurrentPlayer int   `json:"current_player"`
	Joined        *int  `json:"joined,omitempty"`
	Departed      *int  `json:"departed,omitempty"`
}

type RollResultData struct {
	TargetColor      Color `json:"target_color"`
	Player           int   `json:"player"`
	SelectionAllowed bool  `json:"selection_allowed"`
}

// SelectionResultData closes a turn, either by selection or by timeout.
type SelectionResultData struct {
	Matched          bool   `json:"matched"`
	Tiles            []Tile `json:"tiles"`
	Score            int    `json:"score"`
	Player           int    `json:"player"`
	NextPlayer       int    `json:"next_player"`
	SelectionAllowed bool   `json:"selection_allowed"`
	Winner           *int   `json:"winner"`
}

type TurnTimerData struct {
	Player    int   `json:"player"`
	TimeoutMs int64 `json:"timeout_ms"`
}

type GameStartedData struct {
	CurrentPlayer int   `json:"current_player"`
	Players       []int `json:"players"`
	Started       bool  `json:"started"`
}

type ElapsedTimeData struct {
	ElapsedSeconds int `json:"elapsed_seconds"`
}

type ChatMessageData struct {
	RoomID  string `json:"room_id"`
	Message string `json:"message"`
}

type SelectTileData struct {
	Index int `json:"index"`
}
