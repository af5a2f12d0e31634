package game

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/colortrap-backend/internal"
	"github.com/scythe504/colortrap-backend/internal/utils"
)

// =============================================================================
// ROOM MANAGEMENT
// =============================================================================

// Sender delivers messages to connections. Rooms call it while holding
// their lock, so implementations must not block.
type Sender interface {
	Send(connID string, msg internal.Message[any])
	Broadcast(connIDs []string, msg internal.Message[any])
}

// MatchRecorder archives finished games.
type MatchRecorder interface {
	RecordMatch(ctx context.Context, result internal.MatchResult) error
}

// Registry owns every live room and the connection -> seat sessions.
// Lock order is Registry.mu before Room.Mu; timer callbacks only take
// Room.Mu.
type Registry struct {
	mu         sync.RWMutex
	rooms      map[string]*internal.Room
	sessions   map[string]internal.PlayerSession
	openRoomID string

	sender      Sender
	recorder    MatchRecorder
	clock       Clock
	rng         Rand
	board       Board
	turnTimeout time.Duration
}

type Option func(*Registry)

func WithClock(c Clock) Option { return func(r *Registry) { r.clock = c } }

func WithRand(rng Rand) Option { return func(r *Registry) { r.rng = rng } }

func WithBoard(b Board) Option { return func(r *Registry) { r.board = b } }

func WithRecorder(rec MatchRecorder) Option { return func(r *Registry) { r.recorder = rec } }

func WithTurnTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.turnTimeout = d
		}
	}
}

func NewRegistry(sender Sender, opts ...Option) *Registry {
	r := &Registry{
		rooms:       make(map[string]*internal.Room),
		sessions:    make(map[string]internal.PlayerSession),
		sender:      sender,
		clock:       realClock{},
		rng:         globalRand{},
		board:       DefaultBoard(),
		turnTimeout: internal.DefaultTurnTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type JoinResult struct {
	RoomID         string
	Player         int
	ElapsedSeconds int
	Players        []int
}

// Join seats a connection in the open room, creating one when none has a
// free seat. The joining connection gets the full state directly and the
// room hears about the new roster. Filling the last seat starts the game.
func (r *Registry) Join(connID string) (JoinResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sess, exists := r.sessions[connID]; exists {
		return JoinResult{}, fmt.Errorf("connection %s already seated in room %s", connID, sess.RoomId)
	}

	// A room can clear its board without ever being started; it takes no
	// more joins once it has.
	room := r.openRoomLocked()
	room.Mu.Lock()
	for room.TurnState() == internal.TurnGameOver {
		r.retireLocked(room)
		room.Mu.Unlock()
		room = r.openRoomLocked()
		room.Mu.Lock()
	}
	defer room.Mu.Unlock()

	slot := room.NextSlot
	room.NextSlot++
	room.Seats = append(room.Seats, &internal.Seat{
		Slot:     slot,
		ConnId:   connID,
		JoinedAt: r.clock.Now(),
	})
	room.State.Scores[slot] = 0
	r.sessions[connID] = internal.PlayerSession{ConnId: connID, RoomId: room.Id, Slot: slot}

	elapsed := ElapsedSeconds(room.State, r.clock.Now())
	minutes, seconds := utils.FormatElapsed(elapsed)
	players := room.PlayerSlots()

	log.Info().Str("room", room.Id).Str("conn", connID).Int("player", slot).
		Int("players", len(players)).Msg("[Join] player seated")

	r.sender.Send(connID, internal.Message[any]{
		Type: internal.MsgStateLoaded,
		Data: internal.StateLoadedData{
			RoomID:         room.Id,
			Player:         slot,
			CurrentPlayer:  room.CurrentPlayer(),
			GameState:      SnapshotState(room.State),
			ElapsedSeconds: elapsed,
			Minutes:        minutes,
			Seconds:        seconds,
		},
	})

	joined := slot
	r.broadcastLocked(room, internal.Message[any]{
		Type: internal.MsgRosterChanged,
		Data: internal.RosterChangedData{
			Players:       players,
			CurrentPlayer: room.CurrentPlayer(),
			Joined:        &joined,
		},
	})

	if room.IsFull() {
		r.retireLocked(room)
		r.startLocked(room)
	}

	return JoinResult{
		RoomID:         room.Id,
		Player:         slot,
		ElapsedSeconds: elapsed,
		Players:        players,
	}, nil
}

// Leave unseats a connection. An emptied room is destroyed along with its
// pending timer; otherwise the turn pointer is renumbered into the shorter
// seat list and, if the leaver held the turn, the timer moves on to
// whoever holds it now.
func (r *Registry) Leave(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[connID]
	if !ok {
		return
	}
	delete(r.sessions, connID)

	room, ok := r.rooms[sess.RoomId]
	if !ok {
		return
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	idx := room.IndexOfSlot(sess.Slot)
	if idx < 0 {
		return
	}
	wasCurrent := idx == room.CurrentIndex
	room.Seats = slices.Delete(room.Seats, idx, idx+1)

	if len(room.Seats) == 0 {
		log.Info().Str("room", room.Id).Msg("[Leave] room is empty, cleaning up")
		r.destroyLocked(room)
		return
	}

	if idx < room.CurrentIndex {
		room.CurrentIndex--
	} else if room.CurrentIndex >= len(room.Seats) {
		room.CurrentIndex = 0
	}

	log.Info().Str("room", room.Id).Int("player", sess.Slot).
		Int("players_remaining", len(room.Seats)).Int("current_player", room.CurrentPlayer()).
		Msg("[Leave] player left")

	departed := sess.Slot
	r.broadcastLocked(room, internal.Message[any]{
		Type: internal.MsgRosterChanged,
		Data: internal.RosterChangedData{
			Players:       room.PlayerSlots(),
			CurrentPlayer: room.CurrentPlayer(),
			Departed:      &departed,
		},
	})

	turnRunning := room.State.HasGameStarted || room.TurnTimer != nil
	if wasCurrent && turnRunning && room.TurnState() != internal.TurnGameOver {
		room.State.SelectionAllowed = false
		r.armTurnTimerLocked(room)
	}
}

// ElapsedTime sends the connection its room's elapsed seconds.
func (r *Registry) ElapsedTime(connID string) bool {
	sess, ok := r.Session(connID)
	if !ok {
		return false
	}
	room := r.lookup(sess.RoomId)
	if room == nil {
		return false
	}

	room.Mu.Lock()
	elapsed := ElapsedSeconds(room.State, r.clock.Now())
	room.Mu.Unlock()

	r.sender.Send(connID, internal.Message[any]{
		Type: internal.MsgElapsedTime,
		Data: internal.ElapsedTimeData{ElapsedSeconds: elapsed},
	})
	return true
}

func (r *Registry) Session(connID string) (internal.PlayerSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[connID]
	return sess, ok
}

// OpenRoom returns the room new joins are currently routed to.
func (r *Registry) OpenRoom() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[r.openRoomID]
	if !ok {
		return "", false
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()
	if room.TurnState() == internal.TurnGameOver {
		return "", false
	}
	return room.Id, true
}

// ShuffledBoard deals a fresh arrangement of the configured board without
// creating a room.
func (r *Registry) ShuffledBoard() []internal.Tile {
	return Shuffle(r.board.Tiles, r.rng)
}

func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

func (r *Registry) lookup(roomID string) *internal.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms[roomID]
}

// openRoomLocked returns the open room, creating a fresh one when there is
// none. Caller holds r.mu.
func (r *Registry) openRoomLocked() *internal.Room {
	if room, ok := r.rooms[r.openRoomID]; ok {
		return room
	}

	room := &internal.Room{
		Id:    uuid.NewString(),
		Seats: make([]*internal.Seat, 0, internal.MaxPlayersPerRoom),
		State: NewGameState(r.board, r.rng),
	}
	r.rooms[room.Id] = room
	r.openRoomID = room.Id

	log.Info().Str("room", room.Id).Int("tiles", len(room.State.Tiles)).
		Msg("[openRoom] created new room")
	return room
}

// retireLocked stops routing new joins to room. Caller holds r.mu.
func (r *Registry) retireLocked(room *internal.Room) {
	if r.openRoomID == room.Id {
		r.openRoomID = ""
	}
}

// destroyLocked tears a room down. Caller holds r.mu and room.Mu.
func (r *Registry) destroyLocked(room *internal.Room) {
	room.Closed = true
	r.cancelTurnTimerLocked(room)
	room.State.Stopped = true
	delete(r.rooms, room.Id)
	r.retireLocked(room)
}

// broadcastLocked sends msg to every seated player. Caller holds room.Mu.
func (r *Registry) broadcastLocked(room *internal.Room, msg internal.Message[any]) {
	connIDs := make([]string, len(room.Seats))
	for i, seat := range room.Seats {
		connIDs[i] = seat.ConnId
	}
	r.sender.Broadcast(connIDs, msg)
}
