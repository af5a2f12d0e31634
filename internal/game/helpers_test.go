package game

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/scythe504/colortrap-backend/internal"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// fakeClock fires timers synchronously from Advance, in deadline order.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) internal.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.fired = true
		c.now = next.at
		c.mu.Unlock()

		next.f()
	}
}

// Pending counts timers that are armed and have neither fired nor stopped.
func (c *fakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type sentMessage struct {
	connID string
	msg    internal.Message[any]
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (s *recordingSender) Send(connID string, msg internal.Message[any]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMessage{connID: connID, msg: msg})
}

func (s *recordingSender) Broadcast(connIDs []string, msg internal.Message[any]) {
	for _, id := range connIDs {
		s.Send(id, msg)
	}
}

func (s *recordingSender) To(connID string, msgType string) []internal.Message[any] {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []internal.Message[any]
	for _, m := range s.sent {
		if m.connID == connID && m.msg.Type == msgType {
			out = append(out, m.msg)
		}
	}
	return out
}

func (s *recordingSender) Count(msgType string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.sent {
		if m.msg.Type == msgType {
			n++
		}
	}
	return n
}

func (s *recordingSender) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = nil
}

// firstRand always returns 0: rolls land on the first palette color.
type firstRand struct{}

func (firstRand) Intn(int) int { return 0 }

type chanRecorder struct {
	results chan internal.MatchResult
}

func (c *chanRecorder) RecordMatch(_ context.Context, result internal.MatchResult) error {
	c.results <- result
	return nil
}

type fixture struct {
	reg    *Registry
	clock  *fakeClock
	sender *recordingSender
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{clock: newFakeClock(), sender: &recordingSender{}}
	base := []Option{WithClock(f.clock), WithRand(firstRand{})}
	f.reg = NewRegistry(f.sender, append(base, opts...)...)
	return f
}

// join seats n connections named conn-0..conn-n-1 and returns their results.
func (f *fixture) join(t *testing.T, n int) []JoinResult {
	t.Helper()
	results := make([]JoinResult, 0, n)
	for i := range n {
		res, err := f.reg.Join(fmt.Sprintf("conn-%d", i))
		require.NoError(t, err)
		results = append(results, res)
	}
	return results
}

func (f *fixture) room(t *testing.T, roomID string) *internal.Room {
	t.Helper()
	room := f.reg.lookup(roomID)
	require.NotNil(t, room, "room %s should exist", roomID)
	return room
}

// tileOfColor returns the index of the first unmatched tile with color c,
// or of one without it when want is false.
func tileOfColor(room *internal.Room, c internal.Color, want bool) int {
	room.Mu.Lock()
	defer room.Mu.Unlock()
	for i, tile := range room.State.Tiles {
		if tile.Matched {
			continue
		}
		if (tile.Color == c) == want {
			return i
		}
	}
	return -1
}

func snapshot(room *internal.Room) (internal.GameState, int) {
	room.Mu.Lock()
	defer room.Mu.Unlock()
	return SnapshotState(room.State), room.CurrentPlayer()
}
