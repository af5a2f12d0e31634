package server

import (
	"encoding/json"
	"testing"

	"github.com/scythe504/colortrap-backend/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// addClient seats a client without a socket so its queue can be inspected.
func addClient(h *Hub, id string, buffer int) *Client {
	c := &Client{id: id, send: make(chan []byte, buffer), done: make(chan struct{})}
	h.mu.Lock()
	h.clients[id] = c
	h.mu.Unlock()
	return c
}

func TestHub_BroadcastEncodesOnce(t *testing.T) {
	h := NewHub()
	a := addClient(h, "a", 1)
	b := addClient(h, "b", 1)

	msg := internal.Message[any]{Type: internal.MsgTurnTimer, Data: internal.TurnTimerData{Player: 1, TimeoutMs: 10500}}
	h.Broadcast([]string{"a", "missing", "b"}, msg)

	require.Len(t, a.send, 1)
	require.Len(t, b.send, 1)
	gotA, gotB := <-a.send, <-b.send
	assert.JSONEq(t, `{"type":"turn_timer","data":{"player":1,"timeout_ms":10500}}`, string(gotA))
	assert.Same(t, &gotA[0], &gotB[0], "every recipient shares one encoded payload")
}

func TestHub_FullBufferDrops(t *testing.T) {
	h := NewHub()
	c := addClient(h, "slow", 1)

	h.Send("slow", internal.Message[any]{Type: internal.MsgElapsedTime, Data: internal.ElapsedTimeData{ElapsedSeconds: 1}})
	h.Send("slow", internal.Message[any]{Type: internal.MsgElapsedTime, Data: internal.ElapsedTimeData{ElapsedSeconds: 2}})

	require.Len(t, c.send, 1)
	var got internal.Message[internal.ElapsedTimeData]
	require.NoError(t, json.Unmarshal(<-c.send, &got))
	assert.Equal(t, 1, got.Data.ElapsedSeconds)
}

func TestHub_SendAfterUnregister(t *testing.T) {
	h := NewHub()
	c := addClient(h, "gone", 1)
	h.unregister(c)

	h.Send("gone", internal.Message[any]{Type: internal.MsgChat})
	assert.Empty(t, c.send)
	assert.Zero(t, h.Count())
}
