// internal/handlers/hub_test.go
package handlers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/suitmatch/internal/game"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcast(t *testing.T) {
	logger, _ := test.NewNullLogger()
	h := newHub(logger)
	tableID, otherID := uuid.New(), uuid.New()

	a := &wsClient{playerID: uuid.New(), send: make(chan outbound, 4)}
	b := &wsClient{playerID: uuid.New(), send: make(chan outbound, 4)}
	h.add(tableID, a)
	h.add(otherID, b)
	assert.Equal(t, 1, h.count(tableID))

	h.broadcastFunc(tableID)(game.SessionEvent{Type: game.EventSessionState})
	h.broadcastFunc(tableID)(game.SessionEvent{Type: game.EventSessionEnd, EndReason: game.EndReasonStuck})

	require.Len(t, a.send, 2)
	first := <-a.send
	assert.False(t, first.final)
	last := <-a.send
	assert.True(t, last.final)
	assert.Contains(t, string(last.data), `"end_reason":"stuck"`)
	assert.Empty(t, b.send, "other tables are not notified")

	h.remove(tableID, a)
	h.remove(tableID, a)
	assert.Zero(t, h.count(tableID))
	_, open := <-a.send
	assert.False(t, open)
	assert.False(t, a.dropped, "a disconnect is not a slow-client drop")
}

func TestHubDropsSlowClient(t *testing.T) {
	logger, hook := test.NewNullLogger()
	h := newHub(logger)
	tableID := uuid.New()

	slow := &wsClient{playerID: uuid.New(), send: make(chan outbound, 1)}
	h.add(tableID, slow)

	fn := h.broadcastFunc(tableID)
	fn(game.SessionEvent{Type: game.EventSessionState})
	fn(game.SessionEvent{Type: game.EventSessionState})

	assert.Zero(t, h.count(tableID))
	assert.True(t, slow.closed)
	assert.True(t, slow.dropped)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "websocket send queue full, dropping client", hook.LastEntry().Message)

	// removing a dropped client must not close the channel twice
	assert.NotPanics(t, func() { h.remove(tableID, slow) })
}
