// internal/handlers/hub.go
package handlers

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/suitmatch/internal/game"
	"github.com/sirupsen/logrus"
)

// outbound is one queued frame. final marks the last frame before the socket is closed.
type outbound struct {
	data  []byte
	final bool
}

// wsClient is one socket watching a table. Outbound frames are queued on send and written
// in order by the connection's write loop.
type wsClient struct {
	playerID uuid.UUID
	send     chan outbound
	closed   bool
	dropped  bool // closed by the hub because the queue was full; set before send is closed
}

// hub fans session events out to every socket watching the same table.
type hub struct {
	mu      sync.Mutex
	clients map[uuid.UUID]map[*wsClient]struct{}
	logger  logrus.FieldLogger
}

func newHub(logger logrus.FieldLogger) *hub {
	return &hub{
		clients: make(map[uuid.UUID]map[*wsClient]struct{}),
		logger:  logger,
	}
}

func (h *hub) add(tableID uuid.UUID, c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[tableID] == nil {
		h.clients[tableID] = make(map[*wsClient]struct{})
	}
	h.clients[tableID][c] = struct{}{}
}

func (h *hub) remove(tableID uuid.UUID, c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clients[tableID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, tableID)
		}
	}
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (h *hub) count(tableID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[tableID])
}

// broadcastFunc returns a game.Table BroadcastFn for tableID. It never blocks: a client whose
// queue is full is dropped.
func (h *hub) broadcastFunc(tableID uuid.UUID) func(ev game.SessionEvent) {
	return func(ev game.SessionEvent) {
		msg := outbound{data: game.EncodeEvent(ev), final: ev.Type == game.EventSessionEnd}

		h.mu.Lock()
		defer h.mu.Unlock()
		for c := range h.clients[tableID] {
			select {
			case c.send <- msg:
			default:
				h.logger.WithFields(logrus.Fields{
					"session": tableID,
					"player":  c.playerID,
				}).Warn("websocket send queue full, dropping client")
				delete(h.clients[tableID], c)
				c.dropped = true
				c.closed = true
				close(c.send)
			}
		}
	}
}
