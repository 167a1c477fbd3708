// internal/handlers/session_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/suitmatch/internal/game"
	"github.com/jason-s-yu/suitmatch/internal/middleware"
	"github.com/jason-s-yu/suitmatch/internal/models"
	"github.com/sirupsen/logrus"
)

// Subprotocol is the websocket subprotocol clients must request.
const Subprotocol = "suitmatch"

// SessionMessage is an incoming websocket frame.
type SessionMessage struct {
	Type  string `json:"type"`
	Index *int   `json:"index,omitempty"`
}

// SessionWSHandler upgrades to a websocket that streams session events for /ws/session/{id}
// and accepts action_play, action_reshuffle, action_end and ping frames.
func SessionWSHandler(gs *SessionServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := gs.lookupTable(w, r)
		if !ok {
			return
		}
		if t.Session().Over {
			writeError(w, http.StatusGone, "session has already ended")
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			gs.Logger.Warnf("WebSocket accept error for session %s: %v", t.ID, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != Subprotocol {
			c.Close(BadSubprotocolError, "Client must use the 'suitmatch' subprotocol.")
			return
		}
		middleware.LogWebSocketConnect(gs.Logger, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		client := &wsClient{playerID: t.OwnerID, send: make(chan outbound, 32)}
		gs.hub.add(t.ID, client)
		defer func() {
			cancel()
			gs.hub.remove(t.ID, client)
		}()
		gs.Logger.WithField("session", t.ID).Debugf("%d socket(s) watching", gs.hub.count(t.ID))

		snap := t.Session().Snapshot(gs.ExposeDeck)
		sendWsMessage(ctx, c, game.SessionEvent{Type: game.EventSessionState, State: &snap})

		go writeSessionEvents(ctx, cancel, c, client, gs.Logger)
		err = readSessionMessages(ctx, c, t, gs.Logger)
		middleware.LogWebSocketDisconnect(gs.Logger, r.RemoteAddr, r.URL.Path, err)
	}
}

// writeSessionEvents drains the client's queue onto the socket. After a session_end event the
// socket is closed with SessionEndedError.
func writeSessionEvents(ctx context.Context, cancel context.CancelFunc, c *websocket.Conn, client *wsClient, logger logrus.FieldLogger) {
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-client.send:
			if !ok {
				if client.dropped {
					c.Close(websocket.StatusPolicyViolation, "Client too slow.")
				}
				return
			}
			writeCtx, writeCancel := context.WithTimeout(ctx, 3*time.Second)
			err := c.Write(writeCtx, websocket.MessageText, msg.data)
			writeCancel()
			if err != nil {
				logger.Warnf("Failed to write session event: %v", err)
				return
			}
			if msg.final {
				c.Close(SessionEndedError, "Session ended.")
				return
			}
		}
	}
}

// readSessionMessages reads frames until the socket closes or ctx is cancelled.
// Results of actions reach the client through the hub, not as direct replies.
func readSessionMessages(ctx context.Context, c *websocket.Conn, t *game.Table, logger logrus.FieldLogger) error {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if msgType != websocket.MessageText {
			logger.Warnf("Received non-text message type %d for session %s. Ignoring.", msgType, t.ID)
			continue
		}

		var msg SessionMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			sendWsError(ctx, c, "Invalid JSON format.")
			continue
		}

		switch msg.Type {
		case "ping":
			t.Touch()
			sendWsMessage(ctx, c, map[string]string{"type": "pong"})
		case models.ActionPlay, models.ActionReshuffle, models.ActionEnd:
			action := models.GameAction{ActionType: msg.Type, Payload: map[string]interface{}{}}
			if msg.Index != nil {
				action.Payload["index"] = *msg.Index
			}
			if _, _, err := t.HandleAction(action); err != nil {
				sendWsError(ctx, c, err.Error())
			}
		default:
			logger.Warnf("Unknown action type '%s' for session %s.", msg.Type, t.ID)
			sendWsError(ctx, c, "Unknown action type: "+msg.Type)
		}
	}
}

// sendWsMessage marshals a message and writes it directly to the socket with a timeout.
func sendWsMessage(ctx context.Context, c *websocket.Conn, message interface{}) {
	msgBytes, err := json.Marshal(message)
	if err != nil {
		logrus.Errorf("Error marshaling WebSocket message: %v", err)
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Write(writeCtx, websocket.MessageText, msgBytes); err != nil {
		logrus.Debugf("Error writing WebSocket message: %v", err)
	}
}

// sendWsError sends a structured error message to the client.
func sendWsError(ctx context.Context, c *websocket.Conn, errorMsg string) {
	sendWsMessage(ctx, c, map[string]interface{}{
		"type":    "error",
		"message": errorMsg,
	})
}
