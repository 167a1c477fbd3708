// internal/handlers/session.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jason-s-yu/suitmatch/internal/game"
)

// transitionResponse is returned by every mutating endpoint. Applied is false when the core
// rejected the move; State is then the unchanged session.
type transitionResponse struct {
	Applied bool                 `json:"applied"`
	State   game.SessionSnapshot `json:"state"`
}

type playRequest struct {
	Index *int `json:"index"`
}

// CreateSessionHandler deals a new session for the caller. The optional JSON body holds
// house-rule overrides, e.g. {"reshuffles": 5}.
func CreateSessionHandler(gs *SessionServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, err := gs.EnsurePlayer(w, r)
		if err != nil {
			gs.Logger.WithError(err).Error("failed to identify player")
			writeError(w, http.StatusInternalServerError, "could not identify player")
			return
		}

		var overrides map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&overrides); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		rules, err := game.ParseRules(overrides, gs.DefaultRules)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		t, err := gs.NewTable(playerID, rules)
		if err != nil {
			gs.Logger.WithError(err).WithField("player", playerID).Error("failed to deal session")
			if errors.Is(err, game.ErrDealExhausted) {
				writeError(w, http.StatusUnprocessableEntity, "no playable deal found for these rules")
				return
			}
			writeError(w, http.StatusInternalServerError, "could not deal session")
			return
		}
		writeJSON(w, http.StatusCreated, t.Session().Snapshot(gs.ExposeDeck))
	}
}

// ListSessionsHandler returns snapshots of every live session the caller owns.
func ListSessionsHandler(gs *SessionServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, err := gs.Authenticate(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		snaps := []game.SessionSnapshot{}
		for _, t := range gs.Store.TablesForOwner(playerID) {
			snaps = append(snaps, t.Session().Snapshot(gs.ExposeDeck))
		}
		writeJSON(w, http.StatusOK, snaps)
	}
}

// GetSessionHandler returns the current snapshot.
func GetSessionHandler(gs *SessionServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := gs.lookupTable(w, r)
		if !ok {
			return
		}
		t.Touch()
		writeJSON(w, http.StatusOK, t.Session().Snapshot(gs.ExposeDeck))
	}
}

// TrackerHandler returns the suit-by-rank card tracker.
func TrackerHandler(gs *SessionServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := gs.lookupTable(w, r)
		if !ok {
			return
		}
		t.Touch()
		writeJSON(w, http.StatusOK, t.Session().Tracker())
	}
}

// PlayHandler plays the hand card at {"index": n}.
func PlayHandler(gs *SessionServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := gs.lookupTable(w, r)
		if !ok {
			return
		}
		var req playRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
			writeError(w, http.StatusBadRequest, "body must be {\"index\": n}")
			return
		}
		s, applied := t.Play(*req.Index)
		writeJSON(w, http.StatusOK, transitionResponse{Applied: applied, State: s.Snapshot(gs.ExposeDeck)})
	}
}

// ReshuffleHandler spends one reshuffle.
func ReshuffleHandler(gs *SessionServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := gs.lookupTable(w, r)
		if !ok {
			return
		}
		s, applied := t.Reshuffle()
		writeJSON(w, http.StatusOK, transitionResponse{Applied: applied, State: s.Snapshot(gs.ExposeDeck)})
	}
}

// EndHandler concedes the session.
func EndHandler(gs *SessionServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := gs.lookupTable(w, r)
		if !ok {
			return
		}
		s, applied := t.Concede()
		writeJSON(w, http.StatusOK, transitionResponse{Applied: applied, State: s.Snapshot(gs.ExposeDeck)})
	}
}

// lookupTable resolves {id} to a table owned by the authenticated caller, writing the error
// response itself when that fails.
func (gs *SessionServer) lookupTable(w http.ResponseWriter, r *http.Request) (*game.Table, bool) {
	playerID, err := gs.Authenticate(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return nil, false
	}
	id, ok := parseSessionID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return nil, false
	}
	t, exists := gs.Store.GetTable(id)
	if !exists {
		writeError(w, http.StatusNotFound, game.ErrSessionNotFound.Error())
		return nil, false
	}
	if t.OwnerID != playerID {
		writeError(w, http.StatusForbidden, "session belongs to another player")
		return nil, false
	}
	return t, true
}
