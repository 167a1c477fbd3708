// internal/game/table.go
package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/suitmatch/internal/cache"
	"github.com/jason-s-yu/suitmatch/internal/models"
	"github.com/sirupsen/logrus"
)

// SessionEventType is an enum-like type for broadcasting session changes.
type SessionEventType string

const (
	EventSessionState   SessionEventType = "session_state"   // snapshot after an applied transition or on connect
	EventActionRejected SessionEventType = "action_rejected" // transition was a no-op
	EventSessionEnd     SessionEventType = "session_end"     // session reached game over
)

// SessionEvent is broadcast to every client watching a table.
type SessionEvent struct {
	Type      SessionEventType       `json:"type"`
	Action    string                 `json:"action,omitempty"`
	EndReason EndReason              `json:"end_reason,omitempty"`
	State     *SessionSnapshot       `json:"state,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// OnSessionEndFunc handles a finished session, e.g. archiving it.
type OnSessionEndFunc func(ownerID uuid.UUID, s Session)

// ActionRecorder receives a record of every transition attempt.
type ActionRecorder func(rec cache.SessionActionRecord)

// Table owns one live Session and serialises every transition on it. Session values are
// immutable; the table swaps in the successor after each applied transition.
type Table struct {
	ID      uuid.UUID
	OwnerID uuid.UUID

	Mu          sync.Mutex
	session     Session
	rng         *rand.Rand
	lastSeen    time.Time
	actionIndex int
	logger      logrus.FieldLogger

	// BroadcastFn is called with Mu held and must not call back into the table. If nil, no broadcast is done.
	BroadcastFn func(ev SessionEvent)

	// OnSessionEnd is invoked once, when the session reaches game over.
	OnSessionEnd OnSessionEndFunc

	// Recorder receives action records for the historian. If nil, actions are only logged.
	Recorder ActionRecorder

	// CheckInvariants verifies the card partition after every applied transition.
	CheckInvariants bool
}

// NewTable deals a new session for owner.
func NewTable(owner uuid.UUID, rules HouseRules, rng *rand.Rand, logger logrus.FieldLogger) (*Table, error) {
	s, err := NewSession(rng, rules)
	if err != nil {
		return nil, fmt.Errorf("dealing session: %w", err)
	}
	t := &Table{
		ID:       s.ID,
		OwnerID:  owner,
		session:  s,
		rng:      rng,
		lastSeen: time.Now(),
		logger:   logger.WithField("session", s.ID),
	}
	return t, nil
}

// Open logs and records the deal. Call it once, after the hooks are wired.
func (t *Table) Open() {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	s := t.session
	t.logger.WithFields(logrus.Fields{
		"owner":         t.OwnerID,
		"deal_attempts": s.DealAttempts,
		"base":          s.Base.String(),
	}).Info("session dealt")
	t.logAction(t.OwnerID, "session_start", map[string]interface{}{
		"dealAttempts": s.DealAttempts,
		"base":         s.Base.Key(),
		"hand":         keys(s.Hand),
	})
}

// Session returns the current session value.
func (t *Table) Session() Session {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	return t.session
}

// LastSeen returns when the table last handled a request.
func (t *Table) LastSeen() time.Time {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	return t.lastSeen
}

// Touch marks the table as in use without changing the session.
func (t *Table) Touch() {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	t.lastSeen = time.Now()
}

// Play attempts Session.PlayCard. The bool reports whether the move was applied.
func (t *Table) Play(index int) (Session, bool) {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	return t.apply(models.ActionPlay, map[string]interface{}{"index": index}, func(s Session) Session {
		return s.PlayCard(index)
	})
}

// Reshuffle attempts Session.ReshuffleHand with the table's random source.
func (t *Table) Reshuffle() (Session, bool) {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	return t.apply(models.ActionReshuffle, nil, func(s Session) Session {
		return s.ReshuffleHand(t.rng)
	})
}

// Concede ends the session on the player's request.
func (t *Table) Concede() (Session, bool) {
	t.Mu.Lock()
	defer t.Mu.Unlock()
	return t.apply(models.ActionEnd, nil, func(s Session) Session {
		return s.EndGame()
	})
}

// HandleAction routes a client action to the matching transition.
func (t *Table) HandleAction(action models.GameAction) (Session, bool, error) {
	switch action.ActionType {
	case models.ActionPlay:
		idx, err := indexFromPayload(action.Payload)
		if err != nil {
			return t.Session(), false, err
		}
		s, ok := t.Play(idx)
		return s, ok, nil
	case models.ActionReshuffle:
		s, ok := t.Reshuffle()
		return s, ok, nil
	case models.ActionEnd:
		s, ok := t.Concede()
		return s, ok, nil
	}
	return t.Session(), false, fmt.Errorf("unknown action type: %s", action.ActionType)
}

// apply runs a transition and handles logging, broadcast and end-of-session bookkeeping.
// Assumes lock is held.
func (t *Table) apply(action string, payload map[string]interface{}, transition func(Session) Session) (Session, bool) {
	prev := t.session
	next := transition(prev)
	applied := next.Seq != prev.Seq
	t.session = next
	t.lastSeen = time.Now()

	fields := logrus.Fields{
		"action":     action,
		"applied":    applied,
		"discarded":  next.DiscardedCount,
		"deck":       len(next.Deck),
		"reshuffles": next.ReshufflesRemaining,
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}
	payload["applied"] = applied

	if !applied {
		t.logger.WithFields(fields).Debug("transition rejected")
		t.logAction(t.OwnerID, action, payload)
		t.fireEvent(SessionEvent{Type: EventActionRejected, Action: action})
		return next, false
	}

	t.logger.WithFields(fields).Debug("transition applied")
	if t.CheckInvariants {
		if err := next.CheckPartition(); err != nil {
			t.logger.WithError(err).Error("card partition violated")
		}
	}
	payload["base"] = next.Base.Key()
	payload["hand"] = keys(next.Hand)
	t.logAction(t.OwnerID, action, payload)

	snap := next.Snapshot(false)
	t.fireEvent(SessionEvent{Type: EventSessionState, Action: action, State: &snap})

	if !prev.Over && next.Over {
		t.finish(next)
	}
	return next, true
}

// finish records the end of the session. Stuck detection and concession share the terminal state
// but are told apart by end_reason. Assumes lock is held.
func (t *Table) finish(s Session) {
	t.logger.WithFields(logrus.Fields{
		"end_reason": s.EndReason,
		"discarded":  s.DiscardedCount,
		"deck":       len(s.Deck),
		"reshuffles": s.ReshufflesRemaining,
	}).Infof("session ended: %s", s.EndReason)

	t.logAction(t.OwnerID, string(EventSessionEnd), map[string]interface{}{
		"endReason":           s.EndReason,
		"discardedCount":      s.DiscardedCount,
		"reshufflesRemaining": s.ReshufflesRemaining,
		"deckSize":            len(s.Deck),
	})
	snap := s.Snapshot(false)
	t.fireEvent(SessionEvent{Type: EventSessionEnd, EndReason: s.EndReason, State: &snap})

	if t.OnSessionEnd != nil {
		t.OnSessionEnd(t.OwnerID, s)
	}
}

func (t *Table) fireEvent(ev SessionEvent) {
	if t.BroadcastFn != nil {
		t.BroadcastFn(ev)
	}
}

// logAction hands the action to the recorder for the historian.
// Assumes lock is held.
func (t *Table) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	t.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	if t.Recorder == nil {
		return
	}
	t.Recorder(cache.SessionActionRecord{
		SessionID:     t.ID,
		ActionIndex:   t.actionIndex,
		ActorUserID:   actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	})
}

func keys(cards []models.Card) []models.CardKey {
	out := make([]models.CardKey, len(cards))
	for i, c := range cards {
		out[i] = c.Key()
	}
	return out
}
