// internal/game/session.go
package game

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/google/uuid"
	"github.com/jason-s-yu/suitmatch/internal/models"
)

// State is the lifecycle phase of a session.
type State string

const (
	StateActive   State = "active"
	StateGameOver State = "game_over"
)

// EndReason records how a session reached StateGameOver.
type EndReason string

const (
	EndReasonNone     EndReason = ""
	EndReasonStuck    EndReason = "stuck"    // no legal play and no reshuffle or draw left
	EndReasonConceded EndReason = "conceded" // player called EndGame
	EndReasonCleared  EndReason = "cleared"  // every card was played
)

// Session is one game, as an immutable value. Transitions return a new Session and never
// modify the receiver or any slice it shares with earlier snapshots; callers must treat the
// slices as read-only too.
type Session struct {
	ID    uuid.UUID
	Rules HouseRules

	Deck    []models.Card // draw end is the last element
	Hand    []models.Card
	Base    models.Card
	History []models.Card // initial base card followed by every played card

	DiscardedCount      int
	ReshufflesRemaining int
	DealAttempts        int // layouts thrown away while dealing

	Over      bool
	EndReason EndReason

	// Seq counts applied transitions. A rejected transition leaves it unchanged.
	Seq int
}

// NewSession deals a fresh layout and returns the active session built on it.
func NewSession(rng *rand.Rand, rules HouseRules) (Session, error) {
	deal, err := DealInitial(rng, rules)
	if err != nil {
		return Session{}, err
	}
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return Session{}, fmt.Errorf("generating session id: %w", err)
	}
	s := Session{
		ID:                  id,
		Rules:               rules,
		Deck:                deal.Deck,
		Hand:                deal.Hand,
		Base:                deal.Base,
		History:             []models.Card{deal.Base},
		ReshufflesRemaining: rules.Reshuffles,
		DealAttempts:        deal.Attempts,
	}
	return s.settle(), nil
}

// State returns StateGameOver once the session has ended, StateActive otherwise.
func (s Session) State() State {
	if s.Over {
		return StateGameOver
	}
	return StateActive
}

func (s Session) IsOver() bool { return s.Over }

func (s Session) DeckSize() int { return len(s.Deck) }

// PileSize is the number of cards on the base pile, the initial base included.
func (s Session) PileSize() int { return len(s.History) }

// PlayableIndices returns the hand positions that CanPlay accepts against the base card.
func (s Session) PlayableIndices() []int {
	var idx []int
	for i, c := range s.Hand {
		if CanPlay(c, s.Base) {
			idx = append(idx, i)
		}
	}
	return idx
}

// Stuck reports whether no hand card can be played.
func (s Session) Stuck() bool {
	return len(s.Hand) > 0 && PlayableCount(s.Hand, s.Base) == 0
}

// CanReshuffle reports whether ReshuffleHand would be applied.
func (s Session) CanReshuffle() bool {
	return !s.Over && s.ReshufflesRemaining > 0 && len(s.Deck) > 0
}

// PlayCard discards the hand card at index onto the base pile and refills the hand from the deck.
// It returns s unchanged when the session is over, index is out of range or the card is not playable.
func (s Session) PlayCard(index int) Session {
	if s.Over || index < 0 || index >= len(s.Hand) || !CanPlay(s.Hand[index], s.Base) {
		return s
	}
	next := s.clone()
	card := next.Hand[index]
	next.Hand = slices.Delete(next.Hand, index, index+1)
	next.Base = card
	if n := len(next.Deck); n > 0 {
		next.Hand = append(next.Hand, next.Deck[n-1])
		next.Deck = next.Deck[:n-1]
	}
	next.DiscardedCount++
	next.History = append(next.History, card)
	next.Seq++
	return next.settle()
}

// ReshuffleHand pools hand and deck, shuffles them and deals a new hand from the pool.
// The base card and discard count are kept. Returns s unchanged unless CanReshuffle.
func (s Session) ReshuffleHand(rng *rand.Rand) Session {
	if !s.CanReshuffle() {
		return s
	}
	pool := make([]models.Card, 0, len(s.Deck)+len(s.Hand))
	pool = append(pool, s.Deck...)
	pool = append(pool, s.Hand...)
	pool = Shuffle(rng, pool)

	n := min(s.Rules.HandSize, len(pool))
	next := s.clone()
	next.Hand = slices.Clone(pool[:n])
	next.Deck = slices.Clone(pool[n:])
	next.ReshufflesRemaining--
	next.Seq++
	return next.settle()
}

// EndGame concedes an active session. It has no effect on a session that is already over.
func (s Session) EndGame() Session {
	if s.Over {
		return s
	}
	next := s.clone()
	next.Over = true
	next.EndReason = EndReasonConceded
	next.Seq++
	return next
}

// settle applies terminal detection.
func (s Session) settle() Session {
	if s.Over {
		return s
	}
	switch {
	case len(s.Hand) == 0 && len(s.Deck) == 0:
		s.Over = true
		s.EndReason = EndReasonCleared
	case s.Stuck() && (s.ReshufflesRemaining == 0 || len(s.Deck) == 0):
		s.Over = true
		s.EndReason = EndReasonStuck
	}
	return s
}

func (s Session) clone() Session {
	s.Deck = slices.Clone(s.Deck)
	s.Hand = slices.Clone(s.Hand)
	s.History = slices.Clone(s.History)
	return s
}

// Discarded returns the face values on the base pile.
func (s Session) Discarded() map[models.CardKey]bool {
	out := make(map[models.CardKey]bool, len(s.History))
	for _, c := range s.History {
		out[c.Key()] = true
	}
	return out
}

// CheckPartition verifies deck, hand and history together hold every card of the deck exactly once
// and that the last history entry is the base card.
func (s Session) CheckPartition() error {
	if len(s.History) == 0 {
		return fmt.Errorf("history is empty")
	}
	if s.History[len(s.History)-1] != s.Base {
		return fmt.Errorf("base card %s is not the top of history", s.Base)
	}
	keys := make(map[models.CardKey]string, DeckSize)
	ids := make(map[uuid.UUID]bool, DeckSize)
	check := func(where string, cards []models.Card) error {
		for _, c := range cards {
			if prev, dup := keys[c.Key()]; dup {
				return fmt.Errorf("card %s found in both %s and %s", c, prev, where)
			}
			if ids[c.ID] {
				return fmt.Errorf("card id %s repeated in %s", c.ID, where)
			}
			keys[c.Key()] = where
			ids[c.ID] = true
		}
		return nil
	}
	if err := check("deck", s.Deck); err != nil {
		return err
	}
	if err := check("hand", s.Hand); err != nil {
		return err
	}
	if err := check("history", s.History); err != nil {
		return err
	}
	if len(keys) != DeckSize {
		return fmt.Errorf("expected %d cards across deck, hand and history, found %d", DeckSize, len(keys))
	}
	return nil
}
