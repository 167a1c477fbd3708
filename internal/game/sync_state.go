// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/suitmatch/internal/models"
)

// SnapCard is a card as shown to clients, with display helpers filled in.
type SnapCard struct {
	ID       uuid.UUID   `json:"id"`
	Suit     models.Suit `json:"suit"`
	Rank     int         `json:"rank"`
	Label    string      `json:"label"`
	Red      bool        `json:"red"`
	Idx      *int        `json:"idx,omitempty"`
	Playable *bool       `json:"playable,omitempty"`
}

// SessionSnapshot is the read-only view of a session handed to presentation code.
type SessionSnapshot struct {
	ID                  uuid.UUID  `json:"id"`
	State               State      `json:"state"`
	Seq                 int        `json:"seq"`
	DeckSize            int        `json:"deck_size"`
	Deck                []SnapCard `json:"deck,omitempty"`
	Hand                []SnapCard `json:"hand"`
	Base                SnapCard   `json:"base"`
	History             []SnapCard `json:"history"`
	DiscardedCount      int        `json:"discarded_count"`
	PileSize            int        `json:"pile_size"`
	ReshufflesRemaining int        `json:"reshuffles_remaining"`
	DealAttempts        int        `json:"deal_attempts"`
	CanReshuffle        bool       `json:"can_reshuffle"`
	Over                bool       `json:"over"`
	EndReason           EndReason  `json:"end_reason,omitempty"`
	Rules               HouseRules `json:"rules"`
}

func snapCard(c models.Card) SnapCard {
	return SnapCard{
		ID:    c.ID,
		Suit:  c.Suit,
		Rank:  c.Rank,
		Label: c.String(),
		Red:   c.Suit.IsRed(),
	}
}

// Snapshot renders s for clients. The deck order is only included when includeDeck is set.
func (s Session) Snapshot(includeDeck bool) SessionSnapshot {
	snap := SessionSnapshot{
		ID:                  s.ID,
		State:               s.State(),
		Seq:                 s.Seq,
		DeckSize:            len(s.Deck),
		Base:                snapCard(s.Base),
		DiscardedCount:      s.DiscardedCount,
		PileSize:            s.PileSize(),
		ReshufflesRemaining: s.ReshufflesRemaining,
		DealAttempts:        s.DealAttempts,
		CanReshuffle:        s.CanReshuffle(),
		Over:                s.Over,
		EndReason:           s.EndReason,
		Rules:               s.Rules,
		Hand:                make([]SnapCard, len(s.Hand)),
		History:             make([]SnapCard, len(s.History)),
	}
	for i, c := range s.Hand {
		idx := i
		playable := !s.Over && CanPlay(c, s.Base)
		sc := snapCard(c)
		sc.Idx = &idx
		sc.Playable = &playable
		snap.Hand[i] = sc
	}
	for i, c := range s.History {
		snap.History[i] = snapCard(c)
	}
	if includeDeck {
		snap.Deck = make([]SnapCard, len(s.Deck))
		for i, c := range s.Deck {
			snap.Deck[i] = snapCard(c)
		}
	}
	return snap
}

// CardLocation is where a face value currently sits, from the player's point of view.
type CardLocation string

const (
	LocationDeck      CardLocation = "deck"
	LocationHand      CardLocation = "hand"
	LocationDiscarded CardLocation = "discarded"
)

// TrackerRow is one suit of the card tracker, indexed by rank-1.
type TrackerRow struct {
	Suit    models.Suit    `json:"suit"`
	Symbol  string         `json:"symbol"`
	Target  bool           `json:"target"` // base card's suit
	Ranks   []CardLocation `json:"ranks"`
	Matches []bool         `json:"matches"` // would be playable on the current base
}

// Tracker is the 4x13 grid of where every card is: unseen deck cards, hand cards and discards.
type Tracker struct {
	BaseRank int          `json:"base_rank"`
	Rows     []TrackerRow `json:"rows"`
}

// Tracker builds the card tracker grid for s.
func (s Session) Tracker() Tracker {
	discarded := s.Discarded()
	inHand := make(map[models.CardKey]bool, len(s.Hand))
	for _, c := range s.Hand {
		inHand[c.Key()] = true
	}

	t := Tracker{BaseRank: s.Base.Rank}
	for _, suit := range models.Suits {
		row := TrackerRow{
			Suit:   suit,
			Symbol: suit.Symbol(),
			Target: suit == s.Base.Suit,
		}
		for rank := models.MinRank; rank <= models.MaxRank; rank++ {
			key := models.CardKey{Suit: suit, Rank: rank}
			loc := LocationDeck
			switch {
			case discarded[key]:
				loc = LocationDiscarded
			case inHand[key]:
				loc = LocationHand
			}
			row.Ranks = append(row.Ranks, loc)
			row.Matches = append(row.Matches, suit == s.Base.Suit || rank == s.Base.Rank)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
