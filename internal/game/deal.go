// internal/game/deal.go
package game

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/jason-s-yu/suitmatch/internal/models"
)

// ErrDealExhausted is returned when no acceptable layout was found within HouseRules.MaxDealAttempts.
var ErrDealExhausted = errors.New("no playable deal found")

// Deal is a starting layout. The draw end of Deck is its last element.
type Deal struct {
	Deck     []models.Card
	Hand     []models.Card
	Base     models.Card
	Attempts int // layouts thrown away before this one
}

// DealInitial shuffles fresh decks until the hand holds at least rules.MinPlayableOpeners cards
// playable on the base card.
func DealInitial(rng *rand.Rand, rules HouseRules) (Deal, error) {
	if err := rules.Validate(); err != nil {
		return Deal{}, fmt.Errorf("invalid house rules: %w", err)
	}
	for attempt := 0; attempt < rules.MaxDealAttempts; attempt++ {
		cards := Shuffle(rng, BuildDeck(rng))

		hand := cards[:rules.HandSize:rules.HandSize]
		rest := cards[rules.HandSize:]
		base := rest[len(rest)-1]
		deck := rest[: len(rest)-1 : len(rest)-1]

		if PlayableCount(hand, base) >= rules.MinPlayableOpeners {
			return Deal{Deck: deck, Hand: hand, Base: base, Attempts: attempt}, nil
		}
	}
	return Deal{}, fmt.Errorf("%w after %d attempts", ErrDealExhausted, rules.MaxDealAttempts)
}
