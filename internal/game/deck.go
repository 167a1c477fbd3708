// internal/game/deck.go
package game

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/suitmatch/internal/models"
)

// DeckSize is the number of cards in a full deck.
const DeckSize = len(models.Suits) * (models.MaxRank - models.MinRank + 1)

// NewRand returns a random source seeded with seed, or with the current time when seed is 0.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// BuildDeck returns the 52 standard cards in suit-major order, each with a fresh id.
// Ids are read from rng so a seeded source yields the same deck every time.
func BuildDeck(rng *rand.Rand) []models.Card {
	deck := make([]models.Card, 0, DeckSize)
	for _, suit := range models.Suits {
		for rank := models.MinRank; rank <= models.MaxRank; rank++ {
			cid, err := uuid.NewRandomFromReader(rng)
			if err != nil {
				// rand.Rand.Read never fails
				cid = uuid.New()
			}
			deck = append(deck, models.Card{ID: cid, Suit: suit, Rank: rank})
		}
	}
	return deck
}

// Shuffle returns a Fisher-Yates permutation of in. The input slice is left untouched.
func Shuffle[T any](rng *rand.Rand, in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
