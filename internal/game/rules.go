// internal/game/rules.go
package game

import (
	"fmt"

	"github.com/jason-s-yu/suitmatch/internal/models"
)

// HouseRules holds the tunable parameters of a session. The zero value is not usable; start from DefaultHouseRules.
type HouseRules struct {
	HandSize           int `json:"handSize"`           // cards held during active play
	MinPlayableOpeners int `json:"minPlayableOpeners"` // playable hand cards required before a deal is accepted
	Reshuffles         int `json:"reshuffles"`         // hand reshuffles granted per session
	MaxDealAttempts    int `json:"maxDealAttempts"`    // layouts tried before the deal gives up
}

const (
	// MaxPlayableOnBase is the most cards that can match one base card: 12 of its suit and 3 of its rank.
	MaxPlayableOnBase = (models.MaxRank - models.MinRank) + (len(models.Suits) - 1)

	// DealAttemptsLimit caps HouseRules.MaxDealAttempts.
	DealAttemptsLimit = 10000
)

// DefaultHouseRules returns the standard game: 5 cards, 2 openers, 3 reshuffles.
func DefaultHouseRules() HouseRules {
	return HouseRules{
		HandSize:           5,
		MinPlayableOpeners: 2,
		Reshuffles:         3,
		MaxDealAttempts:    DealAttemptsLimit,
	}
}

// CanPlay reports whether candidate may be discarded onto base: same suit or same rank.
func CanPlay(candidate, base models.Card) bool {
	return candidate.Suit == base.Suit || candidate.Rank == base.Rank
}

// IsPlayable is CanPlay under the name presentation code uses for per-card affordances.
func IsPlayable(card, base models.Card) bool {
	return CanPlay(card, base)
}

// PlayableCount returns how many cards in hand can be played on base.
func PlayableCount(hand []models.Card, base models.Card) int {
	n := 0
	for _, c := range hand {
		if CanPlay(c, base) {
			n++
		}
	}
	return n
}

// Validate checks the rules describe a dealable game.
func (rules HouseRules) Validate() error {
	if rules.HandSize < 1 {
		return fmt.Errorf("handSize must be at least 1")
	}
	if rules.HandSize+1 > DeckSize {
		return fmt.Errorf("handSize must leave room for a base card (max %d)", DeckSize-1)
	}
	if rules.MinPlayableOpeners < 0 || rules.MinPlayableOpeners > min(rules.HandSize, MaxPlayableOnBase) {
		return fmt.Errorf("minPlayableOpeners must be between 0 and %d", min(rules.HandSize, MaxPlayableOnBase))
	}
	if rules.Reshuffles < 0 {
		return fmt.Errorf("reshuffles must be non-negative")
	}
	if rules.MaxDealAttempts < 1 || rules.MaxDealAttempts > DealAttemptsLimit {
		return fmt.Errorf("maxDealAttempts must be between 1 and %d", DealAttemptsLimit)
	}
	return nil
}

// Update will update the house rules with the new rules provided.
// If a rule is not set or defined, it will be ignored, and the old value will persist.
func (rules *HouseRules) Update(newRules map[string]interface{}) error {
	assignInt := func(field *int, key string) error {
		val, exists := newRules[key]
		if !exists || val == nil {
			return nil
		}
		// JSON numbers decode as float64
		switch v := val.(type) {
		case float64:
			if v != float64(int(v)) {
				return fmt.Errorf("%s must be a whole number", key)
			}
			*field = int(v)
		case int:
			*field = v
		default:
			return fmt.Errorf("invalid type for %s", key)
		}
		return nil
	}

	if err := assignInt(&rules.HandSize, "handSize"); err != nil {
		return err
	}
	if err := assignInt(&rules.MinPlayableOpeners, "minPlayableOpeners"); err != nil {
		return err
	}
	if err := assignInt(&rules.Reshuffles, "reshuffles"); err != nil {
		return err
	}
	if err := assignInt(&rules.MaxDealAttempts, "maxDealAttempts"); err != nil {
		return err
	}
	return rules.Validate()
}

// ParseRules applies a map of overrides on top of current. current is not modified.
func ParseRules(overrides map[string]interface{}, current HouseRules) (HouseRules, error) {
	houseRules := current
	err := houseRules.Update(overrides)
	return houseRules, err
}
