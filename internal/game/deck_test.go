// internal/game/deck_test.go
package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/suitmatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDeck(t *testing.T) {
	deck := BuildDeck(NewRand(1))
	assert.Equal(t, 52, DeckSize)
	require.Len(t, deck, DeckSize)

	keys := make(map[models.CardKey]bool)
	ids := make(map[uuid.UUID]bool)
	for _, c := range deck {
		assert.True(t, c.Suit.Valid(), "unexpected suit %q", c.Suit)
		assert.GreaterOrEqual(t, c.Rank, models.MinRank)
		assert.LessOrEqual(t, c.Rank, models.MaxRank)
		keys[c.Key()] = true
		ids[c.ID] = true
	}
	assert.Len(t, keys, DeckSize, "every face value should appear exactly once")
	assert.Len(t, ids, DeckSize, "card ids should be unique")
}

func TestBuildDeckSeeded(t *testing.T) {
	a := BuildDeck(NewRand(42))
	b := BuildDeck(NewRand(42))
	assert.Equal(t, a, b, "same seed should produce the same ids")

	c := BuildDeck(NewRand(43))
	assert.NotEqual(t, a[0].ID, c[0].ID)
}

func TestShuffleIsPermutation(t *testing.T) {
	rng := NewRand(3)
	in := make([]int, 52)
	for i := range in {
		in[i] = i
	}
	orig := append([]int(nil), in...)

	for trial := 0; trial < 1000; trial++ {
		out := Shuffle(rng, in)
		require.Len(t, out, len(in))
		assert.ElementsMatch(t, in, out)
	}
	assert.Equal(t, orig, in, "input slice must not be modified")
}

func TestShuffleEmptyAndSingle(t *testing.T) {
	rng := NewRand(1)
	assert.Empty(t, Shuffle(rng, []int{}))
	assert.Equal(t, []int{7}, Shuffle(rng, []int{7}))
}

// TestShuffleUniform checks all 24 orderings of four items come up about equally often.
func TestShuffleUniform(t *testing.T) {
	const trials = 24000
	rng := NewRand(11)
	counts := make(map[[4]int]int)
	for i := 0; i < trials; i++ {
		out := Shuffle(rng, []int{0, 1, 2, 3})
		counts[[4]int{out[0], out[1], out[2], out[3]}]++
	}
	require.Len(t, counts, 24)

	expected := float64(trials) / 24
	chi := 0.0
	for _, n := range counts {
		d := float64(n) - expected
		chi += d * d / expected
	}
	// 23 degrees of freedom; 55 is far beyond the 0.9999 quantile
	assert.Less(t, chi, 55.0)
}
