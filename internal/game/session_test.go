// internal/game/session_test.go
package game

import (
	"slices"
	"testing"

	"github.com/jason-s-yu/suitmatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSession lays out a full deck by hand. drawOrder lists the next cards drawn, first drawn
// first; every card not named goes to the bottom of the deck.
func fixedSession(t *testing.T, reshuffles int, base models.Card, hand []models.Card, drawOrder ...models.Card) Session {
	t.Helper()
	byKey := make(map[models.CardKey]models.Card)
	for _, c := range BuildDeck(NewRand(1)) {
		byKey[c.Key()] = c
	}
	take := func(k models.Card) models.Card {
		c, ok := byKey[k.Key()]
		require.True(t, ok, "card %s used twice", k)
		delete(byKey, k.Key())
		return c
	}

	s := Session{Rules: DefaultHouseRules(), ReshufflesRemaining: reshuffles}
	s.Base = take(base)
	s.History = []models.Card{s.Base}
	for _, c := range hand {
		s.Hand = append(s.Hand, take(c))
	}
	top := make([]models.Card, 0, len(drawOrder))
	for _, c := range drawOrder {
		top = append(top, take(c))
	}
	for _, c := range BuildDeck(NewRand(1)) {
		if rest, ok := byKey[c.Key()]; ok {
			s.Deck = append(s.Deck, rest)
		}
	}
	slices.Reverse(top)
	s.Deck = append(s.Deck, top...)
	require.NoError(t, s.CheckPartition())
	return s.settle()
}

func TestNewSession(t *testing.T) {
	s, err := NewSession(NewRand(21), DefaultHouseRules())
	require.NoError(t, err)

	assert.Equal(t, StateActive, s.State())
	assert.False(t, s.IsOver())
	assert.Len(t, s.Hand, 5)
	assert.Equal(t, DeckSize-6, s.DeckSize())
	assert.Equal(t, 3, s.ReshufflesRemaining)
	assert.Zero(t, s.DiscardedCount)
	assert.Equal(t, []models.Card{s.Base}, s.History)
	assert.GreaterOrEqual(t, len(s.PlayableIndices()), 2)
	assert.NoError(t, s.CheckPartition())
}

func TestPlayCardTransition(t *testing.T) {
	hand := []models.Card{
		card(models.Hearts, 2), card(models.Hearts, 3), card(models.Spades, 4),
		card(models.Diamonds, 6), card(models.Clubs, 7),
	}
	s := fixedSession(t, 3, card(models.Spades, 9), hand, card(models.Clubs, 12))
	before := s.clone()
	x := s.Hand[2]
	require.True(t, CanPlay(x, s.Base))

	next := s.PlayCard(2)

	assert.Equal(t, x, next.Base)
	assert.NotContains(t, next.Hand, x)
	assert.Len(t, next.Hand, 5)
	assert.Equal(t, models.Clubs, next.Hand[4].Suit)
	assert.Equal(t, 12, next.Hand[4].Rank)
	assert.Equal(t, s.DeckSize()-1, next.DeckSize())
	assert.Equal(t, s.DiscardedCount+1, next.DiscardedCount)
	assert.Equal(t, x, next.History[len(next.History)-1])
	assert.Equal(t, s.Seq+1, next.Seq)
	assert.NoError(t, next.CheckPartition())

	assert.Equal(t, before, s, "the original session must not change")
}

func TestPlayCardNoOp(t *testing.T) {
	hand := []models.Card{
		card(models.Hearts, 2), card(models.Hearts, 3), card(models.Spades, 4),
		card(models.Diamonds, 6), card(models.Clubs, 9),
	}
	s := fixedSession(t, 3, card(models.Spades, 9), hand)
	before := s.clone()

	for _, idx := range []int{0, 1, 3, -1, 5, 100} {
		assert.Equal(t, before, s.PlayCard(idx), "index %d", idx)
	}
	assert.Equal(t, before, s)

	over := s.EndGame()
	assert.Equal(t, over, over.PlayCard(2), "no play after game over")
}

func TestTerminalDetection(t *testing.T) {
	hand := []models.Card{
		card(models.Spades, 5), card(models.Hearts, 2), card(models.Hearts, 3),
		card(models.Diamonds, 4), card(models.Diamonds, 6),
	}
	s := fixedSession(t, 0, card(models.Spades, 9), hand, card(models.Clubs, 7))
	require.False(t, s.IsOver())

	next := s.PlayCard(0)

	assert.True(t, next.IsOver())
	assert.Equal(t, StateGameOver, next.State())
	assert.Equal(t, EndReasonStuck, next.EndReason)
	assert.True(t, next.Stuck())
	assert.NotEmpty(t, next.Deck, "stuck with cards still to draw")
	assert.Empty(t, next.PlayableIndices())
}

func TestStuckWithReshufflesIsNotOver(t *testing.T) {
	hand := []models.Card{
		card(models.Spades, 5), card(models.Hearts, 2), card(models.Hearts, 3),
		card(models.Diamonds, 4), card(models.Diamonds, 6),
	}
	s := fixedSession(t, 1, card(models.Spades, 9), hand, card(models.Clubs, 7))

	next := s.PlayCard(0)
	assert.True(t, next.Stuck())
	assert.False(t, next.IsOver())
	assert.True(t, next.CanReshuffle())
}

func TestReshuffleHand(t *testing.T) {
	s, err := NewSession(NewRand(8), DefaultHouseRules())
	require.NoError(t, err)
	rng := NewRand(9)

	for i := 0; i < 3; i++ {
		require.True(t, s.CanReshuffle())
		next := s.ReshuffleHand(rng)
		assert.Equal(t, len(s.Hand)+len(s.Deck), len(next.Hand)+len(next.Deck))
		assert.Equal(t, s.ReshufflesRemaining-1, next.ReshufflesRemaining)
		assert.Equal(t, s.Base, next.Base)
		assert.Equal(t, s.DiscardedCount, next.DiscardedCount)
		assert.Equal(t, s.History, next.History)
		assert.Len(t, next.Hand, 5)
		assert.NoError(t, next.CheckPartition())
		if next.IsOver() {
			return
		}
		s = next
	}

	assert.Zero(t, s.ReshufflesRemaining)
	assert.False(t, s.CanReshuffle())
	assert.Equal(t, s, s.ReshuffleHand(rng), "no reshuffles left")
}

func TestReshuffleNeedsDeck(t *testing.T) {
	s := Session{
		Rules:               DefaultHouseRules(),
		Hand:                []models.Card{card(models.Spades, 2)},
		Base:                card(models.Spades, 3),
		History:             []models.Card{card(models.Spades, 3)},
		ReshufflesRemaining: 3,
	}
	assert.False(t, s.CanReshuffle())
	assert.Equal(t, s, s.ReshuffleHand(NewRand(1)))
}

func TestEndGame(t *testing.T) {
	s, err := NewSession(NewRand(4), DefaultHouseRules())
	require.NoError(t, err)

	over := s.EndGame()
	assert.True(t, over.IsOver())
	assert.Equal(t, EndReasonConceded, over.EndReason)
	assert.Equal(t, s.Seq+1, over.Seq)
	assert.False(t, s.IsOver())

	assert.Equal(t, over, over.EndGame())
	assert.Equal(t, over, over.ReshuffleHand(NewRand(1)))
	assert.False(t, over.CanReshuffle())
}

func TestClearedSession(t *testing.T) {
	s := Session{
		Rules:   DefaultHouseRules(),
		Hand:    []models.Card{card(models.Spades, 2)},
		Base:    card(models.Spades, 3),
		History: []models.Card{card(models.Spades, 3)},
	}
	next := s.PlayCard(0)
	assert.True(t, next.IsOver())
	assert.Equal(t, EndReasonCleared, next.EndReason)
	assert.Empty(t, next.Hand)
	assert.False(t, next.Stuck())
}

// TestRandomPlayKeepsPartition plays many games to the end and checks the cards stay partitioned.
func TestRandomPlayKeepsPartition(t *testing.T) {
	for seed := int64(1); seed <= 100; seed++ {
		rng := NewRand(seed)
		s, err := NewSession(rng, DefaultHouseRules())
		require.NoError(t, err)

		for steps := 0; !s.IsOver(); steps++ {
			require.Less(t, steps, 200, "seed %d did not terminate", seed)
			if idx := s.PlayableIndices(); len(idx) > 0 {
				s = s.PlayCard(idx[rng.Intn(len(idx))])
			} else {
				require.True(t, s.CanReshuffle(), "seed %d: stuck but not over", seed)
				s = s.ReshuffleHand(rng)
			}
			require.NoError(t, s.CheckPartition(), "seed %d step %d", seed, steps)
			assert.Equal(t, DeckSize, len(s.Deck)+len(s.Hand)+len(s.History))
			assert.Equal(t, s.DiscardedCount+1, s.PileSize())
			if len(s.Deck) > 0 {
				assert.Len(t, s.Hand, 5)
			}
		}
		assert.Contains(t, []EndReason{EndReasonStuck, EndReasonCleared}, s.EndReason)
	}
}

func TestSnapshot(t *testing.T) {
	s, err := NewSession(NewRand(12), DefaultHouseRules())
	require.NoError(t, err)

	snap := s.Snapshot(false)
	assert.Equal(t, s.ID, snap.ID)
	assert.Equal(t, StateActive, snap.State)
	assert.Equal(t, s.DeckSize(), snap.DeckSize)
	assert.Nil(t, snap.Deck)
	assert.Len(t, snap.Hand, 5)
	assert.Equal(t, s.Base.String(), snap.Base.Label)

	playable := 0
	for i, c := range snap.Hand {
		require.NotNil(t, c.Idx)
		assert.Equal(t, i, *c.Idx)
		if *c.Playable {
			playable++
		}
	}
	assert.Equal(t, len(s.PlayableIndices()), playable)

	full := s.Snapshot(true)
	assert.Len(t, full.Deck, s.DeckSize())
}

func TestTracker(t *testing.T) {
	hand := []models.Card{
		card(models.Spades, 5), card(models.Hearts, 2), card(models.Hearts, 3),
		card(models.Diamonds, 4), card(models.Diamonds, 6),
	}
	s := fixedSession(t, 3, card(models.Spades, 9), hand)
	tr := s.Tracker()

	require.Len(t, tr.Rows, 4)
	assert.Equal(t, 9, tr.BaseRank)

	spades := tr.Rows[0]
	assert.Equal(t, models.Spades, spades.Suit)
	assert.True(t, spades.Target)
	assert.Equal(t, LocationDiscarded, spades.Ranks[8])
	assert.Equal(t, LocationHand, spades.Ranks[4])
	assert.Equal(t, LocationDeck, spades.Ranks[0])
	for _, m := range spades.Matches {
		assert.True(t, m)
	}

	hearts := tr.Rows[1]
	assert.False(t, hearts.Target)
	assert.True(t, hearts.Matches[8])
	assert.False(t, hearts.Matches[0])
}
