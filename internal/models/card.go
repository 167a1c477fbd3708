// internal/models/card.go
package models

import (
	"strconv"

	"github.com/google/uuid"
)

// Suit is one of the four French suits, stored as a single letter.
type Suit string

const (
	Spades   Suit = "S"
	Hearts   Suit = "H"
	Diamonds Suit = "D"
	Clubs    Suit = "C"
)

// Suits lists every suit in deck-construction order.
var Suits = [...]Suit{Spades, Hearts, Diamonds, Clubs}

const (
	MinRank = 1
	MaxRank = 13
)

// Symbol returns the suit glyph used for display.
func (s Suit) Symbol() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	}
	return "?"
}

// IsRed reports whether the suit is printed in red.
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Valid reports whether s is one of the four known suits.
func (s Suit) Valid() bool {
	switch s {
	case Spades, Hearts, Diamonds, Clubs:
		return true
	}
	return false
}

// Card is a single playing card. ID identifies the physical card; Suit and Rank are its face value.
type Card struct {
	ID   uuid.UUID `json:"id"`
	Suit Suit      `json:"suit"`
	Rank int       `json:"rank"`
}

// CardKey is the face value of a card, comparable and usable as a map key.
type CardKey struct {
	Suit Suit `json:"suit"`
	Rank int  `json:"rank"`
}

// Key returns the face value of c.
func (c Card) Key() CardKey {
	return CardKey{Suit: c.Suit, Rank: c.Rank}
}

func (c Card) String() string {
	return RankName(c.Rank) + c.Suit.Symbol()
}

// RankName returns the display name of a rank: A, 2..10, J, Q, K.
func RankName(rank int) string {
	switch rank {
	case 1:
		return "A"
	case 11:
		return "J"
	case 12:
		return "Q"
	case 13:
		return "K"
	}
	return strconv.Itoa(rank)
}
