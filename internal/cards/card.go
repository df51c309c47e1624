// Package cards provides playing cards and the multi-deck shoe they are dealt from.
package cards

import (
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit uint8

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

// Suits lists every suit in shoe-building order
var Suits = [...]Suit{Hearts, Diamonds, Clubs, Spades}

var suitSymbols = [...]string{"♥", "♦", "♣", "♠"}
var suitNames = [...]string{"hearts", "diamonds", "clubs", "spades"}

// Valid reports whether s is one of the four suits
func (s Suit) Valid() bool {
	return s <= Spades
}

// String returns the suit symbol (e.g. "♠")
func (s Suit) String() string {
	if !s.Valid() {
		return "?"
	}
	return suitSymbols[s]
}

// Name returns the lower-case suit name (e.g. "spades")
func (s Suit) Name() string {
	if !s.Valid() {
		return "unknown"
	}
	return suitNames[s]
}

// IsRed returns true for diamonds and hearts
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// MarshalText encodes the suit as its symbol
func (s Suit) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid suit: %d", uint8(s))
	}
	return []byte(suitSymbols[s]), nil
}

// UnmarshalText accepts a suit symbol or name and rejects anything else
func (s *Suit) UnmarshalText(text []byte) error {
	parsed, err := ParseSuit(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSuit parses a suit symbol ("♠"), name ("spades") or letter ("s")
func ParseSuit(v string) (Suit, error) {
	switch strings.ToLower(v) {
	case "♥", "hearts", "h":
		return Hearts, nil
	case "♦", "diamonds", "d":
		return Diamonds, nil
	case "♣", "clubs", "c":
		return Clubs, nil
	case "♠", "spades", "s":
		return Spades, nil
	}
	return 0, fmt.Errorf("invalid suit: %q", v)
}

// Rank is the card rank ordinal, 0 = Ace through 12 = King
type Rank uint8

const (
	Ace Rank = iota
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

var rankLabels = [...]string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// Valid reports whether r is within Ace..King
func (r Rank) Valid() bool {
	return r <= King
}

// String returns the rank label (e.g. "A", "10", "K")
func (r Rank) String() string {
	if !r.Valid() {
		return "?"
	}
	return rankLabels[r]
}

// ParseRank parses a rank label; "T" is accepted for ten
func ParseRank(v string) (Rank, error) {
	v = strings.ToUpper(v)
	if v == "T" {
		return Ten, nil
	}
	for i, label := range rankLabels {
		if label == v {
			return Rank(i), nil
		}
	}
	return 0, fmt.Errorf("invalid rank: %q", v)
}

// Card is an immutable playing card
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

// NewCard creates a card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// Valid reports whether both rank and suit are in range
func (c Card) Valid() bool {
	return c.Rank.Valid() && c.Suit.Valid()
}

// IsAce returns true if the card is an Ace
func (c Card) IsAce() bool {
	return c.Rank == Ace
}

// String returns e.g. "A♠" or "10♥"
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// ImageName returns the front-end image file for the card, e.g. "K_of_spades.png"
func (c Card) ImageName() string {
	return fmt.Sprintf("%s_of_%s.png", c.Rank, c.Suit.Name())
}

// ParseCard parses strings like "As", "10h", "Q♦"
func ParseCard(s string) (Card, error) {
	runes := []rune(s)
	if len(runes) < 2 {
		return Card{}, fmt.Errorf("invalid card string: %s", s)
	}
	rank, err := ParseRank(string(runes[:len(runes)-1]))
	if err != nil {
		return Card{}, err
	}
	suit, err := ParseSuit(string(runes[len(runes)-1:]))
	if err != nil {
		return Card{}, err
	}
	return NewCard(rank, suit), nil
}

// MustParseCards parses a list of card strings, panicking on error.
// Intended for tests and fixed fixtures.
func MustParseCards(strs ...string) []Card {
	out := make([]Card, 0, len(strs))
	for _, s := range strs {
		c, err := ParseCard(s)
		if err != nil {
			panic(err)
		}
		out = append(out, c)
	}
	return out
}

// FormatCards joins cards with spaces
func FormatCards(cs []Card) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
