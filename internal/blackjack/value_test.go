package blackjack

import (
	"testing"

	"github.com/lox/blackjack/internal/cards"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/stretchr/testify/assert"
)

func TestCardValue(t *testing.T) {
	t.Parallel()
	tests := map[string]int{
		"As": 11, "2h": 2, "9d": 9, "10c": 10, "Js": 10, "Qh": 10, "Kd": 10,
	}
	for in, want := range tests {
		c := cards.MustParseCards(in)[0]
		assert.Equal(t, want, CardValue(c), in)
	}
}

func TestHandValue(t *testing.T) {
	t.Parallel()
	tests := []struct {
		hand []string
		want int
		soft bool
	}{
		{[]string{"As", "Ah", "9d"}, 21, true},
		{[]string{"As", "Kh"}, 21, true},
		{[]string{"As", "6h"}, 17, true},
		{[]string{"As", "6h", "10d"}, 17, false},
		{[]string{"As", "Ah", "Ad", "Ac"}, 14, true},
		{[]string{"Ks", "Qh", "5d"}, 25, false},
		{[]string{"9s", "7h"}, 16, false},
		{[]string{}, 0, false},
	}
	for _, tt := range tests {
		hand := cards.MustParseCards(tt.hand...)
		assert.Equal(t, tt.want, HandValue(hand), "%v", tt.hand)
		assert.Equal(t, tt.soft, IsSoft(hand), "%v soft", tt.hand)
	}
}

func TestIsBlackjack(t *testing.T) {
	t.Parallel()
	assert.True(t, IsBlackjack(cards.MustParseCards("As", "Kh")))
	assert.True(t, IsBlackjack(cards.MustParseCards("10d", "Ac")))
	assert.False(t, IsBlackjack(cards.MustParseCards("As", "Kh", "2c")))
	assert.False(t, IsBlackjack(cards.MustParseCards("7s", "7h", "7d")))
	assert.False(t, IsBlackjack(cards.MustParseCards("As", "9h")))
}

// Whenever counting every ace as one keeps the hand at or under 21, the
// best total must not bust.
func TestHandValueNeverBustsWhenHardTotalFits(t *testing.T) {
	t.Parallel()
	rng := randutil.New(7)
	for range 5000 {
		n := 2 + rng.IntN(5)
		hand := make([]cards.Card, n)
		hard := 0
		for i := range hand {
			hand[i] = cards.NewCard(cards.Rank(rng.IntN(13)), cards.Suit(rng.IntN(4)))
			if hand[i].IsAce() {
				hard++
			} else {
				hard += CardValue(hand[i])
			}
		}
		if hard <= 21 {
			assert.LessOrEqual(t, HandValue(hand), 21, "%s", cards.FormatCards(hand))
		} else {
			assert.Equal(t, hard, HandValue(hand), "%s", cards.FormatCards(hand))
		}
	}
}
