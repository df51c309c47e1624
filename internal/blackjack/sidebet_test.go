package blackjack

import (
	"testing"

	"github.com/lox/blackjack/internal/cards"
	"github.com/stretchr/testify/assert"
)

func classify21(strs ...string) TwentyOnePlusThree {
	c := cards.MustParseCards(strs...)
	return ClassifyTwentyOnePlusThree(c[0], c[1], c[2])
}

func TestTwentyOnePlusThree(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		cards []string
		want  TwentyOnePlusThree
	}{
		{"trips mixed suits", []string{"10s", "10h", "10d"}, ThreeOfAKind},
		{"suited trips", []string{"9h", "9h", "9h"}, SuitedTrips},
		{"straight flush", []string{"5s", "6s", "7s"}, StraightFlush},
		{"royal straight flush", []string{"Jd", "Qd", "Kd"}, StraightFlush},
		{"flush", []string{"2c", "6c", "Jc"}, Flush},
		{"straight unordered", []string{"9d", "Js", "10h"}, Straight},
		{"ace low straight", []string{"As", "2h", "3d"}, Straight},
		{"ace high straight", []string{"Qs", "Kh", "Ad"}, Straight},
		{"ace high straight flush", []string{"Qs", "Ks", "As"}, StraightFlush},
		{"no wraparound through ace", []string{"Ks", "Ah", "2d"}, NoTwentyOnePlusThree},
		{"pair with gap", []string{"5s", "5h", "7d"}, NoTwentyOnePlusThree},
		{"pair with neighbour", []string{"5s", "5h", "6d"}, NoTwentyOnePlusThree},
		{"pair of aces and a two", []string{"As", "Ah", "2d"}, NoTwentyOnePlusThree},
		{"pair of aces and a king", []string{"As", "Ah", "Kd"}, NoTwentyOnePlusThree},
		{"suited pair with gap is a flush", []string{"5s", "5s", "7s"}, Flush},
		{"nothing", []string{"2s", "9h", "Kd"}, NoTwentyOnePlusThree},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify21(tt.cards...))
		})
	}
}

func TestTwentyOnePlusThreeMultipliers(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, NoTwentyOnePlusThree.Multiplier())
	assert.Equal(t, 5, Flush.Multiplier())
	assert.Equal(t, 10, Straight.Multiplier())
	assert.Equal(t, 30, ThreeOfAKind.Multiplier())
	assert.Equal(t, 40, StraightFlush.Multiplier())
	assert.Equal(t, 100, SuitedTrips.Multiplier())
	assert.Equal(t, "Three of a Kind", ThreeOfAKind.String())
}

func TestPerfectPairs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a, b string
		want PerfectPairs
		mult int
	}{
		{"7s", "7s", PerfectPair, 25},
		{"7s", "7c", ColoredPair, 12},
		{"Qh", "Qd", ColoredPair, 12},
		{"7h", "7s", MixedPair, 6},
		{"7h", "8h", NoPair, 0},
	}
	for _, tt := range tests {
		c := cards.MustParseCards(tt.a, tt.b)
		got := ClassifyPerfectPairs(c[0], c[1])
		assert.Equal(t, tt.want, got, "%s %s", tt.a, tt.b)
		assert.Equal(t, tt.mult, got.Multiplier(), "%s %s", tt.a, tt.b)
	}
}

func TestEvaluateSideBets(t *testing.T) {
	t.Parallel()
	hand := cards.MustParseCards("10s", "10h")
	up := cards.MustParseCards("10d")[0]

	r := EvaluateSideBets(hand, up, 5, 2)
	assert.Equal(t, ThreeOfAKind, r.TwentyOnePlusThree)
	assert.Equal(t, 150, r.TwentyOnePayout)
	assert.Equal(t, MixedPair, r.PerfectPairs)
	assert.Equal(t, 12, r.PerfectPairsPayout)
	assert.Equal(t, 162, r.Total())

	r = EvaluateSideBets(hand, up, 0, 0)
	assert.Equal(t, ThreeOfAKind, r.TwentyOnePlusThree)
	assert.Zero(t, r.Total())

	r = EvaluateSideBets(cards.MustParseCards("10s", "10h", "2c"), up, 5, 5)
	assert.Equal(t, SideBetResult{}, r)
}
