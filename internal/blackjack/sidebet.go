package blackjack

import (
	"slices"

	"github.com/lox/blackjack/internal/cards"
)

// TwentyOnePlusThree classifies the player's two cards plus the dealer up-card
type TwentyOnePlusThree uint8

const (
	NoTwentyOnePlusThree TwentyOnePlusThree = iota
	Flush
	Straight
	ThreeOfAKind
	StraightFlush
	SuitedTrips
)

var twentyOnePlusThreeNames = [...]string{"", "Flush", "Straight", "Three of a Kind", "Straight Flush", "Suited Trips"}
var twentyOnePlusThreeMultipliers = [...]int{0, 5, 10, 30, 40, 100}

func (k TwentyOnePlusThree) String() string {
	if int(k) >= len(twentyOnePlusThreeNames) {
		return "?"
	}
	return twentyOnePlusThreeNames[k]
}

// Multiplier is the fixed payout multiplier applied to the stake
func (k TwentyOnePlusThree) Multiplier() int {
	if int(k) >= len(twentyOnePlusThreeMultipliers) {
		return 0
	}
	return twentyOnePlusThreeMultipliers[k]
}

func (k TwentyOnePlusThree) valid() bool {
	return k <= SuitedTrips
}

// PerfectPairs classifies the player's own two cards
type PerfectPairs uint8

const (
	NoPair PerfectPairs = iota
	MixedPair
	ColoredPair
	PerfectPair
)

var perfectPairsNames = [...]string{"", "Mixed Pair", "Colored Pair", "Perfect Pair"}
var perfectPairsMultipliers = [...]int{0, 6, 12, 25}

func (k PerfectPairs) String() string {
	if int(k) >= len(perfectPairsNames) {
		return "?"
	}
	return perfectPairsNames[k]
}

// Multiplier is the fixed payout multiplier applied to the stake
func (k PerfectPairs) Multiplier() int {
	if int(k) >= len(perfectPairsMultipliers) {
		return 0
	}
	return perfectPairsMultipliers[k]
}

func (k PerfectPairs) valid() bool {
	return k <= PerfectPair
}

// SideBetResult is the evaluation of both side bets for one hand slot.
// Payouts are already multiplied by the stakes.
type SideBetResult struct {
	TwentyOnePlusThree TwentyOnePlusThree `json:"twenty_one_plus_three"`
	TwentyOnePayout    int                `json:"twenty_one_plus_three_payout"`
	PerfectPairs       PerfectPairs       `json:"perfect_pairs"`
	PerfectPairsPayout int                `json:"perfect_pairs_payout"`
}

// Total returns the combined side-bet credit
func (r SideBetResult) Total() int {
	return r.TwentyOnePayout + r.PerfectPairsPayout
}

// ClassifyTwentyOnePlusThree evaluates three cards in strict priority order
func ClassifyTwentyOnePlusThree(a, b, up cards.Card) TwentyOnePlusThree {
	trips := a.Rank == b.Rank && b.Rank == up.Rank
	flush := a.Suit == b.Suit && b.Suit == up.Suit
	straight := isStraight(a.Rank, b.Rank, up.Rank)

	switch {
	case trips && flush:
		return SuitedTrips
	case straight && flush:
		return StraightFlush
	case trips:
		return ThreeOfAKind
	case straight:
		return Straight
	case flush:
		return Flush
	}
	return NoTwentyOnePlusThree
}

// isStraight maps ranks to 1..13 with an ace also contributing 14, then
// looks for three consecutive values among the deduplicated candidates.
func isStraight(ranks ...cards.Rank) bool {
	candidates := make([]int, 0, 2*len(ranks))
	for _, r := range ranks {
		candidates = append(candidates, int(r)+1)
		if r == cards.Ace {
			candidates = append(candidates, 14)
		}
	}
	slices.Sort(candidates)
	candidates = slices.Compact(candidates)
	for i := 0; i+2 < len(candidates); i++ {
		if candidates[i+1] == candidates[i]+1 && candidates[i+2] == candidates[i]+2 {
			return true
		}
	}
	return false
}

// ClassifyPerfectPairs evaluates the player's first two cards
func ClassifyPerfectPairs(a, b cards.Card) PerfectPairs {
	switch {
	case a.Rank != b.Rank:
		return NoPair
	case a.Suit == b.Suit:
		return PerfectPair
	case a.Suit.IsRed() == b.Suit.IsRed():
		return ColoredPair
	default:
		return MixedPair
	}
}

// EvaluateSideBets classifies both side bets and applies the stakes.
// A hand without exactly two cards yields no result.
func EvaluateSideBets(hand []cards.Card, up cards.Card, stake21, stakePairs int) SideBetResult {
	if len(hand) != 2 {
		return SideBetResult{}
	}
	t := ClassifyTwentyOnePlusThree(hand[0], hand[1], up)
	p := ClassifyPerfectPairs(hand[0], hand[1])
	return SideBetResult{
		TwentyOnePlusThree: t,
		TwentyOnePayout:    t.Multiplier() * stake21,
		PerfectPairs:       p,
		PerfectPairsPayout: p.Multiplier() * stakePairs,
	}
}
