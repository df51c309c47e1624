package blackjack

import "github.com/lox/blackjack/internal/cards"

// CardValue returns the blackjack value of a card with aces counted as 11
func CardValue(c cards.Card) int {
	switch {
	case c.Rank == cards.Ace:
		return 11
	case c.Rank >= cards.Ten:
		return 10
	default:
		return int(c.Rank) + 1
	}
}

// total returns the best total and how many aces are still counted as 11
func total(hand []cards.Card) (int, int) {
	sum, soft := 0, 0
	for _, c := range hand {
		sum += CardValue(c)
		if c.IsAce() {
			soft++
		}
	}
	for sum > 21 && soft > 0 {
		sum -= 10
		soft--
	}
	return sum, soft
}

// HandValue returns the best total not exceeding 21, or the minimum total
// when the hand is bust.
func HandValue(hand []cards.Card) int {
	v, _ := total(hand)
	return v
}

// IsSoft reports whether an ace is still being counted as 11
func IsSoft(hand []cards.Card) bool {
	_, soft := total(hand)
	return soft > 0
}

// IsBlackjack reports a two-card 21
func IsBlackjack(hand []cards.Card) bool {
	return len(hand) == 2 && HandValue(hand) == 21
}
