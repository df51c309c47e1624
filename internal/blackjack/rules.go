package blackjack

import "fmt"

// Rules are the table settings a round is played under. Payouts are fixed
// and not part of the rules.
type Rules struct {
	MinBet int
	MaxBet int
	Decks  int
	Hands  int
}

// DefaultRules returns a six-deck table with three hand slots
func DefaultRules() Rules {
	return Rules{
		MinBet: 10,
		MaxBet: 5000,
		Decks:  6,
		Hands:  3,
	}
}

// MaxTableLimit caps Rules.MaxBet so stakes and payouts stay well inside int
const MaxTableLimit = 1_000_000_000

// Validate checks the rules are playable
func (r Rules) Validate() error {
	if r.MinBet < 1 {
		return fmt.Errorf("minimum bet must be positive, got %d", r.MinBet)
	}
	if r.MaxBet < r.MinBet {
		return fmt.Errorf("maximum bet %d is below minimum %d", r.MaxBet, r.MinBet)
	}
	if r.MaxBet > MaxTableLimit {
		return fmt.Errorf("maximum bet %d is above %d", r.MaxBet, MaxTableLimit)
	}
	if r.Decks < 1 {
		return fmt.Errorf("deck count must be positive, got %d", r.Decks)
	}
	if r.Hands < 1 || r.Hands > MaxHands {
		return fmt.Errorf("hand slots must be between 1 and %d, got %d", MaxHands, r.Hands)
	}
	return nil
}
