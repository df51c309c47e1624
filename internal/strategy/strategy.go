// Package strategy implements basic-strategy play for a dealer that stands
// on all 17s. It is used by the simulator bot and for in-game hints.
package strategy

import (
	"fmt"

	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/cards"
)

// Action is a player decision on the active hand
type Action string

const (
	Hit    Action = "hit"
	Stand  Action = "stand"
	Double Action = "double"
	Split  Action = "split"
)

// ParseAction parses a wire or command name
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case Hit, Stand, Double, Split:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Situation is everything a basic-strategy decision depends on
type Situation struct {
	Hand      []cards.Card
	DealerUp  cards.Card
	CanDouble bool
	CanSplit  bool
}

// Decision is a chosen action and a short human-readable reason
type Decision struct {
	Action    Action
	Reasoning string
}

// FromSnapshot builds the situation for the active hand. It reports false
// outside player turns.
func FromSnapshot(s blackjack.Snapshot) (Situation, bool) {
	if s.Phase != blackjack.PhasePlayerTurns || s.Active < 0 || s.Active >= len(s.Hands) || len(s.Dealer) == 0 {
		return Situation{}, false
	}
	h := s.Hands[s.Active]
	return Situation{
		Hand:      h.Cards,
		DealerUp:  s.Dealer[0],
		CanDouble: h.CanDouble,
		CanSplit:  h.CanSplit,
	}, true
}

// Decide returns the basic-strategy play for a situation
func Decide(sit Situation) Decision {
	up := blackjack.CardValue(sit.DealerUp)
	total := blackjack.HandValue(sit.Hand)

	if sit.CanSplit && len(sit.Hand) == 2 {
		if splitPair(sit.Hand[0].Rank, up) {
			return Decision{Action: Split, Reasoning: fmt.Sprintf("split %ss against %s", sit.Hand[0].Rank, sit.DealerUp.Rank)}
		}
	}

	if sit.CanDouble && doubleHard(total, up) {
		return Decision{Action: Double, Reasoning: fmt.Sprintf("double hard %d against %d", total, up)}
	}

	if blackjack.IsSoft(sit.Hand) {
		if total >= 19 || (total == 18 && up <= 8) {
			return Decision{Action: Stand, Reasoning: fmt.Sprintf("stand on soft %d against %d", total, up)}
		}
		return Decision{Action: Hit, Reasoning: fmt.Sprintf("hit soft %d against %d", total, up)}
	}

	switch {
	case total >= 17:
		return Decision{Action: Stand, Reasoning: fmt.Sprintf("stand on hard %d", total)}
	case total >= 13 && up <= 6:
		return Decision{Action: Stand, Reasoning: fmt.Sprintf("stand on %d, dealer shows a bust card", total)}
	case total == 12 && up >= 4 && up <= 6:
		return Decision{Action: Stand, Reasoning: fmt.Sprintf("stand on 12 against %d", up)}
	}
	return Decision{Action: Hit, Reasoning: fmt.Sprintf("hit hard %d against %d", total, up)}
}

// splitPair is the pair-splitting chart; up is the dealer's card value
func splitPair(rank cards.Rank, up int) bool {
	switch rank {
	case cards.Ace, cards.Eight:
		return true
	case cards.Nine:
		return up <= 9 && up != 7
	case cards.Seven, cards.Two, cards.Three:
		return up <= 7
	case cards.Six:
		return up <= 6
	case cards.Four:
		return up == 5 || up == 6
	}
	return false
}

func doubleHard(total, up int) bool {
	switch total {
	case 11:
		return up <= 10
	case 10:
		return up <= 9
	case 9:
		return up >= 3 && up <= 6
	}
	return false
}
