package blackjack

import (
	"slices"

	"github.com/lox/blackjack/internal/cards"
)

// MaxHands is the hard cap on player hand slots, splits included
const MaxHands = 4

// Bet is the stake placed on one hand slot
type Bet struct {
	Main               int `json:"main_bet"`
	TwentyOnePlusThree int `json:"side_21_3"`
	PerfectPairs       int `json:"side_pp"`
}

// Total returns the sum of all three stakes
func (b Bet) Total() int {
	return b.Main + b.TwentyOnePlusThree + b.PerfectPairs
}

// HandState is one player hand slot. Every field is always present; an
// unused slot is simply the zero template from newHandState.
type HandState struct {
	Cards        []cards.Card  `json:"hand"`
	MainBet      int           `json:"main_bet"`
	SideBet21    int           `json:"side_bet_21_3"`
	SideBetPairs int           `json:"side_bet_perfect_pair"`
	SideBets     SideBetResult `json:"side_bet_results"`
	Busted       bool          `json:"busted"`
	Stood        bool          `json:"stood"`
	Blackjack    bool          `json:"blackjack"`
	Active       bool          `json:"is_active"`
	CanDouble    bool          `json:"can_double"`
	CanSplit     bool          `json:"can_split"`
	CanResplit   bool          `json:"can_resplit"`
	Settled      bool          `json:"settled"`
	Result       string        `json:"result_message"`
}

func newHandState() HandState {
	return HandState{Cards: []cards.Card{}, CanResplit: true}
}

func emptyHands(n int) []HandState {
	hands := make([]HandState, n)
	for i := range hands {
		hands[i] = newHandState()
	}
	return hands
}

// InPlay reports whether the slot carries a main bet
func (h *HandState) InPlay() bool {
	return h.MainBet > 0
}

// Terminal reports whether the hand can take no further action
func (h *HandState) Terminal() bool {
	return h.Busted || h.Stood || h.Blackjack
}

// Value returns the hand total
func (h *HandState) Value() int {
	return HandValue(h.Cards)
}

func (h *HandState) clone() HandState {
	c := *h
	c.Cards = slices.Clone(h.Cards)
	return c
}

// Player is the seated player. Chips is the only value that outlives a round.
type Player struct {
	Name  string `json:"name"`
	Chips int    `json:"chips"`
	IsBot bool   `json:"is_bot"`
}
