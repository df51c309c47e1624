// Package blackjack implements a multi-hand blackjack round: hand valuation,
// the 21+3 and Perfect Pairs side bets, the round state machine and the
// snapshot codec that lets a stateless caller persist a round between
// requests.
package blackjack

import (
	"fmt"
	rand "math/rand/v2"
	"slices"
	"strings"

	"github.com/lox/blackjack/internal/cards"
)

// Phase is the round's position in the betting → round_over cycle
type Phase string

const (
	PhaseBetting     Phase = "betting"
	PhaseDealing     Phase = "dealing"
	PhasePlayerTurns Phase = "player_turns"
	PhaseDealerTurn  Phase = "dealer_turn"
	PhaseSettlement  Phase = "settlement"
	PhaseRoundOver   Phase = "round_over"
)

func (p Phase) valid() bool {
	switch p {
	case PhaseBetting, PhaseDealing, PhasePlayerTurns, PhaseDealerTurn, PhaseSettlement, PhaseRoundOver:
		return true
	}
	return false
}

// NoActiveHand is the active index outside player turns
const NoActiveHand = -1

// reshuffleFraction is the remaining-shoe fraction below which a reset
// rebuilds the shoe
const reshuffleFraction = 0.2

const dealerStandsOn = 17

// Outcome is the chip ledger of the current round
type Outcome struct {
	Staked   int `json:"staked"`
	Credited int `json:"credited"`
}

// Net is the player's result for the round so far
func (o Outcome) Net() int {
	return o.Credited - o.Staked
}

// Round is the mutable state of one table round. It is not safe for
// concurrent use; callers serialise actions per round.
type Round struct {
	rules    Rules
	shoe     *cards.Shoe
	player   Player
	dealer   []cards.Card
	hands    []HandState
	active   int
	phase    Phase
	message  string
	numHands int
	lastBets []Bet
	ledger   Outcome
}

// NewRound seats a player at a fresh round in the betting phase
func NewRound(rules Rules, player Player, rng *rand.Rand) (*Round, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if player.Chips < 0 {
		return nil, fmt.Errorf("player chips must not be negative, got %d", player.Chips)
	}
	return &Round{
		rules:    rules,
		shoe:     cards.NewShoe(rules.Decks, rng),
		player:   player,
		dealer:   []cards.Card{},
		hands:    emptyHands(rules.Hands),
		active:   NoActiveHand,
		phase:    PhaseBetting,
		message:  "Place your bets.",
		numHands: rules.Hands,
	}, nil
}

// Phase returns the current phase
func (r *Round) Phase() Phase { return r.phase }

// Player returns a copy of the seated player
func (r *Round) Player() Player { return r.player }

// Active returns the active hand index, or NoActiveHand
func (r *Round) Active() int { return r.active }

// Message returns the last round message
func (r *Round) Message() string { return r.message }

// Outcome returns the chip ledger for the round
func (r *Round) Outcome() Outcome { return r.ledger }

// Dealer returns a copy of the dealer's cards
func (r *Round) Dealer() []cards.Card { return slices.Clone(r.dealer) }

// Hands returns a copy of every hand slot
func (r *Round) Hands() []HandState {
	out := make([]HandState, len(r.hands))
	for i := range r.hands {
		out[i] = r.hands[i].clone()
	}
	return out
}

// ShoeRemaining returns the number of undealt cards
func (r *Round) ShoeRemaining() int { return r.shoe.Remaining() }

func (r *Round) debit(n int) {
	r.player.Chips -= n
	r.ledger.Staked += n
}

func (r *Round) credit(n int) {
	r.player.Chips += n
	r.ledger.Credited += n
}

// PlaceBets reserves one Bet per hand slot. The combined stake across all
// slots is checked against the table limits and the chip balance before any
// chips move.
func (r *Round) PlaceBets(bets []Bet) error {
	if r.phase != PhaseBetting {
		return fmt.Errorf("cannot place bets during %s: %w", r.phase, ErrWrongPhase)
	}
	if len(bets) != len(r.hands) {
		return fmt.Errorf("expected %d bets, got %d: %w", len(r.hands), len(bets), ErrInvalidBetShape)
	}

	total, anyMain := 0, false
	for i, b := range bets {
		if b.Main < 0 || b.TwentyOnePlusThree < 0 || b.PerfectPairs < 0 {
			return fmt.Errorf("hand %d has a negative stake: %w", i+1, ErrInvalidBetShape)
		}
		if b.Main == 0 && (b.TwentyOnePlusThree > 0 || b.PerfectPairs > 0) {
			return fmt.Errorf("hand %d has side bets without a main bet: %w", i+1, ErrInvalidBetShape)
		}
		anyMain = anyMain || b.Main > 0
		for _, stake := range []int{b.Main, b.TwentyOnePlusThree, b.PerfectPairs} {
			// total never exceeds MaxBet here, so the subtraction cannot wrap
			if stake > r.rules.MaxBet-total {
				return fmt.Errorf("total bet exceeds table maximum %d: %w", r.rules.MaxBet, ErrBetOutOfRange)
			}
			total += stake
		}
	}
	if !anyMain {
		return fmt.Errorf("at least one hand needs a main bet: %w", ErrInvalidBetShape)
	}
	if total < r.rules.MinBet || total > r.rules.MaxBet {
		return fmt.Errorf("total bet %d outside table limits %d-%d: %w", total, r.rules.MinBet, r.rules.MaxBet, ErrBetOutOfRange)
	}
	if total > r.player.Chips {
		return fmt.Errorf("total bet %d exceeds balance %d: %w", total, r.player.Chips, ErrBetOutOfRange)
	}

	r.debit(total)
	for i, b := range bets {
		h := &r.hands[i]
		h.MainBet = b.Main
		h.SideBet21 = b.TwentyOnePlusThree
		h.SideBetPairs = b.PerfectPairs
	}
	r.lastBets = slices.Clone(bets)
	r.phase = PhaseDealing
	r.message = fmt.Sprintf("Bets placed: %d chips.", total)
	return nil
}

// Rebet places the previous round's bets again
func (r *Round) Rebet() error {
	if len(r.lastBets) == 0 {
		return fmt.Errorf("no previous bets to repeat: %w", ErrInvalidBetShape)
	}
	return r.PlaceBets(r.lastBets)
}

// DealInitialCards deals two cards to every slot and the dealer, settles the
// side bets and any blackjacks, and opens player turns.
func (r *Round) DealInitialCards() error {
	if r.phase != PhaseDealing {
		return fmt.Errorf("cannot deal during %s: %w", r.phase, ErrWrongPhase)
	}

	for range 2 {
		for i := range r.hands {
			r.hands[i].Cards = append(r.hands[i].Cards, r.shoe.Deal())
		}
		r.dealer = append(r.dealer, r.shoe.Deal())
	}

	up := r.dealer[0]
	dealerBlackjack := IsBlackjack(r.dealer)
	var notes []string

	for i := range r.hands {
		h := &r.hands[i]
		h.Blackjack = IsBlackjack(h.Cards)
		if !h.InPlay() {
			continue
		}

		h.SideBets = EvaluateSideBets(h.Cards, up, h.SideBet21, h.SideBetPairs)
		if won := h.SideBets.Total(); won > 0 {
			r.credit(won)
			notes = append(notes, fmt.Sprintf("Hand %d side bets pay %d.", i+1, won))
		}

		if !h.Blackjack {
			continue
		}
		h.Settled = true
		if dealerBlackjack {
			r.credit(h.MainBet)
			h.Result = "Push: both have blackjack."
		} else {
			win := h.MainBet * 5 / 2
			r.credit(win)
			h.Result = fmt.Sprintf("Blackjack! Paid %d.", win)
		}
	}

	if dealerBlackjack {
		for i := range r.hands {
			h := &r.hands[i]
			if !h.InPlay() || h.Settled {
				continue
			}
			h.Stood = true
			h.Settled = true
			h.Result = fmt.Sprintf("Dealer blackjack: lost %d.", h.MainBet)
		}
		r.active = NoActiveHand
		r.phase = PhaseRoundOver
		r.message = strings.Join(append(notes, "Dealer has blackjack."), " ")
		return nil
	}

	r.message = strings.Join(append(notes, "Cards dealt."), " ")
	r.findNextActiveHand()
	return nil
}

// findNextActiveHand activates the first in-play hand that can still act
// and computes what it may do. With none left the dealer plays.
func (r *Round) findNextActiveHand() {
	for i := range r.hands {
		r.hands[i].Active = false
	}

	for i := range r.hands {
		h := &r.hands[i]
		if !h.InPlay() || h.Terminal() {
			continue
		}
		twoCards := len(h.Cards) == 2
		value := h.Value()
		affordable := r.player.Chips >= h.MainBet

		h.Active = true
		h.CanDouble = twoCards && value <= 11 && affordable
		h.CanSplit = twoCards && h.Cards[0].Rank == h.Cards[1].Rank &&
			affordable && h.CanResplit && len(r.hands) < MaxHands
		r.active = i
		r.phase = PhasePlayerTurns
		return
	}

	r.active = NoActiveHand
	r.phase = PhaseDealerTurn
}

// actingHand validates that index names the active, non-terminal hand
func (r *Round) actingHand(action string, index int) (*HandState, error) {
	if r.phase != PhasePlayerTurns {
		return nil, fmt.Errorf("cannot %s during %s: %w", action, r.phase, ErrWrongPhase)
	}
	if index < 0 || index >= len(r.hands) {
		return nil, fmt.Errorf("hand %d does not exist: %w", index, ErrInvalidHandIndex)
	}
	h := &r.hands[index]
	if index != r.active || !h.Active || h.Terminal() {
		return nil, fmt.Errorf("cannot %s hand %d, it is not the active hand: %w", action, index+1, ErrHandNotEligible)
	}
	return h, nil
}

// Hit deals one card to the active hand
func (r *Round) Hit(index int) error {
	h, err := r.actingHand("hit", index)
	if err != nil {
		return err
	}

	card := r.shoe.Deal()
	h.Cards = append(h.Cards, card)
	h.CanDouble = false
	h.CanSplit = false

	switch value := h.Value(); {
	case value > 21:
		h.Busted = true
		h.Result = fmt.Sprintf("Bust with %d.", value)
		r.message = fmt.Sprintf("Hand %d draws %s and busts.", index+1, card)
		r.findNextActiveHand()
	case value == 21:
		h.Stood = true
		r.message = fmt.Sprintf("Hand %d draws %s for 21.", index+1, card)
		r.findNextActiveHand()
	default:
		r.message = fmt.Sprintf("Hand %d draws %s, total %d.", index+1, card, value)
	}
	return nil
}

// Stand ends the active hand's turn
func (r *Round) Stand(index int) error {
	h, err := r.actingHand("stand", index)
	if err != nil {
		return err
	}
	h.Stood = true
	r.message = fmt.Sprintf("Hand %d stands on %d.", index+1, h.Value())
	r.findNextActiveHand()
	return nil
}

// DoubleDown doubles the main bet for exactly one more card
func (r *Round) DoubleDown(index int) error {
	h, err := r.actingHand("double", index)
	if err != nil {
		return err
	}
	if !h.CanDouble {
		return fmt.Errorf("hand %d cannot double: %w", index+1, ErrHandNotEligible)
	}
	if r.player.Chips < h.MainBet {
		return fmt.Errorf("doubling needs %d chips, have %d: %w", h.MainBet, r.player.Chips, ErrInsufficientChips)
	}

	r.debit(h.MainBet)
	h.MainBet *= 2
	card := r.shoe.Deal()
	h.Cards = append(h.Cards, card)
	h.CanDouble = false
	h.CanSplit = false

	value := h.Value()
	if value > 21 {
		h.Busted = true
		h.Result = fmt.Sprintf("Bust with %d.", value)
	} else {
		h.Stood = true
	}
	r.message = fmt.Sprintf("Hand %d doubles and draws %s, total %d.", index+1, card, value)
	r.findNextActiveHand()
	return nil
}

// Split moves the active pair's second card into a new slot directly after
// it, re-bets the main stake and deals one card to each half. Split aces
// stand immediately and can never be re-split.
func (r *Round) Split(index int) error {
	h, err := r.actingHand("split", index)
	if err != nil {
		return err
	}
	if !h.CanSplit || len(h.Cards) != 2 || len(r.hands) >= MaxHands {
		return fmt.Errorf("hand %d cannot split: %w", index+1, ErrHandNotEligible)
	}
	if r.player.Chips < h.MainBet {
		return fmt.Errorf("splitting needs %d chips, have %d: %w", h.MainBet, r.player.Chips, ErrInsufficientChips)
	}

	r.debit(h.MainBet)
	first, second := h.Cards[0], h.Cards[1]

	// Side-bet stakes and results travel with the new slot for display; they
	// were charged and paid once at the deal.
	split := newHandState()
	split.Cards = []cards.Card{second}
	split.MainBet = h.MainBet
	split.SideBet21 = h.SideBet21
	split.SideBetPairs = h.SideBetPairs
	split.SideBets = h.SideBets
	split.CanResplit = h.CanResplit

	h.Cards = []cards.Card{first}
	r.hands = slices.Insert(r.hands, index+1, split)

	aces := first.IsAce()
	pair := r.hands[index : index+2]
	for i := range pair {
		pair[i].Cards = append(pair[i].Cards, r.shoe.Deal())
		pair[i].CanDouble = false
		pair[i].CanSplit = false
		if aces {
			pair[i].Stood = true
			pair[i].CanResplit = false
		} else if pair[i].Value() == 21 {
			pair[i].Stood = true
		}
	}

	r.message = fmt.Sprintf("Hand %d splits %ss.", index+1, first.Rank)
	if pair[0].Stood {
		r.findNextActiveHand()
	}
	return nil
}

// DealerPlay draws for the dealer until the total reaches 17
func (r *Round) DealerPlay() error {
	if r.phase != PhaseDealerTurn {
		return fmt.Errorf("dealer cannot play during %s: %w", r.phase, ErrWrongPhase)
	}
	for HandValue(r.dealer) < dealerStandsOn {
		r.dealer = append(r.dealer, r.shoe.Deal())
	}
	if v := HandValue(r.dealer); v > 21 {
		r.message = fmt.Sprintf("Dealer busts with %d.", v)
	} else {
		r.message = fmt.Sprintf("Dealer stands on %d.", v)
	}
	r.phase = PhaseSettlement
	return nil
}

// SettleAllBets resolves every in-play hand that is not yet settled.
// Settling twice is a no-op.
func (r *Round) SettleAllBets() error {
	if r.phase != PhaseSettlement && r.phase != PhaseRoundOver {
		return fmt.Errorf("cannot settle during %s: %w", r.phase, ErrWrongPhase)
	}

	dealerValue := HandValue(r.dealer)
	dealerBust := dealerValue > 21

	for i := range r.hands {
		h := &r.hands[i]
		if !h.InPlay() || h.Settled {
			continue
		}
		h.Settled = true
		value := h.Value()
		switch {
		case h.Busted:
			h.Result = fmt.Sprintf("Bust: lost %d.", h.MainBet)
		case dealerBust || value > dealerValue:
			r.credit(2 * h.MainBet)
			h.Result = fmt.Sprintf("Win: %d beats %d, paid %d.", value, dealerValue, 2*h.MainBet)
		case value == dealerValue:
			r.credit(h.MainBet)
			h.Result = fmt.Sprintf("Push on %d.", value)
		default:
			h.Result = fmt.Sprintf("Lose: %d to %d, lost %d.", value, dealerValue, h.MainBet)
		}
	}

	r.active = NoActiveHand
	r.phase = PhaseRoundOver
	switch net := r.ledger.Net(); {
	case net > 0:
		r.message = fmt.Sprintf("Round over: you won %d.", net)
	case net < 0:
		r.message = fmt.Sprintf("Round over: you lost %d.", -net)
	default:
		r.message = "Round over: you broke even."
	}
	return nil
}

// ResetRound clears the table for the next round and rebuilds the shoe
// once it runs low
func (r *Round) ResetRound() error {
	if r.phase != PhaseRoundOver && r.phase != PhaseBetting {
		return fmt.Errorf("cannot reset during %s: %w", r.phase, ErrWrongPhase)
	}
	r.hands = emptyHands(r.numHands)
	r.dealer = []cards.Card{}
	r.active = NoActiveHand
	r.phase = PhaseBetting
	r.ledger = Outcome{}
	r.message = "Place your bets."
	if r.shoe.Penetrated(reshuffleFraction) {
		r.shoe.Reshuffle()
		r.message = "Shoe reshuffled. Place your bets."
	}
	return nil
}
