package blackjack

import (
	"bytes"
	"encoding/json"
	"fmt"
	rand "math/rand/v2"
	"slices"

	"github.com/lox/blackjack/internal/cards"
)

// ShoeSnapshot is the shoe's deck count and exact remaining order
type ShoeSnapshot struct {
	Decks int          `json:"decks"`
	Cards []cards.Card `json:"cards"`
}

// Snapshot is the complete, transport-neutral state of a round. A caller
// persists it verbatim and hands it back on the next action.
type Snapshot struct {
	Shoe     ShoeSnapshot `json:"shoe"`
	Player   Player       `json:"player"`
	Dealer   []cards.Card `json:"dealer_hand"`
	Hands    []HandState  `json:"player_hands"`
	Active   int          `json:"current_active_hand_index"`
	Phase    Phase        `json:"game_phase"`
	Message  string       `json:"game_message"`
	NumHands int          `json:"num_hands"`
	LastBets []Bet        `json:"last_bets"`
	Ledger   Outcome      `json:"ledger"`
}

// Snapshot captures the round. The result shares no memory with the round.
func (r *Round) Snapshot() Snapshot {
	return Snapshot{
		Shoe: ShoeSnapshot{
			Decks: r.shoe.Decks(),
			Cards: r.shoe.Cards(),
		},
		Player:   r.player,
		Dealer:   slices.Clone(r.dealer),
		Hands:    r.Hands(),
		Active:   r.active,
		Phase:    r.phase,
		Message:  r.message,
		NumHands: r.numHands,
		LastBets: slices.Clone(r.lastBets),
		Ledger:   r.ledger,
	}
}

// Restore rebuilds a round from a snapshot under the given table rules.
// Snapshots that break any round invariant are rejected rather than
// repaired.
func Restore(s Snapshot, rules Rules, rng *rand.Rand) (*Round, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkStakes(rules); err != nil {
		return nil, err
	}

	hands := make([]HandState, len(s.Hands))
	for i := range s.Hands {
		hands[i] = s.Hands[i].clone()
	}
	return &Round{
		rules:    rules,
		shoe:     cards.RestoreShoe(s.Shoe.Decks, s.Shoe.Cards, rng),
		player:   s.Player,
		dealer:   slices.Clone(s.Dealer),
		hands:    hands,
		active:   s.Active,
		phase:    s.Phase,
		message:  s.Message,
		numHands: s.NumHands,
		lastBets: slices.Clone(s.LastBets),
		ledger:   s.Ledger,
	}, nil
}

// checkStakes bounds every stake by what the table limits allow and ties
// the ledger to the stakes on the table. A main bet may reach twice the
// maximum after a double. Split hands carry copies of the side stakes that
// were only charged once, so the ledger sits between the main bets alone
// and the main bets plus every side stake.
func (s Snapshot) checkStakes(rules Rules) error {
	for i, b := range s.LastBets {
		if b.Main > rules.MaxBet || b.TwentyOnePlusThree > rules.MaxBet || b.PerfectPairs > rules.MaxBet {
			return malformed("remembered bet %d is above the table maximum %d", i+1, rules.MaxBet)
		}
	}
	mains, sides := 0, 0
	for i, h := range s.Hands {
		if h.MainBet > 2*rules.MaxBet || h.SideBet21 > rules.MaxBet || h.SideBetPairs > rules.MaxBet {
			return malformed("hand %d stake is above the table maximum %d", i+1, rules.MaxBet)
		}
		mains += h.MainBet
		sides += h.SideBet21 + h.SideBetPairs
	}
	if s.Ledger.Staked < mains || s.Ledger.Staked > mains+sides {
		return malformed("ledger stake %d does not match %d on the table", s.Ledger.Staked, mains+sides)
	}
	return nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrMalformedSnapshot)
}

func validCards(cs []cards.Card) bool {
	for _, c := range cs {
		if !c.Valid() {
			return false
		}
	}
	return true
}

// Validate checks the structural invariants of a snapshot
func (s *Snapshot) Validate() error {
	if s.Shoe.Decks < 1 {
		return malformed("shoe has %d decks", s.Shoe.Decks)
	}
	if len(s.Shoe.Cards) > s.Shoe.Decks*cards.DeckSize {
		return malformed("shoe holds %d cards, more than %d decks", len(s.Shoe.Cards), s.Shoe.Decks)
	}
	if !validCards(s.Shoe.Cards) {
		return malformed("shoe contains an invalid card")
	}
	if !s.Phase.valid() {
		return malformed("unknown phase %q", s.Phase)
	}
	if s.Player.Chips < 0 {
		return malformed("negative chip balance %d", s.Player.Chips)
	}
	if s.Ledger.Staked < 0 || s.Ledger.Credited < 0 {
		return malformed("negative ledger")
	}
	if !validCards(s.Dealer) {
		return malformed("dealer hand contains an invalid card")
	}
	if s.NumHands < 1 || s.NumHands > MaxHands {
		return malformed("base hand count %d", s.NumHands)
	}
	if len(s.Hands) < s.NumHands || len(s.Hands) > MaxHands {
		return malformed("%d hand slots for base %d", len(s.Hands), s.NumHands)
	}
	if s.Phase == PhaseBetting && len(s.Hands) != s.NumHands {
		return malformed("betting phase with %d hand slots", len(s.Hands))
	}
	if len(s.LastBets) != 0 && len(s.LastBets) != s.NumHands {
		return malformed("%d remembered bets for %d hands", len(s.LastBets), s.NumHands)
	}
	for i, b := range s.LastBets {
		if b.Main < 0 || b.TwentyOnePlusThree < 0 || b.PerfectPairs < 0 {
			return malformed("remembered bet %d is negative", i+1)
		}
	}

	activeCount := 0
	for i := range s.Hands {
		h := &s.Hands[i]
		if !validCards(h.Cards) {
			return malformed("hand %d contains an invalid card", i+1)
		}
		if h.MainBet < 0 || h.SideBet21 < 0 || h.SideBetPairs < 0 {
			return malformed("hand %d has a negative stake", i+1)
		}
		if !h.SideBets.TwentyOnePlusThree.valid() || !h.SideBets.PerfectPairs.valid() {
			return malformed("hand %d has an unknown side-bet result", i+1)
		}
		if h.Active {
			activeCount++
		}
	}

	if s.Phase != PhasePlayerTurns {
		if s.Active != NoActiveHand || activeCount != 0 {
			return malformed("active hand outside player turns")
		}
		return nil
	}
	if s.Active < 0 || s.Active >= len(s.Hands) {
		return malformed("active hand index %d out of range", s.Active)
	}
	if activeCount != 1 || !s.Hands[s.Active].Active {
		return malformed("active hand index %d does not match hand flags", s.Active)
	}
	return nil
}

// Encode serialises the snapshot as JSON
func (s Snapshot) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// Decode parses and validates a JSON snapshot. Unknown fields are rejected.
func Decode(data []byte) (Snapshot, error) {
	var s Snapshot
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %v: %w", err, ErrMalformedSnapshot)
	}
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
