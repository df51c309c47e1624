package blackjack

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
)

// Table exposes the round as pure transitions over snapshots: every call
// restores a round, applies one action and returns the new snapshot. It
// keeps no round in memory, so any number of sessions can share one Table
// provided rng is safe for concurrent use.
type Table struct {
	rules  Rules
	rng    *rand.Rand
	logger *log.Logger
}

// NewTable creates a table with the given rules
func NewTable(rules Rules, rng *rand.Rand, logger *log.Logger) (*Table, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid table rules: %w", err)
	}
	return &Table{
		rules:  rules,
		rng:    rng,
		logger: logger.WithPrefix("table"),
	}, nil
}

// Rules returns the table rules
func (t *Table) Rules() Rules {
	return t.rules
}

// NewRound seats a player with the given chips and returns the opening snapshot
func (t *Table) NewRound(name string, chips int) (Snapshot, error) {
	r, err := NewRound(t.rules, Player{Name: name, Chips: chips}, t.rng)
	if err != nil {
		return Snapshot{}, err
	}
	t.logger.Debug("New round", "player", name, "chips", chips, "decks", t.rules.Decks)
	return r.Snapshot(), nil
}

// apply runs one action against a restored round. On failure the input
// snapshot comes back unchanged apart from its message.
func (t *Table) apply(s Snapshot, action string, fn func(*Round) error) (Snapshot, error) {
	r, err := Restore(s, t.rules, t.rng)
	if err != nil {
		t.logger.Warn("Rejected snapshot", "action", action, "error", err)
		s.Message = err.Error()
		return s, err
	}

	before := r.phase
	if err := fn(r); err != nil {
		t.logger.Debug("Action rejected", "action", action, "phase", before, "error", err)
		s.Message = err.Error()
		return s, err
	}

	t.logger.Debug("Action applied",
		"action", action,
		"player", r.player.Name,
		"from", before,
		"to", r.phase,
		"chips", r.player.Chips)
	return r.Snapshot(), nil
}

// PlaceBets reserves the stakes; the round then waits in the dealing phase
func (t *Table) PlaceBets(s Snapshot, bets []Bet) (Snapshot, error) {
	return t.apply(s, "place_bets", func(r *Round) error { return r.PlaceBets(bets) })
}

// DealInitialCards deals a round whose bets are placed
func (t *Table) DealInitialCards(s Snapshot) (Snapshot, error) {
	return t.apply(s, "deal", (*Round).DealInitialCards)
}

// Bet places the bets and deals in one transition
func (t *Table) Bet(s Snapshot, bets []Bet) (Snapshot, error) {
	return t.apply(s, "bet", func(r *Round) error {
		if err := r.PlaceBets(bets); err != nil {
			return err
		}
		return r.DealInitialCards()
	})
}

// Rebet repeats the previous round's bets and deals
func (t *Table) Rebet(s Snapshot) (Snapshot, error) {
	return t.apply(s, "rebet", func(r *Round) error {
		if err := r.Rebet(); err != nil {
			return err
		}
		return r.DealInitialCards()
	})
}

// Hit deals a card to the active hand
func (t *Table) Hit(s Snapshot, hand int) (Snapshot, error) {
	return t.apply(s, "hit", func(r *Round) error { return r.Hit(hand) })
}

// Stand ends the active hand's turn
func (t *Table) Stand(s Snapshot, hand int) (Snapshot, error) {
	return t.apply(s, "stand", func(r *Round) error { return r.Stand(hand) })
}

// Double doubles down on the active hand
func (t *Table) Double(s Snapshot, hand int) (Snapshot, error) {
	return t.apply(s, "double", func(r *Round) error { return r.DoubleDown(hand) })
}

// Split splits the active pair
func (t *Table) Split(s Snapshot, hand int) (Snapshot, error) {
	return t.apply(s, "split", func(r *Round) error { return r.Split(hand) })
}

// DealerPlay plays out the dealer's hand
func (t *Table) DealerPlay(s Snapshot) (Snapshot, error) {
	return t.apply(s, "dealer_play", (*Round).DealerPlay)
}

// SettleAllBets pays out every unsettled hand
func (t *Table) SettleAllBets(s Snapshot) (Snapshot, error) {
	return t.apply(s, "settle", (*Round).SettleAllBets)
}

// Finish plays the dealer and settles when player turns are over. Rounds in
// any other phase are returned untouched.
func (t *Table) Finish(s Snapshot) (Snapshot, error) {
	if s.Phase != PhaseDealerTurn && s.Phase != PhaseSettlement {
		return s, nil
	}
	return t.apply(s, "finish", func(r *Round) error {
		if r.phase == PhaseDealerTurn {
			if err := r.DealerPlay(); err != nil {
				return err
			}
		}
		return r.SettleAllBets()
	})
}

// ResetRound clears the table for the next round
func (t *Table) ResetRound(s Snapshot) (Snapshot, error) {
	return t.apply(s, "reset", (*Round).ResetRound)
}

// View projects a snapshot for display after checking it is well formed
func (t *Table) View(s Snapshot, reveal bool) (View, error) {
	if err := s.Validate(); err != nil {
		return View{}, err
	}
	return Project(s, reveal), nil
}
