package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/session"
	"github.com/lox/blackjack/internal/strategy"
)

// ErrBadRequest marks malformed or incomplete client requests
var ErrBadRequest = errors.New("bad request")

// GameService applies client requests to stored sessions
type GameService struct {
	sessions      *session.Manager
	table         *blackjack.Table
	startingChips int
	logger        *log.Logger
}

// NewGameService creates a game service over a session manager
func NewGameService(sessions *session.Manager, startingChips int, logger *log.Logger) *GameService {
	return &GameService{
		sessions:      sessions,
		table:         sessions.Table(),
		startingChips: startingChips,
		logger:        logger.WithPrefix("game"),
	}
}

// NewRound opens a session for a player
func (g *GameService) NewRound(ctx context.Context, name string) (string, blackjack.Snapshot, error) {
	if name == "" {
		return "", blackjack.Snapshot{}, fmt.Errorf("player name required: %w", ErrBadRequest)
	}
	return g.sessions.Create(ctx, name, g.startingChips)
}

// Get returns the stored snapshot of a session
func (g *GameService) Get(ctx context.Context, id string) (blackjack.Snapshot, error) {
	return g.sessions.Get(ctx, id)
}

// apply runs an action and then, once player turns are over, plays the
// dealer and settles in the same transition
func (g *GameService) apply(ctx context.Context, id string, fn session.Action) (blackjack.Snapshot, error) {
	return g.sessions.Do(ctx, id, func(s blackjack.Snapshot) (blackjack.Snapshot, error) {
		next, err := fn(s)
		if err != nil {
			return next, err
		}
		return g.table.Finish(next)
	})
}

// PlaceBets places the bets and deals
func (g *GameService) PlaceBets(ctx context.Context, id string, bets []blackjack.Bet) (blackjack.Snapshot, error) {
	return g.apply(ctx, id, func(s blackjack.Snapshot) (blackjack.Snapshot, error) {
		return g.table.Bet(s, bets)
	})
}

// Rebet repeats the previous bets and deals
func (g *GameService) Rebet(ctx context.Context, id string) (blackjack.Snapshot, error) {
	return g.apply(ctx, id, g.table.Rebet)
}

// Act performs a player action on a hand
func (g *GameService) Act(ctx context.Context, id string, action string, hand int) (blackjack.Snapshot, error) {
	a, err := strategy.ParseAction(action)
	if err != nil {
		return blackjack.Snapshot{}, fmt.Errorf("%w: %w", err, ErrBadRequest)
	}
	return g.apply(ctx, id, func(s blackjack.Snapshot) (blackjack.Snapshot, error) {
		return g.act(s, a, hand)
	})
}

func (g *GameService) act(s blackjack.Snapshot, a strategy.Action, hand int) (blackjack.Snapshot, error) {
	switch a {
	case strategy.Hit:
		return g.table.Hit(s, hand)
	case strategy.Stand:
		return g.table.Stand(s, hand)
	case strategy.Double:
		return g.table.Double(s, hand)
	case strategy.Split:
		return g.table.Split(s, hand)
	}
	return s, fmt.Errorf("unknown action %q: %w", a, ErrBadRequest)
}

// ResetRound clears the table for the next round
func (g *GameService) ResetRound(ctx context.Context, id string) (blackjack.Snapshot, error) {
	return g.sessions.Do(ctx, id, g.table.ResetRound)
}

// CashOut ends the session and returns its final snapshot
func (g *GameService) CashOut(ctx context.Context, id string) (blackjack.Snapshot, error) {
	return g.sessions.Delete(ctx, id)
}

// View projects a session for the player at the table. The hole card stays
// hidden until the dealer turns it over.
func (g *GameService) View(s blackjack.Snapshot) (blackjack.View, error) {
	return g.table.View(s, false)
}

// Hint suggests a basic-strategy play for the active hand
func (g *GameService) Hint(ctx context.Context, id string) (HintData, error) {
	s, err := g.sessions.Get(ctx, id)
	if err != nil {
		return HintData{}, err
	}
	sit, ok := strategy.FromSnapshot(s)
	if !ok {
		return HintData{}, fmt.Errorf("no hand to act on during %s: %w", s.Phase, blackjack.ErrWrongPhase)
	}
	d := strategy.Decide(sit)
	return HintData{HandIndex: s.Active, Action: string(d.Action), Reasoning: d.Reasoning}, nil
}

// errorCode classifies an error for the wire
func errorCode(err error) string {
	switch {
	case errors.Is(err, blackjack.ErrWrongPhase):
		return CodeWrongPhase
	case errors.Is(err, blackjack.ErrHandNotEligible):
		return CodeHandNotEligible
	case errors.Is(err, blackjack.ErrInvalidHandIndex):
		return CodeInvalidHandIndex
	case errors.Is(err, blackjack.ErrInvalidBetShape):
		return CodeInvalidBetShape
	case errors.Is(err, blackjack.ErrBetOutOfRange):
		return CodeBetOutOfRange
	case errors.Is(err, blackjack.ErrInsufficientChips):
		return CodeInsufficientChips
	case errors.Is(err, blackjack.ErrMalformedSnapshot):
		return CodeMalformedSnapshot
	case errors.Is(err, session.ErrNotFound):
		return CodeUnknownSession
	case errors.Is(err, ErrBadRequest):
		return CodeBadRequest
	}
	return CodeInternal
}
