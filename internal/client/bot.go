package client

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/server"
)

// BotConfig controls a network bot session
type BotConfig struct {
	Name    string
	Rounds  int
	Bet     int // Main bet on every hand slot
	SideBet int // Stake on each side bet of every slot, 0 to skip
}

// BotResult summarises a finished bot session
type BotResult struct {
	SessionID  string
	Rounds     int
	StartChips int
	EndChips   int
}

// Net is the chips won or lost over the session
func (r BotResult) Net() int {
	return r.EndChips - r.StartChips
}

// RunBot opens a session and plays up to cfg.Rounds rounds, taking the
// server's hint for every decision, then cashes out. It stops early once
// the bankroll cannot cover the bets.
func RunBot(ctx context.Context, c *Client, cfg BotConfig, logger *log.Logger) (BotResult, error) {
	logger = logger.WithPrefix("bot")
	if cfg.Bet <= 0 {
		return BotResult{}, fmt.Errorf("bet must be positive, got %d", cfg.Bet)
	}

	state, err := c.NewRound(ctx, cfg.Name)
	if err != nil {
		return BotResult{}, err
	}
	result := BotResult{SessionID: state.SessionID, StartChips: state.View.PlayerChips}

	bets := make([]blackjack.Bet, len(state.View.Hands))
	total := 0
	for i := range bets {
		bets[i] = blackjack.Bet{Main: cfg.Bet, TwentyOnePlusThree: cfg.SideBet, PerfectPairs: cfg.SideBet}
		total += bets[i].Total()
	}

	for result.Rounds < cfg.Rounds && state.View.PlayerChips >= total {
		if result.Rounds == 0 {
			state, err = c.PlaceBets(ctx, bets)
		} else {
			state, err = c.Rebet(ctx)
		}
		if err != nil {
			return result, fmt.Errorf("round %d: %w", result.Rounds+1, err)
		}

		if state, err = playTurns(ctx, c, state, logger); err != nil {
			return result, fmt.Errorf("round %d: %w", result.Rounds+1, err)
		}
		result.Rounds++
		logger.Debug("Round over", "round", result.Rounds, "chips", state.View.PlayerChips)

		if state, err = c.ResetRound(ctx); err != nil {
			return result, err
		}
	}

	cashed, err := c.CashOut(ctx)
	if err != nil {
		return result, err
	}
	result.EndChips = cashed.Chips
	logger.Info("Cashed out", "rounds", result.Rounds, "net", result.Net(), "chips", result.EndChips)
	return result, nil
}

func playTurns(ctx context.Context, c *Client, state server.StateData, logger *log.Logger) (server.StateData, error) {
	for state.View.Phase == blackjack.PhasePlayerTurns {
		hint, err := c.Hint(ctx)
		if err != nil {
			return state, err
		}
		logger.Debug("Bot decision", "hand", hint.HandIndex+1, "action", hint.Action, "reasoning", hint.Reasoning)
		if state, err = c.Act(ctx, hint.Action, hint.HandIndex); err != nil {
			return state, err
		}
	}
	return state, nil
}
