package strategy

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/blackjack"
)

// Bot plays every player turn of a round by basic strategy
type Bot struct {
	logger *log.Logger
}

// NewBot creates a new bot
func NewBot(logger *log.Logger) *Bot {
	return &Bot{logger: logger.WithPrefix("bot")}
}

// Apply performs one action on the active hand through the table
func Apply(table *blackjack.Table, s blackjack.Snapshot, action Action) (blackjack.Snapshot, error) {
	switch action {
	case Hit:
		return table.Hit(s, s.Active)
	case Stand:
		return table.Stand(s, s.Active)
	case Double:
		return table.Double(s, s.Active)
	case Split:
		return table.Split(s, s.Active)
	}
	return s, fmt.Errorf("unknown action %q", action)
}

// PlayTurns decides and applies actions until player turns are over
func (b *Bot) PlayTurns(table *blackjack.Table, s blackjack.Snapshot) (blackjack.Snapshot, error) {
	for {
		sit, ok := FromSnapshot(s)
		if !ok {
			return s, nil
		}
		d := Decide(sit)
		b.logger.Debug("Bot decision",
			"hand", s.Active+1,
			"total", blackjack.HandValue(sit.Hand),
			"up", sit.DealerUp,
			"action", d.Action,
			"reasoning", d.Reasoning)

		next, err := Apply(table, s, d.Action)
		if err != nil {
			return s, fmt.Errorf("bot %s on hand %d: %w", d.Action, s.Active+1, err)
		}
		s = next
	}
}
