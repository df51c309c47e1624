package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/lox/blackjack/internal/client"
)

// BotCmd plays basic strategy against a running server
type BotCmd struct {
	Server   string `default:"ws://localhost:8080/ws" help:"WebSocket server URL"`
	Name     string `default:"bot" help:"Player name"`
	Rounds   int    `default:"100" help:"Rounds to play before cashing out"`
	Bet      int    `default:"10" help:"Main bet on every hand slot"`
	SideBet  int    `default:"0" help:"Stake on each side bet of every slot"`
	LogLevel string `default:"info" help:"Log level"`
}

func (c *BotCmd) Run() error {
	logger, err := stderrLogger(c.LogLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	conn, err := client.Dial(ctx, strings.TrimSpace(c.Server), logger)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	result, err := client.RunBot(ctx, conn, client.BotConfig{
		Name:    c.Name,
		Rounds:  c.Rounds,
		Bet:     c.Bet,
		SideBet: c.SideBet,
	}, logger)
	if err != nil {
		return err
	}
	fmt.Printf("Session %s: %d rounds, %d → %d chips (net %+d)\n",
		result.SessionID, result.Rounds, result.StartChips, result.EndChips, result.Net())
	return nil
}
