package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/simulator"
)

// SimulateCmd plays many rounds with the basic-strategy bot
type SimulateCmd struct {
	Rounds   int    `default:"100000" help:"Rounds to play"`
	Workers  int    `default:"0" help:"Parallel workers (0 = one)"`
	Seed     *int64 `help:"Base RNG seed (optional)"`
	Bet      int    `default:"10" help:"Main bet on every hand slot"`
	SideBet  int    `default:"0" help:"Stake on each side bet of every slot"`
	Hands    int    `default:"3" help:"Hand slots per round"`
	Decks    int    `default:"6" help:"Decks in the shoe"`
	LogLevel string `default:"warn" help:"Log level"`
}

func (c *SimulateCmd) Run() error {
	logger, err := stderrLogger(c.LogLevel)
	if err != nil {
		return err
	}

	rules := blackjack.DefaultRules()
	rules.Hands = c.Hands
	rules.Decks = c.Decks

	seed := randutil.Seed(c.Seed)
	sim := simulator.New(simulator.Config{
		Rounds:  c.Rounds,
		Workers: c.Workers,
		Seed:    seed,
		Bet:     c.Bet,
		SideBet: c.SideBet,
		Rules:   rules,
		Logger:  logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	stats, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	simulator.PrintSummary(os.Stdout, stats)
	fmt.Printf("\nSeed: %d  Time: %s  (%.0f rounds/sec)\n",
		seed, elapsed.Round(time.Millisecond), float64(stats.Rounds)/elapsed.Seconds())
	return nil
}
