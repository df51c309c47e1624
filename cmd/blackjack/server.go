package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/server"
	"github.com/lox/blackjack/internal/session"
	"golang.org/x/sync/errgroup"
)

// ServerCmd runs the websocket server
type ServerCmd struct {
	Config   string `short:"c" default:"blackjack.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Server host to bind to (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	StateDir string `help:"Directory for session files (overrides config, empty keeps sessions in memory)"`
	Seed     *int64 `help:"Deterministic RNG seed (optional)"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.StateDir != "" {
		cfg.Server.StateDir = c.StateDir
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := stderrLogger(cfg.Server.LogLevel)
	if err != nil {
		return err
	}

	seed := randutil.Seed(c.Seed)
	table, err := blackjack.NewTable(cfg.Rules(), randutil.NewLocked(seed), logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	var store session.Store
	if cfg.Server.StateDir != "" {
		fs, err := session.NewFileStore(cfg.Server.StateDir)
		if err != nil {
			return err
		}
		store = fs
	} else {
		ms := session.NewMemoryStore(cfg.SessionTTL(), quartz.NewReal())
		g.Go(func() error {
			if err := ms.Run(ctx, cfg.SweepInterval()); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
		store = ms
	}

	gameService := server.NewGameService(session.NewManager(store, table, logger), cfg.Table.StartingChips, logger)
	srv := server.NewServer(cfg.GetServerAddress(), gameService, logger)

	logger.Info("Starting blackjack server",
		"addr", cfg.GetServerAddress(),
		"seed", seed,
		"min_bet", cfg.Table.MinBet,
		"max_bet", cfg.Table.MaxBet,
		"decks", cfg.Table.Decks,
		"hands", cfg.Table.Hands,
		"state_dir", cfg.Server.StateDir)

	g.Go(func() error { return srv.Start(ctx) })
	return g.Wait()
}
