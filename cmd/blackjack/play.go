package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/tui"
	"github.com/muesli/termenv"
)

// PlayCmd plays a local table in the terminal
type PlayCmd struct {
	Name     string `default:"" help:"Player name (defaults to $USER or \"Player\")"`
	Chips    int    `default:"1000" help:"Starting chips"`
	Seed     *int64 `help:"Deterministic shoe seed (optional)"`
	MinBet   int    `default:"10" help:"Table minimum total bet"`
	MaxBet   int    `default:"5000" help:"Table maximum total bet"`
	Decks    int    `default:"6" help:"Decks in the shoe"`
	Hands    int    `default:"3" help:"Hand slots per round"`
	LogFile  string `default:"blackjack.log" help:"Log file path"`
	LogLevel string `default:"info" help:"Log level"`
	NoColor  bool   `help:"Disable colors"`
}

func (c *PlayCmd) Run() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = os.Getenv("USER")
	}
	if name == "" {
		name = "Player"
	}

	logFile, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	logger, err := newLogger(logFile, c.LogLevel)
	if err != nil {
		return err
	}

	if c.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	seed := randutil.Seed(c.Seed)
	rules := blackjack.Rules{MinBet: c.MinBet, MaxBet: c.MaxBet, Decks: c.Decks, Hands: c.Hands}
	table, err := blackjack.NewTable(rules, randutil.New(seed), logger)
	if err != nil {
		return err
	}
	s, err := table.NewRound(name, c.Chips)
	if err != nil {
		return err
	}
	logger.Info("Starting blackjack client", "player", name, "chips", c.Chips, "seed", seed)

	program := tea.NewProgram(tui.NewTUIModel(table, s, logger), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("terminal UI: %w", err)
	}
	return nil
}
