package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Server   ServerCmd        `cmd:"" help:"Run the websocket blackjack server"`
	Play     PlayCmd          `cmd:"" help:"Play at a local table in the terminal"`
	Simulate SimulateCmd      `cmd:"" help:"Simulate basic-strategy play and report the house edge"`
	Bot      BotCmd           `cmd:"" help:"Play basic strategy against a running server"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blackjack"),
		kong.Description("Multi-hand blackjack with 21+3 and Perfect Pairs side bets"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// newLogger builds a logger at the named level
func newLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
	}), nil
}

// stderrLogger is newLogger on stderr
func stderrLogger(level string) (*log.Logger, error) {
	return newLogger(os.Stderr, level)
}
