package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lox/blackjack/internal/blackjack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultServerConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultServerConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "localhost:8080", cfg.GetServerAddress())
	assert.Equal(t, blackjack.DefaultRules(), cfg.Rules())
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL())
	assert.Equal(t, time.Minute, cfg.SweepInterval())
	assert.Equal(t, 1000, cfg.Table.StartingChips)
	assert.Empty(t, cfg.Server.StateDir)
}

func TestParseServerConfig(t *testing.T) {
	t.Parallel()
	src := `
server {
  address     = "0.0.0.0"
  port        = 9000
  log_level   = "debug"
  state_dir   = "/var/lib/blackjack"
  session_ttl = "2h"
}

table {
  min_bet        = 5
  max_bet        = 500
  decks          = 8
  hands          = 2
  starting_chips = 250
}
`
	cfg, err := ParseServerConfig([]byte(src), "test.hcl")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:9000", cfg.GetServerAddress())
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "/var/lib/blackjack", cfg.Server.StateDir)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL())
	assert.Equal(t, blackjack.Rules{MinBet: 5, MaxBet: 500, Decks: 8, Hands: 2}, cfg.Rules())
	assert.Equal(t, 250, cfg.Table.StartingChips)
}

func TestParseServerConfigPartial(t *testing.T) {
	t.Parallel()
	cfg, err := ParseServerConfig([]byte(`table { decks = 2 }`), "partial.hcl")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2, cfg.Table.Decks)
	assert.Equal(t, 10, cfg.Table.MinBet)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestParseServerConfigErrors(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"syntax":        `server {`,
		"unknown field": `server { colour = "red" }`,
		"wrong type":    `server { port = "eighty" }`,
	}
	for name, src := range tests {
		_, err := ParseServerConfig([]byte(src), name+".hcl")
		assert.Error(t, err, name)
	}
}

func TestServerConfigValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*ServerConfig)
	}{
		{"port", func(c *ServerConfig) { c.Server.Port = 70000 }},
		{"log level", func(c *ServerConfig) { c.Server.LogLevel = "chatty" }},
		{"ttl", func(c *ServerConfig) { c.Server.SessionTTL = "soon" }},
		{"sweep interval", func(c *ServerConfig) { c.Server.SweepInterval = "0s" }},
		{"limits", func(c *ServerConfig) { c.Table.MaxBet = 1 }},
		{"hands", func(c *ServerConfig) { c.Table.Hands = 5 }},
		{"starting chips", func(c *ServerConfig) { c.Table.StartingChips = 5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultServerConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadServerConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	cfg, err := LoadServerConfig(filepath.Join(dir, "missing.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultServerConfig(), cfg)

	path := filepath.Join(dir, "blackjack.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`server { port = 8181 }`), 0o600))
	cfg, err = LoadServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8181, cfg.Server.Port)
}
