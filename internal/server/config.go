package server

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/blackjack/internal/blackjack"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server *ServerSettings `hcl:"server,block"`
	Table  *TableSettings  `hcl:"table,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address       string `hcl:"address,optional"`
	Port          int    `hcl:"port,optional"`
	LogLevel      string `hcl:"log_level,optional"`
	StateDir      string `hcl:"state_dir,optional"`      // File-backed sessions when set, memory otherwise
	SessionTTL    string `hcl:"session_ttl,optional"`    // Idle expiry of memory sessions
	SweepInterval string `hcl:"sweep_interval,optional"` // How often expired memory sessions are dropped
}

// TableSettings defines the blackjack table every session plays at
type TableSettings struct {
	MinBet        int `hcl:"min_bet,optional"`
	MaxBet        int `hcl:"max_bet,optional"`
	Decks         int `hcl:"decks,optional"`
	Hands         int `hcl:"hands,optional"`
	StartingChips int `hcl:"starting_chips,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	c := &ServerConfig{}
	c.applyDefaults()
	return c
}

// LoadServerConfig loads server configuration from an HCL file. A missing
// file yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	return decodeConfig(file, diags)
}

// ParseServerConfig parses configuration from HCL source
func ParseServerConfig(src []byte, filename string) (*ServerConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	return decodeConfig(file, diags)
}

func decodeConfig(file *hcl.File, diags hcl.Diagnostics) (*ServerConfig, error) {
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *ServerConfig) applyDefaults() {
	if c.Server == nil {
		c.Server = &ServerSettings{}
	}
	if c.Table == nil {
		c.Table = &TableSettings{}
	}

	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.SessionTTL == "" {
		c.Server.SessionTTL = "30m"
	}
	if c.Server.SweepInterval == "" {
		c.Server.SweepInterval = "1m"
	}

	rules := blackjack.DefaultRules()
	if c.Table.MinBet == 0 {
		c.Table.MinBet = rules.MinBet
	}
	if c.Table.MaxBet == 0 {
		c.Table.MaxBet = rules.MaxBet
	}
	if c.Table.Decks == 0 {
		c.Table.Decks = rules.Decks
	}
	if c.Table.Hands == 0 {
		c.Table.Hands = rules.Hands
	}
	if c.Table.StartingChips == 0 {
		c.Table.StartingChips = 1000
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Server.LogLevel, err)
	}
	if ttl, err := time.ParseDuration(c.Server.SessionTTL); err != nil || ttl < 0 {
		return fmt.Errorf("invalid session_ttl %q", c.Server.SessionTTL)
	}
	if d, err := time.ParseDuration(c.Server.SweepInterval); err != nil || d <= 0 {
		return fmt.Errorf("invalid sweep_interval %q", c.Server.SweepInterval)
	}

	if err := c.Rules().Validate(); err != nil {
		return fmt.Errorf("table: %w", err)
	}
	if c.Table.StartingChips < c.Table.MinBet {
		return fmt.Errorf("table: starting chips %d below minimum bet %d", c.Table.StartingChips, c.Table.MinBet)
	}
	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// Rules returns the table rules
func (c *ServerConfig) Rules() blackjack.Rules {
	return blackjack.Rules{
		MinBet: c.Table.MinBet,
		MaxBet: c.Table.MaxBet,
		Decks:  c.Table.Decks,
		Hands:  c.Table.Hands,
	}
}

// SessionTTL returns the parsed idle expiry; call Validate first
func (c *ServerConfig) SessionTTL() time.Duration {
	d, _ := time.ParseDuration(c.Server.SessionTTL)
	return d
}

// SweepInterval returns the parsed sweep period; call Validate first
func (c *ServerConfig) SweepInterval() time.Duration {
	d, _ := time.ParseDuration(c.Server.SweepInterval)
	return d
}
