// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every runtime setting. All fields come from HTF_* environment
// variables and fall back to the defaults below.
type Config struct {
	// Addr is the listen address for the HTTP and WebSocket server.
	Addr string `env:"HTF_ADDR" envDefault:":8000"`

	// BoardSize is the side length of each player's square board.
	BoardSize int `env:"HTF_BOARD_SIZE" envDefault:"5"`

	// ShipsRequired is how many single-cell ships each player fields.
	ShipsRequired int `env:"HTF_SHIPS_REQUIRED" envDefault:"3"`

	// PlacementSeconds is the ship placement countdown.
	PlacementSeconds int `env:"HTF_PLACEMENT_SECONDS" envDefault:"45"`

	// HeartbeatTimeout is how long a silent connection survives before the
	// presence sweeper evicts it.
	HeartbeatTimeout time.Duration `env:"HTF_HEARTBEAT_TIMEOUT" envDefault:"10s"`

	// Debug enables debug-level logging.
	Debug bool `env:"HTF_DEBUG" envDefault:"false"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// PlacementCountdown returns the placement window as a duration.
func (c Config) PlacementCountdown() time.Duration {
	return time.Duration(c.PlacementSeconds) * time.Second
}

func (c Config) validate() error {
	if c.BoardSize < 2 {
		return fmt.Errorf("board size %d too small, need at least 2", c.BoardSize)
	}
	if c.ShipsRequired < 1 {
		return fmt.Errorf("ships required %d too small, need at least 1", c.ShipsRequired)
	}
	if c.ShipsRequired > c.BoardSize*c.BoardSize {
		return fmt.Errorf("ships required %d exceeds board capacity %d", c.ShipsRequired, c.BoardSize*c.BoardSize)
	}
	if c.PlacementSeconds < 1 {
		return fmt.Errorf("placement seconds %d too small, need at least 1", c.PlacementSeconds)
	}
	if c.HeartbeatTimeout < time.Second {
		return fmt.Errorf("heartbeat timeout %s too small, need at least 1s", c.HeartbeatTimeout)
	}
	return nil
}
