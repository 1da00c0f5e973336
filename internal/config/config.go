// Package config loads hexwar settings from the environment. Command-line
// flags override these values.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/roach88/hexwar/internal/persist"
)

// Config holds every environment-driven setting.
type Config struct {
	DB            string        `env:"HEXWAR_DB"             envDefault:"hexwar.db"`
	Addr          string        `env:"HEXWAR_ADDR"           envDefault:"127.0.0.1:8080"`
	ServerURL     string        `env:"HEXWAR_SERVER_URL"     envDefault:"http://127.0.0.1:8080"`
	PollInterval  time.Duration `env:"HEXWAR_POLL_INTERVAL"  envDefault:"2s"`
	FrameInterval time.Duration `env:"HEXWAR_FRAME_INTERVAL" envDefault:"20ms"`
	TickScale     int64         `env:"HEXWAR_TICK_SCALE"     envDefault:"10"`
	TickOverhead  int64         `env:"HEXWAR_TICK_OVERHEAD"  envDefault:"2"`
	Codec         string        `env:"HEXWAR_CODEC"          envDefault:"json"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("config: poll interval must be positive, got %s", c.PollInterval)
	}
	if c.FrameInterval <= 0 {
		return fmt.Errorf("config: frame interval must be positive, got %s", c.FrameInterval)
	}
	if c.TickScale <= 0 {
		return fmt.Errorf("config: tick scale must be positive, got %d", c.TickScale)
	}
	if c.TickOverhead < 0 {
		return fmt.Errorf("config: tick overhead must not be negative, got %d", c.TickOverhead)
	}
	if _, err := persist.CodecByName(c.Codec); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
