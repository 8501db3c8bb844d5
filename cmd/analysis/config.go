package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config controls one analysis run.
type Config struct {
	DocLen   int           `yaml:"docLen"`
	Window   int           `yaml:"window"`
	Queries  int           `yaml:"queries"`
	FPRate   float64       `yaml:"fpRate"`
	Alphabet string        `yaml:"alphabet"`
	Seed     uint64        `yaml:"seed"`
	Workers  int           `yaml:"workers"`
	Logging  LoggingConfig `yaml:"logging"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the settings used when no file or flag overrides them.
func DefaultConfig() Config {
	return Config{
		DocLen:   1 << 20,
		Window:   12,
		Queries:  100_000,
		FPRate:   0.01,
		Alphabet: "acgt",
		Seed:     1,
		Workers:  1,
		Logging:  LoggingConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first setting that cannot produce a run.
func (c Config) Validate() error {
	switch {
	case c.Window < 1:
		return errors.New("window must be at least 1")
	case c.DocLen < c.Window:
		return fmt.Errorf("docLen %d is shorter than window %d", c.DocLen, c.Window)
	case c.Queries < 1:
		return errors.New("queries must be at least 1")
	case c.FPRate <= 0 || c.FPRate >= 1:
		return fmt.Errorf("fpRate %g outside (0, 1)", c.FPRate)
	case len(c.Alphabet) < 2:
		return errors.New("alphabet needs at least 2 symbols")
	}
	return nil
}
