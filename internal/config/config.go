// Package config holds the tunables the coastline generator is built
// from: lattice precision, cell splitter limits, and the ambient
// logging/metrics settings, loadable from a YAML file the way the
// teacher's own configuration layer is.
package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full configuration for one generator run.
type Config struct {
	// Lattice precision, in bits per axis. Must match whatever
	// precision upstream input geometry was already encoded at.
	LatticeBits uint `yaml:"lattice_bits"`

	// Cell splitter tuning.
	Workers     int  `yaml:"workers"`
	BaseLevel   uint `yaml:"base_level"`
	MaxLevel    uint `yaml:"max_level"`
	PointBudget int  `yaml:"point_budget"`

	// Logging and metrics.
	LogFile         string        `yaml:"log_file"`
	MetricsInterval time.Duration `yaml:"metrics_interval"`
}

// DefaultConfig returns a configuration with the defaults named in the
// splitter's contract: base level 4, level cap 10, point budget 20000.
func DefaultConfig() *Config {
	return &Config{
		LatticeBits:     30,
		Workers:         runtime.NumCPU(),
		BaseLevel:       4,
		MaxLevel:        10,
		PointBudget:     20000,
		LogFile:         "",
		MetricsInterval: 30 * time.Second,
	}
}

// Load reads a YAML configuration file, applying it on top of
// DefaultConfig so an omitted field keeps its default.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration describes a runnable
// generator.
func (c *Config) Validate() error {
	if c.LatticeBits == 0 || c.LatticeBits > 31 {
		return fmt.Errorf("lattice_bits must be in [1,31], got %d", c.LatticeBits)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if c.MaxLevel < c.BaseLevel {
		return fmt.Errorf("max_level (%d) must be >= base_level (%d)", c.MaxLevel, c.BaseLevel)
	}
	if c.PointBudget < 4 {
		return fmt.Errorf("point_budget must be at least 4, got %d", c.PointBudget)
	}
	return nil
}
