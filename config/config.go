// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package config loads the rollup daemon configuration from an optional YAML
// file, with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the daemon settings.
type Config struct {
	// Listen is the HTTP listen address of the sequencer API.
	Listen string `yaml:"listen"`
	// DataDir holds the batch store and the snark keys.
	DataDir string `yaml:"dataDir"`
	// LogLevel is a zerolog level string ("debug", "info", ...).
	LogLevel string `yaml:"logLevel"`
	// QueueSize bounds the number of pending transfers.
	QueueSize int `yaml:"queueSize"`
}

// Default returns the configuration used when no file and no environment
// overrides are present.
func Default() Config {
	return Config{
		Listen:    ":8080",
		DataDir:   "data",
		LogLevel:  "info",
		QueueSize: 32,
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is not empty), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(buf, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("ROLLUP_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("ROLLUP_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("ROLLUP_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("ROLLUP_QUEUE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing ROLLUP_QUEUE_SIZE: %w", err)
		}
		c.QueueSize = n
	}
	return nil
}

// Validate rejects configurations the daemon cannot start with.
func (c Config) Validate() error {
	if c.Listen == "" {
		return errors.New("listen address must not be empty")
	}
	if c.DataDir == "" {
		return errors.New("data directory must not be empty")
	}
	if c.QueueSize <= 0 {
		return errors.New("queue size must be positive")
	}
	return nil
}
