// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package synth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/pbesynth/services/synth/search"
)

// Config contains all synthesizer configuration.
//
// Thread Safety: Safe to read concurrently. Not safe to modify after creation.
type Config struct {
	// Search contains search defaults.
	Search SearchConfig `json:"search" yaml:"search"`

	// Observability contains tracing, metrics and logging settings.
	Observability ObservabilityConfig `json:"observability" yaml:"observability"`
}

// SearchConfig contains search defaults applied to tasks that leave them
// unset.
type SearchConfig struct {
	Strategy     string `json:"strategy" yaml:"strategy" validate:"required"`
	DefaultBound int    `json:"default_bound" yaml:"default_bound" validate:"gte=0"`
}

// ObservabilityConfig contains observability settings.
type ObservabilityConfig struct {
	TracingEnabled bool   `json:"tracing_enabled" yaml:"tracing_enabled"`
	MetricsEnabled bool   `json:"metrics_enabled" yaml:"metrics_enabled"`
	LogLevel       string `json:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	JSONLogs       bool   `json:"json_logs" yaml:"json_logs"`
	ServiceName    string `json:"service_name" yaml:"service_name" validate:"required"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Search: SearchConfig{
			Strategy:     string(search.StrategyBottomUp),
			DefaultBound: 10,
		},
		Observability: ObservabilityConfig{
			TracingEnabled: true,
			MetricsEnabled: false,
			LogLevel:       "info",
			ServiceName:    "pbesynth",
		},
	}
}

// LoadConfig loads configuration with priority: env > file > defaults.
//
// Inputs:
//   - configPath: Path to YAML/JSON config file (optional, can be empty).
//
// Outputs:
//   - Config: Merged configuration.
//   - error: Non-nil if the file exists but is invalid, or the merged
//     configuration fails validation.
func LoadConfig(configPath string) (Config, error) {
	config := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, &config); err != nil {
			return config, fmt.Errorf("load config file: %w", err)
		}
	}

	loadConfigFromEnv(&config)

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

func loadConfigFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, config); err != nil {
		if jsonErr := json.Unmarshal(data, config); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	return nil
}

func loadConfigFromEnv(config *Config) {
	if v := os.Getenv("PBESYNTH_STRATEGY"); v != "" {
		config.Search.Strategy = v
	}
	if v := os.Getenv("PBESYNTH_DEFAULT_BOUND"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			config.Search.DefaultBound = i
		}
	}

	if v := os.Getenv("PBESYNTH_TRACING_ENABLED"); v != "" {
		config.Observability.TracingEnabled = v == "true" || v == "1"
	}
	if v := os.Getenv("PBESYNTH_METRICS_ENABLED"); v != "" {
		config.Observability.MetricsEnabled = v == "true" || v == "1"
	}
	if v := os.Getenv("PBESYNTH_LOG_LEVEL"); v != "" {
		config.Observability.LogLevel = v
	}
	if v := os.Getenv("PBESYNTH_JSON_LOGS"); v != "" {
		config.Observability.JSONLogs = v == "true" || v == "1"
	}
}

// Validate checks that the configuration is valid.
//
// Outputs:
//   - error: Wraps ErrInvalidConfig; non-nil if configuration is invalid.
func (c Config) Validate() error {
	if err := taskValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := search.ParseStrategy(c.Search.Strategy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// DefaultStrategy returns the configured strategy. It assumes Validate
// passed and falls back to bottom-up otherwise.
func (c Config) DefaultStrategy() search.Strategy {
	s, err := search.ParseStrategy(c.Search.Strategy)
	if err != nil {
		return search.StrategyBottomUp
	}
	return s
}
