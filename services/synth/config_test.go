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
	"os"
	"path/filepath"
	"testing"

	"github.com/AleutianAI/pbesynth/services/synth/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, search.StrategyBottomUp, cfg.DefaultStrategy())
	assert.Equal(t, 10, cfg.Search.DefaultBound)
	assert.True(t, cfg.Observability.TracingEnabled)
	assert.False(t, cfg.Observability.MetricsEnabled)
}

func TestLoadConfig_File(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("testdata", "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, search.StrategyTopDown, cfg.DefaultStrategy())
	assert.Equal(t, 500, cfg.Search.DefaultBound)
	assert.False(t, cfg.Observability.TracingEnabled)
	assert.True(t, cfg.Observability.MetricsEnabled)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
	assert.Equal(t, "pbesynth-test", cfg.Observability.ServiceName)
}

func TestLoadConfig_JSONFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"search": {"strategy": "td", "default_bound": 42}}`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, search.StrategyTopDown, cfg.DefaultStrategy())
	assert.Equal(t, 42, cfg.Search.DefaultBound)
	assert.Equal(t, "info", cfg.Observability.LogLevel)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_UnparsableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search: [unterminated"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	t.Setenv("PBESYNTH_STRATEGY", "bottom-up")
	t.Setenv("PBESYNTH_DEFAULT_BOUND", "13")
	t.Setenv("PBESYNTH_TRACING_ENABLED", "1")
	t.Setenv("PBESYNTH_METRICS_ENABLED", "false")
	t.Setenv("PBESYNTH_LOG_LEVEL", "warn")
	t.Setenv("PBESYNTH_JSON_LOGS", "true")

	cfg, err := LoadConfig(filepath.Join("testdata", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, search.StrategyBottomUp, cfg.DefaultStrategy())
	assert.Equal(t, 13, cfg.Search.DefaultBound)
	assert.True(t, cfg.Observability.TracingEnabled)
	assert.False(t, cfg.Observability.MetricsEnabled)
	assert.Equal(t, "warn", cfg.Observability.LogLevel)
	assert.True(t, cfg.Observability.JSONLogs)
}

func TestLoadConfig_InvalidEnvNumberIgnored(t *testing.T) {
	t.Setenv("PBESYNTH_DEFAULT_BOUND", "lots")
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Search.DefaultBound)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown strategy", func(c *Config) { c.Search.Strategy = "sideways" }},
		{"empty strategy", func(c *Config) { c.Search.Strategy = "" }},
		{"negative bound", func(c *Config) { c.Search.DefaultBound = -1 }},
		{"bad log level", func(c *Config) { c.Observability.LogLevel = "loud" }},
		{"no service name", func(c *Config) { c.Observability.ServiceName = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestConfig_DefaultStrategyFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Search.Strategy = "sideways"
	assert.Equal(t, search.StrategyBottomUp, cfg.DefaultStrategy())
}
