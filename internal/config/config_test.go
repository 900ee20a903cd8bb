// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/pkg/errutil"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "127.0.0.1:9100", cfg.MetricsAddr)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 1, cfg.HashCost)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("listen_addr: \":9000\"\nlog_format: text\nhash_cost: 3\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 3, cfg.HashCost)
	// Untouched keys keep their defaults.
	assert.Equal(t, "127.0.0.1:9100", cfg.MetricsAddr)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := config.Load("/nonexistent/config.yaml", nil)
	require.Error(t, err)
	assert.Nil(t, cfg)
	errutil.AssertErrorCode(t, err, "CONFIG_FILE_FAILED")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("TASKHIVE_JWT_SECRET", "env-secret")
	t.Setenv("TASKHIVE_LISTEN_ADDR", ":7070")
	t.Setenv("TASKHIVE_TOKEN_TTL", "30m")

	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.JWTSecret)
	assert.Equal(t, ":7070", cfg.ListenAddr)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
}

func TestLoad_DatabaseURLFallback(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://fallback:5432/taskhive")

	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://fallback:5432/taskhive", cfg.DatabaseURL)
}

func TestLoad_PrefixedDatabaseURLWins(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://fallback:5432/taskhive")
	t.Setenv("TASKHIVE_DATABASE_URL", "postgres://primary:5432/taskhive")

	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://primary:5432/taskhive", cfg.DatabaseURL)
}

func TestLoad_FlagsOverrideEverything(t *testing.T) {
	t.Setenv("TASKHIVE_LISTEN_ADDR", ":7070")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("listen_addr", "", "API listen address")
	require.NoError(t, flags.Parse([]string{"--listen_addr", ":6060"}))

	cfg, err := config.Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, ":6060", cfg.ListenAddr)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			ListenAddr:  ":8080",
			MetricsAddr: "127.0.0.1:9100",
			LogFormat:   "json",
			DatabaseURL: "postgres://localhost:5432/taskhive",
			JWTSecret:   "secret",
			TokenTTL:    time.Hour,
			HashCost:    1,
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "missing listen addr", mutate: func(c *config.Config) { c.ListenAddr = "" }},
		{name: "missing database url", mutate: func(c *config.Config) { c.DatabaseURL = "" }},
		{name: "missing jwt secret", mutate: func(c *config.Config) { c.JWTSecret = "" }},
		{name: "bad log format", mutate: func(c *config.Config) { c.LogFormat = "xml" }},
		{name: "zero token ttl", mutate: func(c *config.Config) { c.TokenTTL = 0 }},
		{name: "zero hash cost", mutate: func(c *config.Config) { c.HashCost = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
		})
	}
}
