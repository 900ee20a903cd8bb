// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

// Package config loads service configuration from defaults, an optional
// YAML file, environment variables, and command-line flags, in that order
// of increasing precedence.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/taskhive/taskhive/internal/auth"
)

// envPrefix namespaces TaskHive environment variables, e.g.
// TASKHIVE_JWT_SECRET or TASKHIVE_LISTEN_ADDR.
const envPrefix = "TASKHIVE_"

// Config holds the full service configuration.
type Config struct {
	// ListenAddr is the API listen address.
	ListenAddr string `koanf:"listen_addr"`

	// MetricsAddr is the observability listen address.
	MetricsAddr string `koanf:"metrics_addr"`

	// LogFormat selects the log output format: "json" or "text".
	LogFormat string `koanf:"log_format"`

	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string `koanf:"database_url"`

	// JWTSecret signs bearer tokens. Rotating it invalidates all sessions.
	JWTSecret string `koanf:"jwt_secret"`

	// TokenTTL is the bearer token lifetime.
	TokenTTL time.Duration `koanf:"token_ttl"`

	// HashCost is the argon2id time cost for password hashing.
	HashCost int `koanf:"hash_cost"`
}

func defaults() map[string]any {
	return map[string]any{
		"listen_addr":  ":8080",
		"metrics_addr": "127.0.0.1:9100",
		"log_format":   "json",
		"token_ttl":    auth.DefaultTokenTTL,
		"hash_cost":    auth.DefaultHashCost,
	}
}

// Load builds the configuration. path names an optional YAML file; an empty
// path skips the file layer. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, oops.Code("CONFIG_DEFAULTS_FAILED").Wrap(err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").With("path", path).Wrap(err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, oops.Code("CONFIG_ENV_FAILED").Wrap(err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	// DATABASE_URL is the conventional name many platforms inject.
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	return &cfg, nil
}

// Validate checks that required settings are present and sane.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("listen_addr is required")
	}
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database_url is required (set TASKHIVE_DATABASE_URL or DATABASE_URL)")
	}
	if c.JWTSecret == "" {
		return oops.Code("CONFIG_INVALID").Errorf("jwt_secret is required (set TASKHIVE_JWT_SECRET)")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			With("log_format", c.LogFormat).
			Errorf("log_format must be json or text")
	}
	if c.TokenTTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("token_ttl must be positive")
	}
	if c.HashCost < 1 {
		return oops.Code("CONFIG_INVALID").Errorf("hash_cost must be at least 1")
	}
	return nil
}
