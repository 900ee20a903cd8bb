// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package main

import (
	"context"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/taskhive/taskhive/internal/auth"
	authpg "github.com/taskhive/taskhive/internal/auth/postgres"
	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/internal/store"
	"github.com/taskhive/taskhive/pkg/errutil"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	username string
	password string
	timeout  time.Duration
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create an initial user account",
		Long: `Creates an initial user account for a fresh deployment.
This command is idempotent - it succeeds without change if the
username already exists.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.username, "username", "admin", "username for the seed account")
	cmd.Flags().StringVar(&cfg.password, "password", "", "password for the seed account (required)")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string, seedCfg *seedConfig) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errDatabaseURLRequired()
	}

	// Use cmd.Context() to respect SIGINT/SIGTERM signals
	ctx, cancel := context.WithTimeout(cmd.Context(), seedCfg.timeout)
	defer cancel()

	cmd.Println("Connecting to database...")
	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	cmd.Println("Running migrations...")
	migrator, err := store.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return err
	}
	_ = migrator.Close()

	hasher := auth.NewArgon2idHasher(cfg.HashCost)
	issuer, err := auth.NewJWTIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		return err
	}
	svc, err := auth.NewService(authpg.NewUserRepository(pool), hasher, issuer)
	if err != nil {
		return err
	}

	user, err := svc.SignUp(ctx, seedCfg.username, seedCfg.password)
	if err != nil {
		// An existing account with this username means the seed already ran.
		if errutil.Code(err) == "AUTH_USERNAME_TAKEN" {
			cmd.Printf("User %q already exists, nothing to do\n", seedCfg.username)
			return nil
		}
		return err
	}

	cmd.Printf("Created user %q (id %s)\n", user.Username, user.ID.String())
	return nil
}

func errDatabaseURLRequired() error {
	return oops.Code("CONFIG_INVALID").Errorf("database_url is required (set TASKHIVE_DATABASE_URL or DATABASE_URL)")
}
