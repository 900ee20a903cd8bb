// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/taskhive/taskhive/internal/auth"
	authpg "github.com/taskhive/taskhive/internal/auth/postgres"
	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/internal/httpapi"
	"github.com/taskhive/taskhive/internal/logging"
	"github.com/taskhive/taskhive/internal/observability"
	"github.com/taskhive/taskhive/internal/store"
	"github.com/taskhive/taskhive/internal/task"
	taskpg "github.com/taskhive/taskhive/internal/task/postgres"
)

// shutdownTimeout bounds graceful shutdown of both HTTP servers.
const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the REST API server along with the observability endpoints.
Runs pending database migrations before accepting traffic.`,
		RunE: runServe,
	}

	cmd.Flags().String("listen_addr", "", "API listen address (overrides config)")
	cmd.Flags().String("metrics_addr", "", "observability listen address (overrides config)")
	cmd.Flags().String("log_format", "", "log format: json or text (overrides config)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.SetDefault("taskhive", version, cfg.LogFormat)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	migrator, err := store.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return err
	}
	if err := migrator.Close(); err != nil {
		return err
	}
	logger.Info("database ready")

	hasher := auth.NewArgon2idHasher(cfg.HashCost)
	issuer, err := auth.NewJWTIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		return err
	}

	authSvc, err := auth.NewServiceWithLogger(authpg.NewUserRepository(pool), hasher, issuer, logger)
	if err != nil {
		return err
	}
	taskSvc, err := task.NewServiceWithLogger(taskpg.NewTaskRepository(pool), logger)
	if err != nil {
		return err
	}

	obsServer := observability.NewServer(cfg.MetricsAddr, func(ctx context.Context) bool {
		return pool.Ping(ctx) == nil
	})

	apiServer, err := httpapi.NewServer(cfg.ListenAddr, authSvc, taskSvc, obsServer.Registry(), logger)
	if err != nil {
		return err
	}

	obsErrs, err := obsServer.Start()
	if err != nil {
		return err
	}
	apiErrs, err := apiServer.Start()
	if err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = obsServer.Stop(shutdownCtx)
		return err
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr := <-apiErrs:
		if serveErr != nil {
			err = oops.With("server", "api").Wrap(serveErr)
		}
	case serveErr := <-obsErrs:
		if serveErr != nil {
			err = oops.With("server", "observability").Wrap(serveErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if stopErr := apiServer.Stop(shutdownCtx); stopErr != nil && err == nil {
		err = stopErr
	}
	if stopErr := obsServer.Stop(shutdownCtx); stopErr != nil && err == nil {
		err = stopErr
	}

	return err
}
