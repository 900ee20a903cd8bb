// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/internal/store"
)

// NewMigrateCmd creates the migrate subcommand and its children.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, func(m *store.Migrator) error {
					return m.Up()
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations (destructive)",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, func(m *store.Migrator) error {
					return m.Down()
				})
			},
		},
		newMigrateStepsCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Show the current migration version",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, func(m *store.Migrator) error {
					version, dirty, err := m.Version()
					if err != nil {
						return err
					}
					cmd.Printf("version: %d dirty: %t\n", version, dirty)
					return nil
				})
			},
		},
		newMigrateForceCmd(),
	)

	return cmd
}

func newMigrateStepsCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "steps",
		Short: "Apply n migrations (negative rolls back)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				return m.Steps(n)
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 1, "number of migrations to apply (negative rolls back)")
	return cmd
}

func newMigrateForceCmd() *cobra.Command {
	var version int
	cmd := &cobra.Command{
		Use:   "force",
		Short: "Set the migration version without running migrations",
		Long: `Set the migration version without running migrations.
Use only for recovering from a dirty state after manually fixing the database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				return m.Force(version)
			})
		},
	}
	cmd.Flags().IntVar(&version, "version", 0, "migration version to force")
	_ = cmd.MarkFlagRequired("version")
	return cmd
}

// withMigrator loads configuration, opens a migrator, runs fn, and closes it.
func withMigrator(cmd *cobra.Command, fn func(*store.Migrator) error) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errDatabaseURLRequired()
	}

	migrator, err := store.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}

	if err := fn(migrator); err != nil {
		_ = migrator.Close()
		return err
	}

	if err := migrator.Close(); err != nil {
		return err
	}
	cmd.Println("done")
	return nil
}
