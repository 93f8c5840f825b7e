package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/portfolio-api/server/src/server/config"
	"github.com/portfolio-api/server/src/server/store/migrations"
	"github.com/portfolio-api/server/src/server/store/sqlite"
)

var migrateDown bool

func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "Roll back all migrations instead of applying them")
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long:  "Apply (or with --down, roll back) the schema for the configured SQL store backend.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dialect, dsn, err := migrationTarget(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()

		if migrateDown {
			slog.Info("Rolling back migrations", "dialect", dialect)
			return migrations.Down(ctx, dialect, dsn)
		}
		slog.Info("Running migrations", "dialect", dialect)
		if err := migrations.Up(ctx, dialect, dsn); err != nil {
			return err
		}
		slog.Info("Migrations completed successfully", "dialect", dialect)
		return nil
	},
}

func migrationTarget(cfg *config.Config) (migrations.Dialect, string, error) {
	switch cfg.StoreBackend {
	case "postgres":
		return migrations.Postgres, cfg.DatabaseURL, nil
	case "sqlite":
		return migrations.SQLite, sqlite.DSN(cfg.DatabasePath), nil
	default:
		return "", "", fmt.Errorf("store backend %q has no schema to migrate", cfg.StoreBackend)
	}
}
