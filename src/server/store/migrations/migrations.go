// Package migrations holds the embedded schema for the SQL backends.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed postgres/*.sql sqlite/*.sql
var migrationFiles embed.FS

const migrationsTable = "schema_migrations_portfolio"

// Dialect names a SQL backend. Its value is also the database/sql driver name.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Up applies all pending migrations to the database at dsn.
func Up(ctx context.Context, dialect Dialect, dsn string) error {
	m, err := open(ctx, dialect, dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	_, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	if dirty {
		return errors.New("migration is dirty, please fix it before proceeding")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, _, _ := m.Version()
	slog.Info("Database migration completed", "dialect", dialect, "version", version)
	return nil
}

// Down reverts every migration.
func Down(ctx context.Context, dialect Dialect, dsn string) error {
	m, err := open(ctx, dialect, dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down failed: %w", err)
	}
	slog.Info("Database migrations reverted", "dialect", dialect)
	return nil
}

func open(ctx context.Context, dialect Dialect, dsn string) (*migrate.Migrate, error) {
	sourceDriver, err := iofs.New(migrationFiles, string(dialect))
	if err != nil {
		return nil, fmt.Errorf("failed to create iofs driver: %w", err)
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	var dbDriver database.Driver
	switch dialect {
	case Postgres:
		dbDriver, err = postgres.WithInstance(db, &postgres.Config{MigrationsTable: migrationsTable})
	case SQLite:
		dbDriver, err = sqlite.WithInstance(db, &sqlite.Config{MigrationsTable: migrationsTable})
	default:
		err = fmt.Errorf("unknown dialect %q", dialect)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create %s driver: %w", dialect, err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, string(dialect), dbDriver)
	if err != nil {
		_ = dbDriver.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}
