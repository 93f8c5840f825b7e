package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"

	"github.com/portfolio-api/server/src/server/store"
	"github.com/portfolio-api/server/src/server/store/migrations"
	"github.com/portfolio-api/server/src/server/store/sqlstore"
)

type PostgresStore struct {
	*sqlstore.Store
}

// New opens a pooled connection and verifies it with a ping.
func New(ctx context.Context, databaseURL string, clock clockwork.Clock) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w: %w", store.ErrUnavailable, err)
	}

	return &PostgresStore{Store: sqlstore.New(db, migrations.Postgres, databaseURL, clock)}, nil
}
