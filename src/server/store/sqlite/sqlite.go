package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jonboulle/clockwork"
	_ "modernc.org/sqlite"

	"github.com/portfolio-api/server/src/server/store"
	"github.com/portfolio-api/server/src/server/store/migrations"
	"github.com/portfolio-api/server/src/server/store/sqlstore"
)

type SQLiteStore struct {
	*sqlstore.Store
}

// DSN returns the connection string used for dbPath.
func DSN(dbPath string) string {
	return dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
}

func New(ctx context.Context, dbPath string, clock clockwork.Clock) (*SQLiteStore, error) {
	dsn := DSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite performs best with a single writer
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w: %w", store.ErrUnavailable, err)
	}

	return &SQLiteStore{Store: sqlstore.New(db, migrations.SQLite, dsn, clock)}, nil
}
