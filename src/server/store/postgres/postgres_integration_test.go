//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/orlangure/gnomock"
	pgpreset "github.com/orlangure/gnomock/preset/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-api/server/src/server/data"
	"github.com/portfolio-api/server/src/server/store"
)

func startPostgres(t *testing.T) string {
	t.Helper()

	container, err := gnomock.Start(pgpreset.Preset(
		pgpreset.WithUser("portfolio", "portfolio"),
		pgpreset.WithDatabase("portfolio"),
	))
	require.NoError(t, err)
	t.Cleanup(func() { _ = gnomock.Stop(container) })

	return fmt.Sprintf("host=%s port=%d user=portfolio password=portfolio dbname=portfolio sslmode=disable",
		container.Host, container.DefaultPort())
}

func TestPostgresStore(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC))

	s, err := New(ctx, dsn, clock)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate(ctx))
	// A second run is a no-op.
	require.NoError(t, s.Migrate(ctx))

	p, err := store.LoadSeed("../testdata/seed")
	require.NoError(t, err)
	require.NoError(t, s.Seed(ctx, p))

	projects, err := s.Projects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, []string{"go", "redis", "postgres"}, projects[0].Tags)

	exps, err := s.Experiences(ctx)
	require.NoError(t, err)
	require.Len(t, exps, 3)
	assert.Equal(t, "2021-06 - present", exps[0].Period)

	companies, err := s.CompanyDurations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []data.CompanyDuration{
		{Name: "Company A", Duration: "4 years"},
		{Name: "Company B", Duration: "6 months"},
	}, companies)

	total, err := s.TotalExperience(ctx)
	require.NoError(t, err)
	assert.Equal(t, "5 years", total.TotalDuration)

	require.NoError(t, s.Ping(ctx))
}

func TestPostgresUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := New(ctx, "host=127.0.0.1 port=1 user=x dbname=x sslmode=disable connect_timeout=1", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrUnavailable)
}
