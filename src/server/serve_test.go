package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-api/server/src/server/app"
	"github.com/portfolio-api/server/src/server/config"
	"github.com/portfolio-api/server/src/server/handlers"
	"github.com/portfolio-api/server/src/server/store/migrations"
)

func testConfig() *config.Config {
	return &config.Config{
		StoreBackend:      "memory",
		SeedDir:           "store/testdata/seed",
		CacheBackend:      "none",
		CacheTTL:          time.Hour,
		ConnectRetryDelay: time.Millisecond,
		CORSOrigins:       []string{"*"},
	}
}

func build(t *testing.T, cfg *config.Config) *app.Deps {
	t.Helper()
	a := app.New(cfg)
	t.Cleanup(func() { _ = a.Close() })
	deps, err := a.Build(context.Background())
	require.NoError(t, err)
	return deps
}

func TestRouterConfigWithoutOptionalDeps(t *testing.T) {
	cfg := testConfig()
	rc := routerConfig(cfg, build(t, cfg))

	assert.Nil(t, rc.Cache)
	assert.Nil(t, rc.Assets)
	assert.Nil(t, rc.Files)
	assert.Nil(t, rc.Auth)
	assert.Nil(t, rc.Health.Cache)
	assert.Nil(t, rc.Health.Storage)
	assert.NotNil(t, rc.Health.Database)

	rec := httptest.NewRecorder()
	handlers.NewRouter(rc).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/cache", nil))
	assert.JSONEq(t, `{"status":"disabled"}`, rec.Body.String())
}

func TestRouterConfigWithCacheAndAssets(t *testing.T) {
	cfg := testConfig()
	cfg.CacheBackend = "memory"
	cfg.AssetsDir = t.TempDir()
	cfg.AuthEnabled = true
	cfg.AuthIssuer = "https://issuer.example.com/"
	cfg.AuthScope = "portfolio:admin"

	rc := routerConfig(cfg, build(t, cfg))
	assert.NotNil(t, rc.Cache)
	assert.NotNil(t, rc.Assets)
	assert.NotNil(t, rc.Health.Cache)
	assert.Equal(t, "/files", rc.FilesPrefix)
	require.NotNil(t, rc.Auth)
	assert.Equal(t, "portfolio:admin", rc.Auth.Scope)

	rec := httptest.NewRecorder()
	handlers.NewRouter(rc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMigrationTarget(t *testing.T) {
	cfg := testConfig()
	_, _, err := migrationTarget(cfg)
	assert.Error(t, err)

	cfg.StoreBackend = "postgres"
	cfg.DatabaseURL = "postgres://localhost/portfolio"
	dialect, dsn, err := migrationTarget(cfg)
	require.NoError(t, err)
	assert.Equal(t, migrations.Postgres, dialect)
	assert.Equal(t, cfg.DatabaseURL, dsn)

	cfg.StoreBackend = "sqlite"
	cfg.DatabasePath = "portfolio.db"
	dialect, dsn, err = migrationTarget(cfg)
	require.NoError(t, err)
	assert.Equal(t, migrations.SQLite, dialect)
	assert.Contains(t, dsn, "portfolio.db")
}
