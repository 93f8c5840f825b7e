package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-api/server/src/server/cache"
	"github.com/portfolio-api/server/src/server/config"
	"github.com/portfolio-api/server/src/server/store"
)

func testConfig() *config.Config {
	return &config.Config{
		StoreBackend:      "memory",
		SeedDir:           "../store/testdata/seed",
		CacheBackend:      "none",
		CacheTTL:          time.Hour,
		ConnectRetryDelay: time.Millisecond,
	}
}

type closingBackend struct {
	*store.MemoryStore
	closes   atomic.Int32
	closeErr error
}

func (b *closingBackend) Close() error {
	b.closes.Add(1)
	return b.closeErr
}

type closingCache struct {
	*cache.MemoryStore
	closes   atomic.Int32
	closeErr error
}

func (c *closingCache) Close() error {
	c.closes.Add(1)
	_ = c.MemoryStore.Close()
	return c.closeErr
}

func TestBuildIsIdempotent(t *testing.T) {
	var opens atomic.Int32
	backend := &closingBackend{MemoryStore: store.NewMemoryStore(nil)}
	a := New(testConfig(), WithRepository(func(context.Context) (store.Backend, error) {
		opens.Add(1)
		return backend, nil
	}))
	t.Cleanup(func() { _ = a.Close() })

	first, err := a.Build(context.Background())
	require.NoError(t, err)
	second, err := a.Build(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Same(t, first.Gateway, second.Gateway)
	assert.Equal(t, int32(1), opens.Load())
}

func TestConcurrentBuildSharesDeps(t *testing.T) {
	var opens atomic.Int32
	a := New(testConfig(), WithRepository(func(context.Context) (store.Backend, error) {
		opens.Add(1)
		time.Sleep(10 * time.Millisecond)
		return store.NewMemoryStore(nil), nil
	}))
	t.Cleanup(func() { _ = a.Close() })

	var wg sync.WaitGroup
	results := make([]*Deps, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := a.Build(context.Background())
			assert.NoError(t, err)
			results[i] = d
		}(i)
	}
	wg.Wait()

	for _, d := range results {
		assert.Same(t, results[0], d)
	}
	assert.Equal(t, int32(1), opens.Load())
}

func TestBuildWithoutCache(t *testing.T) {
	a := New(testConfig())
	t.Cleanup(func() { _ = a.Close() })

	deps, err := a.Build(context.Background())
	require.NoError(t, err)

	assert.Nil(t, deps.Cache)
	assert.Nil(t, deps.Snapshots)
	assert.False(t, deps.Gateway.Cached())

	projects, err := deps.Gateway.Projects(context.Background())
	require.NoError(t, err)
	assert.Len(t, projects, 2)
}

func TestBuildWithMemoryCache(t *testing.T) {
	cfg := testConfig()
	cfg.CacheBackend = "memory"
	a := New(cfg)
	t.Cleanup(func() { _ = a.Close() })

	deps, err := a.Build(context.Background())
	require.NoError(t, err)
	require.NotNil(t, deps.Snapshots)
	assert.True(t, deps.Gateway.Cached())
	assert.Equal(t, time.Hour, deps.Snapshots.TTL())

	_, err = deps.Gateway.Experiences(context.Background())
	require.NoError(t, err)
	cached, err := deps.Snapshots.Experiences(context.Background())
	require.NoError(t, err)
	assert.Len(t, cached, 3)
}

func TestBuildRetriesConnect(t *testing.T) {
	var opens atomic.Int32
	a := New(testConfig(), WithRepository(func(context.Context) (store.Backend, error) {
		if opens.Add(1) < 3 {
			return nil, store.ErrUnavailable
		}
		return store.NewMemoryStore(nil), nil
	}))
	t.Cleanup(func() { _ = a.Close() })

	_, err := a.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), opens.Load())
}

func TestFailedBuildIsNotMemoised(t *testing.T) {
	cfg := testConfig()
	cfg.ConnectMaxAttempts = 2
	fail := true
	a := New(cfg, WithRepository(func(context.Context) (store.Backend, error) {
		if fail {
			return nil, store.ErrUnavailable
		}
		return store.NewMemoryStore(nil), nil
	}))
	t.Cleanup(func() { _ = a.Close() })

	_, err := a.Build(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrUnavailable)
	assert.NoError(t, a.Close())

	fail = false
	deps, err := a.Build(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, deps.Gateway)
}

func TestCacheOpenFailureClosesRepository(t *testing.T) {
	backend := &closingBackend{MemoryStore: store.NewMemoryStore(nil)}
	a := New(testConfig(),
		WithRepository(func(context.Context) (store.Backend, error) { return backend, nil }),
		WithCache(func(context.Context) (cache.Store, error) { return nil, errors.New("bad cache url") }),
	)

	_, err := a.Build(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), backend.closes.Load())
}

func TestCloseAggregatesErrors(t *testing.T) {
	backend := &closingBackend{MemoryStore: store.NewMemoryStore(nil), closeErr: errors.New("store close")}
	c := &closingCache{MemoryStore: cache.NewMemoryStore(), closeErr: errors.New("cache close")}
	a := New(testConfig(),
		WithRepository(func(context.Context) (store.Backend, error) { return backend, nil }),
		WithCache(func(context.Context) (cache.Store, error) { return c, nil }),
	)

	_, err := a.Build(context.Background())
	require.NoError(t, err)

	err = a.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store close")
	assert.Contains(t, err.Error(), "cache close")
	assert.Equal(t, int32(1), backend.closes.Load())
	assert.Equal(t, int32(1), c.closes.Load())

	// Nothing left to close.
	require.NoError(t, a.Close())
	assert.Equal(t, int32(1), backend.closes.Load())
}

func TestBuildSQLiteBackend(t *testing.T) {
	cfg := testConfig()
	cfg.StoreBackend = "sqlite"
	cfg.DatabasePath = filepath.Join(t.TempDir(), "portfolio.db")
	a := New(cfg)
	t.Cleanup(func() { _ = a.Close() })

	deps, err := a.Build(context.Background())
	require.NoError(t, err)

	projects, err := deps.Gateway.Projects(context.Background())
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestBuildLocalAssets(t *testing.T) {
	cfg := testConfig()
	cfg.AssetsDir = t.TempDir()
	a := New(cfg)
	t.Cleanup(func() { _ = a.Close() })

	deps, err := a.Build(context.Background())
	require.NoError(t, err)
	require.NotNil(t, deps.Assets)
	require.NotNil(t, deps.LocalFiles)
	assert.Equal(t, "/files", deps.LocalFiles.BaseURL())
}

func TestMissingSeedDirStartsEmpty(t *testing.T) {
	cfg := testConfig()
	cfg.SeedDir = filepath.Join(t.TempDir(), "missing")
	a := New(cfg)
	t.Cleanup(func() { _ = a.Close() })

	deps, err := a.Build(context.Background())
	require.NoError(t, err)
	projects, err := deps.Gateway.Projects(context.Background())
	require.NoError(t, err)
	assert.Empty(t, projects)
}

type failingMigrator struct {
	migrates atomic.Int32
	closes   atomic.Int32
}

func (m *failingMigrator) Migrate(context.Context) error {
	m.migrates.Add(1)
	return errors.New("syntax error at or near \"TABLE\"")
}

func (m *failingMigrator) Close() error {
	m.closes.Add(1)
	return nil
}

func TestFailedMigrationStopsConnectLoop(t *testing.T) {
	m := &failingMigrator{}
	policy := store.RetryPolicy{Delay: time.Millisecond}

	_, err := store.Connect(context.Background(), "postgres", policy, func(ctx context.Context) (store.Backend, error) {
		if err := migrateStore(ctx, m); err != nil {
			return nil, err
		}
		return nil, nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrating schema")
	assert.Equal(t, int32(1), m.migrates.Load())
	assert.Equal(t, int32(1), m.closes.Load())
}
