// Package app assembles the server's long-lived dependencies.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/hashicorp/go-multierror"
	"github.com/jonboulle/clockwork"

	"github.com/portfolio-api/server/src/server/cache"
	"github.com/portfolio-api/server/src/server/config"
	"github.com/portfolio-api/server/src/server/gateway"
	"github.com/portfolio-api/server/src/server/storage"
	"github.com/portfolio-api/server/src/server/store"
	"github.com/portfolio-api/server/src/server/store/postgres"
	"github.com/portfolio-api/server/src/server/store/sqlite"
)

// Deps is the assembled object graph. Every resource in it is owned by the
// Assembler that built it.
type Deps struct {
	Config     *config.Config
	Repository store.Backend
	Cache      cache.Store      // nil when caching is disabled
	Snapshots  *cache.Snapshots // nil when caching is disabled
	Assets     *storage.Assets  // nil when no object storage is configured
	LocalFiles *storage.LocalStorage
	Gateway    *gateway.Gateway
}

type Assembler struct {
	cfg   *config.Config
	clock clockwork.Clock

	openRepository func(context.Context) (store.Backend, error)
	openCache      func(context.Context) (cache.Store, error)

	mu   sync.Mutex
	deps *Deps
}

type Option func(*Assembler)

// WithRepository replaces the configured store backend.
func WithRepository(open func(context.Context) (store.Backend, error)) Option {
	return func(a *Assembler) { a.openRepository = open }
}

// WithCache replaces the configured cache backend. open may return nil to
// disable caching.
func WithCache(open func(context.Context) (cache.Store, error)) Option {
	return func(a *Assembler) { a.openCache = open }
}

func WithClock(c clockwork.Clock) Option {
	return func(a *Assembler) { a.clock = c }
}

func New(cfg *config.Config, opts ...Option) *Assembler {
	a := &Assembler{cfg: cfg, clock: clockwork.NewRealClock()}
	a.openRepository = a.defaultRepository
	a.openCache = a.defaultCache
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Build creates the dependencies on first use and returns the same Deps on
// every later call. A failed build leaves nothing open and may be retried.
func (a *Assembler) Build(ctx context.Context) (*Deps, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.deps != nil {
		return a.deps, nil
	}

	policy := store.RetryPolicy{Delay: a.cfg.ConnectRetryDelay, MaxAttempts: a.cfg.ConnectMaxAttempts}
	repo, err := store.Connect(ctx, a.cfg.StoreBackend, policy, a.openRepository)
	if err != nil {
		return nil, fmt.Errorf("connecting %s store: %w", a.cfg.StoreBackend, err)
	}

	c, err := a.openCache(ctx)
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("opening %s cache: %w", a.cfg.CacheBackend, err)
	}

	deps := &Deps{Config: a.cfg, Repository: repo, Cache: c}

	if err := a.openStorage(deps); err != nil {
		_ = repo.Close()
		if c != nil {
			_ = c.Close()
		}
		return nil, err
	}

	var capability gateway.Cache
	if c != nil {
		deps.Snapshots = cache.NewSnapshots(c, a.cfg.CacheTTL)
		capability = deps.Snapshots
	}
	deps.Gateway = gateway.New(repo, capability)

	slog.Info("Dependencies assembled",
		"store", a.cfg.StoreBackend,
		"cache", a.cfg.CacheBackend,
		"assets", deps.Assets != nil,
	)
	a.deps = deps
	return deps, nil
}

// Close releases everything Build opened. It is safe to call when Build
// never ran or failed.
func (a *Assembler) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.deps == nil {
		return nil
	}

	var result *multierror.Error
	if err := a.deps.Repository.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("closing store: %w", err))
	}
	if a.deps.Cache != nil {
		if err := a.deps.Cache.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("closing cache: %w", err))
		}
	}
	a.deps = nil
	return result.ErrorOrNil()
}

func (a *Assembler) defaultRepository(ctx context.Context) (store.Backend, error) {
	switch a.cfg.StoreBackend {
	case "memory":
		s := store.NewMemoryStore(a.clock)
		if err := s.LoadDir(a.cfg.SeedDir); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				slog.Warn("Seed directory not found, starting empty", "dir", a.cfg.SeedDir)
				return s, nil
			}
			return nil, backoff.Permanent(err)
		}
		return s, nil

	case "postgres":
		s, err := postgres.New(ctx, a.cfg.DatabaseURL, a.clock)
		if err != nil {
			return nil, err
		}
		if err := migrateStore(ctx, s); err != nil {
			return nil, err
		}
		return s, nil

	case "sqlite":
		s, err := sqlite.New(ctx, a.cfg.DatabasePath, a.clock)
		if err != nil {
			return nil, err
		}
		if err := migrateStore(ctx, s); err != nil {
			return nil, err
		}
		return s, nil

	default:
		return nil, backoff.Permanent(fmt.Errorf("unknown store backend %q", a.cfg.StoreBackend))
	}
}

type migrator interface {
	Migrate(ctx context.Context) error
	Close() error
}

// migrateStore applies the schema to a freshly opened store. A failed
// migration closes the store and stops the connect loop.
func migrateStore(ctx context.Context, s migrator) error {
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return backoff.Permanent(fmt.Errorf("migrating schema: %w", err))
	}
	return nil
}

func (a *Assembler) defaultCache(ctx context.Context) (cache.Store, error) {
	switch a.cfg.CacheBackend {
	case "", "none":
		return nil, nil

	case "memory":
		return cache.NewMemoryStore(), nil

	case "redis":
		r := cache.NewRedis(cache.RedisConfig{
			Addr:     a.cfg.RedisAddr(),
			Password: a.cfg.RedisPassword,
			DB:       a.cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := r.Ping(pingCtx); err != nil {
			slog.Warn("Redis unreachable at startup, reads fall through to the store until it recovers",
				"addr", a.cfg.RedisAddr(), "error", err)
		}
		return r, nil

	default:
		return nil, fmt.Errorf("unknown cache backend %q", a.cfg.CacheBackend)
	}
}

func (a *Assembler) openStorage(deps *Deps) error {
	switch {
	case a.cfg.S3Endpoint != "":
		s, err := storage.NewS3(storage.S3Config{
			Endpoint:  a.cfg.S3Endpoint,
			Bucket:    a.cfg.S3Bucket,
			Region:    a.cfg.S3Region,
			AccessKey: a.cfg.S3AccessKey,
			SecretKey: a.cfg.S3SecretKey,
			UseSSL:    a.cfg.S3UseSSL,
		})
		if err != nil {
			return err
		}
		deps.Assets = storage.NewAssets(s, 15*time.Minute)

	case a.cfg.AssetsDir != "":
		s, err := storage.NewLocal(a.cfg.AssetsDir, "/files")
		if err != nil {
			return err
		}
		deps.Assets = storage.NewAssets(s, 0)
		deps.LocalFiles = s
	}
	return nil
}
