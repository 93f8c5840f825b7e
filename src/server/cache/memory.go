package cache

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryStore is an in-process Store backed by ttlcache.
type MemoryStore struct {
	cache *ttlcache.Cache[string, []byte]
}

func NewMemoryStore() *MemoryStore {
	c := ttlcache.New(
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)
	go c.Start()
	return &MemoryStore{cache: c}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	item := s.cache.Get(key)
	if item == nil || item.IsExpired() {
		return nil, ErrNotFound
	}
	return slices.Clone(item.Value()), nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.cache.Set(key, slices.Clone(value), ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		s.cache.Delete(k)
	}
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	for _, k := range s.cache.Keys() {
		if strings.HasPrefix(k, KeyPrefix) {
			s.cache.Delete(k)
		}
	}
	return nil
}

func (s *MemoryStore) Ping(_ context.Context) error { return nil }

func (s *MemoryStore) Close() error {
	s.cache.Stop()
	return nil
}
