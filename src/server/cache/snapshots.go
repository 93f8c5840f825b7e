package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/portfolio-api/server/src/server/data"
)

// Snapshots reads and writes whole datasets as JSON values, one key per
// dataset, each write carrying the configured TTL.
type Snapshots struct {
	store Store
	ttl   time.Duration
}

func NewSnapshots(store Store, ttl time.Duration) *Snapshots {
	return &Snapshots{store: store, ttl: ttl}
}

// TTL returns the expiry applied to every write.
func (s *Snapshots) TTL() time.Duration { return s.ttl }

// Load decodes the value at key. A missing key yields ErrNotFound.
func Load[T any](ctx context.Context, store Store, key string) (T, error) {
	var v T
	raw, err := store.Get(ctx, key)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decoding %s: %w", key, err)
	}
	return v, nil
}

// Save encodes v and writes it at key with ttl.
func Save[T any](ctx context.Context, store Store, key string, v T, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return store.Set(ctx, key, raw, ttl)
}

func (s *Snapshots) Projects(ctx context.Context) ([]data.Project, error) {
	return Load[[]data.Project](ctx, s.store, KeyProjects)
}

func (s *Snapshots) SetProjects(ctx context.Context, v []data.Project) error {
	return Save(ctx, s.store, KeyProjects, v, s.ttl)
}

func (s *Snapshots) Formations(ctx context.Context) ([]data.Formation, error) {
	return Load[[]data.Formation](ctx, s.store, KeyFormations)
}

func (s *Snapshots) SetFormations(ctx context.Context, v []data.Formation) error {
	return Save(ctx, s.store, KeyFormations, v, s.ttl)
}

func (s *Snapshots) Certifications(ctx context.Context) ([]data.Certification, error) {
	return Load[[]data.Certification](ctx, s.store, KeyCertifications)
}

func (s *Snapshots) SetCertifications(ctx context.Context, v []data.Certification) error {
	return Save(ctx, s.store, KeyCertifications, v, s.ttl)
}

func (s *Snapshots) Experiences(ctx context.Context) ([]data.Experience, error) {
	return Load[[]data.Experience](ctx, s.store, KeyExperiences)
}

func (s *Snapshots) SetExperiences(ctx context.Context, v []data.Experience) error {
	return Save(ctx, s.store, KeyExperiences, v, s.ttl)
}

func (s *Snapshots) SocialMedia(ctx context.Context) ([]data.SocialMedia, error) {
	return Load[[]data.SocialMedia](ctx, s.store, KeySocialMedia)
}

func (s *Snapshots) SetSocialMedia(ctx context.Context, v []data.SocialMedia) error {
	return Save(ctx, s.store, KeySocialMedia, v, s.ttl)
}

func (s *Snapshots) CompanyDurations(ctx context.Context) ([]data.CompanyDuration, error) {
	return Load[[]data.CompanyDuration](ctx, s.store, KeyCompanyDurations)
}

func (s *Snapshots) SetCompanyDurations(ctx context.Context, v []data.CompanyDuration) error {
	return Save(ctx, s.store, KeyCompanyDurations, v, s.ttl)
}

func (s *Snapshots) TotalExperience(ctx context.Context) (data.TotalDuration, error) {
	return Load[data.TotalDuration](ctx, s.store, KeyTotalExperience)
}

func (s *Snapshots) SetTotalExperience(ctx context.Context, v data.TotalDuration) error {
	return Save(ctx, s.store, KeyTotalExperience, v, s.ttl)
}

// Invalidate removes the given dataset keys, or every dataset key when
// none are given.
func (s *Snapshots) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return s.store.Clear(ctx)
	}
	return s.store.Delete(ctx, keys...)
}
