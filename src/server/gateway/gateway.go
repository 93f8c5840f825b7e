// Package gateway serves portfolio datasets through an optional cache,
// falling back to the repository on a miss or a cache failure.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/portfolio-api/server/src/server/cache"
	"github.com/portfolio-api/server/src/server/data"
	"github.com/portfolio-api/server/src/server/store"
)

// Cache is the typed snapshot capability the gateway reads through.
// *cache.Snapshots implements it. Get methods return cache.ErrNotFound on
// a miss.
type Cache interface {
	Projects(ctx context.Context) ([]data.Project, error)
	SetProjects(ctx context.Context, v []data.Project) error
	Formations(ctx context.Context) ([]data.Formation, error)
	SetFormations(ctx context.Context, v []data.Formation) error
	Certifications(ctx context.Context) ([]data.Certification, error)
	SetCertifications(ctx context.Context, v []data.Certification) error
	Experiences(ctx context.Context) ([]data.Experience, error)
	SetExperiences(ctx context.Context, v []data.Experience) error
	SocialMedia(ctx context.Context) ([]data.SocialMedia, error)
	SetSocialMedia(ctx context.Context, v []data.SocialMedia) error
	CompanyDurations(ctx context.Context) ([]data.CompanyDuration, error)
	SetCompanyDurations(ctx context.Context, v []data.CompanyDuration) error
	TotalExperience(ctx context.Context) (data.TotalDuration, error)
	SetTotalExperience(ctx context.Context, v data.TotalDuration) error
}

type dataset[T any] struct {
	name  string
	get   func(Cache, context.Context) (T, error)
	set   func(Cache, context.Context, T) error
	fetch func(store.Repository, context.Context) (T, error)
}

var (
	projects = dataset[[]data.Project]{
		"projects", Cache.Projects, Cache.SetProjects, store.Repository.Projects,
	}
	formations = dataset[[]data.Formation]{
		"formations", Cache.Formations, Cache.SetFormations, store.Repository.Formations,
	}
	certifications = dataset[[]data.Certification]{
		"certifications", Cache.Certifications, Cache.SetCertifications, store.Repository.Certifications,
	}
	experiences = dataset[[]data.Experience]{
		"experiences", Cache.Experiences, Cache.SetExperiences, store.Repository.Experiences,
	}
	socialMedia = dataset[[]data.SocialMedia]{
		"social_media", Cache.SocialMedia, Cache.SetSocialMedia, store.Repository.SocialMedia,
	}
	companyDurations = dataset[[]data.CompanyDuration]{
		"company_durations", Cache.CompanyDurations, Cache.SetCompanyDurations, store.Repository.CompanyDurations,
	}
	totalExperience = dataset[data.TotalDuration]{
		"total_experience", Cache.TotalExperience, Cache.SetTotalExperience, store.Repository.TotalExperience,
	}
)

// loadTimeout bounds a shared repository load once it is detached from
// the request that started it.
const loadTimeout = 30 * time.Second

type Gateway struct {
	repo   store.Repository
	cache  Cache
	flight singleflight.Group
}

// New returns a gateway over repo. A nil c disables caching: every read
// goes to the repository and nothing is written.
func New(repo store.Repository, c Cache) *Gateway {
	return &Gateway{repo: repo, cache: c}
}

// Cached reports whether a cache is configured.
func (g *Gateway) Cached() bool { return g.cache != nil }

func (g *Gateway) Projects(ctx context.Context) ([]data.Project, error) {
	return read(ctx, g, projects)
}

func (g *Gateway) Formations(ctx context.Context) ([]data.Formation, error) {
	return read(ctx, g, formations)
}

func (g *Gateway) Certifications(ctx context.Context) ([]data.Certification, error) {
	return read(ctx, g, certifications)
}

func (g *Gateway) Experiences(ctx context.Context) ([]data.Experience, error) {
	return read(ctx, g, experiences)
}

func (g *Gateway) SocialMedia(ctx context.Context) ([]data.SocialMedia, error) {
	return read(ctx, g, socialMedia)
}

func (g *Gateway) CompanyDurations(ctx context.Context) ([]data.CompanyDuration, error) {
	return read(ctx, g, companyDurations)
}

func (g *Gateway) TotalExperience(ctx context.Context) (data.TotalDuration, error) {
	return read(ctx, g, totalExperience)
}

// read returns the cached value when the key is present, even if it is
// empty. Otherwise it loads from the repository and writes the result back.
// Concurrent misses for one dataset share a single repository call.
func read[T any](ctx context.Context, g *Gateway, d dataset[T]) (T, error) {
	if g.cache != nil {
		v, err := d.get(g.cache, ctx)
		switch {
		case err == nil:
			recordLookup(ctx, d.name, resultHit)
			return v, nil
		case errors.Is(err, cache.ErrNotFound):
			recordLookup(ctx, d.name, resultMiss)
		default:
			recordLookup(ctx, d.name, resultError)
			slog.Warn("Cache read failed, using repository", "dataset", d.name, "error", err)
		}
	}

	// The shared load outlives any one caller; each caller stops waiting
	// when its own context ends.
	ch := g.flight.DoChan(d.name, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		v, err := d.fetch(g.repo, loadCtx)
		if err != nil {
			return nil, err
		}
		if g.cache != nil {
			if err := d.set(g.cache, loadCtx, v); err != nil {
				recordWriteError(loadCtx, d.name)
				slog.Warn("Cache write failed", "dataset", d.name, "error", err)
			}
		}
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}
