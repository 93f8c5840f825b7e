package store

import (
	"context"
	"slices"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/portfolio-api/server/src/server/data"
)

// MemoryStore keeps the portfolio in process, typically loaded from seed
// files at startup.
type MemoryStore struct {
	mu        sync.RWMutex
	portfolio data.Portfolio
	clock     clockwork.Clock
}

func NewMemoryStore(clock clockwork.Clock) *MemoryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryStore{clock: clock}
}

// LoadDir replaces the contents with the seed files in dir.
func (s *MemoryStore) LoadDir(dir string) error {
	p, err := LoadSeed(dir)
	if err != nil {
		return err
	}
	return s.Seed(context.Background(), p)
}

func (s *MemoryStore) Seed(_ context.Context, p data.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.portfolio = data.Portfolio{
		Projects:       slices.Clone(p.Projects),
		Formations:     slices.Clone(p.Formations),
		Certifications: slices.Clone(p.Certifications),
		Experiences:    slices.Clone(p.Experiences),
		SocialMedia:    slices.Clone(p.SocialMedia),
	}
	return nil
}

func (s *MemoryStore) Projects(_ context.Context) ([]data.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]data.Project, len(s.portfolio.Projects))
	for i, p := range s.portfolio.Projects {
		p.Tags = slices.Clone(p.Tags)
		out[i] = p
	}
	return out, nil
}

func (s *MemoryStore) Formations(_ context.Context) ([]data.Formation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.portfolio.Formations), nil
}

func (s *MemoryStore) Certifications(_ context.Context) ([]data.Certification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.portfolio.Certifications), nil
}

func (s *MemoryStore) Experiences(_ context.Context) ([]data.Experience, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return data.Derive(s.portfolio.Experiences, s.clock.Now()), nil
}

func (s *MemoryStore) SocialMedia(_ context.Context) ([]data.SocialMedia, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.portfolio.SocialMedia), nil
}

func (s *MemoryStore) CompanyDurations(_ context.Context) ([]data.CompanyDuration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return data.CompanyDurations(s.portfolio.Experiences, s.clock.Now()), nil
}

func (s *MemoryStore) TotalExperience(_ context.Context) (data.TotalDuration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return data.TotalExperience(s.portfolio.Experiences, s.clock.Now()), nil
}

func (s *MemoryStore) Ping(_ context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
