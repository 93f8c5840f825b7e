package store

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-api/server/src/server/data"
)

func newSeededMemoryStore(t *testing.T) *MemoryStore {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC))
	s := NewMemoryStore(clock)
	require.NoError(t, s.LoadDir("testdata/seed"))
	return s
}

func TestMemoryStoreLoadDir(t *testing.T) {
	s := newSeededMemoryStore(t)
	ctx := context.Background()

	projects, err := s.Projects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "Portfolio API", projects[0].Title)
	assert.Equal(t, []string{"go", "redis", "postgres"}, projects[0].Tags)
	assert.False(t, projects[1].Active)

	formations, err := s.Formations(ctx)
	require.NoError(t, err)
	assert.Len(t, formations, 1)

	certs, err := s.Certifications(ctx)
	require.NoError(t, err)
	assert.Len(t, certs, 2)

	links, err := s.SocialMedia(ctx)
	require.NoError(t, err)
	assert.Len(t, links, 2)
}

func TestMemoryStoreExperiences(t *testing.T) {
	s := newSeededMemoryStore(t)

	exps, err := s.Experiences(context.Background())
	require.NoError(t, err)
	require.Len(t, exps, 3)

	assert.Equal(t, "2 years and 7 months", exps[0].Duration)
	assert.Equal(t, "2021-06 - present", exps[0].Period)
	assert.True(t, exps[0].Active)

	assert.Equal(t, "1 year and 5 months", exps[1].Duration)
	assert.Equal(t, "2020-01 - 2021-06", exps[1].Period)

	assert.Equal(t, "6 months", exps[2].Duration)
	assert.False(t, exps[2].Active)
}

func TestMemoryStoreAggregates(t *testing.T) {
	s := newSeededMemoryStore(t)
	ctx := context.Background()

	companies, err := s.CompanyDurations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []data.CompanyDuration{
		{Name: "Company A", Duration: "4 years"},
		{Name: "Company B", Duration: "6 months"},
	}, companies)

	total, err := s.TotalExperience(ctx)
	require.NoError(t, err)
	assert.Equal(t, "5 years", total.TotalDuration)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := newSeededMemoryStore(t)
	ctx := context.Background()

	projects, err := s.Projects(ctx)
	require.NoError(t, err)
	projects[0].Title = "changed"
	projects[0].Tags[0] = "changed"

	again, err := s.Projects(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Portfolio API", again[0].Title)
	assert.Equal(t, "go", again[0].Tags[0])
}

func TestLoadSeedMissingDir(t *testing.T) {
	_, err := LoadSeed("testdata/does-not-exist")
	require.Error(t, err)
}

func TestLoadSeedMissingFilesAreEmpty(t *testing.T) {
	p, err := LoadSeed(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, p.Projects)
	assert.Empty(t, p.Experiences)
}
