package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/portfolio-api/server/src/server/data"
)

var (
	// ErrUnavailable means the backing store could not be reached.
	ErrUnavailable = errors.New("store: unavailable")
	// ErrQuery means the store was reached but the query failed.
	ErrQuery = errors.New("store: query failed")
)

// Repository is the read side of the portfolio store. Every method returns
// the full dataset in a stable order; derived fields are already filled.
type Repository interface {
	Projects(ctx context.Context) ([]data.Project, error)
	Formations(ctx context.Context) ([]data.Formation, error)
	Certifications(ctx context.Context) ([]data.Certification, error)
	Experiences(ctx context.Context) ([]data.Experience, error)
	SocialMedia(ctx context.Context) ([]data.SocialMedia, error)
	CompanyDurations(ctx context.Context) ([]data.CompanyDuration, error)
	TotalExperience(ctx context.Context) (data.TotalDuration, error)
}

// Seeder replaces the stored datasets with p.
type Seeder interface {
	Seed(ctx context.Context, p data.Portfolio) error
}

// Backend is a Repository owning a connection.
type Backend interface {
	Repository
	Seeder
	Ping(ctx context.Context) error
	Close() error
}

// Classify wraps a driver error as ErrUnavailable or ErrQuery.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrQuery) {
		return fmt.Errorf("%s: %w", op, err)
	}
	// Caller cancellation is neither a store outage nor a bad query.
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrQuery, err)
}
