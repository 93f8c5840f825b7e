// Package cache stores portfolio datasets as JSON snapshots with a TTL.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("cache: key not found")

// Store is a byte-oriented key/value cache. Any error other than
// ErrNotFound means the cache itself could not be used.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set writes value and its expiry in one operation.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Clear removes every key under KeyPrefix.
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// KeyPrefix namespaces every key written by this service.
const KeyPrefix = "portfolio:"

const (
	KeyProjects         = KeyPrefix + "projects"
	KeyFormations       = KeyPrefix + "formations"
	KeyCertifications   = KeyPrefix + "certifications"
	KeyExperiences      = KeyPrefix + "experiences"
	KeySocialMedia      = KeyPrefix + "social_media"
	KeyCompanyDurations = KeyPrefix + "company_duration"
	KeyTotalExperience  = KeyPrefix + "total_experience"
)

// Keys lists every dataset key.
var Keys = []string{
	KeyProjects,
	KeyFormations,
	KeyCertifications,
	KeyExperiences,
	KeySocialMedia,
	KeyCompanyDurations,
	KeyTotalExperience,
}
