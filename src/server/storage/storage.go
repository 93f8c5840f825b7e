package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ObjectStorage defines the interface for file storage operations.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Ping(ctx context.Context) error
}

// ErrInvalidName is returned for asset names that escape the assets prefix.
var ErrInvalidName = errors.New("storage: invalid asset name")

const assetPrefix = "assets/"

// Assets serves downloadable portfolio files such as CV documents and
// logos out of an ObjectStorage.
type Assets struct {
	Storage ObjectStorage
	Expiry  time.Duration
}

func NewAssets(s ObjectStorage, expiry time.Duration) *Assets {
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &Assets{Storage: s, Expiry: expiry}
}

// Key maps an asset name to its object key.
func Key(name string) (string, error) {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	clean := path.Clean(name)
	if clean != name || clean == "." || strings.HasPrefix(clean, "../") || clean == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return assetPrefix + clean, nil
}

// URL returns a time-limited download URL for the named asset.
func (a *Assets) URL(ctx context.Context, name string) (string, error) {
	key, err := Key(name)
	if err != nil {
		return "", err
	}
	return a.Storage.PresignedURL(ctx, key, a.Expiry)
}

// Put uploads an asset, deriving the content type from its extension.
func (a *Assets) Put(ctx context.Context, name string, r io.Reader) error {
	key, err := Key(name)
	if err != nil {
		return err
	}
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return a.Storage.Upload(ctx, key, r, contentType)
}

func (a *Assets) Ping(ctx context.Context) error {
	return a.Storage.Ping(ctx)
}
