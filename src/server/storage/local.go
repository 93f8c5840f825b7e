package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage stores files on the local filesystem and serves them under
// baseURL.
type LocalStorage struct {
	baseDir string
	baseURL string
}

// NewLocal creates a local filesystem storage.
// baseDir is the directory where files are stored.
// baseURL is the URL prefix for generating download URLs (e.g., "/files").
func NewLocal(baseDir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage dir: %w", err)
	}
	return &LocalStorage{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (s *LocalStorage) Upload(_ context.Context, key string, reader io.Reader, _ string) error {
	path := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, reader); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// PresignedURL returns the public path of key. It fails when the file does
// not exist so callers can answer 404.
func (s *LocalStorage) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	if _, err := os.Stat(filepath.Join(s.baseDir, filepath.FromSlash(key))); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s", s.baseURL, key), nil
}

func (s *LocalStorage) Ping(_ context.Context) error {
	_, err := os.Stat(s.baseDir)
	return err
}

// BaseURL is the prefix under which Handler must be mounted.
func (s *LocalStorage) BaseURL() string { return s.baseURL }

// Handler serves stored files; mount it at BaseURL.
func (s *LocalStorage) Handler() http.Handler {
	return http.StripPrefix(s.baseURL, http.FileServer(http.Dir(s.baseDir)))
}
