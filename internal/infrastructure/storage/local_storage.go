package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	catalogapp "github.com/ecomstore/backend/internal/application/catalog"
	"go.uber.org/zap"
)

// LocalStorage keeps images in a directory on the API host.
// Files are served by the API itself, so download URLs are plain paths.
type LocalStorage struct {
	root    string
	baseURL string
	logger  *zap.Logger
}

// NewLocalStorage creates the directory if needed and returns a LocalStorage
// rooted at dir. baseURL prefixes the keys in download URLs.
func NewLocalStorage(dir, baseURL string, logger *zap.Logger) (*LocalStorage, error) {
	if dir == "" {
		return nil, errors.New("local storage directory is required")
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid local storage directory: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create local storage directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if baseURL == "" {
		baseURL = "/uploads/"
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalStorage{root: root, baseURL: baseURL, logger: logger}, nil
}

// LocalPath resolves key inside the storage root, rejecting keys that escape it
func (s *LocalStorage) LocalPath(key string) (string, error) {
	if key == "" {
		return "", errEmptyKey
	}
	if !filepath.IsLocal(filepath.FromSlash(key)) {
		return "", fmt.Errorf("storage key %q escapes the storage root", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

// Upload writes the image atomically through a temp file in the target directory
func (s *LocalStorage) Upload(_ context.Context, key string, data []byte, _ string) error {
	target, err := s.LocalPath(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	s.logger.Debug("Image stored on disk", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}

// GenerateDownloadURL returns the public path of key; local URLs never expire
func (s *LocalStorage) GenerateDownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if _, err := s.LocalPath(key); err != nil {
		return "", time.Time{}, err
	}
	return s.baseURL + key, time.Now().Add(expiresIn), nil
}

// ObjectExists reports whether key is a regular file
func (s *LocalStorage) ObjectExists(_ context.Context, key string) (bool, error) {
	p, err := s.LocalPath(key)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", key, err)
	}
	return info.Mode().IsRegular(), nil
}

// DeleteObject removes key; deleting a missing key is not an error
func (s *LocalStorage) DeleteObject(_ context.Context, key string) error {
	p, err := s.LocalPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Root returns the absolute storage directory
func (s *LocalStorage) Root() string {
	return s.root
}

var (
	_ catalogapp.ObjectStorage    = (*LocalStorage)(nil)
	_ catalogapp.LocalFileLocator = (*LocalStorage)(nil)
)
