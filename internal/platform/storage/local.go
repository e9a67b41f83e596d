package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// URLPrefix is the public path under which local photos are served.
const URLPrefix = "/uploads/"

// LocalStorage writes photos into a directory on the local filesystem.
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates dir if needed.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

// Dir returns the upload directory.
func (s *LocalStorage) Dir() string {
	return s.dir
}

// URL returns the public path of a stored photo.
func (s *LocalStorage) URL(name string) string {
	return URLPrefix + name
}

// path resolves name inside the upload directory and rejects path traversal.
func (s *LocalStorage) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid stored name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}

// Save writes r to name. Existing files are never overwritten.
func (s *LocalStorage) Save(ctx context.Context, name string, r io.Reader) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(p)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return f.Close()
}

// Remove deletes name. Removing a missing file is not an error.
func (s *LocalStorage) Remove(ctx context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
