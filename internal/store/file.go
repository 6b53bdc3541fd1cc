package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// File stores each key as a single file under a directory.
//
// Writes go to a temporary file in the same directory which is then renamed
// over the target, so a reader never observes a partially written blob.
type File struct {
	dir string
}

// NewFile creates the directory if needed and returns a File store rooted at it.
func NewFile(dir string) (*File, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("store directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create store directory %s: %w", dir, err)
	}
	return &File{dir: filepath.Clean(dir)}, nil
}

// Dir returns the directory backing the store.
func (s *File) Dir() string { return s.dir }

// Get reads the blob stored under key.
func (s *File) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkKey(key); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return b, nil
}

// Set replaces the blob stored under key.
func (s *File) Set(ctx context.Context, key string, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkKey(key); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(blob); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace key %q: %w", key, err)
	}
	return nil
}

func (s *File) Close() error { return nil }

// path maps a key to a file name. Keys like "@sales_data" are kept readable,
// anything that could escape the directory is escaped.
func (s *File) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}
