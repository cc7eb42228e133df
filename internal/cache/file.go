package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Houeta/staff-directory/internal/models"
)

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

// FileStore keeps each key as <dir>/<key>.json.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) Load(_ context.Context, key string) (models.Record, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	return models.DecodeRecord(data)
}

// Save writes to a temporary file in the same directory and renames it into place,
// so a reader never sees a partially written record.
func (s *FileStore) Save(_ context.Context, key string, rec models.Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	if err = os.MkdirAll(s.dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err = tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod cache file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close cache file: %w", err)
	}

	if err = os.Rename(tmp.Name(), s.path(key)); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove cache file: %w", err)
	}
	return nil
}

// Ping checks that the cache directory is usable.
func (s *FileStore) Ping(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat cache dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cache path %q is not a directory", s.dir)
	}
	return nil
}
