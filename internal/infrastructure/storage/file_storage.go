package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

var _ ObjectStorage = (*FileObjectStorage)(nil)

// FileObjectStorage stores objects as files on an afero filesystem.
// It backs the "local" disk served under the public URL and the in-memory
// store used in development and tests.
type FileObjectStorage struct {
	fs afero.Fs
}

// NewFileObjectStorage wraps an afero filesystem
func NewFileObjectStorage(fs afero.Fs) *FileObjectStorage {
	return &FileObjectStorage{fs: fs}
}

// NewLocalObjectStorage stores objects below root on the OS filesystem
func NewLocalObjectStorage(root string) (*FileObjectStorage, error) {
	if root == "" {
		return nil, fmt.Errorf("local storage path is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return NewFileObjectStorage(afero.NewBasePathFs(afero.NewOsFs(), root)), nil
}

// NewMemoryObjectStorage keeps objects in memory
func NewMemoryObjectStorage() *FileObjectStorage {
	return NewFileObjectStorage(afero.NewMemMapFs())
}

// Fs exposes the underlying filesystem, e.g. for serving files over HTTP
func (s *FileObjectStorage) Fs() afero.Fs {
	return s.fs
}

// Upload writes data under storageKey. Existing objects are never overwritten.
func (s *FileObjectStorage) Upload(ctx context.Context, storageKey string, data []byte, _ string) error {
	name, err := cleanKey(storageKey)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", storageKey, err)
	}

	f, err := s.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%s: %w", storageKey, ErrObjectExists)
		}
		return fmt.Errorf("failed to create object %s: %w", storageKey, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(name)
		return fmt.Errorf("failed to write object %s: %w", storageKey, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close object %s: %w", storageKey, err)
	}
	return nil
}

// DeleteObject deletes an object. Missing objects are not an error.
func (s *FileObjectStorage) DeleteObject(_ context.Context, storageKey string) error {
	name, err := cleanKey(storageKey)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(name); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object %s: %w", storageKey, err)
	}
	return nil
}

// Read returns the object's bytes
func (s *FileObjectStorage) Read(storageKey string) ([]byte, error) {
	name, err := cleanKey(storageKey)
	if err != nil {
		return nil, err
	}
	return afero.ReadFile(s.fs, name)
}

// cleanKey normalises a key into a rooted path and rejects traversal outside the root.
func cleanKey(storageKey string) (string, error) {
	if strings.TrimSpace(storageKey) == "" {
		return "", ErrEmptyKey
	}
	name := path.Clean("/" + storageKey)
	if name == "/" {
		return "", ErrEmptyKey
	}
	return name, nil
}
