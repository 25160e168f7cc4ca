// Package storage provides the object stores that hold payment artifacts.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	infraconfig "github.com/rentdesk/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

var (
	// ErrEmptyKey is returned when an operation is given an empty storage key
	ErrEmptyKey = errors.New("storage key is required")
	// ErrObjectExists is returned when writing to a key that already holds an object
	ErrObjectExists = errors.New("object already exists")
)

// ObjectStorage stores write-once objects addressed by a relative key.
// Upload fails with ErrObjectExists when the key is taken. Deleting a missing
// object is not an error.
type ObjectStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	DeleteObject(ctx context.Context, storageKey string) error
}

// New builds the object store selected by cfg.Type.
func New(ctx context.Context, cfg *infraconfig.StorageConfig, logger *zap.Logger) (ObjectStorage, error) {
	switch cfg.Type {
	case "s3":
		s, err := NewS3ObjectStorage(cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	case "local":
		return NewLocalObjectStorage(cfg.LocalPath)
	case "memory":
		return NewMemoryObjectStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Type)
	}
}

// PublicURL joins the public URL prefix and a stored relative path.
// It returns "" when path is empty.
func PublicURL(prefix, path string) string {
	if path == "" {
		return ""
	}
	if prefix == "" {
		return path
	}
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(path, "/")
}
