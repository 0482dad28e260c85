// Package storage provides blob storage for contract source files with
// Azure Blob Storage and MinIO implementations behind a single System.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/JaimeStill/covenant/pkg/lifecycle"
)

// System manages blob storage operations and lifecycle coordination.
type System interface {
	// Start registers a startup hook that ensures the container or bucket exists.
	Start(lc *lifecycle.Coordinator) error
	// Upload streams size bytes from reader to the blob at key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Download returns a stream for the blob at key. The caller must close it.
	// Returns ErrNotFound if the blob does not exist.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the blob at key. Returns ErrNotFound if the blob does not exist.
	Delete(ctx context.Context, key string) error
	// Exists reports whether a blob exists at key.
	Exists(ctx context.Context, key string) (bool, error)
}

// New creates the storage system selected by cfg.Provider. An empty
// provider selects Azure, as Finalize does.
// Clients are constructed eagerly; no network call is made until Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = ProviderAzure
	}
	logger = logger.With("system", "storage", "provider", provider)

	switch provider {
	case ProviderAzure:
		return newAzure(cfg, logger)
	case ProviderMinio:
		return newMinio(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Provider)
	}
}

// ValidateKey rejects empty keys and keys containing path traversal segments.
func ValidateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
