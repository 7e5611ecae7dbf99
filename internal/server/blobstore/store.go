// Package blobstore issues time-limited capability URLs for an object store
// holding document ciphertext, and checks whether an object exists. The
// server never reads or writes blob bytes itself.
package blobstore

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securedoc/internal/server/config"
)

// Store is the capability interface the upload and download flows depend on.
type Store interface {
	// PresignPut returns a URL that lets the holder write exactly key until ttl elapses.
	PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error)
	// PresignGet returns a URL that lets the holder read exactly key until ttl elapses.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	// Exists reports whether an object has been written under key.
	Exists(ctx context.Context, key string) (bool, error)
}

// New builds the backend selected by cfg.BlobBackend.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.BlobBackend {
	case config.BlobBackendS3:
		return NewS3Store(ctx, cfg)
	case config.BlobBackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
	}
}
