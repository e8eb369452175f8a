package storage

import (
	"context"
	"io"
	"strings"
)

const (
	DriverMinio = "minio"
	DriverS3    = "s3"
	DriverLocal = "local"
)

// Backend is an object store addressed by key
//
//go:generate mockgen -source=backend.go -destination=../mocks/storage.go -package=mocks -mock_names=Backend=MockBackend
type Backend interface {
	// Put writes size bytes from r under key, overwriting any existing object
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Exists reports whether an object is stored under key
	Exists(ctx context.Context, key string) (bool, error)

	// Remove deletes the object stored under key
	Remove(ctx context.Context, key string) error

	// URL returns the public URL of key
	URL(key string) string

	// Name returns the driver name
	Name() string
}

// joinURL joins a base URL and a key with exactly one slash
func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
