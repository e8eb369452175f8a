package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/amora-app/media-pipeline/internal/domain"
	"github.com/amora-app/media-pipeline/internal/logger"
	"github.com/amora-app/media-pipeline/internal/media/keys"
)

// Uploader writes and removes renditions through a Backend
type Uploader struct {
	backend Backend
	bucket  string
}

// NewUploader creates an uploader; bucket is used to recover keys from path-style URLs
func NewUploader(backend Backend, bucket string) *Uploader {
	return &Uploader{backend: backend, bucket: bucket}
}

// Upload writes data under key and returns its public URL.
// Failures are wrapped in domain.ErrUploadFailed.
func (u *Uploader) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := u.backend.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrUploadFailed, key, err)
	}

	logger.DebugCtx(ctx, "Uploaded object",
		zap.String("key", key),
		zap.String("contentType", contentType),
		zap.Int("size", len(data)),
		zap.String("backend", u.backend.Name()),
	)

	return u.backend.URL(key), nil
}

// Delete removes key and reports success; a missing key counts as success
func (u *Uploader) Delete(ctx context.Context, key string) bool {
	if _, err := u.Remove(ctx, key); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to delete object: %w", err), zap.String("key", key))
		return false
	}
	return true
}

// Remove deletes key if it exists and reports whether it existed
func (u *Uploader) Remove(ctx context.Context, key string) (bool, error) {
	exists, err := u.backend.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to check object: %w", err)
	}
	if !exists {
		return false, nil
	}

	if err := u.backend.Remove(ctx, key); err != nil {
		return true, fmt.Errorf("failed to remove object: %w", err)
	}
	return true, nil
}

// Exists reports whether an object is stored under key
func (u *Uploader) Exists(ctx context.Context, key string) (bool, error) {
	return u.backend.Exists(ctx, key)
}

// URL returns the public URL of key
func (u *Uploader) URL(key string) string {
	return u.backend.URL(key)
}

// KeyFromURL recovers the storage key behind a public URL produced by this uploader
func (u *Uploader) KeyFromURL(rawURL string) string {
	if base := u.backend.URL(""); base != "/" && strings.HasPrefix(rawURL, base) {
		return strings.TrimPrefix(rawURL, base)
	}
	return keys.FromURL(rawURL, u.bucket)
}

// Backend returns the underlying backend name
func (u *Uploader) Backend() string {
	return u.backend.Name()
}
