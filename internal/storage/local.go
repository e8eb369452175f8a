package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/amora-app/media-pipeline/internal/adapter"
)

// ErrInvalidKey is returned when a key escapes the storage root
var ErrInvalidKey = errors.New("invalid storage key")

type localBackend struct {
	fs            adapter.FileSystem
	root          string
	publicBaseURL string
}

// NewLocalBackend creates a Backend writing objects below root on the local file system
func NewLocalBackend(fileSystem adapter.FileSystem, root, publicBaseURL string) Backend {
	return &localBackend{
		fs:            fileSystem,
		root:          root,
		publicBaseURL: publicBaseURL,
	}
}

func (b *localBackend) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(b.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

func (b *localBackend) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	p, err := b.resolve(key)
	if err != nil {
		return err
	}

	if err := b.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := b.fs.Create(p)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = b.fs.Remove(p)
		return fmt.Errorf("failed to write file: %w", err)
	}
	return f.Close()
}

func (b *localBackend) Exists(ctx context.Context, key string) (bool, error) {
	p, err := b.resolve(key)
	if err != nil {
		return false, err
	}

	if _, err := b.fs.Stat(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (b *localBackend) Remove(ctx context.Context, key string) error {
	p, err := b.resolve(key)
	if err != nil {
		return err
	}
	return b.fs.Remove(p)
}

func (b *localBackend) URL(key string) string {
	if b.publicBaseURL != "" {
		return joinURL(b.publicBaseURL, key)
	}
	return "/" + strings.TrimLeft(key, "/")
}

func (b *localBackend) Name() string {
	return DriverLocal
}
