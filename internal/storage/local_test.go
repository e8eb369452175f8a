package storage_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amora-app/media-pipeline/internal/adapter"
	"github.com/amora-app/media-pipeline/internal/config"
	"github.com/amora-app/media-pipeline/internal/storage"
)

func bytesReader(s string) io.Reader {
	return bytes.NewReader([]byte(s))
}

func TestLocalBackend_Lifecycle(t *testing.T) {
	root := t.TempDir()
	backend := storage.NewLocalBackend(adapter.NewFileSystem(), root, "")
	ctx := context.Background()
	key := "media/profile/42/1772366400_01habc.webp"

	exists, err := backend.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, backend.Put(ctx, key, bytesReader("webp"), 4, "image/webp"))

	data, err := os.ReadFile(filepath.Join(root, "media", "profile", "42", "1772366400_01habc.webp"))
	require.NoError(t, err)
	assert.Equal(t, []byte("webp"), data)

	exists, err = backend.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, backend.Remove(ctx, key))

	exists, err = backend.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalBackend_RemoveMissing(t *testing.T) {
	backend := storage.NewLocalBackend(adapter.NewFileSystem(), t.TempDir(), "")

	err := backend.Remove(context.Background(), "media/chat/1/none.bin")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLocalBackend_InvalidKey(t *testing.T) {
	backend := storage.NewLocalBackend(adapter.NewFileSystem(), t.TempDir(), "")
	ctx := context.Background()

	for _, key := range []string{"", "/", "../etc/passwd", "media/../../x"} {
		t.Run(key, func(t *testing.T) {
			err := backend.Put(ctx, key, bytesReader("x"), 1, "text/plain")
			assert.ErrorIs(t, err, storage.ErrInvalidKey)

			_, err = backend.Exists(ctx, key)
			assert.ErrorIs(t, err, storage.ErrInvalidKey)
		})
	}
}

func TestLocalBackend_URL(t *testing.T) {
	fs := adapter.NewFileSystem()

	assert.Equal(t, "/media/chat/1/a.mp4", storage.NewLocalBackend(fs, "storage", "").URL("media/chat/1/a.mp4"))
	assert.Equal(t, "http://localhost:8080/files/media/chat/1/a.mp4",
		storage.NewLocalBackend(fs, "storage", "http://localhost:8080/files/").URL("/media/chat/1/a.mp4"))
}

func TestNew(t *testing.T) {
	t.Run("local driver", func(t *testing.T) {
		backend, err := storage.New(context.Background(), config.StorageConfig{
			Driver:    storage.DriverLocal,
			LocalPath: t.TempDir(),
		}, adapter.NewFileSystem())
		require.NoError(t, err)
		assert.Equal(t, storage.DriverLocal, backend.Name())
	})

	t.Run("unsupported driver", func(t *testing.T) {
		backend, err := storage.New(context.Background(), config.StorageConfig{Driver: "gcs"}, adapter.NewFileSystem())
		assert.Nil(t, backend)
		assert.ErrorContains(t, err, "unsupported storage driver")
	})
}
