package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	if content == "" {
		return filepath.Join(tmpDir, "nonexistent.yaml")
	}
	configFile := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0600))
	return configFile
}

func TestLoadAPIConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *APIConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
server:
  port: 9090
  write_timeout: 2400
storage:
  driver: minio
  bucket: media
  endpoint: "localhost:9000"
  access_key: minio
  secret_key: minio123
  use_ssl: false
  public_base_url: "https://cdn.example.com"
transcoder:
  ffmpeg_path: /usr/local/bin/ffmpeg
  timeout: "30m"
  max_concurrent: 4
limits:
  max_image_size: 2048
cloudflare:
  api_token: token
  zone_id: zone
nats:
  url: "nats://localhost:4222"
`,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, "minio", cfg.Storage.Driver)
				assert.Equal(t, "media", cfg.Storage.Bucket)
				assert.Equal(t, "localhost:9000", cfg.Storage.Endpoint)
				assert.False(t, cfg.Storage.UseSSL)
				assert.Equal(t, "https://cdn.example.com", cfg.Storage.PublicBaseURL)
				assert.Equal(t, "/usr/local/bin/ffmpeg", cfg.Transcoder.FFmpegPath)
				assert.Equal(t, 30*time.Minute, cfg.Transcoder.Timeout)
				assert.Equal(t, 4, cfg.Transcoder.MaxConcurrent)
				assert.Equal(t, int64(2048), cfg.Limits.MaxImageSize)
				assert.True(t, cfg.Cloudflare.CDNEnabled())
				assert.True(t, cfg.NATS.Enabled())
			},
		},
		{
			name: "config with defaults",
			configFile: `
storage:
  bucket: media
`,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 720, cfg.Server.WriteTimeout)
				assert.Equal(t, "minio", cfg.Storage.Driver)
				assert.True(t, cfg.Storage.UseSSL)
				assert.Equal(t, "ffmpeg", cfg.Transcoder.FFmpegPath)
				assert.Equal(t, "ffprobe", cfg.Transcoder.FFprobePath)
				assert.Equal(t, []string{"/opt/homebrew/bin", "/usr/bin", "/usr/local/bin"}, cfg.Transcoder.SearchPaths)
				assert.Equal(t, 10*time.Minute, cfg.Transcoder.Timeout)
				assert.Equal(t, 2, cfg.Transcoder.MaxConcurrent)
				assert.Equal(t, 4, cfg.Transform.WorkerConcurrency)
				assert.Equal(t, 60*time.Second, cfg.Transform.TransformTimeout)
				assert.Equal(t, int64(10*1024*1024), cfg.Limits.MaxImageSize)
				assert.Equal(t, int64(100*1024*1024), cfg.Limits.MaxVideoSize)
				assert.Equal(t, int64(50*1024*1024), cfg.Limits.MaxAudioSize)
				assert.Equal(t, int64(100*1024*1024), cfg.Limits.MaxFileSize)
				assert.Equal(t, "MEDIA_EVENTS", cfg.NATS.StreamName)
				assert.False(t, cfg.Cloudflare.CDNEnabled())
				assert.False(t, cfg.NATS.Enabled())
			},
		},
		{
			name: "local driver",
			configFile: `
storage:
  driver: local
  local_path: /var/media
`,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.Equal(t, "local", cfg.Storage.Driver)
				assert.Equal(t, "/var/media", cfg.Storage.LocalPath)
			},
		},
		{
			name: "unknown driver",
			configFile: `
storage:
  driver: ftp
  bucket: media
`,
			expectError: true,
		},
		{
			name: "write timeout shorter than a transcode",
			configFile: `
server:
  write_timeout: 600
storage:
  bucket: media
transcoder:
  timeout: "10m"
`,
			expectError: true,
		},
		{
			name: "write timeout disabled",
			configFile: `
server:
  write_timeout: 0
storage:
  bucket: media
`,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.Equal(t, 0, cfg.Server.WriteTimeout)
			},
		},
		{
			name:        "missing bucket",
			configFile:  "",
			expectError: true,
		},
		{
			name: "invalid yaml",
			configFile: `
				storage:
				  bucket: media
				  use_ssl: invalid
			`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadAPIConfig(writeConfig(t, tt.configFile), t.TempDir())

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestLoadMediaConfig_EnvOverride(t *testing.T) {
	t.Setenv("MEDIA_STORAGE_DRIVER", "s3")
	t.Setenv("MEDIA_STORAGE_BUCKET", "env-bucket")
	t.Setenv("MEDIA_TRANSCODER_THREADS", "2")

	cfg, err := LoadMediaConfig(writeConfig(t, ""), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "s3", cfg.Storage.Driver)
	assert.Equal(t, "env-bucket", cfg.Storage.Bucket)
	assert.Equal(t, 2, cfg.Transcoder.Threads)
}

func TestLoadCleanupWorkerConfig(t *testing.T) {
	t.Run("requires nats url", func(t *testing.T) {
		cfg, err := LoadCleanupWorkerConfig(writeConfig(t, `
storage:
  bucket: media
`), t.TempDir())
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadCleanupWorkerConfig(writeConfig(t, `
storage:
  bucket: media
nats:
  url: "nats://localhost:4222"
`), t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, "media-cleanup-worker", cfg.NATS.ConsumerName)
		assert.Equal(t, 5, cfg.NATS.MaxDeliver)
		assert.Equal(t, 2*time.Second, cfg.Retry.InitialInterval)
		assert.Equal(t, time.Minute, cfg.Retry.MaxInterval)
		assert.Equal(t, 10*time.Minute, cfg.Retry.MaxElapsedTime)
	})
}
