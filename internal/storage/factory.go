package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/amora-app/media-pipeline/internal/adapter"
	"github.com/amora-app/media-pipeline/internal/config"
	"github.com/amora-app/media-pipeline/internal/logger"
)

type bucketEnsurer interface {
	EnsureBucket(ctx context.Context) error
}

// New builds the backend selected by cfg.Driver and waits for its bucket to be ready
func New(ctx context.Context, cfg config.StorageConfig, fileSystem adapter.FileSystem) (Backend, error) {
	var backend Backend

	switch cfg.Driver {
	case DriverMinio:
		minioCfg := MinioConfig{
			Endpoint:      cfg.Endpoint,
			AccessKey:     cfg.AccessKey,
			SecretKey:     cfg.SecretKey,
			Region:        cfg.Region,
			Bucket:        cfg.Bucket,
			UseSSL:        cfg.UseSSL,
			PublicBaseURL: cfg.PublicBaseURL,
		}
		client, err := NewMinioClient(minioCfg)
		if err != nil {
			return nil, err
		}
		backend = NewMinioBackend(minioCfg, client)

	case DriverS3:
		s3Cfg := S3Config{
			Region:        cfg.Region,
			Bucket:        cfg.Bucket,
			AccessKey:     cfg.AccessKey,
			SecretKey:     cfg.SecretKey,
			Endpoint:      cfg.Endpoint,
			PublicBaseURL: cfg.PublicBaseURL,
		}
		client, err := NewS3Client(ctx, s3Cfg)
		if err != nil {
			return nil, err
		}
		backend = NewS3Backend(s3Cfg, client)

	case DriverLocal:
		return NewLocalBackend(fileSystem, cfg.LocalPath, cfg.PublicBaseURL), nil

	default:
		return nil, fmt.Errorf("unsupported storage driver: %q", cfg.Driver)
	}

	if err := Bootstrap(ctx, backend, cfg.BootstrapTimeout); err != nil {
		return nil, err
	}
	return backend, nil
}

// Bootstrap ensures the backend's bucket is ready, retrying with exponential backoff until timeout
func Bootstrap(ctx context.Context, backend Backend, timeout time.Duration) error {
	ensurer, ok := backend.(bucketEnsurer)
	if !ok {
		return nil
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = timeout

	var attemptCount int
	notifyOnError := func(err error, duration time.Duration) {
		attemptCount++
		logger.WarnCtx(ctx, "Storage bucket not ready, retrying",
			zap.Error(err),
			zap.String("backend", backend.Name()),
			zap.Int("attempt", attemptCount),
			zap.Duration("next_retry_in", duration),
		)
	}

	operation := func() error {
		return ensurer.EnsureBucket(ctx)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notifyOnError); err != nil {
		return fmt.Errorf("storage bucket not ready after %d attempts: %w", attemptCount+1, err)
	}

	logger.InfoCtx(ctx, "Storage bucket ready", zap.String("backend", backend.Name()))
	return nil
}
