package cleanup

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/amora-app/media-pipeline/internal/adapter"
	"github.com/amora-app/media-pipeline/internal/domain"
	"github.com/amora-app/media-pipeline/internal/logger"
	"github.com/amora-app/media-pipeline/internal/media/keys"
	"github.com/amora-app/media-pipeline/internal/messaging"
	"github.com/amora-app/media-pipeline/internal/metrics"
	"github.com/amora-app/media-pipeline/internal/storage"
)

// Cleaner removes stored media by key
//
//go:generate mockgen -source=cleaner.go -destination=../../mocks/cleaner.go -package=mocks -mock_names=Cleaner=MockCleaner
type Cleaner interface {
	// DeleteMany attempts every key and aggregates the outcome; it never stops at the first failure
	DeleteMany(ctx context.Context, keys []string) domain.DeleteResult

	// Delete is DeleteMany returning domain.ErrPartialCleanupFailure when any key failed
	Delete(ctx context.Context, keys []string) (domain.DeleteResult, error)

	// KeyFromURL resolves a public or path-style URL of a stored object to its key
	KeyFromURL(rawURL string) string
}

// Options configures the optional side effects of a cleaner
type Options struct {
	// Purger evicts the public URLs of deleted keys; nil disables purging
	Purger Purger

	// Publisher receives media.deleted and media.cleanup.failed events; nil disables events
	Publisher messaging.Publisher

	// RetryFailures publishes media.cleanup.failed for failed keys
	RetryFailures bool
}

type cleaner struct {
	uploader  *storage.Uploader
	purger    Purger
	publisher messaging.Publisher
	retry     bool
	ids       keys.IDGenerator
	clock     adapter.Clock
	metrics   *metrics.Metrics
}

// NewCleaner creates a Cleaner over uploader
func NewCleaner(uploader *storage.Uploader, ids keys.IDGenerator, clock adapter.Clock, m *metrics.Metrics, opts Options) Cleaner {
	publisher := opts.Publisher
	if publisher == nil {
		publisher = messaging.NewNopPublisher()
	}

	return &cleaner{
		uploader:  uploader,
		purger:    opts.Purger,
		publisher: publisher,
		retry:     opts.RetryFailures,
		ids:       ids,
		clock:     clock,
		metrics:   m,
	}
}

func (c *cleaner) DeleteMany(ctx context.Context, keys []string) domain.DeleteResult {
	result := domain.DeleteResult{
		Deleted:    []string{},
		FailedKeys: []string{},
	}

	var purge []string
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" {
			logger.WarnCtx(ctx, "Skipping blank storage key")
			result.Skipped++
			continue
		}

		existed, err := c.uploader.Remove(ctx, key)
		if err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to delete object: %w", err), zap.String("key", key))
			result.FailedKeys = append(result.FailedKeys, key)
			continue
		}

		if !existed {
			logger.WarnCtx(ctx, "Object already absent", zap.String("key", key))
			result.Missing = append(result.Missing, key)
			continue
		}

		result.Deleted = append(result.Deleted, key)
		purge = append(purge, c.uploader.URL(key))
	}
	result.Success = len(result.FailedKeys) == 0

	c.metrics.AddCleanupKeys(metrics.OutcomeDeleted, len(result.Deleted))
	c.metrics.AddCleanupKeys(metrics.OutcomeMissing, len(result.Missing))
	c.metrics.AddCleanupKeys(metrics.OutcomeSkipped, result.Skipped)
	c.metrics.AddCleanupKeys(metrics.OutcomeFailed, len(result.FailedKeys))

	logger.InfoCtx(ctx, "Cleanup completed",
		zap.Int("requested", len(keys)),
		zap.Int("deleted", len(result.Deleted)),
		zap.Int("missing", len(result.Missing)),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", len(result.FailedKeys)),
	)

	if c.purger != nil && len(purge) > 0 {
		if err := c.purger.Purge(ctx, purge); err != nil {
			logger.WarnCtx(ctx, "Failed to purge CDN cache", zap.Error(err), zap.Int("urls", len(purge)))
		}
	}

	if len(result.Deleted) > 0 {
		c.publish(ctx, domain.EventTypeDeleted, result.Deleted, nil)
	}
	if c.retry && len(result.FailedKeys) > 0 {
		c.publish(ctx, domain.EventTypeCleanupFailed, nil, result.FailedKeys)
	}

	return result
}

func (c *cleaner) Delete(ctx context.Context, keys []string) (domain.DeleteResult, error) {
	result := c.DeleteMany(ctx, keys)
	if !result.Success {
		return result, fmt.Errorf("%w: %d of %d keys", domain.ErrPartialCleanupFailure, len(result.FailedKeys), len(keys))
	}
	return result, nil
}

// publish emits an event; failures are logged because the deletion itself already happened
func (c *cleaner) KeyFromURL(rawURL string) string {
	return c.uploader.KeyFromURL(rawURL)
}

func (c *cleaner) publish(ctx context.Context, eventType domain.EventType, deleted, failed []string) {
	event := &domain.MediaEvent{
		ID:         c.ids.NewID(),
		Type:       eventType,
		Keys:       deleted,
		FailedKeys: failed,
		OccurredAt: c.clock.Now(),
	}

	if err := c.publisher.PublishEvent(ctx, event); err != nil {
		logger.WarnCtx(ctx, "Failed to publish media event",
			zap.Error(err),
			zap.String("subject", event.Subject()),
		)
	}
}
