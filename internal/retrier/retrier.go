package retrier

import (
	"context"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/amora-app/media-pipeline/internal/adapter"
	"github.com/amora-app/media-pipeline/internal/config"
	"github.com/amora-app/media-pipeline/internal/domain"
	"github.com/amora-app/media-pipeline/internal/logger"
	"github.com/amora-app/media-pipeline/internal/media/cleanup"
	jsprovider "github.com/amora-app/media-pipeline/internal/providers/jetstream"
)

// Config holds the configuration for the cleanup retrier
type Config struct {
	URL            string
	StreamName     string
	ConsumerName   string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
	AckWaitTimeout time.Duration
	MaxDeliver     int
	Concurrency    int
	Retry          config.RetryConfig
}

// Retrier re-runs deletions reported by media.cleanup.failed events
type Retrier interface {
	// Run consumes events until ctx is cancelled
	Run(ctx context.Context) error
	// Close closes the connection
	Close()
}

type retrier struct {
	nc      adapter.NatsConn
	js      adapter.JetStream
	cleaner cleanup.Cleaner
	json    adapter.JSON
	config  Config
}

// NewRetrier connects to NATS and creates a retrier.
// cleaner must not publish media.cleanup.failed itself or failures would be queued twice.
func NewRetrier(
	cfg Config,
	natsJS adapter.NatsJetStream,
	cleaner cleanup.Cleaner,
	jsonAdapter adapter.JSON,
) (Retrier, error) {
	opts := jsprovider.ConnectOptions(cfg.ConnectionName, cfg.MaxReconnects, cfg.ReconnectWait)

	nc, js, err := natsJS.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}

	return &retrier{
		nc:      nc,
		js:      js,
		cleaner: cleaner,
		json:    jsonAdapter,
		config:  cfg,
	}, nil
}

// FilterSubject is the subject consumed by the retrier
func FilterSubject() string {
	event := domain.MediaEvent{Type: domain.EventTypeCleanupFailed}
	return event.Subject()
}

// Run starts consuming cleanup failures
func (r *retrier) Run(ctx context.Context) error {
	logger.InfoCtx(ctx, "Starting cleanup retrier",
		zap.String("stream", r.config.StreamName),
		zap.String("consumer", r.config.ConsumerName),
	)

	if err := jsprovider.EnsureStream(ctx, r.js, r.config.StreamName); err != nil {
		return err
	}

	consumer, err := r.js.CreateOrUpdateConsumer(ctx, r.config.StreamName, jetstream.ConsumerConfig{
		Durable:       r.config.ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       r.config.AckWaitTimeout,
		MaxDeliver:    r.config.MaxDeliver,
		FilterSubject: FilterSubject(),
	})
	if err != nil {
		return fmt.Errorf("failed to create/update consumer: %w", err)
	}

	consumerInfo, err := consumer.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get consumer info: %w", err)
	}
	logger.InfoCtx(ctx, "Consumer created/retrieved", zap.String("consumer", consumerInfo.Name))

	pool := pond.NewPool(r.config.Concurrency)
	sub, err := consumer.Consume(func(msg adapter.Message) {
		pool.Submit(func() {
			r.handleMessage(ctx, msg)
		})
	})
	if err != nil {
		pool.StopAndWait()
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	logger.InfoCtx(ctx, "Started consuming messages")

	<-ctx.Done()
	logger.InfoCtx(ctx, "Shutting down cleanup retrier")

	sub.Stop()
	pool.StopAndWait()
	return ctx.Err()
}

// handleMessage retries one failed batch: Ack on success, Nak with delay while deliveries remain, Term otherwise
func (r *retrier) handleMessage(ctx context.Context, msg adapter.Message) {
	delivered := uint64(1)
	if metadata, err := msg.Metadata(); err == nil && metadata != nil {
		delivered = metadata.NumDelivered
	}

	var event domain.MediaEvent
	if err := r.json.Unmarshal(msg.Data(), &event); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to unmarshal event: %w", err), zap.String("subject", msg.Subject()))
		// Terminate message for unparseable data
		if err := msg.Term(); err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to terminate message: %w", err))
		}
		return
	}

	ctx = logger.WithFields(ctx, zap.String("eventID", event.ID), zap.Uint64("deliveryCount", delivered))

	if event.Type != domain.EventTypeCleanupFailed || len(event.FailedKeys) == 0 {
		logger.WarnCtx(ctx, "Dropping event without failed keys", zap.String("type", string(event.Type)))
		if err := msg.Ack(); err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to ACK message: %w", err))
		}
		return
	}

	remaining, err := r.retry(ctx, event.FailedKeys)
	if err == nil {
		logger.InfoCtx(ctx, "Cleanup retry succeeded", zap.Int("keys", len(event.FailedKeys)))
		if err := msg.Ack(); err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to ACK message: %w", err))
		}
		return
	}

	if r.config.MaxDeliver > 0 && delivered >= uint64(r.config.MaxDeliver) {
		logger.ErrorCtx(ctx, fmt.Errorf("giving up on cleanup: %w", err), zap.Strings("keys", remaining))
		if err := msg.Term(); err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to terminate message: %w", err))
		}
		return
	}

	logger.WarnCtx(ctx, "Cleanup retry failed, redelivering", zap.Error(err), zap.Strings("keys", remaining))
	if err := msg.NakWithDelay(r.config.Retry.MaxInterval); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to NAK message: %w", err))
	}
}

// retry deletes keys with exponential backoff, narrowing each attempt to the keys that still fail
func (r *retrier) retry(ctx context.Context, keys []string) ([]string, error) {
	b := backoff.NewExponentialBackOff()
	if r.config.Retry.InitialInterval > 0 {
		b.InitialInterval = r.config.Retry.InitialInterval
	}
	if r.config.Retry.MaxInterval > 0 {
		b.MaxInterval = r.config.Retry.MaxInterval
	}
	if r.config.Retry.MaxElapsedTime > 0 {
		b.MaxElapsedTime = r.config.Retry.MaxElapsedTime
	}

	remaining := keys
	var attemptCount int
	notifyOnError := func(err error, duration time.Duration) {
		attemptCount++
		logger.WarnCtx(ctx, "Cleanup attempt failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attemptCount),
			zap.Duration("next_retry_in", duration),
		)
	}

	operation := func() error {
		result := r.cleaner.DeleteMany(ctx, remaining)
		if result.Success {
			remaining = nil
			return nil
		}
		remaining = result.FailedKeys
		return fmt.Errorf("%w: %d keys", domain.ErrPartialCleanupFailure, len(remaining))
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notifyOnError)
	return remaining, err
}

// Close closes the NATS connection
func (r *retrier) Close() {
	if r.nc == nil {
		return
	}

	r.nc.Close()
}
