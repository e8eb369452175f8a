package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/amora-app/media-pipeline/internal/adapter"
	"github.com/amora-app/media-pipeline/internal/config"
	"github.com/amora-app/media-pipeline/internal/logger"
	"github.com/amora-app/media-pipeline/internal/media/cleanup"
	"github.com/amora-app/media-pipeline/internal/media/keys"
	"github.com/amora-app/media-pipeline/internal/metrics"
	"github.com/amora-app/media-pipeline/internal/providers/jetstream"
	"github.com/amora-app/media-pipeline/internal/retrier"
	"github.com/amora-app/media-pipeline/internal/storage"
)

var (
	configFile  = flag.String("config", "", "Path to configuration file")
	envPath     = flag.String("env", "config/", "Path to environment files")
	concurrency = flag.Int("concurrency", 4, "Number of events handled concurrently")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadCleanupWorkerConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "worker-cleanup",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.Info("Starting Cleanup Worker")

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize adapters
	jsonAdapter := adapter.NewJSON()
	fileSystem := adapter.NewFileSystem()
	clock := adapter.NewClock()
	natsJS := adapter.NewNatsJetStream()

	// Initialize storage
	backend, err := storage.New(ctx, cfg.Storage, fileSystem)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err), zap.String("driver", cfg.Storage.Driver))
	}
	uploader := storage.NewUploader(backend, cfg.Storage.Bucket)

	// Deleted events are still published; failures are redelivered by JetStream instead of republished
	publisher, err := jetstream.NewPublisher(ctx, jetstream.Config{
		URL:            cfg.NATS.URL,
		StreamName:     cfg.NATS.StreamName,
		MaxReconnects:  cfg.NATS.MaxReconnects,
		ReconnectWait:  cfg.NATS.ReconnectWait,
		ConnectionName: cfg.NATS.ConnectionName + "-publisher",
	}, natsJS, jsonAdapter)
	if err != nil {
		logger.Fatal("Failed to create NATS publisher", zap.Error(err), zap.String("url", cfg.NATS.URL))
	}
	defer publisher.Close()

	var purger cleanup.Purger
	if cfg.Cloudflare.CDNEnabled() {
		cfClient, err := adapter.NewCloudflareClient(cfg.Cloudflare.APIToken)
		if err != nil {
			logger.Fatal("Failed to create Cloudflare client", zap.Error(err))
		}
		purger = cleanup.NewCloudflarePurger(cfClient, cfg.Cloudflare.ZoneID)
	}

	mediaCleaner := cleanup.NewCleaner(uploader, keys.NewULIDGenerator(clock), clock, metrics.Default(), cleanup.Options{
		Purger:    purger,
		Publisher: publisher,
	})

	// Create retrier
	cleanupRetrier, err := retrier.NewRetrier(
		retrier.Config{
			URL:            cfg.NATS.URL,
			StreamName:     cfg.NATS.StreamName,
			ConsumerName:   cfg.NATS.ConsumerName,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: cfg.NATS.ConnectionName,
			AckWaitTimeout: cfg.NATS.AckWait,
			MaxDeliver:     cfg.NATS.MaxDeliver,
			Concurrency:    *concurrency,
			Retry:          cfg.Retry,
		},
		natsJS,
		mediaCleaner,
		jsonAdapter,
	)
	if err != nil {
		logger.Fatal("Failed to create cleanup retrier", zap.Error(err))
	}
	defer cleanupRetrier.Close()
	logger.Info("Cleanup retrier created",
		zap.String("stream", cfg.NATS.StreamName),
		zap.String("consumer", cfg.NATS.ConsumerName),
		zap.String("backend", backend.Name()),
	)

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Channel for retrier errors
	errCh := make(chan error, 1)

	// Start the retrier
	go func() {
		if err := cleanupRetrier.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.Error(err, zap.String("component", "retrier"))
		cancel()
	}

	// Give some time for graceful shutdown
	time.Sleep(time.Second)

	logger.Info("Cleanup Worker stopped")
}
