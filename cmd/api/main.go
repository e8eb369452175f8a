//go:build cgo

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/amora-app/media-pipeline/internal/adapter"
	"github.com/amora-app/media-pipeline/internal/api/rest"
	"github.com/amora-app/media-pipeline/internal/api/server"
	"github.com/amora-app/media-pipeline/internal/config"
	"github.com/amora-app/media-pipeline/internal/logger"
	"github.com/amora-app/media-pipeline/internal/media/classifier"
	"github.com/amora-app/media-pipeline/internal/media/cleanup"
	"github.com/amora-app/media-pipeline/internal/media/keys"
	"github.com/amora-app/media-pipeline/internal/media/processor"
	"github.com/amora-app/media-pipeline/internal/media/transcoder"
	"github.com/amora-app/media-pipeline/internal/media/transformer"
	"github.com/amora-app/media-pipeline/internal/messaging"
	"github.com/amora-app/media-pipeline/internal/metrics"
	"github.com/amora-app/media-pipeline/internal/providers/jetstream"
	"github.com/amora-app/media-pipeline/internal/storage"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "media-api",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Media API")

	// Initialize adapters
	ioAdapter := adapter.NewIO()
	jsonAdapter := adapter.NewJSON()
	fileSystem := adapter.NewFileSystem()
	clock := adapter.NewClock()
	commandRunner := adapter.NewCommandRunner()
	vipsClient := adapter.NewVipsClient()

	m := metrics.Default()

	// Initialize storage
	backend, err := storage.New(ctx, cfg.Storage, fileSystem)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to initialize storage", zap.Error(err), zap.String("driver", cfg.Storage.Driver))
	}
	uploader := storage.NewUploader(backend, cfg.Storage.Bucket)
	logger.InfoCtx(ctx, "Initialized storage",
		zap.String("backend", backend.Name()),
		zap.String("bucket", cfg.Storage.Bucket),
	)

	// Initialize event publisher
	publisher := messaging.NewNopPublisher()
	if cfg.NATS.Enabled() {
		publisher, err = jetstream.NewPublisher(ctx, jetstream.Config{
			URL:            cfg.NATS.URL,
			StreamName:     cfg.NATS.StreamName,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: cfg.NATS.ConnectionName,
		}, adapter.NewNatsJetStream(), jsonAdapter)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create NATS publisher", zap.Error(err), zap.String("url", cfg.NATS.URL))
		}
		logger.InfoCtx(ctx, "Connected to NATS JetStream", zap.String("stream", cfg.NATS.StreamName))
	} else {
		logger.WarnCtx(ctx, "NATS URL not configured, media events will not be published")
	}
	defer publisher.Close()

	// Initialize CDN purger
	var purger cleanup.Purger
	if cfg.Cloudflare.CDNEnabled() {
		cfClient, err := adapter.NewCloudflareClient(cfg.Cloudflare.APIToken)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create Cloudflare client", zap.Error(err))
		}
		purger = cleanup.NewCloudflarePurger(cfClient, cfg.Cloudflare.ZoneID)
		logger.InfoCtx(ctx, "Initialized Cloudflare cache purge", zap.String("zoneID", cfg.Cloudflare.ZoneID))
	}

	// Initialize media pipeline
	cls := classifier.New(classifier.Limits{
		Image: cfg.Limits.MaxImageSize,
		Video: cfg.Limits.MaxVideoSize,
		Audio: cfg.Limits.MaxAudioSize,
		File:  cfg.Limits.MaxFileSize,
	})
	imageTransformer := transformer.NewTransformer(cfg.Transform, vipsClient)
	defer func() {
		_ = imageTransformer.Close()
	}()
	mediaTranscoder := transcoder.NewTranscoder(cfg.Transcoder, commandRunner, fileSystem, jsonAdapter, clock, m)
	defer func() {
		_ = mediaTranscoder.Close()
	}()

	if tools, err := mediaTranscoder.Tools(); err != nil {
		logger.WarnCtx(ctx, "Transcoder tools unavailable, video uploads will be rejected", zap.Error(err))
	} else {
		logger.InfoCtx(ctx, "Located transcoder tools", zap.String("ffmpeg", tools.FFmpeg), zap.String("ffprobe", tools.FFprobe))
	}

	ids := keys.NewULIDGenerator(clock)
	mediaProcessor := processor.NewProcessor(cls, imageTransformer, mediaTranscoder, uploader, ids, ioAdapter, clock, publisher, m)
	mediaCleaner := cleanup.NewCleaner(uploader, ids, clock, m, cleanup.Options{
		Purger:        purger,
		Publisher:     publisher,
		RetryFailures: cfg.NATS.Enabled(),
	})

	handler := rest.NewHandler(mediaProcessor, mediaCleaner, mediaTranscoder, backend.Name(), cls.MaxLimit())

	// Create server config
	serverConfig := server.Config{
		Debug:          cfg.Debug,
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(cfg.Server.IdleTimeout) * time.Second,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}

	// Create and start server
	srv := server.New(serverConfig, handler, prometheus.DefaultGatherer)

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err, zap.String("component", "server"))
	}

	// Use non-context logger for final message since original ctx is canceled
	logger.Info("Media API stopped")
}
