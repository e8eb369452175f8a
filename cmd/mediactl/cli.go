//go:build cgo

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/amora-app/media-pipeline/internal/adapter"
	"github.com/amora-app/media-pipeline/internal/config"
	"github.com/amora-app/media-pipeline/internal/media/classifier"
	"github.com/amora-app/media-pipeline/internal/media/cleanup"
	"github.com/amora-app/media-pipeline/internal/media/keys"
	"github.com/amora-app/media-pipeline/internal/media/processor"
	"github.com/amora-app/media-pipeline/internal/media/transcoder"
	"github.com/amora-app/media-pipeline/internal/media/transformer"
	"github.com/amora-app/media-pipeline/internal/metrics"
	"github.com/amora-app/media-pipeline/internal/storage"
)

// cli holds the flags and lazily built components shared by subcommands
type cli struct {
	configFile string
	envPath    string
	debug      bool
	out        io.Writer

	cfg         *config.MediaConfig
	json        adapter.JSON
	fs          adapter.FileSystem
	transformer transformer.Transformer
	transcoder  transcoder.Transcoder
}

func (c *cli) adapters() {
	if c.json == nil {
		c.json = adapter.NewJSON()
	}
	if c.fs == nil {
		c.fs = adapter.NewFileSystem()
	}
}

func (c *cli) adaptersFS() adapter.FileSystem {
	c.adapters()
	return c.fs
}

func (c *cli) newTranscoder() transcoder.Transcoder {
	c.adapters()
	if c.transcoder == nil {
		c.transcoder = transcoder.NewTranscoder(c.cfg.Transcoder, adapter.NewCommandRunner(), c.fs, c.json, adapter.NewClock(), metrics.Default())
	}
	return c.transcoder
}

func (c *cli) newUploader(ctx context.Context) (*storage.Uploader, error) {
	c.adapters()
	backend, err := storage.New(ctx, c.cfg.Storage, c.fs)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return storage.NewUploader(backend, c.cfg.Storage.Bucket), nil
}

// newProcessor wires the pipeline without event publishing
func (c *cli) newProcessor(ctx context.Context) (processor.Processor, error) {
	uploader, err := c.newUploader(ctx)
	if err != nil {
		return nil, err
	}

	clock := adapter.NewClock()
	cls := classifier.New(classifier.Limits{
		Image: c.cfg.Limits.MaxImageSize,
		Video: c.cfg.Limits.MaxVideoSize,
		Audio: c.cfg.Limits.MaxAudioSize,
		File:  c.cfg.Limits.MaxFileSize,
	})
	c.transformer = transformer.NewTransformer(c.cfg.Transform, adapter.NewVipsClient())

	return processor.NewProcessor(cls, c.transformer, c.newTranscoder(), uploader, keys.NewULIDGenerator(clock), adapter.NewIO(), clock, nil, metrics.Default()), nil
}

func (c *cli) newCleaner(ctx context.Context) (cleanup.Cleaner, error) {
	uploader, err := c.newUploader(ctx)
	if err != nil {
		return nil, err
	}

	var purger cleanup.Purger
	if c.cfg.Cloudflare.CDNEnabled() {
		cfClient, err := adapter.NewCloudflareClient(c.cfg.Cloudflare.APIToken)
		if err != nil {
			return nil, fmt.Errorf("failed to create Cloudflare client: %w", err)
		}
		purger = cleanup.NewCloudflarePurger(cfClient, c.cfg.Cloudflare.ZoneID)
	}

	clock := adapter.NewClock()
	return cleanup.NewCleaner(uploader, keys.NewULIDGenerator(clock), clock, metrics.Default(), cleanup.Options{Purger: purger}), nil
}

// print writes v as indented JSON
func (c *cli) print(v any) error {
	c.adapters()
	data, err := c.json.MarshalIndent(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, string(data))
	return err
}

func (c *cli) close() {
	if c.transformer != nil {
		_ = c.transformer.Close()
	}
	if c.transcoder != nil {
		_ = c.transcoder.Close()
	}
}
