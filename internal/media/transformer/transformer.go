//go:build cgo

package transformer

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/alitto/pond/v2"
	"github.com/cshum/vipsgen/vips"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/amora-app/media-pipeline/internal/adapter"
	"github.com/amora-app/media-pipeline/internal/domain"
	"github.com/amora-app/media-pipeline/internal/logger"
)

type tierMode int

const (
	modeFit tierMode = iota
	modeCover
)

type tierSpec struct {
	tier    domain.Tier
	mode    tierMode
	size    int
	quality int
}

var (
	originalTier  = tierSpec{tier: domain.TierOriginal, mode: modeFit, size: domain.LargeMaxDimension, quality: domain.LargeQuality}
	mediumTier    = tierSpec{tier: domain.TierMedium, mode: modeFit, size: domain.MediumMaxDimension, quality: domain.MediumQuality}
	thumbnailTier = tierSpec{tier: domain.TierThumbnail, mode: modeCover, size: domain.ThumbnailSize, quality: domain.ThumbnailQuality}
)

// transformer is the implementation of the Transformer interface using vipsgen/vips
type transformer struct {
	config     Config
	pool       pond.Pool
	vipsClient adapter.VipsClient
}

// NewTransformer creates a new image transformer with bounded worker pool
func NewTransformer(cfg Config, vipsClient adapter.VipsClient) Transformer {
	if cfg.WorkerConcurrency <= 0 {
		cfg.WorkerConcurrency = 1
	}

	// Initialize vips once
	vipsClient.Startup(&vips.Config{
		ConcurrencyLevel: cfg.WorkerConcurrency,
		MaxCacheMem:      100 * 1024 * 1024, // 100MB cache
		MaxCacheSize:     500,
	})

	return &transformer{
		config:     cfg,
		pool:       pond.NewPool(cfg.WorkerConcurrency),
		vipsClient: vipsClient,
	}
}

// Transform decodes data and derives the original, medium and thumbnail tiers
func (t *transformer) Transform(ctx context.Context, data []byte) (*TransformResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrInvalidInput)
	}

	logger.InfoCtx(ctx, "Starting image transformation", zap.Int("size", len(data)))

	var result *TransformResult
	err := t.run(ctx, func() error {
		var err error
		result, err = t.transformAll(ctx, data)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Image transformation completed",
		zap.Int("originalWidth", result.OriginalWidth),
		zap.Int("originalHeight", result.OriginalHeight),
		zap.Int("width", result.Original.Width),
		zap.Int("height", result.Original.Height),
		zap.Int("originalBytes", len(result.Original.Data)),
		zap.Int("mediumBytes", len(result.Medium.Data)),
		zap.Int("thumbnailBytes", len(result.Thumbnail.Data)),
	)

	return result, nil
}

// Thumbnail produces only the 50×50 thumbnail tier
func (t *transformer) Thumbnail(ctx context.Context, data []byte) (*Encoded, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrInvalidInput)
	}

	var encoded Encoded
	err := t.run(ctx, func() error {
		var err error
		encoded, _, _, err = t.encodeTier(ctx, data, thumbnailTier)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &encoded, nil
}

// Close gracefully shuts down the transformer
func (t *transformer) Close() error {
	t.pool.StopAndWait()
	t.vipsClient.Shutdown()
	return nil
}

// run submits fn to the pool and waits for it or for the transform timeout
func (t *transformer) run(ctx context.Context, fn func() error) error {
	if t.config.TransformTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.config.TransformTimeout)
		defer cancel()
	}

	task := t.pool.SubmitErr(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn()
	})

	select {
	case <-task.Done():
		if err := task.Wait(); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrConversionFailed, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: image transformation: %w", domain.ErrConversionFailed, ctx.Err())
	}
}

// transformAll encodes every tier concurrently; all tiers must succeed
func (t *transformer) transformAll(ctx context.Context, data []byte) (*TransformResult, error) {
	result := &TransformResult{OriginalSize: int64(len(data))}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		encoded, srcWidth, srcHeight, err := t.encodeTier(gctx, data, originalTier)
		if err != nil {
			return err
		}
		result.Original = encoded
		result.OriginalWidth = srcWidth
		result.OriginalHeight = srcHeight
		return nil
	})
	g.Go(func() error {
		encoded, _, _, err := t.encodeTier(gctx, data, mediumTier)
		if err != nil {
			return err
		}
		result.Medium = encoded
		return nil
	})
	g.Go(func() error {
		encoded, _, _, err := t.encodeTier(gctx, data, thumbnailTier)
		if err != nil {
			return err
		}
		result.Thumbnail = encoded
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// encodeTier decodes data, rotates it upright, sizes it for the tier and encodes it as WebP.
// It also returns the upright source dimensions.
func (t *transformer) encodeTier(ctx context.Context, data []byte, ts tierSpec) (Encoded, int, int, error) {
	if err := ctx.Err(); err != nil {
		return Encoded{}, 0, 0, err
	}

	source := t.vipsClient.NewSource(io.NopCloser(bytes.NewReader(data)))
	defer source.Close()

	loadOpts := vips.DefaultLoadOptions()
	loadOpts.FailOnError = true
	// Use random access to allow resize operations without "out of order read" errors
	loadOpts.Access = vips.AccessRandom

	img, err := t.vipsClient.NewImageFromSource(source, loadOpts)
	if err != nil {
		return Encoded{}, 0, 0, fmt.Errorf("failed to load image: %w", err)
	}
	defer img.Close()

	if err := img.Autorot(); err != nil {
		return Encoded{}, 0, 0, fmt.Errorf("failed to autorotate image: %w", err)
	}

	srcWidth := img.Width()
	srcHeight := img.Height()

	totalPixels := int64(srcWidth) * int64(srcHeight)
	if t.config.MaxDecodedPixels > 0 && totalPixels > t.config.MaxDecodedPixels {
		logger.WarnCtx(ctx, "Image exceeds maximum pixel count",
			zap.Int64("totalPixels", totalPixels),
			zap.Int64("maxPixels", t.config.MaxDecodedPixels),
		)
		return Encoded{}, 0, 0, ErrTooManyPixels
	}

	switch ts.mode {
	case modeFit:
		if scale := FitScale(srcWidth, srcHeight, ts.size); scale < 1 {
			if err := img.Resize(scale, vips.DefaultResizeOptions()); err != nil {
				return Encoded{}, 0, 0, fmt.Errorf("failed to resize %s tier: %w", ts.tier, err)
			}
		}

	case modeCover:
		if err := img.Resize(CoverScale(srcWidth, srcHeight, ts.size), vips.DefaultResizeOptions()); err != nil {
			return Encoded{}, 0, 0, fmt.Errorf("failed to resize %s tier: %w", ts.tier, err)
		}
		left, top, width, height := CenterCrop(img.Width(), img.Height(), ts.size)
		if err := img.ExtractArea(left, top, width, height); err != nil {
			return Encoded{}, 0, 0, fmt.Errorf("failed to crop %s tier: %w", ts.tier, err)
		}
	}

	opts := vips.DefaultWebpsaveBufferOptions()
	opts.Q = ts.quality
	opts.Effort = 4 // Balance between speed and compression
	opts.Keep = vips.KeepNone

	buf, err := img.WebpsaveBuffer(opts)
	if err != nil {
		return Encoded{}, 0, 0, fmt.Errorf("failed to encode %s tier: %w", ts.tier, err)
	}

	logger.DebugCtx(ctx, "Encoded tier",
		zap.String("tier", string(ts.tier)),
		zap.Int("width", img.Width()),
		zap.Int("height", img.Height()),
		zap.Int("size", len(buf)),
	)

	return Encoded{
		Data:        buf,
		ContentType: domain.ContentTypeWebP,
		Width:       img.Width(),
		Height:      img.Height(),
	}, srcWidth, srcHeight, nil
}
