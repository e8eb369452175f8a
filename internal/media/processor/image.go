package processor

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/amora-app/media-pipeline/internal/domain"
	"github.com/amora-app/media-pipeline/internal/media/keys"
	"github.com/amora-app/media-pipeline/internal/media/transformer"
	"github.com/amora-app/media-pipeline/internal/types"
)

// processImage stores the original, medium and thumbnail WebP tiers of an image.
// The tiers are uploaded concurrently; if any upload fails every tier key is removed,
// including uploads that reached the store but reported an error after cancellation.
func (p *processor) processImage(ctx context.Context, u *upload) (*domain.UploadResult, error) {
	transformed, err := p.transformer.Transform(ctx, u.data)
	if err != nil {
		return nil, err
	}

	base := p.keys.Base(u.req.Context, u.req.OwnerID, domain.FormatWebP)
	tiers := []struct {
		tier    domain.Tier
		encoded transformer.Encoded
	}{
		{domain.TierOriginal, transformed.Original},
		{domain.TierMedium, transformed.Medium},
		{domain.TierThumbnail, transformed.Thumbnail},
	}

	var (
		mu         sync.Mutex
		tierKeys   = make([]string, 0, len(tiers))
		renditions = make(map[domain.Tier]domain.Rendition, len(tiers))
	)
	for _, t := range tiers {
		tierKeys = append(tierKeys, keys.ForTier(base, t.tier))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range tiers {
		g.Go(func() error {
			key := keys.ForTier(base, t.tier)
			rendition, err := p.store(gctx, t.tier, key, t.encoded.Data, t.encoded.ContentType,
				types.PositiveIntPtr(t.encoded.Width), types.PositiveIntPtr(t.encoded.Height))
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			renditions[t.tier] = rendition
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		p.rollback(ctx, tierKeys)
		return nil, err
	}

	return &domain.UploadResult{
		Kind:       domain.MediaKindImage,
		Renditions: renditions,
		Metadata: domain.Metadata{
			OriginalWidth:   types.PositiveIntPtr(transformed.OriginalWidth),
			OriginalHeight:  types.PositiveIntPtr(transformed.OriginalHeight),
			ProcessedWidth:  types.PositiveIntPtr(transformed.Original.Width),
			ProcessedHeight: types.PositiveIntPtr(transformed.Original.Height),
			FileSize:        transformed.OriginalSize,
			MimeType:        u.mimeType,
			OriginalName:    originalName(u.req.Filename),
			ConvertedFormat: types.StringPtr(domain.FormatWebP),
			ProcessedAt:     p.clock.Now(),
		},
	}, nil
}
