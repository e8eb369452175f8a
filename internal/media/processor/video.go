package processor

import (
	"context"

	"go.uber.org/zap"

	"github.com/amora-app/media-pipeline/internal/domain"
	"github.com/amora-app/media-pipeline/internal/logger"
	"github.com/amora-app/media-pipeline/internal/media/keys"
	"github.com/amora-app/media-pipeline/internal/types"
)

// processVideo stores an H.264/AAC MP4 original and, when a frame could be taken, a 50x50 thumbnail.
// A missing transcoder fails the call; there is no passthrough for video.
func (p *processor) processVideo(ctx context.Context, u *upload) (*domain.UploadResult, error) {
	transcoded, err := p.transcoder.TranscodeVideo(ctx, u.data, u.ext())
	if err != nil {
		return nil, err
	}

	var width, height *int
	var duration *float64
	if transcoded.Probe != nil {
		width = transcoded.Probe.Width
		height = transcoded.Probe.Height
		duration = transcoded.Probe.DurationSeconds
	}

	base := p.keys.Base(u.req.Context, u.req.OwnerID, domain.FormatMP4)
	original, err := p.store(ctx, domain.TierOriginal, base, transcoded.Data, domain.ContentTypeMP4, width, height)
	if err != nil {
		return nil, err
	}

	renditions := map[domain.Tier]domain.Rendition{domain.TierOriginal: original}
	if thumbnail, ok := p.videoThumbnail(ctx, base, transcoded.Frame); ok {
		renditions[domain.TierThumbnail] = thumbnail
	}

	return &domain.UploadResult{
		Kind:       domain.MediaKindVideo,
		Renditions: renditions,
		Metadata: domain.Metadata{
			OriginalWidth:   width,
			OriginalHeight:  height,
			ProcessedWidth:  width,
			ProcessedHeight: height,
			FileSize:        int64(len(u.data)),
			MimeType:        u.mimeType,
			OriginalName:    originalName(u.req.Filename),
			ConvertedFormat: types.StringPtr(domain.FormatMP4),
			DurationSeconds: duration,
			ProcessedAt:     p.clock.Now(),
		},
	}, nil
}

// videoThumbnail runs a frame through the image thumbnail stage; every failure is logged and skipped
func (p *processor) videoThumbnail(ctx context.Context, base string, frame []byte) (domain.Rendition, bool) {
	if len(frame) == 0 {
		logger.WarnCtx(ctx, "Video stored without thumbnail: no frame extracted", zap.String("key", base))
		return domain.Rendition{}, false
	}

	encoded, err := p.transformer.Thumbnail(ctx, frame)
	if err != nil {
		logger.WarnCtx(ctx, "Video stored without thumbnail", zap.String("key", base), zap.Error(err))
		return domain.Rendition{}, false
	}

	rendition, err := p.store(ctx, domain.TierThumbnail, keys.Thumbnail(base), encoded.Data, encoded.ContentType,
		types.PositiveIntPtr(encoded.Width), types.PositiveIntPtr(encoded.Height))
	if err != nil {
		logger.WarnCtx(ctx, "Video stored without thumbnail", zap.String("key", base), zap.Error(err))
		return domain.Rendition{}, false
	}
	return rendition, true
}
