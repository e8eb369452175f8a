package processor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/amora-app/media-pipeline/internal/domain"
	"github.com/amora-app/media-pipeline/internal/logger"
	"github.com/amora-app/media-pipeline/internal/media/classifier"
	"github.com/amora-app/media-pipeline/internal/types"
)

// voiceKeyAttempts bounds the millisecond bumps used to find a free voice key
const voiceKeyAttempts = 5

// mustConvertTypes are audio containers with poor playback support that are always transcoded
var mustConvertTypes = map[string]struct{}{
	"audio/m4a":   {},
	"audio/x-m4a": {},
	"audio/mp4":   {},
}

// processAudio stores exactly one audio rendition.
// Voice messages and incompatible containers are converted to Ogg/Vorbis when ffmpeg is available and
// uploaded unchanged, flagged as degraded, when it is not.
func (p *processor) processAudio(ctx context.Context, u *upload) (*domain.UploadResult, error) {
	hint := u.req.Options.DurationHint()
	voice := u.req.Options.IsVoiceMessage() || (hint != nil && *hint <= domain.VoiceDurationThreshold)
	_, incompatible := mustConvertTypes[u.mimeType]

	var (
		data        = u.data
		contentType = u.mimeType
		ext         = u.ext()
		converted   *string
		duration    *float64
		degraded    bool
	)

	if voice || incompatible {
		transcoded, err := p.transcoder.TranscodeAudio(ctx, u.data, u.ext())
		switch {
		case err == nil:
			data = transcoded.Data
			contentType = domain.ContentTypeOgg
			ext = domain.FormatOgg
			converted = types.StringPtr(domain.FormatOgg)
			duration = types.FirstFloat64(transcoded.DurationSeconds, hint)
		case isToolUnavailable(err):
			logger.WarnCtx(ctx, "Transcoder unavailable, storing audio unchanged",
				zap.String("mimeType", u.mimeType),
				zap.Bool("voice", voice),
			)
			degraded = true
			duration = hint
		default:
			return nil, err
		}
	} else {
		duration = p.probeDuration(ctx, u, hint)
	}

	key, err := p.audioKey(ctx, u, voice, ext)
	if err != nil {
		return nil, err
	}

	original, err := p.store(ctx, domain.TierOriginal, key, data, contentType, nil, nil)
	if err != nil {
		return nil, err
	}

	kind := domain.MediaKindAudio
	if voice {
		kind = domain.MediaKindVoice
	}

	return &domain.UploadResult{
		Kind:       kind,
		Renditions: map[domain.Tier]domain.Rendition{domain.TierOriginal: original},
		Metadata: domain.Metadata{
			FileSize:        int64(len(u.data)),
			MimeType:        u.mimeType,
			OriginalName:    originalName(u.req.Filename),
			ConvertedFormat: converted,
			DurationSeconds: duration,
			IsVoiceMessage:  types.BoolPtr(voice),
			Degraded:        degraded,
			ProcessedAt:     p.clock.Now(),
		},
	}, nil
}

// probeDuration prefers the probed duration, then the hint
func (p *processor) probeDuration(ctx context.Context, u *upload, hint *float64) *float64 {
	probe, err := p.transcoder.Probe(ctx, u.data, u.ext())
	if err != nil {
		if !isToolUnavailable(err) {
			logger.WarnCtx(ctx, "Failed to probe audio duration", zap.Error(err))
		}
		return hint
	}
	return types.FirstFloat64(probe.DurationSeconds, hint)
}

// audioKey returns a base key, or for voice messages a millisecond key bumped until it is free
func (p *processor) audioKey(ctx context.Context, u *upload, voice bool, ext string) (string, error) {
	if !voice {
		return p.keys.Base(u.req.Context, u.req.OwnerID, ext), nil
	}

	at := p.keys.Now()
	for range voiceKeyAttempts {
		key := p.keys.Voice(u.req.OwnerID, ext, at)
		exists, err := p.uploader.Exists(ctx, key)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", domain.ErrUploadFailed, key, err)
		}
		if !exists {
			return key, nil
		}
		logger.DebugCtx(ctx, "Voice key taken", zap.String("key", key))
		at = at.Add(time.Millisecond)
	}
	return "", fmt.Errorf("%w: no free voice key for owner %d", domain.ErrUploadFailed, u.req.OwnerID)
}
