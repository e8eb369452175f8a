package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/amora-app/media-pipeline/internal/adapter"
	"github.com/amora-app/media-pipeline/internal/domain"
	"github.com/amora-app/media-pipeline/internal/logger"
	"github.com/amora-app/media-pipeline/internal/media/classifier"
	"github.com/amora-app/media-pipeline/internal/media/keys"
	"github.com/amora-app/media-pipeline/internal/media/transcoder"
	"github.com/amora-app/media-pipeline/internal/media/transformer"
	"github.com/amora-app/media-pipeline/internal/messaging"
	"github.com/amora-app/media-pipeline/internal/metrics"
	"github.com/amora-app/media-pipeline/internal/storage"
)

const (
	statusSuccess = "success"
	statusFailure = "failure"
)

// Processor defines the interface for processing uploaded media
//
//go:generate mockgen -source=processor.go -destination=../../mocks/processor.go -package=mocks -mock_names=Processor=MockProcessor
type Processor interface {
	// Process classifies, validates and normalizes one upload, stores its renditions and describes them.
	// Parameters:
	//   - ctx: context for cancellation and timeout
	//   - req: the upload; req.Body is read at most once
	// Returns:
	//   - the stored renditions and metadata
	//   - domain.ErrInvalidInput, domain.ErrToolUnavailable, domain.ErrConversionFailed or domain.ErrUploadFailed
	Process(ctx context.Context, req *domain.UploadRequest) (*domain.UploadResult, error)
}

// processor is the implementation of Processor
type processor struct {
	classifier  *classifier.Classifier
	transformer transformer.Transformer
	transcoder  transcoder.Transcoder
	uploader    *storage.Uploader
	keys        *keys.Builder
	ids         keys.IDGenerator
	io          adapter.IO
	clock       adapter.Clock
	publisher   messaging.Publisher
	metrics     *metrics.Metrics
}

// NewProcessor creates a new Processor instance
func NewProcessor(
	cls *classifier.Classifier,
	tr transformer.Transformer,
	tc transcoder.Transcoder,
	uploader *storage.Uploader,
	ids keys.IDGenerator,
	ioAdapter adapter.IO,
	clock adapter.Clock,
	publisher messaging.Publisher,
	m *metrics.Metrics,
) Processor {
	if publisher == nil {
		publisher = messaging.NewNopPublisher()
	}

	return &processor{
		classifier:  cls,
		transformer: tr,
		transcoder:  tc,
		uploader:    uploader,
		keys:        keys.NewBuilder(clock, ids),
		ids:         ids,
		io:          ioAdapter,
		clock:       clock,
		publisher:   publisher,
		metrics:     m,
	}
}

// upload is a validated request with its payload in memory
type upload struct {
	req      *domain.UploadRequest
	data     []byte
	mimeType string
	kind     domain.MediaKind
}

func (u *upload) ext() string {
	return classifier.Extension(u.mimeType)
}

// Process validates the upload before reading it, then routes it to the pipeline of its kind
func (p *processor) Process(ctx context.Context, req *domain.UploadRequest) (*domain.UploadResult, error) {
	if req == nil || req.Body == nil {
		return nil, fmt.Errorf("%w: missing upload body", domain.ErrInvalidInput)
	}

	ctx = logger.WithFields(ctx,
		zap.Int64("ownerID", req.OwnerID),
		zap.String("context", req.Context),
	)
	started := p.clock.Now()

	u, err := p.read(ctx, req)
	if err != nil {
		p.metrics.ObserveUpload(string(classifier.Classify(req.MimeType)), statusFailure, p.clock.Since(started))
		logger.WarnCtx(ctx, "Rejected upload", zap.Error(err), zap.String("mimeType", req.MimeType))
		return nil, err
	}

	logger.InfoCtx(ctx, "Processing upload",
		zap.String("kind", string(u.kind)),
		zap.String("mimeType", u.mimeType),
		zap.Int("size", len(u.data)),
	)

	var result *domain.UploadResult
	switch u.kind {
	case domain.MediaKindImage:
		result, err = p.processImage(ctx, u)
	case domain.MediaKindVideo:
		result, err = p.processVideo(ctx, u)
	case domain.MediaKindAudio:
		result, err = p.processAudio(ctx, u)
	default:
		result, err = p.processFile(ctx, u)
	}

	if err != nil {
		p.metrics.ObserveUpload(string(u.kind), statusFailure, p.clock.Since(started))
		logger.ErrorCtx(ctx, fmt.Errorf("failed to process upload: %w", err), zap.String("kind", string(u.kind)))
		return nil, err
	}

	p.metrics.ObserveUpload(string(result.Kind), statusSuccess, p.clock.Since(started))
	logger.InfoCtx(ctx, "Upload processed",
		zap.String("kind", string(result.Kind)),
		zap.Strings("keys", result.Keys()),
		zap.Duration("elapsed", p.clock.Since(started)),
	)

	p.publishProcessed(ctx, req, result)
	return result, nil
}

// read enforces the declared size, reads the body and re-validates against the resolved type
func (p *processor) read(ctx context.Context, req *domain.UploadRequest) (*upload, error) {
	declared := classifier.Normalize(req.MimeType)
	sniff := declared == "" || declared == "application/octet-stream"

	limit := p.classifier.MaxLimit()
	if !sniff {
		kind := classifier.Classify(declared)
		if req.Size > 0 {
			if err := p.classifier.Validate(kind, req.Size); err != nil {
				return nil, err
			}
		}
		limit = p.classifier.Limit(kind)
	}

	data, err := p.io.ReadAtMost(req.Body, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read upload: %w", domain.ErrInvalidInput, err)
	}

	mimeType := classifier.ResolveType(declared, data)
	kind := classifier.Classify(mimeType)
	if err := p.classifier.Validate(kind, int64(len(data))); err != nil {
		return nil, err
	}

	if sniff {
		logger.DebugCtx(ctx, "Detected content type", zap.String("mimeType", mimeType))
	}

	return &upload{req: req, data: data, mimeType: mimeType, kind: kind}, nil
}

// store uploads one rendition
func (p *processor) store(ctx context.Context, tier domain.Tier, key string, data []byte, contentType string, width, height *int) (domain.Rendition, error) {
	url, err := p.uploader.Upload(ctx, key, data, contentType)
	if err != nil {
		return domain.Rendition{}, err
	}

	return domain.Rendition{
		Tier:        tier,
		Key:         key,
		URL:         url,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		Width:       width,
		Height:      height,
	}, nil
}

// rollback removes the renditions a failing call may have written; absent keys are skipped
func (p *processor) rollback(ctx context.Context, candidates []string) {
	ctx = context.WithoutCancel(ctx)
	for _, key := range candidates {
		if !p.uploader.Delete(ctx, key) {
			logger.WarnCtx(ctx, "Rendition left behind after failed upload", zap.String("key", key))
		}
	}
}

func (p *processor) publishProcessed(ctx context.Context, req *domain.UploadRequest, result *domain.UploadResult) {
	event := &domain.MediaEvent{
		ID:         p.ids.NewID(),
		Type:       domain.EventTypeProcessed,
		Kind:       result.Kind,
		OwnerID:    req.OwnerID,
		Context:    keys.SanitizeContext(req.Context),
		Keys:       result.Keys(),
		OccurredAt: result.Metadata.ProcessedAt,
	}

	if err := p.publisher.PublishEvent(ctx, event); err != nil {
		logger.WarnCtx(ctx, "Failed to publish media event", zap.Error(err), zap.String("subject", event.Subject()))
	}
}

// originalName returns the client file name without any directory part
func originalName(filename string) string {
	filename = strings.TrimSpace(filename)
	if i := strings.LastIndexAny(filename, `/\`); i >= 0 {
		filename = filename[i+1:]
	}
	return filename
}

func isToolUnavailable(err error) bool {
	return errors.Is(err, domain.ErrToolUnavailable)
}
