package processor

import (
	"context"
	"path"
	"strings"

	"github.com/amora-app/media-pipeline/internal/domain"
	"github.com/amora-app/media-pipeline/internal/media/classifier"
)

// processFile stores anything outside the media allow-lists unchanged
func (p *processor) processFile(ctx context.Context, u *upload) (*domain.UploadResult, error) {
	key := p.keys.Base(u.req.Context, u.req.OwnerID, fileExt(u.req.Filename, u.mimeType))

	original, err := p.store(ctx, domain.TierOriginal, key, u.data, u.mimeType, nil, nil)
	if err != nil {
		return nil, err
	}

	return &domain.UploadResult{
		Kind:       domain.MediaKindFile,
		Renditions: map[domain.Tier]domain.Rendition{domain.TierOriginal: original},
		Metadata: domain.Metadata{
			FileSize:     int64(len(u.data)),
			MimeType:     u.mimeType,
			OriginalName: originalName(u.req.Filename),
			ProcessedAt:  p.clock.Now(),
		},
	}, nil
}

// fileExt prefers the client file extension and falls back to the content type
func fileExt(filename, mimeType string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(originalName(filename)), "."))
	if ext != "" && strings.IndexFunc(ext, func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	}) < 0 {
		return ext
	}
	return classifier.Extension(mimeType)
}
