package keys

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/amora-app/media-pipeline/internal/adapter"
	"github.com/amora-app/media-pipeline/internal/domain"
)

const (
	rootPrefix     = "media"
	voiceContext   = "voice"
	defaultContext = "misc"

	thumbnailDir    = "thumbnails"
	thumbnailSuffix = "_thumb"
	mediumDir       = "medium"
	mediumSuffix    = "_medium"
)

// IDGenerator produces the random disambiguator embedded in base keys
//
//go:generate mockgen -source=keys.go -destination=../../mocks/keys.go -package=mocks -mock_names=IDGenerator=MockIDGenerator
type IDGenerator interface {
	NewID() string
}

// ULIDGenerator generates lower-cased ULIDs seeded by the clock
type ULIDGenerator struct {
	clock adapter.Clock
}

// NewULIDGenerator creates an IDGenerator backed by oklog/ulid
func NewULIDGenerator(clock adapter.Clock) IDGenerator {
	return &ULIDGenerator{clock: clock}
}

func (g *ULIDGenerator) NewID() string {
	return strings.ToLower(ulid.MustNewDefault(g.clock.Now()).String())
}

// Builder produces storage keys for renditions
type Builder struct {
	clock adapter.Clock
	ids   IDGenerator
}

// NewBuilder creates a key builder
func NewBuilder(clock adapter.Clock, ids IDGenerator) *Builder {
	return &Builder{clock: clock, ids: ids}
}

// Base returns a fresh key media/{context}/{owner}/{context}_{owner}_{unix}_{id}.{ext}
func (b *Builder) Base(context string, ownerID int64, ext string) string {
	ctx := SanitizeContext(context)
	filename := fmt.Sprintf("%s_%d_%d_%s.%s", ctx, ownerID, b.clock.Now().Unix(), b.ids.NewID(), normalizeExt(ext))
	return path.Join(rootPrefix, ctx, fmt.Sprintf("%d", ownerID), filename)
}

// Voice returns media/voice/{owner}/voice_{owner}_{unixMillis}.{ext} for the given instant
func (b *Builder) Voice(ownerID int64, ext string, at time.Time) string {
	filename := fmt.Sprintf("%s_%d_%d.%s", voiceContext, ownerID, at.UnixMilli(), normalizeExt(ext))
	return path.Join(rootPrefix, voiceContext, fmt.Sprintf("%d", ownerID), filename)
}

// Now returns the builder clock's current time
func (b *Builder) Now() time.Time {
	return b.clock.Now()
}

// Thumbnail derives {dir}/thumbnails/{name}_thumb.webp from a base key
func Thumbnail(base string) string {
	return derive(base, thumbnailDir, thumbnailSuffix)
}

// Medium derives {dir}/medium/{name}_medium.webp from a base key
func Medium(base string) string {
	return derive(base, mediumDir, mediumSuffix)
}

// ForTier returns the key of a tier derived from the base key
func ForTier(base string, tier domain.Tier) string {
	switch tier {
	case domain.TierMedium:
		return Medium(base)
	case domain.TierThumbnail:
		return Thumbnail(base)
	default:
		return base
	}
}

func derive(base, dir, suffix string) string {
	d, file := path.Split(base)
	name := strings.TrimSuffix(file, path.Ext(file))
	return path.Join(d, dir, name+suffix+"."+domain.FormatWebP)
}

// SanitizeContext lower-cases a context tag and replaces anything outside [a-z0-9_-] with '_'
func SanitizeContext(context string) string {
	context = strings.ToLower(strings.TrimSpace(context))
	if context == "" {
		return defaultContext
	}

	var sb strings.Builder
	for _, r := range context {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

// FromURL recovers a storage key from a public or path-style URL.
// A leading slash and a leading bucket segment are stripped; inputs that are already keys pass through.
func FromURL(rawURL, bucket string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}

	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Scheme != "" && u.Host != "" {
		p = u.Path
	}

	p = strings.TrimPrefix(p, "/")
	if bucket != "" {
		p = strings.TrimPrefix(p, bucket+"/")
	}
	return p
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if ext == "" {
		return "bin"
	}
	return ext
}
