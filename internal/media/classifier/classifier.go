package classifier

import (
	"fmt"
	"mime"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"github.com/amora-app/media-pipeline/internal/domain"
)

// sniffLength is the number of leading bytes inspected when the declared type is missing
const sniffLength = 3072

var (
	imageTypes = map[string]struct{}{
		"image/jpeg": {},
		"image/png":  {},
		"image/gif":  {},
		"image/webp": {},
	}

	videoTypes = map[string]struct{}{
		"video/mp4":       {},
		"video/avi":       {},
		"video/x-msvideo": {},
		"video/mov":       {},
		"video/quicktime": {},
		"video/webm":      {},
	}

	audioTypes = map[string]struct{}{
		"audio/mp3":   {},
		"audio/mpeg":  {},
		"audio/wav":   {},
		"audio/x-wav": {},
		"audio/aac":   {},
		"audio/m4a":   {},
		"audio/x-m4a": {},
		"audio/mp4":   {},
		"audio/ogg":   {},
	}
)

// Limits holds per-kind size caps in bytes; zero values fall back to the defaults
type Limits struct {
	Image int64
	Video int64
	Audio int64
	File  int64
}

// Classifier routes uploads to a pipeline and enforces size caps
type Classifier struct {
	limits Limits
}

// New creates a classifier with the given limits
func New(limits Limits) *Classifier {
	if limits.Image <= 0 {
		limits.Image = domain.DefaultMaxImageSize
	}
	if limits.Video <= 0 {
		limits.Video = domain.DefaultMaxVideoSize
	}
	if limits.Audio <= 0 {
		limits.Audio = domain.DefaultMaxAudioSize
	}
	if limits.File <= 0 {
		limits.File = domain.DefaultMaxFileSize
	}
	return &Classifier{limits: limits}
}

// Normalize lower-cases a content type and strips its parameters
func Normalize(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		return strings.ToLower(mediaType)
	}
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// Classify maps a content type to the pipeline that handles it.
// Types outside every allow-list are handled as generic files.
func Classify(contentType string) domain.MediaKind {
	ct := Normalize(contentType)
	if _, ok := imageTypes[ct]; ok {
		return domain.MediaKindImage
	}
	if _, ok := videoTypes[ct]; ok {
		return domain.MediaKindVideo
	}
	if _, ok := audioTypes[ct]; ok {
		return domain.MediaKindAudio
	}
	return domain.MediaKindFile
}

// ResolveType returns the effective content type of a payload.
// The declared type wins unless it is empty or application/octet-stream, in which case
// the leading bytes are sniffed.
func ResolveType(declared string, data []byte) string {
	ct := Normalize(declared)
	if ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if len(data) == 0 {
		return "application/octet-stream"
	}
	if len(data) > sniffLength {
		data = data[:sniffLength]
	}
	return Normalize(mimetype.Detect(data).String())
}

// Limit returns the size cap of a media kind
func (c *Classifier) Limit(kind domain.MediaKind) int64 {
	switch kind {
	case domain.MediaKindImage:
		return c.limits.Image
	case domain.MediaKindVideo:
		return c.limits.Video
	case domain.MediaKindAudio, domain.MediaKindVoice:
		return c.limits.Audio
	default:
		return c.limits.File
	}
}

// Validate checks the payload size against the cap of its kind
func (c *Classifier) Validate(kind domain.MediaKind, size int64) error {
	if size <= 0 {
		return fmt.Errorf("%w: empty %s upload", domain.ErrInvalidInput, kind)
	}

	limit := c.Limit(kind)
	if size > limit {
		return fmt.Errorf("%w: %s upload of %s exceeds the %s limit",
			domain.ErrInvalidInput, kind, humanize.IBytes(uint64(size)), humanize.IBytes(uint64(limit)))
	}
	return nil
}

// MaxLimit returns the largest cap across all kinds
func (c *Classifier) MaxLimit() int64 {
	return max(c.limits.Image, c.limits.Video, c.limits.Audio, c.limits.File)
}

// Extension returns the file extension, without dot, conventionally used for a content type
func Extension(contentType string) string {
	switch Normalize(contentType) {
	case "audio/mp3", "audio/mpeg":
		return "mp3"
	case "audio/m4a", "audio/x-m4a", "audio/mp4":
		return "m4a"
	case "audio/wav", "audio/x-wav":
		return "wav"
	case "video/mov", "video/quicktime":
		return "mov"
	case "video/avi", "video/x-msvideo":
		return "avi"
	case "audio/ogg":
		return "ogg"
	case "image/jpeg":
		return "jpg"
	}

	if m := mimetype.Lookup(Normalize(contentType)); m != nil && m.Extension() != "" {
		return strings.TrimPrefix(m.Extension(), ".")
	}
	return "bin"
}
