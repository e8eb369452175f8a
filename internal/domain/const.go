package domain

// Rendition bounds and encoder qualities
const (
	LargeMaxDimension  = 1200
	MediumMaxDimension = 300
	ThumbnailSize      = 50

	LargeQuality     = 95
	MediumQuality    = 90
	ThumbnailQuality = 85
)

// Default per-kind size caps in bytes
const (
	DefaultMaxImageSize int64 = 10 * 1024 * 1024
	DefaultMaxVideoSize int64 = 100 * 1024 * 1024
	DefaultMaxAudioSize int64 = 50 * 1024 * 1024
	DefaultMaxFileSize  int64 = 100 * 1024 * 1024
)

// VoiceDurationThreshold is the longest clip, in seconds, still treated as a voice message
const VoiceDurationThreshold = 300.0

// Content types and extensions of normalized outputs
const (
	ContentTypeWebP = "image/webp"
	ContentTypeMP4  = "video/mp4"
	ContentTypeOgg  = "audio/ogg"

	FormatWebP = "webp"
	FormatMP4  = "mp4"
	FormatOgg  = "ogg"
)

// Option keys recognized in UploadRequest.Options
const (
	OptionIsVoiceMessage = "is_voice_message"
	OptionDurationHint   = "duration_hint"
	OptionDuration       = "duration"
)
