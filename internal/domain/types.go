package domain

import (
	"io"
	"time"
)

// MediaKind is the processing category an upload is routed to
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
	MediaKindAudio MediaKind = "audio"
	MediaKindVoice MediaKind = "voice"
	MediaKindFile  MediaKind = "file"
)

// IsValidMediaKind checks if a media kind is known
func IsValidMediaKind(kind MediaKind) bool {
	return kind == MediaKindImage ||
		kind == MediaKindVideo ||
		kind == MediaKindAudio ||
		kind == MediaKindVoice ||
		kind == MediaKindFile
}

// Tier names a stored rendition of an upload
type Tier string

const (
	TierOriginal  Tier = "original"
	TierLarge     Tier = "large"
	TierMedium    Tier = "medium"
	TierThumbnail Tier = "thumbnail"
)

// UploadRequest is a single upload handed to the pipeline
type UploadRequest struct {
	// OwnerID is the numeric id of the uploading user
	OwnerID int64
	// Context is the usage context (e.g. "profile", "chat") used as a key namespace
	Context string
	// Body is the raw payload
	Body io.Reader
	// MimeType is the declared content type
	MimeType string
	// Size is the declared payload size in bytes
	Size int64
	// Filename is the client-supplied name, used for the generic file extension
	Filename string
	// Options carries free-form hints such as is_voice_message and duration_hint
	Options Options
}

// Rendition is one stored output of an upload
type Rendition struct {
	Tier        Tier   `json:"tier"`
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	Width       *int   `json:"width,omitempty"`
	Height      *int   `json:"height,omitempty"`
}

// Metadata describes the source and the processed output of an upload
type Metadata struct {
	OriginalWidth   *int      `json:"original_width,omitempty"`
	OriginalHeight  *int      `json:"original_height,omitempty"`
	ProcessedWidth  *int      `json:"processed_width,omitempty"`
	ProcessedHeight *int      `json:"processed_height,omitempty"`
	FileSize        int64     `json:"file_size"`
	MimeType        string    `json:"mime_type"`
	OriginalName    string    `json:"original_name,omitempty"`
	ConvertedFormat *string   `json:"converted_format,omitempty"`
	DurationSeconds *float64  `json:"duration,omitempty"`
	IsVoiceMessage  *bool     `json:"is_voice_message,omitempty"`
	Degraded        bool      `json:"degraded,omitempty"`
	ProcessedAt     time.Time `json:"processed_at"`
}

// UploadResult is the outcome of a successful Process call
type UploadResult struct {
	Kind       MediaKind          `json:"kind"`
	Renditions map[Tier]Rendition `json:"renditions"`
	Metadata   Metadata           `json:"metadata"`
}

// StorageKeySet is the set of object keys written for one upload
type StorageKeySet []string

// Keys returns every storage key of the result, ordered original, medium, thumbnail
func (r *UploadResult) Keys() StorageKeySet {
	if r == nil {
		return nil
	}

	keys := make(StorageKeySet, 0, len(r.Renditions))
	for _, tier := range []Tier{TierOriginal, TierLarge, TierMedium, TierThumbnail} {
		if rendition, ok := r.Renditions[tier]; ok && rendition.Key != "" {
			keys = append(keys, rendition.Key)
		}
	}
	return keys
}

// URL returns the public URL of the requested tier.
// Large resolves to original; missing medium and thumbnail tiers fall back to original.
func (r *UploadResult) URL(tier Tier) string {
	if r == nil {
		return ""
	}

	if tier == TierLarge {
		tier = TierOriginal
	}
	if rendition, ok := r.Renditions[tier]; ok && rendition.URL != "" {
		return rendition.URL
	}
	return r.Renditions[TierOriginal].URL
}

// DeleteResult reports the outcome of a cleanup batch
type DeleteResult struct {
	Success    bool     `json:"success"`
	Deleted    []string `json:"deleted"`
	Missing    []string `json:"missing,omitempty"`
	Skipped    int      `json:"skipped,omitempty"`
	FailedKeys []string `json:"failed_keys"`
}
