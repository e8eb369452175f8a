package transformer

import (
	"context"
	"errors"

	"github.com/amora-app/media-pipeline/internal/config"
)

// ErrTooManyPixels is returned when the decoded image exceeds the maximum pixel count
var ErrTooManyPixels = errors.New("image exceeds maximum pixel count")

// Config is an alias to config.TransformConfig for convenience
type Config = config.TransformConfig

// Encoded is a single WebP rendition
type Encoded struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// TransformResult holds every tier derived from one source image
type TransformResult struct {
	// Original is the source bounded to the large tier; it is stored under the original tier
	Original  Encoded
	Medium    Encoded
	Thumbnail Encoded

	// OriginalWidth and OriginalHeight are measured after EXIF rotation
	OriginalWidth  int
	OriginalHeight int

	// OriginalSize is the size of the source in bytes
	OriginalSize int64
}

// Transformer derives normalized WebP renditions from still images
//
//go:generate mockgen -source=types.go -destination=../../mocks/transformer.go -package=mocks -mock_names=Transformer=MockTransformer
type Transformer interface {
	// Transform decodes data and produces the original, medium and thumbnail tiers.
	// This method is safe for concurrent use and enforces the configured worker concurrency.
	Transform(ctx context.Context, data []byte) (*TransformResult, error)

	// Thumbnail produces only the thumbnail tier
	Thumbnail(ctx context.Context, data []byte) (*Encoded, error)

	// Close gracefully shuts down the transformer and its worker pool
	Close() error
}
