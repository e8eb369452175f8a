package classifier_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amora-app/media-pipeline/internal/domain"
	"github.com/amora-app/media-pipeline/internal/media/classifier"
)

// Small 1x1 pixel PNG
var testPNG = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4, 0x89, 0x00, 0x00, 0x00,
	0x0A, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4E, 0x44, 0xAE, 0x42, 0x60, 0x82,
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		expected    domain.MediaKind
	}{
		{name: "jpeg", contentType: "image/jpeg", expected: domain.MediaKindImage},
		{name: "png", contentType: "image/png", expected: domain.MediaKindImage},
		{name: "gif", contentType: "image/gif", expected: domain.MediaKindImage},
		{name: "webp", contentType: "image/webp", expected: domain.MediaKindImage},
		{name: "uppercase with params", contentType: "IMAGE/JPEG; charset=binary", expected: domain.MediaKindImage},
		{name: "mp4", contentType: "video/mp4", expected: domain.MediaKindVideo},
		{name: "quicktime", contentType: "video/quicktime", expected: domain.MediaKindVideo},
		{name: "webm", contentType: "video/webm", expected: domain.MediaKindVideo},
		{name: "avi", contentType: "video/avi", expected: domain.MediaKindVideo},
		{name: "mp3", contentType: "audio/mp3", expected: domain.MediaKindAudio},
		{name: "mpeg audio", contentType: "audio/mpeg", expected: domain.MediaKindAudio},
		{name: "m4a", contentType: "audio/m4a", expected: domain.MediaKindAudio},
		{name: "x-m4a", contentType: "audio/x-m4a", expected: domain.MediaKindAudio},
		{name: "ogg", contentType: "audio/ogg", expected: domain.MediaKindAudio},
		{name: "wav", contentType: "audio/wav", expected: domain.MediaKindAudio},
		{name: "svg is a file", contentType: "image/svg+xml", expected: domain.MediaKindFile},
		{name: "bmp is a file", contentType: "image/bmp", expected: domain.MediaKindFile},
		{name: "pdf", contentType: "application/pdf", expected: domain.MediaKindFile},
		{name: "empty", contentType: "", expected: domain.MediaKindFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifier.Classify(tt.contentType))
		})
	}
}

func TestValidate(t *testing.T) {
	c := classifier.New(classifier.Limits{})

	tests := []struct {
		name    string
		kind    domain.MediaKind
		size    int64
		wantErr bool
	}{
		{name: "image at cap", kind: domain.MediaKindImage, size: 10 * 1024 * 1024},
		{name: "image over cap", kind: domain.MediaKindImage, size: 10*1024*1024 + 1, wantErr: true},
		{name: "video under cap", kind: domain.MediaKindVideo, size: 99 * 1024 * 1024},
		{name: "video over cap", kind: domain.MediaKindVideo, size: 101 * 1024 * 1024, wantErr: true},
		{name: "audio over cap", kind: domain.MediaKindAudio, size: 51 * 1024 * 1024, wantErr: true},
		{name: "voice shares audio cap", kind: domain.MediaKindVoice, size: 51 * 1024 * 1024, wantErr: true},
		{name: "file under cap", kind: domain.MediaKindFile, size: 100 * 1024 * 1024},
		{name: "empty payload", kind: domain.MediaKindImage, size: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Validate(tt.kind, tt.size)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrInvalidInput))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidate_MessageIsHumanReadable(t *testing.T) {
	c := classifier.New(classifier.Limits{Image: 1024})

	err := c.Validate(domain.MediaKindImage, 2048)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2.0 KiB")
	assert.Contains(t, err.Error(), "1.0 KiB")
}

func TestLimits(t *testing.T) {
	c := classifier.New(classifier.Limits{Image: 1, Video: 2, Audio: 3, File: 4})

	assert.Equal(t, int64(1), c.Limit(domain.MediaKindImage))
	assert.Equal(t, int64(2), c.Limit(domain.MediaKindVideo))
	assert.Equal(t, int64(3), c.Limit(domain.MediaKindAudio))
	assert.Equal(t, int64(3), c.Limit(domain.MediaKindVoice))
	assert.Equal(t, int64(4), c.Limit(domain.MediaKindFile))
	assert.Equal(t, int64(4), c.MaxLimit())
}

func TestResolveType(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		data     []byte
		expected string
	}{
		{name: "declared wins", declared: "image/jpeg", data: testPNG, expected: "image/jpeg"},
		{name: "declared normalized", declared: "Audio/MP3 ; q=1", data: nil, expected: "audio/mp3"},
		{name: "sniff when empty", declared: "", data: testPNG, expected: "image/png"},
		{name: "sniff when octet-stream", declared: "application/octet-stream", data: testPNG, expected: "image/png"},
		{name: "no data", declared: "", data: nil, expected: "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifier.ResolveType(tt.declared, tt.data))
		})
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		contentType string
		expected    string
	}{
		{contentType: "image/jpeg", expected: "jpg"},
		{contentType: "image/png", expected: "png"},
		{contentType: "image/webp", expected: "webp"},
		{contentType: "video/mp4", expected: "mp4"},
		{contentType: "video/quicktime", expected: "mov"},
		{contentType: "audio/x-m4a", expected: "m4a"},
		{contentType: "audio/mpeg", expected: "mp3"},
		{contentType: "audio/ogg", expected: "ogg"},
		{contentType: "application/pdf", expected: "pdf"},
		{contentType: "application/x-made-up", expected: "bin"},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifier.Extension(tt.contentType))
		})
	}
}
