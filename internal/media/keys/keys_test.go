package keys_test

import (
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/amora-app/media-pipeline/internal/adapter"
	"github.com/amora-app/media-pipeline/internal/domain"
	"github.com/amora-app/media-pipeline/internal/media/keys"
	"github.com/amora-app/media-pipeline/internal/mocks"
)

func TestBuilder_Base(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClock := mocks.NewMockClock(ctrl)
	mockIDs := mocks.NewMockIDGenerator(ctrl)

	now := time.Unix(1700000000, 0)
	mockClock.EXPECT().Now().Return(now).AnyTimes()
	gomock.InOrder(
		mockIDs.EXPECT().NewID().Return("01hf0000000000000000000000"),
		mockIDs.EXPECT().NewID().Return("01hf0000000000000000000001"),
	)

	b := keys.NewBuilder(mockClock, mockIDs)

	first := b.Base("profile_photos", 42, "webp")
	second := b.Base("profile_photos", 42, ".WEBP")

	assert.Equal(t, "media/profile_photos/42/profile_photos_42_1700000000_01hf0000000000000000000000.webp", first)
	assert.Equal(t, "media/profile_photos/42/profile_photos_42_1700000000_01hf0000000000000000000001.webp", second)
	assert.NotEqual(t, first, second)
}

func TestBuilder_Base_SanitizesContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClock := mocks.NewMockClock(ctrl)
	mockIDs := mocks.NewMockIDGenerator(ctrl)
	mockClock.EXPECT().Now().Return(time.Unix(10, 0)).AnyTimes()
	mockIDs.EXPECT().NewID().Return("x").AnyTimes()

	b := keys.NewBuilder(mockClock, mockIDs)

	assert.Equal(t, "media/chat_room/7/chat_room_7_10_x.mp4", b.Base("Chat Room", 7, "mp4"))
	assert.Equal(t, "media/misc/7/misc_7_10_x.bin", b.Base("", 7, ""))
	assert.Equal(t, "media/______/7/_______7_10_x.ogg", b.Base("../../", 7, "ogg"))
}

func TestBuilder_Voice(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	b := keys.NewBuilder(mocks.NewMockClock(ctrl), mocks.NewMockIDGenerator(ctrl))

	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "media/voice/42/voice_42_1700000000123.ogg", b.Voice(42, "ogg", at))
	assert.Equal(t, "media/voice/42/voice_42_1700000000124.ogg", b.Voice(42, "ogg", at.Add(time.Millisecond)))
}

func TestDerivedKeys(t *testing.T) {
	base := "media/profile_photos/42/profile_photos_42_1700000000_abc.webp"

	assert.Equal(t, "media/profile_photos/42/thumbnails/profile_photos_42_1700000000_abc_thumb.webp", keys.Thumbnail(base))
	assert.Equal(t, "media/profile_photos/42/medium/profile_photos_42_1700000000_abc_medium.webp", keys.Medium(base))

	video := "media/chat/9/chat_9_1_abc.mp4"
	assert.Equal(t, "media/chat/9/thumbnails/chat_9_1_abc_thumb.webp", keys.Thumbnail(video))

	assert.Equal(t, base, keys.ForTier(base, domain.TierOriginal))
	assert.Equal(t, base, keys.ForTier(base, domain.TierLarge))
	assert.Equal(t, keys.Medium(base), keys.ForTier(base, domain.TierMedium))
	assert.Equal(t, keys.Thumbnail(base), keys.ForTier(base, domain.TierThumbnail))
}

func TestFromURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		bucket   string
		expected string
	}{
		{name: "virtual hosted", url: "https://media.s3.amazonaws.com/media/chat/1/a.webp", bucket: "media-bucket", expected: "media/chat/1/a.webp"},
		{name: "path style", url: "http://localhost:9000/media-bucket/media/chat/1/a.webp", bucket: "media-bucket", expected: "media/chat/1/a.webp"},
		{name: "leading slash key", url: "/media/chat/1/a.webp", bucket: "", expected: "media/chat/1/a.webp"},
		{name: "plain key", url: "media/chat/1/a.webp", bucket: "media-bucket", expected: "media/chat/1/a.webp"},
		{name: "empty", url: "  ", bucket: "b", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, keys.FromURL(tt.url, tt.bucket))
		})
	}
}

func TestULIDGenerator(t *testing.T) {
	gen := keys.NewULIDGenerator(adapter.NewClock())

	seen := make(map[string]struct{})
	for range 1000 {
		id := gen.NewID()
		assert.Len(t, id, 26)
		_, dup := seen[id]
		assert.False(t, dup)
		seen[id] = struct{}{}
	}
}
