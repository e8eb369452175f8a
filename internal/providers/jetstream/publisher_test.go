package jetstream_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	natsjs "github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amora-app/media-pipeline/internal/adapter"
	"github.com/amora-app/media-pipeline/internal/domain"
	"github.com/amora-app/media-pipeline/internal/logger"
	"github.com/amora-app/media-pipeline/internal/mocks"
	"github.com/amora-app/media-pipeline/internal/providers/jetstream"
)

func init() {
	// Initialize logger for testing
	_ = logger.Initialize(logger.Config{
		Debug: true,
	})
}

func testConfig() jetstream.Config {
	return jetstream.Config{
		URL:            "nats://localhost:4222",
		StreamName:     "MEDIA_EVENTS",
		MaxReconnects:  10,
		ReconnectWait:  time.Second,
		ConnectionName: "media-api",
	}
}

func TestNewPublisher_PublishEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	natsJS := mocks.NewMockNatsJetStream(ctrl)
	conn := mocks.NewMockNatsConn(ctrl)
	js := mocks.NewMockJetStream(ctrl)

	natsJS.EXPECT().Connect("nats://localhost:4222", gomock.Any()).Return(conn, js, nil)
	js.EXPECT().
		CreateOrUpdateStream(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cfg natsjs.StreamConfig) error {
			assert.Equal(t, "MEDIA_EVENTS", cfg.Name)
			assert.Equal(t, []string{jetstream.SubjectWildcard}, cfg.Subjects)
			return nil
		})

	pub, err := jetstream.NewPublisher(context.Background(), testConfig(), natsJS, adapter.NewJSON())
	require.NoError(t, err)

	event := &domain.MediaEvent{
		ID:      "01j9z",
		Type:    domain.EventTypeProcessed,
		Kind:    domain.MediaKindImage,
		OwnerID: 42,
		Keys:    []string{"media/profile/42/a.webp"},
	}

	js.EXPECT().
		Publish(gomock.Any(), "media.processed.image", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, data []byte, _ ...natsjs.PublishOpt) (*natsjs.PubAck, error) {
			var got domain.MediaEvent
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, int64(42), got.OwnerID)
			assert.Equal(t, []string{"media/profile/42/a.webp"}, got.Keys)
			return &natsjs.PubAck{Stream: "MEDIA_EVENTS", Sequence: 1}, nil
		})

	require.NoError(t, pub.PublishEvent(context.Background(), event))

	conn.EXPECT().Drain().Return(nil)
	pub.Close()
}

func TestNewPublisher_ConnectError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	natsJS := mocks.NewMockNatsJetStream(ctrl)
	natsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(nil, nil, errors.New("no servers available for connection"))

	pub, err := jetstream.NewPublisher(context.Background(), testConfig(), natsJS, adapter.NewJSON())
	assert.Nil(t, pub)
	assert.ErrorContains(t, err, "failed to connect to NATS")
}

func TestNewPublisher_StreamError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	natsJS := mocks.NewMockNatsJetStream(ctrl)
	conn := mocks.NewMockNatsConn(ctrl)
	js := mocks.NewMockJetStream(ctrl)

	natsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(conn, js, nil)
	js.EXPECT().CreateOrUpdateStream(gomock.Any(), gomock.Any()).Return(errors.New("insufficient resources"))
	conn.EXPECT().Close()

	pub, err := jetstream.NewPublisher(context.Background(), testConfig(), natsJS, adapter.NewJSON())
	assert.Nil(t, pub)
	assert.ErrorContains(t, err, "MEDIA_EVENTS")
}

func TestPublishEvent_Failure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	natsJS := mocks.NewMockNatsJetStream(ctrl)
	conn := mocks.NewMockNatsConn(ctrl)
	js := mocks.NewMockJetStream(ctrl)

	natsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(conn, js, nil)
	js.EXPECT().CreateOrUpdateStream(gomock.Any(), gomock.Any()).Return(nil)
	js.EXPECT().Publish(gomock.Any(), "media.cleanup.failed", gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))

	pub, err := jetstream.NewPublisher(context.Background(), testConfig(), natsJS, adapter.NewJSON())
	require.NoError(t, err)

	err = pub.PublishEvent(context.Background(), &domain.MediaEvent{ID: "x", Type: domain.EventTypeCleanupFailed})
	assert.ErrorContains(t, err, "failed to publish event")
}
