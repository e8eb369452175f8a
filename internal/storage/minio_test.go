package storage_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amora-app/media-pipeline/internal/mocks"
	"github.com/amora-app/media-pipeline/internal/storage"
)

func testMinioConfig() storage.MinioConfig {
	return storage.MinioConfig{
		Endpoint: "minio.internal:9000",
		Region:   "us-east-1",
		Bucket:   "media-bucket",
		UseSSL:   true,
	}
}

func TestMinioBackend_Put(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockMinioClient(ctrl)
	backend := storage.NewMinioBackend(testMinioConfig(), client)

	client.EXPECT().
		PutObject(gomock.Any(), "media-bucket", "media/chat/1/a.mp4", gomock.Any(), int64(3), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, r io.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
			assert.Equal(t, "video/mp4", opts.ContentType)
			data, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, []byte("mp4"), data)
			return minio.UploadInfo{Key: "media/chat/1/a.mp4", Size: 3}, nil
		})

	err := backend.Put(context.Background(), "media/chat/1/a.mp4", bytesReader("mp4"), 3, "video/mp4")
	assert.NoError(t, err)
}

func TestMinioBackend_Exists(t *testing.T) {
	statErr := errors.New("connection refused")

	tests := []struct {
		name    string
		err     error
		want    bool
		wantErr error
	}{
		{
			name: "present",
			want: true,
		},
		{
			name: "no such key",
			err:  minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound},
			want: false,
		},
		{
			name: "not found without code",
			err:  minio.ErrorResponse{StatusCode: http.StatusNotFound},
			want: false,
		},
		{
			name:    "transport error",
			err:     statErr,
			wantErr: statErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			client := mocks.NewMockMinioClient(ctrl)
			backend := storage.NewMinioBackend(testMinioConfig(), client)

			client.EXPECT().
				StatObject(gomock.Any(), "media-bucket", "k", gomock.Any()).
				Return(minio.ObjectInfo{}, tt.err)

			got, err := backend.Exists(context.Background(), "k")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMinioBackend_Remove(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockMinioClient(ctrl)
	backend := storage.NewMinioBackend(testMinioConfig(), client)

	client.EXPECT().RemoveObject(gomock.Any(), "media-bucket", "k", gomock.Any()).Return(nil)

	assert.NoError(t, backend.Remove(context.Background(), "k"))
}

func TestMinioBackend_URL(t *testing.T) {
	tests := []struct {
		name string
		cfg  func(cfg *storage.MinioConfig)
		want string
	}{
		{
			name: "public base url",
			cfg: func(cfg *storage.MinioConfig) {
				cfg.PublicBaseURL = "https://cdn.example.com/"
			},
			want: "https://cdn.example.com/media/profile/1/a.webp",
		},
		{
			name: "tls endpoint",
			cfg:  func(cfg *storage.MinioConfig) {},
			want: "https://minio.internal:9000/media-bucket/media/profile/1/a.webp",
		},
		{
			name: "plain endpoint",
			cfg: func(cfg *storage.MinioConfig) {
				cfg.UseSSL = false
			},
			want: "http://minio.internal:9000/media-bucket/media/profile/1/a.webp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testMinioConfig()
			tt.cfg(&cfg)
			backend := storage.NewMinioBackend(cfg, nil)

			assert.Equal(t, tt.want, backend.URL("media/profile/1/a.webp"))
			assert.Equal(t, storage.DriverMinio, backend.Name())
		})
	}
}

func TestBootstrap_Minio(t *testing.T) {
	t.Run("existing bucket", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		client := mocks.NewMockMinioClient(ctrl)
		client.EXPECT().BucketExists(gomock.Any(), "media-bucket").Return(true, nil)
		client.EXPECT().MakeBucket(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		err := storage.Bootstrap(context.Background(), storage.NewMinioBackend(testMinioConfig(), client), time.Second)
		assert.NoError(t, err)
	})

	t.Run("creates missing bucket", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		client := mocks.NewMockMinioClient(ctrl)
		client.EXPECT().BucketExists(gomock.Any(), "media-bucket").Return(false, nil)
		client.EXPECT().
			MakeBucket(gomock.Any(), "media-bucket", minio.MakeBucketOptions{Region: "us-east-1"}).
			Return(nil)

		err := storage.Bootstrap(context.Background(), storage.NewMinioBackend(testMinioConfig(), client), time.Second)
		assert.NoError(t, err)
	})

	t.Run("bucket created concurrently", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		client := mocks.NewMockMinioClient(ctrl)
		client.EXPECT().BucketExists(gomock.Any(), "media-bucket").Return(false, nil)
		client.EXPECT().
			MakeBucket(gomock.Any(), "media-bucket", gomock.Any()).
			Return(minio.ErrorResponse{Code: "BucketAlreadyOwnedByYou", StatusCode: http.StatusConflict})

		err := storage.Bootstrap(context.Background(), storage.NewMinioBackend(testMinioConfig(), client), time.Second)
		assert.NoError(t, err)
	})

	t.Run("retries until ready", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		client := mocks.NewMockMinioClient(ctrl)
		gomock.InOrder(
			client.EXPECT().BucketExists(gomock.Any(), "media-bucket").Return(false, errors.New("dial tcp: connection refused")),
			client.EXPECT().BucketExists(gomock.Any(), "media-bucket").Return(true, nil),
		)

		err := storage.Bootstrap(context.Background(), storage.NewMinioBackend(testMinioConfig(), client), 10*time.Second)
		assert.NoError(t, err)
	})

	t.Run("gives up after timeout", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		client := mocks.NewMockMinioClient(ctrl)
		client.EXPECT().
			BucketExists(gomock.Any(), "media-bucket").
			Return(false, errors.New("dial tcp: connection refused")).
			MinTimes(1)

		err := storage.Bootstrap(context.Background(), storage.NewMinioBackend(testMinioConfig(), client), 10*time.Millisecond)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage bucket not ready")
	})
}
