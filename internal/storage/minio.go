package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioClient is the subset of *minio.Client used by the minio driver
//
//go:generate mockgen -source=minio.go -destination=../mocks/minio.go -package=mocks -mock_names=MinioClient=MockMinioClient
type MinioClient interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
}

// MinioConfig holds the settings of an S3-compatible endpoint (MinIO, R2, AWS)
type MinioConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Region        string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

type minioBackend struct {
	client MinioClient
	cfg    MinioConfig
}

// NewMinioClient dials an S3-compatible endpoint
func NewMinioClient(cfg MinioConfig) (MinioClient, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return client, nil
}

// NewMinioBackend creates a Backend over an S3-compatible client
func NewMinioBackend(cfg MinioConfig, client MinioClient) Backend {
	return &minioBackend{client: client, cfg: cfg}
}

func (b *minioBackend) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := b.client.PutObject(ctx, b.cfg.Bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (b *minioBackend) Exists(ctx context.Context, key string) (bool, error) {
	_, err := b.client.StatObject(ctx, b.cfg.Bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}

	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	return false, err
}

func (b *minioBackend) Remove(ctx context.Context, key string) error {
	return b.client.RemoveObject(ctx, b.cfg.Bucket, key, minio.RemoveObjectOptions{})
}

func (b *minioBackend) URL(key string) string {
	if b.cfg.PublicBaseURL != "" {
		return joinURL(b.cfg.PublicBaseURL, key)
	}

	scheme := "http"
	if b.cfg.UseSSL {
		scheme = "https"
	}
	return joinURL(fmt.Sprintf("%s://%s/%s", scheme, b.cfg.Endpoint, b.cfg.Bucket), key)
}

func (b *minioBackend) Name() string {
	return DriverMinio
}

// EnsureBucket creates the configured bucket when it does not exist yet
func (b *minioBackend) EnsureBucket(ctx context.Context) error {
	exists, err := b.client.BucketExists(ctx, b.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", b.cfg.Bucket, err)
	}
	if exists {
		return nil
	}

	if err := b.client.MakeBucket(ctx, b.cfg.Bucket, minio.MakeBucketOptions{Region: b.cfg.Region}); err != nil {
		// Another instance may have won the race
		resp := minio.ToErrorResponse(err)
		if resp.Code == "BucketAlreadyOwnedByYou" || resp.Code == "BucketAlreadyExists" {
			return nil
		}
		return fmt.Errorf("failed to create bucket %s: %w", b.cfg.Bucket, err)
	}
	return nil
}
