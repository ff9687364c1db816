package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"clientportal/internal/domain"
	"clientportal/internal/domain/repositories"
)

// MinioStore implements BlobStore for MinIO/S3 compatible storage.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// MinioConfig holds the connection settings for NewMinioStore.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewMinioStore connects to MinIO and ensures the bucket exists.
func NewMinioStore(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

var _ repositories.BlobStore = (*MinioStore)(nil)

// Exists reports whether an object is stored under key.
func (m *MinioStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat object: %w", err)
	}
	return true, nil
}

// Read opens an object for streaming.
func (m *MinioStore) Read(ctx context.Context, key string) (io.ReadCloser, *repositories.BlobInfo, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("get object: %w", err)
	}
	// GetObject is lazy; Stat surfaces a missing key
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		if isNoSuchKey(err) {
			return nil, nil, fmt.Errorf("blob %s: %w", key, domain.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("stat object: %w", err)
	}
	return obj, &repositories.BlobInfo{Size: info.Size, ContentType: info.ContentType}, nil
}

// Write uploads an object.
func (m *MinioStore) Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

// Delete removes an object. S3 deletes are idempotent, so the key is
// checked first to report a missing blob.
func (m *MinioStore) Delete(ctx context.Context, key string) error {
	exists, err := m.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("blob %s: %w", key, domain.ErrNotFound)
	}
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}
