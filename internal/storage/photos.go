// Package storage keeps check-in photos in an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/fieldops/attendance-service/internal/config"
)

// partSize bounds memory use for uploads of unknown length.
const partSize = 10 * 1024 * 1024

// PhotoStore writes check-in photos to MinIO.
type PhotoStore struct {
	client *minio.Client
	bucket string
}

// NewPhotoStore connects to the configured endpoint and makes sure the bucket exists.
func NewPhotoStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*PhotoStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	store := &PhotoStore{client: client, bucket: cfg.Bucket}
	if err := store.ensureBucket(ctx); err != nil {
		// Storage may come up after the API; uploads will report the outage.
		logger.Warn("photo bucket not ready", zap.String("bucket", cfg.Bucket), zap.Error(err))
	} else {
		logger.Info("photo store ready", zap.String("endpoint", cfg.Endpoint), zap.String("bucket", cfg.Bucket))
	}
	return store, nil
}

func (s *PhotoStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
}

// Put uploads the object under key. size may be -1 when unknown.
func (s *PhotoStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
		PartSize:    partSize,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// PhotoKey builds an object key unique per upload, grouped by employee and day.
func PhotoKey(employeeID int64, contentType string, now time.Time) string {
	ext := ".jpg"
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 && !slices.Contains(exts, ext) {
		ext = exts[0]
	}
	return path.Join(
		"checkin",
		fmt.Sprintf("%d", employeeID),
		now.UTC().Format("20060102"),
		uuid.NewString()+ext,
	)
}
