package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hotelbook/hotelbook/backend/go-services/internal/media"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStorage hosts hotel images in a MinIO (or S3 compatible) bucket.
// It implements media.Host, media.Remover and media.Checker.
type MinIOStorage struct {
	client *minio.Client
	bucket string
	base   string
	prefix string
}

// NewMinIOStorage creates a new MinIO storage client and ensures the bucket exists.
func NewMinIOStorage(cfg *MinIOConfig) (*MinIOStorage, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &MinIOStorage{client: mc, bucket: cfg.Bucket, base: cfg.publicBase(), prefix: cfg.Prefix}
	// ensure bucket exists (idempotent)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		// ignore "already exists" style errors
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return s, nil
}

func (s *MinIOStorage) Name() string { return "minio" }

// Upload decodes the data URI and stores the bytes under a fresh key.
func (s *MinIOStorage) Upload(ctx context.Context, dataURI string) (string, error) {
	contentType, data, err := media.DecodeDataURI(dataURI)
	if err != nil {
		return "", err
	}
	key := s.prefix + uuid.NewString() + extensionFor(contentType)
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("minio put %s: %w", key, err)
	}
	return s.base + "/" + key, nil
}

// Remove deletes an object previously returned by Upload.
func (s *MinIOStorage) Remove(ctx context.Context, url string) error {
	key, ok := s.keyFor(url)
	if !ok {
		return fmt.Errorf("minio: %q is not hosted in bucket %s", url, s.bucket)
	}
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

func (s *MinIOStorage) Ready(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("minio bucket %s missing", s.bucket)
	}
	return nil
}

func (s *MinIOStorage) keyFor(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, s.base+"/")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

var extensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/avif":    ".avif",
	"image/svg+xml": ".svg",
}

func extensionFor(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	return extensions[ct]
}
