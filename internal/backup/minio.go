package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/glossary/api/internal/config"
)

// DefaultPrefix is the object key prefix for mirrored backups.
const DefaultPrefix = "glossary-backups"

// MinioSink mirrors local backup files to an S3-compatible bucket.
type MinioSink struct {
	client *minio.Client
	bucket string
	prefix string
}

func NewMinioSink(ctx context.Context, cfg config.S3Config) (*MinioSink, error) {
	if !cfg.Enabled() {
		return nil, errors.New("s3 endpoint and bucket are required")
	}
	endpoint, secure := splitEndpoint(cfg.Endpoint)

	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Region: cfg.Region,
		Secure: secure,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	found, err := mc.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !found {
		return nil, fmt.Errorf("bucket %q doesn't exist", cfg.Bucket)
	}

	return &MinioSink{client: mc, bucket: cfg.Bucket, prefix: DefaultPrefix}, nil
}

// Upload stores data under the sink prefix using the base name of name.
func (s *MinioSink) Upload(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, ObjectName(s.prefix, name),
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "text/csv; charset=utf-8"})
	return err
}

// ObjectName joins prefix with the base name of a local backup path.
func ObjectName(prefix, name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if prefix == "" {
		return base
	}
	return strings.TrimSuffix(prefix, "/") + "/" + base
}

// splitEndpoint strips an http(s) scheme; anything but plain http is secure.
func splitEndpoint(endpoint string) (string, bool) {
	switch {
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimPrefix(endpoint, "http://"), false
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimPrefix(endpoint, "https://"), true
	}
	return endpoint, true
}
