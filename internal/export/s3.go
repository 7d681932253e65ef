package export

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/config"
)

// S3Sink кладёт файлы в бакет S3/MinIO под ключом prefix+name.
type S3Sink struct {
	client *mclient.Client
	bucket string
	prefix string
}

// NewS3Sink убирает схему из endpoint (Secure выбирается по ней)
// и проверяет, что бакет существует.
func NewS3Sink(ctx context.Context, cfg config.ExportConfig) (*S3Sink, error) {
	const op = "export/s3/NewS3Sink"

	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("%s: s3 endpoint and bucket are required", op)
	}

	endpoint := cfg.Endpoint
	secure := strings.HasPrefix(endpoint, "https://")

	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !exists {
		return nil, fmt.Errorf("%s: bucket %q does not exist", op, cfg.Bucket)
	}

	return &S3Sink{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (s *S3Sink) Key(name string) string { return s.prefix + name }

func (s *S3Sink) Put(ctx context.Context, name, contentType string, r io.Reader, size int64) error {
	const op = "export/s3/Put"

	_, err := s.client.PutObject(ctx, s.bucket, s.Key(name), r, size, mclient.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

var (
	_ Sink = (*S3Sink)(nil)
	_ Sink = (*DirSink)(nil)
)
