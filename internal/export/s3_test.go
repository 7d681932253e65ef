package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/config"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Интеграционные тесты S3Sink на реальном MinIO.
//
// Запуск:
//   GO_TEST_INTEGRATION=1 go test ./internal/export -run Integration -v -count=1

const (
	minioUser     = "root"
	minioPassword = "rootpass"
)

func startMinio(t *testing.T) (cfg config.ExportConfig, admin *mclient.Client) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image: "docker.io/minio/minio:latest",
		Env: map[string]string{
			"MINIO_ROOT_USER":     minioUser,
			"MINIO_ROOT_PASSWORD": minioPassword,
		},
		Cmd:          []string{"server", "/data"},
		ExposedPorts: []string{"9000/tcp"},
		WaitingFor:   wait.ForListeningPort("9000/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "9000/tcp")

	admin, err = mclient.New(host+":"+port.Port(), &mclient.Options{
		Creds:  credentials.NewStaticV4(minioUser, minioPassword, ""),
		Secure: false,
	})
	require.NoError(t, err)

	return config.ExportConfig{
		Endpoint:  fmt.Sprintf("http://%s:%s", host, port.Port()),
		AccessKey: minioUser,
		SecretKey: minioPassword,
		Bucket:    "certificates",
		Prefix:    "exports/",
	}, admin
}

func TestIntegration_NewS3Sink_BucketMustExist(t *testing.T) {
	cfg, _ := startMinio(t)

	_, err := NewS3Sink(context.Background(), cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}

func TestIntegration_S3Sink_Put(t *testing.T) {
	cfg, admin := startMinio(t)
	ctx := context.Background()
	require.NoError(t, admin.MakeBucket(ctx, cfg.Bucket, mclient.MakeBucketOptions{Region: "us-east-1"}))

	s, err := NewS3Sink(ctx, cfg)
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "certificate-1.pdf", "application/pdf", strings.NewReader("%PDF-1"), 6))
	// Размер неизвестен: minio-go переходит на multipart-загрузку.
	require.NoError(t, s.Put(ctx, "certificate-2.pdf", "application/pdf", strings.NewReader("%PDF-2"), -1))

	info, err := admin.StatObject(ctx, cfg.Bucket, "exports/certificate-1.pdf", mclient.StatObjectOptions{})
	require.NoError(t, err)
	require.Equal(t, int64(6), info.Size)
	require.Equal(t, "application/pdf", info.ContentType)

	obj, err := admin.GetObject(ctx, cfg.Bucket, s.Key("certificate-2.pdf"), mclient.GetObjectOptions{})
	require.NoError(t, err)
	defer obj.Close()
	b, err := io.ReadAll(obj)
	require.NoError(t, err)
	require.Equal(t, "%PDF-2", string(b))
}

func TestNewS3Sink_RequiresEndpointAndBucket(t *testing.T) {
	t.Parallel()

	_, err := NewS3Sink(context.Background(), config.ExportConfig{Bucket: "b"})
	require.Error(t, err)
	_, err = NewS3Sink(context.Background(), config.ExportConfig{Endpoint: "http://localhost:9000"})
	require.Error(t, err)
}
