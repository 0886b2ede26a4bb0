package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ICMVRD/sb1-hdboxt/internal/config"
)

// ObjectKey names an archived PDF generated at t.
func ObjectKey(t time.Time) string {
	return "reports/" + t.UTC().Format("20060102-150405") + ".pdf"
}

// Archiver uploads rendered reports to an S3-compatible bucket.
type Archiver struct {
	client *minio.Client
	bucket string
}

// NewArchiver builds a client for cfg. It does not contact the server.
func NewArchiver(cfg config.ArchiveConfig) (*Archiver, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("report.NewArchiver: %w", err)
	}
	return &Archiver{client: client, bucket: cfg.Bucket}, nil
}

// Upload stores data under key and returns the object location as
// "<bucket>/<key>".
func (a *Archiver) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	info, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("report.Archiver.Upload: bucket %s: %w", a.bucket, err)
	}
	return info.Bucket + "/" + info.Key, nil
}
