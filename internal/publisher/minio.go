package publisher

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/RubachokBoss/submission-report/internal/models"
)

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Prefix    string
	UseSSL    bool
}

// MinIOPublisher uploads reports as objects named
// <prefix>/<yyyy-mm-dd>/<uuid>-<document name>.
type MinIOPublisher struct {
	client *minio.Client
	bucket string
	region string
	prefix string
	logger zerolog.Logger

	ensureMu      sync.Mutex
	bucketEnsured bool
}

func NewMinIOPublisher(cfg MinIOConfig, logger zerolog.Logger) (*MinIOPublisher, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	logger.Info().
		Str("endpoint", cfg.Endpoint).
		Str("bucket", cfg.Bucket).
		Bool("ssl", cfg.UseSSL).
		Msg("MinIO publisher configured")

	return &MinIOPublisher{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		prefix: cfg.Prefix,
		logger: logger,
	}, nil
}

func (p *MinIOPublisher) ensureBucket(ctx context.Context) error {
	p.ensureMu.Lock()
	defer p.ensureMu.Unlock()
	if p.bucketEnsured {
		return nil
	}

	exists, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{Region: p.region}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		p.logger.Info().Str("bucket", p.bucket).Msg("Created new bucket")
	}

	p.bucketEnsured = true
	return nil
}

func (p *MinIOPublisher) Publish(ctx context.Context, doc *models.Document) (string, error) {
	if err := p.ensureBucket(ctx); err != nil {
		return "", err
	}

	key := objectKey(p.prefix, doc.Name, time.Now(), uuid.New().String())
	info, err := p.client.PutObject(ctx, p.bucket, key, bytes.NewReader(doc.Body), int64(len(doc.Body)), minio.PutObjectOptions{
		ContentType: doc.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}

	p.logger.Debug().
		Str("bucket", p.bucket).
		Str("key", key).
		Str("etag", info.ETag).
		Int("size", len(doc.Body)).
		Msg("Report uploaded to MinIO")

	return fmt.Sprintf("s3://%s/%s", p.bucket, key), nil
}

func objectKey(prefix, name string, now time.Time, id string) string {
	return path.Join(prefix, now.UTC().Format("2006-01-02"), id+"-"+path.Base(name))
}
