package s3

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

type Config struct {
	Region    string
	Bucket    string
	Endpoint  string // optional, for S3-compatible services
	AccessKey string // optional, falls back to the default credential chain
	SecretKey string
	// PublicBaseURL overrides the virtual-hosted bucket URL, e.g. a CDN domain.
	PublicBaseURL string
}

// Bucket stores media objects in an S3 bucket.
type Bucket struct {
	cfg      Config
	client   *awss3.S3
	uploader *s3manager.Uploader
}

func New(cfg Config) (*Bucket, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return &Bucket{
		cfg:      cfg,
		client:   awss3.New(sess),
		uploader: s3manager.NewUploader(sess),
	}, nil
}

func (b *Bucket) Put(ctx context.Context, key, contentType string, body io.Reader, _ int64) error {
	_, err := b.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(b.cfg.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	return err
}

func (b *Bucket) PresignPut(_ context.Context, key, contentType string, ttl time.Duration) (string, error) {
	req, _ := b.client.PutObjectRequest(&awss3.PutObjectInput{
		Bucket:      aws.String(b.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	})
	return req.Presign(ttl)
}

func (b *Bucket) URL(key string) string {
	if b.cfg.PublicBaseURL != "" {
		return strings.TrimRight(b.cfg.PublicBaseURL, "/") + "/" + key
	}
	if b.cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(b.cfg.Endpoint, "/"), b.cfg.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", b.cfg.Bucket, b.cfg.Region, key)
}
