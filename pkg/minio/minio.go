// Package minio stores media objects on a MinIO (or other S3-compatible)
// server.
package minio

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

type Bucket struct {
	cfg    Config
	client *minio.Client
}

// New connects to the server and creates the bucket if it does not exist.
func New(ctx context.Context, cfg Config) (*Bucket, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("make bucket %s: %w", cfg.Bucket, err)
		}
	}
	return &Bucket{cfg: cfg, client: client}, nil
}

func (b *Bucket) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	_, err := b.client.PutObject(ctx, b.cfg.Bucket, key, body, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

func (b *Bucket) PresignPut(ctx context.Context, key, _ string, ttl time.Duration) (string, error) {
	u, err := b.client.PresignedPutObject(ctx, b.cfg.Bucket, key, ttl)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (b *Bucket) URL(key string) string {
	if b.cfg.PublicBaseURL != "" {
		return strings.TrimRight(b.cfg.PublicBaseURL, "/") + "/" + key
	}
	scheme := "http"
	if b.cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, b.cfg.Endpoint, b.cfg.Bucket, key)
}
