// Package storage implements the attachment store on MinIO-compatible
// object storage. The workflow core only ever sees the returned object
// path.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config holds object storage connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Client stores uploaded files in a single bucket.
type Client struct {
	mc     *minio.Client
	bucket string
}

// New connects to the object store and ensures the bucket exists.
func New(ctx context.Context, cfg Config) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object storage: %w", err)
	}

	exists, err := mc.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &Client{mc: mc, bucket: cfg.Bucket}, nil
}

// Save uploads one file under a generated key and returns the stable
// object path. The original name survives only in its extension; the
// display name is stored by the caller.
func (c *Client) Save(ctx context.Context, category, originalName string, r io.Reader, size int64, contentType string) (string, error) {
	key := fmt.Sprintf("%s/%s%s", category, uuid.NewString(), filepath.Ext(originalName))

	_, err := c.mc.PutObject(ctx, c.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("store object %q: %w", key, err)
	}
	return key, nil
}

// Remove deletes one stored object.
func (c *Client) Remove(ctx context.Context, path string) error {
	if err := c.mc.RemoveObject(ctx, c.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q: %w", path, err)
	}
	return nil
}
