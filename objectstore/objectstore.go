// Package objectstore provides an S3-compatible payload storage backend
// for picstore, backed by MinIO or any other S3 API implementation. Object
// keys map one-to-one to upload keys generated by the root package.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/anupamd/picstore"
)

// Config carries the connection settings for an S3-compatible endpoint.
// All values are passed in explicitly; the package never reads the
// environment itself.
type Config struct {
	// Endpoint accepts either "host:port" or a full "http(s)://host:port"
	// URL. A scheme-less endpoint is treated as insecure, which is the
	// common local MinIO setup.
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
}

// Store performs object operations against a single bucket.
type Store struct {
	client *minio.Client
	bucket string
}

// normalizeEndpoint reduces the configured endpoint to the host:port form
// the client expects and decides whether to use TLS.
func normalizeEndpoint(raw string) (endpoint string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, errors.New("empty endpoint")
	}

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, fmt.Errorf("invalid endpoint: %w", err)
		}
		if u.Host == "" {
			return "", false, errors.New("invalid endpoint: missing host")
		}
		if u.Path != "" && u.Path != "/" {
			return "", false, errors.New("invalid endpoint: must not contain a path")
		}
		return u.Host, u.Scheme == "https", nil
	}

	return raw, false, nil
}

// New connects to the configured endpoint and verifies that the bucket
// exists. It does not create the bucket: provisioning is an operator
// concern, not an application one.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("object store credentials incomplete")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("object store bucket not set")
	}

	endpoint, secure, err := normalizeEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket does not exist: %s", cfg.Bucket)
	}

	return &Store{client: client, bucket: cfg.Bucket}, nil
}

// Bucket returns the bucket the store writes to.
func (s *Store) Bucket() string {
	return s.bucket
}

// Put uploads content under the given key. size must be the exact content
// length; the S3 API requires it up front for non-chunked uploads.
func (s *Store) Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, content, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}

	return nil
}

// Head fetches an object's metadata without its payload. Returns
// picstore.ErrNotFound when the key does not exist.
func (s *Store) Head(ctx context.Context, key string) (picstore.ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return picstore.ObjectInfo{}, err
	}

	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return picstore.ObjectInfo{}, picstore.ErrNotFound
		}
		return picstore.ObjectInfo{}, fmt.Errorf("failed to stat object: %w", err)
	}

	return picstore.ObjectInfo{
		ContentType: info.ContentType,
		Size:        info.Size,
	}, nil
}

// Delete removes an object. Returns picstore.ErrNotFound when the key does
// not exist, matching the repo delete semantics.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// RemoveObject is a no-op for missing keys, so existence is checked
	// first to surface not-found to the caller.
	if _, err := s.Head(ctx, key); err != nil {
		return err
	}

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object: %w", err)
	}

	return nil
}
