package miniostore

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
	"github.com/yungbote/pictures2pages-backend/internal/platform/objectstore"
)

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
}

// Store is the S3-compatible implementation of objectstore.Store.
type Store struct {
	log    *logger.Logger
	client *minio.Client
	cfg    objectstore.Config
	base   string
}

var _ objectstore.Store = (*Store)(nil)

func New(ctx context.Context, log *logger.Logger, cfg objectstore.Config, mc Config) (*Store, error) {
	if cfg.Mode != objectstore.ModeMinIO {
		return nil, &objectstore.ConfigError{Code: objectstore.ConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
	if err := objectstore.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	endpoint := strings.TrimSpace(mc.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("missing env var MINIO_ENDPOINT")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(mc.AccessKey, mc.SecretKey, ""),
		Secure: mc.UseSSL,
		Region: mc.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	s := &Store{
		log:    log.With("service", "MinIOStore"),
		client: client,
		cfg:    cfg,
		base:   endpointBase(endpoint, mc.UseSSL),
	}
	for _, bucket := range []string{cfg.ImagesBucket, cfg.AvatarBucket} {
		if err := s.ensureBucket(ctx, bucket, mc.Region); err != nil {
			return nil, err
		}
	}
	s.log.Info("Object storage initialized", "mode", cfg.Mode, "endpoint", endpoint, "images_bucket", cfg.ImagesBucket, "avatar_bucket", cfg.AvatarBucket)
	return s, nil
}

func endpointBase(endpoint string, useSSL bool) string {
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return scheme + "://" + strings.TrimRight(endpoint, "/")
}

func (s *Store) ensureBucket(ctx context.Context, bucket, region string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket %q: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("create bucket %q: %w", bucket, err)
	}
	s.log.Info("Created bucket", "bucket", bucket)
	return nil
}

func (s *Store) Mode() objectstore.Mode { return objectstore.ModeMinIO }

func (s *Store) BucketName(category objectstore.Category) string {
	b, err := s.cfg.Bucket(category)
	if err != nil {
		return ""
	}
	return b.Name
}

// Upload streams r; a negative size lets the client use multipart upload.
func (s *Store) Upload(ctx context.Context, category objectstore.Category, key string, r io.Reader, size int64) error {
	b, err := s.cfg.Bucket(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	if size <= 0 {
		size = -1
	}
	_, err = s.client.PutObject(ctx, b.Name, key, r, size, minio.PutObjectOptions{
		ContentType: objectstore.ContentTypeForKey(key),
	})
	if err != nil {
		return fmt.Errorf("failed to write object %q to bucket %q: %w", key, b.Name, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, category objectstore.Category, key string) error {
	b, err := s.cfg.Bucket(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := s.client.RemoveObject(ctx, b.Name, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %q in bucket %q: %w", key, b.Name, err)
	}
	return nil
}

func (s *Store) Download(ctx context.Context, category objectstore.Category, key string) (io.ReadCloser, error) {
	b, err := s.cfg.Bucket(category)
	if err != nil {
		return nil, err
	}
	return s.OpenObject(ctx, b.Name, key)
}

// OpenObject stats the object first so a missing key fails here rather than on first Read.
func (s *Store) OpenObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	readCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	obj, err := s.client.GetObject(readCtx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open object %q in bucket %q: %w", key, bucket, err)
	}
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		cancel()
		return nil, fmt.Errorf("failed to stat object %q in bucket %q: %w", key, bucket, err)
	}
	return &objectstore.ReadCloserWithCancel{ReadCloser: obj, Cancel: cancel}, nil
}

func (s *Store) PublicURL(category objectstore.Category, key string) string {
	b, err := s.cfg.Bucket(category)
	if err != nil {
		return key
	}
	return objectstore.PublicURL(s.cfg, b, key, s.base)
}
