package gcp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
	"github.com/yungbote/pictures2pages-backend/internal/platform/objectstore"
)

const defaultPublicBase = "https://storage.googleapis.com"

// BucketStore is the GCS (or fake-gcs emulator) implementation of objectstore.Store.
type BucketStore struct {
	log        *logger.Logger
	client     *storage.Client
	cfg        objectstore.Config
	httpClient *http.Client
}

var _ objectstore.Store = (*BucketStore)(nil)

func NewBucketStore(ctx context.Context, log *logger.Logger, cfg objectstore.Config, credentials string) (*BucketStore, error) {
	if cfg.Mode != objectstore.ModeGCS && cfg.Mode != objectstore.ModeGCSEmulator {
		return nil, &objectstore.ConfigError{Code: objectstore.ConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
	if err := objectstore.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	client, err := newStorageClient(ctx, cfg, credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	serviceLog := log.With("service", "BucketStore")
	serviceLog.Info(
		"Object storage initialized",
		"mode", cfg.Mode,
		"mode_source", cfg.ModeSource(),
		"emulator_host", cfg.EmulatorHost,
		"public_base_url", cfg.PublicBaseURL,
		"images_bucket", cfg.ImagesBucket,
		"avatar_bucket", cfg.AvatarBucket,
	)
	return &BucketStore{
		log:        serviceLog,
		client:     client,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}, nil
}

func newStorageClient(ctx context.Context, cfg objectstore.Config, credentials string) (*storage.Client, error) {
	if cfg.IsEmulatorMode() {
		// The storage client only honours the emulator through this variable.
		_ = os.Setenv("STORAGE_EMULATOR_HOST", strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/"))
		return storage.NewClient(ctx, option.WithoutAuthentication())
	}
	opts := append(ClientOptions(credentials), option.WithScopes(storage.ScopeReadWrite))
	return storage.NewClient(ctx, opts...)
}

func (s *BucketStore) Mode() objectstore.Mode { return s.cfg.Mode }

func (s *BucketStore) BucketName(category objectstore.Category) string {
	b, err := s.cfg.Bucket(category)
	if err != nil {
		return ""
	}
	return b.Name
}

func (s *BucketStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *BucketStore) Upload(ctx context.Context, category objectstore.Category, key string, r io.Reader, _ int64) error {
	b, err := s.cfg.Bucket(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(b.Name).Object(key).NewWriter(ctx)
	if ct := objectstore.ContentTypeForKey(key); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (s *BucketStore) Delete(ctx context.Context, category objectstore.Category, key string) error {
	b, err := s.cfg.Bucket(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := s.client.Bucket(b.Name).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, b.Name, err)
	}
	return nil
}

// ListKeys is used by the emulator integration test and by operators cleaning up prefixes.
func (s *BucketStore) ListKeys(ctx context.Context, category objectstore.Category, prefix string) ([]string, error) {
	b, err := s.cfg.Bucket(category)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	it := s.client.Bucket(b.Name).Objects(ctx, &storage.Query{Prefix: prefix})
	out := []string{}
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, attrs.Name)
	}
	return out, nil
}

func (s *BucketStore) PublicURL(category objectstore.Category, key string) string {
	b, err := s.cfg.Bucket(category)
	if err != nil {
		return key
	}
	return objectstore.PublicURL(s.cfg, b, key, defaultPublicBase)
}

func (s *BucketStore) Download(ctx context.Context, category objectstore.Category, key string) (io.ReadCloser, error) {
	b, err := s.cfg.Bucket(category)
	if err != nil {
		return nil, err
	}
	return s.OpenObject(ctx, b.Name, key)
}

// OpenObject keeps the read context alive until the reader is closed.
func (s *BucketStore) OpenObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	readCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	if s.cfg.IsEmulatorMode() {
		rc, err := s.emulatorRead(readCtx, bucket, key)
		if err != nil {
			cancel()
			return nil, err
		}
		return &objectstore.ReadCloserWithCancel{ReadCloser: rc, Cancel: cancel}, nil
	}
	r, err := s.client.Bucket(bucket).Object(key).NewReader(readCtx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open GCS reader: %w", err)
	}
	return &objectstore.ReadCloserWithCancel{ReadCloser: r, Cancel: cancel}, nil
}

// emulatorRead goes straight to the JSON API media endpoint; fake-gcs does
// not serve the XML reads the storage client issues.
func (s *BucketStore) emulatorRead(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	u := fmt.Sprintf(
		"%s/storage/v1/b/%s/o/%s?alt=media",
		strings.TrimRight(strings.TrimSpace(s.cfg.EmulatorHost), "/"),
		url.PathEscape(bucket),
		url.PathEscape(key),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed creating emulator download request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed emulator download request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("emulator download failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp.Body, nil
}
