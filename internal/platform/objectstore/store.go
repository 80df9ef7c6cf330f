package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
)

type Category string

const (
	CategoryAvatar Category = "avatar"
	CategoryImage  Category = "image"
)

// Store is the object storage surface the services and label detection use.
// GCS (real or emulated) and MinIO both implement it.
type Store interface {
	Upload(ctx context.Context, category Category, key string, r io.Reader, size int64) error
	Delete(ctx context.Context, category Category, key string) error
	Download(ctx context.Context, category Category, key string) (io.ReadCloser, error)
	// OpenObject reads by raw bucket name, for callers that only hold a URL.
	OpenObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	PublicURL(category Category, key string) string
	BucketName(category Category) string
	Mode() Mode
}

type Bucket struct {
	Name      string
	CDNDomain string
}

func (cfg Config) Bucket(category Category) (Bucket, error) {
	switch category {
	case CategoryAvatar:
		return Bucket{Name: cfg.AvatarBucket, CDNDomain: cfg.AvatarCDN}, nil
	case CategoryImage:
		return Bucket{Name: cfg.ImagesBucket, CDNDomain: cfg.ImagesCDN}, nil
	default:
		return Bucket{}, fmt.Errorf("unknown bucket category: %s", category)
	}
}

// PublicURL builds the URL clients fetch an object from. A CDN domain wins,
// then the emulator media endpoint, then a configured public base, then
// the provider default (GCS path-style, or the MinIO endpoint).
func PublicURL(cfg Config, b Bucket, key, defaultBase string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if b.CDNDomain != "" {
		return fmt.Sprintf("https://%s/%s", b.CDNDomain, key)
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if cfg.IsEmulatorMode() {
		if base == "" {
			base = strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
		}
		if base != "" {
			return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", base, url.PathEscape(b.Name), url.PathEscape(key))
		}
	}
	if base == "" {
		base = strings.TrimRight(defaultBase, "/")
	}
	return fmt.Sprintf("%s/%s/%s", base, b.Name, key)
}

// ContentTypeForKey guesses an image content type from the key extension.
func ContentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch path.Ext(s) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	default:
		return ""
	}
}

// ReadCloserWithCancel releases a per-read context when the reader is closed.
type ReadCloserWithCancel struct {
	io.ReadCloser
	Cancel context.CancelFunc
}

func (r *ReadCloserWithCancel) Close() error {
	err := r.ReadCloser.Close()
	if r.Cancel != nil {
		r.Cancel()
	}
	return err
}
