package generation

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	types "github.com/yungbote/pictures2pages-backend/internal/domain"
	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
)

const DefaultMaxLabels = 10

// LabelDetector is the external image-analysis capability. Labels come back in
// the service's own confidence order.
type LabelDetector interface {
	DetectLabels(ctx context.Context, bucket, key string, maxLabels int) ([]types.DetectedLabel, error)
}

// LabelResult is either Ok (Labels, Err == nil) or Err. Labels is never
// populated alongside an error.
type LabelResult struct {
	Labels []string
	Err    *ExtractionError
}

func (r LabelResult) Ok() bool { return r.Err == nil }

func labelsOk(labels []string) LabelResult {
	if labels == nil {
		labels = []string{}
	}
	return LabelResult{Labels: labels}
}

func labelsErr(ref string, hard bool, err error) LabelResult {
	return LabelResult{Err: &ExtractionError{ImageRef: ref, Hard: hard, Err: err}}
}

// Hosts that address objects as /<bucket>/<key>.
var defaultPathStyleHosts = []string{"storage.googleapis.com", "storage.cloud.google.com"}

// ObjectKeyFromURL reduces a fully-qualified object location to the key inside
// its bucket: the URL path with the leading separator removed. The bucket
// segment, or the emulator media prefix, is removed only when the URL's host
// is path-style: the public GCS hosts or one of pathStyleHosts (emulator,
// MinIO endpoint). Virtual-hosted and CDN URLs keep their full path.
func ObjectKeyFromURL(rawURL, bucket string, pathStyleHosts ...string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", errors.New("empty image reference")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse image reference: %w", err)
	}
	key := strings.TrimLeft(u.Path, "/")
	bucket = strings.Trim(strings.TrimSpace(bucket), "/")
	if bucket != "" && isPathStyleHost(u.Host, pathStyleHosts) {
		mediaPrefix := "storage/v1/b/" + bucket + "/o/"
		switch {
		case strings.HasPrefix(key, mediaPrefix):
			key = strings.TrimPrefix(key, mediaPrefix)
		case strings.HasPrefix(key, bucket+"/"):
			key = strings.TrimPrefix(key, bucket+"/")
		}
	}
	if key == "" {
		return "", fmt.Errorf("image reference %q has no object path", rawURL)
	}
	return key, nil
}

func isPathStyleHost(host string, extra []string) bool {
	host = strings.ToLower(host)
	if host == "" {
		return false
	}
	for _, candidate := range defaultPathStyleHosts {
		if host == candidate {
			return true
		}
	}
	for _, candidate := range extra {
		if h := normalizeHost(candidate); h != "" && h == host {
			return true
		}
	}
	return false
}

// normalizeHost accepts "host:port" or a full endpoint URL and returns the
// lower-cased host[:port].
func normalizeHost(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "//" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}

type LabelExtractor struct {
	log            *logger.Logger
	detector       LabelDetector
	bucket         string
	pathStyleHosts []string
	maxLabels      int
	metrics        *Metrics
}

func NewLabelExtractor(log *logger.Logger, detector LabelDetector, bucket string, maxLabels int, metrics *Metrics) *LabelExtractor {
	if maxLabels <= 0 {
		maxLabels = DefaultMaxLabels
	}
	return &LabelExtractor{
		log:       log.With("service", "LabelExtractor"),
		detector:  detector,
		bucket:    bucket,
		maxLabels: maxLabels,
		metrics:   metrics,
	}
}

// WithPathStyleHosts registers extra hosts (emulator, MinIO endpoint) whose
// URLs carry the bucket as the first path segment.
func (e *LabelExtractor) WithPathStyleHosts(hosts ...string) *LabelExtractor {
	for _, h := range hosts {
		if strings.TrimSpace(h) != "" {
			e.pathStyleHosts = append(e.pathStyleHosts, h)
		}
	}
	return e
}

// Extract never panics and never returns a mixed payload; detector failures
// are folded into LabelResult.Err.
func (e *LabelExtractor) Extract(ctx context.Context, imageRef string) LabelResult {
	key, err := ObjectKeyFromURL(imageRef, e.bucket, e.pathStyleHosts...)
	if err != nil {
		e.metrics.observeExtraction("invalid_reference", 0)
		return labelsErr(imageRef, true, err)
	}
	if err := ctx.Err(); err != nil {
		e.metrics.observeExtraction("cancelled", 0)
		return labelsErr(imageRef, true, err)
	}

	start := time.Now()
	detected, err := e.detector.DetectLabels(ctx, e.bucket, key, e.maxLabels)
	elapsed := time.Since(start)
	if err != nil {
		hard := ctx.Err() != nil
		if hard {
			e.metrics.observeExtraction("cancelled", elapsed)
		} else {
			e.metrics.observeExtraction("error", elapsed)
		}
		e.log.Warn("Label detection failed", "bucket", e.bucket, "key", key, "error", err)
		return labelsErr(imageRef, hard, err)
	}
	if len(detected) > e.maxLabels {
		detected = detected[:e.maxLabels]
	}
	for _, l := range detected {
		e.log.Debug("Detected label", "key", key, "label", l.Name, "confidence", l.Confidence)
	}
	e.metrics.observeExtraction("ok", elapsed)
	return labelsOk(types.LabelNames(detected))
}
