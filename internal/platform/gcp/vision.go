package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	types "github.com/yungbote/pictures2pages-backend/internal/domain"
	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
)

// Vision accepts inline images up to this size.
const maxInlineImageBytes = 20 << 20

// ObjectReader fetches image bytes when Vision cannot read the bucket itself.
type ObjectReader interface {
	OpenObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// VisionLabels detects labels with Cloud Vision LABEL_DETECTION. Objects in
// real GCS are referenced by gs:// URI; anything else is sent inline.
type VisionLabels struct {
	log     *logger.Logger
	client  *vision.ImageAnnotatorClient
	reader  ObjectReader
	inline  bool
	timeout time.Duration
}

func NewVisionLabels(ctx context.Context, log *logger.Logger, credentials string, reader ObjectReader, inline bool) (*VisionLabels, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if inline && reader == nil {
		return nil, fmt.Errorf("inline label detection needs an object reader")
	}
	client, err := vision.NewImageAnnotatorClient(ctx, ClientOptions(credentials)...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &VisionLabels{
		log:     log.With("service", "gcp.VisionLabels"),
		client:  client,
		reader:  reader,
		inline:  inline,
		timeout: 60 * time.Second,
	}, nil
}

func (v *VisionLabels) Close() error {
	if v == nil || v.client == nil {
		return nil
	}
	return v.client.Close()
}

func (v *VisionLabels) DetectLabels(ctx context.Context, bucket, key string, maxLabels int) ([]types.DetectedLabel, error) {
	img, err := v.image(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	resp, err := v.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{labelRequest(img, maxLabels)},
	})
	if err != nil {
		return nil, fmt.Errorf("vision BatchAnnotateImages (%s): %w", status.Code(err), err)
	}
	return labelsFromResponse(resp)
}

func (v *VisionLabels) image(ctx context.Context, bucket, key string) (*visionpb.Image, error) {
	if !v.inline {
		return &visionpb.Image{Source: &visionpb.ImageSource{GcsImageUri: gcsURI(bucket, key)}}, nil
	}
	rc, err := v.reader.OpenObject(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("open %s/%s: %w", bucket, key, err)
	}
	defer rc.Close()
	raw, err := io.ReadAll(io.LimitReader(rc, maxInlineImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", bucket, key, err)
	}
	if len(raw) > maxInlineImageBytes {
		return nil, fmt.Errorf("image %s/%s exceeds %d bytes", bucket, key, maxInlineImageBytes)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("image %s/%s is empty", bucket, key)
	}
	return &visionpb.Image{Content: raw}, nil
}

func gcsURI(bucket, key string) string {
	return "gs://" + strings.Trim(bucket, "/") + "/" + strings.TrimLeft(key, "/")
}

func labelRequest(img *visionpb.Image, maxLabels int) *visionpb.AnnotateImageRequest {
	return &visionpb.AnnotateImageRequest{
		Image: img,
		Features: []*visionpb.Feature{
			{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: int32(maxLabels)},
		},
	}
}

// labelsFromResponse keeps the service's ranking and skips blank descriptions.
func labelsFromResponse(resp *visionpb.BatchAnnotateImagesResponse) ([]types.DetectedLabel, error) {
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return nil, errors.New("vision returned no annotation response")
	}
	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return nil, fmt.Errorf("vision annotate error (%s): %s", codes.Code(r0.Error.Code), r0.Error.Message)
	}
	out := make([]types.DetectedLabel, 0, len(r0.LabelAnnotations))
	for _, a := range r0.LabelAnnotations {
		if a == nil {
			continue
		}
		name := strings.TrimSpace(a.Description)
		if name == "" {
			continue
		}
		out = append(out, types.DetectedLabel{Name: name, Confidence: a.Score})
	}
	return out, nil
}
