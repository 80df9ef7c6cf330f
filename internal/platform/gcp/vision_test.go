package gcp

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	statuspb "google.golang.org/genproto/googleapis/rpc/status"

	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
)

func TestLabelsFromResponse(t *testing.T) {
	resp := &visionpb.BatchAnnotateImagesResponse{
		Responses: []*visionpb.AnnotateImageResponse{{
			LabelAnnotations: []*visionpb.EntityAnnotation{
				{Description: "Dog", Score: 0.98},
				{Description: "  ", Score: 0.9},
				nil,
				{Description: "Park", Score: 0.87},
			},
		}},
	}
	got, err := labelsFromResponse(resp)
	if err != nil {
		t.Fatalf("labelsFromResponse: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Dog" || got[1].Name != "Park" || got[0].Confidence != 0.98 {
		t.Fatalf("unexpected labels: %+v", got)
	}

	empty, err := labelsFromResponse(&visionpb.BatchAnnotateImagesResponse{Responses: []*visionpb.AnnotateImageResponse{{}}})
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("no labels should be an empty success, got %v %v", empty, err)
	}
}

func TestLabelsFromResponseErrors(t *testing.T) {
	if _, err := labelsFromResponse(nil); err == nil {
		t.Fatalf("nil response should fail")
	}
	resp := &visionpb.BatchAnnotateImagesResponse{
		Responses: []*visionpb.AnnotateImageResponse{{Error: &statuspb.Status{Code: 7, Message: "permission denied"}}},
	}
	if _, err := labelsFromResponse(resp); err == nil || !strings.Contains(err.Error(), "(PermissionDenied): permission denied") {
		t.Fatalf("per-image error should surface, got %v", err)
	}
}

func TestLabelRequest(t *testing.T) {
	req := labelRequest(&visionpb.Image{Source: &visionpb.ImageSource{GcsImageUri: gcsURI("images/", "/u/dog.png")}}, 10)
	if req.Image.Source.GcsImageUri != "gs://images/u/dog.png" {
		t.Fatalf("uri: %q", req.Image.Source.GcsImageUri)
	}
	if len(req.Features) != 1 || req.Features[0].Type != visionpb.Feature_LABEL_DETECTION || req.Features[0].MaxResults != 10 {
		t.Fatalf("features: %+v", req.Features)
	}
}

type memReader map[string]string

func (m memReader) OpenObject(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	body, ok := m[bucket+"/"+key]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func TestVisionInlineImage(t *testing.T) {
	v := &VisionLabels{log: logger.Nop(), reader: memReader{"images/a.png": "PNGDATA", "images/empty.png": ""}, inline: true}

	img, err := v.image(context.Background(), "images", "a.png")
	if err != nil || string(img.Content) != "PNGDATA" || img.Source != nil {
		t.Fatalf("inline image: %+v %v", img, err)
	}
	if _, err := v.image(context.Background(), "images", "empty.png"); err == nil {
		t.Fatalf("empty object should fail")
	}
	if _, err := v.image(context.Background(), "images", "missing.png"); err == nil {
		t.Fatalf("missing object should fail")
	}

	v.inline = false
	img, err = v.image(context.Background(), "images", "a.png")
	if err != nil || img.Source.GcsImageUri != "gs://images/a.png" || len(img.Content) != 0 {
		t.Fatalf("uri image: %+v %v", img, err)
	}
}
