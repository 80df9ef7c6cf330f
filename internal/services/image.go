package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/pictures2pages-backend/internal/data/repos"
	types "github.com/yungbote/pictures2pages-backend/internal/domain"
	"github.com/yungbote/pictures2pages-backend/internal/platform/ctxutil"
	"github.com/yungbote/pictures2pages-backend/internal/platform/dbctx"
	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
	"github.com/yungbote/pictures2pages-backend/internal/platform/objectstore"
	"github.com/yungbote/pictures2pages-backend/internal/realtime"
)

const DefaultMaxImageBytes int64 = 10 << 20

var allowedImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

type UploadImageInput struct {
	Filename    string
	Size        int64
	Body        io.Reader
	Description string
	IsPublic    bool
}

type ImageService interface {
	Upload(ctx context.Context, in UploadImageInput) (*types.Image, error)
	ListMine(dbc dbctx.Context) ([]*types.Image, error)
}

type imageService struct {
	log       *logger.Logger
	imageRepo repos.ImageRepo
	store     objectstore.Store
	events    *EventPublisher
	maxBytes  int64
	now       func() time.Time
}

func NewImageService(log *logger.Logger, imageRepo repos.ImageRepo, store objectstore.Store, events *EventPublisher, maxBytes int64) ImageService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &imageService{
		log:       log.With("service", "ImageService"),
		imageRepo: imageRepo,
		store:     store,
		events:    events,
		maxBytes:  maxBytes,
		now:       time.Now,
	}
}

// Upload stores the file under images/<owner>/<uuid><ext> and records it.
// When the row cannot be written the uploaded object is removed again.
func (is *imageService) Upload(ctx context.Context, in UploadImageInput) (*types.Image, error) {
	ownerID := ctxutil.CallerID(ctx)
	if ownerID == 0 {
		return nil, &AuthenticationError{Reason: "not logged in"}
	}
	if in.Body == nil {
		return nil, &ValidationError{Field: "file", Reason: "is required"}
	}
	ext := strings.ToLower(path.Ext(strings.TrimSpace(in.Filename)))
	if !allowedImageExts[ext] {
		return nil, &ValidationError{Field: "file", Reason: "must be a png, jpeg, gif or webp image"}
	}
	if in.Size <= 0 {
		return nil, &ValidationError{Field: "file", Reason: "is empty"}
	}
	if in.Size > is.maxBytes {
		return nil, &ValidationError{Field: "file", Reason: fmt.Sprintf("exceeds %d bytes", is.maxBytes)}
	}

	key := fmt.Sprintf("images/%d/%s%s", ownerID, uuid.NewString(), ext)
	if err := is.store.Upload(ctx, objectstore.CategoryImage, key, in.Body, in.Size); err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	img := &types.Image{
		OwnerID:     ownerID,
		URL:         is.store.PublicURL(objectstore.CategoryImage, key),
		StorageKey:  key,
		Description: strings.TrimSpace(in.Description),
		ContentType: objectstore.ContentTypeForKey(key),
		SizeBytes:   in.Size,
		IsPublic:    in.IsPublic,
		CreatedAt:   is.now().UTC(),
	}
	if _, err := is.imageRepo.Create(dbctx.Context{Ctx: ctx}, []*types.Image{img}); err != nil {
		if delErr := is.store.Delete(context.WithoutCancel(ctx), objectstore.CategoryImage, key); delErr != nil {
			is.log.Warn("Orphaned image object after failed insert", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("create image row: %w", err)
	}

	is.log.Info("Image uploaded", "owner_id", ownerID, "key", key, "size", in.Size)
	is.events.Publish(ctx, ownerID, realtime.SSEEventImageUploaded, img)
	return img, nil
}

func (is *imageService) ListMine(dbc dbctx.Context) ([]*types.Image, error) {
	ownerID := ctxutil.CallerID(dbc.Ctx)
	if ownerID == 0 {
		return nil, &AuthenticationError{Reason: "not logged in"}
	}
	images, err := is.imageRepo.ListByOwner(dbc, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return images, nil
}
