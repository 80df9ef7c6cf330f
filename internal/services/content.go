package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/pictures2pages-backend/internal/data/repos"
	types "github.com/yungbote/pictures2pages-backend/internal/domain"
	"github.com/yungbote/pictures2pages-backend/internal/modules/generation"
	"github.com/yungbote/pictures2pages-backend/internal/platform/ctxutil"
	"github.com/yungbote/pictures2pages-backend/internal/platform/dbctx"
	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
	"github.com/yungbote/pictures2pages-backend/internal/realtime"
)

// ContentGenerator runs the three-image pipeline. *generation.Pipeline
// satisfies it.
type ContentGenerator interface {
	Run(ctx context.Context, req generation.Request) (*types.GeneratedContent, error)
}

type CreateContentInput struct {
	ImageURLs []string
	Theme     string
	Kind      string
	IsPublic  bool
}

type ContentService interface {
	Create(ctx context.Context, in CreateContentInput) (*types.GeneratedContent, error)
	Get(dbc dbctx.Context, id uint) (*types.GeneratedContent, error)
	ListMine(dbc dbctx.Context) ([]*types.GeneratedContent, error)
	ListPublicByUser(dbc dbctx.Context, userID uint) ([]*types.GeneratedContent, error)
	SetVisibility(ctx context.Context, id uint, isPublic bool) (*types.GeneratedContent, error)
	Delete(ctx context.Context, id uint) error
}

type contentService struct {
	db          *gorm.DB
	log         *logger.Logger
	contentRepo repos.GeneratedContentRepo
	generator   ContentGenerator
	events      *EventPublisher
}

func NewContentService(db *gorm.DB, log *logger.Logger, contentRepo repos.GeneratedContentRepo, generator ContentGenerator, events *EventPublisher) ContentService {
	return &contentService{
		db:          db,
		log:         log.With("service", "ContentService"),
		contentRepo: contentRepo,
		generator:   generator,
		events:      events,
	}
}

func (cs *contentService) Create(ctx context.Context, in CreateContentInput) (*types.GeneratedContent, error) {
	ownerID := ctxutil.CallerID(ctx)
	if ownerID == 0 {
		return nil, &AuthenticationError{Reason: "not logged in"}
	}
	if len(in.ImageURLs) != 3 {
		return nil, &ValidationError{Field: "image_urls", Reason: fmt.Sprintf("exactly 3 images required, got %d", len(in.ImageURLs))}
	}
	kind, ok := types.ParseContentKind(in.Kind)
	if !ok {
		return nil, &ValidationError{Field: "kind", Reason: "must be story or poem"}
	}

	req := generation.Request{
		ImageRefs: [3]string{in.ImageURLs[0], in.ImageURLs[1], in.ImageURLs[2]},
		Theme:     in.Theme,
		Kind:      kind,
		OwnerID:   ownerID,
		IsPublic:  in.IsPublic,
	}
	rec, err := cs.generator.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	cs.events.Publish(ctx, ownerID, realtime.SSEEventContentCreated, rec)
	return rec, nil
}

// Get returns a record to its owner, or to anyone when it is public. A
// private record read by someone else is reported as missing.
func (cs *contentService) Get(dbc dbctx.Context, id uint) (*types.GeneratedContent, error) {
	rec, err := cs.load(dbc, id)
	if err != nil {
		return nil, err
	}
	if !rec.IsPublic && rec.OwnerID != ctxutil.CallerID(dbc.Ctx) {
		return nil, &NotFoundError{Resource: "content", ID: id}
	}
	return rec, nil
}

func (cs *contentService) ListMine(dbc dbctx.Context) ([]*types.GeneratedContent, error) {
	ownerID := ctxutil.CallerID(dbc.Ctx)
	if ownerID == 0 {
		return nil, &AuthenticationError{Reason: "not logged in"}
	}
	out, err := cs.contentRepo.ListByOwner(dbc, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	return out, nil
}

// ListPublicByUser never returns private records, whoever is asking.
func (cs *contentService) ListPublicByUser(dbc dbctx.Context, userID uint) ([]*types.GeneratedContent, error) {
	if userID == 0 {
		return nil, &ValidationError{Field: "user_id", Reason: "is required"}
	}
	out, err := cs.contentRepo.ListPublicByOwner(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("list public content: %w", err)
	}
	return out, nil
}

func (cs *contentService) SetVisibility(ctx context.Context, id uint, isPublic bool) (*types.GeneratedContent, error) {
	callerID := ctxutil.CallerID(ctx)
	var updated *types.GeneratedContent
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		rec, err := cs.loadOwned(dbc, id, callerID, "change visibility of")
		if err != nil {
			return err
		}
		if rec.IsPublic != isPublic {
			if err := cs.contentRepo.UpdateVisibility(dbc, id, isPublic); err != nil {
				return fmt.Errorf("update visibility: %w", err)
			}
			rec.IsPublic = isPublic
		}
		updated = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	cs.log.Info("Content visibility set", "content_id", id, "is_public", isPublic)
	cs.events.Publish(ctx, callerID, realtime.SSEEventContentVisibilityChanged, updated)
	return updated, nil
}

func (cs *contentService) Delete(ctx context.Context, id uint) error {
	callerID := ctxutil.CallerID(ctx)
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := cs.loadOwned(dbc, id, callerID, "delete"); err != nil {
			return err
		}
		if err := cs.contentRepo.FullDeleteByID(dbc, id); err != nil {
			return fmt.Errorf("delete content: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	cs.log.Info("Content deleted", "content_id", id)
	cs.events.Publish(ctx, callerID, realtime.SSEEventContentDeleted, map[string]uint{"id": id})
	return nil
}

func (cs *contentService) load(dbc dbctx.Context, id uint) (*types.GeneratedContent, error) {
	rec, err := cs.contentRepo.GetByID(dbc, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "content", ID: id}
		}
		return nil, fmt.Errorf("load content: %w", err)
	}
	if rec == nil {
		return nil, &NotFoundError{Resource: "content", ID: id}
	}
	return rec, nil
}

func (cs *contentService) loadOwned(dbc dbctx.Context, id, callerID uint, action string) (*types.GeneratedContent, error) {
	if callerID == 0 {
		return nil, &AuthenticationError{Reason: "not logged in"}
	}
	rec, err := cs.load(dbc, id)
	if err != nil {
		return nil, err
	}
	if rec.OwnerID != callerID {
		cs.log.Warn("Rejected non-owner mutation", "content_id", id, "action", action)
		return nil, &AuthorizationError{Action: action, Resource: "content", ID: id, CallerID: callerID}
	}
	return rec, nil
}
