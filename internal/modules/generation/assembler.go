package generation

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/pictures2pages-backend/internal/domain"
	"github.com/yungbote/pictures2pages-backend/internal/platform/dbctx"
	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
)

// ContentWriter is the slice of the content repo the assembler needs.
type ContentWriter interface {
	Create(dbc dbctx.Context, rec *types.GeneratedContent) error
}

type AssembleInput struct {
	ImageRefs [3]string
	LabelSets [3][]string
	Narrative Narrative
	Theme     string
	Kind      types.ContentKind
	OwnerID   uint
	IsPublic  bool
}

type RecordAssembler struct {
	db     *gorm.DB
	log    *logger.Logger
	writer ContentWriter
	now    func() time.Time
}

func NewRecordAssembler(db *gorm.DB, log *logger.Logger, writer ContentWriter) *RecordAssembler {
	return &RecordAssembler{
		db:     db,
		log:    log.With("service", "RecordAssembler"),
		writer: writer,
		now:    time.Now,
	}
}

// AssembleAndPersist writes one record inside a single transaction and
// returns it with the server-assigned id and creation time. Any failure is
// a *PersistenceError and leaves nothing behind.
func (a *RecordAssembler) AssembleAndPersist(ctx context.Context, in AssembleInput) (*types.GeneratedContent, error) {
	if in.OwnerID == 0 {
		return nil, &PersistenceError{Err: errors.New("owner id is required")}
	}
	if in.Narrative.Title == "" || in.Narrative.Body == "" {
		return nil, &PersistenceError{Err: errors.New("narrative title and body are required")}
	}

	rec := &types.GeneratedContent{
		Kind:      in.Kind,
		Title:     in.Narrative.Title,
		Content:   in.Narrative.Body,
		Theme:     in.Theme,
		IsPublic:  in.IsPublic,
		OwnerID:   in.OwnerID,
		CreatedAt: a.now().UTC(),
	}
	rec.SetProvenance(in.ImageRefs, in.LabelSets)

	ctx, span := tracer.Start(ctx, "content.persist")
	defer span.End()

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return a.writer.Create(dbctx.Context{Ctx: ctx, Tx: tx}, rec)
	})
	if err != nil {
		span.RecordError(err)
		a.log.Error("Persisting generated content failed", "owner_id", in.OwnerID, "kind", in.Kind, "error", err)
		return nil, &PersistenceError{Err: err}
	}
	a.log.Info("Generated content persisted", "content_id", rec.ID, "owner_id", rec.OwnerID, "kind", rec.Kind)
	return rec, nil
}
