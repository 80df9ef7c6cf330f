package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	contentrepo "github.com/yungbote/pictures2pages-backend/internal/data/repos/content"
	"github.com/yungbote/pictures2pages-backend/internal/data/repos/testutil"
	types "github.com/yungbote/pictures2pages-backend/internal/domain"
	"github.com/yungbote/pictures2pages-backend/internal/platform/dbctx"
)

var sunnyRefs = [3]string{
	"https://storage.googleapis.com/images/u/dog.png",
	"https://storage.googleapis.com/images/u/sun.png",
	"https://storage.googleapis.com/images/u/kid.png",
}

func countByFirstImage(t *testing.T, ctx context.Context, dbc dbctx.Context, ref string) int64 {
	t.Helper()
	var n int64
	if err := dbc.Tx.WithContext(ctx).Model(&types.GeneratedContent{}).Where("image_url_1 = ?", ref).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestAssembleAndPersist(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, ctx, db, "assembler@example.com")

	fixed := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	a := NewRecordAssembler(db, testutil.Logger(t), contentrepo.NewGeneratedContentRepo(db, testutil.Logger(t)))
	a.now = func() time.Time { return fixed }

	rec, err := a.AssembleAndPersist(ctx, AssembleInput{
		ImageRefs: sunnyRefs,
		LabelSets: sunnyLabels,
		Narrative: Narrative{Title: "A Sunny Day", Body: "A dog ran..."},
		Theme:     "adventure",
		Kind:      types.ContentKindStory,
		OwnerID:   owner.ID,
	})
	if err != nil {
		t.Fatalf("AssembleAndPersist: %v", err)
	}
	if rec.ID == 0 || !rec.CreatedAt.Equal(fixed) {
		t.Fatalf("want id and fixed timestamp, got id=%d created=%v", rec.ID, rec.CreatedAt)
	}
	if rec.IsPublic {
		t.Fatalf("visibility defaults to private")
	}
	if rec.ImageRefs() != sunnyRefs {
		t.Fatalf("image refs: %v", rec.ImageRefs())
	}
	sets := rec.LabelSets()
	if len(sets[0]) != 3 || sets[0][0] != "dog" || len(sets[1]) != 2 || sets[2][1] != "laughing" {
		t.Fatalf("label sets not paired positionally: %v", sets)
	}

	stored, err := contentrepo.NewGeneratedContentRepo(db, testutil.Logger(t)).GetByID(dbctx.Context{Ctx: ctx}, rec.ID)
	if err != nil || stored == nil {
		t.Fatalf("GetByID: err=%v rec=%v", err, stored)
	}
	if stored.Title != "A Sunny Day" || stored.Content != "A dog ran..." || stored.OwnerID != owner.ID {
		t.Fatalf("stored record differs: %+v", stored)
	}
}

// writeThenFail inserts the row and then reports failure, as a constraint
// check or lost connection at commit would.
type writeThenFail struct {
	inner ContentWriter
}

func (w writeThenFail) Create(dbc dbctx.Context, rec *types.GeneratedContent) error {
	if err := w.inner.Create(dbc, rec); err != nil {
		return err
	}
	return errors.New("simulated failure after insert")
}

func TestAssembleAndPersistNeverPartiallyWrites(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, ctx, db, "partial@example.com")

	a := NewRecordAssembler(db, testutil.Logger(t), writeThenFail{inner: contentrepo.NewGeneratedContentRepo(db, testutil.Logger(t))})
	rec, err := a.AssembleAndPersist(ctx, AssembleInput{
		ImageRefs: sunnyRefs,
		LabelSets: sunnyLabels,
		Narrative: Narrative{Title: "A Sunny Day", Body: "A dog ran..."},
		Kind:      types.ContentKindStory,
		OwnerID:   owner.ID,
	})
	var pErr *PersistenceError
	if !errors.As(err, &pErr) || rec != nil {
		t.Fatalf("want PersistenceError and no record, got rec=%v err=%v", rec, err)
	}
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		t.Fatalf("persistence failure must be distinguishable from generation failure")
	}
	if n := countByFirstImage(t, ctx, dbctx.Context{Ctx: ctx, Tx: db}, sunnyRefs[0]); n != 0 {
		t.Fatalf("rolled back write left %d rows", n)
	}
}

func TestAssembleAndPersistRejectsIncompleteInput(t *testing.T) {
	db := testutil.DB(t)
	a := NewRecordAssembler(db, testutil.Logger(t), contentrepo.NewGeneratedContentRepo(db, testutil.Logger(t)))
	_, err := a.AssembleAndPersist(context.Background(), AssembleInput{
		ImageRefs: sunnyRefs,
		Narrative: Narrative{Title: "t", Body: "b"},
		Kind:      types.ContentKindPoem,
	})
	var pErr *PersistenceError
	if !errors.As(err, &pErr) {
		t.Fatalf("missing owner: want PersistenceError, got %v", err)
	}
}
