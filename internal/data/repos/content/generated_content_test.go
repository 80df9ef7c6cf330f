package content

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/pictures2pages-backend/internal/data/repos/testutil"
	types "github.com/yungbote/pictures2pages-backend/internal/domain"
	"github.com/yungbote/pictures2pages-backend/internal/platform/dbctx"
)

func TestGeneratedContentRoundTrip(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewGeneratedContentRepo(db, testutil.Logger(t))
	owner := testutil.SeedUser(t, ctx, tx, "roundtrip@example.com")

	created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	rec := &types.GeneratedContent{
		Kind:      types.ContentKindPoem,
		Title:     "Moonlit Paws",
		Content:   "Soft paws on silver grass",
		Theme:     "night",
		OwnerID:   owner.ID,
		CreatedAt: created,
	}
	rec.SetProvenance(
		[3]string{"images/a.png", "images/b.png", "images/c.png"},
		[3][]string{{"cat", "moon"}, {}, {"grass"}},
	)
	if err := repo.Create(dbc, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.ID == 0 {
		t.Fatalf("Create: expected server-assigned id")
	}

	first, err := repo.GetByID(dbc, rec.ID)
	if err != nil || first == nil {
		t.Fatalf("GetByID: err=%v rec=%v", err, first)
	}
	second, err := repo.GetByID(dbc, rec.ID)
	if err != nil || second == nil {
		t.Fatalf("GetByID (again): err=%v rec=%v", err, second)
	}
	if !first.CreatedAt.Equal(second.CreatedAt) || first.ID != second.ID {
		t.Fatalf("id/timestamp not stable across fetches: %v/%v vs %v/%v", first.ID, first.CreatedAt, second.ID, second.CreatedAt)
	}
	if !first.CreatedAt.Equal(created) {
		t.Fatalf("created_at: want=%v got=%v", created, first.CreatedAt)
	}
	if first.Kind != rec.Kind || first.Title != rec.Title || first.Content != rec.Content ||
		first.Theme != rec.Theme || first.IsPublic || first.OwnerID != owner.ID {
		t.Fatalf("scalar fields differ: %+v", first)
	}
	if first.ImageRefs() != rec.ImageRefs() {
		t.Fatalf("image refs differ: want=%v got=%v", rec.ImageRefs(), first.ImageRefs())
	}
	gotLabels := first.LabelSets()
	wantLabels := rec.LabelSets()
	for i := range wantLabels {
		if len(gotLabels[i]) != len(wantLabels[i]) {
			t.Fatalf("label set %d: want=%v got=%v", i, wantLabels[i], gotLabels[i])
		}
		for j := range wantLabels[i] {
			if gotLabels[i][j] != wantLabels[i][j] {
				t.Fatalf("label set %d: want=%v got=%v", i, wantLabels[i], gotLabels[i])
			}
		}
	}

	missing, err := repo.GetByID(dbc, rec.ID+1000)
	if err != nil || missing != nil {
		t.Fatalf("GetByID (missing): err=%v rec=%v", err, missing)
	}
}

func TestGeneratedContentVisibilityAndListing(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewGeneratedContentRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "u@example.com")
	v := testutil.SeedUser(t, ctx, tx, "v@example.com")

	private := testutil.SeedContent(t, ctx, tx, u.ID, false)
	public := testutil.SeedContent(t, ctx, tx, u.ID, true)
	_ = testutil.SeedContent(t, ctx, tx, v.ID, true)

	listed, err := repo.ListPublicByOwner(dbc, u.ID)
	if err != nil {
		t.Fatalf("ListPublicByOwner: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != public.ID {
		t.Fatalf("ListPublicByOwner: want only %d, got %+v", public.ID, listed)
	}
	for _, rec := range listed {
		if rec.OwnerID != u.ID || !rec.IsPublic {
			t.Fatalf("ListPublicByOwner leaked record %+v", rec)
		}
	}

	if err := repo.UpdateVisibility(dbc, private.ID, true); err != nil {
		t.Fatalf("UpdateVisibility: %v", err)
	}
	listed, err = repo.ListPublicByOwner(dbc, u.ID)
	if err != nil || len(listed) != 2 {
		t.Fatalf("ListPublicByOwner after toggle: err=%v len=%d", err, len(listed))
	}
	toggled, _ := repo.GetByID(dbc, private.ID)
	if toggled.Title != private.Title || !toggled.CreatedAt.Equal(private.CreatedAt) {
		t.Fatalf("visibility update touched other columns: %+v", toggled)
	}

	all, err := repo.ListByOwner(dbc, u.ID)
	if err != nil || len(all) != 2 {
		t.Fatalf("ListByOwner: err=%v len=%d", err, len(all))
	}

	if err := repo.FullDeleteByID(dbc, public.ID); err != nil {
		t.Fatalf("FullDeleteByID: %v", err)
	}
	gone, err := repo.GetByID(dbc, public.ID)
	if err != nil || gone != nil {
		t.Fatalf("GetByID after delete: err=%v rec=%v", err, gone)
	}
}
