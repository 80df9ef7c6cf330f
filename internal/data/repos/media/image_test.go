package media

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/pictures2pages-backend/internal/data/repos/testutil"
	types "github.com/yungbote/pictures2pages-backend/internal/domain"
	"github.com/yungbote/pictures2pages-backend/internal/platform/dbctx"
)

func TestImageRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewImageRepo(db, testutil.Logger(t))

	owner := testutil.SeedUser(t, ctx, tx, "owner@example.com")
	other := testutil.SeedUser(t, ctx, tx, "other@example.com")

	created, err := repo.Create(dbc, []*types.Image{
		{OwnerID: owner.ID, URL: "https://cdn/images/a.png", StorageKey: "images/a.png", CreatedAt: time.Now().UTC()},
		{OwnerID: owner.ID, URL: "https://cdn/images/b.png", StorageKey: "images/b.png", CreatedAt: time.Now().UTC()},
		{OwnerID: other.ID, URL: "https://cdn/images/c.png", StorageKey: "images/c.png", CreatedAt: time.Now().UTC()},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 3 || created[0].ID == 0 {
		t.Fatalf("Create: unexpected result %+v", created)
	}

	mine, err := repo.ListByOwner(dbc, owner.ID)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("ListByOwner: want 2 got %d", len(mine))
	}
	for _, img := range mine {
		if img.OwnerID != owner.ID {
			t.Fatalf("ListByOwner leaked image of owner %d", img.OwnerID)
		}
	}

	byURL, err := repo.GetByURLs(dbc, []string{"https://cdn/images/c.png"})
	if err != nil || len(byURL) != 1 || byURL[0].OwnerID != other.ID {
		t.Fatalf("GetByURLs: err=%v rows=%+v", err, byURL)
	}

	if err := repo.FullDeleteByIDs(dbc, []uint{created[0].ID}); err != nil {
		t.Fatalf("FullDeleteByIDs: %v", err)
	}
	rows, err := repo.GetByIDs(dbc, []uint{created[0].ID, created[1].ID})
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs after delete: err=%v len=%d", err, len(rows))
	}
}
