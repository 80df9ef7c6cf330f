package testutil

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/pictures2pages-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		Username: "user",
		Email:    email,
		Password: "pw",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedImage(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uint, key string) *types.Image {
	tb.Helper()
	img := &types.Image{
		OwnerID:     ownerID,
		URL:         "https://storage.googleapis.com/images/" + key,
		StorageKey:  key,
		Description: "seed",
		ContentType: "image/png",
		CreatedAt:   time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(img).Error; err != nil {
		tb.Fatalf("seed image: %v", err)
	}
	return img
}

func SeedContent(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uint, public bool) *types.GeneratedContent {
	tb.Helper()
	rec := &types.GeneratedContent{
		Kind:      types.ContentKindStory,
		Title:     "A Sunny Day",
		Content:   "A dog ran...",
		Theme:     "adventure",
		IsPublic:  public,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	rec.SetProvenance(
		[3]string{"images/1.png", "images/2.png", "images/3.png"},
		[3][]string{{"dog", "park", "ball"}, {"sun", "sky"}, {"child", "laughing"}},
	)
	if err := tx.WithContext(ctx).Create(rec).Error; err != nil {
		tb.Fatalf("seed content: %v", err)
	}
	return rec
}
