package content

import (
	"errors"

	"gorm.io/gorm"

	types "github.com/yungbote/pictures2pages-backend/internal/domain"
	"github.com/yungbote/pictures2pages-backend/internal/platform/dbctx"
	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
)

type GeneratedContentRepo interface {
	Create(dbc dbctx.Context, record *types.GeneratedContent) error
	// GetByID returns (nil, nil) when no record has the id.
	GetByID(dbc dbctx.Context, id uint) (*types.GeneratedContent, error)
	UpdateVisibility(dbc dbctx.Context, id uint, isPublic bool) error
	FullDeleteByID(dbc dbctx.Context, id uint) error
	ListByOwner(dbc dbctx.Context, ownerID uint) ([]*types.GeneratedContent, error)
	ListPublicByOwner(dbc dbctx.Context, ownerID uint) ([]*types.GeneratedContent, error)
}

type generatedContentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGeneratedContentRepo(db *gorm.DB, baseLog *logger.Logger) GeneratedContentRepo {
	repoLog := baseLog.With("repo", "GeneratedContentRepo")
	return &generatedContentRepo{db: db, log: repoLog}
}

func (r *generatedContentRepo) Create(dbc dbctx.Context, record *types.GeneratedContent) error {
	if record == nil {
		return errors.New("nil generated content record")
	}
	return dbc.DB(r.db).Create(record).Error
}

func (r *generatedContentRepo) GetByID(dbc dbctx.Context, id uint) (*types.GeneratedContent, error) {
	var out types.GeneratedContent
	err := dbc.DB(r.db).Where("id = ?", id).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateVisibility touches only is_public; every other column is immutable.
func (r *generatedContentRepo) UpdateVisibility(dbc dbctx.Context, id uint, isPublic bool) error {
	return dbc.DB(r.db).
		Model(&types.GeneratedContent{}).
		Where("id = ?", id).
		Update("is_public", isPublic).Error
}

func (r *generatedContentRepo) FullDeleteByID(dbc dbctx.Context, id uint) error {
	return dbc.DB(r.db).
		Where("id = ?", id).
		Delete(&types.GeneratedContent{}).Error
}

func (r *generatedContentRepo) ListByOwner(dbc dbctx.Context, ownerID uint) ([]*types.GeneratedContent, error) {
	var results []*types.GeneratedContent
	if err := dbc.DB(r.db).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *generatedContentRepo) ListPublicByOwner(dbc dbctx.Context, ownerID uint) ([]*types.GeneratedContent, error) {
	var results []*types.GeneratedContent
	if err := dbc.DB(r.db).
		Where("owner_id = ? AND is_public = ?", ownerID, true).
		Order("created_at DESC, id DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
