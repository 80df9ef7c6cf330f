package media

import (
	"gorm.io/gorm"

	types "github.com/yungbote/pictures2pages-backend/internal/domain"
	"github.com/yungbote/pictures2pages-backend/internal/platform/dbctx"
	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
)

type ImageRepo interface {
	Create(dbc dbctx.Context, images []*types.Image) ([]*types.Image, error)
	GetByIDs(dbc dbctx.Context, imageIDs []uint) ([]*types.Image, error)
	GetByURLs(dbc dbctx.Context, urls []string) ([]*types.Image, error)
	ListByOwner(dbc dbctx.Context, ownerID uint) ([]*types.Image, error)
	FullDeleteByIDs(dbc dbctx.Context, imageIDs []uint) error
}

type imageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewImageRepo(db *gorm.DB, baseLog *logger.Logger) ImageRepo {
	repoLog := baseLog.With("repo", "ImageRepo")
	return &imageRepo{db: db, log: repoLog}
}

func (ir *imageRepo) Create(dbc dbctx.Context, images []*types.Image) ([]*types.Image, error) {
	if len(images) == 0 {
		return []*types.Image{}, nil
	}
	if err := dbc.DB(ir.db).Create(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

func (ir *imageRepo) GetByIDs(dbc dbctx.Context, imageIDs []uint) ([]*types.Image, error) {
	var results []*types.Image
	if len(imageIDs) == 0 {
		return results, nil
	}
	if err := dbc.DB(ir.db).
		Where("id IN ?", imageIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ir *imageRepo) GetByURLs(dbc dbctx.Context, urls []string) ([]*types.Image, error) {
	var results []*types.Image
	if len(urls) == 0 {
		return results, nil
	}
	if err := dbc.DB(ir.db).
		Where("url IN ?", urls).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ir *imageRepo) ListByOwner(dbc dbctx.Context, ownerID uint) ([]*types.Image, error) {
	var results []*types.Image
	if err := dbc.DB(ir.db).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ir *imageRepo) FullDeleteByIDs(dbc dbctx.Context, imageIDs []uint) error {
	if len(imageIDs) == 0 {
		return nil
	}
	return dbc.DB(ir.db).
		Where("id IN ?", imageIDs).
		Delete(&types.Image{}).Error
}
