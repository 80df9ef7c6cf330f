package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/pictures2pages-backend/internal/data/repos/auth"
	"github.com/yungbote/pictures2pages-backend/internal/data/repos/content"
	"github.com/yungbote/pictures2pages-backend/internal/data/repos/media"
	"github.com/yungbote/pictures2pages-backend/internal/data/repos/user"
	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo
type ImageRepo = media.ImageRepo
type GeneratedContentRepo = content.GeneratedContentRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}
func NewImageRepo(db *gorm.DB, baseLog *logger.Logger) ImageRepo { return media.NewImageRepo(db, baseLog) }
func NewGeneratedContentRepo(db *gorm.DB, baseLog *logger.Logger) GeneratedContentRepo {
	return content.NewGeneratedContentRepo(db, baseLog)
}
