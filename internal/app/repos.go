package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/pictures2pages-backend/internal/data/repos"
	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
)

type Repos struct {
	User             repos.UserRepo
	UserToken        repos.UserTokenRepo
	Image            repos.ImageRepo
	GeneratedContent repos.GeneratedContentRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:             repos.NewUserRepo(db, log),
		UserToken:        repos.NewUserTokenRepo(db, log),
		Image:            repos.NewImageRepo(db, log),
		GeneratedContent: repos.NewGeneratedContentRepo(db, log),
	}
}
