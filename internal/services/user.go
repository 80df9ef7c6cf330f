package services

import (
	"fmt"

	"github.com/yungbote/pictures2pages-backend/internal/data/repos"
	types "github.com/yungbote/pictures2pages-backend/internal/domain"
	"github.com/yungbote/pictures2pages-backend/internal/platform/ctxutil"
	"github.com/yungbote/pictures2pages-backend/internal/platform/dbctx"
	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
)

type UserService interface {
	GetMe(dbc dbctx.Context) (*types.User, error)
	GetByID(dbc dbctx.Context, userID uint) (*types.User, error)
}

type userService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(log *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{log: log.With("service", "UserService"), userRepo: userRepo}
}

func (us *userService) GetMe(dbc dbctx.Context) (*types.User, error) {
	userID := ctxutil.CallerID(dbc.Ctx)
	if userID == 0 {
		us.log.Warn("User id not set in request data")
		return nil, &AuthenticationError{Reason: "not logged in"}
	}
	return us.GetByID(dbc, userID)
}

func (us *userService) GetByID(dbc dbctx.Context, userID uint) (*types.User, error) {
	found, err := us.userRepo.GetByIDs(dbc, []uint{userID})
	if err != nil {
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	if len(found) == 0 {
		return nil, &NotFoundError{Resource: "user", ID: userID}
	}
	return found[0], nil
}
