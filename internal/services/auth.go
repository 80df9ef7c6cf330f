package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/pictures2pages-backend/internal/data/repos"
	types "github.com/yungbote/pictures2pages-backend/internal/domain"
	"github.com/yungbote/pictures2pages-backend/internal/platform/ctxutil"
	"github.com/yungbote/pictures2pages-backend/internal/platform/dbctx"
	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
)

const minPasswordLength = 8

type JWTClaims struct {
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    time.Duration `json:"-"`
}

type AuthService interface {
	RegisterUser(ctx context.Context, in RegisterInput) (*types.User, error)
	LoginUser(ctx context.Context, email, password string) (TokenPair, error)
	RefreshUser(ctx context.Context, refreshToken string) (TokenPair, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	avatarService AvatarService
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	avatarService AvatarService,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		avatarService: avatarService,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

func (as *authService) GetAccessTTL() time.Duration { return as.accessTTL }

// RegisterUser creates the account, then renders an initials avatar. The
// avatar is best effort: a storage failure is logged and the account stays.
func (as *authService) RegisterUser(ctx context.Context, in RegisterInput) (*types.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Username == "" {
		return nil, &ValidationError{Field: "username", Reason: "is required"}
	}
	if in.Email == "" {
		return nil, &ValidationError{Field: "email", Reason: "is required"}
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		return nil, &ValidationError{Field: "email", Reason: "is not a valid address"}
	}
	if len(in.Password) < minPasswordLength {
		return nil, &ValidationError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &types.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashed),
	}
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := as.userRepo.EmailExists(dbc, in.Email)
		if err != nil {
			return fmt.Errorf("failed to check user email: %w", err)
		}
		if exists {
			return &ConflictError{Field: "email", Reason: "email is already in use"}
		}
		if _, err := as.userRepo.Create(dbc, []*types.User{user}); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if as.avatarService != nil {
		if err := as.avatarService.CreateAndUploadUserAvatar(ctx, user); err != nil {
			as.log.Warn("Avatar generation failed (ignored)", "user_id", user.ID, "error", err)
		} else if err := as.userRepo.UpdateAvatarFields(dbctx.Context{Ctx: ctx}, user.ID, user.AvatarColor, user.AvatarBucketKey, user.AvatarURL); err != nil {
			as.log.Warn("Saving avatar fields failed (ignored)", "user_id", user.ID, "error", err)
		}
	}
	as.log.Info("User registered", "user_id", user.ID)
	return user, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return TokenPair{}, &ValidationError{Field: "credentials", Reason: "email and password are required"}
	}

	var (
		pair   TokenPair
		userID uint
	)
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		users, err := as.userRepo.GetByEmails(dbc, []string{email})
		if err != nil {
			return fmt.Errorf("error retrieving user by email: %w", err)
		}
		// Unknown email and wrong password look the same to the caller.
		if len(users) == 0 {
			return &AuthenticationError{Reason: "invalid email or password"}
		}
		user := users[0]
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
			return &AuthenticationError{Reason: "invalid email or password"}
		}
		userID = user.ID
		pair, err = as.issueTokens(dbc, user.ID)
		return err
	})
	if err != nil {
		return TokenPair{}, err
	}
	as.purgeExpiredTokens(ctx, userID)
	return pair, nil
}

// purgeExpiredTokens drops the user's expired sessions once login has
// committed. A failure only costs stale rows, so it is logged, not returned.
func (as *authService) purgeExpiredTokens(ctx context.Context, userID uint) {
	dbc := dbctx.Context{Ctx: ctx, Tx: as.db.WithContext(ctx)}
	n, err := as.userTokenRepo.FullDeleteExpiredByUserIDs(dbc, []uint{userID}, as.now())
	if err != nil {
		as.log.Warn("Purging expired tokens failed", "user_id", userID, "error", err)
		return
	}
	if n > 0 {
		as.log.Debug("Purged expired tokens at login", "user_id", userID, "count", n)
	}
}

// RefreshUser rotates a refresh token: the old row is deleted and a new
// access/refresh pair is issued in the same transaction.
func (as *authService) RefreshUser(ctx context.Context, refreshToken string) (TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return TokenPair{}, &ValidationError{Field: "refresh_token", Reason: "is required"}
	}

	var (
		pair      TokenPair
		expiredID uuid.UUID
	)
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		found, err := as.userTokenRepo.GetByRefreshTokens(dbc, []string{refreshToken})
		if err != nil {
			return fmt.Errorf("error fetching refresh token: %w", err)
		}
		if len(found) == 0 {
			return &AuthenticationError{Reason: "invalid refresh token"}
		}
		existing := found[0]
		if existing.Expired(as.now()) {
			// Deleted after commit: an error return here would roll the delete back.
			expiredID = existing.ID
			return nil
		}
		users, err := as.userRepo.GetByIDs(dbc, []uint{existing.UserID})
		if err != nil {
			return fmt.Errorf("failed to load user for refresh: %w", err)
		}
		if len(users) == 0 {
			return &AuthenticationError{Reason: "invalid refresh token"}
		}
		if err := as.userTokenRepo.FullDeleteByIDs(dbc, []uuid.UUID{existing.ID}); err != nil {
			return fmt.Errorf("failed to remove old refresh token: %w", err)
		}
		pair, err = as.issueTokens(dbc, users[0].ID)
		return err
	})
	if err != nil {
		return TokenPair{}, err
	}
	if expiredID != uuid.Nil {
		dbc := dbctx.Context{Ctx: ctx, Tx: as.db.WithContext(ctx)}
		if err := as.userTokenRepo.FullDeleteByIDs(dbc, []uuid.UUID{expiredID}); err != nil {
			return TokenPair{}, fmt.Errorf("refresh token expired, error deleting: %w", err)
		}
		return TokenPair{}, &AuthenticationError{Reason: "refresh token expired"}
	}
	return pair, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return &AuthenticationError{Reason: "not logged in"}
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		found, err := as.userTokenRepo.GetByAccessTokens(dbc, []string{rd.TokenString})
		if err != nil {
			return fmt.Errorf("error finding user token: %w", err)
		}
		ids := make([]uuid.UUID, 0, len(found))
		for _, t := range found {
			ids = append(ids, t.ID)
		}
		if err := as.userTokenRepo.FullDeleteByIDs(dbc, ids); err != nil {
			return fmt.Errorf("error deleting user token: %w", err)
		}
		return nil
	})
}

// SetContextFromToken verifies the JWT and that its token row still exists,
// so a logged-out access token stops working before it expires.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, &AuthenticationError{Reason: "missing token"}
	}
	claims := &JWTClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ctx, &AuthenticationError{Reason: "token expired", Err: err}
		}
		return ctx, &AuthenticationError{Reason: "invalid token", Err: err}
	}
	if !parsed.Valid {
		return ctx, &AuthenticationError{Reason: "invalid token"}
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return ctx, &AuthenticationError{Reason: "invalid token subject", Err: err}
	}

	found, err := as.userTokenRepo.GetByAccessTokens(dbctx.Context{Ctx: ctx}, []string{tokenString})
	if err != nil {
		return ctx, fmt.Errorf("failed to fetch user token: %w", err)
	}
	if len(found) == 0 {
		return ctx, &AuthenticationError{Reason: "token revoked"}
	}

	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		UserID:      uint(userID),
		TokenString: tokenString,
	}), nil
}

func (as *authService) issueTokens(dbc dbctx.Context, userID uint) (TokenPair, error) {
	access, err := as.generateAccessToken(userID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("generate access token: %w", err)
	}
	token := &types.UserToken{
		ID:           uuid.New(),
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: uuid.NewString(),
		ExpiresAt:    as.now().Add(as.refreshTTL),
	}
	if _, err := as.userTokenRepo.Create(dbc, []*types.UserToken{token}); err != nil {
		return TokenPair{}, fmt.Errorf("create user token: %w", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: token.RefreshToken, ExpiresIn: as.accessTTL}, nil
}

func (as *authService) generateAccessToken(userID uint) (string, error) {
	now := as.now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			// Two logins in the same second must still yield distinct tokens.
			ID: uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}
