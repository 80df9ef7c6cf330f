package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/pictures2pages-backend/internal/modules/generation"
	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
	"github.com/yungbote/pictures2pages-backend/internal/platform/objectstore"
	"github.com/yungbote/pictures2pages-backend/internal/services"
)

type Services struct {
	Events   *services.EventPublisher
	Avatar   services.AvatarService
	Auth     services.AuthService
	User     services.UserService
	Image    services.ImageService
	Content  services.ContentService
	Pipeline *generation.Pipeline
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients, genMetrics *generation.Metrics) (Services, error) {
	log.Info("Wiring services...")

	events := services.NewEventPublisher(log, clients.Bus)

	avatarService, err := services.NewAvatarService(log, clients.Store, cfg.AvatarConfig())
	if err != nil {
		return Services{}, fmt.Errorf("init avatar service: %w", err)
	}

	authService := services.NewAuthService(
		db,
		log,
		reposet.User,
		reposet.UserToken,
		avatarService,
		cfg.JWTSecretKey,
		cfg.AccessTokenTTL(),
		cfg.RefreshTokenTTL(),
	)

	pipeline := generation.NewPipeline(
		log,
		generation.NewLabelExtractor(log, clients.Vision, clients.Store.BucketName(objectstore.CategoryImage), cfg.VisionMaxLabels, genMetrics).
			WithPathStyleHosts(cfg.ImageURLPathStyleHosts()...),
		generation.NewNarrativeGenerator(log, clients.Text, cfg.GenerationTimeout(), genMetrics),
		generation.NewRecordAssembler(db, log, reposet.GeneratedContent),
		cfg.FailurePolicy(),
		genMetrics,
		generation.WithTransitionHook(events.GenerationTransitions()),
	)
	log.Info("Generation pipeline ready", "failure_policy", pipeline.Policy(), "max_labels", cfg.VisionMaxLabels)

	return Services{
		Events:   events,
		Avatar:   avatarService,
		Auth:     authService,
		User:     services.NewUserService(log, reposet.User),
		Image:    services.NewImageService(log, reposet.Image, clients.Store, events, cfg.MaxImageBytes),
		Content:  services.NewContentService(db, log, reposet.GeneratedContent, pipeline, events),
		Pipeline: pipeline,
	}, nil
}
