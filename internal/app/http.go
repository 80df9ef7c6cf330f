package app

import (
	"github.com/yungbote/pictures2pages-backend/internal/http"
	httpH "github.com/yungbote/pictures2pages-backend/internal/http/handlers"
	httpMW "github.com/yungbote/pictures2pages-backend/internal/http/middleware"
	"github.com/yungbote/pictures2pages-backend/internal/observability"
	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
	"github.com/yungbote/pictures2pages-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Auth     *httpH.AuthHandler
	User     *httpH.UserHandler
	Image    *httpH.ImageHandler
	Content  *httpH.ContentHandler
	Realtime *httpH.RealtimeHandler
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireHandlers(log *logger.Logger, cfg Config, services Services, hub *realtime.SSEHub, metrics *observability.Metrics) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(httpH.VersionInfo{
			Service: cfg.ServiceName,
			Version: cfg.Version,
			Commit:  cfg.Commit,
		}),
		Auth:     httpH.NewAuthHandler(services.Auth),
		User:     httpH.NewUserHandler(services.User),
		Image:    httpH.NewImageHandler(services.Image),
		Content:  httpH.NewContentHandler(services.Content),
		Realtime: httpH.NewRealtimeHandler(log, hub, metrics),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *http.Server {
	subsystem := ""
	if cfg.MetricsEnabled {
		subsystem = "http"
	}
	serviceName := ""
	if cfg.OtelEnabled {
		serviceName = cfg.ServiceName
	}
	return http.NewServer(http.RouterConfig{
		Log:                 log,
		ServiceName:         serviceName,
		CORSOrigins:         cfg.CORSOrigins,
		PrometheusSubsystem: subsystem,
		Metrics:             metrics,
		AuthMiddleware:      middleware.Auth,
		HealthHandler:       handlers.Health,
		AuthHandler:         handlers.Auth,
		UserHandler:         handlers.User,
		ImageHandler:        handlers.Image,
		ContentHandler:      handlers.Content,
		RealtimeHandler:     handlers.Realtime,
	})
}
