package http

import (
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/pictures2pages-backend/internal/http/handlers"
	httpMW "github.com/yungbote/pictures2pages-backend/internal/http/middleware"
	"github.com/yungbote/pictures2pages-backend/internal/observability"
	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	// PrometheusSubsystem enables go-gin-prometheus and GET /metrics. It
	// registers on the default registry, so at most one router per process
	// may set it.
	PrometheusSubsystem string
	Metrics             *observability.Metrics

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler   *httpH.HealthHandler
	AuthHandler     *httpH.AuthHandler
	UserHandler     *httpH.UserHandler
	ImageHandler    *httpH.ImageHandler
	ContentHandler  *httpH.ContentHandler
	RealtimeHandler *httpH.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Must run before any route is added: gin copies middleware into each
	// route's chain at registration time.
	if cfg.PrometheusSubsystem != "" {
		p := ginprometheus.NewPrometheus(cfg.PrometheusSubsystem)
		p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
			if route := c.FullPath(); route != "" {
				return route
			}
			return "unknown"
		}
		p.Use(r)
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/version", cfg.HealthHandler.Version)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
		}

		if cfg.RealtimeHandler != nil {
			protected.GET("/events/stream", cfg.RealtimeHandler.SSEStream)
		}

		if cfg.ImageHandler != nil {
			protected.POST("/images", cfg.ImageHandler.Upload)
			protected.GET("/images", cfg.ImageHandler.ListMine)
		}

		if cfg.ContentHandler != nil {
			protected.POST("/contents", cfg.ContentHandler.Create)
			protected.GET("/contents", cfg.ContentHandler.ListMine)
			protected.POST("/create-story", cfg.ContentHandler.CreateStory)
			protected.POST("/create-poem", cfg.ContentHandler.CreatePoem)
			protected.GET("/contents/:id", cfg.ContentHandler.Get)
			protected.PATCH("/contents/:id/visibility", cfg.ContentHandler.SetVisibility)
			protected.DELETE("/contents/:id", cfg.ContentHandler.Delete)
			protected.GET("/users/:id/contents", cfg.ContentHandler.ListPublicByUser)
		}
	}

	return r
}
