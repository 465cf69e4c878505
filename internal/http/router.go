package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/lessonplan-backend/internal/http/handlers"
	httpMW "github.com/yungbote/lessonplan-backend/internal/http/middleware"
	"github.com/yungbote/lessonplan-backend/internal/observability"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	AllowedOrigins []string
	// ExposeMetrics mounts GET /metrics on the API engine.
	ExposeMetrics bool

	PlannerHandler *httpH.PlannerHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "lessonplan"
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = httpMW.AllowedOrigins()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(origins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.ExposeMetrics && cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	if h := cfg.PlannerHandler; h != nil {
		// Uploads
		api.POST("/calendar", h.IngestCalendar)
		api.POST("/lists/:kind", h.IngestList)
		api.POST("/template", h.UploadTemplate)
		api.PUT("/config", h.SetConfig)

		// Generation
		api.POST("/generate", h.Generate)

		// State
		api.GET("/state", h.GetState)
		api.DELETE("/state", h.ClearState)
		api.GET("/sets", h.ListSets)
		api.PUT("/sets/:name", h.UseSet)
	}

	return r
}
