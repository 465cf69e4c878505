package app

import (
	"context"

	"github.com/yungbote/lessonplan-backend/internal/http"
	httpH "github.com/yungbote/lessonplan-backend/internal/http/handlers"
	"github.com/yungbote/lessonplan-backend/internal/observability"
	"github.com/yungbote/lessonplan-backend/internal/platform/kvstore"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, store kvstore.Store, services Services, metrics *observability.Metrics) *http.Server {
	log.Info("Wiring HTTP server...")
	ready := func(ctx context.Context) error {
		_, err := store.ListSetNames(ctx)
		return err
	}
	return http.NewServer(http.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		ServiceName:    cfg.ServiceName,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		ExposeMetrics:  cfg.HTTP.ExposeMetrics,
		PlannerHandler: httpH.NewPlannerHandler(services.Planner, cfg.HTTP.MaxUploadBytes),
		HealthHandler:  httpH.NewHealthHandler(ready),
	})
}
