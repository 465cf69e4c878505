package app

import (
	"fmt"

	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/state"
	"github.com/yungbote/lessonplan-backend/internal/observability"
	"github.com/yungbote/lessonplan-backend/internal/platform/kvstore"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
	"github.com/yungbote/lessonplan-backend/internal/services/planner"
)

type Services struct {
	Planner planner.Service
}

func wireServices(log *logger.Logger, cfg Config, store kvstore.Store, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")
	opts := planner.Options{
		Resolver: clients.Generators,
		Repo:     state.NewRepository(log, store),
		Metrics:  metrics,
		Set:      cfg.Set,
	}
	if r := clients.Recognizer(); r != nil {
		opts.OCR = r
	}
	if clients.Exporter != nil {
		opts.Exporter = clients.Exporter
	}
	svc, err := planner.NewService(log, opts)
	if err != nil {
		return Services{}, fmt.Errorf("init planner: %w", err)
	}
	return Services{Planner: svc}, nil
}
