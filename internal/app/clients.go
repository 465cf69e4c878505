package app

import (
	"context"
	"fmt"

	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/generation"
	"github.com/yungbote/lessonplan-backend/internal/platform/gcp"
	"github.com/yungbote/lessonplan-backend/internal/platform/gemini"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
	"github.com/yungbote/lessonplan-backend/internal/platform/openai"
)

type Clients struct {
	Generators *generation.Router
	Vision     *gcp.Vision
	Document   *gcp.Document
	Exporter   gcp.Exporter
}

// wireClients builds every external collaborator that has credentials.
// Only the generation router is mandatory.
func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	routes := map[string]generation.Generator{}
	if cfg.Generation.wants(generation.ProviderOpenAI) {
		oc, err := openai.NewClientWithModel(log, cfg.Generation.OpenAIModel)
		if err != nil {
			log.Warn("OpenAI provider disabled", "error", err)
		} else {
			routes[generation.ProviderOpenAI] = generation.NewOpenAI(log, oc)
		}
	}
	if cfg.Generation.wants(generation.ProviderGemini) {
		gc, err := gemini.NewClient(ctx, log)
		if err != nil {
			log.Warn("Gemini provider disabled", "error", err)
		} else {
			routes[generation.ProviderGemini] = generation.NewGemini(log, gc)
		}
	}
	if len(routes) == 0 {
		return Clients{}, fmt.Errorf("no generation provider configured (set OPENAI_API_KEY or GEMINI_API_KEY)")
	}
	router, err := generation.NewRouter(cfg.Generation.DefaultProvider, routes)
	if err != nil {
		return Clients{}, fmt.Errorf("init generation router: %w", err)
	}
	out.Generators = router
	log.Info("Generation providers ready", "providers", router.Providers(), "default", router.Default())

	if cfg.OCREnabled {
		v, err := gcp.NewVision(log)
		if err != nil {
			log.Warn("Vision OCR disabled", "error", err)
		} else {
			out.Vision = v
		}
		d, err := gcp.NewDocument(log)
		if err != nil {
			log.Warn("Document AI OCR disabled", "error", err)
		} else {
			out.Document = d
		}
	}

	storageCfg, err := gcp.ResolveObjectStorageConfigFromEnv()
	if err != nil {
		out.Close(log)
		return Clients{}, fmt.Errorf("resolve object storage config: %w", err)
	}
	exp, err := gcp.NewExporter(log, storageCfg)
	if err != nil {
		out.Close(log)
		return Clients{}, fmt.Errorf("init exporter: %w", err)
	}
	out.Exporter = exp
	return out, nil
}

// Recognizer returns nil when no OCR backend came up.
func (c Clients) Recognizer() *gcp.Recognizer {
	if c.Vision == nil && c.Document == nil {
		return nil
	}
	r := &gcp.Recognizer{}
	if c.Vision != nil {
		r.Images = c.Vision
	}
	if c.Document != nil {
		r.Documents = c.Document
	}
	return r
}

func (c Clients) Close(log *logger.Logger) {
	if c.Vision != nil {
		if err := c.Vision.Close(); err != nil {
			log.Warn("close vision", "error", err)
		}
	}
	if c.Document != nil {
		if err := c.Document.Close(); err != nil {
			log.Warn("close document ai", "error", err)
		}
	}
	if c.Exporter != nil {
		if err := c.Exporter.Close(); err != nil {
			log.Warn("close exporter", "error", err)
		}
	}
}
