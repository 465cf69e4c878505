// Package generation turns a lesson context into a structured plan through
// one of the configured text-generation providers.
package generation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/prompts"
	"github.com/yungbote/lessonplan-backend/internal/platform/gemini"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
	"github.com/yungbote/lessonplan-backend/internal/platform/openai"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Generator interface {
	Generate(ctx context.Context, in prompts.PlanContext) (*prompts.Plan, error)
}

type openAIGenerator struct {
	log    *logger.Logger
	client openai.Client
}

// NewOpenAI generates with the Responses API and a strict plan schema.
func NewOpenAI(log *logger.Logger, client openai.Client) Generator {
	return &openAIGenerator{log: log.With("provider", ProviderOpenAI), client: client}
}

func (g *openAIGenerator) Generate(ctx context.Context, in prompts.PlanContext) (*prompts.Plan, error) {
	p, err := prompts.Build(in)
	if err != nil {
		return nil, err
	}
	obj, err := g.client.GenerateJSON(ctx, p.System, p.User, p.SchemaName, p.Schema)
	if err != nil {
		return nil, fmt.Errorf("openai generate: %w", err)
	}
	plan, err := prompts.PlanFromMap(obj)
	if err != nil {
		return nil, fmt.Errorf("openai generate: %w", err)
	}
	g.log.Debug("plan generated", "prompt", p.Name, "version", p.Version, "day", in.Day)
	return plan, nil
}

type geminiGenerator struct {
	log    *logger.Logger
	client gemini.Client
}

// NewGemini generates with a JSON response MIME type and validates the keys
// client-side.
func NewGemini(log *logger.Logger, client gemini.Client) Generator {
	return &geminiGenerator{log: log.With("provider", ProviderGemini), client: client}
}

func (g *geminiGenerator) Generate(ctx context.Context, in prompts.PlanContext) (*prompts.Plan, error) {
	p, err := prompts.Build(in)
	if err != nil {
		return nil, err
	}
	raw, err := g.client.GenerateJSON(ctx, p.System, p.User)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	plan, err := prompts.DecodePlan(raw)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	g.log.Debug("plan generated", "prompt", p.Name, "version", p.Version, "day", in.Day)
	return plan, nil
}

// Router picks a provider by name. An empty name selects the default.
type Router struct {
	def    string
	routes map[string]Generator
}

func NewRouter(def string, routes map[string]Generator) (*Router, error) {
	r := &Router{routes: map[string]Generator{}}
	for name, g := range routes {
		key := normalizeProvider(name)
		if key == "" || g == nil {
			continue
		}
		if _, exists := r.routes[key]; exists {
			return nil, fmt.Errorf("duplicate provider: %s", key)
		}
		r.routes[key] = g
	}
	r.def = normalizeProvider(def)
	if r.def == "" && len(r.routes) == 1 {
		for k := range r.routes {
			r.def = k
		}
	}
	if r.def != "" {
		if _, ok := r.routes[r.def]; !ok {
			return nil, fmt.Errorf("default provider %q is not configured", r.def)
		}
	}
	return r, nil
}

func (r *Router) Providers() []string {
	out := make([]string, 0, len(r.routes))
	for k := range r.routes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (r *Router) Default() string { return r.def }

// Resolve returns the generator for name.
func (r *Router) Resolve(name string) (Generator, error) {
	key := normalizeProvider(name)
	if key == "" {
		key = r.def
	}
	if key == "" {
		return nil, fmt.Errorf("no generation provider configured")
	}
	g, ok := r.routes[key]
	if !ok {
		return nil, fmt.Errorf("unknown generation provider %q (have: %s)", name, strings.Join(r.Providers(), ", "))
	}
	return g, nil
}

func normalizeProvider(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
