// Package gemini wraps google.golang.org/genai for JSON-mode generation.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/yungbote/lessonplan-backend/internal/platform/ctxutil"
	"github.com/yungbote/lessonplan-backend/internal/platform/envutil"
	"github.com/yungbote/lessonplan-backend/internal/platform/httpx"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
	"github.com/yungbote/lessonplan-backend/internal/platform/promptstyle"
)

const (
	defaultRegion = "europe-west1"
	defaultModel  = "gemini-2.5-flash"
)

// Client generates a JSON document from a system and user prompt.
type Client interface {
	GenerateJSON(ctx context.Context, system, user string) ([]byte, error)
}

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

type client struct {
	log         *logger.Logger
	generate    generateFunc
	model       string
	temperature float32
	maxRetries  int
	timeout     time.Duration
}

// NewClient uses the Gemini API when GEMINI_API_KEY is set and Vertex AI
// (GCP_PROJECT_ID, GEMINI_LOCATION) otherwise. Vertex relies on application
// default credentials.
func NewClient(ctx context.Context, log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg := &genai.ClientConfig{}
	if key := envutil.String("GEMINI_API_KEY", ""); key != "" {
		cfg.APIKey = key
		cfg.Backend = genai.BackendGeminiAPI
	} else {
		project := envutil.String("GCP_PROJECT_ID", "")
		if project == "" {
			return nil, fmt.Errorf("missing GEMINI_API_KEY or GCP_PROJECT_ID")
		}
		cfg.Project = project
		cfg.Location = envutil.String("GEMINI_LOCATION", defaultRegion)
		cfg.Backend = genai.BackendVertexAI
	}
	gc, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newClient(log, gc.Models.GenerateContent), nil
}

func newClient(log *logger.Logger, gen generateFunc) *client {
	return &client{
		log:         log.With("service", "GeminiClient"),
		generate:    gen,
		model:       envutil.String("GEMINI_MODEL", defaultModel),
		temperature: float32(envutil.Float("GEMINI_TEMPERATURE", 0.4)),
		maxRetries:  envutil.Int("GEMINI_MAX_RETRIES", 3),
		timeout:     envutil.Seconds("GEMINI_TIMEOUT_SECONDS", 120*time.Second),
	}
}

// statusError exposes the API status code to the shared retry policy.
type statusError struct {
	code int
	err  error
}

func (e *statusError) Error() string       { return e.err.Error() }
func (e *statusError) Unwrap() error       { return e.err }
func (e *statusError) HTTPStatusCode() int { return e.code }

func classify(err error) error {
	var v genai.APIError
	if errors.As(err, &v) {
		return &statusError{code: v.Code, err: err}
	}
	var p *genai.APIError
	if errors.As(err, &p) && p != nil {
		return &statusError{code: p.Code, err: err}
	}
	return err
}

func (c *client) GenerateJSON(ctx context.Context, system, user string) ([]byte, error) {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: user}},
	}}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: promptstyle.ApplySystem(system, "json")}}},
		Temperature:       genai.Ptr(c.temperature),
		ResponseMIMEType:  "application/json",
	}

	var text string
	attempt := 0
	err := httpx.Retry(ctx, c.maxRetries, time.Second, func(ctx context.Context) error {
		attempt++
		resp, err := c.generate(ctx, c.model, contents, cfg)
		if err != nil {
			if attempt <= c.maxRetries {
				c.log.Warn("Gemini request failed", "attempt", attempt, "model", c.model, "error", err.Error())
			}
			return classify(err)
		}
		text = strings.TrimSpace(resp.Text())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if text == "" {
		return nil, fmt.Errorf("empty gemini response")
	}
	return []byte(text), nil
}
