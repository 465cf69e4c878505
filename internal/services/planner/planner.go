// Package planner owns the lesson-plan application state and runs the
// ingest and generation pipelines against it, one run at a time.
package planner

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/calendar"
	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/generation"
	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/ocr"
	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/spiral"
	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/state"
	"github.com/yungbote/lessonplan-backend/internal/observability"
	"github.com/yungbote/lessonplan-backend/internal/platform/apierr"
	"github.com/yungbote/lessonplan-backend/internal/platform/ctxutil"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

type ListKind string

const (
	KindMindMap      ListKind = "mindmap"
	KindGames        ListKind = "games"
	KindSpiralReview ListKind = "spiral-review"
)

// ParseListKind accepts the route spellings plus a few aliases.
func ParseListKind(s string) (ListKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mindmap", "mind-map", "mind_map", "targets":
		return KindMindMap, nil
	case "games", "game":
		return KindGames, nil
	case "spiral-review", "spiral_review", "spiral", "spiralreview":
		return KindSpiralReview, nil
	default:
		return "", apierr.Wrap(apierr.ErrInvalidArgument, "unknown list kind %q", s)
	}
}

// OCR turns an uploaded image or PDF into OCR output.
type OCR interface {
	Recognize(ctx context.Context, data []byte, mimeType string) (ocr.Output, error)
}

// Exporter uploads filled documents. Optional.
type Exporter interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Resolver picks a generator for a provider name.
type Resolver interface {
	Resolve(provider string) (generation.Generator, error)
}

type Service interface {
	Load(ctx context.Context) state.Summary
	IngestCalendar(ctx context.Context, out ocr.Output) (*calendar.Result, error)
	IngestCalendarImage(ctx context.Context, data []byte, mimeType string) (*calendar.Result, error)
	IngestList(ctx context.Context, kind ListKind, text string) (state.Summary, error)
	IngestListImage(ctx context.Context, kind ListKind, data []byte, mimeType string) (state.Summary, error)
	SetTemplate(ctx context.Context, name string, data []byte) (state.Summary, error)
	SetConfig(ctx context.Context, cfg state.Config) (state.Summary, error)
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
	Clear(ctx context.Context) (state.Summary, error)
	Snapshot(ctx context.Context) state.Summary
	ListSets(ctx context.Context) []string
	UseSet(ctx context.Context, name string) (state.Summary, error)
}

type Options struct {
	OCR      OCR
	Exporter Exporter
	Resolver Resolver
	Repo     *state.Repository
	Metrics  *observability.Metrics
	// Rand drives the recent spiral-review pick; nil uses math/rand.
	Rand spiral.Rand
	// Set is the initial document set; empty means state.DefaultSet.
	Set string
}

type service struct {
	log     *logger.Logger
	ocr     OCR
	export  Exporter
	router  Resolver
	repo    *state.Repository
	metrics *observability.Metrics
	rng     spiral.Rand

	// run admits one pipeline run at a time.
	run *semaphore.Weighted

	mu  sync.RWMutex
	set string
	st  *state.AppState
}

func NewService(baseLog *logger.Logger, opts Options) (Service, error) {
	if opts.Repo == nil {
		return nil, fmt.Errorf("state repository required")
	}
	if opts.Resolver == nil {
		return nil, fmt.Errorf("generation resolver required")
	}
	set := strings.TrimSpace(opts.Set)
	if set == "" {
		set = state.DefaultSet
	}
	if err := validateSetName(set); err != nil {
		return nil, err
	}
	return &service{
		log:     baseLog.With("service", "PlannerService"),
		ocr:     opts.OCR,
		export:  opts.Exporter,
		router:  opts.Resolver,
		repo:    opts.Repo,
		metrics: opts.Metrics,
		rng:     opts.Rand,
		run:     semaphore.NewWeighted(1),
		set:     set,
		st:      state.New(),
	}, nil
}

// begin waits for the pipeline slot. The returned func releases it.
func (s *service) begin(ctx context.Context) (func(), error) {
	if err := s.run.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for pipeline: %w", err)
	}
	return func() { s.run.Release(1) }, nil
}

// current returns the active set and a private copy of its state.
func (s *service) current() (string, *state.AppState) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set, s.st.Clone()
}

// commit swaps in next and persists the named documents.
func (s *service) commit(ctx context.Context, set string, next *state.AppState, docs ...string) state.Summary {
	s.mu.Lock()
	s.set = set
	s.st = next
	sum := next.Summarize(set)
	s.mu.Unlock()

	for _, d := range docs {
		s.repo.Save(ctx, set, d, next.Document(d))
	}
	return sum
}

func (s *service) Load(ctx context.Context) state.Summary {
	ctx = ctxutil.Default(ctx)
	release, err := s.begin(ctx)
	if err != nil {
		return s.Snapshot(ctx)
	}
	defer release()
	set, _ := s.current()
	st := s.repo.Load(ctx, set)
	s.log.Info("state loaded", "set", set, "calendar", st.Calendar != nil, "template", st.Template != nil)
	return s.commit(ctx, set, st)
}

func (s *service) Snapshot(ctx context.Context) state.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.Summarize(s.set)
}

func (s *service) ListSets(ctx context.Context) []string {
	ctx = ctxutil.Default(ctx)
	names := s.repo.Sets(ctx)
	set, _ := s.current()
	for _, n := range names {
		if n == set {
			return names
		}
	}
	return append(names, set)
}

var setNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,63}$`)

func validateSetName(name string) error {
	if !setNameRe.MatchString(name) {
		return apierr.Wrap(apierr.ErrInvalidArgument, "invalid set name %q", name)
	}
	return nil
}

func (s *service) UseSet(ctx context.Context, name string) (state.Summary, error) {
	ctx = ctxutil.Default(ctx)
	name = strings.TrimSpace(name)
	if err := validateSetName(name); err != nil {
		return state.Summary{}, err
	}
	release, err := s.begin(ctx)
	if err != nil {
		return state.Summary{}, err
	}
	defer release()
	st := s.repo.Load(ctx, name)
	s.log.Info("switched set", "set", name)
	return s.commit(ctx, name, st), nil
}

// Clear drops every uploaded document and the review cursor of the active
// set. The configuration survives.
func (s *service) Clear(ctx context.Context) (state.Summary, error) {
	ctx = ctxutil.Default(ctx)
	release, err := s.begin(ctx)
	if err != nil {
		return state.Summary{}, err
	}
	defer release()
	set, st := s.current()
	next := state.New()
	next.Config = st.Config
	s.repo.Clear(ctx, set)
	s.log.Info("state cleared", "set", set)
	return s.commit(ctx, set, next, state.DocConfig), nil
}

func (s *service) SetConfig(ctx context.Context, cfg state.Config) (state.Summary, error) {
	ctx = ctxutil.Default(ctx)
	cfg = state.Config{
		Teacher:  strings.TrimSpace(cfg.Teacher),
		Class:    strings.TrimSpace(cfg.Class),
		Provider: strings.ToLower(strings.TrimSpace(cfg.Provider)),
	}
	if cfg.Provider != "" {
		if _, err := s.router.Resolve(cfg.Provider); err != nil {
			return state.Summary{}, apierr.Wrap(apierr.ErrInvalidArgument, "%v", err)
		}
	}
	release, err := s.begin(ctx)
	if err != nil {
		return state.Summary{}, err
	}
	defer release()
	set, st := s.current()
	st.Config = cfg
	s.log.Info("config updated", "set", set, "teacher", cfg.Teacher, "provider", cfg.Provider)
	return s.commit(ctx, set, st, state.DocConfig), nil
}
