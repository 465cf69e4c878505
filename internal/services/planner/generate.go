package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/calendar"
	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/docfill"
	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/match"
	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/prompts"
	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/spiral"
	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/state"
	"github.com/yungbote/lessonplan-backend/internal/observability"
	"github.com/yungbote/lessonplan-backend/internal/platform/apierr"
	"github.com/yungbote/lessonplan-backend/internal/platform/ctxutil"
)

type GenerateRequest struct {
	Day string `json:"day"`
	// Provider overrides the configured provider for this run.
	Provider string `json:"provider"`
}

type GenerateResult struct {
	ID          string              `json:"id"`
	Day         string              `json:"day"`
	FileName    string              `json:"fileName"`
	Format      string              `json:"format"`
	ContentType string              `json:"contentType"`
	Data        []byte              `json:"-"`
	Context     prompts.PlanContext `json:"context"`
	Plan        *prompts.Plan       `json:"plan"`
	// Placeholders the template used that no value filled.
	Unresolved []string `json:"unresolved,omitempty"`
	ExportURL  string   `json:"exportUrl,omitempty"`
}

// Generate runs the lesson pipeline for one day. The spiral-review cursor
// advances only when every stage succeeded.
func (s *service) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	ctx = ctxutil.Default(ctx)
	day, ok := calendar.MatchDay(req.Day)
	if !ok {
		return nil, apierr.Wrap(apierr.ErrInvalidArgument, "unknown day %q", req.Day)
	}
	release, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, span := observability.StartSpan(ctx, "planner.generate", attribute.String("day", day))
	res, err := s.generate(ctx, day, req.Provider)
	observability.EndSpan(span, err)
	return res, err
}

func (s *service) generate(ctx context.Context, day, provider string) (*GenerateResult, error) {
	set, st := s.current()
	var missing []string
	if st.Calendar == nil {
		missing = append(missing, "calendar")
	}
	if st.Template == nil {
		missing = append(missing, "template")
	}
	if len(missing) > 0 {
		return nil, apierr.Wrap(apierr.ErrMissingDocument, "upload %s before generating", strings.Join(missing, " and "))
	}

	pc, sel := s.planContext(st, day)

	if provider = strings.TrimSpace(provider); provider == "" {
		provider = st.Config.Provider
	}
	gen, err := s.router.Resolve(provider)
	if err != nil {
		return nil, apierr.Wrap(apierr.ErrInvalidArgument, "%v", err)
	}

	gctx, span := observability.StartSpan(ctx, "planner.generate_plan", attribute.String("provider", provider))
	start := time.Now()
	plan, err := gen.Generate(gctx, pc)
	s.metrics.ObserveStage("generate", err, time.Since(start))
	s.metrics.IncGeneration(provider, err)
	observability.EndSpan(span, err)
	if err != nil {
		s.log.Warn("generation failed", "set", set, "day", day, "provider", provider, "error", err)
		return nil, apierr.Upstream("generate lesson plan", err)
	}

	start = time.Now()
	filled, err := docfill.Fill(st.Template.Data, templateValues(pc, plan))
	s.metrics.ObserveStage("fill", err, time.Since(start))
	if err != nil {
		return nil, apierr.Wrap(apierr.ErrInvalidArgument, "fill template: %v", err)
	}
	s.metrics.ObserveDocument(filled.Format, len(filled.Data))

	if !sel.Empty {
		st.SpiralCursor = sel.NextCursor
		s.commit(ctx, set, st, state.DocSpiralCursor)
	}

	id := uuid.NewString()
	out := &GenerateResult{
		ID:          id,
		Day:         day,
		FileName:    fmt.Sprintf("lesson-plan-%s%s", day, filled.Extension()),
		Format:      filled.Format,
		ContentType: filled.ContentType(),
		Data:        filled.Data,
		Context:     pc,
		Plan:        plan,
		Unresolved:  filled.Unresolved,
	}
	if len(filled.Unresolved) > 0 {
		s.log.Debug("template placeholders left unfilled", "placeholders", filled.Unresolved)
	}
	out.ExportURL = s.exportDocument(ctx, set, id, out)
	s.log.Info("lesson plan generated", "set", set, "day", day, "provider", provider, "format", filled.Format, "id", id)
	return out, nil
}

// planContext resolves every heuristic input for day. Misses fall back to
// defaults and are only counted.
func (s *service) planContext(st *state.AppState, day string) (prompts.PlanContext, spiral.Selection) {
	rec, ok := st.Calendar.Day(day)
	if !ok {
		s.metrics.IncFallback("day")
		rec = calendar.DayRecord{Subject: calendar.DefaultSubject}
	}
	if strings.TrimSpace(rec.Subject) == "" {
		rec.Subject = calendar.DefaultSubject
	}

	game := match.Game(rec.Game, st.Games)
	if !game.Matched {
		s.metrics.IncFallback("game")
	}
	targets := match.Targets(st.MindMap, day, st.Calendar.Week, rec.Content)
	sel := spiral.Select(st.SpiralReview, st.SpiralCursor, s.rng)
	if sel.Empty {
		s.metrics.IncFallback("spiral_empty")
	}

	date := ""
	if st.MindMap != nil {
		date = st.MindMap.Date
	}
	return prompts.PlanContext{
		Day:             titleDay(day),
		Date:            date,
		Week:            st.Calendar.Week,
		Subject:         rec.Subject,
		Content:         rec.Content,
		Targets:         targets,
		GameName:        game.Name,
		GameDescription: game.Description,
		SpiralOldest:    sel.Oldest,
		SpiralRecent:    sel.Recent,
		Song:            st.Calendar.Song,
		Teacher:         st.Config.Teacher,
		Class:           st.Config.Class,
	}, sel
}

// templateValues merges the lesson context and the generated plan. Plan
// fields win on a name clash.
func templateValues(pc prompts.PlanContext, plan *prompts.Plan) map[string]string {
	out := pc.Values()
	for k, v := range plan.Values() {
		out[k] = v
	}
	return out
}

func titleDay(day string) string {
	if day == "" {
		return ""
	}
	return strings.ToUpper(day[:1]) + day[1:]
}

func (s *service) exportDocument(ctx context.Context, set, id string, res *GenerateResult) string {
	if s.export == nil {
		return ""
	}
	key := fmt.Sprintf("%s/%s/%s-%s%s", set, time.Now().UTC().Format("2006-01-02"), res.Day, id, "."+res.Format)
	ectx, span := observability.StartSpan(ctx, "planner.export", attribute.String("key", key))
	start := time.Now()
	url, err := s.export.Upload(ectx, key, res.Data, res.ContentType)
	s.metrics.ObserveStage("export", err, time.Since(start))
	s.metrics.IncExport(err)
	observability.EndSpan(span, err)
	if err != nil {
		s.log.Warn("document export failed", "key", key, "error", err)
		return ""
	}
	return url
}
