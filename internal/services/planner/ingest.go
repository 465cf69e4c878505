package planner

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/calendar"
	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/docfill"
	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/lists"
	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/ocr"
	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/state"
	"github.com/yungbote/lessonplan-backend/internal/observability"
	"github.com/yungbote/lessonplan-backend/internal/platform/apierr"
	"github.com/yungbote/lessonplan-backend/internal/platform/ctxutil"
)

func (s *service) IngestCalendar(ctx context.Context, out ocr.Output) (*calendar.Result, error) {
	ctx = ctxutil.Default(ctx)
	if out == nil {
		return nil, apierr.Wrap(apierr.ErrInvalidArgument, "calendar input required")
	}
	release, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return s.ingestCalendar(ctx, out), nil
}

func (s *service) IngestCalendarImage(ctx context.Context, data []byte, mimeType string) (*calendar.Result, error) {
	ctx = ctxutil.Default(ctx)
	release, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	out, err := s.recognize(ctx, data, mimeType)
	if err != nil {
		return nil, err
	}
	return s.ingestCalendar(ctx, out), nil
}

func (s *service) ingestCalendar(ctx context.Context, out ocr.Output) *calendar.Result {
	_, span := observability.StartSpan(ctx, "planner.parse_calendar", attribute.String("ocr.kind", ocr.Kind(out)))
	start := time.Now()
	res := calendar.Parse(out)
	s.metrics.ObserveStage("parse_calendar", nil, time.Since(start))
	span.SetAttributes(attribute.Int("calendar.days", len(res.Data)))
	observability.EndSpan(span, nil)

	if len(res.Data) == 0 {
		s.metrics.IncFallback("calendar_empty")
	}
	set, st := s.current()
	st.Calendar = res
	s.commit(ctx, set, st, state.DocCalendar)
	s.log.Info("calendar ingested", "set", set, "kind", ocr.Kind(out), "days", res.Days(), "week", res.Week)
	return res
}

// recognize runs OCR. The caller holds the pipeline slot.
func (s *service) recognize(ctx context.Context, data []byte, mimeType string) (ocr.Output, error) {
	if len(data) == 0 {
		return nil, apierr.Wrap(apierr.ErrInvalidArgument, "empty upload")
	}
	if s.ocr == nil {
		return nil, apierr.Wrap(apierr.ErrInvalidArgument, "image uploads are disabled: no OCR service configured")
	}
	ctx, span := observability.StartSpan(ctx, "planner.ocr",
		attribute.String("mime_type", mimeType), attribute.Int("bytes", len(data)))
	start := time.Now()
	out, err := s.ocr.Recognize(ctx, data, mimeType)
	s.metrics.ObserveStage("ocr", err, time.Since(start))
	observability.EndSpan(span, err)
	if err != nil {
		s.log.Warn("ocr failed", "mime_type", mimeType, "error", err)
		return nil, apierr.Upstream("ocr", err)
	}
	return out, nil
}

func (s *service) IngestList(ctx context.Context, kind ListKind, text string) (state.Summary, error) {
	ctx = ctxutil.Default(ctx)
	if strings.TrimSpace(text) == "" {
		return state.Summary{}, apierr.Wrap(apierr.ErrInvalidArgument, "%s text is empty", kind)
	}
	kind, err := ParseListKind(string(kind))
	if err != nil {
		return state.Summary{}, err
	}
	release, err := s.begin(ctx)
	if err != nil {
		return state.Summary{}, err
	}
	defer release()
	return s.ingestList(ctx, kind, text), nil
}

func (s *service) IngestListImage(ctx context.Context, kind ListKind, data []byte, mimeType string) (state.Summary, error) {
	ctx = ctxutil.Default(ctx)
	kind, err := ParseListKind(string(kind))
	if err != nil {
		return state.Summary{}, err
	}
	release, err := s.begin(ctx)
	if err != nil {
		return state.Summary{}, err
	}
	defer release()
	out, err := s.recognize(ctx, data, mimeType)
	if err != nil {
		return state.Summary{}, err
	}
	return s.ingestList(ctx, kind, calendar.Flatten(out)), nil
}

func (s *service) ingestList(ctx context.Context, kind ListKind, text string) state.Summary {
	set, st := s.current()
	var doc string
	switch kind {
	case KindMindMap:
		st.MindMap = lists.ParseMindMap(text)
		doc = state.DocMindMap
		s.log.Info("mindmap ingested", "set", set, "entries", len(st.MindMap.Data), "date", st.MindMap.Date)
	case KindGames:
		st.Games = lists.ParseGames(text)
		doc = state.DocGames
		s.log.Info("games ingested", "set", set, "games", st.Games.Len())
	case KindSpiralReview:
		st.SpiralReview = lists.ParseSpiralReview(text)
		doc = state.DocSpiralReview
		s.log.Info("spiral review ingested", "set", set, "items", len(st.SpiralReview))
	}
	return s.commit(ctx, set, st, doc)
}

func (s *service) SetTemplate(ctx context.Context, name string, data []byte) (state.Summary, error) {
	ctx = ctxutil.Default(ctx)
	format, err := docfill.Validate(data)
	if err != nil {
		return state.Summary{}, apierr.Wrap(apierr.ErrInvalidArgument, "%v", err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "template." + format
	}
	release, err := s.begin(ctx)
	if err != nil {
		return state.Summary{}, err
	}
	defer release()
	set, st := s.current()
	st.Template = &state.Template{Name: name, Format: format, Data: append([]byte(nil), data...)}
	s.log.Info("template stored", "set", set, "name", name, "format", format, "bytes", len(data))
	return s.commit(ctx, set, st, state.DocTemplate), nil
}
