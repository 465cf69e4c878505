package state

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/lists"
	"github.com/yungbote/lessonplan-backend/internal/platform/kvstore"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

// Repository maps AppState documents onto a key-value store. Reads that
// fail or find garbage yield empty documents; writes that fail are logged.
// Neither is reported to the caller.
type Repository struct {
	log   *logger.Logger
	store kvstore.Store
}

func NewRepository(log *logger.Logger, store kvstore.Store) *Repository {
	return &Repository{log: log.With("service", "StateRepository"), store: store}
}

// Load reads every document of set concurrently.
func (r *Repository) Load(ctx context.Context, set string) *AppState {
	st := New()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		raw, ok := r.get(gctx, set, DocCalendar)
		if !ok {
			return nil
		}
		doc, err := DecodeCalendar(raw)
		if err != nil {
			r.log.Warn("stored calendar unreadable", "set", set, "error", err)
			return nil
		}
		if doc.Current == nil {
			r.log.Info("upgrading legacy calendar", "set", set)
		}
		st.Calendar = doc.Upgrade()
		return nil
	})
	g.Go(func() error {
		raw, ok := r.get(gctx, set, DocMindMap)
		if !ok {
			return nil
		}
		doc, err := DecodeMindMap(raw)
		if err != nil {
			r.log.Warn("stored mindmap unreadable", "set", set, "error", err)
			return nil
		}
		st.MindMap = doc.Upgrade()
		return nil
	})
	g.Go(func() error {
		var cat lists.Catalog
		if r.decode(gctx, set, DocGames, &cat) {
			st.Games = &cat
		}
		return nil
	})
	g.Go(func() error {
		var items []string
		if r.decode(gctx, set, DocSpiralReview, &items) {
			st.SpiralReview = items
		}
		return nil
	})
	g.Go(func() error {
		raw, ok := r.get(gctx, set, DocSpiralCursor)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(string(raw)))
		if err != nil || n < 0 {
			r.log.Warn("stored spiral cursor unreadable", "set", set, "value", string(raw))
			return nil
		}
		st.SpiralCursor = n
		return nil
	})
	g.Go(func() error {
		var tmpl Template
		if r.decode(gctx, set, DocTemplate, &tmpl) && len(tmpl.Data) > 0 {
			st.Template = &tmpl
		}
		return nil
	})
	g.Go(func() error {
		var cfg Config
		if r.decode(gctx, set, DocConfig, &cfg) {
			st.Config = cfg
		}
		return nil
	})

	_ = g.Wait()
	return st
}

func (r *Repository) get(ctx context.Context, set, doc string) ([]byte, bool) {
	raw, ok, err := r.store.Get(ctx, kvstore.Key(set, doc))
	if err != nil {
		r.log.Warn("load document failed", "set", set, "doc", doc, "error", err)
		return nil, false
	}
	return raw, ok
}

func (r *Repository) decode(ctx context.Context, set, doc string, v any) bool {
	raw, ok := r.get(ctx, set, doc)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		r.log.Warn("stored document unreadable", "set", set, "doc", doc, "error", err)
		return false
	}
	return true
}

// Save writes one document. A nil value deletes it.
func (r *Repository) Save(ctx context.Context, set, doc string, v any) {
	key := kvstore.Key(set, doc)
	if v == nil {
		if err := r.store.Delete(ctx, key); err != nil {
			r.log.Warn("delete document failed", "set", set, "doc", doc, "error", err)
		}
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		r.log.Warn("encode document failed", "set", set, "doc", doc, "error", err)
		return
	}
	if err := r.store.Set(ctx, key, raw); err != nil {
		r.log.Warn("save document failed", "set", set, "doc", doc, "error", err)
	}
}

// Clear deletes every document of set.
func (r *Repository) Clear(ctx context.Context, set string) {
	keys := make([]string, len(Docs))
	for i, d := range Docs {
		keys[i] = kvstore.Key(set, d)
	}
	if err := r.store.Delete(ctx, keys...); err != nil {
		r.log.Warn("clear set failed", "set", set, "error", err)
	}
}

// Sets lists stored set names. Failures yield none.
func (r *Repository) Sets(ctx context.Context) []string {
	names, err := r.store.ListSetNames(ctx)
	if err != nil {
		r.log.Warn("list sets failed", "error", err)
		return nil
	}
	return names
}

// Document returns the value stored under doc, or nil when absent.
func (s *AppState) Document(doc string) any {
	switch doc {
	case DocCalendar:
		if s.Calendar != nil {
			return s.Calendar
		}
	case DocMindMap:
		if s.MindMap != nil {
			return s.MindMap
		}
	case DocGames:
		if s.Games != nil {
			return s.Games
		}
	case DocSpiralReview:
		if s.SpiralReview != nil {
			return s.SpiralReview
		}
	case DocSpiralCursor:
		return s.SpiralCursor
	case DocTemplate:
		if s.Template != nil {
			return s.Template
		}
	case DocConfig:
		return s.Config
	}
	return nil
}
