package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/calendar"
	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/ocr"
	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/state"
	"github.com/yungbote/lessonplan-backend/internal/platform/apierr"
	"github.com/yungbote/lessonplan-backend/internal/services/planner"
)

type fakePlanner struct {
	calendarOut ocr.Output
	imageMime   string
	listKind    planner.ListKind
	listText    string
	listImage   bool
	template    string
	cfg         state.Config
	genReq      planner.GenerateRequest
	genRes      *planner.GenerateResult
	err         error
	set         string
}

func (f *fakePlanner) Load(ctx context.Context) state.Summary { return f.Snapshot(ctx) }

func (f *fakePlanner) IngestCalendar(ctx context.Context, out ocr.Output) (*calendar.Result, error) {
	f.calendarOut = out
	if f.err != nil {
		return nil, f.err
	}
	return calendar.Parse(out), nil
}

func (f *fakePlanner) IngestCalendarImage(ctx context.Context, data []byte, mimeType string) (*calendar.Result, error) {
	f.imageMime = mimeType
	if f.err != nil {
		return nil, f.err
	}
	return calendar.NewResult(), nil
}

func (f *fakePlanner) IngestList(ctx context.Context, kind planner.ListKind, text string) (state.Summary, error) {
	f.listKind, f.listText = kind, text
	return f.Snapshot(ctx), f.err
}

func (f *fakePlanner) IngestListImage(ctx context.Context, kind planner.ListKind, data []byte, mimeType string) (state.Summary, error) {
	f.listKind, f.listImage = kind, true
	return f.Snapshot(ctx), f.err
}

func (f *fakePlanner) SetTemplate(ctx context.Context, name string, data []byte) (state.Summary, error) {
	f.template = name
	return f.Snapshot(ctx), f.err
}

func (f *fakePlanner) SetConfig(ctx context.Context, cfg state.Config) (state.Summary, error) {
	f.cfg = cfg
	return f.Snapshot(ctx), f.err
}

func (f *fakePlanner) Generate(ctx context.Context, req planner.GenerateRequest) (*planner.GenerateResult, error) {
	f.genReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.genRes, nil
}

func (f *fakePlanner) Clear(ctx context.Context) (state.Summary, error) { return f.Snapshot(ctx), f.err }

func (f *fakePlanner) Snapshot(ctx context.Context) state.Summary {
	set := f.set
	if set == "" {
		set = state.DefaultSet
	}
	return state.Summary{Set: set, Config: f.cfg}
}

func (f *fakePlanner) ListSets(ctx context.Context) []string { return []string{"default", "week4"} }

func (f *fakePlanner) UseSet(ctx context.Context, name string) (state.Summary, error) {
	f.set = name
	return f.Snapshot(ctx), f.err
}

func newEngine(f *fakePlanner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewPlannerHandler(f, 64)
	r := gin.New()
	r.POST("/api/calendar", h.IngestCalendar)
	r.POST("/api/lists/:kind", h.IngestList)
	r.POST("/api/template", h.UploadTemplate)
	r.PUT("/api/config", h.SetConfig)
	r.POST("/api/generate", h.Generate)
	r.GET("/api/state", h.GetState)
	r.DELETE("/api/state", h.ClearState)
	r.GET("/api/sets", h.ListSets)
	r.PUT("/api/sets/:name", h.UseSet)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func doFile(t *testing.T, r *gin.Engine, path, name, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{`form-data; name="file"; filename="` + name + `"`}
	if contentType != "" {
		hdr["Content-Type"] = []string{contentType}
	}
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	_, _ = part.Write(data)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope: %v body=%s", err, rec.Body.String())
	}
	return env.Error.Code
}

func TestCalendarJSONVariants(t *testing.T) {
	f := &fakePlanner{}
	r := newEngine(f)

	rec := doJSON(r, http.MethodPost, "/api/calendar", `{"text":"Monday Science\nbee hunt"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("text status: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	if _, ok := f.calendarOut.(ocr.PlainText); !ok {
		t.Fatalf("text variant: want=PlainText got=%T", f.calendarOut)
	}

	rec = doJSON(r, http.MethodPost, "/api/calendar", `{"words":[{"text":"Monday","bbox":{"x0":0,"y0":0,"x1":50,"y1":10}}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("words status: want=200 got=%d", rec.Code)
	}
	if words, ok := f.calendarOut.(ocr.Positioned); !ok || len(words) != 1 {
		t.Fatalf("words variant: want=Positioned(1) got=%T %v", f.calendarOut, f.calendarOut)
	}

	rec = doJSON(r, http.MethodPost, "/api/calendar", `{}`)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_argument" {
		t.Fatalf("empty body: want=400 invalid_argument got=%d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(r, http.MethodPost, "/api/calendar", `{not json`)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_request" {
		t.Fatalf("bad json: want=400 invalid_request got=%d %s", rec.Code, rec.Body.String())
	}
}

func TestCalendarUpload(t *testing.T) {
	f := &fakePlanner{}
	r := newEngine(f)

	rec := doFile(t, r, "/api/calendar", "week.png", "image/png", []byte("\x89PNG\r\n\x1a\nfake"))
	if rec.Code != http.StatusOK {
		t.Fatalf("upload status: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	if f.imageMime != "image/png" {
		t.Fatalf("mime: want=image/png got=%q", f.imageMime)
	}

	rec = doFile(t, r, "/api/calendar", "huge.png", "image/png", bytes.Repeat([]byte("x"), 65))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("too large: want=413 got=%d", rec.Code)
	}

	f.err = apierr.Upstream("ocr", errors.New("vision down"))
	rec = doFile(t, r, "/api/calendar", "week.png", "image/png", []byte("img"))
	if rec.Code != http.StatusBadGateway || errorCode(t, rec) != "upstream_failed" {
		t.Fatalf("ocr failure: want=502 upstream_failed got=%d %s", rec.Code, rec.Body.String())
	}
}

func TestListRoutes(t *testing.T) {
	f := &fakePlanner{}
	r := newEngine(f)

	rec := doJSON(r, http.MethodPost, "/api/lists/game", `{"text":"Bee Count\nFrog Jump"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("games status: want=200 got=%d", rec.Code)
	}
	if f.listKind != planner.KindGames || f.listText != "Bee Count\nFrog Jump" {
		t.Fatalf("games call: want=games got=%s %q", f.listKind, f.listText)
	}

	rec = doFile(t, r, "/api/lists/spiral-review", "review.txt", "text/plain", []byte("oldest sentence"))
	if rec.Code != http.StatusOK || f.listKind != planner.KindSpiralReview || f.listImage {
		t.Fatalf("text upload: want=200 spiral-review text got=%d %s image=%v", rec.Code, f.listKind, f.listImage)
	}

	rec = doFile(t, r, "/api/lists/mindmap", "map.jpg", "image/jpeg", []byte("jpeg"))
	if rec.Code != http.StatusOK || !f.listImage {
		t.Fatalf("image upload: want=200 image got=%d image=%v", rec.Code, f.listImage)
	}

	rec = doJSON(r, http.MethodPost, "/api/lists/recipes", `{"text":"x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown kind: want=400 got=%d", rec.Code)
	}
}

func TestTemplateRequiresFile(t *testing.T) {
	f := &fakePlanner{}
	r := newEngine(f)

	rec := doJSON(r, http.MethodPost, "/api/template", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("no file: want=400 got=%d", rec.Code)
	}
	rec = doFile(t, r, "/api/template", "plan.txt", "text/plain", []byte("{{day}}"))
	if rec.Code != http.StatusOK || f.template != "plan.txt" {
		t.Fatalf("template: want=200 plan.txt got=%d %q", rec.Code, f.template)
	}
}

func TestGenerateDownload(t *testing.T) {
	f := &fakePlanner{genRes: &planner.GenerateResult{
		ID:          "id-1",
		Day:         "monday",
		FileName:    "lesson-plan-monday.txt",
		Format:      "txt",
		ContentType: "text/plain; charset=utf-8",
		Data:        []byte("Monday plan"),
		ExportURL:   "gs://plans/default/monday.txt",
		Unresolved:  []string{"room"},
	}}
	r := newEngine(f)

	rec := doJSON(r, http.MethodPost, "/api/generate", `{"day":"Mon","provider":"gemini"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	if f.genReq.Day != "Mon" || f.genReq.Provider != "gemini" {
		t.Fatalf("request: want=Mon/gemini got=%+v", f.genReq)
	}
	if got := rec.Body.String(); got != "Monday plan" {
		t.Fatalf("body: want=%q got=%q", "Monday plan", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="lesson-plan-monday.txt"` {
		t.Fatalf("disposition: got=%q", got)
	}
	if got := rec.Header().Get("X-Export-Url"); got != "gs://plans/default/monday.txt" {
		t.Fatalf("export url: got=%q", got)
	}
	if got := rec.Header().Get("X-Unresolved-Placeholders"); got != "room" {
		t.Fatalf("unresolved: want=room got=%q", got)
	}

	rec = doJSON(r, http.MethodPost, "/api/generate?format=json", `{"day":"Mon"}`)
	var meta map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &meta); err != nil {
		t.Fatalf("json meta: %v", err)
	}
	if meta["fileName"] != "lesson-plan-monday.txt" {
		t.Fatalf("json meta fileName: got=%v", meta["fileName"])
	}
}

func TestGenerateErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"missing", apierr.Wrap(apierr.ErrMissingDocument, "upload calendar"), http.StatusUnprocessableEntity, "missing_document"},
		{"input", apierr.Wrap(apierr.ErrInvalidArgument, "unknown day"), http.StatusBadRequest, "invalid_argument"},
		{"upstream", apierr.Upstream("generate lesson plan", errors.New("quota")), http.StatusBadGateway, "upstream_failed"},
		{"busy", context.DeadlineExceeded, http.StatusServiceUnavailable, "busy"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newEngine(&fakePlanner{err: tc.err})
			rec := doJSON(r, http.MethodPost, "/api/generate", `{"day":"Mon"}`)
			if rec.Code != tc.status {
				t.Fatalf("status: want=%d got=%d", tc.status, rec.Code)
			}
			if got := errorCode(t, rec); got != tc.code {
				t.Fatalf("code: want=%s got=%s", tc.code, got)
			}
		})
	}
}

func TestStateAndSets(t *testing.T) {
	f := &fakePlanner{}
	r := newEngine(f)

	rec := doJSON(r, http.MethodPut, "/api/config", `{"teacher":"Ms. Rivera","class":"K2","provider":"openai"}`)
	if rec.Code != http.StatusOK || f.cfg.Teacher != "Ms. Rivera" || f.cfg.Provider != "openai" {
		t.Fatalf("config: want=200 Ms. Rivera/openai got=%d %+v", rec.Code, f.cfg)
	}

	rec = doJSON(r, http.MethodPut, "/api/sets/week4", ``)
	if rec.Code != http.StatusOK || f.set != "week4" {
		t.Fatalf("use set: want=200 week4 got=%d %q", rec.Code, f.set)
	}

	rec = doJSON(r, http.MethodGet, "/api/sets", ``)
	var sets struct {
		Sets   []string `json:"sets"`
		Active string   `json:"active"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &sets); err != nil {
		t.Fatalf("sets decode: %v", err)
	}
	if strings.Join(sets.Sets, ",") != "default,week4" || sets.Active != "week4" {
		t.Fatalf("sets: want=default,week4 active=week4 got=%v active=%s", sets.Sets, sets.Active)
	}

	rec = doJSON(r, http.MethodGet, "/api/state", ``)
	var st struct {
		State state.Summary `json:"state"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("state decode: %v", err)
	}
	if st.State.Set != "week4" || st.State.Config.Class != "K2" {
		t.Fatalf("state: want=week4/K2 got=%+v", st.State)
	}

	rec = doJSON(r, http.MethodDelete, "/api/state", ``)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear: want=200 got=%d", rec.Code)
	}
}
