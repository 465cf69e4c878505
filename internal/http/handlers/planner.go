package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lessonplan-backend/internal/http/response"
	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/ocr"
	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/state"
	"github.com/yungbote/lessonplan-backend/internal/platform/apierr"
	"github.com/yungbote/lessonplan-backend/internal/services/planner"
)

type PlannerHandler struct {
	planner   planner.Service
	maxUpload int64
}

func NewPlannerHandler(svc planner.Service, maxUpload int64) *PlannerHandler {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUpload
	}
	return &PlannerHandler{planner: svc, maxUpload: maxUpload}
}

type calendarBody struct {
	Text  string          `json:"text"`
	Words []ocr.WordToken `json:"words"`
}

// POST /api/calendar
func (h *PlannerHandler) IngestCalendar(c *gin.Context) {
	if isMultipart(c) {
		up, err := readUpload(c, h.maxUpload)
		if err != nil {
			response.RespondErr(c, err)
			return
		}
		res, err := h.planner.IngestCalendarImage(c.Request.Context(), up.Data, up.MimeType)
		if err != nil {
			response.RespondErr(c, err)
			return
		}
		response.RespondOK(c, gin.H{"calendar": res, "state": h.planner.Snapshot(c.Request.Context())})
		return
	}

	var body calendarBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	var out ocr.Output
	switch {
	case len(body.Words) > 0:
		out = ocr.Positioned(body.Words)
	case strings.TrimSpace(body.Text) != "":
		out = ocr.PlainText(body.Text)
	default:
		response.RespondErr(c, apierr.Wrap(apierr.ErrInvalidArgument, "calendar needs text or words"))
		return
	}
	res, err := h.planner.IngestCalendar(c.Request.Context(), out)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"calendar": res, "state": h.planner.Snapshot(c.Request.Context())})
}

type listBody struct {
	Text string `json:"text"`
}

// POST /api/lists/:kind
func (h *PlannerHandler) IngestList(c *gin.Context) {
	kind, err := planner.ParseListKind(c.Param("kind"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}

	var sum state.Summary
	if isMultipart(c) {
		up, uerr := readUpload(c, h.maxUpload)
		if uerr != nil {
			response.RespondErr(c, uerr)
			return
		}
		if strings.HasPrefix(up.MimeType, "text/") {
			sum, err = h.planner.IngestList(c.Request.Context(), kind, string(up.Data))
		} else {
			sum, err = h.planner.IngestListImage(c.Request.Context(), kind, up.Data, up.MimeType)
		}
	} else {
		var body listBody
		if berr := c.ShouldBindJSON(&body); berr != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", berr)
			return
		}
		sum, err = h.planner.IngestList(c.Request.Context(), kind, body.Text)
	}
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"state": sum})
}

// POST /api/template
func (h *PlannerHandler) UploadTemplate(c *gin.Context) {
	up, err := readUpload(c, h.maxUpload)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	sum, err := h.planner.SetTemplate(c.Request.Context(), up.Name, up.Data)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"state": sum})
}

// PUT /api/config
func (h *PlannerHandler) SetConfig(c *gin.Context) {
	var cfg state.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	sum, err := h.planner.SetConfig(c.Request.Context(), cfg)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"state": sum})
}

// POST /api/generate
//
// Responds with the filled document as an attachment, or with the run
// metadata as JSON when ?format=json.
func (h *PlannerHandler) Generate(c *gin.Context) {
	var req planner.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.planner.Generate(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if strings.EqualFold(c.Query("format"), "json") {
		response.RespondOK(c, res)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.FileName))
	c.Header("X-Lesson-Plan-Id", res.ID)
	if res.ExportURL != "" {
		c.Header("X-Export-Url", res.ExportURL)
	}
	if len(res.Unresolved) > 0 {
		c.Header("X-Unresolved-Placeholders", strings.Join(res.Unresolved, ","))
	}
	c.Data(http.StatusOK, res.ContentType, res.Data)
}

// GET /api/state
func (h *PlannerHandler) GetState(c *gin.Context) {
	response.RespondOK(c, gin.H{"state": h.planner.Snapshot(c.Request.Context())})
}

// DELETE /api/state
func (h *PlannerHandler) ClearState(c *gin.Context) {
	sum, err := h.planner.Clear(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"state": sum})
}

// GET /api/sets
func (h *PlannerHandler) ListSets(c *gin.Context) {
	sum := h.planner.Snapshot(c.Request.Context())
	response.RespondOK(c, gin.H{"sets": h.planner.ListSets(c.Request.Context()), "active": sum.Set})
}

// PUT /api/sets/:name
func (h *PlannerHandler) UseSet(c *gin.Context) {
	sum, err := h.planner.UseSet(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"state": sum})
}
