package observability

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/lessonplan-backend/internal/platform/envutil"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

// Metrics is the process-wide Prometheus text exposition. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	apiRequests   *CounterVec
	apiLatency    *HistogramVec
	apiInflight   *Gauge
	stageLatency  *HistogramVec
	generations   *CounterVec
	fallbacks     *CounterVec
	exports       *CounterVec
	documentsSize *HistogramVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool { return envutil.Bool("METRICS_ENABLED", false) }

func Current() *Metrics { return instance }

// Init builds the registry once when METRICS_ENABLED is set.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics()
		log.Info("metrics enabled")
	})
	return instance
}

func newMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("lp_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"lp_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		),
		apiInflight: NewGauge("lp_api_inflight_requests", "In-flight API requests."),
		stageLatency: NewHistogramVec(
			"lp_pipeline_stage_duration_seconds",
			"Pipeline stage latency by stage/status.",
			[]string{"stage", "status"},
			[]float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		),
		generations: NewCounterVec("lp_generations_total", "Lesson plan generations by provider/status.", []string{"provider", "status"}),
		fallbacks:   NewCounterVec("lp_heuristic_fallbacks_total", "Heuristic misses that fell back to defaults, by kind.", []string{"kind"}),
		exports:     NewCounterVec("lp_document_exports_total", "Filled document uploads by status.", []string{"status"}),
		documentsSize: NewHistogramVec(
			"lp_filled_document_bytes",
			"Filled document size by format.",
			[]string{"format"},
			[]float64{1 << 10, 8 << 10, 64 << 10, 256 << 10, 1 << 20, 4 << 20},
		),
	}
}

// StartServer serves the exposition on addr until ctx is done.
func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	addr = strings.TrimSpace(addr)
	if m == nil || addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", "error", err, "addr", addr)
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

type promWriter interface {
	WritePrometheus(w io.Writer) error
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight, m.stageLatency,
		m.generations, m.fallbacks, m.exports, m.documentsSize,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	s := strconv.Itoa(status)
	m.apiRequests.Inc(method, route, s)
	m.apiLatency.Observe(dur.Seconds(), method, route, s)
}

func (m *Metrics) APIInflightInc() {
	if m != nil {
		m.apiInflight.Add(1)
	}
}

func (m *Metrics) APIInflightDec() {
	if m != nil {
		m.apiInflight.Add(-1)
	}
}

// ObserveStage records one pipeline stage ("ocr", "generate", "fill", ...).
func (m *Metrics) ObserveStage(stage string, err error, dur time.Duration) {
	if m == nil {
		return
	}
	m.stageLatency.Observe(dur.Seconds(), stage, statusOf(err))
}

func (m *Metrics) IncGeneration(provider string, err error) {
	if m == nil {
		return
	}
	if provider == "" {
		provider = "default"
	}
	m.generations.Inc(provider, statusOf(err))
}

// IncFallback counts a heuristic miss: "game", "targets", "day",
// "calendar_header" or "spiral_empty".
func (m *Metrics) IncFallback(kind string) {
	if m == nil {
		return
	}
	m.fallbacks.Inc(kind)
}

func (m *Metrics) IncExport(err error) {
	if m == nil {
		return
	}
	m.exports.Inc(statusOf(err))
}

func (m *Metrics) ObserveDocument(format string, size int) {
	if m == nil {
		return
	}
	m.documentsSize.Observe(float64(size), format)
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
