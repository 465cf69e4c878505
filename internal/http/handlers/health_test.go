package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestReadyReflectsProbe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var probeErr error
	h := NewHealthHandler(func(ctx context.Context) error { return probeErr })
	r := gin.New()
	r.GET("/healthz", h.HealthCheck)
	r.GET("/readyz", h.Ready)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ready: want=200 got=%d", rec.Code)
	}

	probeErr = errors.New("redis: connection refused")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("not ready: want=503 got=%d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz stays up: want=200 got=%d", rec.Code)
	}
}
