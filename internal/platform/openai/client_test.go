package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", srv.URL)
	t.Setenv("OPENAI_MAX_RETRIES", "2")
	c, err := NewClient(logger.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func outputText(text string) string {
	b, _ := json.Marshal(map[string]any{
		"output": []any{map[string]any{
			"type": "message",
			"role": "assistant",
			"content": []any{map[string]any{
				"type": "output_text",
				"text": text,
			}},
		}},
	})
	return string(b)
}

func TestNewClientRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewClient(logger.Nop()); err == nil {
		t.Fatalf("expected missing key error")
	}
}

func TestGenerateJSONSendsStrictSchema(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" {
			t.Errorf("path: got=%s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("auth header: got=%q", r.Header.Get("Authorization"))
		}
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &got)
		_, _ = io.WriteString(w, outputText(`{"game":"Bee Hunt"}`))
	})

	obj, err := c.GenerateJSON(context.Background(), "sys", "user", "lesson_plan", map[string]any{"type": "object"})
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if obj["game"] != "Bee Hunt" {
		t.Fatalf("obj: got=%v", obj)
	}
	format := got["text"].(map[string]any)["format"].(map[string]any)
	if format["type"] != "json_schema" || format["strict"] != true || format["name"] != "lesson_plan" {
		t.Fatalf("format: got=%v", format)
	}
}

func TestGenerateJSONRetriesServerErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, outputText(`{}`))
	})
	if _, err := c.GenerateJSON(context.Background(), "s", "u", "x", map[string]any{}); err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls: want=2 got=%d", calls)
	}
}

func TestGenerateJSONDropsRejectedTemperature(t *testing.T) {
	var sawTemp []bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &body)
		_, has := body["temperature"]
		sawTemp = append(sawTemp, has)
		if has {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"message":"Unsupported parameter: 'temperature'"}}`)
			return
		}
		_, _ = io.WriteString(w, outputText(`{"ok":true}`))
	})
	obj, err := c.GenerateJSON(context.Background(), "s", "u", "x", map[string]any{})
	if err != nil || obj["ok"] != true {
		t.Fatalf("GenerateJSON: obj=%v err=%v", obj, err)
	}
	if len(sawTemp) != 2 || !sawTemp[0] || sawTemp[1] {
		t.Fatalf("temperature attempts: got=%v", sawTemp)
	}
	if _, err := c.GenerateJSON(context.Background(), "s", "u", "x", map[string]any{}); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if len(sawTemp) != 3 || sawTemp[2] {
		t.Fatalf("learned no-temp model must skip temperature: got=%v", sawTemp)
	}
}

func TestGenerateJSONErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, outputText("not json"))
	})
	_, err := c.GenerateJSON(context.Background(), "s", "u", "x", map[string]any{})
	if err == nil || !strings.Contains(err.Error(), "failed to parse model JSON") {
		t.Fatalf("want parse error got=%v", err)
	}
	if _, err := c.GenerateJSON(context.Background(), "s", "u", "", map[string]any{}); err == nil {
		t.Fatalf("want schemaName error")
	}
}
