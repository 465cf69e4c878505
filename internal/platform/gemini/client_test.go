package gemini

import (
	"context"
	"os"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

func textResponse(s string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: s}}},
	}}}
}

func TestGenerateJSONSendsJSONMode(t *testing.T) {
	t.Setenv("GEMINI_MODEL", "gemini-test")
	var gotModel string
	var gotCfg *genai.GenerateContentConfig
	c := newClient(logger.Nop(), func(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		gotModel, gotCfg = model, cfg
		if contents[0].Parts[0].Text != "user prompt" {
			t.Errorf("user prompt: got=%q", contents[0].Parts[0].Text)
		}
		return textResponse(` {"game":"Bee Hunt"} `), nil
	})

	out, err := c.GenerateJSON(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if string(out) != `{"game":"Bee Hunt"}` {
		t.Fatalf("out: got=%s", out)
	}
	if gotModel != "gemini-test" {
		t.Fatalf("model: got=%q", gotModel)
	}
	if gotCfg.ResponseMIMEType != "application/json" {
		t.Fatalf("mime: got=%q", gotCfg.ResponseMIMEType)
	}
	if !strings.HasSuffix(gotCfg.SystemInstruction.Parts[0].Text, "system prompt") {
		t.Fatalf("system instruction: got=%q", gotCfg.SystemInstruction.Parts[0].Text)
	}
}

func TestGenerateJSONStopsOnClientErrors(t *testing.T) {
	calls := 0
	c := newClient(logger.Nop(), func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		calls++
		return nil, genai.APIError{Code: 400, Message: "bad request"}
	})
	if _, err := c.GenerateJSON(context.Background(), "s", "u"); err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("400 must not be retried: calls=%d", calls)
	}
}

func TestGenerateJSONEmpty(t *testing.T) {
	c := newClient(logger.Nop(), func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return textResponse("  "), nil
	})
	if _, err := c.GenerateJSON(context.Background(), "s", "u"); err == nil || !strings.Contains(err.Error(), "empty") {
		t.Fatalf("want empty response error got=%v", err)
	}
}

func TestGenerateJSONLive(t *testing.T) {
	if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GCP_PROJECT_ID") == "" {
		t.Skip("GEMINI_API_KEY / GCP_PROJECT_ID not set, skipping integration test")
	}
	ctx := context.Background()
	c, err := NewClient(ctx, logger.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	out, err := c.GenerateJSON(ctx, "Return a JSON object with key ok set to true.", "ping")
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	t.Logf("response: %s", out)
}
