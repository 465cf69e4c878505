package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVs(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"OPENAI_API_KEY", "sk-123",
		"teacher", "Ms. Rivera",
		"day", "monday",
		"dangling",
	})
	if len(out) != 7 {
		t.Fatalf("len: want=7 got=%d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("api key: got=%v", out[1])
	}
	if s, _ := out[3].(string); !strings.HasPrefix(s, "hash:") || len(s) != len("hash:")+12 {
		t.Fatalf("teacher: got=%v", out[3])
	}
	if out[5] != "monday" {
		t.Fatalf("day: got=%v", out[5])
	}
	if out[6] != "dangling" {
		t.Fatalf("dangling key: got=%v", out[6])
	}
}

func TestSanitizeNestedMap(t *testing.T) {
	v := sanitizeValue("config", map[string]string{"Provider": "openai", "access_token": "x"})
	m := v.(map[string]interface{})
	if m["Provider"] != "openai" || m["access_token"] != "[REDACTED]" {
		t.Fatalf("got=%v", m)
	}
}

func TestNewModes(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	for _, mode := range []string{"dev", "prod"} {
		l, err := New(mode)
		if err != nil {
			t.Fatalf("New(%s): %v", mode, err)
		}
		if l.SugaredLogger.Desugar().Core().Enabled(-1) {
			t.Fatalf("%s: debug must be disabled at warn level", mode)
		}
		l.With("service", "test").Info("hello", "k", "v")
	}
}
