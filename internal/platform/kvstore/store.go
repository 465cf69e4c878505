// Package kvstore persists lesson-plan documents as JSON values under
// "<set>:<document>" keys.
package kvstore

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

const Sep = ":"

type Store interface {
	// Get returns ok=false when the key does not exist.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	// ListSetNames returns the distinct set prefixes of stored keys, sorted.
	ListSetNames(ctx context.Context) ([]string, error)
	Close() error
}

// Key joins a set name and document name.
func Key(set, doc string) string {
	return strings.TrimSpace(set) + Sep + strings.TrimSpace(doc)
}

// SplitKey is the inverse of Key. Keys without a separator have no set.
func SplitKey(key string) (set, doc string, ok bool) {
	i := strings.Index(key, Sep)
	if i <= 0 {
		return "", key, false
	}
	return key[:i], key[i+len(Sep):], true
}

func setNames(keys []string) []string {
	seen := map[string]struct{}{}
	for _, k := range keys {
		if set, _, ok := SplitKey(k); ok {
			seen[set] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// NewFromEnv picks a backend from KV_BACKEND: memory (default), redis,
// postgres or sqlite.
func NewFromEnv(ctx context.Context, log *logger.Logger) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(os.Getenv("KV_BACKEND")))
	switch backend {
	case "", "memory":
		log.Info("kv store", "backend", "memory")
		return NewMemory(), nil
	case "redis":
		return NewRedisFromEnv(ctx, log)
	case "postgres", "sqlite":
		return NewSQLFromEnv(log, backend)
	default:
		return nil, fmt.Errorf("unsupported KV_BACKEND %q", backend)
	}
}
