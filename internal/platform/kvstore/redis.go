package kvstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

const defaultRedisPrefix = "lessonplan:"

type redisStore struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

// NewRedisFromEnv connects to REDIS_ADDR. Keys are stored under
// REDIS_KEY_PREFIX (default "lessonplan:").
func NewRedisFromEnv(ctx context.Context, log *logger.Logger) (Store, error) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	prefix := os.Getenv("REDIS_KEY_PREFIX")
	if strings.TrimSpace(prefix) == "" {
		prefix = defaultRedisPrefix
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    os.Getenv("REDIS_PASSWORD"),
		DialTimeout: 5 * time.Second,
	})
	return NewRedis(ctx, log, rdb, prefix)
}

// NewRedis wraps an existing client. The client is pinged and closed on
// failure.
func NewRedis(ctx context.Context, log *logger.Logger, rdb *goredis.Client, prefix string) (Store, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info("kv store", "backend", "redis", "prefix", prefix)
	return &redisStore{log: log.With("service", "RedisKVStore"), rdb: rdb, prefix: prefix}, nil
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	s.log.Debug("document saved", "key", key, "bytes", len(value))
	return nil
}

func (s *redisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.prefix + k
	}
	if err := s.rdb.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *redisStore) ListSetNames(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return setNames(keys), nil
}

func (s *redisStore) Close() error {
	return s.rdb.Close()
}
