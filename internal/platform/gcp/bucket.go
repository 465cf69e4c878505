package gcp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/lessonplan-backend/internal/platform/ctxutil"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

// Exporter writes filled lesson-plan documents to a bucket.
type Exporter interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Close() error
}

type bucketExporter struct {
	log    *logger.Logger
	client *storage.Client
	cfg    ObjectStorageConfig
}

// NewExporter returns nil, nil when no export bucket is configured.
func NewExporter(log *logger.Logger, cfg ObjectStorageConfig) (Exporter, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, nil
	}
	if err := ValidateObjectStorageConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	client, err := newStorageClientForMode(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	slog := log.With("service", "gcp.Exporter")
	slog.Info("Object storage initialized",
		"mode", cfg.Mode,
		"mode_source", cfg.ModeSource(),
		"bucket", cfg.Bucket,
		"emulator_host", cfg.EmulatorHost,
	)
	return &bucketExporter{log: slog, client: client, cfg: cfg}, nil
}

func newStorageClientForMode(ctx context.Context, cfg ObjectStorageConfig) (*storage.Client, error) {
	if cfg.IsEmulatorMode() {
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	}
	opts := append(ClientOptionsFromEnv(), option.WithScopes(storage.ScopeReadWrite))
	return storage.NewClient(ctx, opts...)
}

func (e *bucketExporter) Close() error {
	if e == nil || e.client == nil {
		return nil
	}
	return e.client.Close()
}

// Upload writes data under key and returns the object's public URL.
func (e *bucketExporter) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctxutil.Default(ctx), 2*time.Minute)
	defer cancel()

	w := e.client.Bucket(e.cfg.Bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if w.ContentType == "" {
		w.ContentType = contentTypeForKey(key)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return ObjectURL(e.cfg, key), nil
}

// ObjectURL is where an uploaded object can be fetched.
func ObjectURL(cfg ObjectStorageConfig, key string) string {
	key = strings.TrimLeft(key, "/")
	switch {
	case cfg.PublicBaseURL != "":
		return cfg.PublicBaseURL + "/" + cfg.Bucket + "/" + key
	case cfg.IsEmulatorMode():
		return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", cfg.EmulatorHost, url.PathEscape(cfg.Bucket), url.PathEscape(key))
	default:
		return "https://storage.googleapis.com/" + cfg.Bucket + "/" + key
	}
}

func contentTypeForKey(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
