package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/lessonplan-backend/internal/platform/envutil"
)

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ExposeMetrics   bool          `yaml:"expose_metrics"`
}

type GenerationConfig struct {
	// DefaultProvider is used when neither the request nor the set config
	// names one.
	DefaultProvider string `yaml:"default_provider"`
	// Providers lists which generation backends to build; empty means all
	// that have credentials.
	Providers   []string `yaml:"providers"`
	OpenAIModel string   `yaml:"openai_model"`
}

type Config struct {
	Env         string           `yaml:"env"`
	ServiceName string           `yaml:"service_name"`
	Version     string           `yaml:"version"`
	Set         string           `yaml:"set"`
	OCREnabled  bool             `yaml:"ocr_enabled"`
	MetricsAddr string           `yaml:"metrics_addr"`
	HTTP        HTTPConfig       `yaml:"http"`
	Generation  GenerationConfig `yaml:"generation"`
}

func defaultConfig() Config {
	return Config{
		Env:         "development",
		ServiceName: "lessonplan",
		Set:         "default",
		OCREnabled:  true,
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ShutdownTimeout: 15 * time.Second,
			MaxUploadBytes:  20 << 20,
		},
	}
}

// LoadConfig starts from defaults, overlays the YAML file named by
// LESSONPLAN_CONFIG, then applies env overrides.
func LoadConfig() (Config, error) {
	cfg := defaultConfig()

	if path := strings.TrimSpace(os.Getenv("LESSONPLAN_CONFIG")); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Env = envutil.String("LOG_MODE", cfg.Env)
	cfg.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.ServiceName)
	cfg.Version = envutil.String("APP_VERSION", cfg.Version)
	cfg.Set = envutil.String("LESSONPLAN_SET", cfg.Set)
	cfg.OCREnabled = envutil.Bool("OCR_ENABLED", cfg.OCREnabled)
	cfg.MetricsAddr = envutil.String("METRICS_ADDR", cfg.MetricsAddr)
	if port := envutil.String("PORT", ""); port != "" {
		cfg.HTTP.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	cfg.HTTP.Addr = envutil.String("HTTP_ADDR", cfg.HTTP.Addr)
	cfg.HTTP.ShutdownTimeout = envutil.Seconds("HTTP_SHUTDOWN_SECONDS", cfg.HTTP.ShutdownTimeout)
	if n := envutil.Int("HTTP_MAX_UPLOAD_BYTES", 0); n > 0 {
		cfg.HTTP.MaxUploadBytes = int64(n)
	}
	cfg.HTTP.ExposeMetrics = envutil.Bool("HTTP_EXPOSE_METRICS", cfg.HTTP.ExposeMetrics)
	cfg.Generation.DefaultProvider = envutil.String("LLM_PROVIDER", cfg.Generation.DefaultProvider)
	cfg.Generation.OpenAIModel = envutil.String("OPENAI_MODEL", cfg.Generation.OpenAIModel)
	if raw := envutil.String("LLM_PROVIDERS", ""); raw != "" {
		cfg.Generation.Providers = splitList(raw)
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	c.Generation.DefaultProvider = strings.ToLower(strings.TrimSpace(c.Generation.DefaultProvider))
	for i, p := range c.Generation.Providers {
		c.Generation.Providers[i] = strings.ToLower(strings.TrimSpace(p))
	}
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return fmt.Errorf("http.addr is required")
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		c.HTTP.MaxUploadBytes = 20 << 20
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		c.HTTP.ShutdownTimeout = 15 * time.Second
	}
	return nil
}

// wants reports whether provider should be built.
func (g GenerationConfig) wants(provider string) bool {
	if len(g.Providers) == 0 {
		return true
	}
	for _, p := range g.Providers {
		if p == provider {
			return true
		}
	}
	return false
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
