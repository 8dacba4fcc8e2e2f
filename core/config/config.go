package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	OTel           OTelConfig
	Model          ModelConfig
	Batch          BatchConfig
	Cache          CacheConfig
	Env            string
	Port           string
	Version        string
	AllowedOrigins []string
	MaxBodyBytes   int64
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

type ModelBackend string

const (
	ModelBackendLocal  ModelBackend = "local"
	ModelBackendRemote ModelBackend = "remote"
)

type ModelConfig struct {
	Backend ModelBackend
	Dir     string        // artifact directory for the local backend
	URL     string        // model server base URL for the remote backend
	Version string        // pinned remote model version; empty disables caching
	Timeout time.Duration // per-call timeout for the remote backend
}

type BatchConfig struct {
	MaxSize     int
	Concurrency int
}

type CacheConfig struct {
	RedisURL string
	TTL      time.Duration
}

// Load loads configuration from environment variables. In development it
// first reads .env from the working directory if present.
func Load() (Config, error) {
	if getEnv("APP_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	version := getEnv("APP_VERSION", "1.0.0")
	cfg := Config{
		Env:            getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "5000"),
		Version:        version,
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"*"}),
		MaxBodyBytes:   int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "elevatr-predictor"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", version),
		},
		Model: ModelConfig{
			Backend: ModelBackend(getEnv("MODEL_BACKEND", string(ModelBackendLocal))),
			Dir:     getEnv("MODEL_DIR", "models"),
			URL:     getEnv("MODEL_URL", ""),
			Version: getEnv("MODEL_VERSION", ""),
			Timeout: getEnvDuration("MODEL_TIMEOUT", 10*time.Second),
		},
		Batch: BatchConfig{
			MaxSize:     getEnvInt("BATCH_MAX_SIZE", 100),
			Concurrency: getEnvInt("BATCH_CONCURRENCY", 8),
		},
		Cache: CacheConfig{
			RedisURL: getEnv("REDIS_URL", ""),
			TTL:      getEnvDuration("CACHE_TTL", 15*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	switch c.Model.Backend {
	case ModelBackendLocal:
		if c.Model.Dir == "" {
			errs = append(errs, fmt.Errorf("MODEL_DIR is required for the local model backend"))
		}
	case ModelBackendRemote:
		if c.Model.URL == "" {
			errs = append(errs, fmt.Errorf("MODEL_URL is required for the remote model backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("MODEL_BACKEND must be %q or %q, got %q", ModelBackendLocal, ModelBackendRemote, c.Model.Backend))
	}

	if c.Batch.MaxSize < 1 {
		errs = append(errs, fmt.Errorf("BATCH_MAX_SIZE must be positive, got %d", c.Batch.MaxSize))
	}
	if c.Batch.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("BATCH_CONCURRENCY must be positive, got %d", c.Batch.Concurrency))
	}
	if c.MaxBodyBytes < 1 {
		errs = append(errs, fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes))
	}
	if c.Cache.Enabled() && c.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL must be positive when REDIS_URL is set"))
	}

	return errors.Join(errs...)
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c CacheConfig) Enabled() bool {
	return c.RedisURL != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma-separated value, dropping blanks.
func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
