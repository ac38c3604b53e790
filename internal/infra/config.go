package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string        `validate:"required"`
	Port               string        `validate:"required,numeric"`
	DatabaseURL        string
	SQLitePath         string
	DefaultLocale      string        `validate:"oneof=en id"`
	GeoIPDBPath        string
	StorageBackend     string        `validate:"oneof=filesystem supabase none"`
	StoragePath        string
	StorageBaseURL     string        `validate:"omitempty,url"`
	StorageBucket      string        `validate:"required"`
	SupabaseURL        string        `validate:"required_if=StorageBackend supabase"`
	SupabaseServiceKey string        `validate:"required_if=StorageBackend supabase"`
	UploadMaxBytes     int64         `validate:"gt=0"`
	UploadAllowedTypes []string      `validate:"min=1,dive,required"`
	PersistByDefault   bool
	ProcessingDelay    time.Duration `validate:"gte=0"`
	SessionIdleTTL     time.Duration `validate:"gt=0"`
	GeminiAPIKey       string
	GeminiModel        string        `validate:"required"`
	GeminiBaseURL      string        `validate:"omitempty,url"`
	RelayURL           string        `validate:"omitempty,url"`
	RelayStrict        bool
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int           `validate:"gt=0"`
	CORSAllowedOrigins []string      `validate:"min=1"`
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "8080")
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               port,
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		SQLitePath:         os.Getenv("SQLITE_PATH"),
		DefaultLocale:      getEnv("DEFAULT_LOCALE", "en"),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		StorageBackend:     strings.ToLower(getEnv("STORAGE_BACKEND", "filesystem")),
		StoragePath:        getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL:     getEnv("STORAGE_BASE_URL", fmt.Sprintf("http://localhost:%s/static", port)),
		StorageBucket:      getEnv("STORAGE_BUCKET", "images"),
		SupabaseURL:        strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
		UploadMaxBytes:     int64(getEnvInt("UPLOAD_MAX_BYTES", 10*1024*1024)),
		UploadAllowedTypes: getEnvList("UPLOAD_ALLOWED_TYPES", []string{"image/jpeg", "image/png", "image/webp"}),
		PersistByDefault:   getEnvBool("UPLOAD_PERSIST_DEFAULT", false),
		ProcessingDelay:    time.Millisecond * time.Duration(getEnvInt("PROCESSING_DELAY_MS", 2000)),
		SessionIdleTTL:     time.Minute * time.Duration(getEnvInt("SESSION_IDLE_TTL_MINUTES", 30)),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL:      os.Getenv("GEMINI_BASE_URL"),
		RelayURL:           strings.TrimRight(os.Getenv("RELAY_URL"), "/"),
		RelayStrict:        getEnvBool("RELAY_STRICT", false),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
