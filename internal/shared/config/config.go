package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAnthropicModel = "claude-sonnet-4-20250514"
	defaultMaxTokens      = 4096
	defaultLLMTimeout     = 120 * time.Second
	defaultMaxJobChars    = 20000
)

// Config holds application configuration.
type Config struct {
	Env             string
	Port            string
	CORSAllowOrigin []string
	DatabaseURL     string
	AutoMigrate     bool

	AnthropicAPIKey  string
	AnthropicModel   string
	AnthropicBaseURL string
	LLMMaxTokens     int
	LLMTimeout       time.Duration
	MaxJobTextChars  int

	JWTSecret string
	JWTTTL    time.Duration

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	RedisURL             string
	AnalyzeRatePerMinute float64
	AnalyzeBurst         int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience; real env vars win.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Env:             env,
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DatabaseURL:     dbURL,
		AutoMigrate:     getEnvBool("AUTO_MIGRATE", env != "production"),

		AnthropicAPIKey:  strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")),
		AnthropicModel:   getEnv("ANTHROPIC_MODEL", defaultAnthropicModel),
		AnthropicBaseURL: getEnv("ANTHROPIC_BASE_URL", ""),
		LLMMaxTokens:     getEnvInt("LLM_MAX_TOKENS", defaultMaxTokens),
		LLMTimeout:       time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", int(defaultLLMTimeout/time.Second))) * time.Second,
		MaxJobTextChars:  getEnvInt("MAX_JOB_TEXT_CHARS", defaultMaxJobChars),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTTTL:    time.Duration(getEnvInt("JWT_TTL_MINUTES", 24*60)) * time.Minute,

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),

		RedisURL:             getEnv("REDIS_URL", ""),
		AnalyzeRatePerMinute: getEnvFloat("ANALYZE_RATE_PER_MINUTE", 6),
		AnalyzeBurst:         getEnvInt("ANALYZE_BURST", 3),
	}
}

// IsDevLike reports whether env allows in-memory fallbacks.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			log.Printf("config: ignore %s: %v", path, err)
		}
	}
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		log.Printf("config: %s invalid int %q, using %d", key, raw, def)
		return def
	}
	return val
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil || val < 0 {
		log.Printf("config: %s invalid number %q, using %v", key, raw, def)
		return def
	}
	return val
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
