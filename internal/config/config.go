package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// ContaHub upstream
	ContaHubBaseURL string
	DefaultBarID    int64

	// Collection pacing (randomized pause between report fetches)
	CollectDelayMin time.Duration
	CollectDelayMax time.Duration
	// Pause between days on a retroactive backfill
	RetroDayDelay time.Duration

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience (store calls only; upstream calls are never retried)
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxConcurrentRuns int

	// Credentials cache
	CredentialsTTL time.Duration

	// Observability
	OTLPEndpoint string

	// Supabase
	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string

	// Surface auth (empty disables bearer validation on /v1)
	JWTSecret string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		ContaHubBaseURL: getEnv("CONTAHUB_BASE_URL", "https://api.contahub.com.br"),
		DefaultBarID:    int64(getEnvInt("DEFAULT_BAR_ID", 3)),

		CollectDelayMin: getEnvDuration("COLLECT_DELAY_MIN", 5*time.Second),
		CollectDelayMax: getEnvDuration("COLLECT_DELAY_MAX", 30*time.Second),
		RetroDayDelay:   getEnvDuration("RETRO_DAY_DELAY", 2*time.Second),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 30*time.Second),

		MaxRetries:        getEnvInt("MAX_RETRIES", 3),
		InitialBackoff:    getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrentRuns: getEnvInt("MAX_CONCURRENT_RUNS", 2),

		CredentialsTTL: getEnvDuration("CREDENTIALS_TTL", 5*time.Minute),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey:    getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
