package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port           int
	LogLevel       string
	AllowedOrigins []string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Cache
	CacheTTL time.Duration

	// Observability. Empty endpoint disables trace export.
	OTLPEndpoint string

	// Supabase. Empty URL runs the in-memory simulation store.
	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string
	LoginEmailDomain   string

	// JWT / Auth
	JWTSecret    string
	JWTAccessTTL time.Duration
	FallbackRole string

	// SMS (NextSMS). Empty or placeholder key simulates every send.
	SMSAPIKey string
	SMSAPIURL string
	SMSSender string

	// Simulation mode seed account
	DevAdminUsername string
	DevAdminPassword string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:           getEnvInt("PORT", 8080),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 10),

		CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey:    getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		LoginEmailDomain:   getEnv("LOGIN_EMAIL_DOMAIN", "church.com"),

		JWTSecret:    getEnv("JWT_SECRET", "graceflow-default-dev-secret-change-me"),
		JWTAccessTTL: getEnvDuration("JWT_ACCESS_TTL", 8*time.Hour),
		FallbackRole: getEnv("FALLBACK_ROLE", "admin"),

		SMSAPIKey: getEnv("NEXTSMS_API_KEY", ""),
		SMSAPIURL: getEnv("SMS_API_URL", "https://messaging-service.co.tz/api/v2/send"),
		SMSSender: getEnv("SMS_SENDER", "GRACEFLOW"),

		DevAdminUsername: getEnv("DEV_ADMIN_USERNAME", "admin"),
		DevAdminPassword: getEnv("DEV_ADMIN_PASSWORD", "graceflow"),
	}
}

// UseSupabase reports whether a real record store is configured.
func (c *Config) UseSupabase() bool {
	return c.SupabaseURL != ""
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

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
