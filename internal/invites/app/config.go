package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dougsimpsoncodes/myailandlord/internal/invites/service"
	"github.com/dougsimpsoncodes/myailandlord/pkg/ratelimit"
)

type Config struct {
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	RequestTimeout      time.Duration // Per-request deadline (default: 5s)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	DatabaseDriver  string // Optional: sqlite or postgres (default: sqlite)
	DatabaseFile    string // Optional: path to SQLite database file (default: ./invites.db)
	DatabaseURL     string // Required for postgres: connection string
	TokenSecretFile string // Optional: path to the token hashing secret (default: ./token_secret)

	JWKSURL      string        // Required: auth service JWKS endpoint
	JWKSRefresh  time.Duration // Optional: JWKS refresh interval (default: 5m)
	AuthIssuer   string        // Optional: expected iss claim
	AuthAudience []string      // Optional: accepted aud claims, comma separated

	AllowedOrigins    []string // Browser origins allowed to call the API, comma separated
	TrustProxyHeaders bool     // Honour X-Forwarded-For when keying validate limits (default: false)

	RateLimitBackend string             // Optional: store, redis or memory (default: store)
	RedisAddr        string             // Required for redis backend
	RateLimits       ratelimit.Policies // Per-operation bucket shape

	Issue       service.IssuePolicy
	AcceptGrace time.Duration // Expiry grace for validate and accept (default: 5m)

	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	TokenRetention       time.Duration // Keep expired tokens this long (default: 30 days)
	BucketIdleTTL        time.Duration // Drop buckets idle this long (default: 24h)
}

func LoadConfig() Config {
	cfg := Config{
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		RequestTimeout:      getEnvDurationOrDefault("REQUEST_TIMEOUT", 5*time.Second),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),

		DatabaseDriver:  getEnvOrDefault("DATABASE_DRIVER", "sqlite"),
		DatabaseFile:    getEnvOrDefault("DATABASE_FILE", "invites.db"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		TokenSecretFile: getEnvOrDefault("TOKEN_SECRET_FILE", "token_secret"),

		JWKSURL:      os.Getenv("AUTH_JWKS_URL"),
		JWKSRefresh:  getEnvDurationOrDefault("AUTH_JWKS_REFRESH", 5*time.Minute),
		AuthIssuer:   os.Getenv("AUTH_ISSUER"),
		AuthAudience: getEnvListOrDefault("AUTH_AUDIENCE", nil),

		AllowedOrigins:    getEnvListOrDefault("ALLOWED_ORIGINS", nil),
		TrustProxyHeaders: getEnvBoolOrDefault("TRUST_PROXY_HEADERS", false),

		RateLimitBackend: getEnvOrDefault("RATELIMIT_BACKEND", "store"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),

		Issue: service.IssuePolicy{
			MaxUsesLimit: getEnvIntOrDefault("INVITE_MAX_USES_LIMIT", service.DefaultMaxUsesLimit),
			DefaultTTL:   getEnvDurationOrDefault("INVITE_DEFAULT_TTL", service.DefaultInviteTTL),
			MaxTTL:       getEnvDurationOrDefault("INVITE_MAX_TTL", service.DefaultMaxInviteTTL),
		},
		AcceptGrace: getEnvDurationOrDefault("INVITE_ACCEPT_GRACE", service.DefaultAcceptGrace),

		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", service.DefaultHousekeepingInterval),
		TokenRetention:       getEnvDurationOrDefault("TOKEN_RETENTION", service.DefaultTokenRetention),
		BucketIdleTTL:        getEnvDurationOrDefault("BUCKET_IDLE_TTL", service.DefaultBucketIdleTTL),
	}

	// RATELIMIT_<OP>_CAPACITY and RATELIMIT_<OP>_REFILL_PER_MIN override the
	// stock bucket for one operation.
	cfg.RateLimits = service.DefaultPolicies()
	for op, p := range cfg.RateLimits {
		prefix := "RATELIMIT_" + strings.ToUpper(op) + "_"
		if os.Getenv(prefix+"CAPACITY") == "" && os.Getenv(prefix+"REFILL_PER_MIN") == "" {
			continue
		}
		capacity := getEnvIntOrDefault(prefix+"CAPACITY", int(p.Capacity))
		perMinute := getEnvFloatOrDefault(prefix+"REFILL_PER_MIN", p.RefillRate*60)
		cfg.RateLimits[op] = ratelimit.PerMinute(capacity, perMinute)
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

// getEnvListOrDefault splits a comma separated value, dropping empty items.
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for item := range strings.SplitSeq(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
