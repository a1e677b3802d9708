package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	LogLevel    string

	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// SubmitRate and SubmitBurst shape the per-principal token bucket
	// on the submission endpoint. Limiting is off when RedisAddr is
	// empty.
	SubmitRate  float64
	SubmitBurst int

	// QuotaPolicy selects the authoritative admission policy: "ledger"
	// (credit ledger) or "count" (count-and-queue).
	QuotaPolicy string

	// MaxQueued bounds the per-principal queue of the count policy.
	MaxQueued int

	// GrantIntervalMinutes is how often the grant scheduler wakes up.
	// The grant itself is idempotent per calendar month.
	GrantIntervalMinutes int
	GrantBatchSize       int

	SeedDevPrincipals bool
}

const (
	QuotaPolicyLedger = "ledger"
	QuotaPolicyCount  = "count"
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")

	return Config{
		AppName:     getenv("APP_SERVICE", "deckforge"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: environment,
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "deckforge"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 30),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),

		SubmitRate:  getenvFloat("SUBMIT_RATE_PER_SECOND", 1),
		SubmitBurst: getenvInt("SUBMIT_BURST", 5),

		QuotaPolicy: normalizeQuotaPolicy(getenv("QUOTA_POLICY", QuotaPolicyLedger)),
		MaxQueued:   getenvInt("SUBMISSION_MAX_QUEUED", 10),

		GrantIntervalMinutes: getenvInt("GRANT_INTERVAL_MINUTES", 60),
		GrantBatchSize:       getenvInt("GRANT_BATCH_SIZE", 200),

		SeedDevPrincipals: getenvBool("SEED_DEV_PRINCIPALS", environment != "production"),
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func normalizeQuotaPolicy(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case QuotaPolicyCount:
		return QuotaPolicyCount
	default:
		return QuotaPolicyLedger
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
