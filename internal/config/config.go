package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Total verification modes for incoming orders.
const (
	TotalCheckOff    = "off"
	TotalCheckFlag   = "flag"
	TotalCheckReject = "reject"
)

type Config struct {
	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	// Identity
	OwnerEmail         string
	OwnerSecret        string
	StudentEmailDomain string
	PRNLength          int

	// Access tokens (optional)
	JWTSecret       string
	JWTAccessExpiry time.Duration

	// Orders
	TaxRate       string
	TotalCheck    string
	OrderValidity time.Duration

	// Polling cache
	RedisAddr     string
	RedisPassword string
	OrderCacheTTL time.Duration

	// Logging
	LogLevel         string
	LogRetentionDays int

	// Server
	Port        string
	CORSOrigins string
	AppEnv      string
	SentryDSN   string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is honoured when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env file", "error", err)
	}

	return &Config{
		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "canteen"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBPath:     getEnv("DB_PATH", "canteen.db"),

		OwnerEmail:         strings.ToLower(getEnv("OWNER_EMAIL", "canteen@vit.edu")),
		OwnerSecret:        getEnv("OWNER_SECRET", "canteen"),
		StudentEmailDomain: strings.ToLower(getEnv("STUDENT_EMAIL_DOMAIN", "vit.edu")),
		PRNLength:          parseInt(getEnv("PRN_LENGTH", "10"), 10),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTAccessExpiry: parseDuration(getEnv("JWT_ACCESS_EXPIRY", "12h"), 12*time.Hour),

		TaxRate:       getEnv("TAX_RATE", "0.05"),
		TotalCheck:    parseTotalCheck(getEnv("TOTAL_CHECK", TotalCheckFlag)),
		OrderValidity: parseDuration(getEnv("ORDER_VALIDITY", "2h"), 2*time.Hour),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		OrderCacheTTL: parseDuration(getEnv("ORDER_CACHE_TTL", "2s"), 2*time.Second),

		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30),

		Port:        getEnv("PORT", "3001"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		AppEnv:      getEnv("APP_ENV", "development"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres":
		if c.DBPassword == "" {
			return errConfig("DB_PASSWORD environment variable is required")
		}
	case "sqlite":
		if c.DBPath == "" {
			return errConfig("DB_PATH environment variable is required")
		}
	default:
		return errConfig("unsupported DB_DRIVER " + strconv.Quote(c.DBDriver) + " (supported: postgres, sqlite)")
	}
	if c.OwnerEmail == "" || c.OwnerSecret == "" {
		return errConfig("OWNER_EMAIL and OWNER_SECRET must not be empty")
	}
	if c.LogRetentionDays <= 0 {
		return errConfig("LOG_RETENTION_DAYS must be positive")
	}
	if c.PRNLength <= 0 {
		return errConfig("PRN_LENGTH must be positive")
	}
	return nil
}

type errConfig string

func (e errConfig) Error() string { return string(e) }

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseTotalCheck(s string) string {
	switch strings.ToLower(s) {
	case TotalCheckOff:
		return TotalCheckOff
	case TotalCheckReject:
		return TotalCheckReject
	default:
		return TotalCheckFlag
	}
}
