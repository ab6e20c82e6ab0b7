package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	GinMode        string
	DatabaseDriver string // postgres, mysql, sqlite
	DatabaseURL    string
	SessionSecret  string
	RedisURL       string // empty disables the redis notification sink
	LogLevel       string
	LogEncoding    string
	// cron spec for the full ledger audit, empty disables it
	AuditSchedule   string
	TreeCacheTTL    time.Duration
	TreeCacheSize   int
	NotifyQueueSize int
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, bool) {
	loadedDotenv := godotenv.Load() == nil

	driver := getEnv("DATABASE_DRIVER", "postgres")
	return &Config{
		Port:            getEnv("PORT", "8080"),
		GinMode:         getEnv("GIN_MODE", "release"),
		DatabaseDriver:  driver,
		DatabaseURL:     getEnv("DATABASE_URL", defaultDSN(driver)),
		SessionSecret:   getEnv("SESSION_SECRET", "secret_key_change_me"),
		RedisURL:        getEnv("REDIS_URL", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogEncoding:     getEnv("LOG_ENCODING", "console"),
		AuditSchedule:   getEnv("AUDIT_SCHEDULE", "0 3 * * *"),
		TreeCacheTTL:    getDuration("TREE_CACHE_TTL", 30*time.Second),
		TreeCacheSize:   getInt("TREE_CACHE_SIZE", 500),
		NotifyQueueSize: getInt("NOTIFY_QUEUE_SIZE", 1000),
	}, loadedDotenv
}

// defaultDSN 本地开发的默认连接串
func defaultDSN(driver string) string {
	switch driver {
	case "mysql":
		return "root:root@tcp(localhost:3306)/hypoforum?charset=utf8mb4&parseTime=True&loc=UTC"
	case "sqlite":
		return "hypoforum.db"
	default:
		return "host=localhost user=postgres password=postgres dbname=hypoforum port=5432 sslmode=disable TimeZone=UTC"
	}
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}
