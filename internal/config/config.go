package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Persistence
	StoreDriver   string
	DatabaseURL   string
	MigrationsDir string
	MongoURI      string
	MongoDatabase string

	// Redis
	RedisURL string

	// Sessions
	AuthSecret string
	SessionTTL time.Duration

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// Frontend
	FrontendURL string

	// Requests per minute per client IP on /auth routes
	AuthRateLimit int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:               getEnvOrDefault("PORT", "8080"),
		Env:                getEnvOrDefault("ENV", "development"),
		StoreDriver:        strings.ToLower(getEnvOrDefault("STORE_DRIVER", StoreDriverPostgres)),
		MigrationsDir:      getEnvOrDefault("MIGRATIONS_DIR", "migrations"),
		MongoDatabase:      getEnvOrDefault("MONGO_DATABASE", "quizforge"),
		RedisURL:           mustGetEnv("REDIS_URL"),
		AuthSecret:         mustGetEnv("AUTH_SECRET"),
		SessionTTL:         getEnvAsDurationOrDefault("SESSION_TTL", 8*time.Hour),
		GoogleClientID:     mustGetEnv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: getEnvOrDefault("GOOGLE_CLIENT_SECRET", ""),
		FrontendURL:        getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
		AuthRateLimit:      getEnvAsIntOrDefault("AUTH_RATE_LIMIT", 10),
	}
	cfg.GoogleRedirectURL = getEnvOrDefault("GOOGLE_REDIRECT_URL",
		"http://localhost:"+cfg.Port+"/api/v1/auth/google/callback")

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		cfg.DatabaseURL = mustGetEnv("DATABASE_URL")
	case StoreDriverMongo:
		cfg.MongoURI = mustGetEnv("MONGO_URI")
	default:
		panic(fmt.Sprintf("unsupported STORE_DRIVER %q (want postgres or mongo)", cfg.StoreDriver))
	}

	return cfg
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
