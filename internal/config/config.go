package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Recurring worker
	RecurringInterval time.Duration
	WorkerConcurrency int
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "bookkeeper"),
		DBPassword: getEnv("DB_PASSWORD", "bookkeeper"),
		DBName:     getEnv("DB_NAME", "bookkeeper"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "bookkeeper.db"),

		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
	}

	config.JWTExpirationDur = getDuration("JWT_EXPIRES_IN", 24*time.Hour)
	config.RecurringInterval = getDuration("RECURRING_INTERVAL", time.Hour)

	concurrency, err := strconv.Atoi(getEnv("WORKER_CONCURRENCY", "4"))
	if err != nil || concurrency < 1 {
		log.Printf("Warning: invalid WORKER_CONCURRENCY value, falling back to 4\n")
		concurrency = 4
	}
	config.WorkerConcurrency = concurrency

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, defaultValue.String())
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}
