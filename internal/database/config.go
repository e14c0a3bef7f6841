package database

import (
	"fmt"
	"net/url"
	"os"

	"github.com/joho/godotenv"
)

// Supported values of DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds database configuration
type Config struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

// NewConfig creates a new database configuration
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// It's okay if .env doesn't exist, we'll use defaults or environment variables
		fmt.Println("Warning: .env file not found")
	}

	cfg := &Config{
		Driver:     getEnv("DB_DRIVER", DriverPostgres),
		Host:       getEnv("DB_HOST", "localhost"),
		Port:       getEnv("DB_PORT", "5432"),
		User:       getEnv("DB_USER", "bookkeeper"),
		Password:   getEnv("DB_PASSWORD", "bookkeeper"),
		DBName:     getEnv("DB_NAME", "bookkeeper"),
		SSLMode:    getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "bookkeeper.db"),
	}
	if cfg.Driver != DriverPostgres && cfg.Driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
	return cfg, nil
}

// DSN returns the connection string for the GORM dialector.
func (c *Config) DSN() string {
	if c.Driver == DriverSQLite {
		return c.SQLitePath + "?_foreign_keys=on"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// MigrationURL returns the database URL used by golang-migrate.
func (c *Config) MigrationURL() string {
	if c.Driver == DriverSQLite {
		return "sqlite3://" + c.SQLitePath
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}
