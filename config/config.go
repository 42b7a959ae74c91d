package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/hpmalinova/Expense-Tracker/logger"
	"github.com/hpmalinova/Expense-Tracker/repository"
)

type Config struct {
	// HTTP Server
	Port      string
	ClientURL string

	// Backend selection
	DataBackend   string
	MongoURI      string
	MongoDatabase string
	MySQLDSN      string
	PostgresDSN   string
	SQLiteDBPath  string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration
	// badTokenTTL holds a TOKEN_TTL value that did not parse.
	badTokenTTL string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads the configuration from the environment. Callers that want a
// .env file honoured load it with godotenv first.
func Load() *Config {
	tokenTTL, badTokenTTL := getEnvDuration("TOKEN_TTL", 7*24*time.Hour)
	return &Config{
		Port:      getEnv("PORT", "5000"),
		ClientURL: getEnv("CLIENT_URL", "*"),

		DataBackend:   getEnv("DATA_BACKEND", repository.BackendMongo),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "expense_tracker"),
		MySQLDSN:      getEnv("MYSQL_DSN", ""),
		PostgresDSN:   getEnv("POSTGRES_DSN", ""),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/expenses.db"),

		JWTSecret:   getEnv("JWT_SECRET", ""),
		TokenTTL:    tokenTTL,
		badTokenTTL: badTokenTTL,

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// Validate validates the configuration and returns every violation at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(repository.Backends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, repository.Backends))
	}

	switch c.DataBackend {
	case repository.BackendMongo:
		if u, err := url.Parse(c.MongoURI); err != nil || (u.Scheme != "mongodb" && u.Scheme != "mongodb+srv") {
			errors = append(errors, fmt.Sprintf("invalid MONGO_URI '%s': scheme must be 'mongodb' or 'mongodb+srv'", c.MongoURI))
		}
		if c.MongoDatabase == "" {
			errors = append(errors, "MONGO_DATABASE cannot be empty when using mongo backend")
		}
	case repository.BackendMySQL:
		if c.MySQLDSN == "" {
			errors = append(errors, "MYSQL_DSN is required when using mysql backend")
		}
	case repository.BackendPostgres:
		if c.PostgresDSN == "" {
			errors = append(errors, "POSTGRES_DSN is required when using postgres backend")
		}
	case repository.BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLITE_DB_PATH cannot be empty when using sqlite backend")
		}
	}

	if c.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET is required")
	}
	if c.badTokenTTL != "" {
		errors = append(errors, fmt.Sprintf("invalid TOKEN_TTL '%s': must be a duration such as '168h'", c.badTokenTTL))
	} else if c.TokenTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid token ttl %v: must be at least 1 minute", c.TokenTTL))
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// RepositoryOptions selects and addresses the configured store.
func (c *Config) RepositoryOptions() repository.Options {
	return repository.Options{
		Backend:       c.DataBackend,
		MongoURI:      c.MongoURI,
		MongoDatabase: c.MongoDatabase,
		MySQLDSN:      c.MySQLDSN,
		PostgresDSN:   c.PostgresDSN,
		SQLitePath:    c.SQLiteDBPath,
	}
}

// LoggerConfig maps the logging settings; call it after Validate.
func (c *Config) LoggerConfig() logger.Config {
	level, err := logger.ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	cfg := logger.DefaultConfig()
	cfg.Level = level
	cfg.Format = c.LogFormat
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration also returns the raw value when it is set but does not parse.
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, string) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, ""
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue, value
	}
	return d, ""
}
