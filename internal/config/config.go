// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mrs-ressorts/portail/internal/devis"
)

// Store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Backend BackendConfig
	Auth    AuthConfig
	App     AppConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// StoreConfig selects where quote requests are read from.
type StoreConfig struct {
	Driver string

	MongoURI        string
	MongoDatabase   string
	Collections     map[devis.Kind]string
	UsersCollection string
	ConnectTimeout  time.Duration

	// DSN is used by the postgres and sqlite drivers.
	DSN           string
	Migrations    bool
	MigrationsDir string
	Seed          bool
	Debug         bool
}

// BackendConfig points at the backend API the thin routes are forwarded to.
type BackendConfig struct {
	URL     string
	Timeout time.Duration
}

// AuthConfig holds token and permission settings.
type AuthConfig struct {
	JWTSecret       string
	CookieTTL       time.Duration
	SecureCookie    bool
	ProfileCacheTTL time.Duration
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev      bool
	LogLevel string
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	dev := getEnvBool("DEV", false)
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 60),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Store: StoreConfig{
			Driver:          strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
			MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
			MongoDatabase:   getEnv("MONGO_DB", "mrs"),
			Collections:     collectionsFromEnv(),
			UsersCollection: getEnv("MONGO_USERS_COLLECTION", "users"),
			ConnectTimeout:  getEnvDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
			DSN:             getEnv("DATABASE_DSN", ""),
			Migrations:      getEnvBool("MIGRATIONS", false),
			MigrationsDir:   getEnv("MIGRATIONS_DIR", "migrations"),
			Seed:            getEnvBool("DB_SEED", false),
			Debug:           getEnvBool("DB_DEBUG", false),
		},
		Backend: BackendConfig{
			URL:     getEnv("BACKEND_URL", "http://localhost:5000"),
			Timeout: getEnvDuration("BACKEND_TIMEOUT", 30*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("JWT_SECRET", ""),
			CookieTTL:       getEnvDuration("TOKEN_COOKIE_TTL", 7*24*time.Hour),
			SecureCookie:    getEnvBool("COOKIE_SECURE", !dev),
			ProfileCacheTTL: getEnvDuration("PROFILE_CACHE_TTL", 5*time.Minute),
		},
		App: AppConfig{
			Dev:      dev,
			LogLevel: getEnv("LOG_LEVEL", ""),
		},
	}
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMongo:
		if c.Store.MongoURI == "" || c.Store.MongoDatabase == "" {
			return fmt.Errorf("config: MONGO_URI and MONGO_DB are required for the %s driver", DriverMongo)
		}
	case DriverPostgres, DriverSQLite:
		if c.Store.DSN == "" {
			return fmt.Errorf("config: DATABASE_DSN is required for the %s driver", c.Store.Driver)
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Auth.JWTSecret == "" && !c.App.Dev {
		return fmt.Errorf("config: JWT_SECRET is required outside development")
	}
	if c.Backend.URL == "" {
		return fmt.Errorf("config: BACKEND_URL is required")
	}
	return nil
}

// collectionsFromEnv reads MONGO_COLLECTION_<KIND> overrides.
func collectionsFromEnv() map[devis.Kind]string {
	out := map[devis.Kind]string{}
	for _, k := range devis.Kinds {
		if v := os.Getenv("MONGO_COLLECTION_" + strings.ToUpper(string(k))); v != "" {
			out[k] = v
		}
	}
	return out
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("30s") or plain seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if i, err := strconv.Atoi(value); err == nil {
		return time.Duration(i) * time.Second
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}
