package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Session backends
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendGorm     = "gorm"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// DefaultAPIURL is the backend as seen from the Android emulator
const DefaultAPIURL = "http://10.0.2.2:8080/api/"

// APIConfig holds backend client settings
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig selects and configures the session persistence backend
type SessionConfig struct {
	Backend string
	DSN     string
	// Key seals the token at rest when set; 32 bytes
	Key           []byte
	RedisAddr     string
	RedisPassword string
}

// UIConfig holds the controller delays
type UIConfig struct {
	SearchDebounce time.Duration
	MessageTTL     time.Duration
}

// TracingConfig holds OpenTelemetry settings; tracing is off without an endpoint
type TracingConfig struct {
	ServiceName string
	Endpoint    string
}

// Config holds the application configuration
type Config struct {
	Environment string
	LogLevel    string
	API         APIConfig
	Session     SessionConfig
	UI          UIConfig
	Tracing     TracingConfig
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	apiTimeout, err := getDuration("VOLTMARKET_HTTP_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	debounce, err := getDuration("VOLTMARKET_SEARCH_DEBOUNCE", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}
	messageTTL, err := getDuration("VOLTMARKET_MESSAGE_TTL", 2*time.Second)
	if err != nil {
		return nil, err
	}

	var key []byte
	if encoded := getEnv("VOLTMARKET_SESSION_KEY", ""); encoded != "" {
		key, err = base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid VOLTMARKET_SESSION_KEY: %w", err)
		}
	}

	backend := strings.ToLower(getEnv("VOLTMARKET_SESSION_BACKEND", BackendSQLite))
	switch backend {
	case BackendSQLite, BackendPostgres, BackendGorm, BackendRedis, BackendMemory:
	default:
		return nil, fmt.Errorf("unknown session backend %q", backend)
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		API: APIConfig{
			BaseURL: getEnv("VOLTMARKET_API_URL", DefaultAPIURL),
			Timeout: apiTimeout,
		},
		Session: SessionConfig{
			Backend:       backend,
			DSN:           getEnv("VOLTMARKET_SESSION_DSN", defaultDSN(backend)),
			Key:           key,
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
		},
		UI: UIConfig{
			SearchDebounce: debounce,
			MessageTTL:     messageTTL,
		},
		Tracing: TracingConfig{
			ServiceName: getEnv("OTEL_SERVICE_NAME", "voltmarket-cli"),
			Endpoint:    getEnv("JAEGER_ENDPOINT", ""),
		},
	}, nil
}

// IsDevelopment reports whether console logging should be used
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func defaultDSN(backend string) string {
	switch backend {
	case BackendSQLite:
		dir, err := os.UserConfigDir()
		if err != nil {
			return "voltmarket-session.db"
		}
		return filepath.Join(dir, "voltmarket", "session.db")
	case BackendPostgres, BackendGorm:
		return "host=localhost port=5432 user=postgres password=postgres dbname=voltmarket sslmode=disable"
	default:
		return ""
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
