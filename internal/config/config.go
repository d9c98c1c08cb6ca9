package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"wrapped/internal/core"
)

const (
	SourceHTTP   = "http"
	SourceMemory = "memory"
)

type Config struct {
	// HTTP Server
	Port string

	// Analytics backend
	APIURL         string
	Token          string
	Source         string
	DataDir        string
	RequestTimeout time.Duration

	// Default report query
	Desde string
	Hasta string
	Modo  string

	// Session cache
	CacheTTL  time.Duration
	CacheSize int

	// Snapshot archive (disabled when empty)
	SQLiteDBPath  string
	SnapshotsKept int

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Worker
	RefreshInterval time.Duration

	LogLevel string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8082"),

		APIURL:         getEnv("WRAPPED_API_URL", "http://localhost:8000"),
		Token:          getEnv("WRAPPED_TOKEN", ""),
		Source:         getEnv("WRAPPED_SOURCE", SourceHTTP),
		DataDir:        getEnv("DATA_DIR", "data"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),

		Desde: getEnv("WRAPPED_DESDE", "2020-01-01"),
		Hasta: getEnv("WRAPPED_HASTA", "2024-12-31"),
		Modo:  getEnv("WRAPPED_MODO", string(core.ModeMerchant)),

		CacheTTL:  getEnvDuration("CACHE_TTL", 5*time.Minute),
		CacheSize: getEnvInt("CACHE_SIZE", 100),

		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", ""),
		SnapshotsKept: getEnvInt("SNAPSHOTS_KEPT", 10),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "wrapped"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "wrapped_refresh"),

		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", time.Hour),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// DefaultQuery is the report shown when a request does not pick its own range.
func (c *Config) DefaultQuery() core.Query {
	return core.Query{Desde: c.Desde, Hasta: c.Hasta, Modo: core.GroupingMode(c.Modo)}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.Source {
	case SourceHTTP:
		if parsedURL, err := url.Parse(c.APIURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid API URL '%s': %v", c.APIURL, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid API URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
		}
		if strings.TrimSpace(c.Token) == "" {
			errors = append(errors, "WRAPPED_TOKEN is required when using the http source")
		}
	case SourceMemory:
	default:
		errors = append(errors, fmt.Sprintf("invalid source '%s': must be one of [%s %s]", c.Source, SourceHTTP, SourceMemory))
	}

	if err := c.DefaultQuery().Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid default query: %v", err))
	}

	if c.RequestTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid request timeout %v: must be at least 100ms", c.RequestTimeout))
	} else if c.RequestTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid request timeout %v: must be at most 5 minutes", c.RequestTimeout))
	}

	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}
	if c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	}

	if c.SQLiteDBPath != "" && c.SnapshotsKept < 1 {
		errors = append(errors, fmt.Sprintf("invalid snapshots kept %d: must be at least 1", c.SnapshotsKept))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.RefreshInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid refresh interval %v: must be at least 1 second", c.RefreshInterval))
	} else if c.RefreshInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid refresh interval %v: must be at most 24 hours", c.RefreshInterval))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
