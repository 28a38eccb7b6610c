// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Storage backends for the persisted app state.
const (
	StorageFile   = "file"
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	Port string

	// Gemini credential and model ids. An empty key leaves the model
	// client in a not-ready state; dependent operations are refused.
	GeminiAPIKey string
	ChatModel    string
	ReportModel  string
	UseMockLLM   bool

	StorageBackend string
	DataDir        string // file backend
	RedisAddr      string // redis backend
	SQLitePath     string // sqlite backend

	ExportDir    string // where generated PDF reports land
	VoiceTimeout time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port: getEnv("HT_PORT", "8080"),

		GeminiAPIKey: getEnv("HT_GEMINI_API_KEY", ""),
		ChatModel:    getEnv("HT_CHAT_MODEL", "gemini-2.0-flash"),
		ReportModel:  getEnv("HT_REPORT_MODEL", "gemini-1.5-flash"),
		UseMockLLM:   getEnvBool("HT_USE_MOCK_LLM", false),

		StorageBackend: getEnv("HT_STORAGE_BACKEND", StorageFile),
		DataDir:        getEnv("HT_DATA_DIR", "./data"),
		RedisAddr:      getEnv("HT_REDIS_ADDR", "localhost:6379"),
		SQLitePath:     getEnv("HT_SQLITE_PATH", "./data/healthtrack.db"),

		ExportDir:    getEnv("HT_EXPORT_DIR", "./reports"),
		VoiceTimeout: getEnvDuration("HT_VOICE_TIMEOUT", 100*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("HT_PORT cannot be empty")
	}
	switch c.StorageBackend {
	case StorageFile:
		if c.DataDir == "" {
			return fmt.Errorf("HT_DATA_DIR cannot be empty for the file backend")
		}
	case StorageMemory:
	case StorageRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("HT_REDIS_ADDR cannot be empty for the redis backend")
		}
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("HT_SQLITE_PATH cannot be empty for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown HT_STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.ExportDir == "" {
		return fmt.Errorf("HT_EXPORT_DIR cannot be empty")
	}
	if c.VoiceTimeout <= 0 {
		return fmt.Errorf("HT_VOICE_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
