// Package storage provides the drivers that persist the serialized app
// state blob under a fixed key.
package storage

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/healthtrack/symptom-agent/internal/domain"
)

// StateKey is the fixed key the app state blob lives under, shared by
// every driver.
const StateKey = "healthtracker-app"

// Backend selects a driver.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
	BackendRedis  Backend = "redis"
	BackendSQLite Backend = "sqlite"
)

// Option configures Open.
type Option func(*config)

type config struct {
	dataDir     string
	redisClient *redis.Client
	sqlitePath  string
}

// WithDataDir sets the directory for the file driver.
func WithDataDir(dir string) Option {
	return func(c *config) { c.dataDir = dir }
}

// WithRedisClient sets the client for the redis driver.
func WithRedisClient(client *redis.Client) Option {
	return func(c *config) { c.redisClient = client }
}

// WithSQLitePath sets the database path for the sqlite driver.
func WithSQLitePath(path string) Option {
	return func(c *config) { c.sqlitePath = path }
}

// Open creates a state store for the given backend.
func Open(backend Backend, opts ...Option) (domain.StateStore, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	switch backend {
	case BackendFile:
		if cfg.dataDir == "" {
			return nil, fmt.Errorf("file backend requires a data directory")
		}
		return newFileStore(cfg.dataDir)
	case BackendMemory:
		return newMemoryStore(), nil
	case BackendRedis:
		if cfg.redisClient == nil {
			return nil, fmt.Errorf("redis backend requires a client")
		}
		return newRedisStore(cfg.redisClient), nil
	case BackendSQLite:
		if cfg.sqlitePath == "" {
			return nil, fmt.Errorf("sqlite backend requires a database path")
		}
		return newSQLiteStore(cfg.sqlitePath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
