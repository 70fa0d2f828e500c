package nexo_cache

import (
	"os"
	"strconv"
	"time"

	"github.com/nexolabs/nexo-cache/cache"
	"github.com/nexolabs/nexo-cache/decorator"
	"github.com/nexolabs/nexo-cache/eviction"
	"github.com/nexolabs/nexo-cache/redis"
)

// Backend selects the cache store implementation
type Backend string

const (
	BackendInMemory Backend = "inmemory"
	BackendRedis    Backend = "redis"
)

// CompressionConfig controls the compression decorator
type CompressionConfig struct {
	Enabled   bool
	Threshold int
	Level     int
}

// MonitoringConfig controls the monitoring decorator
type MonitoringConfig struct {
	Enabled    bool
	BufferSize int

	// Namespace prefixes the Prometheus metric names (default: "nexocache")
	Namespace string

	// Metrics enables Prometheus export when true
	Metrics bool
}

// Config assembles a fully decorated cache
type Config struct {
	// Name labels the cache in operation records and metrics
	Name string

	// Backend selects the base store (default: inmemory)
	Backend Backend

	// Memory configures the in-memory store
	Memory *cache.Config

	// EvictionPolicy selects the eviction strategy for the in-memory
	// store (default: intelligent)
	EvictionPolicy eviction.StrategyType

	// EvictionWeights tune the intelligent policy's scoring
	EvictionWeights eviction.Weights

	// Redis configures the Redis store when Backend is "redis"
	Redis *redis.Config

	Compression CompressionConfig
	Monitoring  MonitoringConfig
}

// DefaultConfig returns the default assembly configuration: an in-memory
// store with intelligent eviction, compression, and monitoring.
func DefaultConfig() *Config {
	return &Config{
		Name:            "default",
		Backend:         BackendInMemory,
		Memory:          cache.DefaultConfig(),
		EvictionPolicy:  eviction.Intelligent,
		EvictionWeights: eviction.DefaultWeights(),
		Redis:           redis.DefaultConfig(),
		Compression: CompressionConfig{
			Enabled:   true,
			Threshold: decorator.DefaultCompressionThreshold,
		},
		Monitoring: MonitoringConfig{
			Enabled:    true,
			BufferSize: 10000,
			Namespace:  "nexocache",
		},
	}
}

// ConfigFromEnv builds a configuration from NEXO_CACHE_* environment
// variables on top of the defaults. Callers typically load a .env file
// first (see example/main.go).
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()

	cfg.Name = envString("NEXO_CACHE_NAME", cfg.Name)
	cfg.Backend = Backend(envString("NEXO_CACHE_BACKEND", string(cfg.Backend)))
	cfg.EvictionPolicy = eviction.StrategyType(envString("NEXO_CACHE_EVICTION_POLICY", string(cfg.EvictionPolicy)))

	cfg.Memory.MaxSize = envInt64("NEXO_CACHE_MAX_SIZE", cfg.Memory.MaxSize)
	cfg.Memory.MaxItems = envInt("NEXO_CACHE_MAX_ITEMS", cfg.Memory.MaxItems)
	cfg.Memory.MaxItemSize = envInt64("NEXO_CACHE_MAX_ITEM_SIZE", cfg.Memory.MaxItemSize)
	cfg.Memory.DefaultTTL = envDuration("NEXO_CACHE_DEFAULT_TTL", cfg.Memory.DefaultTTL)
	cfg.Memory.DefaultSlidingExpiration = envDuration("NEXO_CACHE_SLIDING_EXPIRATION", cfg.Memory.DefaultSlidingExpiration)
	cfg.Memory.LockTimeout = envDuration("NEXO_CACHE_LOCK_TIMEOUT", cfg.Memory.LockTimeout)
	cfg.Memory.CleanupInterval = envDuration("NEXO_CACHE_CLEANUP_INTERVAL", cfg.Memory.CleanupInterval)

	cfg.Redis.Address = envString("NEXO_CACHE_REDIS_ADDR", cfg.Redis.Address)
	cfg.Redis.Password = envString("NEXO_CACHE_REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.Database = envInt("NEXO_CACHE_REDIS_DB", cfg.Redis.Database)
	cfg.Redis.KeyPrefix = envString("NEXO_CACHE_REDIS_PREFIX", cfg.Redis.KeyPrefix)
	cfg.Redis.DefaultTTL = envDuration("NEXO_CACHE_DEFAULT_TTL", cfg.Redis.DefaultTTL)

	cfg.Compression.Enabled = envBool("NEXO_CACHE_COMPRESSION", cfg.Compression.Enabled)
	cfg.Compression.Threshold = envInt("NEXO_CACHE_COMPRESSION_THRESHOLD", cfg.Compression.Threshold)

	cfg.Monitoring.Enabled = envBool("NEXO_CACHE_MONITORING", cfg.Monitoring.Enabled)
	cfg.Monitoring.BufferSize = envInt("NEXO_CACHE_MONITORING_BUFFER", cfg.Monitoring.BufferSize)
	cfg.Monitoring.Namespace = envString("NEXO_CACHE_METRICS_NAMESPACE", cfg.Monitoring.Namespace)
	cfg.Monitoring.Metrics = envBool("NEXO_CACHE_METRICS", cfg.Monitoring.Metrics)

	return cfg
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
