package cache

import (
	"context"
	"time"
)

// Store is the interface for all cache backends and decorators
type Store interface {
	// Get retrieves a value from the cache
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value in the cache
	Set(ctx context.Context, key string, value []byte, opts Options) error

	// Remove deletes a value from the cache
	Remove(ctx context.Context, key string) error

	// Refresh touches an entry's access time without returning its value
	Refresh(ctx context.Context, key string) error

	// Exists reports whether a live (non-expired) entry is present
	Exists(ctx context.Context, key string) (bool, error)

	// GetOrSet returns the cached value for key, invoking factory at most
	// once across concurrent callers when the key is missing
	GetOrSet(ctx context.Context, key string, factory Factory, opts Options) ([]byte, error)

	// Clear removes all values from the cache
	Clear(ctx context.Context) error

	// Stats returns cache statistics
	Stats() Statistics
}

// Factory produces a value for GetOrSet on a cache miss
type Factory func(ctx context.Context) ([]byte, error)

// Options control expiration and eviction behavior of a single entry
type Options struct {
	// TTL is the relative lifetime of the entry. Zero means the store's
	// default TTL. Ignored when AbsoluteExpiration is set.
	TTL time.Duration

	// AbsoluteExpiration is the instant after which the entry is dead.
	AbsoluteExpiration time.Time

	// SlidingExpiration, when positive, re-extends the entry's deadline by
	// this window on every successful read.
	SlidingExpiration time.Duration

	// Priority influences eviction order. Defaults to PriorityNormal.
	Priority Priority
}

// Statistics represents aggregate cache counters
type Statistics struct {
	TotalItems       int
	MemoryUsageBytes int64
	Hits             uint64
	Misses           uint64
	Evictions        uint64
}

// EvictionPolicy selects victims when the store is over capacity.
// Implementations live in the eviction package; the store hands over a
// snapshot of evictable items and removes whatever comes back, in order,
// until it fits again.
type EvictionPolicy interface {
	SelectVictims(items []*Item, needed int) []*Item
}

// Config holds cache store configuration
type Config struct {
	// MaxSize is the maximum cache size in bytes (default: 100MB)
	MaxSize int64

	// MaxItems is the maximum number of items (default: 10000)
	MaxItems int

	// MaxItemSize is the maximum size of a single entry in bytes.
	// Entries above it are rejected at Set time. Defaults to MaxSize.
	MaxItemSize int64

	// DefaultTTL is the default TTL for cached items (default: 5 minutes)
	DefaultTTL time.Duration

	// DefaultSlidingExpiration is applied to entries whose Options carry
	// no sliding window. Zero disables sliding expiration by default.
	DefaultSlidingExpiration time.Duration

	// LockTimeout bounds every lock wait; on timeout the operation fails
	// with a lock timeout error instead of blocking (default: 5 seconds).
	LockTimeout time.Duration

	// CleanupInterval enables a periodic expired-item sweep when positive.
	// Zero (the default) keeps expiration purely lazy.
	CleanupInterval time.Duration

	// Enabled indicates whether caching is enabled
	Enabled bool

	// OnEvict, when set, is called for every item removed by the eviction
	// policy. Called outside the store lock.
	OnEvict func(item *Item)
}

// DefaultConfig returns a default cache configuration
func DefaultConfig() *Config {
	return &Config{
		MaxSize:     100 * 1024 * 1024, // 100MB
		MaxItems:    10000,
		DefaultTTL:  5 * time.Minute,
		LockTimeout: 5 * time.Second,
		Enabled:     true,
	}
}
