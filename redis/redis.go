// Package redis provides a Redis-backed implementation of the cache
// store contract. It is a drop-in alternate backend: callers remain
// backend-agnostic, and reads degrade to a miss on connectivity failures
// so the cache never becomes a hard dependency.
package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/nexolabs/nexo-cache/cache"
)

// DefaultKeyPrefix namespaces cache keys so the store can share a Redis
// instance with other applications.
const DefaultKeyPrefix = "nexo:cache:"

// Config holds Redis store configuration
type Config struct {
	// Redis connection
	Address      string
	Password     string
	Database     int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int

	// Connection timeouts
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Cache behavior
	KeyPrefix   string
	DefaultTTL  time.Duration
	MaxItemSize int64
	LockTimeout time.Duration
}

// DefaultConfig returns a default Redis store configuration
func DefaultConfig() *Config {
	return &Config{
		Address:     "localhost:6379",
		PoolSize:    10,
		DialTimeout: 5 * time.Second,
		KeyPrefix:   DefaultKeyPrefix,
		DefaultTTL:  5 * time.Minute,
		LockTimeout: 5 * time.Second,
	}
}

// envelope is the JSON document stored per entry, carrying the metadata
// Redis itself cannot hold.
type envelope struct {
	Value             []byte         `json:"value"`
	CreatedAt         time.Time      `json:"created_at"`
	Priority          cache.Priority `json:"priority"`
	SlidingExpiration time.Duration  `json:"sliding_expiration,omitempty"`
}

// Store is a Redis-backed cache store
type Store struct {
	client   *goredis.Client
	config   *Config
	logger   *slog.Logger
	keyLocks *cache.KeyMutex

	hits   uint64
	misses uint64
}

// New creates a Redis store and verifies connectivity with a bounded
// ping. Connection failures surface as a single configuration-level
// backend error.
func New(config *Config) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = DefaultKeyPrefix
	}
	if config.LockTimeout <= 0 {
		config.LockTimeout = 5 * time.Second
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:         config.Address,
		Password:     config.Password,
		DB:           config.Database,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, cache.NewBackendError("connecting to Redis at "+config.Address, err)
	}

	s := &Store{
		client:   client,
		config:   config,
		logger:   slog.Default().With("component", "redis-cache"),
		keyLocks: cache.NewKeyMutex(),
	}

	s.logger.Info("Redis cache initialized",
		"address", config.Address,
		"database", config.Database,
		"key_prefix", config.KeyPrefix,
	)
	return s, nil
}

// Get retrieves a value. Backend and decode failures degrade to a miss;
// an undecodable entry is purged.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			s.logger.Error("failed to get cache entry", "key", key, "error", err)
		}
		atomic.AddUint64(&s.misses, 1)
		return nil, false, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.logger.Warn("dropping undecodable cache entry", "key", key, "error", err)
		s.client.Del(ctx, s.key(key))
		atomic.AddUint64(&s.misses, 1)
		return nil, false, nil
	}

	if env.SlidingExpiration > 0 {
		// Best-effort deadline extension; a failure here only shortens
		// the entry's life.
		s.client.Expire(ctx, s.key(key), env.SlidingExpiration)
	}

	atomic.AddUint64(&s.hits, 1)
	return env.Value, true, nil
}

// Set stores a value. Oversized items are rejected; write failures
// surface as backend errors.
func (s *Store) Set(ctx context.Context, key string, value []byte, opts cache.Options) error {
	if s.config.MaxItemSize > 0 && int64(len(value)) > s.config.MaxItemSize {
		return cache.NewItemTooLargeError(key, int64(len(value)), s.config.MaxItemSize)
	}

	env := envelope{
		Value:             value,
		CreatedAt:         time.Now(),
		Priority:          opts.Priority,
		SlidingExpiration: opts.SlidingExpiration,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return cache.NewSerializationError("encoding entry for key "+key, err)
	}

	if err := s.client.Set(ctx, s.key(key), data, s.ttl(opts)).Err(); err != nil {
		return cache.NewBackendError("setting key "+key, err)
	}
	return nil
}

// Remove deletes a value
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return cache.NewBackendError("removing key "+key, err)
	}
	return nil
}

// Refresh re-extends the sliding window of an entry without returning
// its value. Entries without a sliding window keep their deadline.
func (s *Store) Refresh(ctx context.Context, key string) error {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil
		}
		return cache.NewBackendError("refreshing key "+key, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil
	}
	if env.SlidingExpiration > 0 {
		s.client.Expire(ctx, s.key(key), env.SlidingExpiration)
	}
	return nil
}

// Exists reports whether an entry is present. Redis expires entries
// itself, so presence implies liveness.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(key)).Result()
	if err != nil {
		return false, cache.NewBackendError("checking key "+key, err)
	}
	return n > 0, nil
}

// GetOrSet returns the cached value for key, computing it at most once
// per miss among callers in this process. Coordination is process-local;
// multi-node stampedes are out of scope.
func (s *Store) GetOrSet(ctx context.Context, key string, factory cache.Factory, opts cache.Options) ([]byte, error) {
	if value, found, err := s.Get(ctx, key); err != nil {
		return nil, err
	} else if found {
		return value, nil
	}

	release, err := s.keyLocks.Acquire(ctx, key, s.config.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer release()

	if value, found, err := s.Get(ctx, key); err != nil {
		return nil, err
	} else if found {
		return value, nil
	}

	value, err := factory(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Set(ctx, key, value, opts); err != nil {
		return nil, err
	}
	return value, nil
}

// Clear removes all entries under this store's key prefix, leaving the
// rest of the Redis database untouched.
func (s *Store) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.config.KeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return cache.NewBackendError("clearing key "+iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return cache.NewBackendError("scanning keys for clear", err)
	}
	return nil
}

// Stats returns cache statistics. The item count walks the prefixed
// keyspace; memory usage is not tracked for the Redis backend.
func (s *Store) Stats() cache.Statistics {
	stats := cache.Statistics{
		Hits:   atomic.LoadUint64(&s.hits),
		Misses: atomic.LoadUint64(&s.misses),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	iter := s.client.Scan(ctx, 0, s.config.KeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		stats.TotalItems++
	}
	return stats
}

// Close releases the underlying Redis client
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(key string) string {
	return s.config.KeyPrefix + key
}

// ttl resolves the entry lifetime from options and the default TTL
func (s *Store) ttl(opts cache.Options) time.Duration {
	if !opts.AbsoluteExpiration.IsZero() {
		if d := time.Until(opts.AbsoluteExpiration); d > 0 {
			return d
		}
		return time.Nanosecond
	}
	if opts.TTL > 0 {
		return opts.TTL
	}
	return s.config.DefaultTTL
}
