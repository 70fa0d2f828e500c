// Package nexo_cache assembles a fully decorated cache store from
// configuration: an in-memory or Redis backend wrapped, inside out, by
// compression and monitoring decorators. Callers receive a composed
// store and talk to it through the cache.Store contract only.
package nexo_cache

import (
	"fmt"

	"github.com/nexolabs/nexo-cache/cache"
	"github.com/nexolabs/nexo-cache/decorator"
	"github.com/nexolabs/nexo-cache/eviction"
	"github.com/nexolabs/nexo-cache/hook"
	"github.com/nexolabs/nexo-cache/monitor"
	"github.com/nexolabs/nexo-cache/redis"
)

// Cache bundles the composed store with its monitor so callers can reach
// reports and recommendations.
type Cache struct {
	cache.Store

	// Monitor is nil when monitoring is disabled
	Monitor *monitor.PerformanceMonitor

	base interface{ Close() }
}

// Close releases backend resources and stops background work
func (c *Cache) Close() {
	if c.base != nil {
		c.base.Close()
	}
}

// Option configures the assembly
type Option func(*builder)

type builder struct {
	hooks   *hook.Registry
	policy  cache.EvictionPolicy
	metrics *monitor.Metrics
}

// WithHooks sets the hook registry
func WithHooks(hooks *hook.Registry) Option {
	return func(b *builder) {
		b.hooks = hooks
	}
}

// WithHook registers a single hook
func WithHook(h hook.Hook) Option {
	return func(b *builder) {
		b.hooks.Register(h)
	}
}

// WithEvictionPolicy overrides the configured eviction policy
func WithEvictionPolicy(policy cache.EvictionPolicy) Option {
	return func(b *builder) {
		b.policy = policy
	}
}

// WithMetrics sets the Prometheus collectors used by the monitor
func WithMetrics(metrics *monitor.Metrics) Option {
	return func(b *builder) {
		b.metrics = metrics
	}
}

// New builds the cache described by cfg
func New(cfg *Config, opts ...Option) (*Cache, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	b := &builder{hooks: hook.NewRegistry()}
	for _, opt := range opts {
		opt(b)
	}

	var mon *monitor.PerformanceMonitor
	if cfg.Monitoring.Enabled {
		monOpts := []monitor.Option{
			monitor.WithBufferSize(cfg.Monitoring.BufferSize),
			monitor.WithObserver(b.hooks.Observe),
		}
		metrics := b.metrics
		if metrics == nil && cfg.Monitoring.Metrics {
			metrics = monitor.NewMetrics(cfg.Monitoring.Namespace)
		}
		if metrics != nil {
			monOpts = append(monOpts, monitor.WithMetrics(metrics))
		}
		mon = monitor.NewPerformanceMonitor(monOpts...)
	}

	base, closer, err := buildBase(cfg, b)
	if err != nil {
		return nil, err
	}

	store := base
	if cfg.Compression.Enabled {
		compOpts := []decorator.CompressedOption{}
		if cfg.Compression.Threshold > 0 {
			compOpts = append(compOpts, decorator.WithThreshold(cfg.Compression.Threshold))
		}
		if cfg.Compression.Level != 0 {
			compOpts = append(compOpts, decorator.WithLevel(cfg.Compression.Level))
		}
		store = decorator.NewCompressed(store, compOpts...)
	}
	if mon != nil {
		store = decorator.NewMonitored(store, cfg.Name, mon)
	}

	return &Cache{Store: store, Monitor: mon, base: closer}, nil
}

// buildBase creates the backend store selected by the configuration
func buildBase(cfg *Config, b *builder) (cache.Store, interface{ Close() }, error) {
	switch cfg.Backend {
	case BackendRedis:
		store, err := redis.New(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return store, redisCloser{store}, nil

	case BackendInMemory, "":
		memCfg := cfg.Memory
		if memCfg == nil {
			memCfg = cache.DefaultConfig()
		}
		if memCfg.OnEvict == nil && len(b.hooks.EvictionHooks()) > 0 {
			memCfg.OnEvict = b.hooks.EmitEvict
		}

		policy := b.policy
		if policy == nil {
			if cfg.EvictionPolicy == eviction.Intelligent {
				weights := cfg.EvictionWeights
				if weights == (eviction.Weights{}) {
					weights = eviction.DefaultWeights()
				}
				policy = eviction.NewIntelligentPolicy(weights)
			} else {
				policy = eviction.NewPolicy(cfg.EvictionPolicy)
			}
		}

		store := cache.NewMemoryStore(memCfg, policy)
		return store, store, nil

	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// redisCloser adapts the Redis store's error-returning Close
type redisCloser struct {
	store *redis.Store
}

func (c redisCloser) Close() {
	_ = c.store.Close()
}
