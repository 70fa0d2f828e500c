package cache

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryStore is the in-process cache backend. A single coarse lock guards
// the item map and the running size counter; per-key locks serialize
// GetOrSet factory calls so a miss computes its value at most once.
type MemoryStore struct {
	config *Config
	policy EvictionPolicy
	logger *slog.Logger

	lock  *timedMutex
	items map[string]*Item
	size  int64

	keyLocks *KeyMutex

	hits      uint64
	misses    uint64
	evictions uint64

	stopCh    chan struct{}
	closeOnce sync.Once
}

// NewMemoryStore creates an in-memory store with the given eviction policy.
// A nil policy falls back to least-recently-used selection.
func NewMemoryStore(config *Config, policy EvictionPolicy) *MemoryStore {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxItemSize <= 0 {
		config.MaxItemSize = config.MaxSize
	}
	if config.LockTimeout <= 0 {
		config.LockTimeout = 5 * time.Second
	}

	s := &MemoryStore{
		config:   config,
		policy:   policy,
		logger:   slog.Default().With("component", "memory-cache"),
		lock:     newTimedMutex(),
		items:    make(map[string]*Item),
		keyLocks: NewKeyMutex(),
		stopCh:   make(chan struct{}),
	}

	if config.CleanupInterval > 0 {
		go s.sweepLoop()
	}

	return s
}

// Get retrieves a value from the cache. An expired entry is purged and
// reported as a miss.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	unlock, err := s.lock.lock(ctx, "get", s.config.LockTimeout)
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	item, ok := s.items[key]
	if !ok {
		atomic.AddUint64(&s.misses, 1)
		return nil, false, nil
	}

	now := time.Now()
	if item.Expired(now) {
		s.removeLocked(key)
		atomic.AddUint64(&s.misses, 1)
		return nil, false, nil
	}

	item.touch(now)
	atomic.AddUint64(&s.hits, 1)
	return item.Value, true, nil
}

// Set stores a value in the cache, evicting first if the size or item
// budget would be exceeded. Oversized items are rejected synchronously.
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, opts Options) error {
	if !s.config.Enabled {
		return nil
	}

	size := int64(len(key) + len(value))
	if size > s.config.MaxItemSize {
		return NewItemTooLargeError(key, size, s.config.MaxItemSize)
	}

	unlock, err := s.lock.lock(ctx, "set", s.config.LockTimeout)
	if err != nil {
		return err
	}

	now := time.Now()
	item := &Item{
		Key:               key,
		Value:             value,
		CreatedAt:         now,
		LastAccessedAt:    now,
		Priority:          opts.Priority,
		SizeBytes:         size,
		ExpiresAt:         s.expiry(now, opts),
		SlidingExpiration: opts.SlidingExpiration,
	}
	if item.SlidingExpiration == 0 {
		item.SlidingExpiration = s.config.DefaultSlidingExpiration
	}

	if existing, ok := s.items[key]; ok {
		s.size -= existing.SizeBytes
		delete(s.items, key)
	}

	evicted := s.ensureCapacityLocked(size)

	s.items[key] = item
	s.size += size
	unlock()

	s.notifyEvicted(evicted)
	return nil
}

// Remove deletes a value from the cache
func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	unlock, err := s.lock.lock(ctx, "remove", s.config.LockTimeout)
	if err != nil {
		return err
	}
	defer unlock()

	s.removeLocked(key)
	return nil
}

// Refresh touches an entry's access time and sliding window without
// returning the value. Missing or expired keys are a no-op.
func (s *MemoryStore) Refresh(ctx context.Context, key string) error {
	unlock, err := s.lock.lock(ctx, "refresh", s.config.LockTimeout)
	if err != nil {
		return err
	}
	defer unlock()

	now := time.Now()
	if item, ok := s.items[key]; ok && !item.Expired(now) {
		item.touch(now)
	}
	return nil
}

// Exists reports whether a live entry is present. It does not count as a
// hit or miss and does not touch access metadata.
func (s *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	unlock, err := s.lock.lock(ctx, "exists", s.config.LockTimeout)
	if err != nil {
		return false, err
	}
	defer unlock()

	item, ok := s.items[key]
	return ok && !item.Expired(time.Now()), nil
}

// GetOrSet returns the cached value for key, computing and storing it via
// factory on a miss. Concurrent callers for the same cold key collapse
// into a single factory invocation; callers for different keys never
// block each other.
func (s *MemoryStore) GetOrSet(ctx context.Context, key string, factory Factory, opts Options) ([]byte, error) {
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

	// Another caller may have filled the key while we waited.
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

// Clear removes all values from the cache
func (s *MemoryStore) Clear(ctx context.Context) error {
	unlock, err := s.lock.lock(ctx, "clear", s.config.LockTimeout)
	if err != nil {
		return err
	}
	defer unlock()

	s.items = make(map[string]*Item)
	s.size = 0
	return nil
}

// Stats returns cache statistics. Expired-but-unswept entries are not
// counted.
func (s *MemoryStore) Stats() Statistics {
	stats := Statistics{
		Hits:      atomic.LoadUint64(&s.hits),
		Misses:    atomic.LoadUint64(&s.misses),
		Evictions: atomic.LoadUint64(&s.evictions),
	}

	unlock, err := s.lock.lock(context.Background(), "stats", s.config.LockTimeout)
	if err != nil {
		return stats
	}
	defer unlock()

	now := time.Now()
	for _, item := range s.items {
		if item.Expired(now) {
			continue
		}
		stats.TotalItems++
		stats.MemoryUsageBytes += item.SizeBytes
	}
	return stats
}

// Close stops the background sweep, if any
func (s *MemoryStore) Close() {
	s.closeOnce.Do(func() { close(s.stopCh) })
}

// expiry resolves the entry deadline from options and store defaults
func (s *MemoryStore) expiry(now time.Time, opts Options) time.Time {
	if !opts.AbsoluteExpiration.IsZero() {
		return opts.AbsoluteExpiration
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = s.config.DefaultTTL
	}
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}

// removeLocked deletes an entry and adjusts the size counter. Caller must
// hold the store lock.
func (s *MemoryStore) removeLocked(key string) {
	if item, ok := s.items[key]; ok {
		delete(s.items, key)
		s.size -= item.SizeBytes
	}
}

// ensureCapacityLocked evicts items until the incoming entry fits within
// both the size and the item count budget. Expired entries go first; the
// eviction policy ranks the rest. Caller must hold the store lock.
func (s *MemoryStore) ensureCapacityLocked(incoming int64) []*Item {
	if !s.overBudgetLocked(incoming) {
		return nil
	}

	now := time.Now()
	for key, item := range s.items {
		if item.Expired(now) {
			s.removeLocked(key)
		}
	}
	if !s.overBudgetLocked(incoming) {
		return nil
	}

	candidates := make([]*Item, 0, len(s.items))
	for _, item := range s.items {
		if item.Priority == PriorityNeverRemove {
			continue
		}
		candidates = append(candidates, item)
	}

	victims := s.selectVictims(candidates)

	var evicted []*Item
	for _, victim := range victims {
		if !s.overBudgetLocked(incoming) {
			break
		}
		s.removeLocked(victim.Key)
		atomic.AddUint64(&s.evictions, 1)
		evicted = append(evicted, victim)
	}

	if s.overBudgetLocked(incoming) {
		s.logger.Warn("cache still over budget after eviction",
			"size_bytes", s.size,
			"max_size", s.config.MaxSize,
			"items", len(s.items),
		)
	}
	return evicted
}

// overBudgetLocked reports whether admitting incoming bytes would exceed
// either capacity limit.
func (s *MemoryStore) overBudgetLocked(incoming int64) bool {
	if s.config.MaxSize > 0 && s.size+incoming > s.config.MaxSize {
		return true
	}
	return s.config.MaxItems > 0 && len(s.items) >= s.config.MaxItems
}

// selectVictims orders candidates by evictability via the configured
// policy, falling back to least-recently-used when none is set.
func (s *MemoryStore) selectVictims(candidates []*Item) []*Item {
	if s.policy != nil {
		return s.policy.SelectVictims(candidates, len(candidates))
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].LastAccessedAt.Before(candidates[j].LastAccessedAt)
	})
	return candidates
}

// notifyEvicted runs the eviction callback outside the store lock
func (s *MemoryStore) notifyEvicted(evicted []*Item) {
	if s.config.OnEvict == nil {
		return
	}
	for _, item := range evicted {
		s.config.OnEvict(item)
	}
}

// sweepLoop periodically removes expired entries. Disabled unless
// CleanupInterval is positive; expiration is otherwise purely lazy.
func (s *MemoryStore) sweepLoop() {
	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweepExpired()
		case <-s.stopCh:
			return
		}
	}
}

func (s *MemoryStore) sweepExpired() {
	unlock, err := s.lock.lock(context.Background(), "sweep", s.config.LockTimeout)
	if err != nil {
		return
	}
	defer unlock()

	now := time.Now()
	removed := 0
	for key, item := range s.items {
		if item.Expired(now) {
			s.removeLocked(key)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Debug("expired entries swept", "count", removed)
	}
}
