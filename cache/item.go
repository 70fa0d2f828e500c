package cache

import "time"

// Priority ranks an entry's resistance to eviction
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	// PriorityNeverRemove exempts an entry from capacity eviction entirely.
	// It still expires.
	PriorityNeverRemove
)

// String returns the human-readable name of the priority
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityNeverRemove:
		return "never-remove"
	default:
		return "unknown"
	}
}

// Item is a single cache entry together with its access metadata
type Item struct {
	Key               string
	Value             []byte
	CreatedAt         time.Time
	LastAccessedAt    time.Time
	AccessCount       int64
	Priority          Priority
	SizeBytes         int64
	ExpiresAt         time.Time
	SlidingExpiration time.Duration
}

// Expired reports whether the item is logically dead at the given instant.
// An expired item must be treated as absent even while physically present.
func (it *Item) Expired(now time.Time) bool {
	return !it.ExpiresAt.IsZero() && !now.Before(it.ExpiresAt)
}

// touch records a successful read: access metadata is updated and, for
// entries with a sliding window, the deadline moves forward.
func (it *Item) touch(now time.Time) {
	it.LastAccessedAt = now
	it.AccessCount++
	if it.SlidingExpiration > 0 {
		it.ExpiresAt = now.Add(it.SlidingExpiration)
	}
}
