package eviction

import (
	"sort"

	"github.com/nexolabs/nexo-cache/cache"
)

// LRUStrategy orders candidates by last access time, oldest first
type LRUStrategy struct{}

// NewLRUStrategy creates a least-recently-used strategy
func NewLRUStrategy() *LRUStrategy {
	return &LRUStrategy{}
}

func (s *LRUStrategy) Name() string { return "lru" }

func (s *LRUStrategy) Priority() int { return 1 }

// FilterCandidates returns the target least recently used items
func (s *LRUStrategy) FilterCandidates(items []*cache.Item, target int) []*cache.Item {
	ordered := make([]*cache.Item, len(items))
	copy(ordered, items)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].LastAccessedAt.Before(ordered[j].LastAccessedAt)
	})
	return clamp(ordered, target)
}

// clamp truncates an ordered candidate list to target entries
func clamp(items []*cache.Item, target int) []*cache.Item {
	if target > 0 && target < len(items) {
		return items[:target]
	}
	return items
}
