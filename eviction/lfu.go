package eviction

import (
	"sort"

	"github.com/nexolabs/nexo-cache/cache"
)

// LFUStrategy orders candidates by access count, coldest first. Ties go
// to the least recently used item.
type LFUStrategy struct{}

// NewLFUStrategy creates a least-frequently-used strategy
func NewLFUStrategy() *LFUStrategy {
	return &LFUStrategy{}
}

func (s *LFUStrategy) Name() string { return "lfu" }

func (s *LFUStrategy) Priority() int { return 2 }

// FilterCandidates returns the target least frequently used items
func (s *LFUStrategy) FilterCandidates(items []*cache.Item, target int) []*cache.Item {
	ordered := make([]*cache.Item, len(items))
	copy(ordered, items)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].AccessCount != ordered[j].AccessCount {
			return ordered[i].AccessCount < ordered[j].AccessCount
		}
		return ordered[i].LastAccessedAt.Before(ordered[j].LastAccessedAt)
	})
	return clamp(ordered, target)
}
