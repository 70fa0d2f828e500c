package eviction

import (
	"sort"

	"github.com/nexolabs/nexo-cache/cache"
)

// PriorityStrategy orders candidates by priority, lowest first, breaking
// ties by recency so stale low-priority items lead.
type PriorityStrategy struct{}

// NewPriorityStrategy creates a priority-based strategy
func NewPriorityStrategy() *PriorityStrategy {
	return &PriorityStrategy{}
}

func (s *PriorityStrategy) Name() string { return "priority" }

func (s *PriorityStrategy) Priority() int { return 4 }

// FilterCandidates returns the target lowest-priority items
func (s *PriorityStrategy) FilterCandidates(items []*cache.Item, target int) []*cache.Item {
	ordered := make([]*cache.Item, len(items))
	copy(ordered, items)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority < ordered[j].Priority
		}
		return ordered[i].LastAccessedAt.Before(ordered[j].LastAccessedAt)
	})
	return clamp(ordered, target)
}
