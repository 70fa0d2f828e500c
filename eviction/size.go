package eviction

import (
	"sort"

	"github.com/nexolabs/nexo-cache/cache"
)

// SizeStrategy orders candidates by size, largest first, so a single
// eviction frees as much of the byte budget as possible.
type SizeStrategy struct{}

// NewSizeStrategy creates a size-based strategy
func NewSizeStrategy() *SizeStrategy {
	return &SizeStrategy{}
}

func (s *SizeStrategy) Name() string { return "size" }

func (s *SizeStrategy) Priority() int { return 3 }

// FilterCandidates returns the target largest items
func (s *SizeStrategy) FilterCandidates(items []*cache.Item, target int) []*cache.Item {
	ordered := make([]*cache.Item, len(items))
	copy(ordered, items)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].SizeBytes > ordered[j].SizeBytes
	})
	return clamp(ordered, target)
}
