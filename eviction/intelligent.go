package eviction

import (
	"sort"
	"time"

	"github.com/nexolabs/nexo-cache/cache"
)

// Weights tune the intelligent policy's eviction score. They are
// configuration, not logic: negative weights pull a term toward eviction
// (lower score evicts first), positive weights protect.
type Weights struct {
	// Age weighs minutes since creation
	Age float64

	// Access weighs 1/(accessRate+1), which approaches 1 for cold items
	Access float64

	// Priority weighs the item's priority ordinal
	Priority float64

	// Size weighs the item's size in bytes
	Size float64

	// LastAccess weighs minutes since the last read
	LastAccess float64
}

// DefaultWeights favor evicting cold, low-priority, large, stale items
func DefaultWeights() Weights {
	return Weights{
		Age:        -1.0,
		Access:     -2.0,
		Priority:   10.0,
		Size:       -0.001,
		LastAccess: -1.5,
	}
}

// Score computes the eviction score of an item at the given instant.
// Lower means more evictable.
func (w Weights) Score(item *cache.Item, now time.Time) float64 {
	ageMinutes := now.Sub(item.CreatedAt).Minutes()
	if ageMinutes < 0 {
		ageMinutes = 0
	}

	accessRate := 0.0
	if ageMinutes > 0 {
		accessRate = float64(item.AccessCount) / ageMinutes
	} else {
		accessRate = float64(item.AccessCount)
	}

	sinceAccess := now.Sub(item.LastAccessedAt).Minutes()
	if sinceAccess < 0 {
		sinceAccess = 0
	}

	return ageMinutes*w.Age +
		(1/(accessRate+1))*w.Access +
		float64(item.Priority)*w.Priority +
		float64(item.SizeBytes)*w.Size +
		sinceAccess*w.LastAccess
}

// IntelligentPolicy is the composite policy: each registered strategy
// narrows the candidate set in ascending priority order, then the
// survivors are ranked by weighted score. The two-phase design keeps
// selection cost proportional to the candidate set, not the whole cache.
type IntelligentPolicy struct {
	strategies []Strategy
	weights    Weights

	// narrowFactor bounds how aggressively each filter stage shrinks the
	// candidate set relative to the number of victims needed.
	narrowFactor int
}

// NewIntelligentPolicy creates a composite policy. With no strategies
// given, the full LRU/LFU/size/priority chain is registered.
func NewIntelligentPolicy(weights Weights, strategies ...Strategy) *IntelligentPolicy {
	if len(strategies) == 0 {
		strategies = []Strategy{
			NewLRUStrategy(),
			NewLFUStrategy(),
			NewSizeStrategy(),
			NewPriorityStrategy(),
		}
	}
	sort.SliceStable(strategies, func(i, j int) bool {
		return strategies[i].Priority() < strategies[j].Priority()
	})

	return &IntelligentPolicy{
		strategies:   strategies,
		weights:      weights,
		narrowFactor: 4,
	}
}

// SelectVictims returns up to needed items, most evictable first
func (p *IntelligentPolicy) SelectVictims(items []*cache.Item, needed int) []*cache.Item {
	if needed <= 0 || len(items) == 0 {
		return nil
	}

	target := needed * p.narrowFactor
	candidates := items
	for _, strategy := range p.strategies {
		if len(candidates) <= needed {
			break
		}
		candidates = strategy.FilterCandidates(candidates, max(target, needed))
	}

	now := time.Now()
	scored := make([]*cache.Item, len(candidates))
	copy(scored, candidates)
	sort.SliceStable(scored, func(i, j int) bool {
		return p.weights.Score(scored[i], now) < p.weights.Score(scored[j], now)
	})

	return clamp(scored, needed)
}
