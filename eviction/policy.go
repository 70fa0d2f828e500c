// Package eviction implements the strategies a cache store consults when
// it must shed entries to stay within capacity. Single strategies order
// items by one structural property; the intelligent policy composes them
// into a filter chain and breaks ties with a weighted score.
package eviction

import (
	"github.com/nexolabs/nexo-cache/cache"
)

// Strategy is a cheap first-pass filter over eviction candidates. It
// returns at most target items, ordered most-evictable first.
type Strategy interface {
	// Name returns the unique name of this strategy
	Name() string

	// Priority orders strategies inside a composite policy; lower runs first
	Priority() int

	// FilterCandidates narrows items to the target most evictable ones
	FilterCandidates(items []*cache.Item, target int) []*cache.Item
}

// StrategyType identifies a supported eviction strategy
type StrategyType string

const (
	LRU           StrategyType = "lru"
	LFU           StrategyType = "lfu"
	SizeBased     StrategyType = "size"
	PriorityBased StrategyType = "priority"
	Intelligent   StrategyType = "intelligent"
)

// NewPolicy creates the eviction policy for the given type. Unknown types
// fall back to the intelligent composite policy.
func NewPolicy(t StrategyType) cache.EvictionPolicy {
	switch t {
	case LRU:
		return FromStrategy(NewLRUStrategy())
	case LFU:
		return FromStrategy(NewLFUStrategy())
	case SizeBased:
		return FromStrategy(NewSizeStrategy())
	case PriorityBased:
		return FromStrategy(NewPriorityStrategy())
	default:
		return NewIntelligentPolicy(DefaultWeights())
	}
}

// FromStrategy adapts a single strategy into a store-facing policy
func FromStrategy(s Strategy) cache.EvictionPolicy {
	return &strategyPolicy{strategy: s}
}

type strategyPolicy struct {
	strategy Strategy
}

// SelectVictims returns up to needed items in eviction order
func (p *strategyPolicy) SelectVictims(items []*cache.Item, needed int) []*cache.Item {
	if needed <= 0 || len(items) == 0 {
		return nil
	}
	return p.strategy.FilterCandidates(items, needed)
}
