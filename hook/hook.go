// Package hook lets applications observe cache behavior — evictions,
// recorded operations, failures — without wrapping the store themselves.
package hook

import (
	"fmt"
	"log/slog"

	"github.com/nexolabs/nexo-cache/cache"
	"github.com/nexolabs/nexo-cache/monitor"
)

// Hook is the base interface for all hooks
type Hook interface {
	// Name returns the unique name of this hook
	Name() string
}

// EvictionHook is called for every item the eviction policy removes
type EvictionHook interface {
	Hook
	// OnEvict is called after the item has been removed from the store
	OnEvict(item *cache.Item)
}

// OperationHook is called for every recorded cache operation
type OperationHook interface {
	Hook
	// OnOperation receives the recorded operation
	OnOperation(op monitor.Operation)
}

// ErrorHook is called for every failed cache operation
type ErrorHook interface {
	Hook
	// OnError receives the failed operation; op.Error carries the message
	OnError(op monitor.Operation)
}

// Registry manages registered hooks
type Registry struct {
	hooks          []Hook
	evictionHooks  []EvictionHook
	operationHooks []OperationHook
	errorHooks     []ErrorHook
}

// NewRegistry creates a new hook registry
func NewRegistry() *Registry {
	return &Registry{
		hooks:          make([]Hook, 0),
		evictionHooks:  make([]EvictionHook, 0),
		operationHooks: make([]OperationHook, 0),
		errorHooks:     make([]ErrorHook, 0),
	}
}

// Register registers hooks based on their concrete types
func (r *Registry) Register(hooks ...Hook) {
	for _, hook := range hooks {
		r.hooks = append(r.hooks, hook)

		known := false
		if h, ok := hook.(EvictionHook); ok {
			r.evictionHooks = append(r.evictionHooks, h)
			known = true
		}
		if h, ok := hook.(OperationHook); ok {
			r.operationHooks = append(r.operationHooks, h)
			known = true
		}
		if h, ok := hook.(ErrorHook); ok {
			r.errorHooks = append(r.errorHooks, h)
			known = true
		}
		if !known {
			slog.Warn(fmt.Sprintf("unknown hook type: %T", hook))
		}
	}
}

// EvictionHooks returns all eviction hooks
func (r *Registry) EvictionHooks() []EvictionHook {
	return r.evictionHooks
}

// OperationHooks returns all operation hooks
func (r *Registry) OperationHooks() []OperationHook {
	return r.operationHooks
}

// ErrorHooks returns all error hooks
func (r *Registry) ErrorHooks() []ErrorHook {
	return r.errorHooks
}

// All returns all registered hooks
func (r *Registry) All() []Hook {
	return r.hooks
}

// EmitEvict dispatches an evicted item to all eviction hooks
func (r *Registry) EmitEvict(item *cache.Item) {
	for _, h := range r.evictionHooks {
		h.OnEvict(item)
	}
}

// Observe dispatches a recorded operation to all operation hooks, and to
// the error hooks when it failed.
func (r *Registry) Observe(op monitor.Operation) {
	for _, h := range r.operationHooks {
		h.OnOperation(op)
	}
	if !op.Success {
		for _, h := range r.errorHooks {
			h.OnError(op)
		}
	}
}
