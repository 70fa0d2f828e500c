// Package decorator provides store wrappers that add cross-cutting
// behavior. Every decorator implements cache.Store and delegates to an
// inner store, so they compose in any order around a base backend.
package decorator

import (
	"context"
	"time"

	"github.com/nexolabs/nexo-cache/cache"
	"github.com/nexolabs/nexo-cache/monitor"
)

// Monitored records a monitor.Operation around every call on the inner
// store. Errors are recorded and then returned unchanged: monitoring must
// never swallow a failure.
type Monitored struct {
	inner   cache.Store
	name    string
	monitor *monitor.PerformanceMonitor
}

// NewMonitored wraps inner so that every operation is reported to mon
// under the given cache name.
func NewMonitored(inner cache.Store, name string, mon *monitor.PerformanceMonitor) *Monitored {
	return &Monitored{inner: inner, name: name, monitor: mon}
}

// Get retrieves a value, recording duration and the hit flag
func (d *Monitored) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	value, found, err := d.inner.Get(ctx, key)
	d.record(monitor.KindGet, key, start, found, err)
	return value, found, err
}

// Set stores a value, recording duration and outcome
func (d *Monitored) Set(ctx context.Context, key string, value []byte, opts cache.Options) error {
	start := time.Now()
	err := d.inner.Set(ctx, key, value, opts)
	d.record(monitor.KindSet, key, start, false, err)
	return err
}

// Remove deletes a value, recording duration and outcome
func (d *Monitored) Remove(ctx context.Context, key string) error {
	start := time.Now()
	err := d.inner.Remove(ctx, key)
	d.record(monitor.KindRemove, key, start, false, err)
	return err
}

// Refresh touches an entry, recording duration and outcome
func (d *Monitored) Refresh(ctx context.Context, key string) error {
	start := time.Now()
	err := d.inner.Refresh(ctx, key)
	d.record(monitor.KindRefresh, key, start, false, err)
	return err
}

// Exists checks for an entry, recording presence as the hit flag
func (d *Monitored) Exists(ctx context.Context, key string) (bool, error) {
	start := time.Now()
	found, err := d.inner.Exists(ctx, key)
	d.record(monitor.KindExists, key, start, found, err)
	return found, err
}

// GetOrSet delegates to the inner store, recording the call as a Get
// whose hit flag reports whether the factory ran.
func (d *Monitored) GetOrSet(ctx context.Context, key string, factory cache.Factory, opts cache.Options) ([]byte, error) {
	start := time.Now()
	invoked := false
	value, err := d.inner.GetOrSet(ctx, key, func(ctx context.Context) ([]byte, error) {
		invoked = true
		return factory(ctx)
	}, opts)
	d.record(monitor.KindGet, key, start, !invoked, err)
	return value, err
}

// Clear empties the cache, recording duration and outcome
func (d *Monitored) Clear(ctx context.Context) error {
	start := time.Now()
	err := d.inner.Clear(ctx)
	d.record(monitor.KindClear, "", start, false, err)
	return err
}

// Stats returns the inner store's statistics
func (d *Monitored) Stats() cache.Statistics {
	return d.inner.Stats()
}

func (d *Monitored) record(kind monitor.Kind, key string, start time.Time, hit bool, err error) {
	op := monitor.Operation{
		CacheName: d.name,
		Kind:      kind,
		Key:       key,
		Timestamp: start,
		Duration:  time.Since(start),
		Success:   err == nil,
		Hit:       hit,
	}
	if err != nil {
		op.Error = err.Error()
	}
	d.monitor.Record(op)
}
