package decorator

import (
	"context"
	"errors"
	"testing"

	"github.com/nexolabs/nexo-cache/cache"
	"github.com/nexolabs/nexo-cache/monitor"
)

// failingStore errors on every call; it stands in for a dead backend.
type failingStore struct {
	err error
}

func (f *failingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, f.err
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte, opts cache.Options) error {
	return f.err
}

func (f *failingStore) Remove(ctx context.Context, key string) error  { return f.err }
func (f *failingStore) Refresh(ctx context.Context, key string) error { return f.err }

func (f *failingStore) Exists(ctx context.Context, key string) (bool, error) {
	return false, f.err
}

func (f *failingStore) GetOrSet(ctx context.Context, key string, factory cache.Factory, opts cache.Options) ([]byte, error) {
	return nil, f.err
}

func (f *failingStore) Clear(ctx context.Context) error { return f.err }
func (f *failingStore) Stats() cache.Statistics         { return cache.Statistics{} }

func TestMonitored_RecordsOperations(t *testing.T) {
	mon := monitor.NewPerformanceMonitor()
	store := NewMonitored(newMemory(t), "primary", mon)
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("v"), cache.Options{}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, found, _ := store.Get(ctx, "k"); !found {
		t.Fatal("Expected hit")
	}
	if _, found, _ := store.Get(ctx, "missing"); found {
		t.Fatal("Expected miss")
	}
	if err := store.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	report := mon.Report()
	if report.TotalOperations != 4 {
		t.Fatalf("Expected 4 recorded operations, got %d", report.TotalOperations)
	}
	if report.OperationCounts[monitor.KindGet] != 2 {
		t.Fatalf("Expected 2 gets, got %d", report.OperationCounts[monitor.KindGet])
	}
	if report.HitRate != 0.5 {
		t.Fatalf("Expected hit rate 0.5, got %f", report.HitRate)
	}
}

func TestMonitored_GetOrSetHitFlag(t *testing.T) {
	var last monitor.Operation
	mon := monitor.NewPerformanceMonitor(monitor.WithObserver(func(op monitor.Operation) { last = op }))

	store := NewMonitored(newMemory(t), "primary", mon)
	ctx := context.Background()

	factory := func(ctx context.Context) ([]byte, error) { return []byte("v"), nil }

	// Cold call runs the factory and records a miss.
	if _, err := store.GetOrSet(ctx, "k", factory, cache.Options{}); err != nil {
		t.Fatalf("GetOrSet failed: %v", err)
	}
	if last.Kind != monitor.KindGet || last.Hit {
		t.Fatalf("Expected cold GetOrSet to record a get miss, got %+v", last)
	}

	// Warm call records a hit.
	if _, err := store.GetOrSet(ctx, "k", factory, cache.Options{}); err != nil {
		t.Fatalf("GetOrSet failed: %v", err)
	}
	if !last.Hit {
		t.Fatalf("Expected warm GetOrSet to record a hit, got %+v", last)
	}
}

func TestMonitored_ErrorsRecordedAndReturned(t *testing.T) {
	backendErr := errors.New("backend unavailable")
	mon := monitor.NewPerformanceMonitor()
	store := NewMonitored(&failingStore{err: backendErr}, "broken", mon)
	ctx := context.Background()

	if _, _, err := store.Get(ctx, "k"); !errors.Is(err, backendErr) {
		t.Fatalf("Expected backend error to pass through, got %v", err)
	}
	if err := store.Set(ctx, "k", []byte("v"), cache.Options{}); !errors.Is(err, backendErr) {
		t.Fatalf("Expected backend error to pass through, got %v", err)
	}

	report := mon.Report()
	if report.ErrorRate != 1.0 {
		t.Fatalf("Expected every operation to be recorded as failed, got %f", report.ErrorRate)
	}
}
