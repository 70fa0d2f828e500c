package hook

import (
	"testing"

	"github.com/nexolabs/nexo-cache/cache"
	"github.com/nexolabs/nexo-cache/monitor"
)

type evictionRecorder struct {
	evicted []*cache.Item
}

func (h *evictionRecorder) Name() string { return "eviction-recorder" }

func (h *evictionRecorder) OnEvict(item *cache.Item) {
	h.evicted = append(h.evicted, item)
}

type operationRecorder struct {
	ops    []monitor.Operation
	errors []monitor.Operation
}

func (h *operationRecorder) Name() string { return "operation-recorder" }

func (h *operationRecorder) OnOperation(op monitor.Operation) {
	h.ops = append(h.ops, op)
}

func (h *operationRecorder) OnError(op monitor.Operation) {
	h.errors = append(h.errors, op)
}

type bareHook struct{}

func (h *bareHook) Name() string { return "bare" }

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register(&evictionRecorder{}, &operationRecorder{})

	if len(r.All()) != 2 {
		t.Fatalf("Expected 2 hooks, got %d", len(r.All()))
	}
	if len(r.EvictionHooks()) != 1 {
		t.Fatalf("Expected 1 eviction hook, got %d", len(r.EvictionHooks()))
	}
	// operationRecorder implements both operation and error hooks.
	if len(r.OperationHooks()) != 1 || len(r.ErrorHooks()) != 1 {
		t.Fatalf("Expected operation recorder in both lists, got %d/%d",
			len(r.OperationHooks()), len(r.ErrorHooks()))
	}
}

func TestRegistry_UnknownHookIgnored(t *testing.T) {
	r := NewRegistry()
	r.Register(&bareHook{})

	if len(r.All()) != 1 {
		t.Fatalf("Expected hook to be tracked, got %d", len(r.All()))
	}
	if len(r.EvictionHooks())+len(r.OperationHooks())+len(r.ErrorHooks()) != 0 {
		t.Fatal("Expected no typed registrations for a bare hook")
	}
}

func TestRegistry_EmitEvict(t *testing.T) {
	r := NewRegistry()
	rec := &evictionRecorder{}
	r.Register(rec)

	item := &cache.Item{Key: "victim"}
	r.EmitEvict(item)

	if len(rec.evicted) != 1 || rec.evicted[0].Key != "victim" {
		t.Fatalf("Expected eviction to be dispatched, got %+v", rec.evicted)
	}
}

func TestRegistry_Observe(t *testing.T) {
	r := NewRegistry()
	rec := &operationRecorder{}
	r.Register(rec)

	r.Observe(monitor.Operation{Kind: monitor.KindGet, Success: true, Hit: true})
	r.Observe(monitor.Operation{Kind: monitor.KindSet, Success: false, Error: "boom"})

	if len(rec.ops) != 2 {
		t.Fatalf("Expected 2 observed operations, got %d", len(rec.ops))
	}
	if len(rec.errors) != 1 || rec.errors[0].Error != "boom" {
		t.Fatalf("Expected only the failed operation in errors, got %+v", rec.errors)
	}
}
