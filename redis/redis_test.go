package redis

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/nexolabs/nexo-cache/cache"
)

// newTestStore connects to the Redis instance named by NEXO_REDIS_ADDR,
// skipping the test when none is available.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	addr := os.Getenv("NEXO_REDIS_ADDR")
	if addr == "" {
		t.Skip("NEXO_REDIS_ADDR not set, skipping Redis integration test")
	}

	config := DefaultConfig()
	config.Address = addr
	config.KeyPrefix = "nexo:test:"

	store, err := New(config)
	if err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Clear(context.Background())
		_ = store.Close()
	})
	return store
}

func TestRedisStore_SetGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	value := []byte("redis-value")
	if err := store.Set(ctx, "k", value, cache.Options{}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, found, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found || !bytes.Equal(got, value) {
		t.Fatalf("Expected %q, got %q (found=%v)", value, got, found)
	}
}

func TestRedisStore_Expiration(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "short", []byte("v"), cache.Options{TTL: 500 * time.Millisecond}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(time.Second)

	if _, found, _ := store.Get(ctx, "short"); found {
		t.Fatal("Expected key to expire")
	}
}

func TestRedisStore_RemoveAndExists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("v"), cache.Options{}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if found, _ := store.Exists(ctx, "k"); !found {
		t.Fatal("Expected key to exist")
	}

	if err := store.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if found, _ := store.Exists(ctx, "k"); found {
		t.Fatal("Expected key to be removed")
	}
}

func TestRedisStore_RejectsOversizedItem(t *testing.T) {
	store := newTestStore(t)
	store.config.MaxItemSize = 16

	err := store.Set(context.Background(), "big", bytes.Repeat([]byte("x"), 64), cache.Options{})
	if !cache.IsItemTooLarge(err) {
		t.Fatalf("Expected item-too-large error, got %v", err)
	}
}

func TestRedisStore_GetOrSet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	calls := 0
	factory := func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte("computed"), nil
	}

	for i := 0; i < 2; i++ {
		got, err := store.GetOrSet(ctx, "lazy", factory, cache.Options{})
		if err != nil {
			t.Fatalf("GetOrSet failed: %v", err)
		}
		if string(got) != "computed" {
			t.Fatalf("Expected computed value, got %q", got)
		}
	}
	if calls != 1 {
		t.Fatalf("Expected factory to run once, ran %d times", calls)
	}
}

func TestRedisStore_ClearRespectsPrefix(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		if err := store.Set(ctx, key, []byte("v"), cache.Options{}); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if stats := store.Stats(); stats.TotalItems != 0 {
		t.Fatalf("Expected empty keyspace after clear, got %d items", stats.TotalItems)
	}
}
