package cache

import (
	"context"
	"testing"
)

type weatherReport struct {
	City    string  `json:"city"`
	Celsius float64 `json:"celsius"`
}

func TestTypedRoundTrip(t *testing.T) {
	store := NewMemoryStore(DefaultConfig(), nil)
	defer store.Close()
	ctx := context.Background()

	want := weatherReport{City: "Berlin", Celsius: 21.5}
	if err := SetAs(ctx, store, "weather", want, Options{}); err != nil {
		t.Fatalf("SetAs failed: %v", err)
	}

	got, found, err := GetAs[weatherReport](ctx, store, "weather")
	if err != nil {
		t.Fatalf("GetAs failed: %v", err)
	}
	if !found {
		t.Fatal("Expected typed value to be found")
	}
	if got != want {
		t.Fatalf("Expected %+v, got %+v", want, got)
	}
}

func TestGetAs_CorruptEntryPurged(t *testing.T) {
	store := NewMemoryStore(DefaultConfig(), nil)
	defer store.Close()
	ctx := context.Background()

	if err := store.Set(ctx, "corrupt", []byte("not json"), Options{}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	_, found, err := GetAs[weatherReport](ctx, store, "corrupt")
	if err != nil {
		t.Fatalf("Expected decode failure to be swallowed, got %v", err)
	}
	if found {
		t.Fatal("Expected corrupt entry to read as a miss")
	}
	if exists, _ := store.Exists(ctx, "corrupt"); exists {
		t.Fatal("Expected corrupt entry to be purged")
	}
}

func TestGetOrSetAs(t *testing.T) {
	store := NewMemoryStore(DefaultConfig(), nil)
	defer store.Close()
	ctx := context.Background()

	calls := 0
	factory := func(ctx context.Context) (weatherReport, error) {
		calls++
		return weatherReport{City: "Oslo", Celsius: -3}, nil
	}

	first, err := GetOrSetAs(ctx, store, "oslo", factory, Options{})
	if err != nil {
		t.Fatalf("GetOrSetAs failed: %v", err)
	}
	second, err := GetOrSetAs(ctx, store, "oslo", factory, Options{})
	if err != nil {
		t.Fatalf("GetOrSetAs failed: %v", err)
	}

	if calls != 1 {
		t.Fatalf("Expected factory to run once, ran %d times", calls)
	}
	if first != second {
		t.Fatalf("Expected cached value, got %+v then %+v", first, second)
	}
}
