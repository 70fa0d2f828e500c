package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/sashabaranov/go-openai"

	nexo_cache "github.com/nexolabs/nexo-cache"
	"github.com/nexolabs/nexo-cache/cache"
	"github.com/nexolabs/nexo-cache/dedup"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using system environment variables")
	} else {
		slog.Info("Loaded .env file")
	}

	cfg := nexo_cache.ConfigFromEnv()
	slog.Info("Configuration", "backend", cfg.Backend, "compression", cfg.Compression.Enabled)

	store, err := nexo_cache.New(cfg)
	if err != nil {
		log.Fatalf("building cache: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	// Basic round-trip with a sliding window.
	err = store.Set(ctx, "greeting", []byte("hello from nexo-cache"), cache.Options{
		TTL:               time.Minute,
		SlidingExpiration: 30 * time.Second,
		Priority:          cache.PriorityHigh,
	})
	if err != nil {
		log.Fatalf("set: %v", err)
	}
	if value, found, _ := store.Get(ctx, "greeting"); found {
		slog.Info("Cache hit", "value", string(value))
	}

	// Typed access with stampede protection: concurrent callers for the
	// same cold key collapse into one factory invocation.
	type weather struct {
		City    string `json:"city"`
		Celsius int    `json:"celsius"`
	}
	report, err := cache.GetOrSetAs(ctx, store, "weather:berlin", func(ctx context.Context) (weather, error) {
		slog.Info("Computing expensive value")
		return weather{City: "Berlin", Celsius: 21}, nil
	}, cache.Options{TTL: 10 * time.Minute})
	if err != nil {
		log.Fatalf("get or set: %v", err)
	}
	slog.Info("Weather", "city", report.City, "celsius", report.Celsius)

	// Response deduplication for chat completions: a second request with
	// the same content is served from cache even under a different
	// request identifier.
	svc := dedup.NewService(store)

	req := &openai.ChatCompletionRequest{
		Model: openai.GPT4o,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "Summarize the quarterly report"},
		},
	}
	hash, content := dedup.RequestFingerprint(req)

	if _, found, _ := svc.FindSimilarResponse(ctx, hash, content); !found {
		slog.Info("Dedup miss, caching response")
		if err := svc.CacheResponse(ctx, hash, content, "The quarter closed ahead of plan.", time.Hour); err != nil {
			log.Fatalf("cache response: %v", err)
		}
	}
	if resp, found, _ := svc.FindSimilarResponse(ctx, hash, content); found {
		slog.Info("Dedup hit", "response", resp.ResponseContent)
	}

	// Performance report and tuning recommendations.
	if store.Monitor != nil {
		report := store.Monitor.Report()
		fmt.Printf("operations=%d hitRate=%.2f avg=%s p95=%s errors=%.2f\n",
			report.TotalOperations, report.HitRate,
			report.AverageLatency, report.P95Latency, report.ErrorRate)
		for _, rec := range store.Monitor.Recommendations() {
			fmt.Printf("[%s] %s\n", rec.Severity, rec.Message)
		}
	}

	stats := store.Stats()
	slog.Info("Statistics",
		"items", stats.TotalItems,
		"bytes", stats.MemoryUsageBytes,
		"hits", stats.Hits,
		"misses", stats.Misses,
		"evictions", stats.Evictions,
	)
}
