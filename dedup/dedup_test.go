package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/nexolabs/nexo-cache/cache"
)

// fixedCalculator always returns the same score; it isolates the
// threshold logic from real tokenization.
type fixedCalculator struct {
	score float64
}

func (c *fixedCalculator) Name() string { return "fixed" }

func (c *fixedCalculator) Compute(a, b string) float64 { return c.score }

func newService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	store := cache.NewMemoryStore(cache.DefaultConfig(), nil)
	t.Cleanup(store.Close)
	return NewService(store, opts...)
}

func TestFindSimilarResponse_ExactHit(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if err := svc.CacheResponse(ctx, "hash-1", "what is the weather", "sunny", time.Hour); err != nil {
		t.Fatalf("CacheResponse failed: %v", err)
	}

	resp, found, err := svc.FindSimilarResponse(ctx, "hash-1", "what is the weather")
	if err != nil {
		t.Fatalf("FindSimilarResponse failed: %v", err)
	}
	if !found {
		t.Fatal("Expected exact hash hit")
	}
	if resp.ResponseContent != "sunny" {
		t.Fatalf("Expected cached response, got %q", resp.ResponseContent)
	}
	// Exact hits carry no similarity score.
	if resp.SimilarityScore != 0 {
		t.Fatalf("Expected no similarity score on exact hit, got %f", resp.SimilarityScore)
	}
	if resp.AccessCount != 1 {
		t.Fatalf("Expected access count 1, got %d", resp.AccessCount)
	}
}

func TestFindSimilarResponse_Miss(t *testing.T) {
	svc := newService(t)

	_, found, err := svc.FindSimilarResponse(context.Background(), "unknown", "never cached")
	if err != nil {
		t.Fatalf("FindSimilarResponse failed: %v", err)
	}
	if found {
		t.Fatal("Expected miss for unknown request")
	}
}

func TestFindSimilarResponse_ContentFallback(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if err := svc.CacheResponse(ctx, "hash-a", "What is   the Weather", "sunny", time.Hour); err != nil {
		t.Fatalf("CacheResponse failed: %v", err)
	}

	// Different request hash, but the content normalizes identically.
	resp, found, err := svc.FindSimilarResponse(ctx, "hash-b", "what is the weather")
	if err != nil {
		t.Fatalf("FindSimilarResponse failed: %v", err)
	}
	if !found {
		t.Fatal("Expected content-hash fallback hit")
	}
	if resp.ResponseContent != "sunny" {
		t.Fatalf("Expected cached response, got %q", resp.ResponseContent)
	}
	if resp.SimilarityScore != 1 {
		t.Fatalf("Expected similarity score 1 for identical normalized content, got %f", resp.SimilarityScore)
	}
}

func TestFindSimilarResponse_FallbackBelowThreshold(t *testing.T) {
	svc := newService(t, WithCalculator(&fixedCalculator{score: 0.2}))
	ctx := context.Background()

	if err := svc.CacheResponse(ctx, "hash-a", "some request content", "answer", time.Hour); err != nil {
		t.Fatalf("CacheResponse failed: %v", err)
	}

	_, found, err := svc.FindSimilarResponse(ctx, "hash-b", "some  request   content")
	if err != nil {
		t.Fatalf("FindSimilarResponse failed: %v", err)
	}
	if found {
		t.Fatal("Expected candidate below the similarity threshold to be rejected")
	}
}

func TestFindSimilarResponse_SimilarityDisabled(t *testing.T) {
	svc := newService(t, WithSimilarityMatching(false))
	ctx := context.Background()

	if err := svc.CacheResponse(ctx, "hash-a", "what is the weather", "sunny", time.Hour); err != nil {
		t.Fatalf("CacheResponse failed: %v", err)
	}

	// Exact lookup still works.
	if _, found, _ := svc.FindSimilarResponse(ctx, "hash-a", "what is the weather"); !found {
		t.Fatal("Expected exact hit with similarity disabled")
	}
	// Content fallback does not.
	if _, found, _ := svc.FindSimilarResponse(ctx, "hash-b", "what is the weather"); found {
		t.Fatal("Expected no fallback hit with similarity disabled")
	}
}

func TestContentHash_Normalization(t *testing.T) {
	base := ContentHash("What is the weather today")
	for _, variant := range []string{
		"what is the weather today",
		"  What   is the\tweather today ",
		"WHAT IS THE WEATHER TODAY",
	} {
		if got := ContentHash(variant); got != base {
			t.Fatalf("Expected %q to normalize to the same hash", variant)
		}
	}

	if ContentHash("what is the weather tomorrow") == base {
		t.Fatal("Expected different content to hash differently")
	}
}

func TestRequestFingerprint_Deterministic(t *testing.T) {
	req := &openai.ChatCompletionRequest{
		Model: openai.GPT4o,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "hello"},
		},
		Temperature: 0.7,
		MaxTokens:   256,
	}

	hash1, content1 := RequestFingerprint(req)
	hash2, content2 := RequestFingerprint(req)
	if hash1 != hash2 || content1 != content2 {
		t.Fatal("Expected identical requests to fingerprint identically")
	}
	if len(hash1) != 64 {
		t.Fatalf("Expected a sha256 hex hash, got %q", hash1)
	}
}

func TestRequestFingerprint_SensitiveToParameters(t *testing.T) {
	base := openai.ChatCompletionRequest{
		Model: openai.GPT4o,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "hello"},
		},
		Temperature: 0.7,
	}
	baseHash, _ := RequestFingerprint(&base)

	hotter := base
	hotter.Temperature = 1.2
	if hash, _ := RequestFingerprint(&hotter); hash == baseHash {
		t.Fatal("Expected temperature change to alter the fingerprint")
	}

	otherModel := base
	otherModel.Model = openai.GPT4oMini
	if hash, _ := RequestFingerprint(&otherModel); hash == baseHash {
		t.Fatal("Expected model change to alter the fingerprint")
	}

	moreTurns := base
	moreTurns.Messages = append(moreTurns.Messages, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleAssistant, Content: "hi",
	})
	if hash, _ := RequestFingerprint(&moreTurns); hash == baseHash {
		t.Fatal("Expected added message to alter the fingerprint")
	}
}
