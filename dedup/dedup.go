// Package dedup avoids recomputing expensive responses for requests that
// are exact or near duplicates of something already answered. Responses
// are cached under their request hash and, when similarity matching is
// enabled, under a hash of the normalized request content.
package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nexolabs/nexo-cache/cache"
)

const (
	responseKeyPrefix = "resp:"
	contentKeyPrefix  = "content:"

	// defaultThreshold is the minimum similarity for a content-hash
	// fallback hit to be served
	defaultThreshold = 0.85
)

// CachedResponse is a previously computed response together with the
// request that produced it.
type CachedResponse struct {
	ID              string    `json:"id"`
	RequestHash     string    `json:"request_hash"`
	RequestContent  string    `json:"request_content"`
	ResponseContent string    `json:"response_content"`
	CreatedAt       time.Time `json:"created_at"`
	LastAccessedAt  time.Time `json:"last_accessed_at"`
	AccessCount     int64     `json:"access_count"`
	SizeBytes       int64     `json:"size_bytes"`

	// SimilarityScore is set when the response was found through the
	// content-similarity fallback rather than an exact hash match.
	SimilarityScore float64 `json:"similarity_score,omitempty"`
}

// Service deduplicates responses on top of a backing cache store
type Service struct {
	store      cache.Store
	calculator Calculator
	similarity bool
	threshold  float64
	logger     *slog.Logger
}

// Option configures the deduplication service
type Option func(*Service)

// WithCalculator sets the similarity calculator used to verify and score
// content-hash fallback hits
func WithCalculator(c Calculator) Option {
	return func(s *Service) {
		s.calculator = c
	}
}

// WithSimilarityMatching toggles the content-hash fallback lookup
func WithSimilarityMatching(enabled bool) Option {
	return func(s *Service) {
		s.similarity = enabled
	}
}

// WithThreshold sets the minimum similarity score for a fallback hit
func WithThreshold(t float64) Option {
	return func(s *Service) {
		if t > 0 {
			s.threshold = t
		}
	}
}

// NewService creates a deduplication service backed by the given store.
// Similarity matching with a Jaccard calculator is on by default.
func NewService(store cache.Store, opts ...Option) *Service {
	s := &Service{
		store:      store,
		calculator: NewJaccardCalculator(),
		similarity: true,
		threshold:  defaultThreshold,
		logger:     slog.Default().With("component", "response-dedup"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindSimilarResponse looks up a cached response for the request, first
// by exact request hash, then through the content-hash fallback when
// similarity matching is enabled. Fallback hits are verified against the
// similarity threshold and annotated with their score.
func (s *Service) FindSimilarResponse(ctx context.Context, requestHash, requestContent string) (*CachedResponse, bool, error) {
	resp, found, err := cache.GetAs[CachedResponse](ctx, s.store, responseKeyPrefix+requestHash)
	if err != nil {
		return nil, false, err
	}
	if found {
		resp.AccessCount++
		resp.LastAccessedAt = time.Now()
		return &resp, true, nil
	}

	if !s.similarity {
		return nil, false, nil
	}

	contentKey := contentKeyPrefix + ContentHash(requestContent)
	resp, found, err = cache.GetAs[CachedResponse](ctx, s.store, contentKey)
	if err != nil || !found {
		return nil, false, err
	}

	score := s.calculator.Compute(requestContent, resp.RequestContent)
	if score < s.threshold {
		s.logger.Debug("content-hash candidate below similarity threshold",
			"score", score,
			"threshold", s.threshold,
		)
		return nil, false, nil
	}

	resp.AccessCount++
	resp.LastAccessedAt = time.Now()
	resp.SimilarityScore = score
	return &resp, true, nil
}

// CacheResponse stores a computed response under its exact request hash
// and, when similarity matching is enabled, under its content hash.
func (s *Service) CacheResponse(ctx context.Context, requestHash, requestContent, responseContent string, ttl time.Duration) error {
	now := time.Now()
	resp := CachedResponse{
		ID:              uuid.NewString(),
		RequestHash:     requestHash,
		RequestContent:  requestContent,
		ResponseContent: responseContent,
		CreatedAt:       now,
		LastAccessedAt:  now,
		SizeBytes:       int64(len(responseContent)),
	}

	opts := cache.Options{TTL: ttl}
	if err := cache.SetAs(ctx, s.store, responseKeyPrefix+requestHash, resp, opts); err != nil {
		return err
	}

	if s.similarity {
		contentKey := contentKeyPrefix + ContentHash(requestContent)
		if err := cache.SetAs(ctx, s.store, contentKey, resp, opts); err != nil {
			return err
		}
	}
	return nil
}

// ContentHash returns a deterministic hash of the normalized request
// content: lowercased, with whitespace runs collapsed, so trivial
// formatting differences map to the same key.
func ContentHash(content string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(content)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
