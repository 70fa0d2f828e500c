package dedup

import (
	"math"
	"strings"
	"unicode"
)

// Calculator scores how similar two pieces of request content are,
// from 0 (disjoint) to 1 (identical).
type Calculator interface {
	// Name returns the unique name of this calculator
	Name() string

	// Compute returns the similarity of a and b
	Compute(a, b string) float64
}

// tokenize lowercases s and splits it on anything that is not a letter
// or digit.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// JaccardCalculator scores similarity as the ratio of shared to total
// distinct tokens.
type JaccardCalculator struct{}

// NewJaccardCalculator creates a token-set Jaccard calculator
func NewJaccardCalculator() *JaccardCalculator {
	return &JaccardCalculator{}
}

func (c *JaccardCalculator) Name() string { return "jaccard" }

// Compute returns |A ∩ B| / |A ∪ B| over the token sets of a and b
func (c *JaccardCalculator) Compute(a, b string) float64 {
	setA := make(map[string]struct{})
	for _, tok := range tokenize(a) {
		setA[tok] = struct{}{}
	}
	setB := make(map[string]struct{})
	for _, tok := range tokenize(b) {
		setB[tok] = struct{}{}
	}

	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// CosineCalculator scores similarity as the cosine of the angle between
// term-frequency vectors, so repeated terms carry weight.
type CosineCalculator struct{}

// NewCosineCalculator creates a term-frequency cosine calculator
func NewCosineCalculator() *CosineCalculator {
	return &CosineCalculator{}
}

func (c *CosineCalculator) Name() string { return "cosine" }

// Compute returns the cosine similarity of the term-frequency vectors of a and b
func (c *CosineCalculator) Compute(a, b string) float64 {
	freqA := termFrequencies(a)
	freqB := termFrequencies(b)

	if len(freqA) == 0 && len(freqB) == 0 {
		return 1
	}

	var dot, normA, normB float64
	for tok, fa := range freqA {
		normA += fa * fa
		if fb, ok := freqB[tok]; ok {
			dot += fa * fb
		}
	}
	for _, fb := range freqB {
		normB += fb * fb
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func termFrequencies(s string) map[string]float64 {
	freq := make(map[string]float64)
	for _, tok := range tokenize(s) {
		freq[tok]++
	}
	return freq
}
