package dedup

import (
	"math"
	"testing"
)

func TestJaccard_Identical(t *testing.T) {
	c := NewJaccardCalculator()
	if score := c.Compute("what is the weather today", "what is the weather today"); score != 1 {
		t.Fatalf("Expected 1 for identical content, got %f", score)
	}
}

func TestJaccard_CaseAndPunctuationInsensitive(t *testing.T) {
	c := NewJaccardCalculator()
	if score := c.Compute("What is the weather?", "what is the weather"); score != 1 {
		t.Fatalf("Expected 1 for content differing only in case and punctuation, got %f", score)
	}
}

func TestJaccard_Disjoint(t *testing.T) {
	c := NewJaccardCalculator()
	if score := c.Compute("alpha beta gamma", "delta epsilon zeta"); score != 0 {
		t.Fatalf("Expected 0 for disjoint content, got %f", score)
	}
}

func TestJaccard_PartialOverlap(t *testing.T) {
	c := NewJaccardCalculator()
	// Sets {a,b,c} and {b,c,d}: 2 shared of 4 distinct.
	if score := c.Compute("a b c", "b c d"); score != 0.5 {
		t.Fatalf("Expected 0.5, got %f", score)
	}
}

func TestJaccard_BothEmpty(t *testing.T) {
	c := NewJaccardCalculator()
	if score := c.Compute("", "  "); score != 1 {
		t.Fatalf("Expected 1 for two empty inputs, got %f", score)
	}
}

func TestCosine_Identical(t *testing.T) {
	c := NewCosineCalculator()
	if score := c.Compute("hello hello world", "hello hello world"); math.Abs(score-1) > 1e-9 {
		t.Fatalf("Expected 1 for identical content, got %f", score)
	}
}

func TestCosine_Disjoint(t *testing.T) {
	c := NewCosineCalculator()
	if score := c.Compute("alpha beta", "gamma delta"); score != 0 {
		t.Fatalf("Expected 0 for disjoint content, got %f", score)
	}
}

func TestCosine_FrequencyWeighting(t *testing.T) {
	c := NewCosineCalculator()
	// "a a b" -> (2,1), "a b b" -> (1,2): cos = (2+2)/(5) = 0.8.
	if score := c.Compute("a a b", "a b b"); math.Abs(score-0.8) > 1e-9 {
		t.Fatalf("Expected 0.8, got %f", score)
	}
}

func TestCosine_OneEmpty(t *testing.T) {
	c := NewCosineCalculator()
	if score := c.Compute("something", ""); score != 0 {
		t.Fatalf("Expected 0 when one side is empty, got %f", score)
	}
}

func TestCalculatorNames(t *testing.T) {
	if name := NewJaccardCalculator().Name(); name != "jaccard" {
		t.Fatalf("Unexpected name %q", name)
	}
	if name := NewCosineCalculator().Name(); name != "cosine" {
		t.Fatalf("Unexpected name %q", name)
	}
}
