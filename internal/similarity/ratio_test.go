package similarity

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestWeightedMatchingRatioEmpty(t *testing.T) {
	if got := WeightedMatchingRatio(nil, 5, 5); got != 0 {
		t.Errorf("expected 0 for no matches, got %v", got)
	}
}

func TestWeightedMatchingRatioZeroTotals(t *testing.T) {
	matches := []ChunkMatch{{BaseIndex: 0, Score: 0.9}}
	if got := WeightedMatchingRatio(matches, 0, 5); got != 0 {
		t.Errorf("expected 0 for zero base total, got %v", got)
	}
}

func TestWeightedMatchingRatio(t *testing.T) {
	// Denominator for n=4 untitled chunks: 5 + 3 + 1 + 2 = 11.
	matches := []ChunkMatch{
		{BaseIndex: 0, Score: 0.9}, // weight 5
		{BaseIndex: 2, Score: 0.8}, // weight 1
	}
	got := WeightedMatchingRatio(matches, 4, 4)
	if !almostEqual(got, 6.0/11.0) {
		t.Errorf("got %v, want %v", got, 6.0/11.0)
	}
}

func TestWeightedMatchingRatioUsesShorterArticle(t *testing.T) {
	// candidateTotal=2 < baseTotal=10: denominator is 5 + 3 = 8.
	matches := []ChunkMatch{
		{BaseIndex: 5, Score: 0.9}, // body weight 1 in a 10-chunk article
	}
	got := WeightedMatchingRatio(matches, 10, 2)
	if !almostEqual(got, 1.0/8.0) {
		t.Errorf("got %v, want %v", got, 1.0/8.0)
	}
}

func TestWeightedMatchingRatioClamped(t *testing.T) {
	// Base-side weights exceed the shorter article's denominator.
	matches := []ChunkMatch{
		{BaseIndex: 0, BaseTitle: "title", Score: 0.9},
		{BaseIndex: 1, BaseTitle: "introduction", Score: 0.9},
		{BaseIndex: 2, BaseTitle: "title part two", Score: 0.9},
	}
	got := WeightedMatchingRatio(matches, 3, 1)
	if got != 1.0 {
		t.Errorf("expected clamp to 1.0, got %v", got)
	}
}

func TestWeightedMatchingRatioUsesHeadings(t *testing.T) {
	// A footer match contributes 0.5, not 1.
	matches := []ChunkMatch{
		{BaseIndex: 4, BaseTitle: "references", Score: 0.9},
	}
	got := WeightedMatchingRatio(matches, 10, 10)
	// n=10 denominator: 5 + 3 + 7*1 ... last chunk is 2: 5+3+1+1+1+1+1+1+1+2 = 17.
	if !almostEqual(got, 0.5/17.0) {
		t.Errorf("got %v, want %v", got, 0.5/17.0)
	}
}
