package similarity

import (
	"testing"
	"time"

	"seo-content-ops/models"
)

func matchesAt(indices ...int) []ChunkMatch {
	matches := make([]ChunkMatch, len(indices))
	for i, idx := range indices {
		matches[i] = ChunkMatch{BaseIndex: idx, Score: 0.8}
	}
	return matches
}

func TestSemanticBonus(t *testing.T) {
	tests := []struct {
		name    string
		indices []int
		expect  float64
	}{
		{"no matches", nil, 0},
		{"single match", []int{3}, 0},
		{"two scattered", []int{1, 7}, 0},
		{"run of two", []int{4, 5}, 0.05},
		{"run of three", []int{2, 3, 4}, 0.09},
		{"run of four", []int{0, 1, 2, 3}, 0.12},
		{"run of five", []int{5, 6, 7, 8, 9}, 0.15},
		{"run of seven caps at top tier", []int{0, 1, 2, 3, 4, 5, 6}, 0.15},
		{"unsorted input", []int{6, 4, 5}, 0.09},
		{"gap splits the run", []int{0, 1, 3, 4, 5}, 0.09},
		{"duplicates ignored", []int{2, 2, 3}, 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SemanticBonus(matchesAt(tt.indices...)); got != tt.expect {
				t.Errorf("SemanticBonus(%v) = %v, want %v", tt.indices, got, tt.expect)
			}
		})
	}
}

func TestMetadataBonusNilArticles(t *testing.T) {
	if got := MetadataBonus(nil, &models.Article{}); got != 0 {
		t.Errorf("expected 0 for nil base, got %v", got)
	}
	if got := MetadataBonus(&models.Article{}, nil); got != 0 {
		t.Errorf("expected 0 for nil candidate, got %v", got)
	}
}

func TestMetadataBonusSameCategory(t *testing.T) {
	base := &models.Article{CategoryID: "cat-1", Title: "alpha"}
	cand := &models.Article{CategoryID: "cat-1", Title: "beta"}
	if got := MetadataBonus(base, cand); !almostEqual(got, 0.05) {
		t.Errorf("got %v, want 0.05", got)
	}
}

func TestMetadataBonusEmptyCategoryNotShared(t *testing.T) {
	base := &models.Article{Title: "alpha"}
	cand := &models.Article{Title: "beta"}
	if got := MetadataBonus(base, cand); got != 0 {
		t.Errorf("two empty category IDs must not count as a match, got %v", got)
	}
}

func TestMetadataBonusTemporalProximity(t *testing.T) {
	now := time.Now()
	near := now.Add(-10 * 24 * time.Hour)
	far := now.Add(-90 * 24 * time.Hour)

	base := &models.Article{Title: "alpha", CreatedAt: &now, UpdatedAt: &now}
	cand := &models.Article{Title: "beta", CreatedAt: &near, UpdatedAt: &far}
	// Created within 30 days (+0.03), updated outside the window.
	if got := MetadataBonus(base, cand); !almostEqual(got, 0.03) {
		t.Errorf("got %v, want 0.03", got)
	}

	cand.UpdatedAt = &near
	if got := MetadataBonus(base, cand); !almostEqual(got, 0.05) {
		t.Errorf("got %v, want 0.05", got)
	}
}

func TestMetadataBonusKeywordOverlap(t *testing.T) {
	base := &models.Article{Title: "alpha", Keywords: []string{"SEO", "go", "cache", "index", "crawl", "rank", "serp"}}
	cand := &models.Article{Title: "beta", Keywords: []string{"seo ", "Go", "cache", "index", "crawl", "rank", "serp"}}
	// Seven shared keywords, capped at 0.05.
	if got := MetadataBonus(base, cand); !almostEqual(got, 0.05) {
		t.Errorf("got %v, want 0.05", got)
	}

	cand.Keywords = []string{"seo", "seo", "go"}
	// Duplicate candidate keywords count once: 2 * 0.01.
	if got := MetadataBonus(base, cand); !almostEqual(got, 0.02) {
		t.Errorf("got %v, want 0.02", got)
	}
}

func TestMetadataBonusTitleOverlap(t *testing.T) {
	base := &models.Article{Title: "guide to content seo"}
	cand := &models.Article{Title: "content seo basics"}
	// 2 common tokens / max(4, 3) = 0.5 overlap, weighted by 0.05.
	if got := MetadataBonus(base, cand); !almostEqual(got, 0.025) {
		t.Errorf("got %v, want 0.025", got)
	}
}

func TestMetadataBonusTotalCap(t *testing.T) {
	now := time.Now()
	base := &models.Article{
		CategoryID: "cat-1",
		Title:      "identical title here",
		Keywords:   []string{"a", "b", "c", "d", "e", "f"},
		CreatedAt:  &now,
		UpdatedAt:  &now,
	}
	cand := &models.Article{
		CategoryID: "cat-1",
		Title:      "identical title here",
		Keywords:   []string{"a", "b", "c", "d", "e", "f"},
		CreatedAt:  &now,
		UpdatedAt:  &now,
	}
	// 0.05 + 0.03 + 0.02 + 0.05 + 0.05 = 0.20, exactly at the cap.
	got := MetadataBonus(base, cand)
	if !almostEqual(got, MetadataBonusCap) {
		t.Errorf("got %v, want %v", got, MetadataBonusCap)
	}
	if got > MetadataBonusCap {
		t.Errorf("bonus %v exceeds cap %v", got, MetadataBonusCap)
	}
}
