package similarity

import (
	"testing"
	"time"

	"seo-content-ops/models"
)

func nowPtr() *time.Time {
	now := time.Now()
	return &now
}

func TestComposeArithmetic(t *testing.T) {
	matches := []ChunkMatch{
		{BaseIndex: 0, Score: 0.9},
		{BaseIndex: 1, Score: 0.85},
		{BaseIndex: 2, Score: 0.8},
	}
	base := &models.Article{CategoryID: "cat-1", Title: "alpha"}
	cand := &models.Article{CategoryID: "cat-1", Title: "beta"}

	b := Compose(0.85, matches, 3, 3, base, cand)

	if !almostEqual(b.BaseScore, 0.85*0.60) {
		t.Errorf("BaseScore = %v, want %v", b.BaseScore, 0.85*0.60)
	}
	// All three chunks of a 3-chunk article matched: ratio 1.0.
	if !almostEqual(b.WeightedRatio, 1.0) {
		t.Errorf("WeightedRatio = %v, want 1.0", b.WeightedRatio)
	}
	if !almostEqual(b.WeightedRatioScore, 0.25) {
		t.Errorf("WeightedRatioScore = %v, want 0.25", b.WeightedRatioScore)
	}
	if !almostEqual(b.SemanticBonus, 0.09) {
		t.Errorf("SemanticBonus = %v, want 0.09", b.SemanticBonus)
	}
	// Same category metadata bonus 0.05, attenuated to 0.025.
	if !almostEqual(b.MetadataBonus, 0.025) {
		t.Errorf("MetadataBonus = %v, want 0.025", b.MetadataBonus)
	}
	want := 0.85*0.60 + 0.25 + 0.09 + 0.025
	if !almostEqual(b.FinalScore, want) {
		t.Errorf("FinalScore = %v, want %v", b.FinalScore, want)
	}
}

func TestComposeMetadataScoreCap(t *testing.T) {
	// Raw metadata bonus at its 0.20 cap attenuates to 0.10, then clips to 0.05.
	now := nowPtr()
	base := &models.Article{CategoryID: "c", Title: "same title", Keywords: []string{"a", "b", "c", "d", "e"}, CreatedAt: now, UpdatedAt: now}
	cand := &models.Article{CategoryID: "c", Title: "same title", Keywords: []string{"a", "b", "c", "d", "e"}, CreatedAt: now, UpdatedAt: now}

	b := Compose(0.5, nil, 4, 4, base, cand)
	if !almostEqual(b.MetadataBonus, 0.05) {
		t.Errorf("MetadataBonus = %v, want cap 0.05", b.MetadataBonus)
	}
}

func TestComposeFinalScoreCapped(t *testing.T) {
	matches := []ChunkMatch{
		{BaseIndex: 0, Score: 1},
		{BaseIndex: 1, Score: 1},
		{BaseIndex: 2, Score: 1},
		{BaseIndex: 3, Score: 1},
		{BaseIndex: 4, Score: 1},
	}
	now := nowPtr()
	base := &models.Article{CategoryID: "c", Title: "same title", Keywords: []string{"a", "b", "c", "d", "e"}, CreatedAt: now, UpdatedAt: now}
	cand := &models.Article{CategoryID: "c", Title: "same title", Keywords: []string{"a", "b", "c", "d", "e"}, CreatedAt: now, UpdatedAt: now}

	// 0.60 + 0.25 + 0.15 + 0.05 = 1.05 before capping.
	b := Compose(1.0, matches, 5, 5, base, cand)
	if b.FinalScore != 1.0 {
		t.Errorf("FinalScore = %v, want 1.0", b.FinalScore)
	}
}

func TestComposeNoMatches(t *testing.T) {
	b := Compose(0.7, nil, 5, 5, nil, nil)
	if !almostEqual(b.FinalScore, 0.42) {
		t.Errorf("FinalScore = %v, want 0.42", b.FinalScore)
	}
	if b.WeightedRatio != 0 || b.SemanticBonus != 0 || b.MetadataBonus != 0 {
		t.Errorf("expected zero ratio and bonuses, got %+v", b)
	}
}
