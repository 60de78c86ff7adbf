package similarity

import (
	"strings"
	"testing"
)

func TestClassifyCascade(t *testing.T) {
	tests := []struct {
		name     string
		in       ClassifyInput
		wantType RecommendationType
		wantPrio int
	}{
		{
			"near duplicate with heavy overlap",
			ClassifyInput{Score: 0.96, MatchingRatio: 0.6, MatchCount: 8},
			MergeContent, 100,
		},
		{
			"merge threshold boundary",
			ClassifyInput{Score: 0.95, MatchingRatio: 0.5, MatchCount: 5},
			MergeContent, 100,
		},
		{
			"high score same category merge",
			ClassifyInput{Score: 0.93, MatchingRatio: 0.35, SameCategory: true, MatchCount: 4},
			MergeContent, 90,
		},
		{
			"high score thin overlap falls through to redirect",
			ClassifyInput{Score: 0.96, MatchingRatio: 0.1},
			Redirect301, 85,
		},
		{
			"cross category redirect",
			ClassifyInput{Score: 0.91, MatchingRatio: 0.05},
			Redirect301, 85,
		},
		{
			"same category redirect with overlap",
			ClassifyInput{Score: 0.89, MatchingRatio: 0.25, SameCategory: true, MatchCount: 3},
			Redirect301, 80,
		},
		{
			"same category redirect thin overlap",
			ClassifyInput{Score: 0.86, MatchingRatio: 0.05, SameCategory: true},
			Redirect301, 70,
		},
		{
			"cross category 0.86 is not a redirect",
			ClassifyInput{Score: 0.86, MatchingRatio: 0.05},
			CrossLink, 60,
		},
		{
			"cross link plain",
			ClassifyInput{Score: 0.78, MatchingRatio: 0.1, MatchCount: 2},
			CrossLink, 60,
		},
		{
			"cross link via ratio branch",
			ClassifyInput{Score: 0.72, MatchingRatio: 0.2, MatchCount: 2},
			CrossLink, 60,
		},
		{
			"same category review",
			ClassifyInput{Score: 0.68, MatchingRatio: 0.08, SameCategory: true},
			Review, 50,
		},
		{
			"cross category review",
			ClassifyInput{Score: 0.68, MatchingRatio: 0.12},
			Review, 45,
		},
		{
			"review needs some overlap",
			ClassifyInput{Score: 0.68, MatchingRatio: 0, SameCategory: true},
			Monitor, 40,
		},
		{
			"monitor boundary",
			ClassifyInput{Score: 0.60, MatchingRatio: 0.02},
			Monitor, 40,
		},
		{
			"below every threshold",
			ClassifyInput{Score: 0.45, MatchingRatio: 0.02},
			Monitor, 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.in)
			if got.Type != tt.wantType || got.Priority != tt.wantPrio {
				t.Errorf("Classify(%+v) = %s/%d, want %s/%d", tt.in, got.Type, got.Priority, tt.wantType, tt.wantPrio)
			}
			if got.Explanation == "" {
				t.Error("explanation must never be empty")
			}
		})
	}
}

func TestClassifyExplanationMentionsScore(t *testing.T) {
	got := Classify(ClassifyInput{Score: 0.91, MatchingRatio: 0.05})
	if !strings.Contains(got.Explanation, "91.0%") {
		t.Errorf("explanation should carry the similarity percentage, got %q", got.Explanation)
	}
}

func TestClassifyTrafficDirection(t *testing.T) {
	baseLeads := Classify(ClassifyInput{Score: 0.91, BasePageviews: 5000, CandidatePageviews: 100})
	if !strings.Contains(baseLeads.Explanation, "the base article (higher traffic)") {
		t.Errorf("expected base-article direction, got %q", baseLeads.Explanation)
	}

	candLeads := Classify(ClassifyInput{Score: 0.91, BasePageviews: 100, CandidatePageviews: 5000})
	if !strings.Contains(candLeads.Explanation, "the similar article (higher traffic)") {
		t.Errorf("expected similar-article direction, got %q", candLeads.Explanation)
	}
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		score  float64
		expect float64
	}{
		{0, 0.05},
		{0.5, 0.525},
		{1.0, 1.0},
	}
	for _, tt := range tests {
		if got := Confidence(tt.score); !almostEqual(got, tt.expect) {
			t.Errorf("Confidence(%v) = %v, want %v", tt.score, got, tt.expect)
		}
	}
}
