package similarity

import "fmt"

// RecommendationType is the consolidation action suggested for an article
// pair. A single enum shared by the composer output, the classifier, the
// cache schema, and the API - no bare string literals elsewhere.
type RecommendationType string

const (
	MergeContent RecommendationType = "MERGE_CONTENT"
	Redirect301  RecommendationType = "REDIRECT_301"
	CrossLink    RecommendationType = "CROSS_LINK"
	Review       RecommendationType = "REVIEW"
	Monitor      RecommendationType = "MONITOR"
)

// Recommendation is the classifier's verdict for one article pair. Higher
// priority means more urgent; confidence is monotonic in the similarity score.
type Recommendation struct {
	Type        RecommendationType `json:"type" bson:"recommendation_type"`
	Priority    int                `json:"priority" bson:"priority"`
	Explanation string             `json:"explanation" bson:"explanation_text"`
	Confidence  float64            `json:"confidence" bson:"confidence_score"`
}

// ClassifyInput carries everything the rule cascade looks at.
type ClassifyInput struct {
	Score              float64
	MatchingRatio      float64
	SameCategory       bool
	BasePageviews      int64
	CandidatePageviews int64
	MatchCount         int
}

// Classify maps a scored article pair to a recommendation through an ordered
// rule cascade - the first matching rule wins. The thresholds were tuned
// against the production cannibalization backlog; in particular the REVIEW
// rules use a higher ratio ceiling cross-category (0.15) than same-category
// (0.10), which is intentional, not a typo.
func Classify(in ClassifyInput) Recommendation {
	pct := in.Score * 100
	dir := trafficDirection(in.BasePageviews, in.CandidatePageviews)

	var (
		recType  RecommendationType
		priority int
		text     string
	)

	switch {
	case in.Score >= 0.95 && in.MatchingRatio >= 0.5:
		recType, priority = MergeContent, 100
		text = fmt.Sprintf(
			"%.1f%% similarity across %d matched sections covering over half of the shorter article. Near-duplicate content: merge both articles into %s.",
			pct, in.MatchCount, dir)

	case in.Score >= 0.92 && in.MatchingRatio >= 0.3 && in.SameCategory:
		recType, priority = MergeContent, 90
		text = fmt.Sprintf(
			"%.1f%% similarity with %d matched sections inside the same category. Strong merge candidate: consolidate into %s.",
			pct, in.MatchCount, dir)

	case in.Score >= 0.90:
		recType, priority = Redirect301, 85
		text = fmt.Sprintf(
			"%.1f%% similarity. Content is close enough that both pages compete for the same queries regardless of category: 301-redirect the weaker page to %s.",
			pct, dir)

	case in.Score >= 0.88 && in.MatchingRatio >= 0.2 && in.SameCategory:
		recType, priority = Redirect301, 80
		text = fmt.Sprintf(
			"%.1f%% similarity with %d overlapping sections in the same category. Redirect the lower-traffic page to %s to stop splitting rankings.",
			pct, in.MatchCount, dir)

	case in.Score >= 0.85 && in.SameCategory:
		recType, priority = Redirect301, 70
		text = fmt.Sprintf(
			"%.1f%% similarity within one category. Section overlap is thin, but the topical overlap justifies redirecting toward %s.",
			pct, dir)

	case in.Score >= 0.75 || (in.Score >= 0.70 && in.MatchingRatio >= 0.15):
		recType, priority = CrossLink, 60
		text = fmt.Sprintf(
			"%.1f%% similarity with %d matched sections. The articles complement rather than duplicate each other: cross-link them, anchoring from %s.",
			pct, in.MatchCount, dir)

	case in.Score >= 0.65 && in.SameCategory && in.MatchingRatio > 0 && in.MatchingRatio <= 0.1:
		recType, priority = Review, 50
		text = fmt.Sprintf(
			"%.1f%% similarity in the same category, but only a small slice of sections overlap. Manual review recommended before acting; %s currently leads on traffic.",
			pct, dir)

	case in.Score >= 0.65 && !in.SameCategory && in.MatchingRatio > 0 && in.MatchingRatio <= 0.15:
		recType, priority = Review, 45
		text = fmt.Sprintf(
			"%.1f%% similarity across different categories with limited section overlap. Review whether one article is drifting out of its category; %s leads on traffic.",
			pct, dir)

	case in.Score >= 0.60:
		recType, priority = Monitor, 40
		text = fmt.Sprintf(
			"%.1f%% similarity - below the action thresholds. Keep both pages and monitor whether rankings start to overlap.",
			pct)

	default:
		recType, priority = Monitor, 0
		text = fmt.Sprintf(
			"%.1f%% similarity. No cannibalization risk detected; no action needed.",
			pct)
	}

	return Recommendation{
		Type:        recType,
		Priority:    priority,
		Explanation: text,
		Confidence:  Confidence(in.Score),
	}
}

// Confidence maps a similarity score to [0.05, 1.0], strictly increasing.
func Confidence(score float64) float64 {
	return score*0.95 + 0.05
}

func trafficDirection(basePV, candidatePV int64) string {
	if basePV >= candidatePV {
		return "the base article (higher traffic)"
	}
	return "the similar article (higher traffic)"
}
