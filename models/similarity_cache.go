package models

import "time"

// SimilarityCacheEntry is one persisted base/candidate pair verdict.
// Rows expire via the TTL index on expires_at.
type SimilarityCacheEntry struct {
	BaseArticleID     string    `bson:"base_article_id" json:"base_article_id"`
	SimilarArticleID  string    `bson:"similar_article_id" json:"similar_article_id"`
	SimilarityScore   float64   `bson:"similarity_score" json:"similarity_score"`
	ConfidenceScore   float64   `bson:"confidence_score" json:"confidence_score"`
	TrafficImpact     float64   `bson:"traffic_impact_prediction" json:"traffic_impact_prediction"`
	RecommendationType string   `bson:"recommendation_type" json:"recommendation_type"`
	ExplanationText   string    `bson:"explanation_text" json:"explanation_text"`
	CachedAt          time.Time `bson:"cached_at" json:"cached_at"`
	ExpiresAt         time.Time `bson:"expires_at" json:"expires_at"`
}
