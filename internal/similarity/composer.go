package similarity

import (
	"math"

	"seo-content-ops/models"
)

// Fixed composition weights. These are not runtime-configurable: cached
// scores must stay comparable across deployments.
const (
	contentWeight       = 0.60
	ratioWeight         = 0.25
	metadataAttenuation = 0.5
	metadataScoreCap    = 0.05
)

// Breakdown is the full numeric decomposition of one final score. Every
// component is kept so the UI and the cache can explain why a pair scored the
// way it did; callers must never collapse this to FinalScore alone.
type Breakdown struct {
	FinalScore         float64 `json:"finalScore" bson:"final_score"`
	BaseScore          float64 `json:"baseScore" bson:"base_score"`
	WeightedRatioScore float64 `json:"weightedRatioScore" bson:"weighted_ratio_score"`
	SemanticBonus      float64 `json:"semanticBonus" bson:"semantic_bonus"`
	MetadataBonus      float64 `json:"metadataBonus" bson:"metadata_bonus"`
	WeightedRatio      float64 `json:"weightedRatio" bson:"weighted_ratio"`
}

// Compose combines average chunk-pair similarity, weighted matching ratio,
// semantic bonus, and attenuated metadata bonus into one bounded score.
//
// Metadata is a weak indirect signal and must not dominate content-derived
// signals, so it is halved and then capped: at most 5 points of the final
// score can come from metadata.
func Compose(avgChunkSimilarity float64, matches []ChunkMatch, baseTotal, candidateTotal int, base, candidate *models.Article) Breakdown {
	baseScore := avgChunkSimilarity * contentWeight
	ratio := WeightedMatchingRatio(matches, baseTotal, candidateTotal)
	ratioScore := ratio * ratioWeight
	semantic := SemanticBonus(matches)
	metadata := math.Min(MetadataBonus(base, candidate)*metadataAttenuation, metadataScoreCap)

	return Breakdown{
		FinalScore:         math.Min(baseScore+ratioScore+semantic+metadata, 1.0),
		BaseScore:          baseScore,
		WeightedRatioScore: ratioScore,
		SemanticBonus:      semantic,
		MetadataBonus:      metadata,
		WeightedRatio:      ratio,
	}
}
