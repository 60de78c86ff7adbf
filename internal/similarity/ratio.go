package similarity

import "math"

// ChunkMatch is an ephemeral pairing of one base-article chunk and one
// candidate-article chunk, produced per search invocation and never persisted.
type ChunkMatch struct {
	BaseIndex      int     `json:"baseIndex"`
	BaseTitle      string  `json:"baseTitle"`
	CandidateIndex int     `json:"candidateIndex"`
	Score          float64 `json:"score"` // cosine similarity in [0,1]
}

// WeightedMatchingRatio computes what fraction of the important content of the
// shorter article is covered by matches. The numerator sums ChunkWeight over
// the base side of each match; the denominator is the structural weight of a
// hypothetical fully-covered article of min(baseTotal, candidateTotal)
// untitled chunks. The result is clamped to [0,1].
//
// The denominator deliberately uses default weights rather than either
// article's real weight profile - it approximates "full coverage of the
// shorter article" cheaply and matches how the cached scores were computed.
func WeightedMatchingRatio(matches []ChunkMatch, baseTotal, candidateTotal int) float64 {
	if len(matches) == 0 {
		return 0
	}
	n := baseTotal
	if candidateTotal < n {
		n = candidateTotal
	}
	if n <= 0 {
		return 0
	}

	var matched float64
	for _, m := range matches {
		matched += ChunkWeight(m.BaseTitle, m.BaseIndex, baseTotal)
	}

	var total float64
	for i := 0; i < n; i++ {
		total += ChunkWeight("", i, n)
	}
	if total == 0 {
		return 0
	}

	return math.Min(matched/total, 1.0)
}
