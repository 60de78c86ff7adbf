package similarity

import (
	"math"
	"sort"
	"strings"
	"time"

	"seo-content-ops/models"
)

// Semantic distance bonus tiers, keyed by the longest run of strictly
// consecutive matched base-chunk indices. Contiguous overlap is a strong hint
// that whole sections were duplicated, not just stray paragraphs.
const (
	semanticBonusRun5 = 0.15
	semanticBonusRun4 = 0.12
	semanticBonusRun3 = 0.09
	semanticBonusRun2 = 0.05
)

// Metadata bonus terms. Each is individually capped and the sum is capped at
// MetadataBonusCap; a missing timestamp or keyword list simply contributes 0.
const (
	MetadataBonusCap        = 0.20
	sameCategoryBonus       = 0.05
	createdProximityBonus   = 0.03
	updatedProximityBonus   = 0.02
	keywordOverlapUnit      = 0.01
	keywordOverlapCap       = 0.05
	titleOverlapWeight      = 0.05
	temporalProximityWindow = 30 * 24 * time.Hour
)

// SemanticBonus rewards runs of consecutive matched base-chunk indices.
// Fewer than two matches earn nothing. Duplicate indices are not expected
// (matches are deduplicated by base index upstream) but are tolerated.
func SemanticBonus(matches []ChunkMatch) float64 {
	if len(matches) < 2 {
		return 0
	}

	indices := make([]int, len(matches))
	for i, m := range matches {
		indices[i] = m.BaseIndex
	}
	sort.Ints(indices)

	longest, run := 1, 1
	for i := 1; i < len(indices); i++ {
		switch indices[i] - indices[i-1] {
		case 1:
			run++
			if run > longest {
				longest = run
			}
		case 0:
			// duplicate index, ignore
		default:
			run = 1
		}
	}

	switch {
	case longest >= 5:
		return semanticBonusRun5
	case longest == 4:
		return semanticBonusRun4
	case longest == 3:
		return semanticBonusRun3
	case longest == 2:
		return semanticBonusRun2
	default:
		return 0
	}
}

// MetadataBonus sums independent metadata affinity signals between two
// articles: shared category, publish/update proximity, keyword overlap, and
// title word overlap. Total is capped at MetadataBonusCap.
func MetadataBonus(base, candidate *models.Article) float64 {
	if base == nil || candidate == nil {
		return 0
	}

	var bonus float64

	if base.CategoryID != "" && base.CategoryID == candidate.CategoryID {
		bonus += sameCategoryBonus
	}

	if withinWindow(base.CreatedAt, candidate.CreatedAt) {
		bonus += createdProximityBonus
	}
	if withinWindow(base.UpdatedAt, candidate.UpdatedAt) {
		bonus += updatedProximityBonus
	}

	shared := sharedKeywords(base.Keywords, candidate.Keywords)
	bonus += math.Min(float64(shared)*keywordOverlapUnit, keywordOverlapCap)

	bonus += titleWordOverlap(base.Title, candidate.Title) * titleOverlapWeight

	return math.Min(bonus, MetadataBonusCap)
}

func withinWindow(a, b *time.Time) bool {
	if a == nil || b == nil {
		return false
	}
	d := a.Sub(*b)
	if d < 0 {
		d = -d
	}
	return d <= temporalProximityWindow
}

func sharedKeywords(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, kw := range a {
		set[strings.ToLower(strings.TrimSpace(kw))] = struct{}{}
	}
	count := 0
	seen := make(map[string]struct{}, len(b))
	for _, kw := range b {
		k := strings.ToLower(strings.TrimSpace(kw))
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := set[k]; ok {
			count++
		}
	}
	return count
}

// titleWordOverlap returns |common tokens| / max(|baseTokens|, |otherTokens|),
// tokenizing on whitespace. Ranges over [0,1].
func titleWordOverlap(base, other string) float64 {
	baseTokens := tokenSet(base)
	otherTokens := tokenSet(other)
	if len(baseTokens) == 0 || len(otherTokens) == 0 {
		return 0
	}

	common := 0
	for tok := range baseTokens {
		if _, ok := otherTokens[tok]; ok {
			common++
		}
	}

	denom := len(baseTokens)
	if len(otherTokens) > denom {
		denom = len(otherTokens)
	}
	return float64(common) / float64(denom)
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
