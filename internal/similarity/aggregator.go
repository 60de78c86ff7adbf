package similarity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"seo-content-ops/internal/logger"
	"seo-content-ops/models"
)

// ChunkHit is one nearest-neighbour result from the chunk store.
type ChunkHit struct {
	Chunk models.ArticleChunk
	Score float64
}

// ChunkStore is the chunk/embedding warehouse port. Implementations map raw
// rows to typed models; the engine never sees untyped documents.
type ChunkStore interface {
	// GetChunks returns the article's chunks ordered by chunk_index.
	GetChunks(ctx context.Context, articleID string) ([]models.ArticleChunk, error)
	// FindSimilarChunks returns up to limit chunks from OTHER articles whose
	// cosine similarity to the given embedding is at least minSimilarity,
	// ranked by similarity descending.
	FindSimilarChunks(ctx context.Context, embedding []float32, excludeArticleID string, minSimilarity float64, limit int) ([]ChunkHit, error)
}

// ArticleStore is the article metadata warehouse port.
type ArticleStore interface {
	// GetArticle returns ErrNotFound when the article does not exist.
	GetArticle(ctx context.Context, id string) (*models.Article, error)
	// GetArticlesByIDs returns metadata keyed by id; missing ids are simply
	// absent from the map.
	GetArticlesByIDs(ctx context.Context, ids []string) (map[string]*models.Article, error)
}

// Search option bounds and defaults, resolved and validated once at the
// entry point rather than re-derived ad hoc.
const (
	DefaultLimit            = 20
	MaxLimit                = 50
	DefaultThreshold        = 0.5
	DefaultTopChunksPerBase = 10
	MaxTopChunksPerBase     = 20
)

// SearchOptions controls one similarity search. Zero Limit and
// TopChunksPerBase mean "use the default"; Threshold and MinPageviews are
// taken as given (zero is a valid threshold).
type SearchOptions struct {
	Limit            int     `json:"limit"`
	Threshold        float64 `json:"threshold"`
	MinPageviews     int64   `json:"min_pageviews"`
	TopChunksPerBase int     `json:"top_chunks_per_base"`
}

// DefaultSearchOptions returns the documented defaults.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Limit:            DefaultLimit,
		Threshold:        DefaultThreshold,
		MinPageviews:     0,
		TopChunksPerBase: DefaultTopChunksPerBase,
	}
}

func (o *SearchOptions) validate() error {
	if o.Limit == 0 {
		o.Limit = DefaultLimit
	}
	if o.TopChunksPerBase == 0 {
		o.TopChunksPerBase = DefaultTopChunksPerBase
	}
	if o.Limit < 1 || o.Limit > MaxLimit {
		return fmt.Errorf("%w: limit %d out of range [1,%d]", ErrInvalidArgument, o.Limit, MaxLimit)
	}
	if o.Threshold < 0 || o.Threshold > 1 || math.IsNaN(o.Threshold) {
		return fmt.Errorf("%w: threshold %v out of range [0,1]", ErrInvalidArgument, o.Threshold)
	}
	if o.MinPageviews < 0 {
		return fmt.Errorf("%w: min_pageviews must be >= 0", ErrInvalidArgument)
	}
	if o.TopChunksPerBase < 1 || o.TopChunksPerBase > MaxTopChunksPerBase {
		return fmt.Errorf("%w: top_chunks_per_base %d out of range [1,%d]", ErrInvalidArgument, o.TopChunksPerBase, MaxTopChunksPerBase)
	}
	return nil
}

// Candidate is one scored and classified similar article.
type Candidate struct {
	Article                 *models.Article `json:"article"`
	FinalScore              float64         `json:"finalScore"`
	Breakdown               Breakdown       `json:"breakdown"`
	AvgSimilarity           float64         `json:"avgSimilarity"`
	PeakSimilarity          float64         `json:"peakSimilarity"`
	MatchingBaseChunks      int             `json:"matchingBaseChunks"`
	MatchingCandidateChunks int             `json:"matchingCandidateChunks"`
	MatchingRatio           float64         `json:"matchingRatio"`
	Recommendation          Recommendation  `json:"recommendation"`
}

// SearchResult is the aggregator's response for one base article.
type SearchResult struct {
	BaseArticle *models.Article `json:"baseArticle"`
	Candidates  []Candidate     `json:"candidates"`
	TotalFound  int             `json:"totalFoundBeforeLimit"`
}

// AggregatorConfig is passed explicitly into the constructor - no ambient
// globals. LookupConcurrency bounds the per-base-chunk fan-out against the
// chunk store.
type AggregatorConfig struct {
	LookupConcurrency int
}

// Aggregator orchestrates a chunk-level similarity search: fan out
// nearest-neighbour lookups per base chunk, group hits by candidate article,
// aggregate per-article statistics, then compose and classify each pair.
type Aggregator struct {
	chunks      ChunkStore
	articles    ArticleStore
	concurrency int
}

// NewAggregator wires the aggregator to its stores.
func NewAggregator(chunks ChunkStore, articles ArticleStore, cfg AggregatorConfig) *Aggregator {
	concurrency := cfg.LookupConcurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Aggregator{
		chunks:      chunks,
		articles:    articles,
		concurrency: concurrency,
	}
}

// Search finds articles similar to baseArticleID and recommends a
// consolidation action for each. Returns ErrInvalidArgument before any store
// call when options are out of range, ErrNotFound when the base article does
// not exist, and a wrapped ErrBackendUnavailable on store failure. An article
// with zero embedded chunks yields an empty result, not an error.
func (a *Aggregator) Search(ctx context.Context, baseArticleID string, opts SearchOptions) (*SearchResult, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	base, err := a.articles.GetArticle(ctx, baseArticleID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: load article %s: %v", ErrBackendUnavailable, baseArticleID, err)
	}

	baseChunks, err := a.chunks.GetChunks(ctx, baseArticleID)
	if err != nil {
		return nil, fmt.Errorf("%w: load chunks for %s: %v", ErrBackendUnavailable, baseArticleID, err)
	}

	embedded := baseChunks[:0:0]
	for _, c := range baseChunks {
		if c.HasEmbedding() {
			embedded = append(embedded, c)
		}
	}
	if len(embedded) == 0 {
		logger.Debug("similarity search: article has no embedded chunks", "article_id", baseArticleID)
		return &SearchResult{BaseArticle: base, Candidates: []Candidate{}, TotalFound: 0}, nil
	}

	baseTotal := base.TotalChunks
	if baseTotal < len(baseChunks) {
		baseTotal = len(baseChunks)
	}

	matches, err := a.collectMatches(ctx, baseArticleID, embedded, opts)
	if err != nil {
		return nil, err
	}

	candidates, err := a.scoreCandidates(ctx, base, baseTotal, matches)
	if err != nil {
		return nil, err
	}

	filtered := candidates[:0]
	for _, c := range candidates {
		if c.Article.Pageviews >= opts.MinPageviews {
			filtered = append(filtered, c)
		}
	}

	// Priority is the primary sort key so that, e.g., a same-category merge
	// outranks a slightly higher-scoring cross-category monitor.
	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Recommendation.Priority != filtered[j].Recommendation.Priority {
			return filtered[i].Recommendation.Priority > filtered[j].Recommendation.Priority
		}
		if filtered[i].FinalScore != filtered[j].FinalScore {
			return filtered[i].FinalScore > filtered[j].FinalScore
		}
		return filtered[i].Article.ID < filtered[j].Article.ID
	})

	total := len(filtered)
	if len(filtered) > opts.Limit {
		filtered = filtered[:opts.Limit]
	}

	return &SearchResult{
		BaseArticle: base,
		Candidates:  filtered,
		TotalFound:  total,
	}, nil
}

// candidateMatch couples a ChunkMatch with the candidate chunk's identity so
// grouping can count distinct chunks on both sides.
type candidateMatch struct {
	articleID string
	match     ChunkMatch
}

// collectMatches fans out one nearest-neighbour lookup per base chunk,
// bounded by the configured concurrency. Grouping downstream is keyed by
// candidate article id, so merge order does not affect the result.
func (a *Aggregator) collectMatches(ctx context.Context, baseArticleID string, baseChunks []models.ArticleChunk, opts SearchOptions) ([]candidateMatch, error) {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
		all      []candidateMatch
	)
	sem := make(chan struct{}, a.concurrency)

	lookupCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for _, chunk := range baseChunks {
		chunk := chunk
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-lookupCtx.Done():
				return
			}

			hits, err := a.chunks.FindSimilarChunks(lookupCtx, chunk.Embedding, baseArticleID, opts.Threshold, opts.TopChunksPerBase)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				mu.Unlock()
				return
			}

			kept := make([]candidateMatch, 0, len(hits))
			for _, hit := range hits {
				// Degraded-data tolerance: skip malformed hits, never fail.
				if math.IsNaN(hit.Score) || hit.Score < opts.Threshold {
					continue
				}
				if !hit.Chunk.HasEmbedding() || hit.Chunk.ArticleID == "" {
					continue
				}
				kept = append(kept, candidateMatch{
					articleID: hit.Chunk.ArticleID,
					match: ChunkMatch{
						BaseIndex:      chunk.Index,
						BaseTitle:      chunk.Title,
						CandidateIndex: hit.Chunk.Index,
						Score:          hit.Score,
					},
				})
				if len(kept) == opts.TopChunksPerBase {
					break
				}
			}

			mu.Lock()
			all = append(all, kept...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		// Cancelled: discard partial results, return no partial list.
		return nil, err
	}
	if firstErr != nil {
		return nil, fmt.Errorf("%w: chunk lookup: %v", ErrBackendUnavailable, firstErr)
	}
	return all, nil
}

// scoreCandidates groups matches by candidate article, computes per-article
// statistics, and runs the composer and classifier for each pair.
func (a *Aggregator) scoreCandidates(ctx context.Context, base *models.Article, baseTotal int, matches []candidateMatch) ([]Candidate, error) {
	grouped := make(map[string][]ChunkMatch)
	for _, cm := range matches {
		grouped[cm.articleID] = append(grouped[cm.articleID], cm.match)
	}
	if len(grouped) == 0 {
		return []Candidate{}, nil
	}

	ids := make([]string, 0, len(grouped))
	for id := range grouped {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	articles, err := a.articles.GetArticlesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: load candidate articles: %v", ErrBackendUnavailable, err)
	}

	candidates := make([]Candidate, 0, len(ids))
	for _, id := range ids {
		article, ok := articles[id]
		if !ok || article == nil {
			// Chunk rows without a metadata row (mid-sync): skip, not fatal.
			logger.Warn("similarity search: candidate metadata missing, skipping", "article_id", id)
			continue
		}

		group := grouped[id]

		var sum, peak float64
		baseSeen := make(map[int]struct{})
		candSeen := make(map[int]struct{})
		for _, m := range group {
			sum += m.Score
			if m.Score > peak {
				peak = m.Score
			}
			baseSeen[m.BaseIndex] = struct{}{}
			candSeen[m.CandidateIndex] = struct{}{}
		}
		avg := sum / float64(len(group))

		matchingBase := len(baseSeen)
		matchingCand := len(candSeen)
		matchCount := matchingBase
		if matchingCand < matchCount {
			matchCount = matchingCand
		}

		// Ratio and semantic bonus are keyed on the base side: keep the
		// best-scoring match per base index.
		deduped := dedupeByBaseIndex(group)

		breakdown := Compose(avg, deduped, baseTotal, article.TotalChunks, base, article)
		rec := Classify(ClassifyInput{
			Score:              breakdown.FinalScore,
			MatchingRatio:      breakdown.WeightedRatio,
			SameCategory:       base.CategoryID != "" && base.CategoryID == article.CategoryID,
			BasePageviews:      base.Pageviews,
			CandidatePageviews: article.Pageviews,
			MatchCount:         matchCount,
		})

		candidates = append(candidates, Candidate{
			Article:                 article,
			FinalScore:              breakdown.FinalScore,
			Breakdown:               breakdown,
			AvgSimilarity:           avg,
			PeakSimilarity:          peak,
			MatchingBaseChunks:      matchingBase,
			MatchingCandidateChunks: matchingCand,
			MatchingRatio:           breakdown.WeightedRatio,
			Recommendation:          rec,
		})
	}

	return candidates, nil
}

func dedupeByBaseIndex(matches []ChunkMatch) []ChunkMatch {
	best := make(map[int]ChunkMatch, len(matches))
	for _, m := range matches {
		if cur, ok := best[m.BaseIndex]; !ok || m.Score > cur.Score {
			best[m.BaseIndex] = m
		}
	}
	out := make([]ChunkMatch, 0, len(best))
	for _, m := range best {
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].BaseIndex < out[j].BaseIndex })
	return out
}
