package services

import (
	"context"
	"time"

	"seo-content-ops/internal/ai"
	"seo-content-ops/internal/config"
	"seo-content-ops/internal/logger"
	"seo-content-ops/internal/similarity"
	"seo-content-ops/internal/telemetry"
)

// SimilarityService fronts the aggregator with the result cache and
// optional Gemini explanation enrichment.
type SimilarityService struct {
	engine  *similarity.Aggregator
	cache   *SimilarityCache
	gemini  *ai.GeminiClient
	metrics *telemetry.Metrics
	cfg     *config.Config
}

func NewSimilarityService(engine *similarity.Aggregator, cache *SimilarityCache, gemini *ai.GeminiClient, metrics *telemetry.Metrics, cfg *config.Config) *SimilarityService {
	return &SimilarityService{
		engine:  engine,
		cache:   cache,
		gemini:  gemini,
		metrics: metrics,
		cfg:     cfg,
	}
}

// Search serves a similarity search, preferring the cache. A fresh result
// is enriched, cached, and persisted before it is returned.
func (s *SimilarityService) Search(ctx context.Context, baseArticleID string, opts similarity.SearchOptions) (*similarity.SearchResult, error) {
	start := time.Now()

	if cached := s.cache.GetResult(ctx, baseArticleID, opts); cached != nil {
		if s.metrics != nil {
			s.metrics.RecordCacheHit(true)
			s.metrics.RecordSearch(true, time.Since(start).Seconds())
		}
		return cached, nil
	}
	if s.metrics != nil {
		s.metrics.RecordCacheHit(false)
	}

	result, err := s.engine.Search(ctx, baseArticleID, opts)
	if err != nil {
		return nil, err
	}

	s.enrichExplanations(ctx, result)
	s.cache.StoreResult(ctx, baseArticleID, opts, result)

	if s.metrics != nil {
		s.metrics.RecordSearch(false, time.Since(start).Seconds())
	}
	return result, nil
}

// Warm computes and caches results for one article with default options,
// used by the scheduled cache warming job.
func (s *SimilarityService) Warm(ctx context.Context, baseArticleID string) error {
	opts := similarity.DefaultSearchOptions()
	opts.Threshold = s.cfg.SimilarityThreshold
	opts.MinPageviews = s.cfg.MinPageviewsThreshold
	opts.Limit = s.cfg.MaxSimilarArticles

	if cached := s.cache.GetResult(ctx, baseArticleID, opts); cached != nil {
		return nil
	}

	result, err := s.engine.Search(ctx, baseArticleID, opts)
	if err != nil {
		return err
	}

	s.enrichExplanations(ctx, result)
	s.cache.StoreResult(ctx, baseArticleID, opts, result)
	return nil
}

// enrichExplanations rewrites rule-based explanations through Gemini when
// enrichment is enabled. Failures keep the template text.
func (s *SimilarityService) enrichExplanations(ctx context.Context, result *similarity.SearchResult) {
	if !s.cfg.ExplanationEnrichment || s.gemini == nil {
		return
	}

	for i := range result.Candidates {
		cand := &result.Candidates[i]
		enriched, err := s.gemini.EnrichExplanation(ctx, ai.ExplanationInput{
			BaseTitle:      result.BaseArticle.Title,
			CandidateTitle: cand.Article.Title,
			Recommendation: string(cand.Recommendation.Type),
			Score:          cand.FinalScore,
			MatchCount:     cand.MatchingBaseChunks,
			SameCategory:   result.BaseArticle.CategoryID != "" && result.BaseArticle.CategoryID == cand.Article.CategoryID,
		}, cand.Recommendation.Explanation)
		if err != nil {
			logger.Debug("explanation enrichment failed, keeping template",
				"base_id", result.BaseArticle.ID, "candidate_id", cand.Article.ID, "error", err.Error())
			continue
		}
		cand.Recommendation.Explanation = enriched
	}
}
