package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"seo-content-ops/internal/logger"
	"seo-content-ops/internal/similarity"
	"seo-content-ops/models"
	"seo-content-ops/utils"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SimilarityCache layers a hot Redis result cache over the durable
// similarity_cache collection. Redis payloads are brotli-compressed JSON;
// Mongo rows carry per-pair verdicts for reporting and expire via TTL.
type SimilarityCache struct {
	rdb        *redis.Client
	col        *mongo.Collection
	expiryDays int
}

func NewSimilarityCache(rdb *redis.Client, db *mongo.Database, expiryDays int) *SimilarityCache {
	if expiryDays <= 0 {
		expiryDays = 7
	}
	return &SimilarityCache{
		rdb:        rdb,
		col:        db.Collection("similarity_cache"),
		expiryDays: expiryDays,
	}
}

func resultKey(baseArticleID string, opts similarity.SearchOptions) string {
	return fmt.Sprintf("similarity:result:%s:%d:%.2f:%d:%d",
		baseArticleID, opts.Limit, opts.Threshold, opts.MinPageviews, opts.TopChunksPerBase)
}

// GetResult returns a cached search result, or nil on miss. Redis errors
// are treated as misses so a cache outage never breaks search.
func (c *SimilarityCache) GetResult(ctx context.Context, baseArticleID string, opts similarity.SearchOptions) *similarity.SearchResult {
	raw, err := c.rdb.Get(ctx, resultKey(baseArticleID, opts)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("similarity cache read failed", "article_id", baseArticleID, "error", err.Error())
		}
		return nil
	}

	data, err := utils.DecompressData(raw)
	if err != nil {
		logger.Warn("similarity cache payload corrupt", "article_id", baseArticleID, "error", err.Error())
		return nil
	}

	var result similarity.SearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return &result
}

// StoreResult caches a search result in Redis and persists the per-pair
// verdicts to Mongo for the reporting surface.
func (c *SimilarityCache) StoreResult(ctx context.Context, baseArticleID string, opts similarity.SearchOptions, result *similarity.SearchResult) {
	data, err := json.Marshal(result)
	if err != nil {
		return
	}

	compressed, err := utils.CompressData(data)
	if err == nil {
		ttl := time.Duration(c.expiryDays) * 24 * time.Hour
		if err := c.rdb.Set(ctx, resultKey(baseArticleID, opts), compressed, ttl).Err(); err != nil {
			logger.Warn("similarity cache write failed", "article_id", baseArticleID, "error", err.Error())
		}
	}

	if err := c.persistEntries(ctx, baseArticleID, result); err != nil {
		logger.Warn("similarity cache persist failed", "article_id", baseArticleID, "error", err.Error())
	}
}

func (c *SimilarityCache) persistEntries(ctx context.Context, baseArticleID string, result *similarity.SearchResult) error {
	if len(result.Candidates) == 0 {
		return nil
	}

	now := time.Now()
	expires := now.Add(time.Duration(c.expiryDays) * 24 * time.Hour)

	batch := make([]mongo.WriteModel, 0, len(result.Candidates))
	for _, cand := range result.Candidates {
		entry := models.SimilarityCacheEntry{
			BaseArticleID:      baseArticleID,
			SimilarArticleID:   cand.Article.ID,
			SimilarityScore:    cand.FinalScore,
			ConfidenceScore:    cand.Recommendation.Confidence,
			TrafficImpact:      PredictTrafficImpact(result.BaseArticle.Pageviews, cand.Article.Pageviews, cand.FinalScore),
			RecommendationType: string(cand.Recommendation.Type),
			ExplanationText:    cand.Recommendation.Explanation,
			CachedAt:           now,
			ExpiresAt:          expires,
		}
		batch = append(batch, mongo.NewUpdateOneModel().
			SetFilter(bson.M{
				"base_article_id":    entry.BaseArticleID,
				"similar_article_id": entry.SimilarArticleID,
			}).
			SetUpdate(bson.M{"$set": entry}).
			SetUpsert(true))
	}

	_, err := c.col.BulkWrite(ctx, batch, options.BulkWrite().SetOrdered(false))
	return err
}

// GetEntries returns persisted verdicts for a base article, best first.
func (c *SimilarityCache) GetEntries(ctx context.Context, baseArticleID string) ([]models.SimilarityCacheEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "similarity_score", Value: -1}})
	cursor, err := c.col.Find(ctx, bson.M{"base_article_id": baseArticleID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.SimilarityCacheEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Invalidate drops the Redis result entries for an article. Persisted
// Mongo rows are left to age out via TTL.
func (c *SimilarityCache) Invalidate(ctx context.Context, baseArticleID string) {
	pattern := fmt.Sprintf("similarity:result:%s:*", baseArticleID)
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		c.rdb.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Warn("similarity cache invalidation failed", "article_id", baseArticleID, "error", err.Error())
	}
}

// PredictTrafficImpact estimates combined post-consolidation traffic.
// Consolidating overlapping content compounds: the stronger the overlap,
// the larger the expected synergy, capped at +20%.
func PredictTrafficImpact(basePageviews, candidatePageviews int64, score float64) float64 {
	combined := float64(basePageviews + candidatePageviews)
	synergy := 1.0 + score*0.2
	return combined * synergy
}
