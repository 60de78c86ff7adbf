package services

import (
	"context"
	"fmt"

	"seo-content-ops/internal/similarity"
	"seo-content-ops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoChunkStore backs the similarity engine's chunk port with the
// article_chunks collection and an Atlas $vectorSearch index.
type MongoChunkStore struct {
	col       *mongo.Collection
	indexName string
}

func NewMongoChunkStore(db *mongo.Database, indexName string) *MongoChunkStore {
	return &MongoChunkStore{
		col:       db.Collection("article_chunks"),
		indexName: indexName,
	}
}

func (s *MongoChunkStore) GetChunks(ctx context.Context, articleID string) ([]models.ArticleChunk, error) {
	opts := options.Find().SetSort(bson.D{{Key: "chunk_index", Value: 1}})
	cursor, err := s.col.Find(ctx, bson.M{"article_id": articleID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var chunks []models.ArticleChunk
	if err := cursor.All(ctx, &chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

// FindSimilarChunks runs a $vectorSearch over all chunks except the base
// article's own, returning cosine scores normalized to [0,1].
func (s *MongoChunkStore) FindSimilarChunks(ctx context.Context, embedding []float32, excludeArticleID string, minSimilarity float64, limit int) ([]similarity.ChunkHit, error) {
	if limit < 1 {
		limit = 1
	}

	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.M{
			"index":         s.indexName,
			"path":          "embedding",
			"queryVector":   embedding,
			"numCandidates": limit * 20,
			// Over-fetch so the exclusion filter below cannot starve results.
			"limit":  limit * 4,
			"filter": bson.M{"article_id": bson.M{"$ne": excludeArticleID}},
		}}},
		{{Key: "$addFields", Value: bson.M{
			"search_score": bson.M{"$meta": "vectorSearchScore"},
		}}},
		{{Key: "$match", Value: bson.M{
			"search_score": bson.M{"$gte": minSimilarity},
		}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer cursor.Close(ctx)

	var hits []similarity.ChunkHit
	for cursor.Next(ctx) {
		var row struct {
			models.ArticleChunk `bson:",inline"`
			SearchScore         float64 `bson:"search_score"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		hits = append(hits, similarity.ChunkHit{
			Chunk: row.ArticleChunk,
			Score: row.SearchScore,
		})
	}
	return hits, cursor.Err()
}

// ReplaceChunks swaps an article's chunk set atomically enough for sync:
// old rows go first so stale indices never mix with the new layout.
func (s *MongoChunkStore) ReplaceChunks(ctx context.Context, articleID string, chunks []models.ArticleChunk) error {
	if _, err := s.col.DeleteMany(ctx, bson.M{"article_id": articleID}); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	batch := make([]mongo.WriteModel, 0, len(chunks))
	for _, ch := range chunks {
		batch = append(batch, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"chunk_id": ch.ChunkID}).
			SetUpdate(bson.M{"$set": bson.M{
				"article_id":  ch.ArticleID,
				"chunk_id":    ch.ChunkID,
				"chunk_index": ch.Index,
				"title":       ch.Title,
				"text":        ch.Text,
				"embedding":   ch.Embedding,
			}}).
			SetUpsert(true))
	}

	_, err := s.col.BulkWrite(ctx, batch, options.BulkWrite().SetOrdered(false))
	return err
}
