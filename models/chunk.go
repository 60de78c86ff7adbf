package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ArticleChunk is a denormalized article section for Atlas VectorSearch.
// Keeping chunks in their own collection enables efficient $vectorSearch.
// chunk_index is zero-based and contiguous per article (0..TotalChunks-1).
type ArticleChunk struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ArticleID string             `bson:"article_id" json:"article_id"`
	ChunkID   string             `bson:"chunk_id" json:"chunk_id"`
	Index     int                `bson:"chunk_index" json:"chunk_index"`
	Title     string             `bson:"title,omitempty" json:"title,omitempty"`
	Text      string             `bson:"text" json:"text"`
	Embedding []float32          `bson:"embedding,omitempty" json:"-"`
}

// HasEmbedding reports whether the chunk can participate in similarity
// computation. Chunks without a vector are silently excluded everywhere.
func (c *ArticleChunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}
