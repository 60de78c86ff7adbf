package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"seo-content-ops/internal/ai"
	"seo-content-ops/internal/config"
	"seo-content-ops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/migrate <command>")
		fmt.Println("Commands:")
		fmt.Println("  create-indexes       - Create collection indexes")
		fmt.Println("  vector-index-def     - Print the Atlas vector search index definition")
		fmt.Println("  backfill-embeddings  - Embed chunks that are missing vectors")
		os.Exit(1)
	}

	command := os.Args[1]

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	switch command {
	case "create-indexes":
		// ConnectMongoDB creates indexes on connect.
		client, err := config.ConnectMongoDB(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer client.Disconnect(context.Background())
		fmt.Println("Indexes created successfully!")

	case "vector-index-def":
		printVectorIndexDefinition(cfg)

	case "backfill-embeddings":
		client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer client.Disconnect(context.Background())

		if err := backfillEmbeddings(cfg, client.Database(cfg.DBName)); err != nil {
			log.Fatalf("Backfill failed: %v", err)
		}
		fmt.Println("Embedding backfill completed successfully!")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

// printVectorIndexDefinition emits the index body to paste into Atlas.
// $vectorSearch indexes cannot be created through the driver.
func printVectorIndexDefinition(cfg *config.Config) {
	def := map[string]interface{}{
		"name": cfg.VectorIndexName,
		"type": "vectorSearch",
		"definition": map[string]interface{}{
			"fields": []map[string]interface{}{
				{
					"type":          "vector",
					"path":          "embedding",
					"numDimensions": cfg.VectorDimensions,
					"similarity":    "cosine",
				},
				{
					"type": "filter",
					"path": "article_id",
				},
			},
		},
	}

	out, _ := json.MarshalIndent(def, "", "  ")
	fmt.Printf("Create this index on the article_chunks collection:\n\n%s\n", out)
}

// backfillEmbeddings embeds chunks whose vector is missing, in batches.
func backfillEmbeddings(cfg *config.Config, db *mongo.Database) error {
	ctx := context.Background()
	col := db.Collection("article_chunks")

	cursor, err := col.Find(ctx, bson.M{"embedding": bson.M{"$exists": false}})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	processed := 0
	for cursor.Next(ctx) {
		var chunk models.ArticleChunk
		if err := cursor.Decode(&chunk); err != nil {
			return err
		}

		if err := ai.CheckPipelineQuota("embeddings", len(chunk.Text)/4, db); err != nil {
			return fmt.Errorf("quota exhausted after %d chunks: %v", processed, err)
		}

		vec, err := ai.GenerateEmbedding(ctx, cfg, chunk.Text)
		if err != nil {
			fmt.Printf("Skipping chunk %s: %v\n", chunk.ChunkID, err)
			continue
		}

		_, err = col.UpdateOne(ctx,
			bson.M{"chunk_id": chunk.ChunkID},
			bson.M{"$set": bson.M{"embedding": vec}})
		if err != nil {
			return err
		}

		processed++
		if processed%50 == 0 {
			fmt.Printf("Backfilled %d chunks...\n", processed)
		}
	}

	fmt.Printf("Backfilled %d chunks total\n", processed)
	return cursor.Err()
}
