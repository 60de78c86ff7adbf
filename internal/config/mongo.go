package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson" // Use bson for index keys
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ConnectMongoDB(cfg *Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	// Test connection
	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	// Create indexes
	err = createIndexes(client, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to create indexes: %v", err)
	}

	return client, nil
}

func createIndexes(client *mongo.Client, dbName string) error {
	db := client.Database(dbName)

	// Users collection indexes
	usersCollection := db.Collection("users")
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := usersCollection.Indexes().CreateMany(context.Background(), userIndexes)
	if err != nil {
		return err
	}

	// Articles collection indexes
	articlesCollection := db.Collection("articles")
	articleIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "category_id", Value: 1}}},
		{Keys: bson.D{{Key: "pageviews", Value: -1}}},
		{
			Keys:    bson.D{{Key: "link", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}
	_, err = articlesCollection.Indexes().CreateMany(context.Background(), articleIndexes)
	if err != nil {
		return err
	}

	// Article chunks collection indexes for vector search filters
	chunksCollection := db.Collection("article_chunks")
	chunkIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "article_id", Value: 1}, {Key: "chunk_index", Value: 1}}},
		{
			Keys:    bson.D{{Key: "chunk_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err = chunksCollection.Indexes().CreateMany(context.Background(), chunkIndexes)
	if err != nil {
		return err
	}

	// Similarity cache indexes: lookup by base article, TTL on expires_at
	cacheCollection := db.Collection("similarity_cache")
	cacheIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "base_article_id", Value: 1}, {Key: "similarity_score", Value: -1}}},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
	_, err = cacheCollection.Indexes().CreateMany(context.Background(), cacheIndexes)
	if err != nil {
		return err
	}

	return nil
}
