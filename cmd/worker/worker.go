package main

import (
	"context"
	"log"

	"seo-content-ops/internal/ai"
	"seo-content-ops/internal/config"
	"seo-content-ops/internal/logger"
	"seo-content-ops/internal/queue"
	"seo-content-ops/internal/similarity"
	"seo-content-ops/services"

	"github.com/hibiken/asynq"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Connect to MongoDB
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(context.Background())
	db := mongoClient.Database(cfg.DBName)

	// Connect to Redis for the result cache
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer rdb.Close()

	// Stores and similarity engine
	articleStore := services.NewMongoArticleStore(db)
	chunkStore := services.NewMongoChunkStore(db, cfg.VectorIndexName)
	aggregator := similarity.NewAggregator(chunkStore, articleStore, similarity.AggregatorConfig{
		LookupConcurrency: cfg.LookupConcurrency,
	})
	cache := services.NewSimilarityCache(rdb, db, cfg.CacheExpiryDays)

	var geminiClient *ai.GeminiClient
	if cfg.GeminiAPIKey != "" {
		geminiClient, err = ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiTier, nil)
		if err != nil {
			log.Fatal("Failed to initialize Gemini client:", err)
		}
		defer geminiClient.Close()
	}

	similarityService := services.NewSimilarityService(aggregator, cache, geminiClient, nil, cfg)
	syncService := services.NewContentSyncService(cfg, db, articleStore, chunkStore, cache)

	var pageviewService *services.PageviewSyncService
	if cfg.GA4PropertyID != "" {
		pageviewService, err = services.NewPageviewSyncService(context.Background(), cfg, articleStore)
		if err != nil {
			log.Fatal("Failed to initialize GA4 client:", err)
		}
	}

	// Redis options for Asynq
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	// Create Asynq server
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6, // 60% of workers
				"default":  3, // 30% of workers
				"low":      1, // 10% of workers
			},
			StrictPriority: true,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Task failed", "type", task.Type(), "error", err.Error())
			}),
		},
	)

	// Create task processor
	var pageviewSyncer queue.PageviewSyncer
	if pageviewService != nil {
		pageviewSyncer = pageviewService
	}
	processor := queue.NewTaskProcessor(similarityService, syncService, pageviewSyncer)

	// Create mux and register handlers
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskWarmSimilarity, processor.WarmSimilarity)
	mux.HandleFunc(queue.TaskContentSync, processor.SyncContent)
	mux.HandleFunc(queue.TaskPageviewSync, processor.SyncPageviews)

	logger.Info("Starting Asynq worker",
		"concurrency", 10,
		"queues", "critical(6), default(3), low(1)",
		"redis", cfg.RedisURL)

	// Start the server
	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}
