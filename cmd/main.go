package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seo-content-ops/internal/ai"
	"seo-content-ops/internal/config"
	"seo-content-ops/internal/logger"
	"seo-content-ops/internal/similarity"
	"seo-content-ops/internal/telemetry"
	"seo-content-ops/middleware"
	"seo-content-ops/models"
	"seo-content-ops/routes"
	"seo-content-ops/services"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Tracing and metrics
	shutdownTracer, err := telemetry.InitTracer("seo-content-ops")
	if err != nil {
		logger.Warn("Tracing disabled", "error", err.Error())
	} else {
		defer shutdownTracer()
	}
	metrics, err := telemetry.InitMetrics()
	if err != nil {
		logger.Warn("Metrics disabled", "error", err.Error())
	}

	// Connect to MongoDB
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()
	db := mongoClient.Database(cfg.DBName)

	// Connect to Redis
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer rdb.Close()

	// Asynq client for enqueueing background work
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer asynqClient.Close()

	// Stores and similarity engine
	articleStore := services.NewMongoArticleStore(db)
	chunkStore := services.NewMongoChunkStore(db, cfg.VectorIndexName)
	aggregator := similarity.NewAggregator(chunkStore, articleStore, similarity.AggregatorConfig{
		LookupConcurrency: cfg.LookupConcurrency,
	})
	cache := services.NewSimilarityCache(rdb, db, cfg.CacheExpiryDays)

	var geminiClient *ai.GeminiClient
	if cfg.ExplanationEnrichment {
		geminiClient, err = ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiTier, metrics)
		if err != nil {
			log.Fatal("Failed to initialize Gemini client:", err)
		}
		defer geminiClient.Close()
	}

	similarityService := services.NewSimilarityService(aggregator, cache, geminiClient, metrics, cfg)
	exportService := services.NewExportService()
	auditLogger := models.NewAuditLogger(db)

	// Cron scheduler for recurring sync and warm jobs
	cron := services.NewCronService(asynqClient, articleStore, cfg)
	if err := cron.Start(); err != nil {
		log.Fatal("Failed to start scheduler:", err)
	}
	defer cron.Stop()

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.EnrichTrace())
	if metrics != nil {
		router.Use(middleware.MetricsMiddleware(metrics))
	}
	router.Use(middleware.RateLimitMiddleware(rdb, cfg))
	router.Use(middleware.AuditMiddleware(auditLogger))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	// Setup routes
	routes.SetupAuthRoutes(router, cfg, mongoClient)
	routes.SetupArticleRoutes(router, cfg, articleStore, chunkStore, asynqClient)
	routes.SetupSimilarityRoutes(router, cfg, similarityService, cache, exportService, asynqClient)
	routes.SetupAuditRoutes(router, cfg, auditLogger)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
