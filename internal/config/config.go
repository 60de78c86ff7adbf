package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI string
	DBName   string
	Port     string
	GinMode  string

	CORSOrigins []string

	// Auth
	JWTSecret    string
	JWTExpiresIn string
	BcryptCost   int

	// Rate limiting
	RateLimitReqs   int
	RateLimitWindow int

	// Redis
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Similarity engine defaults
	SimilarityThreshold   float64
	MinPageviewsThreshold int64
	MaxSimilarArticles    int
	TopChunksPerBase      int
	LookupConcurrency     int
	CacheExpiryDays       int

	// Content sync (CMS -> warehouse)
	CMSBaseURL   string
	CMSAPIToken  string
	SyncBatch    int
	MaxChunkSize int
	MinChunkSize int

	// Pageview sync (GA4 -> warehouse). Empty property id disables it.
	GA4PropertyID        string
	PageviewLookbackDays int

	// Gemini
	GeminiAPIKey          string
	GeminiTier            string
	GoogleEmbeddingsModel string
	VectorDimensions      int

	// Mongo Atlas Vector Search
	VectorIndexName string

	// Explanation enrichment (Gemini rewrite of classifier rationale)
	ExplanationEnrichment bool
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017/seo_content_ops"),
		DBName:      getEnv("DB_NAME", "seo_content_ops"),
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		JWTSecret:    getEnv("JWT_SECRET", ""),
		JWTExpiresIn: getEnv("JWT_EXPIRES_IN", "24h"),
		BcryptCost:   getEnvInt("BCRYPT_COST", 12),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		SimilarityThreshold:   getEnvFloat64("SIMILARITY_THRESHOLD", 0.5),
		MinPageviewsThreshold: getEnvInt64("MIN_PAGEVIEWS_THRESHOLD", 100),
		MaxSimilarArticles:    getEnvInt("MAX_SIMILAR_ARTICLES", 20),
		TopChunksPerBase:      getEnvInt("TOP_CHUNKS_PER_BASE", 10),
		LookupConcurrency:     getEnvInt("LOOKUP_CONCURRENCY", 4),
		CacheExpiryDays:       getEnvInt("CACHE_EXPIRY_DAYS", 7),

		CMSBaseURL:   getEnv("CMS_BASE_URL", ""),
		CMSAPIToken:  getEnv("CMS_API_TOKEN", ""),
		SyncBatch:    getEnvInt("SYNC_BATCH_SIZE", 50),
		MaxChunkSize: getEnvInt("MAX_CHUNK_SIZE", 1000),
		MinChunkSize: getEnvInt("MIN_CHUNK_SIZE", 100),

		GA4PropertyID:        getEnv("GA4_PROPERTY_ID", ""),
		PageviewLookbackDays: getEnvInt("PAGEVIEW_LOOKBACK_DAYS", 30),

		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiTier:            getEnv("GEMINI_TIER", "free"),
		GoogleEmbeddingsModel: getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),
		VectorDimensions:      getEnvInt("VECTOR_DIM", 768),

		VectorIndexName: getEnv("MONGODB_VECTOR_INDEX", "article_chunks_vector"),

		ExplanationEnrichment: getEnvBool("EXPLANATION_ENRICHMENT", false),
	}

	// Validate required fields
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required - set it in .env file")
	}

	if cfg.SimilarityThreshold < 0 || cfg.SimilarityThreshold > 1 {
		return nil, fmt.Errorf("SIMILARITY_THRESHOLD must be in [0,1]")
	}

	if cfg.ExplanationEnrichment && cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required when EXPLANATION_ENRICHMENT is on")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
