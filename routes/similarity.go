package routes

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"seo-content-ops/internal/config"
	"seo-content-ops/internal/queue"
	"seo-content-ops/internal/similarity"
	"seo-content-ops/middleware"
	"seo-content-ops/services"
	"seo-content-ops/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

// SetupSimilarityRoutes wires the similarity search surface.
func SetupSimilarityRoutes(router *gin.Engine, cfg *config.Config, svc *services.SimilarityService, cache *services.SimilarityCache, exporter *services.ExportService, asynqClient *asynq.Client) {
	api := router.Group("/api")
	api.Use(middleware.RequireAuth(cfg))

	// Similarity search for one base article
	api.GET("/articles/:id/similar", func(c *gin.Context) {
		opts, err := parseSearchOptions(c, cfg)
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid search options", gin.H{"error": err.Error()})
			return
		}

		result, err := svc.Search(c.Request.Context(), c.Param("id"), opts)
		if err != nil {
			respondSimilarityError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	})

	// Persisted per-pair verdicts from the similarity cache
	api.GET("/articles/:id/recommendations", func(c *gin.Context) {
		entries, err := cache.GetEntries(c.Request.Context(), c.Param("id"))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load recommendations", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"recommendations": entries, "count": len(entries)})
	})

	// Excel export of a similarity search
	api.GET("/articles/:id/similar/export", func(c *gin.Context) {
		opts, err := parseSearchOptions(c, cfg)
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid search options", gin.H{"error": err.Error()})
			return
		}

		result, err := svc.Search(c.Request.Context(), c.Param("id"), opts)
		if err != nil {
			respondSimilarityError(c, err)
			return
		}

		buf, err := exporter.ExportSearchResult(result)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to build export", nil)
			return
		}

		filename := fmt.Sprintf("similarity_%s.xlsx", c.Param("id"))
		c.Header("Content-Disposition", "attachment; filename="+filename)
		c.Data(http.StatusOK,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			buf.Bytes())
	})

	// Queue a cache warm for one article
	api.POST("/articles/:id/similar/warm", middleware.RequireRole("admin", "editor"), func(c *gin.Context) {
		task, err := queue.NewWarmSimilarityTask(c.Param("id"))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to create task", nil)
			return
		}
		info, err := asynqClient.Enqueue(task)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to enqueue task", nil)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"task_id": info.ID, "queue": info.Queue})
	})
}

// parseSearchOptions reads query overrides on top of configured defaults.
func parseSearchOptions(c *gin.Context, cfg *config.Config) (similarity.SearchOptions, error) {
	opts := similarity.SearchOptions{
		Limit:            cfg.MaxSimilarArticles,
		Threshold:        cfg.SimilarityThreshold,
		MinPageviews:     cfg.MinPageviewsThreshold,
		TopChunksPerBase: cfg.TopChunksPerBase,
	}

	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("limit: %v", err)
		}
		opts.Limit = n
	}
	if v := c.Query("threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, fmt.Errorf("threshold: %v", err)
		}
		opts.Threshold = f
	}
	if v := c.Query("min_pageviews"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return opts, fmt.Errorf("min_pageviews: %v", err)
		}
		opts.MinPageviews = n
	}
	if v := c.Query("top_chunks_per_base"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("top_chunks_per_base: %v", err)
		}
		opts.TopChunksPerBase = n
	}

	return opts, nil
}

func respondSimilarityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, similarity.ErrInvalidArgument):
		utils.RespondWithBadRequest(c, "Invalid search options", gin.H{"error": err.Error()})
	case errors.Is(err, similarity.ErrNotFound):
		utils.RespondWithNotFound(c, "Article not found")
	case errors.Is(err, similarity.ErrBackendUnavailable):
		utils.RespondWithBadGateway(c, "Search backend unavailable, try again later")
	default:
		utils.RespondWithInternalError(c, "Search failed", nil)
	}
}
