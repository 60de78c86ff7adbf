package routes

import (
	"errors"
	"net/http"

	"seo-content-ops/internal/config"
	"seo-content-ops/internal/queue"
	"seo-content-ops/internal/similarity"
	"seo-content-ops/middleware"
	"seo-content-ops/services"
	"seo-content-ops/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

// SetupArticleRoutes wires article metadata and ingestion endpoints.
func SetupArticleRoutes(router *gin.Engine, cfg *config.Config, articles *services.MongoArticleStore, chunks *services.MongoChunkStore, asynqClient *asynq.Client) {
	api := router.Group("/api")
	api.Use(middleware.RequireAuth(cfg))

	// Article metadata
	api.GET("/articles/:id", func(c *gin.Context) {
		article, err := articles.GetArticle(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, similarity.ErrNotFound) {
				utils.RespondWithNotFound(c, "Article not found")
				return
			}
			utils.RespondWithInternalError(c, "Failed to load article", nil)
			return
		}
		c.JSON(http.StatusOK, article)
	})

	// Article chunks, without embeddings
	api.GET("/articles/:id/chunks", func(c *gin.Context) {
		chunkList, err := chunks.GetChunks(c.Request.Context(), c.Param("id"))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load chunks", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"chunks": chunkList, "count": len(chunkList)})
	})

	// Queue a full CMS sync
	api.POST("/sync", middleware.RequireRole("admin"), func(c *gin.Context) {
		task, err := queue.NewContentSyncTask("")
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

	// Queue a refresh of one article
	api.POST("/articles/:id/sync", middleware.RequireRole("admin", "editor"), func(c *gin.Context) {
		task, err := queue.NewContentSyncTask(c.Param("id"))
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
