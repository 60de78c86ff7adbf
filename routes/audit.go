package routes

import (
	"net/http"
	"strconv"
	"time"

	"seo-content-ops/internal/config"
	"seo-content-ops/middleware"
	"seo-content-ops/models"
	"seo-content-ops/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

// SetupAuditRoutes exposes the operator audit trail to admins.
func SetupAuditRoutes(router *gin.Engine, cfg *config.Config, auditor *models.AuditLogger) {
	audit := router.Group("/api/audit")
	audit.Use(middleware.RequireAuth(cfg), middleware.RequireRole("admin"))

	audit.GET("/logs", queryAuditLogs(auditor))

	audit.GET("/verify", func(c *gin.Context) {
		ok, err := auditor.VerifyChain()
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to verify audit chain", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"intact": ok})
	})
}

func queryAuditLogs(auditor *models.AuditLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
		if err != nil || page < 1 {
			page = 1
		}

		pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "20"))
		if err != nil || pageSize < 1 || pageSize > 100 {
			pageSize = 20
		}

		// Build filter
		filter := bson.M{}
		if userID := c.Query("user_id"); userID != "" {
			filter["user_id"] = userID
		}
		if action := c.Query("action"); action != "" {
			filter["action"] = action
		}
		if resource := c.Query("resource"); resource != "" {
			filter["resource"] = resource
		}

		// Parse time range
		timeFilter := bson.M{}
		if v := c.Query("start_time"); v != "" {
			if startTime, err := time.Parse(time.RFC3339, v); err == nil {
				timeFilter["$gte"] = startTime
			}
		}
		if v := c.Query("end_time"); v != "" {
			if endTime, err := time.Parse(time.RFC3339, v); err == nil {
				timeFilter["$lte"] = endTime
			}
		}
		if len(timeFilter) > 0 {
			filter["timestamp"] = timeFilter
		}

		events, total, err := auditor.QueryAuditLogs(filter, page, pageSize)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to query audit logs", nil)
			return
		}

		totalPages := (total + int64(pageSize) - 1) / int64(pageSize)

		c.JSON(http.StatusOK, gin.H{
			"events": events,
			"pagination": gin.H{
				"page":        page,
				"page_size":   pageSize,
				"total":       total,
				"total_pages": totalPages,
			},
		})
	}
}
