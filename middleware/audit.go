package middleware

import (
	"strings"
	"time"

	"seo-content-ops/models"

	"github.com/gin-gonic/gin"
)

// AuditMiddleware creates audit log entries for API requests
func AuditMiddleware(auditor *models.AuditLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// Health and readiness probes would drown the log
		if c.FullPath() == "/health" || c.FullPath() == "/ready" {
			return
		}

		event := &models.AuditEvent{
			UserID:    GetUserID(c),
			IPAddress: c.ClientIP(),
			RequestID: GetRequestID(c),
			Success:   c.Writer.Status() < 400,
			CreatedAt: start,
		}

		event.Action, event.Resource, event.ResourceID = classifyRequest(c)

		if !event.Success && len(c.Errors) > 0 {
			event.ErrorMessage = c.Errors.Last().Error()
		}

		// Log asynchronously to not block the response
		auditor.LogAsync(event)
	}
}

// classifyRequest maps a request to an audit action and resource.
func classifyRequest(c *gin.Context) (action, resource, resourceID string) {
	path := c.FullPath()
	id := c.Param("id")

	switch {
	case strings.HasPrefix(path, "/auth/"):
		return "AUTH", "user", ""
	case strings.HasSuffix(path, "/similar/export"):
		return "EXPORT", "similarity", id
	case strings.HasSuffix(path, "/similar/warm"):
		return "WARM", "similarity", id
	case strings.HasSuffix(path, "/similar"), strings.HasSuffix(path, "/recommendations"):
		return "SEARCH", "similarity", id
	case strings.HasSuffix(path, "/sync"), path == "/api/sync":
		return "SYNC", "article", id
	case strings.Contains(path, "/articles/"):
		return "READ", "article", id
	default:
		return "READ", "unknown", ""
	}
}
