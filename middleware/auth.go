package middleware

import (
	"seo-content-ops/internal/config"
	"seo-content-ops/utils"

	"github.com/gin-gonic/gin"
)

// RequireAuth validates the bearer token and stores its claims in context
func RequireAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := utils.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if err != nil {
			utils.RespondWithUnauthorized(c, err.Error())
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(tokenString, cfg.JWTSecret)
		if err != nil {
			utils.RespondWithUnauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("claims", claims)
		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// RequireRole restricts a route to users holding one of the given roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetRole(c)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		utils.RespondWithForbidden(c, "Insufficient permissions for this operation")
		c.Abort()
	}
}

// GetUserID retrieves the authenticated user ID from context
func GetUserID(c *gin.Context) string {
	if id, exists := c.Get("user_id"); exists {
		if str, ok := id.(string); ok {
			return str
		}
	}
	return ""
}

// GetRole retrieves the authenticated user role from context
func GetRole(c *gin.Context) string {
	if role, exists := c.Get("role"); exists {
		if str, ok := role.(string); ok {
			return str
		}
	}
	return ""
}
