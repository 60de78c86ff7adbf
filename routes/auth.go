package routes

import (
	"context"
	"net/http"
	"time"

	"seo-content-ops/internal/config"
	"seo-content-ops/models"
	"seo-content-ops/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func SetupAuthRoutes(router *gin.Engine, cfg *config.Config, mongoClient *mongo.Client) {
	auth := router.Group("/auth")

	db := mongoClient.Database(cfg.DBName)
	usersCollection := db.Collection("users")

	// Register endpoint
	auth.POST("/register", func(c *gin.Context) {
		var req models.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		// Check if username already exists
		var existingUser models.User
		if err := usersCollection.FindOne(context.Background(), bson.M{"username": req.Username}).Decode(&existingUser); err == nil {
			utils.RespondWithError(c, http.StatusConflict, "username_exists", "Username already exists", nil)
			return
		}

		hashedPassword, err := utils.HashPassword(req.Password, cfg.BcryptCost)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to process password", nil)
			return
		}

		user := models.User{
			Username:     req.Username,
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: hashedPassword,
			Role:         req.Role,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}

		result, err := usersCollection.InsertOne(context.Background(), user)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to create user", nil)
			return
		}

		userID := result.InsertedID.(primitive.ObjectID).Hex()
		token, err := utils.GenerateJWT(userID, req.Role, cfg.JWTSecret, cfg.JWTExpiresIn)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to generate token", nil)
			return
		}

		duration, _ := time.ParseDuration(cfg.JWTExpiresIn)
		c.JSON(http.StatusCreated, models.LoginResponse{
			Token:     token,
			ExpiresAt: time.Now().Add(duration),
			User: models.UserInfo{
				ID:       userID,
				Username: req.Username,
				Name:     req.Name,
				Email:    req.Email,
				Role:     req.Role,
			},
		})
	})

	// Login endpoint
	auth.POST("/login", func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		var user models.User
		err := usersCollection.FindOne(context.Background(), bson.M{"username": req.Username}).Decode(&user)
		if err != nil {
			utils.RespondWithUnauthorized(c, "Invalid username or password")
			return
		}

		if !utils.CheckPassword(req.Password, user.PasswordHash) {
			utils.RespondWithUnauthorized(c, "Invalid username or password")
			return
		}

		token, err := utils.GenerateJWT(user.ID.Hex(), user.Role, cfg.JWTSecret, cfg.JWTExpiresIn)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to generate token", nil)
			return
		}

		duration, _ := time.ParseDuration(cfg.JWTExpiresIn)
		c.JSON(http.StatusOK, models.LoginResponse{
			Token:     token,
			ExpiresAt: time.Now().Add(duration),
			User: models.UserInfo{
				ID:       user.ID.Hex(),
				Username: user.Username,
				Name:     user.Name,
				Email:    user.Email,
				Role:     user.Role,
			},
		})
	})
}
