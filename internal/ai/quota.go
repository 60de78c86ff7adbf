package ai

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PipelineQuota tracks daily Gemini usage per pipeline (embeddings,
// explanations). Keeps batch jobs from burning the whole daily budget.
type PipelineQuota struct {
	Pipeline        string    `bson:"pipeline"`
	DailyTokenLimit int       `bson:"daily_token_limit"`
	TokensUsedToday int       `bson:"tokens_used_today"`
	RequestsToday   int       `bson:"requests_today"`
	LastResetDate   time.Time `bson:"last_reset_date"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

const defaultDailyTokenLimit = 200000

// CheckPipelineQuota checks if a pipeline can consume estimated tokens
// and records the usage if so.
func CheckPipelineQuota(pipeline string, estimatedTokens int, db *mongo.Database) error {
	ctx := context.Background()
	col := db.Collection("gemini_quotas")

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	// Reset if new day
	_, err := col.UpdateOne(ctx, bson.M{
		"pipeline":        pipeline,
		"last_reset_date": bson.M{"$lt": today},
	}, bson.M{
		"$set": bson.M{
			"tokens_used_today": 0,
			"requests_today":    0,
			"last_reset_date":   today,
			"updated_at":        now,
		},
	})
	if err != nil {
		return err
	}

	var quota PipelineQuota
	err = col.FindOne(ctx, bson.M{"pipeline": pipeline}).Decode(&quota)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			quota = PipelineQuota{
				Pipeline:        pipeline,
				DailyTokenLimit: defaultDailyTokenLimit,
				TokensUsedToday: 0,
				RequestsToday:   0,
				LastResetDate:   today,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			_, err = col.InsertOne(ctx, quota)
			if err != nil {
				return err
			}
		} else {
			return err
		}
	}

	if quota.TokensUsedToday+estimatedTokens > quota.DailyTokenLimit {
		return errors.New("daily quota exceeded")
	}

	// Increment atomically
	_, err = col.UpdateOne(
		ctx,
		bson.M{"pipeline": pipeline},
		bson.M{
			"$inc": bson.M{
				"tokens_used_today": estimatedTokens,
				"requests_today":    1,
			},
			"$set": bson.M{
				"updated_at": now,
			},
		},
	)

	return err
}

// GetPipelineQuotaStatus returns current quota status for a pipeline
func GetPipelineQuotaStatus(pipeline string, db *mongo.Database) (*PipelineQuota, error) {
	ctx := context.Background()
	col := db.Collection("gemini_quotas")

	var quota PipelineQuota
	err := col.FindOne(ctx, bson.M{"pipeline": pipeline}).Decode(&quota)
	if err != nil {
		return nil, err
	}

	return &quota, nil
}

// SetPipelineQuotaLimit sets the daily token limit for a pipeline
func SetPipelineQuotaLimit(pipeline string, dailyLimit int, db *mongo.Database) error {
	ctx := context.Background()
	col := db.Collection("gemini_quotas")

	now := time.Now()
	_, err := col.UpdateOne(
		ctx,
		bson.M{"pipeline": pipeline},
		bson.M{
			"$set": bson.M{
				"daily_token_limit": dailyLimit,
				"updated_at":        now,
			},
		},
		options.Update().SetUpsert(true),
	)

	return err
}
