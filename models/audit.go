package models

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"seo-content-ops/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AuditEvent is an immutable record of one operator action. Entries form
// a hash chain so tampering is detectable.
type AuditEvent struct {
	ID           string    `bson:"_id,omitempty"`
	Timestamp    time.Time `bson:"timestamp"`
	UserID       string    `bson:"user_id"`
	Action       string    `bson:"action"`   // SEARCH, EXPORT, SYNC, WARM, AUTH
	Resource     string    `bson:"resource"` // article, similarity, user
	ResourceID   string    `bson:"resource_id"`
	IPAddress    string    `bson:"ip_address"`
	RequestID    string    `bson:"request_id"`
	Success      bool      `bson:"success"`
	ErrorMessage string    `bson:"error_message,omitempty"`
	PreviousHash string    `bson:"previous_hash"`
	CurrentHash  string    `bson:"current_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

// ComputeHash computes the hash of this audit event
func (e *AuditEvent) ComputeHash() string {
	data := fmt.Sprintf("%s|%s|%s|%s|%s|%t|%s",
		e.Timestamp.Format(time.RFC3339Nano),
		e.UserID,
		e.Action,
		e.Resource,
		e.ResourceID,
		e.Success,
		e.PreviousHash,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// AuditLogger handles immutable audit logging
type AuditLogger struct {
	col        *mongo.Collection
	lastHashMu sync.Mutex
	lastHash   string
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(db *mongo.Database) *AuditLogger {
	col := db.Collection("audit_logs")

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "resource", Value: 1}, {Key: "resource_id", Value: 1}}},
		{Keys: bson.D{{Key: "action", Value: 1}}},
		{Keys: bson.D{{Key: "request_id", Value: 1}}},
	}
	col.Indexes().CreateMany(context.Background(), indexes)

	return &AuditLogger{col: col}
}

// Log logs an audit event, chaining it to the previous one.
func (al *AuditLogger) Log(event *AuditEvent) error {
	al.lastHashMu.Lock()
	defer al.lastHashMu.Unlock()

	event.PreviousHash = al.lastHash
	event.Timestamp = time.Now().UTC()
	event.CreatedAt = event.Timestamp
	event.ID = fmt.Sprintf("%d_%s", time.Now().UnixNano(), event.UserID)
	event.CurrentHash = event.ComputeHash()

	// Insert-only, never update
	_, err := al.col.InsertOne(context.Background(), event)
	if err != nil {
		logger.Error("Failed to log audit event", "error", err.Error())
		return err
	}

	al.lastHash = event.CurrentHash
	return nil
}

// LogAsync logs an audit event asynchronously
func (al *AuditLogger) LogAsync(event *AuditEvent) {
	go func() {
		if err := al.Log(event); err != nil {
			logger.Error("Async audit logging failed", "error", err.Error())
		}
	}()
}

// VerifyChain verifies the integrity of the audit chain
func (al *AuditLogger) VerifyChain() (bool, error) {
	ctx := context.Background()
	cursor, err := al.col.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}),
	)
	if err != nil {
		return false, err
	}
	defer cursor.Close(ctx)

	var previousHash string
	eventCount := 0

	for cursor.Next(ctx) {
		var event AuditEvent
		if err := cursor.Decode(&event); err != nil {
			return false, err
		}

		eventCount++

		if eventCount > 1 && event.PreviousHash != previousHash {
			logger.Warn("Audit chain broken, previous hash mismatch", "event_id", event.ID)
			return false, nil
		}

		if event.CurrentHash != event.ComputeHash() {
			logger.Warn("Audit event hash mismatch", "event_id", event.ID)
			return false, nil
		}

		previousHash = event.CurrentHash
	}

	logger.Info("Audit chain verified", "events", eventCount)
	return true, nil
}

// QueryAuditLogs queries audit logs with filters
func (al *AuditLogger) QueryAuditLogs(filter bson.M, page, pageSize int) ([]AuditEvent, int64, error) {
	ctx := context.Background()

	total, err := al.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	skip := (page - 1) * pageSize
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(pageSize))

	cursor, err := al.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var events []AuditEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, 0, err
	}

	return events, total, nil
}
