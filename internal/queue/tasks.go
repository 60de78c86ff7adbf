package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"seo-content-ops/internal/logger"
	"seo-content-ops/internal/similarity"
)

const (
	TaskWarmSimilarity = "similarity:warm"
	TaskContentSync    = "content:sync"
	TaskPageviewSync   = "pageviews:sync"
)

type WarmSimilarityPayload struct {
	ArticleID string `json:"article_id"`
}

type ContentSyncPayload struct {
	// ArticleID empty means full sync.
	ArticleID string `json:"article_id,omitempty"`
}

// Task creators
func NewWarmSimilarityTask(articleID string) (*asynq.Task, error) {
	payload, err := json.Marshal(WarmSimilarityPayload{ArticleID: articleID})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskWarmSimilarity,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(5*time.Minute),
		asynq.Queue("default"),
	), nil
}

func NewContentSyncTask(articleID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ContentSyncPayload{ArticleID: articleID})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskContentSync,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Minute),
		asynq.Queue("critical"),
	), nil
}

// NewPageviewSyncTask refreshes every article's analytics counters; there
// is no per-article variant because GA4 reports are cheapest in bulk.
func NewPageviewSyncTask() *asynq.Task {
	return asynq.NewTask(
		TaskPageviewSync,
		nil,
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		asynq.Queue("low"),
	)
}

// SimilarityWarmer is the slice of SimilarityService the worker needs.
type SimilarityWarmer interface {
	Warm(ctx context.Context, articleID string) error
}

// ContentSyncer is the slice of ContentSyncService the worker needs.
type ContentSyncer interface {
	SyncAll(ctx context.Context) (int, error)
	SyncArticle(ctx context.Context, articleID string) error
}

// PageviewSyncer is the slice of PageviewSyncService the worker needs.
type PageviewSyncer interface {
	SyncPageviews(ctx context.Context) (int, error)
}

// TaskProcessor holds the worker-side handlers. pageviews may be nil when
// no GA4 property is configured.
type TaskProcessor struct {
	warmer    SimilarityWarmer
	syncer    ContentSyncer
	pageviews PageviewSyncer
}

func NewTaskProcessor(warmer SimilarityWarmer, syncer ContentSyncer, pageviews PageviewSyncer) *TaskProcessor {
	return &TaskProcessor{
		warmer:    warmer,
		syncer:    syncer,
		pageviews: pageviews,
	}
}

func (p *TaskProcessor) WarmSimilarity(ctx context.Context, t *asynq.Task) error {
	var payload WarmSimilarityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	logger.Info("warming similarity cache", "article_id", payload.ArticleID)

	err := p.warmer.Warm(ctx, payload.ArticleID)
	if err != nil {
		// Deleted articles and bad options will not fix themselves.
		if errors.Is(err, similarity.ErrNotFound) || errors.Is(err, similarity.ErrInvalidArgument) {
			logger.Warn("skipping unwarmable article", "article_id", payload.ArticleID, "error", err.Error())
			return asynq.SkipRetry
		}
		return err
	}
	return nil
}

func (p *TaskProcessor) SyncContent(ctx context.Context, t *asynq.Task) error {
	var payload ContentSyncPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	if payload.ArticleID != "" {
		logger.Info("syncing single article", "article_id", payload.ArticleID)
		return p.syncer.SyncArticle(ctx, payload.ArticleID)
	}

	synced, err := p.syncer.SyncAll(ctx)
	if err != nil {
		return err
	}
	logger.Info("content sync task finished", "synced", synced)
	return nil
}

func (p *TaskProcessor) SyncPageviews(ctx context.Context, t *asynq.Task) error {
	if p.pageviews == nil {
		logger.Warn("pageview sync task received but no GA4 property is configured")
		return asynq.SkipRetry
	}

	updated, err := p.pageviews.SyncPageviews(ctx)
	if err != nil {
		return err
	}
	logger.Info("pageview sync task finished", "updated", updated)
	return nil
}
