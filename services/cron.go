package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/hibiken/asynq"

	"seo-content-ops/internal/config"
	"seo-content-ops/internal/logger"
	"seo-content-ops/internal/queue"
)

// CronService schedules the recurring warehouse jobs: nightly content
// sync and similarity cache warming for high-traffic articles. The jobs
// only enqueue asynq tasks; the worker does the heavy lifting.
type CronService struct {
	scheduler *gocron.Scheduler
	client    *asynq.Client
	articles  *MongoArticleStore
	cfg       *config.Config
}

func NewCronService(client *asynq.Client, articles *MongoArticleStore, cfg *config.Config) *CronService {
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()

	return &CronService{
		scheduler: s,
		client:    client,
		articles:  articles,
		cfg:       cfg,
	}
}

func (c *CronService) Start() error {
	// Full CMS sync every night at 02:00 UTC.
	_, err := c.scheduler.Cron("0 2 * * *").Tag("content-sync").Do(c.enqueueContentSync)
	if err != nil {
		return err
	}

	// Warm the similarity cache for high-traffic articles every 6 hours.
	_, err = c.scheduler.Every(6 * time.Hour).Tag("similarity-warm").Do(c.enqueueWarmJobs)
	if err != nil {
		return err
	}

	// Refresh GA4 pageview counters daily at 03:30 UTC, after the content
	// sync has landed. Skipped entirely when no GA4 property is configured.
	if c.cfg.GA4PropertyID != "" {
		_, err = c.scheduler.Cron("30 3 * * *").Tag("pageview-sync").Do(c.enqueuePageviewSync)
		if err != nil {
			return err
		}
	}

	c.scheduler.StartAsync()
	logger.Info("cron scheduler started", "jobs", len(c.scheduler.Jobs()))
	return nil
}

func (c *CronService) Stop() {
	c.scheduler.Stop()
}

func (c *CronService) enqueueContentSync() error {
	task, err := queue.NewContentSyncTask("")
	if err != nil {
		return err
	}
	if _, err := c.client.Enqueue(task); err != nil {
		logger.Error("failed to enqueue content sync", "error", err.Error())
		return err
	}
	logger.Info("content sync enqueued")
	return nil
}

func (c *CronService) enqueuePageviewSync() error {
	if _, err := c.client.Enqueue(queue.NewPageviewSyncTask()); err != nil {
		logger.Error("failed to enqueue pageview sync", "error", err.Error())
		return err
	}
	logger.Info("pageview sync enqueued")
	return nil
}

func (c *CronService) enqueueWarmJobs() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	ids, err := c.articles.ListArticleIDs(ctx, c.cfg.MinPageviewsThreshold, c.cfg.SyncBatch)
	if err != nil {
		logger.Error("failed to list articles for warming", "error", err.Error())
		return err
	}

	enqueued := 0
	for _, id := range ids {
		task, err := queue.NewWarmSimilarityTask(id)
		if err != nil {
			continue
		}
		if _, err := c.client.Enqueue(task); err != nil {
			logger.Warn("failed to enqueue warm task", "article_id", id, "error", err.Error())
			continue
		}
		enqueued++
	}

	logger.Info("similarity warm jobs enqueued", "count", enqueued)
	return nil
}
