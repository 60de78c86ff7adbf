package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"seo-content-ops/internal/config"
	"seo-content-ops/internal/logger"

	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
)

// PageviewSyncService refreshes article pageview and engagement counters
// from the GA4 Data API. The counters feed the traffic-direction wording
// in recommendations, the min-pageviews filter and the traffic impact
// prediction, so they go stale fast without this job.
type PageviewSyncService struct {
	cfg       *config.Config
	articles  *MongoArticleStore
	analytics *analyticsdata.Service
}

// NewPageviewSyncService builds the GA4 client. Credentials come from
// application default credentials (GOOGLE_APPLICATION_CREDENTIALS).
func NewPageviewSyncService(ctx context.Context, cfg *config.Config, articles *MongoArticleStore) (*PageviewSyncService, error) {
	svc, err := analyticsdata.NewService(ctx)
	if err != nil {
		return nil, fmt.Errorf("init GA4 client: %w", err)
	}
	return &PageviewSyncService{
		cfg:       cfg,
		articles:  articles,
		analytics: svc,
	}, nil
}

// SyncPageviews pulls the lookback-window report from GA4 and bulk-updates
// every article whose link path appears in it. Returns the number of
// articles updated.
func (s *PageviewSyncService) SyncPageviews(ctx context.Context) (int, error) {
	req := &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{
			StartDate: fmt.Sprintf("%ddaysAgo", s.cfg.PageviewLookbackDays),
			EndDate:   "today",
		}},
		Dimensions: []*analyticsdata.Dimension{{Name: "pagePath"}},
		Metrics: []*analyticsdata.Metric{
			{Name: "screenPageViews"},
			{Name: "engagedSessions"},
		},
		Limit: 100000,
	}

	property := "properties/" + s.cfg.GA4PropertyID
	resp, err := s.analytics.Properties.RunReport(property, req).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("GA4 report for %s: %w", property, err)
	}

	counters := aggregateReportRows(resp.Rows)
	if len(counters) == 0 {
		logger.Warn("pageview sync: GA4 report returned no usable rows", "property", property)
		return 0, nil
	}

	links, err := s.articles.ListArticleLinks(ctx)
	if err != nil {
		return 0, fmt.Errorf("list article links: %w", err)
	}

	updates := matchPageviews(counters, links)
	if err := s.articles.UpdatePageviews(ctx, updates); err != nil {
		return 0, fmt.Errorf("update pageviews: %w", err)
	}

	logger.Info("pageview sync complete",
		"report_rows", len(resp.Rows), "matched_articles", len(updates))
	return len(updates), nil
}

// aggregateReportRows folds GA4 report rows into per-path counters. Paths
// collapse after normalization (query strings and trailing slashes go), so
// variants of the same page sum into one counter. Rows with unparseable
// metric values are skipped.
func aggregateReportRows(rows []*analyticsdata.Row) map[string]PageviewCounts {
	counters := make(map[string]PageviewCounts, len(rows))
	for _, row := range rows {
		if row == nil || len(row.DimensionValues) < 1 || len(row.MetricValues) < 2 {
			continue
		}
		path := normalizePagePath(row.DimensionValues[0].Value)
		if path == "" {
			continue
		}

		views, err := strconv.ParseInt(row.MetricValues[0].Value, 10, 64)
		if err != nil {
			continue
		}
		sessions, err := strconv.ParseInt(row.MetricValues[1].Value, 10, 64)
		if err != nil {
			continue
		}

		counts := counters[path]
		counts.Pageviews += views
		counts.EngagedSessions += sessions
		counters[path] = counts
	}
	return counters
}

// matchPageviews joins per-path counters to article ids via the link index.
// Paths with no owning article (tag pages, landing pages) are dropped.
func matchPageviews(counters map[string]PageviewCounts, linkIndex map[string]string) map[string]PageviewCounts {
	updates := make(map[string]PageviewCounts)
	for path, counts := range counters {
		id, ok := linkIndex[path]
		if !ok {
			continue
		}
		merged := updates[id]
		merged.Pageviews += counts.Pageviews
		merged.EngagedSessions += counts.EngagedSessions
		updates[id] = merged
	}
	return updates
}

// normalizePagePath reduces a GA4 pagePath or a full article URL to a
// comparable path: no scheme/host, no query or fragment, no trailing slash
// (the root keeps its slash).
func normalizePagePath(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}
