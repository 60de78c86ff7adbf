package services

import (
	"testing"

	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
)

func reportRow(path, views, sessions string) *analyticsdata.Row {
	return &analyticsdata.Row{
		DimensionValues: []*analyticsdata.DimensionValue{{Value: path}},
		MetricValues: []*analyticsdata.MetricValue{
			{Value: views},
			{Value: sessions},
		},
	}
}

func TestNormalizePagePath(t *testing.T) {
	tests := []struct {
		in     string
		expect string
	}{
		{"/articles/seo-guide", "/articles/seo-guide"},
		{"/articles/seo-guide/", "/articles/seo-guide"},
		{"/articles/seo-guide?utm_source=mail", "/articles/seo-guide"},
		{"/articles/seo-guide#section-2", "/articles/seo-guide"},
		{"https://example.com/articles/seo-guide", "/articles/seo-guide"},
		{"https://example.com/articles/seo-guide/?ref=home", "/articles/seo-guide"},
		{"/", "/"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := normalizePagePath(tt.in); got != tt.expect {
			t.Errorf("normalizePagePath(%q) = %q, want %q", tt.in, got, tt.expect)
		}
	}
}

func TestAggregateReportRows(t *testing.T) {
	rows := []*analyticsdata.Row{
		reportRow("/articles/a", "100", "40"),
		// Same page via a campaign link: must fold into the same counter.
		reportRow("/articles/a?utm_source=news", "25", "10"),
		reportRow("/articles/b/", "50", "20"),
		// Unparseable metrics are skipped, not fatal.
		reportRow("/articles/c", "not-a-number", "5"),
		reportRow("/articles/d", "10", ""),
		nil,
		{DimensionValues: nil, MetricValues: nil},
	}

	counters := aggregateReportRows(rows)

	if len(counters) != 2 {
		t.Fatalf("got %d counters, want 2: %+v", len(counters), counters)
	}
	a := counters["/articles/a"]
	if a.Pageviews != 125 || a.EngagedSessions != 50 {
		t.Errorf("/articles/a = %+v, want 125/50", a)
	}
	b := counters["/articles/b"]
	if b.Pageviews != 50 || b.EngagedSessions != 20 {
		t.Errorf("/articles/b = %+v, want 50/20", b)
	}
}

func TestMatchPageviews(t *testing.T) {
	counters := map[string]PageviewCounts{
		"/articles/a": {Pageviews: 125, EngagedSessions: 50},
		"/articles/b": {Pageviews: 50, EngagedSessions: 20},
		"/tags/seo":   {Pageviews: 999, EngagedSessions: 1},
	}
	linkIndex := map[string]string{
		"/articles/a": "art-a",
		"/articles/b": "art-b",
	}

	updates := matchPageviews(counters, linkIndex)

	if len(updates) != 2 {
		t.Fatalf("got %d updates, want 2 (tag pages must be dropped): %+v", len(updates), updates)
	}
	if updates["art-a"].Pageviews != 125 || updates["art-a"].EngagedSessions != 50 {
		t.Errorf("art-a = %+v", updates["art-a"])
	}
	if updates["art-b"].Pageviews != 50 {
		t.Errorf("art-b = %+v", updates["art-b"])
	}
}
