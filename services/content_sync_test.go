package services

import (
	"context"
	"testing"
)

type recordingInvalidator struct {
	articleIDs []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, baseArticleID string) {
	r.articleIDs = append(r.articleIDs, baseArticleID)
}

func TestInvalidateResultsAfterSync(t *testing.T) {
	rec := &recordingInvalidator{}
	svc := &ContentSyncService{cache: rec}

	svc.invalidateResults(context.Background(), "art-1")

	if len(rec.articleIDs) != 1 || rec.articleIDs[0] != "art-1" {
		t.Fatalf("expected invalidation for art-1, got %v", rec.articleIDs)
	}
}

func TestInvalidateResultsWithoutCache(t *testing.T) {
	svc := &ContentSyncService{}
	// No cache wired (e.g. a one-off backfill): must be a no-op, not a panic.
	svc.invalidateResults(context.Background(), "art-1")
}
