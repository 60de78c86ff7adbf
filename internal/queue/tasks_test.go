package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
)

type fakePageviewSyncer struct {
	calls int
	err   error
}

func (f *fakePageviewSyncer) SyncPageviews(_ context.Context) (int, error) {
	f.calls++
	return 42, f.err
}

func TestNewPageviewSyncTask(t *testing.T) {
	task := NewPageviewSyncTask()
	if task.Type() != TaskPageviewSync {
		t.Errorf("task type = %q, want %q", task.Type(), TaskPageviewSync)
	}
}

func TestSyncPageviewsHandler(t *testing.T) {
	syncer := &fakePageviewSyncer{}
	p := NewTaskProcessor(nil, nil, syncer)

	if err := p.SyncPageviews(context.Background(), NewPageviewSyncTask()); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if syncer.calls != 1 {
		t.Errorf("syncer called %d times, want 1", syncer.calls)
	}
}

func TestSyncPageviewsHandlerPropagatesErrors(t *testing.T) {
	syncer := &fakePageviewSyncer{err: errors.New("GA4 unavailable")}
	p := NewTaskProcessor(nil, nil, syncer)

	if err := p.SyncPageviews(context.Background(), NewPageviewSyncTask()); err == nil {
		t.Fatal("expected the GA4 error to propagate for retry")
	}
}

func TestSyncPageviewsHandlerWithoutSyncer(t *testing.T) {
	// No GA4 property configured: the task must be dropped, not retried.
	p := NewTaskProcessor(nil, nil, nil)

	err := p.SyncPageviews(context.Background(), NewPageviewSyncTask())
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("got %v, want SkipRetry", err)
	}
}
