package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"flowq/internal/logging"
	"flowq/internal/queue"
	"flowq/internal/testsupport"
	"flowq/internal/worker"
)

func TestNewClaimantIDUnique(t *testing.T) {
	a := worker.NewClaimantID()
	b := worker.NewClaimantID()
	if a == "" || a == b {
		t.Fatalf("expected distinct claimant ids, got %q and %q", a, b)
	}
}

func TestRunOnceProcessesBatch(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBatchSize(10))
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		testsupport.Enqueue(t, store, "orders", map[string]any{"seq": float64(i)})
	}

	var mu sync.Mutex
	var handled []int64
	w, err := worker.New(cfg, store, logging.NewNop(), "orders", func(ctx context.Context, record *queue.Record) error {
		mu.Lock()
		defer mu.Unlock()
		handled = append(handled, record.ID)
		return nil
	})
	if err != nil {
		t.Fatalf("worker.New: %v", err)
	}

	processed, err := w.RunOnce(ctx)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if processed != 3 {
		t.Fatalf("expected 3 processed, got %d", processed)
	}
	if len(handled) != 3 {
		t.Fatalf("expected handler to see 3 records, saw %d", len(handled))
	}

	records, err := store.List(ctx, "orders", queue.StatusCompleted)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 completed records, got %d", len(records))
	}
}

func TestRunOnceReportsFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	record := testsupport.Enqueue(t, store, "orders", nil)

	w, err := worker.New(cfg, store, logging.NewNop(), "orders", func(ctx context.Context, record *queue.Record) error {
		return errors.New("downstream unavailable")
	})
	if err != nil {
		t.Fatalf("worker.New: %v", err)
	}

	if _, err := w.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	failed, err := store.GetByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if failed.Status != queue.StatusFailed {
		t.Fatalf("expected failed status, got %s", failed.Status)
	}
	if failed.RetryCount != 1 || failed.ErrorMessage != "downstream unavailable" {
		t.Fatalf("unexpected failure details: %#v", failed)
	}
}

func TestRunOnceSurvivesLostLease(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	record := testsupport.Enqueue(t, store, "orders", nil)

	// The handler simulates a stall long enough for the sweep to reclaim
	// the record before the worker reports.
	w, err := worker.New(cfg, store, logging.NewNop(), "orders", func(ctx context.Context, rec *queue.Record) error {
		time.Sleep(5 * time.Millisecond)
		if _, err := store.ReclaimOrphans(ctx, time.Millisecond); err != nil {
			t.Errorf("ReclaimOrphans: %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("worker.New: %v", err)
	}

	if _, err := w.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	reclaimed, err := store.GetByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reclaimed.Status != queue.StatusPending {
		t.Fatalf("expected record back in pending after reclaim, got %s", reclaimed.Status)
	}
	if reclaimed.ReclaimCount != 1 {
		t.Fatalf("expected reclaim count 1, got %d", reclaimed.ReclaimCount)
	}
}

func TestStartStopLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	testsupport.Enqueue(t, store, "orders", nil)

	done := make(chan struct{})
	var once sync.Once
	w, err := worker.New(cfg, store, logging.NewNop(), "orders", func(ctx context.Context, record *queue.Record) error {
		once.Do(func() { close(done) })
		return nil
	})
	if err != nil {
		t.Fatalf("worker.New: %v", err)
	}

	ctx := context.Background()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := w.Start(ctx); err == nil {
		t.Fatal("expected second Start to fail")
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for record to be processed")
	}

	w.Stop()
	// Stop is idempotent.
	w.Stop()
}
