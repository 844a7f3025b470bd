package janitor_test

import (
	"context"
	"testing"
	"time"

	"flowq/internal/janitor"
	"flowq/internal/logging"
	"flowq/internal/queue"
	"flowq/internal/testsupport"
)

func TestSweepReclaimsExpiredLeases(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithLeaseSeconds(1))
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	orphan := testsupport.Enqueue(t, store, "orders", nil)
	live := testsupport.Enqueue(t, store, "orders", nil)

	testsupport.ClaimOne(t, store, "orders", "crashed-worker")

	j, err := janitor.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("janitor.New: %v", err)
	}

	// Let the orphan's claim age past the one-second lease, then claim the
	// second record fresh so the sweep must tell the two apart.
	time.Sleep(1200 * time.Millisecond)
	testsupport.ClaimOne(t, store, "orders", "live-worker")

	result, err := j.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if result.Reclaimed != 1 {
		t.Fatalf("expected 1 reclaimed record, got %d", result.Reclaimed)
	}

	reclaimed, err := store.GetByID(ctx, orphan.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reclaimed.Status != queue.StatusPending || reclaimed.ReclaimCount != 1 {
		t.Fatalf("expected reclaimed pending record, got %#v", reclaimed)
	}

	held, err := store.GetByID(ctx, live.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if held.Status != queue.StatusProcessing || held.ClaimantID != "live-worker" {
		t.Fatalf("expected live claim to survive sweep, got %#v", held)
	}
}

func TestSweepRequeuesRetryableFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMaxRetries(2))
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()

	// Exhaust the first record before the retryable one exists, so the
	// intermediate requeues cannot touch anything else.
	exhausted := testsupport.Enqueue(t, store, "orders", nil)
	for attempt := 0; attempt < 2; attempt++ {
		got := testsupport.ClaimOne(t, store, "orders", "worker-1")
		if got.ID != exhausted.ID {
			t.Fatalf("claimed record %d, want %d", got.ID, exhausted.ID)
		}
		if err := store.ReportFailure(ctx, got.ID, "worker-1", "boom"); err != nil {
			t.Fatalf("ReportFailure: %v", err)
		}
		if attempt == 0 {
			if _, err := store.RequeueFailed(ctx, cfg.Queue.MaxRetries); err != nil {
				t.Fatalf("RequeueFailed: %v", err)
			}
		}
	}

	retryable := testsupport.Enqueue(t, store, "orders", nil)
	claimed := testsupport.ClaimOne(t, store, "orders", "worker-1")
	if claimed.ID != retryable.ID {
		t.Fatalf("claimed record %d, want %d", claimed.ID, retryable.ID)
	}
	if err := store.ReportFailure(ctx, claimed.ID, "worker-1", "boom"); err != nil {
		t.Fatalf("ReportFailure: %v", err)
	}

	j, err := janitor.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("janitor.New: %v", err)
	}

	result, err := j.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if result.Requeued != 1 {
		t.Fatalf("expected 1 requeued record, got %d", result.Requeued)
	}

	back, err := store.GetByID(ctx, retryable.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if back.Status != queue.StatusPending || back.RetryCount != 1 || back.ErrorMessage != "boom" {
		t.Fatalf("expected requeued record to keep its failure history, got %#v", back)
	}

	stuck, err := store.GetByID(ctx, exhausted.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stuck.Status != queue.StatusFailed || stuck.RetryCount != 2 {
		t.Fatalf("expected exhausted record to stay failed, got %#v", stuck)
	}
}

func TestStartStopLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	j, err := janitor.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("janitor.New: %v", err)
	}

	ctx := context.Background()
	if err := j.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := j.Start(ctx); err == nil {
		t.Fatal("expected second Start to fail")
	}

	j.Stop()
	j.Stop()
}
