package queue_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"flowq/internal/queue"
	"flowq/internal/testsupport"
)

func TestReclaimOrphansHonorsLease(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.Enqueue(t, store, "orders", nil)
	testsupport.Enqueue(t, store, "orders", nil)

	fresh := testsupport.ClaimOne(t, store, "orders", "w1")
	stale := testsupport.ClaimOne(t, store, "orders", "w2")
	if err := store.BackdateClaim(ctx, stale.ID, time.Now().Add(-2*time.Hour)); err != nil {
		t.Fatalf("BackdateClaim: %v", err)
	}

	count, err := store.ReclaimOrphans(ctx, time.Hour)
	if err != nil {
		t.Fatalf("ReclaimOrphans failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 reclaim, got %d", count)
	}

	reclaimed, err := store.GetByID(ctx, stale.ID)
	if err != nil {
		t.Fatalf("GetByID stale: %v", err)
	}
	if reclaimed.Status != queue.StatusPending {
		t.Fatalf("expected stale record pending, got %s", reclaimed.Status)
	}
	if reclaimed.ClaimantID != "" || reclaimed.ClaimedAt != nil {
		t.Fatal("expected claim fields cleared on reclaim")
	}
	if reclaimed.RetryCount != 0 {
		t.Fatalf("expected retry count untouched, got %d", reclaimed.RetryCount)
	}
	if reclaimed.ReclaimCount != 1 {
		t.Fatalf("expected reclaim count 1, got %d", reclaimed.ReclaimCount)
	}

	held, err := store.GetByID(ctx, fresh.ID)
	if err != nil {
		t.Fatalf("GetByID fresh: %v", err)
	}
	if held.Status != queue.StatusProcessing || held.ClaimantID != "w1" {
		t.Fatalf("expected fresh claim untouched, got %#v", held)
	}
}

func TestReclaimOrphansRejectsBadLease(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.ReclaimOrphans(context.Background(), 0); err == nil {
		t.Fatal("expected error for non-positive lease")
	}
}

func TestRequeueFailedRespectsRetryCeiling(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	const maxRetries = 3

	record := testsupport.Enqueue(t, store, "orders", nil)
	for attempt := 1; attempt <= maxRetries; attempt++ {
		claimed := testsupport.ClaimOne(t, store, "orders", "w1")
		if claimed.ID != record.ID {
			t.Fatalf("expected record %d claimed, got %d", record.ID, claimed.ID)
		}
		if err := store.ReportFailure(ctx, record.ID, "w1", fmt.Sprintf("attempt %d failed", attempt)); err != nil {
			t.Fatalf("ReportFailure attempt %d: %v", attempt, err)
		}

		count, err := store.RequeueFailed(ctx, maxRetries)
		if err != nil {
			t.Fatalf("RequeueFailed attempt %d: %v", attempt, err)
		}
		if attempt < maxRetries {
			if count != 1 {
				t.Fatalf("attempt %d: expected requeue, got count %d", attempt, count)
			}
		} else if count != 0 {
			t.Fatalf("expected terminal record left alone, got count %d", count)
		}
	}

	final, err := store.GetByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if final.Status != queue.StatusFailed {
		t.Fatalf("expected terminal failed status, got %s", final.Status)
	}
	if final.RetryCount != maxRetries {
		t.Fatalf("expected retry count %d, got %d", maxRetries, final.RetryCount)
	}
	if !final.TerminallyFailed(maxRetries) {
		t.Fatal("expected record to report terminal failure")
	}
	if final.ErrorMessage != fmt.Sprintf("attempt %d failed", maxRetries) {
		t.Fatalf("expected last error retained, got %q", final.ErrorMessage)
	}
}

// Full lifecycle walk: three records for one flow claimed by two workers,
// one failing through to the terminal state.
func TestWorkDistributionScenario(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	base := time.Now().Add(-time.Minute).UTC()
	var ids []int64
	for i := 0; i < 3; i++ {
		record := testsupport.Enqueue(t, store, "orders", map[string]any{"seq": float64(i)})
		if err := store.BackdateCreation(ctx, record.ID, base.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("BackdateCreation: %v", err)
		}
		ids = append(ids, record.ID)
	}

	w1Batch, err := store.ClaimBatch(ctx, "orders", 2, "w1")
	if err != nil {
		t.Fatalf("w1 claim: %v", err)
	}
	if len(w1Batch) != 2 || w1Batch[0].ID != ids[0] || w1Batch[1].ID != ids[1] {
		t.Fatalf("expected w1 to claim %v in order, got %#v", ids[:2], w1Batch)
	}

	w2Batch, err := store.ClaimBatch(ctx, "orders", 2, "w2")
	if err != nil {
		t.Fatalf("w2 claim: %v", err)
	}
	if len(w2Batch) != 1 || w2Batch[0].ID != ids[2] {
		t.Fatalf("expected w2 to claim record %d, got %#v", ids[2], w2Batch)
	}

	empty, err := store.ClaimBatch(ctx, "orders", 2, "w3")
	if err != nil {
		t.Fatalf("w3 claim: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected drained queue, got %d records", len(empty))
	}

	const maxRetries = 3
	if err := store.ReportFailure(ctx, ids[0], "w1", "boom"); err != nil {
		t.Fatalf("ReportFailure: %v", err)
	}
	failed, err := store.GetByID(ctx, ids[0])
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if failed.Status != queue.StatusFailed || failed.RetryCount != 1 {
		t.Fatalf("expected failed with retry count 1, got %#v", failed)
	}

	count, err := store.RequeueFailed(ctx, maxRetries)
	if err != nil {
		t.Fatalf("RequeueFailed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 requeue, got %d", count)
	}

	for attempt := 2; attempt <= maxRetries; attempt++ {
		claimed := testsupport.ClaimOne(t, store, "orders", "w1")
		if claimed.ID != ids[0] {
			t.Fatalf("expected record %d reclaimed, got %d", ids[0], claimed.ID)
		}
		if err := store.ReportFailure(ctx, ids[0], "w1", "boom"); err != nil {
			t.Fatalf("ReportFailure attempt %d: %v", attempt, err)
		}
		if _, err := store.RequeueFailed(ctx, maxRetries); err != nil {
			t.Fatalf("RequeueFailed attempt %d: %v", attempt, err)
		}
	}

	terminal, err := store.GetByID(ctx, ids[0])
	if err != nil {
		t.Fatalf("GetByID terminal: %v", err)
	}
	if terminal.Status != queue.StatusFailed || terminal.RetryCount != maxRetries {
		t.Fatalf("expected terminal failure after %d attempts, got %#v", maxRetries, terminal)
	}

	stats, err := store.Stats(ctx, "orders")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	counts := make(map[queue.Status]int)
	for _, entry := range stats {
		if entry.FlowName != "orders" {
			t.Fatalf("unexpected flow in stats: %s", entry.FlowName)
		}
		counts[entry.Status] = entry.Count
	}
	if counts[queue.StatusFailed] != 1 || counts[queue.StatusProcessing] != 2 {
		t.Fatalf("unexpected stats: %#v", counts)
	}
}
