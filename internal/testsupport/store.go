package testsupport

import (
	"context"
	"testing"

	"flowq/internal/config"
	"flowq/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// Enqueue inserts a pending record for tests using the provided store.
func Enqueue(t testing.TB, store *queue.Store, flowName string, payload map[string]any) *queue.Record {
	t.Helper()

	record, err := store.Enqueue(context.Background(), flowName, payload)
	if err != nil {
		t.Fatalf("store.Enqueue: %v", err)
	}
	return record
}

// ClaimOne claims a single record for tests and fails unless exactly one
// was returned.
func ClaimOne(t testing.TB, store *queue.Store, flowName, claimantID string) *queue.Record {
	t.Helper()

	records, err := store.ClaimBatch(context.Background(), flowName, 1, claimantID)
	if err != nil {
		t.Fatalf("store.ClaimBatch: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 claimed record, got %d", len(records))
	}
	return records[0]
}
