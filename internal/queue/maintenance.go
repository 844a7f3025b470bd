package queue

import (
	"context"
	"fmt"
	"time"
)

// ReclaimOrphans returns processing records whose lease expired back to
// pending so another instance can claim them. The crashed attempt was
// never evaluated by a consumer, so retry_count stays untouched;
// reclaim_count is incremented instead so runaway reclaim loops stay
// visible to operators.
//
// The sweep and a live claimant's own completion report race on the same
// guarded columns; whichever update runs first wins and the other matches
// no rows.
func (s *Store) ReclaimOrphans(ctx context.Context, lease time.Duration) (int64, error) {
	if lease <= 0 {
		return 0, fmt.Errorf("reclaim orphans: lease duration must be positive, got %s", lease)
	}

	now := time.Now().UTC()
	cutoff := now.Add(-lease)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE queue_records
         SET status = ?, claimant_id = NULL, claimed_at = NULL,
             reclaim_count = reclaim_count + 1, updated_at = ?
         WHERE status = ? AND claimed_at IS NOT NULL AND claimed_at < ?`,
		StatusPending,
		formatTimestamp(now),
		StatusProcessing,
		formatTimestamp(cutoff),
	)
	if err != nil {
		return 0, storeUnavailable("reclaim orphans", err)
	}
	return res.RowsAffected()
}

// RequeueFailed moves failed records that have not exhausted their retries
// back to pending. error_message and retry_count are retained as history;
// records at or past the ceiling stay failed until an operator intervenes.
func (s *Store) RequeueFailed(ctx context.Context, maxRetries int) (int64, error) {
	if maxRetries < 0 {
		return 0, fmt.Errorf("requeue failed: max retries must not be negative, got %d", maxRetries)
	}

	res, err := s.execWithRetry(
		ctx,
		`UPDATE queue_records
         SET status = ?, updated_at = ?
         WHERE status = ? AND retry_count < ?`,
		StatusPending,
		formatTimestamp(time.Now()),
		StatusFailed,
		maxRetries,
	)
	if err != nil {
		return 0, storeUnavailable("requeue failed", err)
	}
	return res.RowsAffected()
}
