package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ClaimBatch atomically marks up to batchSize pending records as owned by
// claimantID and returns them. Records are taken in creation order within
// the requested flow; an empty flowName claims across all flows. The call
// returns fewer records than requested (possibly none) when the queue is
// drained — it never waits for work to appear.
//
// The claim is one UPDATE statement. SQLite holds the write lock for its
// whole duration, so concurrent claimers serialize behind busy_timeout and
// a record is marked for exactly one of them; there is no window in which
// two callers can select the same pending row.
func (s *Store) ClaimBatch(ctx context.Context, flowName string, batchSize int, claimantID string) ([]*Record, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("claim batch: batch size must be at least 1, got %d", batchSize)
	}
	claimantID = strings.TrimSpace(claimantID)
	if claimantID == "" {
		return nil, errors.New("claim batch: claimant id is required")
	}
	flowName = strings.TrimSpace(flowName)

	stamp := formatTimestamp(time.Now())
	res, err := s.execWithRetry(
		ctx,
		`UPDATE queue_records
         SET status = ?, claimant_id = ?, claimed_at = ?, updated_at = ?
         WHERE status = ? AND id IN (
             SELECT id FROM queue_records
             WHERE status = ? AND (? = '' OR flow_name = ?)
             ORDER BY created_at, id
             LIMIT ?
         )`,
		StatusProcessing,
		claimantID,
		stamp,
		stamp,
		StatusPending,
		StatusPending,
		flowName,
		flowName,
		batchSize,
	)
	if err != nil {
		return nil, storeUnavailable("claim batch", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("claim batch rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}

	// claimed_at carries nanosecond precision and claimant IDs are unique
	// per live instance, so the pair identifies exactly this claim.
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+recordColumns+` FROM queue_records
         WHERE claimant_id = ? AND claimed_at = ? AND status = ?
         ORDER BY created_at, id`,
		claimantID,
		stamp,
		StatusProcessing,
	)
	if err != nil {
		return nil, storeUnavailable("read claimed batch", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
