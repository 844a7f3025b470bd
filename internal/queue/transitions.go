package queue

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ReportSuccess transitions a processing record to completed. The caller
// must still own the record: a reclaimed or never-claimed record fails
// with ErrNotOwner or ErrInvalidTransition and is left untouched.
func (s *Store) ReportSuccess(ctx context.Context, id int64, claimantID string) error {
	claimantID = strings.TrimSpace(claimantID)
	if claimantID == "" {
		return fmt.Errorf("%w: report success: claimant id is required", ErrNotOwner)
	}

	stamp := formatTimestamp(time.Now())
	res, err := s.execWithRetry(
		ctx,
		`UPDATE queue_records
         SET status = ?, completed_at = ?, claimant_id = NULL, claimed_at = NULL, updated_at = ?
         WHERE id = ? AND status = ? AND claimant_id = ?`,
		StatusCompleted,
		stamp,
		stamp,
		id,
		StatusProcessing,
		claimantID,
	)
	if err != nil {
		return storeUnavailable("report success", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("report success rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}
	return s.reportConflict(ctx, "report success", id, claimantID)
}

// ReportFailure transitions a processing record to failed, recording the
// error detail and incrementing the retry count. Ownership rules match
// ReportSuccess. Whether the failure is retryable or terminal is decided
// later by comparing retry_count against the configured ceiling.
func (s *Store) ReportFailure(ctx context.Context, id int64, claimantID, errorMessage string) error {
	claimantID = strings.TrimSpace(claimantID)
	if claimantID == "" {
		return fmt.Errorf("%w: report failure: claimant id is required", ErrNotOwner)
	}

	stamp := formatTimestamp(time.Now())
	res, err := s.execWithRetry(
		ctx,
		`UPDATE queue_records
         SET status = ?, error_message = ?, retry_count = retry_count + 1,
             claimant_id = NULL, claimed_at = NULL, updated_at = ?
         WHERE id = ? AND status = ? AND claimant_id = ?`,
		StatusFailed,
		errorMessage,
		stamp,
		id,
		StatusProcessing,
		claimantID,
	)
	if err != nil {
		return storeUnavailable("report failure", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("report failure rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}
	return s.reportConflict(ctx, "report failure", id, claimantID)
}

// reportConflict diagnoses why a guarded transition update matched no rows.
func (s *Store) reportConflict(ctx context.Context, op string, id int64, claimantID string) error {
	record, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("%w: %s: record %d", ErrNotFound, op, id)
	}
	switch {
	case record.Status == StatusProcessing:
		return fmt.Errorf("%w: %s: record %d is held by %q, not %q", ErrNotOwner, op, id, record.ClaimantID, claimantID)
	case record.Status == StatusPending && record.ReclaimCount > 0:
		// The caller's lease expired and the record was reclaimed.
		return fmt.Errorf("%w: %s: record %d was reclaimed from %q", ErrNotOwner, op, id, claimantID)
	default:
		return fmt.Errorf("%w: %s: record %d is %s, not %s", ErrInvalidTransition, op, id, record.Status, StatusProcessing)
	}
}
