package queue

import (
	"context"
	"time"
)

// BackdateClaim rewrites a record's claim timestamp so tests can expire a
// lease without sleeping through it.
func (s *Store) BackdateClaim(ctx context.Context, id int64, claimedAt time.Time) error {
	_, err := s.execWithRetry(
		ctx,
		`UPDATE queue_records SET claimed_at = ? WHERE id = ?`,
		formatTimestamp(claimedAt),
		id,
	)
	return err
}

// BackdateCreation rewrites a record's creation timestamp for ordering tests.
func (s *Store) BackdateCreation(ctx context.Context, id int64, createdAt time.Time) error {
	_, err := s.execWithRetry(
		ctx,
		`UPDATE queue_records SET created_at = ? WHERE id = ?`,
		formatTimestamp(createdAt),
		id,
	)
	return err
}

// SetRawCreatedAt writes an arbitrary created_at value so tests can exercise
// the corrupted-timestamp path.
func (s *Store) SetRawCreatedAt(ctx context.Context, id int64, value string) error {
	_, err := s.execWithRetry(
		ctx,
		`UPDATE queue_records SET created_at = ? WHERE id = ?`,
		value,
		id,
	)
	return err
}
