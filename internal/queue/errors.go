package queue

import "errors"

var (
	// ErrStoreUnavailable marks transient storage failures. Nothing was
	// changed; the caller may retry the whole operation with backoff.
	ErrStoreUnavailable = errors.New("queue store unavailable")

	// ErrInvalidTransition marks an attempt to move a record along an edge
	// the lifecycle state machine does not allow, e.g. completing a record
	// that is not processing.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotOwner marks an outcome report from a claimant that no longer
	// holds the record, typically because the lease expired and the record
	// was reclaimed. The stale result must be discarded.
	ErrNotOwner = errors.New("record not owned by claimant")

	// ErrNotFound marks operations referencing an unknown record.
	ErrNotFound = errors.New("record not found")
)
