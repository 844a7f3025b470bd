package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a queue record.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// Record represents a unit of work persisted in the queue.
//
// Payload is opaque to the queue and interpreted only by the consumer.
// ClaimantID and ClaimedAt are set while a flow instance holds the record
// and cleared on every transition out of processing. RetryCount counts
// reported failures only; orphan reclaims increment ReclaimCount instead
// so a crashed attempt never burns a retry.
type Record struct {
	ID           int64
	FlowName     string
	Payload      map[string]any
	Status       Status
	ClaimantID   string
	ClaimedAt    *time.Time
	CompletedAt  *time.Time
	ErrorMessage string
	RetryCount   int
	ReclaimCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Retryable reports whether a failed record is still eligible for
// re-queueing under the given retry ceiling. The retryable/terminal
// distinction is derived from RetryCount rather than persisted.
func (r *Record) Retryable(maxRetries int) bool {
	return r.Status == StatusFailed && r.RetryCount < maxRetries
}

// TerminallyFailed reports whether a record has exhausted its retries and
// requires operator intervention.
func (r *Record) TerminallyFailed(maxRetries int) bool {
	return r.Status == StatusFailed && r.RetryCount >= maxRetries
}

// FlowStatusCount is one cell of the queue status aggregation.
type FlowStatusCount struct {
	FlowName string
	Status   Status
	Count    int
}

// HealthSummary describes aggregated record counts per lifecycle state.
type HealthSummary struct {
	Total          int
	Pending        int
	Processing     int
	Completed      int
	Failed         int
	FailedTerminal int
}

// DatabaseHealth captures diagnostic information about the queue database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TableExists      bool
	MissingColumns   []string
	IntegrityCheck   bool
	TotalRecords     int
	Error            string
}
