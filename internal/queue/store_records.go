package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Enqueue inserts a new pending record for a flow. This is the only
// external write path into pending; payload is stored as an opaque JSON
// document.
func (s *Store) Enqueue(ctx context.Context, flowName string, payload map[string]any) (*Record, error) {
	flowName = strings.TrimSpace(flowName)
	if flowName == "" {
		return nil, errors.New("enqueue: flow name is required")
	}

	var payloadJSON any
	if len(payload) > 0 {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		payloadJSON = string(data)
	}

	timestamp := formatTimestamp(time.Now())
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO queue_records (flow_name, payload_json, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)`,
		flowName,
		payloadJSON,
		StatusPending,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, storeUnavailable("enqueue", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a queue record by identifier. A missing record returns
// nil without error.
func (s *Store) GetByID(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM queue_records WHERE id = ?`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeUnavailable("get record", err)
	}
	return record, nil
}

// List returns records ordered by creation time, optionally filtered by
// flow (empty matches all flows) and status set.
func (s *Store) List(ctx context.Context, flowName string, statuses ...Status) ([]*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM queue_records`
	var (
		clauses []string
		args    []any
	)
	if flowName = strings.TrimSpace(flowName); flowName != "" {
		clauses = append(clauses, "flow_name = ?")
		args = append(args, flowName)
	}
	if len(statuses) > 0 {
		clauses = append(clauses, "status IN ("+makePlaceholders(len(statuses))+")")
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeUnavailable("list records", err)
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

const recordColumns = "id, flow_name, payload_json, status, claimant_id, claimed_at, completed_at, error_message, retry_count, reclaim_count, created_at, updated_at"

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id           int64
		flowName     string
		payloadRaw   sql.NullString
		statusStr    string
		claimantID   sql.NullString
		claimedRaw   sql.NullString
		completedRaw sql.NullString
		errorMessage sql.NullString
		retryCount   int
		reclaimCount int
		createdRaw   string
		updatedRaw   string
	)

	if err := scanner.Scan(
		&id,
		&flowName,
		&payloadRaw,
		&statusStr,
		&claimantID,
		&claimedRaw,
		&completedRaw,
		&errorMessage,
		&retryCount,
		&reclaimCount,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	record := &Record{
		ID:           id,
		FlowName:     flowName,
		Status:       Status(statusStr),
		ClaimantID:   claimantID.String,
		ErrorMessage: errorMessage.String,
		RetryCount:   retryCount,
		ReclaimCount: reclaimCount,
	}

	if payloadRaw.Valid && payloadRaw.String != "" {
		if err := json.Unmarshal([]byte(payloadRaw.String), &record.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal payload for record %d: %w", id, err)
		}
	}

	created, err := parseTimeString(createdRaw)
	if err != nil {
		return nil, fmt.Errorf("parse created_at for record %d: %w", id, err)
	}
	record.CreatedAt = created

	updated, err := parseTimeString(updatedRaw)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at for record %d: %w", id, err)
	}
	record.UpdatedAt = updated

	if claimedRaw.Valid {
		claimed, err := parseTimeString(claimedRaw.String)
		if err != nil {
			return nil, fmt.Errorf("parse claimed_at for record %d: %w", id, err)
		}
		record.ClaimedAt = &claimed
	}
	if completedRaw.Valid {
		completed, err := parseTimeString(completedRaw.String)
		if err != nil {
			return nil, fmt.Errorf("parse completed_at for record %d: %w", id, err)
		}
		record.CompletedAt = &completed
	}
	return record, nil
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	if t, err := time.Parse(timestampFormat, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
