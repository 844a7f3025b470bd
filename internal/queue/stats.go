package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Stats returns record counts grouped by flow and status, optionally
// filtered to one flow. Pure read; used by operators and health checks to
// spot backlog growth, stuck-processing buildup, and terminal-failure
// accumulation.
func (s *Store) Stats(ctx context.Context, flowName string) ([]FlowStatusCount, error) {
	query := `SELECT flow_name, status, COUNT(1) FROM queue_records`
	var args []any
	if flowName = strings.TrimSpace(flowName); flowName != "" {
		query += ` WHERE flow_name = ?`
		args = append(args, flowName)
	}
	query += ` GROUP BY flow_name, status ORDER BY flow_name, status`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeUnavailable("queue stats", err)
	}
	defer rows.Close()

	var counts []FlowStatusCount
	for rows.Next() {
		var entry FlowStatusCount
		if err := rows.Scan(&entry.FlowName, &entry.Status, &entry.Count); err != nil {
			return nil, err
		}
		counts = append(counts, entry)
	}
	return counts, rows.Err()
}

// Health aggregates queue state across all flows. Failed records are split
// into retryable and terminal using the provided retry ceiling.
func (s *Store) Health(ctx context.Context, maxRetries int) (HealthSummary, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT status, COUNT(1),
                SUM(CASE WHEN retry_count >= ? THEN 1 ELSE 0 END)
         FROM queue_records GROUP BY status`,
		maxRetries,
	)
	if err != nil {
		return HealthSummary{}, storeUnavailable("queue health", err)
	}
	defer rows.Close()

	health := HealthSummary{}
	for rows.Next() {
		var (
			status    Status
			count     int
			exhausted int
		)
		if err := rows.Scan(&status, &count, &exhausted); err != nil {
			return HealthSummary{}, err
		}
		health.Total += count
		switch status {
		case StatusPending:
			health.Pending += count
		case StatusProcessing:
			health.Processing += count
		case StatusCompleted:
			health.Completed += count
		case StatusFailed:
			health.Failed += count
			health.FailedTerminal += exhausted
		}
	}
	return health, rows.Err()
}

// CheckDatabase returns diagnostic information about the queue database.
func (s *Store) CheckDatabase(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}

	if s.path == "" {
		return health, errors.New("queue database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			health.DatabaseExists = false
			return health, nil
		}
		return health, fmt.Errorf("stat queue database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("queue database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	if s.db == nil {
		return health, errors.New("queue database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ensureContext(ctx), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping queue database: %w", err)
	}
	health.DatabaseReadable = true

	var tableName string
	row := s.db.QueryRowContext(connCtx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'queue_records'")
	if err := row.Scan(&tableName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			health.TableExists = false
		} else {
			health.Error = err.Error()
			return health, fmt.Errorf("query table info: %w", err)
		}
	} else {
		health.TableExists = true
	}

	if health.TableExists {
		colsRows, err := s.db.QueryContext(connCtx, "PRAGMA table_info(queue_records)")
		if err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("table info: %w", err)
		}
		defer colsRows.Close()

		present := make(map[string]struct{})
		for colsRows.Next() {
			var (
				cid     int
				name    string
				typeStr string
				notNull int
				dflt    any
				pk      int
			)
			if err := colsRows.Scan(&cid, &name, &typeStr, &notNull, &dflt, &pk); err != nil {
				health.Error = err.Error()
				return health, fmt.Errorf("scan table info: %w", err)
			}
			present[name] = struct{}{}
		}
		if err := colsRows.Err(); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("iterate table info: %w", err)
		}

		expected := []string{
			"id", "flow_name", "payload_json", "status", "claimant_id",
			"claimed_at", "completed_at", "error_message", "retry_count",
			"reclaim_count", "created_at", "updated_at",
		}
		for _, col := range expected {
			if _, ok := present[col]; !ok {
				health.MissingColumns = append(health.MissingColumns, col)
			}
		}

		row = s.db.QueryRowContext(connCtx, "SELECT COUNT(*) FROM queue_records")
		if err := row.Scan(&health.TotalRecords); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("count queue records: %w", err)
		}
	}

	row = s.db.QueryRowContext(connCtx, "PRAGMA integrity_check")
	var integrityResult string
	if err := row.Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")

	return health, nil
}
