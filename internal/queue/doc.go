// Package queue persists flow work records in SQLite and implements the
// claim protocol that lets independent flow instances share one durable
// queue.
//
// The Store manages the database connection, schema initialization, batch
// claiming, lifecycle transitions, orphan recovery, retry sweeps, and
// stats queries. A record is held by at most one claimant at a time: the
// claim is a single UPDATE statement, so SQLite's write serialization
// arbitrates concurrent claimers without any application-level locking.
// Recovery of abandoned work is lease-based on claimed_at; consumers must
// treat delivery as at-least-once and process idempotently.
//
// Treat this package as the single source of truth for queue semantics;
// when you add statuses or record fields, update schema.sql and bump
// schemaVersion.
package queue
