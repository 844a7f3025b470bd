// Package janitor runs the periodic maintenance sweep over the queue.
//
// Each sweep reclaims orphaned records whose claim lease expired and
// requeues failed records that still have retries left. The sweep is safe
// to run from multiple processes: every mutation is a guarded update, so
// concurrent sweeps simply split the affected rows between them.
package janitor
