// Package daemon ties the queue store and the maintenance sweep together
// behind a single-instance file lock.
//
// Workers may run anywhere in any number, but only one maintenance daemon
// should sweep a given database. The daemon takes an advisory flock on a
// lock file next to the database before starting, so a second instance
// pointed at the same data directory refuses to start.
package daemon
