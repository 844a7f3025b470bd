// Package worker runs the claim loop for one flow instance.
//
// A Worker polls the queue store, claims a batch of records under a unique
// claimant identity, hands each record to the registered Handler, and
// reports the outcome. Results that arrive after the lease was lost are
// discarded: the store rejects them and the worker logs and moves on,
// since the record already belongs to someone else.
package worker
