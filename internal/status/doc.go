// Package status tracks each submission's lifecycle by txnReference.
//
// A reference is absent until intake claims it with SetIfAbsent, which is the
// only way to move absent to in-progress and is atomic per reference. The
// worker then records done, or deletes the entry (absent again) when
// persistence fails. With failure recording enabled the worker writes failed
// instead; SetIfAbsent treats failed like absent so a resubmission can claim
// the reference again.
//
// Store is satisfied by the SQLite-backed store used by the daemon and by the
// in-memory store used in tests and single-process tooling.
package status
