// Package worker runs the single consumer loop that drains the work queue.
//
// Each iteration pops one message, decodes it, persists it through the
// records store and reconciles the status store: done on success, removed
// (or failed, when failure recording is on) otherwise. Persistence failures
// never stop the loop. Undecodable payloads and status or queue outages are
// fatal: the loop dead-letters the undecodable message, records the error and
// exits so the daemon can shut down instead of silently dropping work.
//
// Cancellation is honored between iterations only; a message that has been
// popped is always carried through to its status update.
package worker
