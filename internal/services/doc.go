// Package services defines shared utilities consumed by the intake gate, the
// worker loop and the HTTP boundary.
//
// Key responsibilities:
//   - Context helpers that stamp txnReferences, queue message IDs, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so failures carry a
//     classification that callers match with errors.Is.
package services
