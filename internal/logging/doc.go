// Package logging builds the slog loggers shared by the API server, the
// worker loop and the CLI.
//
// Console output uses a compact human-readable handler; the per-run log file
// always receives JSON. Context helpers tag records with the txnReference,
// queue message ID and request correlation ID carried on the context.
package logging
