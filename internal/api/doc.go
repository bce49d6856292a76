// Package api is the HTTP boundary in front of the intake gate.
//
// # Routes
//
//	POST /wpp             decode, validate and queue a submission (202)
//	GET  /status/{ref}    poll the status of a txnReference
//	GET  /-/live          liveness
//	GET  /-/ready         pings every registered store and reports the worker
//
// # Errors
//
// Failures are written as {"error": ..., "kind": ...} where kind is
// services.ErrorKind of the underlying error. Validation maps to 400,
// duplicates to 409, unknown references to 404 and unreachable stores to 503.
//
// # Design Notes
//
// DTOs use camelCase JSON tags so the response body matches the submission
// payload's own naming (txnReference). Timestamps use RFC3339 with
// milliseconds.
package api
