// Package daemon coordinates the long-running wpp process.
//
// It wires the work queue, status store, records store, intake gate and
// worker into a single lifecycle with flock-based locking so only one worker
// ever consumes the queue. In serve mode it also runs the HTTP intake server.
//
// Keep orchestration logic here: intake and persistence rules live in their
// own packages while the daemon focuses on startup, shutdown, and high level
// coordination.
package daemon
