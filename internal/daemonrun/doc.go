// Package daemonrun runs the wpp daemon in the foreground: it sets up the
// per-run log file, prunes old run logs, runs preflight checks, opens the
// stores and waits for a signal or a fatal worker error.
package daemonrun
