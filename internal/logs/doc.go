// Package logs reads the daemon's JSON run log for `wpp logs`.
//
// Tail returns the last N matching lines with bounded memory and an offset
// that a follow loop passes back in to read only what was appended since.
// A Filter narrows output to one txnReference or a minimum level; lines that
// are not JSON are only kept when no filter is set.
package logs
