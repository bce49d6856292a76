// Package sqlstore holds the SQLite plumbing shared by the queue, status and
// records stores: connection setup with WAL pragmas, SQLITE_BUSY retries and
// versioned schema bootstrap.
package sqlstore
