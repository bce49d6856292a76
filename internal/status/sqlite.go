package status

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"time"

	"wpp/internal/sqlstore"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// SQLiteStore persists statuses in their own SQLite database so the API
// process and a separate worker process share one view.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Open connects to (or creates) the status database at path.
func Open(path string) (*SQLiteStore, error) {
	db, err := sqlstore.OpenSQLite(path)
	if err != nil {
		return nil, unavailable("open", err)
	}
	schema := sqlstore.Schema{Name: "status", SQL: schemaSQL, Version: schemaVersion}
	if err := sqlstore.EnsureSchema(context.Background(), db, schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Ping checks the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := sqlstore.Ping(ctx, s.db); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// SetIfAbsent inserts the row, or overwrites a reclaimable one, in a single
// upsert so concurrent callers cannot both win.
func (s *SQLiteStore) SetIfAbsent(ctx context.Context, ref string, value Status) (bool, error) {
	if err := checkValue("set if absent", value); err != nil {
		return false, err
	}
	res, err := sqlstore.ExecWithRetry(ctx, s.db,
		`INSERT INTO submission_status (reference, status, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(reference) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at
         WHERE submission_status.status = ?`,
		ref, string(value), sqlstore.Timestamp(time.Now()), string(Failed),
	)
	if err != nil {
		return false, unavailable("set if absent", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, unavailable("set if absent", err)
	}
	return affected > 0, nil
}

// Get returns the status for ref.
func (s *SQLiteStore) Get(ctx context.Context, ref string) (Status, bool, error) {
	entry, err := s.Lookup(ctx, ref)
	if err != nil || entry == nil {
		return "", false, err
	}
	return entry.Status, true, nil
}

// Lookup returns the full row for ref, or nil when absent.
func (s *SQLiteStore) Lookup(ctx context.Context, ref string) (*Entry, error) {
	ctx = sqlstore.EnsureContext(ctx)
	var (
		value     string
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT status, updated_at FROM submission_status WHERE reference = ?`, ref,
	).Scan(&value, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("get", err)
	}
	return &Entry{Reference: ref, Status: Status(value), UpdatedAt: sqlstore.ParseTimestamp(updatedAt)}, nil
}

// Set overwrites the status for ref.
func (s *SQLiteStore) Set(ctx context.Context, ref string, value Status) error {
	if err := checkValue("set", value); err != nil {
		return err
	}
	_, err := sqlstore.ExecWithRetry(ctx, s.db,
		`INSERT INTO submission_status (reference, status, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(reference) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at`,
		ref, string(value), sqlstore.Timestamp(time.Now()),
	)
	if err != nil {
		return unavailable("set", err)
	}
	return nil
}

// Delete removes ref.
func (s *SQLiteStore) Delete(ctx context.Context, ref string) error {
	if _, err := sqlstore.ExecWithRetry(ctx, s.db, `DELETE FROM submission_status WHERE reference = ?`, ref); err != nil {
		return unavailable("delete", err)
	}
	return nil
}

// Exists reports whether ref has a row.
func (s *SQLiteStore) Exists(ctx context.Context, ref string) (bool, error) {
	_, ok, err := s.Get(ctx, ref)
	return ok, err
}

// Counts returns the number of references per status.
func (s *SQLiteStore) Counts(ctx context.Context) (map[Status]int, error) {
	ctx = sqlstore.EnsureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM submission_status GROUP BY status`)
	if err != nil {
		return nil, unavailable("counts", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var (
			value string
			count int
		)
		if err := rows.Scan(&value, &count); err != nil {
			return nil, unavailable("counts", err)
		}
		counts[Status(value)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("counts", err)
	}
	return counts, nil
}
