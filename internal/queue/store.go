package queue

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"wpp/internal/config"
	"wpp/internal/services"
	"wpp/internal/sqlstore"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

const defaultPollInterval = 500 * time.Millisecond

// ErrQueueUnavailable wraps every backend failure.
var ErrQueueUnavailable = fmt.Errorf("%w: work queue unavailable", services.ErrUnavailable)

// Store manages the work queue database.
type Store struct {
	db   *sql.DB
	path string
	// notify wakes a blocked PopFront after an Append in this process. Appends
	// from other processes are picked up by polling.
	notify chan struct{}
	poll   time.Duration
}

// Open initializes or connects to the queue database under the data directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.QueueDBPath(), cfg.QueuePollInterval())
}

// OpenPath opens the queue database at path. poll bounds how long PopFront
// waits before re-checking for rows appended by another process.
func OpenPath(path string, poll time.Duration) (*Store, error) {
	db, err := sqlstore.OpenSQLite(path)
	if err != nil {
		return nil, unavailable("open", err)
	}
	schema := sqlstore.Schema{Name: "queue", SQL: schemaSQL, Version: schemaVersion}
	if err := sqlstore.EnsureSchema(context.Background(), db, schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	if poll <= 0 {
		poll = defaultPollInterval
	}
	return &Store{db: db, path: path, notify: make(chan struct{}, 1), poll: poll}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := sqlstore.Ping(ctx, s.db); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// Append adds payload at the tail and returns its message id.
func (s *Store) Append(ctx context.Context, payload []byte) (int64, error) {
	if len(payload) == 0 {
		return 0, services.Wrap(services.ErrValidation, "queue", "append", "empty payload", nil)
	}
	res, err := sqlstore.ExecWithRetry(ctx, s.db,
		`INSERT INTO work_queue (payload, enqueued_at) VALUES (?, ?)`,
		payload, sqlstore.Timestamp(time.Now()),
	)
	if err != nil {
		return 0, unavailable("append", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, unavailable("append", err)
	}
	s.wake()
	return id, nil
}

func (s *Store) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// PopFront removes and returns the oldest message, blocking until one is
// available. It returns ctx.Err() when ctx ends first; nothing is removed in
// that case.
func (s *Store) PopFront(ctx context.Context) (*Message, error) {
	ctx = sqlstore.EnsureContext(ctx)
	for {
		msg, err := s.TryPopFront(ctx)
		if err != nil || msg != nil {
			return msg, err
		}
		timer := time.NewTimer(s.poll)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-s.notify:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// TryPopFront removes and returns the oldest message, or nil when the queue
// is empty.
func (s *Store) TryPopFront(ctx context.Context) (*Message, error) {
	ctx = sqlstore.EnsureContext(ctx)
	var (
		msg        Message
		enqueuedAt string
		found      bool
	)
	err := sqlstore.RetryOnBusy(ctx, func() error {
		row := s.db.QueryRowContext(ctx,
			`DELETE FROM work_queue
             WHERE id = (SELECT MIN(id) FROM work_queue)
             RETURNING id, payload, enqueued_at`)
		scanErr := row.Scan(&msg.ID, &msg.Payload, &enqueuedAt)
		if errors.Is(scanErr, sql.ErrNoRows) {
			found = false
			return nil
		}
		found = scanErr == nil
		return scanErr
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, unavailable("pop front", err)
	}
	if !found {
		return nil, nil
	}
	msg.EnqueuedAt = sqlstore.ParseTimestamp(enqueuedAt)
	return &msg, nil
}

// Len returns the number of queued messages.
func (s *Store) Len(ctx context.Context) (int, error) {
	ctx = sqlstore.EnsureContext(ctx)
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM work_queue`).Scan(&count); err != nil {
		return 0, unavailable("len", err)
	}
	return count, nil
}

// List returns up to limit queued messages in pop order without removing
// them. A limit <= 0 returns every message.
func (s *Store) List(ctx context.Context, limit int) ([]Message, error) {
	ctx = sqlstore.EnsureContext(ctx)
	query := `SELECT id, payload, enqueued_at FROM work_queue ORDER BY id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("list", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var (
			msg        Message
			enqueuedAt string
		)
		if err := rows.Scan(&msg.ID, &msg.Payload, &enqueuedAt); err != nil {
			return nil, unavailable("list", err)
		}
		msg.EnqueuedAt = sqlstore.ParseTimestamp(enqueuedAt)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list", err)
	}
	return messages, nil
}

func unavailable(op string, err error) error {
	return services.Wrap(ErrQueueUnavailable, "queue", op, "", err)
}
