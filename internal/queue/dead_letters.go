package queue

import (
	"context"
	"strings"
	"time"

	"wpp/internal/sqlstore"
)

// DeadLetter records a popped message that could not be processed.
func (s *Store) DeadLetter(ctx context.Context, msg *Message, reason string) error {
	if msg == nil {
		return nil
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unspecified"
	}
	enqueued := msg.EnqueuedAt
	if enqueued.IsZero() {
		enqueued = time.Now()
	}
	_, err := sqlstore.ExecWithRetry(ctx, s.db,
		`INSERT INTO dead_letters (message_id, payload, reason, enqueued_at, failed_at) VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.Payload, reason, sqlstore.Timestamp(enqueued), sqlstore.Timestamp(time.Now()),
	)
	if err != nil {
		return unavailable("dead letter", err)
	}
	return nil
}

// DeadLetters returns up to limit dead letters, newest first. A limit <= 0
// returns all of them.
func (s *Store) DeadLetters(ctx context.Context, limit int) ([]DeadLetter, error) {
	ctx = sqlstore.EnsureContext(ctx)
	query := `SELECT id, message_id, payload, reason, enqueued_at, failed_at FROM dead_letters ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("dead letters", err)
	}
	defer rows.Close()

	var letters []DeadLetter
	for rows.Next() {
		var (
			letter     DeadLetter
			enqueuedAt string
			failedAt   string
		)
		if err := rows.Scan(&letter.ID, &letter.MessageID, &letter.Payload, &letter.Reason, &enqueuedAt, &failedAt); err != nil {
			return nil, unavailable("dead letters", err)
		}
		letter.EnqueuedAt = sqlstore.ParseTimestamp(enqueuedAt)
		letter.FailedAt = sqlstore.ParseTimestamp(failedAt)
		letters = append(letters, letter)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("dead letters", err)
	}
	return letters, nil
}

// Health aggregates queue state for diagnostic output.
func (s *Store) Health(ctx context.Context) (Health, error) {
	ctx = sqlstore.EnsureContext(ctx)
	health := Health{DBPath: s.path}
	var oldest *string
	err := s.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM work_queue),
                (SELECT COUNT(*) FROM dead_letters),
                (SELECT enqueued_at FROM work_queue ORDER BY id LIMIT 1)`,
	).Scan(&health.Depth, &health.DeadLetters, &oldest)
	if err != nil {
		return health, unavailable("health", err)
	}
	if oldest != nil {
		health.OldestEnqueuedAt = sqlstore.ParseTimestamp(*oldest)
	}
	return health, nil
}
