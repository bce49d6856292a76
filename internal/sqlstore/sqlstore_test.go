package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

type busyErr struct{ code int }

func (e busyErr) Error() string { return "busy" }
func (e busyErr) Code() int     { return e.code }

func TestIsBusy(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{busyErr{code: 5}, true},
		{busyErr{code: 517}, true},
		{busyErr{code: 19}, false},
		{errors.New("database is locked"), true},
		{errors.New("constraint failed"), false},
	}
	for _, tc := range cases {
		if got := IsBusy(tc.err); got != tc.want {
			t.Fatalf("IsBusy(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestRetryOnBusyRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	err := RetryOnBusy(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return busyErr{code: 5}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RetryOnBusy: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryOnBusyStopsOnOtherErrors(t *testing.T) {
	attempts := 0
	boom := errors.New("boom")
	err := RetryOnBusy(context.Background(), func() error {
		attempts++
		return boom
	})
	if !errors.Is(err, boom) || attempts != 1 {
		t.Fatalf("expected single attempt with boom, got %v after %d", err, attempts)
	}
}

func TestRetryOnBusyHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RetryOnBusy(ctx, func() error { return busyErr{code: 5} })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEnsureSchemaCreatesAndVerifies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "test.db")
	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	schema := Schema{
		Name:    "test",
		Version: 2,
		SQL: `CREATE TABLE schema_version (version INTEGER NOT NULL);
CREATE TABLE things (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL);`,
	}
	ctx := context.Background()
	if err := EnsureSchema(ctx, db, schema); err != nil {
		t.Fatalf("EnsureSchema create: %v", err)
	}
	if err := EnsureSchema(ctx, db, schema); err != nil {
		t.Fatalf("EnsureSchema verify: %v", err)
	}

	schema.Version = 3
	if err := EnsureSchema(ctx, db, schema); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestInTxRollsBackOnError(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "tx.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	ctx := context.Background()
	if _, err := ExecWithRetry(ctx, db, "CREATE TABLE t (v TEXT)"); err != nil {
		t.Fatalf("create: %v", err)
	}

	boom := errors.New("boom")
	err = InTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO t (v) VALUES ('x')"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM t").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rollback, found %d rows", count)
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 30, 0, 123, time.UTC)
	if got := ParseTimestamp(Timestamp(now)); !got.Equal(now) {
		t.Fatalf("round trip mismatch: %v vs %v", got, now)
	}
	if !ParseTimestamp("garbage").IsZero() {
		t.Fatal("expected zero time for garbage")
	}
	if NullableString("").Valid || !NullableString("x").Valid {
		t.Fatal("unexpected NullableString result")
	}
}
