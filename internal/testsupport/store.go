package testsupport

import (
	"context"
	"testing"

	"wpp/internal/config"
	"wpp/internal/queue"
	"wpp/internal/records"
	"wpp/internal/status"
)

// MustOpenQueue opens the work queue for tests and registers cleanup.
func MustOpenQueue(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()
	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// MustOpenStatus opens the SQLite status store for tests and registers cleanup.
func MustOpenStatus(t testing.TB, cfg *config.Config) *status.SQLiteStore {
	t.Helper()
	store, err := status.Open(cfg.StatusDBPath())
	if err != nil {
		t.Fatalf("status.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// MustOpenRecords opens the records store for tests and registers cleanup.
func MustOpenRecords(t testing.TB, cfg *config.Config) *records.Store {
	t.Helper()
	store, err := records.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("records.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}
