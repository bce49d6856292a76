package status_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"wpp/internal/services"
	"wpp/internal/status"
)

func openStores(t *testing.T) map[string]status.Store {
	t.Helper()
	sqliteStore, err := status.Open(filepath.Join(t.TempDir(), "status.db"))
	if err != nil {
		t.Fatalf("status.Open: %v", err)
	}
	t.Cleanup(func() { _ = sqliteStore.Close() })
	return map[string]status.Store{
		"sqlite": sqliteStore,
		"memory": status.NewMemory(),
	}
}

func TestLifecycleTransitions(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			ref := "b0f95582-c11b-43b4"

			if ok, err := store.Exists(ctx, ref); err != nil || ok {
				t.Fatalf("expected absent, got ok=%v err=%v", ok, err)
			}
			claimed, err := store.SetIfAbsent(ctx, ref, status.InProgress)
			if err != nil || !claimed {
				t.Fatalf("first claim: claimed=%v err=%v", claimed, err)
			}
			value, ok, err := store.Get(ctx, ref)
			if err != nil || !ok || value != status.InProgress {
				t.Fatalf("unexpected get: %q %v %v", value, ok, err)
			}

			if claimed, _ := store.SetIfAbsent(ctx, ref, status.InProgress); claimed {
				t.Fatal("second claim on in-progress should fail")
			}

			if err := store.Set(ctx, ref, status.Done); err != nil {
				t.Fatalf("set done: %v", err)
			}
			if claimed, _ := store.SetIfAbsent(ctx, ref, status.InProgress); claimed {
				t.Fatal("claim on done should fail")
			}
			if value, _, _ := store.Get(ctx, ref); value != status.Done {
				t.Fatalf("expected done, got %q", value)
			}

			if err := store.Delete(ctx, ref); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, ok, _ := store.Get(ctx, ref); ok {
				t.Fatal("expected absent after delete")
			}
			if err := store.Delete(ctx, ref); err != nil {
				t.Fatalf("deleting absent ref should succeed: %v", err)
			}
		})
	}
}

func TestFailedIsReclaimable(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Set(ctx, "T2", status.Failed); err != nil {
				t.Fatalf("set failed: %v", err)
			}
			claimed, err := store.SetIfAbsent(ctx, "T2", status.InProgress)
			if err != nil || !claimed {
				t.Fatalf("expected reclaim of failed, claimed=%v err=%v", claimed, err)
			}
			if value, _, _ := store.Get(ctx, "T2"); value != status.InProgress {
				t.Fatalf("expected in-progress, got %q", value)
			}
		})
	}
}

func TestConcurrentClaimsHaveOneWinner(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var (
				wg   sync.WaitGroup
				wins atomic.Int32
			)
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					claimed, err := store.SetIfAbsent(ctx, "race", status.InProgress)
					if err != nil {
						t.Errorf("SetIfAbsent: %v", err)
						return
					}
					if claimed {
						wins.Add(1)
					}
				}()
			}
			wg.Wait()
			if wins.Load() != 1 {
				t.Fatalf("expected exactly one winner, got %d", wins.Load())
			}
		})
	}
}

func TestInvalidStatusRejected(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			err := store.Set(context.Background(), "x", status.Status("queued"))
			if !errors.Is(err, status.ErrInvalidStatus) || !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected invalid status error, got %v", err)
			}
		})
	}
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.db")
	ctx := context.Background()

	first, err := status.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := first.SetIfAbsent(ctx, "persisted", status.InProgress); err != nil {
		t.Fatalf("claim: %v", err)
	}
	_ = first.Close()

	second, err := status.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	entry, err := second.Lookup(ctx, "persisted")
	if err != nil || entry == nil {
		t.Fatalf("lookup: %v %v", entry, err)
	}
	if entry.Status != status.InProgress || entry.UpdatedAt.IsZero() {
		t.Fatalf("unexpected entry %+v", entry)
	}
	counts, err := second.Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts[status.InProgress] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestClosedStoreReportsUnavailable(t *testing.T) {
	store, err := status.Open(filepath.Join(t.TempDir(), "status.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = store.Close()
	_, err = store.SetIfAbsent(context.Background(), "x", status.InProgress)
	if !errors.Is(err, status.ErrStatusStoreUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
