package daemonrun_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"wpp/internal/daemonrun"
	"wpp/internal/queue"
	"wpp/internal/testsupport"
	"wpp/internal/worker"
)

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- daemonrun.Run(ctx, cfg, daemonrun.Options{WorkerOnly: true}) }()

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(cfg.PIDPath()); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("pid file never written")
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if _, err := os.Stat(cfg.PIDPath()); !os.IsNotExist(err) {
		t.Fatal("expected pid file removed")
	}
	logs, _ := filepath.Glob(filepath.Join(cfg.Paths.LogDir, "wpp-*.log"))
	if len(logs) != 1 {
		t.Fatalf("expected one run log, got %v", logs)
	}
}

func TestRunReturnsFatalWorkerError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	q, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	if _, err := q.Append(context.Background(), []byte("{broken")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	_ = q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = daemonrun.Run(ctx, cfg, daemonrun.Options{WorkerOnly: true})
	if !errors.Is(err, worker.ErrUndecodable) {
		t.Fatalf("expected ErrUndecodable, got %v", err)
	}
}

func TestRunFailsPreflight(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Records.Driver = "mysql"

	err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{WorkerOnly: true})
	if err == nil {
		t.Fatal("expected preflight failure")
	}
}
