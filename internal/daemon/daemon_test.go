package daemon_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"wpp/internal/config"
	"wpp/internal/daemon"
	"wpp/internal/logging"
	"wpp/internal/status"
	"wpp/internal/testsupport"
)

func newDaemon(t *testing.T, cfg *config.Config, opts ...daemon.Option) *daemon.Daemon {
	t.Helper()
	d, err := daemon.New(cfg,
		testsupport.MustOpenQueue(t, cfg),
		testsupport.MustOpenStatus(t, cfg),
		testsupport.MustOpenRecords(t, cfg),
		logging.NewNop(),
		opts...,
	)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func waitFor(t *testing.T, desc string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newDaemon(t, cfg, daemon.WithoutAPI())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	st := d.Status(ctx)
	if !st.Running || !st.Worker.Running {
		t.Fatalf("expected daemon and worker running, got %+v", st)
	}
	if st.APIAddress != "" {
		t.Fatalf("expected no api in worker mode, got %q", st.APIAddress)
	}

	// Second start should fail
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	if d.Status(ctx).Running {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestDaemonLockIsExclusive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := newDaemon(t, cfg, daemon.WithoutAPI())
	second := newDaemon(t, cfg, daemon.WithoutAPI())

	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if err := second.Start(ctx); !errors.Is(err, daemon.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}

	first.Stop()
	if err := second.Start(ctx); err != nil {
		t.Fatalf("second Start after release: %v", err)
	}
	second.Stop()
}

func TestDaemonServesAndProcesses(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newDaemon(t, cfg)

	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	addr := d.APIAddress()
	if addr == "" {
		t.Fatal("expected api address")
	}

	body := testsupport.MustEncode(t, testsupport.NewSubmission("T1", "19.01"))
	resp, err := http.Post("http://"+addr+"/wpp", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /wpp: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}

	waitFor(t, "T1 done", func() bool {
		resp, err := http.Get("http://" + addr + "/status/T1")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var payload struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return false
		}
		return payload.Status == string(status.Done)
	})

	st := d.Status(ctx)
	if st.Worker.Processed != 1 || st.StatusCounts[status.Done] != 1 {
		t.Fatalf("unexpected status %+v", st)
	}
	if st.Queue.Depth != 0 {
		t.Fatalf("expected empty queue, got %d", st.Queue.Depth)
	}

	resp, err = http.Get("http://" + addr + "/-/ready")
	if err != nil {
		t.Fatalf("GET /-/ready: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected ready, got %d", resp.StatusCode)
	}
}

func TestDaemonDoneAfterFatalWorkerError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	q := testsupport.MustOpenQueue(t, cfg)
	d, err := daemon.New(cfg, q, testsupport.MustOpenStatus(t, cfg), testsupport.MustOpenRecords(t, cfg), logging.NewNop(), daemon.WithoutAPI())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	if _, err := q.Append(context.Background(), []byte("not json")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case <-d.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not halt")
	}
	if d.Err() == nil {
		t.Fatal("expected fatal error")
	}
	if got := d.Status(context.Background()).Queue.DeadLetters; got != 1 {
		t.Fatalf("expected 1 dead letter, got %d", got)
	}
}
