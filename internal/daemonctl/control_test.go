package daemonctl_test

import (
	"errors"
	"os"
	"os/exec"
	"strconv"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"wpp/internal/daemonctl"
	"wpp/internal/testsupport"
)

func TestInspectWithoutDaemon(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	info, err := daemonctl.Inspect(cfg)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if info.Alive || info.LockHeld || info.PID != 0 {
		t.Fatalf("expected idle daemon, got %+v", info)
	}

	if _, err := daemonctl.Stop(cfg, time.Second, false); !errors.Is(err, daemonctl.ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning, got %v", err)
	}
}

func TestInspectDetectsLockHolder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	lock := flock.New(cfg.WorkerLockPath())
	if ok, err := lock.TryLock(); err != nil || !ok {
		t.Fatalf("TryLock: %v %v", ok, err)
	}
	defer lock.Unlock()

	info, err := daemonctl.Inspect(cfg)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if !info.LockHeld {
		t.Fatal("expected lock to be reported held")
	}
}

func TestInspectRejectsGarbagePID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.WriteFile(cfg.PIDPath(), []byte("abc\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := daemonctl.Inspect(cfg); err == nil {
		t.Fatal("expected error for invalid pid file")
	}
}

func TestStopTerminatesProcess(t *testing.T) {
	sleep, err := exec.LookPath("sleep")
	if err != nil {
		t.Skip("sleep binary not available")
	}
	cfg := testsupport.NewConfig(t)
	proc := exec.Command(sleep, "30")
	if err := proc.Start(); err != nil {
		t.Fatalf("start sleep: %v", err)
	}
	waited := make(chan struct{})
	go func() {
		_ = proc.Wait()
		close(waited)
	}()
	t.Cleanup(func() {
		_ = proc.Process.Kill()
		<-waited
	})

	if err := os.WriteFile(cfg.PIDPath(), []byte(strconv.Itoa(proc.Process.Pid)+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := daemonctl.Stop(cfg, 5*time.Second, false)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if result.PID != proc.Process.Pid || result.ForcedKill {
		t.Fatalf("unexpected result %+v", result)
	}
	select {
	case <-waited:
	case <-time.After(5 * time.Second):
		t.Fatal("process did not exit")
	}
}
