// Package daemonctl inspects and stops a running wpp daemon through its pid
// file and worker lock.
package daemonctl

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"wpp/internal/config"
)

// ErrDaemonNotRunning indicates no live process owns the pid file.
var ErrDaemonNotRunning = errors.New("daemon not running")

const pollInterval = 100 * time.Millisecond

// Info describes the daemon process as seen from outside.
type Info struct {
	PID int
	// Alive reports whether PID refers to a live process.
	Alive bool
	// LockHeld reports whether some process holds the worker lock.
	LockHeld bool
	PIDPath  string
	LockPath string
}

// StopResult captures daemon stop/termination outcome.
type StopResult struct {
	PID        int
	ForcedKill bool
}

// Inspect reads the pid file and probes the worker lock.
func Inspect(cfg *config.Config) (Info, error) {
	info := Info{PIDPath: cfg.PIDPath(), LockPath: cfg.WorkerLockPath()}

	pid, err := readPID(info.PIDPath)
	if err != nil {
		return info, err
	}
	info.PID = pid
	info.Alive = pid > 0 && processAlive(pid)

	held, err := lockHeld(info.LockPath)
	if err != nil {
		return info, err
	}
	info.LockHeld = held
	return info, nil
}

// Stop sends SIGTERM to the daemon and waits up to grace for it to exit. When
// force is set and the process outlives grace it is killed and its pid file
// removed.
func Stop(cfg *config.Config, grace time.Duration, force bool) (StopResult, error) {
	info, err := Inspect(cfg)
	if err != nil {
		return StopResult{}, err
	}
	if !info.Alive {
		return StopResult{}, ErrDaemonNotRunning
	}
	if info.PID == os.Getpid() {
		return StopResult{}, fmt.Errorf("refusing to signal current process (pid %d)", info.PID)
	}

	result := StopResult{PID: info.PID}
	if err := unix.Kill(info.PID, unix.SIGTERM); err != nil {
		return result, fmt.Errorf("signal daemon process %d: %w", info.PID, err)
	}
	if waitForExit(info.PID, grace) {
		return result, nil
	}
	if !force {
		return result, fmt.Errorf("daemon process %d still running after %s", info.PID, grace)
	}

	if err := unix.Kill(info.PID, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
		return result, fmt.Errorf("kill daemon process %d: %w", info.PID, err)
	}
	result.ForcedKill = true
	if err := os.Remove(info.PIDPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return result, fmt.Errorf("remove pid file %q: %w", info.PIDPath, err)
	}
	return result, nil
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read daemon pid file %q: %w", path, err)
	}
	pidStr := strings.TrimSpace(string(data))
	if pidStr == "" {
		return 0, nil
	}
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid %q in %s", pidStr, path)
	}
	return pid, nil
}

// processAlive uses signal 0, which checks existence and permission only.
func processAlive(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

func lockHeld(path string) (bool, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("probe worker lock: %w", err)
	}
	if ok {
		_ = lock.Unlock()
	}
	return !ok, nil
}

func waitForExit(pid int, grace time.Duration) bool {
	deadline := time.Now().Add(grace)
	for {
		if !processAlive(pid) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(pollInterval)
	}
}
