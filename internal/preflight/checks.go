package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"wpp/internal/config"
	"wpp/internal/records"
)

const recordsCheckTimeout = 5 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckBindAddress validates the api_bind value without listening on it.
func CheckBindAddress(bind string) Result {
	const name = "API bind"
	host, port, err := net.SplitHostPort(strings.TrimSpace(bind))
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", bind, err)}
	}
	if port == "" {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: missing port)", bind)}
	}
	if host == "" {
		host = "*"
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s port %s", host, port)}
}

// CheckRecords opens the records database, ensures its schema and pings it.
func CheckRecords(ctx context.Context, cfg *config.Config) Result {
	name := "Records database (" + cfg.Records.Driver + ")"

	checkCtx, cancel := context.WithTimeout(ctx, recordsCheckTimeout)
	defer cancel()

	store, err := records.Open(checkCtx, cfg)
	if err != nil {
		return Result{Name: name, Detail: summarizeDBError(err)}
	}
	defer store.Close()

	if err := store.Ping(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeDBError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "reachable"}
}

// summarizeDBError produces a human-readable summary for database check failures.
func summarizeDBError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "connection timed out (database unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "connection timed out (database unreachable)"
	}
	return err.Error()
}
