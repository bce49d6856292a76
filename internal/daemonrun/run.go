package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"

	"wpp/internal/config"
	"wpp/internal/daemon"
	"wpp/internal/logging"
	"wpp/internal/preflight"
	"wpp/internal/queue"
	"wpp/internal/records"
	"wpp/internal/status"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
	// WorkerOnly skips the HTTP intake server.
	WorkerOnly bool
}

// Run starts the wpp daemon and blocks until SIGINT/SIGTERM, cancellation of
// cmdCtx, or a fatal worker error. Only the latter is returned as an error.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("wpp-%s.log", runID))
	sessionID := uuid.NewString()

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout"},
		FilePath:    logPath,
		Development: opts.Development,
		SessionID:   sessionID,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update wpp.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, cfg.Paths.LogDir, "wpp-*.log", logPath)
	logConfigSnapshot(logger, cfg, opts)

	results := preflight.RunAll(signalCtx, cfg)
	if err := preflight.FirstFailure(results); err != nil {
		logging.ErrorWithContext(logger, "preflight failed", "preflight_failed",
			logging.Error(err),
			logging.ErrorKind(err),
			logging.String(logging.FieldErrorHint, "fix the reported path or database and restart"),
		)
		return err
	}

	pidPath := cfg.PIDPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	q, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		return err
	}
	statuses, err := status.Open(cfg.StatusDBPath())
	if err != nil {
		_ = q.Close()
		logger.Error("open status store", logging.Error(err))
		return err
	}
	recs, err := records.Open(signalCtx, cfg)
	if err != nil {
		_ = q.Close()
		_ = statuses.Close()
		logger.Error("open records store", logging.Error(err))
		return err
	}

	var daemonOpts []daemon.Option
	if opts.WorkerOnly {
		daemonOpts = append(daemonOpts, daemon.WithoutAPI())
	}
	d, err := daemon.New(cfg, q, statuses, recs, logger, daemonOpts...)
	if err != nil {
		_ = q.Close()
		_ = statuses.Close()
		_ = recs.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logging.ErrorWithContext(logger, "daemon start failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check for another running wpp worker and database access"),
			logging.String(logging.FieldImpact, "queued submissions are not processed"),
		)
		return err
	}

	select {
	case <-signalCtx.Done():
		logger.Info("wpp daemon shutting down", logging.String(logging.FieldEventType, "daemon_shutdown"))
		return nil
	case <-d.Done():
		err := d.Err()
		if err == nil {
			return nil
		}
		logging.ErrorWithContext(logger, "worker halted; daemon exiting", "daemon_worker_halted",
			logging.Error(err),
			logging.ErrorKind(err),
			logging.String(logging.FieldErrorHint, "inspect 'wpp queue dead-letters' and the run log"),
			logging.Alert("daemon_exit"),
		)
		return err
	}
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "wpp.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logConfigSnapshot(logger *slog.Logger, cfg *config.Config, opts Options) {
	logger.Info("configuration snapshot",
		logging.String(logging.FieldEventType, "config_snapshot"),
		logging.String("data_dir", cfg.Paths.DataDir),
		logging.String("api_bind", cfg.Paths.APIBind),
		logging.Bool("worker_only", opts.WorkerOnly),
		logging.String("records_driver", cfg.Records.Driver),
		logging.Duration("pace_interval", cfg.PaceInterval()),
		logging.Duration("queue_poll_interval", cfg.QueuePollInterval()),
		logging.Bool("record_failures", cfg.Worker.RecordFailures),
	)
}
