package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gofrs/flock"

	"wpp/internal/config"
	"wpp/internal/intake"
	"wpp/internal/logging"
	"wpp/internal/queue"
	"wpp/internal/records"
	"wpp/internal/status"
	"wpp/internal/worker"
)

// ErrAlreadyRunning reports that another process holds the worker lock.
var ErrAlreadyRunning = errors.New("another wpp worker is already running")

// Option customizes a Daemon.
type Option func(*Daemon)

// WithoutAPI runs the worker alone, without the HTTP intake server.
func WithoutAPI() Option {
	return func(d *Daemon) {
		d.serveAPI = false
	}
}

// Daemon owns the stores it is given and closes them in Close.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	queue    *queue.Store
	statuses *status.SQLiteStore
	records  *records.Store
	gate     *intake.Gate
	worker   *worker.Worker
	serveAPI bool
	api      *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Worker       worker.StatusSummary
	Queue        queue.Health
	StatusCounts map[status.Status]int
	StatusDBPath string
	LockFilePath string
	APIAddress   string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, q *queue.Store, statuses *status.SQLiteStore, recs *records.Store, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || q == nil || statuses == nil || recs == nil {
		return nil, errors.New("daemon requires config, queue, status and records stores")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := cfg.WorkerLockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		queue:    q,
		statuses: statuses,
		records:  recs,
		gate:     intake.NewGate(statuses, q, logger),
		worker:   worker.New(q, recs, statuses, worker.OptionsFromConfig(cfg), logger),
		serveAPI: true,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.serveAPI {
		d.api = newAPIServer(cfg.Paths.APIBind, d, logger)
	}
	return d, nil
}

// Start acquires the worker lock, starts the worker and, in serve mode, the
// HTTP server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.worker.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start worker: %w", err)
	}
	if d.api != nil {
		if err := d.api.start(runCtx); err != nil {
			cancel()
			d.worker.Stop()
			_ = d.lock.Unlock()
			return err
		}
	}

	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("wpp daemon started",
		logging.String("lock", d.lockPath),
		logging.Bool("api", d.api != nil),
		logging.String(logging.FieldEventType, "daemon_started"),
	)
	return nil
}

// Stop stops the HTTP server, lets the worker finish its in-flight message
// and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.api.stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.worker.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release worker lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("wpp daemon stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
}

// Close stops the daemon and closes every store.
func (d *Daemon) Close() error {
	d.Stop()
	return errors.Join(d.queue.Close(), d.statuses.Close(), d.records.Close())
}

// Done is closed when the worker loop exits. A nil channel is returned
// before Start.
func (d *Daemon) Done() <-chan struct{} {
	return d.worker.Done()
}

// Err returns the fatal worker error, if any.
func (d *Daemon) Err() error {
	return d.worker.Err()
}

// APIAddress returns the bound HTTP address once started.
func (d *Daemon) APIAddress() string {
	return d.api.address()
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	st := Status{
		Running:      d.running.Load(),
		Worker:       d.worker.Status(),
		StatusDBPath: d.statuses.Path(),
		LockFilePath: d.lockPath,
		APIAddress:   d.APIAddress(),
	}
	if health, err := d.queue.Health(ctx); err == nil {
		st.Queue = health
	} else {
		d.logger.Warn("queue health unavailable", logging.Error(err))
	}
	if counts, err := d.statuses.Counts(ctx); err == nil {
		st.StatusCounts = counts
	} else {
		d.logger.Warn("status counts unavailable", logging.Error(err))
	}
	return st
}
