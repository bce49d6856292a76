package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"wpp/internal/config"
	"wpp/internal/logging"
	"wpp/internal/queue"
	"wpp/internal/records"
	"wpp/internal/status"
	"wpp/internal/submission"
)

// Queue is the consuming side of the work queue.
type Queue interface {
	PopFront(ctx context.Context) (*queue.Message, error)
	DeadLetter(ctx context.Context, msg *queue.Message, reason string) error
}

// Persister writes one submission atomically.
type Persister interface {
	Persist(ctx context.Context, sub *submission.Submission) (records.Receipt, error)
}

// Options tunes the loop.
type Options struct {
	// PaceInterval is slept after every message; zero disables pacing.
	PaceInterval time.Duration
	// RecordFailures writes status failed instead of deleting the entry.
	RecordFailures bool
}

// OptionsFromConfig maps the [worker] config section.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		PaceInterval:   cfg.PaceInterval(),
		RecordFailures: cfg.Worker.RecordFailures,
	}
}

// Worker coordinates queue consumption.
type Worker struct {
	queue    Queue
	records  Persister
	statuses status.Store
	opts     Options
	logger   *slog.Logger

	mu        sync.RWMutex
	running   bool
	cancel    context.CancelFunc
	done      chan struct{}
	fatalErr  error
	stats     counters
	lastErr   error
	lastRef   string
	lastAt    time.Time
	startedAt time.Time
}

type counters struct {
	processed    int
	failed       int
	deadLettered int
}

// New constructs a worker. Dependencies are passed explicitly so the intake
// gate and the worker can share the same store handles.
func New(q Queue, persister Persister, statuses status.Store, opts Options, logger *slog.Logger) *Worker {
	return &Worker{
		queue:    q,
		records:  persister,
		statuses: statuses,
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "worker"),
	}
}

// Start launches the loop in the background.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("worker already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.done = make(chan struct{})
	w.fatalErr = nil
	w.startedAt = time.Now()
	done := w.done
	w.mu.Unlock()

	go func() {
		defer close(done)
		err := w.Run(runCtx)
		w.mu.Lock()
		w.running = false
		w.fatalErr = err
		w.mu.Unlock()
	}()
	return nil
}

// Stop cancels the loop and waits for the in-flight message to finish.
func (w *Worker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	done := w.done
	w.cancel = nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Done is closed when a started loop exits for any reason.
func (w *Worker) Done() <-chan struct{} {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.done
}

// Err returns the fatal error that ended the loop, or nil after a clean stop.
func (w *Worker) Err() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fatalErr
}

// Run consumes the queue until ctx ends (returning nil) or a fatal error
// occurs.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("worker started",
		logging.Duration("pace_interval", w.opts.PaceInterval),
		logging.Bool("record_failures", w.opts.RecordFailures),
		logging.String(logging.FieldEventType, "worker_started"),
	)
	for {
		if ctx.Err() != nil {
			w.logger.Info("worker stopped", logging.String(logging.FieldEventType, "worker_stopped"))
			return nil
		}

		msg, err := w.queue.PopFront(ctx)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("worker stopped", logging.String(logging.FieldEventType, "worker_stopped"))
				return nil
			}
			return w.fatal(ctx, "queue pop failed", "worker_queue_failed", "check queue database access", err)
		}

		if err := w.process(ctx, msg); err != nil {
			return err
		}

		if !w.pace(ctx) {
			w.logger.Info("worker stopped", logging.String(logging.FieldEventType, "worker_stopped"))
			return nil
		}
	}
}

func (w *Worker) pace(ctx context.Context) bool {
	if w.opts.PaceInterval <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(w.opts.PaceInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (w *Worker) fatal(ctx context.Context, msg, eventType, hint string, err error) error {
	w.setLastError(err)
	logging.ErrorWithContext(logging.WithContext(ctx, w.logger), msg, eventType,
		logging.Error(err),
		logging.ErrorKind(err),
		logging.String(logging.FieldErrorHint, hint),
		logging.Alert("worker_halted"),
	)
	return err
}
