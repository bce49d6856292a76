package worker

import (
	"context"
	"fmt"
	"time"

	"wpp/internal/logging"
	"wpp/internal/queue"
	"wpp/internal/services"
	"wpp/internal/status"
	"wpp/internal/submission"
)

// ErrUndecodable marks a queued payload that is not a submission. Intake
// only queues encoded submissions, so this indicates corruption.
var ErrUndecodable = fmt.Errorf("%w: undecodable queue payload", services.ErrValidation)

// process carries one popped message through persistence and its status
// update. The returned error is fatal; persistence failures are handled here.
func (w *Worker) process(ctx context.Context, msg *queue.Message) error {
	// A popped message is finished even if shutdown starts meanwhile.
	ctx = services.WithMessageID(context.WithoutCancel(ctx), msg.ID)

	sub, err := submission.Decode(msg.Payload)
	if err != nil {
		w.deadLetter(ctx, msg, err)
		return w.fatal(ctx, "queued payload could not be decoded", "worker_decode_failed",
			"inspect 'wpp queue dead-letters'",
			services.Wrap(ErrUndecodable, "worker", "decode", fmt.Sprintf("message %d", msg.ID), err))
	}

	ref := sub.Reference()
	ctx = services.WithReference(ctx, ref)
	logger := logging.WithContext(ctx, w.logger)
	started := time.Now()

	receipt, persistErr := w.records.Persist(ctx, sub)
	if persistErr == nil {
		w.recordOutcome(ref, nil)
		if err := w.statuses.Set(ctx, ref, status.Done); err != nil {
			return w.fatal(ctx, "record done status failed", "worker_status_failed", "check status database access", err)
		}
		logger.Info("submission persisted",
			logging.Int64("transaction_id", receipt.TransactionID),
			logging.Duration("elapsed", time.Since(started)),
			logging.String(logging.FieldEventType, "worker_persisted"),
		)
		return nil
	}

	w.recordOutcome(ref, persistErr)
	var statusErr error
	outcome := "status removed"
	if w.opts.RecordFailures {
		outcome = "status failed"
		statusErr = w.statuses.Set(ctx, ref, status.Failed)
	} else {
		statusErr = w.statuses.Delete(ctx, ref)
	}
	logging.WarnWithContext(logger, "submission persistence failed", "worker_persist_failed",
		logging.Error(persistErr),
		logging.ErrorKind(persistErr),
		logging.String("outcome", outcome),
		logging.String(logging.FieldImpact, "no rows written; reference may be resubmitted"),
		logging.String(logging.FieldErrorHint, "check the payload and records database"),
	)
	if statusErr != nil {
		return w.fatal(ctx, "revert status failed", "worker_status_failed", "check status database access", statusErr)
	}
	return nil
}

func (w *Worker) deadLetter(ctx context.Context, msg *queue.Message, cause error) {
	if err := w.queue.DeadLetter(ctx, msg, cause.Error()); err != nil {
		logging.ErrorWithContext(logging.WithContext(ctx, w.logger), "dead letter write failed", "worker_dead_letter_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "undecodable payload lost"),
		)
		return
	}
	w.mu.Lock()
	w.stats.deadLettered++
	w.mu.Unlock()
}

func (w *Worker) recordOutcome(ref string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastRef = ref
	w.lastAt = time.Now()
	if err != nil {
		w.stats.failed++
		w.lastErr = err
		return
	}
	w.stats.processed++
}
