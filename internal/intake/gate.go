// Package intake accepts submissions: it claims the txnReference in the
// status store and appends the payload to the work queue.
package intake

import (
	"context"
	"fmt"
	"log/slog"

	"wpp/internal/logging"
	"wpp/internal/services"
	"wpp/internal/status"
	"wpp/internal/submission"
)

// ErrDuplicateReference rejects a txnReference that is in progress or done.
var ErrDuplicateReference = fmt.Errorf("%w: txnReference already exists", services.ErrConflict)

// Queue is the tail of the work queue.
type Queue interface {
	Append(ctx context.Context, payload []byte) (int64, error)
}

// Ack confirms a queued submission.
type Ack struct {
	TxnReference string
	MessageID    int64
	Message      string
}

// Gate is safe for concurrent use; its atomicity per reference comes from
// status.Store.SetIfAbsent.
type Gate struct {
	statuses status.Store
	queue    Queue
	logger   *slog.Logger
}

// NewGate wires a gate to its stores.
func NewGate(statuses status.Store, queue Queue, logger *slog.Logger) *Gate {
	return &Gate{
		statuses: statuses,
		queue:    queue,
		logger:   logging.NewComponentLogger(logger, "intake"),
	}
}

// Submit queues sub unless its reference is already known.
//
// The reference is claimed as in-progress before the append. If the append
// fails the claim is deleted again, so a caller that sees an error can retry
// with the same reference. A crash between the two steps leaves the reference
// in-progress with nothing queued; operators clear it with the status command.
func (g *Gate) Submit(ctx context.Context, sub *submission.Submission) (Ack, error) {
	ref := sub.Reference()
	if ref == "" {
		return Ack{}, services.Wrap(submission.ErrMissingField, "intake", "submit", "transaction.txnReference", nil)
	}
	ctx = services.WithReference(ctx, ref)
	logger := logging.WithContext(ctx, g.logger)

	payload, err := submission.Encode(sub)
	if err != nil {
		return Ack{}, err
	}

	claimed, err := g.statuses.SetIfAbsent(ctx, ref, status.InProgress)
	if err != nil {
		logging.ErrorWithContext(logger, "claim reference failed", "intake_claim_failed",
			logging.Error(err),
			logging.ErrorKind(err),
			logging.String(logging.FieldErrorHint, "check status database access"),
		)
		return Ack{}, err
	}
	if !claimed {
		logger.Info("duplicate submission rejected", logging.String(logging.FieldEventType, "intake_duplicate"))
		return Ack{}, services.Wrap(ErrDuplicateReference, "intake", "submit", fmt.Sprintf("txnReference %s", ref), nil)
	}

	id, err := g.queue.Append(ctx, payload)
	if err != nil {
		if delErr := g.statuses.Delete(context.WithoutCancel(ctx), ref); delErr != nil {
			logging.WarnWithContext(logger, "release reference after append failure failed", "intake_release_failed",
				logging.Error(delErr),
				logging.String(logging.FieldImpact, "reference stays in-progress with nothing queued"),
				logging.String(logging.FieldErrorHint, "run 'wpp status clear "+ref+"'"),
			)
		}
		logging.ErrorWithContext(logger, "enqueue submission failed", "intake_enqueue_failed",
			logging.Error(err),
			logging.ErrorKind(err),
			logging.String(logging.FieldErrorHint, "check queue database access"),
		)
		return Ack{}, err
	}

	logger.Info("submission queued",
		logging.Int64(logging.FieldMessageID, id),
		logging.String(logging.FieldEventType, "intake_queued"),
	)
	return Ack{
		TxnReference: ref,
		MessageID:    id,
		Message:      fmt.Sprintf("Request received and queued, transaction number (txnReference) %s", ref),
	}, nil
}

// SubmitPayload decodes and validates a raw JSON payload before Submit.
func (g *Gate) SubmitPayload(ctx context.Context, data []byte) (Ack, error) {
	sub, err := submission.Decode(data)
	if err != nil {
		return Ack{}, err
	}
	if err := sub.Validate(); err != nil {
		return Ack{}, err
	}
	return g.Submit(ctx, sub)
}
