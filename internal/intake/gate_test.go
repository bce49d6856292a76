package intake_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"wpp/internal/intake"
	"wpp/internal/logging"
	"wpp/internal/queue"
	"wpp/internal/services"
	"wpp/internal/status"
	"wpp/internal/submission"
	"wpp/internal/testsupport"
)

func newGate(t *testing.T) (*intake.Gate, *status.SQLiteStore, *queue.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	statuses := testsupport.MustOpenStatus(t, cfg)
	q := testsupport.MustOpenQueue(t, cfg)
	return intake.NewGate(statuses, q, logging.NewNop()), statuses, q
}

func TestSubmitQueuesAndMarksInProgress(t *testing.T) {
	gate, statuses, q := newGate(t)
	ctx := context.Background()

	ack, err := gate.Submit(ctx, testsupport.NewSubmission("T1", "19.01"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if ack.TxnReference != "T1" || ack.MessageID == 0 {
		t.Fatalf("unexpected ack %+v", ack)
	}
	value, ok, err := statuses.Get(ctx, "T1")
	if err != nil || !ok || value != status.InProgress {
		t.Fatalf("expected in-progress, got %q %v %v", value, ok, err)
	}

	messages, err := q.List(ctx, 0)
	if err != nil || len(messages) != 1 {
		t.Fatalf("expected one queued message, got %d (%v)", len(messages), err)
	}
	queued, err := submission.Decode(messages[0].Payload)
	if err != nil || queued.Reference() != "T1" {
		t.Fatalf("unexpected queued payload %s (%v)", messages[0].Payload, err)
	}
}

func TestSubmitRejectsDuplicateWithoutMutation(t *testing.T) {
	gate, statuses, q := newGate(t)
	ctx := context.Background()

	if _, err := gate.Submit(ctx, testsupport.NewSubmission("T1", "19.01")); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	_, err := gate.Submit(ctx, testsupport.NewSubmission("T1", "99.99"))
	if !errors.Is(err, intake.ErrDuplicateReference) || !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected ErrDuplicateReference, got %v", err)
	}
	if n, _ := q.Len(ctx); n != 1 {
		t.Fatalf("expected queue length 1, got %d", n)
	}

	if err := statuses.Set(ctx, "T1", status.Done); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := gate.Submit(ctx, testsupport.NewSubmission("T1", "19.01")); !errors.Is(err, intake.ErrDuplicateReference) {
		t.Fatalf("expected duplicate for done reference, got %v", err)
	}
	if value, _, _ := statuses.Get(ctx, "T1"); value != status.Done {
		t.Fatalf("status changed to %q", value)
	}
	if n, _ := q.Len(ctx); n != 1 {
		t.Fatalf("expected queue length 1, got %d", n)
	}
}

func TestSubmitAcceptsFailedReference(t *testing.T) {
	gate, statuses, q := newGate(t)
	ctx := context.Background()
	if err := statuses.Set(ctx, "T2", status.Failed); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := gate.Submit(ctx, testsupport.NewSubmission("T2", "1.00")); err != nil {
		t.Fatalf("Submit after failure: %v", err)
	}
	if n, _ := q.Len(ctx); n != 1 {
		t.Fatalf("expected one queued message, got %d", n)
	}
}

func TestConcurrentDuplicateSubmitsQueueOnce(t *testing.T) {
	gate, _, q := newGate(t)
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		accepted atomic.Int32
		dupes    atomic.Int32
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := gate.Submit(ctx, testsupport.NewSubmission("same", "1.00"))
			switch {
			case err == nil:
				accepted.Add(1)
			case errors.Is(err, intake.ErrDuplicateReference):
				dupes.Add(1)
			default:
				t.Errorf("Submit: %v", err)
			}
		}()
	}
	wg.Wait()

	if accepted.Load() != 1 || dupes.Load() != 11 {
		t.Fatalf("accepted=%d dupes=%d", accepted.Load(), dupes.Load())
	}
	if n, _ := q.Len(ctx); n != 1 {
		t.Fatalf("expected exactly one queued message, got %d", n)
	}
}

type failingQueue struct{}

func (failingQueue) Append(context.Context, []byte) (int64, error) {
	return 0, services.Wrap(queue.ErrQueueUnavailable, "queue", "append", "", errors.New("disk full"))
}

func TestSubmitReleasesClaimWhenAppendFails(t *testing.T) {
	statuses := status.NewMemory()
	gate := intake.NewGate(statuses, failingQueue{}, logging.NewNop())
	ctx := context.Background()

	_, err := gate.Submit(ctx, testsupport.NewSubmission("T5", "1.00"))
	if !errors.Is(err, queue.ErrQueueUnavailable) {
		t.Fatalf("expected ErrQueueUnavailable, got %v", err)
	}
	if ok, _ := statuses.Exists(ctx, "T5"); ok {
		t.Fatal("expected claim to be released after append failure")
	}
}

func TestSubmitPayloadValidates(t *testing.T) {
	gate, _, q := newGate(t)
	ctx := context.Background()

	sub := testsupport.NewSubmission("T6", "1.00")
	sub.Merchant.MerchantID = ""
	_, err := gate.SubmitPayload(ctx, testsupport.MustEncode(t, sub))
	if !errors.Is(err, submission.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	if _, err := gate.SubmitPayload(ctx, []byte("{")); !errors.Is(err, submission.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if n, _ := q.Len(ctx); n != 0 {
		t.Fatalf("expected empty queue, got %d", n)
	}
}

func TestSubmitRequiresReference(t *testing.T) {
	gate := intake.NewGate(status.NewMemory(), failingQueue{}, nil)
	_, err := gate.Submit(context.Background(), testsupport.NewSubmission("", "1.00"))
	if !errors.Is(err, submission.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
}
