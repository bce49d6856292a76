package status

import (
	"context"
	"fmt"
	"time"

	"wpp/internal/services"
)

// Status is a submission lifecycle value.
type Status string

const (
	InProgress Status = "in-progress"
	Done       Status = "done"
	Failed     Status = "failed"
)

// Valid reports whether s is a known lifecycle value.
func (s Status) Valid() bool {
	switch s {
	case InProgress, Done, Failed:
		return true
	}
	return false
}

// Reclaimable reports whether SetIfAbsent may overwrite s.
func (s Status) Reclaimable() bool {
	return s == Failed
}

// ErrStatusStoreUnavailable wraps every backend failure.
var ErrStatusStoreUnavailable = fmt.Errorf("%w: status store unavailable", services.ErrUnavailable)

// ErrInvalidStatus rejects writes of unknown values.
var ErrInvalidStatus = fmt.Errorf("%w: invalid status value", services.ErrValidation)

// Store is the key-value contract shared by intake and the worker.
type Store interface {
	// SetIfAbsent stores value when ref is absent or reclaimable and
	// reports whether it did. The check and the write are one atomic step.
	SetIfAbsent(ctx context.Context, ref string, value Status) (bool, error)
	// Get returns the status for ref; ok is false when ref is absent.
	Get(ctx context.Context, ref string) (value Status, ok bool, err error)
	// Set overwrites the status for ref unconditionally.
	Set(ctx context.Context, ref string, value Status) error
	// Delete returns ref to absent. Deleting an absent ref is not an error.
	Delete(ctx context.Context, ref string) error
	// Exists reports whether ref has any status.
	Exists(ctx context.Context, ref string) (bool, error)
}

// Entry is one stored status row.
type Entry struct {
	Reference string
	Status    Status
	UpdatedAt time.Time
}

func checkValue(op string, value Status) error {
	if !value.Valid() {
		return services.Wrap(ErrInvalidStatus, "status", op, fmt.Sprintf("value %q", value), nil)
	}
	return nil
}

func unavailable(op string, err error) error {
	return services.Wrap(ErrStatusStoreUnavailable, "status", op, "", err)
}
