package queue

import "time"

// Message is one queued payload.
type Message struct {
	ID         int64
	Payload    []byte
	EnqueuedAt time.Time
}

// DeadLetter is a message the worker could not decode.
type DeadLetter struct {
	ID         int64
	MessageID  int64
	Payload    []byte
	Reason     string
	EnqueuedAt time.Time
	FailedAt   time.Time
}

// Health summarizes the queue database for diagnostics.
type Health struct {
	DBPath      string
	Depth       int
	DeadLetters int
	// OldestEnqueuedAt is zero when the queue is empty.
	OldestEnqueuedAt time.Time
}
