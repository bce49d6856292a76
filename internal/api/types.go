package api

import (
	"time"

	"wpp/internal/worker"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// SubmitResponse acknowledges a queued submission.
type SubmitResponse struct {
	Message      string `json:"message"`
	TxnReference string `json:"txnReference"`
}

// StatusResponse reports the tracked status of a txnReference.
type StatusResponse struct {
	TxnReference string `json:"txnReference"`
	Status       string `json:"status"`
}

// ErrorResponse is written for every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// ReadyResponse summarizes dependency health.
type ReadyResponse struct {
	Ready  bool          `json:"ready"`
	Checks []CheckResult `json:"checks"`
	Worker *WorkerStatus `json:"worker,omitempty"`
}

// CheckResult is the outcome of one readiness probe.
type CheckResult struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// WorkerStatus mirrors worker.StatusSummary for transport.
type WorkerStatus struct {
	Running         bool   `json:"running"`
	StartedAt       string `json:"startedAt,omitempty"`
	Processed       int    `json:"processed"`
	Failed          int    `json:"failed"`
	DeadLettered    int    `json:"deadLettered"`
	LastReference   string `json:"lastReference,omitempty"`
	LastProcessedAt string `json:"lastProcessedAt,omitempty"`
	LastError       string `json:"lastError,omitempty"`
	FatalError      string `json:"fatalError,omitempty"`
}

// FromStatusSummary converts worker diagnostics into the transport shape.
func FromStatusSummary(summary worker.StatusSummary) WorkerStatus {
	return WorkerStatus{
		Running:         summary.Running,
		StartedAt:       formatTime(summary.StartedAt),
		Processed:       summary.Processed,
		Failed:          summary.Failed,
		DeadLettered:    summary.DeadLettered,
		LastReference:   summary.LastReference,
		LastProcessedAt: formatTime(summary.LastProcessedAt),
		LastError:       summary.LastError,
		FatalError:      summary.FatalError,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
