package worker

import "time"

// StatusSummary represents lightweight worker diagnostics.
type StatusSummary struct {
	Running         bool
	StartedAt       time.Time
	Processed       int
	Failed          int
	DeadLettered    int
	LastReference   string
	LastProcessedAt time.Time
	LastError       string
	FatalError      string
}

// Status returns the latest worker information.
func (w *Worker) Status() StatusSummary {
	w.mu.RLock()
	defer w.mu.RUnlock()
	summary := StatusSummary{
		Running:         w.running,
		StartedAt:       w.startedAt,
		Processed:       w.stats.processed,
		Failed:          w.stats.failed,
		DeadLettered:    w.stats.deadLettered,
		LastReference:   w.lastRef,
		LastProcessedAt: w.lastAt,
	}
	if w.lastErr != nil {
		summary.LastError = w.lastErr.Error()
	}
	if w.fatalErr != nil {
		summary.FatalError = w.fatalErr.Error()
	}
	return summary
}

func (w *Worker) setLastError(err error) {
	w.mu.Lock()
	w.lastErr = err
	w.mu.Unlock()
}
