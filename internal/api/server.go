package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"wpp/internal/intake"
	"wpp/internal/logging"
	"wpp/internal/services"
	"wpp/internal/status"
	"wpp/internal/submission"
	"wpp/internal/worker"
)

const (
	maxBodyBytes = 1 << 20
	probeTimeout = 2 * time.Second
)

// Pinger is satisfied by every store handle.
type Pinger interface {
	Ping(ctx context.Context) error
}

type check struct {
	name   string
	pinger Pinger
}

// Option customizes an API.
type Option func(*API)

// WithCheck registers a readiness probe.
func WithCheck(name string, p Pinger) Option {
	return func(a *API) {
		if p != nil {
			a.checks = append(a.checks, check{name: name, pinger: p})
		}
	}
}

// WithWorkerStatus exposes worker diagnostics on /-/ready. A worker that has
// stopped on a fatal error makes the process unready.
func WithWorkerStatus(fn func() worker.StatusSummary) Option {
	return func(a *API) {
		a.workerStatus = fn
	}
}

// API serves the intake routes.
type API struct {
	gate         *intake.Gate
	statuses     status.Store
	checks       []check
	workerStatus func() worker.StatusSummary
	logger       *slog.Logger
}

// NewAPI wires handlers to the intake gate and status store.
func NewAPI(gate *intake.Gate, statuses status.Store, logger *slog.Logger, opts ...Option) *API {
	a := &API{
		gate:     gate,
		statuses: statuses,
		logger:   logging.NewComponentLogger(logger, "api"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AppendRoutes mounts the API on r.
func (a *API) AppendRoutes(r chi.Router) {
	r.Post("/wpp", a.submit)
	r.Get("/status/{ref}", a.getStatus)
	r.Get("/-/live", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/-/ready", a.ready)
}

// Handler returns a router with the request middleware and every route.
func (a *API) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(requestID)
	router.Use(recoverer(a.logger))
	router.Use(requestLogger(a.logger))
	a.AppendRoutes(router)
	return router
}

func (a *API) submit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.writeError(w, http.StatusRequestEntityTooLarge, services.Wrap(submission.ErrMalformed, "api", "read body", "payload too large", nil))
			return
		}
		a.writeError(w, http.StatusBadRequest, services.Wrap(submission.ErrMalformed, "api", "read body", "", err))
		return
	}

	sub, err := submission.Decode(body)
	if err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := sub.Validate(); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}

	ack, err := a.gate.Submit(r.Context(), sub)
	if err != nil {
		a.writeError(w, statusCodeFor(err), err)
		return
	}
	writeJSON(a.logger, w, http.StatusAccepted, SubmitResponse{
		Message:      ack.Message,
		TxnReference: ack.TxnReference,
	})
}

func (a *API) getStatus(w http.ResponseWriter, r *http.Request) {
	ref := strings.TrimSpace(chi.URLParam(r, "ref"))
	value, ok, err := a.statuses.Get(r.Context(), ref)
	if err != nil {
		a.writeError(w, statusCodeFor(err), err)
		return
	}
	if !ok {
		a.writeError(w, http.StatusNotFound, services.Wrap(services.ErrNotFound, "api", "status", "unknown txnReference "+ref, nil))
		return
	}
	writeJSON(a.logger, w, http.StatusOK, StatusResponse{TxnReference: ref, Status: string(value)})
}

func (a *API) ready(w http.ResponseWriter, r *http.Request) {
	resp := ReadyResponse{Ready: true, Checks: make([]CheckResult, 0, len(a.checks))}
	for _, c := range a.checks {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		err := c.pinger.Ping(ctx)
		cancel()
		result := CheckResult{Name: c.name, Ready: err == nil}
		if err != nil {
			result.Detail = err.Error()
			resp.Ready = false
		}
		resp.Checks = append(resp.Checks, result)
	}

	log := logging.WithContext(r.Context(), a.logger)
	if a.workerStatus != nil {
		summary := a.workerStatus()
		ws := FromStatusSummary(summary)
		resp.Worker = &ws
		if summary.FatalError != "" {
			resp.Ready = false
		}
		log.Debug("worker status",
			logging.Bool("running", summary.Running),
			logging.Int("processed", summary.Processed),
			logging.Int("failed", summary.Failed),
			logging.Int("dead_lettered", summary.DeadLettered),
			logging.String("last_error", summary.LastError),
		)
	}

	code := http.StatusOK
	if !resp.Ready {
		code = http.StatusServiceUnavailable
		logging.WarnWithContext(log, "readiness probe failed", "api_not_ready",
			logging.Int("checks", len(resp.Checks)),
			logging.String(logging.FieldImpact, "load balancers will stop routing submissions"),
		)
	}
	writeJSON(a.logger, w, code, resp)
}

// statusCodeFor maps an error class onto an HTTP status.
func statusCodeFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(a.logger, w, code, ErrorResponse{Error: err.Error(), Kind: services.ErrorKind(err)})
}

func writeJSON(logger *slog.Logger, w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", logging.Error(err))
	}
}
