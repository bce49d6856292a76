package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"wpp/internal/api"
	"wpp/internal/intake"
	"wpp/internal/logging"
	"wpp/internal/queue"
	"wpp/internal/status"
	"wpp/internal/testsupport"
	"wpp/internal/worker"
)

type fixture struct {
	queue    *queue.Store
	statuses *status.SQLiteStore
	handler  http.Handler
}

func newFixture(t *testing.T, opts ...api.Option) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	f := &fixture{
		queue:    testsupport.MustOpenQueue(t, cfg),
		statuses: testsupport.MustOpenStatus(t, cfg),
	}
	gate := intake.NewGate(f.statuses, f.queue, logging.NewNop())
	opts = append([]api.Option{
		api.WithCheck("queue", f.queue),
		api.WithCheck("status", f.statuses),
	}, opts...)
	f.handler = api.NewAPI(gate, f.statuses, logging.NewNop(), opts...).Handler()
	return f
}

func (f *fixture) do(method, path string, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	f.handler.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSubmitQueuesAndTracksStatus(t *testing.T) {
	f := newFixture(t)
	payload := testsupport.MustEncode(t, testsupport.NewSubmission("T1", "19.01"))

	w := f.do(http.MethodPost, "/wpp", payload)
	require.Equal(t, http.StatusAccepted, w.Code)
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var ack api.SubmitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ack))
	require.Equal(t, "T1", ack.TxnReference)
	require.Equal(t, "Request received and queued, transaction number (txnReference) T1", ack.Message)

	depth, err := f.queue.Len(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, depth)

	w = f.do(http.MethodGet, "/status/T1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var st api.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	require.Equal(t, api.StatusResponse{TxnReference: "T1", Status: "in-progress"}, st)
}

func TestSubmitDuplicateConflicts(t *testing.T) {
	f := newFixture(t)
	payload := testsupport.MustEncode(t, testsupport.NewSubmission("T1", "19.01"))

	require.Equal(t, http.StatusAccepted, f.do(http.MethodPost, "/wpp", payload).Code)
	w := f.do(http.MethodPost, "/wpp", payload)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "conflict", decodeError(t, w).Kind)

	depth, err := f.queue.Len(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, depth)
}

func TestSubmitRejectsMalformedBody(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/wpp", []byte(`{"transaction":`))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "validation", decodeError(t, w).Kind)
}

func TestSubmitRejectsMissingFields(t *testing.T) {
	f := newFixture(t)
	sub := testsupport.NewSubmission("T3", "10.00")
	sub.Merchant.MerchantID = ""

	w := f.do(http.MethodPost, "/wpp", testsupport.MustEncode(t, sub))
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	require.Equal(t, "validation", resp.Kind)
	require.Contains(t, resp.Error, "merchant.merchantID")

	_, ok, err := f.statuses.Get(context.Background(), "T3")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSubmitKeepsInvalidAmountForWorker(t *testing.T) {
	f := newFixture(t)
	payload := testsupport.MustEncode(t, testsupport.NewSubmission("T2", "not-a-number"))

	require.Equal(t, http.StatusAccepted, f.do(http.MethodPost, "/wpp", payload).Code)
}

func TestStatusUnknownReference(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/status/nope", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "not_found", decodeError(t, w).Kind)
}

func TestStatusStoreUnavailable(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.statuses.Close())

	w := f.do(http.MethodGet, "/status/T1", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Equal(t, "unavailable", decodeError(t, w).Kind)
}

func TestRequestIDIsPropagated(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/-/live", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}

func TestReadyReportsChecksAndWorker(t *testing.T) {
	f := newFixture(t, api.WithWorkerStatus(func() worker.StatusSummary {
		return worker.StatusSummary{Running: true, Processed: 3, LastReference: "T9"}
	}))

	w := f.do(http.MethodGet, "/-/ready", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.ReadyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Ready)
	require.Len(t, resp.Checks, 2)
	require.NotNil(t, resp.Worker)
	require.Equal(t, 3, resp.Worker.Processed)
	require.Equal(t, "T9", resp.Worker.LastReference)
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("records offline") }

func TestReadyFailsWhenDependencyDown(t *testing.T) {
	f := newFixture(t, api.WithCheck("records", failingPinger{}))

	w := f.do(http.MethodGet, "/-/ready", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp api.ReadyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Ready)
	require.Equal(t, "records offline", resp.Checks[2].Detail)
}

func TestReadyFailsAfterWorkerHalts(t *testing.T) {
	f := newFixture(t, api.WithWorkerStatus(func() worker.StatusSummary {
		return worker.StatusSummary{FatalError: "undecodable queue payload"}
	}))

	w := f.do(http.MethodGet, "/-/ready", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}
