package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pferrors "github.com/nonibytes/pgfulltext/pgfulltext/errors"
	"github.com/nonibytes/pgfulltext/pgfulltext/connection"
)

type fakeService struct {
	got     connection.Request
	result  *connection.Result
	err     error
	pingErr error
}

func (f *fakeService) SDL() string { return "type Query {\n  allJobs: [Job!]!\n}\n" }

func (f *fakeService) Execute(_ context.Context, req connection.Request) (*connection.Result, error) {
	f.got = req
	return f.result, f.err
}

func (f *fakeService) Ping(context.Context) error { return f.pingErr }

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestQuery(t *testing.T) {
	svc := &fakeService{result: &connection.Result{Rows: []map[string]any{{"name": "apple", "fullTextRank": 0.06}}}}
	h := New(svc, nil, nil).Handler()

	rec := do(t, h, http.MethodPost, "/query",
		`{"field":"allJobs","filter":{"fullText":{"matches":"fruit"}},"orderBy":["FULL_TEXT_RANK_DESC"],"selection":[{"name":"name"},{"name":"fullTextRank"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	assert.Equal(t, "allJobs", svc.got.Field)
	assert.Equal(t, []string{"FULL_TEXT_RANK_DESC"}, svc.got.OrderBy)
	assert.Equal(t, map[string]any{"fullText": map[string]any{"matches": "fruit"}}, svc.got.Filter)

	var resp QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []map[string]any{{"name": "apple", "fullTextRank": 0.06}}, resp.Data)
	assert.Empty(t, resp.Errors)
}

func TestQueryErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"parse", pferrors.QueryParseError("fullText", errors.New("unexpected end")), http.StatusBadRequest, "query_parse"},
		{"unknown", pferrors.UnknownFieldError("Job.nope"), http.StatusBadRequest, "unknown_field"},
		{"sql", pferrors.Wrap(pferrors.ErrSQL, "query failed", errors.New("boom")), http.StatusInternalServerError, "sql"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(&fakeService{err: tt.err}, nil, nil).Handler()
			rec := do(t, h, http.MethodPost, "/query", `{"field":"allJobs","selection":[{"name":"id"}]}`)
			assert.Equal(t, tt.status, rec.Code)
			var resp QueryResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.Len(t, resp.Errors, 1)
			assert.Equal(t, tt.kind, resp.Errors[0].Kind)
		})
	}
}

func TestQueryBadBody(t *testing.T) {
	h := New(&fakeService{}, nil, nil).Handler()
	rec := do(t, h, http.MethodPost, "/query", `{"field":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryMethod(t *testing.T) {
	h := New(&fakeService{}, nil, nil).Handler()
	rec := do(t, h, http.MethodGet, "/query", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSchema(t *testing.T) {
	h := New(&fakeService{}, nil, nil).Handler()
	rec := do(t, h, http.MethodGet, "/schema", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "allJobs: [Job!]!")
}

func TestHealthz(t *testing.T) {
	svc := &fakeService{}
	h := New(svc, nil, nil).Handler()
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/healthz", "").Code)

	svc.pingErr = errors.New("down")
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/healthz", "").Code)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := connection.NewMetrics(reg)
	m.QueriesTotal.WithLabelValues("allJobs", "ok").Inc()

	h := New(&fakeService{}, nil, reg).Handler()
	rec := do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "allJobs")

	assert.Equal(t, http.StatusNotFound, do(t, New(&fakeService{}, nil, nil).Handler(), http.MethodGet, "/metrics", "").Code)
}

func TestRequestIDPassthrough(t *testing.T) {
	h := New(&fakeService{}, nil, nil).Handler()
	req := httptest.NewRequest(http.MethodGet, "/schema", nil)
	req.Header.Set(RequestIDHeader, "6f1c1f5e-8a43-4f0e-9d7e-2b1d5b8f3a10")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "6f1c1f5e-8a43-4f0e-9d7e-2b1d5b8f3a10", rec.Header().Get(RequestIDHeader))
}
