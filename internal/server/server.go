// Package server exposes a Service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	pferrors "github.com/nonibytes/pgfulltext/pgfulltext/errors"
	"github.com/nonibytes/pgfulltext/pgfulltext/connection"
)

const (
	RequestIDHeader = "X-Request-Id"
	maxBodyBytes    = 1 << 20
)

// Service is the subset of *pgfulltext.Service the handlers use.
type Service interface {
	SDL() string
	Execute(ctx context.Context, req connection.Request) (*connection.Result, error)
	Ping(ctx context.Context) error
}

type Server struct {
	svc    Service
	log    logrus.FieldLogger
	router *mux.Router
}

// New registers the routes. gatherer may be nil to omit /metrics.
func New(svc Service, log logrus.FieldLogger, gatherer prometheus.Gatherer) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{svc: svc, log: log, router: mux.NewRouter()}
	s.router.Use(s.requestID)
	s.router.HandleFunc("/query", s.query).Methods(http.MethodPost)
	s.router.HandleFunc("/schema", s.schema).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	if gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	return s
}

// Handler returns the router wrapped with OpenTelemetry instrumentation.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "pgfulltext")
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logrus.Fields{
			"request_id": id,
			"method":     r.Method,
			"path":       r.URL.Path,
			"duration":   time.Since(start),
		}).Debug("handled request")
	})
}

// QueryResponse is the body of POST /query.
type QueryResponse struct {
	Data   []map[string]any `json:"data"`
	Errors []ErrorBody       `json:"errors,omitempty"`
}

type ErrorBody struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
	Field   string `json:"field,omitempty"`
}

func (s *Server) query(w http.ResponseWriter, r *http.Request) {
	var req connection.Request
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, QueryResponse{Errors: []ErrorBody{{
			Message: "invalid request body: " + err.Error(),
			Kind:    string(pferrors.ErrQueryRejected),
		}}})
		return
	}

	res, err := s.svc.Execute(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.log.WithError(err).WithField("field", req.Field).Error("query failed")
		}
		writeJSON(w, status, QueryResponse{Errors: []ErrorBody{errorBody(err)}})
		return
	}
	writeJSON(w, http.StatusOK, QueryResponse{Data: res.Rows})
}

func (s *Server) schema(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, s.svc.SDL())
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func statusFor(err error) int {
	switch pferrors.KindOf(err) {
	case pferrors.ErrQueryParse, pferrors.ErrQueryRejected, pferrors.ErrUnknownField:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(err error) ErrorBody {
	var e *pferrors.Error
	if errors.As(err, &e) {
		return ErrorBody{Message: e.Error(), Kind: string(e.Kind), Field: e.Field}
	}
	return ErrorBody{Message: err.Error()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
