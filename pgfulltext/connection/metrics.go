package connection

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// unknownFieldLabel replaces field names that are not root fields of the schema.
const unknownFieldLabel = "unknown"

// Metrics are the executor's Prometheus collectors.
type Metrics struct {
	QueriesTotal       *prometheus.CounterVec
	QueryDuration      *prometheus.HistogramVec
	RankedQueriesTotal *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pgfulltext_queries_total",
				Help: "Total number of executed connection queries",
			},
			[]string{"field", "status"},
		),
		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pgfulltext_query_duration_seconds",
				Help:    "Connection query duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"field"},
		),
		RankedQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pgfulltext_ranked_queries_total",
				Help: "Total number of queries whose filter produced a full-text rank",
			},
			[]string{"field"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.QueriesTotal, m.QueryDuration, m.RankedQueriesTotal)
	}
	return m
}

func (m *Metrics) observe(field, status string, ranked bool, d time.Duration) {
	m.QueriesTotal.WithLabelValues(field, status).Inc()
	m.QueryDuration.WithLabelValues(field).Observe(d.Seconds())
	if ranked {
		m.RankedQueriesTotal.WithLabelValues(field).Inc()
	}
}
