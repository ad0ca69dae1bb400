package pgfulltext

import (
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"github.com/nonibytes/pgfulltext/pgfulltext/connection"
	"github.com/nonibytes/pgfulltext/pgfulltext/tsquery"
)

// Options configures Open.
type Options struct {
	// Schemas are the PostgreSQL namespaces exposed as row types.
	Schemas []string

	// CachePath enables the introspection snapshot cache when non-empty.
	CachePath  string
	ReadCache  bool
	WriteCache bool
	// CacheKey overrides the snapshot key; by default it is derived from
	// current_database() and Schemas.
	CacheKey string

	QueryCacheSize int

	Logger  logrus.FieldLogger
	Metrics *connection.Metrics
	Tracer  trace.Tracer
}

// DefaultOptions exposes the public schema with no snapshot cache.
func DefaultOptions() Options {
	return Options{
		Schemas:        []string{"public"},
		QueryCacheSize: tsquery.DefaultCacheSize,
	}
}

func (o Options) withDefaults() Options {
	if o.QueryCacheSize <= 0 {
		o.QueryCacheSize = tsquery.DefaultCacheSize
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	return o
}
