// Package pgfulltext builds a queryable schema over PostgreSQL tables and
// adds full-text search to it: a matches filter operator for every tsvector
// field, a <field>Rank output field and <FIELD>_RANK_ASC/DESC ordering.
package pgfulltext

import (
	"context"
	"database/sql"

	"github.com/sirupsen/logrus"

	"github.com/nonibytes/pgfulltext/pgfulltext/connection"
	"github.com/nonibytes/pgfulltext/pgfulltext/filter"
	"github.com/nonibytes/pgfulltext/pgfulltext/fulltext"
	"github.com/nonibytes/pgfulltext/pgfulltext/graph"
	"github.com/nonibytes/pgfulltext/pgfulltext/inflection"
	"github.com/nonibytes/pgfulltext/pgfulltext/introspection"
	"github.com/nonibytes/pgfulltext/pgfulltext/tsquery"
)

// Service is an opened schema bound to a database.
type Service struct {
	db     *sql.DB
	schema *graph.Schema
	exec   *connection.Executor
	log    logrus.FieldLogger
}

// Plugins returns the schema plugins in the order they must run.
func Plugins(queries *tsquery.Cache) []graph.Plugin {
	return []graph.Plugin{graph.RowPlugin{}, filter.Plugin{}, fulltext.NewPlugin(queries)}
}

// Open introspects the configured schemas and builds the queryable schema.
// The Service takes ownership of db.
func Open(ctx context.Context, db *sql.DB, opts Options) (*Service, error) {
	opts = opts.withDefaults()
	if len(opts.Schemas) == 0 {
		return nil, New(ErrSchema, "no schemas to expose")
	}

	r, err := loadCatalog(ctx, db, opts)
	if err != nil {
		return nil, err
	}

	queries, err := tsquery.NewCache(opts.QueryCacheSize)
	if err != nil {
		return nil, Wrap(ErrSchema, "create query cache", err)
	}
	s, err := BuildSchema(r, opts.Logger, queries)
	if err != nil {
		return nil, err
	}

	execOpts := []connection.Option{connection.WithLogger(opts.Logger)}
	if opts.Metrics != nil {
		execOpts = append(execOpts, connection.WithMetrics(opts.Metrics))
	}
	if opts.Tracer != nil {
		execOpts = append(execOpts, connection.WithTracer(opts.Tracer))
	}
	return &Service{
		db:     db,
		schema: s,
		exec:   connection.NewExecutor(db, s, execOpts...),
		log:    opts.Logger,
	}, nil
}

// BuildSchema runs the schema plugins over an introspection result.
func BuildSchema(r *introspection.Result, log logrus.FieldLogger, queries *tsquery.Cache) (*graph.Schema, error) {
	s, err := graph.NewBuilder(log, Plugins(queries)...).Build(r, inflection.New())
	if err != nil {
		return nil, Wrap(ErrSchema, "build schema", err)
	}
	return s, nil
}

func loadCatalog(ctx context.Context, db *sql.DB, opts Options) (*introspection.Result, error) {
	if opts.CachePath == "" || (!opts.ReadCache && !opts.WriteCache) {
		return introspect(ctx, db, opts.Schemas)
	}

	cache, err := introspection.OpenCache(ctx, opts.CachePath)
	if err != nil {
		return nil, Wrap(ErrIntrospection, "open snapshot cache", err)
	}
	defer cache.Close()

	key := opts.CacheKey
	if key == "" {
		var database string
		if err := db.QueryRowContext(ctx, "SELECT current_database()").Scan(&database); err != nil {
			return nil, Wrap(ErrSQL, "read database name", err)
		}
		key = introspection.CacheKey(database, opts.Schemas)
	}

	if opts.ReadCache {
		r, ok, err := cache.Get(ctx, key)
		if err != nil {
			return nil, Wrap(ErrIntrospection, "read snapshot cache", err)
		}
		if ok {
			opts.Logger.WithField("path", opts.CachePath).Debug("using cached introspection snapshot")
			return r, nil
		}
	}

	r, err := introspect(ctx, db, opts.Schemas)
	if err != nil {
		return nil, err
	}
	if opts.WriteCache {
		if err := cache.Put(ctx, key, r); err != nil {
			return nil, Wrap(ErrIntrospection, "write snapshot cache", err)
		}
		opts.Logger.WithField("path", opts.CachePath).Debug("stored introspection snapshot")
	}
	return r, nil
}

func introspect(ctx context.Context, db *sql.DB, schemas []string) (*introspection.Result, error) {
	r, err := introspection.Load(ctx, db, schemas)
	if err != nil {
		return nil, Wrap(ErrIntrospection, "introspect database", err)
	}
	if len(r.Namespaces) == 0 {
		return nil, New(ErrIntrospection, "none of the configured schemas exist")
	}
	return r, nil
}

// Schema returns the built schema. It must not be modified.
func (s *Service) Schema() *graph.Schema { return s.schema }

// SDL renders the schema as GraphQL SDL.
func (s *Service) SDL() string { return graph.Print(s.schema) }

// Prepare compiles req without running it.
func (s *Service) Prepare(req connection.Request) (*connection.Plan, error) {
	return s.exec.Prepare(req)
}

// Execute runs req and returns its resolved rows.
func (s *Service) Execute(ctx context.Context, req connection.Request) (*connection.Result, error) {
	return s.exec.Execute(ctx, req)
}

// Ping checks the database connection.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return Wrap(ErrSQL, "ping", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Service) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return Wrap(ErrSQL, "close database", err)
	}
	return nil
}
