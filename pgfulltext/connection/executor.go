// Package connection executes root connection requests against a built
// schema: filter, order and projection are compiled in that order onto a
// per-request QueryBuilder, the statement is run, and rows are resolved
// field by field.
package connection

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	pferrors "github.com/nonibytes/pgfulltext/pgfulltext/errors"
	"github.com/nonibytes/pgfulltext/pgfulltext/filter"
	"github.com/nonibytes/pgfulltext/pgfulltext/graph"
	"github.com/nonibytes/pgfulltext/pgfulltext/querybuilder"
	sb "github.com/nonibytes/pgfulltext/pgfulltext/sqlbuilder"
	"github.com/nonibytes/pgfulltext/pgfulltext/tsquery"
)

var ErrInvalidSelection = errors.New("connection: invalid selection")

// Querier is the subset of *sql.DB the executor needs.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type Option func(*Executor)

func WithLogger(l logrus.FieldLogger) Option { return func(e *Executor) { e.log = l } }

func WithMetrics(m *Metrics) Option { return func(e *Executor) { e.metrics = m } }

func WithTracer(t trace.Tracer) Option { return func(e *Executor) { e.tracer = t } }

// Executor is safe for concurrent use; every request gets its own QueryBuilder.
type Executor struct {
	db      Querier
	schema  *graph.Schema
	filters *filter.Registry
	log     logrus.FieldLogger
	metrics *Metrics
	tracer  trace.Tracer
}

func NewExecutor(db Querier, schema *graph.Schema, opts ...Option) *Executor {
	e := &Executor{
		db:      db,
		schema:  schema,
		filters: filter.RegistryOf(schema),
		log:     logrus.StandardLogger(),
		tracer:  otel.Tracer("pgfulltext/connection"),
	}
	for _, o := range opts {
		o(e)
	}
	if e.metrics == nil {
		e.metrics = NewMetrics(nil)
	}
	return e
}

// Plan is a compiled request.
type Plan struct {
	SQL    string
	Args   []any
	Ranked bool

	object    *graph.Object
	selection []Selection
}

// Prepare compiles req without running it.
func (e *Executor) Prepare(req Request) (*Plan, error) {
	root, ok := e.schema.Query.Field(req.Field)
	if !ok || root.Connection == nil {
		return nil, pferrors.UnknownFieldError(req.Field)
	}
	conn := root.Connection
	obj, ok := e.schema.Object(conn.Object)
	if !ok {
		return nil, pferrors.UnknownFieldError(conn.Object)
	}
	if len(req.Selection) == 0 {
		return nil, pferrors.QueryRejectedError("empty selection", ErrInvalidSelection)
	}

	qb := querybuilder.New(e.schema.Table(conn.Class))
	rootAlias := qb.RootAlias()

	if len(req.Filter) > 0 {
		if e.filters == nil {
			return nil, pferrors.New(pferrors.ErrQueryRejected, "filtering is not enabled")
		}
		pred, err := filter.Compile(qb, e.filters, filter.Scope{Object: obj, Alias: rootAlias}, req.Filter)
		if err != nil {
			return nil, classifyFilterError(err)
		}
		qb.Where(pred)
	}

	if err := e.order(qb, root, req.OrderBy); err != nil {
		return nil, err
	}

	if req.First != nil {
		if *req.First < 0 {
			return nil, pferrors.New(pferrors.ErrQueryRejected, "first must not be negative")
		}
		qb.Limit(*req.First)
	}
	if req.Offset != nil {
		if *req.Offset < 0 {
			return nil, pferrors.New(pferrors.ErrQueryRejected, "offset must not be negative")
		}
		qb.Offset(*req.Offset)
	}

	cols, err := e.project(qb, obj, req.Selection, rootAlias, "")
	if err != nil {
		return nil, err
	}

	b := sb.New(sb.PlaceholderDollar)
	text := qb.Build(cols).Compile(b)
	return &Plan{
		SQL:       text,
		Args:      b.Args(),
		Ranked:    len(qb.Selections("")) > 0,
		object:    obj,
		selection: req.Selection,
	}, nil
}

func classifyFilterError(err error) error {
	switch {
	case errors.Is(err, tsquery.ErrInvalidQuery):
		return pferrors.Wrap(pferrors.ErrQueryParse, "invalid search expression", err)
	case errors.Is(err, filter.ErrUnknownField):
		return pferrors.Wrap(pferrors.ErrUnknownField, "unknown filter field", err)
	default:
		return pferrors.QueryRejectedError("invalid filter", err)
	}
}

// order applies the requested enum values, then the primary key so results
// are deterministic. The primary key follows the direction of the last
// directed order part, so ASC and DESC orderings stay reverses of each other
// when their sort expressions tie.
func (e *Executor) order(qb *querybuilder.QueryBuilder, root *graph.Field, names []string) error {
	enum, ok := e.schema.Enum(root.Connection.OrderBy)
	if !ok {
		return nil
	}
	if len(names) == 0 {
		if arg, ok := root.Arg("orderBy"); ok {
			names = parseEnumList(arg.Default)
		}
	}
	ctx := graph.OrderContext{Query: qb, Alias: qb.RootAlias()}
	byPrimaryKey := false
	asc := true
	for _, name := range names {
		v, ok := enum.Value(name)
		if !ok {
			return pferrors.QueryRejectedError("unknown orderBy value "+name, nil)
		}
		if name == graph.OrderPrimaryKeyAsc || name == graph.OrderPrimaryKeyDsc {
			byPrimaryKey = true
		}
		for _, part := range v.Order {
			qb.OrderBy(part.Expr(ctx), part.Asc)
			asc = part.Asc
		}
	}
	if !byPrimaryKey {
		if pk, ok := enum.Value(graph.OrderPrimaryKeyAsc); ok {
			for _, part := range pk.Order {
				qb.OrderBy(part.Expr(ctx), asc)
			}
		}
	}
	return nil
}

func parseEnumList(s string) []string {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(s, "["), "]"))
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// project turns a selection into output columns for the row under alias.
// Relation selections become correlated json_build_object subqueries that
// also carry the hidden selections registered for the relation path.
func (e *Executor) project(qb *querybuilder.QueryBuilder, obj *graph.Object, sels []Selection, alias sb.Fragment, path string) ([]querybuilder.Column, error) {
	var cols []querybuilder.Column
	seen := map[string]bool{}
	for _, sel := range sels {
		f, ok := obj.Field(sel.Name)
		if !ok {
			return nil, pferrors.UnknownFieldError(obj.Name + "." + sel.Name)
		}
		if seen[sel.Name] {
			continue
		}
		seen[sel.Name] = true

		switch {
		case f.Relation != nil:
			if len(sel.Selection) == 0 {
				return nil, pferrors.QueryRejectedError(obj.Name+"."+sel.Name+" needs a selection", ErrInvalidSelection)
			}
			foreign, ok := e.schema.Object(f.Relation.ForeignType)
			if !ok {
				return nil, pferrors.UnknownFieldError(f.Relation.ForeignType)
			}
			child := qb.NewAlias()
			childPath := filter.ChildPath(path, sel.Name)
			nested, err := e.project(qb, foreign, sel.Selection, child, childPath)
			if err != nil {
				return nil, err
			}
			for _, s := range qb.Selections(childPath) {
				nested = append(nested, querybuilder.Column{Expr: s.Expr(child), Alias: s.Alias})
			}
			pairs := make([]sb.Fragment, 0, len(nested))
			for _, c := range nested {
				pairs = append(pairs, sb.Query("%s, %s", sb.Literal(c.Alias), c.Expr))
			}
			expr := sb.Query("(SELECT json_build_object(%s) FROM %s AS %s WHERE %s)",
				sb.Join(pairs, ", "), e.schema.Table(f.Relation.ForeignClass), child, f.Relation.Join(alias, child))
			cols = append(cols, querybuilder.Column{Expr: expr, Alias: sel.Name})
		case f.Select != nil:
			if len(sel.Selection) > 0 {
				return nil, pferrors.QueryRejectedError(obj.Name+"."+sel.Name+" has no subfields", ErrInvalidSelection)
			}
			cols = append(cols, querybuilder.Column{Expr: f.Select(alias), Alias: sel.Name})
		}
	}
	return cols, nil
}

// metricField bounds the field label to the root fields of the schema.
func (e *Executor) metricField(name string) string {
	if _, ok := e.schema.Query.Field(name); ok {
		return name
	}
	return unknownFieldLabel
}

// Execute runs req and resolves its rows.
func (e *Executor) Execute(ctx context.Context, req Request) (res *Result, err error) {
	ctx, span := e.tracer.Start(ctx, "connection.Execute", trace.WithAttributes(
		attribute.String("pgfulltext.field", req.Field),
		attribute.Bool("pgfulltext.filtered", len(req.Filter) > 0),
	))
	defer span.End()

	start := time.Now()
	ranked := false
	defer func() {
		status := "ok"
		if err != nil {
			status = string(pferrors.KindOf(err))
			if status == "" {
				status = "error"
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		e.metrics.observe(e.metricField(req.Field), status, ranked, time.Since(start))
	}()

	plan, err := e.Prepare(req)
	if err != nil {
		return nil, err
	}
	ranked = plan.Ranked
	span.SetAttributes(attribute.Bool("pgfulltext.ranked", plan.Ranked))
	e.log.WithField("field", req.Field).WithField("sql", plan.SQL).Trace("executing")

	rows, err := e.db.QueryContext(ctx, plan.SQL, plan.Args...)
	if err != nil {
		return nil, pferrors.Wrap(pferrors.ErrSQL, "query failed", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, pferrors.Wrap(pferrors.ErrSQL, "read columns", err)
	}
	res = &Result{Rows: []map[string]any{}}
	for rows.Next() {
		vals := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, pferrors.Wrap(pferrors.ErrSQL, "scan row", err)
		}
		row := make(graph.Row, len(columns))
		for i, c := range columns {
			row[c] = vals[i]
		}
		out, err := e.resolve(plan.object, plan.selection, row)
		if err != nil {
			return nil, err
		}
		res.Rows = append(res.Rows, out)
	}
	if err := rows.Err(); err != nil {
		return nil, pferrors.Wrap(pferrors.ErrSQL, "iterate rows", err)
	}

	e.log.WithFields(logrus.Fields{
		"field":    req.Field,
		"rows":     len(res.Rows),
		"ranked":   plan.Ranked,
		"duration": time.Since(start),
	}).Debug("executed query")
	return res, nil
}

func (e *Executor) resolve(obj *graph.Object, sels []Selection, row graph.Row) (map[string]any, error) {
	out := make(map[string]any, len(sels))
	for _, sel := range sels {
		f, ok := obj.Field(sel.Name)
		if !ok {
			return nil, pferrors.UnknownFieldError(obj.Name + "." + sel.Name)
		}
		if f.Relation == nil {
			v, err := f.Value(row)
			if err != nil {
				return nil, fmt.Errorf("resolve %s.%s: %w", obj.Name, sel.Name, err)
			}
			out[sel.Name] = v
			continue
		}
		nested, err := decodeObject(row[sel.Name])
		if err != nil {
			return nil, pferrors.Wrap(pferrors.ErrSQL, "decode "+obj.Name+"."+sel.Name, err)
		}
		if nested == nil {
			out[sel.Name] = nil
			continue
		}
		foreign, _ := e.schema.Object(f.Relation.ForeignType)
		v, err := e.resolve(foreign, sel.Selection, graph.Row(nested))
		if err != nil {
			return nil, err
		}
		out[sel.Name] = v
	}
	return out, nil
}

func decodeObject(v any) (map[string]any, error) {
	var raw []byte
	switch x := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return x, nil
	case []byte:
		raw = x
	case string:
		raw = []byte(x)
	default:
		return nil, fmt.Errorf("unexpected %T for a related row", v)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
