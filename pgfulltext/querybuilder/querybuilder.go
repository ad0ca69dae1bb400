// Package querybuilder assembles the SELECT statement for one query. A
// QueryBuilder is created per query execution and is never shared.
package querybuilder

import (
	"fmt"

	"github.com/nonibytes/pgfulltext/pgfulltext/sqlbuilder"
)

// SelectFunc renders an expression against a row alias, so the same selection
// can be evaluated for the root row or a related row.
type SelectFunc func(alias sqlbuilder.Fragment) sqlbuilder.Fragment

// Selection is a named expression attached to a relation path.
type Selection struct {
	Alias string
	Expr  SelectFunc
}

// Column is one output column of the final statement.
type Column struct {
	Expr  sqlbuilder.Fragment
	Alias string
}

type order struct {
	expr sqlbuilder.Fragment
	asc  bool
}

type QueryBuilder struct {
	table     sqlbuilder.Fragment
	rootAlias sqlbuilder.Fragment
	aliases   int

	// selects are hidden expressions keyed by relation path ("" is the root).
	selects map[string][]Selection

	where  []sqlbuilder.Fragment
	orders []order
	limit  *int
	offset *int
}

// New starts a query over table, which must already be a quoted identifier.
func New(table sqlbuilder.Fragment) *QueryBuilder {
	q := &QueryBuilder{table: table, selects: map[string][]Selection{}}
	q.rootAlias = q.NewAlias()
	return q
}

func (q *QueryBuilder) RootAlias() sqlbuilder.Fragment { return q.rootAlias }

// NewAlias allocates a fresh table alias.
func (q *QueryBuilder) NewAlias() sqlbuilder.Fragment {
	a := sqlbuilder.Ident(fmt.Sprintf("__local_%d__", q.aliases))
	q.aliases++
	return a
}

// Select attaches a hidden expression under alias at path. An existing
// selection with the same alias is replaced; replaced reports whether that
// happened.
func (q *QueryBuilder) Select(path, alias string, fn SelectFunc) (replaced bool) {
	list := q.selects[path]
	for i := range list {
		if list[i].Alias == alias {
			list[i].Expr = fn
			return true
		}
	}
	q.selects[path] = append(list, Selection{Alias: alias, Expr: fn})
	return false
}

// Selected returns the expression registered under alias at path.
func (q *QueryBuilder) Selected(path, alias string) (SelectFunc, bool) {
	for _, s := range q.selects[path] {
		if s.Alias == alias {
			return s.Expr, true
		}
	}
	return nil, false
}

// Selections returns the hidden selections of path in registration order.
func (q *QueryBuilder) Selections(path string) []Selection {
	return append([]Selection(nil), q.selects[path]...)
}

// Where adds a predicate; predicates are ANDed. Empty fragments are ignored.
func (q *QueryBuilder) Where(f sqlbuilder.Fragment) {
	if f.IsEmpty() {
		return
	}
	q.where = append(q.where, f)
}

func (q *QueryBuilder) OrderBy(expr sqlbuilder.Fragment, asc bool) {
	q.orders = append(q.orders, order{expr: expr, asc: asc})
}

func (q *QueryBuilder) Limit(n int)  { q.limit = &n }
func (q *QueryBuilder) Offset(n int) { q.offset = &n }

// Build renders the statement. columns come first, followed by the hidden
// selections of the root path.
func (q *QueryBuilder) Build(columns []Column) sqlbuilder.Fragment {
	var cols []sqlbuilder.Fragment
	for _, c := range columns {
		cols = append(cols, sqlbuilder.Query("%s AS %s", c.Expr, sqlbuilder.Ident(c.Alias)))
	}
	for _, s := range q.selects[""] {
		cols = append(cols, sqlbuilder.Query("%s AS %s", s.Expr(q.rootAlias), sqlbuilder.Ident(s.Alias)))
	}
	if len(cols) == 0 {
		cols = append(cols, sqlbuilder.Raw("1"))
	}

	stmt := sqlbuilder.Query("SELECT %s FROM %s AS %s",
		sqlbuilder.Join(cols, ", "), q.table, q.rootAlias)
	if len(q.where) > 0 {
		stmt = stmt.Append(sqlbuilder.Query(" WHERE %s", sqlbuilder.Join(q.parenthesized(q.where), " AND ")))
	}
	if len(q.orders) > 0 {
		parts := make([]sqlbuilder.Fragment, 0, len(q.orders))
		for _, o := range q.orders {
			dir := "ASC"
			if !o.asc {
				dir = "DESC"
			}
			parts = append(parts, sqlbuilder.Query("%s "+dir, o.expr))
		}
		stmt = stmt.Append(sqlbuilder.Query(" ORDER BY %s", sqlbuilder.Join(parts, ", ")))
	}
	if q.limit != nil {
		stmt = stmt.Append(sqlbuilder.Query(" LIMIT %s", sqlbuilder.Value(*q.limit)))
	}
	if q.offset != nil {
		stmt = stmt.Append(sqlbuilder.Query(" OFFSET %s", sqlbuilder.Value(*q.offset)))
	}
	return stmt
}

func (q *QueryBuilder) parenthesized(fs []sqlbuilder.Fragment) []sqlbuilder.Fragment {
	if len(fs) == 1 {
		return fs
	}
	out := make([]sqlbuilder.Fragment, len(fs))
	for i, f := range fs {
		out[i] = sqlbuilder.Parens(f)
	}
	return out
}
