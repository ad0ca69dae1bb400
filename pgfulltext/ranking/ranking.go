// Package ranking keeps the per-query mapping from a full-text field to the
// relevance expression its filter produced. The entries live on the query's
// own QueryBuilder as hidden selections, so they are discarded with it.
package ranking

import (
	"github.com/nonibytes/pgfulltext/pgfulltext/querybuilder"
	sb "github.com/nonibytes/pgfulltext/pgfulltext/sqlbuilder"
)

// Key identifies a rank slot: a field at a relation path ("" is the root row).
type Key struct {
	Path  string
	Field string
}

// Alias is the hidden column the rank is materialized under.
func (k Key) Alias() string { return "__" + k.Field + "Rank" }

// Expression is a compiled search against one full-text field.
type Expression struct {
	// Target renders the tsvector being searched for a row alias.
	Target   querybuilder.SelectFunc
	Query    string
	Language string
}

func (e Expression) tsquery() sb.Fragment {
	if e.Language != "" {
		return sb.Query("to_tsquery(%s::regconfig, %s)", sb.Value(e.Language), sb.Value(e.Query))
	}
	return sb.Query("to_tsquery(%s)", sb.Value(e.Query))
}

// Rank renders ts_rank for the row under alias.
func (e Expression) Rank(alias sb.Fragment) sb.Fragment {
	return sb.Query("ts_rank(%s, %s)", e.Target(alias), e.tsquery())
}

// Match renders the boolean match predicate for the row under alias.
func (e Expression) Match(alias sb.Fragment) sb.Fragment {
	return sb.Query("(%s @@ %s)", e.Target(alias), e.tsquery())
}

// Registry is a view over one query's rank slots.
type Registry struct {
	qb *querybuilder.QueryBuilder
}

func For(qb *querybuilder.QueryBuilder) Registry { return Registry{qb: qb} }

// Register stores e under k. A later registration for the same key replaces
// the earlier one; replaced reports that.
func (r Registry) Register(k Key, e Expression) (replaced bool) {
	return r.qb.Select(k.Path, k.Alias(), e.Rank)
}

// Lookup returns the rank expression registered under k.
func (r Registry) Lookup(k Key) (querybuilder.SelectFunc, bool) {
	return r.qb.Selected(k.Path, k.Alias())
}
