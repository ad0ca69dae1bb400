package fulltext

import (
	"fmt"

	"github.com/nonibytes/pgfulltext/pgfulltext/graph"
	"github.com/nonibytes/pgfulltext/pgfulltext/ranking"
	sb "github.com/nonibytes/pgfulltext/pgfulltext/sqlbuilder"
)

// EnumValues adds <FIELD>_RANK_ASC and <FIELD>_RANK_DESC for every orderable
// full-text field.
func (p *Plugin) EnumValues(b *graph.Build, c *graph.ClassContext) error {
	fields, err := Discover(b.Introspection, b.Inflection, c.Class)
	if err != nil {
		return fmt.Errorf("%s: %w", c.Class.Name, err)
	}
	var added int
	for _, f := range fields {
		if !f.Orderable {
			continue
		}
		expr := RankOrder(f.BaseName)
		for _, v := range []*graph.EnumValue{
			{Name: f.AscName, Order: []graph.OrderPart{{Expr: expr, Asc: true}}},
			{Name: f.DescName, Order: []graph.OrderPart{{Expr: expr, Asc: false}}},
		} {
			if err := c.OrderBy.AddValue(v); err != nil {
				return err
			}
		}
		added++
	}
	if added > 0 {
		b.Log.WithField("table", c.Class.Name).WithField("fields", added).
			Debugf("Adding TSV rank columns for sorting on table '%s'", c.Class.Name)
	}
	return nil
}

// neutralRank orders all rows equally. A bare 1 in ORDER BY would be read
// as an output column position.
var neutralRank = sb.Query("%s::integer", sb.One)

// RankOrder resolves, when the ORDER BY clause is compiled, to the rank the
// root row's filter registered for field, or to a constant when the field
// was not filtered.
func RankOrder(field string) func(graph.OrderContext) sb.Fragment {
	key := ranking.Key{Field: field}
	return func(ctx graph.OrderContext) sb.Fragment {
		if fn, ok := ranking.For(ctx.Query).Lookup(key); ok {
			return fn(ctx.Alias)
		}
		return neutralRank
	}
}
