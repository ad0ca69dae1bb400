package fulltext

import (
	"fmt"

	"github.com/nonibytes/pgfulltext/pgfulltext/graph"
	"github.com/nonibytes/pgfulltext/pgfulltext/ranking"
)

// ObjectFields adds a nullable Float <field>Rank next to every filterable
// full-text field. The value is the hidden rank column the matches operator
// selected for the row, or null when the field was not filtered.
func (p *Plugin) ObjectFields(b *graph.Build, c *graph.ClassContext) error {
	fields, err := Discover(b.Introspection, b.Inflection, c.Class)
	if err != nil {
		return fmt.Errorf("%s: %w", c.Class.Name, err)
	}
	var added int
	for _, f := range fields {
		if !f.Filterable {
			continue
		}
		alias := ranking.Key{Field: f.BaseName}.Alias()
		err := c.Object.AddField(&graph.Field{
			Name:        f.RankName,
			Description: "Full-text search ranking when filtered by `" + f.BaseName + "`.",
			Type:        graph.Named(graph.ScalarFloat),
			Kind:        graph.FieldRank,
			Resolve: func(row graph.Row) (any, error) {
				return graph.SerializeFloat(row[alias]), nil
			},
		})
		if err != nil {
			return err
		}
		added++
	}
	if added > 0 {
		b.Log.WithField("table", c.Class.Name).WithField("fields", added).
			Debugf("Adding TSV rank fields to table '%s'", c.Class.Name)
	}
	return nil
}
