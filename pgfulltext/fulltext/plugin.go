// Package fulltext adds full-text search to row types exposing tsvector
// columns or tsvector-returning computed columns: a matches filter operator,
// a <field>Rank output field, and <FIELD>_RANK_ASC/DESC order values. The
// three agree on the search expression through the per-query ranking registry.
package fulltext

import (
	"errors"
	"fmt"

	"github.com/nonibytes/pgfulltext/pgfulltext/filter"
	"github.com/nonibytes/pgfulltext/pgfulltext/graph"
	in "github.com/nonibytes/pgfulltext/pgfulltext/introspection"
	"github.com/nonibytes/pgfulltext/pgfulltext/ranking"
	sb "github.com/nonibytes/pgfulltext/pgfulltext/sqlbuilder"
	"github.com/nonibytes/pgfulltext/pgfulltext/tsquery"
)

var (
	ErrFilterPluginMissing = errors.New("fulltext: requires the filter plugin to be loaded first")
	ErrNoRowType           = errors.New("fulltext: could not determine the type of this table")
	ErrInvalidMatchInput   = errors.New("fulltext: matches expects a string or {value, language}")
)

// Schema names.
const (
	ScalarFullText = "FullText"
	FilterInput    = "FullTextFilter"
	MatchInput     = "FullTextMatchInput"
	OperatorName   = "matches"
)

// Plugin adds full-text filtering, rank fields and rank sort values to the
// schema. It must run after the filter plugin.
type Plugin struct {
	queries *tsquery.Cache
}

// NewPlugin returns the plugin. Search expressions are compiled through
// queries; nil uses a private cache of the default size.
func NewPlugin(queries *tsquery.Cache) *Plugin {
	if queries == nil {
		queries = tsquery.MustNewCache(tsquery.DefaultCacheSize)
	}
	return &Plugin{queries: queries}
}

func (*Plugin) Name() string { return "fulltext" }

func (p *Plugin) Build(b *graph.Build) error {
	reg := filter.RegistryFrom(b)
	if reg == nil {
		return ErrFilterPluginMissing
	}

	if err := b.AddScalar(&graph.Scalar{
		Name:        ScalarFullText,
		Description: "A full-text search index, as produced by `to_tsvector`.",
		Serialize:   func(v any) any { return v },
		Parse:       func(v any) (any, error) { return v, nil },
	}); err != nil {
		return err
	}
	b.RegisterOutputTypeByOID(in.TSVectorOID, ScalarFullText)
	b.RegisterInputTypeByOID(in.TSVectorOID, ScalarFullText)

	match := graph.NewInputObject(MatchInput, "A full-text search expression with an optional text search configuration.")
	_ = match.AddField(&graph.InputField{Name: "value", Description: "The search expression.", Type: graph.NonNull(graph.ScalarString)})
	_ = match.AddField(&graph.InputField{Name: "language", Description: "A text search configuration such as `english`.", Type: graph.Named(graph.ScalarString)})
	if err := b.AddInput(match); err != nil {
		return err
	}

	err := reg.AddOperator(OperatorName, "Performs a full text search on the field.",
		func(graph.TypeRef) graph.TypeRef { return graph.Named(graph.ScalarString) },
		p.matches,
		filter.OperatorOptions{AllowedFieldTypes: []string{ScalarFullText}, RawInput: true})
	if err != nil {
		return err
	}

	input := graph.NewInputObject(FilterInput, "A filter to be used against `FullText` fields.")
	_ = input.AddField(&graph.InputField{Name: OperatorName, Description: "Performs a full text search on the field.", Type: graph.Named(graph.ScalarString)})
	if err := b.AddInput(input); err != nil {
		return err
	}
	reg.BindScalarFilter(ScalarFullText, input)
	return nil
}

// matches compiles the search, registers its rank for the field and row path
// being filtered, and returns the match predicate.
func (p *Plugin) matches(ctx filter.OperatorContext) (sb.Fragment, error) {
	text, language, err := searchInput(ctx.Value)
	if err != nil {
		return sb.Fragment{}, err
	}
	q, err := p.queries.Compile(text)
	if err != nil {
		return sb.Fragment{}, fmt.Errorf("%s: %w", ctx.FieldName, err)
	}
	expr := ranking.Expression{Target: ctx.Field.Select, Query: q, Language: language}
	ranking.For(ctx.Query).Register(ranking.Key{Path: ctx.Scope.Path, Field: ctx.FieldName}, expr)
	return expr.Match(ctx.Scope.Alias), nil
}

func searchInput(v any) (text, language string, err error) {
	switch x := v.(type) {
	case string:
		return x, "", nil
	case map[string]any:
		value, ok := x["value"].(string)
		if !ok {
			return "", "", ErrInvalidMatchInput
		}
		switch l := x["language"].(type) {
		case nil:
		case string:
			language = l
		default:
			return "", "", ErrInvalidMatchInput
		}
		return value, language, nil
	default:
		return "", "", ErrInvalidMatchInput
	}
}
