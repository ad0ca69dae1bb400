package filter

import (
	"fmt"
	"strings"

	"github.com/nonibytes/pgfulltext/pgfulltext/graph"
	sb "github.com/nonibytes/pgfulltext/pgfulltext/sqlbuilder"
)

var orderedTypes = []string{graph.ScalarInt, graph.ScalarBigInt, graph.ScalarFloat, graph.ScalarDatetime, graph.ScalarString}

var textual = []string{graph.ScalarString}

func sameType(t graph.TypeRef) graph.TypeRef { return graph.Named(t.Name) }

func listOfType(t graph.TypeRef) graph.TypeRef { return graph.ListOf(t.Name) }

func booleanType(graph.TypeRef) graph.TypeRef { return graph.Named(graph.ScalarBoolean) }

func binary(op string) Resolve {
	return func(ctx OperatorContext) (sb.Fragment, error) {
		return sb.Query("%s "+op+" %s", ctx.Identifier, sb.Value(ctx.Value)), nil
	}
}

func registerBuiltins(r *Registry) error {
	builtins := []Operator{
		{
			Name:        "isNull",
			Description: "Is null (if `true` is specified) or is not null (if `false` is specified).",
			ResolveType: booleanType,
			Resolve: func(ctx OperatorContext) (sb.Fragment, error) {
				isNull, ok := ctx.Value.(bool)
				if !ok {
					return sb.Fragment{}, fmt.Errorf("%w: isNull expects a boolean", ErrInvalidFilter)
				}
				if isNull {
					return sb.Query("%s IS NULL", ctx.Identifier), nil
				}
				return sb.Query("%s IS NOT NULL", ctx.Identifier), nil
			},
		},
		{Name: "equalTo", Description: "Equal to the specified value.", ResolveType: sameType, Resolve: binary("=")},
		{Name: "notEqualTo", Description: "Not equal to the specified value.", ResolveType: sameType, Resolve: binary("<>")},
		{
			Name:        "in",
			Description: "Included in the specified list.",
			ResolveType: listOfType,
			Resolve: func(ctx OperatorContext) (sb.Fragment, error) {
				items, ok := ctx.Value.([]any)
				if !ok {
					return sb.Fragment{}, fmt.Errorf("%w: in expects a list", ErrInvalidFilter)
				}
				if len(items) == 0 {
					return sb.False, nil
				}
				vals := make([]sb.Fragment, len(items))
				for i, v := range items {
					vals[i] = sb.Value(v)
				}
				return sb.Query("%s IN (%s)", ctx.Identifier, sb.Join(vals, ", ")), nil
			},
		},
		{Name: "lessThan", Description: "Less than the specified value.", ResolveType: sameType, Resolve: binary("<"),
			Options: OperatorOptions{AllowedFieldTypes: orderedTypes}},
		{Name: "greaterThan", Description: "Greater than the specified value.", ResolveType: sameType, Resolve: binary(">"),
			Options: OperatorOptions{AllowedFieldTypes: orderedTypes}},
		{
			Name:        "includes",
			Description: "Contains the specified string (case-sensitive).",
			ResolveType: sameType,
			Resolve: func(ctx OperatorContext) (sb.Fragment, error) {
				s, _ := ctx.Value.(string)
				return sb.Query("%s LIKE %s", ctx.Identifier, sb.Value("%"+escapeLike(s)+"%")), nil
			},
			Options: OperatorOptions{AllowedFieldTypes: textual},
		},
		{Name: "likeInsensitive", Description: "Matches the specified pattern (case-insensitive). An underscore (_) matches any single character; a percent sign (%) matches any sequence of zero or more characters.",
			ResolveType: sameType, Resolve: binary("ILIKE"), Options: OperatorOptions{AllowedFieldTypes: textual}},
	}
	for _, op := range builtins {
		if err := r.AddOperator(op.Name, op.Description, op.ResolveType, op.Resolve, op.Options); err != nil {
			return err
		}
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
