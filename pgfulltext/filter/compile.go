package filter

import (
	"fmt"
	"sort"

	"github.com/nonibytes/pgfulltext/pgfulltext/graph"
	"github.com/nonibytes/pgfulltext/pgfulltext/querybuilder"
	sb "github.com/nonibytes/pgfulltext/pgfulltext/sqlbuilder"
)

// Compile turns a filter value (as decoded from JSON) into a predicate on the
// scope's row. Keys are visited in sorted order so the generated SQL and the
// side effects of operators are deterministic. An empty filter compiles to an
// empty fragment.
func Compile(qb *querybuilder.QueryBuilder, r *Registry, scope Scope, value any) (sb.Fragment, error) {
	of, ok := r.ObjectFilterFor(scope.Object.Name)
	if !ok {
		return sb.Fragment{}, fmt.Errorf("%w: %s is not filterable", ErrUnknownField, scope.Object.Name)
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return sb.Fragment{}, fmt.Errorf("%w: expected an object for %s", ErrInvalidFilter, of.Input.Name)
	}

	var parts []sb.Fragment
	for _, key := range sortedKeys(obj) {
		v := obj[key]
		if v == nil {
			continue
		}
		var (
			frag sb.Fragment
			err  error
		)
		switch key {
		case "and", "or":
			frag, err = compileList(qb, r, scope, key, v)
		case "not":
			frag, err = Compile(qb, r, scope, v)
			if err == nil && !frag.IsEmpty() {
				frag = sb.Query("NOT (%s)", frag)
			}
		default:
			ff, ok := of.Fields[key]
			if !ok {
				return sb.Fragment{}, fmt.Errorf("%w: %s.%s", ErrUnknownField, of.Input.Name, key)
			}
			if ff.Field.Relation != nil {
				frag, err = compileRelation(qb, r, scope, key, ff, v)
			} else {
				frag, err = compileField(qb, r, scope, key, ff, v)
			}
		}
		if err != nil {
			return sb.Fragment{}, err
		}
		parts = append(parts, frag)
	}
	return sb.Join(parens(parts), " AND "), nil
}

func compileList(qb *querybuilder.QueryBuilder, r *Registry, scope Scope, key string, v any) (sb.Fragment, error) {
	list, ok := v.([]any)
	if !ok {
		return sb.Fragment{}, fmt.Errorf("%w: %s expects a list", ErrInvalidFilter, key)
	}
	var parts []sb.Fragment
	for _, item := range list {
		frag, err := Compile(qb, r, scope, item)
		if err != nil {
			return sb.Fragment{}, err
		}
		parts = append(parts, frag)
	}
	sep := " AND "
	if key == "or" {
		sep = " OR "
	}
	joined := sb.Join(parens(parts), sep)
	if joined.IsEmpty() {
		return joined, nil
	}
	return sb.Parens(joined), nil
}

func compileRelation(qb *querybuilder.QueryBuilder, r *Registry, scope Scope, key string, ff *FilterField, v any) (sb.Fragment, error) {
	foreign, ok := r.ObjectFilter(ff.ForeignFilter)
	if !ok {
		return sb.Fragment{}, fmt.Errorf("%w: %s", ErrUnknownField, ff.ForeignFilter)
	}
	alias := qb.NewAlias()
	child := Scope{Object: foreign.Object, Alias: alias, Path: ChildPath(scope.Path, key)}
	nested, err := Compile(qb, r, child, v)
	if err != nil {
		return sb.Fragment{}, err
	}
	rel := ff.Field.Relation
	cond := rel.Join(scope.Alias, alias)
	if !nested.IsEmpty() {
		cond = sb.Query("%s AND %s", cond, sb.Parens(nested))
	}
	table := r.table(rel)
	return sb.Query("EXISTS (SELECT 1 FROM %s AS %s WHERE %s)", table, alias, cond), nil
}

func compileField(qb *querybuilder.QueryBuilder, r *Registry, scope Scope, key string, ff *FilterField, v any) (sb.Fragment, error) {
	ops, ok := v.(map[string]any)
	if !ok {
		return sb.Fragment{}, fmt.Errorf("%w: expected an object for %s", ErrInvalidFilter, key)
	}
	ident := ff.Field.Select(scope.Alias)
	var parts []sb.Fragment
	for _, name := range sortedKeys(ops) {
		val := ops[name]
		if val == nil {
			continue
		}
		if _, declared := ff.Input.Field(name); !declared {
			return sb.Fragment{}, fmt.Errorf("%w: %s on %s", ErrUnknownOperator, name, key)
		}
		op, ok := r.Operator(name)
		if !ok {
			return sb.Fragment{}, fmt.Errorf("%w: %s", ErrUnknownOperator, name)
		}
		if !op.allows(ff.Scalar) {
			return sb.Fragment{}, fmt.Errorf("%w: %s on %s", ErrOperatorNotAllowed, name, key)
		}
		if !op.Options.RawInput {
			parsed, err := r.parse(op.ResolveType(graph.Named(ff.Scalar)), val)
			if err != nil {
				return sb.Fragment{}, fmt.Errorf("%w: %s.%s: %v", ErrInvalidFilter, key, name, err)
			}
			val = parsed
		}
		frag, err := op.Resolve(OperatorContext{
			Identifier: ident,
			Value:      val,
			FieldName:  key,
			Field:      ff.Field,
			Scope:      scope,
			Query:      qb,
		})
		if err != nil {
			return sb.Fragment{}, fmt.Errorf("%s.%s: %w", key, name, err)
		}
		parts = append(parts, frag)
	}
	return sb.Join(parens(parts), " AND "), nil
}

// parse validates v against t using the scalar's parser.
func (r *Registry) parse(t graph.TypeRef, v any) (any, error) {
	sc, ok := r.scalars(t.Name)
	if !ok || sc.Parse == nil {
		return v, nil
	}
	if !t.List {
		return sc.Parse(v)
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a list", ErrInvalidFilter)
	}
	out := make([]any, len(items))
	for i, item := range items {
		p, err := sc.Parse(item)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func (r *Registry) table(rel *graph.Relation) sb.Fragment {
	if r.tables != nil {
		return r.tables(rel.ForeignClass)
	}
	return sb.Ident(rel.ForeignClass.Name)
}

func parens(fs []sb.Fragment) []sb.Fragment {
	var n int
	for _, f := range fs {
		if !f.IsEmpty() {
			n++
		}
	}
	if n < 2 {
		return fs
	}
	out := make([]sb.Fragment, 0, len(fs))
	for _, f := range fs {
		if f.IsEmpty() {
			continue
		}
		out = append(out, sb.Parens(f))
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
