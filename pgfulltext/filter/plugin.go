package filter

import (
	"github.com/nonibytes/pgfulltext/pgfulltext/graph"
	in "github.com/nonibytes/pgfulltext/pgfulltext/introspection"
	sb "github.com/nonibytes/pgfulltext/pgfulltext/sqlbuilder"
)

// Plugin attaches a Registry to the build, registers the built-in operators,
// and generates filter input types and root filter arguments.
type Plugin struct{}

func (Plugin) Name() string { return "filter" }

func (Plugin) Build(b *graph.Build) error {
	r := NewRegistry()
	r.scalars = b.Scalar
	r.tables = func(c *in.Class) sb.Fragment { return graph.Table(b.Introspection, c) }
	b.SetExtension(ExtensionName, r)
	return registerBuiltins(r)
}

func (Plugin) FilterFields(b *graph.Build, c *graph.ClassContext) error {
	if in.Omit(c.Class, in.OmitFilter) {
		return nil
	}
	r := RegistryFrom(b)
	infl := b.Inflection
	name := infl.FilterType(c.Object.Name)
	input := graph.NewInputObject(name, "A filter to be used against `"+c.Object.Name+"` object types. All fields are combined with a logical ‘and.’")
	of := &ObjectFilter{Object: c.Object, Input: input, Fields: map[string]*FilterField{}}

	for _, f := range c.Object.Fields() {
		var ff *FilterField
		switch f.Kind {
		case graph.FieldColumn, graph.FieldComputed:
			if f.Attribute != nil && in.Omit(f.Attribute, in.OmitFilter) {
				continue
			}
			if f.Procedure != nil && in.Omit(f.Procedure, in.OmitFilter) {
				continue
			}
			scalarInput, ok := scalarFilter(b, r, f.Type.Name)
			if !ok {
				continue
			}
			ff = &FilterField{Field: f, Scalar: f.Type.Name, Input: scalarInput}
			err := input.AddField(&graph.InputField{
				Name:        f.Name,
				Description: "Filter by the object’s `" + f.Name + "` field.",
				Type:        graph.Named(scalarInput.Name),
			})
			if err != nil {
				return err
			}
		case graph.FieldRelation:
			foreign, ok := b.ObjectForClass(f.Relation.ForeignClass.ID)
			if !ok || in.Omit(f.Relation.ForeignClass, in.OmitFilter) {
				continue
			}
			ff = &FilterField{Field: f, ForeignFilter: infl.FilterType(foreign.Name)}
			err := input.AddField(&graph.InputField{
				Name:        f.Name,
				Description: "Filter by the object’s `" + f.Name + "` relation.",
				Type:        graph.Named(ff.ForeignFilter),
			})
			if err != nil {
				return err
			}
		default:
			continue
		}
		of.Fields[f.Name] = ff
	}

	for _, lf := range []*graph.InputField{
		{Name: "and", Description: "Checks for all expressions in this list.", Type: graph.ListOf(name)},
		{Name: "or", Description: "Checks for any expressions in this list.", Type: graph.ListOf(name)},
		{Name: "not", Description: "Negates the expression.", Type: graph.Named(name)},
	} {
		if err := input.AddField(lf); err != nil {
			return err
		}
	}
	if err := b.AddInput(input); err != nil {
		return err
	}
	r.addObjectFilter(of)
	b.Log.WithField("type", name).WithField("fields", len(of.Fields)).Debug("added row filter")
	return nil
}

func (Plugin) Finalize(b *graph.Build) error {
	r := RegistryFrom(b)
	for _, f := range b.Query().Fields() {
		if f.Connection == nil {
			continue
		}
		name := b.Inflection.FilterType(f.Connection.Object)
		if _, ok := r.ObjectFilter(name); !ok {
			continue
		}
		f.Args = append(f.Args, &graph.InputField{
			Name:        "filter",
			Description: "A filter to be used in determining which values should be returned by the collection.",
			Type:        graph.Named(name),
		})
	}
	return nil
}

// scalarFilter returns the <Scalar>Filter input, creating it from the
// applicable operators on first use. An input registered by another plugin
// under that name is adopted as is.
func scalarFilter(b *graph.Build, r *Registry, scalar string) (*graph.InputObject, bool) {
	if i, ok := r.ScalarFilter(scalar); ok {
		return i, true
	}
	name := scalar + "Filter"
	if i, ok := b.Input(name); ok {
		r.BindScalarFilter(scalar, i)
		return i, true
	}
	ops := r.OperatorsFor(scalar)
	if len(ops) == 0 {
		return nil, false
	}
	input := graph.NewInputObject(name, "A filter to be used against "+scalar+" fields. All fields are combined with a logical ‘and.’")
	for _, op := range ops {
		_ = input.AddField(&graph.InputField{
			Name:        op.Name,
			Description: op.Description,
			Type:        op.ResolveType(graph.Named(scalar)),
		})
	}
	if err := b.AddInput(input); err != nil {
		return nil, false
	}
	r.BindScalarFilter(scalar, input)
	return input, true
}
