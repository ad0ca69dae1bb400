package graph

import (
	"strings"

	in "github.com/nonibytes/pgfulltext/pgfulltext/introspection"
	sb "github.com/nonibytes/pgfulltext/pgfulltext/sqlbuilder"
)

// Natural order and primary key enum values.
const (
	OrderNatural       = "NATURAL"
	OrderPrimaryKeyAsc = "PRIMARY_KEY_ASC"
	OrderPrimaryKeyDsc = "PRIMARY_KEY_DESC"
)

// RowPlugin exposes every readable class as an object type with columns,
// computed columns and forward relations, an order-by enum and a root
// all<Plural> field.
type RowPlugin struct{}

func (RowPlugin) Name() string { return "rows" }

func (RowPlugin) Build(b *Build) error {
	for _, s := range builtinScalars() {
		if err := b.AddScalar(s); err != nil {
			return err
		}
	}
	for oid, name := range scalarByOID {
		b.RegisterOutputTypeByOID(oid, name)
		b.RegisterInputTypeByOID(oid, name)
	}

	infl := b.Inflection
	for _, c := range b.Introspection.Classes {
		if !c.IsSelectable() || in.Omit(c, in.OmitRead) {
			continue
		}
		typeName := infl.TableType(c)
		if err := b.AddObject(NewObject(typeName, c.Description, c)); err != nil {
			return err
		}
		if in.Omit(c, in.OmitOrder) {
			continue
		}
		enum := NewEnum(infl.OrderByType(typeName), "Methods to use when ordering `"+typeName+"`.", c)
		if err := b.AddEnum(enum); err != nil {
			return err
		}
	}
	return nil
}

func (RowPlugin) ObjectFields(b *Build, c *ClassContext) error {
	r := b.Introspection
	infl := b.Inflection

	for _, a := range r.AttributesOf(c.Class.ID) {
		if in.Omit(a, in.OmitRead) {
			continue
		}
		scalarName, ok := b.OutputTypeForOID(a.TypeID)
		if !ok {
			b.Log.WithField("column", c.Class.Name+"."+a.Name).Debug("skipping column of unsupported type")
			continue
		}
		name := infl.Column(a)
		typ := Named(scalarName)
		if a.NotNull {
			typ = NonNull(scalarName)
		}
		if err := c.Object.AddField(&Field{
			Name:        name,
			Description: a.Description,
			Type:        typ,
			Kind:        FieldColumn,
			Select:      columnSelect(a.Name),
			Resolve:     b.serializer(scalarName, name),
			Attribute:   a,
		}); err != nil {
			return err
		}
	}

	if c.RowType != nil {
		for _, cc := range ComputedColumns(r, c.Class, c.RowType) {
			if cc.Procedure.RequiredArgs() > 1 || in.Omit(cc.Procedure, in.OmitRead) {
				continue
			}
			scalarName, ok := b.OutputTypeForOID(cc.Procedure.ReturnTypeID)
			if !ok {
				continue
			}
			name := infl.ComputedColumn(cc.PseudoColumn, cc.Procedure)
			if err := c.Object.AddField(&Field{
				Name:        name,
				Description: cc.Procedure.Description,
				Type:        Named(scalarName),
				Kind:        FieldComputed,
				Select:      ProcedureSelect(r, cc.Procedure),
				Resolve:     b.serializer(scalarName, name),
				Procedure:   cc.Procedure,
			}); err != nil {
				return err
			}
		}
	}

	for _, con := range r.ConstraintsOf(c.Class.ID, in.ConstraintForeignKey) {
		if in.Omit(con, in.OmitRead) {
			continue
		}
		foreign, ok := b.ObjectForClass(con.ForeignClassID)
		if !ok {
			continue
		}
		rel := &Relation{Class: c.Class, ForeignClass: foreign.Class, ForeignType: foreign.Name}
		var keyNames []string
		for i, num := range con.KeyAttrNums {
			local, ok1 := r.Attribute(con.ClassID, num)
			remote, ok2 := r.Attribute(con.ForeignClassID, con.ForeignKeyAttrNums[i])
			if !ok1 || !ok2 {
				rel = nil
				break
			}
			rel.Keys = append(rel.Keys, local.Name)
			rel.ForeignKeys = append(rel.ForeignKeys, remote.Name)
			keyNames = append(keyNames, infl.Column(local))
		}
		if rel == nil {
			continue
		}
		if err := c.Object.AddField(&Field{
			Name:        infl.SingleRelation(foreign.Name, keyNames),
			Description: "Reads a single `" + foreign.Name + "` that is related to this `" + c.Object.Name + "`.",
			Type:        Named(foreign.Name),
			Kind:        FieldRelation,
			Relation:    rel,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (RowPlugin) EnumValues(b *Build, c *ClassContext) error {
	r := b.Introspection
	infl := b.Inflection
	values := []*EnumValue{{Name: OrderNatural}}

	if pk, ok := r.PrimaryKey(c.Class.ID); ok {
		var cols []string
		for _, num := range pk.KeyAttrNums {
			if a, ok := r.Attribute(c.Class.ID, num); ok {
				cols = append(cols, a.Name)
			}
		}
		values = append(values,
			&EnumValue{Name: OrderPrimaryKeyAsc, Order: columnOrder(cols, true)},
			&EnumValue{Name: OrderPrimaryKeyDsc, Order: columnOrder(cols, false)},
		)
	}
	for _, a := range r.AttributesOf(c.Class.ID) {
		if in.Omit(a, in.OmitRead) || in.Omit(a, in.OmitOrder) {
			continue
		}
		if _, ok := b.OutputTypeForOID(a.TypeID); !ok {
			continue
		}
		values = append(values,
			&EnumValue{Name: infl.OrderByColumnEnum(a.Name, true), Order: columnOrder([]string{a.Name}, true)},
			&EnumValue{Name: infl.OrderByColumnEnum(a.Name, false), Order: columnOrder([]string{a.Name}, false)},
		)
	}
	for _, v := range values {
		if err := c.OrderBy.AddValue(v); err != nil {
			return err
		}
	}
	return nil
}

func (RowPlugin) Finalize(b *Build) error {
	q := b.Query()
	for _, c := range b.classContexts() {
		if c.OrderBy == nil {
			continue
		}
		defaultOrder := "[" + OrderNatural + "]"
		if _, ok := b.Introspection.PrimaryKey(c.Class.ID); ok {
			defaultOrder = "[" + OrderPrimaryKeyAsc + "]"
		}
		err := q.AddField(&Field{
			Name:        b.Inflection.AllRows(c.Class),
			Description: "Reads and enables pagination through a set of `" + c.Object.Name + "`.",
			Type:        TypeRef{Name: c.Object.Name, List: true, ItemNonNull: true, NonNull: true},
			Kind:        FieldConnection,
			Args: []*InputField{
				{Name: "first", Description: "Only read the first `n` values of the set.", Type: Named(ScalarInt)},
				{Name: "offset", Description: "Skip the first `n` values.", Type: Named(ScalarInt)},
				{Name: "orderBy", Description: "The method to use when ordering `" + c.Object.Name + "`.", Type: ListOf(c.OrderBy.Name), Default: defaultOrder},
			},
			Connection: &Connection{Class: c.Class, Object: c.Object.Name, OrderBy: c.OrderBy.Name},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *Build) serializer(scalarName, key string) func(Row) (any, error) {
	s, ok := b.Scalar(scalarName)
	if !ok || s.Serialize == nil {
		return nil
	}
	return func(row Row) (any, error) {
		v := row[key]
		if v == nil {
			return nil, nil
		}
		return s.Serialize(v), nil
	}
}

func columnSelect(column string) func(sb.Fragment) sb.Fragment {
	return func(alias sb.Fragment) sb.Fragment { return sb.Column(alias, column) }
}

func columnOrder(cols []string, asc bool) []OrderPart {
	parts := make([]OrderPart, len(cols))
	for i, col := range cols {
		col := col
		parts[i] = OrderPart{Asc: asc, Expr: func(ctx OrderContext) sb.Fragment { return sb.Column(ctx.Alias, col) }}
	}
	return parts
}

// ComputedColumn is a procedure usable as a field of a row type.
type ComputedColumn struct {
	Procedure *in.Procedure
	// PseudoColumn is the procedure name without the "<table>_" prefix.
	PseudoColumn string
}

// ComputedColumns lists the stable, non-set-returning procedures in the
// class namespace named "<table>_<rest>" whose first argument is the row
// type, in catalog order. Callers apply their own arity and tag checks.
func ComputedColumns(r *in.Result, c *in.Class, rowType *in.Type) []ComputedColumn {
	prefix := c.Name + "_"
	var out []ComputedColumn
	for _, p := range r.ProceduresIn(c.NamespaceID) {
		if !p.IsStable || p.ReturnsSet || len(p.ArgTypeIDs) == 0 {
			continue
		}
		if p.ArgTypeIDs[0] != rowType.ID || !strings.HasPrefix(p.Name, prefix) || len(p.Name) == len(prefix) {
			continue
		}
		out = append(out, ComputedColumn{Procedure: p, PseudoColumn: strings.TrimPrefix(p.Name, prefix)})
	}
	return out
}

// ProcedureSelect renders a call of p with the row as its only argument.
func ProcedureSelect(r *in.Result, p *in.Procedure) func(sb.Fragment) sb.Fragment {
	name := sb.Ident(p.Name)
	if ns, ok := r.Namespace(p.NamespaceID); ok {
		name = sb.Ident(ns.Name, p.Name)
	}
	return func(alias sb.Fragment) sb.Fragment { return sb.Query("%s(%s)", name, alias) }
}
