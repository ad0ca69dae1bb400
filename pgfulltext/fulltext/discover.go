package fulltext

import (
	"github.com/nonibytes/pgfulltext/pgfulltext/graph"
	"github.com/nonibytes/pgfulltext/pgfulltext/inflection"
	in "github.com/nonibytes/pgfulltext/pgfulltext/introspection"
	"github.com/nonibytes/pgfulltext/pgfulltext/querybuilder"
	sb "github.com/nonibytes/pgfulltext/pgfulltext/sqlbuilder"
)

// SourceKind says whether a full-text field is a table column or a computed
// column function.
type SourceKind string

const (
	KindColumn   SourceKind = "column"
	KindComputed SourceKind = "computedFunction"
)

// Field is a full-text capable field of a row type.
type Field struct {
	Class     *in.Class
	Kind      SourceKind
	Attribute *in.Attribute
	Procedure *in.Procedure

	BaseName string
	RankName string
	AscName  string
	DescName string

	// Filterable fields get a rank field; Orderable fields get sort values.
	Filterable bool
	Orderable  bool
}

// Target renders the tsvector of the field for a row alias.
func (f Field) Target(r *in.Result) querybuilder.SelectFunc {
	if f.Kind == KindComputed {
		return graph.ProcedureSelect(r, f.Procedure)
	}
	name := f.Attribute.Name
	return func(alias sb.Fragment) sb.Fragment { return sb.Column(alias, name) }
}

// Discover lists the full-text fields of class c: readable tsvector columns in
// attribute order, then stable "<table>_<name>(row)" procedures returning
// tsvector with no other required arguments, in catalog order.
func Discover(r *in.Result, infl *inflection.Inflector, c *in.Class) ([]Field, error) {
	rowType, ok := r.RowTypeOf(c)
	if !ok {
		return nil, ErrNoRowType
	}

	var out []Field
	for _, a := range r.AttributesOf(c.ID) {
		if a.TypeID != in.TSVectorOID || in.Omit(a, in.OmitRead) {
			continue
		}
		out = append(out, newField(infl, Field{
			Class:      c,
			Kind:       KindColumn,
			Attribute:  a,
			BaseName:   infl.Column(a),
			Filterable: !in.Omit(a, in.OmitFilter),
			Orderable:  !in.Omit(a, in.OmitOrder),
		}, a.Name))
	}

	for _, cc := range graph.ComputedColumns(r, c, rowType) {
		p := cc.Procedure
		if p.ReturnTypeID != in.TSVectorOID || p.RequiredArgs() != 1 || in.Omit(p, in.OmitRead) {
			continue
		}
		out = append(out, newField(infl, Field{
			Class:      c,
			Kind:       KindComputed,
			Procedure:  p,
			BaseName:   infl.ComputedColumn(cc.PseudoColumn, p),
			Filterable: !in.Omit(p, in.OmitFilter),
			Orderable:  !in.Omit(p, in.OmitOrder),
		}, cc.PseudoColumn))
	}
	return out, nil
}

func newField(infl *inflection.Inflector, f Field, sqlName string) Field {
	f.RankName = infl.CamelCase(f.BaseName + "-rank")
	f.AscName = infl.ConstantCase(sqlName + "_rank_asc")
	f.DescName = infl.ConstantCase(sqlName + "_rank_desc")
	return f
}
