// Package inflection derives schema names from catalog names.
package inflection

import (
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/jinzhu/inflection"

	in "github.com/nonibytes/pgfulltext/pgfulltext/introspection"
)

// Inflector turns catalog identifiers into type, field and enum names. The
// zero value is ready to use.
type Inflector struct{}

func New() *Inflector { return &Inflector{} }

// CamelCase: "full_text-rank" -> "fullTextRank".
func (*Inflector) CamelCase(s string) string { return strcase.ToLowerCamel(s) }

// UpperCamelCase: "full_text" -> "FullText".
func (*Inflector) UpperCamelCase(s string) string { return strcase.ToCamel(s) }

// ConstantCase: "full_text_rank_asc" -> "FULL_TEXT_RANK_ASC".
func (*Inflector) ConstantCase(s string) string { return strcase.ToScreamingSnake(s) }

func (*Inflector) Pluralize(s string) string   { return inflection.Plural(s) }
func (*Inflector) Singularize(s string) string { return inflection.Singular(s) }

// TableName honours an @name smart tag.
func (*Inflector) TableName(c *in.Class) string {
	if v, ok := in.Tag(c, "name"); ok && v != "" {
		return v
	}
	return c.Name
}

// TableType is the object type name of a class: job -> Job.
func (i *Inflector) TableType(c *in.Class) string {
	return i.UpperCamelCase(i.Singularize(i.TableName(c)))
}

// AllRows is the root connection field: job -> allJobs.
func (i *Inflector) AllRows(c *in.Class) string {
	return i.CamelCase("all-" + i.Pluralize(i.TableName(c)))
}

// Column is the field name of an attribute.
func (i *Inflector) Column(a *in.Attribute) string {
	if v, ok := in.Tag(a, "name"); ok && v != "" {
		return i.CamelCase(v)
	}
	return i.CamelCase(a.Name)
}

// ComputedColumn is the field name of a computed column procedure, given the
// procedure name with the "<table>_" prefix stripped.
func (i *Inflector) ComputedColumn(pseudoColumn string, p *in.Procedure) string {
	if v, ok := in.Tag(p, "fieldName"); ok && v != "" {
		return v
	}
	return i.CamelCase(pseudoColumn)
}

// OrderByType: Job -> JobsOrderBy.
func (i *Inflector) OrderByType(typeName string) string {
	return i.UpperCamelCase(i.Pluralize(typeName)) + "OrderBy"
}

// OrderByColumnEnum: ("full_text", true) -> FULL_TEXT_ASC.
func (i *Inflector) OrderByColumnEnum(column string, ascending bool) string {
	if ascending {
		return i.ConstantCase(column + "_asc")
	}
	return i.ConstantCase(column + "_desc")
}

// FilterType: Job -> JobFilter.
func (*Inflector) FilterType(typeName string) string { return typeName + "Filter" }

// SingleRelation names a forward relation field: (Client, [clientId]) ->
// clientByClientId.
func (i *Inflector) SingleRelation(foreignType string, keys []string) string {
	parts := make([]string, len(keys))
	for n, k := range keys {
		parts[n] = i.UpperCamelCase(k)
	}
	return i.CamelCase(foreignType) + "By" + strings.Join(parts, "And")
}
