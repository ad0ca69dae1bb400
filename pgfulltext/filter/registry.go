// Package filter implements the relational filter subsystem: an operator
// registry, per-scalar and per-row filter input types, and compilation of a
// filter value into a WHERE predicate.
package filter

import (
	"errors"
	"fmt"

	"github.com/nonibytes/pgfulltext/pgfulltext/graph"
	in "github.com/nonibytes/pgfulltext/pgfulltext/introspection"
	"github.com/nonibytes/pgfulltext/pgfulltext/querybuilder"
	sb "github.com/nonibytes/pgfulltext/pgfulltext/sqlbuilder"
)

// ExtensionName is the build extension under which the Registry is stored.
const ExtensionName = "filter"

var (
	ErrUnknownField       = errors.New("filter: unknown field")
	ErrUnknownOperator    = errors.New("filter: unknown operator")
	ErrOperatorNotAllowed = errors.New("filter: operator not allowed on field")
	ErrInvalidFilter      = errors.New("filter: invalid filter value")
	ErrDuplicateOperator  = errors.New("filter: duplicate operator")
)

// Scope is the row a filter is being compiled against.
type Scope struct {
	Object *graph.Object
	Alias  sb.Fragment
	// Path is the relation path from the root row; "" is the root.
	Path string
}

// ChildPath extends a relation path with a relation field name.
func ChildPath(parent, field string) string {
	if parent == "" {
		return field
	}
	return parent + "." + field
}

// OperatorContext is passed to an operator's resolver.
type OperatorContext struct {
	Identifier sb.Fragment
	Value      any
	FieldName  string
	Field      *graph.Field
	Scope      Scope
	Query      *querybuilder.QueryBuilder
}

// ResolveType returns the input type of an operator for a field of the given
// scalar type.
type ResolveType func(fieldType graph.TypeRef) graph.TypeRef

type Resolve func(ctx OperatorContext) (sb.Fragment, error)

type OperatorOptions struct {
	// AllowedFieldTypes restricts the operator to these scalars; empty means
	// every scalar.
	AllowedFieldTypes []string
	// RawInput hands the caller's value to the resolver without scalar parsing.
	RawInput bool
}

type Operator struct {
	Name        string
	Description string
	ResolveType ResolveType
	Resolve     Resolve
	Options     OperatorOptions
}

func (o *Operator) allows(scalar string) bool {
	if len(o.Options.AllowedFieldTypes) == 0 {
		return true
	}
	for _, t := range o.Options.AllowedFieldTypes {
		if t == scalar {
			return true
		}
	}
	return false
}

// FilterField is one entry of a row filter input.
type FilterField struct {
	Field *graph.Field
	// Scalar and Input are set for column and computed-column fields.
	Scalar string
	Input  *graph.InputObject
	// ForeignFilter is the row filter input name of a relation target.
	ForeignFilter string
}

// ObjectFilter describes the <Type>Filter input of a row type.
type ObjectFilter struct {
	Object *graph.Object
	Input  *graph.InputObject
	Fields map[string]*FilterField
}

// Registry holds operators and filter inputs. It is populated while the
// schema is built and read-only afterwards.
type Registry struct {
	operators     []*Operator
	byName        map[string]*Operator
	scalarFilters map[string]*graph.InputObject
	objectFilters map[string]*ObjectFilter
	byObject      map[string]*ObjectFilter
	scalars       func(name string) (*graph.Scalar, bool)
	tables        func(c *in.Class) sb.Fragment
}

func NewRegistry() *Registry {
	return &Registry{
		byName:        map[string]*Operator{},
		scalarFilters: map[string]*graph.InputObject{},
		objectFilters: map[string]*ObjectFilter{},
		byObject:      map[string]*ObjectFilter{},
		scalars:       func(string) (*graph.Scalar, bool) { return nil, false },
	}
}

// RegistryFrom returns the registry a Plugin attached to the build, or nil.
func RegistryFrom(b *graph.Build) *Registry {
	v, _ := b.Extension(ExtensionName)
	r, _ := v.(*Registry)
	return r
}

// RegistryOf returns the registry attached to a built schema, or nil.
func RegistryOf(s *graph.Schema) *Registry {
	v, _ := s.Extension(ExtensionName)
	r, _ := v.(*Registry)
	return r
}

func (r *Registry) AddOperator(name, description string, resolveType ResolveType, resolve Resolve, opts OperatorOptions) error {
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateOperator, name)
	}
	op := &Operator{Name: name, Description: description, ResolveType: resolveType, Resolve: resolve, Options: opts}
	r.operators = append(r.operators, op)
	r.byName[name] = op
	return nil
}

func (r *Registry) Operator(name string) (*Operator, bool) {
	op, ok := r.byName[name]
	return op, ok
}

// OperatorsFor returns the operators applicable to a scalar in registration order.
func (r *Registry) OperatorsFor(scalar string) []*Operator {
	var out []*Operator
	for _, op := range r.operators {
		if op.allows(scalar) {
			out = append(out, op)
		}
	}
	return out
}

// BindScalarFilter records input as the filter type of scalar.
func (r *Registry) BindScalarFilter(scalar string, input *graph.InputObject) {
	r.scalarFilters[scalar] = input
}

func (r *Registry) ScalarFilter(scalar string) (*graph.InputObject, bool) {
	i, ok := r.scalarFilters[scalar]
	return i, ok
}

func (r *Registry) ObjectFilter(inputName string) (*ObjectFilter, bool) {
	f, ok := r.objectFilters[inputName]
	return f, ok
}

// ObjectFilterFor returns the row filter of an object type.
func (r *Registry) ObjectFilterFor(objectName string) (*ObjectFilter, bool) {
	f, ok := r.byObject[objectName]
	return f, ok
}

func (r *Registry) addObjectFilter(of *ObjectFilter) {
	r.objectFilters[of.Input.Name] = of
	r.byObject[of.Object.Name] = of
}
