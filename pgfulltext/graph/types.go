// Package graph is the schema-building host: a mutable Build driven through
// ordered plugin passes, producing an immutable Schema of object, enum, input
// and scalar types.
package graph

import (
	"fmt"
	"sort"

	in "github.com/nonibytes/pgfulltext/pgfulltext/introspection"
	"github.com/nonibytes/pgfulltext/pgfulltext/querybuilder"
	sb "github.com/nonibytes/pgfulltext/pgfulltext/sqlbuilder"
)

// TypeRef names a type with optional list and non-null wrappers.
type TypeRef struct {
	Name        string
	NonNull     bool
	List        bool
	ItemNonNull bool
}

func Named(name string) TypeRef   { return TypeRef{Name: name} }
func NonNull(name string) TypeRef { return TypeRef{Name: name, NonNull: true} }
func ListOf(name string) TypeRef  { return TypeRef{Name: name, List: true, ItemNonNull: true} }

func (t TypeRef) String() string {
	s := t.Name
	if t.List {
		if t.ItemNonNull {
			s += "!"
		}
		s = "[" + s + "]"
	}
	if t.NonNull {
		s += "!"
	}
	return s
}

// Scalar is a leaf type. Serialize converts a database value for output;
// Parse validates caller input.
type Scalar struct {
	Name        string
	Description string
	Serialize   func(v any) any
	Parse       func(v any) (any, error)
}

// Row holds the raw values of one result row keyed by column alias.
type Row map[string]any

type FieldKind int

const (
	FieldColumn FieldKind = iota
	FieldComputed
	FieldRelation
	FieldRank
	FieldConnection
)

// Relation describes a forward (many-to-one) relation.
type Relation struct {
	Class        *in.Class
	ForeignClass *in.Class
	// Keys and ForeignKeys are paired column names.
	Keys        []string
	ForeignKeys []string
	ForeignType string
}

// Join renders the join condition between the local and foreign aliases.
func (r *Relation) Join(local, foreign sb.Fragment) sb.Fragment {
	parts := make([]sb.Fragment, len(r.Keys))
	for i := range r.Keys {
		parts[i] = sb.Query("%s = %s", sb.Column(foreign, r.ForeignKeys[i]), sb.Column(local, r.Keys[i]))
	}
	return sb.Join(parts, " AND ")
}

// Connection describes a root field listing the rows of a class.
type Connection struct {
	Class   *in.Class
	Object  string
	OrderBy string
}

type Field struct {
	Name        string
	Description string
	Type        TypeRef
	Kind        FieldKind
	Args        []*InputField

	// Select renders the field's value for a row alias; nil when the value
	// comes from elsewhere (a relation or a hidden selection).
	Select querybuilder.SelectFunc
	// Resolve produces the output value from the row; nil returns the row
	// value stored under the field name.
	Resolve func(row Row) (any, error)

	Attribute  *in.Attribute
	Procedure  *in.Procedure
	Relation   *Relation
	Connection *Connection
}

// Value resolves the field against row.
func (f *Field) Value(row Row) (any, error) {
	if f.Resolve != nil {
		return f.Resolve(row)
	}
	return row[f.Name], nil
}

func (f *Field) Arg(name string) (*InputField, bool) {
	for _, a := range f.Args {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

type Object struct {
	Name        string
	Description string
	Class       *in.Class
	fields      []*Field
	byName      map[string]*Field
}

func NewObject(name, description string, class *in.Class) *Object {
	return &Object{Name: name, Description: description, Class: class, byName: map[string]*Field{}}
}

// AddField appends f; field names are unique per object.
func (o *Object) AddField(f *Field) error {
	if _, dup := o.byName[f.Name]; dup {
		return fmt.Errorf("%w: field %s.%s", ErrDuplicate, o.Name, f.Name)
	}
	o.fields = append(o.fields, f)
	o.byName[f.Name] = f
	return nil
}

func (o *Object) Field(name string) (*Field, bool) {
	f, ok := o.byName[name]
	return f, ok
}

// Fields returns the fields in declaration order.
func (o *Object) Fields() []*Field { return append([]*Field(nil), o.fields...) }

// OrderContext is handed to order expressions when a query compiles its
// ORDER BY clause.
type OrderContext struct {
	Query *querybuilder.QueryBuilder
	Alias sb.Fragment
}

type OrderPart struct {
	Expr func(OrderContext) sb.Fragment
	Asc  bool
}

type EnumValue struct {
	Name        string
	Description string
	// Order is the ordering this value stands for; empty means natural order.
	Order []OrderPart
}

type Enum struct {
	Name        string
	Description string
	Class       *in.Class
	values      []*EnumValue
	byName      map[string]*EnumValue
}

func NewEnum(name, description string, class *in.Class) *Enum {
	return &Enum{Name: name, Description: description, Class: class, byName: map[string]*EnumValue{}}
}

func (e *Enum) AddValue(v *EnumValue) error {
	if _, dup := e.byName[v.Name]; dup {
		return fmt.Errorf("%w: enum value %s.%s", ErrDuplicate, e.Name, v.Name)
	}
	e.values = append(e.values, v)
	e.byName[v.Name] = v
	return nil
}

func (e *Enum) Value(name string) (*EnumValue, bool) {
	v, ok := e.byName[name]
	return v, ok
}

func (e *Enum) Values() []*EnumValue { return append([]*EnumValue(nil), e.values...) }

type InputField struct {
	Name        string
	Description string
	Type        TypeRef
	Default     string
}

type InputObject struct {
	Name        string
	Description string
	fields      []*InputField
	byName      map[string]*InputField
}

func NewInputObject(name, description string) *InputObject {
	return &InputObject{Name: name, Description: description, byName: map[string]*InputField{}}
}

func (o *InputObject) AddField(f *InputField) error {
	if _, dup := o.byName[f.Name]; dup {
		return fmt.Errorf("%w: input field %s.%s", ErrDuplicate, o.Name, f.Name)
	}
	o.fields = append(o.fields, f)
	o.byName[f.Name] = f
	return nil
}

func (o *InputObject) Field(name string) (*InputField, bool) {
	f, ok := o.byName[name]
	return f, ok
}

func (o *InputObject) Fields() []*InputField { return append([]*InputField(nil), o.fields...) }

// Schema is the frozen result of a Build.
type Schema struct {
	Query         *Object
	Introspection *in.Result

	objects    map[string]*Object
	enums      map[string]*Enum
	inputs     map[string]*InputObject
	scalars    map[string]*Scalar
	byClass    map[in.OID]*Object
	extensions map[string]any
}

func (s *Schema) Object(name string) (*Object, bool) {
	o, ok := s.objects[name]
	return o, ok
}

func (s *Schema) ObjectForClass(id in.OID) (*Object, bool) {
	o, ok := s.byClass[id]
	return o, ok
}

func (s *Schema) Enum(name string) (*Enum, bool) {
	e, ok := s.enums[name]
	return e, ok
}

func (s *Schema) Input(name string) (*InputObject, bool) {
	i, ok := s.inputs[name]
	return i, ok
}

func (s *Schema) Scalar(name string) (*Scalar, bool) {
	sc, ok := s.scalars[name]
	return sc, ok
}

// Table returns the qualified identifier of a class.
func (s *Schema) Table(c *in.Class) sb.Fragment {
	return Table(s.Introspection, c)
}

// Table returns the qualified identifier of a class.
func Table(r *in.Result, c *in.Class) sb.Fragment {
	if ns, ok := r.Namespace(c.NamespaceID); ok {
		return sb.Ident(ns.Name, c.Name)
	}
	return sb.Ident(c.Name)
}

// Extension returns state a plugin attached during the build.
func (s *Schema) Extension(name string) (any, bool) {
	v, ok := s.extensions[name]
	return v, ok
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
