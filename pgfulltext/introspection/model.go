// Package introspection models the subset of the PostgreSQL catalog the schema
// builder consumes: namespaces, classes, attributes, types, procedures and
// constraints. A Result is read-only once indexed.
package introspection

// OID is a PostgreSQL object identifier.
type OID = uint32

// Built-in type oids the schema builder maps to scalars.
const (
	BoolOID        OID = 16
	Int8OID        OID = 20
	Int2OID        OID = 21
	Int4OID        OID = 23
	TextOID        OID = 25
	JSONOID        OID = 114
	Float4OID      OID = 700
	Float8OID      OID = 701
	VarcharOID     OID = 1043
	DateOID        OID = 1082
	TimestampOID   OID = 1114
	TimestamptzOID OID = 1184
	NumericOID     OID = 1700
	UUIDOID        OID = 2950
	TSVectorOID    OID = 3614
	JSONBOID       OID = 3802
)

// Class kinds (pg_class.relkind) exposed as row types.
const (
	KindTable       = "r"
	KindView        = "v"
	KindMatView     = "m"
	KindForeign     = "f"
	KindPartitioned = "p"
)

// Tags are smart tags parsed from an entity comment.
type Tags map[string][]string

type Namespace struct {
	ID          OID    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Tags        Tags   `json:"tags,omitempty"`
}

type Class struct {
	ID          OID    `json:"id"`
	Name        string `json:"name"`
	NamespaceID OID    `json:"namespaceId"`
	Kind        string `json:"kind"`
	TypeID      OID    `json:"typeId"`
	Description string `json:"description,omitempty"`
	Tags        Tags   `json:"tags,omitempty"`
}

// IsSelectable reports whether rows of the class can be read.
func (c *Class) IsSelectable() bool {
	switch c.Kind {
	case KindTable, KindView, KindMatView, KindForeign, KindPartitioned:
		return true
	default:
		return false
	}
}

type Attribute struct {
	ClassID     OID    `json:"classId"`
	Num         int    `json:"num"`
	Name        string `json:"name"`
	TypeID      OID    `json:"typeId"`
	NotNull     bool   `json:"notNull"`
	Description string `json:"description,omitempty"`
	Tags        Tags   `json:"tags,omitempty"`
}

type Type struct {
	ID          OID    `json:"id"`
	Name        string `json:"name"`
	NamespaceID OID    `json:"namespaceId"`
	// Type is pg_type.typtype: 'b' base, 'c' composite, 'd' domain, 'e' enum.
	Type    string `json:"type"`
	ClassID OID    `json:"classId,omitempty"`
}

type Procedure struct {
	ID               OID      `json:"id"`
	Name             string   `json:"name"`
	NamespaceID      OID      `json:"namespaceId"`
	IsStable         bool     `json:"isStable"`
	ArgTypeIDs       []OID    `json:"argTypeIds"`
	ArgNames         []string `json:"argNames,omitempty"`
	ArgDefaultsCount int      `json:"argDefaultsCount"`
	ReturnTypeID     OID      `json:"returnTypeId"`
	ReturnsSet       bool     `json:"returnsSet"`
	Description      string   `json:"description,omitempty"`
	Tags             Tags     `json:"tags,omitempty"`
}

// RequiredArgs is the number of arguments without a default.
func (p *Procedure) RequiredArgs() int {
	return len(p.ArgTypeIDs) - p.ArgDefaultsCount
}

// Constraint types (pg_constraint.contype).
const (
	ConstraintPrimaryKey = "p"
	ConstraintForeignKey = "f"
	ConstraintUnique     = "u"
)

type Constraint struct {
	Name               string `json:"name"`
	Type               string `json:"type"`
	ClassID            OID    `json:"classId"`
	ForeignClassID     OID    `json:"foreignClassId,omitempty"`
	KeyAttrNums        []int  `json:"keyAttrNums"`
	ForeignKeyAttrNums []int  `json:"foreignKeyAttrNums,omitempty"`
	Tags               Tags   `json:"tags,omitempty"`
}

// Result is a catalog snapshot. Call Index before using the lookup methods.
type Result struct {
	Namespaces  []*Namespace  `json:"namespaces"`
	Classes     []*Class      `json:"classes"`
	Attributes  []*Attribute  `json:"attributes"`
	Types       []*Type       `json:"types"`
	Procedures  []*Procedure  `json:"procedures"`
	Constraints []*Constraint `json:"constraints"`

	namespaceByID map[OID]*Namespace
	classByID     map[OID]*Class
	typeByID      map[OID]*Type
	attrsByClass  map[OID][]*Attribute
}

// Index builds the lookup tables. It is idempotent.
func (r *Result) Index() *Result {
	r.namespaceByID = make(map[OID]*Namespace, len(r.Namespaces))
	for _, n := range r.Namespaces {
		r.namespaceByID[n.ID] = n
	}
	r.classByID = make(map[OID]*Class, len(r.Classes))
	for _, c := range r.Classes {
		r.classByID[c.ID] = c
	}
	r.typeByID = make(map[OID]*Type, len(r.Types))
	for _, t := range r.Types {
		r.typeByID[t.ID] = t
	}
	r.attrsByClass = make(map[OID][]*Attribute)
	for _, a := range r.Attributes {
		r.attrsByClass[a.ClassID] = append(r.attrsByClass[a.ClassID], a)
	}
	return r
}

func (r *Result) Namespace(id OID) (*Namespace, bool) {
	n, ok := r.namespaceByID[id]
	return n, ok
}

func (r *Result) Class(id OID) (*Class, bool) {
	c, ok := r.classByID[id]
	return c, ok
}

func (r *Result) Type(id OID) (*Type, bool) {
	t, ok := r.typeByID[id]
	return t, ok
}

// AttributesOf returns the class attributes in attribute-number order.
func (r *Result) AttributesOf(classID OID) []*Attribute {
	return r.attrsByClass[classID]
}

// Attribute returns the attribute with the given number.
func (r *Result) Attribute(classID OID, num int) (*Attribute, bool) {
	for _, a := range r.attrsByClass[classID] {
		if a.Num == num {
			return a, true
		}
	}
	return nil, false
}

// RowTypeOf resolves the composite type describing rows of c.
func (r *Result) RowTypeOf(c *Class) (*Type, bool) {
	for _, t := range r.Types {
		if t.Type == "c" && t.NamespaceID == c.NamespaceID && t.ClassID == c.ID {
			return t, true
		}
	}
	return nil, false
}

// ConstraintsOf returns constraints of the given type declared on classID.
func (r *Result) ConstraintsOf(classID OID, typ string) []*Constraint {
	var out []*Constraint
	for _, con := range r.Constraints {
		if con.ClassID == classID && con.Type == typ {
			out = append(out, con)
		}
	}
	return out
}

// PrimaryKey returns the primary key constraint of classID, if any.
func (r *Result) PrimaryKey(classID OID) (*Constraint, bool) {
	pks := r.ConstraintsOf(classID, ConstraintPrimaryKey)
	if len(pks) == 0 {
		return nil, false
	}
	return pks[0], true
}

// ProceduresIn returns the procedures of a namespace in catalog order.
func (r *Result) ProceduresIn(namespaceID OID) []*Procedure {
	var out []*Procedure
	for _, p := range r.Procedures {
		if p.NamespaceID == namespaceID {
			out = append(out, p)
		}
	}
	return out
}
