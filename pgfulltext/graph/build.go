package graph

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nonibytes/pgfulltext/pgfulltext/inflection"
	in "github.com/nonibytes/pgfulltext/pgfulltext/introspection"
)

var (
	ErrDuplicate   = errors.New("graph: duplicate definition")
	ErrUnknownType = errors.New("graph: unknown type")
)

// Plugin is anything passed to NewBuilder. It takes part in a pass by
// implementing the matching hook interface.
type Plugin interface {
	Name() string
}

// BuildHook runs once, before any class is processed.
type BuildHook interface {
	Build(b *Build) error
}

// ObjectFieldsHook adds fields to the object type of a class.
type ObjectFieldsHook interface {
	ObjectFields(b *Build, c *ClassContext) error
}

// EnumValuesHook adds values to the order-by enum of a class.
type EnumValuesHook interface {
	EnumValues(b *Build, c *ClassContext) error
}

// FilterFieldsHook runs after objects and enums of every class are complete.
type FilterFieldsHook interface {
	FilterFields(b *Build, c *ClassContext) error
}

// FinalizeHook runs last; root fields are added here.
type FinalizeHook interface {
	Finalize(b *Build) error
}

// ClassContext identifies the class a per-class pass is working on.
type ClassContext struct {
	Class   *in.Class
	RowType *in.Type
	Object  *Object
	OrderBy *Enum
}

// Build is the mutable state shared by plugins while a schema is assembled.
type Build struct {
	Introspection *in.Result
	Inflection    *inflection.Inflector
	Log           logrus.FieldLogger

	schema      *Schema
	orderBy     map[in.OID]*Enum
	outputByOID map[in.OID]string
	inputByOID  map[in.OID]string
}

func newBuild(r *in.Result, infl *inflection.Inflector, log logrus.FieldLogger) *Build {
	return &Build{
		Introspection: r,
		Inflection:    infl,
		Log:           log,
		schema: &Schema{
			Introspection: r,
			objects:       map[string]*Object{},
			enums:         map[string]*Enum{},
			inputs:        map[string]*InputObject{},
			scalars:       map[string]*Scalar{},
			byClass:       map[in.OID]*Object{},
			extensions:    map[string]any{},
		},
		orderBy:     map[in.OID]*Enum{},
		outputByOID: map[in.OID]string{},
		inputByOID:  map[in.OID]string{},
	}
}

func (b *Build) AddScalar(s *Scalar) error {
	if _, dup := b.schema.scalars[s.Name]; dup {
		return fmt.Errorf("%w: scalar %s", ErrDuplicate, s.Name)
	}
	b.schema.scalars[s.Name] = s
	return nil
}

func (b *Build) Scalar(name string) (*Scalar, bool) { return b.schema.Scalar(name) }

// AddObject registers o; when o has a class it becomes the class's row type.
func (b *Build) AddObject(o *Object) error {
	if _, dup := b.schema.objects[o.Name]; dup {
		return fmt.Errorf("%w: object %s", ErrDuplicate, o.Name)
	}
	b.schema.objects[o.Name] = o
	if o.Class != nil {
		b.schema.byClass[o.Class.ID] = o
	}
	return nil
}

func (b *Build) Object(name string) (*Object, bool) { return b.schema.Object(name) }

func (b *Build) ObjectForClass(id in.OID) (*Object, bool) { return b.schema.ObjectForClass(id) }

// AddEnum registers e; when e has a class it becomes the class's order-by enum.
func (b *Build) AddEnum(e *Enum) error {
	if _, dup := b.schema.enums[e.Name]; dup {
		return fmt.Errorf("%w: enum %s", ErrDuplicate, e.Name)
	}
	b.schema.enums[e.Name] = e
	if e.Class != nil {
		b.orderBy[e.Class.ID] = e
	}
	return nil
}

func (b *Build) Enum(name string) (*Enum, bool) { return b.schema.Enum(name) }

func (b *Build) AddInput(i *InputObject) error {
	if _, dup := b.schema.inputs[i.Name]; dup {
		return fmt.Errorf("%w: input %s", ErrDuplicate, i.Name)
	}
	b.schema.inputs[i.Name] = i
	return nil
}

func (b *Build) Input(name string) (*InputObject, bool) { return b.schema.Input(name) }

// RegisterOutputTypeByOID maps a database type to an output scalar.
func (b *Build) RegisterOutputTypeByOID(oid in.OID, scalar string) { b.outputByOID[oid] = scalar }

// RegisterInputTypeByOID maps a database type to an input scalar.
func (b *Build) RegisterInputTypeByOID(oid in.OID, scalar string) { b.inputByOID[oid] = scalar }

func (b *Build) OutputTypeForOID(oid in.OID) (string, bool) {
	s, ok := b.outputByOID[oid]
	return s, ok
}

func (b *Build) InputTypeForOID(oid in.OID) (string, bool) {
	s, ok := b.inputByOID[oid]
	return s, ok
}

// SetExtension attaches plugin state that outlives the build.
func (b *Build) SetExtension(name string, v any) { b.schema.extensions[name] = v }

func (b *Build) Extension(name string) (any, bool) { return b.schema.Extension(name) }

// Query is the root object, created on first use.
func (b *Build) Query() *Object {
	if b.schema.Query == nil {
		b.schema.Query = NewObject("Query", "The root query type.", nil)
	}
	return b.schema.Query
}

// Builder runs plugins over an introspection result.
type Builder struct {
	plugins []Plugin
	log     logrus.FieldLogger
}

func NewBuilder(log logrus.FieldLogger, plugins ...Plugin) *Builder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Builder{plugins: plugins, log: log}
}

// Build runs the passes in order: build, then for every exposed class object
// fields and enum values, then filter fields for every class, then finalize.
func (bl *Builder) Build(r *in.Result, infl *inflection.Inflector) (*Schema, error) {
	if infl == nil {
		infl = inflection.New()
	}
	b := newBuild(r, infl, bl.log)

	for _, p := range bl.plugins {
		if h, ok := p.(BuildHook); ok {
			if err := h.Build(b); err != nil {
				return nil, fmt.Errorf("%s: build: %w", p.Name(), err)
			}
		}
	}

	classes := b.classContexts()
	for _, c := range classes {
		for _, p := range bl.plugins {
			if h, ok := p.(ObjectFieldsHook); ok {
				if err := h.ObjectFields(b, c); err != nil {
					return nil, fmt.Errorf("%s: fields of %s: %w", p.Name(), c.Object.Name, err)
				}
			}
		}
		if c.OrderBy == nil {
			continue
		}
		for _, p := range bl.plugins {
			if h, ok := p.(EnumValuesHook); ok {
				if err := h.EnumValues(b, c); err != nil {
					return nil, fmt.Errorf("%s: values of %s: %w", p.Name(), c.OrderBy.Name, err)
				}
			}
		}
	}
	for _, c := range classes {
		for _, p := range bl.plugins {
			if h, ok := p.(FilterFieldsHook); ok {
				if err := h.FilterFields(b, c); err != nil {
					return nil, fmt.Errorf("%s: filter of %s: %w", p.Name(), c.Object.Name, err)
				}
			}
		}
	}
	for _, p := range bl.plugins {
		if h, ok := p.(FinalizeHook); ok {
			if err := h.Finalize(b); err != nil {
				return nil, fmt.Errorf("%s: finalize: %w", p.Name(), err)
			}
		}
	}
	b.Query()
	return b.schema, nil
}

// classContexts lists classes that received an object type, in catalog order.
func (b *Build) classContexts() []*ClassContext {
	var out []*ClassContext
	for _, c := range b.Introspection.Classes {
		obj, ok := b.ObjectForClass(c.ID)
		if !ok {
			continue
		}
		ctx := &ClassContext{Class: c, Object: obj, OrderBy: b.orderBy[c.ID]}
		if t, ok := b.Introspection.RowTypeOf(c); ok {
			ctx.RowType = t
		}
		out = append(out, ctx)
	}
	return out
}
