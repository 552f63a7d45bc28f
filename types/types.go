// Package types holds the type graph value objects the checker constructs
// (spec.md §3 "Types"): Model, Union, Interface, Operation, Enum, Tuple,
// Array, Intrinsic, and interned literal types. Nothing here resolves
// names or walks syntax - that is the checker's job; this package only
// shapes the result.
//
// Per spec.md §9 "Cyclic types": the graph admits cycles (a model may
// reference itself transitively), so every composite type is built behind
// a pointer whose identity is assigned before its body is populated -
// callers that need to reference a type recursively (e.g. a template
// instantiation's own body referencing itself) get the pointer up front
// and fill fields in afterward.
package types

// Type is implemented by every constructed type; TypeKind tells which
// variant it is.
type Type interface {
	TypeKind() Kind
}

// Kind tags the type sum type.
type Kind int

const (
	KindModel Kind = iota
	KindModelProperty
	KindUnion
	KindUnionVariant
	KindInterface
	KindOperation
	KindEnum
	KindEnumMember
	KindTuple
	KindArray
	KindIntrinsic
	KindStringLiteral
	KindNumericLiteral
	KindBooleanLiteral
)

// Namespace is the checker's merged namespace type (spec.md §4.5
// "Namespace merging at the type level"): all declarations sharing a
// fully-qualified name contribute to one Namespace whose per-kind member
// maps hold the union of every declaration's members.
type Namespace struct {
	Name     string // fully-qualified, dot-joined
	Parent   *Namespace
	Models     map[string]*Model
	Interfaces map[string]*Interface
	Operations map[string]*Operation
	Unions     map[string]*Union
	Enums      map[string]*Enum
	Aliases    map[string]Type
	Namespaces map[string]*Namespace
	Decorators []*AppliedDecorator
}

func (n *Namespace) TypeKind() Kind { return -1 } // Namespace is not itself a referenceable Type value in CADL

// NewNamespace builds an empty namespace with initialized member maps.
func NewNamespace(name string, parent *Namespace) *Namespace {
	return &Namespace{
		Name: name, Parent: parent,
		Models: map[string]*Model{}, Interfaces: map[string]*Interface{},
		Operations: map[string]*Operation{}, Unions: map[string]*Union{},
		Enums: map[string]*Enum{}, Aliases: map[string]Type{}, Namespaces: map[string]*Namespace{},
	}
}

// AppliedDecorator records one decorator invocation's evaluated form,
// retained on the type it decorates for introspection/debugging (the
// side effects themselves land in the state registry).
type AppliedDecorator struct {
	Path string
	Args []Type
}

// Model is a record type: ordered properties, optional base model,
// optional template arguments, owning namespace, and decorators
// (spec.md §3 "Types").
type Model struct {
	Name              string
	Namespace         *Namespace
	Properties        []*ModelProperty // insertion order preserved
	BaseModel         *Model           // set by `extends`
	TemplateArguments []Type
	IsAnonymous       bool // true for intersection results and inline model expressions
	Decorators        []*AppliedDecorator
}

func (m *Model) TypeKind() Kind { return KindModel }

// Property looks up a property by name, returning nil if absent (does not
// walk BaseModel - callers that want inherited lookup should do so
// explicitly, since "is" already flattens properties onto the derived
// model per spec.md §4.5 composition rules).
func (m *Model) Property(name string) *ModelProperty {
	for _, p := range m.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// ModelProperty is one property of a Model (spec.md §3).
type ModelProperty struct {
	Name       string
	Type       Type
	Optional   bool
	Default    Type
	Owner      *Model
	// SourceProperty is the provenance back-link spec.md §3 invariant 7 and
	// §4.5 "Spread"/"is" require: when a property was copied via spread or
	// `is`, this points at the property it was copied from, so per-property
	// decoration of the original source is preserved.
	SourceProperty *ModelProperty
	Decorators     []*AppliedDecorator
}

func (p *ModelProperty) TypeKind() Kind { return KindModelProperty }

// Union is the checker-constructed union type, built either from `A | B`
// syntax or a `union` declaration.
type Union struct {
	Name      string // "" for an anonymous A|B union
	Namespace *Namespace
	Variants  []*UnionVariant
	Decorators []*AppliedDecorator
}

func (u *Union) TypeKind() Kind { return KindUnion }

// UnionVariant is one option of a Union.
type UnionVariant struct {
	Name  string // "" for an unnamed `A | B` option
	Type  Type
	Owner *Union
}

func (v *UnionVariant) TypeKind() Kind { return KindUnionVariant }

// Interface groups Operations and can mix in other interfaces
// (spec.md §3).
type Interface struct {
	Name       string
	Namespace  *Namespace
	Operations []*Operation
	MixedIn    []*Interface
	Decorators []*AppliedDecorator
}

func (i *Interface) TypeKind() Kind { return KindInterface }

// Operation belongs either to an Interface or directly to a Namespace.
type Operation struct {
	Name       string
	Namespace  *Namespace
	Interface  *Interface // nil if owned directly by a namespace
	Parameters *Model
	ReturnType Type
	Decorators []*AppliedDecorator
}

func (o *Operation) TypeKind() Kind { return KindOperation }

// Enum is a closed set of named members, each with an optional literal
// value.
type Enum struct {
	Name      string
	Namespace *Namespace
	Members   []*EnumMember
	Decorators []*AppliedDecorator
}

func (e *Enum) TypeKind() Kind { return KindEnum }

// EnumMember is one member of an Enum.
type EnumMember struct {
	Name  string
	Value Type // a literal type, or nil if the member has no explicit value
	Owner *Enum
}

func (m *EnumMember) TypeKind() Kind { return KindEnumMember }

// Tuple is a fixed-length, heterogeneous sequence type (`[A, B]`).
type Tuple struct {
	Elements []Type
}

func (t *Tuple) TypeKind() Kind { return KindTuple }

// Array is a homogeneous sequence type (`T[]`).
type Array struct {
	Element Type
}

func (a *Array) TypeKind() Kind { return KindArray }

// Intrinsic is a built-in primitive type such as "string", "int32",
// "bytes", "plainDate", or "null" (spec.md Glossary).
type Intrinsic struct {
	Name string
}

func (i *Intrinsic) TypeKind() Kind { return KindIntrinsic }

// Well-known intrinsic types, available to every file by name through
// LookupIntrinsic (spec.md §4.5 name resolution); they are not stored as
// members of the "Cadl" namespace.
var (
	IntrinsicString    = &Intrinsic{Name: "string"}
	IntrinsicBoolean   = &Intrinsic{Name: "boolean"}
	IntrinsicInt8      = &Intrinsic{Name: "int8"}
	IntrinsicInt16     = &Intrinsic{Name: "int16"}
	IntrinsicInt32     = &Intrinsic{Name: "int32"}
	IntrinsicInt64     = &Intrinsic{Name: "int64"}
	IntrinsicFloat32   = &Intrinsic{Name: "float32"}
	IntrinsicFloat64   = &Intrinsic{Name: "float64"}
	IntrinsicBytes     = &Intrinsic{Name: "bytes"}
	IntrinsicPlainDate = &Intrinsic{Name: "plainDate"}
	IntrinsicPlainTime = &Intrinsic{Name: "plainTime"}
	IntrinsicZonedDateTime = &Intrinsic{Name: "zonedDateTime"}
	IntrinsicDuration  = &Intrinsic{Name: "duration"}
	IntrinsicNull      = &Intrinsic{Name: "null"}
	IntrinsicUnknown   = &Intrinsic{Name: "unknown"}
	IntrinsicVoid      = &Intrinsic{Name: "void"}
)

// StringLiteral is an interned string literal type (spec.md §4.5 "Literal
// intern pool").
type StringLiteral struct{ Value string }

func (l *StringLiteral) TypeKind() Kind { return KindStringLiteral }

// NumericLiteral is an interned numeric literal type.
type NumericLiteral struct{ Value float64 }

func (l *NumericLiteral) TypeKind() Kind { return KindNumericLiteral }

// BooleanLiteral is an interned boolean literal type.
type BooleanLiteral struct{ Value bool }

func (l *BooleanLiteral) TypeKind() Kind { return KindBooleanLiteral }

// LiteralPool interns literal types by value, giving referential equality
// to two occurrences of the same literal payload (spec.md §4.5, §8
// "Literal interning" testable property).
type LiteralPool struct {
	strings map[string]*StringLiteral
	numbers map[float64]*NumericLiteral
	bools   [2]*BooleanLiteral
}

// NewLiteralPool creates an empty pool.
func NewLiteralPool() *LiteralPool {
	return &LiteralPool{strings: map[string]*StringLiteral{}, numbers: map[float64]*NumericLiteral{}}
}

// String returns the interned StringLiteral for v.
func (p *LiteralPool) String(v string) *StringLiteral {
	if t, ok := p.strings[v]; ok {
		return t
	}
	t := &StringLiteral{Value: v}
	p.strings[v] = t
	return t
}

// Number returns the interned NumericLiteral for v.
func (p *LiteralPool) Number(v float64) *NumericLiteral {
	if t, ok := p.numbers[v]; ok {
		return t
	}
	t := &NumericLiteral{Value: v}
	p.numbers[v] = t
	return t
}

// Boolean returns the interned BooleanLiteral for v.
func (p *LiteralPool) Boolean(v bool) *BooleanLiteral {
	idx := 0
	if v {
		idx = 1
	}
	if p.bools[idx] == nil {
		p.bools[idx] = &BooleanLiteral{Value: v}
	}
	return p.bools[idx]
}

var intrinsicsByName = map[string]*Intrinsic{}

func init() {
	for _, i := range Intrinsics {
		intrinsicsByName[i.Name] = i
	}
}

// LookupIntrinsic returns the built-in intrinsic named name, if any.
func LookupIntrinsic(name string) (*Intrinsic, bool) {
	i, ok := intrinsicsByName[name]
	return i, ok
}

// Intrinsics lists every built-in intrinsic; LookupIntrinsic indexes it by
// name.
var Intrinsics = []*Intrinsic{
	IntrinsicString, IntrinsicBoolean,
	IntrinsicInt8, IntrinsicInt16, IntrinsicInt32, IntrinsicInt64,
	IntrinsicFloat32, IntrinsicFloat64,
	IntrinsicBytes, IntrinsicPlainDate, IntrinsicPlainTime, IntrinsicZonedDateTime,
	IntrinsicDuration, IntrinsicNull, IntrinsicUnknown, IntrinsicVoid,
}
