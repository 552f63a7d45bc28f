package syntax

// Script is the root of a parsed CADL file (spec.md §3).
type Script struct {
	NodeBase
	Path       string
	Imports    []*ImportStatement
	Statements []Node // top-level Namespace/Using/Model/... declarations
	locals     *SymbolTable
	exports    *SymbolTable

	// Printable records whether the tree is syntactically clean enough to
	// be re-printed byte-for-byte (spec.md §4.2); cleared whenever a
	// punctuation token had to be synthesized.
	Printable bool
}

func (s *Script) Locals() *SymbolTable  { return s.locals }
func (s *Script) Exports() *SymbolTable { return s.exports }

// ImportStatement is `import "path";`.
type ImportStatement struct {
	NodeBase
	Path string
}

// NamespaceStatement is `namespace A.B.C { ... }` or the blockless form
// `namespace A.B.C;`. Dotted forms are desugared by the parser into nested
// NamespaceStatement nodes sharing Pos/End (spec.md §4.2).
type NamespaceStatement struct {
	NodeBase
	Name       *Identifier
	Body       []Node // for a blockless namespace, the rest of the file's statements
	Blockless  bool
	locals     *SymbolTable
	exports    *SymbolTable
	symbol     *Symbol
}

func (n *NamespaceStatement) Locals() *SymbolTable  { return n.locals }
func (n *NamespaceStatement) Exports() *SymbolTable { return n.exports }
func (n *NamespaceStatement) DeclaredName() string  { return n.Name.Name }
func (n *NamespaceStatement) SetSymbol(s *Symbol)    { n.symbol = s }
func (n *NamespaceStatement) GetSymbol() *Symbol     { return n.symbol }

// SetExports replaces the node's exports table object, used by the binder
// to splice in a shared, previously-registered table when two namespace
// declarations with the same qualified name merge (spec.md §4.3).
func (n *NamespaceStatement) SetExports(t *SymbolTable) { n.exports = t }

// UsingStatement is `using A.B.C;`.
type UsingStatement struct {
	NodeBase
	Path *TypeReferenceExpression
}

// ModelStatement is `model A<T...> extends B is C { ... }`.
type ModelStatement struct {
	NodeBase
	Name       *Identifier
	TemplateParameters []*TemplateParameterDecl
	Extends    *TypeReferenceExpression
	Is         *TypeReferenceExpression
	Properties []Node // *ModelProperty or *ModelSpreadProperty
	locals     *SymbolTable
	symbol     *Symbol
}

func (m *ModelStatement) Locals() *SymbolTable { return m.locals }
func (m *ModelStatement) DeclaredName() string { return m.Name.Name }
func (m *ModelStatement) SetSymbol(s *Symbol)   { m.symbol = s }
func (m *ModelStatement) GetSymbol() *Symbol    { return m.symbol }

// ModelExpression is an anonymous inline model, e.g. an operation's
// parameter list `op create(): { x: string }` or the implicit params model
// of every operation.
type ModelExpression struct {
	NodeBase
	Properties []Node
	locals     *SymbolTable
}

func (m *ModelExpression) Locals() *SymbolTable { return m.locals }

// ModelProperty is `name?: Type = default;` inside a model or interface
// operation parameter list.
type ModelProperty struct {
	NodeBase
	Name     string
	Optional bool
	Value    Node // type expression
	Default  Node // expression, nil if absent
}

// ModelSpreadProperty is `...M;` inside a model body (spec.md "Spread").
type ModelSpreadProperty struct {
	NodeBase
	Target *TypeReferenceExpression
}

// InterfaceStatement is `interface A<T...> extends B, C { op foo(): bar; }`.
type InterfaceStatement struct {
	NodeBase
	Name               *Identifier
	TemplateParameters []*TemplateParameterDecl
	Mixes              []*TypeReferenceExpression
	Operations         []*OperationStatement
	locals             *SymbolTable
	symbol             *Symbol
}

func (i *InterfaceStatement) Locals() *SymbolTable { return i.locals }
func (i *InterfaceStatement) DeclaredName() string { return i.Name.Name }
func (i *InterfaceStatement) SetSymbol(s *Symbol)   { i.symbol = s }
func (i *InterfaceStatement) GetSymbol() *Symbol    { return i.symbol }

// OperationStatement is `op name(params): returnType;`. Per spec.md §4.3,
// an operation declares into its enclosing table unless its immediate
// parent is an Interface, in which case it lives in the interface's member
// list instead of the containing namespace.
type OperationStatement struct {
	NodeBase
	Name       *Identifier
	Parameters *ModelExpression
	ReturnType Node
	symbol     *Symbol
}

func (o *OperationStatement) DeclaredName() string { return o.Name.Name }
func (o *OperationStatement) SetSymbol(s *Symbol)   { o.symbol = s }
func (o *OperationStatement) GetSymbol() *Symbol    { return o.symbol }

// UnionStatement is `union A { variant1: Type1, variant2: Type2 }`.
type UnionStatement struct {
	NodeBase
	Name               *Identifier
	TemplateParameters []*TemplateParameterDecl
	Variants           []*UnionVariant
	locals             *SymbolTable
	symbol             *Symbol
}

func (u *UnionStatement) Locals() *SymbolTable { return u.locals }
func (u *UnionStatement) DeclaredName() string { return u.Name.Name }
func (u *UnionStatement) SetSymbol(s *Symbol)   { u.symbol = s }
func (u *UnionStatement) GetSymbol() *Symbol    { return u.symbol }

// UnionVariant is one `name: Type` entry of a union statement.
type UnionVariant struct {
	NodeBase
	Name  string
	Value Node
}

// EnumStatement is `enum A { member1, member2: "value" }`.
type EnumStatement struct {
	NodeBase
	Name    *Identifier
	Members []*EnumMember
	symbol  *Symbol
}

func (e *EnumStatement) DeclaredName() string { return e.Name.Name }
func (e *EnumStatement) SetSymbol(s *Symbol)   { e.symbol = s }
func (e *EnumStatement) GetSymbol() *Symbol    { return e.symbol }

// EnumMember is one member of an EnumStatement, with an optional literal
// value.
type EnumMember struct {
	NodeBase
	Name  string
	Value Node // literal expression, nil if absent
}

// AliasStatement is `alias A<T...> = SomeTypeExpression;`.
type AliasStatement struct {
	NodeBase
	Name               *Identifier
	TemplateParameters []*TemplateParameterDecl
	Value              Node
	locals             *SymbolTable
	symbol             *Symbol
}

func (a *AliasStatement) Locals() *SymbolTable { return a.locals }
func (a *AliasStatement) DeclaredName() string { return a.Name.Name }
func (a *AliasStatement) SetSymbol(s *Symbol)   { a.symbol = s }
func (a *AliasStatement) GetSymbol() *Symbol    { return a.symbol }

// TemplateParameterDecl is one `T` or `T extends Constraint = Default` in
// a template parameter list. Declares into the enclosing declaration's
// `locals` (spec.md §4.3).
type TemplateParameterDecl struct {
	NodeBase
	Name       *Identifier
	Constraint Node
	Default    Node
	symbol     *Symbol
}

func (t *TemplateParameterDecl) DeclaredName() string { return t.Name.Name }
func (t *TemplateParameterDecl) SetSymbol(s *Symbol)   { t.symbol = s }
func (t *TemplateParameterDecl) GetSymbol() *Symbol    { return t.symbol }

// DecoratorExpression is `@name(args...)` attached to a declaration.
type DecoratorExpression struct {
	NodeBase
	Target    *TypeReferenceExpression // dotted decorator name, e.g. @a.b.c
	Arguments []Node
}

// DirectiveExpression is `#name args` attached to a declaration, consumed
// by the compiler itself (spec.md §4.2, currently only "suppress").
type DirectiveExpression struct {
	NodeBase
	Name    string
	Code    string // for #suppress
	Message string // free-text remainder, newline-terminated
}

// Identifier is a bare name reference.
type Identifier struct {
	NodeBase
	Name string
}

// StringLiteral is an interned string literal value (spec.md §3 invariant 5).
type StringLiteral struct {
	NodeBase
	Value string
}

// NumericLiteral is an interned numeric literal value.
type NumericLiteral struct {
	NodeBase
	Text  string
	Value float64
}

// BooleanLiteral is `true` or `false`.
type BooleanLiteral struct {
	NodeBase
	Value bool
}

// TypeReferenceExpression is `A.B.C<Arg1, Arg2>`.
type TypeReferenceExpression struct {
	NodeBase
	Parts     []string // dotted path segments
	Arguments []Node   // template arguments, nil if none
}

// ArrayExpression is `T[]`.
type ArrayExpression struct {
	NodeBase
	Element Node
}

// TupleExpression is `[T1, T2]`.
type TupleExpression struct {
	NodeBase
	Elements []Node
}

// UnionExpression is `A | B | C`.
type UnionExpression struct {
	NodeBase
	Options []Node
}

// IntersectionExpression is `A & B & C`.
type IntersectionExpression struct {
	NodeBase
	Operands []Node
}

// EmptyStatement is a bare `;` with no content.
type EmptyStatement struct {
	NodeBase
}

// InvalidStatement is a synthetic placeholder the parser emits at a
// position it could not recover a real statement from; always carries
// FlagHasParseError.
type InvalidStatement struct {
	NodeBase
}
