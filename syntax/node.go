// Package syntax defines the CADL syntax tree produced by the parser and
// the recursive-descent parser that builds it (spec.md §4.2, §3 "Syntax
// tree"). Node shape follows spec.md §9 "Inheritance of node shape": there
// is no class hierarchy, only one tagged Kind plus a NodeBase mixin
// embedded into every variant, with visitor-style dispatch on Kind -
// grounded on the teacher's core/ast.Node interface (Position/TokenRange
// embedded in every AST variant) generalized from opal's command grammar
// to CADL's declaration grammar.
package syntax

import "github.com/cadl-lang/cadlc/diagnostic"

// Kind tags every node variant named in spec.md §3.
type Kind int

const (
	KindScript Kind = iota
	KindImportStatement
	KindNamespaceStatement
	KindUsingStatement
	KindModelStatement
	KindModelProperty
	KindModelSpreadProperty
	KindModelExpression
	KindInterfaceStatement
	KindOperationStatement
	KindUnionStatement
	KindUnionVariant
	KindEnumStatement
	KindEnumMember
	KindAliasStatement
	KindTemplateParameterDecl
	KindDecoratorExpression
	KindDirectiveExpression

	KindIdentifier
	KindStringLiteral
	KindNumericLiteral
	KindBooleanLiteral

	KindTypeReferenceExpression
	KindArrayExpression
	KindTupleExpression
	KindUnionExpression
	KindIntersectionExpression

	KindEmptyStatement
	KindInvalidStatement
)

// Flag is a bit in NodeBase.Flags, per spec.md §3.
type Flag int

const (
	FlagHasParseError Flag = 1 << iota
	FlagDescendantHasError
	FlagDescendantExamined
	FlagSynthetic
)

// Node is implemented by every syntax tree variant.
type Node interface {
	Base() *NodeBase
	Kind() Kind
}

// NodeBase is the mixin embedded in every node variant: kind tag, span,
// parent back-reference (set by the binder, not the parser), directive
// list, and status flags.
type NodeBase struct {
	NodeKind   Kind
	Pos        int
	End        int
	Parent     Node
	Directives []*DirectiveExpression
	Decorators []*DecoratorExpression
	Flags      Flag
}

func (b *NodeBase) Base() *NodeBase { return b }
func (b *NodeBase) Kind() Kind      { return b.NodeKind }

// Span returns the node's source span.
func (b *NodeBase) Span() diagnostic.Span { return diagnostic.Span{Pos: b.Pos, End: b.End} }

// HasFlag reports whether f is set.
func (b *NodeBase) HasFlag(f Flag) bool { return b.Flags&f != 0 }

// SetFlag sets f.
func (b *NodeBase) SetFlag(f Flag) { b.Flags |= f }

// ScopedNode is implemented by the declarations spec.md §4.3 calls
// "scoped kinds": Script, block Namespace, Model, Interface, Union, Alias.
// Each owns a `locals` symbol table; Script and Namespace additionally own
// `exports` (see ExportingNode).
type ScopedNode interface {
	Node
	Locals() *SymbolTable
}

// ExportingNode is implemented by Script and Namespace, which additionally
// own an `exports` table (spec.md §3).
type ExportingNode interface {
	ScopedNode
	Exports() *SymbolTable
}

// DeclarationNode is implemented by every node that introduces a named
// entity and therefore carries a symbol reference once bound (spec.md
// §3 invariant 1).
type DeclarationNode interface {
	Node
	DeclaredName() string
	SetSymbol(*Symbol)
	GetSymbol() *Symbol
}
