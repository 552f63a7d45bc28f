// Package binder implements the single pass described in spec.md §4.3: it
// walks a parsed syntax tree, assigns parent links, computes lexical scope,
// and populates the symbol tables the checker later consults for name
// resolution.
//
// Grounded on the three-pass register-then-check idiom of
// openllb/hlb's checker.SemanticPass (build scopes and memoize semantic
// data in one walk, defer type-level work to a later stage) generalized
// from HLB's function/module scoping to CADL's namespace/model/interface
// scoping.
package binder

import (
	"strings"

	"github.com/cadl-lang/cadlc/internal/invariant"
	"github.com/cadl-lang/cadlc/syntax"
)

// Registry holds the live, shared `exports` table for every namespace name
// encountered across every file bound so far (spec.md §4.3 "Namespace
// merging"). A program-wide Registry must be reused across every file of a
// compilation so namespace merging actually shares table identity.
type Registry struct {
	exports map[string]*syntax.SymbolTable
	symbols map[string]*syntax.Symbol
}

// NewRegistry creates an empty, program-wide namespace registry.
func NewRegistry() *Registry {
	return &Registry{
		exports: make(map[string]*syntax.SymbolTable),
		symbols: make(map[string]*syntax.Symbol),
	}
}

// exportsFor returns the shared exports table for the fully-qualified
// namespace name qualified, creating it (and a namespace symbol aliasing
// to it) on first use.
func (r *Registry) exportsFor(qualified string) (*syntax.SymbolTable, *syntax.Symbol, bool) {
	if t, ok := r.exports[qualified]; ok {
		return t, r.symbols[qualified], true
	}
	t := syntax.NewSymbolTable()
	sym := &syntax.Symbol{Name: qualified, Flags: syntax.SymbolType}
	r.exports[qualified] = t
	r.symbols[qualified] = sym
	return t, sym, false
}

// Lookup returns the shared exports table for a fully-qualified namespace
// name, for checker name resolution against namespaces bound in a
// different file of the same program.
func (r *Registry) Lookup(qualified string) (*syntax.SymbolTable, bool) {
	t, ok := r.exports[qualified]
	return t, ok
}

// DeclareExternal declares sym under name into the exports table of the
// namespace named by the dotted string qualified, synthesizing every
// missing segment along the way (spec.md §4.3 "functions whose key begins
// with $ are decorator handles ... bound into the namespace indicated by
// the module's namespace export ... missing namespace segments are
// synthesized"). Each segment is chained into its parent's exports table
// exactly as bindNamespace chains a real `namespace A.B {}` declaration,
// so an external module's namespace merges with one of the same name
// declared in CADL source either before or after it is loaded.
func (r *Registry) DeclareExternal(qualified, name string, sym *syntax.Symbol) {
	if qualified == "" {
		return
	}
	parts := strings.Split(qualified, ".")
	var parentExports *syntax.SymbolTable
	acc := ""
	for _, part := range parts {
		if acc == "" {
			acc = part
		} else {
			acc = acc + "." + part
		}
		exports, nsSym, _ := r.exportsFor(acc)
		if parentExports != nil {
			parentExports.Declare(part, nsSym)
		}
		parentExports = exports
	}
	parentExports.Declare(name, sym)
}

// Tables returns every namespace's shared exports table, keyed by
// fully-qualified name, for callers (the program loader's duplicate-symbol
// pass) that need to walk every merged namespace's Duplicates set rather
// than look one up by name.
func (r *Registry) Tables() map[string]*syntax.SymbolTable {
	out := make(map[string]*syntax.SymbolTable, len(r.exports))
	for k, v := range r.exports {
		out[k] = v
	}
	return out
}

// binder carries the registry and current file through one tree walk.
type binder struct {
	reg *Registry
}

// Bind performs the binder pass over script, using reg as the program-wide
// namespace registry (pass binder.NewRegistry() for a standalone file).
func Bind(script *syntax.Script, reg *Registry) {
	invariant.Precondition(script != nil, "Bind requires a parsed script")
	invariant.Precondition(reg != nil, "Bind requires a non-nil Registry")
	b := &binder{reg: reg}
	b.bindChildren(script, nil, script.Locals(), script.Exports(), "")
}

// declare inserts sym under name into table, and additionally aliases it
// into exports when exports is a distinct table from locals (script/
// namespace declarations are exported by default per spec.md §4.3 - there
// is no private top-level declaration in CADL, only `using` controls what
// a *consumer* sees).
func declare(locals, exports *syntax.SymbolTable, name string, sym *syntax.Symbol) {
	locals.Declare(name, sym)
	if exports != nil && exports != locals {
		exports.Declare(name, sym)
	}
}

// bindChildren walks n's statement/member list, linking parents and
// declaring symbols into the given locals/exports tables. qualifier is the
// dotted namespace path enclosing this scope ("" at the script root),
// used to build fully-qualified namespace names for the Registry.
func (b *binder) bindChildren(owner syntax.Node, parent syntax.Node, locals, exports *syntax.SymbolTable, qualifier string) {
	switch n := owner.(type) {
	case *syntax.Script:
		for _, imp := range n.Imports {
			b.link(imp, n)
		}
		for _, stmt := range n.Statements {
			b.bindStatement(stmt, n, locals, exports, qualifier)
		}
	case *syntax.NamespaceStatement:
		for _, stmt := range n.Body {
			b.bindStatement(stmt, n, locals, exports, qualifier)
		}
	case *syntax.ModelStatement:
		b.bindTemplateParams(n.TemplateParameters, n, locals)
		if n.Extends != nil {
			b.link(n.Extends, n)
		}
		if n.Is != nil {
			b.link(n.Is, n)
		}
		for _, p := range n.Properties {
			b.bindModelMember(p, n, locals)
		}
	case *syntax.ModelExpression:
		for _, p := range n.Properties {
			b.bindModelMember(p, n, locals)
		}
	case *syntax.InterfaceStatement:
		b.bindTemplateParams(n.TemplateParameters, n, locals)
		for _, m := range n.Mixes {
			b.link(m, n)
		}
		for _, op := range n.Operations {
			b.link(op, n)
			sym := &syntax.Symbol{Name: op.Name.Name, Flags: syntax.SymbolType, Decl: op}
			op.SetSymbol(sym)
			// Operations under an Interface live in its member list only
			// (spec.md §4.3) - not declared into any symbol table.
			b.bindOperationBody(op)
		}
	case *syntax.UnionStatement:
		b.bindTemplateParams(n.TemplateParameters, n, locals)
		for _, v := range n.Variants {
			b.link(v, n)
			if v.Value != nil {
				b.link(v.Value, v)
			}
		}
	case *syntax.AliasStatement:
		b.bindTemplateParams(n.TemplateParameters, n, locals)
		if n.Value != nil {
			b.link(n.Value, n)
		}
	}
}

// bindStatement dispatches one top-level-or-namespace-body statement,
// declaring it into locals/exports as appropriate and recursing into its
// own scope.
func (b *binder) bindStatement(stmt syntax.Node, parent syntax.Node, locals, exports *syntax.SymbolTable, qualifier string) {
	b.link(stmt, parent)

	switch n := stmt.(type) {
	case *syntax.NamespaceStatement:
		b.bindNamespace(n, parent, locals, exports, qualifier)

	case *syntax.UsingStatement:
		// `using` does not declare a name; the checker resolves it lazily
		// against the target's exports (spec.md §4.5).
		b.link(n.Path, n)

	case *syntax.ModelStatement:
		sym := &syntax.Symbol{Name: n.Name.Name, Flags: syntax.SymbolType, Decl: n}
		n.SetSymbol(sym)
		declare(locals, exports, n.Name.Name, sym)
		b.bindChildren(n, parent, n.Locals(), nil, qualifier)

	case *syntax.InterfaceStatement:
		sym := &syntax.Symbol{Name: n.Name.Name, Flags: syntax.SymbolType, Decl: n}
		n.SetSymbol(sym)
		declare(locals, exports, n.Name.Name, sym)
		b.bindChildren(n, parent, n.Locals(), nil, qualifier)

	case *syntax.OperationStatement:
		sym := &syntax.Symbol{Name: n.Name.Name, Flags: syntax.SymbolType, Decl: n}
		n.SetSymbol(sym)
		declare(locals, exports, n.Name.Name, sym)
		b.bindOperationBody(n)

	case *syntax.UnionStatement:
		sym := &syntax.Symbol{Name: n.Name.Name, Flags: syntax.SymbolType, Decl: n}
		n.SetSymbol(sym)
		declare(locals, exports, n.Name.Name, sym)
		b.bindChildren(n, parent, n.Locals(), nil, qualifier)

	case *syntax.EnumStatement:
		sym := &syntax.Symbol{Name: n.Name.Name, Flags: syntax.SymbolType, Decl: n}
		n.SetSymbol(sym)
		declare(locals, exports, n.Name.Name, sym)
		for _, m := range n.Members {
			b.link(m, n)
			if m.Value != nil {
				b.link(m.Value, m)
			}
		}

	case *syntax.AliasStatement:
		sym := &syntax.Symbol{Name: n.Name.Name, Flags: syntax.SymbolType, Decl: n}
		n.SetSymbol(sym)
		declare(locals, exports, n.Name.Name, sym)
		b.bindChildren(n, parent, n.Locals(), nil, qualifier)

	case *syntax.EmptyStatement, *syntax.InvalidStatement:
		// nothing to bind

	default:
		invariant.Invariant(false, "binder: unhandled statement kind %T", stmt)
	}
}

// bindNamespace implements spec.md §4.3 "Namespace merging": a namespace
// node whose qualified name already exists in the registry aliases its
// symbol to the existing one and shares the existing `exports` table
// object identity; `locals` is always the node's own, never merged.
func (b *binder) bindNamespace(n *syntax.NamespaceStatement, parent syntax.Node, locals, exports *syntax.SymbolTable, qualifier string) {
	qualified := n.Name.Name
	if qualifier != "" {
		qualified = qualifier + "." + n.Name.Name
	}

	shared, sym, existed := b.reg.exportsFor(qualified)
	n.SetSymbol(sym)
	declare(locals, exports, n.Name.Name, sym)
	if !existed {
		sym.Decl = n
	}

	n.SetExports(shared)

	// A blockless namespace's Body holds the rest of the file (the parser
	// collects it there), so both forms bind their members the same way.
	b.bindChildren(n, parent, n.Locals(), n.Exports(), qualified)
}

// bindModelMember declares one ModelProperty/ModelSpreadProperty. Spread
// properties don't declare a name themselves - the checker expands them
// once the target model's property list is known (spec.md §4.5 "Spread").
func (b *binder) bindModelMember(member syntax.Node, parent syntax.Node, locals *syntax.SymbolTable) {
	b.link(member, parent)
	switch p := member.(type) {
	case *syntax.ModelProperty:
		if p.Value != nil {
			b.link(p.Value, p)
		}
		if p.Default != nil {
			b.link(p.Default, p)
		}
	case *syntax.ModelSpreadProperty:
		if p.Target != nil {
			b.link(p.Target, p)
		}
	}
}

// bindOperationBody links an operation's parameter list and return type,
// declaring template-free locals (operations have no template parameters
// of their own in this grammar, only their owning Interface does).
func (b *binder) bindOperationBody(op *syntax.OperationStatement) {
	if op.Parameters != nil {
		b.link(op.Parameters, op)
		b.bindChildren(op.Parameters, op, op.Parameters.Locals(), nil, "")
	}
	if op.ReturnType != nil {
		b.link(op.ReturnType, op)
	}
}

// bindTemplateParams declares each template parameter into owner's locals
// (spec.md §4.3 "Template parameters declare into the enclosing
// declaration's locals").
func (b *binder) bindTemplateParams(params []*syntax.TemplateParameterDecl, owner syntax.Node, locals *syntax.SymbolTable) {
	for _, tp := range params {
		b.link(tp, owner)
		sym := &syntax.Symbol{Name: tp.Name.Name, Flags: syntax.SymbolLocal, Decl: tp}
		tp.SetSymbol(sym)
		locals.Declare(tp.Name.Name, sym)
		if tp.Constraint != nil {
			b.link(tp.Constraint, tp)
		}
		if tp.Default != nil {
			b.link(tp.Default, tp)
		}
	}
}

// link sets child's parent back-reference. No-op for a nil child, which
// happens at call sites that guard optional fields loosely.
func (b *binder) link(child, parent syntax.Node) {
	if child == nil {
		return
	}
	child.Base().Parent = parent
}

