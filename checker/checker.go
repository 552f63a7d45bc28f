// Package checker implements spec.md §4.5: name resolution, type
// construction, template instantiation, namespace merging at the type
// level, `using` resolution, composition, decorator invocation, and
// literal-type interning. It consumes a bound syntax tree (one or more
// files sharing a single binder.Registry) and produces a types.Namespace
// graph rooted at the global namespace.
//
// Grounded on the same three-pass idiom as package binder
// (openllb/hlb's checker.SemanticPass): scopes and declarations are
// already known from the binder pass, so this package's single walk only
// has to resolve references and construct types, generalized to CADL's
// template/composition model which HLB's function-call language has no
// analogue for.
package checker

import (
	"github.com/cadl-lang/cadlc/binder"
	"github.com/cadl-lang/cadlc/diagnostic"
	"github.com/cadl-lang/cadlc/state"
	"github.com/cadl-lang/cadlc/stdlib"
	"github.com/cadl-lang/cadlc/syntax"
	"github.com/cadl-lang/cadlc/types"
)

// Checker holds the state one Check pass threads through: the diagnostic
// sink, the literal intern pool, the state registry external decorators
// write into, and the memoization tables template instantiation needs.
type Checker struct {
	bag      *diagnostic.Bag
	literals *types.LiteralPool
	state    *state.Registry
	reg      *binder.Registry

	global *types.Namespace
	nsByQualified map[string]*types.Namespace

	// instCache memoizes instantiation on (declaration, arg identity
	// tuple) per spec.md §4.5 "Template instantiation".
	instCache  map[string]types.Type
	inProgress map[string]bool
}

// New creates a Checker. reg must be the same binder.Registry every
// script in the program was bound against, so namespace exports resolve
// correctly across files.
func New(bag *diagnostic.Bag, st *state.Registry, reg *binder.Registry) *Checker {
	global := types.NewNamespace("", nil)
	installIntrinsics(global)
	return &Checker{
		bag: bag, literals: types.NewLiteralPool(), state: st, reg: reg,
		global: global, nsByQualified: map[string]*types.Namespace{"": global},
		instCache: map[string]types.Type{}, inProgress: map[string]bool{},
	}
}

func installIntrinsics(global *types.Namespace) {
	cadl := types.NewNamespace(stdlib.CadlNamespace, global)
	global.Namespaces[stdlib.CadlNamespace] = cadl
	// Intrinsics are not stored in the Cadl namespace: resolveTypeReference
	// looks single-segment names up with types.LookupIntrinsic - they are
	// not modeled with any of the Model/Union member shapes.
}

// File pairs a parsed, bound Script with the SourceFile it was parsed
// from, so the checker can anchor diagnostics in real line/column
// positions.
type File struct {
	Source *diagnostic.SourceFile
	Script *syntax.Script
}

// Check runs the checker over every top-level statement of every file,
// in the order given (spec.md §4.5 "processes declarations in source
// order within a file, files in import-discovery order"; the caller is
// responsible for passing files in that order). It returns the global
// namespace's constructed type graph.
func (c *Checker) Check(files []File) *types.Namespace {
	for _, f := range files {
		c.registerSuppressions(f.Script)
	}
	for _, f := range files {
		sc := newFileScope(f)
		for _, stmt := range f.Script.Statements {
			c.checkTopLevel(stmt, c.global, sc)
		}
	}
	return c.global
}

// fileScope is the per-file context name resolution needs: the chain of
// enclosing lexical scopes (innermost first) plus the file's collapsed
// `using` set (spec.md §4.5 "Name resolution").
type fileScope struct {
	script *syntax.Script
	source *diagnostic.SourceFile
	usings []*syntax.SymbolTable // resolved lazily as `using` statements are encountered
}

func newFileScope(f File) *fileScope {
	return &fileScope{script: f.Script, source: f.Source}
}

// registerSuppressions walks the Directives of every top-level and
// namespace-body statement and of every model property (other nodes'
// directives are not visited) and registers #suppress
// directives with the bag before any check-phase diagnostic can fire
// (spec.md §4.5 "Diagnostic suppression").
func (c *Checker) registerSuppressions(script *syntax.Script) {
	var walk func(n syntax.Node)
	walk = func(n syntax.Node) {
		if n == nil {
			return
		}
		for _, d := range n.Base().Directives {
			if d.Name != "suppress" {
				continue
			}
			c.bag.RegisterSuppression(diagnostic.SuppressDirective{
				Code: d.Code, Message: d.Message,
				Covers: []diagnostic.Span{n.Base().Span()},
			})
		}
	}
	var walkStatements func(stmts []syntax.Node)
	walkStatements = func(stmts []syntax.Node) {
		for _, s := range stmts {
			walk(s)
			if ns, ok := s.(*syntax.NamespaceStatement); ok {
				walkStatements(ns.Body)
			}
			if model, ok := s.(*syntax.ModelStatement); ok {
				for _, p := range model.Properties {
					walk(p)
				}
			}
		}
	}
	walkStatements(script.Statements)
}

// checkTopLevel dispatches one top-level-or-namespace-body statement.
func (c *Checker) checkTopLevel(stmt syntax.Node, ns *types.Namespace, sc *fileScope) {
	switch n := stmt.(type) {
	case *syntax.NamespaceStatement:
		child := c.namespaceFor(n, ns)
		for _, s := range n.Body {
			c.checkTopLevel(s, child, sc)
		}
	case *syntax.UsingStatement:
		target := c.resolveUsingTarget(n, sc)
		if target != nil {
			sc.usings = append(sc.usings, target)
		}
	case *syntax.ModelStatement:
		if len(n.TemplateParameters) > 0 {
			return // uninstantiated templates never run (spec.md §4.5)
		}
		m := c.buildModel(n, ns, nil, sc, nil)
		if _, exists := ns.Models[m.Name]; !exists {
			ns.Models[m.Name] = m // first declaration wins, matching the binder's symbol table (spec.md §4.3)
		}
	case *syntax.InterfaceStatement:
		if len(n.TemplateParameters) > 0 {
			return
		}
		i := c.buildInterface(n, ns, sc)
		if _, exists := ns.Interfaces[i.Name]; !exists {
			ns.Interfaces[i.Name] = i
		}
	case *syntax.OperationStatement:
		op := c.buildOperation(n, ns, nil, sc)
		if _, exists := ns.Operations[op.Name]; !exists {
			ns.Operations[op.Name] = op
		}
	case *syntax.UnionStatement:
		if len(n.TemplateParameters) > 0 {
			return
		}
		u := c.buildUnionDecl(n, ns, sc)
		if _, exists := ns.Unions[u.Name]; !exists {
			ns.Unions[u.Name] = u
		}
	case *syntax.EnumStatement:
		e := c.buildEnum(n, ns)
		if _, exists := ns.Enums[e.Name]; !exists {
			ns.Enums[e.Name] = e
		}
	case *syntax.AliasStatement:
		// Aliases are resolved on demand by reference, not constructed
		// eagerly, since an alias may itself be a template.
	}
}

// namespaceFor returns the shared types.Namespace for a bound
// NamespaceStatement, merging by its fully-qualified name (spec.md §4.5 "Namespaces with equal fully-qualified names share one
// merged namespace type").
func (c *Checker) namespaceFor(n *syntax.NamespaceStatement, parent *types.Namespace) *types.Namespace {
	qualified := n.Name.Name
	if parent.Name != "" {
		qualified = parent.Name + "." + n.Name.Name
	}
	if existing, ok := c.nsByQualified[qualified]; ok {
		return existing
	}
	child := types.NewNamespace(qualified, parent)
	c.nsByQualified[qualified] = child
	parent.Namespaces[n.Name.Name] = child
	return child
}

func (c *Checker) errorf(code string, target diagnostic.Target, msg string, args map[string]string) {
	d := diagnostic.New(code, msg, target)
	d.FormatArgs = args
	c.bag.Add(d)
}

// targetAt builds a real Target given the owning file.
func targetAt(file *diagnostic.SourceFile, n syntax.Node) diagnostic.Target {
	if n == nil {
		return diagnostic.NoTarget
	}
	return diagnostic.NewTarget(file, n.Base().Span())
}
