package checker

import (
	"github.com/cadl-lang/cadlc/diagnostic"
	"github.com/cadl-lang/cadlc/syntax"
)

// resolveUsingTarget resolves a `using A.B.C;` statement's dotted path to
// the namespace's exports table, per spec.md §4.5 (used later for
// unqualified lookups of its members). Diagnoses an unresolved `using`
// target the same way any other unresolved reference is diagnosed.
func (c *Checker) resolveUsingTarget(n *syntax.UsingStatement, sc *fileScope) *syntax.SymbolTable {
	if sym, reported := c.resolveSymbolPath(n.Path.Parts, n, sc); sym != nil {
		if nsNode, ok := sym.Decl.(*syntax.NamespaceStatement); ok {
			return nsNode.Exports()
		}
	} else if reported {
		return nil // ambiguous reference already diagnosed by resolveFirstSegment
	}
	// A namespace declared only in another file is invisible to this
	// script's own lexical-scope walk (each Script has its own locals),
	// but every top-level namespace is registered process-wide by fully
	// qualified name regardless of which file declared it (spec.md §4.3
	// "namespace merging"/§8 scenario 2 "using namespace in global scope
	// across files") - fall back to that registry by exact dotted name.
	if table, ok := c.reg.Lookup(joinDotted(n.Path.Parts)); ok {
		return table
	}
	c.errorf(diagnostic.CodeUnresolvedReference, targetAt(sc.source, n), "unresolved reference to '{name}'",
		map[string]string{"name": joinDotted(n.Path.Parts)})
	return nil
}

// resolveSymbolPath resolves a dotted reference against, in order: the
// given scope's locals chain, each enclosing lexical scope, using the
// parent-link chain from the reference site up to the Script; then the
// file-level `using` set (spec.md §4.5 "Name resolution"). No Cadl
// namespace lookup happens here: intrinsics are matched earlier, in
// resolveTypeReference. Only the first path segment is resolved this
// way; remaining segments walk the resolved symbol's own exports.
// reported tells the caller whether a failure diagnostic (e.g. ambiguous
// reference) has already been emitted, so it does not also emit its own
// "unresolved reference" on top of it.
func (c *Checker) resolveSymbolPath(parts []string, site syntax.Node, sc *fileScope) (sym *syntax.Symbol, reported bool) {
	if len(parts) == 0 {
		return nil, false
	}
	sym, reported = c.resolveFirstSegment(parts[0], site, sc)
	if sym == nil {
		return nil, reported
	}
	for _, seg := range parts[1:] {
		exports := exportsOf(sym)
		if exports == nil {
			return nil, false
		}
		next, ok := exports.Lookup(seg)
		if !ok {
			return nil, false
		}
		sym = next
	}
	return sym, false
}

// exportsOf returns the symbol table the next dotted segment should be
// looked up in, if sym refers to something that exposes one (currently
// only namespaces - models/interfaces/etc. are not addressable by dotted
// member access in this grammar).
func exportsOf(sym *syntax.Symbol) *syntax.SymbolTable {
	if ns, ok := sym.Decl.(*syntax.NamespaceStatement); ok {
		return ns.Exports()
	}
	return nil
}

// resolveFirstSegment implements the scope-walk itself: nearest enclosing
// locals outward to the script, then file usings.
func (c *Checker) resolveFirstSegment(name string, site syntax.Node, sc *fileScope) (sym *syntax.Symbol, reported bool) {
	for n := site; n != nil; n = n.Base().Parent {
		scoped, ok := n.(syntax.ScopedNode)
		if !ok {
			continue
		}
		if sym, ok := scoped.Locals().Lookup(name); ok {
			return sym, false
		}
	}

	var found *syntax.Symbol
	ambiguous := false
	for _, table := range sc.usings {
		if sym, ok := table.Lookup(name); ok {
			if found != nil && found != sym {
				ambiguous = true
			} else {
				found = sym
			}
		}
	}
	if ambiguous {
		c.errorf(diagnostic.CodeAmbiguousReference, targetAt(sc.source, site), "'{name}' is ambiguous among multiple using'd namespaces",
			map[string]string{"name": name})
		return nil, true
	}
	return found, false
}

// scriptOf walks n's parent chain up to the owning *syntax.Script, used to
// root a dotted-reference scope search.
func scriptOf(n syntax.Node) *syntax.Script {
	for cur := n; cur != nil; cur = cur.Base().Parent {
		if s, ok := cur.(*syntax.Script); ok {
			return s
		}
	}
	return nil
}

func joinDotted(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}
