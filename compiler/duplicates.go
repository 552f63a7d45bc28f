package compiler

import (
	"github.com/cadl-lang/cadlc/diagnostic"
	"github.com/cadl-lang/cadlc/syntax"
)

// emitDuplicateSymbolDiagnostics implements spec.md §7's bind-level
// "duplicate-symbol (deferred from the symbol table's duplicate set)":
// the binder only records collisions into each scope's own SymbolTable,
// never emits a diagnostic itself (binder.go has no diagnostic.Bag
// dependency by design). The loader is the first point with a view across
// every bound file, so it walks every table that can carry a duplicate and
// turns each into a diagnostic here, once, after all files are loaded.
//
// Two distinct scopes can carry a duplicate:
//   - the cross-file top-level scope this loader builds itself (SPEC_FULL.md
//     §4 "Cross-file duplicate-symbol scope": top-level declarations live
//     in one global scope the same way CADL's implicit global namespace
//     does, but the binder never shares one table for it across files -
//     each script's own Locals() only ever sees its own file, so a
//     same-file top-level collision is re-derived here too rather than
//     read off Locals() directly, to avoid reporting it twice);
//   - a namespace's shared exports table (a collision between two members
//     of the same fully-qualified namespace, possibly across files, since
//     binder.Bind gives same-named namespaces one shared exports table -
//     spec.md §4.3 "Namespace merging").
func (l *loader) emitDuplicateSymbolDiagnostics() {
	global := syntax.NewSymbolTable()

	for _, f := range l.files {
		for _, stmt := range f.Script.Statements {
			if _, isNS := stmt.(*syntax.NamespaceStatement); isNS {
				continue // namespace members are covered via the registry's shared tables below
			}
			decl, ok := stmt.(syntax.DeclarationNode)
			if !ok {
				continue
			}
			global.Declare(decl.DeclaredName(), decl.GetSymbol())
		}
	}
	l.reportTableDuplicates(global)

	for _, table := range l.reg.Tables() {
		l.reportTableDuplicates(table)
	}
}

// reportTableDuplicates walks table's duplicates in the table's own
// insertion order (spec.md §5) rather than ranging the Duplicates map
// directly, whose key order Go leaves unspecified.
func (l *loader) reportTableDuplicates(table *syntax.SymbolTable) {
	for _, name := range table.Names() {
		for _, dup := range table.Duplicates[name] {
			l.errorf(diagnostic.CodeDuplicateSymbol, l.targetOf(dup),
				"duplicate declaration of '{name}'", map[string]string{"name": name})
		}
	}
}

// targetOf locates the source span for a duplicate symbol by walking its
// declaration node's parent chain up to the owning Script, then looking up
// that script's SourceFile by path.
func (l *loader) targetOf(sym *syntax.Symbol) diagnostic.Target {
	if sym == nil || sym.Decl == nil {
		return diagnostic.NoTarget
	}
	var n syntax.Node = sym.Decl
	for n != nil {
		if s, ok := n.(*syntax.Script); ok {
			if source, ok := l.sources[s.Path]; ok {
				return diagnostic.NewTarget(source, sym.Decl.Base().Span())
			}
			return diagnostic.NoTarget
		}
		n = n.Base().Parent
	}
	return diagnostic.NoTarget
}
