package syntax

// SymbolFlags distinguishes the symbol sum type from spec.md §3 "Symbols".
type SymbolFlags int

const (
	SymbolType SymbolFlags = 1 << iota
	SymbolDecorator
	SymbolUsing
	SymbolLocal
)

// Symbol is the sum type described in spec.md §3: a Type symbol bound to a
// declaration node, a Decorator symbol (name prefixed with "@"), a Using
// symbol referring to an imported target, or a Label/local symbol used
// inside scoped declarations.
type Symbol struct {
	Name  string
	Flags SymbolFlags

	// Decl is the declaration node a Type or Local symbol is bound to.
	Decl DeclarationNode

	// DecoratorPath is the originating external-module path, set only for
	// SymbolDecorator.
	DecoratorPath string
	// DecoratorHandle is an opaque callable handle the checker invokes;
	// concretely a decorator.Binding set during external-module binding.
	DecoratorHandle any

	// Target is the symbol a Using symbol refers to.
	Target *Symbol
	// Duplicate marks a Using symbol that re-imports a name another using
	// in the same file already imports (spec.md §3 Symbols).
	Duplicate bool
}

// SymbolTable is an insertion-ordered name-to-symbol map that records but
// never overwrites duplicates (spec.md §3 invariant 2, §4.3 "binder never
// replaces a symbol"). The first entry for a name is authoritative; every
// collision is retained in Duplicates for later diagnostic emission.
type SymbolTable struct {
	order      []string
	symbols    map[string]*Symbol
	Duplicates map[string][]*Symbol
}

// NewSymbolTable creates an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		symbols:    make(map[string]*Symbol),
		Duplicates: make(map[string][]*Symbol),
	}
}

// Declare inserts sym under name if name is not already bound, otherwise
// records sym as a duplicate of the existing (first-wins) entry and
// reports that the name collided. Re-declaring the identical symbol
// pointer (namespace merging re-visits the same shared symbol once per
// `namespace N {...}` block sharing a qualified name, spec.md §4.3) is a
// no-op, not a collision - a duplicate means two distinct declarations
// competing for one name.
func (t *SymbolTable) Declare(name string, sym *Symbol) (first *Symbol, isDuplicate bool) {
	if existing, ok := t.symbols[name]; ok {
		if existing == sym {
			return existing, false
		}
		t.Duplicates[name] = append(t.Duplicates[name], sym)
		return existing, true
	}
	t.symbols[name] = sym
	t.order = append(t.order, name)
	return sym, false
}

// Lookup returns the authoritative symbol for name, if any.
func (t *SymbolTable) Lookup(name string) (*Symbol, bool) {
	sym, ok := t.symbols[name]
	return sym, ok
}

// Names returns every declared name, in insertion order.
func (t *SymbolTable) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of distinct names declared.
func (t *SymbolTable) Len() int { return len(t.order) }

// Merge folds other's entries into t under namespace-merge semantics
// (spec.md §4.3 "Namespace merging"): for each name in other not yet in t,
// declare it; for a name present in both, record the colliding symbol as a
// duplicate. Used when two namespace declarations with the same
// fully-qualified name share one live `exports` object - callers should
// prefer keeping one table identity (spec.md invariant 3) and calling
// Merge only when two independently-built tables must be reconciled (e.g.
// loading a precompiled library alongside user source).
func (t *SymbolTable) Merge(other *SymbolTable) {
	for _, name := range other.order {
		sym, _ := other.symbols[name]
		t.Declare(name, sym)
	}
	for name, dups := range other.Duplicates {
		t.Duplicates[name] = append(t.Duplicates[name], dups...)
	}
}
