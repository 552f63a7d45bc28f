package binder_test

import (
	"testing"

	"github.com/cadl-lang/cadlc/binder"
	"github.com/cadl-lang/cadlc/diagnostic"
	"github.com/cadl-lang/cadlc/syntax"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func parseAndBind(t *testing.T, src string) (*syntax.Script, *binder.Registry) {
	t.Helper()
	file := diagnostic.NewSourceFile("t.cadl", src)
	bag := diagnostic.NewBag()
	script := syntax.Parse(file, bag)
	require.Empty(t, bag.All())
	reg := binder.NewRegistry()
	binder.Bind(script, reg)
	return script, reg
}

func TestBindDeclaresModelIntoScriptLocalsAndExports(t *testing.T) {
	script, _ := parseAndBind(t, `model A { x: int32 }`)
	sym, ok := script.Locals().Lookup("A")
	require.True(t, ok)
	require.Equal(t, "A", sym.Name)
	exportSym, ok := script.Exports().Lookup("A")
	require.True(t, ok)
	require.Same(t, sym, exportSym)
}

func TestBindAssignsParentLinks(t *testing.T) {
	script, _ := parseAndBind(t, `model A { x: int32 }`)
	model := script.Statements[0].(*syntax.ModelStatement)
	require.Same(t, script, model.Base().Parent)
	prop := model.Properties[0].(*syntax.ModelProperty)
	require.Same(t, model, prop.Base().Parent)
}

func TestBindDuplicateModelRecordsDuplicateWithoutReplacing(t *testing.T) {
	script, _ := parseAndBind(t, `model A { x: int32 } model A { y: string }`)
	first := script.Statements[0].(*syntax.ModelStatement)
	sym, _ := script.Locals().Lookup("A")
	require.Same(t, first.GetSymbol(), sym)
	require.Len(t, script.Locals().Duplicates["A"], 1)
}

func TestBindTemplateParameterDeclaresIntoModelLocals(t *testing.T) {
	script, _ := parseAndBind(t, `model Box<T> { value: T }`)
	model := script.Statements[0].(*syntax.ModelStatement)
	sym, ok := model.Locals().Lookup("T")
	require.True(t, ok)
	require.Equal(t, "T", sym.Name)
}

func TestBindNamespaceMergeSharesExportsIdentity(t *testing.T) {
	script, reg := parseAndBind(t, `namespace N { model A {} } namespace N { model B {} }`)
	first := script.Statements[0].(*syntax.NamespaceStatement)
	second := script.Statements[1].(*syntax.NamespaceStatement)
	require.Same(t, first.Exports(), second.Exports())
	require.NotSame(t, first.Locals(), second.Locals())

	_, aOK := first.Exports().Lookup("A")
	_, bOK := first.Exports().Lookup("B")
	require.True(t, aOK)
	require.True(t, bOK, "second namespace's model should be visible through the shared exports table")

	shared, existed := reg.Lookup("N")
	require.True(t, existed)
	require.Same(t, first.Exports(), shared)
}

func TestBindDottedNamespaceQualifiesRegistryName(t *testing.T) {
	_, reg := parseAndBind(t, `namespace A.B { model X {} }`)
	_, existed := reg.Lookup("A.B")
	require.True(t, existed)
}

func TestBindOperationUnderInterfaceDoesNotDeclareIntoNamespace(t *testing.T) {
	script, _ := parseAndBind(t, `interface Foo { op bar(): string; }`)
	_, ok := script.Locals().Lookup("bar")
	require.False(t, ok, "interface operations must not leak into the enclosing scope")
	iface := script.Statements[0].(*syntax.InterfaceStatement)
	require.Equal(t, "bar", iface.Operations[0].Name.Name)
	require.Same(t, iface, iface.Operations[0].Base().Parent)
}

func TestBindTopLevelOperationDeclaresIntoScriptLocals(t *testing.T) {
	script, _ := parseAndBind(t, `op standalone(): string;`)
	_, ok := script.Locals().Lookup("standalone")
	require.True(t, ok)
}

func TestBindDeclaresNamesInSourceOrder(t *testing.T) {
	script, _ := parseAndBind(t, `model A {} interface B { op c(): string; } union D { "x" }`)
	want := []string{"A", "B", "D"}
	if diff := cmp.Diff(want, script.Locals().Names()); diff != "" {
		t.Errorf("top-level declaration order mismatch (-want +got):\n%s", diff)
	}
}
