package syntax_test

import (
	"testing"

	"github.com/cadl-lang/cadlc/diagnostic"
	"github.com/cadl-lang/cadlc/syntax"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) (*syntax.Script, *diagnostic.Bag) {
	t.Helper()
	file := diagnostic.NewSourceFile("t.cadl", src)
	bag := diagnostic.NewBag()
	return syntax.Parse(file, bag), bag
}

func TestParseModelWithDecoratorAndDefault(t *testing.T) {
	script, bag := parse(t, `@blue model A { foo?: int32 = 1 }`)
	require.Empty(t, bag.All())
	require.Len(t, script.Statements, 1)

	model := script.Statements[0].(*syntax.ModelStatement)
	require.Equal(t, "A", model.Name.Name)
	require.Len(t, model.Decorators, 1)
	require.Equal(t, []string{"blue"}, model.Decorators[0].Target.Parts)
	require.Len(t, model.Properties, 1)

	prop := model.Properties[0].(*syntax.ModelProperty)
	require.Equal(t, "foo", prop.Name)
	require.True(t, prop.Optional)
	require.NotNil(t, prop.Default)
}

func TestParseSpreadProperties(t *testing.T) {
	script, bag := parse(t, `model C { ...A, ...B }`)
	require.Empty(t, bag.All())
	model := script.Statements[0].(*syntax.ModelStatement)
	require.Len(t, model.Properties, 2)
	for _, prop := range model.Properties {
		_, ok := prop.(*syntax.ModelSpreadProperty)
		require.True(t, ok)
	}
}

func TestParseDottedNamespaceDesugars(t *testing.T) {
	script, bag := parse(t, `namespace A.B.C { model X {} }`)
	require.Empty(t, bag.All())
	top := script.Statements[0].(*syntax.NamespaceStatement)
	require.Equal(t, "A", top.Name.Name)
	mid := top.Body[0].(*syntax.NamespaceStatement)
	require.Equal(t, "B", mid.Name.Name)
	inner := mid.Body[0].(*syntax.NamespaceStatement)
	require.Equal(t, "C", inner.Name.Name)
	require.Equal(t, top.Pos, inner.Pos)
	require.Equal(t, top.End, inner.End)
}

func TestParseBlocklessNamespaceMustBeFirst(t *testing.T) {
	_, bag := parse(t, `model X {} namespace N;`)
	found := false
	for _, d := range bag.All() {
		if d.Code == diagnostic.CodeInvalidDirectiveLocation {
			found = true
		}
	}
	require.True(t, found)
}

func TestParseUsingAndInterfaceAndOperation(t *testing.T) {
	script, bag := parse(t, `using Foo; interface Bar { op list(): string[]; }`)
	require.Empty(t, bag.All())
	require.IsType(t, &syntax.UsingStatement{}, script.Statements[0])
	iface := script.Statements[1].(*syntax.InterfaceStatement)
	require.Len(t, iface.Operations, 1)
	require.Equal(t, "list", iface.Operations[0].Name.Name)
	arr, ok := iface.Operations[0].ReturnType.(*syntax.ArrayExpression)
	require.True(t, ok)
	ref, ok := arr.Element.(*syntax.TypeReferenceExpression)
	require.True(t, ok)
	require.Equal(t, []string{"string"}, ref.Parts)
}

func TestParseUnionAndIntersectionPrecedence(t *testing.T) {
	script, bag := parse(t, `alias X = A & B | C & D;`)
	require.Empty(t, bag.All())
	alias := script.Statements[0].(*syntax.AliasStatement)
	union, ok := alias.Value.(*syntax.UnionExpression)
	require.True(t, ok)
	require.Len(t, union.Options, 2)
	for _, opt := range union.Options {
		_, ok := opt.(*syntax.IntersectionExpression)
		require.True(t, ok)
	}
}

func TestParseSuppressDirective(t *testing.T) {
	script, bag := parse(t, "#suppress duplicate-property reasons\nmodel A { x: int32 }")
	require.Empty(t, bag.All())
	model := script.Statements[0].(*syntax.ModelStatement)
	require.Len(t, model.Directives, 1)
	require.Equal(t, "suppress", model.Directives[0].Name)
	require.Equal(t, "duplicate-property", model.Directives[0].Code)
	require.Equal(t, "reasons", model.Directives[0].Message)
}

func TestParseMissingTokenRecoversAndFlagsPrintable(t *testing.T) {
	script, bag := parse(t, `model A { x int32 }`)
	require.NotEmpty(t, bag.All())
	require.False(t, script.Printable)
	require.Len(t, script.Statements, 1)
}

func TestParseTemplateModel(t *testing.T) {
	script, bag := parse(t, `model Box<T> { value: T }`)
	require.Empty(t, bag.All())
	model := script.Statements[0].(*syntax.ModelStatement)
	require.Len(t, model.TemplateParameters, 1)
	require.Equal(t, "T", model.TemplateParameters[0].Name.Name)
}

func TestParseEnumWithLiteralValues(t *testing.T) {
	script, bag := parse(t, `enum Color { Red: "red", Blue: "blue" }`)
	require.Empty(t, bag.All())
	e := script.Statements[0].(*syntax.EnumStatement)
	require.Len(t, e.Members, 2)
	require.Equal(t, "Red", e.Members[0].Name)
}

func TestParseMultipleDecoratorsAttachInSourceOrder(t *testing.T) {
	script, bag := parse(t, `@blue @red("x") model A {}`)
	require.Empty(t, bag.All())
	model := script.Statements[0].(*syntax.ModelStatement)
	require.Len(t, model.Decorators, 2)

	var got [][]string
	for _, d := range model.Decorators {
		got = append(got, d.Target.Parts)
	}
	want := [][]string{{"blue"}, {"red"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decorator attachment order mismatch (-want +got):\n%s", diff)
	}
}
