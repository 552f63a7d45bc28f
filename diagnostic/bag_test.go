package diagnostic_test

import (
	"testing"

	"github.com/cadl-lang/cadlc/diagnostic"
	"github.com/stretchr/testify/require"
)

func TestBagHasErrorLatches(t *testing.T) {
	bag := diagnostic.NewBag()
	require.False(t, bag.HasError())

	bag.Add(diagnostic.NewWarning(diagnostic.CodeUnknownDirective, "huh", diagnostic.NoTarget))
	require.False(t, bag.HasError())

	bag.Add(diagnostic.New(diagnostic.CodeUnresolvedReference, "nope", diagnostic.NoTarget))
	require.True(t, bag.HasError())

	bag.Add(diagnostic.NewWarning(diagnostic.CodeUnknownDirective, "again", diagnostic.NoTarget))
	require.True(t, bag.HasError(), "HasError must latch true forever")
}

func TestBagSuppressesWarningWithinCoveredSpan(t *testing.T) {
	file := diagnostic.NewSourceFile("a.cadl", "model A {}\n")
	covered := diagnostic.Span{Pos: 0, End: 11}

	bag := diagnostic.NewBag()
	bag.RegisterSuppression(diagnostic.SuppressDirective{
		Code:   diagnostic.CodeDuplicateProperty,
		Covers: []diagnostic.Span{covered},
	})

	bag.Add(diagnostic.NewWarning(diagnostic.CodeDuplicateProperty, "dup",
		diagnostic.NewTarget(file, diagnostic.Span{Pos: 2, End: 3})))

	require.Empty(t, bag.All())
}

func TestBagNeverSuppressesErrors(t *testing.T) {
	file := diagnostic.NewSourceFile("a.cadl", "model A extends A {}\n")
	covered := diagnostic.Span{Pos: 0, End: 21}

	bag := diagnostic.NewBag()
	bag.RegisterSuppression(diagnostic.SuppressDirective{
		Code:   diagnostic.CodeRecursiveBase,
		Covers: []diagnostic.Span{covered},
	})

	bag.Add(diagnostic.New(diagnostic.CodeRecursiveBase, "cycle",
		diagnostic.NewTarget(file, diagnostic.Span{Pos: 6, End: 7})))

	all := bag.All()
	require.Len(t, all, 2, "the original error plus one suppress-error meta-diagnostic")

	var sawError, sawMeta bool
	for _, d := range all {
		switch d.Code {
		case diagnostic.CodeRecursiveBase:
			sawError = true
			require.Equal(t, diagnostic.SeverityError, d.Severity)
		case diagnostic.CodeSuppressError:
			sawMeta = true
			require.Equal(t, diagnostic.SeverityWarning, d.Severity)
		}
	}
	require.True(t, sawError)
	require.True(t, sawMeta)
	require.True(t, bag.HasError())
}

func TestSourceFileLineAndCharacter(t *testing.T) {
	f := diagnostic.NewSourceFile("a.cadl", "model A {\n  x: int32;\n}\n")
	line, char := f.LineAndCharacter(11)
	require.Equal(t, 1, line)
	require.Equal(t, 1, char)
}

func TestDiagnosticJSONShape(t *testing.T) {
	f := diagnostic.NewSourceFile("a.cadl", "model A {}\n")
	d := diagnostic.New(diagnostic.CodeUnresolvedReference, "cannot resolve {name}",
		diagnostic.NewTarget(f, diagnostic.Span{Pos: 6, End: 7}))
	d.FormatArgs = map[string]string{"name": "A"}

	data, err := d.MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, `{
		"code": "unresolved-reference",
		"severity": "error",
		"message": "cannot resolve A",
		"target": {"file": "a.cadl", "pos": 6, "end": 7},
		"format_args": {"name": "A"}
	}`, string(data))
}

func TestDiagnosticJSONNoTarget(t *testing.T) {
	d := diagnostic.New(diagnostic.CodeCompilerVersionMismatch, "version mismatch", diagnostic.NoTarget)
	data, err := d.MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, `{
		"code": "compiler-version-mismatch",
		"severity": "error",
		"message": "version mismatch",
		"target": "no-target"
	}`, string(data))
}
