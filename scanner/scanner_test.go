package scanner_test

import (
	"testing"

	"github.com/cadl-lang/cadlc/diagnostic"
	"github.com/cadl-lang/cadlc/scanner"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) ([]scanner.Token, *diagnostic.Bag) {
	t.Helper()
	file := diagnostic.NewSourceFile("t.cadl", src)
	bag := diagnostic.NewBag()
	sc := scanner.New(file, bag)
	var toks []scanner.Token
	for {
		tok := sc.Next()
		toks = append(toks, tok)
		if tok.Kind == scanner.EOF {
			break
		}
	}
	return toks, bag
}

func kinds(toks []scanner.Token) []scanner.Kind {
	out := make([]scanner.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestScanKeywordsAndPunctuation(t *testing.T) {
	toks, bag := scanAll(t, `model A { x: int32, y?: string }`)
	require.Empty(t, bag.All())
	require.Equal(t, []scanner.Kind{
		scanner.KeywordModel, scanner.Whitespace, scanner.Identifier, scanner.Whitespace,
		scanner.OpenBrace, scanner.Whitespace, scanner.Identifier, scanner.Colon, scanner.Whitespace,
		scanner.Identifier, scanner.Comma, scanner.Whitespace, scanner.Identifier, scanner.Question,
		scanner.Colon, scanner.Whitespace, scanner.Identifier, scanner.Whitespace, scanner.CloseBrace,
		scanner.EOF,
	}, kinds(toks))
}

func TestScanStringEscapes(t *testing.T) {
	toks, bag := scanAll(t, `"a\nb\"c\\d"`)
	require.Empty(t, bag.All())
	require.Equal(t, scanner.StringLiteral, toks[0].Kind)
	require.Equal(t, "a\nb\"c\\d", toks[0].Value)
}

func TestScanUnterminatedStringReportsButYieldsToken(t *testing.T) {
	toks, bag := scanAll(t, `"unterminated`)
	require.NotEmpty(t, bag.All())
	require.Equal(t, scanner.StringLiteral, toks[0].Kind)
}

func TestScanUnterminatedBlockCommentReportsButYieldsToken(t *testing.T) {
	toks, bag := scanAll(t, `/* never closed`)
	require.NotEmpty(t, bag.All())
	require.Equal(t, scanner.BlockComment, toks[0].Kind)
}

func TestScanNumericLiteralsTextualForm(t *testing.T) {
	toks, _ := scanAll(t, `123 3.14 1e6 2.5e-3`)
	var nums []string
	for _, tok := range toks {
		if tok.Kind == scanner.NumericLiteral {
			nums = append(nums, tok.Text)
		}
	}
	require.Equal(t, []string{"123", "3.14", "1e6", "2.5e-3"}, nums)
}

func TestScanNewlineIsNotTrivia(t *testing.T) {
	require.False(t, scanner.Newline.IsTrivia())
	require.True(t, scanner.Whitespace.IsTrivia())
}

func TestScanDecoratorAndEllipsis(t *testing.T) {
	toks, _ := scanAll(t, `@blue ...A`)
	require.Equal(t, scanner.At, toks[0].Kind)
	var found bool
	for _, tok := range toks {
		if tok.Kind == scanner.Ellipsis {
			found = true
		}
	}
	require.True(t, found)
}

func TestScanShebangOnlyFirstLine(t *testing.T) {
	toks, _ := scanAll(t, "#!/usr/bin/env cadl\nmodel A {}\n")
	require.Equal(t, scanner.Shebang, toks[0].Kind)
}

func TestScanRestOfLineForDirectives(t *testing.T) {
	file := diagnostic.NewSourceFile("t.cadl", "#suppress duplicate-property some message here\nmodel A {}")
	sc := scanner.New(file, nil)
	require.Equal(t, scanner.Hash, sc.Next().Kind)
	id := sc.Next()
	require.Equal(t, "suppress", id.Value)
	sc.Next() // whitespace
	code, _, _ := sc.ScanBareWord()
	require.Equal(t, "duplicate-property", code)
	sc.Next() // whitespace
	text, _, _ := sc.ScanRestOfLine()
	require.Equal(t, "some message here", text)
}
