// Package scanner turns a UTF-8 CADL source buffer into a token stream
// with trivia classification, per spec.md §4.1.
package scanner

// Kind enumerates every token the scanner can produce.
type Kind int

const (
	EOF Kind = iota
	ILLEGAL

	// Trivia - always produced, the parser decides what to skip.
	Whitespace
	Newline
	LineComment
	BlockComment
	Shebang

	// Identifiers and keywords.
	Identifier

	KeywordImport
	KeywordModel
	KeywordNamespace
	KeywordUsing
	KeywordOp
	KeywordInterface
	KeywordUnion
	KeywordEnum
	KeywordAlias
	KeywordExtends
	KeywordIs
	KeywordTrue
	KeywordFalse

	// Literals.
	StringLiteral
	NumericLiteral

	// Punctuation.
	OpenBrace    // {
	CloseBrace   // }
	OpenParen    // (
	CloseParen   // )
	OpenBracket  // [
	CloseBracket // ]
	LessThan     // <
	GreaterThan  // >
	Comma        // ,
	Semicolon    // ;
	Colon        // :
	Dot          // .
	Question     // ?
	Equals       // =
	Bar          // |
	Amp          // &
	At           // @
	Hash         // #
	Ellipsis     // ...
)

var keywords = map[string]Kind{
	"import":    KeywordImport,
	"model":     KeywordModel,
	"namespace": KeywordNamespace,
	"using":     KeywordUsing,
	"op":        KeywordOp,
	"interface": KeywordInterface,
	"union":     KeywordUnion,
	"enum":      KeywordEnum,
	"alias":     KeywordAlias,
	"extends":   KeywordExtends,
	"is":        KeywordIs,
	"true":      KeywordTrue,
	"false":     KeywordFalse,
}

// String renders a human-readable name, used in diagnostics such as
// "expected '}' but found {kind}".
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

var kindNames = map[Kind]string{
	EOF:              "end of file",
	ILLEGAL:          "illegal token",
	Whitespace:       "whitespace",
	Newline:          "newline",
	LineComment:      "line comment",
	BlockComment:     "block comment",
	Shebang:          "shebang",
	Identifier:       "identifier",
	KeywordImport:    "'import'",
	KeywordModel:     "'model'",
	KeywordNamespace: "'namespace'",
	KeywordUsing:     "'using'",
	KeywordOp:        "'op'",
	KeywordInterface: "'interface'",
	KeywordUnion:     "'union'",
	KeywordEnum:      "'enum'",
	KeywordAlias:     "'alias'",
	KeywordExtends:   "'extends'",
	KeywordIs:        "'is'",
	KeywordTrue:      "'true'",
	KeywordFalse:     "'false'",
	StringLiteral:    "string literal",
	NumericLiteral:   "numeric literal",
	OpenBrace:        "'{'",
	CloseBrace:       "'}'",
	OpenParen:        "'('",
	CloseParen:       "')'",
	OpenBracket:      "'['",
	CloseBracket:     "']'",
	LessThan:         "'<'",
	GreaterThan:      "'>'",
	Comma:            "','",
	Semicolon:        "';'",
	Colon:            "':'",
	Dot:              "'.'",
	Question:         "'?'",
	Equals:           "'='",
	Bar:              "'|'",
	Amp:              "'&'",
	At:               "'@'",
	Hash:             "'#'",
	Ellipsis:         "'...'",
}

// IsTrivia reports whether k is whitespace/comment/shebang trivia. Newline
// is deliberately excluded: spec.md §4.1 says the scanner emits it as a
// real token the parser can choose to treat as trivia (directive parsing
// needs to see it).
func (k Kind) IsTrivia() bool {
	switch k {
	case Whitespace, LineComment, BlockComment, Shebang:
		return true
	default:
		return false
	}
}

// IsKeyword reports whether k is one of the reserved words in spec.md
// §4.1. Contextual words like "mixes" are not keywords - they scan as
// plain identifiers and are recognized positionally by the parser.
func (k Kind) IsKeyword() bool {
	switch k {
	case KeywordImport, KeywordModel, KeywordNamespace, KeywordUsing, KeywordOp,
		KeywordInterface, KeywordUnion, KeywordEnum, KeywordAlias, KeywordExtends,
		KeywordIs, KeywordTrue, KeywordFalse:
		return true
	default:
		return false
	}
}

// Token is one lexical token: its kind, source span, decoded text (for
// identifiers and literals; interned so equal values compare equal as
// strings), and any scan-time diagnostics already folded into Value for
// string literals (quotes stripped, escapes decoded).
type Token struct {
	Kind  Kind
	Pos   int
	End   int
	Text  string // raw source text exactly as written
	Value string // decoded value (identifier name, unescaped string, etc.)
}
