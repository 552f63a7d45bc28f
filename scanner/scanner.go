package scanner

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cadl-lang/cadlc/diagnostic"
)

// ASCII classification tables, grounded on the teacher's init()-time
// lookup-table approach (runtime/lexer.Lexer uses the same trick to avoid
// branchy per-byte classification in the hot scan loop).
var (
	isIdentStart [128]bool
	isIdentPart  [128]bool
	isDigit      [128]bool
)

func init() {
	for i := 0; i < 128; i++ {
		ch := byte(i)
		letter := ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
		isDigit[i] = '0' <= ch && ch <= '9'
		isIdentStart[i] = letter || ch == '_'
		isIdentPart[i] = isIdentStart[i] || isDigit[i]
	}
}

// Scanner produces a token stream from a source file's text. It never
// fails outright: malformed strings and unterminated comments are reported
// as diagnostics (if a Bag is attached) but a next token is always
// produced, per spec.md §4.1.
type Scanner struct {
	file *diagnostic.SourceFile
	src  string
	pos  int
	diag *diagnostic.Bag

	atLineStart bool
}

// New creates a Scanner over file's text. diag may be nil if the caller
// only wants tokens and doesn't care about scan-time diagnostics (e.g.
// speculative re-lexing during printable round-trip checks, spec.md §8).
func New(file *diagnostic.SourceFile, diag *diagnostic.Bag) *Scanner {
	return &Scanner{file: file, src: file.Text, pos: 0, diag: diag, atLineStart: true}
}

func (s *Scanner) report(code, message string, pos, end int) {
	if s.diag == nil {
		return
	}
	s.diag.Add(diagnostic.New(code, message, diagnostic.NewTarget(s.file, diagnostic.Span{Pos: pos, End: end})))
}

func (s *Scanner) at(i int) byte {
	if s.pos+i >= len(s.src) {
		return 0
	}
	return s.src[s.pos+i]
}

func (s *Scanner) peek() byte { return s.at(0) }

// Next scans and returns the next token, including trivia. Callers that
// want to skip trivia should filter on Kind.IsTrivia() plus Newline as
// appropriate for their context (the parser treats Newline as trivia
// everywhere except directive parsing, per spec.md §4.2).
func (s *Scanner) Next() Token {
	start := s.pos

	if start == 0 && strings.HasPrefix(s.src, "#!") {
		return s.scanShebang()
	}

	ch := s.peek()
	switch {
	case ch == 0:
		return Token{Kind: EOF, Pos: s.pos, End: s.pos}
	case ch == ' ' || ch == '\t':
		return s.scanWhitespace()
	case ch == '\n':
		s.pos++
		s.atLineStart = true
		return Token{Kind: Newline, Pos: start, End: s.pos, Text: "\n"}
	case ch == '\r':
		s.pos++
		if s.peek() == '\n' {
			s.pos++
		}
		s.atLineStart = true
		return Token{Kind: Newline, Pos: start, End: s.pos, Text: s.src[start:s.pos]}
	case ch == '/' && s.at(1) == '/':
		return s.scanLineComment()
	case ch == '/' && s.at(1) == '*':
		return s.scanBlockComment()
	case ch == '"':
		return s.scanString()
	case ch < 128 && isDigit[ch]:
		return s.scanNumber()
	case ch < 128 && isIdentStart[ch]:
		return s.scanIdentifier()
	case ch >= 0x80:
		return s.scanUnicodeIdentifier()
	default:
		return s.scanPunctuation()
	}
}

func (s *Scanner) scanShebang() Token {
	start := s.pos
	for s.pos < len(s.src) && s.src[s.pos] != '\n' {
		s.pos++
	}
	return Token{Kind: Shebang, Pos: start, End: s.pos, Text: s.src[start:s.pos]}
}

func (s *Scanner) scanWhitespace() Token {
	start := s.pos
	for {
		ch := s.peek()
		if ch != ' ' && ch != '\t' {
			break
		}
		s.pos++
	}
	return Token{Kind: Whitespace, Pos: start, End: s.pos, Text: s.src[start:s.pos]}
}

func (s *Scanner) scanLineComment() Token {
	start := s.pos
	s.pos += 2
	for s.pos < len(s.src) && s.src[s.pos] != '\n' && s.src[s.pos] != '\r' {
		s.pos++
	}
	return Token{Kind: LineComment, Pos: start, End: s.pos, Text: s.src[start:s.pos]}
}

func (s *Scanner) scanBlockComment() Token {
	start := s.pos
	s.pos += 2
	terminated := false
	for s.pos < len(s.src) {
		if s.src[s.pos] == '*' && s.at(1) == '/' {
			s.pos += 2
			terminated = true
			break
		}
		s.pos++
	}
	if !terminated {
		s.report(diagnostic.CodeUnterminatedLiteral, "unterminated comment", start, s.pos)
	}
	return Token{Kind: BlockComment, Pos: start, End: s.pos, Text: s.src[start:s.pos]}
}

func (s *Scanner) scanIdentifier() Token {
	start := s.pos
	for {
		ch := s.peek()
		if ch < 128 {
			if !isIdentPart[ch] {
				break
			}
			s.pos++
			continue
		}
		if ch >= 0x80 {
			r, size := utf8.DecodeRuneInString(s.src[s.pos:])
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				break
			}
			s.pos += size
			continue
		}
		break
	}
	text := s.src[start:s.pos]
	if kind, ok := keywords[text]; ok {
		return Token{Kind: kind, Pos: start, End: s.pos, Text: text, Value: text}
	}
	return Token{Kind: Identifier, Pos: start, End: s.pos, Text: text, Value: text}
}

func (s *Scanner) scanUnicodeIdentifier() Token {
	start := s.pos
	r, size := utf8.DecodeRuneInString(s.src[s.pos:])
	if !unicode.IsLetter(r) {
		s.pos += size
		s.report(diagnostic.CodeUnterminatedLiteral, "unexpected character", start, s.pos)
		return Token{Kind: ILLEGAL, Pos: start, End: s.pos, Text: s.src[start:s.pos]}
	}
	s.pos += size
	return s.scanIdentifier2(start)
}

// scanIdentifier2 continues an identifier whose first rune was already
// consumed by scanUnicodeIdentifier.
func (s *Scanner) scanIdentifier2(start int) Token {
	for {
		ch := s.peek()
		if ch < 128 {
			if !isIdentPart[ch] {
				break
			}
			s.pos++
			continue
		}
		if ch >= 0x80 {
			r, size := utf8.DecodeRuneInString(s.src[s.pos:])
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				break
			}
			s.pos += size
			continue
		}
		break
	}
	text := s.src[start:s.pos]
	return Token{Kind: Identifier, Pos: start, End: s.pos, Text: text, Value: text}
}

// scanNumber lexes a decimal literal textually per spec.md §4.1/§6: sign
// is handled by the parser (as a prefix expression), the scanner only
// consumes digits/fraction/exponent starting at the current digit.
func (s *Scanner) scanNumber() Token {
	start := s.pos
	for s.peek() < 128 && isDigit[s.peek()] {
		s.pos++
	}
	if s.peek() == '.' && s.at(1) < 128 && isDigit[s.at(1)] {
		s.pos++
		for s.peek() < 128 && isDigit[s.peek()] {
			s.pos++
		}
	}
	if s.peek() == 'e' || s.peek() == 'E' {
		save := s.pos
		s.pos++
		if s.peek() == '+' || s.peek() == '-' {
			s.pos++
		}
		if s.peek() < 128 && isDigit[s.peek()] {
			for s.peek() < 128 && isDigit[s.peek()] {
				s.pos++
			}
		} else {
			s.pos = save
		}
	}
	text := s.src[start:s.pos]
	return Token{Kind: NumericLiteral, Pos: start, End: s.pos, Text: text, Value: text}
}

// scanString decodes a double-quoted string literal, stripping quotes and
// decoding \\ \" \n \r \t \${ escapes per spec.md §6. Reports
// unterminated-literal and malformed-string diagnostics but always returns
// a StringLiteral token so later phases never see a scan failure.
func (s *Scanner) scanString() Token {
	start := s.pos
	s.pos++ // opening quote
	var b strings.Builder
	terminated := false
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		if ch == '"' {
			s.pos++
			terminated = true
			break
		}
		if ch == '\n' {
			break // strings don't span lines
		}
		if ch == '\\' {
			escStart := s.pos
			s.pos++
			switch s.peek() {
			case '\\':
				b.WriteByte('\\')
				s.pos++
			case '"':
				b.WriteByte('"')
				s.pos++
			case 'n':
				b.WriteByte('\n')
				s.pos++
			case 'r':
				b.WriteByte('\r')
				s.pos++
			case 't':
				b.WriteByte('\t')
				s.pos++
			case '$':
				if s.at(1) == '{' {
					b.WriteString("${")
					s.pos += 2
				} else {
					b.WriteByte('$')
					s.pos++
				}
			default:
				s.report(diagnostic.CodeUnterminatedLiteral, "invalid escape sequence", escStart, s.pos+1)
				b.WriteByte(s.peek())
				s.pos++
			}
			continue
		}
		b.WriteByte(ch)
		s.pos++
	}
	if !terminated {
		s.report(diagnostic.CodeUnterminatedLiteral, "unterminated string literal", start, s.pos)
	}
	return Token{Kind: StringLiteral, Pos: start, End: s.pos, Text: s.src[start:s.pos], Value: b.String()}
}

var punctRunes = map[byte]Kind{
	'{': OpenBrace, '}': CloseBrace,
	'(': OpenParen, ')': CloseParen,
	'[': OpenBracket, ']': CloseBracket,
	'<': LessThan, '>': GreaterThan,
	',': Comma, ';': Semicolon, ':': Colon,
	'?': Question, '=': Equals,
	'|': Bar, '&': Amp, '@': At, '#': Hash,
}

func (s *Scanner) scanPunctuation() Token {
	start := s.pos
	ch := s.peek()
	if ch == '.' {
		if s.at(1) == '.' && s.at(2) == '.' {
			s.pos += 3
			return Token{Kind: Ellipsis, Pos: start, End: s.pos, Text: "..."}
		}
		s.pos++
		return Token{Kind: Dot, Pos: start, End: s.pos, Text: "."}
	}
	if kind, ok := punctRunes[ch]; ok {
		s.pos++
		return Token{Kind: kind, Pos: start, End: s.pos, Text: string(ch)}
	}
	s.pos++
	s.report(diagnostic.CodeUnterminatedLiteral, "unexpected character", start, s.pos)
	return Token{Kind: ILLEGAL, Pos: start, End: s.pos, Text: s.src[start:s.pos]}
}

// SkipHorizontalWhitespace advances past spaces and tabs (not newlines),
// used between the pieces of a directive that aren't ordinary tokens.
func (s *Scanner) SkipHorizontalWhitespace() {
	for s.peek() == ' ' || s.peek() == '\t' {
		s.pos++
	}
}

// ScanBareWord consumes a contiguous run of non-whitespace characters,
// used by the parser to read a `#suppress` directive's diagnostic code
// (e.g. "duplicate-property"), which may contain hyphens that are not
// valid in ordinary identifiers.
func (s *Scanner) ScanBareWord() (text string, pos, end int) {
	start := s.pos
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			break
		}
		s.pos++
	}
	return s.src[start:s.pos], start, s.pos
}

// ScanRestOfLine consumes and returns the raw text from the current
// position up to (not including) the next newline or EOF. Used by the
// parser while parsing a `#suppress <code> [message]` directive, whose
// free-text message is not tokenized normally - it is newline-terminated
// raw text per spec.md §4.2.
func (s *Scanner) ScanRestOfLine() (text string, pos, end int) {
	start := s.pos
	for s.pos < len(s.src) && s.src[s.pos] != '\n' && s.src[s.pos] != '\r' {
		s.pos++
	}
	return strings.TrimSpace(s.src[start:s.pos]), start, s.pos
}

// Pos returns the scanner's current byte offset, for checkpoint/restore
// used by the parser's backtracking lookahead (e.g. disambiguating
// `A<B>` template arguments from a less-than comparison - which CADL does
// not have, but the pattern is reused for reference-vs-array lookahead).
func (s *Scanner) Pos() int { return s.pos }

// Seek resets the scanner to a previously observed position.
func (s *Scanner) Seek(pos int) { s.pos = pos }
