package syntax

import (
	"fmt"
	"strconv"

	"github.com/cadl-lang/cadlc/diagnostic"
	"github.com/cadl-lang/cadlc/internal/invariant"
	"github.com/cadl-lang/cadlc/scanner"
)

// Parser is a hand-written recursive-descent parser with error recovery
// (spec.md §4.2). It always produces a complete Script, flagging nodes it
// could not fully parse with FlagHasParseError rather than aborting.
type Parser struct {
	sc   *scanner.Scanner
	file *diagnostic.SourceFile
	diag *diagnostic.Bag

	tok    scanner.Token
	peeked *scanner.Token

	printable     bool
	reportedAt    map[int]bool
	lastRealEnd   int
	syntheticSeen int
}

// Parse scans and parses file's text into a complete Script.
func Parse(file *diagnostic.SourceFile, diag *diagnostic.Bag) *Script {
	p := &Parser{
		sc:         scanner.New(file, diag),
		file:       file,
		diag:       diag,
		printable:  true,
		reportedAt: make(map[int]bool),
	}
	p.next()
	return p.parseScript()
}

// --- token stream plumbing -------------------------------------------------

func (p *Parser) rawNext() scanner.Token {
	for {
		t := p.sc.Next()
		if t.Kind.IsTrivia() || t.Kind == scanner.Newline {
			continue
		}
		return t
	}
}

func (p *Parser) next() {
	if p.peeked != nil {
		p.tok = *p.peeked
		p.peeked = nil
	} else {
		p.tok = p.rawNext()
	}
	if p.tok.Kind != scanner.EOF {
		p.lastRealEnd = p.tok.End
	}
}

func (p *Parser) peek() scanner.Token {
	if p.peeked == nil {
		t := p.rawNext()
		p.peeked = &t
	}
	return *p.peeked
}

func (p *Parser) at(k scanner.Kind) bool { return p.tok.Kind == k }

// errorAt reports a diagnostic at most once per exact byte position, per
// spec.md §4.2 "no two errors at the same real position".
func (p *Parser) errorAt(code, msg string, pos, end int) {
	if p.reportedAt[pos] {
		return
	}
	p.reportedAt[pos] = true
	if p.diag != nil {
		p.diag.Add(diagnostic.New(code, msg, diagnostic.NewTarget(p.file, diagnostic.Span{Pos: pos, End: end})))
	}
}

// expect consumes the current token if it matches k, otherwise reports a
// missing-token diagnostic at the end of the *previous* token (spec.md
// §4.2: "the squiggle is placed at the end of the previous token rather
// than on the current one") and synthesizes a placeholder so the caller
// can keep building a shaped tree.
func (p *Parser) expect(k scanner.Kind) scanner.Token {
	if p.at(k) {
		t := p.tok
		p.next()
		return t
	}
	p.printable = false
	pos := p.lastRealEnd
	p.errorAt(diagnostic.CodeMissingToken,
		fmt.Sprintf("expected %s but found %s", k, p.tok.Kind), pos, pos)
	return scanner.Token{Kind: k, Pos: pos, End: pos}
}

// syntheticIdentifier builds a unique missing identifier so later phases
// (binder/checker) don't re-report the same unresolved name over and over
// for one recovery point (spec.md §4.2).
func (p *Parser) syntheticIdentifier(pos, end int) *Identifier {
	p.syntheticSeen++
	id := &Identifier{Name: fmt.Sprintf("<missing-%d>", p.syntheticSeen)}
	id.NodeKind = KindIdentifier
	id.Pos, id.End = pos, end
	id.SetFlag(FlagSynthetic)
	id.SetFlag(FlagHasParseError)
	return id
}

func (p *Parser) expectIdentifier() *Identifier {
	if p.at(scanner.Identifier) {
		t := p.tok
		p.next()
		id := &Identifier{Name: t.Value}
		id.NodeKind = KindIdentifier
		id.Pos, id.End = t.Pos, t.End
		return id
	}
	pos := p.lastRealEnd
	p.printable = false
	p.errorAt(diagnostic.CodeMissingToken, "expected identifier but found "+p.tok.Kind.String(), pos, pos)
	return p.syntheticIdentifier(pos, pos)
}

// --- delimited-list driver --------------------------------------------------

// listOptions parameterizes the single shared list-parsing routine spec.md
// §4.2 requires: the model body, operation params, enum members, template
// parameters/arguments, tuple, union variants and decorator args go
// through this. An interface's `extends` heritage clause does not: it has
// no open/close tokens and parseInterface reads it with its own loop.
type listOptions struct {
	open, close      scanner.Kind
	delimiter        scanner.Kind
	tolerated        scanner.Kind // accepted with a warning instead of delimiter, 0 if none
	trailingAllowed  bool
	forbidDecorators bool
	context          string
}

// parseDelimitedList consumes open, repeatedly calls parseItem while not at
// close/EOF, and consumes close. It is guaranteed to terminate: if one
// iteration consumes neither a delimiter, the close token, nor any token at
// all, it logs a single error at the stall position and exits (spec.md
// §4.2).
func (p *Parser) parseDelimitedList(opts listOptions, parseItem func() Node) []Node {
	p.expect(opts.open)
	var items []Node
	for !p.at(opts.close) && !p.at(scanner.EOF) {
		stallPos := p.tok.Pos
		if opts.forbidDecorators {
			for p.at(scanner.At) {
				p.errorAt(diagnostic.CodeInvalidDecoratorLocation, "decorators are not allowed in "+opts.context, p.tok.Pos, p.tok.End)
				p.parseDecoratorExpression()
			}
		}
		item := parseItem()
		if item != nil {
			items = append(items, item)
		}

		consumedDelimiter := false
		if p.at(opts.delimiter) {
			p.next()
			consumedDelimiter = true
		} else if opts.tolerated != 0 && p.at(opts.tolerated) {
			if p.diag != nil {
				p.diag.Add(diagnostic.NewWarning(diagnostic.CodeTrailingDelimiter, "unexpected delimiter in "+opts.context,
					diagnostic.NewTarget(p.file, diagnostic.Span{Pos: p.tok.Pos, End: p.tok.End})))
			}
			p.next()
			consumedDelimiter = true
		}

		if p.at(opts.close) {
			if consumedDelimiter && !opts.trailingAllowed {
				p.errorAt(diagnostic.CodeTrailingDelimiter, "trailing delimiter not allowed in "+opts.context, p.tok.Pos, p.tok.End)
			}
			break
		}

		if !consumedDelimiter {
			if p.tok.Pos == stallPos {
				// Neither item parsing, a delimiter, nor the close token
				// advanced us - force progress so the driver terminates.
				p.errorAt(diagnostic.CodeMissingToken, "expected "+opts.delimiter.String()+" or "+opts.close.String(), p.tok.Pos, p.tok.End)
				if p.at(scanner.EOF) {
					break
				}
				p.next()
			}
		}
		invariant.Invariant(p.tok.Pos > stallPos || p.at(scanner.EOF), "delimited-list driver must make progress")
	}
	p.expect(opts.close)
	return items
}

// --- script / top-level -----------------------------------------------------

func (p *Parser) parseScript() *Script {
	script := &Script{Path: p.file.Path, locals: NewSymbolTable(), exports: NewSymbolTable()}
	script.NodeKind = KindScript
	script.Pos = 0

	var sawNonImport bool
	var blockless *NamespaceStatement
	for !p.at(scanner.EOF) {
		directives, decorators := p.collectDirectivesAndDecorators()

		if p.at(scanner.KeywordImport) {
			if sawNonImport {
				p.errorAt(diagnostic.CodeInvalidDirectiveLocation, "imports must come first", p.tok.Pos, p.tok.End)
			}
			imp := p.parseImport()
			imp.Directives = directives
			script.Imports = append(script.Imports, imp)
			continue
		}

		stmt := p.parseStatement(directives, decorators)
		if stmt == nil {
			continue
		}
		if ns, ok := stmt.(*NamespaceStatement); ok && ns.Blockless {
			if blockless != nil {
				p.errorAt(diagnostic.CodeInvalidDirectiveLocation, "multiple blockless namespaces", ns.Pos, ns.End)
			} else if sawNonImport {
				p.errorAt(diagnostic.CodeInvalidDirectiveLocation, "blockless namespace must be first", ns.Pos, ns.End)
			}
			blockless = ns
		}
		sawNonImport = true
		script.Statements = append(script.Statements, stmt)
	}
	script.End = p.tok.End
	script.Printable = p.printable
	return script
}

func (p *Parser) parseImport() *ImportStatement {
	start := p.tok.Pos
	p.next() // 'import'
	path := ""
	if p.at(scanner.StringLiteral) {
		path = p.tok.Value
		p.next()
	} else {
		p.expect(scanner.StringLiteral)
	}
	end := p.tok.Pos
	p.expect(scanner.Semicolon)
	imp := &ImportStatement{Path: path}
	imp.NodeKind = KindImportStatement
	imp.Pos, imp.End = start, end
	return imp
}

// collectDirectivesAndDecorators gathers every leading `#...` directive and
// `@...` decorator at a statement-like position, per spec.md §4.2.
func (p *Parser) collectDirectivesAndDecorators() ([]*DirectiveExpression, []*DecoratorExpression) {
	var directives []*DirectiveExpression
	var decorators []*DecoratorExpression
	for {
		switch p.tok.Kind {
		case scanner.Hash:
			directives = append(directives, p.parseDirectiveExpression())
		case scanner.At:
			decorators = append(decorators, p.parseDecoratorExpression())
		default:
			return directives, decorators
		}
	}
}

// parseDirectiveExpression implements `#suppress <code> [message]`,
// newline-terminated (spec.md §4.2: "during directive parsing, newline is
// not trivia"). The code and message are read directly off the scanner
// since diagnostic codes may contain hyphens that are not valid identifier
// characters, and the message is free text.
func (p *Parser) parseDirectiveExpression() *DirectiveExpression {
	start := p.tok.Pos
	p.next() // consume '#'; p.tok now holds the directive-name identifier,
	// with the scanner positioned right after it (before any trailing
	// whitespace) - everything past here is read directly off the scanner
	// since directive codes/messages are not tokenized normally.
	nameTok := p.tok
	name := nameTok.Value
	if name == "" {
		name = nameTok.Text
	}
	nameEnd := nameTok.End
	p.peeked = nil
	p.sc.Seek(nameEnd)

	dir := &DirectiveExpression{Name: name}
	dir.NodeKind = KindDirectiveExpression
	dir.Pos = start

	if name != "suppress" {
		p.errorAt(diagnostic.CodeUnknownDirective, "unknown directive '"+name+"'", start, nameEnd)
		_, _, end := p.sc.ScanRestOfLine()
		dir.End = end
		p.next()
		return dir
	}

	p.sc.SkipHorizontalWhitespace()
	code, _, _ := p.sc.ScanBareWord()
	dir.Code = code
	p.sc.SkipHorizontalWhitespace()
	message, _, end := p.sc.ScanRestOfLine()
	dir.Message = message
	dir.End = end
	p.next()
	return dir
}

func (p *Parser) parseDecoratorExpression() *DecoratorExpression {
	start := p.tok.Pos
	p.next() // '@'
	ref := p.parseDottedPath(false)
	dec := &DecoratorExpression{Target: ref}
	dec.NodeKind = KindDecoratorExpression
	dec.Pos = start

	if p.at(scanner.OpenParen) {
		dec.Arguments = p.parseDelimitedList(listOptions{
			open: scanner.OpenParen, close: scanner.CloseParen,
			delimiter: scanner.Comma, trailingAllowed: true,
			forbidDecorators: true, context: "decorator arguments",
		}, p.parseExpression)
	}
	dec.End = p.lastRealEnd
	return dec
}

// parseDottedPath parses `A.B.C` (and, unless allowArgs is false i.e. a
// decorator path which never takes `<...>`, an optional `<Args>` template
// argument list) into a TypeReferenceExpression.
func (p *Parser) parseDottedPath(allowArgs bool) *TypeReferenceExpression {
	start := p.tok.Pos
	var parts []string
	first := p.expectIdentifier()
	parts = append(parts, first.Name)
	for p.at(scanner.Dot) {
		p.next()
		id := p.expectIdentifier()
		parts = append(parts, id.Name)
	}
	ref := &TypeReferenceExpression{Parts: parts}
	ref.NodeKind = KindTypeReferenceExpression
	ref.Pos = start

	if allowArgs && p.at(scanner.LessThan) {
		ref.Arguments = p.parseDelimitedList(listOptions{
			open: scanner.LessThan, close: scanner.GreaterThan,
			delimiter: scanner.Comma, trailingAllowed: false,
			forbidDecorators: true, context: "template arguments",
		}, p.parseExpression)
	}
	ref.End = p.lastRealEnd
	return ref
}

// --- statements --------------------------------------------------------------

func (p *Parser) parseStatement(directives []*DirectiveExpression, decorators []*DecoratorExpression) Node {
	var node Node
	switch p.tok.Kind {
	case scanner.KeywordNamespace:
		node = p.parseNamespace(decorators)
	case scanner.KeywordUsing:
		if len(decorators) > 0 {
			p.rejectDecorators(decorators, "using statements")
		}
		node = p.parseUsing()
	case scanner.KeywordModel:
		node = p.parseModel(decorators)
	case scanner.KeywordInterface:
		node = p.parseInterface(decorators)
	case scanner.KeywordOp:
		node = p.parseOperation(decorators)
	case scanner.KeywordUnion:
		node = p.parseUnion(decorators)
	case scanner.KeywordEnum:
		node = p.parseEnum(decorators)
	case scanner.KeywordAlias:
		if len(decorators) > 0 {
			p.rejectDecorators(decorators, "alias statements")
		}
		node = p.parseAlias()
	case scanner.Semicolon:
		start := p.tok.Pos
		p.next()
		empty := &EmptyStatement{}
		empty.NodeKind = KindEmptyStatement
		empty.Pos, empty.End = start, p.lastRealEnd
		node = empty
	default:
		pos := p.tok.Pos
		p.errorAt(diagnostic.CodeMissingToken, "expected a declaration but found "+p.tok.Kind.String(), pos, p.tok.End)
		p.printable = false
		if !p.at(scanner.EOF) {
			p.next()
		}
		inv := &InvalidStatement{}
		inv.NodeKind = KindInvalidStatement
		inv.Pos, inv.End = pos, p.lastRealEnd
		inv.SetFlag(FlagHasParseError)
		node = inv
	}
	if node != nil {
		node.Base().Directives = directives
	}
	return node
}

func (p *Parser) rejectDecorators(decorators []*DecoratorExpression, where string) {
	for _, d := range decorators {
		p.errorAt(diagnostic.CodeInvalidDecoratorLocation, "decorators are not allowed on "+where, d.Pos, d.End)
	}
}

// parseNamespace implements both the dotted desugaring and the blockless
// form (spec.md §4.2).
func (p *Parser) parseNamespace(decorators []*DecoratorExpression) *NamespaceStatement {
	start := p.tok.Pos
	p.next() // 'namespace'

	var segments []*Identifier
	segments = append(segments, p.expectIdentifier())
	for p.at(scanner.Dot) {
		p.next()
		segments = append(segments, p.expectIdentifier())
	}

	blockless := p.at(scanner.Semicolon)
	var body []Node
	if blockless {
		p.next()
		for !p.at(scanner.EOF) {
			directives, decs := p.collectDirectivesAndDecorators()
			if p.at(scanner.KeywordImport) {
				p.errorAt(diagnostic.CodeInvalidDirectiveLocation, "imports must come first", p.tok.Pos, p.tok.End)
				p.parseImport()
				continue
			}
			stmt := p.parseStatement(directives, decs)
			if stmt != nil {
				body = append(body, stmt)
			}
		}
	} else {
		p.expect(scanner.OpenBrace)
		for !p.at(scanner.CloseBrace) && !p.at(scanner.EOF) {
			directives, decs := p.collectDirectivesAndDecorators()
			stmt := p.parseStatement(directives, decs)
			if stmt != nil {
				body = append(body, stmt)
			}
		}
		p.expect(scanner.CloseBrace)
	}
	end := p.lastRealEnd

	// Build innermost-out: `namespace A.B.C { body }` desugars to
	// A { B { C { body } } }, all sharing pos/end (spec.md §4.2).
	var innermost *NamespaceStatement
	for i := len(segments) - 1; i >= 0; i-- {
		ns := &NamespaceStatement{Name: segments[i], locals: NewSymbolTable(), exports: NewSymbolTable()}
		ns.NodeKind = KindNamespaceStatement
		ns.Pos, ns.End = start, end
		if i == len(segments)-1 {
			ns.Body = body
			ns.Blockless = blockless
		} else {
			ns.Body = []Node{innermost}
		}
		innermost = ns
	}
	innermost.Decorators = decorators
	return innermost
}

func (p *Parser) parseUsing() *UsingStatement {
	start := p.tok.Pos
	p.next() // 'using'
	path := p.parseDottedPath(false)
	p.expect(scanner.Semicolon)
	u := &UsingStatement{Path: path}
	u.NodeKind = KindUsingStatement
	u.Pos, u.End = start, p.lastRealEnd
	return u
}

func (p *Parser) parseTemplateParameters() []*TemplateParameterDecl {
	if !p.at(scanner.LessThan) {
		return nil
	}
	items := p.parseDelimitedList(listOptions{
		open: scanner.LessThan, close: scanner.GreaterThan,
		delimiter: scanner.Comma, trailingAllowed: false,
		forbidDecorators: true, context: "template parameters",
	}, func() Node {
		start := p.tok.Pos
		name := p.expectIdentifier()
		tp := &TemplateParameterDecl{Name: name}
		tp.NodeKind = KindTemplateParameterDecl
		tp.Pos = start
		if p.at(scanner.KeywordExtends) {
			p.next()
			tp.Constraint = p.parseExpression()
		}
		if p.at(scanner.Equals) {
			p.next()
			tp.Default = p.parseExpression()
		}
		tp.End = p.lastRealEnd
		return tp
	})
	out := make([]*TemplateParameterDecl, len(items))
	for i, it := range items {
		out[i] = it.(*TemplateParameterDecl)
	}
	return out
}

func (p *Parser) parseModel(decorators []*DecoratorExpression) *ModelStatement {
	start := p.tok.Pos
	p.next() // 'model'
	name := p.expectIdentifier()
	templateParams := p.parseTemplateParameters()

	m := &ModelStatement{Name: name, TemplateParameters: templateParams, locals: NewSymbolTable()}
	m.NodeKind = KindModelStatement
	m.Pos = start
	m.Decorators = decorators

	if p.at(scanner.KeywordExtends) {
		p.next()
		m.Extends = p.parseDottedPath(true)
	}
	if p.at(scanner.KeywordIs) {
		p.next()
		m.Is = p.parseDottedPath(true)
	}

	m.Properties = p.parseModelBody()
	m.End = p.lastRealEnd
	return m
}

// parseModelBody parses the `{ ... }` body shared by ModelStatement and
// ModelExpression: a delimited list of ModelProperty / ModelSpreadProperty
// entries.
func (p *Parser) parseModelBody() []Node {
	return p.parseDelimitedList(listOptions{
		open: scanner.OpenBrace, close: scanner.CloseBrace,
		delimiter: scanner.Comma, tolerated: scanner.Semicolon,
		trailingAllowed: true, context: "model body",
	}, p.parseModelMember)
}

func (p *Parser) parseModelMember() Node {
	directives, decorators := p.collectDirectivesAndDecorators()
	if p.at(scanner.Ellipsis) {
		start := p.tok.Pos
		p.next()
		target := p.parseDottedPath(true)
		spread := &ModelSpreadProperty{Target: target}
		spread.NodeKind = KindModelSpreadProperty
		spread.Pos, spread.End = start, p.lastRealEnd
		spread.Directives = directives
		if len(decorators) > 0 {
			p.rejectDecorators(decorators, "spread properties")
		}
		return spread
	}
	start := p.tok.Pos
	name := p.expectIdentifier()
	optional := false
	if p.at(scanner.Question) {
		optional = true
		p.next()
	}
	p.expect(scanner.Colon)
	value := p.parseExpression()
	var def Node
	if p.at(scanner.Equals) {
		p.next()
		def = p.parseExpression()
	}
	prop := &ModelProperty{Name: name.Name, Optional: optional, Value: value, Default: def}
	prop.NodeKind = KindModelProperty
	prop.Pos, prop.End = start, p.lastRealEnd
	prop.Directives = directives
	prop.Decorators = decorators
	return prop
}

func (p *Parser) parseInterface(decorators []*DecoratorExpression) *InterfaceStatement {
	start := p.tok.Pos
	p.next() // 'interface'
	name := p.expectIdentifier()
	templateParams := p.parseTemplateParameters()

	iface := &InterfaceStatement{Name: name, TemplateParameters: templateParams, locals: NewSymbolTable()}
	iface.NodeKind = KindInterfaceStatement
	iface.Pos = start
	iface.Decorators = decorators

	if p.at(scanner.KeywordExtends) {
		p.next()
		iface.Mixes = append(iface.Mixes, p.parseDottedPath(true))
		for p.at(scanner.Comma) {
			p.next()
			iface.Mixes = append(iface.Mixes, p.parseDottedPath(true))
		}
	}

	p.expect(scanner.OpenBrace)
	for !p.at(scanner.CloseBrace) && !p.at(scanner.EOF) {
		stallPos := p.tok.Pos
		directives, decs := p.collectDirectivesAndDecorators()
		if p.at(scanner.KeywordOp) {
			op := p.parseOperation(decs)
			op.Directives = directives
			iface.Operations = append(iface.Operations, op)
		} else {
			p.errorAt(diagnostic.CodeMissingToken, "expected an operation", p.tok.Pos, p.tok.End)
			if p.tok.Pos == stallPos && !p.at(scanner.EOF) {
				p.next()
			}
		}
		if p.at(scanner.Semicolon) || p.at(scanner.Comma) {
			p.next()
		}
	}
	p.expect(scanner.CloseBrace)
	iface.End = p.lastRealEnd
	return iface
}

func (p *Parser) parseOperation(decorators []*DecoratorExpression) *OperationStatement {
	start := p.tok.Pos
	p.next() // 'op'
	name := p.expectIdentifier()

	op := &OperationStatement{Name: name}
	op.NodeKind = KindOperationStatement
	op.Pos = start
	op.Decorators = decorators

	paramsStart := p.tok.Pos
	props := p.parseDelimitedList(listOptions{
		open: scanner.OpenParen, close: scanner.CloseParen,
		delimiter: scanner.Comma, trailingAllowed: true,
		context: "operation parameters",
	}, p.parseModelMember)
	params := &ModelExpression{Properties: props, locals: NewSymbolTable()}
	params.NodeKind = KindModelExpression
	params.Pos, params.End = paramsStart, p.lastRealEnd
	op.Parameters = params

	p.expect(scanner.Colon)
	op.ReturnType = p.parseExpression()
	p.expect(scanner.Semicolon)
	op.End = p.lastRealEnd
	return op
}

func (p *Parser) parseUnion(decorators []*DecoratorExpression) *UnionStatement {
	start := p.tok.Pos
	p.next() // 'union'
	name := p.expectIdentifier()
	templateParams := p.parseTemplateParameters()

	items := p.parseDelimitedList(listOptions{
		open: scanner.OpenBrace, close: scanner.CloseBrace,
		delimiter: scanner.Comma, trailingAllowed: true,
		context: "union body",
	}, func() Node {
		vstart := p.tok.Pos
		var vname string
		if p.at(scanner.Identifier) {
			id := p.expectIdentifier()
			vname = id.Name
			p.expect(scanner.Colon)
		}
		value := p.parseExpression()
		v := &UnionVariant{Name: vname, Value: value}
		v.NodeKind = KindUnionVariant
		v.Pos, v.End = vstart, p.lastRealEnd
		return v
	})
	variants := make([]*UnionVariant, len(items))
	for i, it := range items {
		variants[i] = it.(*UnionVariant)
	}

	u := &UnionStatement{Name: name, TemplateParameters: templateParams, Variants: variants, locals: NewSymbolTable()}
	u.NodeKind = KindUnionStatement
	u.Pos, u.End = start, p.lastRealEnd
	u.Decorators = decorators
	return u
}

func (p *Parser) parseEnum(decorators []*DecoratorExpression) *EnumStatement {
	start := p.tok.Pos
	p.next() // 'enum'
	name := p.expectIdentifier()

	items := p.parseDelimitedList(listOptions{
		open: scanner.OpenBrace, close: scanner.CloseBrace,
		delimiter: scanner.Comma, trailingAllowed: true,
		context: "enum body",
	}, func() Node {
		mstart := p.tok.Pos
		mdirectives, mdecs := p.collectDirectivesAndDecorators()
		mname := p.expectIdentifier()
		var value Node
		if p.at(scanner.Colon) {
			p.next()
			value = p.parseExpression()
		}
		m := &EnumMember{Name: mname.Name, Value: value}
		m.NodeKind = KindEnumMember
		m.Pos, m.End = mstart, p.lastRealEnd
		m.Directives = mdirectives
		m.Decorators = mdecs
		return m
	})
	members := make([]*EnumMember, len(items))
	for i, it := range items {
		members[i] = it.(*EnumMember)
	}

	e := &EnumStatement{Name: name, Members: members}
	e.NodeKind = KindEnumStatement
	e.Pos, e.End = start, p.lastRealEnd
	e.Decorators = decorators
	return e
}

func (p *Parser) parseAlias() *AliasStatement {
	start := p.tok.Pos
	p.next() // 'alias'
	name := p.expectIdentifier()
	templateParams := p.parseTemplateParameters()
	p.expect(scanner.Equals)
	value := p.parseExpression()
	p.expect(scanner.Semicolon)

	a := &AliasStatement{Name: name, TemplateParameters: templateParams, Value: value, locals: NewSymbolTable()}
	a.NodeKind = KindAliasStatement
	a.Pos, a.End = start, p.lastRealEnd
	return a
}

// --- expressions -------------------------------------------------------------
//
// Precedence low to high (spec.md §4.2): union (|) -> intersection (&) ->
// postfix array suffix ([]) -> primary.

func (p *Parser) parseExpression() Node { return p.parseUnionExpr() }

func (p *Parser) parseUnionExpr() Node {
	first := p.parseIntersectionExpr()
	if !p.at(scanner.Bar) {
		return first
	}
	options := []Node{first}
	for p.at(scanner.Bar) {
		p.next()
		options = append(options, p.parseIntersectionExpr())
	}
	u := &UnionExpression{Options: options}
	u.NodeKind = KindUnionExpression
	u.Pos, u.End = first.Base().Pos, p.lastRealEnd
	return u
}

func (p *Parser) parseIntersectionExpr() Node {
	first := p.parseArraySuffixExpr()
	if !p.at(scanner.Amp) {
		return first
	}
	operands := []Node{first}
	for p.at(scanner.Amp) {
		p.next()
		operands = append(operands, p.parseArraySuffixExpr())
	}
	i := &IntersectionExpression{Operands: operands}
	i.NodeKind = KindIntersectionExpression
	i.Pos, i.End = first.Base().Pos, p.lastRealEnd
	return i
}

func (p *Parser) parseArraySuffixExpr() Node {
	expr := p.parsePrimaryExpr()
	for p.at(scanner.OpenBracket) {
		start := expr.Base().Pos
		p.next()
		p.expect(scanner.CloseBracket)
		arr := &ArrayExpression{Element: expr}
		arr.NodeKind = KindArrayExpression
		arr.Pos, arr.End = start, p.lastRealEnd
		expr = arr
	}
	return expr
}

func (p *Parser) parsePrimaryExpr() Node {
	switch p.tok.Kind {
	case scanner.StringLiteral:
		t := p.tok
		p.next()
		lit := &StringLiteral{Value: t.Value}
		lit.NodeKind = KindStringLiteral
		lit.Pos, lit.End = t.Pos, t.End
		return lit
	case scanner.NumericLiteral:
		t := p.tok
		p.next()
		value, err := strconv.ParseFloat(t.Text, 64)
		invariant.ExpectNoError(err, "scanner-produced numeric literal text must parse")
		lit := &NumericLiteral{Text: t.Text, Value: value}
		lit.NodeKind = KindNumericLiteral
		lit.Pos, lit.End = t.Pos, t.End
		return lit
	case scanner.KeywordTrue, scanner.KeywordFalse:
		t := p.tok
		p.next()
		lit := &BooleanLiteral{Value: t.Kind == scanner.KeywordTrue}
		lit.NodeKind = KindBooleanLiteral
		lit.Pos, lit.End = t.Pos, t.End
		return lit
	case scanner.OpenBrace:
		return p.parseModelExpression()
	case scanner.OpenBracket:
		return p.parseTupleExpression()
	case scanner.OpenParen:
		p.next()
		inner := p.parseExpression()
		p.expect(scanner.CloseParen)
		return inner
	case scanner.Identifier:
		return p.parseDottedPath(true)
	default:
		pos := p.tok.Pos
		p.errorAt(diagnostic.CodeMissingToken, "expected an expression but found "+p.tok.Kind.String(), pos, p.tok.End)
		p.printable = false
		if !p.at(scanner.EOF) {
			p.next()
		}
		return p.syntheticIdentifier(pos, pos)
	}
}

func (p *Parser) parseModelExpression() *ModelExpression {
	start := p.tok.Pos
	props := p.parseModelBody()
	m := &ModelExpression{Properties: props, locals: NewSymbolTable()}
	m.NodeKind = KindModelExpression
	m.Pos, m.End = start, p.lastRealEnd
	return m
}

func (p *Parser) parseTupleExpression() *TupleExpression {
	start := p.tok.Pos
	elems := p.parseDelimitedList(listOptions{
		open: scanner.OpenBracket, close: scanner.CloseBracket,
		delimiter: scanner.Comma, trailingAllowed: true,
		forbidDecorators: true, context: "tuple",
	}, p.parseExpression)
	t := &TupleExpression{Elements: elems}
	t.NodeKind = KindTupleExpression
	t.Pos, t.End = start, p.lastRealEnd
	return t
}

