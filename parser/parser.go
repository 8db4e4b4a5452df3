// Package parser turns a token stream into an Algorithm: a recursive-
// descent parser with a precedence-climbing expression grammar, mirroring
// the teacher's Parser in shape (tokens + position, peek/previous/advance/
// consume helpers) while producing adl's line-and-label grammar instead of
// Nilan's C-like statements.
//
// adl has no newline token: a FileLine's boundary is never detected by
// scanning rows, only by each production being self-delimiting — a
// one-line form (L{...}, P{...}, SP name{...}, return, !, or a bare label
// jump) ends exactly where its fixed grammar says it does, and a run of
// simple statements ends exactly where the next ';' fails to appear.
package parser

import (
	"fmt"
	"strings"

	"adl/ast"
	"adl/lexer"
	"adl/token"
)

// Parser consumes a fixed token slice (as produced by lexer.Scan) with
// backtracking-free, single-token lookahead (plus one extra token of
// lookahead to disambiguate a bare label jump from the start of a simple
// statement).
type Parser struct {
	tokens   []lexer.Located
	position int
}

// New constructs a Parser over an already-scanned token stream.
func New(tokens []lexer.Located) *Parser {
	return &Parser{tokens: tokens}
}

// Parse lexes src and parses it into an Algorithm in one step.
func Parse(src string) (ast.Algorithm, error) {
	toks, err := lexer.New(src).Scan()
	if err != nil {
		if lerr, ok := err.(lexer.Error); ok {
			return ast.Algorithm{}, SyntaxError{Kind: EmbeddedLexError, Loc: lerr.Loc, Message: "lexing failed", Cause: lerr}
		}
		return ast.Algorithm{}, err
	}
	return New(toks).ParseAlgorithm()
}

// ParseAlgorithm consumes every line up to EOF.
func (p *Parser) ParseAlgorithm() (ast.Algorithm, error) {
	var lines []ast.Located[ast.FileLine]
	for !p.isAtEnd() {
		line, err := p.parseLine()
		if err != nil {
			return ast.Algorithm{}, err
		}
		lines = append(lines, line)
	}
	return ast.Algorithm{Lines: lines}, nil
}

func (p *Parser) peek() lexer.Located { return p.tokens[p.position] }

func (p *Parser) peekAt(n int) lexer.Located {
	idx := p.position + n
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) previous() lexer.Located { return p.tokens[p.position-1] }

func (p *Parser) isAtEnd() bool { return p.peek().Tok.Kind == token.EOF }

func (p *Parser) advance() lexer.Located {
	if !p.isAtEnd() {
		p.position++
	}
	return p.previous()
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peek().Tok.Kind == kind
}

func (p *Parser) checkNext(kind token.Kind) bool {
	return p.peekAt(1).Tok.Kind == kind
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) checkAny(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			return true
		}
	}
	return false
}

func (p *Parser) consume(kind token.Kind, message string) (lexer.Located, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	cur := p.peek()
	return lexer.Located{}, SyntaxError{
		Kind:    UnexpectedToken,
		Loc:     cur.Start,
		Message: fmt.Sprintf("%s (got %s %q)", message, cur.Tok.Kind, cur.Tok.Lexeme),
	}
}

// --- lines ---

func (p *Parser) parseLine() (ast.Located[ast.FileLine], error) {
	left := p.peek().Start

	labels, err := p.parseLabels()
	if err != nil {
		return ast.Located[ast.FileLine]{}, err
	}

	stmts, err := p.parseStatements()
	if err != nil {
		return ast.Located[ast.FileLine]{}, err
	}

	right := p.previous().End
	return ast.New(ast.FileLine{Labels: labels, Statements: stmts}, left, right), nil
}

// parseLabels consumes zero or more `IDENTIFIER ':'` prefixes.
func (p *Parser) parseLabels() ([]string, error) {
	var labels []string
	for p.check(token.IDENTIFIER) && p.checkNext(token.COLON) {
		name := p.advance().Tok.Lexeme
		if _, err := p.consume(token.COLON, "expected ':' after label"); err != nil {
			return nil, err
		}
		labels = append(labels, name)
	}
	return labels, nil
}

// startsSimpleStatement reports whether the token after the current
// IDENTIFIER continues it as the start of an assign/send/exchange/call,
// rather than the identifier standing alone as a label jump.
func (p *Parser) startsSimpleStatement() bool {
	switch p.peekAt(1).Tok.Kind {
	case token.ASSIGN, token.SEND, token.EXCHANGE, token.LBRACE:
		return true
	default:
		return false
	}
}

func (p *Parser) parseStatements() (ast.Located[ast.Statements], error) {
	switch {
	case p.check(token.LOOP):
		return p.parseLoop()
	case p.check(token.PRED):
		return p.parsePredicate()
	case p.check(token.SUBPRG):
		return p.parseSubProgram()
	case p.check(token.RETURN):
		tok := p.advance()
		return wrapOneLine(ast.Return{}, tok.Start, tok.End), nil
	case p.check(token.BANG):
		tok := p.advance()
		return wrapOneLine(ast.Exit{}, tok.Start, tok.End), nil
	case p.check(token.IDENTIFIER) && p.peek().Tok.Lexeme == "import":
		return p.parseSimpleStatementsLine()
	case p.check(token.IDENTIFIER) && !p.startsSimpleStatement():
		tok := p.advance()
		return wrapOneLine(ast.UnconditionalJump{Label: tok.Tok.Lexeme}, tok.Start, tok.End), nil
	default:
		return p.parseSimpleStatementsLine()
	}
}

func wrapOneLine(stmt ast.OneLineStatement, left, right token.Location) ast.Located[ast.Statements] {
	return ast.New[ast.Statements](ast.OneLineStatements{Stmt: ast.New(stmt, left, right)}, left, right)
}

// optionalLabelTo consumes `@ label`, the marker for Loop's and
// SubProgram's optional label_to. Without a newline token to delimit a
// line, a bare trailing identifier would be indistinguishable from the
// next line's own label or the start of its first statement — '@' makes
// the presence of label_to unambiguous instead of guessing from
// lookahead.
func (p *Parser) optionalLabelTo() (*string, error) {
	if !p.match(token.AT) {
		return nil, nil
	}
	tok, err := p.consume(token.IDENTIFIER, "expected a label name after '@'")
	if err != nil {
		return nil, err
	}
	lt := tok.Tok.Lexeme
	return &lt, nil
}

// --- one-line forms ---

func (p *Parser) parseLoop() (ast.Located[ast.Statements], error) {
	left := p.peek().Start
	p.advance() // 'L'
	if _, err := p.consume(token.LBRACE, "expected '{' after L"); err != nil {
		return ast.Located[ast.Statements]{}, err
	}

	initial, err := p.parseExpression()
	if err != nil {
		return ast.Located[ast.Statements]{}, err
	}
	if _, err := p.consume(token.COMMA, "expected ',' after loop initial value"); err != nil {
		return ast.Located[ast.Statements]{}, err
	}
	step, err := p.parseExpression()
	if err != nil {
		return ast.Located[ast.Statements]{}, err
	}
	if _, err := p.consume(token.COMMA, "expected ',' after loop step"); err != nil {
		return ast.Located[ast.Statements]{}, err
	}
	lastOrCond, err := p.parseExpression()
	if err != nil {
		return ast.Located[ast.Statements]{}, err
	}
	if _, err := p.consume(token.SEND, "expected '=>' before loop iterator name"); err != nil {
		return ast.Located[ast.Statements]{}, err
	}
	iterator, err := p.consume(token.IDENTIFIER, "expected an iterator name after '=>'")
	if err != nil {
		return ast.Located[ast.Statements]{}, err
	}
	if _, err := p.consume(token.RBRACE, "expected '}' to close L{...}"); err != nil {
		return ast.Located[ast.Statements]{}, err
	}
	labelUntil, err := p.consume(token.IDENTIFIER, "expected a label_until after L{...}")
	if err != nil {
		return ast.Located[ast.Statements]{}, err
	}
	labelTo, err := p.optionalLabelTo()
	if err != nil {
		return ast.Located[ast.Statements]{}, err
	}

	right := p.previous().End
	loop := ast.Loop{
		Initial:    initial,
		Step:       step,
		LastOrCond: lastOrCond,
		Iterator:   iterator.Tok,
		LabelUntil: labelUntil.Tok.Lexeme,
		LabelTo:    labelTo,
	}
	return wrapOneLine(loop, left, right), nil
}

func (p *Parser) parsePredicate() (ast.Located[ast.Statements], error) {
	left := p.peek().Start
	p.advance() // 'P'
	if _, err := p.consume(token.LBRACE, "expected '{' after P"); err != nil {
		return ast.Located[ast.Statements]{}, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return ast.Located[ast.Statements]{}, err
	}
	if _, err := p.consume(token.RBRACE, "expected '}' to close P{...}"); err != nil {
		return ast.Located[ast.Statements]{}, err
	}
	ifTrue, err := p.parseExpression()
	if err != nil {
		return ast.Located[ast.Statements]{}, err
	}
	if _, err := p.consume(token.PIPE, "expected '|' between predicate branches"); err != nil {
		return ast.Located[ast.Statements]{}, err
	}
	ifFalse, err := p.parseExpression()
	if err != nil {
		return ast.Located[ast.Statements]{}, err
	}
	right := p.previous().End
	return wrapOneLine(ast.Predicate{Cond: cond, IfTrue: ifTrue, IfFalse: ifFalse}, left, right), nil
}

func (p *Parser) parseSubProgram() (ast.Located[ast.Statements], error) {
	left := p.peek().Start
	p.advance() // 'SP'

	nameTok, err := p.consume(token.IDENTIFIER, "expected a subprogram name after SP")
	if err != nil {
		return ast.Located[ast.Statements]{}, err
	}
	if p.match(token.DOUBLE_COLON) {
		// alias::name — the alias is parsed and discarded; adl has no
		// module system in scope, so only the final identifier matters.
		nameTok, err = p.consume(token.IDENTIFIER, "expected a subprogram name after '::'")
		if err != nil {
			return ast.Located[ast.Statements]{}, err
		}
	}

	if _, err := p.consume(token.LBRACE, "expected '{' after the subprogram name"); err != nil {
		return ast.Located[ast.Statements]{}, err
	}
	args, err := p.parseExpressionList(token.RBRACE)
	if err != nil {
		return ast.Located[ast.Statements]{}, err
	}
	if _, err := p.consume(token.RBRACE, "expected '}' to close subprogram call arguments"); err != nil {
		return ast.Located[ast.Statements]{}, err
	}

	labelTo, err := p.optionalLabelTo()
	if err != nil {
		return ast.Located[ast.Statements]{}, err
	}

	right := p.previous().End
	return wrapOneLine(ast.SubProgram{Name: nameTok.Tok, Args: args, LabelTo: labelTo}, left, right), nil
}

// --- simple statements ---

func (p *Parser) parseSimpleStatementsLine() (ast.Located[ast.Statements], error) {
	left := p.peek().Start

	stmt, err := p.parseSimpleStatement()
	if err != nil {
		return ast.Located[ast.Statements]{}, err
	}
	stmts := []ast.Located[ast.SimpleStatement]{stmt}

	for p.match(token.SEMICOLON) {
		next, err := p.parseSimpleStatement()
		if err != nil {
			return ast.Located[ast.Statements]{}, err
		}
		stmts = append(stmts, next)
	}

	right := p.previous().End
	return ast.New[ast.Statements](ast.SimpleStatements{Stmts: stmts}, left, right), nil
}

func (p *Parser) parseSimpleStatement() (ast.Located[ast.SimpleStatement], error) {
	left := p.peek().Start

	if p.check(token.DEL) {
		p.advance()
		rhs, err := p.parseExpression()
		if err != nil {
			return ast.Located[ast.SimpleStatement]{}, err
		}
		return ast.New[ast.SimpleStatement](ast.Del{Rhs: rhs}, left, p.previous().End), nil
	}

	if p.check(token.IDENTIFIER) && p.peek().Tok.Lexeme == "import" {
		return p.parseImport(left)
	}

	// `let`/`const` are optional declaration-style prefixes. adl draws no
	// semantic distinction between a declaring and a plain assignment —
	// both end up an Assign node — so the keyword is simply consumed.
	p.match(token.LET, token.CONST)

	lhs, err := p.parseExpression()
	if err != nil {
		return ast.Located[ast.SimpleStatement]{}, err
	}

	switch {
	case p.check(token.ASSIGN):
		p.advance()
		rhs, err := p.parseExpression()
		if err != nil {
			return ast.Located[ast.SimpleStatement]{}, err
		}
		return ast.New[ast.SimpleStatement](ast.Assign{Lhs: lhs, Rhs: rhs}, left, p.previous().End), nil
	case p.check(token.SEND):
		// surface syntax is `rhs => lhs`: the expression already parsed
		// is the rhs, and what follows '=>' is the lhs address.
		p.advance()
		lhsAddr, err := p.parseExpression()
		if err != nil {
			return ast.Located[ast.SimpleStatement]{}, err
		}
		return ast.New[ast.SimpleStatement](ast.Send{Lhs: lhsAddr, Rhs: lhs}, left, p.previous().End), nil
	case p.check(token.EXCHANGE):
		p.advance()
		rhs, err := p.parseExpression()
		if err != nil {
			return ast.Located[ast.SimpleStatement]{}, err
		}
		return ast.New[ast.SimpleStatement](ast.Exchange{Lhs: lhs, Rhs: rhs}, left, p.previous().End), nil
	default:
		return ast.New[ast.SimpleStatement](ast.ExpressionStmt{Expr: lhs}, left, p.previous().End), nil
	}
}

func (p *Parser) parseImport(left token.Location) (ast.Located[ast.SimpleStatement], error) {
	p.advance() // the "import" identifier
	var parts []string
	first, err := p.consume(token.IDENTIFIER, "expected a module path after 'import'")
	if err != nil {
		return ast.Located[ast.SimpleStatement]{}, err
	}
	parts = append(parts, first.Tok.Lexeme)
	for p.match(token.DOT) {
		next, err := p.consume(token.IDENTIFIER, "expected an identifier after '.' in an import path")
		if err != nil {
			return ast.Located[ast.SimpleStatement]{}, err
		}
		parts = append(parts, next.Tok.Lexeme)
	}
	return ast.New[ast.SimpleStatement](ast.Import{Path: strings.Join(parts, ".")}, left, p.previous().End), nil
}

// --- expressions: or < and < comparison < term < factor < unary < primary ---

func (p *Parser) parseExpression() (ast.Located[ast.Expression], error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Located[ast.Expression], error) {
	left, err := p.parseAnd()
	if err != nil {
		return ast.Located[ast.Expression]{}, err
	}
	for p.check(token.OR) {
		op := p.advance().Tok
		right, err := p.parseAnd()
		if err != nil {
			return ast.Located[ast.Expression]{}, err
		}
		left = ast.New[ast.Expression](ast.BinaryOp{Left: left, Operator: op, Right: right}, left.Left, right.Right)
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Located[ast.Expression], error) {
	left, err := p.parseComparison()
	if err != nil {
		return ast.Located[ast.Expression]{}, err
	}
	for p.check(token.AND) {
		op := p.advance().Tok
		right, err := p.parseComparison()
		if err != nil {
			return ast.Located[ast.Expression]{}, err
		}
		left = ast.New[ast.Expression](ast.BinaryOp{Left: left, Operator: op, Right: right}, left.Left, right.Right)
	}
	return left, nil
}

var comparisonKinds = []token.Kind{token.EQUAL_EQUAL, token.NOT_EQUAL, token.GREATER, token.LESS}

func (p *Parser) parseComparison() (ast.Located[ast.Expression], error) {
	left, err := p.parseTerm()
	if err != nil {
		return ast.Located[ast.Expression]{}, err
	}
	for p.checkAny(comparisonKinds...) {
		op := p.advance().Tok
		right, err := p.parseTerm()
		if err != nil {
			return ast.Located[ast.Expression]{}, err
		}
		left = ast.New[ast.Expression](ast.BinaryOp{Left: left, Operator: op, Right: right}, left.Left, right.Right)
	}
	return left, nil
}

var termKinds = []token.Kind{token.PLUS, token.MINUS}

func (p *Parser) parseTerm() (ast.Located[ast.Expression], error) {
	left, err := p.parseFactor()
	if err != nil {
		return ast.Located[ast.Expression]{}, err
	}
	for p.checkAny(termKinds...) {
		op := p.advance().Tok
		right, err := p.parseFactor()
		if err != nil {
			return ast.Located[ast.Expression]{}, err
		}
		left = ast.New[ast.Expression](ast.BinaryOp{Left: left, Operator: op, Right: right}, left.Left, right.Right)
	}
	return left, nil
}

var factorKinds = []token.Kind{token.STAR, token.SLASH, token.PERCENT}

func (p *Parser) parseFactor() (ast.Located[ast.Expression], error) {
	left, err := p.parseUnary()
	if err != nil {
		return ast.Located[ast.Expression]{}, err
	}
	for p.checkAny(factorKinds...) {
		op := p.advance().Tok
		right, err := p.parseUnary()
		if err != nil {
			return ast.Located[ast.Expression]{}, err
		}
		left = ast.New[ast.Expression](ast.BinaryOp{Left: left, Operator: op, Right: right}, left.Left, right.Right)
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Located[ast.Expression], error) {
	switch {
	case p.check(token.APOSTROPHE), p.check(token.NOT), p.check(token.MINUS):
		opTok := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return ast.Located[ast.Expression]{}, err
		}
		return ast.New[ast.Expression](ast.UnaryOp{Operator: opTok.Tok, Right: right}, opTok.Start, right.Right), nil
	case p.check(token.MDEREF):
		opTok := p.advance()
		if _, err := p.consume(token.LBRACE, "expected '{' after D"); err != nil {
			return ast.Located[ast.Expression]{}, err
		}
		inner, err := p.parseExpression()
		if err != nil {
			return ast.Located[ast.Expression]{}, err
		}
		if _, err := p.consume(token.COMMA, "expected ',' between D{expr, level}"); err != nil {
			return ast.Located[ast.Expression]{}, err
		}
		level, err := p.parseExpression()
		if err != nil {
			return ast.Located[ast.Expression]{}, err
		}
		closeBrace, err := p.consume(token.RBRACE, "expected '}' to close D{...}")
		if err != nil {
			return ast.Located[ast.Expression]{}, err
		}
		return ast.New[ast.Expression](ast.UnaryOp{Operator: opTok.Tok, Right: inner, Level: &level}, opTok.Start, closeBrace.End), nil
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() (ast.Located[ast.Expression], error) {
	cur := p.peek()
	switch cur.Tok.Kind {
	case token.NULL:
		p.advance()
		return ast.New[ast.Expression](ast.NullLiteral{}, cur.Start, cur.End), nil
	case token.TRUE:
		p.advance()
		return ast.New[ast.Expression](ast.BoolLiteral{Value: true}, cur.Start, cur.End), nil
	case token.FALSE:
		p.advance()
		return ast.New[ast.Expression](ast.BoolLiteral{Value: false}, cur.Start, cur.End), nil
	case token.INT:
		p.advance()
		return ast.New[ast.Expression](ast.IntLiteral{Value: cur.Tok.Literal.(int64)}, cur.Start, cur.End), nil
	case token.FLOAT:
		p.advance()
		return ast.New[ast.Expression](ast.FloatLiteral{Value: cur.Tok.Literal.(float64)}, cur.Start, cur.End), nil
	case token.STRING:
		p.advance()
		return ast.New[ast.Expression](ast.StringLiteral{Value: cur.Tok.Literal.(string)}, cur.Start, cur.End), nil
	case token.LBRACKET:
		return p.parseListLiteral()
	case token.LPAREN:
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return ast.Located[ast.Expression]{}, err
		}
		closeParen, err := p.consume(token.RPAREN, "expected ')' to close a grouped expression")
		if err != nil {
			return ast.Located[ast.Expression]{}, err
		}
		return ast.New[ast.Expression](inner.Node, cur.Start, closeParen.End), nil
	case token.IDENTIFIER:
		p.advance()
		if p.check(token.LBRACE) {
			return p.parseCall(cur)
		}
		return ast.New[ast.Expression](ast.Var{Name: cur.Tok}, cur.Start, cur.End), nil
	}
	return ast.Located[ast.Expression]{}, SyntaxError{
		Kind:    UnrecognisedToken,
		Loc:     cur.Start,
		Message: fmt.Sprintf("unexpected token %s %q in expression", cur.Tok.Kind, cur.Tok.Lexeme),
	}
}

func (p *Parser) parseListLiteral() (ast.Located[ast.Expression], error) {
	open := p.advance() // '['
	elements, err := p.parseExpressionList(token.RBRACKET)
	if err != nil {
		return ast.Located[ast.Expression]{}, err
	}
	closeBracket, err := p.consume(token.RBRACKET, "expected ']' to close a list literal")
	if err != nil {
		return ast.Located[ast.Expression]{}, err
	}
	return ast.New[ast.Expression](ast.ListLiteral{Elements: elements}, open.Start, closeBracket.End), nil
}

func (p *Parser) parseCall(calleeTok lexer.Located) (ast.Located[ast.Expression], error) {
	p.advance() // '{'
	args, err := p.parseExpressionList(token.RBRACE)
	if err != nil {
		return ast.Located[ast.Expression]{}, err
	}
	closeBrace, err := p.consume(token.RBRACE, "expected '}' to close call arguments")
	if err != nil {
		return ast.Located[ast.Expression]{}, err
	}
	return ast.New[ast.Expression](ast.Call{Callee: calleeTok.Tok, Args: args}, calleeTok.Start, closeBrace.End), nil
}

// parseExpressionList parses a comma-separated list of expressions,
// stopping (without consuming) at terminator. Used for call/subprogram
// arguments and list literals, all of which allow an empty list.
func (p *Parser) parseExpressionList(terminator token.Kind) ([]ast.Located[ast.Expression], error) {
	var elements []ast.Located[ast.Expression]
	if p.check(terminator) {
		return elements, nil
	}
	for {
		elem, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		elements = append(elements, elem)
		if !p.match(token.COMMA) {
			break
		}
	}
	return elements, nil
}
