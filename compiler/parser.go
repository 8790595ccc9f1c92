package compiler

// ---------------------------------------------------------------------------
// Parser: Pratt (operator-precedence) parser for Weft expressions
// ---------------------------------------------------------------------------

// Binding powers. Unary minus binds tighter than any binary operator, so
// "-2+3" parses as "(-2)+3".
const (
	bpAdditive       = 10  // + -
	bpMultiplicative = 20  // * /
	bpUnary          = 100 // prefix -
)

// bindingPower returns the infix binding power of a token, or 0 if the token
// is not an infix operator.
func bindingPower(t TokenType) int {
	switch t {
	case TokenPlus, TokenMinus:
		return bpAdditive
	case TokenStar, TokenSlash:
		return bpMultiplicative
	}
	return 0
}

// Parser parses Weft source code into an AST. It keeps exactly one token of
// lookahead and stops at the first error.
type Parser struct {
	lexer *Lexer
	cur   Token
	err   error
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	p.advance()
	return p
}

// advance replaces the lookahead token by pulling the next token from the
// lexer. A lexer error token becomes the parser's fatal error.
func (p *Parser) advance() {
	p.cur = p.lexer.NextToken()
	if p.cur.Type == TokenError && p.err == nil {
		p.err = &LexError{
			Kind:   LexUnexpectedCharacter,
			Char:   p.cur.Literal,
			Offset: p.cur.Pos.Offset,
		}
	}
}

// errorf records and returns a fatal parse error at the current token.
func (p *Parser) errorf(msg string) error {
	err := &ParseError{
		Kind:   ParseUnexpectedToken,
		Token:  p.cur,
		Offset: p.lexer.Offset(),
		Msg:    msg,
	}
	if p.err == nil {
		p.err = err
	}
	return p.err
}

// ParseExpression parses one expression at the given minimum binding power,
// consuming exactly the tokens belonging to it and leaving the next
// unconsumed token as lookahead.
func (p *Parser) ParseExpression(minBP int) (Expr, error) {
	expr, err := p.expr(minBP)
	if err != nil {
		return nil, err
	}
	return expr, nil
}

// ParseProgram parses a sequence of statements (expressions, assignments and
// function definitions, each optionally ';'-terminated) until end of input.
func (p *Parser) ParseProgram() ([]Expr, error) {
	var stmts []Expr
	for p.cur.Type != TokenEOF {
		if p.err != nil {
			return nil, p.err
		}
		stmt, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if p.cur.Type == TokenSemicolon {
			p.advance()
		}
	}
	return stmts, nil
}

// ParseStatement parses one statement: a function definition, an assignment
// "name = expr", or a bare expression.
func (p *Parser) ParseStatement() (Expr, error) {
	if p.cur.Type == TokenFn {
		return p.parseFunction()
	}

	lhs, err := p.expr(0)
	if err != nil {
		return nil, err
	}

	if p.cur.Type == TokenAssign {
		ident, ok := lhs.(*IdentExpr)
		if !ok {
			return nil, p.errorf("invalid assignment target")
		}
		p.advance()
		value, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		return &AssignExpr{
			SpanVal: Span{Start: ident.SpanVal.Start, End: value.Span().End},
			Name:    ident.Name,
			Value:   value,
		}, nil
	}

	return lhs, nil
}

// expr is the Pratt main loop: parse a prefix expression, then fold infix
// operators while the lookahead binds at least as tightly as minBP.
func (p *Parser) expr(minBP int) (Expr, error) {
	lhs, err := p.nud()
	if err != nil {
		return nil, err
	}

	for {
		if p.err != nil {
			return nil, p.err
		}
		if p.cur.Type == TokenEOF || p.cur.Type == TokenRParen {
			break
		}
		bp := bindingPower(p.cur.Type)
		if bp == 0 || bp <= minBP {
			break
		}
		op := p.cur.Type
		p.advance()
		rhs, err := p.expr(bp)
		if err != nil {
			return nil, err
		}
		lhs = &BinaryExpr{
			SpanVal: Span{Start: lhs.Span().Start, End: rhs.Span().End},
			Left:    lhs,
			Op:      op,
			Right:   rhs,
		}
	}

	return lhs, nil
}

// nud is the null-denotation (prefix position) dispatch.
func (p *Parser) nud() (Expr, error) {
	if p.err != nil {
		return nil, p.err
	}

	tok := p.cur
	start := tok.Pos

	switch tok.Type {
	case TokenNumber:
		p.advance()
		return &NumberExpr{
			SpanVal: Span{Start: start, End: p.cur.Pos},
			Value:   tok.Value,
		}, nil

	case TokenIdentifier:
		p.advance()
		if p.cur.Type == TokenLParen {
			return p.parseCall(tok.Literal, start)
		}
		return &IdentExpr{
			SpanVal: Span{Start: start, End: p.cur.Pos},
			Name:    tok.Literal,
		}, nil

	case TokenMinus:
		p.advance()
		operand, err := p.expr(bpUnary)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{
			SpanVal: Span{Start: start, End: operand.Span().End},
			Op:      TokenMinus,
			Operand: operand,
		}, nil

	case TokenLParen:
		p.advance()
		inner, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		if p.cur.Type != TokenRParen {
			return nil, p.errorf("expected ')'")
		}
		p.advance()
		return inner, nil

	case TokenFn:
		return p.parseFunction()
	}

	return nil, p.errorf("unexpected token in prefix position")
}

// parseCall parses a call's argument list. The identifier has been consumed
// and the lookahead is '('.
func (p *Parser) parseCall(name string, start Position) (Expr, error) {
	p.advance() // consume '('

	var args []Expr
	for p.cur.Type != TokenRParen && p.cur.Type != TokenEOF {
		arg, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.cur.Type == TokenComma {
			p.advance()
		} else {
			break
		}
	}

	if p.cur.Type != TokenRParen {
		return nil, p.errorf("expected ')' after arguments")
	}
	p.advance()

	return &CallExpr{
		SpanVal: Span{Start: start, End: p.cur.Pos},
		Name:    name,
		Args:    args,
	}, nil
}

// parseFunction parses "fn name(params) { body }".
func (p *Parser) parseFunction() (Expr, error) {
	start := p.cur.Pos
	p.advance() // consume 'fn'

	if p.cur.Type != TokenIdentifier {
		return nil, p.errorf("expected function name after 'fn'")
	}
	name := p.cur.Literal
	p.advance()

	if p.cur.Type != TokenLParen {
		return nil, p.errorf("expected '(' after function name")
	}
	p.advance()

	var params []string
	for p.cur.Type == TokenIdentifier {
		params = append(params, p.cur.Literal)
		p.advance()
		if p.cur.Type == TokenComma {
			p.advance()
		} else {
			break
		}
	}

	if p.cur.Type != TokenRParen {
		return nil, p.errorf("expected ')' after parameters")
	}
	p.advance()

	if p.cur.Type != TokenLBrace {
		return nil, p.errorf("expected '{' to start function body")
	}
	p.advance()

	var body []Expr
	for p.cur.Type != TokenRBrace && p.cur.Type != TokenEOF {
		stmt, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
		if p.cur.Type == TokenSemicolon {
			p.advance()
		}
	}

	if p.cur.Type != TokenRBrace {
		return nil, p.errorf("expected '}' to end function body")
	}
	p.advance()

	return &FuncExpr{
		SpanVal: Span{Start: start, End: p.cur.Pos},
		Name:    name,
		Params:  params,
		Body:    body,
	}, nil
}
