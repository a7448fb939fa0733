package parser

import (
	"strconv"

	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/diag"
	"github.com/vaislang/vais/internal/lexer"
	"github.com/vaislang/vais/internal/span"
)

// parseExpr is the entry point for expression parsing: precedence
// climbing from `implies` (lowest, right-associative) down to primary
// (highest), per spec §4.2's stated ladder. Bitwise/shift operators, which
// the ladder does not name, slot in between additive and comparison and
// between comparison and logical-and, the conventional placement.
func (p *Parser) parseExpr() ast.Expr { return p.parseImplies() }

func (p *Parser) parseImplies() ast.Expr {
	left := p.parseOrXor()
	if p.at(lexer.KW_IMPLIES) {
		p.advance()
		right := p.parseImplies() // right-associative
		return &ast.Binary{Base: ast.Base{Sp: span.Join(left.Span(), right.Span())}, Op: "implies", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseOrXor() ast.Expr {
	left := p.parseAnd()
	for p.at(lexer.OROR) || p.at(lexer.CARET) {
		op := p.advance()
		right := p.parseAnd()
		left = &ast.Binary{Base: ast.Base{Sp: span.Join(left.Span(), right.Span())}, Op: op.Text, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseBitOr()
	for p.at(lexer.ANDAND) {
		op := p.advance()
		right := p.parseBitOr()
		left = &ast.Binary{Base: ast.Base{Sp: span.Join(left.Span(), right.Span())}, Op: op.Text, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseBitOr() ast.Expr {
	left := p.parseBitAnd()
	for p.at(lexer.PIPE) {
		op := p.advance()
		right := p.parseBitAnd()
		left = &ast.Binary{Base: ast.Base{Sp: span.Join(left.Span(), right.Span())}, Op: op.Text, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseBitAnd() ast.Expr {
	left := p.parseComparison()
	for p.at(lexer.AMP) {
		op := p.advance()
		right := p.parseComparison()
		left = &ast.Binary{Base: ast.Base{Sp: span.Join(left.Span(), right.Span())}, Op: op.Text, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseComparison() ast.Expr {
	left := p.parseShift()
	for p.at(lexer.EQ) || p.at(lexer.NEQ) || p.at(lexer.LT) || p.at(lexer.GT) ||
		p.at(lexer.LTE) || p.at(lexer.GTE) || p.at(lexer.KW_IN) {
		op := p.advance()
		right := p.parseShift()
		left = &ast.Binary{Base: ast.Base{Sp: span.Join(left.Span(), right.Span())}, Op: op.Text, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseShift() ast.Expr {
	left := p.parseAdditive()
	for p.at(lexer.SHL) || p.at(lexer.SHR) {
		op := p.advance()
		right := p.parseAdditive()
		left = &ast.Binary{Base: ast.Base{Sp: span.Join(left.Span(), right.Span())}, Op: op.Text, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.at(lexer.PLUS) || p.at(lexer.MINUS) {
		op := p.advance()
		right := p.parseMultiplicative()
		left = &ast.Binary{Base: ast.Base{Sp: span.Join(left.Span(), right.Span())}, Op: op.Text, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for p.at(lexer.STAR) || p.at(lexer.SLASH) || p.at(lexer.PERCENT) {
		op := p.advance()
		right := p.parseUnary()
		left = &ast.Binary{Base: ast.Base{Sp: span.Join(left.Span(), right.Span())}, Op: op.Text, Left: left, Right: right}
	}
	return left
}

// parseUnary handles the spec's `!`/`-` unary level plus the keyword-
// prefixed effect operators (await/spawn/yield/assume/old) and the
// reference/dereference/spread sigils, all of which bind tighter than any
// binary operator and looser than postfix.
func (p *Parser) parseUnary() ast.Expr {
	start := p.cur()
	switch {
	case p.at(lexer.BANG), p.at(lexer.MINUS), p.at(lexer.TILDE):
		op := p.advance()
		operand := p.parseUnary()
		return &ast.Unary{Base: ast.Base{Sp: span.Join(tokenSpan(op), operand.Span())}, Op: op.Text, Expr: operand}
	case p.at(lexer.AMP):
		p.advance()
		mutable := p.match(lexer.KW_MUT)
		operand := p.parseUnary()
		return &ast.Reference{Base: ast.Base{Sp: span.Join(tokenSpan(start), operand.Span())}, Mutable: mutable, Expr: operand}
	case p.at(lexer.STAR):
		p.advance()
		operand := p.parseUnary()
		return &ast.Dereference{Base: ast.Base{Sp: span.Join(tokenSpan(start), operand.Span())}, Expr: operand}
	case p.at(lexer.ELLIPSIS):
		p.advance()
		operand := p.parseUnary()
		return &ast.Spread{Base: ast.Base{Sp: span.Join(tokenSpan(start), operand.Span())}, Expr: operand}
	case p.at(lexer.KW_AWAIT):
		p.advance()
		operand := p.parseUnary()
		return &ast.Await{Base: ast.Base{Sp: span.Join(tokenSpan(start), operand.Span())}, Expr: operand}
	case p.at(lexer.KW_SPAWN):
		p.advance()
		operand := p.parseUnary()
		return &ast.Spawn{Base: ast.Base{Sp: span.Join(tokenSpan(start), operand.Span())}, Expr: operand}
	case p.at(lexer.KW_YIELD):
		p.advance()
		operand := p.parseUnary()
		return &ast.Yield{Base: ast.Base{Sp: span.Join(tokenSpan(start), operand.Span())}, Expr: operand}
	case p.at(lexer.KW_ASSUME):
		p.advance()
		operand := p.parseUnary()
		return &ast.Assume{Base: ast.Base{Sp: span.Join(tokenSpan(start), operand.Span())}, Cond: operand}
	case p.at(lexer.KW_OLD):
		p.advance()
		p.expect(lexer.LPAREN, "'(' after old")
		operand := p.parseExpr()
		end := p.expect(lexer.RPAREN, "')'")
		return &ast.Old{Base: ast.Base{Sp: span.Join(tokenSpan(start), tokenSpan(end))}, Expr: operand}
	default:
		return p.parsePostfix()
	}
}

// parsePostfix handles field/method access, indexing, calls, `as` casts,
// and the `?`/`!` postfix operators, left-to-right.
func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	for {
		switch {
		case p.at(lexer.DOT):
			p.advance()
			name := p.expect(lexer.IDENT, "field or method name").Text
			if p.at(lexer.LPAREN) {
				args, end := p.parseArgList()
				expr = &ast.MethodCall{Base: ast.Base{Sp: span.Join(expr.Span(), tokenSpan(end))}, Receiver: expr, Method: name, Args: args}
			} else {
				expr = &ast.FieldAccess{Base: ast.Base{Sp: expr.Span()}, Target: expr, Field: name}
			}
		case p.at(lexer.LPAREN):
			args, end := p.parseArgList()
			expr = &ast.Call{Base: ast.Base{Sp: span.Join(expr.Span(), tokenSpan(end))}, Callee: expr, Args: args}
		case p.at(lexer.LBRACKET):
			p.advance()
			idx := p.parseExpr()
			end := p.expect(lexer.RBRACKET, "']'")
			expr = &ast.IndexAccess{Base: ast.Base{Sp: span.Join(expr.Span(), tokenSpan(end))}, Target: expr, Index: idx}
		case p.at(lexer.KW_AS):
			p.advance()
			t := p.parseType()
			expr = &ast.Cast{Base: ast.Base{Sp: span.Join(expr.Span(), t.Span())}, Expr: expr, Type: t}
		case p.at(lexer.QUESTION):
			tok := p.advance()
			expr = &ast.Try{Base: ast.Base{Sp: span.Join(expr.Span(), tokenSpan(tok))}, Expr: expr}
		case p.at(lexer.BANG):
			tok := p.advance()
			expr = &ast.Unwrap{Base: ast.Base{Sp: span.Join(expr.Span(), tokenSpan(tok))}, Expr: expr}
		default:
			return expr
		}
	}
}

func (p *Parser) parseArgList() ([]ast.Expr, lexer.Token) {
	p.advance() // '('
	var args []ast.Expr
	if !p.at(lexer.RPAREN) {
		args = append(args, p.parseExpr())
		for p.match(lexer.COMMA) {
			if p.at(lexer.RPAREN) {
				break
			}
			args = append(args, p.parseExpr())
		}
	}
	end := p.expect(lexer.RPAREN, "')'")
	return args, end
}

func (p *Parser) parseLiteral() ast.Expr {
	t := p.advance()
	sp := tokenSpan(t)
	switch t.Kind {
	case lexer.INT:
		v, _ := strconv.ParseInt(t.Text, 0, 64)
		return &ast.IntLit{Base: ast.Base{Sp: sp}, Value: v, Text: t.Text}
	case lexer.FLOAT:
		v, _ := strconv.ParseFloat(t.Text, 64)
		return &ast.FloatLit{Base: ast.Base{Sp: sp}, Value: v, Text: t.Text}
	case lexer.STRING:
		return &ast.StringLit{Base: ast.Base{Sp: sp}, Value: t.Text}
	case lexer.KW_TRUE:
		return &ast.BoolLit{Base: ast.Base{Sp: sp}, Value: true}
	case lexer.KW_FALSE:
		return &ast.BoolLit{Base: ast.Base{Sp: sp}, Value: false}
	case lexer.REGEX:
		return &ast.RegexLit{Base: ast.Base{Sp: sp}, Pattern: t.Text}
	case lexer.DURATION:
		return &ast.DurationLit{Base: ast.Base{Sp: sp}, Text: t.Text}
	case lexer.SIZE:
		return &ast.SizeLit{Base: ast.Base{Sp: sp}, Text: t.Text}
	default:
		p.errAt(diag.CodeInvalidLiteral, sp, "invalid literal %q", t.Text)
		return &ast.ErrorExpr{Base: ast.Base{Sp: sp}, Message: "invalid literal"}
	}
}

// parsePrimary dispatches on the current token to every expression variant
// that begins a primary expression: literals, identifiers (plain, static
// call, struct literal), grouping/tuple/lambda, array/map literals,
// control-flow expressions, and assert.
func (p *Parser) parsePrimary() ast.Expr {
	start := p.cur()
	switch start.Kind {
	case lexer.INT, lexer.FLOAT, lexer.STRING, lexer.KW_TRUE, lexer.KW_FALSE, lexer.REGEX, lexer.DURATION, lexer.SIZE:
		return p.parseLiteral()
	case lexer.IDENT:
		return p.parseIdentPrimary()
	case lexer.KW_SELF:
		p.advance()
		return &ast.Ident{Base: ast.Base{Sp: tokenSpan(start)}, Name: "self"}
	case lexer.LPAREN:
		return p.parseParenOrLambda()
	case lexer.LBRACKET:
		return p.parseArrayLit()
	case lexer.HASH:
		return p.parseMapLit()
	case lexer.LBRACE:
		return p.parseBlock()
	case lexer.KW_I:
		return p.parseIf()
	case lexer.KW_M:
		return p.parseMatch()
	case lexer.KW_FOR:
		return p.parseForLoop()
	case lexer.KW_L:
		return p.parseLoopOrWhile()
	case lexer.KW_ASSERT:
		return p.parseAssert()
	default:
		p.errAt(diag.CodeInvalidExpression, tokenSpan(start), "expected an expression, found %s %q", start.Kind, start.Text)
		return &ast.ErrorExpr{Base: ast.Base{Sp: tokenSpan(start)}, Message: "invalid expression"}
	}
}

// parseIdentPrimary handles the three shapes that begin with a bare
// identifier: a static call (`Type::method(...)`), a struct literal
// (`Name { field: value, ... }`, suppressed inside conditions so the
// following block isn't swallowed), or a plain variable reference.
func (p *Parser) parseIdentPrimary() ast.Expr {
	start := p.advance()
	if p.at(lexer.BANG) && p.peek(1).Kind == lexer.LPAREN {
		return p.parseMacroInvocation(start)
	}
	if p.at(lexer.COLONCOLON) {
		p.advance()
		method := p.expect(lexer.IDENT, "method name").Text
		args, end := p.parseArgList()
		typ := &ast.NamedType{Base: ast.Base{Sp: tokenSpan(start)}, Name: start.Text}
		return &ast.StaticCall{Base: ast.Base{Sp: span.Join(tokenSpan(start), tokenSpan(end))}, Type: typ, Method: method, Args: args}
	}
	if !p.noStructLit && p.at(lexer.LBRACE) && looksLikeStructLitBody(p) {
		return p.parseStructLitBody(start.Text, tokenSpan(start))
	}
	return &ast.Ident{Base: ast.Base{Sp: tokenSpan(start)}, Name: start.Text}
}

// parseMacroInvocation handles `name!(...)` call sites. The argument
// tokens are kept raw (unparsed) since macro rules match against token
// shape, not an already-built expression tree.
func (p *Parser) parseMacroInvocation(name lexer.Token) ast.Expr {
	p.advance() // '!'
	args := p.collectBalancedParenTokens()
	end := p.toks[p.pos-1]
	return &ast.MacroInvocation{Base: ast.Base{Sp: span.Join(tokenSpan(name), tokenSpan(end))}, Name: name.Text, Args: args}
}

// looksLikeStructLitBody peeks past the opening brace to check for the
// `ident :` or an immediate `}` shape that distinguishes a struct literal
// from an unrelated block that merely follows an identifier.
func looksLikeStructLitBody(p *Parser) bool {
	if p.peek(1).Kind == lexer.RBRACE {
		return true
	}
	return p.peek(1).Kind == lexer.IDENT && p.peek(2).Kind == lexer.COLON
}

func (p *Parser) parseStructLitBody(typeName string, startSp span.Span) ast.Expr {
	p.advance() // '{'
	var fields []ast.StructFieldInit
	for !p.at(lexer.RBRACE) && !p.atEOF() {
		name := p.expect(lexer.IDENT, "field name").Text
		p.expect(lexer.COLON, "':'")
		val := p.parseExpr()
		fields = append(fields, ast.StructFieldInit{Name: name, Value: val})
		if !p.match(lexer.COMMA) {
			break
		}
	}
	end := p.expect(lexer.RBRACE, "'}'")
	return &ast.StructLit{Base: ast.Base{Sp: span.Join(startSp, tokenSpan(end))}, TypeName: typeName, Fields: fields}
}

// parseParenOrLambda disambiguates `(expr)`, `(e1, e2, ...)` tuples, and
// `(a, b) => body` lambdas by parsing an expression list first and only
// then checking for a trailing `=>` — avoiding backtracking.
func (p *Parser) parseParenOrLambda() ast.Expr {
	start := p.advance() // '('
	var elems []ast.Expr
	if !p.at(lexer.RPAREN) {
		elems = append(elems, p.parseExpr())
		for p.match(lexer.COMMA) {
			if p.at(lexer.RPAREN) {
				break
			}
			elems = append(elems, p.parseExpr())
		}
	}
	end := p.expect(lexer.RPAREN, "')'")
	sp := span.Join(tokenSpan(start), tokenSpan(end))

	if p.at(lexer.FARROW) {
		p.advance()
		params := make([]ast.Param, 0, len(elems))
		for _, e := range elems {
			id, ok := e.(*ast.Ident)
			if !ok {
				p.errAt(diag.CodeInvalidExpression, e.Span(), "lambda parameter must be a bare name")
				continue
			}
			params = append(params, ast.Param{Name: id.Name, Sp: id.Span()})
		}
		body := p.parseExpr()
		return &ast.Lambda{Base: ast.Base{Sp: span.Join(sp, body.Span())}, Params: params, Body: body}
	}

	if len(elems) == 1 {
		return elems[0]
	}
	return &ast.TupleLit{Base: ast.Base{Sp: sp}, Elements: elems}
}

func (p *Parser) parseArrayLit() ast.Expr {
	start := p.advance() // '['
	var elems []ast.Expr
	if !p.at(lexer.RBRACKET) {
		first := p.parseExpr()
		if p.at(lexer.DOT) && p.peek(1).Kind == lexer.DOT {
			p.advance()
			p.advance()
			inclusive := p.match(lexer.ASSIGN)
			last := p.parseExpr()
			end := p.expect(lexer.RBRACKET, "']'")
			return &ast.RangeLit{Base: ast.Base{Sp: span.Join(tokenSpan(start), tokenSpan(end))}, Start: first, End: last, Inclusive: inclusive}
		}
		elems = append(elems, first)
		for p.match(lexer.COMMA) {
			if p.at(lexer.RBRACKET) {
				break
			}
			elems = append(elems, p.parseExpr())
		}
	}
	end := p.expect(lexer.RBRACKET, "']'")
	return &ast.ArrayLit{Base: ast.Base{Sp: span.Join(tokenSpan(start), tokenSpan(end))}, Elements: elems}
}

// parseMapLit parses the `#{ key: value, ... }` map literal. The leading
// `#` sigil sidesteps the undecidable ambiguity a bare `{ key: value }`
// would have against a block expression.
func (p *Parser) parseMapLit() ast.Expr {
	start := p.advance() // '#'
	p.expect(lexer.LBRACE, "'{' after '#'")
	var entries []ast.MapEntry
	for !p.at(lexer.RBRACE) && !p.atEOF() {
		key := p.parseExpr()
		p.expect(lexer.COLON, "':'")
		val := p.parseExpr()
		entries = append(entries, ast.MapEntry{Key: key, Value: val})
		if !p.match(lexer.COMMA) {
			break
		}
	}
	end := p.expect(lexer.RBRACE, "'}'")
	return &ast.MapLit{Base: ast.Base{Sp: span.Join(tokenSpan(start), tokenSpan(end))}, Entries: entries}
}

func (p *Parser) parseIf() ast.Expr {
	start := p.advance() // KW_I
	prevSuppress := p.noStructLit
	p.noStructLit = true
	cond := p.parseExpr()
	p.noStructLit = prevSuppress
	then := p.parseBlock().(*ast.Block)
	var elseExpr ast.Expr
	if p.match(lexer.KW_ELSE) {
		if p.at(lexer.KW_I) {
			elseExpr = p.parseIf()
		} else {
			elseExpr = p.parseBlock()
		}
	}
	end := then.Span()
	if elseExpr != nil {
		end = elseExpr.Span()
	}
	return &ast.If{Base: ast.Base{Sp: span.Join(tokenSpan(start), end)}, Cond: cond, Then: then, Else: elseExpr}
}

func (p *Parser) parseMatch() ast.Expr {
	start := p.advance() // KW_M
	prevSuppress := p.noStructLit
	p.noStructLit = true
	scrutinee := p.parseExpr()
	p.noStructLit = prevSuppress
	p.expect(lexer.LBRACE, "'{' to start match arms")
	var arms []ast.MatchArm
	for !p.at(lexer.RBRACE) && !p.atEOF() {
		pat := p.parsePattern()
		var guard ast.Expr
		if p.match(lexer.KW_I) { // `I` doubles as the match-arm guard keyword, like if/impl
			guard = p.parseExpr()
		}
		p.expect(lexer.FARROW, "'=>'")
		body := p.parseExpr()
		arms = append(arms, ast.MatchArm{Pattern: pat, Guard: guard, Body: body})
		p.match(lexer.COMMA)
	}
	end := p.expect(lexer.RBRACE, "'}'")
	return &ast.Match{Base: ast.Base{Sp: span.Join(tokenSpan(start), tokenSpan(end))}, Scrutinee: scrutinee, Arms: arms}
}

func (p *Parser) parseForLoop() ast.Expr {
	start := p.advance() // KW_FOR
	name := p.expect(lexer.IDENT, "loop variable").Text
	p.expect(lexer.KW_IN, "'in'")
	prevSuppress := p.noStructLit
	p.noStructLit = true
	iterable := p.parseExpr()
	p.noStructLit = prevSuppress
	body := p.parseBlock().(*ast.Block)
	return &ast.ForLoop{Base: ast.Base{Sp: span.Join(tokenSpan(start), body.Span())}, Var: name, Iterable: iterable, Body: body}
}

// parseLoopOrWhile disambiguates `L { ... }` (infinite loop) from
// `L cond { ... }` (while loop) on whether a block follows immediately.
func (p *Parser) parseLoopOrWhile() ast.Expr {
	start := p.advance() // KW_L
	if p.at(lexer.LBRACE) {
		body := p.parseBlock().(*ast.Block)
		return &ast.InfiniteLoop{Base: ast.Base{Sp: span.Join(tokenSpan(start), body.Span())}, Body: body}
	}
	prevSuppress := p.noStructLit
	p.noStructLit = true
	cond := p.parseExpr()
	p.noStructLit = prevSuppress
	body := p.parseBlock().(*ast.Block)
	return &ast.WhileLoop{Base: ast.Base{Sp: span.Join(tokenSpan(start), body.Span())}, Cond: cond, Body: body}
}

func (p *Parser) parseAssert() ast.Expr {
	start := p.advance() // KW_ASSERT
	cond := p.parseExpr()
	var msg ast.Expr
	if p.match(lexer.COMMA) {
		msg = p.parseExpr()
	}
	end := cond.Span()
	if msg != nil {
		end = msg.Span()
	}
	return &ast.Assert{Base: ast.Base{Sp: span.Join(tokenSpan(start), end)}, Cond: cond, Message: msg}
}
