package parser

import (
	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/diag"
	"github.com/vaislang/vais/internal/lexer"
	"github.com/vaislang/vais/internal/span"
)

// parseUnitDecl parses a declarative unit: `UNIT Name ["version"] { ... } END`.
// Its body is a fixed sequence of optional named blocks; this parser accepts
// them in any order it encounters them (a later semantic pass, not this
// grammar, is where out-of-order blocks would be flagged), recovering one
// block at a time so a malformed block doesn't take down the whole unit.
func (p *Parser) parseUnitDecl() ast.Item {
	start := p.advance() // KW_UNIT
	name := p.expect(lexer.IDENT, "unit name").Text
	var version string
	if p.at(lexer.STRING) {
		version = p.advance().Text
	}

	decl := &ast.UnitDecl{Name: name, Version: version}
	for !p.at(lexer.KW_END) && !p.atEOF() {
		switch {
		case p.at(lexer.KW_META):
			p.withBlockRecovery(func() { decl.Meta = p.parseMetaBlock() })
		case p.at(lexer.KW_INPUT):
			p.withBlockRecovery(func() { decl.Input = p.parseIOBlock(lexer.KW_INPUT) })
		case p.at(lexer.KW_OUTPUT):
			p.withBlockRecovery(func() { decl.Output = p.parseIOBlock(lexer.KW_OUTPUT) })
		case p.at(lexer.KW_INTENT):
			p.withBlockRecovery(func() { decl.Intent = p.parseIntentBlock() })
		case p.at(lexer.KW_CONSTRAINT):
			p.withBlockRecovery(func() { decl.Constraint = p.parseConstraintBlock() })
		case p.at(lexer.KW_FLOW):
			p.withBlockRecovery(func() { decl.Flow = p.parseFlowBlock() })
		case p.at(lexer.KW_EXECUTION):
			p.withBlockRecovery(func() { decl.Execution = p.parseExecutionBlock() })
		case p.at(lexer.KW_VERIFY):
			p.withBlockRecovery(func() { decl.Verify = p.parseVerifyBlock() })
		default:
			p.errAt(diag.CodeUnexpectedToken, tokenSpan(p.cur()), "expected a unit block or END, found %s %q", p.cur().Kind, p.cur().Text)
			p.synchronizeUnitBlock()
		}
	}
	end := p.expect(lexer.KW_END, "'END'")
	decl.Base = ast.Base{Sp: span.Join(tokenSpan(start), tokenSpan(end))}
	return decl
}

// withBlockRecovery runs parse and, if it panics with a recoverSignal (via
// p.fail in recoverable mode), swallows it and skips to the next block
// keyword or END. Any other panic (including strictError) propagates.
func (p *Parser) withBlockRecovery(parse func()) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(*recoverSignal); ok {
				p.synchronizeUnitBlock()
				return
			}
			panic(r)
		}
	}()
	parse()
}

// synchronizeUnitBlock skips tokens until the next block keyword, END, or EOF.
func (p *Parser) synchronizeUnitBlock() {
	for !p.atEOF() {
		switch p.cur().Kind {
		case lexer.KW_META, lexer.KW_INPUT, lexer.KW_OUTPUT, lexer.KW_INTENT,
			lexer.KW_CONSTRAINT, lexer.KW_FLOW, lexer.KW_EXECUTION, lexer.KW_VERIFY, lexer.KW_END:
			return
		}
		p.advance()
	}
}

func (p *Parser) parseMetaBlock() *ast.MetaBlock {
	start := p.advance() // KW_META
	p.expect(lexer.LBRACE, "'{'")
	var entries []ast.MetaEntry
	for !p.at(lexer.RBRACE) && !p.atEOF() {
		entryStart := p.cur()
		key := p.expect(lexer.IDENT, "metadata key").Text
		p.expect(lexer.COLON, "':'")
		val := p.parseExpr()
		entries = append(entries, ast.MetaEntry{Key: key, Value: val, Sp: span.Join(tokenSpan(entryStart), val.Span())})
		p.match(lexer.COMMA)
		p.match(lexer.SEMICOLON)
	}
	end := p.expect(lexer.RBRACE, "'}'")
	return &ast.MetaBlock{Base: ast.Base{Sp: span.Join(tokenSpan(start), tokenSpan(end))}, Entries: entries}
}

func (p *Parser) parseIOBlock(kw lexer.Kind) *ast.IOBlock {
	start := p.advance() // KW_INPUT or KW_OUTPUT
	p.expect(lexer.LBRACE, "'{'")
	var params []ast.IOParam
	for !p.at(lexer.RBRACE) && !p.atEOF() {
		pStart := p.cur()
		name := p.expect(lexer.IDENT, "parameter name").Text
		p.expect(lexer.COLON, "':'")
		typ := p.parseType()
		params = append(params, ast.IOParam{Name: name, Type: typ, Sp: span.Join(tokenSpan(pStart), typ.Span())})
		p.match(lexer.COMMA)
		p.match(lexer.SEMICOLON)
	}
	end := p.expect(lexer.RBRACE, "'}'")
	return &ast.IOBlock{Base: ast.Base{Sp: span.Join(tokenSpan(start), tokenSpan(end))}, Params: params}
}

var intentGoalKinds = map[string]ast.GoalKind{
	"PRIMARY": ast.GoalPrimary, "SECONDARY": ast.GoalSecondary, "CONSTRAINT": ast.GoalConstraint,
}

func (p *Parser) parseIntentBlock() *ast.IntentBlock {
	start := p.advance() // KW_INTENT
	p.expect(lexer.LBRACE, "'{'")
	var entries []ast.IntentEntry
	for !p.at(lexer.RBRACE) && !p.atEOF() {
		eStart := p.cur()
		kindTok := p.expect(lexer.IDENT, "PRIMARY, SECONDARY, or CONSTRAINT")
		kind, ok := intentGoalKinds[kindTok.Text]
		if !ok {
			p.errAt(diag.CodeInvalidGoalType, tokenSpan(kindTok), "expected PRIMARY, SECONDARY, or CONSTRAINT, found %q", kindTok.Text)
			kind = ast.GoalPrimary
		}
		p.expect(lexer.COLON, "':'")
		text := p.expect(lexer.STRING, "goal text").Text
		entries = append(entries, ast.IntentEntry{Kind: kind, Text: text, Sp: tokenSpan(eStart)})
		p.match(lexer.COMMA)
		p.match(lexer.SEMICOLON)
	}
	end := p.expect(lexer.RBRACE, "'}'")
	return &ast.IntentBlock{Base: ast.Base{Sp: span.Join(tokenSpan(start), tokenSpan(end))}, Entries: entries}
}

var constraintKinds = map[string]ast.ConstraintKind{
	"INVARIANT": ast.ConstraintInvariant, "PRECONDITION": ast.ConstraintPrecondition,
	"POSTCONDITION": ast.ConstraintPostcondition,
}

func (p *Parser) parseConstraintBlock() *ast.ConstraintBlock {
	start := p.advance() // KW_CONSTRAINT
	p.expect(lexer.LBRACE, "'{'")
	var entries []ast.ConstraintEntry
	for !p.at(lexer.RBRACE) && !p.atEOF() {
		eStart := p.cur()
		kindTok := p.expect(lexer.IDENT, "INVARIANT, PRECONDITION, or POSTCONDITION")
		kind, ok := constraintKinds[kindTok.Text]
		if !ok {
			p.errAt(diag.CodeInvalidConstraint, tokenSpan(kindTok), "expected INVARIANT, PRECONDITION, or POSTCONDITION, found %q", kindTok.Text)
			kind = ast.ConstraintInvariant
		}
		p.expect(lexer.COLON, "':'")
		expr := p.parseExpr()
		entries = append(entries, ast.ConstraintEntry{Kind: kind, Expr: expr, Sp: span.Join(tokenSpan(eStart), expr.Span())})
		p.match(lexer.COMMA)
		p.match(lexer.SEMICOLON)
	}
	end := p.expect(lexer.RBRACE, "'}'")
	return &ast.ConstraintBlock{Base: ast.Base{Sp: span.Join(tokenSpan(start), tokenSpan(end))}, Entries: entries}
}

func (p *Parser) parseFlowBlock() *ast.FlowBlock {
	start := p.advance() // KW_FLOW
	p.expect(lexer.LBRACE, "'{'")
	var steps []ast.FlowStep
	for !p.at(lexer.RBRACE) && !p.atEOF() {
		sStart := p.cur()
		op := p.expect(lexer.IDENT, "flow step name").Text
		var args []ast.Expr
		if p.match(lexer.LPAREN) {
			if !p.at(lexer.RPAREN) {
				args = append(args, p.parseExpr())
				for p.match(lexer.COMMA) {
					args = append(args, p.parseExpr())
				}
			}
			p.expect(lexer.RPAREN, "')'")
		}
		steps = append(steps, ast.FlowStep{Op: op, Args: args, Sp: tokenSpan(sStart)})
		p.match(lexer.SEMICOLON)
	}
	end := p.expect(lexer.RBRACE, "'}'")
	return &ast.FlowBlock{Base: ast.Base{Sp: span.Join(tokenSpan(start), tokenSpan(end))}, Steps: steps}
}

func (p *Parser) parseExecutionBlock() *ast.ExecutionBlock {
	start := p.advance() // KW_EXECUTION
	body := p.parseBlock().(*ast.Block)
	return &ast.ExecutionBlock{Base: ast.Base{Sp: span.Join(tokenSpan(start), body.Span())}, Body: body}
}

func (p *Parser) parseVerifyBlock() *ast.VerifyBlock {
	start := p.advance() // KW_VERIFY
	p.expect(lexer.LBRACE, "'{'")
	var entries []ast.VerifyEntry
	for !p.at(lexer.RBRACE) && !p.atEOF() {
		expr := p.parseExpr()
		entries = append(entries, ast.VerifyEntry{Expr: expr, Sp: expr.Span()})
		p.match(lexer.SEMICOLON)
	}
	end := p.expect(lexer.RBRACE, "'}'")
	return &ast.VerifyBlock{Base: ast.Base{Sp: span.Join(tokenSpan(start), tokenSpan(end))}, Entries: entries}
}
