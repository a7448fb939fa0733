package parser

import (
	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/diag"
	"github.com/vaislang/vais/internal/lexer"
	"github.com/vaislang/vais/internal/span"
)

// parsePattern parses a match-arm or let-binding pattern, including the
// lowest-precedence `|` (or) and highest-precedence `@` (alias) forms.
func (p *Parser) parsePattern() ast.Pattern {
	first := p.parsePatternPrimary()
	if !p.at(lexer.PIPE) {
		return first
	}
	alts := []ast.Pattern{first}
	sp := first.Span()
	for p.match(lexer.PIPE) {
		next := p.parsePatternPrimary()
		alts = append(alts, next)
		sp = span.Join(sp, next.Span())
	}
	return &ast.OrPattern{Base: ast.Base{Sp: sp}, Alternatives: alts}
}

func (p *Parser) parsePatternPrimary() ast.Pattern {
	start := p.cur()
	var pat ast.Pattern

	switch {
	case p.at(lexer.IDENT) && p.cur().Text == "_":
		p.advance()
		pat = &ast.WildcardPattern{Base: ast.Base{Sp: tokenSpan(start)}}
	case p.at(lexer.IDENT):
		name := p.advance().Text
		sp := tokenSpan(start)
		switch {
		case p.at(lexer.LBRACE):
			pat = p.parseStructPatternFields(name, sp)
		case p.at(lexer.LPAREN):
			pat = p.parseVariantPatternArgs(name, sp)
		default:
			pat = &ast.IdentPattern{Base: ast.Base{Sp: sp}, Name: name}
		}
	case p.at(lexer.INT), p.at(lexer.FLOAT), p.at(lexer.STRING), p.at(lexer.KW_TRUE), p.at(lexer.KW_FALSE):
		lit := p.parseLiteral()
		pat = p.maybeRangePattern(lit)
	case p.at(lexer.MINUS):
		lit := p.parsePrimary()
		pat = p.maybeRangePattern(lit)
	case p.at(lexer.LPAREN):
		p.advance()
		var elems []ast.Pattern
		if !p.at(lexer.RPAREN) {
			elems = append(elems, p.parsePattern())
			for p.match(lexer.COMMA) {
				elems = append(elems, p.parsePattern())
			}
		}
		end := p.expect(lexer.RPAREN, "')'")
		pat = &ast.TuplePattern{Base: ast.Base{Sp: span.Join(tokenSpan(start), tokenSpan(end))}, Elements: elems}
	default:
		p.errAt(diag.CodeInvalidExpression, tokenSpan(p.cur()), "expected a pattern, found %s %q", p.cur().Kind, p.cur().Text)
		pat = &ast.WildcardPattern{Base: ast.Base{Sp: tokenSpan(p.cur())}}
	}

	if p.match(lexer.AT) {
		inner := p.parsePatternPrimary()
		name := ""
		if id, ok := pat.(*ast.IdentPattern); ok {
			name = id.Name
		}
		sp := span.Join(pat.Span(), inner.Span())
		return &ast.AliasPattern{Base: ast.Base{Sp: sp}, Name: name, Inner: inner}
	}
	return pat
}

func (p *Parser) maybeRangePattern(lit ast.Expr) ast.Pattern {
	if p.at(lexer.DOT) && p.peek(1).Kind == lexer.DOT {
		p.advance()
		p.advance()
		inclusive := p.match(lexer.ASSIGN)
		end := p.parsePrimary()
		sp := span.Join(lit.Span(), end.Span())
		return &ast.RangePattern{Base: ast.Base{Sp: sp}, Start: lit, End: end, Inclusive: inclusive}
	}
	return &ast.LiteralPattern{Base: ast.Base{Sp: lit.Span()}, Value: lit}
}

func (p *Parser) parseStructPatternFields(typeName string, startSp span.Span) ast.Pattern {
	p.advance() // '{'
	var fields []ast.FieldPattern
	rest := false
	for !p.at(lexer.RBRACE) && !p.atEOF() {
		if p.match(lexer.ELLIPSIS) {
			rest = true
			break
		}
		name := p.expect(lexer.IDENT, "field name").Text
		var fp ast.Pattern
		if p.match(lexer.COLON) {
			fp = p.parsePattern()
		} else {
			fp = &ast.IdentPattern{Base: ast.Base{Sp: startSp}, Name: name}
		}
		fields = append(fields, ast.FieldPattern{Name: name, Pattern: fp})
		if !p.match(lexer.COMMA) {
			break
		}
	}
	end := p.expect(lexer.RBRACE, "'}'")
	return &ast.StructPattern{
		Base: ast.Base{Sp: span.Join(startSp, tokenSpan(end))}, TypeName: typeName, Fields: fields, Rest: rest,
	}
}

func (p *Parser) parseVariantPatternArgs(tag string, startSp span.Span) ast.Pattern {
	p.advance() // '('
	var subs []ast.Pattern
	if !p.at(lexer.RPAREN) {
		subs = append(subs, p.parsePattern())
		for p.match(lexer.COMMA) {
			subs = append(subs, p.parsePattern())
		}
	}
	end := p.expect(lexer.RPAREN, "')'")
	return &ast.VariantPattern{
		Base: ast.Base{Sp: span.Join(startSp, tokenSpan(end))}, Tag: tag, Subpatterns: subs,
	}
}
