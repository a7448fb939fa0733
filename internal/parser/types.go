package parser

import (
	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/diag"
	"github.com/vaislang/vais/internal/lexer"
	"github.com/vaislang/vais/internal/span"
)

var primitiveNames = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true, "int": true,
	"u8": true, "u16": true, "u32": true, "u64": true, "uint": true,
	"f32": true, "f64": true, "bool": true, "string": true, "bytes": true,
	"void": true,
}

// parseType parses a type annotation as written in source.
func (p *Parser) parseType() ast.Type {
	t := p.parseTypePrimary()
	if p.match(lexer.QUESTION) {
		sp := span.Join(t.Span(), tokenSpan(p.toks[p.pos-1]))
		t = &ast.OptionalType{Base: ast.Base{Sp: sp}, Inner: t}
	}
	return t
}

func (p *Parser) parseTypePrimary() ast.Type {
	start := p.cur()
	switch {
	case p.at(lexer.LPAREN):
		p.advance()
		// Could be a tuple type or a function type `(T1, T2) -> R`.
		var elems []ast.Type
		if !p.at(lexer.RPAREN) {
			elems = append(elems, p.parseType())
			for p.match(lexer.COMMA) {
				if p.at(lexer.RPAREN) {
					break
				}
				elems = append(elems, p.parseType())
			}
		}
		end := p.expect(lexer.RPAREN, "')'")
		sp := span.Join(tokenSpan(start), tokenSpan(end))
		if p.match(lexer.ARROW) {
			ret := p.parseType()
			sp = span.Join(sp, ret.Span())
			return &ast.FuncType{Base: ast.Base{Sp: sp}, Params: elems, Return: ret}
		}
		if len(elems) == 1 {
			return elems[0]
		}
		return &ast.TupleType{Base: ast.Base{Sp: sp}, Elements: elems}
	case p.at(lexer.LBRACKET):
		p.advance()
		elem := p.parseType()
		end := p.expect(lexer.RBRACKET, "']'")
		sp := span.Join(tokenSpan(start), tokenSpan(end))
		return &ast.ArrayType{Base: ast.Base{Sp: sp}, Elem: elem}
	case p.at(lexer.IDENT):
		name := p.advance().Text
		sp := tokenSpan(start)
		if primitiveNames[name] {
			return &ast.PrimitiveType{Base: ast.Base{Sp: sp}, Name: name}
		}
		var args []ast.Type
		if p.match(lexer.LT) {
			args = append(args, p.parseType())
			for p.match(lexer.COMMA) {
				args = append(args, p.parseType())
			}
			end := p.expect(lexer.GT, "'>'")
			sp = span.Join(sp, tokenSpan(end))
		}
		return &ast.NamedType{Base: ast.Base{Sp: sp}, Name: name, Args: args}
	default:
		p.errAt(diag.CodeInvalidType, tokenSpan(p.cur()), "expected a type, found %s %q", p.cur().Kind, p.cur().Text)
		return &ast.InferType{Base: ast.Base{Sp: tokenSpan(p.cur())}}
	}
}
