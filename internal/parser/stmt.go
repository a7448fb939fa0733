package parser

import (
	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/lexer"
	"github.com/vaislang/vais/internal/span"
)

// parseBlock parses a brace-delimited statement sequence. Its value, when
// used as an expression, is a trailing non-`;`-terminated expression.
func (p *Parser) parseBlock() ast.Expr {
	start := p.expect(lexer.LBRACE, "'{'")
	var stmts []ast.Stmt
	var tail ast.Expr
	for !p.at(lexer.RBRACE) && !p.atEOF() {
		stmt, trailingExpr := p.parseStmtRecovering()
		if trailingExpr != nil {
			tail = trailingExpr
			break
		}
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	end := p.expect(lexer.RBRACE, "'}'")
	return &ast.Block{Base: ast.Base{Sp: span.Join(tokenSpan(start), tokenSpan(end))}, Stmts: stmts, Tail: tail}
}

// parseStmtRecovering wraps parseStmt with the same panic/recover-to-
// synchronization-point protocol used for items, so one malformed
// statement doesn't abort the whole block.
func (p *Parser) parseStmtRecovering() (stmt ast.Stmt, tail ast.Expr) {
	startTok := p.cur()
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(*recoverSignal); ok {
				skipped := p.synchronize(0)
				endSp := tokenSpan(startTok)
				if len(skipped) > 0 {
					endSp = span.Join(endSp, tokenSpan(skipped[len(skipped)-1]))
				}
				stmt = &ast.ExprStmt{Base: ast.Base{Sp: endSp}, Expr: &ast.ErrorExpr{
					Base: ast.Base{Sp: endSp}, Message: "could not parse statement", Skipped: skipped,
				}}
				return
			}
			panic(r)
		}
	}()
	return p.parseStmt()
}

// parseStmt parses one statement. When the block's final production is an
// expression not terminated by `;`, it is returned as `tail` instead of
// `stmt` so the caller can make it the block's value.
func (p *Parser) parseStmt() (stmt ast.Stmt, tail ast.Expr) {
	switch {
	case p.at(lexer.KW_V):
		return p.parseLetStmt(), nil
	case p.at(lexer.KW_R):
		start := p.advance()
		var val ast.Expr
		sp := tokenSpan(start)
		if !p.at(lexer.SEMICOLON) && !p.at(lexer.RBRACE) {
			val = p.parseExpr()
			sp = span.Join(sp, val.Span())
		}
		p.match(lexer.SEMICOLON)
		return &ast.Return{Base: ast.Base{Sp: sp}, Value: val}, nil
	case p.at(lexer.KW_B):
		start := p.advance()
		var val ast.Expr
		sp := tokenSpan(start)
		if !p.at(lexer.SEMICOLON) && !p.at(lexer.RBRACE) {
			val = p.parseExpr()
			sp = span.Join(sp, val.Span())
		}
		p.match(lexer.SEMICOLON)
		return &ast.Break{Base: ast.Base{Sp: sp}, Value: val}, nil
	case p.at(lexer.KW_CONTINUE):
		p.advance()
		p.match(lexer.SEMICOLON)
		return nil, nil
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *Parser) parseLetStmt() ast.Stmt {
	start := p.advance() // KW_V
	mutable := p.match(lexer.KW_MUT)
	name := p.expect(lexer.IDENT, "binding name").Text
	var typ ast.Type
	if p.match(lexer.COLON) {
		typ = p.parseType()
	}
	p.expect(lexer.ASSIGN, "'='")
	val := p.parseExpr()
	sp := span.Join(tokenSpan(start), val.Span())
	p.match(lexer.SEMICOLON)
	return &ast.LetStmt{Base: ast.Base{Sp: sp}, Name: name, Type: typ, Mutable: mutable, Value: val}
}

// parseExprOrAssignStmt parses a bare expression statement, an assignment,
// or (if unterminated by `;` at the end of a block) the block's tail value.
func (p *Parser) parseExprOrAssignStmt() (ast.Stmt, ast.Expr) {
	start := p.cur()
	e := p.parseExpr()
	if p.at(lexer.ASSIGN) {
		p.advance()
		val := p.parseExpr()
		sp := span.Join(tokenSpan(start), val.Span())
		p.match(lexer.SEMICOLON)
		return &ast.Assign{Base: ast.Base{Sp: sp}, Target: e, Value: val}, nil
	}
	if p.match(lexer.SEMICOLON) {
		return &ast.ExprStmt{Base: ast.Base{Sp: e.Span()}, Expr: e}, nil
	}
	if p.at(lexer.RBRACE) {
		return nil, e
	}
	return &ast.ExprStmt{Base: ast.Base{Sp: e.Span()}, Expr: e}, nil
}
