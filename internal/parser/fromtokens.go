package parser

import (
	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/diag"
	"github.com/vaislang/vais/internal/lexer"
)

// ParseExprFromTokens parses a standalone token sequence as a single
// expression, recoverably. It exists for callers that already hold a
// token slice assembled by something other than the lexer — chiefly the
// macro layer, which splices a rule's template tokens (after substituting
// bound metavariables) back through the expression grammar rather than
// re-rendering them to text and re-lexing. A production that fails yields
// an *ast.ErrorExpr rather than panicking out to the caller.
func ParseExprFromTokens(toks []lexer.Token, file string) (expr ast.Expr, bag *diag.Bag) {
	withEOF := toks
	if len(withEOF) == 0 || withEOF[len(withEOF)-1].Kind != lexer.EOF {
		withEOF = append(append([]lexer.Token{}, toks...), lexer.Token{Kind: lexer.EOF, File: file})
	}
	p := &Parser{toks: withEOF, file: file, bag: diag.NewBag(), recoverable: true}
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(*recoverSignal); ok {
				expr = &ast.ErrorExpr{Message: "could not parse expanded macro template", Skipped: withEOF}
				bag = p.bag
				return
			}
			panic(r)
		}
	}()
	expr = p.parseExpr()
	bag = p.bag
	return
}
