package parser

import (
	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/span"
)

// parseModuleStrict parses the whole token stream, returning the first
// error encountered as a plain Go error (spec's "strict parse: fails with
// the first parse error").
func (p *Parser) parseModuleStrict() (mod *ast.Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			if se, ok := r.(*strictError); ok {
				err = se
				return
			}
			panic(r)
		}
	}()
	mod = p.parseModule()
	return mod, nil
}

// parseModuleRecover parses the whole token stream, never returning a
// nil Module: unparseable regions become Error items and parsing resumes
// at the next synchronization point.
func (p *Parser) parseModuleRecover() *ast.Module {
	return p.parseModule()
}

func (p *Parser) parseModule() *ast.Module {
	start := p.cur()
	var items []ast.Item
	fileItems := map[string][]int{}
	for !p.atEOF() {
		idx := len(items)
		it := p.parseItemRecovering()
		if it != nil {
			items = append(items, it)
			fileItems[p.file] = append(fileItems[p.file], idx)
		}
	}
	end := p.toks[len(p.toks)-1]
	sp := span.Join(tokenSpan(start), tokenSpan(end))
	return &ast.Module{Base: ast.Base{Sp: sp}, Items: items, FileItems: fileItems}
}

// parseItemRecovering wraps parseItem with the panic/recover protocol used
// throughout this parser: a production that hits an unrecoverable error
// panics with recoverSignal (recoverable mode) or strictError (strict
// mode); the former is caught here, synchronized past, and turned into an
// ErrorItem so the Module's own structural invariants (every index in
// FileItems valid, no gaps) stay intact.
func (p *Parser) parseItemRecovering() (it ast.Item) {
	startTok := p.cur()
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(*recoverSignal); ok {
				skipped := p.synchronize(0)
				endSp := tokenSpan(startTok)
				if len(skipped) > 0 {
					endSp = span.Join(endSp, tokenSpan(skipped[len(skipped)-1]))
				}
				it = &ast.ErrorItem{
					Base:    ast.Base{Sp: endSp},
					Message: "could not parse item",
					Skipped: skipped,
				}
				return
			}
			panic(r)
		}
	}()
	return p.parseItem()
}
