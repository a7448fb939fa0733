// Package parser converts a token stream into a Module AST for both of the
// core's surface grammars: the terse C-like systems language and the
// declarative unit DSL. It exposes a strict mode (first error aborts) and a
// recoverable mode (errors accumulate, unparseable regions become Error
// nodes) over the same recursive-descent implementation.
package parser

import (
	"fmt"

	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/diag"
	"github.com/vaislang/vais/internal/lexer"
	"github.com/vaislang/vais/internal/span"
)

// Parser holds the token cursor and error-collection state shared by every
// production. NEWLINE and COMMENT tokens are dropped before parsing begins:
// the unit DSL treats newlines as advisory, never significant (spec's own
// words), so there is no production anywhere that needs to see one.
type Parser struct {
	toks        []lexer.Token
	pos         int
	file        string
	bag         *diag.Bag
	recoverable bool
	noStructLit bool // suppressed while parsing if/match/for/while conditions
}

// strictError aborts a strict-mode parse with the first diagnostic hit.
type strictError struct{ diag.Diagnostic }

func (e *strictError) Error() string { return e.Diagnostic.String() }

// Parse runs a strict parse: the first error returned aborts immediately.
func Parse(src, file string) (*ast.Module, error) {
	p := newParser(src, file, false)
	mod, err := p.parseModuleStrict()
	if err != nil {
		return nil, err
	}
	return mod, nil
}

// ParseRecoverable runs a recoverable parse: all errors are accumulated
// into the returned Bag and unparseable regions become Error nodes, so the
// Module returned is never nil.
func ParseRecoverable(src, file string) (*ast.Module, *diag.Bag) {
	p := newParser(src, file, true)
	mod := p.parseModuleRecover()
	return mod, p.bag
}

func newParser(src, file string, recoverable bool) *Parser {
	lx := lexer.New(string(lexer.Normalize([]byte(src))), file)
	all := lx.Tokens()
	toks := make([]lexer.Token, 0, len(all))
	for _, t := range all {
		if t.Kind == lexer.NEWLINE || t.Kind == lexer.COMMENT {
			continue
		}
		toks = append(toks, t)
	}
	if len(toks) == 0 || toks[len(toks)-1].Kind != lexer.EOF {
		toks = append(toks, lexer.Token{Kind: lexer.EOF, File: file})
	}
	return &Parser{toks: toks, file: file, bag: diag.NewBag(), recoverable: recoverable}
}

// --- token cursor helpers -------------------------------------------------

func (p *Parser) cur() lexer.Token {
	return p.toks[p.pos]
}

func (p *Parser) peek(n int) lexer.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) at(k lexer.Kind) bool { return p.cur().Kind == k }

func (p *Parser) atEOF() bool { return p.cur().Kind == lexer.EOF }

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if t.Kind != lexer.EOF {
		p.pos++
	}
	return t
}

// match consumes the current token if it has kind k and reports whether it did.
func (p *Parser) match(k lexer.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

// tokenSpan converts a single token's position into a Span covering its text.
func tokenSpan(t lexer.Token) span.Span {
	start := span.Pos{File: t.File, Offset: t.Offset, Line: t.Line, Column: t.Column}
	end := span.Pos{File: t.File, Offset: t.EndOff, Line: t.Line, Column: t.Column + len([]rune(t.Text))}
	return span.Span{Start: start, End: end}
}

// expect consumes the current token if it has kind k; otherwise it records
// an UnexpectedToken diagnostic and, in strict mode, panics with a
// strictError that parseModuleStrict recovers into a plain error.
func (p *Parser) expect(k lexer.Kind, what string) lexer.Token {
	if p.at(k) {
		return p.advance()
	}
	d := diag.Diagnostic{
		Code:     diag.CodeUnexpectedToken,
		Phase:    diag.PhaseParser,
		Severity: diag.SeverityError,
		Message:  fmt.Sprintf("expected %s, found %s %q", what, p.cur().Kind, p.cur().Text),
		Span:     tokenSpan(p.cur()),
	}
	p.fail(d)
	return p.cur()
}

// errAt records a diagnostic at sp and fails the current production.
func (p *Parser) errAt(code diag.Code, sp span.Span, format string, args ...any) {
	p.fail(diag.Diagnostic{
		Code: code, Phase: diag.PhaseParser, Severity: diag.SeverityError,
		Message: fmt.Sprintf(format, args...), Span: sp,
	})
}

func (p *Parser) fail(d diag.Diagnostic) {
	p.bag.Add(d)
	if !p.recoverable {
		panic(&strictError{d})
	}
	panic(&recoverSignal{})
}

// recoverSignal unwinds the current item/statement/expression production so
// synchronize() can run; it is never a user-visible error.
type recoverSignal struct{}

// synchronize skips tokens until a synchronization point: a top-level item
// keyword, a statement terminator, or a brace that restores balance to
// zero — per spec §4.2's recovery protocol.
func (p *Parser) synchronize(startDepth int) []lexer.Token {
	var skipped []lexer.Token
	depth := startDepth
	for !p.atEOF() {
		t := p.cur()
		switch t.Kind {
		case lexer.LBRACE, lexer.LPAREN, lexer.LBRACKET:
			depth++
		case lexer.RBRACE, lexer.RPAREN, lexer.RBRACKET:
			if depth == 0 {
				return skipped
			}
			depth--
			if depth == 0 {
				skipped = append(skipped, p.advance())
				return skipped
			}
		case lexer.SEMICOLON:
			if depth <= 0 {
				skipped = append(skipped, p.advance())
				return skipped
			}
		}
		if depth == 0 && t.IsItemKeyword() {
			return skipped
		}
		skipped = append(skipped, p.advance())
	}
	return skipped
}
