package parser

import (
	"strings"

	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/diag"
	"github.com/vaislang/vais/internal/lexer"
	"github.com/vaislang/vais/internal/span"
)

// parseItem dispatches on the current token to one of the top-level item
// productions. KW_I means `impl` at item scope (it means `if` only inside
// an expression); KW_M means `module`... at item scope it is unused by
// this core (the Module is the orchestrator's unit, not a source-level
// item), so a bare KW_M at item scope is a parse error.
func (p *Parser) parseItem() ast.Item {
	attrs := p.parseAttributes()
	visibility := ast.VisPrivate
	if p.match(lexer.KW_PUB) {
		visibility = ast.VisPublic
	}
	async := p.match(lexer.KW_ASYNC)

	switch {
	case p.at(lexer.KW_F):
		fn := p.parseFunction(visibility, async).(*ast.Function)
		fn.Attributes = attrs
		return fn
	case p.at(lexer.KW_S):
		s := p.parseStruct(visibility).(*ast.Struct)
		s.Attributes = attrs
		return s
	case p.at(lexer.KW_E):
		e := p.parseEnum(visibility).(*ast.Enum)
		e.Attributes = attrs
		return e
	case p.at(lexer.KW_U):
		return p.parseUnion(visibility)
	case p.at(lexer.KW_T):
		return p.parseTrait()
	case p.at(lexer.KW_I):
		return p.parseImpl()
	case p.at(lexer.KW_CONST):
		return p.parseConst()
	case p.at(lexer.KW_GLOBAL):
		return p.parseGlobal()
	case p.at(lexer.KW_TYPE):
		return p.parseTypeAlias()
	case p.at(lexer.KW_USE):
		return p.parseUse()
	case p.at(lexer.KW_EXTERN):
		return p.parseExternBlock()
	case p.at(lexer.KW_MACRO):
		return p.parseMacroDef()
	case p.at(lexer.KW_UNIT):
		return p.parseUnitDecl()
	default:
		p.errAt(diag.CodeUnexpectedToken, tokenSpan(p.cur()), "expected a top-level item, found %s %q", p.cur().Kind, p.cur().Text)
		panic(&recoverSignal{}) // caught by parseItemRecovering; unreachable in strict mode save for the panic above
	}
}

// parseAttributes parses zero or more leading `@name` or `@name(arg, ...)`
// item attributes, e.g. `@derive(Eq, Hash)`. Each is recorded as a single
// string ("derive(Eq,Hash)") for the macro layer's derive pass to inspect.
func (p *Parser) parseAttributes() []string {
	var attrs []string
	for p.at(lexer.AT) {
		p.advance()
		name := p.expect(lexer.IDENT, "attribute name").Text
		if p.match(lexer.LPAREN) {
			var args []string
			if !p.at(lexer.RPAREN) {
				args = append(args, p.expect(lexer.IDENT, "attribute argument").Text)
				for p.match(lexer.COMMA) {
					args = append(args, p.expect(lexer.IDENT, "attribute argument").Text)
				}
			}
			p.expect(lexer.RPAREN, "')'")
			name += "(" + strings.Join(args, ",") + ")"
		}
		attrs = append(attrs, name)
	}
	return attrs
}

// parseGenerics parses an optional `<T: Bound1 + Bound2, ...>` list.
func (p *Parser) parseGenerics() []ast.GenericParam {
	if !p.match(lexer.LT) {
		return nil
	}
	var params []ast.GenericParam
	for {
		name := p.expect(lexer.IDENT, "type parameter name").Text
		var bounds []string
		if p.match(lexer.COLON) {
			bounds = append(bounds, p.expect(lexer.IDENT, "bound name").Text)
			for p.match(lexer.PLUS) {
				bounds = append(bounds, p.expect(lexer.IDENT, "bound name").Text)
			}
		}
		params = append(params, ast.GenericParam{Name: name, Bounds: bounds})
		if !p.match(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.GT, "'>'")
	return params
}

// parseWhereClauses parses an optional `where T: Bound, ...` tail.
func (p *Parser) parseWhereClauses() []ast.WhereClause {
	if !p.match(lexer.KW_WHERE) {
		return nil
	}
	var clauses []ast.WhereClause
	for {
		param := p.expect(lexer.IDENT, "type parameter").Text
		p.expect(lexer.COLON, "':'")
		bounds := []string{p.expect(lexer.IDENT, "bound name").Text}
		for p.match(lexer.PLUS) {
			bounds = append(bounds, p.expect(lexer.IDENT, "bound name").Text)
		}
		clauses = append(clauses, ast.WhereClause{Param: param, Bounds: bounds})
		if !p.match(lexer.COMMA) {
			break
		}
	}
	return clauses
}

// parseParams parses a parenthesized parameter list with ownership modes
// (`&`/`&mut` prefix), mutability, optional type annotation, default
// value, and a trailing `...` vararg marker.
func (p *Parser) parseParams() []ast.Param {
	p.expect(lexer.LPAREN, "'('")
	var params []ast.Param
	for !p.at(lexer.RPAREN) && !p.atEOF() {
		start := p.cur()
		ownership := ast.OwnByValue
		if p.match(lexer.AMP) {
			if p.match(lexer.KW_MUT) {
				ownership = ast.OwnByMutRef
			} else {
				ownership = ast.OwnByRef
			}
		}
		mutable := p.match(lexer.KW_MUT)
		vararg := p.match(lexer.ELLIPSIS)
		var name string
		var typ ast.Type
		if self := p.cur(); self.Kind == lexer.KW_SELF {
			// An unannotated `self` receiver is typed as the impl's Self.
			p.advance()
			name = "self"
			typ = &ast.NamedType{Base: ast.Base{Sp: tokenSpan(self)}, Name: "Self"}
		} else {
			name = p.expect(lexer.IDENT, "parameter name").Text
		}
		if p.match(lexer.COLON) {
			typ = p.parseType()
		}
		var def ast.Expr
		if p.match(lexer.ASSIGN) {
			def = p.parseExpr()
		}
		params = append(params, ast.Param{
			Name: name, Ownership: ownership, Mutable: mutable, Type: typ,
			Default: def, Vararg: vararg, Sp: tokenSpan(start),
		})
		if !p.match(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RPAREN, "')'")
	return params
}

func (p *Parser) parseFunction(vis ast.Visibility, async bool) ast.Item {
	start := p.advance() // KW_F
	name := p.expect(lexer.IDENT, "function name").Text
	generics := p.parseGenerics()
	params := p.parseParams()
	var ret ast.Type
	if p.match(lexer.ARROW) {
		ret = p.parseType()
	}
	where := p.parseWhereClauses()

	var body ast.FuncBody
	var endSp span.Span
	if p.match(lexer.ASSIGN) {
		body.Expr = p.parseExpr()
		endSp = body.Expr.Span()
		p.match(lexer.SEMICOLON)
	} else {
		blk := p.parseBlock().(*ast.Block)
		body.Block = blk
		endSp = blk.Span()
	}

	return &ast.Function{
		Base: ast.Base{Sp: span.Join(tokenSpan(start), endSp)}, Name: name, Generics: generics,
		Params: params, ReturnType: ret, Body: body, Visibility: vis, Async: async, Where: where,
	}
}

func (p *Parser) parseFieldDecls() []ast.FieldDecl {
	p.expect(lexer.LBRACE, "'{'")
	var fields []ast.FieldDecl
	for !p.at(lexer.RBRACE) && !p.atEOF() {
		start := p.cur()
		name := p.expect(lexer.IDENT, "field name").Text
		p.expect(lexer.COLON, "':'")
		typ := p.parseType()
		fields = append(fields, ast.FieldDecl{Name: name, Type: typ, Sp: span.Join(tokenSpan(start), typ.Span())})
		if !p.match(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RBRACE, "'}'")
	return fields
}

func (p *Parser) parseStruct(vis ast.Visibility) ast.Item {
	start := p.advance() // KW_S
	name := p.expect(lexer.IDENT, "struct name").Text
	generics := p.parseGenerics()
	fields := p.parseFieldDecls()
	return &ast.Struct{Base: ast.Base{Sp: tokenSpan(start)}, Name: name, Generics: generics, Fields: fields, Visibility: vis}
}

func (p *Parser) parseVariants() []ast.EnumVariant {
	p.expect(lexer.LBRACE, "'{'")
	var variants []ast.EnumVariant
	for !p.at(lexer.RBRACE) && !p.atEOF() {
		start := p.cur()
		name := p.expect(lexer.IDENT, "variant name").Text
		var fields []ast.FieldDecl
		if p.match(lexer.LPAREN) {
			for !p.at(lexer.RPAREN) && !p.atEOF() {
				t := p.parseType()
				fields = append(fields, ast.FieldDecl{Type: t, Sp: t.Span()})
				if !p.match(lexer.COMMA) {
					break
				}
			}
			p.expect(lexer.RPAREN, "')'")
		}
		variants = append(variants, ast.EnumVariant{Name: name, Fields: fields, Sp: tokenSpan(start)})
		if !p.match(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RBRACE, "'}'")
	return variants
}

func (p *Parser) parseEnum(vis ast.Visibility) ast.Item {
	start := p.advance() // KW_E
	name := p.expect(lexer.IDENT, "enum name").Text
	generics := p.parseGenerics()
	variants := p.parseVariants()
	return &ast.Enum{Base: ast.Base{Sp: tokenSpan(start)}, Name: name, Generics: generics, Variants: variants, Visibility: vis}
}

func (p *Parser) parseUnion(vis ast.Visibility) ast.Item {
	start := p.advance() // KW_U
	name := p.expect(lexer.IDENT, "union name").Text
	generics := p.parseGenerics()
	variants := p.parseVariants()
	return &ast.Union{Base: ast.Base{Sp: tokenSpan(start)}, Name: name, Generics: generics, Variants: variants, Visibility: vis}
}

func (p *Parser) parseTraitMethodSig() ast.TraitMethodSig {
	start := p.expect(lexer.KW_F, "'F'")
	name := p.expect(lexer.IDENT, "method name").Text
	params := p.parseParams()
	var ret ast.Type
	if p.match(lexer.ARROW) {
		ret = p.parseType()
	}
	var def *ast.FuncBody
	if p.match(lexer.ASSIGN) {
		e := p.parseExpr()
		def = &ast.FuncBody{Expr: e}
		p.match(lexer.SEMICOLON)
	} else if p.at(lexer.LBRACE) {
		blk := p.parseBlock().(*ast.Block)
		def = &ast.FuncBody{Block: blk}
	} else {
		p.match(lexer.SEMICOLON)
	}
	return ast.TraitMethodSig{Name: name, Params: params, ReturnType: ret, Default: def, Sp: tokenSpan(start)}
}

func (p *Parser) parseTrait() ast.Item {
	start := p.advance() // KW_T
	name := p.expect(lexer.IDENT, "trait name").Text
	generics := p.parseGenerics()
	p.expect(lexer.LBRACE, "'{'")
	var methods []ast.TraitMethodSig
	for !p.at(lexer.RBRACE) && !p.atEOF() {
		methods = append(methods, p.parseTraitMethodSig())
	}
	p.expect(lexer.RBRACE, "'}'")
	return &ast.Trait{Base: ast.Base{Sp: tokenSpan(start)}, Name: name, Generics: generics, Methods: methods}
}

func (p *Parser) parseImpl() ast.Item {
	start := p.advance() // KW_I
	generics := p.parseGenerics()
	negative := p.match(lexer.BANG)
	// Either `impl Trait for Target` or a bare inherent `impl Target`.
	first := p.expect(lexer.IDENT, "trait or target name").Text
	var traitName string
	var target ast.Type
	if p.match(lexer.KW_FOR) {
		traitName = first
		target = p.parseType()
	} else {
		target = &ast.NamedType{Base: ast.Base{Sp: tokenSpan(start)}, Name: first}
	}
	p.expect(lexer.LBRACE, "'{'")
	var methods []*ast.Function
	for !p.at(lexer.RBRACE) && !p.atEOF() {
		f := p.parseFunction(ast.VisPublic, false).(*ast.Function)
		methods = append(methods, f)
	}
	p.expect(lexer.RBRACE, "'}'")
	return &ast.Impl{
		Base: ast.Base{Sp: tokenSpan(start)}, TraitName: traitName, Generics: generics,
		TargetType: target, IsNegative: negative, Methods: methods,
	}
}

func (p *Parser) parseConst() ast.Item {
	start := p.advance() // KW_CONST
	name := p.expect(lexer.IDENT, "const name").Text
	var typ ast.Type
	if p.match(lexer.COLON) {
		typ = p.parseType()
	}
	p.expect(lexer.ASSIGN, "'='")
	val := p.parseExpr()
	p.match(lexer.SEMICOLON)
	return &ast.Const{Base: ast.Base{Sp: span.Join(tokenSpan(start), val.Span())}, Name: name, Type: typ, Value: val}
}

func (p *Parser) parseGlobal() ast.Item {
	start := p.advance() // KW_GLOBAL
	mutable := p.match(lexer.KW_MUT)
	name := p.expect(lexer.IDENT, "global name").Text
	var typ ast.Type
	if p.match(lexer.COLON) {
		typ = p.parseType()
	}
	p.expect(lexer.ASSIGN, "'='")
	val := p.parseExpr()
	p.match(lexer.SEMICOLON)
	return &ast.Global{Base: ast.Base{Sp: span.Join(tokenSpan(start), val.Span())}, Name: name, Type: typ, Value: val, Mutable: mutable}
}

func (p *Parser) parseTypeAlias() ast.Item {
	start := p.advance() // KW_TYPE
	name := p.expect(lexer.IDENT, "type alias name").Text
	generics := p.parseGenerics()
	p.expect(lexer.ASSIGN, "'='")
	aliased := p.parseType()
	p.match(lexer.SEMICOLON)
	return &ast.TypeAlias{Base: ast.Base{Sp: span.Join(tokenSpan(start), aliased.Span())}, Name: name, Generics: generics, Aliased: aliased}
}

func (p *Parser) parseUse() ast.Item {
	start := p.advance() // KW_USE
	path := p.parsePathLiteral()
	var symbols []string
	if p.match(lexer.COLONCOLON) {
		p.expect(lexer.LBRACE, "'{'")
		for !p.at(lexer.RBRACE) && !p.atEOF() {
			symbols = append(symbols, p.expect(lexer.IDENT, "imported symbol").Text)
			if !p.match(lexer.COMMA) {
				break
			}
		}
		p.expect(lexer.RBRACE, "'}'")
	}
	p.match(lexer.SEMICOLON)
	return &ast.Use{Base: ast.Base{Sp: tokenSpan(start)}, Path: path, Symbols: symbols}
}

// parsePathLiteral reads a `::`-joined module path, e.g. `a::b::c`, or a
// quoted string path for file-relative imports.
func (p *Parser) parsePathLiteral() string {
	if p.at(lexer.STRING) {
		return p.advance().Text
	}
	path := p.expect(lexer.IDENT, "module path").Text
	for p.at(lexer.COLONCOLON) && p.peek(1).Kind == lexer.IDENT {
		p.advance()
		path += "::" + p.advance().Text
	}
	return path
}

func (p *Parser) parseExternBlock() ast.Item {
	start := p.advance() // KW_EXTERN
	abi := p.expect(lexer.STRING, "ABI string").Text
	p.expect(lexer.LBRACE, "'{'")
	var funcs []ast.TraitMethodSig
	for !p.at(lexer.RBRACE) && !p.atEOF() {
		sig := p.parseTraitMethodSig()
		funcs = append(funcs, sig)
	}
	p.expect(lexer.RBRACE, "'}'")
	return &ast.ExternBlock{Base: ast.Base{Sp: tokenSpan(start)}, ABI: abi, Funcs: funcs}
}

func (p *Parser) parseMacroDef() ast.Item {
	start := p.advance() // KW_MACRO
	name := p.expect(lexer.IDENT, "macro name").Text
	p.expect(lexer.LBRACE, "'{'")
	var rules []ast.MacroRule
	for !p.at(lexer.RBRACE) && !p.atEOF() {
		ruleStart := p.cur()
		pattern := p.collectBalancedParenTokens()
		p.expect(lexer.FARROW, "'=>'")
		template := p.collectBalancedBraceTokens()
		rules = append(rules, ast.MacroRule{Pattern: pattern, Template: template, Sp: tokenSpan(ruleStart)})
		p.match(lexer.SEMICOLON)
	}
	p.expect(lexer.RBRACE, "'}'")
	return &ast.Macro{Base: ast.Base{Sp: tokenSpan(start)}, Name: name, Rules: rules}
}

// collectBalancedParenTokens collects every token inside a `(...)` group,
// not including the delimiters, for a macro rule's pattern side.
func (p *Parser) collectBalancedParenTokens() []lexer.Token {
	p.expect(lexer.LPAREN, "'(' to start macro rule pattern")
	var toks []lexer.Token
	depth := 1
	for depth > 0 && !p.atEOF() {
		t := p.advance()
		switch t.Kind {
		case lexer.LPAREN:
			depth++
		case lexer.RPAREN:
			depth--
			if depth == 0 {
				return toks
			}
		}
		toks = append(toks, t)
	}
	return toks
}

// collectBalancedBraceTokens collects every token inside a `{...}` group,
// not including the delimiters, for a macro rule's template side.
func (p *Parser) collectBalancedBraceTokens() []lexer.Token {
	p.expect(lexer.LBRACE, "'{' to start macro rule template")
	var toks []lexer.Token
	depth := 1
	for depth > 0 && !p.atEOF() {
		t := p.advance()
		switch t.Kind {
		case lexer.LBRACE:
			depth++
		case lexer.RBRACE:
			depth--
			if depth == 0 {
				return toks
			}
		}
		toks = append(toks, t)
	}
	return toks
}
