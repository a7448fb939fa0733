package macro

import "github.com/vaislang/vais/internal/lexer"

// bindings maps a rule's metavariable name (written `$name` in the
// pattern) to the argument tokens it captured.
type bindings map[string][]lexer.Token

// matchRule checks args against one rule's pattern. A pattern token is
// either a metavariable (`$` IDENT) or a literal token that must match the
// corresponding argument token exactly. A metavariable greedily captures
// argument tokens up to (but not including) whatever literal token follows
// it in the pattern — or to the end of args if it is the pattern's last
// element — skipping over any parenthesized/bracketed/braced nesting so a
// call expression passed as an argument isn't split on its internal commas.
func matchRule(pattern []lexer.Token, args []lexer.Token) (bindings, bool) {
	b := bindings{}
	pi, ai := 0, 0
	for pi < len(pattern) {
		pt := pattern[pi]
		if pt.Kind == lexer.DOLLAR {
			pi++
			if pi >= len(pattern) {
				return nil, false
			}
			name := pattern[pi].Text
			pi++
			var stop *lexer.Token
			if pi < len(pattern) {
				t := pattern[pi]
				stop = &t
			}
			start := ai
			depth := 0
			for ai < len(args) {
				if stop != nil && depth == 0 && sameToken(args[ai], *stop) {
					break
				}
				switch args[ai].Kind {
				case lexer.LPAREN, lexer.LBRACKET, lexer.LBRACE:
					depth++
				case lexer.RPAREN, lexer.RBRACKET, lexer.RBRACE:
					depth--
				}
				ai++
			}
			if ai == start {
				return nil, false
			}
			b[name] = args[start:ai]
			continue
		}
		if ai >= len(args) || !sameToken(args[ai], pt) {
			return nil, false
		}
		pi++
		ai++
	}
	if ai != len(args) {
		return nil, false
	}
	return b, true
}

func sameToken(a, b lexer.Token) bool {
	return a.Kind == b.Kind && a.Text == b.Text
}

// substitute expands a rule's template, replacing every `$name`
// metavariable reference with its bound tokens; a reference to an unbound
// name is left as the literal `$name` pair, which will then fail to parse
// as an expression and surface as an ordinary parse diagnostic.
func substitute(template []lexer.Token, b bindings) []lexer.Token {
	var out []lexer.Token
	for i := 0; i < len(template); i++ {
		t := template[i]
		if t.Kind == lexer.DOLLAR && i+1 < len(template) && template[i+1].Kind == lexer.IDENT {
			if bound, ok := b[template[i+1].Text]; ok {
				out = append(out, bound...)
				i++
				continue
			}
		}
		out = append(out, t)
	}
	return out
}
