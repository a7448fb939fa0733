// Package lexer turns a UTF-8 source buffer into a token stream for both of
// the core's surface grammars: the terse C-like systems language (F/S/E/T/I/M/V/L/R/B
// keywords) and the declarative unit DSL (META/INPUT/OUTPUT/INTENT/CONSTRAINT/
// FLOW/EXECUTION/VERIFY/END blocks).
package lexer

import "fmt"

// Kind is the tag on a Token.
type Kind int

const (
	ILLEGAL Kind = iota
	EOF
	COMMENT
	NEWLINE

	IDENT
	INT
	FLOAT
	STRING
	REGEX
	DURATION
	SIZE

	// Terse single-letter item/statement keywords.
	KW_F // function
	KW_S // struct
	KW_E // enum
	KW_U // union
	KW_T // trait
	KW_I // impl (item context) / if (expr context)
	KW_M // module (item context) / match (expr context)
	KW_V // let
	KW_L // loop (item-less) / while
	KW_R // return
	KW_B // break

	// Full-word keywords.
	KW_CONST
	KW_GLOBAL
	KW_TYPE
	KW_USE
	KW_EXTERN
	KW_MACRO
	KW_PUB
	KW_ASYNC
	KW_AWAIT
	KW_SPAWN
	KW_YIELD
	KW_ASSERT
	KW_ASSUME
	KW_OLD
	KW_WHERE
	KW_IN
	KW_AS
	KW_REF
	KW_MUT
	KW_ELSE
	KW_FOR
	KW_CONTINUE
	KW_TRUE
	KW_FALSE
	KW_SELF
	KW_IMPLIES

	// Unit DSL block keywords.
	KW_UNIT
	KW_META
	KW_INPUT
	KW_OUTPUT
	KW_INTENT
	KW_CONSTRAINT
	KW_FLOW
	KW_EXECUTION
	KW_VERIFY
	KW_END

	// Operators.
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	EQ
	NEQ
	LT
	GT
	LTE
	GTE
	ANDAND
	OROR
	NOT
	AMP
	PIPE
	CARET
	TILDE
	SHL
	SHR
	ARROW
	FARROW
	LARROW
	PLUSPLUS
	COLONCOLON
	DOT
	BANG
	QUESTION
	AT
	DOLLAR
	HASH
	ASSIGN
	COLON

	// Delimiters.
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	COMMA
	ELLIPSIS
	SEMICOLON
)

var names = map[Kind]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF", COMMENT: "COMMENT", NEWLINE: "NEWLINE",
	IDENT: "IDENT", INT: "INT", FLOAT: "FLOAT", STRING: "STRING",
	REGEX: "REGEX", DURATION: "DURATION", SIZE: "SIZE",
	KW_F: "F", KW_S: "S", KW_E: "E", KW_U: "U", KW_T: "T", KW_I: "I",
	KW_M: "M", KW_V: "V", KW_L: "L", KW_R: "R", KW_B: "B",
	KW_CONST: "const", KW_GLOBAL: "global", KW_TYPE: "type", KW_USE: "use",
	KW_EXTERN: "extern", KW_MACRO: "macro", KW_PUB: "pub", KW_ASYNC: "async",
	KW_AWAIT: "await", KW_SPAWN: "spawn", KW_YIELD: "yield", KW_ASSERT: "assert",
	KW_ASSUME: "assume", KW_OLD: "old", KW_WHERE: "where", KW_IN: "in",
	KW_AS: "as", KW_REF: "ref", KW_MUT: "mut", KW_ELSE: "else", KW_FOR: "for",
	KW_CONTINUE: "continue", KW_TRUE: "true", KW_FALSE: "false", KW_SELF: "self",
	KW_IMPLIES: "implies",
	KW_UNIT:    "UNIT", KW_META: "META", KW_INPUT: "INPUT", KW_OUTPUT: "OUTPUT",
	KW_INTENT: "INTENT", KW_CONSTRAINT: "CONSTRAINT", KW_FLOW: "FLOW",
	KW_EXECUTION: "EXECUTION", KW_VERIFY: "VERIFY", KW_END: "END",
	PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PERCENT: "%",
	EQ: "==", NEQ: "!=", LT: "<", GT: ">", LTE: "<=", GTE: ">=",
	ANDAND: "&&", OROR: "||", NOT: "!", AMP: "&", PIPE: "|", CARET: "^",
	TILDE: "~", SHL: "<<", SHR: ">>", ARROW: "->", FARROW: "=>", LARROW: "<-",
	PLUSPLUS: "++", COLONCOLON: "::", DOT: ".", BANG: "!", QUESTION: "?",
	AT: "@", DOLLAR: "$", HASH: "#", ASSIGN: "=", COLON: ":",
	LPAREN: "(", RPAREN: ")", LBRACE: "{", RBRACE: "}",
	LBRACKET: "[", RBRACKET: "]", COMMA: ",", ELLIPSIS: "...", SEMICOLON: ";",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// keywords maps full-word spellings to their Kind. Single-letter keywords
// are looked up case-sensitively as bare identifiers ("F", "S", ...);
// everything else here is a normal lowercase keyword.
var keywords = map[string]Kind{
	"F": KW_F, "S": KW_S, "E": KW_E, "U": KW_U, "T": KW_T,
	"I": KW_I, "M": KW_M, "V": KW_V, "L": KW_L, "R": KW_R, "B": KW_B,

	"const": KW_CONST, "global": KW_GLOBAL, "type": KW_TYPE, "use": KW_USE,
	"extern": KW_EXTERN, "macro": KW_MACRO, "pub": KW_PUB, "async": KW_ASYNC,
	"await": KW_AWAIT, "spawn": KW_SPAWN, "yield": KW_YIELD, "assert": KW_ASSERT,
	"assume": KW_ASSUME, "old": KW_OLD, "where": KW_WHERE, "in": KW_IN,
	"as": KW_AS, "ref": KW_REF, "mut": KW_MUT, "else": KW_ELSE, "for": KW_FOR,
	"continue": KW_CONTINUE, "true": KW_TRUE, "false": KW_FALSE, "self": KW_SELF,
	"implies": KW_IMPLIES,

	"UNIT": KW_UNIT, "META": KW_META, "INPUT": KW_INPUT, "OUTPUT": KW_OUTPUT,
	"INTENT": KW_INTENT, "CONSTRAINT": KW_CONSTRAINT, "FLOW": KW_FLOW,
	"EXECUTION": KW_EXECUTION, "VERIFY": KW_VERIFY, "END": KW_END,
}

// LookupIdent classifies an identifier as a keyword or plain IDENT.
func LookupIdent(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}
	return IDENT
}

// Token is (kind, span, original text). The lexer attaches line/column
// positions (columns count runes) alongside the byte offsets Offset and
// EndOff, so the parser and diagnostics never recompute them.
type Token struct {
	Kind   Kind
	Text   string
	File   string
	Line   int
	Column int
	Offset int
	EndOff int
}

func (t Token) String() string {
	return fmt.Sprintf("Token{%s, %q, %s:%d:%d}", t.Kind, t.Text, t.File, t.Line, t.Column)
}

// IsItemKeyword reports whether a token can begin a top-level item, used by
// the parser's error-recovery synchronization search.
func (t Token) IsItemKeyword() bool {
	switch t.Kind {
	case KW_F, KW_S, KW_E, KW_U, KW_T, KW_I, KW_M, KW_CONST, KW_GLOBAL,
		KW_TYPE, KW_USE, KW_EXTERN, KW_MACRO:
		return true
	}
	return false
}
