package lexer

import "testing"

func TestNextToken(t *testing.T) {
	input := `V x = 5 + 10
F add(a: int, b: int) -> int {
  R a + b
}

I (x > 10) { 1 } else { 2 }

10s 256MB 3.14 1e10

-- comment
/* block
   comment */
true && false || !true
`

	tests := []struct {
		kind Kind
		text string
	}{
		{KW_V, "V"}, {IDENT, "x"}, {ASSIGN, "="}, {INT, "5"}, {PLUS, "+"}, {INT, "10"},
		{NEWLINE, "\n"},
		{KW_F, "F"}, {IDENT, "add"}, {LPAREN, "("},
		{IDENT, "a"}, {COLON, ":"}, {IDENT, "int"}, {COMMA, ","},
		{IDENT, "b"}, {COLON, ":"}, {IDENT, "int"}, {RPAREN, ")"},
		{ARROW, "->"}, {IDENT, "int"}, {LBRACE, "{"}, {NEWLINE, "\n"},
		{KW_R, "R"}, {IDENT, "a"}, {PLUS, "+"}, {IDENT, "b"}, {NEWLINE, "\n"},
		{RBRACE, "}"}, {NEWLINE, "\n"}, {NEWLINE, "\n"},
		{KW_I, "I"}, {LPAREN, "("}, {IDENT, "x"}, {GT, ">"}, {INT, "10"}, {RPAREN, ")"},
		{LBRACE, "{"}, {INT, "1"}, {RBRACE, "}"}, {KW_ELSE, "else"}, {LBRACE, "{"}, {INT, "2"}, {RBRACE, "}"},
		{NEWLINE, "\n"}, {NEWLINE, "\n"},
		{DURATION, "10s"}, {SIZE, "256MB"}, {FLOAT, "3.14"}, {FLOAT, "1e10"},
		{NEWLINE, "\n"}, {NEWLINE, "\n"},
		{NEWLINE, "\n"}, // ends the "-- comment" line
		{NEWLINE, "\n"}, // ends the line the block comment closes on
		{KW_TRUE, "true"}, {ANDAND, "&&"}, {KW_FALSE, "false"}, {OROR, "||"}, {BANG, "!"}, {KW_TRUE, "true"},
		{NEWLINE, "\n"},
		{EOF, ""},
	}

	l := New(input, "test.va")
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Kind != tt.kind {
			t.Fatalf("test[%d] - wrong kind. expected=%s, got=%s (%q)", i, tt.kind, tok.Kind, tok.Text)
		}
		if tok.Text != tt.text {
			t.Fatalf("test[%d] - wrong text. expected=%q, got=%q", i, tt.text, tok.Text)
		}
	}
}

func TestNeverFails(t *testing.T) {
	inputs := []string{"", "`", "\x00", "\"unterminated", "/* unterminated"}
	for _, in := range inputs {
		l := New(in, "x")
		toks := l.Tokens()
		if toks[len(toks)-1].Kind != EOF {
			t.Fatalf("expected EOF sentinel for %q", in)
		}
	}
}

func TestDurationVsSizeSuffixes(t *testing.T) {
	cases := []struct {
		in   string
		kind Kind
	}{
		{"100ms", DURATION}, {"10s", DURATION}, {"3h", DURATION}, {"5m", DURATION},
		{"256MB", SIZE}, {"1GB", SIZE}, {"4KB", SIZE}, {"10B", SIZE},
	}
	for _, c := range cases {
		l := New(c.in, "x")
		tok := l.NextToken()
		if tok.Kind != c.kind || tok.Text != c.in {
			t.Fatalf("%q: expected (%s,%q), got (%s,%q)", c.in, c.kind, c.in, tok.Kind, tok.Text)
		}
	}
}

func TestStringEscapes(t *testing.T) {
	l := New(`"a\nb\tc\\d\"e"`, "x")
	tok := l.NextToken()
	if tok.Kind != STRING {
		t.Fatalf("expected STRING, got %s", tok.Kind)
	}
	want := "a\nb\tc\\d\"e"
	if tok.Text != want {
		t.Fatalf("expected %q, got %q", want, tok.Text)
	}
}

func TestLineAndColumnTracking(t *testing.T) {
	l := New("V x\nV y", "x")
	_ = l.NextToken() // V
	tok := l.NextToken() // x
	if tok.Line != 1 {
		t.Fatalf("expected line 1, got %d", tok.Line)
	}
	_ = l.NextToken() // NEWLINE
	tok = l.NextToken() // V (line 2)
	if tok.Line != 2 {
		t.Fatalf("expected line 2, got %d", tok.Line)
	}
}
