// Package span provides source positions and spans shared by every later
// compiler stage. A Span is a half-open byte range [Start, End) over a
// single source buffer; every token, AST node, type, and diagnostic carries
// one so the caller can always point at the text responsible for it.
package span

import "fmt"

// Pos is a single point in a source file.
type Pos struct {
	File   string
	Offset int // byte offset into the buffer
	Line   int // 1-based
	Column int // 1-based, in runes
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Span is a half-open byte range [Start, End) over a source buffer. Spans
// are value types: they are copied freely and never exclusively owned by
// any one node.
type Span struct {
	Start Pos
	End   Pos
}

func (s Span) String() string {
	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%s:%d:%d-%d", s.Start.File, s.Start.Line, s.Start.Column, s.End.Column)
	}
	return fmt.Sprintf("%s:%d:%d-%d:%d", s.Start.File, s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

// Covers reports whether s fully contains other. Used to check the parser
// invariant that every node's span covers all of its children's spans.
func (s Span) Covers(other Span) bool {
	return s.Start.Offset <= other.Start.Offset && other.End.Offset <= s.End.Offset
}

// Join returns the smallest span covering both a and b.
func Join(a, b Span) Span {
	start, end := a.Start, a.End
	if b.Start.Offset < start.Offset {
		start = b.Start
	}
	if b.End.Offset > end.Offset {
		end = b.End
	}
	return Span{Start: start, End: end}
}

// Zero is the empty span used for synthesized nodes that have no source text.
var Zero = Span{}
