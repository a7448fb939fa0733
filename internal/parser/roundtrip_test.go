package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/span"
)

// ignoreSpans treats every span.Span as equal to every other, since
// ast.Print loses exact source positions (it re-renders canonical
// surface syntax, not a byte-for-byte copy) and the round-trip property
// only claims structural equality.
var ignoreSpans = cmp.Comparer(func(a, b span.Span) bool { return true })

// TestPrintParseRoundTrip checks the invariant ast.Print documents:
// parsing Print(parse(src)) must reproduce an AST structurally equal
// (modulo spans) to the one produced by parsing src directly.
func TestPrintParseRoundTrip(t *testing.T) {
	sources := []string{
		`F add(a: int, b: int) -> int { R a + b }`,
		`S Point { x: int, y: int }`,
		`E Option { Some(int), None }`,
	}
	for _, src := range sources {
		mod1, err := Parse(src, "t.va")
		require.NoError(t, err)

		printed := ast.Print(mod1)
		mod2, err := Parse(printed, "t.va")
		require.NoError(t, err, "re-parsing printed output: %s", printed)

		if diff := cmp.Diff(mod1, mod2, ignoreSpans); diff != "" {
			t.Errorf("round trip changed AST shape for %q (printed: %q):\n%s", src, printed, diff)
		}
	}
}
