package diagrender

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vaislang/vais/internal/diag"
	"github.com/vaislang/vais/internal/span"
)

func pos(file string, line, col int) span.Pos {
	return span.Pos{File: file, Line: line, Column: col}
}

func TestRenderIncludesCodeAndArrow(t *testing.T) {
	var buf bytes.Buffer
	d := diag.Diagnostic{
		Code:     diag.CodeMismatch,
		Phase:    diag.PhaseTypeCheck,
		Severity: diag.SeverityError,
		Message:  "expected int, found bool",
		Span:     span.Span{Start: pos("t.va", 3, 5), End: pos("t.va", 3, 9)},
	}
	Render(&buf, d, "F f() {\n  V x = 1\n  V y = true\n}")
	out := buf.String()
	assert.Contains(t, out, "E050")
	assert.Contains(t, out, "expected int, found bool")
	assert.Contains(t, out, "t.va:3:5")
	assert.Contains(t, out, "^")
}

func TestRenderBagCountsSeverities(t *testing.T) {
	var buf bytes.Buffer
	bag := diag.NewBag()
	bag.Add(diag.Diagnostic{Code: diag.CodeMismatch, Severity: diag.SeverityError, Message: "e1", Span: span.Span{Start: pos("a.va", 1, 1)}})
	bag.Add(diag.Diagnostic{Code: diag.CodeUnresolvedVariable, Severity: diag.SeverityWarning, Message: "w1", Span: span.Span{Start: pos("a.va", 2, 1)}})

	errs, warns := RenderBag(&buf, bag, map[string]string{"a.va": "x\ny"})
	assert.Equal(t, 1, errs)
	assert.Equal(t, 1, warns)
	assert.Contains(t, buf.String(), "warning")
}

func TestDisplayOffsetCountsFullWidthRunesAsTwoCells(t *testing.T) {
	assert.Equal(t, 1, displayOffset("a", 2))
	assert.Equal(t, 2, displayOffset("あb", 2)) // full-width hiragana then 'b'
}
