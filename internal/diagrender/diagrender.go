// Package diagrender renders internal/diag's structured diagnostics as
// colored terminal text, the same "error[<code>]: <message>" plus
// "--> file:line:col" arrow shape internal/diag.Diagnostic.String already
// produces, but with the driver's color coding and caret underlines laid
// on top — the teacher's own REPL/driver output idiom (cmd/ailang and
// internal/repl both color banners the same way), not a new logging
// framework.
package diagrender

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/width"

	"github.com/vaislang/vais/internal/diag"
	"github.com/vaislang/vais/internal/span"
)

var (
	errorLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	warnLabel  = color.New(color.FgYellow, color.Bold).SprintFunc()
	errorCode  = color.New(color.FgRed).SprintFunc()
	warnCode   = color.New(color.FgYellow).SprintFunc()
	arrow      = color.New(color.FgCyan).SprintFunc()
	caretColor = color.New(color.FgRed, color.Bold).SprintFunc()
	helpLabel  = color.New(color.FgGreen).SprintFunc()
	dim        = color.New(color.Faint).SprintFunc()
)

// Render writes one diagnostic in the colored banner/arrow/caret form. If
// source is non-empty, the offending line and a caret underline are
// printed beneath the arrow; source is typically the already-read file
// text the caller loaded to parse, so this never re-reads from disk.
func Render(w io.Writer, d diag.Diagnostic, source string) {
	label, code := errorLabel("error"), errorCode(string(d.Code))
	if d.Severity == diag.SeverityWarning {
		label, code = warnLabel("warning"), warnCode(string(d.Code))
	}
	fmt.Fprintf(w, "%s[%s]: %s\n", label, code, d.Message)
	fmt.Fprintf(w, "  %s %s\n", arrow("-->"), d.Span.Start)

	if line, ok := sourceLine(source, d.Span.Start.Line); ok {
		fmt.Fprintf(w, "   %s\n", line)
		width := caretWidth(d.Span, line)
		fmt.Fprintf(w, "   %s%s\n", strings.Repeat(" ", displayOffset(line, d.Span.Start.Column)), caretColor(strings.Repeat("^", width)))
	}

	if d.Related != nil {
		fmt.Fprintf(w, "  %s %s %s\n", arrow("-->"), d.Related.Start, dim("(related)"))
	}
	if d.Fix != nil {
		fmt.Fprintf(w, "  %s %s\n", helpLabel("= help:"), d.Fix.Message)
	}
}

// RenderBag writes every diagnostic in bag, in source order, separated by
// a blank line, and returns the error/warning counts it rendered so the
// caller can decide its exit status without re-walking the bag. source
// maps an absolute file path to its already-loaded text.
func RenderBag(w io.Writer, bag *diag.Bag, source map[string]string) (errors, warnings int) {
	bag.SortBySpan()
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		Render(w, d, source[d.Span.Start.File])
		if d.Severity == diag.SeverityWarning {
			warnings++
		} else {
			errors++
		}
	}
	return errors, warnings
}

// sourceLine returns the 1-indexed line's text from source, or ("", false)
// if source is empty or the line is out of range.
func sourceLine(source string, line int) (string, bool) {
	if source == "" || line < 1 {
		return "", false
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return "", false
	}
	return lines[line-1], true
}

// displayOffset returns the terminal column width of line's text before
// the 1-based rune column col, counting each rune by its east-asian
// display width rather than assuming one cell per rune — a caret under a
// line containing full-width characters would otherwise land short.
func displayOffset(line string, col int) int {
	n, runeIdx := 0, 0
	for _, r := range line {
		if runeIdx >= col-1 {
			break
		}
		n += runeWidth(r)
		runeIdx++
	}
	return n
}

// caretWidth returns how many terminal cells the span's underline should
// cover: the display width of its source text when the span stays on one
// line, or a single caret when it crosses lines (a full multi-line
// underline is left to a future renderer mode).
func caretWidth(sp span.Span, line string) int {
	if sp.Start.Line != sp.End.Line || sp.End.Column <= sp.Start.Column {
		return 1
	}
	n, runeIdx := 0, 0
	for _, r := range line {
		if runeIdx < sp.Start.Column-1 {
			runeIdx++
			continue
		}
		if runeIdx >= sp.End.Column-1 {
			break
		}
		n += runeWidth(r)
		runeIdx++
	}
	if n == 0 {
		return 1
	}
	return n
}

func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}
