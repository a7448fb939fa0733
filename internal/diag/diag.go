package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vaislang/vais/internal/span"
)

// Severity distinguishes a hard error from an advisory warning. Only errors
// make the driver's exit code nonzero; plugin warnings never abort a build.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Fix is an optional suggested correction, rendered as a hint beneath the
// diagnostic (e.g. "&mut" hints for borrow conflicts).
type Fix struct {
	Message string
}

// Diagnostic is the single structured error/warning type produced by every
// phase of the pipeline. A borrow-check diagnostic additionally carries a
// second span: the location that established the conflicting state, so the
// caller can render a two-arrow error.
type Diagnostic struct {
	Code     Code
	Phase    Phase
	Severity Severity
	Message  string
	Span     span.Span
	Related  *span.Span // second location, e.g. the earlier move/borrow
	Fix      *Fix
}

func (d Diagnostic) Error() string {
	return d.String()
}

// String renders "error[<code>]: <message>" plus one or two "--> file:line:col"
// arrows, matching the driver-facing format described in the spec.
func (d Diagnostic) String() string {
	var b strings.Builder
	kind := "error"
	if d.Severity == SeverityWarning {
		kind = "warning"
	}
	fmt.Fprintf(&b, "%s[%s]: %s\n", kind, d.Code, d.Message)
	fmt.Fprintf(&b, "  --> %s\n", d.Span.Start)
	if d.Related != nil {
		fmt.Fprintf(&b, "  --> %s\n", d.Related.Start)
	}
	if d.Fix != nil {
		fmt.Fprintf(&b, "  = help: %s\n", d.Fix.Message)
	}
	return b.String()
}

// Bag accumulates diagnostics across a pass. Recoverable parsing, borrow
// checking, and per-module type checking all collect into the same Bag
// shape so the orchestrator can merge and print them in source order.
type Bag struct {
	items []Diagnostic
}

func NewBag() *Bag { return &Bag{} }

func (b *Bag) Add(d Diagnostic) { b.items = append(b.items, d) }

func (b *Bag) Errorf(code Code, phase Phase, sp span.Span, format string, args ...any) {
	b.Add(Diagnostic{Code: code, Phase: phase, Severity: SeverityError, Message: fmt.Sprintf(format, args...), Span: sp})
}

func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (b *Bag) Items() []Diagnostic { return b.items }

func (b *Bag) Len() int { return len(b.items) }

// SortBySpan orders diagnostics in source order, matching the ordering
// guarantee that within a single module errors follow source order.
func (b *Bag) SortBySpan() {
	sort.SliceStable(b.items, func(i, j int) bool {
		a, c := b.items[i].Span.Start, b.items[j].Span.Start
		if a.File != c.File {
			return a.File < c.File
		}
		if a.Line != c.Line {
			return a.Line < c.Line
		}
		return a.Column < c.Column
	})
}

// Merge appends another bag's diagnostics, preserving the other bag's
// internal order. Used when merging per-module bags across dependency
// levels in the orchestrator.
func (b *Bag) Merge(other *Bag) {
	b.items = append(b.items, other.items...)
}
