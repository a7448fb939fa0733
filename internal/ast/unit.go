package ast

import "github.com/vaislang/vais/internal/span"

// This file's types back the declarative unit DSL: a UNIT declaration whose
// body is a fixed sequence of named blocks (META, INPUT, OUTPUT, INTENT,
// CONSTRAINT, FLOW, EXECUTION, VERIFY) terminated by END. Block order is
// enforced by the parser, not by this data model — a UnitDecl's block
// pointers are simply nil when a block was omitted or failed to parse.

// MetaEntry is one `key: value` line inside a META block.
type MetaEntry struct {
	Key   string
	Value Expr
	Sp    span.Span
}

// MetaBlock carries free-form unit metadata (name, version, author, ...).
type MetaBlock struct {
	Base
	Entries []MetaEntry
}

// IOParam is one named, typed entry of an INPUT or OUTPUT block.
type IOParam struct {
	Name string
	Type Type
	Sp   span.Span
}

// IOBlock models both INPUT and OUTPUT — a list of named parameters.
type IOBlock struct {
	Base
	Params []IOParam
}

// GoalKind classifies one INTENT entry's stated purpose.
type GoalKind int

const (
	GoalPrimary GoalKind = iota
	GoalSecondary
	GoalConstraint
)

// IntentEntry is one goal statement inside an INTENT block.
type IntentEntry struct {
	Kind GoalKind
	Text string
	Sp   span.Span
}

// IntentBlock states why the unit exists.
type IntentBlock struct {
	Base
	Entries []IntentEntry
}

// ConstraintKind classifies one CONSTRAINT entry.
type ConstraintKind int

const (
	ConstraintInvariant ConstraintKind = iota
	ConstraintPrecondition
	ConstraintPostcondition
)

// ConstraintEntry is one `kind: expr` line inside a CONSTRAINT block.
type ConstraintEntry struct {
	Kind ConstraintKind
	Expr Expr
	Sp   span.Span
}

// ConstraintBlock lists invariants the unit must uphold.
type ConstraintBlock struct {
	Base
	Entries []ConstraintEntry
}

// FlowStep is one named operation with arguments inside a FLOW block.
type FlowStep struct {
	Op   string
	Args []Expr
	Sp   span.Span
}

// FlowBlock is the ordered sequence of steps the unit performs.
type FlowBlock struct {
	Base
	Steps []FlowStep
}

// ExecutionBlock is the unit's executable body, parsed with the same
// statement grammar as a function's block body.
type ExecutionBlock struct {
	Base
	Body *Block
}

// VerifyEntry is one post-execution check.
type VerifyEntry struct {
	Expr Expr
	Sp   span.Span
}

// VerifyBlock lists the checks run after EXECUTION to confirm the unit
// did what INTENT and CONSTRAINT promised.
type VerifyBlock struct {
	Base
	Entries []VerifyEntry
}

// UnitDecl is a top-level declarative unit: UNIT name [version] followed by
// its blocks in the fixed order META/INPUT/OUTPUT/INTENT/CONSTRAINT/FLOW/
// EXECUTION/VERIFY, terminated by END. Any block pointer may be nil if the
// unit omitted it or the parser could not recover it.
type UnitDecl struct {
	Base
	Name       string
	Version    string
	Meta       *MetaBlock
	Input      *IOBlock
	Output     *IOBlock
	Intent     *IntentBlock
	Constraint *ConstraintBlock
	Flow       *FlowBlock
	Execution  *ExecutionBlock
	Verify     *VerifyBlock
}

func (*UnitDecl) itemNode() {}
