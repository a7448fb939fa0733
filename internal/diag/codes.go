// Package diag provides the structured diagnostic type shared by every
// compiler phase (lex/parse, macro expansion, type check, coherence, borrow
// check, cache, and external tools), along with the centralized error code
// taxonomy used to render them.
package diag

// Code is one of the stable error/warning identifiers printed in
// "error[<code>]: ..." diagnostics. Codes are grouped by phase so a reader
// can tell where in the pipeline a failure originated without reading the
// message.
type Code string

const (
	// Lexer
	CodeUnknownToken Code = "E001"

	// Parser
	CodeUnexpectedToken   Code = "E010"
	CodeInvalidLiteral    Code = "E011"
	CodeInvalidVersion    Code = "E012"
	CodeInvalidType       Code = "E013"
	CodeInvalidExpression Code = "E014"
	CodeInvalidMetaKey    Code = "E015"
	CodeInvalidGoalType   Code = "E016"
	CodeInvalidFlowOp     Code = "E017"
	CodeInvalidConstraint Code = "E018"

	// Macro
	CodeUnknownMacro   Code = "E030"
	CodeNoMatchingRule Code = "E031"
	CodeDepthExceeded  Code = "E032"

	// Type system
	CodeMismatch           Code = "E050"
	CodeInfiniteType       Code = "E051"
	CodeUnresolvedVariable Code = "E052"
	CodeUnresolvedFunction Code = "E053"
	CodeArityMismatch      Code = "E054"
	CodeMethodNotFound     Code = "E055"
	CodeTraitNotImpl       Code = "E056"

	// Coherence (trait/impl resolver)
	CodeConflictingImpls    Code = "E070"
	CodeNegativeImplConflct Code = "E071"

	// Borrow checker — codes fixed by the spec (§6.5)
	CodeUseAfterMove          Code = "E100"
	CodeDoubleFree            Code = "E101"
	CodeUseAfterFree          Code = "E102"
	CodeMutableBorrowConflict Code = "E103"
	CodeBorrowWhileMutBorrow  Code = "E104"
	CodeMoveWhileBorrowed     Code = "E105"

	// Cache (never user-visible for version mismatches; I/O errors are logged)
	CodeCacheIO Code = "E120"

	// External tools
	CodeExternalTool Code = "E130"
)

// Phase identifies which pipeline stage produced a diagnostic.
type Phase string

const (
	PhaseLexer        Phase = "lexer"
	PhaseParser       Phase = "parser"
	PhaseMacro        Phase = "macro"
	PhaseTypeCheck    Phase = "typecheck"
	PhaseCoherence    Phase = "coherence"
	PhaseBorrowCheck  Phase = "borrowck"
	PhaseCache        Phase = "cache"
	PhaseOrchestrator Phase = "orchestrator"
	PhaseExternal     Phase = "external"
)
