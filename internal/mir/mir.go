// Package mir defines the mid-level intermediate representation produced
// after type checking and consumed by borrow checking and IR emission: a
// three-address body over a control-flow graph of basic blocks, addressed
// exclusively by integer index so the graph can be cyclic without owning
// reference cycles.
package mir

import "github.com/vaislang/vais/internal/types"

// Local is a dense integer naming scheme: Local(0) is always the return
// place, Local(1..=len(params)) are parameters in order, the rest are
// temporaries introduced during lowering.
type Local int

const ReturnPlace Local = 0

// LocalDecl records a Local's declared type, optional debug name, and
// whether it may be reassigned after its first write.
type LocalDecl struct {
	Name    string // "" if not named in source
	Type    types.Type
	Mutable bool
}

// Place is an l-value: a Local plus a projection chain. Most places are
// bare Locals (an empty Projections list); internal/lower adds field,
// index and deref projections for field access, indexing, dereference,
// loop elements and pattern payloads.
type Place struct {
	Local       Local
	Projections []Projection
}

// ProjectionKind distinguishes the three ways a Place can be refined.
type ProjectionKind int

const (
	ProjField ProjectionKind = iota
	ProjIndex
	ProjDeref
)

type Projection struct {
	Kind  ProjectionKind
	Field string // for ProjField
	Index Operand // for ProjIndex
}

// BarePlace returns a Place with no projections, the common case.
func BarePlace(l Local) Place { return Place{Local: l} }

// OperandKind distinguishes the three ways a value can be read in MIR.
type OperandKind int

const (
	OpCopy OperandKind = iota
	OpMove
	OpConstant
)

// Operand is Copy(Place) | Move(Place) | Constant(literal).
type Operand struct {
	Kind     OperandKind
	Place    Place // valid when Kind is OpCopy or OpMove
	Constant Constant
}

func Copy(p Place) Operand  { return Operand{Kind: OpCopy, Place: p} }
func Move(p Place) Operand  { return Operand{Kind: OpMove, Place: p} }
func ConstOp(c Constant) Operand { return Operand{Kind: OpConstant, Constant: c} }

// Constant is a literal value baked directly into the MIR.
type Constant struct {
	Type types.Type
	// Exactly one of the following is meaningful, selected by Type.
	Int    int64
	Float  float64
	Str    string
	Bool   bool
	IsUnit bool
}

// RvalueKind distinguishes the ways a Statement's right-hand side computes
// a value.
type RvalueKind int

const (
	RvUse RvalueKind = iota
	RvBinaryOp
	RvUnaryOp
	RvRef
	RvAggregate
	RvDiscriminant
	RvCast
	RvLen
)

// Rvalue is the right-hand side of an Assign statement.
type Rvalue struct {
	Kind RvalueKind

	// RvUse
	Operand Operand

	// RvBinaryOp / RvUnaryOp
	Op          string
	Left, Right Operand

	// RvRef
	RefPlace Place
	RefMut   bool

	// RvAggregate
	AggregateKind string // struct type name, "Map", "Range", or "" for a tuple or array
	Elements      []Operand

	// RvDiscriminant / RvLen
	SourcePlace Place

	// RvCast
	CastTo types.Type
}

func UseOf(op Operand) Rvalue        { return Rvalue{Kind: RvUse, Operand: op} }
func BinaryOp(op string, l, r Operand) Rvalue {
	return Rvalue{Kind: RvBinaryOp, Op: op, Left: l, Right: r}
}
func UnaryOp(op string, o Operand) Rvalue { return Rvalue{Kind: RvUnaryOp, Op: op, Operand: o} }
func Ref(p Place, mutable bool) Rvalue    { return Rvalue{Kind: RvRef, RefPlace: p, RefMut: mutable} }
func Aggregate(kind string, elems []Operand) Rvalue {
	return Rvalue{Kind: RvAggregate, AggregateKind: kind, Elements: elems}
}
func Discriminant(p Place) Rvalue     { return Rvalue{Kind: RvDiscriminant, SourcePlace: p} }
func Cast(o Operand, to types.Type) Rvalue { return Rvalue{Kind: RvCast, Operand: o, CastTo: to} }
func Len(p Place) Rvalue              { return Rvalue{Kind: RvLen, SourcePlace: p} }

// StatementKind distinguishes the three statement forms.
type StatementKind int

const (
	StmtAssign StatementKind = iota
	StmtDrop
	StmtNop
)

// Statement is Assign(Place, Rvalue) | Drop(Place) | Nop.
type Statement struct {
	Kind    StatementKind
	Place   Place // valid for StmtAssign and StmtDrop
	Rvalue  Rvalue
}

func Assign(p Place, rv Rvalue) Statement { return Statement{Kind: StmtAssign, Place: p, Rvalue: rv} }
func Drop(p Place) Statement              { return Statement{Kind: StmtDrop, Place: p} }
func Nop() Statement                      { return Statement{Kind: StmtNop} }

// BlockID indexes BasicBlocks within a Body.
type BlockID int

// TerminatorKind distinguishes the seven ways a block can end.
type TerminatorKind int

const (
	TermGoto TerminatorKind = iota
	TermSwitchInt
	TermReturn
	TermCall
	TermTailCall
	TermUnreachable
	TermAssert
)

// SwitchCase maps one discriminant value to its target block.
type SwitchCase struct {
	Value  int64
	Target BlockID
}

// Terminator ends a BasicBlock. Every reachable block has one once the
// Body is finalized.
type Terminator struct {
	Kind TerminatorKind

	// TermGoto
	Target BlockID

	// TermSwitchInt
	Discriminant Operand
	Cases        []SwitchCase
	Otherwise    BlockID

	// TermCall / TermTailCall
	Func        Operand
	Args        []Operand
	ReturnPlace Place
	CallTarget  BlockID

	// TermAssert
	AssertCond   Operand
	AssertTarget BlockID
	AssertMsg    string
}

func Goto(target BlockID) Terminator { return Terminator{Kind: TermGoto, Target: target} }
func SwitchInt(disc Operand, cases []SwitchCase, otherwise BlockID) Terminator {
	return Terminator{Kind: TermSwitchInt, Discriminant: disc, Cases: cases, Otherwise: otherwise}
}
func Return() Terminator { return Terminator{Kind: TermReturn} }
func Call(fn Operand, args []Operand, ret Place, target BlockID) Terminator {
	return Terminator{Kind: TermCall, Func: fn, Args: args, ReturnPlace: ret, CallTarget: target}
}
func TailCall(fn Operand, args []Operand) Terminator {
	return Terminator{Kind: TermTailCall, Func: fn, Args: args}
}
func Unreachable() Terminator { return Terminator{Kind: TermUnreachable} }
func Assert(cond Operand, target BlockID, msg string) Terminator {
	return Terminator{Kind: TermAssert, AssertCond: cond, AssertTarget: target, AssertMsg: msg}
}

// BasicBlock is a statement sequence plus an optional terminator. Blocks
// under construction may have a nil Terminator; nothing in this package
// checks that a finished Body gives every reachable block one.
type BasicBlock struct {
	Statements []Statement
	Terminator *Terminator
}

// Body is a MIR function: its signature, local declarations, and CFG.
type Body struct {
	Name       string
	ParamTypes []types.Type
	ReturnType types.Type
	Locals     []LocalDecl
	Blocks     []BasicBlock
	// BlockNames optionally labels blocks for debug output; not every
	// block need appear.
	BlockNames map[BlockID]string
}

// NewBody allocates a Body with Local(0) as the declared return place.
func NewBody(name string, paramTypes []types.Type, retType types.Type) *Body {
	b := &Body{Name: name, ParamTypes: paramTypes, ReturnType: retType}
	b.Locals = append(b.Locals, LocalDecl{Type: retType})
	for _, pt := range paramTypes {
		b.Locals = append(b.Locals, LocalDecl{Type: pt, Mutable: true})
	}
	return b
}

// NewLocal declares a fresh temporary and returns its id.
func (b *Body) NewLocal(decl LocalDecl) Local {
	b.Locals = append(b.Locals, decl)
	return Local(len(b.Locals) - 1)
}

// NewBlock appends an empty block and returns its id.
func (b *Body) NewBlock() BlockID {
	b.Blocks = append(b.Blocks, BasicBlock{})
	return BlockID(len(b.Blocks) - 1)
}

// Block returns a pointer to the block so callers can append statements
// and set its terminator.
func (b *Body) Block(id BlockID) *BasicBlock { return &b.Blocks[id] }

// NumParams returns the count of parameter locals (excluding the return
// place at Local(0)).
func (b *Body) NumParams() int { return len(b.ParamTypes) }
