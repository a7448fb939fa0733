// Package borrowck verifies per-Local ownership discipline over a MIR
// Body: no use-after-move, no double-drop, no use-after-drop, no two
// simultaneously active mutable borrows, no shared borrow while a mutable
// borrow is live, and no move of a borrowed value.
//
// The checker here runs a single forward pass per block in index order, as
// the spec describes as sufficient for straight-line and simply-branching
// bodies; a full dataflow fixed point over Predecessors (intersection for
// definitely-initialized, union for maybe-moved) is the natural extension
// for bodies with loops back-edges revisiting a block with divergent
// incoming states, left as a refinement on top of this pass structure.
package borrowck

import (
	"fmt"

	"github.com/vaislang/vais/internal/diag"
	"github.com/vaislang/vais/internal/mir"
	"github.com/vaislang/vais/internal/span"
	"github.com/vaislang/vais/internal/types"
)

// LocalStateKind enumerates the four ownership states a Local can be in.
type LocalStateKind int

const (
	Uninitialized LocalStateKind = iota
	Owned
	Moved
	Dropped
)

// Location addresses one point in a Body: a basic block and a statement
// index within it, with the index equal to the block's statement count
// denoting its terminator.
type Location struct {
	Block mir.BlockID
	Stmt  int
}

func (l Location) String() string { return fmt.Sprintf("bb%d[%d]", l.Block, l.Stmt) }

// LocalState is the current ownership state of one Local, with the
// Location that established it (zero Location for Uninitialized).
type LocalState struct {
	Kind LocalStateKind
	At   Location
}

// BorrowKind distinguishes a shared read-only borrow from an exclusive
// mutable one.
type BorrowKind int

const (
	Shared BorrowKind = iota
	Mutable
)

// BorrowInfo is one active borrow of a Local, recorded at the Location it
// was taken.
type BorrowInfo struct {
	Kind BorrowKind
	At   Location
}

// Checker carries the mutable per-Local state across a single run over one
// Body, plus the IsCopy predicate telling it which locals participate in
// move/drop tracking at all.
type Checker struct {
	body    *mir.Body
	isCopy  func(types.Type) bool
	states  []LocalState
	borrows [][]BorrowInfo
	diags   *diag.Bag
	spanOf  func(Location) span.Span
}

// IsCopyType reports whether t is a Copy type: a primitive, or a by-value
// aggregate (tuple/struct) whose components are all Copy. `string` is
// deliberately excluded — the source languages this checker serves treat
// it as an owned, movable value, not a Copy scalar.
func IsCopyType(t types.Type) bool {
	if types.IsNumeric(t) {
		return true
	}
	if t.String() == "bool" {
		return true
	}
	if fields, ok := types.StructFields(t); ok {
		for _, f := range fields {
			if !IsCopyType(f.Type) {
				return false
			}
		}
		return true
	}
	return false
}

// New constructs a Checker for body. spanOf resolves a Location to a
// source span for diagnostic rendering; callers typically build it from
// the MIR builder's statement-to-span side table.
func New(body *mir.Body, spanOf func(Location) span.Span) *Checker {
	c := &Checker{
		body:    body,
		isCopy:  IsCopyType,
		states:  make([]LocalState, len(body.Locals)),
		borrows: make([][]BorrowInfo, len(body.Locals)),
		diags:   diag.NewBag(),
		spanOf:  spanOf,
	}
	// Local(0) (return place) starts Uninitialized; parameters start
	// Owned at the function entry location; everything else defaults to
	// the zero value, which is Uninitialized.
	entry := Location{Block: 0, Stmt: 0}
	for i := 1; i <= body.NumParams(); i++ {
		c.states[i] = LocalState{Kind: Owned, At: entry}
	}
	return c
}

// Diagnostics returns the accumulated diagnostic bag after Run.
func (c *Checker) Diagnostics() *diag.Bag { return c.diags }

func (c *Checker) report(code diag.Code, loc Location, related *Location, format string, args ...any) {
	d := diag.Diagnostic{
		Code:     code,
		Phase:    diag.PhaseBorrowCheck,
		Severity: diag.SeverityError,
		Message:  fmt.Sprintf(format, args...),
		Span:     c.spanOf(loc),
	}
	if related != nil {
		sp := c.spanOf(*related)
		d.Related = &sp
	}
	c.diags.Add(d)
}

// Run performs the single forward pass over every block in index order.
func (c *Checker) Run() {
	for bi := range c.body.Blocks {
		c.runBlock(mir.BlockID(bi))
	}
}

func (c *Checker) runBlock(bb mir.BlockID) {
	block := c.body.Block(bb)
	for si, stmt := range block.Statements {
		loc := Location{Block: bb, Stmt: si}
		switch stmt.Kind {
		case mir.StmtAssign:
			c.checkRvalue(stmt.Rvalue, loc)
			c.applyAssign(stmt.Place, loc)
		case mir.StmtDrop:
			c.applyDrop(stmt.Place, loc)
		case mir.StmtNop:
		}
	}
	if block.Terminator != nil {
		termLoc := Location{Block: bb, Stmt: len(block.Statements)}
		c.checkTerminator(*block.Terminator, termLoc)
	}
}

func (c *Checker) checkTerminator(term mir.Terminator, loc Location) {
	switch term.Kind {
	case mir.TermReturn:
		st := c.states[mir.ReturnPlace]
		switch st.Kind {
		case Moved:
			c.report(diag.CodeUseAfterMove, loc, &st.At, "return value was moved out")
		case Dropped:
			c.report(diag.CodeUseAfterFree, loc, &st.At, "return value was dropped")
		}
	case mir.TermCall, mir.TermTailCall:
		for _, a := range term.Args {
			c.checkOperand(a, loc)
		}
	case mir.TermAssert:
		c.checkOperand(term.AssertCond, loc)
	case mir.TermSwitchInt:
		c.checkOperand(term.Discriminant, loc)
	}
}

// checkOperand applies the Copy(place)/Move(place) discipline described in
// §4.6's operand checks.
func (c *Checker) checkOperand(op mir.Operand, loc Location) {
	if op.Kind == mir.OpConstant {
		return
	}
	local := op.Place.Local
	st := c.states[local]
	copyType := c.isCopy(c.body.Locals[local].Type)

	switch op.Kind {
	case mir.OpCopy:
		if copyType {
			return
		}
		if st.Kind == Moved {
			c.report(diag.CodeUseAfterMove, loc, &st.At, "use of moved local %%%d", local)
		} else if st.Kind == Dropped {
			c.report(diag.CodeUseAfterFree, loc, &st.At, "use of dropped local %%%d", local)
		}
	case mir.OpMove:
		if copyType {
			return
		}
		if st.Kind == Moved {
			c.report(diag.CodeUseAfterMove, loc, &st.At, "use of moved local %%%d", local)
			return
		}
		if st.Kind == Dropped {
			c.report(diag.CodeUseAfterFree, loc, &st.At, "use of dropped local %%%d", local)
			return
		}
		if len(c.borrows[local]) > 0 {
			c.report(diag.CodeMoveWhileBorrowed, loc, &c.borrows[local][0].At, "move of local %%%d while borrowed", local)
			return
		}
		c.states[local] = LocalState{Kind: Moved, At: loc}
	}
}

func (c *Checker) checkRvalue(rv mir.Rvalue, loc Location) {
	switch rv.Kind {
	case mir.RvUse:
		c.checkOperand(rv.Operand, loc)
	case mir.RvBinaryOp:
		c.checkOperand(rv.Left, loc)
		c.checkOperand(rv.Right, loc)
	case mir.RvUnaryOp:
		c.checkOperand(rv.Operand, loc)
	case mir.RvRef:
		c.applyBorrow(rv.RefPlace, rv.RefMut, loc)
	case mir.RvAggregate:
		for _, e := range rv.Elements {
			c.checkOperand(e, loc)
		}
	case mir.RvDiscriminant, mir.RvLen:
		st := c.states[rv.SourcePlace.Local]
		if st.Kind == Moved {
			c.report(diag.CodeUseAfterMove, loc, &st.At, "use of moved local %%%d", rv.SourcePlace.Local)
		} else if st.Kind == Dropped {
			c.report(diag.CodeUseAfterFree, loc, &st.At, "use of dropped local %%%d", rv.SourcePlace.Local)
		}
	case mir.RvCast:
		c.checkOperand(rv.Operand, loc)
	}
}

// applyBorrow classifies and records a borrow per §4.6's Borrow rule.
func (c *Checker) applyBorrow(place mir.Place, mutable bool, loc Location) {
	local := place.Local
	kind := Shared
	if mutable {
		kind = Mutable
	}
	for _, b := range c.borrows[local] {
		if kind == Mutable && b.Kind == Mutable {
			c.report(diag.CodeMutableBorrowConflict, loc, &b.At, "cannot mutably borrow local %%%d a second time", local)
			return
		}
		if kind != b.Kind {
			c.report(diag.CodeBorrowWhileMutBorrow, loc, &b.At, "cannot borrow local %%%d, already mutably borrowed", local)
			return
		}
	}
	c.borrows[local] = append(c.borrows[local], BorrowInfo{Kind: kind, At: loc})
}

// applyAssign sets place Owned at loc and clears outstanding borrows of
// its Local, since assignment invalidates them.
func (c *Checker) applyAssign(place mir.Place, loc Location) {
	local := place.Local
	c.states[local] = LocalState{Kind: Owned, At: loc}
	c.borrows[local] = nil
}

// applyDrop implements §4.6's Drop rule for non-Copy locals; Copy locals
// treat Drop as a no-op.
func (c *Checker) applyDrop(place mir.Place, loc Location) {
	local := place.Local
	decl := c.body.Locals[local]
	if c.isCopy(decl.Type) {
		return
	}
	st := c.states[local]
	switch st.Kind {
	case Owned, Uninitialized:
		c.states[local] = LocalState{Kind: Dropped, At: loc}
	case Moved:
		// value already left; dropping a moved-from local is a no-op.
	case Dropped:
		c.report(diag.CodeDoubleFree, loc, &st.At, "local %%%d already dropped", local)
	}
}
