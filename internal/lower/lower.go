// Package lower builds a mir.Body out of one already type-checked
// ast.Function, the last step before borrow checking and code generation
// (spec §4.5/§4.6). It has no teacher precedent — AILANG evaluates its core
// IR directly with no ownership-tracked three-address form — so its shape
// follows the teacher's own internal/pipeline.OpLowerer: a small struct
// carrying the ambient state (here, the in-progress mir.Body and scope) plus
// a recursive-descent switch over every node kind, falling back to a
// type-suffix heuristic (§op_lowering.go's own documented MVP shortcut)
// wherever a Local's exact type would otherwise require re-running
// unification that internal/checker already performed once.
package lower

import (
	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/borrowck"
	"github.com/vaislang/vais/internal/mir"
	"github.com/vaislang/vais/internal/span"
	"github.com/vaislang/vais/internal/types"
)

// Builder holds the state threaded through lowering one function body.
type Builder struct {
	body    *mir.Body
	scope   []map[string]mir.Local
	spans   map[borrowck.Location]span.Span
	current mir.BlockID
	loops   []loopCtx
}

// loopCtx tracks the block a `break` inside the loop jumps to. The parser
// drops a `continue` statement without producing a node, so there is
// nothing else to remember per loop.
type loopCtx struct {
	breakTarget mir.BlockID
}

// Function lowers fn into a standalone mir.Body. paramTypes/retType are the
// function's already-resolved signature (from the checker's TypeEnv, or
// re-derived via resolveType for a signature never passed through one).
// Spans returns the per-statement/terminator source span table borrowck.New
// needs to render diagnostics.
func Function(fn *ast.Function, paramTypes []types.Type, retType types.Type) (*mir.Body, map[borrowck.Location]span.Span) {
	body := mir.NewBody(fn.Name, paramTypes, retType)
	b := &Builder{
		body:  body,
		spans: make(map[borrowck.Location]span.Span),
	}
	b.pushScope()
	b.current = body.NewBlock()

	for i, p := range fn.Params {
		b.bind(p.Name, mir.Local(i+1))
	}

	var result mir.Operand
	switch {
	case fn.Body.Expr != nil:
		result = b.lowerExpr(fn.Body.Expr)
	case fn.Body.Block != nil:
		result = b.lowerBlock(fn.Body.Block)
	default:
		result = mir.ConstOp(mir.Constant{Type: types.Void, IsUnit: true})
	}

	b.emit(mir.Assign(mir.BarePlace(mir.ReturnPlace), mir.UseOf(result)), fn.Span())
	b.terminate(mir.Return(), fn.Span())

	return body, b.spans
}

func (b *Builder) pushScope() { b.scope = append(b.scope, make(map[string]mir.Local)) }
func (b *Builder) popScope()  { b.scope = b.scope[:len(b.scope)-1] }

func (b *Builder) bind(name string, l mir.Local) { b.scope[len(b.scope)-1][name] = l }

func (b *Builder) lookup(name string) (mir.Local, bool) {
	for i := len(b.scope) - 1; i >= 0; i-- {
		if l, ok := b.scope[i][name]; ok {
			return l, true
		}
	}
	return 0, false
}

func (b *Builder) newLocal(t types.Type, name string) mir.Local {
	return b.body.NewLocal(mir.LocalDecl{Name: name, Type: t, Mutable: true})
}

func (b *Builder) newBlock() mir.BlockID { return b.body.NewBlock() }

// emit appends stmt to the current block, recording sp at its Location.
func (b *Builder) emit(stmt mir.Statement, sp span.Span) {
	blk := b.body.Block(b.current)
	loc := borrowck.Location{Block: b.current, Stmt: len(blk.Statements)}
	blk.Statements = append(blk.Statements, stmt)
	b.spans[loc] = sp
}

// terminate sets the current block's terminator, recording sp, unless the
// block is already closed. It never moves the builder's cursor; callers
// follow it with switchTo.
func (b *Builder) terminate(term mir.Terminator, sp span.Span) {
	blk := b.body.Block(b.current)
	if blk.Terminator != nil {
		return // block already closed (e.g. by a prior return/break)
	}
	loc := borrowck.Location{Block: b.current, Stmt: len(blk.Statements)}
	blk.Terminator = &term
	b.spans[loc] = sp
}

// closed reports whether the current block already has a terminator, i.e.
// an earlier Return/Break made the rest of this block unreachable.
func (b *Builder) closed() bool { return b.body.Block(b.current).Terminator != nil }

// switchTo moves the builder's write cursor to id.
func (b *Builder) switchTo(id mir.BlockID) { b.current = id }
