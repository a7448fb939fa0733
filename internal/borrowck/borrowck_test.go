package borrowck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaislang/vais/internal/mir"
	"github.com/vaislang/vais/internal/span"
	"github.com/vaislang/vais/internal/types"
)

func dummySpan(Location) span.Span { return span.Span{} }

func newBoxBody(t *testing.T) *mir.Body {
	t.Helper()
	return mir.NewBody("f", []types.Type{types.Named("Box")}, types.Void)
}

func TestUseAfterMoveDetected(t *testing.T) {
	b := newBoxBody(t)
	bb := b.NewBlock()
	tmp := b.NewLocal(mir.LocalDecl{Type: types.Named("Box")})
	block := b.Block(bb)
	block.Statements = append(block.Statements,
		mir.Assign(mir.BarePlace(tmp), mir.UseOf(mir.Move(mir.BarePlace(1)))),
		mir.Assign(mir.BarePlace(tmp), mir.UseOf(mir.Move(mir.BarePlace(1)))),
	)
	ret := mir.Return()
	block.Terminator = &ret

	c := New(b, dummySpan)
	c.Run()
	require.Equal(t, 1, c.Diagnostics().Len())
	assert.Equal(t, "E100", string(c.Diagnostics().Items()[0].Code))
}

func TestCopyTypeNeverMoves(t *testing.T) {
	b := mir.NewBody("f", []types.Type{types.Int}, types.Void)
	bb := b.NewBlock()
	tmp := b.NewLocal(mir.LocalDecl{Type: types.Int})
	block := b.Block(bb)
	block.Statements = append(block.Statements,
		mir.Assign(mir.BarePlace(tmp), mir.UseOf(mir.Move(mir.BarePlace(1)))),
		mir.Assign(mir.BarePlace(tmp), mir.UseOf(mir.Move(mir.BarePlace(1)))),
	)
	ret := mir.Return()
	block.Terminator = &ret

	c := New(b, dummySpan)
	c.Run()
	assert.Equal(t, 0, c.Diagnostics().Len())
}

func TestDoubleFreeDetected(t *testing.T) {
	b := newBoxBody(t)
	bb := b.NewBlock()
	block := b.Block(bb)
	block.Statements = append(block.Statements,
		mir.Drop(mir.BarePlace(1)),
		mir.Drop(mir.BarePlace(1)),
	)
	ret := mir.Return()
	block.Terminator = &ret

	c := New(b, dummySpan)
	c.Run()
	require.Equal(t, 1, c.Diagnostics().Len())
	assert.Equal(t, "E101", string(c.Diagnostics().Items()[0].Code))
}

func TestMutableBorrowConflict(t *testing.T) {
	b := newBoxBody(t)
	bb := b.NewBlock()
	r1 := b.NewLocal(mir.LocalDecl{Type: types.Named("&mut Box")})
	r2 := b.NewLocal(mir.LocalDecl{Type: types.Named("&mut Box")})
	block := b.Block(bb)
	block.Statements = append(block.Statements,
		mir.Assign(mir.BarePlace(r1), mir.Ref(mir.BarePlace(1), true)),
		mir.Assign(mir.BarePlace(r2), mir.Ref(mir.BarePlace(1), true)),
	)
	ret := mir.Return()
	block.Terminator = &ret

	c := New(b, dummySpan)
	c.Run()
	require.Equal(t, 1, c.Diagnostics().Len())
	assert.Equal(t, "E103", string(c.Diagnostics().Items()[0].Code))
}

func TestSharedBorrowsCoexist(t *testing.T) {
	b := newBoxBody(t)
	bb := b.NewBlock()
	r1 := b.NewLocal(mir.LocalDecl{Type: types.Named("&Box")})
	r2 := b.NewLocal(mir.LocalDecl{Type: types.Named("&Box")})
	block := b.Block(bb)
	block.Statements = append(block.Statements,
		mir.Assign(mir.BarePlace(r1), mir.Ref(mir.BarePlace(1), false)),
		mir.Assign(mir.BarePlace(r2), mir.Ref(mir.BarePlace(1), false)),
	)
	ret := mir.Return()
	block.Terminator = &ret

	c := New(b, dummySpan)
	c.Run()
	assert.Equal(t, 0, c.Diagnostics().Len())
}

func TestMoveWhileBorrowed(t *testing.T) {
	b := newBoxBody(t)
	bb := b.NewBlock()
	r1 := b.NewLocal(mir.LocalDecl{Type: types.Named("&Box")})
	tmp := b.NewLocal(mir.LocalDecl{Type: types.Named("Box")})
	block := b.Block(bb)
	block.Statements = append(block.Statements,
		mir.Assign(mir.BarePlace(r1), mir.Ref(mir.BarePlace(1), false)),
		mir.Assign(mir.BarePlace(tmp), mir.UseOf(mir.Move(mir.BarePlace(1)))),
	)
	ret := mir.Return()
	block.Terminator = &ret

	c := New(b, dummySpan)
	c.Run()
	require.Equal(t, 1, c.Diagnostics().Len())
	assert.Equal(t, "E105", string(c.Diagnostics().Items()[0].Code))
}

func TestAssignClearsBorrows(t *testing.T) {
	b := newBoxBody(t)
	bb := b.NewBlock()
	r1 := b.NewLocal(mir.LocalDecl{Type: types.Named("&mut Box")})
	r2 := b.NewLocal(mir.LocalDecl{Type: types.Named("&mut Box")})
	block := b.Block(bb)
	block.Statements = append(block.Statements,
		mir.Assign(mir.BarePlace(r1), mir.Ref(mir.BarePlace(1), true)),
		mir.Assign(mir.BarePlace(1), mir.UseOf(mir.ConstOp(mir.Constant{Type: types.Named("Box")}))),
		mir.Assign(mir.BarePlace(r2), mir.Ref(mir.BarePlace(1), true)),
	)
	ret := mir.Return()
	block.Terminator = &ret

	c := New(b, dummySpan)
	c.Run()
	assert.Equal(t, 0, c.Diagnostics().Len())
}

func TestReturnOfMovedValue(t *testing.T) {
	b := newBoxBody(t)
	bb := b.NewBlock()
	tmp := b.NewLocal(mir.LocalDecl{Type: types.Named("Box")})
	block := b.Block(bb)
	block.Statements = append(block.Statements,
		mir.Assign(mir.BarePlace(0), mir.UseOf(mir.Move(mir.BarePlace(1)))),
		mir.Assign(mir.BarePlace(tmp), mir.UseOf(mir.Move(mir.BarePlace(0)))),
	)
	ret := mir.Return()
	block.Terminator = &ret

	c := New(b, dummySpan)
	c.Run()
	require.Equal(t, 1, c.Diagnostics().Len())
	assert.Equal(t, "E100", string(c.Diagnostics().Items()[0].Code))
}
