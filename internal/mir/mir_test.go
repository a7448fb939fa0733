package mir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vaislang/vais/internal/types"
)

func TestNewBodyReservesReturnAndParamLocals(t *testing.T) {
	b := NewBody("add", []types.Type{types.Int, types.Int}, types.Int)
	assert.Equal(t, 3, len(b.Locals))
	assert.Equal(t, types.Int, b.Locals[0].Type)
	assert.Equal(t, 2, b.NumParams())
}

func TestCFGSuccessorsGoto(t *testing.T) {
	b := NewBody("f", nil, types.Void)
	entry := b.NewBlock()
	target := b.NewBlock()
	b.Block(entry).Terminator = &Terminator{Kind: TermGoto, Target: target}
	b.Block(target).Terminator = &Terminator{Kind: TermReturn}

	assert.Equal(t, []BlockID{target}, Successors(b, entry))
	assert.Nil(t, Successors(b, target))
}

func TestCFGSwitchIntSuccessorsIncludeOtherwise(t *testing.T) {
	b := NewBody("f", nil, types.Void)
	entry := b.NewBlock()
	case0 := b.NewBlock()
	otherwise := b.NewBlock()
	term := SwitchInt(Operand{}, []SwitchCase{{Value: 0, Target: case0}}, otherwise)
	b.Block(entry).Terminator = &term

	succs := Successors(b, entry)
	assert.Equal(t, []BlockID{case0, otherwise}, succs)
}

func TestPredecessorsIsReverseOfSuccessors(t *testing.T) {
	b := NewBody("f", nil, types.Void)
	a := b.NewBlock()
	c := b.NewBlock()
	d := b.NewBlock()
	goA := Goto(c)
	goC := Goto(d)
	b.Block(a).Terminator = &goA
	b.Block(c).Terminator = &goC
	ret := Return()
	b.Block(d).Terminator = &ret

	preds := Predecessors(b)
	assert.Equal(t, []BlockID{a}, preds[c])
	assert.Equal(t, []BlockID{c}, preds[d])
	assert.Nil(t, preds[a])
}
