package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/borrowck"
	"github.com/vaislang/vais/internal/mir"
	"github.com/vaislang/vais/internal/parser"
	"github.com/vaislang/vais/internal/span"
	"github.com/vaislang/vais/internal/types"
)

func parseFunc(t *testing.T, src string) *ast.Function {
	t.Helper()
	mod, err := parser.Parse(src, "t.va")
	require.NoError(t, err)
	for _, item := range mod.Items {
		if fn, ok := item.(*ast.Function); ok {
			return fn
		}
	}
	t.Fatalf("no function found in %q", src)
	return nil
}

func TestLowerSimpleArithmetic(t *testing.T) {
	fn := parseFunc(t, `F add(a: int, b: int) -> int = a + b`)
	body, _ := Function(fn, []types.Type{types.Int, types.Int}, types.Int)

	require.NotEmpty(t, body.Blocks)
	last := body.Blocks[len(body.Blocks)-1]
	require.NotNil(t, last.Terminator)
	assert.Equal(t, mir.TermReturn, last.Terminator.Kind)
}

func TestLowerIfExpression(t *testing.T) {
	fn := parseFunc(t, `
F max(a: int, b: int) -> int {
  I a > b {
    R a
  } else {
    R b
  }
}
`)
	body, _ := Function(fn, []types.Type{types.Int, types.Int}, types.Int)
	require.True(t, len(body.Blocks) >= 4) // entry, then, else, join at least

	var sawSwitch bool
	for _, blk := range body.Blocks {
		if blk.Terminator != nil && blk.Terminator.Kind == mir.TermSwitchInt {
			sawSwitch = true
		}
	}
	assert.True(t, sawSwitch)
}

func TestLowerForLoopOverArray(t *testing.T) {
	fn := parseFunc(t, `
F total(xs: [int]) -> int {
  V sum: int = 0
  for i in xs {
    sum = sum + i
  }
  R sum
}
`)
	body, _ := Function(fn, []types.Type{types.Array(types.Int)}, types.Int)

	var sawLen bool
	for _, blk := range body.Blocks {
		for _, st := range blk.Statements {
			if st.Kind == mir.StmtAssign && st.Rvalue.Kind == mir.RvLen {
				sawLen = true
			}
		}
	}
	assert.True(t, sawLen)
}

func TestLowerFeedsBorrowChecker(t *testing.T) {
	fn := parseFunc(t, `F double(a: int) -> int = a + a`)
	body, spans := Function(fn, []types.Type{types.Int}, types.Int)

	bc := borrowck.New(body, func(loc borrowck.Location) span.Span {
		return spans[loc]
	})
	bc.Run()
	assert.False(t, bc.Diagnostics().HasErrors())
}
