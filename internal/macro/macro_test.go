package macro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/parser"
)

func TestCollectRemovesMacroItems(t *testing.T) {
	src := `
macro square {
  ($x) => { $x * $x }
}
F f() -> int = 1
`
	mod, err := parser.Parse(src, "t.va")
	require.NoError(t, err)

	reg, kept := Collect(mod.Items)
	require.Len(t, kept, 1)
	_, isMacro := kept[0].(*ast.Macro)
	assert.False(t, isMacro)
	_, ok := reg.Lookup("square")
	assert.True(t, ok)
}

func TestExpandSimpleInvocation(t *testing.T) {
	src := `
macro square {
  ($x) => { $x * $x }
}
F f() -> int = square!(5)
`
	mod, err := parser.Parse(src, "t.va")
	require.NoError(t, err)

	bag := Run(mod, "t.va")
	assert.False(t, bag.HasErrors())

	fn := findFunc(t, mod, "f")
	bin, ok := fn.Body.Expr.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, "*", bin.Op)
	left, ok := bin.Left.(*ast.IntLit)
	require.True(t, ok)
	assert.Equal(t, int64(5), left.Value)
}

func TestExpandUnknownMacroReportsDiagnostic(t *testing.T) {
	src := `F f() -> int = nope!(1)`
	mod, err := parser.Parse(src, "t.va")
	require.NoError(t, err)

	bag := Run(mod, "t.va")
	require.True(t, bag.HasErrors())
	assert.Equal(t, "E030", string(bag.Items()[0].Code))
}

func TestExpandNoMatchingRuleReportsDiagnostic(t *testing.T) {
	src := `
macro pair {
  ($a, $b) => { $a + $b }
}
F f() -> int = pair!(1)
`
	mod, err := parser.Parse(src, "t.va")
	require.NoError(t, err)

	bag := Run(mod, "t.va")
	require.True(t, bag.HasErrors())
	assert.Equal(t, "E031", string(bag.Items()[0].Code))
}

func TestExpandNestedInvocationInCallArgs(t *testing.T) {
	src := `
macro double {
  ($x) => { $x * 2 }
}
F f() -> int = sum(double!(3), 1)
`
	mod, err := parser.Parse(src, "t.va")
	require.NoError(t, err)

	bag := Run(mod, "t.va")
	assert.False(t, bag.HasErrors())

	fn := findFunc(t, mod, "f")
	call, ok := fn.Body.Expr.(*ast.Call)
	require.True(t, ok)
	_, stillInvocation := call.Args[0].(*ast.MacroInvocation)
	assert.False(t, stillInvocation)
	bin, ok := call.Args[0].(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, "*", bin.Op)
}

func TestDeriveEqSynthesizesImpl(t *testing.T) {
	src := `
@derive(Eq)
S Point {
  x: int,
  y: int
}
`
	mod, err := parser.Parse(src, "t.va")
	require.NoError(t, err)

	Run(mod, "t.va")

	var impl *ast.Impl
	for _, item := range mod.Items {
		if i, ok := item.(*ast.Impl); ok {
			impl = i
		}
	}
	require.NotNil(t, impl)
	assert.Equal(t, "Eq", impl.TraitName)
	require.Len(t, impl.Methods, 1)
	assert.Equal(t, "eq", impl.Methods[0].Name)
}

func findFunc(t *testing.T, mod *ast.Module, name string) *ast.Function {
	t.Helper()
	for _, item := range mod.Items {
		if fn, ok := item.(*ast.Function); ok && fn.Name == name {
			return fn
		}
	}
	t.Fatalf("function %q not found", name)
	return nil
}
