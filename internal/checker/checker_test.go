package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaislang/vais/internal/parser"
)

func TestCheckSimpleFunctionOK(t *testing.T) {
	src := `F add(a: int, b: int) -> int = a + b`
	mod, err := parser.Parse(src, "t.va")
	require.NoError(t, err)
	_, bag := Check(mod, nil)
	assert.False(t, bag.HasErrors())
}

func TestCheckReturnTypeMismatch(t *testing.T) {
	src := `F f() -> int = "oops"`
	mod, err := parser.Parse(src, "t.va")
	require.NoError(t, err)
	_, bag := Check(mod, nil)
	require.True(t, bag.HasErrors())
	assert.Equal(t, "E050", string(bag.Items()[0].Code))
}

func TestCheckCallArityMismatch(t *testing.T) {
	src := `
F add(a: int, b: int) -> int = a + b
F g() -> int = add(1)
`
	mod, err := parser.Parse(src, "t.va")
	require.NoError(t, err)
	_, bag := Check(mod, nil)
	require.True(t, bag.HasErrors())
	assert.Equal(t, "E054", string(bag.Items()[0].Code))
}

func TestCheckUnresolvedName(t *testing.T) {
	src := `F f() -> int = nope`
	mod, err := parser.Parse(src, "t.va")
	require.NoError(t, err)
	_, bag := Check(mod, nil)
	require.True(t, bag.HasErrors())
	assert.Equal(t, "E052", string(bag.Items()[0].Code))
}

func TestCheckStructFieldAccess(t *testing.T) {
	src := `
S Point { x: int, y: int }
F sum(p: Point) -> int = p.x + p.y
`
	mod, err := parser.Parse(src, "t.va")
	require.NoError(t, err)
	_, bag := Check(mod, nil)
	assert.False(t, bag.HasErrors())
}

func TestCheckStructLitAndFieldMismatch(t *testing.T) {
	src := `
S Point { x: int, y: int }
F mk() -> Point = Point { x: 1, y: "nope" }
`
	mod, err := parser.Parse(src, "t.va")
	require.NoError(t, err)
	_, bag := Check(mod, nil)
	require.True(t, bag.HasErrors())
}

func TestCheckGenericIdentityFunction(t *testing.T) {
	src := `
F identity<T>(x: T) -> T = x
F g() -> int = identity(5)
`
	mod, err := parser.Parse(src, "t.va")
	require.NoError(t, err)
	_, bag := Check(mod, nil)
	assert.False(t, bag.HasErrors())
}

func TestCheckEnumVariantConstructorAndMatch(t *testing.T) {
	src := `
E Option { Some(int), None }
F unwrap_or(o: Option, d: int) -> int {
  R M o {
    Some(x) => x,
    None => d
  }
}
F g() -> int = unwrap_or(Some(1), 0)
`
	mod, err := parser.Parse(src, "t.va")
	require.NoError(t, err)
	_, bag := Check(mod, nil)
	assert.False(t, bag.HasErrors())
}

func TestCheckForLoopOverArray(t *testing.T) {
	src := `
F total(xs: [int]) -> int {
  V sum: int = 0
  for i in xs {
    sum = sum + i
  }
  R sum
}
`
	mod, err := parser.Parse(src, "t.va")
	require.NoError(t, err)
	_, bag := Check(mod, nil)
	assert.False(t, bag.HasErrors())
}

func TestCheckImplMethodCall(t *testing.T) {
	src := `
S Counter { n: int }
I Counter {
  F get(&self) -> int = self.n
}
F g(c: Counter) -> int = c.get()
`
	mod, err := parser.Parse(src, "t.va")
	require.NoError(t, err)
	_, bag := Check(mod, nil)
	assert.False(t, bag.HasErrors())
}
