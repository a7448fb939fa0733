package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaislang/vais/internal/ast"
)

func TestParseSimpleFunction(t *testing.T) {
	src := `F add(a: int, b: int) -> int { R a + b }`
	mod, err := Parse(src, "t.va")
	require.NoError(t, err)
	require.Len(t, mod.Items, 1)
	fn, ok := mod.Items[0].(*ast.Function)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	assert.Len(t, fn.Params, 2)
	assert.NotNil(t, fn.Body.Block)
}

func TestParseStructEnumUnion(t *testing.T) {
	src := `
S Point { x: int, y: int }
E Option { Some(int), None }
U Value { IntV(int), StrV(string) }
`
	mod, err := Parse(src, "t.va")
	require.NoError(t, err)
	require.Len(t, mod.Items, 3)
	st, ok := mod.Items[0].(*ast.Struct)
	require.True(t, ok)
	assert.Equal(t, "Point", st.Name)
	en, ok := mod.Items[1].(*ast.Enum)
	require.True(t, ok)
	assert.Len(t, en.Variants, 2)
	un, ok := mod.Items[2].(*ast.Union)
	require.True(t, ok)
	assert.Len(t, un.Variants, 2)
}

func TestParseTraitAndImpl(t *testing.T) {
	src := `
T Shape {
  F area() -> f64
}
I Shape for Circle {
  F area() -> f64 = 0.0
}
`
	mod, err := Parse(src, "t.va")
	require.NoError(t, err)
	require.Len(t, mod.Items, 2)
	tr, ok := mod.Items[0].(*ast.Trait)
	require.True(t, ok)
	assert.Len(t, tr.Methods, 1)
	impl, ok := mod.Items[1].(*ast.Impl)
	require.True(t, ok)
	assert.Equal(t, "Shape", impl.TraitName)
	assert.Len(t, impl.Methods, 1)
}

func TestParseExpressionPrecedence(t *testing.T) {
	// `and` binds tighter than `or`; `*` binds tighter than `+`.
	src := `F f() -> bool = true || false && true`
	mod, err := Parse(src, "t.va")
	require.NoError(t, err)
	fn := mod.Items[0].(*ast.Function)
	bin, ok := fn.Body.Expr.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, "||", bin.Op)
	rhs, ok := bin.Right.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, "&&", rhs.Op)
}

func TestParseStructLitSuppressedInIfCondition(t *testing.T) {
	// Inside an `I` condition, `x` must not be read as the start of a
	// struct literal — the following `{` belongs to the if's then-block.
	src := `F f(x: bool) -> int { I x { 1 } else { 2 } }`
	mod, err := Parse(src, "t.va")
	require.NoError(t, err)
	fn := mod.Items[0].(*ast.Function)
	ifExpr, ok := fn.Body.Block.Tail.(*ast.If)
	require.True(t, ok)
	_, isIdent := ifExpr.Cond.(*ast.Ident)
	assert.True(t, isIdent, "condition should parse as a bare ident, not a struct literal")
}

func TestParseMapLiteral(t *testing.T) {
	src := `F f() -> int { V m = #{ "a": 1, "b": 2 } R 0 }`
	mod, err := Parse(src, "t.va")
	require.NoError(t, err)
	fn := mod.Items[0].(*ast.Function)
	let, ok := fn.Body.Block.Stmts[0].(*ast.LetStmt)
	require.True(t, ok)
	mapLit, ok := let.Value.(*ast.MapLit)
	require.True(t, ok)
	assert.Len(t, mapLit.Entries, 2)
}

func TestParseLambda(t *testing.T) {
	src := `F f() -> int { V g = (a, b) => a + b R 0 }`
	mod, err := Parse(src, "t.va")
	require.NoError(t, err)
	fn := mod.Items[0].(*ast.Function)
	let := fn.Body.Block.Stmts[0].(*ast.LetStmt)
	lam, ok := let.Value.(*ast.Lambda)
	require.True(t, ok)
	assert.Len(t, lam.Params, 2)
}

func TestParseMatchWithGuard(t *testing.T) {
	src := `
F classify(n: int) -> string {
  R M n {
    x I x > 0 => "positive",
    0 => "zero",
    _ => "negative"
  }
}
`
	mod, err := Parse(src, "t.va")
	require.NoError(t, err)
	fn := mod.Items[0].(*ast.Function)
	ret := fn.Body.Block.Stmts[0].(*ast.Return)
	m, ok := ret.Value.(*ast.Match)
	require.True(t, ok)
	require.Len(t, m.Arms, 3)
	assert.NotNil(t, m.Arms[0].Guard)
	assert.Nil(t, m.Arms[1].Guard)
}

func TestParseUnitDecl(t *testing.T) {
	src := `
UNIT Greeter "1.0" {
  META {
    author: "a"
  }
  INPUT {
    name: string
  }
  OUTPUT {
    greeting: string
  }
  INTENT {
    PRIMARY: "greet a person by name"
  }
  CONSTRAINT {
    PRECONDITION: true
  }
  FLOW {
    format(name)
  }
  EXECUTION {
    R name
  }
  VERIFY {
    true
  }
}
END
`
	mod, err := Parse(src, "t.va")
	require.NoError(t, err)
	require.Len(t, mod.Items, 1)
	unit, ok := mod.Items[0].(*ast.UnitDecl)
	require.True(t, ok)
	assert.Equal(t, "Greeter", unit.Name)
	assert.Equal(t, "1.0", unit.Version)
	require.NotNil(t, unit.Meta)
	assert.Len(t, unit.Meta.Entries, 1)
	require.NotNil(t, unit.Input)
	assert.Len(t, unit.Input.Params, 1)
	require.NotNil(t, unit.Output)
	require.NotNil(t, unit.Intent)
	assert.Equal(t, ast.GoalPrimary, unit.Intent.Entries[0].Kind)
	require.NotNil(t, unit.Constraint)
	assert.Equal(t, ast.ConstraintPrecondition, unit.Constraint.Entries[0].Kind)
	require.NotNil(t, unit.Flow)
	assert.Equal(t, "format", unit.Flow.Steps[0].Op)
	require.NotNil(t, unit.Execution)
	require.NotNil(t, unit.Verify)
}

func TestParseStrictAbortsOnFirstError(t *testing.T) {
	src := `F broken( { R 1 }`
	_, err := Parse(src, "t.va")
	require.Error(t, err)
}

// TestRecoverThreeItemsMiddleBroken mirrors the documented recovery
// scenario: three top-level items where the middle one has an unmatched
// `(`. Both neighbors must still parse cleanly.
func TestRecoverThreeItemsMiddleBroken(t *testing.T) {
	src := `
F first() -> int = 1
F broken( -> int { R 1 }
F third() -> int = 3
`
	mod, bag := ParseRecoverable(src, "t.va")
	require.True(t, bag.HasErrors())
	require.Len(t, mod.Items, 3)

	first, ok := mod.Items[0].(*ast.Function)
	require.True(t, ok)
	assert.Equal(t, "first", first.Name)

	third, ok := mod.Items[2].(*ast.Function)
	require.True(t, ok)
	assert.Equal(t, "third", third.Name)
}

func TestRoundTripPrintReparse(t *testing.T) {
	src := `F add(a: int, b: int) -> int { R a + b }`
	mod1, err := Parse(src, "t.va")
	require.NoError(t, err)

	printed := ast.Print(mod1)
	mod2, err := Parse(printed, "t2.va")
	require.NoError(t, err)

	fn1 := mod1.Items[0].(*ast.Function)
	fn2 := mod2.Items[0].(*ast.Function)
	assert.Equal(t, fn1.Name, fn2.Name)
	assert.Len(t, fn2.Params, len(fn1.Params))
}
