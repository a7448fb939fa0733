package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaislang/vais/internal/ast"
)

func TestParseConstAndGlobal(t *testing.T) {
	src := `
const MaxRetries: int = 3
global mut counter: int = 0
`
	mod, err := Parse(src, "t.va")
	require.NoError(t, err)
	require.Len(t, mod.Items, 2)
	c, ok := mod.Items[0].(*ast.Const)
	require.True(t, ok)
	assert.Equal(t, "MaxRetries", c.Name)
	g, ok := mod.Items[1].(*ast.Global)
	require.True(t, ok)
	assert.Equal(t, "counter", g.Name)
	assert.True(t, g.Mutable)
}

func TestParseTypeAliasAndUse(t *testing.T) {
	src := `
type Id = int
use a::b::{c, d}
`
	mod, err := Parse(src, "t.va")
	require.NoError(t, err)
	require.Len(t, mod.Items, 2)
	alias, ok := mod.Items[0].(*ast.TypeAlias)
	require.True(t, ok)
	assert.Equal(t, "Id", alias.Name)
	use, ok := mod.Items[1].(*ast.Use)
	require.True(t, ok)
	assert.Equal(t, "a::b", use.Path)
	assert.Equal(t, []string{"c", "d"}, use.Symbols)
}

func TestParseExternBlock(t *testing.T) {
	src := `
extern "C" {
  F strlen(s: string) -> int
}
`
	mod, err := Parse(src, "t.va")
	require.NoError(t, err)
	require.Len(t, mod.Items, 1)
	ext, ok := mod.Items[0].(*ast.ExternBlock)
	require.True(t, ok)
	assert.Equal(t, "C", ext.ABI)
	require.Len(t, ext.Funcs, 1)
	assert.Equal(t, "strlen", ext.Funcs[0].Name)
}

func TestParseMacroDef(t *testing.T) {
	src := `
macro square {
  (x) => { x * x }
}
`
	mod, err := Parse(src, "t.va")
	require.NoError(t, err)
	require.Len(t, mod.Items, 1)
	m, ok := mod.Items[0].(*ast.Macro)
	require.True(t, ok)
	assert.Equal(t, "square", m.Name)
	require.Len(t, m.Rules, 1)
	assert.NotEmpty(t, m.Rules[0].Pattern)
	assert.NotEmpty(t, m.Rules[0].Template)
}

func TestParseGenericFunctionWithWhere(t *testing.T) {
	src := `F identity<T: Clone>(x: T) -> T where T: Clone = x`
	mod, err := Parse(src, "t.va")
	require.NoError(t, err)
	fn, ok := mod.Items[0].(*ast.Function)
	require.True(t, ok)
	require.Len(t, fn.Generics, 1)
	assert.Equal(t, "T", fn.Generics[0].Name)
	assert.Equal(t, []string{"Clone"}, fn.Generics[0].Bounds)
	require.Len(t, fn.Where, 1)
}

func TestParsePubAsyncFunction(t *testing.T) {
	src := `pub async F fetch() -> int = 1`
	mod, err := Parse(src, "t.va")
	require.NoError(t, err)
	fn, ok := mod.Items[0].(*ast.Function)
	require.True(t, ok)
	assert.Equal(t, ast.VisPublic, fn.Visibility)
	assert.True(t, fn.Async)
}

func TestParseRefAndMutParams(t *testing.T) {
	src := `F swap(&mut a: int, &b: int) -> int = a`
	mod, err := Parse(src, "t.va")
	require.NoError(t, err)
	fn := mod.Items[0].(*ast.Function)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, ast.OwnByMutRef, fn.Params[0].Ownership)
	assert.Equal(t, ast.OwnByRef, fn.Params[1].Ownership)
}

func TestParsePatternsInMatch(t *testing.T) {
	src := `
F f(v: int) -> string {
  R M v {
    1 | 2 => "small",
    3..10 => "medium",
    n @ 11 => "eleven",
    _ => "large"
  }
}
`
	mod, err := Parse(src, "t.va")
	require.NoError(t, err)
	fn := mod.Items[0].(*ast.Function)
	ret := fn.Body.Block.Stmts[0].(*ast.Return)
	m := ret.Value.(*ast.Match)
	require.Len(t, m.Arms, 4)
	_, isOr := m.Arms[0].Pattern.(*ast.OrPattern)
	assert.True(t, isOr)
	_, isRange := m.Arms[1].Pattern.(*ast.RangePattern)
	assert.True(t, isRange)
	_, isAlias := m.Arms[2].Pattern.(*ast.AliasPattern)
	assert.True(t, isAlias)
	_, isWildcard := m.Arms[3].Pattern.(*ast.WildcardPattern)
	assert.True(t, isWildcard)
}

func TestParseTypes(t *testing.T) {
	src := `
F f(a: int, b: [string], c: Map<string, int>, d: (int, string), e: (int) -> bool, g: int?) -> int = 0
`
	mod, err := Parse(src, "t.va")
	require.NoError(t, err)
	fn := mod.Items[0].(*ast.Function)
	require.Len(t, fn.Params, 6)
	_, isArr := fn.Params[1].Type.(*ast.ArrayType)
	assert.True(t, isArr)
	named, isNamed := fn.Params[2].Type.(*ast.NamedType)
	require.True(t, isNamed)
	assert.Equal(t, "Map", named.Name)
	assert.Len(t, named.Args, 2)
	_, isTuple := fn.Params[3].Type.(*ast.TupleType)
	assert.True(t, isTuple)
	_, isFunc := fn.Params[4].Type.(*ast.FuncType)
	assert.True(t, isFunc)
	_, isOpt := fn.Params[5].Type.(*ast.OptionalType)
	assert.True(t, isOpt)
}
