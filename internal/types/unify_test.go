package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifyPrimitives(t *testing.T) {
	env := NewTypeEnv()
	require.NoError(t, Unify(env, Int, Int))
	require.Error(t, Unify(env, Int, Bool))
}

func TestUnifyIntWidthCoercion(t *testing.T) {
	env := NewTypeEnv()
	require.NoError(t, Unify(env, Int, I32))
	require.NoError(t, Unify(env, U64, Int))
}

func TestUnifyVarBindsAndResolves(t *testing.T) {
	env := NewTypeEnv()
	v := env.Fresh()
	require.NoError(t, Unify(env, v, Int))
	assert.Equal(t, Int, env.Resolve(v))
}

func TestUnifyOccursCheck(t *testing.T) {
	env := NewTypeEnv()
	v := env.Fresh()
	err := Unify(env, v, Array(v))
	require.Error(t, err)
	ue, ok := err.(*UnifyError)
	require.True(t, ok)
	assert.Equal(t, "E051", string(ue.Code))
}

func TestUnifyArrayElemMismatch(t *testing.T) {
	env := NewTypeEnv()
	err := Unify(env, Array(Int), Array(Str))
	require.Error(t, err)
}

func TestUnifyTupleArityMismatch(t *testing.T) {
	env := NewTypeEnv()
	err := Unify(env, Tuple(Int, Bool), Tuple(Int))
	require.Error(t, err)
}

func TestUnifyFuncArityMismatch(t *testing.T) {
	env := NewTypeEnv()
	err := Unify(env, Func([]Type{Int}, Bool), Func([]Type{Int, Int}, Bool))
	require.Error(t, err)
	ue := err.(*UnifyError)
	assert.Equal(t, "E054", string(ue.Code))
}

func TestUnifyStructFieldwise(t *testing.T) {
	env := NewTypeEnv()
	a := Struct("Point", []Field{{Name: "x", Type: Int}, {Name: "y", Type: Int}})
	b := Struct("Point", []Field{{Name: "x", Type: Int}, {Name: "y", Type: Int}})
	require.NoError(t, Unify(env, a, b))
}

func TestUnifyAnyWildcard(t *testing.T) {
	env := NewTypeEnv()
	require.NoError(t, Unify(env, AnyType, Int))
	require.NoError(t, Unify(env, Str, AnyType))
}

func TestInstantiateProducesDisjointVars(t *testing.T) {
	env := NewTypeEnv()
	sc := Generalize(Func([]Type{Var(1)}, Var(1)), nil)
	t1 := Instantiate(env, sc)
	t2 := Instantiate(env, sc)
	f1 := t1.(*kindFunc)
	f2 := t2.(*kindFunc)
	id1, _ := AsVar(f1.Params[0])
	id2, _ := AsVar(f2.Params[0])
	assert.NotEqual(t, id1, id2)
}

func TestGeneralizeExcludesEnvFreeVars(t *testing.T) {
	free := map[int]bool{5: true}
	sc := Generalize(Func([]Type{Var(5), Var(6)}, Var(6)), free)
	assert.Equal(t, []int{6}, sc.Bound)
}

func TestNestedResolveThroughChain(t *testing.T) {
	env := NewTypeEnv()
	a := env.Fresh()
	b := env.Fresh()
	require.NoError(t, Unify(env, a, b))
	require.NoError(t, Unify(env, b, Int))
	assert.Equal(t, Int, env.Resolve(a))
}
