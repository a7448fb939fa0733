package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuiltinsRegistered(t *testing.T) {
	for _, name := range []string{"print", "len", "push", "pop", "map_get", "to_string"} {
		assert.True(t, IsBuiltin(name), "expected builtin %q", name)
	}
	assert.False(t, IsBuiltin("not_a_builtin"))
}

func TestLenInstantiatesFreshEachCall(t *testing.T) {
	env := NewTypeEnv()
	sc := Builtins["len"]
	t1 := Instantiate(env, sc)
	t2 := Instantiate(env, sc)
	f1, f2 := t1.(*kindFunc), t2.(*kindFunc)
	id1, _ := AsVar(f1.Params[0].(*kindArray).Elem)
	id2, _ := AsVar(f2.Params[0].(*kindArray).Elem)
	assert.NotEqual(t, id1, id2)
}
