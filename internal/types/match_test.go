package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypesMatchStructural(t *testing.T) {
	assert.True(t, TypesMatch(Int, Int))
	assert.False(t, TypesMatch(Int, Str))
	assert.True(t, TypesMatch(Array(Int), Array(Int)))
	assert.False(t, TypesMatch(Array(Int), Array(Str)))
	assert.True(t, TypesMatch(AnyType, Int))
	assert.True(t, TypesMatch(Str, AnyType))
}

func TestMethodTableInherentLookup(t *testing.T) {
	mt := NewMethodTable()
	target := Named("Counter")
	mt.Register(target, "incr", Mono(Func([]Type{target}, target)))

	sc, ok := mt.Lookup(Named("Counter"), "incr")
	assert.True(t, ok)
	assert.NotNil(t, sc)

	_, ok = mt.Lookup(Named("Counter"), "decr")
	assert.False(t, ok)

	_, ok = mt.Lookup(Named("Other"), "incr")
	assert.False(t, ok)
}
