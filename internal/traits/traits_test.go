package traits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaislang/vais/internal/types"
)

func concreteTarget(name string, t types.Type) Target {
	return Target{Kind: Concrete, Name: name, Type: t}
}

func TestDifferentConcreteTargetsNeverOverlap(t *testing.T) {
	r := NewImplRegistry()
	require.Nil(t, r.Register(ImplInfo{TraitName: "Show", Target: concreteTarget("Point", types.Named("Point"))}))
	require.Nil(t, r.Register(ImplInfo{TraitName: "Show", Target: concreteTarget("Line", types.Named("Line"))}))
}

func TestConcreteOverlapsBlanket(t *testing.T) {
	r := NewImplRegistry()
	require.Nil(t, r.Register(ImplInfo{TraitName: "Show", Target: Target{Kind: Blanket}}))
	diagErr := r.Register(ImplInfo{TraitName: "Show", Target: concreteTarget("Point", types.Named("Point"))})
	assert.Nil(t, diagErr, "concrete specializes blanket, no conflict")
}

func TestTwoBlanketImplsConflict(t *testing.T) {
	r := NewImplRegistry()
	require.Nil(t, r.Register(ImplInfo{TraitName: "Show", Target: Target{Kind: Blanket}}))
	d := r.Register(ImplInfo{TraitName: "Show", Target: Target{Kind: Blanket}})
	require.NotNil(t, d)
	assert.Equal(t, "E070", string(d.Code))
}

func TestNegativePositiveConflictSameSpecificity(t *testing.T) {
	r := NewImplRegistry()
	require.Nil(t, r.Register(ImplInfo{TraitName: "Send", Target: concreteTarget("Rc", types.Named("Rc"))}))
	d := r.Register(ImplInfo{TraitName: "Send", Target: concreteTarget("Rc", types.Named("Rc")), IsNegative: true})
	require.NotNil(t, d)
	assert.Equal(t, "E071", string(d.Code))
}

func TestNegativeConcreteCarveFromPositiveBlanketAllowed(t *testing.T) {
	r := NewImplRegistry()
	require.Nil(t, r.Register(ImplInfo{TraitName: "Send", Target: Target{Kind: Blanket}}))
	d := r.Register(ImplInfo{TraitName: "Send", Target: concreteTarget("Rc", types.Named("Rc")), IsNegative: true})
	assert.Nil(t, d)
}

func TestNegativeImplVetoesBlanket(t *testing.T) {
	r := NewImplRegistry()
	require.Nil(t, r.Register(ImplInfo{TraitName: "Send", Target: Target{Kind: Blanket}}))
	require.Nil(t, r.Register(ImplInfo{TraitName: "Send", Target: concreteTarget("Rc", types.Named("Rc")), IsNegative: true}))
	assert.False(t, r.Implements("Send", types.Named("Rc")))
	assert.True(t, r.Implements("Send", types.Named("Other")))
}

func TestResolvePrefersConcreteOverBlanket(t *testing.T) {
	r := NewImplRegistry()
	concreteSc := types.Mono(types.Func(nil, types.Str))
	blanketSc := types.Mono(types.Func(nil, types.Str))
	require.Nil(t, r.Register(ImplInfo{TraitName: "Show", Target: Target{Kind: Blanket}, Methods: map[string]*types.TypeScheme{"show": blanketSc}}))
	require.Nil(t, r.Register(ImplInfo{TraitName: "Show", Target: concreteTarget("Point", types.Named("Point")), Methods: map[string]*types.TypeScheme{"show": concreteSc}}))

	impl, ok := r.Resolve("Show", types.Named("Point"))
	require.True(t, ok)
	assert.Equal(t, Concrete, impl.Target.Kind)

	sc, ok := r.LookupMethod(types.Named("Point"), "show")
	require.True(t, ok)
	assert.Same(t, concreteSc, sc)
}
