package traits

import "github.com/vaislang/vais/internal/types"

// matches reports whether target's concrete type, as seen at a call site,
// could be described by candidate — Concrete compares by structural type
// equality (types.TypesMatch), anything else (Generic/Blanket) matches
// unconditionally since it covers every type by construction.
func matches(candidate Target, concrete types.Type) bool {
	if candidate.Kind == Concrete {
		return candidate.Type != nil && types.TypesMatch(candidate.Type, concrete)
	}
	return true
}

// Implements answers "does concrete satisfy trait?", consulting negative
// impls first: a matching negative impl vetoes satisfaction even when a
// blanket positive impl would otherwise apply.
func (r *ImplRegistry) Implements(trait string, concrete types.Type) bool {
	for _, neg := range r.negative[trait] {
		if matches(neg.Target, concrete) {
			return false
		}
	}
	for _, impl := range r.byTrait[trait] {
		if !impl.IsNegative && matches(impl.Target, concrete) {
			return true
		}
	}
	return false
}

// Resolve returns the most specific positive impl of trait whose target
// matches concrete, or ok=false if none applies. Ties are assumed not to
// occur — Register's overlap check rejects them at registration time — so
// the first maximal-specificity match found is returned.
func (r *ImplRegistry) Resolve(trait string, concrete types.Type) (ImplInfo, bool) {
	for _, neg := range r.negative[trait] {
		if matches(neg.Target, concrete) {
			return ImplInfo{}, false
		}
	}
	var best *ImplInfo
	for i, impl := range r.byTrait[trait] {
		if impl.IsNegative || !matches(impl.Target, concrete) {
			continue
		}
		if best == nil || impl.Target.Kind.specificity() > best.Target.Kind.specificity() {
			best = &r.byTrait[trait][i]
		}
	}
	if best == nil {
		return ImplInfo{}, false
	}
	return *best, true
}

// LookupMethod implements the resolver's half of the type checker's
// two-phase method lookup: the caller first consults an inherent
// types.MethodTable, and only on a miss calls LookupMethod here to search
// trait impls across every registered trait whose target matches.
func (r *ImplRegistry) LookupMethod(concrete types.Type, method string) (*types.TypeScheme, bool) {
	for trait := range r.byTrait {
		impl, ok := r.Resolve(trait, concrete)
		if !ok {
			continue
		}
		if sc, ok := impl.Methods[method]; ok {
			return sc, true
		}
	}
	return nil, false
}
