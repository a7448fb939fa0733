package types

// Substitution maps fresh-variable ids to the type they were unified with.
// Entries accumulate monotonically during checking: Unify only ever adds
// bindings, never removes one, matching the teacher's treatment of its own
// substitution map as an append-only arena.
type Substitution struct {
	bindings map[int]Type
}

// NewSubstitution returns an empty substitution.
func NewSubstitution() *Substitution {
	return &Substitution{bindings: make(map[int]Type)}
}

// Bind records id -> t. Callers must have already run an occurs-check.
func (s *Substitution) Bind(id int, t Type) {
	s.bindings[id] = t
}

// Lookup returns the direct (non-chased) binding for id, if any.
func (s *Substitution) Lookup(id int) (Type, bool) {
	t, ok := s.bindings[id]
	return t, ok
}

// Resolve follows variable chains to the representative type: if t is a
// Var bound in s, it keeps following until it reaches an unbound Var or a
// concrete type, then recurses into that type's children so nested Vars
// are resolved too. Safe against cycles because Unify's occurs-check never
// lets one form.
func (s *Substitution) Resolve(t Type) Type {
	for {
		v, ok := t.(*kindVar)
		if !ok {
			break
		}
		next, bound := s.bindings[v.ID]
		if !bound {
			return t
		}
		t = next
	}
	switch n := t.(type) {
	case *kindArray:
		return &kindArray{Elem: s.Resolve(n.Elem)}
	case *kindSet:
		return &kindSet{Elem: s.Resolve(n.Elem)}
	case *kindOptional:
		return &kindOptional{Inner: s.Resolve(n.Inner)}
	case *kindResult:
		return &kindResult{Inner: s.Resolve(n.Inner)}
	case *kindFuture:
		return &kindFuture{Inner: s.Resolve(n.Inner)}
	case *kindChannel:
		return &kindChannel{Inner: s.Resolve(n.Inner)}
	case *kindTuple:
		elems := make([]Type, len(n.Elems))
		for i, e := range n.Elems {
			elems[i] = s.Resolve(e)
		}
		return &kindTuple{Elems: elems}
	case *kindMapT:
		return &kindMapT{Key: s.Resolve(n.Key), Value: s.Resolve(n.Value)}
	case *kindFunc:
		params := make([]Type, len(n.Params))
		for i, p := range n.Params {
			params[i] = s.Resolve(p)
		}
		return &kindFunc{Params: params, Return: s.Resolve(n.Return)}
	case *kindStruct:
		fields := make([]Field, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = Field{Name: f.Name, Type: s.Resolve(f.Type)}
		}
		return &kindStruct{Name: n.Name, Fields: fields}
	case *kindNamed:
		args := make([]Type, len(n.Args))
		for i, a := range n.Args {
			args[i] = s.Resolve(a)
		}
		return &kindNamed{Name: n.Name, Args: args}
	default:
		return t
	}
}

// occursIn reports whether variable id appears free anywhere inside t,
// after resolving through the current substitution. Used to reject
// unifications that would build an infinite type (e.g. `a = [a]`).
func (s *Substitution) occursIn(id int, t Type) bool {
	t = s.Resolve(t)
	switch n := t.(type) {
	case *kindVar:
		return n.ID == id
	case *kindArray:
		return s.occursIn(id, n.Elem)
	case *kindSet:
		return s.occursIn(id, n.Elem)
	case *kindOptional:
		return s.occursIn(id, n.Inner)
	case *kindResult:
		return s.occursIn(id, n.Inner)
	case *kindFuture:
		return s.occursIn(id, n.Inner)
	case *kindChannel:
		return s.occursIn(id, n.Inner)
	case *kindTuple:
		for _, e := range n.Elems {
			if s.occursIn(id, e) {
				return true
			}
		}
		return false
	case *kindMapT:
		return s.occursIn(id, n.Key) || s.occursIn(id, n.Value)
	case *kindFunc:
		for _, p := range n.Params {
			if s.occursIn(id, p) {
				return true
			}
		}
		return s.occursIn(id, n.Return)
	case *kindStruct:
		for _, f := range n.Fields {
			if s.occursIn(id, f.Type) {
				return true
			}
		}
		return false
	case *kindNamed:
		for _, a := range n.Args {
			if s.occursIn(id, a) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
