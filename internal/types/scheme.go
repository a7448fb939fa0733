package types

// TypeScheme is a type generalized over a set of bound variable ids, the
// classic HM `forall a b. T` quantifier. A Scheme with no Bound ids is a
// monotype and Instantiate on it is a no-op copy.
type TypeScheme struct {
	Bound []int
	Body  Type
}

// Mono wraps a type with no quantified variables.
func Mono(t Type) *TypeScheme { return &TypeScheme{Body: t} }

// Generalize produces the scheme `forall <free vars not in env> . t`. freeInEnv
// lists variable ids that must NOT be generalized because they're still
// constrained by an enclosing scope (e.g. the function being checked).
func Generalize(t Type, freeInEnv map[int]bool) *TypeScheme {
	seen := map[int]bool{}
	var bound []int
	var walk func(Type)
	walk = func(ty Type) {
		switch n := ty.(type) {
		case *kindVar:
			if !freeInEnv[n.ID] && !seen[n.ID] {
				seen[n.ID] = true
				bound = append(bound, n.ID)
			}
		case *kindArray:
			walk(n.Elem)
		case *kindSet:
			walk(n.Elem)
		case *kindOptional:
			walk(n.Inner)
		case *kindResult:
			walk(n.Inner)
		case *kindFuture:
			walk(n.Inner)
		case *kindChannel:
			walk(n.Inner)
		case *kindTuple:
			for _, e := range n.Elems {
				walk(e)
			}
		case *kindMapT:
			walk(n.Key)
			walk(n.Value)
		case *kindFunc:
			for _, p := range n.Params {
				walk(p)
			}
			walk(n.Return)
		case *kindStruct:
			for _, f := range n.Fields {
				walk(f.Type)
			}
		case *kindNamed:
			for _, a := range n.Args {
				walk(a)
			}
		}
	}
	walk(t)
	return &TypeScheme{Bound: bound, Body: t}
}
