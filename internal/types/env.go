package types

import "fmt"

// TypeEnv holds everything the checker needs to resolve a name to a type
// while walking a function body: local variable types, declared function
// schemes, the type parameters in scope for the enclosing generic item,
// and the live substitution. A fresh Var counter is threaded through so
// ids stay globally unique across the whole compilation unit.
type TypeEnv struct {
	vars     map[string]Type
	funcs    map[string]*TypeScheme
	typarams map[string]Type
	subst    *Substitution
	nextVar  int
	parent   *TypeEnv
}

// NewTypeEnv returns a root environment with an empty substitution and the
// fresh-variable counter at 1, so Fresh hands out ids counting up from 2,
// below the built-in registry's reserved block at builtinVarBase.
func NewTypeEnv() *TypeEnv {
	return &TypeEnv{
		vars:     make(map[string]Type),
		funcs:    make(map[string]*TypeScheme),
		typarams: make(map[string]Type),
		subst:    NewSubstitution(),
		nextVar:  1,
	}
}

// Child returns a nested scope sharing the substitution and fresh-variable
// counter but with its own variable/typaram maps, so bindings introduced
// in an inner block or match arm do not leak to the caller once discarded.
func (e *TypeEnv) Child() *TypeEnv {
	return &TypeEnv{
		vars:     make(map[string]Type),
		funcs:    make(map[string]*TypeScheme),
		typarams: make(map[string]Type),
		subst:    e.subst,
		nextVar:  0,
		parent:   e,
	}
}

// Fresh allocates a new unbound Var, globally unique within this
// environment chain's root.
func (e *TypeEnv) Fresh() Type {
	root := e
	for root.parent != nil {
		root = root.parent
	}
	root.nextVar++
	return Var(root.nextVar)
}

func (e *TypeEnv) Subst() *Substitution { return e.subst }

// BindVar introduces or shadows a local variable's type in this scope.
func (e *TypeEnv) BindVar(name string, t Type) { e.vars[name] = t }

// LookupVar walks outward through parent scopes for a variable's type.
func (e *TypeEnv) LookupVar(name string) (Type, bool) {
	for s := e; s != nil; s = s.parent {
		if t, ok := s.vars[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// BindFunc records a (possibly generic) function's scheme.
func (e *TypeEnv) BindFunc(name string, sc *TypeScheme) { e.funcs[name] = sc }

// LookupFunc walks outward for a function's scheme.
func (e *TypeEnv) LookupFunc(name string) (*TypeScheme, bool) {
	for s := e; s != nil; s = s.parent {
		if sc, ok := s.funcs[name]; ok {
			return sc, true
		}
	}
	return nil, false
}

// ExportFuncs calls fn for every function scheme bound directly in this
// scope (not its parents), letting a caller fold one environment's
// function table into another's — used by the orchestrator to merge a
// dependency level's results forward into the next level's base.
func (e *TypeEnv) ExportFuncs(fn func(name string, sc *TypeScheme)) {
	for name, sc := range e.funcs {
		fn(name, sc)
	}
}

// BindTypeParam binds a generic item's type parameter name (e.g. `T` in
// `S Box<T>`) to a placeholder Var for the current check.
func (e *TypeEnv) BindTypeParam(name string, t Type) { e.typarams[name] = t }

// LookupTypeParam walks outward for a type parameter binding.
func (e *TypeEnv) LookupTypeParam(name string) (Type, bool) {
	for s := e; s != nil; s = s.parent {
		if t, ok := s.typarams[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// Resolve is shorthand for e.Subst().Resolve(t).
func (e *TypeEnv) Resolve(t Type) Type { return e.subst.Resolve(t) }

// String renders a snapshot of the environment for debugging; not used in
// diagnostic output.
func (e *TypeEnv) String() string {
	return fmt.Sprintf("TypeEnv{vars=%d, funcs=%d}", len(e.vars), len(e.funcs))
}
