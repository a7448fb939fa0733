package types

import (
	"fmt"

	"github.com/vaislang/vais/internal/diag"
	"github.com/vaislang/vais/internal/span"
)

// UnifyError is the structured failure Unify returns; callers translate it
// into a diag.Diagnostic at the call site where they have a span to attach.
type UnifyError struct {
	Code    diag.Code
	Message string
	Left    Type
	Right   Type
}

func (e *UnifyError) Error() string { return e.Message }

func mismatch(a, b Type) *UnifyError {
	return &UnifyError{
		Code:    diag.CodeMismatch,
		Message: fmt.Sprintf("type mismatch: expected %s, found %s", a, b),
		Left:    a,
		Right:   b,
	}
}

// Unify attempts to make a and b equal under env's substitution, extending
// it in place. On success it returns nil; on failure the substitution is
// left as-is (bindings already made before the failing sub-unification are
// not rolled back, matching a standard single-pass unifier — callers that
// need transactional unification should snapshot env.Subst() first).
func Unify(env *TypeEnv, a, b Type) error {
	s := env.Subst()
	a = s.Resolve(a)
	b = s.Resolve(b)

	if _, ok := a.(*kindAny); ok {
		return nil
	}
	if _, ok := b.(*kindAny); ok {
		return nil
	}

	if av, ok := a.(*kindVar); ok {
		if bv, ok := b.(*kindVar); ok && bv.ID == av.ID {
			return nil
		}
		if s.occursIn(av.ID, b) {
			return &UnifyError{Code: diag.CodeInfiniteType, Message: fmt.Sprintf("infinite type: t%d occurs in %s", av.ID, b), Left: a, Right: b}
		}
		s.Bind(av.ID, b)
		return nil
	}
	if bv, ok := b.(*kindVar); ok {
		if s.occursIn(bv.ID, a) {
			return &UnifyError{Code: diag.CodeInfiniteType, Message: fmt.Sprintf("infinite type: t%d occurs in %s", bv.ID, a), Left: a, Right: b}
		}
		s.Bind(bv.ID, a)
		return nil
	}

	switch x := a.(type) {
	case *kindPrimitive:
		y, ok := b.(*kindPrimitive)
		if !ok {
			return mismatch(a, b)
		}
		if x.Name == y.Name {
			return nil
		}
		// Implicit widening is not performed by Unify itself — integer
		// literal defaulting happens before unification — but the unsized
		// `int` unifies with any sized integer primitive, signed or
		// unsigned, if either side is still the unsized form.
		if x.Name == "int" && isIntName(y.Name) {
			return nil
		}
		if y.Name == "int" && isIntName(x.Name) {
			return nil
		}
		// Integer and floating primitives also unify with each other; no
		// conversion is recorded for it.
		if (isIntName(x.Name) && isFloatName(y.Name)) || (isFloatName(x.Name) && isIntName(y.Name)) {
			return nil
		}
		return mismatch(a, b)
	case *kindArray:
		y, ok := b.(*kindArray)
		if !ok {
			return mismatch(a, b)
		}
		return Unify(env, x.Elem, y.Elem)
	case *kindSet:
		y, ok := b.(*kindSet)
		if !ok {
			return mismatch(a, b)
		}
		return Unify(env, x.Elem, y.Elem)
	case *kindOptional:
		y, ok := b.(*kindOptional)
		if !ok {
			return mismatch(a, b)
		}
		return Unify(env, x.Inner, y.Inner)
	case *kindResult:
		y, ok := b.(*kindResult)
		if !ok {
			return mismatch(a, b)
		}
		return Unify(env, x.Inner, y.Inner)
	case *kindFuture:
		y, ok := b.(*kindFuture)
		if !ok {
			return mismatch(a, b)
		}
		return Unify(env, x.Inner, y.Inner)
	case *kindChannel:
		y, ok := b.(*kindChannel)
		if !ok {
			return mismatch(a, b)
		}
		return Unify(env, x.Inner, y.Inner)
	case *kindTuple:
		y, ok := b.(*kindTuple)
		if !ok || len(x.Elems) != len(y.Elems) {
			return mismatch(a, b)
		}
		for i := range x.Elems {
			if err := Unify(env, x.Elems[i], y.Elems[i]); err != nil {
				return err
			}
		}
		return nil
	case *kindMapT:
		y, ok := b.(*kindMapT)
		if !ok {
			return mismatch(a, b)
		}
		if err := Unify(env, x.Key, y.Key); err != nil {
			return err
		}
		return Unify(env, x.Value, y.Value)
	case *kindFunc:
		y, ok := b.(*kindFunc)
		if !ok || len(x.Params) != len(y.Params) {
			return &UnifyError{Code: diag.CodeArityMismatch, Message: fmt.Sprintf("arity mismatch: %s vs %s", a, b), Left: a, Right: b}
		}
		for i := range x.Params {
			if err := Unify(env, x.Params[i], y.Params[i]); err != nil {
				return err
			}
		}
		return Unify(env, x.Return, y.Return)
	case *kindStruct:
		y, ok := b.(*kindStruct)
		if !ok || len(x.Fields) != len(y.Fields) {
			return mismatch(a, b)
		}
		yFields := make(map[string]Type, len(y.Fields))
		for _, f := range y.Fields {
			yFields[f.Name] = f.Type
		}
		for _, f := range x.Fields {
			yt, ok := yFields[f.Name]
			if !ok {
				return mismatch(a, b)
			}
			if err := Unify(env, f.Type, yt); err != nil {
				return err
			}
		}
		return nil
	case *kindNamed:
		y, ok := b.(*kindNamed)
		if !ok || x.Name != y.Name || len(x.Args) != len(y.Args) {
			return mismatch(a, b)
		}
		for i := range x.Args {
			if err := Unify(env, x.Args[i], y.Args[i]); err != nil {
				return err
			}
		}
		return nil
	default:
		return mismatch(a, b)
	}
}

// Instantiate replaces every bound variable of sc with a fresh Var from
// env, producing an independent monotype each call — two call sites
// instantiating the same generic function never share a Var id.
func Instantiate(env *TypeEnv, sc *TypeScheme) Type {
	if len(sc.Bound) == 0 {
		return sc.Body
	}
	fresh := make(map[int]Type, len(sc.Bound))
	for _, id := range sc.Bound {
		fresh[id] = env.Fresh()
	}
	var subst func(Type) Type
	subst = func(t Type) Type {
		switch n := t.(type) {
		case *kindVar:
			if f, ok := fresh[n.ID]; ok {
				return f
			}
			return t
		case *kindArray:
			return &kindArray{Elem: subst(n.Elem)}
		case *kindSet:
			return &kindSet{Elem: subst(n.Elem)}
		case *kindOptional:
			return &kindOptional{Inner: subst(n.Inner)}
		case *kindResult:
			return &kindResult{Inner: subst(n.Inner)}
		case *kindFuture:
			return &kindFuture{Inner: subst(n.Inner)}
		case *kindChannel:
			return &kindChannel{Inner: subst(n.Inner)}
		case *kindTuple:
			elems := make([]Type, len(n.Elems))
			for i, e := range n.Elems {
				elems[i] = subst(e)
			}
			return &kindTuple{Elems: elems}
		case *kindMapT:
			return &kindMapT{Key: subst(n.Key), Value: subst(n.Value)}
		case *kindFunc:
			params := make([]Type, len(n.Params))
			for i, p := range n.Params {
				params[i] = subst(p)
			}
			return &kindFunc{Params: params, Return: subst(n.Return)}
		case *kindStruct:
			fields := make([]Field, len(n.Fields))
			for i, f := range n.Fields {
				fields[i] = Field{Name: f.Name, Type: subst(f.Type)}
			}
			return &kindStruct{Name: n.Name, Fields: fields}
		case *kindNamed:
			args := make([]Type, len(n.Args))
			for i, a := range n.Args {
				args[i] = subst(a)
			}
			return &kindNamed{Name: n.Name, Args: args}
		default:
			return t
		}
	}
	return subst(sc.Body)
}

// Diagnose converts a UnifyError into a diag.Diagnostic anchored at sp.
func Diagnose(err error, sp span.Span) diag.Diagnostic {
	ue, ok := err.(*UnifyError)
	if !ok {
		return diag.Diagnostic{Code: diag.CodeMismatch, Phase: diag.PhaseTypeCheck, Severity: diag.SeverityError, Message: err.Error(), Span: sp}
	}
	return diag.Diagnostic{Code: ue.Code, Phase: diag.PhaseTypeCheck, Severity: diag.SeverityError, Message: ue.Message, Span: sp}
}
