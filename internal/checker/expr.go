package checker

import (
	"fmt"

	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/diag"
	"github.com/vaislang/vais/internal/span"
	"github.com/vaislang/vais/internal/types"
)

// inferExpr returns e's type under env, extending env's substitution and
// adding a diagnostic for every mismatch found along the way. It never
// fails outright — on an unresolvable construct it reports and returns a
// fresh variable so checking the rest of the tree can continue.
func (c *Checker) inferExpr(e ast.Expr, env *types.TypeEnv) types.Type {
	switch n := e.(type) {
	case *ast.IntLit:
		return types.Int
	case *ast.FloatLit:
		return types.F64
	case *ast.StringLit:
		return types.Str
	case *ast.BoolLit:
		return types.Bool
	case *ast.UnitLit:
		return types.Void
	case *ast.RegexLit:
		return types.Str
	case *ast.DurationLit:
		return types.Primitive("duration")
	case *ast.SizeLit:
		return types.Int
	case *ast.Ident:
		return c.inferIdent(n, env)
	case *ast.Binary:
		return c.inferBinary(n, env)
	case *ast.Unary:
		return c.inferUnary(n, env)
	case *ast.Ternary:
		c.unify(env, types.Bool, c.inferExpr(n.Cond, env), n.Cond.Span())
		th := c.inferExpr(n.Then, env)
		el := c.inferExpr(n.Else, env)
		c.unify(env, th, el, n.Span())
		return env.Resolve(th)
	case *ast.If:
		return c.inferIf(n, env)
	case *ast.Match:
		return c.inferMatch(n, env)
	case *ast.ForLoop:
		return c.inferForLoop(n, env)
	case *ast.InfiniteLoop:
		c.checkBlock(n.Body, env.Child())
		return env.Fresh()
	case *ast.WhileLoop:
		c.unify(env, types.Bool, c.inferExpr(n.Cond, env), n.Cond.Span())
		c.checkBlock(n.Body, env.Child())
		return types.Void
	case *ast.Break:
		if n.Value != nil {
			c.inferExpr(n.Value, env)
		}
		return env.Fresh()
	case *ast.Return:
		if n.Value != nil {
			c.inferExpr(n.Value, env)
		}
		return env.Fresh()
	case *ast.Block:
		return c.checkBlock(n, env.Child())
	case *ast.Call:
		return c.inferCall(n, env)
	case *ast.MethodCall:
		return c.inferMethodCall(n, env)
	case *ast.StaticCall:
		return c.inferStaticCall(n, env)
	case *ast.FieldAccess:
		return c.inferFieldAccess(n, env)
	case *ast.IndexAccess:
		return c.inferIndexAccess(n, env)
	case *ast.ArrayLit:
		return c.inferArrayLit(n, env)
	case *ast.TupleLit:
		elems := make([]types.Type, len(n.Elements))
		for i, el := range n.Elements {
			elems[i] = c.inferExpr(el, env)
		}
		return types.Tuple(elems...)
	case *ast.MapLit:
		return c.inferMapLit(n, env)
	case *ast.StructLit:
		return c.inferStructLit(n, env)
	case *ast.RangeLit:
		start := c.inferExpr(n.Start, env)
		c.unify(env, start, c.inferExpr(n.End, env), n.Span())
		return types.Array(env.Resolve(start))
	case *ast.Lambda:
		return c.inferLambda(n, env)
	case *ast.Await:
		t := env.Resolve(c.inferExpr(n.Expr, env))
		if inner, ok := types.FutureInner(t); ok {
			return inner
		}
		return t
	case *ast.Spawn:
		return types.Future(c.inferExpr(n.Expr, env))
	case *ast.Try:
		return c.unwrapContainer(n.Expr, env)
	case *ast.Unwrap:
		return c.unwrapContainer(n.Expr, env)
	case *ast.Reference:
		return c.inferExpr(n.Expr, env)
	case *ast.Dereference:
		return c.inferExpr(n.Expr, env)
	case *ast.Spread:
		return c.inferExpr(n.Expr, env)
	case *ast.Cast:
		c.inferExpr(n.Expr, env) // checked for its own internal consistency only
		return c.convertType(n.Type, env)
	case *ast.Assign:
		target := c.inferExpr(n.Target, env)
		value := c.inferExpr(n.Value, env)
		c.unify(env, target, value, n.Span())
		return types.Void
	case *ast.Yield:
		c.inferExpr(n.Expr, env)
		return types.Void
	case *ast.Lazy:
		return types.Named("Lazy", c.inferExpr(n.Expr, env))
	case *ast.Force:
		return c.unwrapLazy(env.Resolve(c.inferExpr(n.Expr, env)))
	case *ast.Assert:
		c.unify(env, types.Bool, c.inferExpr(n.Cond, env), n.Cond.Span())
		if n.Message != nil {
			c.inferExpr(n.Message, env)
		}
		return types.Void
	case *ast.CompileTime:
		return c.inferExpr(n.Expr, env)
	case *ast.Assume:
		c.unify(env, types.Bool, c.inferExpr(n.Cond, env), n.Cond.Span())
		return types.Void
	case *ast.Old:
		return c.inferExpr(n.Expr, env)
	case *ast.MacroInvocation:
		return env.Fresh()
	case *ast.ErrorExpr:
		return env.Fresh()
	default:
		return env.Fresh()
	}
}

// unwrapLazy peels a Named("Lazy", T) wrapper produced by inferExpr's Lazy
// case; any other type passes through unchanged, tolerating `force`
// applied to an already-plain value.
func (c *Checker) unwrapLazy(t types.Type) types.Type {
	if name, args, ok := types.NamedInfo(t); ok && name == "Lazy" && len(args) == 1 {
		return args[0]
	}
	return t
}

// unify wraps types.Unify, converting a failure into a diagnostic anchored
// at sp rather than returning the error to the caller — every inferExpr
// case wants exactly this "report and keep going" behavior.
func (c *Checker) unify(env *types.TypeEnv, a, b types.Type, sp span.Span) {
	if err := types.Unify(env, a, b); err != nil {
		c.bag.Add(types.Diagnose(err, sp))
	}
}

func (c *Checker) inferIdent(n *ast.Ident, env *types.TypeEnv) types.Type {
	if t, ok := env.LookupVar(n.Name); ok {
		return t
	}
	if sc, ok := env.LookupFunc(n.Name); ok {
		return types.Instantiate(env, sc)
	}
	if sc, ok := types.Builtins[n.Name]; ok {
		return types.Instantiate(env, sc)
	}
	c.bag.Add(diag.Diagnostic{
		Code: diag.CodeUnresolvedVariable, Phase: diag.PhaseTypeCheck, Severity: diag.SeverityError,
		Message: fmt.Sprintf("unresolved name %q", n.Name), Span: n.Span(),
	})
	return env.Fresh()
}

func (c *Checker) inferBinary(n *ast.Binary, env *types.TypeEnv) types.Type {
	lt := c.inferExpr(n.Left, env)
	rt := c.inferExpr(n.Right, env)
	switch n.Op {
	case "&&", "||":
		c.unify(env, types.Bool, lt, n.Left.Span())
		c.unify(env, types.Bool, rt, n.Right.Span())
		return types.Bool
	case "==", "!=", "<", "<=", ">", ">=":
		c.unify(env, lt, rt, n.Span())
		return types.Bool
	default: // + - * / % & | ^ << >>
		c.unify(env, lt, rt, n.Span())
		return env.Resolve(lt)
	}
}

func (c *Checker) inferUnary(n *ast.Unary, env *types.TypeEnv) types.Type {
	t := c.inferExpr(n.Expr, env)
	if n.Op == "!" {
		c.unify(env, types.Bool, t, n.Span())
		return types.Bool
	}
	return env.Resolve(t)
}

func (c *Checker) inferIf(n *ast.If, env *types.TypeEnv) types.Type {
	c.unify(env, types.Bool, c.inferExpr(n.Cond, env), n.Cond.Span())
	thenType := c.checkBlock(n.Then, env.Child())
	if n.Else == nil {
		return types.Void
	}
	elseType := c.inferExpr(n.Else, env)
	c.unify(env, thenType, elseType, n.Span())
	return env.Resolve(thenType)
}

func (c *Checker) inferForLoop(n *ast.ForLoop, env *types.TypeEnv) types.Type {
	iterType := env.Resolve(c.inferExpr(n.Iterable, env))
	elem, ok := types.ArrayElem(iterType)
	if !ok {
		if s, ok2 := types.SetElem(iterType); ok2 {
			elem = s
		} else if k, _, ok3 := types.MapKV(iterType); ok3 {
			elem = k
		} else {
			elem = env.Fresh()
		}
	}
	child := env.Child()
	child.BindVar(n.Var, elem)
	c.checkBlock(n.Body, child)
	return types.Void
}

func (c *Checker) inferCall(n *ast.Call, env *types.TypeEnv) types.Type {
	calleeType := c.inferExpr(n.Callee, env)
	argTypes := make([]types.Type, len(n.Args))
	for i, a := range n.Args {
		argTypes[i] = c.inferExpr(a, env)
	}
	ret := env.Fresh()
	if err := types.Unify(env, calleeType, types.Func(argTypes, ret)); err != nil {
		c.bag.Add(types.Diagnose(err, n.Span()))
		return env.Fresh()
	}
	return env.Resolve(ret)
}

func (c *Checker) inferMethodCall(n *ast.MethodCall, env *types.TypeEnv) types.Type {
	recv := env.Resolve(c.inferExpr(n.Receiver, env))
	argTypes := make([]types.Type, len(n.Args))
	for i, a := range n.Args {
		argTypes[i] = c.inferExpr(a, env)
	}
	sc, ok := c.methods.Lookup(recv, n.Method)
	if !ok {
		sc, ok = c.impls.LookupMethod(recv, n.Method)
	}
	if !ok {
		c.bag.Add(diag.Diagnostic{
			Code: diag.CodeMethodNotFound, Phase: diag.PhaseTypeCheck, Severity: diag.SeverityError,
			Message: fmt.Sprintf("no method %q on type %s", n.Method, recv), Span: n.Span(),
		})
		return env.Fresh()
	}
	fnType := types.Instantiate(env, sc)
	ret := env.Fresh()
	if err := types.Unify(env, fnType, types.Func(argTypes, ret)); err != nil {
		c.bag.Add(types.Diagnose(err, n.Span()))
		return env.Fresh()
	}
	return env.Resolve(ret)
}

func (c *Checker) inferStaticCall(n *ast.StaticCall, env *types.TypeEnv) types.Type {
	target := env.Resolve(c.convertType(n.Type, env))
	argTypes := make([]types.Type, len(n.Args))
	for i, a := range n.Args {
		argTypes[i] = c.inferExpr(a, env)
	}
	sc, ok := c.methods.Lookup(target, n.Method)
	if !ok {
		sc, ok = c.impls.LookupMethod(target, n.Method)
	}
	if !ok {
		c.bag.Add(diag.Diagnostic{
			Code: diag.CodeMethodNotFound, Phase: diag.PhaseTypeCheck, Severity: diag.SeverityError,
			Message: fmt.Sprintf("no static method %q on type %s", n.Method, target), Span: n.Span(),
		})
		return env.Fresh()
	}
	fnType := types.Instantiate(env, sc)
	ret := env.Fresh()
	if err := types.Unify(env, fnType, types.Func(argTypes, ret)); err != nil {
		c.bag.Add(types.Diagnose(err, n.Span()))
		return env.Fresh()
	}
	return env.Resolve(ret)
}

func (c *Checker) inferFieldAccess(n *ast.FieldAccess, env *types.TypeEnv) types.Type {
	t := env.Resolve(c.inferExpr(n.Target, env))
	if fields, ok := types.StructFields(t); ok {
		for _, f := range fields {
			if f.Name == n.Field {
				return f.Type
			}
		}
	}
	c.bag.Add(diag.Diagnostic{
		Code: diag.CodeMismatch, Phase: diag.PhaseTypeCheck, Severity: diag.SeverityError,
		Message: fmt.Sprintf("type %s has no field %q", t, n.Field), Span: n.Span(),
	})
	return env.Fresh()
}

func (c *Checker) inferIndexAccess(n *ast.IndexAccess, env *types.TypeEnv) types.Type {
	t := env.Resolve(c.inferExpr(n.Target, env))
	idx := c.inferExpr(n.Index, env)
	if elem, ok := types.ArrayElem(t); ok {
		c.unify(env, types.Int, idx, n.Index.Span())
		return elem
	}
	if k, v, ok := types.MapKV(t); ok {
		c.unify(env, k, idx, n.Index.Span())
		return v
	}
	c.bag.Add(diag.Diagnostic{
		Code: diag.CodeMismatch, Phase: diag.PhaseTypeCheck, Severity: diag.SeverityError,
		Message: fmt.Sprintf("type %s cannot be indexed", t), Span: n.Span(),
	})
	return env.Fresh()
}

func (c *Checker) inferArrayLit(n *ast.ArrayLit, env *types.TypeEnv) types.Type {
	if len(n.Elements) == 0 {
		return types.Array(env.Fresh())
	}
	elem := c.inferExpr(n.Elements[0], env)
	for _, e := range n.Elements[1:] {
		c.unify(env, elem, c.inferExpr(e, env), e.Span())
	}
	return types.Array(env.Resolve(elem))
}

func (c *Checker) inferMapLit(n *ast.MapLit, env *types.TypeEnv) types.Type {
	if len(n.Entries) == 0 {
		return types.MapT(env.Fresh(), env.Fresh())
	}
	k := c.inferExpr(n.Entries[0].Key, env)
	v := c.inferExpr(n.Entries[0].Value, env)
	for _, entry := range n.Entries[1:] {
		c.unify(env, k, c.inferExpr(entry.Key, env), entry.Key.Span())
		c.unify(env, v, c.inferExpr(entry.Value, env), entry.Value.Span())
	}
	return types.MapT(env.Resolve(k), env.Resolve(v))
}

func (c *Checker) inferStructLit(n *ast.StructLit, env *types.TypeEnv) types.Type {
	sd, ok := c.defs.structs[n.TypeName]
	if !ok {
		c.bag.Add(diag.Diagnostic{
			Code: diag.CodeUnresolvedVariable, Phase: diag.PhaseTypeCheck, Severity: diag.SeverityError,
			Message: fmt.Sprintf("unknown struct %q", n.TypeName), Span: n.Span(),
		})
		return env.Fresh()
	}
	child := env
	if len(sd.Generics) > 0 {
		child = env.Child()
		for _, g := range sd.Generics {
			child.BindTypeParam(g.Name, child.Fresh())
		}
	}
	fieldTypes := make(map[string]types.Type, len(sd.Fields))
	for _, f := range sd.Fields {
		fieldTypes[f.Name] = c.convertType(f.Type, child)
	}
	for _, fi := range n.Fields {
		want, ok := fieldTypes[fi.Name]
		if !ok {
			c.bag.Add(diag.Diagnostic{
				Code: diag.CodeMismatch, Phase: diag.PhaseTypeCheck, Severity: diag.SeverityError,
				Message: fmt.Sprintf("struct %q has no field %q", n.TypeName, fi.Name), Span: n.Span(),
			})
			continue
		}
		c.unify(env, want, c.inferExpr(fi.Value, env), fi.Value.Span())
	}
	fields := make([]types.Field, len(sd.Fields))
	for i, f := range sd.Fields {
		fields[i] = types.Field{Name: f.Name, Type: env.Resolve(fieldTypes[f.Name])}
	}
	return types.Struct(sd.Name, fields)
}

func (c *Checker) inferLambda(n *ast.Lambda, env *types.TypeEnv) types.Type {
	child := env.Child()
	params := make([]types.Type, len(n.Params))
	for i, p := range n.Params {
		t := c.convertType(p.Type, child)
		child.BindVar(p.Name, t)
		params[i] = t
	}
	ret := c.inferExpr(n.Body, child)
	return types.Func(params, ret)
}

// unwrapContainer is the shared implementation of `?` and `!` postfix
// operators: both expect Result<T> or Optional<T> and produce T, passing
// through any other type unchanged so a stray use doesn't cascade errors.
func (c *Checker) unwrapContainer(e ast.Expr, env *types.TypeEnv) types.Type {
	t := env.Resolve(c.inferExpr(e, env))
	if inner, ok := types.ResultInner(t); ok {
		return inner
	}
	if inner, ok := types.OptionalInner(t); ok {
		return inner
	}
	return t
}
