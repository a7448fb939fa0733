// Package checker implements the module-level type-checking pass: it walks
// a macro-expanded ast.Module, registers every declared type/function
// signature, then checks each function/impl/unit body against those
// signatures using internal/types' unifier and internal/traits' impl
// resolver. It is the concrete internal/orchestrator.TypeCheckFunc wired
// into the driver.
package checker

import (
	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/diag"
	"github.com/vaislang/vais/internal/traits"
	"github.com/vaislang/vais/internal/types"
)

// defs indexes the type-level declarations of a module (or a merged set of
// modules across dependency levels) so convertType can resolve a name to
// its shape without a separate symbol-table pass.
type defs struct {
	structs     map[string]*ast.Struct
	enums       map[string]*ast.Enum
	unions      map[string]*ast.Union
	aliases     map[string]*ast.TypeAlias
	variantEnum map[string]string // variant/case name -> owning enum/union name
}

func newDefs() *defs {
	return &defs{
		structs:     make(map[string]*ast.Struct),
		enums:       make(map[string]*ast.Enum),
		unions:      make(map[string]*ast.Union),
		aliases:     make(map[string]*ast.TypeAlias),
		variantEnum: make(map[string]string),
	}
}

// Checker carries the state threaded through one module's check: the type
// definitions in scope, the inherent-method table, and the trait/impl
// registry. A fresh Checker is built per Check call but its env's
// substitution and fresh-var counter are shared with base so names bound
// by an earlier dependency level resolve for this one.
type Checker struct {
	defs    *defs
	methods *types.MethodTable
	impls   *traits.ImplRegistry
	bag     *diag.Bag
}

// Check type-checks mod against base (the merged environment of every
// module it depends on) and returns the environment extended with mod's
// own top-level bindings, plus any diagnostics raised. It matches
// orchestrator.TypeCheckFunc's signature exactly.
func Check(mod *ast.Module, base *types.TypeEnv) (*types.TypeEnv, *diag.Bag) {
	env := base
	if env == nil {
		env = types.NewTypeEnv()
	}
	c := &Checker{
		defs:    newDefs(),
		methods: types.NewMethodTable(),
		impls:   traits.NewImplRegistry(),
		bag:     diag.NewBag(),
	}
	c.collectTypeDefs(mod.Items)
	c.registerSignatures(mod.Items, env)
	c.checkBodies(mod.Items, env)
	return env, c.bag
}

// InferExpr resolves a single expression's type under env without
// checking a whole module — the entry point `vaisc repl` uses to report
// the type of the last expression in a submitted block, reusing the same
// unifier and diagnostics plumbing Check uses for a full module.
func InferExpr(e ast.Expr, env *types.TypeEnv) (types.Type, *diag.Bag) {
	c := &Checker{
		defs:    newDefs(),
		methods: types.NewMethodTable(),
		impls:   traits.NewImplRegistry(),
		bag:     diag.NewBag(),
	}
	t := c.inferExpr(e, env)
	return t, c.bag
}

// collectTypeDefs populates defs from every struct/enum/union/alias item so
// convertType can see forward references within the same module.
func (c *Checker) collectTypeDefs(items []ast.Item) {
	for _, item := range items {
		switch it := item.(type) {
		case *ast.Struct:
			c.defs.structs[it.Name] = it
		case *ast.Enum:
			c.defs.enums[it.Name] = it
			for _, v := range it.Variants {
				c.defs.variantEnum[v.Name] = it.Name
			}
		case *ast.Union:
			c.defs.unions[it.Name] = it
			for _, v := range it.Variants {
				c.defs.variantEnum[v.Name] = it.Name
			}
		case *ast.TypeAlias:
			c.defs.aliases[it.Name] = it
		}
	}
}

// registerSignatures is the first body-independent pass: every function,
// const, global, extern signature, enum/union variant constructor, and
// impl method scheme is bound into env (or the method/impl registries)
// before any body is checked, so mutually recursive and forward-referenced
// definitions resolve.
func (c *Checker) registerSignatures(items []ast.Item, env *types.TypeEnv) {
	for _, item := range items {
		switch it := item.(type) {
		case *ast.Function:
			env.BindFunc(it.Name, c.funcScheme(it, env))
		case *ast.Const:
			env.BindVar(it.Name, c.convertType(it.Type, env))
		case *ast.Global:
			env.BindVar(it.Name, c.convertType(it.Type, env))
		case *ast.ExternBlock:
			for _, sig := range it.Funcs {
				env.BindFunc(sig.Name, c.sigScheme(sig, nil, env))
			}
		case *ast.Enum:
			c.registerVariantConstructors(it.Name, it.Generics, it.Variants, env)
		case *ast.Union:
			c.registerVariantConstructors(it.Name, it.Generics, it.Variants, env)
		case *ast.Impl:
			c.registerImpl(it, env)
		}
	}
}

// registerVariantConstructors binds each tagged-case name as an ordinary
// function `Case(field0, field1, ...) -> Owner<Args...>`, the terse
// surface's stand-in for a dedicated constructor syntax — a variant with
// no fields is simply a zero-arity call, e.g. `None()`.
func (c *Checker) registerVariantConstructors(owner string, generics []ast.GenericParam, variants []ast.EnumVariant, env *types.TypeEnv) {
	for _, v := range variants {
		child := env.Child()
		genArgs := make([]types.Type, len(generics))
		var bound []int
		for i, g := range generics {
			tv := child.Fresh()
			id, _ := types.AsVar(tv)
			bound = append(bound, id)
			child.BindTypeParam(g.Name, tv)
			genArgs[i] = tv
		}
		params := make([]types.Type, len(v.Fields))
		for i, f := range v.Fields {
			params[i] = c.convertType(f.Type, child)
		}
		ret := types.Named(owner, genArgs...)
		env.BindFunc(v.Name, &types.TypeScheme{Bound: bound, Body: types.Func(params, ret)})
	}
}

// funcScheme builds the generalized scheme for a top-level or trait-default
// function from its declared generics, independent of checking its body.
func (c *Checker) funcScheme(fn *ast.Function, env *types.TypeEnv) *types.TypeScheme {
	child := env.Child()
	var bound []int
	for _, g := range fn.Generics {
		tv := child.Fresh()
		id, _ := types.AsVar(tv)
		bound = append(bound, id)
		child.BindTypeParam(g.Name, tv)
	}
	params := make([]types.Type, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = c.convertType(p.Type, child)
	}
	ret := c.convertType(fn.ReturnType, child)
	return &types.TypeScheme{Bound: bound, Body: types.Func(params, ret)}
}

// sigScheme mirrors funcScheme for a bare TraitMethodSig (extern funcs,
// trait requirements); selfType, when non-nil, is bound as the "Self"
// type parameter so a trait's own signatures can reference it.
func (c *Checker) sigScheme(sig ast.TraitMethodSig, selfType types.Type, env *types.TypeEnv) *types.TypeScheme {
	child := env.Child()
	if selfType != nil {
		child.BindTypeParam("Self", selfType)
	}
	params := make([]types.Type, len(sig.Params))
	for i, p := range sig.Params {
		params[i] = c.convertType(p.Type, child)
	}
	ret := c.convertType(sig.ReturnType, child)
	return &types.TypeScheme{Body: types.Func(params, ret)}
}

// registerImpl classifies the impl's target, binds each method's scheme
// into the inherent method table or trait registry, and reports any
// coherence conflict the traits package's overlap check finds.
func (c *Checker) registerImpl(impl *ast.Impl, env *types.TypeEnv) {
	target := c.implTarget(impl, env)
	methodSchemes := make(map[string]*types.TypeScheme, len(impl.Methods))

	for _, m := range impl.Methods {
		child := env.Child()
		if target.Type != nil {
			child.BindTypeParam("Self", target.Type)
		}
		var bound []int
		for _, g := range impl.Generics {
			tv := child.Fresh()
			id, _ := types.AsVar(tv)
			bound = append(bound, id)
			child.BindTypeParam(g.Name, tv)
		}
		// Skip the receiver parameter (by convention named "self"); method
		// schemes are keyed by target type, so self's type is implicit.
		params := m.Params
		if len(params) > 0 && params[0].Name == "self" {
			params = params[1:]
		}
		paramTypes := make([]types.Type, len(params))
		for i, p := range params {
			paramTypes[i] = c.convertType(p.Type, child)
		}
		ret := c.convertType(m.ReturnType, child)
		sc := &types.TypeScheme{Bound: bound, Body: types.Func(paramTypes, ret)}
		methodSchemes[m.Name] = sc

		if impl.TraitName == "" && target.Type != nil {
			c.methods.Register(target.Type, m.Name, sc)
		}
	}

	if impl.TraitName != "" {
		if d := c.impls.Register(traits.ImplInfo{
			TraitName:  impl.TraitName,
			Target:     target,
			IsNegative: impl.IsNegative,
			Methods:    methodSchemes,
			Span:       impl.Span(),
		}); d != nil {
			c.bag.Add(*d)
		}
	}
}

// implTarget classifies an impl's `for` clause per the coherence rules:
// a bare generic-parameter target (`impl<T> Trait for T`) is Blanket, a
// bounded one is GenericBounded, and anything else is resolved to a
// Concrete type via convertType.
func (c *Checker) implTarget(impl *ast.Impl, env *types.TypeEnv) traits.Target {
	named, ok := impl.TargetType.(*ast.NamedType)
	if ok && len(named.Args) == 0 {
		for _, g := range impl.Generics {
			if g.Name == named.Name {
				if len(g.Bounds) > 0 {
					return traits.Target{Kind: traits.GenericBounded, Name: g.Name}
				}
				return traits.Target{Kind: traits.Blanket, Name: g.Name}
			}
		}
	}
	t := c.convertType(impl.TargetType, env)
	name := t.String()
	if ok {
		name = named.Name
	}
	return traits.Target{Kind: traits.Concrete, Name: name, Type: t}
}

// checkBodies is the second pass: it type-checks every function/method/unit
// body now that every signature in the module is registered.
func (c *Checker) checkBodies(items []ast.Item, env *types.TypeEnv) {
	for _, item := range items {
		switch it := item.(type) {
		case *ast.Function:
			c.checkFunction(it, env, nil)
		case *ast.Impl:
			c.checkImplBodies(it, env)
		case *ast.Trait:
			c.checkTraitDefaults(it, env)
		case *ast.UnitDecl:
			c.checkUnit(it, env)
		case *ast.Const:
			c.checkTopLevelValue(it.Value, it.Type, env)
		case *ast.Global:
			c.checkTopLevelValue(it.Value, it.Type, env)
		}
	}
}

func (c *Checker) checkTopLevelValue(value ast.Expr, declared ast.Type, env *types.TypeEnv) {
	if value == nil {
		return
	}
	got := c.inferExpr(value, env)
	want := c.convertType(declared, env)
	if err := types.Unify(env, want, got); err != nil {
		c.bag.Add(types.Diagnose(err, value.Span()))
	}
}

// checkFunction binds generics, parameters, and (for a method) Self, then
// checks the body against the declared return type.
func (c *Checker) checkFunction(fn *ast.Function, env *types.TypeEnv, self types.Type) {
	if fn.Body.Expr == nil && fn.Body.Block == nil {
		return // extern-style or trait-required signature with no body
	}
	child := env.Child()
	if self != nil {
		child.BindTypeParam("Self", self)
	}
	for _, g := range fn.Generics {
		child.BindTypeParam(g.Name, child.Fresh())
	}
	for _, p := range fn.Params {
		child.BindVar(p.Name, c.convertType(p.Type, child))
	}
	ret := c.convertType(fn.ReturnType, child)

	var got types.Type
	if fn.Body.Expr != nil {
		got = c.inferExpr(fn.Body.Expr, child)
	} else {
		blk := fn.Body.Block
		var r *ast.Return
		if blk.Tail == nil && len(blk.Stmts) > 0 {
			r, _ = blk.Stmts[len(blk.Stmts)-1].(*ast.Return)
		}
		if r != nil && r.Value != nil {
			// A trailing `R e` gives the body its value, like a tail expression.
			head := *blk
			head.Stmts = blk.Stmts[:len(blk.Stmts)-1]
			c.checkBlock(&head, child)
			got = c.inferExpr(r.Value, child)
		} else {
			got = c.checkBlock(blk, child)
		}
	}
	if err := types.Unify(child, ret, got); err != nil {
		sp := fn.Span()
		if fn.Body.Expr != nil {
			sp = fn.Body.Expr.Span()
		}
		c.bag.Add(types.Diagnose(err, sp))
	}
}

func (c *Checker) checkImplBodies(impl *ast.Impl, env *types.TypeEnv) {
	target := c.implTarget(impl, env)
	for _, m := range impl.Methods {
		c.checkFunction(m, env, target.Type)
	}
}

func (c *Checker) checkTraitDefaults(tr *ast.Trait, env *types.TypeEnv) {
	for _, sig := range tr.Methods {
		if sig.Default == nil {
			continue
		}
		fn := &ast.Function{Base: ast.Base{Sp: sig.Sp}, Name: sig.Name, Params: sig.Params, ReturnType: sig.ReturnType, Body: *sig.Default}
		c.checkFunction(fn, env, types.Named("Self"))
	}
}
