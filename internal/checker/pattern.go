package checker

import (
	"fmt"

	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/diag"
	"github.com/vaislang/vais/internal/types"
)

// inferMatch checks the scrutinee once, then each arm against its own
// pattern-bound child scope, unifying every arm body's type together so
// the match expression as a whole has one consistent type.
func (c *Checker) inferMatch(n *ast.Match, env *types.TypeEnv) types.Type {
	scrutinee := env.Resolve(c.inferExpr(n.Scrutinee, env))

	var result types.Type
	for _, arm := range n.Arms {
		child := env.Child()
		c.checkPattern(arm.Pattern, scrutinee, child)
		if arm.Guard != nil {
			c.unify(child, types.Bool, c.inferExpr(arm.Guard, child), arm.Guard.Span())
		}
		bodyType := c.inferExpr(arm.Body, child)
		if result == nil {
			result = bodyType
		} else {
			c.unify(env, result, bodyType, arm.Body.Span())
		}
	}
	if result == nil {
		return types.Void
	}
	return env.Resolve(result)
}

// checkPattern binds every name pat introduces into env and unifies any
// literal/range sub-expression against scrutinee, recursing structurally.
func (c *Checker) checkPattern(pat ast.Pattern, scrutinee types.Type, env *types.TypeEnv) {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		// matches anything, binds nothing
	case *ast.IdentPattern:
		env.BindVar(p.Name, scrutinee)
	case *ast.Ident:
		env.BindVar(p.Name, scrutinee)
	case *ast.LiteralPattern:
		c.unify(env, scrutinee, c.inferExpr(p.Value, env), p.Span())
	case *ast.TuplePattern:
		elems := make([]types.Type, len(p.Elements))
		for i := range elems {
			elems[i] = env.Fresh()
		}
		c.unify(env, scrutinee, types.Tuple(elems...), p.Span())
		for i, el := range p.Elements {
			c.checkPattern(el, elems[i], env)
		}
	case *ast.StructPattern:
		c.checkStructPattern(p, scrutinee, env)
	case *ast.VariantPattern:
		c.checkVariantPattern(p, scrutinee, env)
	case *ast.RangePattern:
		c.unify(env, scrutinee, c.inferExpr(p.Start, env), p.Span())
		c.unify(env, scrutinee, c.inferExpr(p.End, env), p.Span())
	case *ast.OrPattern:
		for _, alt := range p.Alternatives {
			c.checkPattern(alt, scrutinee, env)
		}
	case *ast.AliasPattern:
		env.BindVar(p.Name, scrutinee)
		c.checkPattern(p.Inner, scrutinee, env)
	}
}

func (c *Checker) checkStructPattern(p *ast.StructPattern, scrutinee types.Type, env *types.TypeEnv) {
	sd, ok := c.defs.structs[p.TypeName]
	if !ok {
		c.bag.Add(diag.Diagnostic{
			Code: diag.CodeUnresolvedVariable, Phase: diag.PhaseTypeCheck, Severity: diag.SeverityError,
			Message: fmt.Sprintf("unknown struct %q in pattern", p.TypeName), Span: p.Span(),
		})
		for _, f := range p.Fields {
			c.checkPattern(f.Pattern, env.Fresh(), env)
		}
		return
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
	fields := make([]types.Field, len(sd.Fields))
	for i, f := range sd.Fields {
		fields[i] = types.Field{Name: f.Name, Type: fieldTypes[f.Name]}
	}
	c.unify(env, scrutinee, types.Struct(sd.Name, fields), p.Span())
	for _, fp := range p.Fields {
		want, ok := fieldTypes[fp.Name]
		if !ok {
			c.bag.Add(diag.Diagnostic{
				Code: diag.CodeMismatch, Phase: diag.PhaseTypeCheck, Severity: diag.SeverityError,
				Message: fmt.Sprintf("struct %q has no field %q", p.TypeName, fp.Name), Span: p.Span(),
			})
			continue
		}
		c.checkPattern(fp.Pattern, want, env)
	}
}

func (c *Checker) checkVariantPattern(p *ast.VariantPattern, scrutinee types.Type, env *types.TypeEnv) {
	owner, ok := c.defs.variantEnum[p.Tag]
	if !ok {
		c.bag.Add(diag.Diagnostic{
			Code: diag.CodeUnresolvedVariable, Phase: diag.PhaseTypeCheck, Severity: diag.SeverityError,
			Message: fmt.Sprintf("unknown case %q in pattern", p.Tag), Span: p.Span(),
		})
		for _, sub := range p.Subpatterns {
			c.checkPattern(sub, env.Fresh(), env)
		}
		return
	}

	var generics []ast.GenericParam
	var variants []ast.EnumVariant
	if ed, ok := c.defs.enums[owner]; ok {
		generics, variants = ed.Generics, ed.Variants
	} else if ud, ok := c.defs.unions[owner]; ok {
		generics, variants = ud.Generics, ud.Variants
	}

	child := env
	genArgs := make([]types.Type, len(generics))
	if len(generics) > 0 {
		child = env.Child()
		for i, g := range generics {
			tv := child.Fresh()
			child.BindTypeParam(g.Name, tv)
			genArgs[i] = tv
		}
	}
	c.unify(env, scrutinee, types.Named(owner, genArgs...), p.Span())

	for _, v := range variants {
		if v.Name != p.Tag {
			continue
		}
		for i, sub := range p.Subpatterns {
			if i >= len(v.Fields) {
				break
			}
			c.checkPattern(sub, c.convertType(v.Fields[i].Type, child), env)
		}
		return
	}
}
