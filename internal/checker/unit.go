package checker

import (
	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/types"
)

// checkUnit type-checks a declarative UNIT's blocks: INPUT params are bound
// into a fresh scope, CONSTRAINT/VERIFY expressions are expected to be
// bool, FLOW step arguments and META values are inferred for their own
// internal consistency (nothing else constrains their shape), and
// EXECUTION's body is checked as an ordinary block against that scope.
func (c *Checker) checkUnit(u *ast.UnitDecl, env *types.TypeEnv) {
	child := env.Child()
	if u.Input != nil {
		for _, p := range u.Input.Params {
			child.BindVar(p.Name, c.convertType(p.Type, child))
		}
	}
	if u.Output != nil {
		for _, p := range u.Output.Params {
			// Output names are reserved for VERIFY/EXECUTION to refer to
			// the produced value under that name, typed per declaration.
			child.BindVar(p.Name, c.convertType(p.Type, child))
		}
	}
	if u.Meta != nil {
		for _, entry := range u.Meta.Entries {
			if entry.Value != nil {
				c.inferExpr(entry.Value, child)
			}
		}
	}
	if u.Constraint != nil {
		for _, entry := range u.Constraint.Entries {
			c.unify(child, types.Bool, c.inferExpr(entry.Expr, child), entry.Expr.Span())
		}
	}
	if u.Flow != nil {
		for _, step := range u.Flow.Steps {
			for _, arg := range step.Args {
				c.inferExpr(arg, child)
			}
		}
	}
	if u.Execution != nil && u.Execution.Body != nil {
		c.checkBlock(u.Execution.Body, child)
	}
	if u.Verify != nil {
		for _, entry := range u.Verify.Entries {
			c.unify(child, types.Bool, c.inferExpr(entry.Expr, child), entry.Expr.Span())
		}
	}
}
