package checker

import (
	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/types"
)

// checkBlock type-checks every statement of b in order against env, then
// returns the type of its trailing expression, or Void if the block ends
// in a statement rather than a tail expression. Callers decide whether a
// fresh child scope is needed before calling — a function's own body block
// reuses the function's scope directly so its statements can introduce
// bindings visible to later statements in the same block.
func (c *Checker) checkBlock(b *ast.Block, env *types.TypeEnv) types.Type {
	if b == nil {
		return types.Void
	}
	for _, s := range b.Stmts {
		c.checkStmt(s, env)
	}
	if b.Tail != nil {
		return c.inferExpr(b.Tail, env)
	}
	return types.Void
}

func (c *Checker) checkStmt(s ast.Stmt, env *types.TypeEnv) {
	switch n := s.(type) {
	case *ast.LetStmt:
		value := c.inferExpr(n.Value, env)
		declared := c.convertType(n.Type, env)
		c.unify(env, declared, value, n.Span())
		env.BindVar(n.Name, env.Resolve(declared))
	case *ast.ExprStmt:
		c.inferExpr(n.Expr, env)
	default:
		// Assign/Break/Return/Assert double as Expr; route through the
		// same inference as any other expression statement.
		if e, ok := s.(ast.Expr); ok {
			c.inferExpr(e, env)
		}
	}
}
