package lower

import (
	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/mir"
	"github.com/vaislang/vais/internal/types"
)

// lowerBlock lowers every statement in blk in its own nested scope, then
// lowers (and returns) its tail expression, or Void if the block has none.
func (b *Builder) lowerBlock(blk *ast.Block) mir.Operand {
	b.pushScope()
	defer b.popScope()

	for _, s := range blk.Stmts {
		if b.closed() {
			break // unreachable: an earlier statement already returned/broke
		}
		b.lowerStmt(s)
	}
	if b.closed() {
		return mir.ConstOp(mir.Constant{Type: types.Void, IsUnit: true})
	}
	if blk.Tail != nil {
		return b.lowerExpr(blk.Tail)
	}
	return mir.ConstOp(mir.Constant{Type: types.Void, IsUnit: true})
}

// lowerStmt lowers s for its effect, discarding any value it produces.
func (b *Builder) lowerStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.LetStmt:
		val := b.lowerExpr(n.Value)
		t := b.typeOfOperand(val)
		if n.Type != nil {
			t = resolveType(n.Type)
		}
		l := b.newLocal(t, n.Name)
		b.emit(mir.Assign(mir.BarePlace(l), mir.UseOf(val)), n.Span())
		b.bind(n.Name, l)
	case *ast.ExprStmt:
		b.lowerExpr(n.Expr)
	case *ast.Break:
		b.lowerExpr(n)
	case *ast.Return:
		b.lowerExpr(n)
	case *ast.Assign:
		b.lowerExpr(n)
	case *ast.Assert:
		b.lowerExpr(n)
	default:
	}
}
