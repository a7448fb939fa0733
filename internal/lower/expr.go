package lower

import (
	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/borrowck"
	"github.com/vaislang/vais/internal/mir"
	"github.com/vaislang/vais/internal/span"
	"github.com/vaislang/vais/internal/types"
)

// typeOfOperand recovers op's type: a Constant already carries one, and a
// Copy/Move of a bare Local reads the declaration's type directly; a
// projected place (field/index/deref) falls back to AnyType since this pass
// keeps no separate field-type table (internal/checker already validated
// the real field types during type checking).
func (b *Builder) typeOfOperand(op mir.Operand) types.Type {
	switch op.Kind {
	case mir.OpConstant:
		return op.Constant.Type
	default:
		if len(op.Place.Projections) > 0 {
			return types.AnyType
		}
		return b.body.Locals[op.Place.Local].Type
	}
}

// operandFor reads local's current value: Copy for a Copy type (so the
// local stays usable afterward), Move otherwise — matching the ownership
// discipline internal/borrowck enforces for every other use site.
func (b *Builder) operandFor(local mir.Local, t types.Type) mir.Operand {
	if borrowck.IsCopyType(t) {
		return mir.Copy(mir.BarePlace(local))
	}
	return mir.Move(mir.BarePlace(local))
}

// evalBinary emits `newLocal = l <op> r` and returns an operand reading it
// back.
func (b *Builder) evalBinary(op string, l, r mir.Operand, resultType types.Type, sp ast.Node) mir.Operand {
	newL := b.newLocal(resultType, "")
	b.emit(mir.Assign(mir.BarePlace(newL), mir.BinaryOp(op, l, r)), sp.Span())
	return b.operandFor(newL, resultType)
}

// lowerExpr lowers e into a value-producing operand, emitting whatever
// statements/terminators are needed along the way.
func (b *Builder) lowerExpr(e ast.Expr) mir.Operand {
	switch n := e.(type) {
	case *ast.IntLit:
		return mir.ConstOp(mir.Constant{Type: types.Int, Int: n.Value})
	case *ast.FloatLit:
		return mir.ConstOp(mir.Constant{Type: types.F64, Float: n.Value})
	case *ast.StringLit:
		return mir.ConstOp(mir.Constant{Type: types.Str, Str: n.Value})
	case *ast.BoolLit:
		return mir.ConstOp(mir.Constant{Type: types.Bool, Bool: n.Value})
	case *ast.UnitLit:
		return mir.ConstOp(mir.Constant{Type: types.Void, IsUnit: true})
	case *ast.RegexLit:
		return mir.ConstOp(mir.Constant{Type: types.Str, Str: n.Pattern})
	case *ast.DurationLit:
		return mir.ConstOp(mir.Constant{Type: types.Primitive("duration"), Str: n.Text})
	case *ast.SizeLit:
		return mir.ConstOp(mir.Constant{Type: types.Int, Str: n.Text})
	case *ast.Ident:
		return b.lowerIdent(n)
	case *ast.Binary:
		return b.lowerBinary(n)
	case *ast.Unary:
		return b.lowerUnary(n)
	case *ast.Ternary:
		return b.lowerTernary(n)
	case *ast.If:
		return b.lowerIf(n)
	case *ast.Match:
		return b.lowerMatch(n)
	case *ast.ForLoop:
		return b.lowerForLoop(n)
	case *ast.InfiniteLoop:
		return b.lowerInfiniteLoop(n)
	case *ast.WhileLoop:
		return b.lowerWhileLoop(n)
	case *ast.Break:
		return b.lowerBreak(n)
	case *ast.Return:
		return b.lowerReturn(n)
	case *ast.Block:
		return b.lowerBlock(n)
	case *ast.Call:
		return b.lowerCallExpr(n)
	case *ast.MethodCall:
		return b.lowerMethodCall(n)
	case *ast.StaticCall:
		return b.lowerStaticCall(n)
	case *ast.FieldAccess, *ast.IndexAccess, *ast.Dereference:
		place, t := b.lowerPlace(e)
		newL := b.newLocal(t, "")
		b.emit(mir.Assign(mir.BarePlace(newL), mir.UseOf(mir.Copy(place))), e.Span())
		return b.operandFor(newL, t)
	case *ast.ArrayLit:
		return b.lowerArrayLit(n)
	case *ast.TupleLit:
		return b.lowerTupleLit(n)
	case *ast.MapLit:
		return b.lowerMapLit(n)
	case *ast.StructLit:
		return b.lowerStructLit(n)
	case *ast.RangeLit:
		startVal := b.lowerExpr(n.Start)
		startType := b.typeOfOperand(startVal)
		endVal := b.lowerExpr(n.End)
		t := types.Array(startType)
		newL := b.newLocal(t, "")
		incl := mir.ConstOp(mir.Constant{Type: types.Bool, Bool: n.Inclusive})
		b.emit(mir.Assign(mir.BarePlace(newL), mir.Aggregate("Range", []mir.Operand{startVal, endVal, incl})), n.Span())
		return b.operandFor(newL, t)
	case *ast.Lambda:
		return b.lowerLambda(n)
	case *ast.Await:
		inner := b.lowerExpr(n.Expr)
		t := types.AnyType
		if inv, ok := types.FutureInner(b.typeOfOperand(inner)); ok {
			t = inv
		}
		newL := b.newLocal(t, "")
		b.emit(mir.Assign(mir.BarePlace(newL), mir.Cast(inner, t)), n.Span())
		return b.operandFor(newL, t)
	case *ast.Spawn:
		inner := b.lowerExpr(n.Expr)
		t := types.Future(b.typeOfOperand(inner))
		newL := b.newLocal(t, "")
		b.emit(mir.Assign(mir.BarePlace(newL), mir.Cast(inner, t)), n.Span())
		return b.operandFor(newL, t)
	case *ast.Try:
		return b.lowerTry(n)
	case *ast.Unwrap:
		return b.lowerForceUnwrap(n)
	case *ast.Reference:
		place, t := b.placeOf(n.Expr)
		newL := b.newLocal(t, "")
		b.emit(mir.Assign(mir.BarePlace(newL), mir.Ref(place, n.Mutable)), n.Span())
		return b.operandFor(newL, t)
	case *ast.Spread:
		return b.lowerExpr(n.Expr)
	case *ast.Cast:
		inner := b.lowerExpr(n.Expr)
		t := resolveType(n.Type)
		newL := b.newLocal(t, "")
		b.emit(mir.Assign(mir.BarePlace(newL), mir.Cast(inner, t)), n.Span())
		return b.operandFor(newL, t)
	case *ast.Assign:
		val := b.lowerExpr(n.Value)
		place, _ := b.lowerPlace(n.Target)
		b.emit(mir.Assign(place, mir.UseOf(val)), n.Span())
		return mir.ConstOp(mir.Constant{Type: types.Void, IsUnit: true})
	case *ast.Yield:
		b.lowerExpr(n.Expr)
		return mir.ConstOp(mir.Constant{Type: types.Void, IsUnit: true})
	case *ast.Lazy:
		inner := b.lowerExpr(n.Expr)
		t := types.Named("Lazy", b.typeOfOperand(inner))
		newL := b.newLocal(t, "")
		b.emit(mir.Assign(mir.BarePlace(newL), mir.Cast(inner, t)), n.Span())
		return b.operandFor(newL, t)
	case *ast.Force:
		inner := b.lowerExpr(n.Expr)
		it := b.typeOfOperand(inner)
		t := types.AnyType
		if _, args, ok := types.NamedInfo(it); ok && len(args) == 1 {
			t = args[0]
		}
		newL := b.newLocal(t, "")
		b.emit(mir.Assign(mir.BarePlace(newL), mir.Cast(inner, t)), n.Span())
		return b.operandFor(newL, t)
	case *ast.Assert:
		cond := b.lowerExpr(n.Cond)
		msg := ""
		if sl, ok := n.Message.(*ast.StringLit); ok {
			msg = sl.Value
		}
		contBlk := b.newBlock()
		b.terminate(mir.Assert(cond, contBlk, msg), n.Span())
		b.switchTo(contBlk)
		return mir.ConstOp(mir.Constant{Type: types.Void, IsUnit: true})
	case *ast.CompileTime:
		return b.lowerExpr(n.Expr)
	case *ast.Assume:
		b.lowerExpr(n.Cond)
		return mir.ConstOp(mir.Constant{Type: types.Void, IsUnit: true})
	case *ast.Old:
		return b.lowerExpr(n.Expr)
	case *ast.MacroInvocation, *ast.ErrorExpr:
		// never reached in a successfully macro-expanded, parsed program.
		return mir.ConstOp(mir.Constant{Type: types.AnyType, IsUnit: true})
	default:
		return mir.ConstOp(mir.Constant{Type: types.AnyType, IsUnit: true})
	}
}

func (b *Builder) lowerIdent(n *ast.Ident) mir.Operand {
	l, ok := b.lookup(n.Name)
	if !ok {
		// a global/const/function referenced by value: this per-function
		// MIR carries no cross-function symbol table, so it is encoded as
		// an opaque named constant rather than modeled as a real load.
		return mir.ConstOp(mir.Constant{Type: types.AnyType, Str: n.Name})
	}
	return b.operandFor(l, b.body.Locals[l].Type)
}

func (b *Builder) lowerBinary(n *ast.Binary) mir.Operand {
	l := b.lowerExpr(n.Left)
	r := b.lowerExpr(n.Right)
	resultType := b.typeOfOperand(l)
	if isComparisonOp(n.Op) {
		resultType = types.Bool
	}
	return b.evalBinary(n.Op, l, r, resultType, n)
}

func (b *Builder) lowerUnary(n *ast.Unary) mir.Operand {
	operand := b.lowerExpr(n.Expr)
	resultType := b.typeOfOperand(operand)
	if n.Op == "!" || n.Op == "not" {
		resultType = types.Bool
	}
	newL := b.newLocal(resultType, "")
	b.emit(mir.Assign(mir.BarePlace(newL), mir.UnaryOp(n.Op, operand)), n.Span())
	return b.operandFor(newL, resultType)
}

func (b *Builder) lowerTernary(n *ast.Ternary) mir.Operand {
	cond := b.lowerExpr(n.Cond)
	thenBlk := b.newBlock()
	elseBlk := b.newBlock()
	joinBlk := b.newBlock()
	b.terminate(mir.SwitchInt(cond, []mir.SwitchCase{{Value: 1, Target: thenBlk}}, elseBlk), n.Span())

	resultLocal := b.newLocal(types.AnyType, "")

	b.switchTo(thenBlk)
	thenVal := b.lowerExpr(n.Then)
	if !b.closed() {
		b.emit(mir.Assign(mir.BarePlace(resultLocal), mir.UseOf(thenVal)), n.Then.Span())
		b.terminate(mir.Goto(joinBlk), n.Then.Span())
	}

	b.switchTo(elseBlk)
	elseVal := b.lowerExpr(n.Else)
	if !b.closed() {
		b.emit(mir.Assign(mir.BarePlace(resultLocal), mir.UseOf(elseVal)), n.Else.Span())
		b.terminate(mir.Goto(joinBlk), n.Else.Span())
	}

	b.switchTo(joinBlk)
	return b.operandFor(resultLocal, types.AnyType)
}

func (b *Builder) lowerIf(n *ast.If) mir.Operand {
	cond := b.lowerExpr(n.Cond)
	thenBlk := b.newBlock()
	elseBlk := b.newBlock()
	joinBlk := b.newBlock()
	b.terminate(mir.SwitchInt(cond, []mir.SwitchCase{{Value: 1, Target: thenBlk}}, elseBlk), n.Span())

	resultLocal := b.newLocal(types.AnyType, "")

	b.switchTo(thenBlk)
	thenVal := b.lowerBlock(n.Then)
	if !b.closed() {
		b.emit(mir.Assign(mir.BarePlace(resultLocal), mir.UseOf(thenVal)), n.Then.Span())
		b.terminate(mir.Goto(joinBlk), n.Then.Span())
	}

	b.switchTo(elseBlk)
	var elseVal mir.Operand
	if n.Else != nil {
		elseVal = b.lowerExpr(n.Else)
	} else {
		elseVal = mir.ConstOp(mir.Constant{Type: types.Void, IsUnit: true})
	}
	if !b.closed() {
		b.emit(mir.Assign(mir.BarePlace(resultLocal), mir.UseOf(elseVal)), n.Span())
		b.terminate(mir.Goto(joinBlk), n.Span())
	}

	b.switchTo(joinBlk)
	return b.operandFor(resultLocal, types.AnyType)
}

func (b *Builder) lowerForLoop(n *ast.ForLoop) mir.Operand {
	iterVal := b.lowerExpr(n.Iterable)
	iterType := b.typeOfOperand(iterVal)
	arrLocal := b.newLocal(iterType, "")
	b.emit(mir.Assign(mir.BarePlace(arrLocal), mir.UseOf(iterVal)), n.Iterable.Span())

	elemType := types.Type(types.AnyType)
	if et, ok := types.ArrayElem(iterType); ok {
		elemType = et
	}

	lenLocal := b.newLocal(types.Int, "")
	b.emit(mir.Assign(mir.BarePlace(lenLocal), mir.Len(mir.BarePlace(arrLocal))), n.Span())

	idxLocal := b.newLocal(types.Int, "")
	b.emit(mir.Assign(mir.BarePlace(idxLocal), mir.UseOf(mir.ConstOp(mir.Constant{Type: types.Int, Int: 0}))), n.Span())

	condBlk := b.newBlock()
	bodyBlk := b.newBlock()
	incrBlk := b.newBlock()
	exitBlk := b.newBlock()

	b.terminate(mir.Goto(condBlk), n.Span())

	b.switchTo(condBlk)
	test := b.evalBinary("<", b.operandFor(idxLocal, types.Int), b.operandFor(lenLocal, types.Int), types.Bool, n)
	b.terminate(mir.SwitchInt(test, []mir.SwitchCase{{Value: 1, Target: bodyBlk}}, exitBlk), n.Span())

	b.switchTo(bodyBlk)
	elemLocal := b.newLocal(elemType, n.Var)
	elemPlace := mir.Place{Local: arrLocal, Projections: []mir.Projection{{Kind: mir.ProjIndex, Index: b.operandFor(idxLocal, types.Int)}}}
	b.emit(mir.Assign(mir.BarePlace(elemLocal), mir.UseOf(mir.Copy(elemPlace))), n.Span())

	b.pushScope()
	b.bind(n.Var, elemLocal)
	b.loops = append(b.loops, loopCtx{breakTarget: exitBlk})
	b.lowerBlock(n.Body)
	b.loops = b.loops[:len(b.loops)-1]
	b.popScope()
	if !b.closed() {
		b.terminate(mir.Goto(incrBlk), n.Span())
	}

	b.switchTo(incrBlk)
	one := mir.ConstOp(mir.Constant{Type: types.Int, Int: 1})
	nextIdx := b.evalBinary("+", b.operandFor(idxLocal, types.Int), one, types.Int, n)
	b.emit(mir.Assign(mir.BarePlace(idxLocal), mir.UseOf(nextIdx)), n.Span())
	b.terminate(mir.Goto(condBlk), n.Span())

	b.switchTo(exitBlk)
	return mir.ConstOp(mir.Constant{Type: types.Void, IsUnit: true})
}

func (b *Builder) lowerWhileLoop(n *ast.WhileLoop) mir.Operand {
	condBlk := b.newBlock()
	bodyBlk := b.newBlock()
	exitBlk := b.newBlock()
	b.terminate(mir.Goto(condBlk), n.Span())

	b.switchTo(condBlk)
	condVal := b.lowerExpr(n.Cond)
	b.terminate(mir.SwitchInt(condVal, []mir.SwitchCase{{Value: 1, Target: bodyBlk}}, exitBlk), n.Cond.Span())

	b.switchTo(bodyBlk)
	b.loops = append(b.loops, loopCtx{breakTarget: exitBlk})
	b.lowerBlock(n.Body)
	b.loops = b.loops[:len(b.loops)-1]
	if !b.closed() {
		b.terminate(mir.Goto(condBlk), n.Span())
	}

	b.switchTo(exitBlk)
	return mir.ConstOp(mir.Constant{Type: types.Void, IsUnit: true})
}

func (b *Builder) lowerInfiniteLoop(n *ast.InfiniteLoop) mir.Operand {
	bodyBlk := b.newBlock()
	exitBlk := b.newBlock()
	b.terminate(mir.Goto(bodyBlk), n.Span())

	b.switchTo(bodyBlk)
	b.loops = append(b.loops, loopCtx{breakTarget: exitBlk})
	b.lowerBlock(n.Body)
	b.loops = b.loops[:len(b.loops)-1]
	if !b.closed() {
		b.terminate(mir.Goto(bodyBlk), n.Span())
	}

	b.switchTo(exitBlk)
	return mir.ConstOp(mir.Constant{Type: types.Void, IsUnit: true})
}

func (b *Builder) lowerBreak(n *ast.Break) mir.Operand {
	if n.Value != nil {
		b.lowerExpr(n.Value) // loop expressions always yield Void here; a break value is evaluated for its side effects only
	}
	if len(b.loops) > 0 {
		b.terminate(mir.Goto(b.loops[len(b.loops)-1].breakTarget), n.Span())
	}
	return mir.ConstOp(mir.Constant{Type: types.Void, IsUnit: true})
}

func (b *Builder) lowerReturn(n *ast.Return) mir.Operand {
	var val mir.Operand
	if n.Value != nil {
		val = b.lowerExpr(n.Value)
	} else {
		val = mir.ConstOp(mir.Constant{Type: types.Void, IsUnit: true})
	}
	b.emit(mir.Assign(mir.BarePlace(mir.ReturnPlace), mir.UseOf(val)), n.Span())
	b.terminate(mir.Return(), n.Span())
	return mir.ConstOp(mir.Constant{Type: types.Void, IsUnit: true})
}

func (b *Builder) lowerCallExpr(n *ast.Call) mir.Operand {
	args := make([]mir.Operand, len(n.Args))
	for i, a := range n.Args {
		args[i] = b.lowerExpr(a)
	}
	var calleeOp mir.Operand
	if id, ok := n.Callee.(*ast.Ident); ok {
		calleeOp = mir.ConstOp(mir.Constant{Type: types.AnyType, Str: id.Name})
	} else {
		calleeOp = b.lowerExpr(n.Callee)
	}
	return b.lowerCall(calleeOp, args, types.AnyType, n.Span())
}

func (b *Builder) lowerMethodCall(n *ast.MethodCall) mir.Operand {
	recv := b.lowerExpr(n.Receiver)
	args := make([]mir.Operand, len(n.Args)+1)
	args[0] = recv
	for i, a := range n.Args {
		args[i+1] = b.lowerExpr(a)
	}
	calleeOp := mir.ConstOp(mir.Constant{Type: types.AnyType, Str: n.Method})
	return b.lowerCall(calleeOp, args, types.AnyType, n.Span())
}

func (b *Builder) lowerStaticCall(n *ast.StaticCall) mir.Operand {
	args := make([]mir.Operand, len(n.Args))
	for i, a := range n.Args {
		args[i] = b.lowerExpr(a)
	}
	name := n.Method
	if nt, ok := n.Type.(*ast.NamedType); ok {
		name = nt.Name + "::" + n.Method
	}
	calleeOp := mir.ConstOp(mir.Constant{Type: types.AnyType, Str: name})
	return b.lowerCall(calleeOp, args, types.AnyType, n.Span())
}

// lowerCall ends the current block with a TermCall — calls are control-flow
// transfers in this CFG, not plain rvalues — and resumes emitting into the
// continuation block the callee returns control to.
func (b *Builder) lowerCall(calleeOp mir.Operand, args []mir.Operand, resultType types.Type, sp span.Span) mir.Operand {
	retLocal := b.newLocal(resultType, "")
	contBlk := b.newBlock()
	b.terminate(mir.Call(calleeOp, args, mir.BarePlace(retLocal), contBlk), sp)
	b.switchTo(contBlk)
	return b.operandFor(retLocal, resultType)
}

func (b *Builder) lowerArrayLit(n *ast.ArrayLit) mir.Operand {
	elems := make([]mir.Operand, len(n.Elements))
	elemType := types.Type(types.AnyType)
	for i, e := range n.Elements {
		elems[i] = b.lowerExpr(e)
		if i == 0 {
			elemType = b.typeOfOperand(elems[i])
		}
	}
	t := types.Array(elemType)
	newL := b.newLocal(t, "")
	b.emit(mir.Assign(mir.BarePlace(newL), mir.Aggregate("", elems)), n.Span())
	return b.operandFor(newL, t)
}

func (b *Builder) lowerTupleLit(n *ast.TupleLit) mir.Operand {
	elems := make([]mir.Operand, len(n.Elements))
	elemTypes := make([]types.Type, len(n.Elements))
	for i, e := range n.Elements {
		elems[i] = b.lowerExpr(e)
		elemTypes[i] = b.typeOfOperand(elems[i])
	}
	t := types.Tuple(elemTypes...)
	newL := b.newLocal(t, "")
	b.emit(mir.Assign(mir.BarePlace(newL), mir.Aggregate("", elems)), n.Span())
	return b.operandFor(newL, t)
}

func (b *Builder) lowerMapLit(n *ast.MapLit) mir.Operand {
	elems := make([]mir.Operand, 0, len(n.Entries)*2)
	keyType, valType := types.Type(types.AnyType), types.Type(types.AnyType)
	for i, entry := range n.Entries {
		k := b.lowerExpr(entry.Key)
		v := b.lowerExpr(entry.Value)
		if i == 0 {
			keyType, valType = b.typeOfOperand(k), b.typeOfOperand(v)
		}
		elems = append(elems, k, v)
	}
	t := types.MapT(keyType, valType)
	newL := b.newLocal(t, "")
	b.emit(mir.Assign(mir.BarePlace(newL), mir.Aggregate("Map", elems)), n.Span())
	return b.operandFor(newL, t)
}

func (b *Builder) lowerStructLit(n *ast.StructLit) mir.Operand {
	elems := make([]mir.Operand, len(n.Fields))
	for i, f := range n.Fields {
		elems[i] = b.lowerExpr(f.Value)
	}
	t := types.Named(n.TypeName)
	newL := b.newLocal(t, "")
	b.emit(mir.Assign(mir.BarePlace(newL), mir.Aggregate(n.TypeName, elems)), n.Span())
	return b.operandFor(newL, t)
}

// lowerLambda lowers only the enclosing reference, not the body: it yields
// a "<lambda>" constant of the lambda's function type, and the body is not
// lowered anywhere, since this pass has no closure-capture representation
// to lower a first-class function value into.
func (b *Builder) lowerLambda(n *ast.Lambda) mir.Operand {
	params := make([]types.Type, len(n.Params))
	for i, p := range n.Params {
		params[i] = resolveType(p.Type)
	}
	t := types.Func(params, types.AnyType)
	return mir.ConstOp(mir.Constant{Type: t, Str: "<lambda>"})
}

func (b *Builder) lowerTry(n *ast.Try) mir.Operand {
	inner := b.lowerExpr(n.Expr)
	innerType := b.typeOfOperand(inner)
	innerLocal := b.newLocal(innerType, "")
	b.emit(mir.Assign(mir.BarePlace(innerLocal), mir.UseOf(inner)), n.Span())

	okType := types.Type(types.AnyType)
	if rt, ok := types.ResultInner(innerType); ok {
		okType = rt
	} else if ot, ok := types.OptionalInner(innerType); ok {
		okType = ot
	}

	discLocal := b.newLocal(types.Str, "")
	b.emit(mir.Assign(mir.BarePlace(discLocal), mir.Discriminant(mir.BarePlace(innerLocal))), n.Span())
	isOk := b.evalBinary("==", b.operandFor(discLocal, types.Str), mir.ConstOp(mir.Constant{Type: types.Str, Str: "Ok"}), types.Bool, n)

	okBlk := b.newBlock()
	errBlk := b.newBlock()
	b.terminate(mir.SwitchInt(isOk, []mir.SwitchCase{{Value: 1, Target: okBlk}}, errBlk), n.Span())

	b.switchTo(errBlk)
	b.emit(mir.Assign(mir.BarePlace(mir.ReturnPlace), mir.UseOf(b.operandFor(innerLocal, innerType))), n.Span())
	b.terminate(mir.Return(), n.Span())

	b.switchTo(okBlk)
	okLocal := b.newLocal(okType, "")
	payloadPlace := mir.Place{Local: innerLocal, Projections: []mir.Projection{{Kind: mir.ProjField, Field: "0"}}}
	b.emit(mir.Assign(mir.BarePlace(okLocal), mir.UseOf(mir.Copy(payloadPlace))), n.Span())
	return b.operandFor(okLocal, okType)
}

func (b *Builder) lowerForceUnwrap(n *ast.Unwrap) mir.Operand {
	inner := b.lowerExpr(n.Expr)
	innerType := b.typeOfOperand(inner)
	innerLocal := b.newLocal(innerType, "")
	b.emit(mir.Assign(mir.BarePlace(innerLocal), mir.UseOf(inner)), n.Span())

	payloadType := types.Type(types.AnyType)
	if rt, ok := types.ResultInner(innerType); ok {
		payloadType = rt
	} else if ot, ok := types.OptionalInner(innerType); ok {
		payloadType = ot
	}

	discLocal := b.newLocal(types.Str, "")
	b.emit(mir.Assign(mir.BarePlace(discLocal), mir.Discriminant(mir.BarePlace(innerLocal))), n.Span())
	isPresent := b.evalBinary("!=", b.operandFor(discLocal, types.Str), mir.ConstOp(mir.Constant{Type: types.Str, Str: "None"}), types.Bool, n)

	okBlk := b.newBlock()
	b.terminate(mir.Assert(isPresent, okBlk, "unwrap of empty or error value"), n.Span())

	b.switchTo(okBlk)
	payloadLocal := b.newLocal(payloadType, "")
	payloadPlace := mir.Place{Local: innerLocal, Projections: []mir.Projection{{Kind: mir.ProjField, Field: "0"}}}
	b.emit(mir.Assign(mir.BarePlace(payloadLocal), mir.UseOf(mir.Copy(payloadPlace))), n.Span())
	return b.operandFor(payloadLocal, payloadType)
}

// lowerPlace resolves e to an l-value Place plus its type, recursing through
// field/index/deref chains; a base that isn't itself addressable (e.g. a
// call result) is first spilled into a fresh Local via placeOf.
func (b *Builder) lowerPlace(e ast.Expr) (mir.Place, types.Type) {
	switch n := e.(type) {
	case *ast.Ident:
		l, ok := b.lookup(n.Name)
		if !ok {
			l = b.newLocal(types.AnyType, n.Name)
			b.bind(n.Name, l)
		}
		return mir.BarePlace(l), b.body.Locals[l].Type
	case *ast.FieldAccess:
		base, _ := b.placeOf(n.Target)
		return extendPlace(base, mir.Projection{Kind: mir.ProjField, Field: n.Field}), types.AnyType
	case *ast.IndexAccess:
		base, baseType := b.placeOf(n.Target)
		idxVal := b.lowerExpr(n.Index)
		elemType := types.Type(types.AnyType)
		if et, ok := types.ArrayElem(baseType); ok {
			elemType = et
		}
		return extendPlace(base, mir.Projection{Kind: mir.ProjIndex, Index: idxVal}), elemType
	case *ast.Dereference:
		base, baseType := b.placeOf(n.Expr)
		return extendPlace(base, mir.Projection{Kind: mir.ProjDeref}), baseType
	default:
		tmp := b.newLocal(types.AnyType, "")
		return mir.BarePlace(tmp), types.AnyType
	}
}

// placeOf is lowerPlace's helper for a sub-expression that must act as a
// base: addressable forms recurse, anything else is evaluated once into a
// fresh Local that the projection can then be built on top of.
func (b *Builder) placeOf(e ast.Expr) (mir.Place, types.Type) {
	switch e.(type) {
	case *ast.Ident, *ast.FieldAccess, *ast.IndexAccess, *ast.Dereference:
		return b.lowerPlace(e)
	default:
		val := b.lowerExpr(e)
		t := b.typeOfOperand(val)
		tmp := b.newLocal(t, "")
		b.emit(mir.Assign(mir.BarePlace(tmp), mir.UseOf(val)), e.Span())
		return mir.BarePlace(tmp), t
	}
}

func extendPlace(base mir.Place, proj mir.Projection) mir.Place {
	projs := make([]mir.Projection, len(base.Projections)+1)
	copy(projs, base.Projections)
	projs[len(base.Projections)] = proj
	return mir.Place{Local: base.Local, Projections: projs}
}
