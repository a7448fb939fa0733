package lower

import (
	"strconv"

	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/mir"
	"github.com/vaislang/vais/internal/types"
)

// lowerMatch desugars a match expression into a scrutinee evaluated once,
// followed by a chain of test/body/next blocks — one per arm — joining on a
// shared result local, mirroring how lowerIf handles a single branch.
func (b *Builder) lowerMatch(n *ast.Match) mir.Operand {
	scrutVal := b.lowerExpr(n.Scrutinee)
	scrutType := b.typeOfOperand(scrutVal)
	scrutLocal := b.newLocal(scrutType, "")
	b.emit(mir.Assign(mir.BarePlace(scrutLocal), mir.UseOf(scrutVal)), n.Span())
	scrutPlace := mir.BarePlace(scrutLocal)

	joinBlk := b.newBlock()
	resultLocal := b.newLocal(types.AnyType, "")

	for _, arm := range n.Arms {
		testBlk := b.newBlock()
		b.terminate(mir.Goto(testBlk), n.Span())
		b.switchTo(testBlk)

		bodyBlk := b.newBlock()
		nextBlk := b.newBlock()

		cond := b.testPattern(arm.Pattern, scrutPlace, scrutType)
		if arm.Guard != nil {
			b.pushScope()
			b.bindPattern(arm.Pattern, scrutPlace, scrutType)
			guardTrue := b.lowerExpr(arm.Guard)
			b.popScope()
			cond = b.evalBinary("&&", cond, guardTrue, types.Bool, n)
		}
		b.terminate(mir.SwitchInt(cond, []mir.SwitchCase{{Value: 1, Target: bodyBlk}}, nextBlk), n.Span())

		b.switchTo(bodyBlk)
		b.pushScope()
		b.bindPattern(arm.Pattern, scrutPlace, scrutType)
		armVal := b.lowerExpr(arm.Body)
		b.popScope()
		if !b.closed() {
			b.emit(mir.Assign(mir.BarePlace(resultLocal), mir.UseOf(armVal)), arm.Body.Span())
			b.terminate(mir.Goto(joinBlk), arm.Body.Span())
		}

		b.switchTo(nextBlk)
	}
	// Fell through every arm: internal/checker already proved exhaustiveness,
	// so this path is unreachable at runtime; model it as such rather than
	// synthesizing a panic path the checker has already ruled out.
	b.terminate(mir.Unreachable(), n.Span())

	b.switchTo(joinBlk)
	return b.operandFor(resultLocal, types.AnyType)
}

// testPattern emits whatever comparisons are needed to evaluate whether pat
// matches the value at place, returning a bool operand. Patterns that always
// match (wildcard, bare ident, struct/tuple shape already guaranteed by the
// checker) return a constant true; this is a best-effort structural test,
// not a full match-compiler decision tree.
func (b *Builder) testPattern(pat ast.Pattern, place mir.Place, t types.Type) mir.Operand {
	trueOp := mir.ConstOp(mir.Constant{Type: types.Bool, Bool: true})
	switch p := pat.(type) {
	case *ast.WildcardPattern, *ast.IdentPattern:
		return trueOp
	case *ast.LiteralPattern:
		lit := b.lowerExpr(p.Value)
		return b.evalBinary("==", b.readPlace(place, t), lit, types.Bool, p)
	case *ast.RangePattern:
		lo := b.lowerExpr(p.Start)
		hi := b.lowerExpr(p.End)
		val := b.readPlace(place, t)
		geLo := b.evalBinary(">=", val, lo, types.Bool, p)
		op := "<"
		if p.Inclusive {
			op = "<="
		}
		leHi := b.evalBinary(op, val, hi, types.Bool, p)
		return b.evalBinary("&&", geLo, leHi, types.Bool, p)
	case *ast.VariantPattern:
		discLocal := b.newLocal(types.Str, "")
		b.emit(mir.Assign(mir.BarePlace(discLocal), mir.Discriminant(place)), p.Span())
		tagMatch := b.evalBinary("==", b.operandFor(discLocal, types.Str), mir.ConstOp(mir.Constant{Type: types.Str, Str: p.Tag}), types.Bool, p)
		cond := tagMatch
		for i, sub := range p.Subpatterns {
			fieldPlace := extendPlace(place, mir.Projection{Kind: mir.ProjField, Field: strconv.Itoa(i)})
			subCond := b.testPattern(sub, fieldPlace, types.AnyType)
			cond = b.evalBinary("&&", cond, subCond, types.Bool, p)
		}
		return cond
	case *ast.TuplePattern:
		cond := trueOp
		for i, sub := range p.Elements {
			fieldPlace := extendPlace(place, mir.Projection{Kind: mir.ProjField, Field: strconv.Itoa(i)})
			subCond := b.testPattern(sub, fieldPlace, types.AnyType)
			cond = b.evalBinary("&&", cond, subCond, types.Bool, p)
		}
		return cond
	case *ast.StructPattern:
		cond := trueOp
		for _, fp := range p.Fields {
			fieldPlace := extendPlace(place, mir.Projection{Kind: mir.ProjField, Field: fp.Name})
			subCond := b.testPattern(fp.Pattern, fieldPlace, types.AnyType)
			cond = b.evalBinary("&&", cond, subCond, types.Bool, p)
		}
		return cond
	case *ast.OrPattern:
		cond := mir.ConstOp(mir.Constant{Type: types.Bool, Bool: false})
		for _, alt := range p.Alternatives {
			altCond := b.testPattern(alt, place, t)
			cond = b.evalBinary("||", cond, altCond, types.Bool, p)
		}
		return cond
	case *ast.AliasPattern:
		return b.testPattern(p.Inner, place, t)
	default:
		return trueOp
	}
}

// bindPattern binds every name pat introduces, in the scope already pushed
// by the caller, reading from place.
func (b *Builder) bindPattern(pat ast.Pattern, place mir.Place, t types.Type) {
	switch p := pat.(type) {
	case *ast.IdentPattern:
		l := b.newLocal(t, p.Name)
		b.emit(mir.Assign(mir.BarePlace(l), mir.UseOf(b.readPlace(place, t))), p.Span())
		b.bind(p.Name, l)
	case *ast.VariantPattern:
		for i, sub := range p.Subpatterns {
			fieldPlace := extendPlace(place, mir.Projection{Kind: mir.ProjField, Field: strconv.Itoa(i)})
			b.bindPattern(sub, fieldPlace, types.AnyType)
		}
	case *ast.TuplePattern:
		for i, sub := range p.Elements {
			fieldPlace := extendPlace(place, mir.Projection{Kind: mir.ProjField, Field: strconv.Itoa(i)})
			b.bindPattern(sub, fieldPlace, types.AnyType)
		}
	case *ast.StructPattern:
		for _, fp := range p.Fields {
			fieldPlace := extendPlace(place, mir.Projection{Kind: mir.ProjField, Field: fp.Name})
			b.bindPattern(fp.Pattern, fieldPlace, types.AnyType)
		}
	case *ast.AliasPattern:
		l := b.newLocal(t, p.Name)
		b.emit(mir.Assign(mir.BarePlace(l), mir.UseOf(b.readPlace(place, t))), p.Span())
		b.bind(p.Name, l)
		b.bindPattern(p.Inner, place, t)
	case *ast.OrPattern:
		// alternatives must bind the same names; bind from the first as a
		// representative since exactly one alternative matched at runtime.
		if len(p.Alternatives) > 0 {
			b.bindPattern(p.Alternatives[0], place, t)
		}
	case *ast.WildcardPattern, *ast.LiteralPattern, *ast.RangePattern:
		// no names introduced.
	}
}

func (b *Builder) readPlace(place mir.Place, t types.Type) mir.Operand {
	if len(place.Projections) == 0 {
		return b.operandFor(place.Local, t)
	}
	return mir.Copy(place)
}
