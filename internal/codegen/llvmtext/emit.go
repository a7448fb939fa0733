// Package llvmtext renders a mir.Body as LLVM-IR-like text: readable,
// parseable-by-eye output that exercises the full instruction set the
// borrow checker proves safe, without linking against LLVM itself. It
// stands in for the original implementation's real llvm_codegen.rs
// backend, which this repository's Non-goals put out of scope.
package llvmtext

import (
	"fmt"
	"strings"

	"github.com/vaislang/vais/internal/mir"
	"github.com/vaislang/vais/internal/types"
)

// Target is the codegen.Target implementation for this package. It holds
// no state: every EmitFunction call is independent.
type Target struct{}

func (Target) Name() string { return "llvm" }

// EmitFunction renders body as one LLVM-IR-like function definition.
func (Target) EmitFunction(body *mir.Body) (string, error) {
	var b strings.Builder

	params := make([]string, len(body.ParamTypes))
	for i, pt := range body.ParamTypes {
		params[i] = fmt.Sprintf("%s %%l%d", llvmType(pt), i+1)
	}
	fmt.Fprintf(&b, "define %s @%s(%s) {\n", llvmType(body.ReturnType), body.Name, strings.Join(params, ", "))

	for idx, blk := range body.Blocks {
		fmt.Fprintf(&b, "bb%d:\n", idx)
		for _, st := range blk.Statements {
			line, err := emitStatement(st)
			if err != nil {
				return "", err
			}
			if line != "" {
				fmt.Fprintf(&b, "  %s\n", line)
			}
		}
		if blk.Terminator == nil {
			return "", fmt.Errorf("llvmtext: block %d has no terminator", idx)
		}
		fmt.Fprintf(&b, "  %s\n", emitTerminator(*blk.Terminator, body.ReturnType))
	}

	b.WriteString("}\n")
	return b.String(), nil
}

func emitStatement(st mir.Statement) (string, error) {
	switch st.Kind {
	case mir.StmtNop:
		return "", nil
	case mir.StmtDrop:
		return fmt.Sprintf("drop %s", place(st.Place)), nil
	case mir.StmtAssign:
		rv, err := emitRvalue(st.Rvalue)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s = %s", place(st.Place), rv), nil
	default:
		return "", fmt.Errorf("llvmtext: unknown statement kind %d", st.Kind)
	}
}

func emitRvalue(rv mir.Rvalue) (string, error) {
	switch rv.Kind {
	case mir.RvUse:
		return operand(rv.Operand), nil
	case mir.RvBinaryOp:
		return fmt.Sprintf("%s %s, %s", llvmOp(rv.Op), operand(rv.Left), operand(rv.Right)), nil
	case mir.RvUnaryOp:
		return fmt.Sprintf("%s %s", llvmUnaryOp(rv.Op), operand(rv.Operand)), nil
	case mir.RvRef:
		kind := "shared"
		if rv.RefMut {
			kind = "mut"
		}
		return fmt.Sprintf("ref.%s %s", kind, place(rv.RefPlace)), nil
	case mir.RvAggregate:
		elems := make([]string, len(rv.Elements))
		for i, e := range rv.Elements {
			elems[i] = operand(e)
		}
		name := rv.AggregateKind
		if name == "" {
			name = "tuple"
		}
		return fmt.Sprintf("aggregate.%s [%s]", name, strings.Join(elems, ", ")), nil
	case mir.RvDiscriminant:
		return fmt.Sprintf("discriminant %s", place(rv.SourcePlace)), nil
	case mir.RvCast:
		return fmt.Sprintf("cast %s to %s", operand(rv.Operand), llvmType(rv.CastTo)), nil
	case mir.RvLen:
		return fmt.Sprintf("len %s", place(rv.SourcePlace)), nil
	default:
		return "", fmt.Errorf("llvmtext: unknown rvalue kind %d", rv.Kind)
	}
}

func emitTerminator(t mir.Terminator, retType types.Type) string {
	switch t.Kind {
	case mir.TermGoto:
		return fmt.Sprintf("br label %%bb%d", t.Target)
	case mir.TermSwitchInt:
		cases := make([]string, len(t.Cases))
		for i, c := range t.Cases {
			cases[i] = fmt.Sprintf("%d: label %%bb%d", c.Value, c.Target)
		}
		return fmt.Sprintf("switch %s, label %%bb%d [%s]", operand(t.Discriminant), t.Otherwise, strings.Join(cases, ", "))
	case mir.TermReturn:
		return fmt.Sprintf("ret %s %%l0", llvmType(retType))
	case mir.TermCall:
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = operand(a)
		}
		return fmt.Sprintf("%s = call %s(%s) to label %%bb%d", place(t.ReturnPlace), operand(t.Func), strings.Join(args, ", "), t.CallTarget)
	case mir.TermTailCall:
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = operand(a)
		}
		return fmt.Sprintf("tail call %s(%s)", operand(t.Func), strings.Join(args, ", "))
	case mir.TermUnreachable:
		return "unreachable"
	case mir.TermAssert:
		return fmt.Sprintf("assert %s, label %%bb%d, %q", operand(t.AssertCond), t.AssertTarget, t.AssertMsg)
	default:
		return fmt.Sprintf("; unknown terminator %d", t.Kind)
	}
}

func place(p mir.Place) string {
	s := fmt.Sprintf("%%l%d", p.Local)
	for _, proj := range p.Projections {
		switch proj.Kind {
		case mir.ProjField:
			s += "." + proj.Field
		case mir.ProjIndex:
			s += "[" + operand(proj.Index) + "]"
		case mir.ProjDeref:
			s = "*" + s
		}
	}
	return s
}

func operand(op mir.Operand) string {
	switch op.Kind {
	case mir.OpCopy:
		return place(op.Place)
	case mir.OpMove:
		return place(op.Place)
	case mir.OpConstant:
		return constant(op.Constant)
	default:
		return "<bad-operand>"
	}
}

func constant(c mir.Constant) string {
	if c.IsUnit {
		return "unit"
	}
	switch llvmType(c.Type) {
	case "float":
		return fmt.Sprintf("%s %g", llvmType(c.Type), c.Float)
	case "i1":
		return fmt.Sprintf("i1 %t", c.Bool)
	case "i8*":
		return fmt.Sprintf("c%q", c.Str)
	default:
		return fmt.Sprintf("%s %d", llvmType(c.Type), c.Int)
	}
}

// llvmOp maps a surface binary/unary operator to an LLVM-mnemonic-like
// instruction name. Comparisons all lower to signed icmp names, float
// operands included, since this text output is read, never assembled.
func llvmOp(op string) string {
	switch op {
	case "+":
		return "add"
	case "-":
		return "sub"
	case "*":
		return "mul"
	case "/":
		return "sdiv"
	case "%":
		return "srem"
	case "==":
		return "icmp eq"
	case "!=":
		return "icmp ne"
	case "<":
		return "icmp slt"
	case "<=":
		return "icmp sle"
	case ">":
		return "icmp sgt"
	case ">=":
		return "icmp sge"
	case "&&":
		return "and"
	case "||":
		return "or"
	default:
		return op
	}
}

// llvmUnaryOp maps a surface unary operator, which reuses "-"/"!" rather
// than a distinct token from the binary form, to its own mnemonic.
func llvmUnaryOp(op string) string {
	switch op {
	case "-":
		return "neg"
	case "!":
		return "not"
	default:
		return op
	}
}

// llvmType maps the core type system's Type to an LLVM-ish type name. Any
// shape this thin stand-in doesn't model structurally (structs, tuples,
// maps, sets, options, results, generics still unresolved to a concrete
// type) is represented as an opaque pointer, matching how LLVM itself
// erases aggregate layout behind a pointer once indirection is introduced.
func llvmType(t types.Type) string {
	if t == nil {
		return "void"
	}
	switch t.String() {
	case "int", "i64", "u64":
		return "i64"
	case "i32", "u32":
		return "i32"
	case "i16", "u16":
		return "i16"
	case "i8", "u8":
		return "i8"
	case "f32":
		return "float"
	case "f64":
		return "double"
	case "bool":
		return "i1"
	case "void":
		return "void"
	case "string", "bytes":
		return "i8*"
	default:
		return "i8*"
	}
}
