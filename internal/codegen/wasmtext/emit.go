// Package wasmtext renders a mir.Body as WAT-like (WebAssembly text
// format) s-expressions, a thin stand-in for the original implementation's
// real wasm_component.rs backend.
package wasmtext

import (
	"fmt"
	"strings"

	"github.com/vaislang/vais/internal/mir"
	"github.com/vaislang/vais/internal/types"
)

// Target is the codegen.Target implementation for this package.
type Target struct{}

func (Target) Name() string { return "wasm" }

func (Target) EmitFunction(body *mir.Body) (string, error) {
	var b strings.Builder

	params := make([]string, len(body.ParamTypes))
	for i, pt := range body.ParamTypes {
		params[i] = fmt.Sprintf("(param $l%d %s)", i+1, wasmType(pt))
	}
	result := ""
	if wt := wasmType(body.ReturnType); wt != "" {
		result = fmt.Sprintf(" (result %s)", wt)
	}
	fmt.Fprintf(&b, "(func $%s %s%s\n", body.Name, strings.Join(params, " "), result)

	for idx, blk := range body.Blocks {
		fmt.Fprintf(&b, "  (block $bb%d\n", idx)
		for _, st := range blk.Statements {
			line, err := emitStatement(st)
			if err != nil {
				return "", err
			}
			if line != "" {
				fmt.Fprintf(&b, "    %s\n", line)
			}
		}
		if blk.Terminator == nil {
			return "", fmt.Errorf("wasmtext: block %d has no terminator", idx)
		}
		fmt.Fprintf(&b, "    %s\n", emitTerminator(*blk.Terminator))
		b.WriteString("  )\n")
	}

	b.WriteString(")\n")
	return b.String(), nil
}

func emitStatement(st mir.Statement) (string, error) {
	switch st.Kind {
	case mir.StmtNop:
		return "", nil
	case mir.StmtDrop:
		return fmt.Sprintf("(drop %s)", place(st.Place)), nil
	case mir.StmtAssign:
		rv, err := emitRvalue(st.Rvalue)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(local.set %s %s)", place(st.Place), rv), nil
	default:
		return "", fmt.Errorf("wasmtext: unknown statement kind %d", st.Kind)
	}
}

func emitRvalue(rv mir.Rvalue) (string, error) {
	switch rv.Kind {
	case mir.RvUse:
		return operand(rv.Operand), nil
	case mir.RvBinaryOp:
		return fmt.Sprintf("(%s %s %s)", wasmOp(rv.Op), operand(rv.Left), operand(rv.Right)), nil
	case mir.RvUnaryOp:
		return fmt.Sprintf("(%s %s)", wasmUnaryOp(rv.Op), operand(rv.Operand)), nil
	case mir.RvRef:
		return fmt.Sprintf("(ref %s)", place(rv.RefPlace)), nil
	case mir.RvAggregate:
		elems := make([]string, len(rv.Elements))
		for i, e := range rv.Elements {
			elems[i] = operand(e)
		}
		name := rv.AggregateKind
		if name == "" {
			name = "tuple"
		}
		return fmt.Sprintf("(struct.new $%s %s)", name, strings.Join(elems, " ")), nil
	case mir.RvDiscriminant:
		return fmt.Sprintf("(struct.get $discriminant %s)", place(rv.SourcePlace)), nil
	case mir.RvCast:
		return fmt.Sprintf("(%s.convert %s)", wasmType(rv.CastTo), operand(rv.Operand)), nil
	case mir.RvLen:
		return fmt.Sprintf("(array.len %s)", place(rv.SourcePlace)), nil
	default:
		return "", fmt.Errorf("wasmtext: unknown rvalue kind %d", rv.Kind)
	}
}

func emitTerminator(t mir.Terminator) string {
	switch t.Kind {
	case mir.TermGoto:
		return fmt.Sprintf("(br $bb%d)", t.Target)
	case mir.TermSwitchInt:
		cases := make([]string, len(t.Cases))
		for i, c := range t.Cases {
			cases[i] = fmt.Sprintf("(case %d $bb%d)", c.Value, c.Target)
		}
		return fmt.Sprintf("(br_table %s (default $bb%d) %s)", operand(t.Discriminant), t.Otherwise, strings.Join(cases, " "))
	case mir.TermReturn:
		return "(return $l0)"
	case mir.TermCall:
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = operand(a)
		}
		return fmt.Sprintf("(local.set %s (call %s %s)) (br $bb%d)", place(t.ReturnPlace), operand(t.Func), strings.Join(args, " "), t.CallTarget)
	case mir.TermTailCall:
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = operand(a)
		}
		return fmt.Sprintf("(return_call %s %s)", operand(t.Func), strings.Join(args, " "))
	case mir.TermUnreachable:
		return "(unreachable)"
	case mir.TermAssert:
		return fmt.Sprintf("(if (i32.eqz %s) (then (unreachable))) (br $bb%d) ;; %s", operand(t.AssertCond), t.AssertTarget, t.AssertMsg)
	default:
		return fmt.Sprintf(";; unknown terminator %d", t.Kind)
	}
}

func place(p mir.Place) string {
	s := fmt.Sprintf("$l%d", p.Local)
	for _, proj := range p.Projections {
		switch proj.Kind {
		case mir.ProjField:
			s = fmt.Sprintf("(struct.get $%s %s)", proj.Field, s)
		case mir.ProjIndex:
			s = fmt.Sprintf("(array.get %s %s)", s, operand(proj.Index))
		case mir.ProjDeref:
			s = fmt.Sprintf("(deref %s)", s)
		}
	}
	return s
}

func operand(op mir.Operand) string {
	switch op.Kind {
	case mir.OpCopy, mir.OpMove:
		return fmt.Sprintf("(local.get %s)", place(op.Place))
	case mir.OpConstant:
		return constant(op.Constant)
	default:
		return "(unreachable)"
	}
}

func constant(c mir.Constant) string {
	if c.IsUnit {
		return "(nop)"
	}
	switch wasmType(c.Type) {
	case "f32", "f64":
		return fmt.Sprintf("(%s.const %g)", wasmType(c.Type), c.Float)
	case "i32":
		if c.Type != nil && c.Type.String() == "bool" {
			b := 0
			if c.Bool {
				b = 1
			}
			return fmt.Sprintf("(i32.const %d)", b)
		}
		return fmt.Sprintf("(i32.const %d)", c.Int)
	default:
		return fmt.Sprintf("(i64.const %d)", c.Int)
	}
}

func wasmOp(op string) string {
	switch op {
	case "+":
		return "add"
	case "-":
		return "sub"
	case "*":
		return "mul"
	case "/":
		return "div_s"
	case "%":
		return "rem_s"
	case "==":
		return "eq"
	case "!=":
		return "ne"
	case "<":
		return "lt_s"
	case "<=":
		return "le_s"
	case ">":
		return "gt_s"
	case ">=":
		return "ge_s"
	case "&&":
		return "and"
	case "||":
		return "or"
	default:
		return op
	}
}

func wasmUnaryOp(op string) string {
	switch op {
	case "-":
		return "neg"
	case "!":
		return "eqz"
	default:
		return op
	}
}

// wasmType maps the core type system's Type to a WASM value type. Every
// aggregate/indirect shape collapses to i32 (a linear-memory offset),
// matching how a real WASM backend would represent a pointer into linear
// memory once GC-proposal reference types are off the table.
func wasmType(t types.Type) string {
	if t == nil {
		return ""
	}
	switch t.String() {
	case "int", "i64", "u64":
		return "i64"
	case "i32", "u32", "i16", "u16", "i8", "u8", "bool":
		return "i32"
	case "f32":
		return "f32"
	case "f64":
		return "f64"
	case "void":
		return ""
	default:
		return "i32"
	}
}
