// Package jstext renders a mir.Body as plain JavaScript source: a thin
// stand-in for the original implementation's vais-codegen-js crate, which
// targets real ESM output this repository's Non-goals put out of scope.
package jstext

import (
	"fmt"
	"strings"

	"github.com/vaislang/vais/internal/mir"
)

// Target is the codegen.Target implementation for this package.
type Target struct{}

func (Target) Name() string { return "js" }

func (Target) EmitFunction(body *mir.Body) (string, error) {
	var b strings.Builder

	params := make([]string, len(body.ParamTypes))
	for i := range body.ParamTypes {
		params[i] = local(i + 1)
	}
	fmt.Fprintf(&b, "function %s(%s) {\n", jsName(body.Name), strings.Join(params, ", "))
	fmt.Fprintf(&b, "  let %s;\n", local(0))

	for idx, blk := range body.Blocks {
		fmt.Fprintf(&b, "  bb%d: {\n", idx)
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
			return "", fmt.Errorf("jstext: block %d has no terminator", idx)
		}
		fmt.Fprintf(&b, "    %s\n", emitTerminator(*blk.Terminator))
		b.WriteString("  }\n")
	}

	b.WriteString("}\n")
	return b.String(), nil
}

func emitStatement(st mir.Statement) (string, error) {
	switch st.Kind {
	case mir.StmtNop:
		return "", nil
	case mir.StmtDrop:
		return fmt.Sprintf("%s = undefined;", place(st.Place)), nil
	case mir.StmtAssign:
		rv, err := emitRvalue(st.Rvalue)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s = %s;", place(st.Place), rv), nil
	default:
		return "", fmt.Errorf("jstext: unknown statement kind %d", st.Kind)
	}
}

func emitRvalue(rv mir.Rvalue) (string, error) {
	switch rv.Kind {
	case mir.RvUse:
		return operand(rv.Operand), nil
	case mir.RvBinaryOp:
		return fmt.Sprintf("(%s %s %s)", operand(rv.Left), jsOp(rv.Op), operand(rv.Right)), nil
	case mir.RvUnaryOp:
		return fmt.Sprintf("(%s%s)", jsUnaryOp(rv.Op), operand(rv.Operand)), nil
	case mir.RvRef:
		return operand(mir.Copy(rv.RefPlace)), nil
	case mir.RvAggregate:
		elems := make([]string, len(rv.Elements))
		for i, e := range rv.Elements {
			elems[i] = operand(e)
		}
		if rv.AggregateKind == "" {
			return fmt.Sprintf("[%s]", strings.Join(elems, ", ")), nil
		}
		return fmt.Sprintf("{ $tag: %q, $values: [%s] }", rv.AggregateKind, strings.Join(elems, ", ")), nil
	case mir.RvDiscriminant:
		return fmt.Sprintf("%s.$tag", place(rv.SourcePlace)), nil
	case mir.RvCast:
		return operand(rv.Operand), nil
	case mir.RvLen:
		return fmt.Sprintf("%s.length", place(rv.SourcePlace)), nil
	default:
		return "", fmt.Errorf("jstext: unknown rvalue kind %d", rv.Kind)
	}
}

func emitTerminator(t mir.Terminator) string {
	switch t.Kind {
	case mir.TermGoto:
		return fmt.Sprintf("/* goto */ return __dispatch(%d);", t.Target)
	case mir.TermSwitchInt:
		var cases []string
		for _, c := range t.Cases {
			cases = append(cases, fmt.Sprintf("case %d: return __dispatch(%d);", c.Value, c.Target))
		}
		return fmt.Sprintf("switch (%s) { %s default: return __dispatch(%d); }", operand(t.Discriminant), strings.Join(cases, " "), t.Otherwise)
	case mir.TermReturn:
		return fmt.Sprintf("return %s;", local(0))
	case mir.TermCall:
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = operand(a)
		}
		return fmt.Sprintf("%s = %s(%s); return __dispatch(%d);", place(t.ReturnPlace), operand(t.Func), strings.Join(args, ", "), t.CallTarget)
	case mir.TermTailCall:
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = operand(a)
		}
		return fmt.Sprintf("return %s(%s);", operand(t.Func), strings.Join(args, ", "))
	case mir.TermUnreachable:
		return "throw new Error('unreachable');"
	case mir.TermAssert:
		return fmt.Sprintf("if (!%s) throw new Error(%q); return __dispatch(%d);", operand(t.AssertCond), t.AssertMsg, t.AssertTarget)
	default:
		return fmt.Sprintf("// unknown terminator %d", t.Kind)
	}
}

func place(p mir.Place) string {
	s := local(int(p.Local))
	for _, proj := range p.Projections {
		switch proj.Kind {
		case mir.ProjField:
			s += "." + proj.Field
		case mir.ProjIndex:
			s += "[" + operand(proj.Index) + "]"
		case mir.ProjDeref:
			// JS has no pointers; a deref is a no-op on the same binding.
		}
	}
	return s
}

func operand(op mir.Operand) string {
	switch op.Kind {
	case mir.OpCopy, mir.OpMove:
		return place(op.Place)
	case mir.OpConstant:
		return constant(op.Constant)
	default:
		return "undefined"
	}
}

func constant(c mir.Constant) string {
	if c.IsUnit {
		return "undefined"
	}
	if c.Type != nil {
		switch c.Type.String() {
		case "bool":
			return fmt.Sprintf("%t", c.Bool)
		case "string", "bytes":
			return fmt.Sprintf("%q", c.Str)
		case "f32", "f64":
			return fmt.Sprintf("%g", c.Float)
		}
	}
	return fmt.Sprintf("%d", c.Int)
}

func jsOp(op string) string {
	switch op {
	case "==":
		return "==="
	case "!=":
		return "!=="
	default:
		return op
	}
}

func jsUnaryOp(op string) string {
	if op == "!" {
		return "!"
	}
	return op
}

func local(idx int) string { return fmt.Sprintf("l%d", idx) }

// jsName sanitizes a MIR function name into a valid JS identifier; MIR
// names are already identifier-shaped in practice, but a defensive
// replace keeps this stand-in from emitting unparseable output for any
// surface-syntax name this core's grammar allows that JS's doesn't.
func jsName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
