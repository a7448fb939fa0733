package ast

import (
	"fmt"
	"strings"
)

// Print renders a Module back to source text in the terse surface syntax.
// Functions, structs, enums and unions are rendered as source, and for
// those parsing Print(parse(src)) gives an AST structurally equal (modulo
// spans) to the first. Traits, impls, extern blocks, macros, units and
// use declarations are rendered as one-line summaries, and expression,
// statement, pattern or type kinds without a case below as a comment
// naming the Go type; that output does not parse back to the same AST.
func Print(m *Module) string {
	var b strings.Builder
	for i, it := range m.Items {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(PrintItem(it))
	}
	return b.String()
}

func PrintItem(it Item) string {
	switch n := it.(type) {
	case *Function:
		return printFunc(n)
	case *Struct:
		fields := make([]string, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = fmt.Sprintf("%s: %s", f.Name, PrintType(f.Type))
		}
		return fmt.Sprintf("S %s { %s }", n.Name, strings.Join(fields, ", "))
	case *Enum:
		return printEnumLike("E", n.Name, n.Variants)
	case *Union:
		return printEnumLike("U", n.Name, n.Variants)
	case *Trait:
		return fmt.Sprintf("T %s { %d methods }", n.Name, len(n.Methods))
	case *Impl:
		if n.TraitName != "" {
			neg := ""
			if n.IsNegative {
				neg = "!"
			}
			return fmt.Sprintf("I %s%s for %s { %d methods }", neg, n.TraitName, PrintType(n.TargetType), len(n.Methods))
		}
		return fmt.Sprintf("I %s { %d methods }", PrintType(n.TargetType), len(n.Methods))
	case *Const:
		return fmt.Sprintf("const %s: %s = %s", n.Name, PrintType(n.Type), PrintExpr(n.Value))
	case *Global:
		return fmt.Sprintf("global %s: %s = %s", n.Name, PrintType(n.Type), PrintExpr(n.Value))
	case *TypeAlias:
		return fmt.Sprintf("type %s = %s", n.Name, PrintType(n.Aliased))
	case *Use:
		if len(n.Symbols) > 0 {
			return fmt.Sprintf("use %s (%s)", n.Path, strings.Join(n.Symbols, ", "))
		}
		return fmt.Sprintf("use %s", n.Path)
	case *ExternBlock:
		return fmt.Sprintf("extern %q { %d fns }", n.ABI, len(n.Funcs))
	case *Macro:
		return fmt.Sprintf("macro %s { %d rules }", n.Name, len(n.Rules))
	case *UnitDecl:
		return fmt.Sprintf("UNIT %s %s { ... } END", n.Name, n.Version)
	case *ErrorItem:
		return fmt.Sprintf("/* error: %s */", n.Message)
	default:
		return fmt.Sprintf("/* unknown item %T */", it)
	}
}

func printEnumLike(kw, name string, variants []EnumVariant) string {
	parts := make([]string, len(variants))
	for i, v := range variants {
		if len(v.Fields) == 0 {
			parts[i] = v.Name
			continue
		}
		fields := make([]string, len(v.Fields))
		for j, f := range v.Fields {
			fields[j] = PrintType(f.Type)
		}
		parts[i] = fmt.Sprintf("%s(%s)", v.Name, strings.Join(fields, ", "))
	}
	return fmt.Sprintf("%s %s { %s }", kw, name, strings.Join(parts, ", "))
}

func printFunc(f *Function) string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		pfx := ""
		switch p.Ownership {
		case OwnByRef:
			pfx = "&"
		case OwnByMutRef:
			pfx = "&mut "
		}
		if p.Type != nil {
			params[i] = fmt.Sprintf("%s%s: %s", pfx, p.Name, PrintType(p.Type))
		} else {
			params[i] = fmt.Sprintf("%s%s", pfx, p.Name)
		}
	}
	ret := ""
	if f.ReturnType != nil {
		ret = " -> " + PrintType(f.ReturnType)
	}
	body := ""
	if f.Body.Expr != nil {
		body = "= " + PrintExpr(f.Body.Expr)
	} else if f.Body.Block != nil {
		body = PrintExpr(f.Body.Block)
	}
	return fmt.Sprintf("F %s(%s)%s %s", f.Name, strings.Join(params, ", "), ret, body)
}

func PrintExpr(e Expr) string {
	switch n := e.(type) {
	case *IntLit:
		return n.Text
	case *FloatLit:
		return n.Text
	case *StringLit:
		return fmt.Sprintf("%q", n.Value)
	case *BoolLit:
		return fmt.Sprintf("%t", n.Value)
	case *UnitLit:
		return "()"
	case *Ident:
		return n.Name
	case *Binary:
		return fmt.Sprintf("(%s %s %s)", PrintExpr(n.Left), n.Op, PrintExpr(n.Right))
	case *Unary:
		return fmt.Sprintf("(%s%s)", n.Op, PrintExpr(n.Expr))
	case *Ternary:
		return fmt.Sprintf("(%s ? %s : %s)", PrintExpr(n.Cond), PrintExpr(n.Then), PrintExpr(n.Else))
	case *If:
		s := fmt.Sprintf("I (%s) %s", PrintExpr(n.Cond), PrintExpr(n.Then))
		if n.Else != nil {
			s += " else " + PrintExpr(n.Else)
		}
		return s
	case *Match:
		arms := make([]string, len(n.Arms))
		for i, a := range n.Arms {
			arms[i] = fmt.Sprintf("%s => %s", PrintPattern(a.Pattern), PrintExpr(a.Body))
		}
		return fmt.Sprintf("M %s { %s }", PrintExpr(n.Scrutinee), strings.Join(arms, ", "))
	case *Block:
		parts := make([]string, 0, len(n.Stmts)+1)
		for _, s := range n.Stmts {
			parts = append(parts, printStmt(s))
		}
		if n.Tail != nil {
			parts = append(parts, PrintExpr(n.Tail))
		}
		return "{ " + strings.Join(parts, "; ") + " }"
	case *Call:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = PrintExpr(a)
		}
		return fmt.Sprintf("%s(%s)", PrintExpr(n.Callee), strings.Join(args, ", "))
	case *FieldAccess:
		return fmt.Sprintf("%s.%s", PrintExpr(n.Target), n.Field)
	case *IndexAccess:
		return fmt.Sprintf("%s[%s]", PrintExpr(n.Target), PrintExpr(n.Index))
	case *ArrayLit:
		elems := make([]string, len(n.Elements))
		for i, el := range n.Elements {
			elems[i] = PrintExpr(el)
		}
		return "[" + strings.Join(elems, ", ") + "]"
	case *MacroInvocation:
		toks := make([]string, len(n.Args))
		for i, t := range n.Args {
			toks[i] = t.Text
		}
		return fmt.Sprintf("%s!(%s)", n.Name, strings.Join(toks, " "))
	case *ErrorExpr:
		return fmt.Sprintf("/* error: %s */", n.Message)
	default:
		return fmt.Sprintf("/* %T */", e)
	}
}

func printStmt(s Stmt) string {
	switch n := s.(type) {
	case *LetStmt:
		if n.Type != nil {
			return fmt.Sprintf("V %s: %s = %s", n.Name, PrintType(n.Type), PrintExpr(n.Value))
		}
		return fmt.Sprintf("V %s = %s", n.Name, PrintExpr(n.Value))
	case *ExprStmt:
		return PrintExpr(n.Expr)
	case *Return:
		if n.Value != nil {
			return "R " + PrintExpr(n.Value)
		}
		return "R"
	case *Break:
		if n.Value != nil {
			return "B " + PrintExpr(n.Value)
		}
		return "B"
	case *Assign:
		return fmt.Sprintf("%s = %s", PrintExpr(n.Target), PrintExpr(n.Value))
	case *Assert:
		return fmt.Sprintf("assert %s", PrintExpr(n.Cond))
	default:
		return fmt.Sprintf("/* %T */", s)
	}
}

func PrintPattern(p Pattern) string {
	switch n := p.(type) {
	case *WildcardPattern:
		return "_"
	case *IdentPattern:
		return n.Name
	case *Ident:
		return n.Name
	case *LiteralPattern:
		return PrintExpr(n.Value)
	case *TuplePattern:
		parts := make([]string, len(n.Elements))
		for i, e := range n.Elements {
			parts[i] = PrintPattern(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *VariantPattern:
		if len(n.Subpatterns) == 0 {
			return n.Tag
		}
		parts := make([]string, len(n.Subpatterns))
		for i, e := range n.Subpatterns {
			parts[i] = PrintPattern(e)
		}
		return fmt.Sprintf("%s(%s)", n.Tag, strings.Join(parts, ", "))
	case *OrPattern:
		parts := make([]string, len(n.Alternatives))
		for i, a := range n.Alternatives {
			parts[i] = PrintPattern(a)
		}
		return strings.Join(parts, " | ")
	default:
		return fmt.Sprintf("/* %T */", p)
	}
}

func PrintType(t Type) string {
	if t == nil {
		return "_"
	}
	switch n := t.(type) {
	case *PrimitiveType:
		return n.Name
	case *ArrayType:
		return "[" + PrintType(n.Elem) + "]"
	case *OptionalType:
		return PrintType(n.Inner) + "?"
	case *NamedType:
		if len(n.Args) == 0 {
			return n.Name
		}
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = PrintType(a)
		}
		return fmt.Sprintf("%s<%s>", n.Name, strings.Join(args, ", "))
	case *TupleType:
		parts := make([]string, len(n.Elements))
		for i, e := range n.Elements {
			parts[i] = PrintType(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *FuncType:
		params := make([]string, len(n.Params))
		for i, p := range n.Params {
			params[i] = PrintType(p)
		}
		return fmt.Sprintf("(%s) -> %s", strings.Join(params, ", "), PrintType(n.Return))
	case *RecordType:
		fields := make([]string, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = fmt.Sprintf("%s: %s", f.Name, PrintType(f.Type))
		}
		return "{ " + strings.Join(fields, ", ") + " }"
	case *InferType:
		return "_"
	default:
		return fmt.Sprintf("/* %T */", t)
	}
}
