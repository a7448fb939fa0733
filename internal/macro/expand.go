package macro

import (
	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/diag"
	"github.com/vaislang/vais/internal/parser"
)

// DefaultMaxDepth bounds macro-of-macro recursion: a template that expands
// to another invocation is re-expanded up to this many times before the
// pass gives up and reports CodeDepthExceeded rather than looping forever
// on a self-referential rule set.
const DefaultMaxDepth = 32

// Expander rewrites every ast.MacroInvocation reachable from a module's
// items into the expression its matching rule produces.
type Expander struct {
	reg      *Registry
	file     string
	maxDepth int
}

// NewExpander builds an Expander over reg for diagnostics anchored to file.
func NewExpander(reg *Registry, file string) *Expander {
	return &Expander{reg: reg, file: file, maxDepth: DefaultMaxDepth}
}

// ExpandItems rewrites macro invocations in place across items, reporting
// unknown-macro and no-matching-rule failures into bag.
func (ex *Expander) ExpandItems(items []ast.Item, bag *diag.Bag) {
	for _, item := range items {
		ex.expandItem(item, bag)
	}
}

func (ex *Expander) expandItem(item ast.Item, bag *diag.Bag) {
	switch it := item.(type) {
	case *ast.Function:
		ex.expandFuncBody(&it.Body, bag)
	case *ast.Const:
		it.Value = ex.rewriteExpr(it.Value, bag)
	case *ast.Global:
		it.Value = ex.rewriteExpr(it.Value, bag)
	case *ast.Impl:
		for _, m := range it.Methods {
			ex.expandFuncBody(&m.Body, bag)
		}
	case *ast.Trait:
		for i := range it.Methods {
			if it.Methods[i].Default != nil {
				ex.expandFuncBody(it.Methods[i].Default, bag)
			}
		}
	case *ast.UnitDecl:
		ex.expandUnit(it, bag)
	}
}

func (ex *Expander) expandFuncBody(body *ast.FuncBody, bag *diag.Bag) {
	if body.Expr != nil {
		body.Expr = ex.rewriteExpr(body.Expr, bag)
	}
	if body.Block != nil {
		ex.rewriteBlock(body.Block, bag)
	}
}

func (ex *Expander) expandUnit(u *ast.UnitDecl, bag *diag.Bag) {
	if u.Meta != nil {
		for i := range u.Meta.Entries {
			u.Meta.Entries[i].Value = ex.rewriteExpr(u.Meta.Entries[i].Value, bag)
		}
	}
	if u.Constraint != nil {
		for i := range u.Constraint.Entries {
			u.Constraint.Entries[i].Expr = ex.rewriteExpr(u.Constraint.Entries[i].Expr, bag)
		}
	}
	if u.Flow != nil {
		for i := range u.Flow.Steps {
			args := u.Flow.Steps[i].Args
			for j := range args {
				args[j] = ex.rewriteExpr(args[j], bag)
			}
		}
	}
	if u.Execution != nil && u.Execution.Body != nil {
		ex.rewriteBlock(u.Execution.Body, bag)
	}
	if u.Verify != nil {
		for i := range u.Verify.Entries {
			u.Verify.Entries[i].Expr = ex.rewriteExpr(u.Verify.Entries[i].Expr, bag)
		}
	}
}

func (ex *Expander) rewriteBlock(b *ast.Block, bag *diag.Bag) {
	if b == nil {
		return
	}
	for _, stmt := range b.Stmts {
		ex.rewriteStmt(stmt, bag)
	}
	if b.Tail != nil {
		b.Tail = ex.rewriteExpr(b.Tail, bag)
	}
}

func (ex *Expander) rewriteStmt(s ast.Stmt, bag *diag.Bag) {
	switch st := s.(type) {
	case *ast.LetStmt:
		st.Value = ex.rewriteExpr(st.Value, bag)
	case *ast.ExprStmt:
		st.Expr = ex.rewriteExpr(st.Expr, bag)
	default:
		// Assign/Break/Return/Assert double as both Expr and Stmt; route
		// them through the expression rewriter without needing their own
		// case here.
		if e, ok := s.(ast.Expr); ok {
			ex.rewriteExpr(e, bag)
		}
	}
}

// rewriteExpr rewrites e's children in place (post-order) and then, if e
// itself is a macro invocation, replaces it with the expansion — repeating
// while the result is itself an invocation, up to maxDepth.
func (ex *Expander) rewriteExpr(e ast.Expr, bag *diag.Bag) ast.Expr {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *ast.Binary:
		n.Left = ex.rewriteExpr(n.Left, bag)
		n.Right = ex.rewriteExpr(n.Right, bag)
	case *ast.Unary:
		n.Expr = ex.rewriteExpr(n.Expr, bag)
	case *ast.Ternary:
		n.Cond = ex.rewriteExpr(n.Cond, bag)
		n.Then = ex.rewriteExpr(n.Then, bag)
		n.Else = ex.rewriteExpr(n.Else, bag)
	case *ast.If:
		n.Cond = ex.rewriteExpr(n.Cond, bag)
		ex.rewriteBlock(n.Then, bag)
		if n.Else != nil {
			n.Else = ex.rewriteExpr(n.Else, bag)
		}
	case *ast.Match:
		n.Scrutinee = ex.rewriteExpr(n.Scrutinee, bag)
		for i := range n.Arms {
			ex.rewritePattern(n.Arms[i].Pattern, bag)
			if n.Arms[i].Guard != nil {
				n.Arms[i].Guard = ex.rewriteExpr(n.Arms[i].Guard, bag)
			}
			n.Arms[i].Body = ex.rewriteExpr(n.Arms[i].Body, bag)
		}
	case *ast.ForLoop:
		n.Iterable = ex.rewriteExpr(n.Iterable, bag)
		ex.rewriteBlock(n.Body, bag)
	case *ast.InfiniteLoop:
		ex.rewriteBlock(n.Body, bag)
	case *ast.WhileLoop:
		n.Cond = ex.rewriteExpr(n.Cond, bag)
		ex.rewriteBlock(n.Body, bag)
	case *ast.Break:
		if n.Value != nil {
			n.Value = ex.rewriteExpr(n.Value, bag)
		}
	case *ast.Return:
		if n.Value != nil {
			n.Value = ex.rewriteExpr(n.Value, bag)
		}
	case *ast.Block:
		ex.rewriteBlock(n, bag)
	case *ast.Call:
		n.Callee = ex.rewriteExpr(n.Callee, bag)
		for i := range n.Args {
			n.Args[i] = ex.rewriteExpr(n.Args[i], bag)
		}
	case *ast.MethodCall:
		n.Receiver = ex.rewriteExpr(n.Receiver, bag)
		for i := range n.Args {
			n.Args[i] = ex.rewriteExpr(n.Args[i], bag)
		}
	case *ast.StaticCall:
		for i := range n.Args {
			n.Args[i] = ex.rewriteExpr(n.Args[i], bag)
		}
	case *ast.FieldAccess:
		n.Target = ex.rewriteExpr(n.Target, bag)
	case *ast.IndexAccess:
		n.Target = ex.rewriteExpr(n.Target, bag)
		n.Index = ex.rewriteExpr(n.Index, bag)
	case *ast.ArrayLit:
		for i := range n.Elements {
			n.Elements[i] = ex.rewriteExpr(n.Elements[i], bag)
		}
	case *ast.TupleLit:
		for i := range n.Elements {
			n.Elements[i] = ex.rewriteExpr(n.Elements[i], bag)
		}
	case *ast.MapLit:
		for i := range n.Entries {
			n.Entries[i].Key = ex.rewriteExpr(n.Entries[i].Key, bag)
			n.Entries[i].Value = ex.rewriteExpr(n.Entries[i].Value, bag)
		}
	case *ast.StructLit:
		for i := range n.Fields {
			n.Fields[i].Value = ex.rewriteExpr(n.Fields[i].Value, bag)
		}
	case *ast.RangeLit:
		n.Start = ex.rewriteExpr(n.Start, bag)
		n.End = ex.rewriteExpr(n.End, bag)
	case *ast.Lambda:
		n.Body = ex.rewriteExpr(n.Body, bag)
	case *ast.Await:
		n.Expr = ex.rewriteExpr(n.Expr, bag)
	case *ast.Spawn:
		n.Expr = ex.rewriteExpr(n.Expr, bag)
	case *ast.Try:
		n.Expr = ex.rewriteExpr(n.Expr, bag)
	case *ast.Unwrap:
		n.Expr = ex.rewriteExpr(n.Expr, bag)
	case *ast.Reference:
		n.Expr = ex.rewriteExpr(n.Expr, bag)
	case *ast.Dereference:
		n.Expr = ex.rewriteExpr(n.Expr, bag)
	case *ast.Spread:
		n.Expr = ex.rewriteExpr(n.Expr, bag)
	case *ast.Cast:
		n.Expr = ex.rewriteExpr(n.Expr, bag)
	case *ast.Assign:
		n.Target = ex.rewriteExpr(n.Target, bag)
		n.Value = ex.rewriteExpr(n.Value, bag)
	case *ast.Yield:
		n.Expr = ex.rewriteExpr(n.Expr, bag)
	case *ast.Lazy:
		n.Expr = ex.rewriteExpr(n.Expr, bag)
	case *ast.Force:
		n.Expr = ex.rewriteExpr(n.Expr, bag)
	case *ast.Assert:
		n.Cond = ex.rewriteExpr(n.Cond, bag)
		if n.Message != nil {
			n.Message = ex.rewriteExpr(n.Message, bag)
		}
	case *ast.CompileTime:
		n.Expr = ex.rewriteExpr(n.Expr, bag)
	case *ast.Assume:
		n.Cond = ex.rewriteExpr(n.Cond, bag)
	case *ast.Old:
		n.Expr = ex.rewriteExpr(n.Expr, bag)
	case *ast.MacroInvocation:
		return ex.expandInvocation(n, bag, 0)
	}
	return e
}

func (ex *Expander) rewritePattern(p ast.Pattern, bag *diag.Bag) {
	switch n := p.(type) {
	case *ast.OrPattern:
		for _, alt := range n.Alternatives {
			ex.rewritePattern(alt, bag)
		}
	case *ast.RangePattern:
		n.Start = ex.rewriteExpr(n.Start, bag)
		n.End = ex.rewriteExpr(n.End, bag)
	case *ast.LiteralPattern:
		n.Value = ex.rewriteExpr(n.Value, bag)
	case *ast.AliasPattern:
		ex.rewritePattern(n.Inner, bag)
	case *ast.TuplePattern:
		for _, el := range n.Elements {
			ex.rewritePattern(el, bag)
		}
	case *ast.StructPattern:
		for i := range n.Fields {
			ex.rewritePattern(n.Fields[i].Pattern, bag)
		}
	case *ast.VariantPattern:
		for _, sub := range n.Subpatterns {
			ex.rewritePattern(sub, bag)
		}
	}
}

// expandInvocation matches inv against its macro's rules, substitutes the
// winning rule's template, and reparses the result as an expression. The
// result is itself rewritten (its children may hold further invocations)
// and, if it is again a bare invocation, re-expanded — bounded by depth.
func (ex *Expander) expandInvocation(inv *ast.MacroInvocation, bag *diag.Bag, depth int) ast.Expr {
	if depth >= ex.maxDepth {
		bag.Add(diag.Diagnostic{
			Code: diag.CodeDepthExceeded, Phase: diag.PhaseMacro, Severity: diag.SeverityError,
			Message: "macro expansion exceeded the recursion depth limit for \"" + inv.Name + "\"",
			Span:    inv.Span(),
		})
		return inv
	}

	def, ok := ex.reg.Lookup(inv.Name)
	if !ok {
		bag.Add(diag.Diagnostic{
			Code: diag.CodeUnknownMacro, Phase: diag.PhaseMacro, Severity: diag.SeverityError,
			Message: "no macro named \"" + inv.Name + "\" is defined",
			Span:    inv.Span(),
		})
		return inv
	}

	for _, rule := range def.Rules {
		b, ok := matchRule(rule.Pattern, inv.Args)
		if !ok {
			continue
		}
		expanded := substitute(rule.Template, b)
		result, parseBag := parser.ParseExprFromTokens(expanded, ex.file)
		bag.Merge(parseBag)
		result = ex.rewriteExpr(result, bag)
		if next, ok := result.(*ast.MacroInvocation); ok {
			return ex.expandInvocation(next, bag, depth+1)
		}
		return result
	}

	bag.Add(diag.Diagnostic{
		Code: diag.CodeNoMatchingRule, Phase: diag.PhaseMacro, Severity: diag.SeverityError,
		Message: "no rule of macro \"" + inv.Name + "\" matches this invocation's arguments",
		Span:    inv.Span(),
	})
	return inv
}
