package lower

import (
	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/types"
)

// resolveType converts a parsed type annotation to the type system's
// representation without consulting struct/enum declarations — by the time
// lowering runs the program already passed internal/checker, so this only
// needs to be accurate enough to label a mir.LocalDecl, not to validate
// anything. A name lowering can't resolve (a user struct/enum/alias) becomes
// a nominal types.Named placeholder, matching how internal/checker falls
// back for an otherwise-unresolvable name.
func resolveType(t ast.Type) types.Type {
	switch n := t.(type) {
	case nil:
		return types.AnyType
	case *ast.InferType:
		return types.AnyType
	case *ast.PrimitiveType:
		return types.Primitive(n.Name)
	case *ast.ArrayType:
		return types.Array(resolveType(n.Elem))
	case *ast.OptionalType:
		return types.Optional(resolveType(n.Inner))
	case *ast.TupleType:
		elems := make([]types.Type, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = resolveType(e)
		}
		return types.Tuple(elems...)
	case *ast.FuncType:
		params := make([]types.Type, len(n.Params))
		for i, p := range n.Params {
			params[i] = resolveType(p)
		}
		return types.Func(params, resolveType(n.Return))
	case *ast.RecordType:
		fields := make([]types.Field, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = types.Field{Name: f.Name, Type: resolveType(f.Type)}
		}
		return types.Struct("", fields)
	case *ast.UnionType:
		return types.AnyType
	case *ast.NamedType:
		switch n.Name {
		case "Option":
			if len(n.Args) == 1 {
				return types.Optional(resolveType(n.Args[0]))
			}
		case "Result":
			if len(n.Args) >= 1 {
				return types.Result(resolveType(n.Args[0]))
			}
		case "Future":
			if len(n.Args) == 1 {
				return types.Future(resolveType(n.Args[0]))
			}
		case "Channel":
			if len(n.Args) == 1 {
				return types.Channel(resolveType(n.Args[0]))
			}
		case "Set":
			if len(n.Args) == 1 {
				return types.Set(resolveType(n.Args[0]))
			}
		case "Map":
			if len(n.Args) == 2 {
				return types.MapT(resolveType(n.Args[0]), resolveType(n.Args[1]))
			}
		}
		args := make([]types.Type, len(n.Args))
		for i, a := range n.Args {
			args[i] = resolveType(a)
		}
		return types.Named(n.Name, args...)
	default:
		return types.AnyType
	}
}

// isComparisonOp reports whether op always produces a bool.
func isComparisonOp(op string) bool {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=", "&&", "||":
		return true
	}
	return false
}
