package checker

import (
	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/types"
)

// convertType turns a parsed type annotation into the type system's
// representation, resolving named declarations against c.defs and
// generic/Self references against env's type-parameter scope. A nil
// annotation or the `_` placeholder both yield a fresh inference variable.
func (c *Checker) convertType(t ast.Type, env *types.TypeEnv) types.Type {
	switch n := t.(type) {
	case nil:
		return env.Fresh()
	case *ast.InferType:
		return env.Fresh()
	case *ast.PrimitiveType:
		return types.Primitive(n.Name)
	case *ast.ArrayType:
		return types.Array(c.convertType(n.Elem, env))
	case *ast.OptionalType:
		return types.Optional(c.convertType(n.Inner, env))
	case *ast.TupleType:
		elems := make([]types.Type, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = c.convertType(e, env)
		}
		return types.Tuple(elems...)
	case *ast.FuncType:
		params := make([]types.Type, len(n.Params))
		for i, p := range n.Params {
			params[i] = c.convertType(p, env)
		}
		return types.Func(params, c.convertType(n.Return, env))
	case *ast.RecordType:
		fields := make([]types.Field, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = types.Field{Name: f.Name, Type: c.convertType(f.Type, env)}
		}
		return types.Struct("", fields)
	case *ast.UnionType:
		// A union type annotation is modeled as Any at the type
		// level — member discrimination is done by the match
		// arm's VariantPattern tags, not by the static type — since the
		// type system has no tagged-union variant carrying multiple
		// unrelated payload shapes under one Type value.
		return types.AnyType
	case *ast.NamedType:
		return c.convertNamed(n, env)
	default:
		return env.Fresh()
	}
}

func (c *Checker) convertNamed(n *ast.NamedType, env *types.TypeEnv) types.Type {
	if tv, ok := env.LookupTypeParam(n.Name); ok {
		return tv
	}
	switch n.Name {
	case "Option":
		if len(n.Args) == 1 {
			return types.Optional(c.convertType(n.Args[0], env))
		}
	case "Result":
		if len(n.Args) >= 1 {
			return types.Result(c.convertType(n.Args[0], env))
		}
	case "Future":
		if len(n.Args) == 1 {
			return types.Future(c.convertType(n.Args[0], env))
		}
	case "Channel":
		if len(n.Args) == 1 {
			return types.Channel(c.convertType(n.Args[0], env))
		}
	case "Set":
		if len(n.Args) == 1 {
			return types.Set(c.convertType(n.Args[0], env))
		}
	case "Map":
		if len(n.Args) == 2 {
			return types.MapT(c.convertType(n.Args[0], env), c.convertType(n.Args[1], env))
		}
	}

	if sd, ok := c.defs.structs[n.Name]; ok {
		return c.structType(sd, n.Args, env)
	}
	if _, ok := c.defs.enums[n.Name]; ok {
		return types.Named(n.Name, c.convertArgs(n.Args, env)...)
	}
	if _, ok := c.defs.unions[n.Name]; ok {
		return types.Named(n.Name, c.convertArgs(n.Args, env)...)
	}
	if al, ok := c.defs.aliases[n.Name]; ok {
		child := env
		if len(al.Generics) > 0 {
			child = env.Child()
			for i, g := range al.Generics {
				if i < len(n.Args) {
					child.BindTypeParam(g.Name, c.convertType(n.Args[i], env))
				} else {
					child.BindTypeParam(g.Name, child.Fresh())
				}
			}
		}
		return c.convertType(al.Aliased, child)
	}
	// An unknown/opaque name (e.g. "Self" outside any impl, or a type
	// this module doesn't declare) is carried through as a nominal type
	// so unification still reports a precise mismatch rather than
	// panicking on a nil Type.
	return types.Named(n.Name, c.convertArgs(n.Args, env)...)
}

func (c *Checker) convertArgs(args []ast.Type, env *types.TypeEnv) []types.Type {
	out := make([]types.Type, len(args))
	for i, a := range args {
		out[i] = c.convertType(a, env)
	}
	return out
}

// structType instantiates sd's field types against provided generic
// arguments (or fresh variables for any omitted), matching positionally.
func (c *Checker) structType(sd *ast.Struct, args []ast.Type, env *types.TypeEnv) types.Type {
	child := env
	if len(sd.Generics) > 0 {
		child = env.Child()
		for i, g := range sd.Generics {
			if i < len(args) {
				child.BindTypeParam(g.Name, c.convertType(args[i], env))
			} else {
				child.BindTypeParam(g.Name, child.Fresh())
			}
		}
	}
	fields := make([]types.Field, len(sd.Fields))
	for i, f := range sd.Fields {
		fields[i] = types.Field{Name: f.Name, Type: c.convertType(f.Type, child)}
	}
	return types.Struct(sd.Name, fields)
}
