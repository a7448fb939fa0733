package macro

import (
	"strings"

	"github.com/vaislang/vais/internal/ast"
)

// deriveAttrPrefix is the attribute name parseAttributes records a
// `@derive(...)` annotation under.
const deriveAttrPrefix = "derive("

// deriveTraits extracts the trait name list from a `derive(A,B)` attribute
// string, or (nil, false) if attr isn't a derive attribute.
func deriveTraits(attr string) ([]string, bool) {
	if !strings.HasPrefix(attr, deriveAttrPrefix) || !strings.HasSuffix(attr, ")") {
		return nil, false
	}
	inner := attr[len(deriveAttrPrefix) : len(attr)-1]
	if inner == "" {
		return nil, true
	}
	parts := strings.Split(inner, ",")
	return parts, true
}

// ProcessDerives scans items for structs/enums carrying a derive attribute
// and appends one synthesized Impl per named trait to the returned slice;
// items itself is returned unchanged (derive adds items, it never rewrites
// the type declaration it annotates).
func ProcessDerives(items []ast.Item) []ast.Item {
	var synthesized []ast.Item
	for _, item := range items {
		switch it := item.(type) {
		case *ast.Struct:
			synthesized = append(synthesized, deriveStructImpls(it)...)
		case *ast.Enum:
			synthesized = append(synthesized, deriveEnumImpls(it)...)
		}
	}
	return append(items, synthesized...)
}

func deriveStructImpls(s *ast.Struct) []ast.Item {
	var out []ast.Item
	for _, attr := range s.Attributes {
		traits, ok := deriveTraits(attr)
		if !ok {
			continue
		}
		target := &ast.NamedType{Base: ast.Base{Sp: s.Span()}, Name: s.Name}
		for _, trait := range traits {
			trait = strings.TrimSpace(trait)
			switch trait {
			case "Eq":
				out = append(out, &ast.Impl{Base: ast.Base{Sp: s.Span()}, TraitName: trait, TargetType: target, Methods: []*ast.Function{structEqMethod(s)}})
			case "Clone":
				out = append(out, &ast.Impl{Base: ast.Base{Sp: s.Span()}, TraitName: trait, TargetType: target, Methods: []*ast.Function{structCloneMethod(s)}})
			default:
				// A conformance marker with no synthesized methods. It is
				// registered as written; nothing checks it against the
				// trait's required methods.
				out = append(out, &ast.Impl{Base: ast.Base{Sp: s.Span()}, TraitName: trait, TargetType: target})
			}
		}
	}
	return out
}

func deriveEnumImpls(e *ast.Enum) []ast.Item {
	var out []ast.Item
	for _, attr := range e.Attributes {
		traits, ok := deriveTraits(attr)
		if !ok {
			continue
		}
		target := &ast.NamedType{Base: ast.Base{Sp: e.Span()}, Name: e.Name}
		for _, trait := range traits {
			trait = strings.TrimSpace(trait)
			out = append(out, &ast.Impl{Base: ast.Base{Sp: e.Span()}, TraitName: trait, TargetType: target})
		}
	}
	return out
}

// structEqMethod synthesizes `F eq(&self, other: &Self) -> bool = f1 == other.f1 && ...`,
// folding to `true` for a field-less struct.
func structEqMethod(s *ast.Struct) *ast.Function {
	var body ast.Expr = &ast.BoolLit{Base: ast.Base{Sp: s.Span()}, Value: true}
	for i, f := range s.Fields {
		cmp := &ast.Binary{
			Base: ast.Base{Sp: s.Span()}, Op: "==",
			Left:  &ast.Ident{Base: ast.Base{Sp: s.Span()}, Name: f.Name},
			Right: &ast.FieldAccess{Base: ast.Base{Sp: s.Span()}, Target: &ast.Ident{Base: ast.Base{Sp: s.Span()}, Name: "other"}, Field: f.Name},
		}
		if i == 0 {
			body = cmp
		} else {
			body = &ast.Binary{Base: ast.Base{Sp: s.Span()}, Op: "&&", Left: body, Right: cmp}
		}
	}
	selfType := &ast.NamedType{Base: ast.Base{Sp: s.Span()}, Name: "Self"}
	params := []ast.Param{
		{Name: "self", Ownership: ast.OwnByRef, Type: selfType},
		{Name: "other", Ownership: ast.OwnByRef, Type: selfType},
	}
	return &ast.Function{
		Base: ast.Base{Sp: s.Span()}, Name: "eq", Params: params,
		ReturnType: &ast.PrimitiveType{Base: ast.Base{Sp: s.Span()}, Name: "bool"},
		Body:       ast.FuncBody{Expr: body}, Visibility: ast.VisPublic,
	}
}

// structCloneMethod synthesizes `F clone(&self) -> Self = Self{f1: self.f1, ...}`.
func structCloneMethod(s *ast.Struct) *ast.Function {
	fields := make([]ast.StructFieldInit, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = ast.StructFieldInit{
			Name:  f.Name,
			Value: &ast.FieldAccess{Base: ast.Base{Sp: s.Span()}, Target: &ast.Ident{Base: ast.Base{Sp: s.Span()}, Name: "self"}, Field: f.Name},
		}
	}
	body := &ast.StructLit{Base: ast.Base{Sp: s.Span()}, TypeName: s.Name, Fields: fields}
	selfType := &ast.NamedType{Base: ast.Base{Sp: s.Span()}, Name: "Self"}
	params := []ast.Param{{Name: "self", Ownership: ast.OwnByRef, Type: selfType}}
	return &ast.Function{
		Base: ast.Base{Sp: s.Span()}, Name: "clone", Params: params,
		ReturnType: selfType, Body: ast.FuncBody{Expr: body}, Visibility: ast.VisPublic,
	}
}
