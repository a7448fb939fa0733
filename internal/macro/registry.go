// Package macro implements the expansion pass that runs between parsing
// and type checking: it collects macro_rules-style definitions into a
// registry, rewrites every invocation site by matching its argument
// tokens against the registry's rules and splicing the produced
// expression in place, and synthesizes derive-attribute implementations
// for structs and enums.
package macro

import "github.com/vaislang/vais/internal/ast"

// Registry maps a macro's name to its collected definition. Built once per
// module before any invocation is rewritten, so forward references (a
// macro invoked before its `macro` block appears later in the same file)
// resolve the same as backward ones.
type Registry struct {
	defs map[string]*ast.Macro
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*ast.Macro)}
}

// Lookup returns the macro definition for name, or (nil, false).
func (r *Registry) Lookup(name string) (*ast.Macro, bool) {
	m, ok := r.defs[name]
	return m, ok
}

// Collect walks items, records every *ast.Macro into the registry, and
// returns the remaining items with the macro definitions removed — a
// macro block has no representation past this pass, the way an import
// has none past the loader.
func Collect(items []ast.Item) (*Registry, []ast.Item) {
	reg := NewRegistry()
	kept := make([]ast.Item, 0, len(items))
	for _, item := range items {
		if m, ok := item.(*ast.Macro); ok {
			reg.defs[m.Name] = m
			continue
		}
		kept = append(kept, item)
	}
	return reg, kept
}
