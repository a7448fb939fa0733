package macro

import (
	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/diag"
)

// Run performs the full macro pass over mod in place: collect definitions,
// expand every invocation, then synthesize derive-attribute impls. It
// returns the diagnostics accumulated while expanding (unknown macro names,
// non-matching rules, depth overruns); derive processing itself cannot
// fail, since an unrecognized trait name just yields an empty conformance
// marker for the type checker to judge.
func Run(mod *ast.Module, file string) *diag.Bag {
	bag := diag.NewBag()
	reg, items := Collect(mod.Items)

	expander := NewExpander(reg, file)
	expander.ExpandItems(items, bag)

	mod.Items = ProcessDerives(items)
	return bag
}
