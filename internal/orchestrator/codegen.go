package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/borrowck"
	"github.com/vaislang/vais/internal/cache"
	"github.com/vaislang/vais/internal/codegen"
	"github.com/vaislang/vais/internal/diag"
	"github.com/vaislang/vais/internal/lower"
	"github.com/vaislang/vais/internal/mir"
	"github.com/vaislang/vais/internal/span"
	"github.com/vaislang/vais/internal/types"
)

// ObjectResult is one function's outcome in the per-module object-caching
// pipeline: its cached-object path, whether it was found there already
// (codegen skipped) or freshly emitted, and any borrow-check diagnostics
// raised while lowering it.
type ObjectResult struct {
	Module string
	Func   string
	Path   string
	Cached bool
	Diags  *diag.Bag
}

// CompileObjects runs §4.8's "generate IR -> hash -> look up cached object
// -> invoke backend" path over every function in every successfully
// type-checked module result, using o.Config.Target as the backend. It is
// a no-op when Target is nil, so orchestrators built for type-checking
// only (the common case in tests, and `vaisc check`) never touch the
// filesystem or require a configured cache directory.
func (o *Orchestrator) CompileObjects(modules map[string]*LoadedModule, results []ModuleResult) ([]ObjectResult, error) {
	if o.Config.Target == nil {
		return nil, nil
	}
	projectDir := o.Config.ProjectDir
	if projectDir == "" {
		projectDir = "."
	}

	var out []ObjectResult
	for _, r := range results {
		if r.Diags.HasErrors() || r.Env == nil {
			continue
		}
		lm := modules[r.Path]
		if lm == nil {
			continue
		}
		for _, item := range lm.AST.Items {
			fn, ok := item.(*ast.Function)
			if !ok {
				continue
			}
			res, err := o.compileFunction(projectDir, r.Path, fn, r.Env)
			if err != nil {
				return out, err
			}
			out = append(out, res)
		}
	}
	return out, nil
}

func (o *Orchestrator) compileFunction(projectDir, modPath string, fn *ast.Function, env *types.TypeEnv) (ObjectResult, error) {
	paramTypes, retType := signatureOf(fn, env)

	body, spans := lower.Function(fn, paramTypes, retType)

	bc := borrowck.New(body, func(loc borrowck.Location) span.Span { return spans[loc] })
	bc.Run()
	if bc.Diagnostics().HasErrors() {
		return ObjectResult{Module: modPath, Func: fn.Name, Diags: bc.Diagnostics()}, nil
	}

	irHash := cache.HashBytes([]byte(o.Config.Target.Name() + "\x00" + hashBody(body)))
	objPath := cache.ObjectPath(projectDir, o.Config.OptLevel, irHash)

	if !o.Config.ForceRebuild {
		if _, err := os.Stat(objPath); err == nil {
			return ObjectResult{Module: modPath, Func: fn.Name, Path: objPath, Cached: true, Diags: bc.Diagnostics()}, nil
		}
	}

	text, err := o.Config.Target.EmitFunction(body)
	if err != nil {
		return ObjectResult{}, fmt.Errorf("orchestrator: emitting %s: %w", fn.Name, err)
	}
	if err := os.MkdirAll(filepath.Dir(objPath), 0o755); err != nil {
		return ObjectResult{}, fmt.Errorf("orchestrator: creating %s: %w", filepath.Dir(objPath), err)
	}
	if err := os.WriteFile(objPath, []byte(text), 0o644); err != nil {
		return ObjectResult{}, fmt.Errorf("orchestrator: writing %s: %w", objPath, err)
	}
	return ObjectResult{Module: modPath, Func: fn.Name, Path: objPath, Diags: bc.Diagnostics()}, nil
}

// signatureOf resolves fn's parameter/return types from env, the merged
// environment the module was type-checked against, falling back to
// types.AnyType for anything env doesn't have a binding for (a path that
// should only be reached for a function the checker itself rejected,
// since CompileObjects already skips modules with errors).
func signatureOf(fn *ast.Function, env *types.TypeEnv) ([]types.Type, types.Type) {
	sc, ok := env.LookupFunc(fn.Name)
	if !ok {
		return placeholderParams(len(fn.Params)), types.AnyType
	}
	params, ret, ok := types.FuncSig(types.Instantiate(env, sc))
	if !ok {
		return placeholderParams(len(fn.Params)), types.AnyType
	}
	return params, ret
}

func placeholderParams(n int) []types.Type {
	params := make([]types.Type, n)
	for i := range params {
		params[i] = types.AnyType
	}
	return params
}

// hashBody content-hashes a MIR body's instruction stream so two
// functions with identical logic after type checking (even across
// unrelated source edits elsewhere in the file) share one cached object,
// matching §4.8's "hash the IR", not the source text.
func hashBody(body *mir.Body) string {
	return cache.HashBytes([]byte(fmt.Sprintf("%+v", *body)))
}
