package orchestrator

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/codegen"
	"github.com/vaislang/vais/internal/diag"
	"github.com/vaislang/vais/internal/types"
)

// BuildMode selects one of the three pipeline shapes described in §4.8.
type BuildMode int

const (
	Sequential BuildMode = iota
	ParallelByLevel
	Pipelined
)

// ModuleResult is one file's outcome after type checking: its merged
// diagnostics and, on success, the TypeEnv it was checked with (so later
// levels can pull forward declarations it produced).
type ModuleResult struct {
	Path  string
	Env   *types.TypeEnv
	Diags *diag.Bag
	Err   error
}

// TypeCheckFunc type-checks one loaded module against a base environment
// seeded with definitions visible from earlier levels, returning its own
// (possibly extended) environment and diagnostics. The orchestrator is
// decoupled from the concrete type-checking implementation so tests can
// supply a stub.
type TypeCheckFunc func(mod *ast.Module, base *types.TypeEnv) (*types.TypeEnv, *diag.Bag)

// Config bundles the knobs that affect how Run schedules work, plus the
// per-module object-caching knobs CompileObjects reads (§4.8).
type Config struct {
	Mode        BuildMode
	Parallelism int // 0 = runtime.GOMAXPROCS(0)
	CfgMap      map[string]string

	// Target is the backend CompileObjects hands lowered MIR to. A nil
	// Target disables object-cache compilation entirely, which is what
	// every Config used for type-checking-only work (including every
	// Orchestrator in this package's own tests) wants.
	Target codegen.Target
	// ProjectDir is the project root cached objects are written under
	// (ProjectDir/.vais-cache). Defaults to "." when empty.
	ProjectDir string
	// OptLevel namespaces cached objects the same way a real compiler's
	// -O flag would invalidate a prior build's outputs.
	OptLevel int
	// ForceRebuild skips the cache-hit check, matching the driver's
	// --force-rebuild flag.
	ForceRebuild bool
}

func (c Config) parallelism() int64 {
	if c.Parallelism > 0 {
		return int64(c.Parallelism)
	}
	return int64(runtime.GOMAXPROCS(0))
}

// Orchestrator ties a Loader, a TypeCheckFunc, and a Config together to
// drive one build.
type Orchestrator struct {
	Loader    *Loader
	TypeCheck TypeCheckFunc
	Config    Config
}

func New(loader *Loader, typeCheck TypeCheckFunc, cfg Config) *Orchestrator {
	return &Orchestrator{Loader: loader, TypeCheck: typeCheck, Config: cfg}
}

// Run loads entryPath, orders its dependency graph into levels, and type
// checks according to Config.Mode. It returns one ModuleResult per loaded
// file and the first hard error encountered (a parse/type error aborts the
// pipeline after diagnostics for in-flight modules at the same level are
// collected, per §5's cancellation policy).
func (o *Orchestrator) Run(ctx context.Context, entryPath string) ([]ModuleResult, error) {
	modules, err := o.Loader.Load(entryPath)
	if err != nil {
		if cycle, ok := err.(*CycleError); ok {
			return nil, cycle
		}
		return nil, err
	}

	levels := Levels(modules)

	switch o.Config.Mode {
	case Sequential:
		return o.runSequential(modules, levels)
	case ParallelByLevel:
		return o.runParallelByLevel(ctx, modules, levels)
	case Pipelined:
		return o.runPipelined(ctx, modules, levels)
	default:
		return nil, fmt.Errorf("orchestrator: unknown build mode %d", o.Config.Mode)
	}
}

// runSequential parses all (already done by Load), then type-checks every
// module against one shared, continuously-growing environment in level
// order — the simplest of the three modes and the one every other mode's
// result must agree with on a cycle-free, error-free input.
func (o *Orchestrator) runSequential(modules map[string]*LoadedModule, levels [][]string) ([]ModuleResult, error) {
	env := types.NewTypeEnv()
	var results []ModuleResult
	for _, level := range levels {
		for _, path := range level {
			lm := modules[path]
			merged, diags := o.TypeCheck(lm.AST, env)
			env = merged
			results = append(results, ModuleResult{Path: path, Env: merged, Diags: diags})
			if diags.HasErrors() {
				return results, fmt.Errorf("orchestrator: type check failed for %s", path)
			}
		}
	}
	return results, nil
}

// runParallelByLevel type-checks each level's modules concurrently against
// a snapshot of the environment merged from every prior level, then merges
// their individual results back into a single shared environment under a
// mutex held only for the merge — matching §5's "impl registry/type-check
// registry" shared-resource policy.
func (o *Orchestrator) runParallelByLevel(ctx context.Context, modules map[string]*LoadedModule, levels [][]string) ([]ModuleResult, error) {
	env := types.NewTypeEnv()
	var all []ModuleResult

	for _, level := range levels {
		base := env
		g, gctx := errgroup.WithContext(ctx)
		sem := semaphore.NewWeighted(o.Config.parallelism())
		levelResults := make([]ModuleResult, len(level))

		for i, path := range level {
			i, path := i, path
			g.Go(func() error {
				if err := sem.Acquire(gctx, 1); err != nil {
					return err
				}
				defer sem.Release(1)
				lm := modules[path]
				merged, diags := o.TypeCheck(lm.AST, base)
				levelResults[i] = ModuleResult{Path: path, Env: merged, Diags: diags}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return all, err
		}

		var levelErr bool
		for _, r := range levelResults {
			all = append(all, r)
			if r.Diags.HasErrors() {
				levelErr = true
				continue
			}
			env = mergeEnv(env, r.Env)
		}
		if levelErr {
			return all, fmt.Errorf("orchestrator: type check failed in level")
		}
	}
	return all, nil
}

// runPipelined hands each level's modules off through a bounded channel to
// a pool of type-check consumers, reusing the same worker-pool machinery
// runParallelByLevel builds per-module goroutines for. Crucially this still
// has a barrier between levels: a level's jobs are only enqueued after the
// prior level's results are merged into env, exactly like
// runParallelByLevel's mergeEnv step, so a level-1 module calling a level-0
// function resolves correctly instead of checking against an empty base.
func (o *Orchestrator) runPipelined(ctx context.Context, modules map[string]*LoadedModule, levels [][]string) ([]ModuleResult, error) {
	type job struct {
		idx  int
		path string
	}

	env := types.NewTypeEnv()
	var all []ModuleResult

	consumers := int(o.Config.parallelism())
	if consumers < 1 {
		consumers = 1
	}

	for _, level := range levels {
		base := env
		jobs := make(chan job, len(level))
		for i, path := range level {
			jobs <- job{idx: i, path: path}
		}
		close(jobs)

		levelResults := make([]ModuleResult, len(level))
		g, gctx := errgroup.WithContext(ctx)
		for c := 0; c < consumers; c++ {
			g.Go(func() error {
				for {
					select {
					case <-gctx.Done():
						return gctx.Err()
					case j, ok := <-jobs:
						if !ok {
							return nil
						}
						lm := modules[j.path]
						merged, diags := o.TypeCheck(lm.AST, base)
						levelResults[j.idx] = ModuleResult{Path: j.path, Env: merged, Diags: diags}
					}
				}
			})
		}
		if err := g.Wait(); err != nil {
			return all, err
		}

		var levelErr bool
		for _, r := range levelResults {
			all = append(all, r)
			if r.Diags.HasErrors() {
				levelErr = true
				continue
			}
			env = mergeEnv(env, r.Env)
		}
		if levelErr {
			return all, fmt.Errorf("orchestrator: type check failed in level")
		}
	}
	return all, nil
}

// mergeEnv folds every function scheme `from` declared into `into`'s
// function table, so later levels see every function earlier ones
// declared. Variable/type-param bindings are scope-local and are never
// merged across modules.
func mergeEnv(into, from *types.TypeEnv) *types.TypeEnv {
	if from == nil {
		return into
	}
	merged := into
	from.ExportFuncs(func(name string, sc *types.TypeScheme) {
		merged.BindFunc(name, sc)
	})
	return merged
}
