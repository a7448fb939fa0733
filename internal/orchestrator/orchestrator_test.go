package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/diag"
	"github.com/vaislang/vais/internal/span"
	"github.com/vaislang/vais/internal/types"
)

func okCheck(mod *ast.Module, base *types.TypeEnv) (*types.TypeEnv, *diag.Bag) {
	return base, diag.NewBag()
}

func TestRunSequentialVisitsEveryModule(t *testing.T) {
	modules := map[string]*LoadedModule{
		"a": lm("a"),
		"b": lm("b", "a"),
	}
	o := &Orchestrator{TypeCheck: okCheck}
	results, err := o.runSequential(modules, Levels(modules))
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRunSequentialAbortsOnError(t *testing.T) {
	modules := map[string]*LoadedModule{
		"a": lm("a"),
		"b": lm("b", "a"),
	}
	calls := 0
	check := func(mod *ast.Module, base *types.TypeEnv) (*types.TypeEnv, *diag.Bag) {
		calls++
		bag := diag.NewBag()
		if calls == 2 {
			bag.Errorf(diag.CodeMismatch, diag.PhaseTypeCheck, span.Span{}, "boom")
		}
		return base, bag
	}
	o := &Orchestrator{TypeCheck: check}
	results, err := o.runSequential(modules, Levels(modules))
	require.Error(t, err)
	assert.Len(t, results, 2)
}

func TestRunParallelByLevelCompletesAllModules(t *testing.T) {
	modules := map[string]*LoadedModule{
		"a": lm("a"),
		"b": lm("b"),
		"c": lm("c", "a", "b"),
	}
	o := &Orchestrator{TypeCheck: okCheck, Config: Config{Mode: ParallelByLevel, Parallelism: 2}}
	results, err := o.runParallelByLevel(context.Background(), modules, Levels(modules))
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestRunPipelinedCompletesAllModules(t *testing.T) {
	modules := map[string]*LoadedModule{
		"a": lm("a"),
		"b": lm("b", "a"),
	}
	o := &Orchestrator{TypeCheck: okCheck, Config: Config{Mode: Pipelined, Parallelism: 2}}
	results, err := o.runPipelined(context.Background(), modules, Levels(modules))
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
