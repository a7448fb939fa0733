package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vaislang/vais/internal/ast"
)

func lm(path string, imports ...string) *LoadedModule {
	return &LoadedModule{Path: path, AST: &ast.Module{}, Imports: imports}
}

func TestLevelsOrdersByDependency(t *testing.T) {
	modules := map[string]*LoadedModule{
		"a": lm("a"),
		"b": lm("b", "a"),
		"c": lm("c", "b"),
	}
	levels := Levels(modules)
	assert.Equal(t, [][]string{{"a"}, {"b"}, {"c"}}, levels)
}

func TestLevelsGroupsIndependentFilesTogether(t *testing.T) {
	modules := map[string]*LoadedModule{
		"a": lm("a"),
		"b": lm("b"),
		"c": lm("c", "a", "b"),
	}
	levels := Levels(modules)
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, levels)
}

func TestLevelsHandlesResidualCycleWithoutHanging(t *testing.T) {
	modules := map[string]*LoadedModule{
		"a": lm("a", "b"),
		"b": lm("b", "a"),
	}
	levels := Levels(modules)
	assert.NotEmpty(t, levels)
	total := 0
	for _, l := range levels {
		total += len(l)
	}
	assert.Equal(t, 2, total)
}
