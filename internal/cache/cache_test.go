package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestHashBytesDeterministic(t *testing.T) {
	h1 := HashBytes([]byte("hello"))
	h2 := HashBytes([]byte("hello"))
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	state := NewCacheState("v1", CompilationOptions{OptLevel: 2})
	state.Files["a.va"] = FileMetadata{Path: "a.va", Hash: "abc"}
	state.Graph.SetImports("b.va", []string{"a.va"})

	require.NoError(t, Save(dir, state))
	loaded, ok := Load(dir, "v1")
	require.True(t, ok)
	assert.Equal(t, state.Files, loaded.Files)
	assert.Equal(t, []string{"a.va"}, loaded.Graph.Forward["b.va"])
	assert.Equal(t, []string{"b.va"}, loaded.Graph.Reverse["a.va"])
}

func TestLoadRejectsCompilerVersionMismatch(t *testing.T) {
	dir := t.TempDir()
	state := NewCacheState("v1", CompilationOptions{})
	require.NoError(t, Save(dir, state))

	_, ok := Load(dir, "v2")
	assert.False(t, ok)
}

func TestLoadAbsentIsNotError(t *testing.T) {
	_, ok := Load(t.TempDir(), "v1")
	assert.False(t, ok)
}

func TestDetectChangesEmptyWhenNothingChanged(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.va")
	writeFile(t, pathA, "F main() = 0")

	hashA, err := HashFile(pathA)
	require.NoError(t, err)

	opts := CompilationOptions{OptLevel: 1}
	state := NewCacheState("v1", opts)
	state.Files[pathA] = FileMetadata{Path: pathA, Hash: hashA}

	ds := DetectChanges(state, opts, pathA, []string{pathA})
	assert.True(t, ds.Empty())
}

func TestDetectChangesAllDirtyOnOptionsChange(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.va")
	writeFile(t, pathA, "F main() = 0")
	hashA, _ := HashFile(pathA)

	state := NewCacheState("v1", CompilationOptions{OptLevel: 1})
	state.Files[pathA] = FileMetadata{Path: pathA, Hash: hashA}

	ds := DetectChanges(state, CompilationOptions{OptLevel: 2}, pathA, []string{pathA})
	assert.True(t, ds.AllDirty)
}

func TestDetectChangesPropagatesToImporters(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.va")
	pathB := filepath.Join(dir, "b.va")
	writeFile(t, pathA, "F helper() = 1")
	writeFile(t, pathB, "use a\nF main() = helper()")

	hashA, _ := HashFile(pathA)
	hashB, _ := HashFile(pathB)

	opts := CompilationOptions{}
	state := NewCacheState("v1", opts)
	state.Files[pathA] = FileMetadata{Path: pathA, Hash: hashA}
	state.Files[pathB] = FileMetadata{Path: pathB, Hash: hashB}
	state.Graph.SetImports(pathB, []string{pathA})

	// Modify A only.
	writeFile(t, pathA, "F helper() = 2")

	ds := DetectChanges(state, opts, pathB, []string{pathA, pathB})
	assert.True(t, ds.Modified[pathA])
	assert.False(t, ds.Modified[pathB])
	assert.True(t, ds.Affected[pathB])
}

func TestScanDefinitionsFindsFunctions(t *testing.T) {
	src := "F add(a, b) { R a + b }\n\nF sub(a, b) { R a - b }\n"
	defs := ScanDefinitions(src)
	require.Len(t, defs, 2)
	assert.Equal(t, "add", defs[0].Name)
	assert.Equal(t, "sub", defs[1].Name)
	assert.NotEqual(t, defs[0].Hash, defs[1].Hash)
}

func TestRefineFunctionsMarksOnlyChanged(t *testing.T) {
	ds := newDirtySet()
	old := []FunctionMetadata{{Name: "add", Hash: "h1"}, {Name: "sub", Hash: "h2"}}
	newer := []FunctionMetadata{{Name: "add", Hash: "h1"}, {Name: "sub", Hash: "h2-changed"}}

	strict := RefineFunctions(ds, "f.va", old, newer)
	assert.True(t, strict)
	assert.True(t, ds.Functions["f.va"]["sub"])
	assert.False(t, ds.Functions["f.va"]["add"])
}

func TestRefineFunctionsPropagatesWithinFileDependency(t *testing.T) {
	ds := newDirtySet()
	old := []FunctionMetadata{{Name: "a", Hash: "h1"}, {Name: "b", Hash: "h2", DependsOn: []string{"a"}}}
	newer := []FunctionMetadata{{Name: "a", Hash: "h1-changed"}, {Name: "b", Hash: "h2", DependsOn: []string{"a"}}}

	RefineFunctions(ds, "f.va", old, newer)
	assert.True(t, ds.Functions["f.va"]["a"])
	assert.True(t, ds.Functions["f.va"]["b"])
}
