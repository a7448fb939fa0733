package orchestrator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeModule(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoaderLoadsTransitiveImports(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "a.va", `use b
F main() -> int = 0`)
	writeModule(t, dir, "b.va", `F helper() -> int = 1`)

	l := NewLoader(nil)
	modules, err := l.Load(filepath.Join(dir, "a.va"))
	require.NoError(t, err)
	assert.Len(t, modules, 2)
}

func TestLoaderDetectsImportCycle(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "a.va", `use b
F a() -> int = 0`)
	writeModule(t, dir, "b.va", `use a
F b() -> int = 1`)

	l := NewLoader(nil)
	_, err := l.Load(filepath.Join(dir, "a.va"))
	require.Error(t, err)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.NotEmpty(t, cycleErr.Trace)
}

func TestLoaderResolvesAgainstSearchPath(t *testing.T) {
	root := t.TempDir()
	vendor := filepath.Join(root, "vendor", "lib")
	require.NoError(t, os.MkdirAll(vendor, 0o755))
	writeModule(t, vendor, "shared.va", `F shared() -> int = 5`)

	entryDir := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(entryDir, 0o755))
	writeModule(t, entryDir, "main.va", `use shared
F main() -> int = 0`)

	l := NewLoader([]string{vendor})
	modules, err := l.Load(filepath.Join(entryDir, "main.va"))
	require.NoError(t, err)
	assert.Len(t, modules, 2)
}

func TestLoaderExpandsGlobSearchPaths(t *testing.T) {
	root := t.TempDir()
	libA := filepath.Join(root, "vendor", "a", "src")
	libB := filepath.Join(root, "vendor", "b", "src")
	require.NoError(t, os.MkdirAll(libA, 0o755))
	require.NoError(t, os.MkdirAll(libB, 0o755))
	writeModule(t, libB, "shared.va", `F shared() -> int = 5`)

	entryDir := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(entryDir, 0o755))
	writeModule(t, entryDir, "main.va", `use shared
F main() -> int = 0`)

	pattern := filepath.Join(root, "vendor", "*", "src")
	l := NewLoader([]string{pattern})
	modules, err := l.Load(filepath.Join(entryDir, "main.va"))
	require.NoError(t, err)
	assert.Len(t, modules, 2)
}
