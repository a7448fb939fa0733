// Package cache implements the incremental-compilation cache: content
// hashing, dirty-set computation over a file dependency graph (optionally
// refined to function granularity), reusable compiled-object storage, and
// atomic write-temp-then-rename persistence of the whole cache state.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/mod/semver"
	"golang.org/x/sync/errgroup"
)

// FormatVersion is bumped whenever CacheState's on-disk shape changes in a
// way prior versions cannot read.
const FormatVersion = 1

// FunctionMetadata is one function/type definition's cached identity
// within a file: its name, the hash of its exact source substring, and
// the names of other functions/types (in this file or elsewhere) it
// depends on.
type FunctionMetadata struct {
	Name      string   `json:"name"`
	Hash      string   `json:"hash"`
	DependsOn []string `json:"depends_on"`
}

// FileMetadata is everything the cache remembers about one source file.
type FileMetadata struct {
	Path      string             `json:"path"`
	Hash      string             `json:"hash"`
	Functions []FunctionMetadata `json:"functions,omitempty"`
}

// CompilationOptions is the subset of driver flags that affect codegen
// output; a change to any of these invalidates every known file per step 1
// of dirty-set computation.
type CompilationOptions struct {
	OptLevel  int    `json:"opt_level"`
	Debug     bool   `json:"debug"`
	Target    string `json:"target"`
	LTO       string `json:"lto"`
	PGO       string `json:"pgo"`
	Coverage  bool   `json:"coverage"`
}

// DependencyGraph holds forward edges (file -> its imports) and the
// derived reverse edges (file -> its importers), used to propagate a
// modification to every transitive importer.
type DependencyGraph struct {
	Forward map[string][]string `json:"forward"`
	Reverse map[string][]string `json:"reverse"`
}

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{Forward: make(map[string][]string), Reverse: make(map[string][]string)}
}

// SetImports records that file imports the given paths, rebuilding the
// reverse-edge entries those paths point back at file.
func (g *DependencyGraph) SetImports(file string, imports []string) {
	g.Forward[file] = imports
	for _, imp := range imports {
		g.Reverse[imp] = appendUnique(g.Reverse[imp], file)
	}
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

// CacheState is the full persisted snapshot: versions, the compilation
// options it was built with, per-file metadata, and the dependency graph.
type CacheState struct {
	FormatVersion   int                     `json:"format_version"`
	CompilerVersion string                  `json:"compiler_version"`
	Options         CompilationOptions      `json:"options"`
	Files           map[string]FileMetadata `json:"files"`
	Graph           *DependencyGraph        `json:"graph"`
}

func NewCacheState(compilerVersion string, opts CompilationOptions) *CacheState {
	return &CacheState{
		FormatVersion:   FormatVersion,
		CompilerVersion: compilerVersion,
		Options:         opts,
		Files:           make(map[string]FileMetadata),
		Graph:           NewDependencyGraph(),
	}
}

// HashBytes returns the lowercase hex SHA-256 digest of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Dir is the default cache directory name, relative to a project root.
const Dir = ".vais-cache"

// StatePath returns the path to the cache's primary state file within
// projectDir/Dir.
func StatePath(projectDir string) string {
	return filepath.Join(projectDir, Dir, "cache_state.json")
}

func tmpStatePath(path string) string { return path + ".tmp" }

// compilerVersionCompatible reports whether a cache written by cached was
// produced by a compiler sharing current's major.minor line — a cache from
// v0.4.0 is reused by v0.4.3 but invalidated by v0.5.0. Either string
// failing to parse as semver (e.g. a "dev" build) falls back to an exact
// string match.
func compilerVersionCompatible(cached, current string) bool {
	c1, c2 := canonicalSemver(cached), canonicalSemver(current)
	if !semver.IsValid(c1) || !semver.IsValid(c2) {
		return cached == current
	}
	return semver.MajorMinor(c1) == semver.MajorMinor(c2)
}

// canonicalSemver prefixes a bare "X.Y.Z" version with "v" so
// golang.org/x/mod/semver, which requires the "v" prefix, can parse it.
func canonicalSemver(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

// Load reads and validates a persisted CacheState. Any I/O error or
// version mismatch is reported as "absent" (nil, false) rather than an
// error — per the spec, cache problems are never user-visible failures.
func Load(projectDir, compilerVersion string) (*CacheState, bool) {
	path := StatePath(projectDir)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var state CacheState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, false
	}
	if state.FormatVersion != FormatVersion || !compilerVersionCompatible(state.CompilerVersion, compilerVersion) {
		return nil, false
	}
	if state.Graph == nil {
		state.Graph = NewDependencyGraph()
	}
	return &state, true
}

// Save persists state to projectDir/Dir/cache_state.json using the
// write-temp-then-rename protocol, so a crash mid-write never leaves a
// partially written cache in place.
func Save(projectDir string, state *CacheState) error {
	dir := filepath.Join(projectDir, Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cache: creating %s: %w", dir, err)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("cache: encoding state: %w", err)
	}
	path := StatePath(projectDir)
	tmp := tmpStatePath(path)
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("cache: writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("cache: renaming %s to %s: %w", tmp, path, err)
	}
	return nil
}

// ObjectPath returns the content-keyed path for a cached object file at
// the given optimization level and IR hash.
func ObjectPath(projectDir string, optLevel int, irHash string) string {
	short := irHash
	if len(short) > 16 {
		short = short[:16]
	}
	return filepath.Join(projectDir, Dir, fmt.Sprintf("ir_O%d_%s.o", optLevel, short))
}

// ModulePath returns the per-module IR path used by the per-module
// pipeline.
func ModulePath(projectDir, moduleName string) string {
	return filepath.Join(projectDir, Dir, "modules", moduleName+".ll")
}

// HashFile reads path and returns its content hash, or ("", err). The
// caller treats any error (including a missing file) as "modified" per
// dirty-set rule 2.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return HashBytes(data), nil
}

// HashResult is one file's content hash, or the error encountered reading
// it (treated as "modified" by the dirty-set computation).
type HashResult struct {
	Hash string
	Err  error
}

// HashFilesParallel computes HashFile for every path concurrently via a
// bounded errgroup, matching the spec's "performed in parallel" requirement
// for step 2 of dirty-set computation; an individual file's read error
// never aborts the others.
func HashFilesParallel(paths []string) map[string]HashResult {
	results := make(map[string]HashResult, len(paths))
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, p := range paths {
		p := p
		g.Go(func() error {
			h, err := HashFile(p)
			mu.Lock()
			results[p] = HashResult{Hash: h, Err: err}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}
