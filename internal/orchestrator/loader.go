// Package orchestrator drives module loading, dependency-ordered
// compilation, and per-module object caching across Sequential,
// Parallel-by-level, and Pipelined build modes.
package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/vaislang/vais/internal/ast"
	"github.com/vaislang/vais/internal/diag"
	"github.com/vaislang/vais/internal/parser"
	"github.com/vaislang/vais/internal/span"
)

// LoadedModule is one source file's parse result plus the absolute paths
// of the files its `use` declarations resolved to.
type LoadedModule struct {
	Path    string
	Source  string
	AST     *ast.Module
	Imports []string
	Diags   *diag.Bag
}

// Loader parses files starting from an entry point and discovers imports
// transitively, memoizing by absolute path (the "query database" of
// §4.8's module-load description) so a file imported by two different
// modules is only parsed once.
type Loader struct {
	searchPaths []string
	cache       map[string]*LoadedModule
	loadStack   []string
}

// NewLoader builds a Loader over searchPaths. An entry containing a glob
// meta-character (`*`, `?`, `[`, `{`) is expanded immediately into every
// matching directory (e.g. "vendor/*/src" covers every vendored package's
// source directory without listing each one); a plain path is kept as-is
// whether or not it exists yet, since project directories are often created
// after the loader.
func NewLoader(searchPaths []string) *Loader {
	var expanded []string
	for _, p := range searchPaths {
		if !doublestar.ValidatePattern(p) || !hasGlobMeta(p) {
			expanded = append(expanded, p)
			continue
		}
		matches, err := doublestar.FilepathGlob(p)
		if err != nil || len(matches) == 0 {
			expanded = append(expanded, p)
			continue
		}
		expanded = append(expanded, matches...)
	}
	return &Loader{searchPaths: expanded, cache: make(map[string]*LoadedModule)}
}

func hasGlobMeta(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}

// CycleError reports an import cycle with the full path trace that
// produced it.
type CycleError struct {
	Trace []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("import cycle: %s", strings.Join(e.Trace, " -> "))
}

// Diagnostic renders a CycleError as a diag.Diagnostic anchored at the
// first file in the cycle, for callers that want it in the same bag as
// every other diagnostic rather than as a bare Go error.
func (e *CycleError) Diagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Code:     diag.CodeUnresolvedVariable,
		Phase:    diag.PhaseOrchestrator,
		Severity: diag.SeverityError,
		Message:  e.Error(),
		Span:     spanForFile(e.Trace[0]),
	}
}

// Load parses entryPath and every file it transitively imports, returning
// them all keyed by absolute path. A visited set prevents re-parsing a
// file already loaded; a loading stack detects cycles and reports the
// full cycle trace.
func (l *Loader) Load(entryPath string) (map[string]*LoadedModule, error) {
	abs, err := filepath.Abs(entryPath)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: resolving %s: %w", entryPath, err)
	}
	if err := l.load(abs); err != nil {
		return nil, err
	}
	return l.cache, nil
}

func (l *Loader) load(abs string) error {
	for _, onStack := range l.loadStack {
		if onStack == abs {
			trace := append(append([]string{}, l.loadStack...), abs)
			return &CycleError{Trace: trace}
		}
	}
	if _, ok := l.cache[abs]; ok {
		return nil
	}

	src, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("orchestrator: reading %s: %w", abs, err)
	}

	l.loadStack = append(l.loadStack, abs)
	defer func() { l.loadStack = l.loadStack[:len(l.loadStack)-1] }()

	mod, bag := parser.ParseRecoverable(string(src), abs)

	lm := &LoadedModule{Path: abs, Source: string(src), AST: mod, Diags: bag}
	l.cache[abs] = lm

	for _, item := range mod.Items {
		use, ok := item.(*ast.Use)
		if !ok {
			continue
		}
		resolved, err := l.resolvePath(use.Path, filepath.Dir(abs))
		if err != nil {
			bag.Add(diag.Diagnostic{
				Code: diag.CodeUnresolvedVariable, Phase: diag.PhaseParser, Severity: diag.SeverityError,
				Message: fmt.Sprintf("cannot resolve import %q: %v", use.Path, err), Span: use.Span(),
			})
			continue
		}
		lm.Imports = append(lm.Imports, resolved)
		if err := l.load(resolved); err != nil {
			return err
		}
	}

	return nil
}

// resolvePath turns a `use` path into an absolute file path: relative to
// the importing file's directory first, then each configured search path,
// appending the conceptual `.va` extension if the path has none.
func (l *Loader) resolvePath(importPath, relativeTo string) (string, error) {
	candidate := importPath
	if filepath.Ext(candidate) == "" {
		candidate += ".va"
	}
	tryDirs := append([]string{relativeTo}, l.searchPaths...)
	for _, dir := range tryDirs {
		full := filepath.Join(dir, candidate)
		if _, err := os.Stat(full); err == nil {
			abs, err := filepath.Abs(full)
			if err != nil {
				return "", err
			}
			return abs, nil
		}
	}
	return "", fmt.Errorf("no such module %q in %v", importPath, tryDirs)
}

// spanForFile anchors orchestrator-level diagnostics that have no more
// precise location than "this file" (e.g. a cycle detected while
// resolving its imports, before any token has been produced).
func spanForFile(path string) span.Span {
	pos := span.Pos{File: path, Line: 1, Column: 1}
	return span.Span{Start: pos, End: pos}
}
