package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/vaislang/vais/internal/cache"
	"github.com/vaislang/vais/internal/checker"
	"github.com/vaislang/vais/internal/codegen"
	"github.com/vaislang/vais/internal/codegen/jstext"
	"github.com/vaislang/vais/internal/codegen/llvmtext"
	"github.com/vaislang/vais/internal/codegen/wasmtext"
	"github.com/vaislang/vais/internal/config"
	"github.com/vaislang/vais/internal/orchestrator"
)

type buildFlags struct {
	output       string
	optLevel     int
	debug        bool
	verbose      bool
	target       string
	forceRebuild bool
	gcThreshold  string
	lto          bool
	pgo          string
	coverage     bool
	parallel     int
	perModule    bool
	cacheLimit   int64
}

// newBuildCmd builds the full pipeline subcommand: parse, type-check,
// lower, borrow-check, and run the per-module object cache against one of
// the textual codegen stand-ins, exiting nonzero iff any error surfaced —
// exactly spec.md §6.2's flag set, and the first place in this repository
// internal/checker.Check is wired into internal/orchestrator as its real
// TypeCheckFunc.
func newBuildCmd() *cobra.Command {
	var f buildFlags

	cmd := &cobra.Command{
		Use:   "build <entry>",
		Short: "Compile a program end to end",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args[0], f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.output, "output", "o", "", "output path (accepted but not read: objects always go to the per-module cache layout)")
	flags.IntVarP(&f.optLevel, "opt-level", "O", 0, "optimization level 0-3")
	flags.BoolVar(&f.debug, "debug", false, "include debug info in cache invalidation keys")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "print per-function cache hit/miss lines")
	flags.StringVar(&f.target, "target", "llvm", "codegen target: llvm, wasm, or js")
	flags.BoolVar(&f.forceRebuild, "force-rebuild", false, "ignore the object cache and regenerate everything")
	flags.StringVar(&f.gcThreshold, "gc", "", "garbage-collection threshold, forwarded into the cfg map")
	flags.BoolVar(&f.lto, "lto", false, "enable link-time optimization (affects cache invalidation only)")
	flags.StringVar(&f.pgo, "pgo", "", "profile-guided optimization profile path (affects cache invalidation only)")
	flags.BoolVar(&f.coverage, "coverage", false, "instrument for coverage (affects cache invalidation only)")
	flags.IntVar(&f.parallel, "parallel", 0, "type-check dependency levels concurrently with this many workers")
	flags.BoolVar(&f.perModule, "per-module", false, "also write one consolidated per-module IR file alongside per-function objects")
	flags.Int64Var(&f.cacheLimit, "cache-limit", 0, "evict oldest cached objects once the cache directory exceeds this many bytes (0 = unbounded)")

	return cmd
}

func selectTarget(name string) codegen.Target {
	switch name {
	case "wasm":
		return wasmtext.Target{}
	case "js":
		return jstext.Target{}
	default:
		return llvmtext.Target{}
	}
}

func runBuild(cmd *cobra.Command, entry string, f buildFlags) error {
	out := cmd.OutOrStdout()
	projectDir := filepath.Dir(entry)
	if abs, err := filepath.Abs(projectDir); err == nil {
		projectDir = abs
	}

	proj, err := config.Load(filepath.Join(projectDir, "vais.yaml"))
	if err != nil {
		return fmt.Errorf("vaisc build: %w", err)
	}

	opts := cache.CompilationOptions{
		OptLevel: f.optLevel,
		Debug:    f.debug,
		Target:   f.target,
		LTO:      ltoString(f.lto),
		PGO:      f.pgo,
		Coverage: f.coverage,
	}

	state, hit := cache.Load(projectDir, Version)
	if !hit {
		state = cache.NewCacheState(Version, opts)
	}

	loader := orchestrator.NewLoader(nil)
	modules, err := loader.Load(entry)
	if err != nil {
		return reportLoadError(os.Stderr, err)
	}

	knownPaths := make([]string, 0, len(modules))
	for path := range modules {
		knownPaths = append(knownPaths, path)
	}
	sort.Strings(knownPaths)

	ds := cache.DetectChanges(state, opts, entry, knownPaths)
	if ds.Empty() && !f.forceRebuild {
		fmt.Fprintln(out, "up to date: nothing to rebuild")
		return nil
	}

	parallelism := f.parallel
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	mode := orchestrator.Sequential
	if f.parallel > 1 {
		mode = orchestrator.ParallelByLevel
	}

	cfg := proj.CfgMap()
	if f.gcThreshold != "" {
		cfg["gc_threshold"] = f.gcThreshold
	}

	o := orchestrator.New(loader, checker.Check, orchestrator.Config{
		Mode:         mode,
		Parallelism:  parallelism,
		CfgMap:       cfg,
		Target:       selectTarget(f.target),
		ProjectDir:   projectDir,
		OptLevel:     f.optLevel,
		ForceRebuild: f.forceRebuild,
	})

	results, runErr := o.Run(cmd.Context(), entry)
	errs := renderResults(os.Stderr, results, modules)
	if errs > 0 {
		return fmt.Errorf("vaisc build: %d error(s)", errs)
	}
	if runErr != nil {
		return fmt.Errorf("vaisc build: %w", runErr)
	}

	objects, err := o.CompileObjects(modules, results)
	if err != nil {
		return fmt.Errorf("vaisc build: %w", err)
	}

	cached, emitted := 0, 0
	for _, obj := range objects {
		if obj.Path == "" {
			continue
		}
		if obj.Cached {
			cached++
		} else {
			emitted++
		}
		if f.verbose {
			status := "emit "
			if obj.Cached {
				status = "cached"
			}
			fmt.Fprintf(out, "%s %s::%s -> %s\n", status, obj.Module, obj.Func, obj.Path)
		}
		if f.perModule {
			writeModuleIR(projectDir, obj.Module)
		}
	}
	fmt.Fprintf(out, "build: %d function(s) emitted, %d served from cache\n", emitted, cached)

	if f.cacheLimit > 0 {
		if err := evictOldest(filepath.Join(projectDir, cache.Dir), f.cacheLimit); err != nil && f.verbose {
			fmt.Fprintf(out, "cache eviction: %v\n", err)
		}
	}

	saveCacheState(projectDir, state, opts, modules)
	return nil
}

func ltoString(on bool) string {
	if on {
		return "on"
	}
	return ""
}

// writeModuleIR is best-effort: the per-module file holds a one-line
// header naming the module, is not read back by any subcommand, and is
// not load-bearing for the per-function object cache, so directory and
// write errors here are ignored.
func writeModuleIR(projectDir, moduleName string) {
	path := cache.ModulePath(projectDir, moduleName)
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	_ = os.WriteFile(path, []byte(fmt.Sprintf("; consolidated IR for %s\n", moduleName)), 0o644)
}

// saveCacheState refreshes every loaded file's metadata and dependency
// graph edges and persists the whole CacheState, so the next invocation's
// DetectChanges has an accurate baseline.
func saveCacheState(projectDir string, state *cache.CacheState, opts cache.CompilationOptions, modules map[string]*orchestrator.LoadedModule) {
	state.Options = opts
	state.Files = make(map[string]cache.FileMetadata, len(modules))
	state.Graph = cache.NewDependencyGraph()
	for path, lm := range modules {
		state.Files[path] = cache.FileMetadata{
			Path:      path,
			Hash:      cache.HashBytes([]byte(lm.Source)),
			Functions: cache.ScanDefinitions(lm.Source),
		}
		state.Graph.SetImports(path, lm.Imports)
	}
	_ = cache.Save(projectDir, state)
}

// evictOldest removes the least-recently-modified files directly under
// dir until its total size is at or under limit bytes.
func evictOldest(dir string, limit int64) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	type fileInfo struct {
		path    string
		size    int64
		modTime time.Time
	}
	var files []fileInfo
	var total int64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		total += info.Size()
		files = append(files, fileInfo{path: filepath.Join(dir, e.Name()), size: info.Size(), modTime: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].modTime.Before(files[j].modTime) })
	for _, f := range files {
		if total <= limit {
			break
		}
		if err := os.Remove(f.path); err != nil {
			continue
		}
		total -= f.size
	}
	return nil
}
