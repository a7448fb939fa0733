package cache

// DirtySet is the result of detect_changes: the files that must be
// recompiled, split into those whose content actually changed
// (Modified) and those only swept in by a transitive import
// (Affected), plus the function-level refinement when requested.
type DirtySet struct {
	// AllDirty is true when the options changed and every known file is
	// dirty regardless of content.
	AllDirty  bool
	Modified  map[string]bool
	Affected  map[string]bool
	Functions map[string]map[string]bool // file -> dirty function names
}

func newDirtySet() *DirtySet {
	return &DirtySet{
		Modified:  make(map[string]bool),
		Affected:  make(map[string]bool),
		Functions: make(map[string]map[string]bool),
	}
}

// IsDirty reports whether file needs rebuilding under this set.
func (d *DirtySet) IsDirty(file string) bool {
	return d.AllDirty || d.Modified[file] || d.Affected[file]
}

// Empty reports whether nothing needs rebuilding.
func (d *DirtySet) Empty() bool {
	return !d.AllDirty && len(d.Modified) == 0 && len(d.Affected) == 0
}

// DetectChanges implements the four-step algorithm from §4.7: an options
// change marks everything dirty; otherwise each known file is rehashed
// (in parallel) and a hash mismatch, missing file, or unseen path marks it
// Modified; an entry file the cache has never seen is always Modified; and
// modifications propagate along reverse dependency edges to every
// transitive importer (Affected).
func DetectChanges(state *CacheState, opts CompilationOptions, entryFile string, knownPaths []string) *DirtySet {
	ds := newDirtySet()

	if state.Options != opts {
		ds.AllDirty = true
		return ds
	}

	seen := make(map[string]bool, len(knownPaths))
	for _, p := range knownPaths {
		seen[p] = true
	}

	results := HashFilesParallel(knownPaths)
	for path, meta := range state.Files {
		if !seen[path] {
			continue
		}
		res := results[path]
		if res.Err != nil || res.Hash != meta.Hash {
			ds.Modified[path] = true
		}
	}
	for _, p := range knownPaths {
		if _, known := state.Files[p]; !known {
			ds.Modified[p] = true
		}
	}

	if _, known := state.Files[entryFile]; !known {
		ds.Modified[entryFile] = true
	}

	propagateAffected(state.Graph, ds)
	return ds
}

// propagateAffected walks the reverse-dependency graph breadth-first from
// every Modified file, marking each transitive importer Affected.
func propagateAffected(graph *DependencyGraph, ds *DirtySet) {
	queue := make([]string, 0, len(ds.Modified))
	for f := range ds.Modified {
		queue = append(queue, f)
	}
	visited := make(map[string]bool, len(queue))
	for _, f := range queue {
		visited[f] = true
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, importer := range graph.Reverse[cur] {
			if visited[importer] {
				continue
			}
			visited[importer] = true
			if !ds.Modified[importer] {
				ds.Affected[importer] = true
			}
			queue = append(queue, importer)
		}
	}
}

// RefineFunctions compares old and new per-file function metadata for a
// Modified file and records, per §4.7's function-level refinement, only
// the functions whose hash changed or whose dependency became dirty; it
// returns true if the refinement found a strict subset (so the caller can
// skip whole-file recompilation).
func RefineFunctions(ds *DirtySet, file string, oldFuncs, newFuncs []FunctionMetadata) bool {
	oldByName := make(map[string]string, len(oldFuncs))
	for _, f := range oldFuncs {
		oldByName[f.Name] = f.Hash
	}
	newByName := make(map[string]FunctionMetadata, len(newFuncs))
	for _, f := range newFuncs {
		newByName[f.Name] = f
	}

	dirty := make(map[string]bool)
	for name, nf := range newByName {
		if oldByName[name] != nf.Hash {
			dirty[name] = true
		}
	}
	if _, ok := ds.Functions[file]; !ok {
		ds.Functions[file] = make(map[string]bool)
	}

	changed := true
	for {
		changed = false
		for _, nf := range newFuncs {
			if dirty[nf.Name] {
				continue
			}
			for _, dep := range nf.DependsOn {
				if dirty[dep] {
					dirty[nf.Name] = true
					changed = true
					break
				}
			}
		}
		if !changed {
			break
		}
	}

	for name := range dirty {
		ds.Functions[file][name] = true
	}
	return len(dirty) < len(newFuncs)
}
