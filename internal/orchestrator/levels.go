package orchestrator

import "sort"

// Levels groups files into dependency levels via Kahn's algorithm: level 0
// holds every file with no remaining unresolved imports, level 1 holds
// files whose imports are all in level 0, and so on. Within a level, order
// is not semantically meaningful but is stabilized (sorted) so diagnostic
// output is deterministic across runs.
func Levels(modules map[string]*LoadedModule) [][]string {
	inDegree := make(map[string]int, len(modules))
	dependents := make(map[string][]string, len(modules))

	for path, lm := range modules {
		if _, ok := inDegree[path]; !ok {
			inDegree[path] = 0
		}
		for _, imp := range lm.Imports {
			if _, ok := modules[imp]; !ok {
				continue
			}
			inDegree[path]++
			dependents[imp] = append(dependents[imp], path)
		}
	}

	var levels [][]string
	remaining := len(inDegree)
	for remaining > 0 {
		var level []string
		for path, deg := range inDegree {
			if deg == 0 {
				level = append(level, path)
			}
		}
		if len(level) == 0 {
			// Residual cycle not already caught by the loader's
			// load-stack check (e.g. a cycle through a file reached by
			// two different import chains); emit everything left as a
			// final level rather than looping forever.
			for path, deg := range inDegree {
				if deg >= 0 {
					level = append(level, path)
				}
			}
			sort.Strings(level)
			levels = append(levels, level)
			break
		}
		sort.Strings(level)
		levels = append(levels, level)
		for _, path := range level {
			delete(inDegree, path)
			remaining--
		}
		for _, path := range level {
			for _, dep := range dependents[path] {
				if _, ok := inDegree[dep]; ok {
					inDegree[dep]--
				}
			}
		}
	}
	return levels
}
