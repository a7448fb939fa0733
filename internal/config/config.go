// Package config loads the project-level build manifest: the target
// triple, feature flags, and pipeline-mode defaults that seed an
// orchestrator run before any CLI flag overrides are applied.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Target names the compilation target triple's four components, mirrored
// into the orchestrator's cfg map as `arch`/`os`/`family`/`pointer_width`.
type Target struct {
	Arch         string `yaml:"arch"`
	OS           string `yaml:"os"`
	Family       string `yaml:"family"`
	PointerWidth int    `yaml:"pointer_width"`
}

// DefaultTarget returns the host-native target used when a project
// manifest doesn't specify one.
func DefaultTarget() Target {
	return Target{Arch: "x86_64", OS: "linux", Family: "unix", PointerWidth: 64}
}

// Project is the parsed `vais.yaml` project manifest.
type Project struct {
	Name     string            `yaml:"name"`
	Entry    string            `yaml:"entry"`
	Target   Target            `yaml:"target"`
	Features map[string]bool   `yaml:"features"`
	Mode     string            `yaml:"mode"` // "sequential" | "parallel" | "pipelined"
	CacheDir string            `yaml:"cache_dir"`
	Env      map[string]string `yaml:"env"`
}

// DefaultProject returns a manifest with every field defaulted, used when
// no vais.yaml is present so the orchestrator always has a complete
// configuration to run against.
func DefaultProject() *Project {
	return &Project{
		Mode:     "sequential",
		CacheDir: ".vais-cache",
		Target:   DefaultTarget(),
		Features: make(map[string]bool),
	}
}

// Load reads and parses a vais.yaml manifest at path. A missing file is
// not an error — callers get DefaultProject() instead, since the manifest
// is optional.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultProject(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	p := DefaultProject()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return p, nil
}

// CfgMap seeds the orchestrator's conditional-compilation `cfg` map from
// the target triple and feature flags.
func (p *Project) CfgMap() map[string]string {
	m := map[string]string{
		"arch":          p.Target.Arch,
		"os":            p.Target.OS,
		"family":        p.Target.Family,
		"pointer_width": fmt.Sprintf("%d", p.Target.PointerWidth),
	}
	for feat, on := range p.Features {
		if on {
			m["feature_"+feat] = "true"
		}
	}
	return m
}
