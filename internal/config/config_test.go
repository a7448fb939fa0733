package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "vais.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "sequential", p.Mode)
	assert.Equal(t, "x86_64", p.Target.Arch)
}

func TestLoadParsesManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vais.yaml")
	content := "name: demo\nentry: src/main.va\nmode: parallel\ntarget:\n  arch: arm64\n  os: darwin\n  family: unix\n  pointer_width: 64\nfeatures:\n  async: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", p.Name)
	assert.Equal(t, "parallel", p.Mode)
	assert.Equal(t, "arm64", p.Target.Arch)
	assert.True(t, p.Features["async"])
}

func TestCfgMapIncludesTargetAndFeatures(t *testing.T) {
	p := DefaultProject()
	p.Features["gc"] = true
	cfg := p.CfgMap()
	assert.Equal(t, "linux", cfg["os"])
	assert.Equal(t, "true", cfg["feature_gc"])
}
