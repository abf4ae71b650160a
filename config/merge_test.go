package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHierarchicalMerging(t *testing.T) {
	home := isolate(t)

	globalDir := filepath.Join(home, "config")
	require.NoError(t, os.MkdirAll(globalDir, 0755))
	globalPath := filepath.Join(globalDir, "pulse.yml")
	require.NoError(t, os.WriteFile(globalPath, []byte(`
target: https://global.example.com
token: global-token
exclude: ["*.env"]
logging:
  level: info
  report_caller: true
`), 0644))

	projectDir := t.TempDir()
	projectPath := filepath.Join(projectDir, "pulse.yml")
	require.NoError(t, os.WriteFile(projectPath, []byte(`
target: https://project.example.com
interval: 3s
exclude: ["vendor/**"]
logging:
  level: debug
`), 0644))

	cfg, err := LoadFrom(projectDir)
	require.NoError(t, err)

	assert.Equal(t, "https://project.example.com", cfg.Target)
	assert.Equal(t, "global-token", cfg.Token, "unset project fields fall back to global")
	assert.Equal(t, "3s", cfg.Interval)
	assert.Equal(t, []string{"*.env", "vendor/**"}, cfg.Exclude)
	assert.Equal(t, []string{globalPath, projectPath}, cfg.Sources)

	logging, ok := cfg.Extensions["logging"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "debug", logging["level"])
	assert.Equal(t, true, logging["report_caller"])
}

func TestMergingWithoutAnyConfig(t *testing.T) {
	isolate(t)
	t.Setenv("PULSE_TARGET", "https://env.example.com")
	t.Setenv("PULSE_TOKEN", "env-token")

	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Empty(t, cfg.Sources)
	assert.True(t, cfg.HasCredentials())
	assert.Equal(t, "https://env.example.com", cfg.Target)
}

func TestMergeConfigs_DoesNotAliasBase(t *testing.T) {
	base := &Config{Exclude: []string{"a"}, Extensions: map[string]interface{}{"x": 1}}
	override := &Config{Exclude: []string{"b"}, Extensions: map[string]interface{}{"y": 2}}

	merged := mergeConfigs(base, override)
	merged.Exclude[0] = "changed"
	merged.Extensions["z"] = 3

	assert.Equal(t, []string{"a"}, base.Exclude)
	assert.NotContains(t, base.Extensions, "z")
}
