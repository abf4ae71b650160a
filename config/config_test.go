package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/grovetools/pulse/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every config lookup at a fresh directory tree.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("PULSE_HOME", home)
	t.Setenv("PULSE_TARGET", "")
	t.Setenv("PULSE_TOKEN", "")
	t.Setenv("NVIM", "")
	return home
}

func TestLoadFromBytes_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadFromBytes([]byte(`target: https://collector.example.com/activity`))
	require.NoError(t, err)

	assert.Equal(t, "1.0", cfg.Version)
	assert.Equal(t, TransportHTTP, cfg.Transport)
	assert.Equal(t, DefaultInterval, cfg.PollInterval())
	assert.Zero(t, cfg.ReportTimeout())
	assert.False(t, cfg.HasCredentials())
	assert.True(t, errors.Is(cfg.CheckCredentials(), errors.ErrCodeMissingCredentials))
}

func TestLoadFromBytes_EnvExpansion(t *testing.T) {
	isolate(t)
	t.Setenv("ACTIVITY_TOKEN", "s3cret")

	cfg, err := LoadFromBytes([]byte(`
target: ${ACTIVITY_TARGET:-https://fallback.example.com}
token: ${ACTIVITY_TOKEN}
interval: 250ms
timeout: 5s
`))
	require.NoError(t, err)

	assert.Equal(t, "https://fallback.example.com", cfg.Target)
	assert.Equal(t, "s3cret", cfg.Token)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval())
	assert.Equal(t, 5*time.Second, cfg.ReportTimeout())
	assert.True(t, cfg.HasCredentials())
}

func TestLoadFromBytes_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("PULSE_TOKEN", "from-env")
	t.Setenv("NVIM", "/tmp/nvim.sock")

	cfg, err := LoadFromBytes([]byte(`
target: wss://collector.example.com/stream
token: from-file
`))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Token)
	assert.Equal(t, "/tmp/nvim.sock", cfg.Editor.Address)
	assert.Equal(t, TransportWebSocket, cfg.Transport, "transport is inferred from the ws scheme")
}

func TestLoadFromBytes_Invalid(t *testing.T) {
	isolate(t)

	testCases := []struct {
		name string
		yaml string
	}{
		{"bad transport", "transport: carrier-pigeon"},
		{"relative target", "target: /activity"},
		{"unsupported scheme", "target: ftp://example.com/drop"},
		{"bad interval", "interval: soon"},
		{"zero interval", "interval: 0s"},
		{"negative timeout", "timeout: -1s"},
		{"empty exclude pattern", "exclude: ['']"},
		{"malformed yaml", "target: [unterminated"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tc.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeConfigInvalid), "got %v", err)
		})
	}
}

func TestExtensions(t *testing.T) {
	isolate(t)

	cfg, err := LoadFromBytes([]byte(`
target: https://collector.example.com
logging:
  level: debug
  report_caller: true
  file:
    enabled: true
    path: /tmp/pulse.log
`))
	require.NoError(t, err)

	type fileCfg struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	}
	type loggingCfg struct {
		Level        string  `yaml:"level"`
		ReportCaller bool    `yaml:"report_caller"`
		File         fileCfg `yaml:"file"`
	}

	var logCfg loggingCfg
	require.NoError(t, cfg.UnmarshalExtension("logging", &logCfg))
	assert.Equal(t, "debug", logCfg.Level)
	assert.True(t, logCfg.ReportCaller)
	assert.Equal(t, "/tmp/pulse.log", logCfg.File.Path)

	// Missing extensions leave the target untouched
	var missing loggingCfg
	require.NoError(t, cfg.UnmarshalExtension("nope", &missing))
	assert.Empty(t, missing.Level)
}

func TestLoad_TOML(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "pulse.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
target = "https://collector.example.com"
token = "abc"
exclude = ["*.env", "secrets/**"]

[editor]
address = "127.0.0.1:6666"

[logging]
level = "warn"
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "abc", cfg.Token)
	assert.Equal(t, []string{"*.env", "secrets/**"}, cfg.Exclude)
	assert.Equal(t, "127.0.0.1:6666", cfg.Editor.Address)
	assert.Equal(t, []string{path}, cfg.Sources)

	var logCfg struct {
		Level string `yaml:"level"`
	}
	require.NoError(t, cfg.UnmarshalExtension("logging", &logCfg))
	assert.Equal(t, "warn", logCfg.Level)
}

func TestLoad_NotFound(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "pulse.yml"))
	assert.True(t, errors.Is(err, errors.ErrCodeConfigNotFound))
}

func TestFindConfigFile(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	_, err := FindConfigFile(nested)
	assert.True(t, errors.Is(err, errors.ErrCodeConfigNotFound))

	path := filepath.Join(root, ".pulse.yml")
	require.NoError(t, os.WriteFile(path, []byte("interval: 2s\n"), 0644))

	found, err := FindConfigFile(nested)
	require.NoError(t, err)
	assert.Equal(t, path, found)
}

func TestRedacted(t *testing.T) {
	cfg := &Config{Token: "s3cret", Target: "https://x.example.com"}
	red := cfg.Redacted()
	assert.Equal(t, "********", red.Token)
	assert.Equal(t, "s3cret", cfg.Token, "original is untouched")
}

func TestGenerateSchema(t *testing.T) {
	data, err := GenerateSchema()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"transport"`)
	assert.Contains(t, string(data), `"websocket"`)
	assert.NotContains(t, string(data), "Extensions")
}
