package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jsrun.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.True(t, cfg.Server.Compress)
	assert.False(t, cfg.Server.StrictStatus)
	assert.Equal(t, 5000, cfg.Engine.ExecutionTimeoutMS)
	assert.Equal(t, 1000, cfg.Engine.MaxLogEntries)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, 50, cfg.History.RecentLimit)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: "127.0.0.1:9000"
  strict_status: true
engine:
  execution_timeout_ms: 250
  console: true
  v8_flags: ["--max-lazy"]
history:
  enabled: true
  db_path: /tmp/runs.db
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.True(t, cfg.Server.StrictStatus)
	assert.Equal(t, []string{"--max-lazy"}, cfg.Engine.V8Flags)
	assert.True(t, cfg.History.Enabled)

	ec := cfg.EngineConfig()
	assert.Equal(t, 250, ec.ExecutionTimeout)
	assert.True(t, ec.Console)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: \":1\"\n")
	t.Setenv("JSRUN_SERVER_ADDR", ":7777")
	t.Setenv("JSRUN_ENGINE_EXECUTION_TIMEOUT_MS", "42")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.Server.Addr)
	assert.Equal(t, 42, cfg.Engine.ExecutionTimeoutMS)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, "engine:\n  execution_timeout_ms: -5\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "validation")

	path = writeConfig(t, "server:\n  max_body_bytes: 0\n")
	_, err = Load(path)
	assert.ErrorContains(t, err, "MaxBodyBytes")
}
