package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return Load(flag.NewFlagSet("todo", flag.ContinueOnError), args)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(t)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.DataDir)
	assert.True(t, cfg.Notifications.Enabled)
	assert.Equal(t, time.Second, cfg.Notifications.Poll())
	assert.Equal(t, 8*time.Second, cfg.Notifications.Alert())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log_level = "DEBUG"
log_format = "json"
data_dir = "/tmp/todo-data"

[notifications]
enabled = false
poll_interval = "250ms"
alert_timeout = "3s"
`)

	cfg, err := load(t, "-config", path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "/tmp/todo-data", cfg.DataDir)
	assert.False(t, cfg.Notifications.Enabled)
	assert.Equal(t, 250*time.Millisecond, cfg.Notifications.Poll())
	assert.Equal(t, 3*time.Second, cfg.Notifications.Alert())
}

func TestLoadUserConfigDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "todo"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "todo", ConfigFileName), []byte(`log_level = "warn"`), 0644))
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg, err := Load(flag.NewFlagSet("todo", flag.ContinueOnError), nil)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `log_level = "warn"`)

	cfg, err := load(t, "-config", path, "-log-level", "error", "-data-dir", "/data")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "/data", cfg.DataDir)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad level", `log_level = "loud"`},
		{"bad format", `log_format = "xml"`},
		{"bad poll interval", "[notifications]\npoll_interval = \"soon\""},
		{"zero alert timeout", "[notifications]\nalert_timeout = \"0s\""},
		{"unknown key", `colour = "blue"`},
		{"invalid toml", `log_level = `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(t, "-config", writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestExplicitMissingConfigFails(t *testing.T) {
	_, err := load(t, "-config", filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
