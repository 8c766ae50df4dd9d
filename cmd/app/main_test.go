package main

import (
	"bytes"
	"log/slog"
	"lox/internal/util"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigWarningsGoToConfiguredLog(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	dir := t.TempDir()
	logPath := filepath.Join(dir, "logs", "lox.log")
	w := setupLogging("warn", logPath)
	defer w.Close()

	cfgPath := filepath.Join(dir, "lox.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("prompt = \"$ \"\nbogus = 1\n"), 0o644))
	configFile = cfgPath
	t.Cleanup(func() { configFile = "" })

	config, err := loadConfiguration()
	require.NoError(t, err)
	assert.Equal(t, "$ ", config.Prompt)
	assert.Equal(t, Version, config.Version)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"unknown config keys"`)
	assert.Contains(t, string(data), `"level":"WARN"`)
}

func TestPrintVersionUsesConfiguration(t *testing.T) {
	var out bytes.Buffer
	printVersion(&out, util.Configuration{Version: "1.2.3", BuildDate: "2024-05-01", Commit: "abc123"})

	assert.Equal(t, "lox version 'v1.2.3' 2024-05-01 abc123\n", out.String())
}

func TestLogLevelFromString(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logLevelFromString("debug"))
	assert.Equal(t, slog.LevelWarn, logLevelFromString("WARN"))
	assert.Equal(t, slog.LevelError, logLevelFromString("bogus"))
}
