package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vikashloomba/mcp-prober-go/pkg/mcpprobe"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestProbeCommandReportsUnreachableServer(t *testing.T) {
	cfgPath := writeConfig(t, "servers.json",
		`{"mcpServers": {"dead": {"url": "http://127.0.0.1:1/mcp"}}}`)

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"probe", "--config", cfgPath, "--timeout", "2s", "--log-level", "error"})

	require.NoError(t, cmd.Execute())

	var results map[string]mcpprobe.ProbeResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &results), "stdout: %s", out.String())
	require.Contains(t, results, "dead")
	assert.False(t, results["dead"].OK)
	assert.NotEmpty(t, results["dead"].Error)
}

func TestProbeCommandUnknownServerID(t *testing.T) {
	cfgPath := writeConfig(t, "servers.json",
		`{"mcpServers": {"real": {"command": "true"}}}`)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"probe", "--config", cfgPath, "--log-level", "error", "ghost"})

	require.NoError(t, cmd.Execute())

	var results map[string]mcpprobe.ProbeResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "MCP not found", results["ghost"].Error)
}

func TestProbeCommandRejectsMissingConfig(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"probe"})

	assert.Error(t, cmd.Execute())
}

func TestProbeCommandRejectsEmptyConfig(t *testing.T) {
	cfgPath := writeConfig(t, "servers.json", `{"mcpServers": {}}`)

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"probe", "--config", cfgPath})

	assert.ErrorContains(t, cmd.Execute(), "no servers configured")
}

func TestNewLogHandlerLevels(t *testing.T) {
	ctx := t.Context()

	handler := newLogHandler("debug", false, &bytes.Buffer{})
	assert.True(t, handler.Enabled(ctx, slog.LevelDebug))

	handler = newLogHandler("error", false, &bytes.Buffer{})
	assert.False(t, handler.Enabled(ctx, slog.LevelWarn))
	assert.True(t, handler.Enabled(ctx, slog.LevelError))

	handler = newLogHandler("warn", true, &bytes.Buffer{})
	assert.False(t, handler.Enabled(ctx, slog.LevelInfo))
	assert.True(t, handler.Enabled(ctx, slog.LevelWarn))
}
