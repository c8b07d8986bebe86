package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigSetAndShow(t *testing.T) {
	setupTestEnv(t, newRouteHandler())
	path := filepath.Join(t.TempDir(), "arabah", "config.toml")

	res := runCLI(t, "--config", path, "config", "set", "cache_backend", "none")
	require.NoError(t, res.Err, res.Stderr)
	assert.Contains(t, res.Stdout, "Set cache_backend in "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `cache_backend = "none"`)

	// Without the env override the file value shows through.
	t.Setenv("ARABAH_CACHE_BACKEND", "")
	t.Setenv("ARABAH_SECRET_KEY", "shh")
	res = runCLI(t, "--config", path, "cfg", "show")
	require.NoError(t, res.Err, res.Stderr)
	assert.Regexp(t, `cache_backend\s+none`, res.Stdout)
	assert.Regexp(t, `secret_key\s+\*\*\*`, res.Stdout)
	assert.NotContains(t, res.Stdout, "shh")
}

func TestConfigShow_JSON(t *testing.T) {
	setupTestEnv(t, newRouteHandler())
	t.Setenv("ARABAH_PUBLISH_KEY", "pub")

	res := runCLI(t, "config", "show", "--json")
	require.NoError(t, res.Err, res.Stderr)
	assert.Contains(t, res.Stdout, `"publish_key": "***"`)
	assert.Contains(t, res.Stdout, `"cache_backend": "file"`)
}

func TestConfigSet_UnknownKey(t *testing.T) {
	setupTestEnv(t, newRouteHandler())

	res := runCLI(t, "config", "set", "languge", "ar")
	require.Error(t, res.Err)
	assert.Contains(t, res.Stderr, `unknown config key "languge", did you mean "language"?`)
}

func TestConfigSet_RequiresTwoArgs(t *testing.T) {
	setupTestEnv(t, newRouteHandler())

	res := runCLI(t, "config", "set", "language")
	require.Error(t, res.Err)
	assert.Equal(t, exitUsage, res.ExitCode())
}

func TestConfigPath(t *testing.T) {
	setupTestEnv(t, newRouteHandler())

	res := runCLI(t, "config", "path")
	require.NoError(t, res.Err)
	assert.Equal(t, os.Getenv("ARABAH_CONFIG"), strings.TrimSpace(res.Stdout))

	res = runCLI(t, "config", "path", "--config", "/tmp/other.toml")
	require.NoError(t, res.Err)
	assert.Equal(t, "/tmp/other.toml", strings.TrimSpace(res.Stdout))
}

func TestCachePathAndClear(t *testing.T) {
	setupTestEnv(t, newRouteHandler())
	dir := os.Getenv("ARABAH_CACHE_DIR")

	res := runCLI(t, "cache", "path")
	require.NoError(t, res.Err)
	assert.Equal(t, dir, strings.TrimSpace(res.Stdout))

	res = runCLI(t, "cache", "clear")
	require.NoError(t, res.Err, res.Stderr)
	assert.Contains(t, res.Stdout, "Cache cleared: "+dir)

	t.Setenv("ARABAH_CACHE_BACKEND", "none")
	res = runCLI(t, "cache", "clear", "--json")
	require.NoError(t, res.Err)
	assert.JSONEq(t, `{"ok":true,"backend":"none"}`, res.Stdout)
}
