package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverRepoConfig_FindsInStartDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "ctxpack.toml")
	require.NoError(t, os.WriteFile(path, []byte("[profile.default]\n"), 0o644))

	found, err := DiscoverRepoConfig(dir)

	require.NoError(t, err)
	resolvedDir, _ := filepath.EvalSymlinks(dir)
	assert.Equal(t, filepath.Join(resolvedDir, "ctxpack.toml"), found)
}

func TestDiscoverRepoConfig_FindsInParentDir(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "ctxpack.toml"), []byte("[profile.default]\n"), 0o644))
	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	found, err := DiscoverRepoConfig(sub)

	require.NoError(t, err)
	resolvedRoot, _ := filepath.EvalSymlinks(root)
	assert.Equal(t, filepath.Join(resolvedRoot, "ctxpack.toml"), found)
}

func TestDiscoverRepoConfig_StopsAtGitBoundary(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	sub := filepath.Join(root, "pkg")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	// No ctxpack.toml anywhere; a parent above root has none relevant either.

	found, err := DiscoverRepoConfig(sub)

	require.NoError(t, err)
	assert.Equal(t, "", found)
}

func TestDiscoverRepoConfig_NoConfigAnywhere(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	found, err := DiscoverRepoConfig(dir)

	require.NoError(t, err)
	assert.Equal(t, "", found)
}

func TestDiscoverGlobalConfig_MissingReturnsEmptyNoError(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", dir)
	}

	path, err := DiscoverGlobalConfig()

	require.NoError(t, err)
	assert.Equal(t, "", path)
}

func TestDiscoverGlobalConfig_FoundViaXDG(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG_CONFIG_HOME is not consulted on windows")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	ctxpackDir := filepath.Join(dir, "ctxpack")
	require.NoError(t, os.MkdirAll(ctxpackDir, 0o755))
	configPath := filepath.Join(ctxpackDir, "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("[profile.default]\n"), 0o644))

	path, err := DiscoverGlobalConfig()

	require.NoError(t, err)
	assert.Equal(t, configPath, path)
}
