package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsZeroValue(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, InterpreterConfiguration{}, cfg)
}

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "version:\n  major: 3\n  minor: 11\nsearch_paths:\n  - /src\nstubs_exclusive: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Version.Major)
	assert.Equal(t, 11, cfg.Version.Minor)
	assert.Equal(t, []string{"/src"}, cfg.SearchPaths)
	assert.True(t, cfg.StubsExclusive)
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("interpreter_path: /usr/bin/python3\n"), 0o600))

	t.Setenv(envInterpreterPath, "/opt/python/bin/python3")
	t.Setenv(envSearchPaths, "/a:/b")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/python/bin/python3", cfg.InterpreterPath)
	assert.Equal(t, []string{"/a", "/b"}, cfg.SearchPaths)
}
