package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pysymtab/engine/resolver"
)

func TestDiscoverModulesBuildsDottedNamesFromDirectoryTree(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "top.py"), []byte(""), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg", "__init__.py"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg", "sub.py"), []byte(""), 0o644))

	names, err := discoverModules(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"pkg", "pkg.sub", "top"}, names)
}

func TestParsePythonVersionPrefersConfigOverFlag(t *testing.T) {
	v := parsePythonVersion("3.8", resolver.Version{Major: 3, Minor: 12})
	assert.Equal(t, resolver.Version{Major: 3, Minor: 12}, v)
}

func TestParsePythonVersionParsesFlagWhenConfigEmpty(t *testing.T) {
	v := parsePythonVersion("3.9", resolver.Version{})
	assert.Equal(t, resolver.Version{Major: 3, Minor: 9}, v)
}

func TestParsePythonVersionFallsBackOnMalformedFlag(t *testing.T) {
	v := parsePythonVersion("not-a-version", resolver.Version{})
	assert.Equal(t, resolver.Version{Major: 3, Minor: 11}, v)
}

func TestOSFileSystemMatchesDiskState(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.py")
	require.NoError(t, os.WriteFile(file, []byte(""), 0o644))

	fs := osFileSystem{}
	assert.True(t, fs.IsDir(dir))
	assert.False(t, fs.IsDir(file))
	assert.True(t, fs.IsFile(file))
	assert.False(t, fs.IsFile(dir))
}
