package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	p := Defaults()
	assert.Equal(t, DefaultBuildDir, p.BuildDir)
	assert.Equal(t, DefaultOptLevel, p.OptLevel)
	assert.Equal(t, DefaultCacheBackend, p.CacheBackend)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "missing-vexc.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), p)
}

func TestLoadOverlaysOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vexc.yaml")
	content := "sourceRoot: ./src\ncacheBackend: redis\ncache:\n  redisAddr: localhost:6379\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "./src", p.SourceRoot)
	assert.Equal(t, "redis", p.CacheBackend)
	assert.Equal(t, "localhost:6379", p.Cache.RedisAddr)
	// Unset fields keep their package defaults.
	assert.Equal(t, DefaultBuildDir, p.BuildDir)
	assert.Equal(t, DefaultOptLevel, p.OptLevel)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vexc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sourceRoot: [unterminated"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
