package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/fidx/pkg/fidx/config"
)

// isolate points config discovery at empty directories so the host's real
// config files cannot leak into the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Empty(t, cfg.Roots)
	assert.True(t, cfg.BlockSymlinks)
	assert.Equal(t, config.DefaultStaleRunAge, cfg.StaleRunAge)
	assert.Equal(t, config.DefaultHashMaxSize, cfg.Hash.MaxSize)
	assert.Equal(t, config.DefaultLogLevel, cfg.Logging.Level)
	assert.NotEmpty(t, cfg.Store.Path)
	assert.Equal(t, "info", cfg.Logging.Components["scanner"])
}

func TestLoadFromFile(t *testing.T) {
	isolate(t)

	content := `
roots:
  - /srv/data
  - /srv/media
block_symlinks: false
stale_run_age: 48h
hash:
  max_size: 4 MiB
logging:
  level: debug
`
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(content), 0o644))

	cfg, err := config.Load(cfgFile)
	require.NoError(t, err)

	assert.Equal(t, []string{"/srv/data", "/srv/media"}, cfg.Roots)
	assert.False(t, cfg.BlockSymlinks)
	assert.Equal(t, 48*time.Hour, cfg.StaleRunAge)
	assert.Equal(t, "4 MiB", cfg.Hash.MaxSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("FIDX_BLOCK_SYMLINKS", "false")
	t.Setenv("FIDX_HASH_MAX_SIZE", "2 MiB")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.False(t, cfg.BlockSymlinks)
	assert.Equal(t, "2 MiB", cfg.Hash.MaxSize)
}

func TestLoadExpandsRootTilde(t *testing.T) {
	isolate(t)

	content := "roots:\n  - ~/indexed\n"
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(content), 0o644))

	cfg, err := config.Load(cfgFile)
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	require.Len(t, cfg.Roots, 1)
	assert.Equal(t, filepath.Join(home, "indexed"), cfg.Roots[0])
}

func TestHashMaxSize(t *testing.T) {
	cfg := &config.Config{Hash: config.HashConfig{MaxSize: "1 MiB"}}
	n, err := cfg.HashMaxSize()
	require.NoError(t, err)
	assert.Equal(t, int64(1048576), n)

	cfg.Hash.MaxSize = "not a size"
	_, err = cfg.HashMaxSize()
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := config.ExpandPath("~/sub/dir")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "sub", "dir"), got)

	got, err = config.ExpandPath("/absolute/path")
	require.NoError(t, err)
	assert.Equal(t, "/absolute/path", got)
}
