package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/subview/internal/config"
)

func TestResolveProjectDir_FlagOverridesEnv(t *testing.T) {
	envDir := t.TempDir()
	flagDir := t.TempDir()
	t.Setenv(config.EnvProjectDir, envDir)

	got := config.ResolveProjectDir(context.Background(), flagDir, "/does/not/matter")

	assert.Equal(t, filepath.Join(flagDir, ".subview"), got)
	assert.True(t, filepath.IsAbs(got))
}

func TestResolveProjectDir_EnvVar(t *testing.T) {
	envDir := t.TempDir()
	t.Setenv(config.EnvProjectDir, envDir)

	got := config.ResolveProjectDir(context.Background(), "", "/does/not/matter")
	assert.Equal(t, filepath.Join(envDir, ".subview"), got)
}

func TestResolveProjectDir_NoDoubleAppend(t *testing.T) {
	t.Setenv(config.EnvProjectDir, "")
	dir := filepath.Join(t.TempDir(), ".subview")

	got := config.ResolveProjectDir(context.Background(), dir, "")
	assert.Equal(t, dir, got)
}

func TestResolveProjectDir_WalkUp(t *testing.T) {
	t.Setenv(config.EnvProjectDir, "")
	t.Setenv(config.EnvHome, t.TempDir())

	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".subview"), 0o755))
	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	got := config.ResolveProjectDir(context.Background(), "", sub)
	assert.Equal(t, filepath.Join(root, ".subview"), got)
}

func TestResolveProjectDir_NotFound(t *testing.T) {
	t.Setenv(config.EnvProjectDir, "")
	t.Setenv(config.EnvHome, t.TempDir())

	assert.Empty(t, config.ResolveProjectDir(context.Background(), "", ""))
}

func TestNewWithProjectDir(t *testing.T) {
	t.Setenv(config.EnvHome, t.TempDir())
	t.Setenv(config.EnvAPIURL, "")
	t.Setenv(config.EnvLogLevel, "")

	projectDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "config.yaml"), []byte(`
cache:
  capacity: 7
`), 0o600))

	cfg := config.NewWithProjectDir(context.Background(), projectDir)
	assert.Equal(t, 7, cfg.Cache.Capacity)
	assert.Equal(t, config.DefaultAPIURL, cfg.API.BaseURL)

	// Broken overlay falls back to the global config.
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "config.yaml"), []byte("{{{"), 0o600))
	cfg = config.NewWithProjectDir(context.Background(), projectDir)
	assert.Equal(t, config.DefaultCacheCapacity, cfg.Cache.Capacity)

	// No project directory behaves like New.
	cfg = config.NewWithProjectDir(context.Background(), "")
	assert.Equal(t, config.DefaultCacheCapacity, cfg.Cache.Capacity)
}
