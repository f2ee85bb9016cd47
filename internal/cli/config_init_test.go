package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/subview/internal/config"
)

func TestConfigInit_UserConfig(t *testing.T) {
	setupCLITest(t, "")
	home := os.Getenv(config.EnvHome)

	out, _, err := runCLI(t, "config", "init")
	require.NoError(t, err)

	path := filepath.Join(home, "config.yaml")
	assert.Contains(t, out, "Configuration initialized at "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultAPIURL, cfg.API.BaseURL)
	assert.Equal(t, 15, cfg.Session.UsersPageSize)
}

func TestConfigInit_ExistingRequiresForce(t *testing.T) {
	setupCLITest(t, "")
	path := filepath.Join(os.Getenv(config.EnvHome), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: https://old.test\n"), 0o600))

	_, _, err := runCLI(t, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = runCLI(t, "config", "init", "--force")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "old.test")
}

func TestConfigInit_ExplicitPath(t *testing.T) {
	setupCLITest(t, "")
	path := filepath.Join(t.TempDir(), "nested", "subview.yaml")

	_, _, err := runCLI(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestConfigInit_ProjectDir(t *testing.T) {
	setupCLITest(t, "")
	project := t.TempDir()

	out, _, err := runCLI(t, "config", "init", "--project-dir", project)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(project, ".subview", "config.yaml"))
	assert.FileExists(t, filepath.Join(project, ".subview", ".gitignore"))
	assert.Contains(t, out, "Created .gitignore")

	_, _, err = runCLI(t, "config", "init", "--project-dir", project, "--global")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(os.Getenv(config.EnvHome), "config.yaml"))
}

func TestConfigInit_NeverWritesToken(t *testing.T) {
	setupCLITest(t, "")
	t.Setenv(config.EnvAPIToken, "s3cret")

	_, _, err := runCLI(t, "config", "init")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(os.Getenv(config.EnvHome), "config.yaml"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "s3cret")
}

func TestConfigShow(t *testing.T) {
	setupCLITest(t, "https://api.acme.test/v2")
	t.Setenv(config.EnvAPIToken, "s3cret")

	out, _, err := runCLI(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "base_url: https://api.acme.test/v2")
	assert.Contains(t, out, "token: '********'")
	assert.NotContains(t, out, "s3cret")
}

func TestConfigShow_ProjectOverlay(t *testing.T) {
	setupCLITest(t, "")
	project := filepath.Join(t.TempDir(), ".subview")
	require.NoError(t, os.MkdirAll(project, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(project, "config.yaml"),
		[]byte("output:\n  default_format: json\n  currency: EUR\n"), 0o600))

	out, _, err := runCLI(t, "config", "show", "--project-dir", project)
	require.NoError(t, err)
	assert.Contains(t, out, "default_format: json")
	assert.Contains(t, out, "currency: EUR")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{name: "defaults", env: nil},
		{name: "invalid url", env: map[string]string{config.EnvAPIURL: "ftp://api.test"}, wantErr: true},
		{name: "poll interval seconds", env: map[string]string{config.EnvPollInterval: "30"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupCLITest(t, "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			out, _, err := runCLI(t, "config", "validate", "--verbose")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out, "Configuration is valid")
			assert.Contains(t, out, "Page size: 10 (users 15)")
		})
	}
}

func TestRoot_InvalidConfigFile(t *testing.T) {
	setupCLITest(t, "")
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unterminated"), 0o600))

	_, _, err := runCLI(t, "--config", path, "config", "show")
	require.Error(t, err)
}

func TestRoot_Subcommands(t *testing.T) {
	setupCLITest(t, "")

	out, _, err := runCLI(t, "--help")
	require.NoError(t, err)
	for _, name := range []string{"show", "watch", "config"} {
		assert.Contains(t, out, name)
	}

	out, _, err = runCLI(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "test")
}
