package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/subview/internal/config"
)

// redacted replaces secrets in printed configuration.
const redacted = "********"

// NewConfigInitCmd creates the config init command for initializing configuration.
// With --config it writes that file; otherwise $SUBVIEW_HOME/config.yaml, or
// config.yaml inside the project .subview directory when one is resolved.
func NewConfigInitCmd() *cobra.Command {
	var (
		force  bool
		global bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates a new configuration file with default values.

When a project directory is given with --project-dir or SUBVIEW_PROJECT_DIR,
the file is created at $PROJECT/.subview/config.yaml. Use --global to write
the user configuration even then. The API token is never written; set
SUBVIEW_API_TOKEN instead.`,
		Example: `  # Create the user configuration
  subview config init

  # Create configuration, overwriting existing
  subview config init --force

  # Create a project overlay
  subview config init --project-dir .`,
		Annotations: map[string]string{annotationNoConfig: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, project, err := initTarget(cmd, global)
			if err != nil {
				return err
			}
			if err = initConfig(cmd, path, force); err != nil {
				return err
			}
			if !project {
				return nil
			}
			created, err := config.EnsureGitignore(filepath.Dir(path))
			if err != nil {
				return fmt.Errorf("failed to create .gitignore: %w", err)
			}
			if created {
				cmd.Printf("Created .gitignore to keep logs out of version control\n")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")
	cmd.Flags().BoolVar(&global, "global", false, "write the user configuration even when a project is resolved")

	return cmd
}

// initTarget picks the file config init writes and reports whether it is a
// project overlay.
func initTarget(cmd *cobra.Command, global bool) (string, bool, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path, false, nil
	}
	if !global {
		projectFlag, _ := cmd.Flags().GetString("project-dir")
		if dir := config.ResolveProjectDir(cmd.Context(), projectFlag, ""); dir != "" {
			return filepath.Join(dir, "config.yaml"), true, nil
		}
	}
	dir, err := config.GetConfigDir()
	if err != nil {
		return "", false, err
	}
	return filepath.Join(dir, "config.yaml"), false, nil
}

func initConfig(cmd *cobra.Command, path string, force bool) error {
	if !force {
		_, err := os.Stat(path)
		if err == nil {
			return errors.New("configuration file already exists, use --force to overwrite")
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("cannot access config path %s: %w", path, err)
		}
	}

	if err := config.Default().SaveTo(path); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	cmd.Printf("Configuration initialized at %s\n", path)
	return nil
}

// NewConfigShowCmd creates the config show command.
func NewConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Long: `Prints the configuration after the config file, any project overlay and
SUBVIEW_* environment overrides are applied. The API token is masked.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := *config.GetGlobalConfig()
			if cfg.API.Token != "" {
				cfg.API.Token = redacted
			}
			data, err := yaml.Marshal(&cfg)
			if err != nil {
				return fmt.Errorf("marshalling config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
