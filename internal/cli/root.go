// Package cli implements the subview command line.
package cli

import (
	"errors"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/subview/internal/config"
	"github.com/rshade/subview/internal/logging"
)

// annotationNoConfig marks commands that must run without a readable config file.
const annotationNoConfig = "subview/no-config"

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of f, or 0 when f is not a terminal.
func terminalWidth(f *os.File) int {
	if !isTerminal(f) {
		return 0
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the subview CLI.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:           "subview",
		Short:         "Subscription detail viewer",
		Long:          "subview loads a subscription and its dependent sections from the subscription service",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(cmd); err != nil {
				return err
			}
			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return cleanupLogging(logResult)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "config file (default $SUBVIEW_HOME/config.yaml)")
	cmd.PersistentFlags().String("project-dir", "", "directory holding a project .subview/config.yaml overlay")
	cmd.AddCommand(NewShowCmd(), NewWatchCmd(), newConfigCmd())

	return cmd
}

const rootCmdExample = `  # Print a subscription with every section loaded
  subview show 5f0c6d3e-2a51-4d8e-9b7a-0c1f2e3d4a5b

  # Same, through the profile routes, as JSON
  subview show 5f0c6d3e-2a51-4d8e-9b7a-0c1f2e3d4a5b --variant profile --output json

  # Follow a subscription interactively
  subview watch 5f0c6d3e-2a51-4d8e-9b7a-0c1f2e3d4a5b

  # Write the default configuration
  subview config init`

// loadConfig installs the global config: the --config file when given,
// otherwise the user file with any project overlay.
func loadConfig(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && cmd.Annotations[annotationNoConfig] != "" {
			cfg := config.Default()
			cfg.ApplyEnv()
			config.SetGlobalConfig(cfg)
			return nil
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		config.SetGlobalConfig(cfg)
		return nil
	}

	projectFlag, _ := cmd.Flags().GetString("project-dir")
	wd, _ := os.Getwd()
	projectDir := config.ResolveProjectDir(cmd.Context(), projectFlag, wd)
	config.SetGlobalConfig(config.NewWithProjectDir(cmd.Context(), projectDir))
	return nil
}

// newConfigCmd creates the config command group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigShowCmd(), NewConfigValidateCmd())
	return cmd
}
