package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/subview/internal/config"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		Long: `Validates the effective configuration: the config file, any project overlay
and SUBVIEW_* environment overrides. The API URL, timeouts, page sizes, poll
interval, directory batch size and cache capacity are checked.`,
		Example: `  # Validate current configuration
  subview config validate

  # Validate and show detailed information
  subview config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg := config.GetGlobalConfig()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cmd.Printf("Configuration is valid\n")

	if verbose {
		printVerboseDetails(cmd, cfg)
	}

	return nil
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Config file: %s\n", cfg.Path())
	cmd.Printf("  API: %s (timeout %s)\n", cfg.API.BaseURL, cfg.API.Timeout)
	cmd.Printf("  Directory: %s\n", cfg.DirectoryBaseURL())
	cmd.Printf("  Variant: %s\n", cfg.Session.Variant)
	cmd.Printf("  Page size: %d (users %d)\n", cfg.Session.PageSize, cfg.Session.UsersPageSize)
	cmd.Printf("  Poll interval: %s\n", cfg.Session.PollInterval)
	cmd.Printf("  Directory batch size: %d\n", cfg.Session.DirectoryBatchSize)
	cmd.Printf("  Billing store capacity: %d\n", cfg.Cache.Capacity)
	cmd.Printf("  Output format: %s\n", cfg.Output.DefaultFormat)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	if cfg.Logging.File != "" {
		cmd.Printf("  Log file: %s\n", cfg.Logging.File)
	}
}
