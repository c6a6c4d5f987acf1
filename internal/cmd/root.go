package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for docscheck
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docscheck",
		Short: "Documentation test suite for Sphinx projects",
		Long: `Docscheck verifies a Sphinx documentation project: that it builds cleanly
in every configured format and that its configuration, static assets,
content, API reference, search and translations are in place.

Checks that need a real build (live checks) only run when TEST_DOCS is set
to a non-empty value or --live is passed; otherwise they are reported as
skipped.`,
		Version: Version,
		// Silence usage and errors; main prints the error once
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("root", "", "Project root (default: nearest directory with docscheck.yaml, docscheck.toml or .docscheck-root)")
	cmd.PersistentFlags().String("config", "", "Path to config file (default: <root>/docscheck.yaml)")
	cmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error (overrides config)")
	cmd.PersistentFlags().Bool("live", false, "Run live checks (same as TEST_DOCS=1)")

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewListCommand())
	cmd.AddCommand(NewRegistryCommand())
	cmd.AddCommand(NewBuildCommand())
	cmd.AddCommand(NewHistoryCommand())
	cmd.AddCommand(NewWatchCommand())

	return cmd
}
