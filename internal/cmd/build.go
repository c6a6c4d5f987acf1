package cmd

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harrison/docscheck/internal/builder"
	"github.com/harrison/docscheck/internal/display"
	"github.com/harrison/docscheck/internal/logger"
)

// ErrBuildFailed is returned by the build command when any format failed.
var ErrBuildFailed = errors.New("documentation build failed")

// NewBuildCommand creates the build command
func NewBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [format]...",
		Short: "Build the documentation",
		Long: `Build the documentation with the configured build tool.

With no arguments every configured builder format is built, html first.
Builds always run; they are not gated by TEST_DOCS.

Examples:
  docscheck build                # Every configured format
  docscheck build html           # One format
  docscheck build --strict html  # Warnings become errors
  docscheck build --clean        # Clean the build root first`,
		RunE: runBuild,
	}

	cmd.Flags().Bool("strict", false, "Treat warnings as errors")
	cmd.Flags().Bool("clean", false, "Clean the build directory before building")

	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	reg, cfg, err := loadProject(cmd)
	if err != nil {
		return err
	}

	formats := args
	if len(formats) == 0 {
		formats = reg.Formats()
	}
	strict, _ := cmd.Flags().GetBool("strict")
	clean, _ := cmd.Flags().GetBool("clean")

	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	log := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	b := newBuilder(reg, cfg, log)

	if clean {
		result, err := b.Clean(ctx)
		if err != nil {
			return fmt.Errorf("clean: %w", err)
		}
		if !result.Succeeded() {
			return fmt.Errorf("%w: clean exited with status %d\n%s", ErrBuildFailed, result.ExitCode, result.Summary(20))
		}
	}

	progress := display.NewProgressIndicator(out, len(formats))
	progress.Start()

	for _, format := range formats {
		progress.Step(format)

		var result *builder.Result
		if strict {
			result, err = b.BuildStrict(ctx, format)
		} else {
			result, err = b.Build(ctx, format)
		}
		if err != nil {
			progress.Fail(format, err.Error())
			continue
		}
		if !result.Succeeded() {
			progress.Fail(format, fmt.Sprintf("exit status %d", result.ExitCode))
			log.LogError(fmt.Sprintf("%s build output:\n%s", format, result.Summary(20)))
			continue
		}
		progress.Done(format, result.Duration)
		log.LogDebug(fmt.Sprintf("%s built into %s", format, result.OutputDir))
	}
	progress.Complete()

	if n := progress.Failed(); n > 0 {
		return fmt.Errorf("%w: %d of %d formats", ErrBuildFailed, n, len(formats))
	}
	return nil
}
