package cmd

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harrison/docscheck/internal/checks"
	"github.com/harrison/docscheck/internal/registry"
	"github.com/harrison/docscheck/internal/watch"
)

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [category|check-id]...",
		Short: "Rerun checks when documentation sources change",
		Long: `Run the selected checks, then run them again every time a file under
the documentation source directory changes. Build output is not watched.

Stop with Ctrl-C.

Examples:
  docscheck watch                  # All checks, live ones skipped
  docscheck watch content static   # Only fast checks
  docscheck watch --live build     # Rebuild on every change`,
		RunE: runWatch,
	}

	cmd.Flags().Duration("debounce", watch.DefaultDebounceDelay, "Wait this long after the last change before rerunning")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	reg, cfg, err := loadProject(cmd)
	if err != nil {
		return err
	}

	selected, err := checks.Select(checks.All(), args...)
	if err != nil {
		return err
	}

	log, closeLog, err := newRunLogger(cmd, reg, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	delay, _ := cmd.Flags().GetDuration("debounce")
	docs := reg.MustPathFor(registry.Docs)
	w, err := watch.New(docs, []string{reg.MustPathFor(registry.Build)}, delay)
	if err != nil {
		return fmt.Errorf("watch %s: %w", docs, err)
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := checks.Options{Live: cfg.Live}
	runOnce := func() {
		// a fresh Env so every run rebuilds instead of reusing the last html build
		env := checks.NewEnv(reg, newBuilder(reg, cfg, log), log)
		checks.Run(ctx, env, selected, opts)
	}

	runOnce()
	log.LogInfo(fmt.Sprintf("Watching %s for changes (Ctrl-C to stop)", docs))

	for {
		select {
		case <-ctx.Done():
			return nil
		case batch := <-w.Batches():
			log.LogInfo(fmt.Sprintf("%s changed, rerunning checks", describeBatch(docs, batch.Paths)))
			runOnce()
		case err := <-w.Errors():
			log.LogWarn(fmt.Sprintf("Watch error: %v", err))
		}
	}
}

// describeBatch names the changed file, or counts them when there are
// several.
func describeBatch(root string, paths []string) string {
	if len(paths) == 1 {
		if rel, err := filepath.Rel(root, paths[0]); err == nil {
			return rel
		}
		return paths[0]
	}
	return fmt.Sprintf("%d files", len(paths))
}
