package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harrison/docscheck/internal/checks"
	"github.com/harrison/docscheck/internal/config"
	"github.com/harrison/docscheck/internal/display"
	"github.com/harrison/docscheck/internal/filelock"
	"github.com/harrison/docscheck/internal/history"
	"github.com/harrison/docscheck/internal/models"
)

// ErrChecksFailed is returned by the run command when any check failed.
var ErrChecksFailed = errors.New("documentation checks failed")

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [category|check-id]...",
		Short: "Run documentation checks",
		Long: `Run documentation checks against the project.

With no arguments every check runs, category by category in a fixed order.
Arguments select categories (build, configuration, static, content, api,
search, i18n) or single checks by ID (e.g. static.files).

Live checks build the documentation with sphinx-build and only run when
TEST_DOCS is set or --live is passed.

Examples:
  docscheck run                          # All checks, live ones skipped
  TEST_DOCS=1 docscheck run              # All checks including builds
  docscheck run static content           # Two categories
  docscheck run --live build.html        # One live check
  docscheck run --report report.json     # Also write a JSON report`,
		RunE: runChecks,
	}

	cmd.Flags().String("report", "", "Write the run report as JSON to this file")
	cmd.Flags().Bool("record", false, "Record the run in the history database even if history is disabled")

	return cmd
}

// runChecks implements the run command logic
func runChecks(cmd *cobra.Command, args []string) error {
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

	if !cfg.Live {
		if ids := liveCheckIDs(selected); len(ids) > 0 && len(ids) == len(selected) {
			display.WarnLiveDisabled(config.LiveEnvVar, ids).Display(cmd.ErrOrStderr())
		}
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env := checks.NewEnv(reg, newBuilder(reg, cfg, log), log)
	report := checks.Run(ctx, env, selected, checks.Options{Live: cfg.Live})

	if reportPath, _ := cmd.Flags().GetString("report"); reportPath != "" {
		if err := writeReport(cmd, reportPath, report); err != nil {
			return err
		}
		log.LogInfo(fmt.Sprintf("Report written to %s", reportPath))
	}

	record, _ := cmd.Flags().GetBool("record")
	if cfg.History.Enabled || record {
		dbPath := resolvePath(reg.RootPath(), cfg.History.DBPath)
		if err := recordRun(cmd, dbPath, report); err != nil {
			// history is advisory; the check outcome stands
			log.LogWarn(fmt.Sprintf("Failed to record run in %s: %v", dbPath, err))
		} else {
			log.LogDebug(fmt.Sprintf("Recorded run %s in %s", report.RunID, dbPath))
		}
	}

	for _, failure := range report.Failures() {
		if len(failure.Files) > 0 {
			display.WarnCheckFailed(failure, reg.RootPath()).Display(cmd.ErrOrStderr())
		}
	}

	if report.HasFailures() {
		return fmt.Errorf("%w: %d of %d", ErrChecksFailed, report.Count(models.StatusFail), report.Total())
	}
	return nil
}

// liveCheckIDs returns the IDs of the live checks in selected.
func liveCheckIDs(selected []checks.Check) []string {
	var ids []string
	for _, c := range selected {
		if c.Live {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// writeReport writes report as indented JSON, replacing path atomically.
func writeReport(cmd *cobra.Command, path string, report *models.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := filelock.LockAndWrite(commandContext(cmd), path, append(data, '\n')); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func recordRun(cmd *cobra.Command, dbPath string, report *models.Report) error {
	store, err := history.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.RecordRun(commandContext(cmd), report)
}
