package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/docscheck/internal/history"
	"github.com/harrison/docscheck/internal/models"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded check runs",
		Long: `Show runs recorded in the history database.

With no arguments the most recent runs are listed. With a run ID every
result of that run is shown. With --check the outcomes of one check across
runs are shown.

Runs are recorded when history.enabled is set in the config file or run is
given --record. --schema shows which schema migrations the database has.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistory,
	}

	cmd.Flags().Int("limit", 10, "Maximum number of entries to show (0 = all)")
	cmd.Flags().String("check", "", "Show the history of one check ID")
	cmd.Flags().Bool("schema", false, "Show the database path and applied schema migrations")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	reg, cfg, err := loadProject(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	dbPath := resolvePath(reg.RootPath(), cfg.History.DBPath)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(out, "No run history found\n")
		fmt.Fprintf(out, "Database path: %s\n", dbPath)
		return nil
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	ctx := commandContext(cmd)
	limit, _ := cmd.Flags().GetInt("limit")

	if schema, _ := cmd.Flags().GetBool("schema"); schema {
		return printSchema(cmd, store)
	}

	if checkID, _ := cmd.Flags().GetString("check"); checkID != "" {
		records, err := store.CheckHistory(ctx, checkID, limit)
		if err != nil {
			return err
		}
		printCheckHistory(out, checkID, records)
		return nil
	}

	if len(args) == 1 {
		results, err := store.RunResults(ctx, args[0])
		if err != nil {
			return err
		}
		printRunResults(out, args[0], results)
		return nil
	}

	runs, err := store.RecentRuns(ctx, limit)
	if err != nil {
		return err
	}
	printRuns(out, runs)
	return nil
}

func printSchema(cmd *cobra.Command, store *history.Store) error {
	ctx := commandContext(cmd)
	latest, err := store.LatestVersion(ctx)
	if err != nil {
		return err
	}
	versions, err := store.AppliedVersions(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Database path: %s\n", store.Path())
	fmt.Fprintf(out, "Schema version: %d\n", latest)
	for _, v := range versions {
		fmt.Fprintf(out, "  v%d  %s  %s\n", v.Version, v.AppliedAt.Local().Format("2006-01-02 15:04:05"), v.Description)
	}
	return nil
}

func statusText(s models.Status) string {
	switch s {
	case models.StatusPass:
		return color.GreenString(string(s))
	case models.StatusFail:
		return color.RedString(string(s))
	default:
		return color.YellowString(string(s))
	}
}

func printRuns(out io.Writer, runs []history.RunSummary) {
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return
	}
	fmt.Fprintf(out, "%-36s  %-19s  %5s  %5s  %5s  %5s  %s\n", "RUN", "STARTED", "TOTAL", "PASS", "FAIL", "SKIP", "MODE")
	for _, r := range runs {
		mode := "static"
		if r.Live {
			mode = "live"
		}
		fmt.Fprintf(out, "%-36s  %-19s  %5d  %5d  %5d  %5d  %s\n",
			r.RunID, r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Total, r.Passed, r.Failed, r.Skipped, mode)
	}
}

func printRunResults(out io.Writer, runID string, results []models.CheckResult) {
	fmt.Fprintf(out, "Run %s\n", runID)
	for _, r := range results {
		line := fmt.Sprintf("  %s %s", statusText(r.Status), r.ID)
		if r.Message != "" && r.Status != models.StatusPass {
			line += ": " + r.Message
		}
		fmt.Fprintln(out, line)
	}
}

func printCheckHistory(out io.Writer, checkID string, records []history.CheckRecord) {
	if len(records) == 0 {
		fmt.Fprintf(out, "No recorded results for %s\n", checkID)
		return
	}
	fmt.Fprintf(out, "History of %s\n", checkID)
	for _, rec := range records {
		line := fmt.Sprintf("  %s  %s  %s", rec.StartedAt.Local().Format("2006-01-02 15:04:05"), statusText(rec.Status), rec.RunID)
		if rec.Message != "" && rec.Status != models.StatusPass {
			line += ": " + rec.Message
		}
		fmt.Fprintln(out, line)
	}
}
