package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/docscheck/internal/checks"
)

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [category|check-id]...",
		Short: "List available checks",
		Long: `List checks in run order, grouped by category.

Live checks, which need a real build, are marked [live].`,
		RunE: runList,
	}

	cmd.Flags().Bool("live-only", false, "List only live checks")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	selected, err := checks.Select(checks.All(), args...)
	if err != nil {
		return err
	}
	liveOnly, _ := cmd.Flags().GetBool("live-only")

	out := cmd.OutOrStdout()
	bold := color.New(color.Bold)
	live := color.New(color.FgYellow)

	width := 0
	for _, c := range selected {
		if len(c.ID) > width {
			width = len(c.ID)
		}
	}

	category := ""
	listed := 0
	for _, c := range selected {
		if liveOnly && !c.Live {
			continue
		}
		if c.Category != category {
			if category != "" {
				fmt.Fprintln(out)
			}
			category = c.Category
			bold.Fprintf(out, "%s\n", category)
		}
		marker := ""
		if c.Live {
			marker = live.Sprint(" [live]")
		}
		fmt.Fprintf(out, "  %-*s  %s%s\n", width, c.ID, c.Description, marker)
		listed++
	}

	if listed == 0 {
		fmt.Fprintln(out, "No checks selected")
	}
	return nil
}
