package display

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/harrison/docscheck/internal/models"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Files      []string // Related files (optional)
	Suggestion string   // Action to take (optional)
}

// Display shows a formatted warning in yellow
func (w Warning) Display(out io.Writer) {
	var b strings.Builder

	b.WriteString("\x1b[33m")
	b.WriteString("⚠️  Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		for _, line := range strings.Split(w.Message, "\n") {
			b.WriteString("    ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if len(w.Files) > 0 {
		if len(w.Files) == 1 {
			b.WriteString("    Affected file:\n")
		} else {
			b.WriteString("    Affected files:\n")
		}
		for i, file := range w.Files {
			fmt.Fprintf(&b, "      %d. %s\n", i+1, file)
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	b.WriteString("\x1b[0m")
	fmt.Fprint(out, b.String())
}

// WarnLiveDisabled builds the warning shown when only live checks were
// selected and live mode is off.
func WarnLiveDisabled(envVar string, ids []string) Warning {
	return Warning{
		Title:      "Live checks disabled",
		Message:    fmt.Sprintf("%d selected checks need a real build and were skipped", len(ids)),
		Suggestion: fmt.Sprintf("Set %s=1 or pass --live to run them", envVar),
	}
}

// WarnCheckFailed builds the warning for a failed check whose failure is
// attributed to files. Paths are shown relative to root.
func WarnCheckFailed(result models.CheckResult, root string) Warning {
	return Warning{
		Title:      fmt.Sprintf("%s failed", result.ID),
		Message:    result.Message,
		Files:      RelativeFiles(root, result.Files),
		Suggestion: fmt.Sprintf("Fix the files above, then rerun: docscheck run %s", result.ID),
	}
}

// RelativeFiles rewrites absolute paths under root as root-relative paths
// for display. Paths outside root are returned unchanged.
func RelativeFiles(root string, files []string) []string {
	out := make([]string, len(files))
	for i, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil || strings.HasPrefix(rel, "..") {
			out[i] = f
			continue
		}
		out[i] = rel
	}
	return out
}
