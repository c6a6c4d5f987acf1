// Package display formats user-facing terminal output: progress for
// multi-format builds and warnings for failed checks or disabled live mode.
//
//	progress := display.NewProgressIndicator(os.Stdout, len(formats))
//	progress.Start()
//	for _, f := range formats {
//	    progress.Step(f)
//	}
//	progress.Complete()
//
// Warnings group a title with optional detail, affected files and a
// suggestion:
//
//	display.Warning{
//	    Title:      "static.files failed",
//	    Message:    "file docs/_static/theme.js: empty",
//	    Files:      []string{"docs/_static/theme.js"},
//	    Suggestion: "Add content to the file or remove it from required_files.static_files",
//	}.Display(os.Stderr)
package display
