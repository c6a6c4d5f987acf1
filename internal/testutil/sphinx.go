package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/harrison/docscheck/internal/builder"
)

// FakeSphinx is a builder.CommandRunner that imitates sphinx-build: html
// builds write the site fixture, linkcheck writes output.txt, other
// builders write one file and -M clean empties the build root.
type FakeSphinx struct {
	Site SiteOptions
	// ExitCodes overrides the exit status per builder ("clean" for -M clean)
	ExitCodes map[string]int
	// Stderr is returned per builder
	Stderr map[string]string
	// BrokenLinks are reported by the linkcheck builder
	BrokenLinks []string
	// NoOutput lists builders that exit without writing anything
	NoOutput map[string]bool
	// Err is returned from every call instead of running
	Err error

	mu    sync.Mutex
	calls [][]string
}

var _ builder.CommandRunner = (*FakeSphinx)(nil)

// Run implements builder.CommandRunner.
func (f *FakeSphinx) Run(ctx context.Context, dir string, name string, args ...string) (*builder.Output, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("interrupted: %w", err)
	}

	format, target := parseArgs(args)
	if format == "" || target == "" {
		return &builder.Output{Stderr: "usage: sphinx-build\n", ExitCode: 2}, nil
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(dir, target)
	}

	if !f.NoOutput[format] {
		if err := f.produce(format, target); err != nil {
			return nil, err
		}
		if doctrees := doctreeDir(args); doctrees != "" {
			if !filepath.IsAbs(doctrees) {
				doctrees = filepath.Join(dir, doctrees)
			}
			if err := writeFile(filepath.Join(doctrees, "environment.pickle"), "doctree cache\n"); err != nil {
				return nil, err
			}
		}
	}

	stdout := fmt.Sprintf("Running Sphinx\nbuild finished, %s written.\n", format)
	stderr := f.Stderr[format]
	return &builder.Output{
		Stdout:   stdout,
		Stderr:   stderr,
		Combined: stdout + stderr,
		ExitCode: f.ExitCodes[format],
	}, nil
}

// Calls returns every recorded command line.
func (f *FakeSphinx) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.calls...)
}

// Builds counts the calls for format.
func (f *FakeSphinx) Builds(format string) int {
	n := 0
	for _, call := range f.Calls() {
		if got, _ := parseArgs(call[1:]); got == format {
			n++
		}
	}
	return n
}

func (f *FakeSphinx) produce(format, target string) error {
	switch format {
	case "clean":
		entries, err := os.ReadDir(target)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		for _, e := range entries {
			if err := os.RemoveAll(filepath.Join(target, e.Name())); err != nil {
				return err
			}
		}
		return nil
	case "html":
		return writeSite(target, f.Site)
	case "linkcheck":
		var report strings.Builder
		for _, link := range f.BrokenLinks {
			fmt.Fprintf(&report, "index.rst:1: [broken] %s: 404 Client Error\n", link)
		}
		return writeFile(filepath.Join(target, "output.txt"), report.String())
	default:
		return writeFile(filepath.Join(target, "index."+format), format+" output\n")
	}
}

// doctreeDir returns the -d argument, where sphinx-build caches doctrees.
func doctreeDir(args []string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == "-d" {
			return args[i+1]
		}
	}
	return ""
}

// parseArgs returns the builder name and output path of a sphinx-build
// command line. -M clean yields ("clean", build root).
func parseArgs(args []string) (string, string) {
	for i := 0; i < len(args)-1; i++ {
		switch args[i] {
		case "-M":
			return args[i+1], args[len(args)-1]
		case "-b":
			return args[i+1], args[len(args)-1]
		}
	}
	return "", ""
}
