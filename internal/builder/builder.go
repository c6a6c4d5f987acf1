// Package builder runs the documentation build tool and captures what it
// reports.
//
// Builds against one build root are serialized with a lock file next to the
// build directory, so two docscheck processes never write the same output
// tree at once.
package builder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/harrison/docscheck/internal/config"
	"github.com/harrison/docscheck/internal/filelock"
	"github.com/harrison/docscheck/internal/registry"
)

// progressLine matches sphinx-build status lines such as
// "reading sources... [ 50%] errors", which name documents, not problems.
var progressLine = regexp.MustCompile(`\[\s*\d+%\]`)

// ErrBuildTimeout indicates the build exceeded the configured timeout.
var ErrBuildTimeout = errors.New("build timed out")

// Builder runs documentation builds.
type Builder interface {
	Build(ctx context.Context, format string) (*Result, error)
	BuildStrict(ctx context.Context, format string) (*Result, error)
	Clean(ctx context.Context) (*Result, error)
}

// Logger receives the command lines the builder runs.
type Logger interface {
	LogDebug(message string)
}

// Result is one build tool invocation.
type Result struct {
	Format    string
	Args      []string
	ExitCode  int
	Stdout    string
	Stderr    string
	Combined  string
	Duration  time.Duration
	OutputDir string
}

// Succeeded reports whether the tool exited 0.
func (r *Result) Succeeded() bool {
	return r.ExitCode == 0
}

// Markers returns the markers found in the captured output,
// case-insensitively, in the order given. Progress lines on stdout are
// ignored.
func (r *Result) Markers(markers []string) []string {
	var scanned strings.Builder
	scanned.WriteString(strings.ToLower(r.Stderr))
	for _, line := range strings.Split(r.Stdout, "\n") {
		if !progressLine.MatchString(line) {
			scanned.WriteString("\n")
			scanned.WriteString(strings.ToLower(line))
		}
	}
	text := scanned.String()

	var found []string
	for _, m := range markers {
		if m != "" && strings.Contains(text, strings.ToLower(m)) {
			found = append(found, m)
		}
	}
	return found
}

// Summary returns the first lines of the combined output for failure
// messages.
func (r *Result) Summary(maxLines int) string {
	lines := strings.Split(strings.TrimSpace(r.Combined), "\n")
	if len(lines) > maxLines {
		lines = append(lines[:maxLines], fmt.Sprintf("... (%d more lines)", len(lines)-maxLines))
	}
	return strings.Join(lines, "\n")
}

// SphinxBuilder invokes sphinx-build (or a configured equivalent).
type SphinxBuilder struct {
	Command   []string
	ExtraArgs []string
	Timeout   time.Duration

	ProjectRoot string
	DocsDir     string
	BuildDir    string
	Doctrees    string

	Runner CommandRunner
	Logger Logger
}

// NewSphinxBuilder creates a builder for the project described by reg.
// A nil runner uses ExecRunner.
func NewSphinxBuilder(reg *registry.Registry, cfg config.BuilderConfig, runner CommandRunner) *SphinxBuilder {
	if runner == nil {
		runner = NewExecRunner()
	}
	return &SphinxBuilder{
		Command:     strings.Fields(cfg.Command),
		ExtraArgs:   append([]string(nil), cfg.ExtraArgs...),
		Timeout:     cfg.Timeout,
		ProjectRoot: reg.RootPath(),
		DocsDir:     reg.MustPathFor(registry.Docs),
		BuildDir:    reg.MustPathFor(registry.Build),
		Doctrees:    reg.MustPathFor(registry.Doctrees),
		Runner:      runner,
	}
}

// OutputDir returns the directory a format builds into.
func (b *SphinxBuilder) OutputDir(format string) string {
	return filepath.Join(b.BuildDir, format)
}

// BuildArgs returns the tool arguments for building format.
func (b *SphinxBuilder) BuildArgs(format string, strict bool) []string {
	var args []string
	if strict {
		args = append(args, "-W")
	}
	args = append(args, "-b", format, "-d", b.Doctrees)
	args = append(args, b.ExtraArgs...)
	return append(args, b.DocsDir, b.OutputDir(format))
}

// CleanArgs returns the tool arguments for the clean target.
func (b *SphinxBuilder) CleanArgs() []string {
	return []string{"-M", "clean", b.DocsDir, b.BuildDir}
}

// Build builds format.
func (b *SphinxBuilder) Build(ctx context.Context, format string) (*Result, error) {
	return b.run(ctx, format, b.BuildArgs(format, false), b.OutputDir(format))
}

// BuildStrict builds format with warnings treated as errors.
func (b *SphinxBuilder) BuildStrict(ctx context.Context, format string) (*Result, error) {
	return b.run(ctx, format, b.BuildArgs(format, true), b.OutputDir(format))
}

// Clean runs the clean target over the build root.
func (b *SphinxBuilder) Clean(ctx context.Context) (*Result, error) {
	return b.run(ctx, "clean", b.CleanArgs(), b.BuildDir)
}

func (b *SphinxBuilder) run(ctx context.Context, format string, args []string, outputDir string) (*Result, error) {
	if len(b.Command) == 0 {
		return nil, fmt.Errorf("%w: no build command configured", ErrToolUnavailable)
	}
	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}

	lock := filelock.ForDir(b.BuildDir)
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock build directory: %w", err)
	}
	if !acquired {
		if b.Logger != nil {
			b.Logger.LogDebug(fmt.Sprintf("waiting for %s, another build holds it", lock.Path()))
		}
		if err := lock.LockContext(ctx); err != nil {
			return nil, fmt.Errorf("lock build directory: %w", err)
		}
	}
	defer lock.Unlock()

	name := b.Command[0]
	fullArgs := append(append([]string(nil), b.Command[1:]...), args...)
	if b.Logger != nil {
		b.Logger.LogDebug(fmt.Sprintf("running %s %s", name, strings.Join(fullArgs, " ")))
	}

	start := time.Now()
	out, err := b.Runner.Run(ctx, b.ProjectRoot, name, fullArgs...)
	duration := time.Since(start)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s %s after %v", ErrBuildTimeout, name, format, duration.Round(time.Millisecond))
		}
		return nil, fmt.Errorf("run %s for %s: %w", name, format, err)
	}

	return &Result{
		Format:    format,
		Args:      append([]string{name}, fullArgs...),
		ExitCode:  out.ExitCode,
		Stdout:    out.Stdout,
		Stderr:    out.Stderr,
		Combined:  out.Combined,
		Duration:  duration,
		OutputDir: outputDir,
	}, nil
}
